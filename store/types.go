package store

import (
	"fmt"
	"time"
)

// 1. Person is the main editable entity of the sample CMS.
// Address is optional, so chains through it may hit a nil pointer.
type Person struct {
	ID        int64     `json:"id" access:"readonly"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	Active    bool      `json:"active"`
	Status    Status    `json:"status"`
	Address   *Address  `json:"address"`
	Home      Address   `json:"home"` // value field, addressable only through *Person
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`

	revision int
}

// Revision returns the internal revision counter.
func (p *Person) Revision() int {
	return p.revision
}

// Bump increments the revision counter.
func (p *Person) Bump() {
	p.revision++
}

// DisplayName renders the person as shown in list views.
func (p Person) DisplayName() string {
	return fmt.Sprintf("%s <%s>", p.Name, p.Email)
}

// 2. Address is a nested value reached through Person.
type Address struct {
	Street  string   `json:"street"`
	City    string   `json:"city"`
	Zip     string   `json:"zip"`
	Country *Country `json:"country"`
}

// 3. Country is two pointer hops away from Person.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// 4. Status is a primitive enum stored as a string.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	default:
		return false
	}
}

// 5. Meta is embedded by pointer into content entities; its fields are
// promoted, so Article.Slug may cross a nil *Meta.
type Meta struct {
	Slug      string        `json:"slug"`
	UpdatedAt time.Time     `json:"updated_at"`
	ReadTime  time.Duration `json:"read_time"`
}

// 6. Article is a content entity with promoted metadata fields.
type Article struct {
	*Meta

	Title  string  `json:"title"`
	Body   string  `json:"body"`
	Author *Person `json:"author"`
	Score  float64 `json:"score"`
}
