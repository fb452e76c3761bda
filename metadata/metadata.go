// Package metadata holds the immutable records describing a compiled
// binding: its name, declared types and the closures reading and writing
// it.
//
// Records are built once while the configuration is assembled and shared
// read-only afterwards. A missing setter or string getter is a capability,
// reported by IsWritable and HasStringGetter, not an error.
package metadata

import (
	"errors"
	"fmt"
	"reflect"

	"accessor-compiler/primitive"
)

var (
	ErrNotWritable    = errors.New("property is not writable")
	ErrNoStringGetter = errors.New("expression has no string getter")
)

// Getter reads the bound value from a root entity.
type Getter func(root any) (any, error)

// Setter writes value into a root entity.
type Setter func(root, value any) error

// StringGetter reads the bound value as text.
type StringGetter func(root any) (string, error)

// Expression is the read side shared by PropertyMetadata and
// ExpressionMetadata.
type Expression interface {
	PropertyName() string
	PropertyType() reflect.Type
	ObjectType() reflect.Type
	Getter() Getter
	StringGetter() StringGetter
	HasStringGetter() bool
}

var (
	_ Expression = (*PropertyMetadata)(nil)
	_ Expression = (*ExpressionMetadata)(nil)
)

// PropertyMetadata describes a bound property chain.
type PropertyMetadata struct {
	name         string
	propertyType reflect.Type
	objectType   reflect.Type
	getter       Getter
	setter       Setter
	stringGetter StringGetter
}

// NewProperty returns a property record. setter and stringGetter may be nil.
func NewProperty(
	name string, objectType, propertyType reflect.Type,
	getter Getter, setter Setter, stringGetter StringGetter,
) *PropertyMetadata {
	return &PropertyMetadata{
		name:         name,
		propertyType: propertyType,
		objectType:   objectType,
		getter:       getter,
		setter:       setter,
		stringGetter: stringGetter,
	}
}

func (p *PropertyMetadata) PropertyName() string       { return p.name }
func (p *PropertyMetadata) PropertyType() reflect.Type { return p.propertyType }
func (p *PropertyMetadata) ObjectType() reflect.Type   { return p.objectType }
func (p *PropertyMetadata) Getter() Getter             { return p.getter }
func (p *PropertyMetadata) Setter() Setter             { return p.setter }
func (p *PropertyMetadata) StringGetter() StringGetter { return p.stringGetter }
func (p *PropertyMetadata) IsWritable() bool           { return p.setter != nil }
func (p *PropertyMetadata) HasStringGetter() bool      { return p.stringGetter != nil }

// Get reads the property from root.
func (p *PropertyMetadata) Get(root any) (any, error) {
	return p.getter(root)
}

// Set writes value into root.
func (p *PropertyMetadata) Set(root, value any) error {
	if p.setter == nil {
		return fmt.Errorf("%w: %s", ErrNotWritable, p.name)
	}

	return p.setter(root, value)
}

// GetString reads the property as text.
func (p *PropertyMetadata) GetString(root any) (string, error) {
	if p.stringGetter == nil {
		return "", fmt.Errorf("%w: %s", ErrNoStringGetter, p.name)
	}

	return p.stringGetter(root)
}

// SetText parses text as a PropertyType value and writes it into root.
// Only the conversion categories in allowed are accepted.
func (p *PropertyMetadata) SetText(root any, text string, allowed primitive.CategoryEnum) error {
	if p.setter == nil {
		return fmt.Errorf("%w: %s", ErrNotWritable, p.name)
	}

	v, err := primitive.FromText(text, p.propertyType, allowed)
	if err != nil {
		return fmt.Errorf("%s: %w", p.name, err)
	}

	return p.setter(root, v.Interface())
}

func (p *PropertyMetadata) String() string {
	return describe(p.objectType, p.name, p.propertyType)
}

// ExpressionMetadata describes a read-only bound expression.
type ExpressionMetadata struct {
	name         string
	propertyType reflect.Type
	objectType   reflect.Type
	getter       Getter
	stringGetter StringGetter
}

// NewExpression returns an expression record. stringGetter may be nil.
func NewExpression(
	name string, objectType, propertyType reflect.Type,
	getter Getter, stringGetter StringGetter,
) *ExpressionMetadata {
	return &ExpressionMetadata{
		name:         name,
		propertyType: propertyType,
		objectType:   objectType,
		getter:       getter,
		stringGetter: stringGetter,
	}
}

// PropertyName is empty for expressions that are not property chains.
func (e *ExpressionMetadata) PropertyName() string { return e.name }

func (e *ExpressionMetadata) PropertyType() reflect.Type { return e.propertyType }
func (e *ExpressionMetadata) ObjectType() reflect.Type   { return e.objectType }
func (e *ExpressionMetadata) Getter() Getter             { return e.getter }
func (e *ExpressionMetadata) StringGetter() StringGetter { return e.stringGetter }
func (e *ExpressionMetadata) HasStringGetter() bool      { return e.stringGetter != nil }

// Get evaluates the expression against root.
func (e *ExpressionMetadata) Get(root any) (any, error) {
	return e.getter(root)
}

// GetString evaluates the expression as text.
func (e *ExpressionMetadata) GetString(root any) (string, error) {
	if e.stringGetter == nil {
		return "", fmt.Errorf("%w: %s", ErrNoStringGetter, e.name)
	}

	return e.stringGetter(root)
}

func (e *ExpressionMetadata) String() string {
	return describe(e.objectType, e.name, e.propertyType)
}

func describe(object reflect.Type, name string, property reflect.Type) string {
	if name == "" {
		name = "<expression>"
	}

	return fmt.Sprintf("%v.%s %v", object, name, property)
}
