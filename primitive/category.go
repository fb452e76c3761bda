package primitive

// CategoryEnum selects which textual representations FromText accepts.
// Rendering with ToText is never restricted.
type CategoryEnum int

const (
	CategoryTextNumber  CategoryEnum = 1 << iota // int, uint, float <-> string: textual number representation
	CategoryTextualBool                          // string <-> bool: yes, no, on, off, true, false representation of boolean values
	CategoryDatetime                             // string(RFC3339Nano) <-> time.Time: textual date and time representation
	CategoryDuration                             // string(2h45m) <-> time.Duration: textual duration representation
	CategoryEnumString                           // string <-> enum: textual representation of an enum type (validated with IsValid when present)

	CategoryAll  = (1 << iota) - 1 //all categories combined
	CategoryNone = 0               // no categories selected
)

// categoryOf returns the category a kind is parsed under. Plain strings need
// no category and report CategoryNone with ok set.
func categoryOf(kind KindEnum) (category CategoryEnum, ok bool) {
	switch {
	case kind == KindString:
		return CategoryNone, true
	case kind.IsNumber():
		return CategoryTextNumber, true
	case kind == KindBool:
		return CategoryTextualBool, true
	case kind == KindTime:
		return CategoryDatetime, true
	case kind == KindDuration:
		return CategoryDuration, true
	case kind == KindPrimitiveEnum:
		return CategoryEnumString, true
	default:
		return CategoryNone, false
	}
}

// Has reports whether every category in other is enabled in c.
func (c CategoryEnum) Has(other CategoryEnum) bool {
	return c&other == other
}
