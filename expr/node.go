package expr

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"accessor-compiler/internal/match"
)

// maxSuggestions bounds the "did you mean" list of a MemberError.
const maxSuggestions = 3

var (
	anyType  = reflect.TypeFor[any]()
	boolType = reflect.TypeFor[bool]()
)

// Node is an immutable, statically typed expression tree node.
type Node interface {
	// Type returns the static type of the value the node produces.
	Type() reflect.Type
	// String returns the node in Go source form.
	String() string

	children() []Node
}

// Children returns the direct operands of n in evaluation order.
func Children(n Node) []Node {
	return n.children()
}

// Param is the single parameter of a Lambda: the root value.
type Param struct {
	name string
	typ  reflect.Type
}

// NewParam declares a parameter of the given root type.
func NewParam(name string, typ reflect.Type) *Param {
	if typ == nil {
		panic("expr: parameter type cannot be nil")
	}

	return &Param{name: name, typ: typ}
}

func (p *Param) Name() string       { return p.name }
func (p *Param) Type() reflect.Type { return p.typ }
func (p *Param) String() string     { return p.name }
func (p *Param) children() []Node   { return nil }

// Member selects a struct field of its operand. Like Go selectors, one level
// of pointer is dereferenced implicitly and promoted fields of embedded
// structs are found by name.
type Member struct {
	x     Node
	owner reflect.Type
	field reflect.StructField
}

// NewMember selects the exported field name of x.
func NewMember(x Node, name string) (*Member, error) {
	owner := x.Type()
	if owner.Kind() == reflect.Pointer {
		owner = owner.Elem()
	}

	if owner.Kind() != reflect.Struct {
		return nil, &MemberError{Type: x.Type(), Name: name, Err: ErrUnknownMember}
	}

	field, ok := owner.FieldByName(name)
	if !ok {
		if _, isMethod := x.Type().MethodByName(name); isMethod {
			return nil, fmt.Errorf("%w: method value %s.%s must be called", ErrUnsupportedSyntax, x, name)
		}

		return nil, &MemberError{
			Type:        owner,
			Name:        name,
			Suggestions: match.Suggest(name, exportedFieldNames(owner), maxSuggestions),
			Err:         ErrUnknownMember,
		}
	}

	if !field.IsExported() {
		return nil, &MemberError{Type: owner, Name: name, Err: ErrUnexportedMember}
	}

	return &Member{x: x, owner: owner, field: field}, nil
}

// X returns the operand the field is selected from.
func (m *Member) X() Node { return m.x }

// Name returns the selected field name.
func (m *Member) Name() string { return m.field.Name }

// Owner returns the struct type declaring the selector, after the implicit
// pointer dereference.
func (m *Member) Owner() reflect.Type { return m.owner }

// Field returns the selected field. Its Index is the full path through
// embedded structs when the field is promoted.
func (m *Member) Field() reflect.StructField { return m.field }

func (m *Member) Type() reflect.Type { return m.field.Type }
func (m *Member) String() string     { return m.x.String() + "." + m.field.Name }
func (m *Member) children() []Node   { return []Node{m.x} }

func exportedFieldNames(t reflect.Type) []string {
	var names []string

	for _, f := range reflect.VisibleFields(t) {
		if f.IsExported() && !f.Anonymous {
			names = append(names, f.Name)
		}
	}

	return names
}

// Convert converts its operand to another type, as in any(x.Age).
type Convert struct {
	x   Node
	typ reflect.Type
}

// NewConvert converts x to the type to.
func NewConvert(x Node, to reflect.Type) (*Convert, error) {
	if !x.Type().ConvertibleTo(to) {
		return nil, fmt.Errorf("%w: cannot convert %s (type %s) to %s", ErrTypeMismatch, x, typeName(x.Type()), typeName(to))
	}

	return &Convert{x: x, typ: to}, nil
}

// X returns the converted operand.
func (c *Convert) X() Node { return c.x }

// Widening reports whether the conversion preserves the operand's value
// unchanged: the identity conversion, or boxing into an interface the
// operand implements.
func (c *Convert) Widening() bool {
	from := c.x.Type()

	return from == c.typ || (c.typ.Kind() == reflect.Interface && from.Implements(c.typ))
}

func (c *Convert) Type() reflect.Type { return c.typ }
func (c *Convert) String() string     { return typeName(c.typ) + "(" + c.x.String() + ")" }
func (c *Convert) children() []Node   { return []Node{c.x} }

// Const is a literal value. Untyped constants come from source literals
// and adopt the type of the operand or parameter they are combined with.
type Const struct {
	value   reflect.Value
	untyped bool
}

// NewConst returns a typed constant holding value.
func NewConst(value any) *Const {
	if value == nil {
		panic("expr: constant value cannot be untyped nil")
	}

	return &Const{value: reflect.ValueOf(value)}
}

func untypedConst(value any) *Const {
	return &Const{value: reflect.ValueOf(value), untyped: true}
}

// Value returns the constant value.
func (c *Const) Value() reflect.Value { return c.value }

// Untyped reports whether the constant still has its default type.
func (c *Const) Untyped() bool { return c.untyped }

func (c *Const) Type() reflect.Type { return c.value.Type() }
func (c *Const) children() []Node   { return nil }

func (c *Const) String() string {
	switch {
	case c.value.Kind() == reflect.String:
		s := strconv.Quote(c.value.String())
		if !c.untyped && c.value.Type() != reflect.TypeFor[string]() {
			return typeName(c.value.Type()) + "(" + s + ")"
		}

		return s
	case c.untyped && c.value.Kind() == reflect.Int32:
		return strconv.QuoteRune(rune(c.value.Int()))
	default:
		return fmt.Sprint(c.value)
	}
}

// fits reports whether the untyped constant is representable in t.
func (c *Const) fits(t reflect.Type) bool {
	if !c.untyped {
		return false
	}

	v := c.value

	switch v.Kind() {
	case reflect.Int, reflect.Int32:
		n := v.Int()

		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return !reflect.Zero(t).OverflowInt(n)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return n >= 0 && !reflect.Zero(t).OverflowUint(uint64(n))
		case reflect.Float32, reflect.Float64:
			return true
		}
	case reflect.Float64:
		f := v.Float()

		switch t.Kind() {
		case reflect.Float32:
			return !reflect.Zero(t).OverflowFloat(f)
		case reflect.Float64:
			return true
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			// 1.0 is an integer constant, 1.5 is not
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				return false
			}

			return !reflect.Zero(t).OverflowInt(int64(f))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
				return false
			}

			return !reflect.Zero(t).OverflowUint(uint64(f))
		}
	case reflect.String:
		return t.Kind() == reflect.String
	case reflect.Bool:
		return t.Kind() == reflect.Bool
	}

	return false
}

// as materializes the untyped constant as a typed constant of type t.
func (c *Const) as(t reflect.Type) *Const {
	return &Const{value: c.value.Convert(t)}
}

// assignTo returns n prepared for assignment to a value of type t.
// Untyped constants are materialized in t when representable.
func assignTo(n Node, t reflect.Type) (Node, error) {
	if c, ok := n.(*Const); ok && c.untyped && t.Kind() != reflect.Interface {
		if c.fits(t) {
			return c.as(t), nil
		}

		return nil, mismatch(n, t)
	}

	if !n.Type().AssignableTo(t) {
		return nil, mismatch(n, t)
	}

	return n, nil
}

func typeName(t reflect.Type) string {
	if t == anyType {
		return "any"
	}

	return t.String()
}
