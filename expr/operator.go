package expr

import (
	"fmt"
	"go/token"
	"reflect"
)

// Unary applies - or ! to its operand.
type Unary struct {
	op token.Token
	x  Node
}

// NewUnary applies op (token.SUB or token.NOT) to x. Negating an untyped
// constant folds into a new untyped constant.
func NewUnary(op token.Token, x Node) (Node, error) {
	switch op {
	case token.SUB:
		if !isNumeric(x.Type()) {
			return nil, fmt.Errorf("%w: operator - not defined on %s (type %s)", ErrTypeMismatch, x, typeName(x.Type()))
		}

		if c, ok := x.(*Const); ok && c.untyped {
			return negate(c), nil
		}
	case token.NOT:
		if x.Type().Kind() != reflect.Bool {
			return nil, fmt.Errorf("%w: operator ! not defined on %s (type %s)", ErrTypeMismatch, x, typeName(x.Type()))
		}
	default:
		return nil, fmt.Errorf("%w: unary operator %s", ErrUnsupportedSyntax, op)
	}

	return &Unary{op: op, x: x}, nil
}

func negate(c *Const) *Const {
	switch c.value.Kind() {
	case reflect.Float64:
		return untypedConst(-c.value.Float())
	case reflect.Int32:
		return untypedConst(int32(-c.value.Int()))
	default:
		return untypedConst(int(-c.value.Int()))
	}
}

func (u *Unary) Op() token.Token    { return u.op }
func (u *Unary) X() Node            { return u.x }
func (u *Unary) Type() reflect.Type { return u.x.Type() }
func (u *Unary) String() string     { return u.op.String() + operand(u.x) }
func (u *Unary) children() []Node   { return []Node{u.x} }

// Binary applies an arithmetic, comparison or logical operator.
type Binary struct {
	op   token.Token
	x, y Node
	typ  reflect.Type
}

// NewBinary combines x and y with op. Operands must have identical types;
// an untyped constant operand adopts the type of the other operand.
func NewBinary(op token.Token, x, y Node) (*Binary, error) {
	x, y, err := unify(x, y)
	if err != nil {
		return nil, fmt.Errorf("operator %s: %w", op, err)
	}

	t := x.Type()
	result := t

	var ok bool

	switch op {
	case token.ADD:
		ok = isNumeric(t) || t.Kind() == reflect.String
	case token.SUB, token.MUL, token.QUO:
		ok = isNumeric(t)
	case token.REM:
		ok = isInteger(t)
	case token.EQL, token.NEQ:
		ok, result = t.Comparable(), boolType
	case token.LSS, token.LEQ, token.GTR, token.GEQ:
		ok, result = isNumeric(t) || t.Kind() == reflect.String, boolType
	case token.LAND, token.LOR:
		ok = t.Kind() == reflect.Bool
	default:
		return nil, fmt.Errorf("%w: binary operator %s", ErrUnsupportedSyntax, op)
	}

	if !ok {
		return nil, fmt.Errorf("%w: operator %s not defined on %s (type %s)", ErrTypeMismatch, op, x, typeName(t))
	}

	return &Binary{op: op, x: x, y: y, typ: result}, nil
}

func (b *Binary) Op() token.Token    { return b.op }
func (b *Binary) X() Node            { return b.x }
func (b *Binary) Y() Node            { return b.y }
func (b *Binary) Type() reflect.Type { return b.typ }
func (b *Binary) children() []Node   { return []Node{b.x, b.y} }

func (b *Binary) String() string {
	return operand(b.x) + " " + b.op.String() + " " + operand(b.y)
}

// Cond selects Then or Else depending on a boolean condition.
type Cond struct {
	cond, then, els Node
}

// NewCond builds a conditional node. then and els must unify to one type.
func NewCond(cond, then, els Node) (*Cond, error) {
	if cond.Type().Kind() != reflect.Bool {
		return nil, mismatch(cond, boolType)
	}

	then, els, err := unify(then, els)
	if err != nil {
		return nil, fmt.Errorf("conditional branches: %w", err)
	}

	return &Cond{cond: cond, then: then, els: els}, nil
}

func (c *Cond) Cond() Node         { return c.cond }
func (c *Cond) Then() Node         { return c.then }
func (c *Cond) Else() Node         { return c.els }
func (c *Cond) Type() reflect.Type { return c.then.Type() }
func (c *Cond) children() []Node   { return []Node{c.cond, c.then, c.els} }

func (c *Cond) String() string {
	return "cond(" + joinNodes([]Node{c.cond, c.then, c.els}) + ")"
}

// unify brings both operands to one type.
func unify(x, y Node) (Node, Node, error) {
	cx, xUntyped := x.(*Const)
	cy, yUntyped := y.(*Const)
	xUntyped = xUntyped && cx.untyped
	yUntyped = yUntyped && cy.untyped

	switch {
	case xUntyped && yUntyped:
		// mixed int and float literals meet as float64
		if cx.value.Kind() == reflect.Float64 && cy.fits(cx.Type()) {
			return x, cy.as(cx.Type()), nil
		}

		if cy.value.Kind() == reflect.Float64 && cx.fits(cy.Type()) {
			return cx.as(cy.Type()), y, nil
		}
	case xUntyped:
		bound, err := assignTo(x, y.Type())
		if err != nil {
			return nil, nil, err
		}

		x = bound
	case yUntyped:
		bound, err := assignTo(y, x.Type())
		if err != nil {
			return nil, nil, err
		}

		y = bound
	}

	if x.Type() != y.Type() {
		return nil, nil, fmt.Errorf("%w: %s (type %s) and %s (type %s)",
			ErrTypeMismatch, x, typeName(x.Type()), y, typeName(y.Type()))
	}

	return x, y, nil
}

func operand(n Node) string {
	if _, ok := n.(*Binary); ok {
		return "(" + n.String() + ")"
	}

	return n.String()
}

func isInteger(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func isNumeric(t reflect.Type) bool {
	return isInteger(t) || t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
}
