package accessor

import (
	"fmt"
	"reflect"
	"strings"

	"accessor-compiler/expr"
)

var stringType = reflect.TypeFor[string]()

// Accessor is a compiled property chain.
type Accessor struct {
	// Name is the chain's member names concatenated: "AddressCity".
	Name string
	// Expr is the chain in source form: "x.Address.City".
	Expr         string
	ObjectType   reflect.Type
	PropertyType reflect.Type
	Steps        []Step

	Getter func(root any) (any, error)
	// Setter is nil unless the leaf member is writable.
	Setter func(root, value any) error
	// StringGetter is nil unless PropertyType is string.
	StringGetter func(root any) (string, error)
}

// Writable reports whether a leaf member reached through steps from a root
// of type root may be assigned: the path must be addressable and the leaf
// must not be tagged read-only.
func Writable(root reflect.Type, steps []Step) bool {
	if len(steps) == 0 || steps[len(steps)-1].ReadOnly {
		return false
	}

	operand := root

	for _, s := range steps {
		if operand.Kind() == reflect.Pointer || crossesPointer(s.Owner, s.Index) {
			return true
		}

		operand = s.Type
	}

	return false
}

// CompileChain compiles the steps of a PureChain read from a root of type
// root.
func CompileChain(root reflect.Type, steps []Step) (*Accessor, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyChain
	}

	if err := checkChain(root, steps); err != nil {
		return nil, err
	}

	c := &chain{
		root:  root,
		steps: steps,
		expr:  chainExpr(steps),
	}

	leaf := steps[len(steps)-1]

	acc := &Accessor{
		Name:         chainName(steps),
		Expr:         c.expr,
		ObjectType:   root,
		PropertyType: leaf.Type,
		Steps:        steps,
		Getter:       c.get,
	}

	if Writable(root, steps) {
		acc.Setter = c.set
	}

	if leaf.Type == stringType {
		acc.StringGetter = c.getString
	}

	return acc, nil
}

func checkChain(root reflect.Type, steps []Step) error {
	operand := root

	for i, s := range steps {
		owner := operand
		if owner.Kind() == reflect.Pointer {
			owner = owner.Elem()
		}

		if owner != s.Owner || len(s.Index) == 0 {
			return fmt.Errorf("%w: step %d (%s) is declared by %s, not %s", ErrBrokenChain, i, s.Name, s.Owner, operand)
		}

		if f := s.Owner.FieldByIndex(s.Index); f.Name != s.Name || f.Type != s.Type {
			return fmt.Errorf("%w: step %d (%s) does not match field %s of %s", ErrBrokenChain, i, s.Name, f.Name, s.Owner)
		}

		operand = s.Type
	}

	return nil
}

type chain struct {
	root  reflect.Type
	steps []Step
	expr  string
}

func (c *chain) get(root any) (any, error) {
	v, err := c.walk(root, len(c.steps))
	if err != nil {
		return nil, err
	}

	return v.Interface(), nil
}

func (c *chain) getString(root any) (string, error) {
	v, err := c.walk(root, len(c.steps))
	if err != nil {
		return "", err
	}

	return v.String(), nil
}

func (c *chain) set(root, value any) error {
	leaf := len(c.steps) - 1

	val, err := assignValue(c.steps[leaf].Type, value)
	if err != nil {
		return fmt.Errorf("%s: %w", c.expr, err)
	}

	// intermediates are resolved again on every call
	v, err := c.walk(root, leaf)
	if err != nil {
		return err
	}

	f, err := c.field(v, leaf)
	if err != nil {
		return err
	}

	if !f.CanSet() {
		return fmt.Errorf("%s: %w", c.expr, ErrNotAddressable)
	}

	f.Set(val)

	return nil
}

// walk evaluates the first n steps.
func (c *chain) walk(root any, n int) (reflect.Value, error) {
	v, err := rootValue(c.root, root)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%s: %w", c.expr, err)
	}

	for i := range n {
		v, err = c.field(v, i)
		if err != nil {
			return reflect.Value{}, err
		}
	}

	return v, nil
}

func (c *chain) field(v reflect.Value, i int) (reflect.Value, error) {
	f, embedded, ok := selectField(v, c.steps[i].Index)
	if !ok {
		return reflect.Value{}, nullAt(c.expr, i, c.steps[i].Name, chainExpr(c.steps[:i]), embedded)
	}

	return f, nil
}

func chainName(steps []Step) string {
	var b strings.Builder

	for _, s := range steps {
		b.WriteString(s.Name)
	}

	return b.String()
}

func chainExpr(steps []Step) string {
	var b strings.Builder

	b.WriteString(expr.DefaultParam)

	for _, s := range steps {
		b.WriteByte('.')
		b.WriteString(s.Name)
	}

	return b.String()
}
