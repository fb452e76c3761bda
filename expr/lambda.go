package expr

import (
	"fmt"
	"reflect"
)

// Lambda is a single-parameter function expression from a root value to
// the value of its body.
type Lambda struct {
	param *Param
	body  Node
}

// New builds a lambda. Every parameter referenced by body must be param.
func New(param *Param, body Node) (*Lambda, error) {
	if err := checkParams(param, body); err != nil {
		return nil, err
	}

	return &Lambda{param: param, body: body}, nil
}

func checkParams(param *Param, n Node) error {
	if p, ok := n.(*Param); ok && p != param {
		return fmt.Errorf("%w: %s", ErrForeignParam, p.name)
	}

	for _, child := range n.children() {
		if err := checkParams(param, child); err != nil {
			return err
		}
	}

	return nil
}

// Param returns the lambda parameter.
func (l *Lambda) Param() *Param { return l.param }

// Body returns the lambda body.
func (l *Lambda) Body() Node { return l.body }

// Root returns the declared parameter type.
func (l *Lambda) Root() reflect.Type { return l.param.typ }

// Result returns the static type of the body.
func (l *Lambda) Result() reflect.Type { return l.body.Type() }

// String returns the body in Go source form.
func (l *Lambda) String() string { return l.body.String() }

// As returns the lambda with its result typed as result. Bodies whose type
// implements an interface result are boxed with a widening Convert node,
// untyped constants are materialized, and any other type difference fails.
func (l *Lambda) As(result reflect.Type) (*Lambda, error) {
	body := l.body
	if body.Type() == result {
		return l, nil
	}

	if result.Kind() == reflect.Interface && body.Type().Implements(result) {
		boxed, err := NewConvert(body, result)
		if err != nil {
			return nil, err
		}

		return &Lambda{param: l.param, body: boxed}, nil
	}

	bound, err := assignTo(body, result)
	if err != nil {
		return nil, err
	}

	return &Lambda{param: l.param, body: bound}, nil
}

// For parses src as the body of a func(x T) V lambda.
func For[T, V any](src string, opts ...Option) (*Lambda, error) {
	l, err := Parse(reflect.TypeFor[T](), src, opts...)
	if err != nil {
		return nil, err
	}

	return l.As(reflect.TypeFor[V]())
}

// Select builds the pure member chain named by path ("Basic.Field") on a
// parameter of type root.
func Select(root reflect.Type, path string) (*Lambda, error) {
	names, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	param := NewParam(DefaultParam, root)

	var body Node = param

	for _, name := range names {
		member, err := NewMember(body, name)
		if err != nil {
			return nil, fmt.Errorf("select %q: %w", path, err)
		}

		body = member
	}

	return &Lambda{param: param, body: body}, nil
}
