// Package resolve turns lambda expressions into metadata records.
//
// Strict binds property chains only and rejects any other expression with
// an *ExpressionShapeError. Permissive binds any well-typed expression and
// degrades gracefully: chains keep their name and types, other expressions
// become anonymous read-only getters.
//
// Pair, Getter and Compose build the same records from explicit functions
// instead of parsed expressions.
package resolve

import (
	"errors"
	"reflect"

	"accessor-compiler/accessor"
	"accessor-compiler/expr"
	"accessor-compiler/metadata"
	"accessor-compiler/primitive"
)

var stringType = reflect.TypeFor[string]()

// Option configures Permissive.
type Option func(*config)

type config struct {
	anyText bool
}

// AnyText gives every property chain a string getter rendering its value as
// raw text. By default only chains of type string get one, as with Strict.
func AnyText() Option {
	return func(c *config) {
		c.anyText = true
	}
}

// Strict binds l as a property. l must be a property chain of at least one
// member.
func Strict(l *expr.Lambda) (*metadata.PropertyMetadata, error) {
	cls, err := accessor.Classify(l)
	if errors.Is(err, accessor.ErrEmptyChain) {
		return nil, &ExpressionShapeError{Expr: l.String(), Err: err}
	}

	if err != nil {
		return nil, err
	}

	if cls.Kind != accessor.PureChain {
		return nil, &ExpressionShapeError{Expr: l.String(), Err: accessor.ErrOpaque}
	}

	acc, err := accessor.CompileChain(l.Root(), cls.Steps)
	if err != nil {
		return nil, err
	}

	return metadata.NewProperty(acc.Name, acc.ObjectType, acc.PropertyType, acc.Getter, acc.Setter, acc.StringGetter), nil
}

// Permissive binds any expression. Property chains are compiled as by
// Strict and get a string getter when their type is string, or for any
// type when AnyText is set. Other expressions, including the bare
// parameter, are compiled whole; they get an empty name and a string getter
// only when their static type is string.
func Permissive(l *expr.Lambda, opts ...Option) (*metadata.ExpressionMetadata, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	cls, err := accessor.Classify(l)
	if err != nil && !errors.Is(err, accessor.ErrEmptyChain) {
		return nil, err
	}

	if err == nil && cls.Kind == accessor.PureChain {
		acc, err := accessor.CompileChain(l.Root(), cls.Steps)
		if err != nil {
			return nil, err
		}

		stringGetter := metadata.StringGetter(acc.StringGetter)
		if stringGetter == nil && cfg.anyText {
			stringGetter = asText(acc.Getter)
		}

		return metadata.NewExpression(acc.Name, acc.ObjectType, acc.PropertyType, acc.Getter, stringGetter), nil
	}

	eval, err := accessor.CompileOpaque(l)
	if err != nil {
		return nil, err
	}

	var stringGetter metadata.StringGetter
	if l.Result() == stringType {
		stringGetter = func(root any) (string, error) {
			v, err := eval(root)
			if err != nil {
				return "", err
			}

			return v.(string), nil
		}
	}

	return metadata.NewExpression("", l.Root(), l.Result(), metadata.Getter(eval), stringGetter), nil
}

// Property parses src as a func(x T) V lambda and binds it with Strict.
func Property[T, V any](src string, opts ...expr.Option) (*metadata.PropertyMetadata, error) {
	l, err := expr.For[T, V](src, opts...)
	if err != nil {
		return nil, err
	}

	return Strict(l)
}

// Expression parses src as a func(x T) V lambda and binds it with
// Permissive and its default options.
func Expression[T, V any](src string, opts ...expr.Option) (*metadata.ExpressionMetadata, error) {
	l, err := expr.For[T, V](src, opts...)
	if err != nil {
		return nil, err
	}

	return Permissive(l)
}

func asText(get func(root any) (any, error)) metadata.StringGetter {
	return func(root any) (string, error) {
		v, err := get(root)
		if err != nil {
			return "", err
		}

		return primitive.ValueToText(v), nil
	}
}
