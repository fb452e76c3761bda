package resolve

import (
	"fmt"
	"reflect"

	"accessor-compiler/accessor"
	"accessor-compiler/expr"
	"accessor-compiler/metadata"
)

// Pair binds a property from an explicit getter and setter. Both are
// required; use Getter for read-only bindings.
func Pair[T, V any](name string, get func(T) V, set func(T, V)) (*metadata.PropertyMetadata, error) {
	if name == "" || get == nil || set == nil {
		return nil, fmt.Errorf("%w: pair %q needs a name, a getter and a setter", ErrInvalidBinding, name)
	}

	getter := func(root any) (any, error) {
		r, err := rootOf[T](name, root)
		if err != nil {
			return nil, err
		}

		return get(r), nil
	}

	setter := func(root, value any) error {
		r, err := rootOf[T](name, root)
		if err != nil {
			return err
		}

		v, err := valueOf[V](name, value)
		if err != nil {
			return err
		}

		set(r, v)

		return nil
	}

	var stringGetter metadata.StringGetter
	if reflect.TypeFor[V]() == stringType {
		stringGetter = textGetter(name, func(r T) string { return any(get(r)).(string) })
	}

	return metadata.NewProperty(name, reflect.TypeFor[T](), reflect.TypeFor[V](), getter, setter, stringGetter), nil
}

// Getter binds a read-only expression from an explicit getter. text is the
// textual projection; when it is nil, string values are their own text and
// other values have none.
func Getter[T, V any](name string, get func(T) V, text func(T) string) (*metadata.ExpressionMetadata, error) {
	if get == nil {
		return nil, fmt.Errorf("%w: getter %q needs a function", ErrInvalidBinding, name)
	}

	getter := func(root any) (any, error) {
		r, err := rootOf[T](name, root)
		if err != nil {
			return nil, err
		}

		return get(r), nil
	}

	if text == nil && reflect.TypeFor[V]() == stringType {
		text = func(r T) string { return any(get(r)).(string) }
	}

	var stringGetter metadata.StringGetter
	if text != nil {
		stringGetter = textGetter(name, text)
	}

	return metadata.NewExpression(name, reflect.TypeFor[T](), reflect.TypeFor[V](), getter, stringGetter), nil
}

// Compose chains two properties: child is read from the value of parent.
// The name is the concatenation of both names. A nil parent value fails
// with *accessor.NullIntermediateError; its Index counts the two parts of
// the composition, not the members inside parent, so it is always 1 and
// Nil is the parent's name. Errors met inside parent or child are returned
// unchanged. The result is writable when child is writable and parent
// yields a pointer, so writes reach the root.
func Compose(parent, child *metadata.PropertyMetadata) (*metadata.PropertyMetadata, error) {
	if parent.PropertyType() != child.ObjectType() {
		return nil, fmt.Errorf("%w: %s yields %s, %s reads %s",
			ErrIncompatible, parent.PropertyName(), parent.PropertyType(), child.PropertyName(), child.ObjectType())
	}

	name := parent.PropertyName() + child.PropertyName()

	through := func(root any) (any, error) {
		v, err := parent.Get(root)
		if err != nil {
			return nil, err
		}

		if isNil(v) {
			return nil, &accessor.NullIntermediateError{
				Chain:  name,
				Index:  1,
				Member: child.PropertyName(),
				Nil:    parent.PropertyName(),
			}
		}

		return v, nil
	}

	getter := func(root any) (any, error) {
		v, err := through(root)
		if err != nil {
			return nil, err
		}

		return child.Get(v)
	}

	var setter metadata.Setter
	if child.IsWritable() && parent.PropertyType().Kind() == reflect.Pointer {
		setter = func(root, value any) error {
			v, err := through(root)
			if err != nil {
				return err
			}

			return child.Set(v, value)
		}
	}

	var stringGetter metadata.StringGetter
	if child.HasStringGetter() {
		stringGetter = func(root any) (string, error) {
			v, err := through(root)
			if err != nil {
				return "", err
			}

			return child.GetString(v)
		}
	}

	return metadata.NewProperty(name, parent.ObjectType(), child.PropertyType(), getter, setter, stringGetter), nil
}

func textGetter[T any](name string, text func(T) string) metadata.StringGetter {
	return func(root any) (string, error) {
		r, err := rootOf[T](name, root)
		if err != nil {
			return "", err
		}

		return text(r), nil
	}
}

func rootOf[T any](name string, root any) (T, error) {
	var zero T

	if isNil(root) {
		return zero, &accessor.NullIntermediateError{Chain: name, Member: name, Nil: expr.DefaultParam}
	}

	r, ok := root.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s: got %T, want %s", accessor.ErrRootType, name, root, reflect.TypeFor[T]())
	}

	return r, nil
}

func valueOf[V any](name string, value any) (V, error) {
	if v, ok := value.(V); ok {
		return v, nil
	}

	var zero V

	switch reflect.TypeFor[V]().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if value == nil {
			return zero, nil
		}
	}

	return zero, fmt.Errorf("%w: %s: cannot assign %T to %s", accessor.ErrValueType, name, value, reflect.TypeFor[V]())
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
