package accessor

import (
	"fmt"
	"reflect"
)

// rootValue returns root as a value of the declared root type t. Interface
// root types keep their interface kind so method indexes stay valid.
func rootValue(t reflect.Type, root any) (reflect.Value, error) {
	v := reflect.ValueOf(root)
	if !v.IsValid() {
		if nillable(t) {
			return reflect.Zero(t), nil
		}

		return reflect.Value{}, fmt.Errorf("%w: got nil, want %s", ErrRootType, t)
	}

	if v.Type() == t {
		return v, nil
	}

	if t.Kind() == reflect.Interface && v.Type().Implements(t) {
		iv := reflect.New(t).Elem()
		iv.Set(v)

		return iv, nil
	}

	return reflect.Value{}, fmt.Errorf("%w: got %s, want %s", ErrRootType, v.Type(), t)
}

// selectField reads the field at index from the struct v or *v. Pointers
// embedded along a promoted path are dereferenced too. When a nil pointer
// blocks the way ok is false and embedded names the nil embedded field, or
// is empty when v itself is nil.
func selectField(v reflect.Value, index []int) (field reflect.Value, embedded string, ok bool) {
	for _, i := range index {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, embedded, false
			}

			v = v.Elem()
		}

		embedded = v.Type().Field(i).Name
		v = v.Field(i)
	}

	return v, "", true
}

// assignValue converts value for assignment to a variable of type t.
func assignValue(t reflect.Type, value any) (reflect.Value, error) {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		if nillable(t) {
			return reflect.Zero(t), nil
		}

		return reflect.Value{}, fmt.Errorf("%w: cannot assign nil to %s", ErrValueType, t)
	}

	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%w: cannot assign %s to %s", ErrValueType, v.Type(), t)
	}

	return v, nil
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// crossesPointer reports whether a promoted field path dereferences an
// embedded pointer before reaching the field.
func crossesPointer(owner reflect.Type, index []int) bool {
	t := owner

	for _, i := range index[:len(index)-1] {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Pointer {
			return true
		}

		t = f.Type
	}

	return false
}
