package primitive

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNotParsable      = errors.New("type has no textual representation")
	ErrCategoryDisabled = errors.New("textual conversion category is disabled")
	ErrInvalidEnum      = errors.New("value is not valid for the enum type")
)

var (
	stringerType  = reflect.TypeFor[fmt.Stringer]()
	errorType     = reflect.TypeFor[error]()
	validatorType = reflect.TypeFor[interface{ IsValid() bool }]()
)

// ToText renders v as raw text. Numbers use strconv with the shortest
// exact representation, times use RFC3339Nano, values implementing
// fmt.Stringer or error use their own text, and nil or invalid values
// render as the empty string. No locale-aware formatting is applied.
func ToText(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return ""
		}

		// methods declared on the pointer receiver only
		if v.Kind() == reflect.Pointer && v.CanInterface() && !hasOwnText(v.Type().Elem()) {
			switch x := v.Interface().(type) {
			case fmt.Stringer:
				return x.String()
			case error:
				return x.Error()
			}
		}

		return ToText(v.Elem())
	}

	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case time.Time:
			return x.Format(time.RFC3339Nano)
		case fmt.Stringer:
			return x.String()
		case error:
			return x.Error()
		}
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits())
	default:
		return fmt.Sprint(v)
	}
}

func hasOwnText(t reflect.Type) bool {
	return t.Implements(stringerType) || t.Implements(errorType)
}

// ValueToText is ToText for an untyped Go value.
func ValueToText(value any) string {
	return ToText(reflect.ValueOf(value))
}

// FromText parses text into a value of type t, the inverse of ToText for
// primitive kinds. Pointer types allocate their element; the empty string
// yields a nil pointer. Enums implementing IsValid() bool are validated.
func FromText(text string, t reflect.Type, allowed CategoryEnum) (reflect.Value, error) {
	if t.Kind() == reflect.Pointer {
		if text == "" {
			return reflect.Zero(t), nil
		}

		elem, err := FromText(text, t.Elem(), allowed)
		if err != nil {
			return reflect.Value{}, err
		}

		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elem)

		return ptr, nil
	}

	kind := FromReflectType(t)

	category, ok := categoryOf(kind)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrNotParsable, t)
	}

	if !allowed.Has(category) {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrCategoryDisabled, t)
	}

	out := reflect.New(t).Elem()

	var err error

	switch kind {
	case KindTime:
		var tm time.Time

		tm, err = time.Parse(time.RFC3339Nano, text)
		if err == nil {
			out.Set(reflect.ValueOf(tm))
		}
	case KindDuration:
		var d time.Duration

		d, err = time.ParseDuration(text)
		if err == nil {
			out.SetInt(int64(d))
		}
	case KindBool:
		var b bool

		b, err = parseBool(text)
		if err == nil {
			out.SetBool(b)
		}
	default:
		err = setScalar(out, text)
	}

	if err != nil {
		return reflect.Value{}, fmt.Errorf("parse %q as %s: %w", text, t, err)
	}

	if kind == KindPrimitiveEnum && t.Implements(validatorType) {
		if !out.Interface().(interface{ IsValid() bool }).IsValid() {
			return reflect.Value{}, fmt.Errorf("%w: %q for %s", ErrInvalidEnum, text, t)
		}
	}

	return out, nil
}

func setScalar(out reflect.Value, text string) error {
	switch out.Kind() {
	case reflect.String:
		out.SetString(text)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, out.Type().Bits())
		if err != nil {
			return err
		}

		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(text), 10, out.Type().Bits())
		if err != nil {
			return err
		}

		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), out.Type().Bits())
		if err != nil {
			return err
		}

		out.SetFloat(f)
	default:
		return fmt.Errorf("%w: %s", ErrNotParsable, out.Type())
	}

	return nil
}

func parseBool(text string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", text)
	}
}
