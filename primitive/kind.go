package primitive

import (
	"reflect"
	"time"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (invalid) value for KindEnum

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindTime
	KindDuration
	KindPrimitiveEnum // named type over an integer or a string

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

func (k KindEnum) IsNumber() bool {
	return k.IsInteger() || k.IsFloat()
}

func (k KindEnum) IsInteger() bool {
	return k.IsSigned() || k.IsUnsigned()
}

func (k KindEnum) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

func (k KindEnum) IsSigned() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
}

func (k KindEnum) IsUnsigned() bool {
	switch k {
	default:
		return false
	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
}

// IsText reports whether the kind is the built-in textual type. Named
// string types are KindPrimitiveEnum and therefore not textual.
func (k KindEnum) IsText() bool {
	return k == KindString
}

var exactKinds = map[reflect.Type]KindEnum{
	reflect.TypeFor[int]():           KindInt,
	reflect.TypeFor[int8]():          KindInt8,
	reflect.TypeFor[int16]():         KindInt16,
	reflect.TypeFor[int32]():         KindInt32,
	reflect.TypeFor[int64]():         KindInt64,
	reflect.TypeFor[uint]():          KindUint,
	reflect.TypeFor[uint8]():         KindUint8,
	reflect.TypeFor[uint16]():        KindUint16,
	reflect.TypeFor[uint32]():        KindUint32,
	reflect.TypeFor[uint64]():        KindUint64,
	reflect.TypeFor[float32]():       KindFloat32,
	reflect.TypeFor[float64]():       KindFloat64,
	reflect.TypeFor[bool]():          KindBool,
	reflect.TypeFor[string]():        KindString,
	reflect.TypeFor[time.Time]():     KindTime,
	reflect.TypeFor[time.Duration](): KindDuration,
}

// FromReflectType classifies rtype. Unsupported types, including pointers,
// yield the zero KindEnum.
func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	if kind, ok := exactKinds[rtype]; ok {
		return kind
	}

	// named types over a primitive are treated as enums
	switch rtype.Kind() {
	default:
		return 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.String:
		return KindPrimitiveEnum
	}
}
