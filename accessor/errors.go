package accessor

import (
	"errors"
	"fmt"
)

var (
	ErrOpaque      = errors.New("expression is not a property chain")
	ErrEmptyChain  = errors.New("expression selects the whole object, not a property")
	ErrBrokenChain = errors.New("steps do not form a member chain")

	ErrRootType       = errors.New("root value has the wrong type")
	ErrValueType      = errors.New("value has the wrong type")
	ErrNotAddressable = errors.New("member is not addressable")
	ErrMissingValue   = errors.New("function reported no value")
	ErrDivisionByZero = errors.New("integer division by zero")
)

// NullIntermediateError reports a nil pointer met while reading through a
// chain, before its leaf could be reached.
type NullIntermediateError struct {
	Chain  string // whole expression, "x.Address.City"
	Index  int    // chain step that could not be read; part index for resolve.Compose
	Member string // member of that step, "City"
	Nil    string // nil operand, "x.Address"
}

func (e *NullIntermediateError) Error() string {
	return fmt.Sprintf("%s: nil %s while reading %s", e.Chain, e.Nil, e.Member)
}

func nullAt(chain string, index int, member, operand, embedded string) *NullIntermediateError {
	if embedded != "" {
		operand += "." + embedded
	}

	return &NullIntermediateError{Chain: chain, Index: index, Member: member, Nil: operand}
}
