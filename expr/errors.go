package expr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrUnknownMember     = errors.New("unknown member")
	ErrUnexportedMember  = errors.New("unexported member")
	ErrUnknownIdent      = errors.New("unknown identifier")
	ErrUnknownFunc       = errors.New("unknown function")
	ErrUnsupportedSyntax = errors.New("unsupported syntax")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrForeignParam      = errors.New("body references a parameter of another lambda")

	ErrNotAFunction = errors.New("registered value is not a function")
	ErrBadSignature = errors.New("function signature is not supported")
)

// MemberError reports a selector or method call naming a member that the
// static type does not have or does not export.
type MemberError struct {
	Type        reflect.Type
	Name        string
	Suggestions []string
	Err         error // ErrUnknownMember or ErrUnexportedMember
}

func (e *MemberError) Error() string {
	msg := fmt.Sprintf("%s: %s.%s", e.Err, typeName(e.Type), e.Name)
	if len(e.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(e.Suggestions, ", ") + "?)"
	}

	return msg
}

func (e *MemberError) Unwrap() error {
	return e.Err
}

func mismatch(n Node, want reflect.Type) error {
	return fmt.Errorf("%w: cannot use %s (type %s) as %s", ErrTypeMismatch, n, typeName(n.Type()), typeName(want))
}
