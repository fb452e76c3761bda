package resolve

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBinding = errors.New("invalid binding")
	ErrIncompatible   = errors.New("accessors do not compose")
)

// ExpressionShapeError reports an expression that cannot be bound as a
// property because it is not a property chain. It is a configuration bug.
type ExpressionShapeError struct {
	Expr string // offending expression in source form
	Err  error  // accessor.ErrOpaque or accessor.ErrEmptyChain
}

func (e *ExpressionShapeError) Error() string {
	return fmt.Sprintf("cannot bind %q as a property: %v", e.Expr, e.Err)
}

func (e *ExpressionShapeError) Unwrap() error {
	return e.Err
}
