package accessor

import (
	"reflect"
	"slices"

	"accessor-compiler/expr"
)

//go:generate go tool stringer -type=ClassKind -output=classkind_string.go

// ClassKind is the shape of a lambda body.
type ClassKind int

const (
	Opaque ClassKind = iota
	PureChain
)

const (
	// AccessTag is the struct tag consulted for member writability.
	AccessTag = "access"
	// ReadOnly marks a field that never gets a setter: `access:"readonly"`.
	ReadOnly = "readonly"
)

// Step is one member access of a property chain.
type Step struct {
	Name     string
	Owner    reflect.Type // struct type declaring the member
	Type     reflect.Type // declared member type
	Index    []int        // field index, through embedded structs if promoted
	ReadOnly bool
}

// Classification is the result of Classify.
type Classification struct {
	Kind  ClassKind
	Steps []Step // root to leaf, PureChain only
}

// Name concatenates the member names of the chain, root to leaf.
func (c Classification) Name() string {
	return chainName(c.Steps)
}

// Classify inspects the whole lambda body. The body is a PureChain when it
// reduces to member accesses applied one after another to the parameter;
// widening conversions are transparent. Anything else is Opaque, even when
// it contains chains.
//
// A body that is the bare parameter is a chain without steps and fails with
// ErrEmptyChain.
func Classify(l *expr.Lambda) (Classification, error) {
	var steps []Step

	for n := unwrap(l.Body()); ; {
		switch node := n.(type) {
		case *expr.Param:
			if len(steps) == 0 {
				return Classification{Kind: PureChain}, ErrEmptyChain
			}

			slices.Reverse(steps)

			return Classification{Kind: PureChain, Steps: steps}, nil

		case *expr.Member:
			steps = append(steps, stepOf(node))
			n = unwrap(node.X())

		default:
			return Classification{Kind: Opaque}, nil
		}
	}
}

func unwrap(n expr.Node) expr.Node {
	for {
		conv, ok := n.(*expr.Convert)
		if !ok || !conv.Widening() {
			return n
		}

		n = conv.X()
	}
}

func stepOf(m *expr.Member) Step {
	field := m.Field()

	return Step{
		Name:     field.Name,
		Owner:    m.Owner(),
		Type:     field.Type,
		Index:    field.Index,
		ReadOnly: field.Tag.Get(AccessTag) == ReadOnly,
	}
}
