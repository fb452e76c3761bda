package expr

import (
	"fmt"
	"reflect"
	"strings"
)

var errorType = reflect.TypeFor[error]()

// FuncSig describes a function usable in a Call or MethodCall node.
//
// Supported result shapes:
//   - func(...) V
//   - func(...) (V, bool)
//   - func(...) (V, error)
//   - func(...) (V, bool, error)
//
// A false bool result is reported as a missing value at evaluation time.
type FuncSig struct {
	In       []reflect.Type
	Out      reflect.Type
	Variadic bool
	HasBool  bool
	HasErr   bool
}

// ParseFunc inspects fn and returns its signature.
func ParseFunc(fn any) (reflect.Value, FuncSig, error) {
	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() || fnVal.Kind() != reflect.Func {
		return reflect.Value{}, FuncSig{}, ErrNotAFunction
	}

	if fnVal.IsNil() {
		return reflect.Value{}, FuncSig{}, ErrNotAFunction
	}

	sig, err := sigOf(fnVal.Type(), 0)
	if err != nil {
		return reflect.Value{}, FuncSig{}, err
	}

	return fnVal, sig, nil
}

// sigOf reads the signature of fnType, ignoring the first skip inputs
// (the receiver of a method expression).
func sigOf(fnType reflect.Type, skip int) (FuncSig, error) {
	sig := FuncSig{Variadic: fnType.IsVariadic()}
	for i := skip; i < fnType.NumIn(); i++ {
		sig.In = append(sig.In, fnType.In(i))
	}

	switch fnType.NumOut() {
	default:
		return FuncSig{}, ErrBadSignature

	case 1:

	case 2:
		last := fnType.Out(1)

		switch {
		default:
			return FuncSig{}, ErrBadSignature
		case last.Kind() == reflect.Bool:
			sig.HasBool = true
		case last == errorType:
			sig.HasErr = true
		}

	case 3:
		if fnType.Out(1).Kind() != reflect.Bool || fnType.Out(2) != errorType {
			return FuncSig{}, ErrBadSignature
		}

		sig.HasBool = true
		sig.HasErr = true
	}

	sig.Out = fnType.Out(0)

	return sig, nil
}

// bindArgs checks args against the signature and materializes untyped
// constants in the parameter types.
func (s FuncSig) bindArgs(name string, args []Node) ([]Node, error) {
	fixed := len(s.In)
	if s.Variadic {
		fixed--
	}

	if len(args) < fixed || (!s.Variadic && len(args) > fixed) {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", ErrTypeMismatch, name, len(s.In), len(args))
	}

	out := make([]Node, len(args))

	for i, arg := range args {
		want := s.In[min(i, len(s.In)-1)]
		if s.Variadic && i >= fixed {
			want = s.In[len(s.In)-1].Elem()
		}

		bound, err := assignTo(arg, want)
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i+1, name, err)
		}

		out[i] = bound
	}

	return out, nil
}

// Call invokes a registered function.
type Call struct {
	name string
	fn   reflect.Value
	sig  FuncSig
	args []Node
}

// NewCall calls fn, registered under name, with args.
func NewCall(name string, fn any, args ...Node) (*Call, error) {
	fnVal, sig, err := ParseFunc(fn)
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", name, err)
	}

	bound, err := sig.bindArgs(name, args)
	if err != nil {
		return nil, err
	}

	return &Call{name: name, fn: fnVal, sig: sig, args: bound}, nil
}

func (c *Call) Name() string        { return c.name }
func (c *Call) Func() reflect.Value { return c.fn }
func (c *Call) Sig() FuncSig        { return c.sig }
func (c *Call) Args() []Node        { return c.args }
func (c *Call) Type() reflect.Type  { return c.sig.Out }
func (c *Call) String() string      { return c.name + "(" + joinNodes(c.args) + ")" }
func (c *Call) children() []Node    { return c.args }

// MethodCall invokes a method of its receiver operand.
type MethodCall struct {
	x      Node
	method reflect.Method
	sig    FuncSig
	addr   bool
	args   []Node
}

// NewMethodCall calls the exported method name of x with args. Methods
// with pointer receivers are allowed on struct values; the receiver must
// then be addressable when the call is evaluated.
func NewMethodCall(x Node, name string, args ...Node) (*MethodCall, error) {
	recv := x.Type()

	method, ok := recv.MethodByName(name)
	addr := false

	if !ok && recv.Kind() != reflect.Pointer && recv.Kind() != reflect.Interface {
		method, ok = reflect.PointerTo(recv).MethodByName(name)
		addr = ok
	}

	if !ok {
		return nil, &MemberError{Type: recv, Name: name, Err: ErrUnknownMember}
	}

	// method expressions of concrete types take the receiver first
	skip := 1
	if recv.Kind() == reflect.Interface {
		skip = 0
	}

	sig, err := sigOf(method.Type, skip)
	if err != nil {
		return nil, fmt.Errorf("method %s.%s: %w", typeName(recv), name, err)
	}

	bound, err := sig.bindArgs(name, args)
	if err != nil {
		return nil, err
	}

	return &MethodCall{x: x, method: method, sig: sig, addr: addr, args: bound}, nil
}

// X returns the receiver operand.
func (m *MethodCall) X() Node { return m.x }

// Method returns the method as found in the receiver's method set.
func (m *MethodCall) Method() reflect.Method { return m.method }

// NeedsAddr reports whether the method has a pointer receiver while the
// operand is a struct value.
func (m *MethodCall) NeedsAddr() bool { return m.addr }

func (m *MethodCall) Name() string       { return m.method.Name }
func (m *MethodCall) Sig() FuncSig       { return m.sig }
func (m *MethodCall) Args() []Node       { return m.args }
func (m *MethodCall) Type() reflect.Type { return m.sig.Out }
func (m *MethodCall) children() []Node   { return append([]Node{m.x}, m.args...) }

func (m *MethodCall) String() string {
	return m.x.String() + "." + m.method.Name + "(" + joinNodes(m.args) + ")"
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}

	return strings.Join(parts, ", ")
}
