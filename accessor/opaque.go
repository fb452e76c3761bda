package accessor

import (
	"cmp"
	"fmt"
	"go/token"
	"reflect"

	"accessor-compiler/expr"
)

// Eval evaluates a compiled expression against a root value.
type Eval func(root any) (any, error)

type evalFn func(root reflect.Value) (reflect.Value, error)

// CompileOpaque compiles the whole body of l, whatever its shape, into an
// evaluation closure. Nil pointers met by member reads or method receivers
// fail with *NullIntermediateError.
func CompileOpaque(l *expr.Lambda) (Eval, error) {
	c := &compiler{expr: l.String()}

	fn, err := c.compile(l.Body())
	if err != nil {
		return nil, err
	}

	rootType := l.Root()

	return func(root any) (any, error) {
		v, err := rootValue(rootType, root)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.expr, err)
		}

		out, err := fn(v)
		if err != nil {
			return nil, err
		}

		return out.Interface(), nil
	}, nil
}

type compiler struct {
	expr string
}

func (c *compiler) compile(n expr.Node) (evalFn, error) {
	switch n := n.(type) {
	case *expr.Param:
		return func(root reflect.Value) (reflect.Value, error) { return root, nil }, nil
	case *expr.Const:
		v := n.Value()

		return func(reflect.Value) (reflect.Value, error) { return v, nil }, nil
	case *expr.Member:
		return c.member(n)
	case *expr.Convert:
		return c.convert(n)
	case *expr.Call:
		return c.call(n)
	case *expr.MethodCall:
		return c.methodCall(n)
	case *expr.Unary:
		return c.unary(n)
	case *expr.Binary:
		return c.binary(n)
	case *expr.Cond:
		return c.cond(n)
	default:
		return nil, fmt.Errorf("%w: %T", expr.ErrUnsupportedSyntax, n)
	}
}

func (c *compiler) compileAll(nodes []expr.Node) ([]evalFn, error) {
	fns := make([]evalFn, len(nodes))

	for i, n := range nodes {
		fn, err := c.compile(n)
		if err != nil {
			return nil, err
		}

		fns[i] = fn
	}

	return fns, nil
}

func evalAll(fns []evalFn, root reflect.Value) ([]reflect.Value, error) {
	out := make([]reflect.Value, len(fns))

	for i, fn := range fns {
		v, err := fn(root)
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

func (c *compiler) member(n *expr.Member) (evalFn, error) {
	x, err := c.compile(n.X())
	if err != nil {
		return nil, err
	}

	index := n.Field().Index
	depth := memberDepth(n)

	return func(root reflect.Value) (reflect.Value, error) {
		v, err := x(root)
		if err != nil {
			return reflect.Value{}, err
		}

		f, embedded, ok := selectField(v, index)
		if !ok {
			return reflect.Value{}, nullAt(c.expr, depth, n.Name(), n.X().String(), embedded)
		}

		return f, nil
	}, nil
}

// memberDepth counts the member reads below m.
func memberDepth(m *expr.Member) int {
	depth := 0

	for n := m.X(); ; depth++ {
		next, ok := n.(*expr.Member)
		if !ok {
			return depth
		}

		n = next.X()
	}
}

func (c *compiler) convert(n *expr.Convert) (evalFn, error) {
	x, err := c.compile(n.X())
	if err != nil {
		return nil, err
	}

	to := n.Type()

	return func(root reflect.Value) (reflect.Value, error) {
		v, err := x(root)
		if err != nil {
			return reflect.Value{}, err
		}

		return v.Convert(to), nil
	}, nil
}

func (c *compiler) call(n *expr.Call) (evalFn, error) {
	args, err := c.compileAll(n.Args())
	if err != nil {
		return nil, err
	}

	fn, sig, name := n.Func(), n.Sig(), n.Name()

	return func(root reflect.Value) (reflect.Value, error) {
		in, err := evalAll(args, root)
		if err != nil {
			return reflect.Value{}, err
		}

		return c.results(name, sig, fn.Call(in))
	}, nil
}

func (c *compiler) methodCall(n *expr.MethodCall) (evalFn, error) {
	recv, err := c.compile(n.X())
	if err != nil {
		return nil, err
	}

	args, err := c.compileAll(n.Args())
	if err != nil {
		return nil, err
	}

	index, sig, name, addr := n.Method().Index, n.Sig(), n.Name(), n.NeedsAddr()

	depth := 0
	if m, ok := n.X().(*expr.Member); ok {
		depth = memberDepth(m) + 1
	}

	return func(root reflect.Value) (reflect.Value, error) {
		r, err := recv(root)
		if err != nil {
			return reflect.Value{}, err
		}

		if (r.Kind() == reflect.Pointer || r.Kind() == reflect.Interface) && r.IsNil() {
			return reflect.Value{}, nullAt(c.expr, depth, name, n.X().String(), "")
		}

		if addr {
			if r.CanAddr() {
				r = r.Addr()
			} else {
				// non-addressable receivers are called on a copy
				p := reflect.New(r.Type())
				p.Elem().Set(r)
				r = p
			}
		}

		in, err := evalAll(args, root)
		if err != nil {
			return reflect.Value{}, err
		}

		return c.results(name, sig, r.Method(index).Call(in))
	}, nil
}

func (c *compiler) results(name string, sig expr.FuncSig, out []reflect.Value) (reflect.Value, error) {
	if sig.HasErr {
		if errVal := out[len(out)-1]; !errVal.IsNil() {
			return reflect.Value{}, fmt.Errorf("%s: %s: %w", c.expr, name, errVal.Interface().(error))
		}
	}

	if sig.HasBool && !out[1].Bool() {
		return reflect.Value{}, fmt.Errorf("%s: %w: %s", c.expr, ErrMissingValue, name)
	}

	return out[0], nil
}

func (c *compiler) unary(n *expr.Unary) (evalFn, error) {
	x, err := c.compile(n.X())
	if err != nil {
		return nil, err
	}

	op, t := n.Op(), n.Type()

	return func(root reflect.Value) (reflect.Value, error) {
		v, err := x(root)
		if err != nil {
			return reflect.Value{}, err
		}

		out := reflect.New(t).Elem()

		switch {
		case op == token.NOT:
			out.SetBool(!v.Bool())
		case v.CanInt():
			out.SetInt(-v.Int())
		case v.CanUint():
			out.SetUint(-v.Uint())
		case v.CanFloat():
			out.SetFloat(-v.Float())
		}

		return out, nil
	}, nil
}

func (c *compiler) binary(n *expr.Binary) (evalFn, error) {
	x, err := c.compile(n.X())
	if err != nil {
		return nil, err
	}

	y, err := c.compile(n.Y())
	if err != nil {
		return nil, err
	}

	op := n.Op()

	if op == token.LAND || op == token.LOR {
		return func(root reflect.Value) (reflect.Value, error) {
			l, err := x(root)
			if err != nil {
				return reflect.Value{}, err
			}

			// short circuit
			if l.Bool() == (op == token.LOR) {
				return l, nil
			}

			return y(root)
		}, nil
	}

	return func(root reflect.Value) (reflect.Value, error) {
		l, err := x(root)
		if err != nil {
			return reflect.Value{}, err
		}

		r, err := y(root)
		if err != nil {
			return reflect.Value{}, err
		}

		switch op {
		case token.EQL:
			return reflect.ValueOf(l.Equal(r)), nil
		case token.NEQ:
			return reflect.ValueOf(!l.Equal(r)), nil
		case token.LSS:
			return reflect.ValueOf(compare(l, r) < 0), nil
		case token.LEQ:
			return reflect.ValueOf(compare(l, r) <= 0), nil
		case token.GTR:
			return reflect.ValueOf(compare(l, r) > 0), nil
		case token.GEQ:
			return reflect.ValueOf(compare(l, r) >= 0), nil
		default:
			v, err := arith(op, l, r)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%s: %w", c.expr, err)
			}

			return v, nil
		}
	}, nil
}

func compare(x, y reflect.Value) int {
	switch {
	case x.CanInt():
		return cmp.Compare(x.Int(), y.Int())
	case x.CanUint():
		return cmp.Compare(x.Uint(), y.Uint())
	case x.CanFloat():
		return cmp.Compare(x.Float(), y.Float())
	default:
		return cmp.Compare(x.String(), y.String())
	}
}

func arith(op token.Token, x, y reflect.Value) (reflect.Value, error) {
	out := reflect.New(x.Type()).Elem()

	switch {
	case x.CanInt():
		a, b := x.Int(), y.Int()
		if (op == token.QUO || op == token.REM) && b == 0 {
			return reflect.Value{}, ErrDivisionByZero
		}

		switch op {
		case token.ADD:
			out.SetInt(a + b)
		case token.SUB:
			out.SetInt(a - b)
		case token.MUL:
			out.SetInt(a * b)
		case token.QUO:
			out.SetInt(a / b)
		case token.REM:
			out.SetInt(a % b)
		}
	case x.CanUint():
		a, b := x.Uint(), y.Uint()
		if (op == token.QUO || op == token.REM) && b == 0 {
			return reflect.Value{}, ErrDivisionByZero
		}

		switch op {
		case token.ADD:
			out.SetUint(a + b)
		case token.SUB:
			out.SetUint(a - b)
		case token.MUL:
			out.SetUint(a * b)
		case token.QUO:
			out.SetUint(a / b)
		case token.REM:
			out.SetUint(a % b)
		}
	case x.CanFloat():
		a, b := x.Float(), y.Float()

		switch op {
		case token.ADD:
			out.SetFloat(a + b)
		case token.SUB:
			out.SetFloat(a - b)
		case token.MUL:
			out.SetFloat(a * b)
		case token.QUO:
			out.SetFloat(a / b)
		}
	default:
		out.SetString(x.String() + y.String())
	}

	return out, nil
}

func (c *compiler) cond(n *expr.Cond) (evalFn, error) {
	fns, err := c.compileAll([]expr.Node{n.Cond(), n.Then(), n.Else()})
	if err != nil {
		return nil, err
	}

	return func(root reflect.Value) (reflect.Value, error) {
		ok, err := fns[0](root)
		if err != nil {
			return reflect.Value{}, err
		}

		if ok.Bool() {
			return fns[1](root)
		}

		return fns[2](root)
	}, nil
}
