package expr

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"maps"
	"reflect"
	"strconv"
	"strings"
)

// DefaultParam is the parameter identifier used when none is configured.
const DefaultParam = "x"

// FuncMap registers the functions callable from parsed expressions, keyed
// by the name used in source ("fmt.Sprint", "strings.ToUpper", "title").
type FuncMap map[string]any

var defaultFuncs = FuncMap{
	"fmt.Sprint":         fmt.Sprint,
	"fmt.Sprintf":        fmt.Sprintf,
	"strings.Join":       strings.Join,
	"strings.Split":      strings.Split,
	"strings.ToUpper":    strings.ToUpper,
	"strings.ToLower":    strings.ToLower,
	"strings.TrimSpace":  strings.TrimSpace,
	"strings.Repeat":     strings.Repeat,
	"strings.Contains":   strings.Contains,
	"strings.HasPrefix":  strings.HasPrefix,
	"strconv.Itoa":       strconv.Itoa,
	"strconv.Quote":      strconv.Quote,
	"strconv.FormatInt":  strconv.FormatInt,
	"strconv.FormatBool": strconv.FormatBool,
}

// DefaultFuncs returns a copy of the functions available to every parsed
// expression.
func DefaultFuncs() FuncMap {
	return maps.Clone(defaultFuncs)
}

var predeclared = map[string]reflect.Type{
	"any":     anyType,
	"bool":    boolType,
	"string":  reflect.TypeFor[string](),
	"int":     reflect.TypeFor[int](),
	"int8":    reflect.TypeFor[int8](),
	"int16":   reflect.TypeFor[int16](),
	"int32":   reflect.TypeFor[int32](),
	"int64":   reflect.TypeFor[int64](),
	"uint":    reflect.TypeFor[uint](),
	"uint8":   reflect.TypeFor[uint8](),
	"uint16":  reflect.TypeFor[uint16](),
	"uint32":  reflect.TypeFor[uint32](),
	"uint64":  reflect.TypeFor[uint64](),
	"float32": reflect.TypeFor[float32](),
	"float64": reflect.TypeFor[float64](),
	"byte":    reflect.TypeFor[byte](),
	"rune":    reflect.TypeFor[rune](),
}

// Option configures Parse.
type Option func(*parseConfig)

type parseConfig struct {
	param string
	funcs FuncMap
}

// WithParam sets the identifier naming the parameter in source.
func WithParam(name string) Option {
	return func(c *parseConfig) {
		c.param = name
	}
}

// WithFuncs registers additional functions, overriding defaults of the
// same name.
func WithFuncs(funcs FuncMap) Option {
	return func(c *parseConfig) {
		maps.Copy(c.funcs, funcs)
	}
}

// Parse parses src, a Go expression over one parameter of type root, and
// types it against root.
func Parse(root reflect.Type, src string, opts ...Option) (*Lambda, error) {
	cfg := parseConfig{param: DefaultParam, funcs: DefaultFuncs()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !token.IsIdentifier(cfg.param) {
		return nil, fmt.Errorf("invalid parameter name %q", cfg.param)
	}

	tree, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", src, err)
	}

	p := &exprParser{
		cfg:   cfg,
		param: NewParam(cfg.param, root),
	}

	body, err := p.node(tree)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", src, err)
	}

	return &Lambda{param: p.param, body: body}, nil
}

type exprParser struct {
	cfg   parseConfig
	param *Param
}

func (p *exprParser) node(e ast.Expr) (Node, error) {
	switch e := e.(type) {
	case *ast.ParenExpr:
		return p.node(e.X)

	case *ast.Ident:
		return p.ident(e)

	case *ast.BasicLit:
		return literal(e)

	case *ast.SelectorExpr:
		x, err := p.node(e.X)
		if err != nil {
			return nil, err
		}

		return NewMember(x, e.Sel.Name)

	case *ast.CallExpr:
		return p.call(e)

	case *ast.UnaryExpr:
		x, err := p.node(e.X)
		if err != nil {
			return nil, err
		}

		if e.Op == token.ADD && isNumeric(x.Type()) {
			return x, nil
		}

		return NewUnary(e.Op, x)

	case *ast.BinaryExpr:
		x, err := p.node(e.X)
		if err != nil {
			return nil, err
		}

		y, err := p.node(e.Y)
		if err != nil {
			return nil, err
		}

		return NewBinary(e.Op, x, y)

	default:
		return nil, fmt.Errorf("%w: %T at offset %d", ErrUnsupportedSyntax, e, e.Pos()-1)
	}
}

func (p *exprParser) ident(e *ast.Ident) (Node, error) {
	switch e.Name {
	case p.param.name:
		return p.param, nil
	case "true":
		return untypedConst(true), nil
	case "false":
		return untypedConst(false), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownIdent, e.Name)
	}
}

func literal(e *ast.BasicLit) (Node, error) {
	switch e.Kind {
	case token.INT:
		n, err := strconv.ParseInt(e.Value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("integer literal %s: %w", e.Value, err)
		}

		return untypedConst(int(n)), nil
	case token.FLOAT:
		f, err := strconv.ParseFloat(e.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("float literal %s: %w", e.Value, err)
		}

		return untypedConst(f), nil
	case token.CHAR:
		r, _, _, err := strconv.UnquoteChar(e.Value[1:len(e.Value)-1], '\'')
		if err != nil {
			return nil, fmt.Errorf("rune literal %s: %w", e.Value, err)
		}

		return untypedConst(r), nil
	case token.STRING:
		s, err := strconv.Unquote(e.Value)
		if err != nil {
			return nil, fmt.Errorf("string literal %s: %w", e.Value, err)
		}

		return untypedConst(s), nil
	default:
		return nil, fmt.Errorf("%w: %s literal", ErrUnsupportedSyntax, e.Kind)
	}
}

func (p *exprParser) call(e *ast.CallExpr) (Node, error) {
	if e.Ellipsis.IsValid() {
		return nil, fmt.Errorf("%w: variadic spread at offset %d", ErrUnsupportedSyntax, e.Ellipsis-1)
	}

	args := make([]Node, len(e.Args))
	for i, a := range e.Args {
		n, err := p.node(a)
		if err != nil {
			return nil, err
		}

		args[i] = n
	}

	switch fun := e.Fun.(type) {
	case *ast.ParenExpr:
		return p.call(&ast.CallExpr{Fun: fun.X, Args: e.Args})

	case *ast.Ident:
		if fun.Name != p.param.name {
			if to, ok := predeclared[fun.Name]; ok {
				return conversion(fun.Name, to, args)
			}

			if fn, ok := p.cfg.funcs[fun.Name]; ok {
				return NewCall(fun.Name, fn, args...)
			}
		}

		return nil, fmt.Errorf("%w: %s", ErrUnknownFunc, fun.Name)

	case *ast.SelectorExpr:
		// pkg.Func resolves against the registry unless pkg is the parameter
		if pkg, ok := fun.X.(*ast.Ident); ok && pkg.Name != p.param.name {
			name := pkg.Name + "." + fun.Sel.Name
			if fn, ok := p.cfg.funcs[name]; ok {
				return NewCall(name, fn, args...)
			}

			return nil, fmt.Errorf("%w: %s", ErrUnknownFunc, name)
		}

		recv, err := p.node(fun.X)
		if err != nil {
			return nil, err
		}

		return NewMethodCall(recv, fun.Sel.Name, args...)

	default:
		return nil, fmt.Errorf("%w: call of %T", ErrUnsupportedSyntax, fun)
	}
}

func conversion(name string, to reflect.Type, args []Node) (Node, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: conversion to %s takes one argument", ErrTypeMismatch, name)
	}

	// constant conversions such as int64(5) only retype the literal
	if c, ok := args[0].(*Const); ok && c.untyped && c.fits(to) {
		return c.as(to), nil
	}

	return NewConvert(args[0], to)
}
