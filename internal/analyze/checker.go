package analyze

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"reflect"
	"slices"
	"strings"
	"sync"

	"golang.org/x/tools/go/packages"

	"accessor-compiler/accessor"
	"accessor-compiler/expr"
	"accessor-compiler/internal/match"
)

var (
	ErrTypeCheck = errors.New("expression does not type-check")
	ErrNotAValue = errors.New("expression is not a value")
)

const (
	checkPkg       = "bindcheck"
	maxSuggestions = 3
)

// CheckError reports an expression rejected by the static checker.
type CheckError struct {
	Expr        string
	Err         error
	Suggestions []string
}

func (e *CheckError) Error() string {
	msg := fmt.Sprintf("check %q: %v", e.Expr, e.Err)
	if len(e.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(e.Suggestions, ", ") + "?)"
	}

	return msg
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// Guard is an operand that must not be nil before a chain step is read.
type Guard struct {
	Expr   string // "x.Address"
	Index  int    // step read through Expr
	Member string // member of that step, "City"
}

// Binding is the static shape of a checked expression. The root is always
// a pointer to the entity type.
type Binding struct {
	Entity   TypeID
	Param    string
	Expr     string
	Kind     accessor.ClassKind
	Path     []string   // member names root to leaf, pure chains only
	Type     types.Type // leaf type of a chain, result type otherwise
	Writable bool
	Guards   []Guard
}

// Name returns the property name: the member names concatenated.
func (b *Binding) Name() string {
	return strings.Join(b.Path, "")
}

// Property reports whether the binding can be bound strictly.
func (b *Binding) Property() bool {
	return b.Kind == accessor.PureChain && len(b.Path) > 0
}

// Textual reports whether the value is exactly of type string.
func (b *Binding) Textual() bool {
	return types.Identical(b.Type, types.Typ[types.String])
}

// Chain returns the member chain in source form, "x.Address.City".
func (b *Binding) Chain() string {
	return strings.Join(append([]string{b.Param}, b.Path...), ".")
}

// Checker type-checks binding expressions against loaded entity packages.
// It accepts the same expressions as expr.Parse with the default functions.
// Checker is safe for concurrent use once the packages are loaded.
type Checker struct {
	analyzer *Analyzer
	funcs    expr.FuncMap
	funcPkgs []string

	once    sync.Once
	loadErr error
	stdlib  map[string]*types.Package
}

// NewChecker creates a Checker over the packages loaded by a.
func NewChecker(a *Analyzer) *Checker {
	funcs := expr.DefaultFuncs()

	var pkgs []string

	for name := range funcs {
		if pkg, _, ok := strings.Cut(name, "."); ok && !slices.Contains(pkgs, pkg) {
			pkgs = append(pkgs, pkg)
		}
	}

	slices.Sort(pkgs)

	return &Checker{
		analyzer: a,
		funcs:    funcs,
		funcPkgs: pkgs,
		stdlib:   make(map[string]*types.Package),
	}
}

// Check parses src as the body of func(param *T) where T is the entity
// type id, type-checks it and classifies it.
func (c *Checker) Check(id TypeID, src, param string) (*Binding, error) {
	if err := c.loadFuncPackages(); err != nil {
		return nil, err
	}

	pkg, ok := c.analyzer.Package(id.PkgPath)
	if !ok {
		return nil, fmt.Errorf("%w: package %s is not loaded", ErrTypeNotFound, id.PkgPath)
	}

	if _, ok := pkg.Types.Scope().Lookup(id.Name).(*types.TypeName); !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, id)
	}

	if !token.IsIdentifier(param) || param == "_" {
		return nil, fmt.Errorf("%w: invalid parameter name %q", ErrTypeCheck, param)
	}

	fset := token.NewFileSet()

	e, err := parser.ParseExprFrom(fset, "binding", src, 0)
	if err != nil {
		return nil, &CheckError{Expr: src, Err: fmt.Errorf("%w: %w", ErrTypeCheck, err)}
	}

	if err := supported(e); err != nil {
		return nil, &CheckError{Expr: src, Err: err}
	}

	alias := pkg.Name
	if alias == param || slices.Contains(c.funcPkgs, alias) {
		alias = "entity"
	}

	file, fn, err := c.synthesize(fset, e, id, alias, param)
	if err != nil {
		return nil, err
	}

	info := &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
	}

	conf := types.Config{Importer: c.importer(pkg.Types)}
	if _, err := conf.Check(checkPkg, fset, []*ast.File{file}, info); err != nil {
		msg := err.Error()

		var typeErr types.Error
		if errors.As(err, &typeErr) {
			msg = typeErr.Msg
		}

		return nil, &CheckError{
			Expr:        src,
			Err:         fmt.Errorf("%w: %s", ErrTypeCheck, msg),
			Suggestions: suggest(e, info),
		}
	}

	tv := info.Types[e]
	if tv.Type == nil || tv.IsType() || tv.IsVoid() {
		return nil, &CheckError{Expr: src, Err: ErrNotAValue}
	}

	if err := c.checkCalls(e, info); err != nil {
		return nil, &CheckError{Expr: src, Err: err}
	}

	paramVar := info.Defs[fn.Type.Params.List[0].Names[0]]

	b := &Binding{
		Entity: id,
		Param:  param,
		Expr:   src,
		Kind:   accessor.Opaque,
		Type:   types.Default(tv.Type),
	}

	sels, ok := chainOf(e, info, paramVar)
	if !ok {
		return b, nil
	}

	b.Kind = accessor.PureChain
	if len(sels) == 0 {
		return b, nil
	}

	c.describeChain(b, sels)

	return b, nil
}

// describeChain fills the pure chain details of b from its field selections.
func (c *Checker) describeChain(b *Binding, sels []*types.Selection) {
	for _, sel := range sels {
		b.Path = append(b.Path, sel.Obj().Name())
	}

	leaf := sels[len(sels)-1]
	b.Type = leaf.Type()
	b.Writable = reflect.StructTag(fieldTag(leaf)).Get(accessor.AccessTag) != accessor.ReadOnly

	operand := b.Param
	b.Guards = append(b.Guards, Guard{Expr: operand, Index: 0, Member: b.Path[0]})

	for i, sel := range sels {
		cur := operand
		for _, f := range embeddedFields(sel) {
			cur += "." + f.Name()
			if isPointer(f.Type()) {
				b.Guards = append(b.Guards, Guard{Expr: cur, Index: i, Member: b.Path[i]})
			}
		}

		operand += "." + b.Path[i]

		if i < len(sels)-1 && isPointer(sel.Type()) {
			b.Guards = append(b.Guards, Guard{Expr: operand, Index: i + 1, Member: b.Path[i+1]})
		}
	}
}

// synthesize builds a file declaring func _(param *alias.T) { _ = e }.
func (c *Checker) synthesize(fset *token.FileSet, e ast.Expr, id TypeID, alias, param string) (*ast.File, *ast.FuncDecl, error) {
	var src strings.Builder

	fmt.Fprintf(&src, "package %s\n\nimport %s %q\n", checkPkg, alias, id.PkgPath)

	for _, name := range c.usedFuncPkgs(e, param) {
		fmt.Fprintf(&src, "import %q\n", name)
	}

	fmt.Fprintf(&src, "\nfunc _(%s *%s.%s) {\n\t_ = 0\n}\n", param, alias, id.Name)

	file, err := parser.ParseFile(fset, checkPkg+".go", src.String(), 0)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrTypeCheck, err)
	}

	fn := file.Decls[len(file.Decls)-1].(*ast.FuncDecl)
	fn.Body.List[0].(*ast.AssignStmt).Rhs[0] = e

	return file, fn, nil
}

// usedFuncPkgs returns the function packages e refers to.
func (c *Checker) usedFuncPkgs(e ast.Expr, param string) []string {
	var used []string

	ast.Inspect(e, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}

		if id, ok := sel.X.(*ast.Ident); ok && id.Name != param &&
			slices.Contains(c.funcPkgs, id.Name) && !slices.Contains(used, id.Name) {
			used = append(used, id.Name)
		}

		return true
	})

	return used
}

func (c *Checker) loadFuncPackages() error {
	c.once.Do(func() {
		cfg := &packages.Config{
			Mode: packages.NeedName | packages.NeedTypes,
			Dir:  c.analyzer.dir,
		}

		pkgs, err := packages.Load(cfg, c.funcPkgs...)
		if err != nil {
			c.loadErr = fmt.Errorf("failed to load function packages: %w", err)

			return
		}

		for _, pkg := range pkgs {
			c.stdlib[pkg.PkgPath] = pkg.Types
		}
	})

	return c.loadErr
}

type importerFunc func(path string) (*types.Package, error)

func (f importerFunc) Import(path string) (*types.Package, error) {
	return f(path)
}

func (c *Checker) importer(entity *types.Package) types.Importer {
	return importerFunc(func(path string) (*types.Package, error) {
		if path == entity.Path() {
			return entity, nil
		}

		if pkg, ok := c.stdlib[path]; ok {
			return pkg, nil
		}

		return nil, fmt.Errorf("package %s is not available to bindings", path)
	})
}

// supported rejects syntax the runtime parser does not accept.
func supported(e ast.Expr) error {
	var err error

	ast.Inspect(e, func(n ast.Node) bool {
		if err != nil {
			return false
		}

		switch n.(type) {
		case nil, *ast.ParenExpr, *ast.Ident, *ast.BasicLit, *ast.SelectorExpr,
			*ast.CallExpr, *ast.UnaryExpr, *ast.BinaryExpr:
			return true
		default:
			err = fmt.Errorf("%w: %T at offset %d", expr.ErrUnsupportedSyntax, n, n.Pos()-1)

			return false
		}
	})

	return err
}

// checkCalls rejects calls the runtime cannot perform: conversions to
// non-predeclared types, unregistered functions and builtins.
func (c *Checker) checkCalls(e ast.Expr, info *types.Info) error {
	var err error

	ast.Inspect(e, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || err != nil {
			return err == nil
		}

		if call.Ellipsis.IsValid() {
			err = fmt.Errorf("%w: variadic spread", expr.ErrUnsupportedSyntax)

			return false
		}

		switch fun := ast.Unparen(call.Fun).(type) {
		case *ast.Ident:
			obj := info.Uses[fun]
			if _, isType := obj.(*types.TypeName); isType && obj.Parent() == types.Universe {
				return true
			}

			if _, ok := c.funcs[fun.Name]; !ok {
				err = fmt.Errorf("%w: %s", expr.ErrUnknownFunc, fun.Name)
			}

		case *ast.SelectorExpr:
			if sel, ok := info.Selections[fun]; ok && sel.Kind() == types.MethodVal {
				return true
			}

			if pkg, ok := fun.X.(*ast.Ident); ok {
				if _, ok := c.funcs[pkg.Name+"."+fun.Sel.Name]; ok {
					return true
				}

				err = fmt.Errorf("%w: %s.%s", expr.ErrUnknownFunc, pkg.Name, fun.Sel.Name)
			} else {
				err = fmt.Errorf("%w: call of %s", expr.ErrUnsupportedSyntax, types.ExprString(fun))
			}

		default:
			err = fmt.Errorf("%w: call of %s", expr.ErrUnsupportedSyntax, types.ExprString(fun))
		}

		return err == nil
	})

	return err
}

// chainOf returns the field selections of e from the parameter to the
// leaf, when e is a pure member chain. Widening conversions are skipped.
func chainOf(e ast.Expr, info *types.Info, param types.Object) ([]*types.Selection, bool) {
	var sels []*types.Selection

	for {
		e = unwrap(e, info)

		switch n := e.(type) {
		case *ast.Ident:
			if info.Uses[n] != param {
				return nil, false
			}

			slices.Reverse(sels)

			return sels, true

		case *ast.SelectorExpr:
			sel, ok := info.Selections[n]
			if !ok || sel.Kind() != types.FieldVal {
				return nil, false
			}

			sels = append(sels, sel)
			e = n.X

		default:
			return nil, false
		}
	}
}

// unwrap strips parentheses and conversions that do not change the value.
func unwrap(e ast.Expr, info *types.Info) ast.Expr {
	for {
		e = ast.Unparen(e)

		call, ok := e.(*ast.CallExpr)
		if !ok || len(call.Args) != 1 || !info.Types[call.Fun].IsType() {
			return e
		}

		to := info.Types[call.Fun].Type
		from := info.Types[call.Args[0]].Type

		if !types.Identical(to, from) && !(types.IsInterface(to) && types.AssignableTo(from, to)) {
			return e
		}

		e = call.Args[0]
	}
}

// embeddedFields returns the embedded fields a promoted selection crosses
// before its field.
func embeddedFields(sel *types.Selection) []*types.Var {
	var out []*types.Var

	t := sel.Recv()
	index := sel.Index()

	for _, i := range index[:len(index)-1] {
		f := structOfType(t).Field(i)
		out = append(out, f)
		t = f.Type()
	}

	return out
}

func fieldTag(sel *types.Selection) string {
	t := sel.Recv()
	index := sel.Index()

	for _, i := range index[:len(index)-1] {
		t = structOfType(t).Field(i).Type()
	}

	return structOfType(t).Tag(index[len(index)-1])
}

func structOfType(t types.Type) *types.Struct {
	if p, ok := t.Underlying().(*types.Pointer); ok {
		t = p.Elem()
	}

	st, _ := t.Underlying().(*types.Struct)

	return st
}

func isPointer(t types.Type) bool {
	_, ok := t.Underlying().(*types.Pointer)

	return ok
}

// suggest proposes member names for the first selector the checker could
// not resolve.
func suggest(e ast.Expr, info *types.Info) []string {
	var out []string

	ast.Inspect(e, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok || out != nil {
			return out == nil
		}

		if _, ok := info.Selections[sel]; ok {
			return true
		}

		tv, ok := info.Types[sel.X]
		if !ok || tv.Type == nil || tv.IsType() {
			return true
		}

		out = match.Suggest(sel.Sel.Name, memberNames(tv.Type), maxSuggestions)

		return false
	})

	return out
}

func memberNames(t types.Type) []string {
	var names []string

	if st := structOfType(t); st != nil {
		for f := range st.Fields() {
			if f.Exported() {
				names = append(names, f.Name())
			}
		}
	}

	mset := types.NewMethodSet(t)
	if !isPointer(t) && !types.IsInterface(t) {
		mset = types.NewMethodSet(types.NewPointer(t))
	}

	for m := range mset.Methods() {
		if m.Obj().Exported() {
			names = append(names, m.Obj().Name())
		}
	}

	return names
}
