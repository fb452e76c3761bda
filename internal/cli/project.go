package cli

import (
	"context"
	"errors"
	"fmt"
	"go/types"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"accessor-compiler/expr"
	"accessor-compiler/internal/analyze"
	"accessor-compiler/internal/diagnostic"
	"accessor-compiler/internal/gen"
	"accessor-compiler/internal/mapping"
)

// ErrCheckFailed is returned when a check reports errors.
var ErrCheckFailed = errors.New("bindings have errors")

// Project is a bindings file together with its loaded entity packages.
type Project struct {
	File  *mapping.BindingsFile
	Graph *analyze.TypeGraph

	analyzer *analyze.Analyzer
	log      *zap.Logger
}

// LoadProject reads the bindings file named by cfg and loads its package.
func LoadProject(cfg *Config, log *zap.Logger) (*Project, error) {
	bf, err := mapping.LoadFile(cfg.Bindings)
	if err != nil {
		return nil, err
	}

	analyzer, graph, err := loadPackages(cfg.Dir, bf.Package)
	if err != nil {
		return nil, err
	}

	log.Debug("packages loaded",
		zap.String("bindings", cfg.Bindings),
		zap.String("package", bf.Package),
		zap.Int("types", len(graph.Types)))

	return &Project{File: bf, Graph: graph, analyzer: analyzer, log: log}, nil
}

func loadPackages(dir string, patterns ...string) (*analyze.Analyzer, *analyze.TypeGraph, error) {
	analyzer := analyze.NewAnalyzer()
	analyzer.SetDir(dir)

	graph, err := analyzer.LoadPackages(patterns...)
	if err != nil {
		return nil, nil, err
	}

	return analyzer, graph, nil
}

// Result is the outcome of checking a project.
type Result struct {
	Diagnostics diagnostic.Diagnostics
	// Accessors are the checked property chains, in file order.
	Accessors []gen.Accessor
	// Checked counts the bindings that were type-checked.
	Checked int
}

type entityResult struct {
	diags     diagnostic.Diagnostics
	accessors []gen.Accessor
	checked   int
}

// Check validates the bindings file and type-checks every binding. Entities
// are checked concurrently; diagnostics keep the file order.
func (p *Project) Check(ctx context.Context) (*Result, error) {
	res := &Result{}

	res.Diagnostics.Merge(*mapping.Validate(p.File, p.Graph))
	if res.Diagnostics.HasErrors() {
		return res, nil
	}

	checker := analyze.NewChecker(p.analyzer)
	results := make([]entityResult, len(p.File.Entities))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range p.File.Entities {
		g.Go(func() error {
			return p.checkEntity(ctx, checker, &p.File.Entities[i], &results[i])
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range results {
		res.Diagnostics.Merge(results[i].diags)
		res.Accessors = append(res.Accessors, results[i].accessors...)
		res.Checked += results[i].checked
	}

	p.log.Info("bindings checked",
		zap.Int("bindings", res.Checked),
		zap.Int("errors", len(res.Diagnostics.Errors)),
		zap.Int("warnings", len(res.Diagnostics.Warnings)))

	return res, nil
}

func (p *Project) checkEntity(ctx context.Context, checker *analyze.Checker, e *mapping.Entity, out *entityResult) error {
	info := mapping.ResolveTypeID(e.Type, p.Graph)
	if info == nil {
		return fmt.Errorf("%w: %s", analyze.ErrTypeNotFound, e.Type)
	}

	param := p.File.Param

	for _, b := range e.PropertyBindings(param) {
		if err := ctx.Err(); err != nil {
			return err
		}

		checked, ok := p.check(checker, info.ID, e.Type, b, out)
		if !ok {
			continue
		}

		if !checked.Property() {
			out.diags.AddError(diagnostic.CodeShape, "expression is not a property chain", e.Type, b.Expr)

			continue
		}

		out.accessors = append(out.accessors, gen.Accessor{Name: b.Name, Binding: checked})

		if !checked.Writable {
			out.diags.AddInfo(diagnostic.CodeReadOnly, "property is read-only", e.Type, b.Expr)
		}
	}

	for _, b := range e.Expressions {
		if err := ctx.Err(); err != nil {
			return err
		}

		checked, ok := p.check(checker, info.ID, e.Type, b, out)
		if !ok {
			continue
		}

		if !hasText(checked, b.AnyText) {
			out.diags.AddWarning(diagnostic.CodeNoText,
				fmt.Sprintf("%s value has no textual projection", types.TypeString(checked.Type, packageName)),
				e.Type, b.Expr)
		}
	}

	return nil
}

// check type-checks a single binding, recording a diagnostic on failure.
func (p *Project) check(checker *analyze.Checker, id analyze.TypeID, entity string, b mapping.Binding, out *entityResult) (*analyze.Binding, bool) {
	out.checked++

	checked, err := checker.Check(id, b.Expr, p.File.Param)
	if err != nil {
		out.diags.Add(checkDiagnostic(err, entity, b.Expr))
		p.log.Debug("binding rejected", zap.String("entity", entity), zap.String("expr", b.Expr), zap.Error(err))

		return nil, false
	}

	p.log.Debug("binding checked",
		zap.String("entity", entity),
		zap.String("expr", b.Expr),
		zap.Stringer("kind", checked.Kind))

	return checked, true
}

// hasText reports whether a permissive binding of b gets a string getter:
// string values always do, other member chains only when anyText is set.
func hasText(b *analyze.Binding, anyText bool) bool {
	return b.Textual() || (b.Property() && anyText)
}

func checkDiagnostic(err error, entity, src string) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.DiagnosticError,
		Code:     diagnostic.CodeType,
		Message:  err.Error(),
		Entity:   entity,
		Expr:     src,
	}

	if errors.Is(err, expr.ErrUnknownFunc) || errors.Is(err, expr.ErrUnsupportedSyntax) {
		d.Code = diagnostic.CodeCompile
	}

	var checkErr *analyze.CheckError
	if errors.As(err, &checkErr) {
		d.Message = checkErr.Err.Error()
		d.Suggestions = checkErr.Suggestions
	}

	return d
}

func packageName(p *types.Package) string {
	return p.Name()
}
