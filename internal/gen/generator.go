package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"go/types"
	"slices"
	"strings"
	"text/template"

	"accessor-compiler/internal/analyze"
	"accessor-compiler/internal/common"
)

// accessorPkg is the import path of the package declaring
// NullIntermediateError.
const accessorPkg = "accessor-compiler/accessor"

var (
	ErrNotAChain          = errors.New("binding is not a property chain")
	ErrDuplicateAccessor  = errors.New("duplicate accessor")
	ErrInvalidPackageName = errors.New("invalid package name")
)

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// PackageName is the name of the generated package.
	PackageName string
	// OutputDir is the directory where generated files are written.
	OutputDir string
	// GenerateComments enables doc comments on generated functions.
	GenerateComments bool
	// Setters enables setters for writable chains.
	Setters bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		PackageName:      "accessors",
		OutputDir:        "./generated",
		GenerateComments: true,
		Setters:          true,
	}
}

// Accessor is a checked property chain to generate. Name overrides the
// chain's property name in the function names when set.
type Accessor struct {
	Name    string
	Binding *analyze.Binding
}

func (a Accessor) name() string {
	if a.Name != "" {
		return a.Name
	}

	return a.Binding.Name()
}

// Generator generates typed accessor functions.
type Generator struct {
	config GeneratorConfig
	graph  *analyze.TypeGraph
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "store_person_accessors.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Generate emits one file per entity type, in order of first appearance.
// graph supplies package names; it may be nil.
func (g *Generator) Generate(graph *analyze.TypeGraph, accessors []Accessor) ([]GeneratedFile, error) {
	if !token.IsIdentifier(g.config.PackageName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPackageName, g.config.PackageName)
	}

	g.graph = graph

	var order []analyze.TypeID

	byEntity := make(map[analyze.TypeID][]Accessor)
	funcs := make(map[string]string)

	for _, a := range accessors {
		if a.Binding == nil || !a.Binding.Property() {
			expr := ""
			if a.Binding != nil {
				expr = a.Binding.Expr
			}

			return nil, fmt.Errorf("%w: %q", ErrNotAChain, expr)
		}

		id := a.Binding.Entity

		fn := id.Name + a.name()
		if prev, ok := funcs[fn]; ok {
			return nil, fmt.Errorf("%w: %s from %q and %q", ErrDuplicateAccessor, fn, prev, a.Binding.Expr)
		}

		funcs[fn] = a.Binding.Expr

		if _, ok := byEntity[id]; !ok {
			order = append(order, id)
		}

		byEntity[id] = append(byEntity[id], a)
	}

	files := make([]GeneratedFile, 0, len(order))

	for _, id := range order {
		file, err := g.generateEntity(id, byEntity[id])
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", id, err)
		}

		files = append(files, *file)
	}

	return files, nil
}

// generateEntity generates the accessors of a single entity type.
func (g *Generator) generateEntity(id analyze.TypeID, accessors []Accessor) (*GeneratedFile, error) {
	data := g.buildTemplateData(id, accessors)

	var buf bytes.Buffer
	if err := accessorTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		if g.config.OutputDir != "" {
			_ = writeDebugUnformatted(g.config.OutputDir, data.Filename, buf.Bytes())
		}

		return &GeneratedFile{
			Filename: data.Filename,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w (unformatted code returned)", err)
	}

	return &GeneratedFile{
		Filename: data.Filename,
		Content:  formatted,
	}, nil
}

// templateData holds all data needed for an entity's accessor file.
type templateData struct {
	PackageName      string
	Filename         string
	Imports          []importSpec
	GenerateComments bool
	Accessors        []accessorData
}

// importSpec represents an import statement.
type importSpec struct {
	Alias string
	Path  string
}

// accessorData is one getter and its optional setter.
type accessorData struct {
	GetName string
	SetName string
	Param   string
	Value   string
	Root    string
	Type    string
	Read    string
	Guards  []guardData
}

// guardData is a nil check and the error it returns.
type guardData struct {
	Expr string
	Err  string
}

// imports assigns unique aliases to the packages referenced by a file.
type imports struct {
	byPath map[string]string
	used   map[string]bool
}

// newImports reserves names, so that no alias shadows them.
func newImports(reserved ...string) *imports {
	im := &imports{
		byPath: make(map[string]string),
		used:   make(map[string]bool),
	}

	for _, name := range reserved {
		im.used[name] = true
	}

	return im
}

// add registers pkgPath under name, or a numbered variant of it when the
// name is taken, and returns the alias to qualify with.
func (im *imports) add(pkgPath, name string) string {
	if alias, ok := im.byPath[pkgPath]; ok {
		return alias
	}

	alias := name
	for i := 2; im.used[alias]; i++ {
		alias = fmt.Sprintf("%s%d", name, i)
	}

	im.byPath[pkgPath] = alias
	im.used[alias] = true

	return alias
}

func (im *imports) specs() []importSpec {
	specs := make([]importSpec, 0, len(im.byPath))

	for path, alias := range im.byPath {
		spec := importSpec{Path: path}
		if alias != common.PkgAlias(path) {
			spec.Alias = alias
		}

		specs = append(specs, spec)
	}

	slices.SortFunc(specs, func(a, b importSpec) int {
		return strings.Compare(a.Path, b.Path)
	})

	return specs
}

// buildTemplateData constructs the template data for an entity.
func (g *Generator) buildTemplateData(id analyze.TypeID, accessors []Accessor) *templateData {
	reserved := []string{"v", "value"}
	for _, a := range accessors {
		reserved = append(reserved, a.Binding.Param)
	}

	im := newImports(reserved...)
	nullPkg := im.add(accessorPkg, "accessor")

	root := "*" + qualify(im.add(id.PkgPath, g.getPkgName(id.PkgPath)), id.Name)
	qualifier := func(p *types.Package) string {
		return im.add(p.Path(), p.Name())
	}

	data := &templateData{
		PackageName:      g.config.PackageName,
		Filename:         g.filename(id),
		GenerateComments: g.config.GenerateComments,
	}

	for _, a := range accessors {
		b := a.Binding

		value := "v"
		if b.Param == value {
			value = "value"
		}

		ad := accessorData{
			GetName: id.Name + a.name() + "Get",
			Param:   b.Param,
			Value:   value,
			Root:    root,
			Type:    types.TypeString(b.Type, qualifier),
			Read:    b.Chain(),
		}

		for _, guard := range b.Guards {
			ad.Guards = append(ad.Guards, guardData{
				Expr: guard.Expr,
				Err: fmt.Sprintf("&%s.NullIntermediateError{Chain: %q, Index: %d, Member: %q, Nil: %q}",
					nullPkg, b.Expr, guard.Index, guard.Member, guard.Expr),
			})
		}

		if g.config.Setters && b.Writable {
			ad.SetName = id.Name + a.name() + "Set"
		}

		data.Accessors = append(data.Accessors, ad)
	}

	data.Imports = im.specs()

	return data
}

func qualify(alias, name string) string {
	return alias + "." + name
}

// getPkgName returns the package name for a given package path.
// It tries to look up the name from the type graph, falling back to the path base alias.
func (g *Generator) getPkgName(pkgPath string) string {
	if g.graph != nil {
		if pkgInfo, ok := g.graph.Packages[pkgPath]; ok {
			return pkgInfo.Name
		}
	}

	return common.PkgAlias(pkgPath)
}

func (g *Generator) filename(id analyze.TypeID) string {
	return fmt.Sprintf("%s_%s_accessors.go",
		strings.ToLower(g.getPkgName(id.PkgPath)), strings.ToLower(id.Name))
}

var accessorTemplate = template.Must(template.New("accessors").Parse(`// Code generated by bindcheck. DO NOT EDIT.

package {{.PackageName}}

import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{range .Accessors}}{{$a := .}}
{{if $.GenerateComments}}// {{.GetName}} reads {{.Read}}.
{{end}}func {{.GetName}}({{.Param}} {{.Root}}) ({{.Type}}, error) {
	var {{.Value}} {{.Type}}
{{range .Guards}}
	if {{.Expr}} == nil {
		return {{$a.Value}}, {{.Err}}
	}
{{end}}
	return {{.Read}}, nil
}
{{if .SetName}}
{{if $.GenerateComments}}// {{.SetName}} writes {{.Read}}.
{{end}}func {{.SetName}}({{.Param}} {{.Root}}, {{.Value}} {{.Type}}) error {
{{range .Guards}}	if {{.Expr}} == nil {
		return {{.Err}}
	}

{{end}}	{{.Read}} = {{.Value}}

	return nil
}
{{end}}{{end}}`))
