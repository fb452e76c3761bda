package gen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accessor-compiler/accessor"
	"accessor-compiler/internal/analyze"
)

const storePkg = "accessor-compiler/store"

var personID = analyze.TypeID{PkgPath: storePkg, Name: "Person"}

func cityBinding() *analyze.Binding {
	return &analyze.Binding{
		Entity:   personID,
		Param:    "x",
		Expr:     "x.Address.City",
		Kind:     accessor.PureChain,
		Path:     []string{"Address", "City"},
		Type:     types.Typ[types.String],
		Writable: true,
		Guards: []analyze.Guard{
			{Expr: "x", Index: 0, Member: "Address"},
			{Expr: "x.Address", Index: 1, Member: "City"},
		},
	}
}

func createdAtBinding() *analyze.Binding {
	timePkg := types.NewPackage("time", "time")
	timeType := types.NewNamed(types.NewTypeName(token.NoPos, timePkg, "Time", nil), types.NewStruct(nil, nil), nil)

	return &analyze.Binding{
		Entity: personID,
		Param:  "x",
		Expr:   "x.CreatedAt",
		Kind:   accessor.PureChain,
		Path:   []string{"CreatedAt"},
		Type:   timeType,
		Guards: []analyze.Guard{{Expr: "x", Index: 0, Member: "CreatedAt"}},
	}
}

// parseGenerated parses a generated file and returns its function names
// and import paths.
func parseGenerated(t *testing.T, content []byte) ([]string, []string) {
	t.Helper()

	file, err := parser.ParseFile(token.NewFileSet(), "generated.go", content, parser.ParseComments)
	require.NoError(t, err, string(content))

	var funcs, imports []string

	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			funcs = append(funcs, fn.Name.Name)
		}
	}

	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		require.NoError(t, err)

		imports = append(imports, path)
	}

	return funcs, imports
}

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	g := NewGenerator(DefaultGeneratorConfig())

	files, err := g.Generate(nil, []Accessor{
		{Binding: cityBinding()},
		{Binding: createdAtBinding()},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)

	assert.Equal(t, "store_person_accessors.go", files[0].Filename)

	content := string(files[0].Content)
	assert.Contains(t, content, "// Code generated by bindcheck. DO NOT EDIT.")
	assert.Contains(t, content, "package accessors")
	assert.Contains(t, content, "func PersonAddressCityGet(x *store.Person) (string, error) {")
	assert.Contains(t, content, "func PersonAddressCitySet(x *store.Person, v string) error {")
	assert.Contains(t, content, "func PersonCreatedAtGet(x *store.Person) (time.Time, error) {")
	assert.Contains(t, content, "if x.Address == nil {")
	assert.Contains(t, content,
		`&accessor.NullIntermediateError{Chain: "x.Address.City", Index: 1, Member: "City", Nil: "x.Address"}`)
	assert.Contains(t, content, "x.Address.City = v")
	assert.Contains(t, content, "// PersonAddressCityGet reads x.Address.City.")

	funcs, imports := parseGenerated(t, files[0].Content)
	assert.Equal(t, []string{"PersonAddressCityGet", "PersonAddressCitySet", "PersonCreatedAtGet"}, funcs)
	assert.Equal(t, []string{accessorPkg, storePkg, "time"}, imports)
}

func TestGenerator_Config(t *testing.T) {
	t.Parallel()

	cfg := DefaultGeneratorConfig()
	cfg.PackageName = "binds"
	cfg.GenerateComments = false
	cfg.Setters = false

	files, err := NewGenerator(cfg).Generate(nil, []Accessor{{Name: "Town", Binding: cityBinding()}})
	require.NoError(t, err)
	require.Len(t, files, 1)

	content := string(files[0].Content)
	assert.Contains(t, content, "package binds")
	assert.NotContains(t, content, "// PersonTownGet")

	funcs, _ := parseGenerated(t, files[0].Content)
	assert.Equal(t, []string{"PersonTownGet"}, funcs)

	cfg.PackageName = "not a name"
	_, err = NewGenerator(cfg).Generate(nil, nil)
	require.ErrorIs(t, err, ErrInvalidPackageName)
}

func TestGenerator_Aliases(t *testing.T) {
	t.Parallel()

	b := cityBinding()
	b.Param = "store"
	b.Expr = "store.Address.City"
	b.Guards = []analyze.Guard{
		{Expr: "store", Index: 0, Member: "Address"},
		{Expr: "store.Address", Index: 1, Member: "City"},
	}

	graph := analyze.NewTypeGraph()
	graph.Packages[storePkg] = &analyze.PackageInfo{Path: storePkg, Name: "store"}

	files, err := NewGenerator(DefaultGeneratorConfig()).Generate(graph, []Accessor{{Binding: b}})
	require.NoError(t, err)

	content := string(files[0].Content)
	assert.Contains(t, content, `store2 "accessor-compiler/store"`)
	assert.Contains(t, content, "func PersonAddressCityGet(store *store2.Person) (string, error) {")
	assert.Contains(t, content, "return store.Address.City, nil")

	_, _ = parseGenerated(t, files[0].Content)
}

func TestGenerator_Errors(t *testing.T) {
	t.Parallel()

	g := NewGenerator(DefaultGeneratorConfig())

	opaque := cityBinding()
	opaque.Kind = accessor.Opaque
	opaque.Expr = `x.Name + "!"`

	_, err := g.Generate(nil, []Accessor{{Binding: opaque}})
	require.ErrorIs(t, err, ErrNotAChain)
	assert.Contains(t, err.Error(), `x.Name + \"!\"`)

	_, err = g.Generate(nil, []Accessor{{}})
	require.ErrorIs(t, err, ErrNotAChain)

	_, err = g.Generate(nil, []Accessor{
		{Binding: cityBinding()},
		{Name: "AddressCity", Binding: createdAtBinding()},
	})
	require.ErrorIs(t, err, ErrDuplicateAccessor)
}

func TestGenerator_CheckedBindings(t *testing.T) {
	t.Parallel()

	analyzer := analyze.NewAnalyzer()
	graph, err := analyzer.LoadPackages(storePkg)
	require.NoError(t, err)

	checker := analyze.NewChecker(analyzer)

	var accessors []Accessor

	for _, tc := range []struct {
		entity string
		src    string
	}{
		{"Person", "x.ID"},
		{"Person", "x.Address.Country.Code"},
		{"Article", "x.Slug"},
		{"Article", "x.Author.Home.City"},
	} {
		b, err := checker.Check(analyze.TypeID{PkgPath: storePkg, Name: tc.entity}, tc.src, "x")
		require.NoError(t, err, tc.src)

		accessors = append(accessors, Accessor{Binding: b})
	}

	files, err := NewGenerator(DefaultGeneratorConfig()).Generate(graph, accessors)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "store_person_accessors.go", files[0].Filename)
	assert.Equal(t, "store_article_accessors.go", files[1].Filename)

	funcs, _ := parseGenerated(t, files[0].Content)
	assert.Equal(t, []string{
		"PersonIDGet",
		"PersonAddressCountryCodeGet", "PersonAddressCountryCodeSet",
	}, funcs)

	funcs, _ = parseGenerated(t, files[1].Content)
	assert.Equal(t, []string{
		"ArticleSlugGet", "ArticleSlugSet",
		"ArticleAuthorHomeCityGet", "ArticleAuthorHomeCitySet",
	}, funcs)

	article := string(files[1].Content)
	assert.Contains(t, article, "if x.Meta == nil {")
	assert.Contains(t, article, "return x.Slug, nil")
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	files := []GeneratedFile{
		{Filename: "a.go", Content: []byte("package a\n")},
		{Filename: "b.go", Content: []byte("package a\n\nvar B = 1\n")},
	}

	written, err := WriteFiles(files, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.go"), filepath.Join(dir, "b.go")}, written)

	files[1].Content = []byte("package a\n\nvar B = 2\n")

	written, err = WriteFiles(files, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.go")}, written)

	got, err := os.ReadFile(filepath.Join(dir, "b.go"))
	require.NoError(t, err)
	assert.Equal(t, files[1].Content, got)
}

func TestWriteDebugUnformatted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	require.NoError(t, writeDebugUnformatted(dir, "store_person_accessors.go", []byte("func {")))
	require.NoError(t, writeDebugUnformatted("", "x.go", nil))

	got, err := os.ReadFile(filepath.Join(dir, "store_person_accessors.go.unformatted"))
	require.NoError(t, err)
	assert.Equal(t, "func {", string(got))
}
