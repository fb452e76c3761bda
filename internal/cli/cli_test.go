package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"accessor-compiler/internal/diagnostic"
	"accessor-compiler/internal/mapping"
)

const storePkg = "accessor-compiler/store"

func TestMain(m *testing.M) {
	color.NoColor = true

	os.Exit(m.Run())
}

const validBindings = `version: "1"
package: accessor-compiler/store
entities:
  - type: store.Person
    properties:
      - x.Name
      - expr: x.Address.City
        name: Town
      - x.ID
    expressions:
      - x.DisplayName()
      - x.Age * 12
  - type: Article
    paths: [Slug, Author.Name]
`

const invalidBindings = `version: "1"
package: accessor-compiler/store
entities:
  - type: store.Person
    properties:
      - x.Adress.City
      - x.Name + "!"
    expressions:
      - strings.Fields(x.Name)
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

// run executes bindcheck with args and returns its output. The config
// directory is empty unless args name another one.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config-dir", t.TempDir()}, args...))

	err := cmd.Execute()

	return out.String(), err
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig(newViper(t.TempDir()))
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Bindings: "bindings.yaml",
		Output:   "./generated",
		Package:  "accessors",
		Param:    "x",
		Depth:    3,
	}, cfg)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bindcheck.yaml", "output: out\npackage: binds\ndepth: 2\n")
	t.Setenv("BINDCHECK_PARAM", "p")

	cfg, err := loadConfig(newViper(dir))
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Output)
	assert.Equal(t, "binds", cfg.Package)
	assert.Equal(t, "p", cfg.Param)
	assert.Equal(t, 2, cfg.Depth)
	assert.Equal(t, "bindings.yaml", cfg.Bindings)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "bindcheck.yaml", "depth: 0\n")

	_, err := loadConfig(newViper(dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "depth must be positive")

	dir = t.TempDir()
	writeFile(t, dir, "bindcheck.yaml", "output: [unclosed\n")

	_, err = loadConfig(newViper(dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestProject_Check(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "bindings.yaml", validBindings)

	proj, err := LoadProject(&Config{Bindings: path, Param: "x", Depth: 3}, zap.NewNop())
	require.NoError(t, err)

	res, err := proj.Check(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, res.Checked)
	assert.Empty(t, res.Diagnostics.Errors)

	require.Len(t, res.Diagnostics.Warnings, 1)
	assert.Equal(t, diagnostic.CodeNoText, res.Diagnostics.Warnings[0].Code)
	assert.Equal(t, "x.Age * 12", res.Diagnostics.Warnings[0].Expr)
	assert.Equal(t, "int value has no textual projection", res.Diagnostics.Warnings[0].Message)

	require.Len(t, res.Diagnostics.Infos, 1)
	assert.Equal(t, diagnostic.CodeReadOnly, res.Diagnostics.Infos[0].Code)
	assert.Equal(t, "x.ID", res.Diagnostics.Infos[0].Expr)

	var names []string
	for _, a := range res.Accessors {
		names = append(names, a.Binding.Entity.Name+"."+a.Binding.Expr+"="+a.Name)
	}

	assert.Equal(t, []string{
		"Person.x.Name=",
		"Person.x.Address.City=Town",
		"Person.x.ID=",
		"Article.x.Slug=",
		"Article.x.Author.Name=",
	}, names)
}

func TestProject_CheckAnyText(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "bindings.yaml", `version: "1"
package: accessor-compiler/store
entities:
  - type: store.Person
    expressions:
      - x.Age
      - expr: x.Active
        any_text: true
      - x.Name
`)

	proj, err := LoadProject(&Config{Bindings: path, Param: "x", Depth: 3}, zap.NewNop())
	require.NoError(t, err)

	res, err := proj.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Checked)
	assert.Empty(t, res.Diagnostics.Errors)

	require.Len(t, res.Diagnostics.Warnings, 1)
	assert.Equal(t, "x.Age", res.Diagnostics.Warnings[0].Expr)
	assert.Equal(t, "int value has no textual projection", res.Diagnostics.Warnings[0].Message)
}

func TestProject_CheckErrors(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "bindings.yaml", invalidBindings)

	proj, err := LoadProject(&Config{Bindings: path, Param: "x", Depth: 3}, zap.NewNop())
	require.NoError(t, err)

	res, err := proj.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Diagnostics.Errors, 3)

	typo := res.Diagnostics.Errors[0]
	assert.Equal(t, diagnostic.CodeType, typo.Code)
	assert.Equal(t, "x.Adress.City", typo.Expr)
	assert.Contains(t, typo.Suggestions, "Address")

	shape := res.Diagnostics.Errors[1]
	assert.Equal(t, diagnostic.CodeShape, shape.Code)
	assert.Equal(t, `x.Name + "!"`, shape.Expr)

	assert.Equal(t, diagnostic.CodeCompile, res.Diagnostics.Errors[2].Code)
	assert.Empty(t, res.Accessors)
}

func TestProject_CheckInvalidFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "bindings.yaml", `version: "1"
package: accessor-compiler/store
entities:
  - type: store.Nobody
    properties: [x.Name]
`)

	proj, err := LoadProject(&Config{Bindings: path, Param: "x", Depth: 3}, zap.NewNop())
	require.NoError(t, err)

	res, err := proj.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Diagnostics.Errors, 1)
	assert.Equal(t, "entity_type_not_found", res.Diagnostics.Errors[0].Code)
	assert.Zero(t, res.Checked)
}

func TestProject_CheckCanceled(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "bindings.yaml", validBindings)

	proj, err := LoadProject(&Config{Bindings: path, Param: "x", Depth: 3}, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = proj.Check(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCheckCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	out, err := run(t, "check", writeFile(t, dir, "valid.yaml", validBindings))
	require.NoError(t, err)
	assert.Contains(t, out, "warning [store.Person] x.Age * 12: [no-text] int value has no textual projection")
	assert.Contains(t, out, "info    [store.Person] x.ID: [readonly] property is read-only")
	assert.Contains(t, out, "7 bindings checked, 0 errors, 1 warnings")

	out, err = run(t, "check", "-b", writeFile(t, dir, "invalid.yaml", invalidBindings))
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, out, "did you mean: Address")
	assert.Contains(t, out, "3 bindings checked, 3 errors, 0 warnings")

	_, err = run(t, "check", filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestListCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, "list", storePkg, "--depth", "1", "--param", "p")
	require.NoError(t, err)

	assert.Contains(t, out, "store.Person\n")
	assert.Contains(t, out, "p.ID")
	assert.Contains(t, out, "(read-only)")
	assert.Contains(t, out, "p.Address")
	assert.NotContains(t, out, "p.Address.City")
	assert.NotContains(t, out, "revision")
}

func TestGenCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bindings := writeFile(t, dir, "bindings.yaml", validBindings)
	output := filepath.Join(dir, "generated")

	out, err := run(t, "gen", bindings, "--output", output, "--package", "binds")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+filepath.Join(output, "store_person_accessors.go"))
	assert.Contains(t, out, "wrote "+filepath.Join(output, "store_article_accessors.go"))

	content, err := os.ReadFile(filepath.Join(output, "store_person_accessors.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "package binds")
	assert.Contains(t, string(content), "func PersonTownGet(x *store.Person) (string, error) {")
	assert.Contains(t, string(content), "func PersonTownSet(x *store.Person, v string) error {")
	assert.NotContains(t, string(content), "PersonIDSet")

	out, err = run(t, "gen", bindings, "--output", output, "--package", "binds")
	require.NoError(t, err)
	assert.Contains(t, out, "accessors are up to date")

	_, err = run(t, "gen", writeFile(t, dir, "invalid.yaml", invalidBindings), "--output", output)
	require.ErrorIs(t, err, ErrCheckFailed)
}

func TestScaffoldCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bindings.yaml")

	out, err := run(t, "scaffold", storePkg, "Person", "-b", path, "--depth", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "with 1 entities")

	bf, err := mapping.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, bf.Entities, 1)

	e := bf.Entities[0]
	assert.Equal(t, "store.Person", e.Type)
	assert.Contains(t, []string(e.Paths), "Name")
	assert.Contains(t, []string(e.Paths), "Address.City")
	assert.Contains(t, []string(e.Paths), "Home.Zip")
	assert.NotContains(t, []string(e.Paths), "Address")
	assert.NotContains(t, []string(e.Paths), "Address.Country.Code")

	_, err = run(t, "scaffold", storePkg, "-b", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, "scaffold", storePkg, "Nobody", "-b", path, "--force")
	require.Error(t, err)

	out, err = run(t, "check", path)
	require.NoError(t, err, out)
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := NewRootCommand()
	assert.Equal(t, "bindcheck", cmd.Use)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Subset(t, names, []string{"check", "list", "gen", "scaffold"})
}
