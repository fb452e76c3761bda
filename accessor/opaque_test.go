package accessor_test

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"accessor-compiler/accessor"
	"accessor-compiler/expr"
	"accessor-compiler/store"
)

func samplePerson() *store.Person {
	return &store.Person{
		ID:        7,
		Name:      "Ann",
		Email:     "ann@example.com",
		Age:       42,
		Active:    true,
		Status:    store.StatusDraft,
		Address:   &store.Address{City: "Oslo", Zip: "0150"},
		CreatedAt: time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC),
	}
}

func compileOpaque(t *testing.T, root reflect.Type, src string, opts ...expr.Option) accessor.Eval {
	t.Helper()

	l, err := expr.Parse(root, src, opts...)
	require.NoError(t, err)

	eval, err := accessor.CompileOpaque(l)
	require.NoError(t, err)

	return eval
}

func TestCompileOpaque_Values(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want any
	}{
		{"sprint", "fmt.Sprint(x.Age)", "42"},
		{"sprintf", `fmt.Sprintf("%s (%d)", x.Name, x.Age)`, "Ann (42)"},
		{"concat", `x.Name + " <" + x.Email + ">"`, "Ann <ann@example.com>"},
		{"value method via pointer", "x.DisplayName()", "Ann <ann@example.com>"},
		{"method with args", `x.CreatedAt.Format("2006-01-02")`, "2024-05-17"},
		{"arithmetic", "x.Age*2 + 1", 85},
		{"remainder", "x.Age % 5", 2},
		{"negation", "-x.Age", -42},
		{"conversion", "int64(x.Age) * 2", int64(84)},
		{"float conversion", "float64(x.Age) / 8", 5.25},
		{"comparison", "x.Age >= 18 && x.Active", true},
		{"string comparison", `x.Name < "B"`, true},
		{"enum equality", `x.Status == "draft"`, true},
		{"inequality", `x.Status != "draft"`, false},
		{"not", "!x.Active", false},
		{"short circuit", `x.Active || x.Address.Country.Code == ""`, true},
		{"constant", `"fixed"`, "fixed"},
		{"chain", "x.Address.City", "Oslo"},
		{"bare param", "x.Age", 42},
		{"nested calls", "strings.ToUpper(strings.TrimSpace(\"  \" + x.Name))", "ANN"},
		{"strconv", "strconv.Quote(x.Address.Zip)", strconv.Quote("0150")},
		{"rune conversion", "string(rune(65))", "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := compileOpaque(t, personType, tt.src)(samplePerson())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileOpaque_Identity(t *testing.T) {
	t.Parallel()

	p := samplePerson()

	got, err := compileOpaque(t, personType, "x")(p)
	require.NoError(t, err)
	assert.Same(t, p, got)
}

func TestCompileOpaque_PointerMethod(t *testing.T) {
	t.Parallel()

	p := samplePerson()
	p.Bump()
	p.Bump()

	got, err := compileOpaque(t, personType, "x.Revision()")(p)
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	// called on a copy of the non-addressable value root
	got, err = compileOpaque(t, reflect.TypeFor[store.Person](), "x.Revision()")(*p)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestCompileOpaque_InterfaceRoot(t *testing.T) {
	t.Parallel()

	eval := compileOpaque(t, reflect.TypeFor[fmt.Stringer](), `"<" + x.String() + ">"`)

	got, err := eval(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "<1s>", got)

	_, err = eval(nil)

	var nullErr *accessor.NullIntermediateError
	require.ErrorAs(t, err, &nullErr)
	assert.Equal(t, "String", nullErr.Member)
	assert.Equal(t, "x", nullErr.Nil)

	_, err = eval(42)
	require.ErrorIs(t, err, accessor.ErrRootType)
}

func TestCompileOpaque_NullIntermediate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		root reflect.Type
		src  string
		in   any
		want accessor.NullIntermediateError
	}{
		{
			name: "member",
			root: personType,
			src:  "strings.ToUpper(x.Address.City)",
			in:   &store.Person{},
			want: accessor.NullIntermediateError{Chain: "strings.ToUpper(x.Address.City)", Index: 1, Member: "City", Nil: "x.Address"},
		},
		{
			name: "receiver",
			root: articleType,
			src:  "x.Author.DisplayName()",
			in:   &store.Article{},
			want: accessor.NullIntermediateError{Chain: "x.Author.DisplayName()", Index: 1, Member: "DisplayName", Nil: "x.Author"},
		},
		{
			name: "embedded",
			root: articleType,
			src:  `x.Slug + "/"`,
			in:   &store.Article{},
			want: accessor.NullIntermediateError{Chain: `x.Slug + "/"`, Index: 0, Member: "Slug", Nil: "x.Meta"},
		},
		{
			name: "root",
			root: personType,
			src:  "fmt.Sprint(x.Age)",
			in:   nil,
			want: accessor.NullIntermediateError{Chain: "fmt.Sprint(x.Age)", Index: 0, Member: "Age", Nil: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := compileOpaque(t, tt.root, tt.src)(tt.in)

			var nullErr *accessor.NullIntermediateError
			require.ErrorAs(t, err, &nullErr)
			assert.Equal(t, tt.want, *nullErr)
		})
	}
}

var errLookup = errors.New("lookup failed")

func TestCompileOpaque_FuncResults(t *testing.T) {
	t.Parallel()

	funcs := expr.FuncMap{
		"lookup": func(code string) (string, bool) {
			if code == "NO" {
				return "Norway", true
			}

			return "", false
		},
		"strict": func(code string) (string, error) {
			if code == "" {
				return "", errLookup
			}

			return code, nil
		},
	}

	p := samplePerson()
	p.Address.Country = &store.Country{Code: "NO"}

	got, err := compileOpaque(t, personType, "lookup(x.Address.Country.Code)", expr.WithFuncs(funcs))(p)
	require.NoError(t, err)
	assert.Equal(t, "Norway", got)

	p.Address.Country.Code = "SE"
	_, err = compileOpaque(t, personType, "lookup(x.Address.Country.Code)", expr.WithFuncs(funcs))(p)
	require.ErrorIs(t, err, accessor.ErrMissingValue)

	p.Address.Country.Code = ""
	_, err = compileOpaque(t, personType, "strict(x.Address.Country.Code)", expr.WithFuncs(funcs))(p)
	require.ErrorIs(t, err, errLookup)
	assert.Contains(t, err.Error(), "strict")
}

func TestCompileOpaque_DivisionByZero(t *testing.T) {
	t.Parallel()

	eval := compileOpaque(t, personType, "100 / x.Age")

	got, err := eval(&store.Person{Age: 4})
	require.NoError(t, err)
	assert.Equal(t, 25, got)

	_, err = eval(&store.Person{})
	require.ErrorIs(t, err, accessor.ErrDivisionByZero)

	got, err = compileOpaque(t, articleType, "x.Score / 0")(&store.Article{Score: 1})
	require.NoError(t, err)
	assert.True(t, got.(float64) > 1e308)
}

func TestCompileOpaque_Cond(t *testing.T) {
	t.Parallel()

	param := expr.NewParam("x", personType)

	active, err := expr.NewMember(param, "Active")
	require.NoError(t, err)

	name, err := expr.NewMember(param, "Name")
	require.NoError(t, err)

	cond, err := expr.NewCond(active, name, expr.NewConst("(inactive)"))
	require.NoError(t, err)

	l, err := expr.New(param, cond)
	require.NoError(t, err)

	eval, err := accessor.CompileOpaque(l)
	require.NoError(t, err)

	p := samplePerson()

	got, err := eval(p)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got)

	p.Active = false

	got, err = eval(p)
	require.NoError(t, err)
	assert.Equal(t, "(inactive)", got)
}

func TestCompileOpaque_Concurrent(t *testing.T) {
	t.Parallel()

	eval := compileOpaque(t, personType, `x.Name + ":" + fmt.Sprint(x.Age)`)

	var g errgroup.Group

	for i := range 32 {
		g.Go(func() error {
			p := &store.Person{Name: "p", Age: i}

			got, err := eval(p)
			if err != nil {
				return err
			}

			if want := fmt.Sprintf("p:%d", i); got != want {
				return fmt.Errorf("got %v, want %s", got, want)
			}

			return nil
		})
	}

	require.NoError(t, g.Wait())
}
