package expr_test

import (
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accessor-compiler/expr"
	"accessor-compiler/store"
)

var (
	personType  = reflect.TypeFor[*store.Person]()
	articleType = reflect.TypeFor[*store.Article]()
)

func TestParse_Shapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		root     reflect.Type
		src      string
		wantNode any
		wantType reflect.Type
		wantStr  string
	}{
		{"member", personType, "x.Name", &expr.Member{}, reflect.TypeFor[string](), "x.Name"},
		{"nested member", personType, "x.Address.Country.Code", &expr.Member{}, reflect.TypeFor[string](), "x.Address.Country.Code"},
		{"value member", personType, "x.Home.Street", &expr.Member{}, reflect.TypeFor[string](), "x.Home.Street"},
		{"parens", personType, "(x.Name)", &expr.Member{}, reflect.TypeFor[string](), "x.Name"},
		{"param", personType, "x", &expr.Param{}, personType, "x"},
		{"promoted", articleType, "x.Slug", &expr.Member{}, reflect.TypeFor[string](), "x.Slug"},
		{"widening", personType, "any(x.Age)", &expr.Convert{}, reflect.TypeFor[any](), "any(x.Age)"},
		{"narrowing", personType, "int64(x.Age)", &expr.Convert{}, reflect.TypeFor[int64](), "int64(x.Age)"},
		{"typed const", personType, "int64(5)", &expr.Const{}, reflect.TypeFor[int64](), "5"},
		{"func", personType, "fmt.Sprint(x.Age)", &expr.Call{}, reflect.TypeFor[string](), "fmt.Sprint(x.Age)"},
		{"value method", personType, `x.CreatedAt.Format("2006")`, &expr.MethodCall{}, reflect.TypeFor[string](), `x.CreatedAt.Format("2006")`},
		{"pointer method", personType, "x.Revision()", &expr.MethodCall{}, reflect.TypeFor[int](), "x.Revision()"},
		{"promoted method", personType, "x.DisplayName()", &expr.MethodCall{}, reflect.TypeFor[string](), "x.DisplayName()"},
		{"concat", personType, `x.Name + "!"`, &expr.Binary{}, reflect.TypeFor[string](), `x.Name + "!"`},
		{"compare", personType, "x.Age >= 18", &expr.Binary{}, reflect.TypeFor[bool](), "x.Age >= 18"},
		{"logic", personType, "x.Active && x.Age > 18", &expr.Binary{}, reflect.TypeFor[bool](), "x.Active && (x.Age > 18)"},
		{"float scale", articleType, "x.Score * 2", &expr.Binary{}, reflect.TypeFor[float64](), "x.Score * 2"},
		{"negate", personType, "-x.Age", &expr.Unary{}, reflect.TypeFor[int](), "-x.Age"},
		{"not", personType, "!x.Active", &expr.Unary{}, reflect.TypeFor[bool](), "!x.Active"},
		{"plus", personType, "+x.Age", &expr.Member{}, reflect.TypeFor[int](), "x.Age"},
		{"literal", personType, `"fixed"`, &expr.Const{}, reflect.TypeFor[string](), `"fixed"`},
		{"rune", personType, "'a'", &expr.Const{}, reflect.TypeFor[int32](), "'a'"},
		{"bool", personType, "true", &expr.Const{}, reflect.TypeFor[bool](), "true"},
		{"mixed literals", personType, "1 + 2.5", &expr.Binary{}, reflect.TypeFor[float64](), "1 + 2.5"},
		{"integral float", personType, "x.Age + 1.0", &expr.Binary{}, reflect.TypeFor[int](), "x.Age + 1"},
		{"integral float conversion", personType, "int64(2.0)", &expr.Const{}, reflect.TypeFor[int64](), "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l, err := expr.Parse(tt.root, tt.src)
			require.NoError(t, err)

			assert.IsType(t, tt.wantNode, l.Body())
			assert.Equal(t, tt.wantType, l.Result())
			assert.Equal(t, tt.root, l.Root())
			assert.Equal(t, tt.wantStr, l.String())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"unknown member", "x.Adress.City", expr.ErrUnknownMember},
		{"member of string", "x.Name.Length", expr.ErrUnknownMember},
		{"unexported", "x.revision", expr.ErrUnexportedMember},
		{"method value", "x.Bump", expr.ErrUnsupportedSyntax},
		{"no result", "x.Bump()", expr.ErrBadSignature},
		{"unknown method", "x.Name.Len()", expr.ErrUnknownMember},
		{"unknown ident", "y.Name", expr.ErrUnknownIdent},
		{"unknown func", "nope(x.Name)", expr.ErrUnknownFunc},
		{"unknown pkg func", "strings.Title(x.Name)", expr.ErrUnknownFunc},
		{"index", "x.Tags[0]", expr.ErrUnsupportedSyntax},
		{"func literal", "func() int { return 1 }()", expr.ErrUnsupportedSyntax},
		{"spread", "strings.Join(x.Tags...)", expr.ErrUnsupportedSyntax},
		{"mixed types", `x.Age + "a"`, expr.ErrTypeMismatch},
		{"int plus float field", "x.Age + x.Age * 1.5", expr.ErrTypeMismatch},
		{"fractional float", "x.Age + 1.5", expr.ErrTypeMismatch},
		{"bad arity", "strings.ToUpper(x.Name, x.Email)", expr.ErrTypeMismatch},
		{"bad arg", "strings.ToUpper(x.Age)", expr.ErrTypeMismatch},
		{"not on int", "!x.Age", expr.ErrTypeMismatch},
		{"bad conversion", "int(x.Name)", expr.ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := expr.Parse(personType, tt.src)
			require.Error(t, err)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), strconv.Quote(tt.src))
		})
	}
}

func TestParse_SyntaxError(t *testing.T) {
	t.Parallel()

	_, err := expr.Parse(personType, "x.Name +")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `parse "x.Name +"`)
}

func TestParse_Suggestions(t *testing.T) {
	t.Parallel()

	_, err := expr.Parse(personType, "x.Adress.City")
	require.Error(t, err)

	var memberErr *expr.MemberError
	require.ErrorAs(t, err, &memberErr)

	assert.Equal(t, reflect.TypeFor[store.Person](), memberErr.Type)
	assert.Equal(t, "Adress", memberErr.Name)
	require.NotEmpty(t, memberErr.Suggestions)
	assert.Equal(t, "Address", memberErr.Suggestions[0])
	assert.Contains(t, err.Error(), "did you mean Address")
}

func TestParse_Options(t *testing.T) {
	t.Parallel()

	t.Run("param name", func(t *testing.T) {
		t.Parallel()

		l, err := expr.Parse(personType, "p.Address.City", expr.WithParam("p"))
		require.NoError(t, err)
		assert.Equal(t, "p", l.Param().Name())
		assert.Equal(t, "p.Address.City", l.String())

		_, err = expr.Parse(personType, "x.Name", expr.WithParam("p"))
		require.ErrorIs(t, err, expr.ErrUnknownIdent)
	})

	t.Run("invalid param name", func(t *testing.T) {
		t.Parallel()

		_, err := expr.Parse(personType, "x.Name", expr.WithParam("1x"))
		require.Error(t, err)
	})

	t.Run("custom funcs", func(t *testing.T) {
		t.Parallel()

		funcs := expr.FuncMap{
			"initials": func(s string) string { return s[:1] },
			"since":    func(ts time.Time) (time.Duration, error) { return time.Since(ts), nil },
		}

		l, err := expr.Parse(personType, "initials(x.Name) + since(x.CreatedAt).String()", expr.WithFuncs(funcs))
		require.NoError(t, err)
		assert.Equal(t, reflect.TypeFor[string](), l.Result())
	})

	t.Run("bad func", func(t *testing.T) {
		t.Parallel()

		_, err := expr.Parse(personType, "answer(x.Name)", expr.WithFuncs(expr.FuncMap{"answer": 42}))
		require.ErrorIs(t, err, expr.ErrNotAFunction)
	})

	t.Run("defaults are copied", func(t *testing.T) {
		t.Parallel()

		funcs := expr.DefaultFuncs()
		delete(funcs, "fmt.Sprint")

		assert.Contains(t, expr.DefaultFuncs(), "fmt.Sprint")
	})
}

func TestFor(t *testing.T) {
	t.Parallel()

	t.Run("boxes into interface", func(t *testing.T) {
		t.Parallel()

		l, err := expr.For[*store.Person, any]("x.Age")
		require.NoError(t, err)

		conv, ok := l.Body().(*expr.Convert)
		require.True(t, ok)
		assert.True(t, conv.Widening())
		assert.Equal(t, reflect.TypeFor[any](), l.Result())
	})

	t.Run("materializes constants", func(t *testing.T) {
		t.Parallel()

		l, err := expr.For[*store.Person, int64]("5")
		require.NoError(t, err)

		c, ok := l.Body().(*expr.Const)
		require.True(t, ok)
		assert.False(t, c.Untyped())
		assert.Equal(t, int64(5), c.Value().Interface())
	})

	t.Run("rejects other types", func(t *testing.T) {
		t.Parallel()

		_, err := expr.For[*store.Person, string]("x.Age")
		require.ErrorIs(t, err, expr.ErrTypeMismatch)
	})

	t.Run("rejects overflow", func(t *testing.T) {
		t.Parallel()

		_, err := expr.For[*store.Person, int8]("300")
		require.ErrorIs(t, err, expr.ErrTypeMismatch)
	})
}

func TestSelect(t *testing.T) {
	t.Parallel()

	l, err := expr.Select(personType, "Address.Country.Code")
	require.NoError(t, err)
	assert.Equal(t, "x.Address.Country.Code", l.String())
	assert.Equal(t, reflect.TypeFor[string](), l.Result())

	var names []string
	for n := l.Body(); ; {
		m, ok := n.(*expr.Member)
		if !ok {
			break
		}

		names = append([]string{m.Name()}, names...)
		n = m.X()
	}

	assert.Equal(t, []string{"Address", "Country", "Code"}, names)

	_, err = expr.Select(personType, "Address.Town")
	require.ErrorIs(t, err, expr.ErrUnknownMember)
	assert.Contains(t, err.Error(), `select "Address.Town"`)
}

func TestParsePath(t *testing.T) {
	t.Parallel()

	names, err := expr.ParsePath("Basic.Field")
	require.NoError(t, err)
	assert.Equal(t, []string{"Basic", "Field"}, names)

	for _, bad := range []string{"", "Basic..Field", ".Field", "Basic.", "1Field", "Basic.Fi-eld"} {
		_, err := expr.ParsePath(bad)
		assert.Error(t, err, bad)
	}
}

func TestPromotedField(t *testing.T) {
	t.Parallel()

	l, err := expr.Parse(articleType, "x.ReadTime")
	require.NoError(t, err)

	m, ok := l.Body().(*expr.Member)
	require.True(t, ok)
	assert.Equal(t, []int{0, 2}, m.Field().Index)
	assert.Equal(t, reflect.TypeFor[store.Article](), m.Owner())
	assert.Equal(t, reflect.TypeFor[time.Duration](), m.Type())
}

func TestNew_ForeignParam(t *testing.T) {
	t.Parallel()

	own := expr.NewParam("x", personType)
	foreign := expr.NewParam("y", personType)

	body, err := expr.NewMember(foreign, "Name")
	require.NoError(t, err)

	_, err = expr.New(own, body)
	require.ErrorIs(t, err, expr.ErrForeignParam)

	body, err = expr.NewMember(own, "Name")
	require.NoError(t, err)

	l, err := expr.New(own, body)
	require.NoError(t, err)
	assert.Same(t, own, l.Param())
}

func TestNewCond(t *testing.T) {
	t.Parallel()

	param := expr.NewParam("x", personType)

	active, err := expr.NewMember(param, "Active")
	require.NoError(t, err)

	name, err := expr.NewMember(param, "Name")
	require.NoError(t, err)

	cond, err := expr.NewCond(active, name, expr.NewConst("inactive"))
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[string](), cond.Type())
	assert.Equal(t, `cond(x.Active, x.Name, "inactive")`, cond.String())
	assert.Len(t, expr.Children(cond), 3)

	_, err = expr.NewCond(name, name, name)
	require.ErrorIs(t, err, expr.ErrTypeMismatch)

	age, err := expr.NewMember(param, "Age")
	require.NoError(t, err)

	_, err = expr.NewCond(active, name, age)
	require.ErrorIs(t, err, expr.ErrTypeMismatch)
}

func TestDefaultFuncs_Signatures(t *testing.T) {
	t.Parallel()

	for name, fn := range expr.DefaultFuncs() {
		_, sig, err := expr.ParseFunc(fn)
		require.NoError(t, err, name)
		assert.NotNil(t, sig.Out, name)
		assert.True(t, strings.Contains(name, "."), name)
	}
}
