package convention_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accessor-compiler/convention"
	"accessor-compiler/resolve"
	"accessor-compiler/store"
)

func TestDefaultEditor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ  reflect.Type
		want convention.EditorEnum
	}{
		{reflect.TypeFor[string](), convention.EditorTextBox},
		{reflect.TypeFor[*string](), convention.EditorTextBox},
		{reflect.TypeFor[int](), convention.EditorNumeric},
		{reflect.TypeFor[float32](), convention.EditorNumeric},
		{reflect.TypeFor[bool](), convention.EditorCheckbox},
		{reflect.TypeFor[time.Time](), convention.EditorDate},
		{reflect.TypeFor[time.Duration](), convention.EditorDuration},
		{reflect.TypeFor[store.Status](), convention.EditorDropdown},
		{reflect.TypeFor[*store.Address](), convention.EditorReadonly},
		{reflect.TypeFor[[]string](), convention.EditorReadonly},
		{nil, convention.EditorReadonly},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, convention.DefaultEditor(tt.typ), "%v", tt.typ)
	}
}

func TestEditorEnum_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "TextBox", convention.EditorTextBox.String())
	assert.Equal(t, "Dropdown", convention.EditorDropdown.String())
	assert.Equal(t, "EditorEnum(9)", convention.EditorEnum(9).String())
}

func TestFeatures(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "None", convention.FeatureNone.String())
	assert.Equal(t, "CanView|CanEdit", (convention.FeatureCanView | convention.FeatureCanEdit).String())
	assert.Equal(t, "CanGoToEdit|Features(8)", (convention.FeatureCanGoToEdit | 8).String())

	assert.Equal(t, convention.FeatureCanEdit, convention.NodeEditor{AllowsNodeEditing: true}.Features())
	assert.Equal(t, convention.FeatureNone, convention.NodeEditor{}.Features())
}

func TestFieldFor(t *testing.T) {
	t.Parallel()

	age, err := resolve.Property[*store.Person, int]("x.Age")
	require.NoError(t, err)

	field := convention.FieldFor(age)
	assert.Equal(t, "Age", field.Name)
	assert.Equal(t, convention.EditorNumeric, field.Editor)
	assert.Equal(t, convention.FeatureCanView|convention.FeatureCanEdit, field.Features)

	text, err := field.Text(&store.Person{Age: 42})
	require.NoError(t, err)
	assert.Equal(t, "42", text)

	id, err := resolve.Property[*store.Person, int64]("x.ID")
	require.NoError(t, err)

	field = convention.FieldFor(id)
	assert.Equal(t, convention.EditorReadonly, field.Editor)
	assert.Equal(t, convention.FeatureCanView, field.Features)

	display, err := resolve.Expression[*store.Person, string]("x.DisplayName()")
	require.NoError(t, err)

	field = convention.FieldFor(display)
	assert.Equal(t, convention.EditorReadonly, field.Editor)
	assert.Empty(t, field.Name)

	text, err = field.Text(&store.Person{Name: "Ann", Email: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "Ann <a@b.c>", text)
}
