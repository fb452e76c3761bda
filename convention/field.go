package convention

import (
	"accessor-compiler/metadata"
	"accessor-compiler/primitive"
)

// Field is a form field laid out by convention from its binding.
type Field struct {
	Name     string
	Editor   EditorEnum
	Features Features
	Binding  metadata.Expression
}

// FieldFor lays out a field for meta. Bindings that cannot be written get
// the read-only editor whatever their type.
func FieldFor(meta metadata.Expression) Field {
	f := Field{
		Name:     meta.PropertyName(),
		Editor:   DefaultEditor(meta.PropertyType()),
		Features: FeaturesOf(meta),
		Binding:  meta,
	}

	if !f.Features.Has(FeatureCanEdit) {
		f.Editor = EditorReadonly
	}

	return f
}

// Text renders the bound value of entity for display. The binding's string
// getter is preferred; other values are rendered as raw text.
func (f Field) Text(entity any) (string, error) {
	if f.Binding.HasStringGetter() {
		return f.Binding.StringGetter()(entity)
	}

	v, err := f.Binding.Getter()(entity)
	if err != nil {
		return "", err
	}

	return primitive.ValueToText(v), nil
}
