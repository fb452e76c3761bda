// Package convention derives editor defaults from binding metadata: which
// widget edits a property type and which features a binding offers.
package convention

import (
	"reflect"

	"accessor-compiler/primitive"
)

//go:generate go tool stringer -type=EditorEnum -trimprefix=Editor -output=editor_string.go

// EditorEnum names the widget used to edit a property by convention.
type EditorEnum int

const (
	EditorReadonly EditorEnum = iota
	EditorTextBox
	EditorNumeric
	EditorCheckbox
	EditorDate
	EditorDuration
	EditorDropdown
)

// DefaultEditor picks the editor for values of type t. Pointer types use
// the editor of their element; types no editor supports are read-only.
func DefaultEditor(t reflect.Type) EditorEnum {
	if t == nil {
		return EditorReadonly
	}

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch kind := primitive.FromReflectType(t); {
	case kind.IsNumber():
		return EditorNumeric
	case kind == primitive.KindBool:
		return EditorCheckbox
	case kind == primitive.KindString:
		return EditorTextBox
	case kind == primitive.KindTime:
		return EditorDate
	case kind == primitive.KindDuration:
		return EditorDuration
	case kind == primitive.KindPrimitiveEnum:
		return EditorDropdown
	default:
		return EditorReadonly
	}
}
