package mapping

import (
	"errors"
	"fmt"
	"go/token"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"accessor-compiler/expr"
	"accessor-compiler/internal/analyze"
	"accessor-compiler/internal/diagnostic"
	"accessor-compiler/internal/match"
)

const maxSuggestions = 3

var schema = newSchemaValidator()

func newSchemaValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report yaml keys instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	if err := v.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		return token.IsIdentifier(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	return v
}

// Validate validates a bindings file against its schema and, when graph is
// not nil, against the loaded entity types. It checks structure and member
// paths only; expressions are checked by analyze.Checker.
func Validate(bf *BindingsFile, graph *analyze.TypeGraph) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if bf == nil {
		res.AddError("bindings_is_nil", "bindings file is nil", "", "")
		return res
	}

	validateSchema(res, bf)

	seenEntities := map[string]struct{}{}

	for i := range bf.Entities {
		e := &bf.Entities[i]

		if _, ok := seenEntities[e.Type]; ok && e.Type != "" {
			res.AddError("duplicate_entity", fmt.Sprintf("entity %q is listed twice", e.Type), e.Type, "")
			continue
		}

		seenEntities[e.Type] = struct{}{}

		if e.Len()+len(e.Paths) == 0 {
			res.AddWarning("empty_entity", "entity has no bindings", e.Type, "")
		}

		validateEntity(res, bf, e, graph)
	}

	return res
}

func validateSchema(res *diagnostic.Diagnostics, bf *BindingsFile) {
	err := schema.Struct(bf)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.AddError("schema", err.Error(), "", "")
		return
	}

	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}

		res.AddError("schema", fmt.Sprintf("%s: failed %q", fe.Namespace(), rule), "", "")
	}
}

func validateEntity(res *diagnostic.Diagnostics, bf *BindingsFile, e *Entity, graph *analyze.TypeGraph) {
	seenExprs := map[string]struct{}{}
	seenNames := map[string]struct{}{}

	bindings := append(e.PropertyBindings(bf.Param), e.Expressions...)
	for _, b := range bindings {
		if b.Expr == "" {
			continue
		}

		if _, ok := seenExprs[b.Expr]; ok {
			res.AddError("duplicate_binding", "expression is bound twice", e.Type, b.Expr)
		}

		seenExprs[b.Expr] = struct{}{}

		if b.Name == "" {
			continue
		}

		if _, ok := seenNames[b.Name]; ok {
			res.AddError("duplicate_name", fmt.Sprintf("name %q is used twice", b.Name), e.Type, b.Expr)
		}

		seenNames[b.Name] = struct{}{}
	}

	var typeInfo *analyze.TypeInfo

	if graph != nil && e.Type != "" {
		typeInfo = ResolveTypeID(e.Type, graph)

		switch {
		case typeInfo == nil:
			res.AddError("entity_type_not_found", fmt.Sprintf("entity type %q not found", e.Type), e.Type, "")
		case typeInfo.Kind != analyze.TypeKindStruct:
			res.AddError("entity_not_struct", fmt.Sprintf("entity type %q is a %s", e.Type, typeInfo.Kind), e.Type, "")
			typeInfo = nil
		}
	}

	for _, p := range e.Paths {
		if err := validatePathAgainstType(p, typeInfo); err != nil {
			d := diagnostic.Diagnostic{
				Severity: diagnostic.DiagnosticError,
				Code:     "invalid_path",
				Message:  err.Error(),
				Entity:   e.Type,
				Expr:     p,
			}

			var pathErr *pathError
			if errors.As(err, &pathErr) {
				d.Suggestions = pathErr.suggestions
			}

			res.Add(d)
		}
	}
}

type pathError struct {
	msg         string
	suggestions []string
}

func (e *pathError) Error() string {
	return e.msg
}

// validatePathAgainstType checks a dotted member path. Syntax is always
// checked; members only when typeInfo is known.
func validatePathAgainstType(pathStr string, typeInfo *analyze.TypeInfo) error {
	names, err := expr.ParsePath(pathStr)
	if err != nil {
		return err
	}

	current := typeInfo
	for _, name := range names {
		if current == nil {
			return nil
		}

		// Auto-deref pointers (matches member access).
		if current.Kind == analyze.TypeKindPointer {
			current = current.ElemType
		}

		if current == nil || current.Kind != analyze.TypeKindStruct {
			return fmt.Errorf("cannot access field %q on %s", name, analyze.TypeString(current))
		}

		fld := findField(current, name)
		if fld == nil {
			return &pathError{
				msg:         fmt.Sprintf("field %q not found in %s", name, current.ID.Qualified()),
				suggestions: match.Suggest(name, fieldNames(current), maxSuggestions),
			}
		}

		current = fld.Type
	}

	return nil
}

// findField looks name up in t, then in the structs t embeds.
func findField(t *analyze.TypeInfo, name string) *analyze.FieldInfo {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}

	for i := range t.Fields {
		if !t.Fields[i].Embedded {
			continue
		}

		embedded := t.Fields[i].Type
		if embedded.Kind == analyze.TypeKindPointer {
			embedded = embedded.ElemType
		}

		if embedded != nil && embedded.Kind == analyze.TypeKindStruct {
			if f := findField(embedded, name); f != nil {
				return f
			}
		}
	}

	return nil
}

func fieldNames(t *analyze.TypeInfo) []string {
	names := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}

	return names
}
