package analyze

import (
	"strings"
)

// TypePath builds a member access expression rooted at a parameter.
// Examples:
//   - "x" for the parameter itself
//   - "x.Address" for a field
//   - "x.Address.City" for a field of a nested struct
type TypePath struct {
	parts []string
}

// NewTypePath creates a new TypePath from the parameter name.
func NewTypePath(param string) *TypePath {
	return &TypePath{
		parts: []string{param},
	}
}

// Field appends a field name to the path.
func (p *TypePath) Field(name string) *TypePath {
	return &TypePath{
		parts: append(append([]string{}, p.parts...), name),
	}
}

// Name returns the property name of the path: the member names
// concatenated without the parameter.
func (p *TypePath) Name() string {
	return strings.Join(p.parts[1:], "")
}

// String returns the full path string.
func (p *TypePath) String() string {
	return strings.Join(p.parts, ".")
}

// PropertyPath is a member chain that can be bound as a property.
type PropertyPath struct {
	Expr     string     // "x.Address.City"
	Name     string     // "AddressCity"
	Field    *FieldInfo // leaf field
	Depth    int        // number of members, promoted fields count once
	Writable bool
}

// PropertyPaths lists every property chain of the struct root up to
// maxDepth members, in declaration order. Promoted fields are listed under
// their promoted name. Slices, maps and external types are leaves.
func PropertyPaths(root *TypeInfo, param string, maxDepth int) []PropertyPath {
	if root == nil || root.Kind != TypeKindStruct {
		return nil
	}

	w := &pathWalker{maxDepth: maxDepth, onPath: map[*TypeInfo]bool{root: true}}
	w.walk(root, NewTypePath(param), 1)

	return w.out
}

type pathWalker struct {
	maxDepth int
	onPath   map[*TypeInfo]bool
	out      []PropertyPath
}

func (w *pathWalker) walk(t *TypeInfo, path *TypePath, depth int) {
	if depth > w.maxDepth {
		return
	}

	w.fields(t, path, depth, nil)
}

// fields lists the fields of t reachable at path. shadowed holds the names
// declared by outer structs, which hide promoted fields of the same name.
func (w *pathWalker) fields(t *TypeInfo, path *TypePath, depth int, shadowed map[string]bool) {
	own := make(map[string]bool, len(t.Fields))
	for k := range shadowed {
		own[k] = true
	}

	for i := range t.Fields {
		own[t.Fields[i].Name] = true
	}

	for i := range t.Fields {
		field := &t.Fields[i]
		if shadowed[field.Name] {
			continue
		}

		fieldPath := path.Field(field.Name)
		w.out = append(w.out, PropertyPath{
			Expr:     fieldPath.String(),
			Name:     fieldPath.Name(),
			Field:    field,
			Depth:    depth,
			Writable: !field.ReadOnly(),
		})

		nested := structOf(field.Type)
		if nested == nil || w.onPath[nested] {
			continue
		}

		w.onPath[nested] = true

		if field.Embedded {
			w.fields(nested, path, depth, own)
		} else {
			w.walk(nested, fieldPath, depth+1)
		}

		delete(w.onPath, nested)
	}
}

// structOf returns the struct reached by member access through t, if any.
func structOf(t *TypeInfo) *TypeInfo {
	if t != nil && t.Kind == TypeKindPointer {
		t = t.ElemType
	}

	if t == nil || t.Kind != TypeKindStruct {
		return nil
	}

	return t
}

// TypeString returns a human-readable string representation of a TypeInfo.
func TypeString(t *TypeInfo) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind {
	case TypeKindBasic:
		return t.GoType.String()

	case TypeKindStruct, TypeKindAlias, TypeKindExternal:
		if t.IsNamed() {
			return t.ID.Qualified()
		}

		if t.Kind == TypeKindAlias {
			return TypeString(t.Underlying)
		}

		return "struct{...}"

	case TypeKindPointer:
		return "*" + TypeString(t.ElemType)

	case TypeKindSlice:
		return "[]" + TypeString(t.ElemType)

	default:
		return t.GoType.String()
	}
}
