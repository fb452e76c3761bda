package analyze

import (
	"go/types"
	"reflect"
	"slices"

	"accessor-compiler/accessor"
	"accessor-compiler/internal/common"
)

// TypeID names an entity or field type: package path plus type name.
type TypeID struct {
	PkgPath string // e.g., "accessor-compiler/store"
	Name    string // e.g., "Person"
}

// String returns the fully qualified name, "accessor-compiler/store.Person".
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Qualified returns the type name qualified by its package alias, e.g.
// "store.Person".
func (t TypeID) Qualified() string {
	return common.QualifiedName(t.PkgPath, t.Name)
}

// TypeKind classifies a type by how member chains can cross it.
type TypeKind int

const (
	TypeKindUnknown  TypeKind = iota
	TypeKindBasic             // predeclared: int, string, bool...
	TypeKindStruct            // members can be selected
	TypeKindPointer           // selected through, may be nil
	TypeKindSlice             // leaf
	TypeKindArray             // leaf
	TypeKindAlias             // named non-struct type, e.g. store.Status
	TypeKindExternal          // named type of a package that is not loaded, e.g. time.Time
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindBasic:
		return "basic"
	case TypeKindStruct:
		return "struct"
	case TypeKindPointer:
		return "pointer"
	case TypeKindSlice:
		return "slice"
	case TypeKindArray:
		return "array"
	case TypeKindAlias:
		return "alias"
	case TypeKindExternal:
		return "external"
	default:
		return common.UnknownStr
	}
}

// TypeInfo describes a type reachable from an entity.
type TypeInfo struct {
	ID         TypeID
	Kind       TypeKind
	Underlying *TypeInfo   // named types
	ElemType   *TypeInfo   // pointers, slices and arrays
	Fields     []FieldInfo // structs, exported fields only
	GoType     types.Type
}

// IsNamed returns true if this type has a name (TypeID is set).
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// FieldInfo describes an exported struct field.
type FieldInfo struct {
	Name     string
	Exported bool
	Type     *TypeInfo
	Tag      reflect.StructTag
	Embedded bool
	Index    int // position in the declaring struct
}

// ReadOnly reports whether the field is tagged as not writable by bindings.
func (f *FieldInfo) ReadOnly() bool {
	return f.Tag.Get(accessor.AccessTag) == accessor.ReadOnly
}

// TypeGraph holds the named types of the loaded entity packages.
type TypeGraph struct {
	Types    map[TypeID]*TypeInfo
	Packages map[string]*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// Structs returns the exported structs of the loaded packages, by package
// path and then by name.
func (g *TypeGraph) Structs() []*TypeInfo {
	paths := make([]string, 0, len(g.Packages))
	for path := range g.Packages {
		paths = append(paths, path)
	}

	slices.Sort(paths)

	var out []*TypeInfo

	for _, path := range paths {
		for _, id := range g.Packages[path].Types {
			if info := g.Types[id]; info != nil && info.Kind == TypeKindStruct {
				out = append(out, info)
			}
		}
	}

	return out
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string
	Name  string
	Types []TypeID // exported named types, sorted by name
}
