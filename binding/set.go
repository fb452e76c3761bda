package binding

import (
	"reflect"
	"slices"

	"accessor-compiler/metadata"
)

// Set is an immutable collection of bindings grouped by root type.
type Set struct {
	types  []reflect.Type
	byType map[reflect.Type][]metadata.Expression
	named  map[key]metadata.Expression
	n      int
}

func newSet(entries []metadata.Expression) *Set {
	s := &Set{
		byType: make(map[reflect.Type][]metadata.Expression),
		named:  make(map[key]metadata.Expression),
		n:      len(entries),
	}

	for _, meta := range entries {
		t := meta.ObjectType()
		if _, ok := s.byType[t]; !ok {
			s.types = append(s.types, t)
		}

		s.byType[t] = append(s.byType[t], meta)

		if name := meta.PropertyName(); name != "" {
			s.named[key{object: t, name: name}] = meta
		}
	}

	return s
}

// Property returns the binding named name on objectType. Anonymous
// expressions are never found by name.
func (s *Set) Property(objectType reflect.Type, name string) (metadata.Expression, bool) {
	meta, ok := s.named[key{object: objectType, name: name}]

	return meta, ok
}

// Writable returns the named binding when it is a writable property.
func (s *Set) Writable(objectType reflect.Type, name string) (*metadata.PropertyMetadata, bool) {
	meta, ok := s.Property(objectType, name)
	if !ok {
		return nil, false
	}

	prop, ok := meta.(*metadata.PropertyMetadata)
	if !ok || !prop.IsWritable() {
		return nil, false
	}

	return prop, true
}

// Properties returns the bindings of objectType in registration order.
func (s *Set) Properties(objectType reflect.Type) []metadata.Expression {
	return slices.Clone(s.byType[objectType])
}

// Types returns the bound root types in order of first registration.
func (s *Set) Types() []reflect.Type {
	return slices.Clone(s.types)
}

// Len returns the number of bindings.
func (s *Set) Len() int {
	return s.n
}
