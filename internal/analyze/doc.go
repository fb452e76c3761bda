// Package analyze loads entity packages and checks binding expressions
// against them without running any code.
//
// It uses golang.org/x/tools/go/packages with AST and go/types
// to build a canonical in-memory model of entity structs and their fields,
// and type-checks expressions in a synthetic package that imports the
// entity package.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: describes kind (struct/basic/alias/pointer/slice/external)
//   - FieldInfo: describes field name, type, tags, and embedding
//   - Checker: static classification of binding expressions
//   - Binding: the static shape of a checked expression
package analyze
