package mapping

import (
	"slices"
	"strings"

	"accessor-compiler/internal/analyze"
)

// ResolveTypeID resolves a type ID string like:
// - "store.Person" (short)
// - "accessor-compiler/store.Person" (full)
// - "Person" (name only).
func ResolveTypeID(typeIDStr string, graph *analyze.TypeGraph) *analyze.TypeInfo {
	if graph == nil || typeIDStr == "" {
		return nil
	}

	// Name-only: first match in package order.
	if !strings.Contains(typeIDStr, ".") {
		for _, pkg := range sortedPackages(graph) {
			if t := graph.GetType(analyze.TypeID{PkgPath: pkg, Name: typeIDStr}); t != nil {
				return t
			}
		}

		return nil
	}

	lastDot := strings.LastIndex(typeIDStr, ".")
	pkgStr := typeIDStr[:lastDot]

	name := typeIDStr[lastDot+1:]
	if pkgStr == "" || name == "" {
		return nil
	}

	// 1) exact match (for fully qualified import path)
	if t := graph.GetType(analyze.TypeID{PkgPath: pkgStr, Name: name}); t != nil {
		return t
	}

	// 2) package name or suffix match (for short forms like "store.Person")
	for _, path := range sortedPackages(graph) {
		pkg := graph.Packages[path]
		if pkg.Name != pkgStr && !strings.HasSuffix(path, "/"+pkgStr) {
			continue
		}

		if t := graph.GetType(analyze.TypeID{PkgPath: path, Name: name}); t != nil {
			return t
		}
	}

	return nil
}

func sortedPackages(graph *analyze.TypeGraph) []string {
	paths := make([]string, 0, len(graph.Packages))
	for path := range graph.Packages {
		paths = append(paths, path)
	}

	slices.Sort(paths)

	return paths
}
