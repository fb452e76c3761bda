package common

import "path"

// UnknownStr is the text of enum values without a name.
const UnknownStr = "unknown"

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// QualifiedName returns "alias.Name" for a named type of pkgPath, or name
// alone for predeclared types.
func QualifiedName(pkgPath, name string) string {
	if alias := PkgAlias(pkgPath); alias != "" {
		return alias + "." + name
	}

	return name
}
