// Package cli implements the bindcheck command line: it loads a bindings
// file, checks every binding against the entity package statically,
// reports the diagnostics and generates typed accessors.
package cli
