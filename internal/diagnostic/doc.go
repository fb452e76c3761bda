// Package diagnostic collects structured errors, warnings and notes raised
// while building and checking property bindings.
//
// Key capabilities:
//   - Rejected bindings (opaque expressions bound as properties, type errors)
//   - Duplicate binding reports
//   - Warnings for bindings without a textual projection
//   - Notes on read-only properties
package diagnostic
