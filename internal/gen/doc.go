// Package gen generates typed Go accessors for statically checked property
// chains.
//
// Generation uses text/template + go/format. For a chain such as
// x.Address.City on store.Person it emits
//
//	func PersonAddressCityGet(x *store.Person) (string, error)
//	func PersonAddressCitySet(x *store.Person, v string) error
//
// Every operand that may be nil is checked before it is read; a nil operand
// yields *accessor.NullIntermediateError with the same fields the runtime
// compiler reports. The setter is only emitted for writable chains.
package gen
