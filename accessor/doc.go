// Package accessor classifies lambda expressions and compiles them into
// reusable accessors.
//
// Classify decides whether a lambda body is a pure property chain
// (x.Address.City) or an opaque expression (fmt.Sprint(x.Age),
// x.Name + "!"). CompileChain turns a chain into a getter, an optional
// setter and the declared types; CompileOpaque turns any body into an
// evaluation closure.
//
// Compilation resolves every field index and method up front. The compiled
// closures hold no mutable state, so one accessor may be invoked from many
// goroutines against independent values.
package accessor
