// Package expr models single-parameter selector expressions as typed trees.
//
// An expression is a Lambda: one parameter of a root type and a body Node.
// Every node carries its static reflect.Type, computed when the node is
// constructed, so type errors surface while the configuration is built and
// never while a request is served.
//
// Expressions come from two front ends:
//
//   - Go source parsed with go/parser and typed against reflect types:
//
//     l, err := expr.For[*store.Person, string]("x.Address.City")
//
//   - Programmatic construction with the NewXxx constructors, or the
//     member-pointer-like token form:
//
//     l, err := expr.Select(reflect.TypeFor[*store.Person](), "Address.City")
//
// # Supported syntax
//
//   - the parameter identifier and field selectors: x.Address.City
//   - parentheses, untyped literals, true and false
//   - conversions to predeclared types: any(x.Age), int64(x.Age)
//   - calls to registered functions: fmt.Sprint(x.Age), strings.ToUpper(x.Name)
//   - method calls: x.Created.Format("2006"), x.Status.String()
//   - unary - and !, arithmetic, string concatenation, comparison, && and ||
//
// Conditional nodes have no Go syntax and are only built with NewCond.
package expr
