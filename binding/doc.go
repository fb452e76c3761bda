// Package binding assembles compiled property bindings into an immutable
// Set.
//
// A Builder resolves every expression once, collects problems as
// diagnostics instead of failing on the first one and refuses to build a
// Set while any error remains. The resulting Set is read-only and safe for
// concurrent use; it is passed explicitly to whatever renders or validates
// entities.
//
// Example usage:
//
//	b := binding.NewBuilder(binding.WithLogger(logger))
//	b.PropertySource(reflect.TypeFor[*store.Person](), "x.Address.City")
//	b.ExpressionSource(reflect.TypeFor[*store.Person](), "x.DisplayName()")
//
//	set, err := b.Build()
//	if err != nil {
//	    return err
//	}
//
//	city, ok := set.Property(reflect.TypeFor[*store.Person](), "AddressCity")
package binding
