package binding_test

import (
	"errors"
	"fmt"
	"reflect"

	"accessor-compiler/accessor"
	"accessor-compiler/binding"
	"accessor-compiler/store"
)

func Example() {
	person := reflect.TypeFor[*store.Person]()

	b := binding.NewBuilder()
	b.PropertySource(person, "x.Name")
	b.PropertySource(person, "x.Address.City")
	b.ExpressionSource(person, `x.Name + " from " + x.Address.City`)

	set, err := b.Build()
	if err != nil {
		fmt.Println(err)

		return
	}

	p := &store.Person{Name: "Ann", Address: &store.Address{City: "Oslo"}}

	for _, meta := range set.Properties(person) {
		s, err := meta.StringGetter()(p)
		fmt.Printf("%q %q %v\n", meta.PropertyName(), s, err)
	}

	_, err = set.Properties(person)[2].StringGetter()(&store.Person{Name: "Bob"})

	var nullErr *accessor.NullIntermediateError
	if errors.As(err, &nullErr) {
		fmt.Println("nil", nullErr.Nil, "reading", nullErr.Member)
	}
	// Output:
	// "Name" "Ann" <nil>
	// "AddressCity" "Oslo" <nil>
	// "" "Ann from Oslo" <nil>
	// nil x.Address reading City
}
