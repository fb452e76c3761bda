// Package mapping provides the YAML schema of bindings files, their parsing
// and their validation.
//
// A bindings file pins which members of which entity types are bound, so
// that the static checker and the code generator work from the same list
// the application registers at startup.
//
// # Schema Overview
//
//	version: "1"
//	package: ./store          # go/packages pattern of the entity package
//	param: x                  # parameter name used in expressions
//	entities:
//	  - type: store.Person
//	    # Strict bindings: property chains only
//	    properties:
//	      - x.Name
//	      - expr: x.Address.City
//	        name: City        # optional name for generated accessors
//	    # Shorthand for properties: dotted member paths
//	    paths: [Email, Address.Zip]
//	    # Permissive bindings: any expression
//	    expressions:
//	      - fmt.Sprint(x.Age)
//	      - expr: x.Age
//	        any_text: true
//
// # Type References
//
// Entity types can be named as:
//   - Short form: "store.Person" (package name + type name)
//   - Full form: "accessor-compiler/store.Person" (import path + type name)
//   - Name only: "Person" (first loaded type of that name)
package mapping
