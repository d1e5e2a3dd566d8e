// Package mapping provides the YAML schema of operation definitions, its
// parsing and validation, and the Provider building operation graphs from it.
//
// # Schema Overview
//
// A definition file has the following structure:
//
//	version: "1"
//	types:
//	  - name: order
//	    assemble:
//	      - key: UserID
//	        key_type: int
//	        namespace: users
//	        handler: one_to_one          # default
//	        strategy: overwrite_not_null # default
//	        # Simplified 1:1 mappings, source property to target property
//	        121:
//	          Name: UserName
//	        # Full mapping expressions; ":User" maps the whole fetched object
//	        props: [Email:UserEmail, ":User"]
//	        groups: [basic]
//	        sort: 1
//	        condition:
//	          kind: not_zero
//	          property: UserID
//	      - key: TagIDs
//	        key_resolver: separable
//	        key_description: ";"
//	        namespace: tags
//	        handler: many_to_many
//	        props: Name:TagNames
//	    disassemble:
//	      - key: Items
//	        type: item
//	  - name: item
//	    assemble:
//	      - key: ProductID
//	        namespace: products
//	        props: Title
//
// # Defaults
//
// Parse fills in the default handler, strategy, key resolver and disassemble
// handler, and expands the "121" shorthand into props, sorted by source.
//
// # Nested types
//
// A disassemble rule names its nested type with "type". Without it the type
// of each nested object is resolved at run time: from the property named by
// "type_property" if set, else from the Go type bound with WithType.
// Objects whose type cannot be resolved are skipped.
package mapping
