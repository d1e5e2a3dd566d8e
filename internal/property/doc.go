// Package property provides reflective read and write access to target
// objects and fetched data-source objects.
//
// Supported shapes:
//   - pointers to structs (exported fields, including promoted embedded fields)
//   - maps with string keys (map[string]any, map[string]T)
//   - nested paths such as "Address.Street", traversed through both shapes
//
// Struct fields are matched by Go name first, then by json tag name, then by
// normalized identifier ("user_name" and "userName" both match UserName).
// Field descriptors are computed once per type and cached.
//
// Writes convert the value to the destination type when it is not directly
// assignable: pointer wrap and deref, numeric/string/bool conversion, element
// wise slice conversion and plain Go conversions.
package property
