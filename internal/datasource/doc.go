// Package datasource provides containers backed by databases: MySQL tables
// through gorm and MongoDB collections.
//
// Both containers issue one query per lookup, filtering the key column with
// the requested keys, and return the matching rows as map[string]any keyed by
// the requested keys. Database values are matched to requested keys by their
// printed form, so an int key finds an int64 column value.
package datasource
