// Package strategy implements the property mapping strategies deciding
// whether a fetched value replaces a target property.
package strategy

import (
	"fmt"

	"enricher/internal/common"
	"enricher/internal/operation"
	"enricher/internal/property"
)

// Strategy names.
const (
	NameOverwrite         = "overwrite"
	NameOverwriteNotNull  = "overwrite_not_null"
	NameReferenceIfAbsent = "reference_if_absent"

	// Default is used when an operation names no strategy.
	Default = NameOverwriteNotNull
)

// Overwrite always writes the source value.
type Overwrite struct{}

func (Overwrite) Name() string { return NameOverwrite }

func (Overwrite) Map(_, _, sourceValue any, _ operation.PropertyMapping, write func(any) error) error {
	return write(sourceValue)
}

// OverwriteNotNull writes the source value unless it is nil.
// Zero values of non-nilable types are written.
type OverwriteNotNull struct{}

func (OverwriteNotNull) Name() string { return NameOverwriteNotNull }

func (OverwriteNotNull) Map(_, _, sourceValue any, _ operation.PropertyMapping, write func(any) error) error {
	if common.IsNil(sourceValue) {
		return nil
	}

	return write(sourceValue)
}

// ReferenceIfAbsent writes the source value only when the target's current
// reference value is null: a missing map entry, or a nil pointer, interface,
// slice or map. Zero values of other types count as present.
type ReferenceIfAbsent struct{}

func (ReferenceIfAbsent) Name() string { return NameReferenceIfAbsent }

func (ReferenceIfAbsent) Map(target, _, sourceValue any, m operation.PropertyMapping, write func(any) error) error {
	current, err := property.Read(target, m.Reference)
	if err != nil {
		return fmt.Errorf("read %s: %w", m.Reference, err)
	}

	if !common.IsNil(current) {
		return nil
	}

	return write(sourceValue)
}

// NewRegistry returns a registry holding the built-in strategies.
func NewRegistry() *common.Registry[operation.MappingStrategy] {
	return common.NewRegistry[operation.MappingStrategy]("mapping strategy",
		Overwrite{},
		OverwriteNotNull{},
		ReferenceIfAbsent{},
	)
}
