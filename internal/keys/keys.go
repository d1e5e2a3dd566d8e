// Package keys builds the key resolvers extracting lookup keys from targets.
//
// Three resolvers are provided:
//   - property: the value of one property, converted to the key type if set
//   - separable: a delimited string or a collection, fanned out to many keys
//   - composite: a struct key built from several target properties
package keys

import (
	"fmt"
	"reflect"
	"strings"

	"enricher/internal/common"
	"enricher/internal/errs"
	"enricher/internal/operation"
	"enricher/internal/property"
)

// Provider names.
const (
	NameProperty  = "property"
	NameSeparable = "separable"
	NameComposite = "composite"

	// Default is used when an operation names no resolver.
	Default = NameProperty

	// DefaultSeparator splits separable keys when no description is given.
	DefaultSeparator = ","
)

// NewRegistry returns a registry holding the built-in resolver providers.
func NewRegistry() *common.Registry[operation.KeyResolverProvider] {
	return common.NewRegistry[operation.KeyResolverProvider]("key resolver",
		Property{},
		Separable{},
		Composite{},
	)
}

// Property resolves the value of the key property. An empty key resolves the
// target itself.
type Property struct{}

func (Property) Name() string { return NameProperty }

func (Property) Build(spec operation.KeySpec) (operation.KeyResolver, error) {
	if _, err := property.SplitPath(spec.Key); err != nil {
		return nil, errs.ErrKeyResolution.WithMsg("invalid key %q", spec.Key).WithCause(err)
	}

	return operation.KeyResolverFunc(func(target any) (any, error) {
		v, err := property.Read(target, spec.Key)
		if err != nil {
			return nil, errs.ErrKeyResolution.WithMsg("read key %q", spec.Key).WithCause(err)
		}

		return convertKey(v, spec.KeyType)
	}), nil
}

// Separable splits the key property into many keys. Strings are split by the
// separator held in the key description; slices and arrays yield their
// elements. Nil or empty input yields an empty, non-nil slice.
type Separable struct{}

func (Separable) Name() string { return NameSeparable }

func (Separable) Build(spec operation.KeySpec) (operation.KeyResolver, error) {
	sep := spec.Description
	if sep == "" {
		sep = DefaultSeparator
	}

	return operation.KeyResolverFunc(func(target any) (any, error) {
		v, err := property.Read(target, spec.Key)
		if err != nil {
			return nil, errs.ErrKeyResolution.WithMsg("read key %q", spec.Key).WithCause(err)
		}

		var raw []any

		if s, ok := v.(string); ok {
			for _, part := range strings.Split(s, sep) {
				if part = strings.TrimSpace(part); part != "" {
					raw = append(raw, part)
				}
			}
		} else {
			raw = property.Elements(v)
		}

		out := make([]any, 0, len(raw))
		for _, k := range raw {
			ck, err := convertKey(k, spec.KeyType)
			if err != nil {
				return nil, err
			}

			out = append(out, ck)
		}

		return out, nil
	}), nil
}

// Composite builds a struct key by copying target properties into a fresh
// key value. The key description lists "source:keyField" mappings; without
// one, every key field is filled from the target property of the same name.
type Composite struct{}

func (Composite) Name() string { return NameComposite }

func (Composite) Build(spec operation.KeySpec) (operation.KeyResolver, error) {
	kt := spec.KeyType
	if kt == nil || property.Base(kt).Kind() != reflect.Struct {
		return nil, errs.ErrKeyResolution.WithMsg("composite key type %v is not a struct", kt)
	}

	kt = property.Base(kt)
	if !kt.Comparable() {
		return nil, errs.ErrKeyResolution.WithMsg("composite key type %s is not comparable", kt)
	}

	mappings, err := compositeMappings(kt, spec.Description)
	if err != nil {
		return nil, err
	}

	return operation.KeyResolverFunc(func(target any) (any, error) {
		key := reflect.New(kt)

		for _, m := range mappings {
			v, err := property.Read(target, m.Source)
			if err != nil {
				return nil, errs.ErrKeyResolution.WithMsg("read %q", m.Source).WithCause(err)
			}

			if err := property.Write(key.Interface(), m.Reference, v); err != nil {
				return nil, errs.ErrKeyResolution.WithMsg("set %s.%s", kt.Name(), m.Reference).WithCause(err)
			}
		}

		return key.Elem().Interface(), nil
	}), nil
}

func compositeMappings(kt reflect.Type, description string) ([]operation.PropertyMapping, error) {
	d := property.Describe(kt)

	if strings.TrimSpace(description) == "" {
		if len(d.Fields) == 0 {
			return nil, errs.ErrKeyResolution.WithMsg("composite key type %s has no exported fields", kt)
		}

		mappings := make([]operation.PropertyMapping, 0, len(d.Fields))
		for _, f := range d.Fields {
			mappings = append(mappings, operation.PropertyMapping{Source: f.Name, Reference: f.Name})
		}

		return mappings, nil
	}

	mappings, err := operation.ParseMappings(description)
	if err != nil {
		return nil, errs.ErrKeyResolution.WithMsg("composite key description %q", description).WithCause(err)
	}

	for _, m := range mappings {
		if !m.HasSource() {
			return nil, errs.ErrKeyResolution.WithMsg("composite key mapping %q has no source", m)
		}

		if _, ok := d.Field(m.Reference); !ok {
			return nil, errs.ErrKeyResolution.WithMsg("composite key type %s has no field %q", kt, m.Reference)
		}
	}

	return mappings, nil
}

func convertKey(v any, kt reflect.Type) (any, error) {
	if v == nil || kt == nil {
		return v, nil
	}

	out, err := property.Convert(v, kt)
	if err != nil {
		return nil, errs.ErrKeyResolution.WithMsg("convert key %v to %s", v, kt).WithCause(err)
	}

	return out, nil
}

// Describe renders a resolved key for logs.
func Describe(key any) string {
	if keys, ok := key.([]any); ok {
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprint(k)
		}

		return "[" + strings.Join(parts, ",") + "]"
	}

	return fmt.Sprint(key)
}
