package handler

import (
	"fmt"
	"reflect"
	"sort"

	"enricher/internal/common"
	"enricher/internal/errs"
	"enricher/internal/operation"
	"enricher/internal/property"
)

// NameReflect names the reflective disassemble handler.
const NameReflect = "reflect"

// Reflect extracts nested objects by reading the operation's key property.
// Nested collections are flattened and nil values dropped. Struct values are
// returned as pointers into the target so that enrichment reaches it.
type Reflect struct{}

func (Reflect) Name() string { return NameReflect }

func (Reflect) Extract(target any, op *operation.DisassembleOperation) ([]any, error) {
	out := []any{}
	if target == nil {
		return out, nil
	}

	v, err := property.ReadRef(target, op.Key())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err = flatten(out, v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func flatten(out []any, v any) ([]any, error) {
	values, ok, err := objectMapValues(v)
	if err != nil {
		return nil, err
	}

	if ok {
		for _, item := range values {
			if out, err = flatten(out, item); err != nil {
				return nil, err
			}
		}

		return out, nil
	}

	for _, item := range property.Elements(v) {
		_, isMap, err := objectMapValues(item)
		if err != nil {
			return nil, err
		}

		if !isMap && !property.IsCollection(item) {
			out = append(out, item)
			continue
		}

		if out, err = flatten(out, item); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// objectMapValues returns the values of a map holding struct pointers, in key
// order. Other maps are objects themselves and are not expanded. Struct values
// stored in a map cannot be written in place and are rejected.
func objectMapValues(v any) ([]any, bool, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || property.Base(rv.Type().Elem()).Kind() != reflect.Struct {
		return nil, false, nil
	}

	if rv.Type().Elem().Kind() == reflect.Struct {
		return nil, false, errs.ErrProperty.WithMsg("%s: struct map values cannot be enriched in place, store pointers", rv.Type())
	}

	mapKeys := rv.MapKeys()
	sort.Slice(mapKeys, func(i, j int) bool {
		return fmt.Sprint(mapKeys[i].Interface()) < fmt.Sprint(mapKeys[j].Interface())
	})

	values := make([]any, 0, len(mapKeys))
	for _, k := range mapKeys {
		values = append(values, rv.MapIndex(k).Interface())
	}

	return values, true, nil
}

// NewDisassembleRegistry returns a registry holding the built-in disassemble
// handlers.
func NewDisassembleRegistry() *common.Registry[operation.DisassembleHandler] {
	return common.NewRegistry[operation.DisassembleHandler]("disassemble handler", Reflect{})
}
