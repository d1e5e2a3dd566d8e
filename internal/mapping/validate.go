package mapping

import (
	"fmt"
	"reflect"

	"enricher/internal/diagnostic"
	"enricher/internal/match"
	"enricher/internal/operation"
)

// Validate checks a definition file against the registered components and,
// for types with a known Go type, against the type's properties.
// It reports every problem instead of stopping at the first one.
func Validate(f *File, reg Registries, types map[string]reflect.Type) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError("file_is_nil", "definition file is nil", "", "")
		return res
	}

	seenTypes := map[string]struct{}{}

	for i := range f.Types {
		td := &f.Types[i]
		if td.Name == "" {
			res.AddError("empty_type_name", fmt.Sprintf("type #%d has no name", i), "", "")
			continue
		}

		if _, ok := seenTypes[td.Name]; ok {
			res.AddError("duplicate_type", fmt.Sprintf("duplicate type %q", td.Name), td.Name, "")
			continue
		}

		seenTypes[td.Name] = struct{}{}

		if len(td.Assemble) == 0 && len(td.Disassemble) == 0 {
			res.AddWarning("empty_type", fmt.Sprintf("type %q has no operations", td.Name), td.Name, "")
		}

		goType := types[td.Name]
		seenOps := map[string]struct{}{}

		for j := range td.Assemble {
			rule := &td.Assemble[j]

			id := rule.ID
			if id == "" {
				id = rule.Key + "@" + rule.Namespace
			}

			if _, ok := seenOps[id]; ok {
				res.AddError("duplicate_operation", fmt.Sprintf("duplicate operation id %q", id), td.Name, id)
			}

			seenOps[id] = struct{}{}

			validateAssemble(res, td.Name, id, rule, reg, types, goType)
		}

		for j := range td.Disassemble {
			validateDisassemble(res, f, td.Name, &td.Disassemble[j], reg, goType)
		}
	}

	return res
}

func validateAssemble(
	res *diagnostic.Diagnostics,
	bean, id string,
	rule *AssembleRule,
	reg Registries,
	types map[string]reflect.Type,
	goType reflect.Type,
) {
	if reg.Handlers != nil && !reg.Handlers.Has(rule.Handler) {
		res.AddError("unknown_handler", fmt.Sprintf("unknown assemble handler %q%s", rule.Handler, match.Hint(rule.Handler, reg.Handlers.Names())), bean, id)
	}

	if reg.Strategies != nil && !reg.Strategies.Has(rule.Strategy) {
		res.AddError("unknown_strategy", fmt.Sprintf("unknown mapping strategy %q%s", rule.Strategy, match.Hint(rule.Strategy, reg.Strategies.Names())), bean, id)
	}

	if reg.KeyResolvers != nil && !reg.KeyResolvers.Has(rule.KeyResolver) {
		res.AddError("unknown_key_resolver", fmt.Sprintf("unknown key resolver %q%s", rule.KeyResolver, match.Hint(rule.KeyResolver, reg.KeyResolvers.Names())), bean, id)
	}

	if _, ok := ResolveKeyType(rule.KeyType, types); !ok {
		res.AddError("unknown_key_type", fmt.Sprintf("unknown key type %q", rule.KeyType), bean, id)
	}

	if rule.Key != "" {
		if err := checkPath(rule.Key, goType); err != nil {
			res.AddError("invalid_key", fmt.Sprintf("invalid key: %v", err), bean, id)
		}
	}

	mappings, err := operation.ParseMappings(rule.Props...)
	if err != nil {
		res.AddError("invalid_props", fmt.Sprintf("invalid props: %v", err), bean, id)
	}

	for _, m := range mappings {
		if err := checkPath(m.Reference, goType); err != nil {
			res.AddError("invalid_reference", fmt.Sprintf("invalid reference: %v", err), bean, id)
		}

		if rule.Namespace == "" && m.HasSource() {
			if err := checkPath(m.Source, goType); err != nil {
				res.AddError("invalid_source", fmt.Sprintf("invalid self-mapping source: %v", err), bean, id)
			}
		}
	}

	if len(mappings) == 0 && err == nil {
		res.AddWarning("no_props", "operation maps no property", bean, id)
	}

	if _, err := BuildCondition(rule.Condition); err != nil {
		res.AddError("invalid_condition", err.Error(), bean, id)
	}
}

func validateDisassemble(
	res *diagnostic.Diagnostics,
	f *File,
	bean string,
	rule *DisassembleRule,
	reg Registries,
	goType reflect.Type,
) {
	id := rule.ID
	if id == "" {
		id = "disassemble:" + rule.Key
	}

	if err := checkPath(rule.Key, goType); err != nil {
		res.AddError("invalid_key", fmt.Sprintf("invalid key: %v", err), bean, id)
	}

	if reg.Disassemblers != nil && !reg.Disassemblers.Has(rule.Handler) {
		res.AddError("unknown_handler", fmt.Sprintf("unknown disassemble handler %q%s", rule.Handler, match.Hint(rule.Handler, reg.Disassemblers.Names())), bean, id)
	}

	if rule.Type != "" && f.Type(rule.Type) == nil {
		res.AddError("unknown_nested_type", fmt.Sprintf("nested type %q is not defined%s", rule.Type, match.Hint(rule.Type, f.TypeNames())), bean, id)
	}

	if rule.Type != "" && rule.TypeProperty != "" {
		res.AddWarning("type_property_ignored", "type_property is ignored when type is set", bean, id)
	}
}

// checkPath parses path and, when t is known, resolves it against t.
func checkPath(path string, t reflect.Type) error {
	if t == nil {
		_, err := ParsePath(path)
		return err
	}

	return validatePathAgainstType(path, t)
}
