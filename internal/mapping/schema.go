package mapping

// File is the root of a YAML operation definition file.
type File struct {
	// Version of the definition schema.
	Version string `yaml:"version,omitempty"`

	// Types lists the operation graphs, one per target type.
	Types []TypeDef `yaml:"types"`
}

// TypeDef defines the operation graph of one target type.
type TypeDef struct {
	// Name identifies the type. Nested rules refer to it.
	Name string `yaml:"name"`

	// Assemble lists the operations filling the type from containers.
	Assemble []AssembleRule `yaml:"assemble,omitempty"`

	// Disassemble lists the properties holding nested objects.
	Disassemble []DisassembleRule `yaml:"disassemble,omitempty"`
}

// AssembleRule defines one assemble operation.
type AssembleRule struct {
	// ID defaults to "key@namespace".
	ID string `yaml:"id,omitempty"`

	// Key is the property holding the lookup key. Empty means the target itself.
	Key string `yaml:"key,omitempty"`

	// KeyType names the type keys are converted to (e.g. "int", "string").
	KeyType string `yaml:"key_type,omitempty"`

	// KeyResolver names the key resolver. Defaults to "property".
	KeyResolver string `yaml:"key_resolver,omitempty"`

	// KeyDescription configures the key resolver: the separator of a
	// separable key or the field mappings of a composite key.
	KeyDescription string `yaml:"key_description,omitempty"`

	// Namespace of the container. Empty maps the target onto itself.
	Namespace string `yaml:"namespace,omitempty"`

	// Handler names the assemble handler. Defaults to "one_to_one".
	Handler string `yaml:"handler,omitempty"`

	// Strategy names the mapping strategy. Defaults to "overwrite_not_null".
	Strategy string `yaml:"strategy,omitempty"`

	// Props lists property mappings as "source:reference" expressions.
	Props StringOrArray `yaml:"props,omitempty"`

	// OneToOne is a shorthand for props: source property to reference property.
	OneToOne map[string]string `yaml:"121,omitempty"`

	// Sort orders operations in ordered dispatch. Lower runs first.
	Sort int `yaml:"sort,omitempty"`

	// Groups the operation belongs to, for filtering.
	Groups StringOrArray `yaml:"groups,omitempty"`

	// Condition restricts the targets the operation applies to.
	Condition *ConditionRule `yaml:"condition,omitempty"`
}

// DisassembleRule defines one disassemble operation.
type DisassembleRule struct {
	// ID defaults to "disassemble:key".
	ID string `yaml:"id,omitempty"`

	// Key is the property holding the nested objects.
	Key string `yaml:"key"`

	// Type names the nested type. Empty resolves the type of each nested
	// object at run time, from TypeProperty or from its registered Go type.
	Type string `yaml:"type,omitempty"`

	// TypeProperty names the property of a nested object holding its type name.
	TypeProperty string `yaml:"type_property,omitempty"`

	// Handler names the disassemble handler. Defaults to "reflect".
	Handler string `yaml:"handler,omitempty"`

	// Sort orders disassemble operations.
	Sort int `yaml:"sort,omitempty"`

	// Groups the operation belongs to, for filtering.
	Groups StringOrArray `yaml:"groups,omitempty"`
}

// ConditionKind names a built-in condition.
type ConditionKind string

const (
	ConditionNotNull ConditionKind = "not_null"
	ConditionNotZero ConditionKind = "not_zero"
	ConditionEquals  ConditionKind = "equals"
	ConditionIn      ConditionKind = "in"
)

// ConditionRule defines a condition over one target property.
type ConditionRule struct {
	Kind     ConditionKind `yaml:"kind"`
	Property string        `yaml:"property"`
	// Values compared with the property by equals and in, as strings.
	Values StringOrArray `yaml:"values,omitempty"`
	// Negate inverts the outcome.
	Negate bool `yaml:"negate,omitempty"`
}

// Type returns the type named name, or nil.
func (f *File) Type(name string) *TypeDef {
	if f == nil {
		return nil
	}

	for i := range f.Types {
		if f.Types[i].Name == name {
			return &f.Types[i]
		}
	}

	return nil
}

// TypeNames returns the type names in declaration order.
func (f *File) TypeNames() []string {
	names := make([]string, 0, len(f.Types))
	for _, t := range f.Types {
		names = append(names, t.Name)
	}

	return names
}
