package mapping

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"enricher/internal/handler"
	"enricher/internal/keys"
	"enricher/internal/strategy"
)

// LoadFile loads and parses a YAML definition file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse definition YAML: %w", err)
	}

	applyDefaults(&f)

	return &f, nil
}

// applyDefaults fills in default values for optional fields and expands the
// 121 shorthand into props.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = "1"
	}

	for i := range f.Types {
		t := &f.Types[i]

		for j := range t.Assemble {
			a := &t.Assemble[j]

			if a.KeyResolver == "" {
				a.KeyResolver = keys.Default
			}

			if a.Handler == "" {
				a.Handler = handler.Default
			}

			if a.Strategy == "" {
				a.Strategy = strategy.Default
			}

			expandOneToOne(a)
		}

		for j := range t.Disassemble {
			if t.Disassemble[j].Handler == "" {
				t.Disassemble[j].Handler = handler.NameReflect
			}
		}
	}
}

// expandOneToOne prepends the 121 shorthand to Props, sorted by source.
func expandOneToOne(a *AssembleRule) {
	if len(a.OneToOne) == 0 {
		return
	}

	sources := make([]string, 0, len(a.OneToOne))
	for src := range a.OneToOne {
		sources = append(sources, src)
	}

	slices.Sort(sources)

	expanded := make(StringOrArray, 0, len(sources)+len(a.Props))
	for _, src := range sources {
		expanded = append(expanded, src+":"+a.OneToOne[src])
	}

	a.Props = append(expanded, a.Props...)
	a.OneToOne = nil
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// WriteFile writes a File to the given path.
func WriteFile(f *File, path string) error {
	data, err := Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal definitions: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write definition file %s: %w", path, err)
	}

	return nil
}
