package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StringOrArray is a string list that may be written in YAML as a single
// scalar: `groups: basic` and `groups: [basic]` decode alike.
type StringOrArray []string

func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	out := StringOrArray{}

	switch node.Kind {
	case yaml.ScalarNode:
		var v string
		if err := node.Decode(&v); err != nil {
			return err
		}

		if v != "" {
			out = append(out, v)
		}
	case yaml.SequenceNode:
		if err := node.Decode((*[]string)(&out)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("line %d: want a string or a list of strings", node.Line)
	}

	*s = out

	return nil
}

// MarshalYAML writes a one-element list as a scalar.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}
