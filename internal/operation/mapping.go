package operation

import (
	"strings"

	"enricher/internal/errs"
)

const (
	mappingSeparator = ","
	mappingArrow     = ":"
)

// PropertyMapping maps a property of a fetched object onto a target property.
// An empty Source means the whole fetched object.
type PropertyMapping struct {
	Source    string
	Reference string
}

// HasSource reports whether a source property is named.
func (m PropertyMapping) HasSource() bool {
	return m.Source != ""
}

func (m PropertyMapping) String() string {
	return m.Source + mappingArrow + m.Reference
}

// ParseMappings parses "source:reference" mapping expressions. Each expression
// may hold several comma-separated mappings; a bare name maps a property onto
// the same name. Duplicates are dropped, order is kept.
func ParseMappings(exprs ...string) ([]PropertyMapping, error) {
	var out []PropertyMapping

	seen := make(map[PropertyMapping]struct{})

	for _, expr := range exprs {
		if strings.TrimSpace(expr) == "" {
			continue
		}

		for _, part := range strings.Split(expr, mappingSeparator) {
			m, err := parseMapping(part)
			if err != nil {
				return nil, err
			}

			if _, dup := seen[m]; dup {
				continue
			}

			seen[m] = struct{}{}
			out = append(out, m)
		}
	}

	return out, nil
}

func parseMapping(s string) (PropertyMapping, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PropertyMapping{}, errs.ErrConfiguration.WithMsg("illegal property mapping: empty entry")
	}

	pair := strings.Split(s, mappingArrow)

	switch len(pair) {
	case 1:
		return PropertyMapping{Source: s, Reference: s}, nil
	case 2:
		m := PropertyMapping{Source: strings.TrimSpace(pair[0]), Reference: strings.TrimSpace(pair[1])}
		if m.Reference == "" {
			return PropertyMapping{}, errs.ErrConfiguration.WithMsg("illegal property mapping %q: empty reference", s)
		}

		return m, nil
	default:
		return PropertyMapping{}, errs.ErrConfiguration.WithMsg("illegal property mapping %q", s)
	}
}
