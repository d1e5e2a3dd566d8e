package operation

import "slices"

// Filter selects the operations applied in one run. A nil Filter selects all.
type Filter func(op Operation) bool

// Allows reports whether op passes f.
func (f Filter) Allows(op Operation) bool {
	return f == nil || f(op)
}

// All selects every operation.
func All() Filter {
	return nil
}

// InGroups selects operations belonging to at least one of groups.
func InGroups(groups ...string) Filter {
	return func(op Operation) bool {
		for _, g := range op.Groups() {
			if slices.Contains(groups, g) {
				return true
			}
		}

		return false
	}
}

// ExcludeGroups rejects operations belonging to any of groups.
func ExcludeGroups(groups ...string) Filter {
	include := InGroups(groups...)

	return func(op Operation) bool {
		return !include(op)
	}
}

// WithIDs selects operations by id.
func WithIDs(ids ...string) Filter {
	return func(op Operation) bool {
		return slices.Contains(ids, op.ID())
	}
}

// AssemblesOnly lets every disassemble operation through and applies f to
// assemble operations only.
func AssemblesOnly(f Filter) Filter {
	return func(op Operation) bool {
		if _, ok := op.(*DisassembleOperation); ok {
			return true
		}

		return f.Allows(op)
	}
}

// AllOf selects operations passing every filter.
func AllOf(filters ...Filter) Filter {
	return func(op Operation) bool {
		for _, f := range filters {
			if !f.Allows(op) {
				return false
			}
		}

		return true
	}
}
