package mapping

import (
	"fmt"
	"slices"

	"github.com/spf13/cast"

	"enricher/internal/common"
	"enricher/internal/errs"
	"enricher/internal/operation"
	"enricher/internal/property"
)

// BuildCondition turns a rule into an operation condition. A nil rule yields
// a nil condition, which always applies.
func BuildCondition(rule *ConditionRule) (operation.Condition, error) {
	if rule == nil {
		return nil, nil
	}

	if _, err := ParsePath(rule.Property); err != nil {
		return nil, errs.ErrConfiguration.WithMsg("condition property").WithCause(err)
	}

	var test func(v any) (bool, error)

	switch rule.Kind {
	case ConditionNotNull:
		test = func(v any) (bool, error) { return !common.IsNil(v), nil }
	case ConditionNotZero:
		test = func(v any) (bool, error) { return !common.IsZero(v), nil }
	case ConditionEquals, ConditionIn:
		if len(rule.Values) == 0 {
			return nil, errs.ErrConfiguration.WithMsg("condition %s on %q: no values", rule.Kind, rule.Property)
		}

		if rule.Kind == ConditionEquals && len(rule.Values) > 1 {
			return nil, errs.ErrConfiguration.WithMsg("condition equals on %q: more than one value", rule.Property)
		}

		test = func(v any) (bool, error) {
			if common.IsNil(v) {
				return false, nil
			}

			s, err := cast.ToStringE(v)
			if err != nil {
				return false, fmt.Errorf("compare %q: %w", rule.Property, err)
			}

			return slices.Contains(rule.Values, s), nil
		}
	default:
		return nil, errs.ErrConfiguration.WithMsg("unknown condition kind %q", rule.Kind)
	}

	return operation.ConditionFunc(func(target any, _ operation.Operation) (bool, error) {
		v, err := property.Read(target, rule.Property)
		if err != nil {
			return false, err
		}

		ok, err := test(v)
		if err != nil {
			return false, err
		}

		return ok != rule.Negate, nil
	}), nil
}
