package filter

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// Match evaluates a lowered filter against an in-memory record. Top-level
// keys are implicitly AND'ed, matching the target query layer's treatment
// of sibling filter entries. Comparisons against a missing or null field
// evaluate to false, mirroring SQL null semantics.
//
// Match is primarily useful for unit-testing filters without a database.
func Match(f Filter, record map[string]any) (bool, error) {
	for key, value := range f {
		ok, err := matchEntry(key, value, record)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchEntry(key string, value any, record map[string]any) (bool, error) {
	switch key {
	case KeyAnd:
		list, ok := value.([]Filter)
		if !ok {
			return false, errors.Errorf("AND must hold a filter list, got %T", value)
		}
		for _, f := range list {
			ok, err := Match(f, record)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case KeyOr:
		list, ok := value.([]Filter)
		if !ok {
			return false, errors.Errorf("OR must hold a filter list, got %T", value)
		}
		for _, f := range list {
			ok, err := Match(f, record)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case KeyNot:
		switch inner := value.(type) {
		case Filter:
			ok, err := Match(inner, record)
			return !ok, err
		case []Filter:
			for _, f := range inner {
				ok, err := Match(f, record)
				if err != nil {
					return false, err
				}
				if !ok {
					return true, nil
				}
			}
			return false, nil
		default:
			return false, errors.Errorf("NOT must hold a filter or filter list, got %T", value)
		}

	default:
		return matchField(record[key], value)
	}
}

func matchField(fieldValue, expected any) (bool, error) {
	switch cond := expected.(type) {
	case nil:
		return fieldValue == nil, nil
	case Condition:
		return matchCondition(fieldValue, cond)
	case Filter:
		// Navigation path: descend into the related record.
		nested, ok := fieldValue.(map[string]any)
		if !ok {
			return false, nil
		}
		return Match(cond, nested)
	default:
		// Scalar equality shorthand.
		return looseEqual(fieldValue, expected), nil
	}
}

func matchCondition(fieldValue any, cond Condition) (bool, error) {
	insensitive := cond[KeyMode] == ModeInsensitive

	for op, operand := range cond {
		var ok bool
		var err error
		switch op {
		case KeyMode:
			continue
		case OpEquals:
			ok = looseEqual(fieldValue, operand)
		case OpNotKey:
			ok, err = matchNegation(fieldValue, operand)
		case OpGt, OpGte, OpLt, OpLte:
			ok = matchOrdering(fieldValue, op, operand)
		case OpIn:
			list, isList := operand.([]any)
			if !isList {
				return false, errors.Errorf("in operand must be a list, got %T", operand)
			}
			for _, item := range list {
				if looseEqual(fieldValue, item) {
					ok = true
					break
				}
			}
		case OpContains:
			ok = matchSubstring(fieldValue, operand, insensitive, strings.Contains)
		case OpStartsWith:
			ok = matchSubstring(fieldValue, operand, insensitive, strings.HasPrefix)
		case OpEndsWith:
			ok = matchSubstring(fieldValue, operand, insensitive, strings.HasSuffix)
		case OpSome, OpEvery:
			ok, err = matchQuantifier(fieldValue, op, operand)
		default:
			return false, errors.Errorf("unknown filter operator %q", op)
		}
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// matchNegation handles the three `not` shapes the lowering engine emits:
// {not: null}, {not: value}, and {not: {equals: value}}.
func matchNegation(fieldValue, operand any) (bool, error) {
	if nested, ok := operand.(Condition); ok {
		matched, err := matchCondition(fieldValue, nested)
		return !matched, err
	}
	if operand == nil {
		return fieldValue != nil, nil
	}
	// SQL inequality: null is neither equal nor unequal.
	if fieldValue == nil {
		return false, nil
	}
	return !looseEqual(fieldValue, operand), nil
}

func matchQuantifier(fieldValue any, op string, operand any) (bool, error) {
	inner, ok := operand.(Filter)
	if !ok {
		return false, errors.Errorf("%s operand must be a filter, got %T", op, operand)
	}
	items, ok := fieldValue.([]map[string]any)
	if !ok {
		generic, isGeneric := fieldValue.([]any)
		if !isGeneric {
			return false, nil
		}
		for _, item := range generic {
			m, isMap := item.(map[string]any)
			if !isMap {
				return false, nil
			}
			items = append(items, m)
		}
	}

	for _, item := range items {
		matched, err := Match(inner, item)
		if err != nil {
			return false, err
		}
		if op == OpSome && matched {
			return true, nil
		}
		if op == OpEvery && !matched {
			return false, nil
		}
	}
	return op == OpEvery, nil
}

func matchOrdering(fieldValue any, op string, operand any) bool {
	cmp, ok := compareValues(fieldValue, operand)
	if !ok {
		return false
	}
	switch op {
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	}
	return false
}

func matchSubstring(fieldValue, operand any, insensitive bool, pred func(string, string) bool) bool {
	s, ok := fieldValue.(string)
	if !ok {
		return false
	}
	needle, ok := operand.(string)
	if !ok {
		return false
	}
	if insensitive {
		s = strings.ToLower(s)
		needle = strings.ToLower(needle)
	}
	return pred(s, needle)
}

// looseEqual compares with numeric coercion so int64(5) equals float64(5).
func looseEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func compareValues(a, b any) (int, bool) {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
