package filter

import "reflect"

// Optimize rewrites OR-chains of equality checks on one field into a
// single IN-list check. It recurses depth-first through AND/OR/NOT
// substructure and is idempotent. The rewrite never changes matching
// semantics, it only trades N OR'd equality checks for one IN.
func Optimize(f Filter) Filter {
	out := make(Filter, len(f))
	for key, value := range f {
		switch key {
		case KeyOr:
			list, ok := value.([]Filter)
			if !ok {
				out[key] = value
				continue
			}
			if merged, ok := mergeOrChain(list); ok {
				for field, cond := range merged {
					out[field] = cond
				}
				continue
			}
			out[key] = optimizeList(list)
		case KeyAnd:
			if list, ok := value.([]Filter); ok {
				out[key] = optimizeList(list)
			} else {
				out[key] = value
			}
		case KeyNot:
			switch inner := value.(type) {
			case Filter:
				out[key] = Optimize(inner)
			case []Filter:
				out[key] = optimizeList(inner)
			default:
				out[key] = value
			}
		default:
			out[key] = value
		}
	}
	return out
}

func optimizeList(list []Filter) []Filter {
	out := make([]Filter, len(list))
	for i, f := range list {
		out[i] = Optimize(f)
	}
	return out
}

// flattenOr collects the leaf filters of an OR tree, descending through
// nested OR-only filters so an OR-of-ORs fully flattens.
func flattenOr(list []Filter) []Filter {
	var leaves []Filter
	for _, f := range list {
		if len(f) == 1 {
			if nested, ok := f[KeyOr].([]Filter); ok {
				leaves = append(leaves, flattenOr(nested)...)
				continue
			}
		}
		leaves = append(leaves, f)
	}
	return leaves
}

// mergeOrChain merges an OR list whose flattened leaves are all
// single-field equals/in conditions on the same field. Returns false when
// any leaf has a different shape or field, leaving the OR untouched.
func mergeOrChain(list []Filter) (Filter, bool) {
	leaves := flattenOr(list)
	if len(leaves) < 2 {
		return nil, false
	}

	field := ""
	var values []any
	for _, leaf := range leaves {
		if len(leaf) != 1 {
			return nil, false
		}
		for leafField, v := range leaf {
			if leafField == KeyAnd || leafField == KeyOr || leafField == KeyNot {
				return nil, false
			}
			if field == "" {
				field = leafField
			} else if field != leafField {
				return nil, false
			}
			cond, ok := v.(Condition)
			if !ok || len(cond) != 1 {
				return nil, false
			}
			if eq, ok := cond[OpEquals]; ok {
				values = appendUnique(values, eq)
			} else if in, ok := cond[OpIn].([]any); ok {
				for _, item := range in {
					values = appendUnique(values, item)
				}
			} else {
				return nil, false
			}
		}
	}

	if len(values) == 1 {
		return Filter{field: Condition{OpEquals: values[0]}}, true
	}
	return Filter{field: Condition{OpIn: values}}, true
}

// appendUnique appends v unless an equal value is already present,
// preserving first-occurrence order.
func appendUnique(values []any, v any) []any {
	for _, existing := range values {
		if reflect.DeepEqual(existing, v) {
			return values
		}
	}
	return append(values, v)
}
