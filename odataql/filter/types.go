// Package filter compiles OData v4 $filter expressions into a target
// query-filter object: a map from field names (or the reserved AND/OR/NOT
// combinator keys) to native values, operator conditions, or nested
// filters.
//
// The pipeline is: Preprocess → grammar.Parse → lower → Optimize. When the
// primary grammar rejects the input, a regex-based fallback grammar handles
// the constructs the primary grammar cannot parse (slash paths, collection
// lambdas) and produces the filter object directly.
package filter

// Filter is the lowered target filter object. Keys are field names or one
// of the reserved combinator keys KeyAnd, KeyOr, KeyNot. A field key maps
// to a native value (scalar equality shorthand, nil for null identity), a
// Condition, or a nested Filter for navigation paths. KeyAnd and KeyOr map
// to []Filter; KeyNot maps to a Filter.
type Filter map[string]any

// Condition maps operator names to operands, e.g. Condition{"gt": 5}.
type Condition map[string]any

// Reserved combinator keys.
const (
	KeyAnd = "AND"
	KeyOr  = "OR"
	KeyNot = "NOT"
)

// Operator keys used in Condition values.
const (
	OpEquals     = "equals"
	OpNotKey     = "not"
	OpGt         = "gt"
	OpGte        = "gte"
	OpLt         = "lt"
	OpLte        = "lte"
	OpIn         = "in"
	OpContains   = "contains"
	OpStartsWith = "startsWith"
	OpEndsWith   = "endsWith"
	OpSome       = "some"
	OpEvery      = "every"
)

// KeyMode marks the string comparison mode inside a Condition.
// ModeInsensitive requests case-folded comparison from the target store.
const (
	KeyMode         = "mode"
	ModeInsensitive = "insensitive"
)
