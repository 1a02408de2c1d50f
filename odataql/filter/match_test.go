package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMatch(t *testing.T, f Filter, record map[string]any) bool {
	t.Helper()
	ok, err := Match(f, record)
	require.NoError(t, err)
	return ok
}

func TestMatchScalarAndCondition(t *testing.T) {
	record := map[string]any{"Name": "John", "Age": int64(30), "Score": 4.5}

	assert.True(t, mustMatch(t, Filter{"Name": Condition{OpEquals: "John"}}, record))
	assert.False(t, mustMatch(t, Filter{"Name": Condition{OpEquals: "Jane"}}, record))
	assert.True(t, mustMatch(t, Filter{"Name": "John"}, record))
	assert.True(t, mustMatch(t, Filter{"Age": Condition{OpGt: int64(18)}}, record))
	assert.False(t, mustMatch(t, Filter{"Age": Condition{OpGte: int64(31)}}, record))
	assert.True(t, mustMatch(t, Filter{"Score": Condition{OpLte: 4.5}}, record))

	// Numeric coercion across int and float.
	assert.True(t, mustMatch(t, Filter{"Age": Condition{OpEquals: float64(30)}}, record))

	// Sibling entries AND together.
	assert.True(t, mustMatch(t, Filter{
		"Name": Condition{OpEquals: "John"},
		"Age":  Condition{OpGt: int64(18)},
	}, record))
	assert.False(t, mustMatch(t, Filter{
		"Name": Condition{OpEquals: "John"},
		"Age":  Condition{OpGt: int64(40)},
	}, record))
}

func TestMatchNullIdentity(t *testing.T) {
	withNull := map[string]any{"Deleted": nil}
	withValue := map[string]any{"Deleted": "2023-01-01"}

	assert.True(t, mustMatch(t, Filter{"Deleted": nil}, withNull))
	assert.False(t, mustMatch(t, Filter{"Deleted": nil}, withValue))
	assert.True(t, mustMatch(t, Filter{"Deleted": Condition{OpNotKey: nil}}, withValue))
	assert.False(t, mustMatch(t, Filter{"Deleted": Condition{OpNotKey: nil}}, withNull))

	// Missing field behaves as null.
	assert.True(t, mustMatch(t, Filter{"Deleted": nil}, map[string]any{}))

	// Inequality against a value never matches a null field.
	assert.False(t, mustMatch(t, Filter{"Deleted": Condition{OpNotKey: "x"}}, withNull))
}

func TestMatchNegationShapes(t *testing.T) {
	record := map[string]any{"Age": int64(25)}

	assert.False(t, mustMatch(t, Filter{"Age": Condition{OpNotKey: int64(25)}}, record))
	assert.True(t, mustMatch(t, Filter{"Age": Condition{OpNotKey: int64(30)}}, record))
	assert.False(t, mustMatch(t, Filter{"Age": Condition{OpNotKey: Condition{OpEquals: int64(25)}}}, record))
	assert.True(t, mustMatch(t, Filter{"Age": Condition{OpNotKey: Condition{OpEquals: int64(30)}}}, record))
}

func TestMatchCombinators(t *testing.T) {
	record := map[string]any{"Name": "John", "Active": true}

	and := Filter{KeyAnd: []Filter{
		{"Name": Condition{OpEquals: "John"}},
		{"Active": Condition{OpEquals: true}},
	}}
	assert.True(t, mustMatch(t, and, record))

	or := Filter{KeyOr: []Filter{
		{"Name": Condition{OpEquals: "Jane"}},
		{"Active": Condition{OpEquals: true}},
	}}
	assert.True(t, mustMatch(t, or, record))

	not := Filter{KeyNot: Filter{"Name": Condition{OpEquals: "Jane"}}}
	assert.True(t, mustMatch(t, not, record))

	notList := Filter{KeyNot: []Filter{
		{"Name": Condition{OpEquals: "John"}},
		{"Active": Condition{OpEquals: false}},
	}}
	// NOT over a list passes when at least one branch fails to match.
	assert.True(t, mustMatch(t, notList, record))
}

func TestMatchStringOperators(t *testing.T) {
	record := map[string]any{"Name": "Johnathan"}

	assert.True(t, mustMatch(t, Filter{"Name": Condition{OpContains: "hna"}}, record))
	assert.False(t, mustMatch(t, Filter{"Name": Condition{OpContains: "HNA"}}, record))
	assert.True(t, mustMatch(t, Filter{"Name": Condition{OpContains: "HNA", KeyMode: ModeInsensitive}}, record))
	assert.True(t, mustMatch(t, Filter{"Name": Condition{OpStartsWith: "John"}}, record))
	assert.True(t, mustMatch(t, Filter{"Name": Condition{OpEndsWith: "than"}}, record))
	assert.False(t, mustMatch(t, Filter{"Name": Condition{OpStartsWith: "athan"}}, record))

	// Non-string field never matches a substring check.
	assert.False(t, mustMatch(t, Filter{"Name": Condition{OpContains: "1"}}, map[string]any{"Name": 1}))
}

func TestMatchIn(t *testing.T) {
	record := map[string]any{"Status": "active"}

	assert.True(t, mustMatch(t, Filter{"Status": Condition{OpIn: []any{"active", "pending"}}}, record))
	assert.False(t, mustMatch(t, Filter{"Status": Condition{OpIn: []any{"closed"}}}, record))

	_, err := Match(Filter{"Status": Condition{OpIn: "active"}}, record)
	require.Error(t, err)
}

func TestMatchNestedNavigation(t *testing.T) {
	record := map[string]any{
		"profile": map[string]any{
			"address": map[string]any{"city": "NYC"},
		},
	}
	f := Filter{"profile": Filter{"address": Filter{"city": Condition{OpEquals: "NYC"}}}}
	assert.True(t, mustMatch(t, f, record))

	f = Filter{"profile": Filter{"address": Filter{"city": Condition{OpEquals: "LA"}}}}
	assert.False(t, mustMatch(t, f, record))

	// Scalar where an object was expected does not match.
	assert.False(t, mustMatch(t, Filter{"profile": Filter{"x": nil}}, map[string]any{"profile": "flat"}))
}

func TestMatchQuantifiers(t *testing.T) {
	record := map[string]any{
		"orders": []map[string]any{
			{"total": int64(50)},
			{"total": int64(150)},
		},
	}

	some := Filter{"orders": Condition{OpSome: Filter{"total": Condition{OpGt: int64(100)}}}}
	assert.True(t, mustMatch(t, some, record))

	every := Filter{"orders": Condition{OpEvery: Filter{"total": Condition{OpGt: int64(100)}}}}
	assert.False(t, mustMatch(t, every, record))

	every = Filter{"orders": Condition{OpEvery: Filter{"total": Condition{OpGt: int64(10)}}}}
	assert.True(t, mustMatch(t, every, record))

	// []any of maps is accepted too.
	generic := map[string]any{"orders": []any{map[string]any{"total": int64(200)}}}
	assert.True(t, mustMatch(t, some, generic))

	// every over an empty collection holds, some does not.
	empty := map[string]any{"orders": []map[string]any{}}
	assert.False(t, mustMatch(t, some, empty))
	assert.True(t, mustMatch(t, every, empty))
}

func TestMatchDateStrings(t *testing.T) {
	record := map[string]any{"CreatedAt": "2023-05-15T12:00:00.000Z"}
	f := Filter{"CreatedAt": Condition{
		OpGte: "2023-05-01T00:00:00.000Z",
		OpLt:  "2023-06-01T00:00:00.000Z",
	}}
	assert.True(t, mustMatch(t, f, record))

	outside := map[string]any{"CreatedAt": "2023-07-01T00:00:00.000Z"}
	assert.False(t, mustMatch(t, f, outside))
}
