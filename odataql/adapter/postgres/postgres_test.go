package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/odata-query-go/odataql/filter"
	"github.com/krew-solutions/odata-query-go/odataql/query"
)

func whereSQL(t *testing.T, f filter.Filter) (string, []any) {
	t.Helper()
	pred, err := Where(f)
	require.NoError(t, err)
	sql, args, err := pred.ToSql()
	require.NoError(t, err)
	return sql, args
}

func TestWhereComparisons(t *testing.T) {
	cases := []struct {
		name string
		f    filter.Filter
		sql  string
		args []any
	}{
		{
			name: "equality",
			f:    filter.Filter{"Name": filter.Condition{"equals": "John"}},
			sql:  "Name = ?",
			args: []any{"John"},
		},
		{
			name: "scalar shorthand",
			f:    filter.Filter{"Name": "John"},
			sql:  "Name = ?",
			args: []any{"John"},
		},
		{
			name: "null identity",
			f:    filter.Filter{"Deleted": nil},
			sql:  "Deleted IS NULL",
			args: nil,
		},
		{
			name: "not null",
			f:    filter.Filter{"Deleted": filter.Condition{"not": nil}},
			sql:  "Deleted IS NOT NULL",
			args: nil,
		},
		{
			name: "inequality",
			f:    filter.Filter{"Age": filter.Condition{"not": int64(25)}},
			sql:  "Age <> ?",
			args: []any{int64(25)},
		},
		{
			name: "nested not-equals",
			f:    filter.Filter{"Price": filter.Condition{"not": filter.Condition{"equals": 50.0}}},
			sql:  "NOT (Price = ?)",
			args: []any{50.0},
		},
		{
			name: "greater than",
			f:    filter.Filter{"Age": filter.Condition{"gt": int64(18)}},
			sql:  "Age > ?",
			args: []any{int64(18)},
		},
		{
			name: "two bounds on one field sort deterministically",
			f:    filter.Filter{"Age": filter.Condition{"gte": int64(18), "lte": int64(65)}},
			sql:  "(Age >= ? AND Age <= ?)",
			args: []any{int64(18), int64(65)},
		},
		{
			name: "in-list",
			f:    filter.Filter{"Status": filter.Condition{"in": []any{"a", "b"}}},
			sql:  "Status IN (?,?)",
			args: []any{"a", "b"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sql, args := whereSQL(t, tc.f)
			assert.Equal(t, tc.sql, sql)
			assert.Equal(t, tc.args, args)
		})
	}
}

func TestWhereStringOperators(t *testing.T) {
	sql, args := whereSQL(t, filter.Filter{"Name": filter.Condition{"contains": "john"}})
	assert.Equal(t, "Name LIKE ?", sql)
	assert.Equal(t, []any{"%john%"}, args)

	sql, args = whereSQL(t, filter.Filter{"Name": filter.Condition{"contains": "john", "mode": "insensitive"}})
	assert.Equal(t, "Name ILIKE ?", sql)
	assert.Equal(t, []any{"%john%"}, args)

	sql, args = whereSQL(t, filter.Filter{"Name": filter.Condition{"startsWith": "Jo"}})
	assert.Equal(t, "Name LIKE ?", sql)
	assert.Equal(t, []any{"Jo%"}, args)

	sql, args = whereSQL(t, filter.Filter{"Name": filter.Condition{"endsWith": "hn"}})
	assert.Equal(t, "Name LIKE ?", sql)
	assert.Equal(t, []any{"%hn"}, args)

	// LIKE metacharacters in the needle are escaped.
	sql, args = whereSQL(t, filter.Filter{"Name": filter.Condition{"contains": "50%_off"}})
	assert.Equal(t, "Name LIKE ?", sql)
	assert.Equal(t, []any{`%50\%\_off%`}, args)
}

func TestWhereCombinators(t *testing.T) {
	sql, args := whereSQL(t, filter.Filter{"AND": []filter.Filter{
		{"Name": filter.Condition{"equals": "John"}},
		{"Active": filter.Condition{"equals": true}},
	}})
	assert.Equal(t, "(Name = ? AND Active = ?)", sql)
	assert.Equal(t, []any{"John", true}, args)

	sql, args = whereSQL(t, filter.Filter{"OR": []filter.Filter{
		{"Name": filter.Condition{"equals": "John"}},
		{"Age": filter.Condition{"gt": int64(30)}},
	}})
	assert.Equal(t, "(Name = ? OR Age > ?)", sql)
	assert.Equal(t, []any{"John", int64(30)}, args)

	sql, args = whereSQL(t, filter.Filter{"NOT": filter.Filter{"Name": filter.Condition{"equals": "Jane"}}})
	assert.Equal(t, "NOT (Name = ?)", sql)
	assert.Equal(t, []any{"Jane"}, args)

	// Sibling fields AND together in sorted key order.
	sql, args = whereSQL(t, filter.Filter{
		"Name": filter.Condition{"equals": "John"},
		"Age":  filter.Condition{"gt": int64(18)},
	})
	assert.Equal(t, "(Age > ? AND Name = ?)", sql)
	assert.Equal(t, []any{int64(18), "John"}, args)
}

func TestWhereRejectsNavigation(t *testing.T) {
	_, err := Where(filter.Filter{"profile": filter.Filter{"city": filter.Condition{"equals": "NYC"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "join")

	_, err = Where(filter.Filter{"orders": filter.Condition{
		"some": filter.Filter{"total": filter.Condition{"gt": int64(100)}},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "join")
}

func TestSelect(t *testing.T) {
	t.Run("full envelope", func(t *testing.T) {
		env := query.Envelope{
			Filter:  filter.Filter{"Age": filter.Condition{"gte": int64(18), "lte": int64(65)}},
			Select:  []string{"Name", "Age"},
			OrderBy: []query.Ordering{{Field: "CreatedAt", Desc: true}, {Field: "Name"}},
			Skip:    50,
			Take:    25,
		}
		sql, args, err := Select("users", env)
		require.NoError(t, err)
		assert.Equal(t,
			"SELECT Name, Age FROM users WHERE (Age >= $1 AND Age <= $2) "+
				"ORDER BY CreatedAt DESC, Name ASC LIMIT 25 OFFSET 50",
			sql)
		assert.Equal(t, []any{int64(18), int64(65)}, args)
	})

	t.Run("defaults", func(t *testing.T) {
		sql, args, err := Select("users", query.Envelope{})
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM users", sql)
		assert.Empty(t, args)
	})

	t.Run("filter only", func(t *testing.T) {
		env := query.Envelope{Filter: filter.Filter{"Name": filter.Condition{"equals": "John"}}}
		sql, args, err := Select("users", env)
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM users WHERE Name = $1", sql)
		assert.Equal(t, []any{"John"}, args)
	})

	t.Run("navigation filter surfaces the error", func(t *testing.T) {
		env := query.Envelope{Filter: filter.Filter{"profile": filter.Filter{"city": nil}}}
		_, _, err := Select("users", env)
		require.Error(t, err)
	})
}
