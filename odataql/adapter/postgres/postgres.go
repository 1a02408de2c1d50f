// Package postgres renders compiled filter objects and query envelopes
// into PostgreSQL statements via squirrel. Navigation filters (nested
// objects, some/every quantifiers) require joins and are rejected here;
// callers needing them should build the join themselves.
package postgres

import (
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/krew-solutions/odata-query-go/odataql/filter"
	"github.com/krew-solutions/odata-query-go/odataql/query"
)

// Where converts a filter object into a squirrel predicate. Sibling
// entries are AND'ed. Map keys are processed in sorted order so the
// generated SQL is deterministic.
func Where(f filter.Filter) (sq.Sqlizer, error) {
	parts := make([]sq.Sqlizer, 0, len(f))
	for _, key := range sortedKeys(f) {
		part, err := whereEntry(key, f[key])
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return sq.And(parts), nil
}

func whereEntry(key string, value any) (sq.Sqlizer, error) {
	switch key {
	case filter.KeyAnd, filter.KeyOr:
		list, ok := value.([]filter.Filter)
		if !ok {
			return nil, errors.Errorf("%s must hold a filter list, got %T", key, value)
		}
		parts := make([]sq.Sqlizer, 0, len(list))
		for _, member := range list {
			part, err := Where(member)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		}
		if key == filter.KeyOr {
			return sq.Or(parts), nil
		}
		return sq.And(parts), nil

	case filter.KeyNot:
		inner, ok := value.(filter.Filter)
		if !ok {
			return nil, errors.Errorf("NOT must hold a filter, got %T", value)
		}
		part, err := Where(inner)
		if err != nil {
			return nil, err
		}
		return negate{part}, nil

	default:
		return fieldPredicate(key, value)
	}
}

func fieldPredicate(field string, value any) (sq.Sqlizer, error) {
	switch v := value.(type) {
	case nil:
		return sq.Eq{field: nil}, nil
	case filter.Condition:
		return conditionPredicate(field, v)
	case filter.Filter:
		return nil, errors.Errorf("navigation filter on %q requires a join; not supported by the postgres adapter", field)
	default:
		return sq.Eq{field: v}, nil
	}
}

func conditionPredicate(field string, cond filter.Condition) (sq.Sqlizer, error) {
	insensitive := cond[filter.KeyMode] == filter.ModeInsensitive

	parts := make([]sq.Sqlizer, 0, len(cond))
	for _, op := range sortedKeys(cond) {
		operand := cond[op]
		switch op {
		case filter.KeyMode:
			continue
		case filter.OpEquals:
			parts = append(parts, sq.Eq{field: operand})
		case filter.OpNotKey:
			part, err := negatedPredicate(field, operand)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		case filter.OpGt:
			parts = append(parts, sq.Gt{field: operand})
		case filter.OpGte:
			parts = append(parts, sq.GtOrEq{field: operand})
		case filter.OpLt:
			parts = append(parts, sq.Lt{field: operand})
		case filter.OpLte:
			parts = append(parts, sq.LtOrEq{field: operand})
		case filter.OpIn:
			parts = append(parts, sq.Eq{field: operand})
		case filter.OpContains:
			parts = append(parts, like(field, "%"+likeEscape(operand)+"%", insensitive))
		case filter.OpStartsWith:
			parts = append(parts, like(field, likeEscape(operand)+"%", insensitive))
		case filter.OpEndsWith:
			parts = append(parts, like(field, "%"+likeEscape(operand), insensitive))
		case filter.OpSome, filter.OpEvery:
			return nil, errors.Errorf("%s on %q requires a join; not supported by the postgres adapter", op, field)
		default:
			return nil, errors.Errorf("unknown filter operator %q on %q", op, field)
		}
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return sq.And(parts), nil
}

func negatedPredicate(field string, operand any) (sq.Sqlizer, error) {
	if nested, ok := operand.(filter.Condition); ok {
		inner, err := conditionPredicate(field, nested)
		if err != nil {
			return nil, err
		}
		return negate{inner}, nil
	}
	return sq.NotEq{field: operand}, nil
}

func like(field, pattern string, insensitive bool) sq.Sqlizer {
	if insensitive {
		return sq.ILike{field: pattern}
	}
	return sq.Like{field: pattern}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likeEscape(operand any) string {
	s, ok := operand.(string)
	if !ok {
		return ""
	}
	return likeEscaper.Replace(s)
}

// negate wraps a predicate in NOT (...).
type negate struct {
	inner sq.Sqlizer
}

func (n negate) ToSql() (string, []any, error) {
	sql, args, err := n.inner.ToSql()
	if err != nil {
		return "", nil, err
	}
	return "NOT (" + sql + ")", args, nil
}

// Select builds a complete SELECT statement from a query envelope, using
// dollar placeholders for pgx compatibility.
func Select(table string, env query.Envelope) (string, []any, error) {
	columns := env.Select
	if len(columns) == 0 {
		columns = []string{"*"}
	}

	builder := sq.Select(columns...).From(table).PlaceholderFormat(sq.Dollar)

	if len(env.Filter) > 0 {
		where, err := Where(env.Filter)
		if err != nil {
			return "", nil, err
		}
		builder = builder.Where(where)
	}
	for _, o := range env.OrderBy {
		direction := " ASC"
		if o.Desc {
			direction = " DESC"
		}
		builder = builder.OrderBy(o.Field + direction)
	}
	if env.Take > 0 {
		builder = builder.Limit(uint64(env.Take))
	}
	if env.Skip > 0 {
		builder = builder.Offset(uint64(env.Skip))
	}

	return builder.ToSql()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
