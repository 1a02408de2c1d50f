// Package query assembles the non-filter OData query options ($select,
// $orderby, $top, $skip) into a pagination envelope around a compiled
// filter. Downstream adapters consume the envelope as-is.
package query

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/odata-query-go/odataql/filter"
	"github.com/krew-solutions/odata-query-go/odataql/schema"
)

// Ordering is a single $orderby term.
type Ordering struct {
	Field string
	Desc  bool
}

// Envelope carries everything a downstream adapter needs to build a query.
type Envelope struct {
	Filter  filter.Filter
	Select  []string
	OrderBy []Ordering
	Skip    int
	Take    int
}

// Options configures Parse.
type Options struct {
	// Validator checks $select and $orderby paths when set.
	Validator *schema.Validator

	// FilterOptions are passed through to filter.Convert.
	FilterOptions []filter.Option
}

// Parse compiles the four query options into an envelope. Empty strings
// are permitted for every option.
func Parse(filterStr, selectStr, orderByStr string, top, skip int, opts Options) (Envelope, error) {
	f, err := filter.Convert(filterStr, opts.FilterOptions...)
	if err != nil {
		return Envelope{}, err
	}

	selected, err := ParseSelect(selectStr, opts.Validator)
	if err != nil {
		return Envelope{}, err
	}

	orderBy, err := ParseOrderBy(orderByStr, opts.Validator)
	if err != nil {
		return Envelope{}, err
	}

	if top < 0 {
		return Envelope{}, errors.Errorf("$top must not be negative, got %d", top)
	}
	if skip < 0 {
		return Envelope{}, errors.Errorf("$skip must not be negative, got %d", skip)
	}

	return Envelope{
		Filter:  f,
		Select:  selected,
		OrderBy: orderBy,
		Skip:    skip,
		Take:    top,
	}, nil
}

// ParseSelect splits a $select list into field paths, validating each
// against the schema when one is supplied. Slash-delimited navigation
// segments are normalized to dotted paths.
func ParseSelect(selectStr string, v *schema.Validator) ([]string, error) {
	if strings.TrimSpace(selectStr) == "" {
		return nil, nil
	}
	var fields []string
	for _, raw := range strings.Split(selectStr, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		segments := strings.Split(raw, "/")
		if err := v.Validate(segments, schema.OperationSelect); err != nil {
			return nil, err
		}
		fields = append(fields, strings.Join(segments, "."))
	}
	return fields, nil
}

// ParseOrderBy parses a $orderby list of `Field [asc|desc]` terms.
func ParseOrderBy(orderByStr string, v *schema.Validator) ([]Ordering, error) {
	if strings.TrimSpace(orderByStr) == "" {
		return nil, nil
	}
	var orderings []Ordering
	for _, raw := range strings.Split(orderByStr, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parts := strings.Fields(raw)
		if len(parts) > 2 {
			return nil, errors.Errorf("invalid $orderby term %q", raw)
		}
		desc := false
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				desc = true
			default:
				return nil, errors.Errorf("invalid $orderby direction %q", parts[1])
			}
		}
		segments := strings.Split(parts[0], "/")
		if err := v.Validate(segments, schema.OperationOrderBy); err != nil {
			return nil, err
		}
		orderings = append(orderings, Ordering{Field: strings.Join(segments, "."), Desc: desc})
	}
	return orderings, nil
}
