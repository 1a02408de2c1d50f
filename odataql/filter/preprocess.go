package filter

import (
	"regexp"
	"strings"
)

// Preprocess rewrites filter-string syntax the primary grammar cannot
// handle into grammar-legal equivalents. It is a pure string transform and
// never fails; unrecognized input passes through untouched.
func Preprocess(input string) string {
	return rewriteInLists(rewriteDatetimeLiterals(input))
}

var datetimeLiteralPattern = regexp.MustCompile(`datetime'([^']*)'`)

// rewriteDatetimeLiterals replaces datetime'<text>' literals with ISO-8601
// quoted strings. Literals whose text does not parse as a date are left
// untouched.
func rewriteDatetimeLiterals(input string) string {
	return datetimeLiteralPattern.ReplaceAllStringFunc(input, func(match string) string {
		text := datetimeLiteralPattern.FindStringSubmatch(match)[1]
		t, err := parseDateTime(text)
		if err != nil {
			return match
		}
		return "'" + isoUTC(t) + "'"
	})
}

var inListPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s+in\s+\(([^)]*)\)`)

// rewriteInLists expands `field in (v1, ..., vN)` into an equivalent
// disjunction of equalities. The parenthesized grouping keeps the
// disjunction atomic for the grammar so the optimizer can restore the IN
// form afterwards.
func rewriteInLists(input string) string {
	return inListPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := inListPattern.FindStringSubmatch(match)
		field := sub[1]
		values := splitListValues(sub[2])
		if len(values) == 0 {
			return match
		}
		if len(values) == 1 {
			return field + " eq " + values[0]
		}
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = field + " eq " + v
		}
		return "(" + strings.Join(parts, " or ") + ")"
	})
}

// splitListValues splits a comma-separated literal list, keeping commas
// inside single-quoted strings intact.
func splitListValues(list string) []string {
	var values []string
	var current strings.Builder
	inQuote := false
	for _, r := range list {
		switch {
		case r == '\'':
			inQuote = !inQuote
			current.WriteRune(r)
		case r == ',' && !inQuote:
			if v := strings.TrimSpace(current.String()); v != "" {
				values = append(values, v)
			}
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if v := strings.TrimSpace(current.String()); v != "" {
		values = append(values, v)
	}
	return values
}
