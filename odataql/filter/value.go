package filter

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/krew-solutions/odata-query-go/odataql/ast"
)

// isoMillis is the wire format for lowered date values, UTC with
// millisecond precision.
const isoMillis = "2006-01-02T15:04:05.000Z"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"January 2, 2006",
}

// parseDateTime tries the known datetime layouts in order.
func parseDateTime(text string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("unrecognized datetime literal %q", text)
}

// isoUTC renders a time in the lowered wire format.
func isoUTC(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// resolveLiteral converts a literal AST leaf into a native value.
func resolveLiteral(lit ast.LiteralNode) (any, error) {
	text := lit.Text()
	switch lit.LiteralKind() {
	case ast.LiteralString:
		return text, nil
	case ast.LiteralNumber:
		return parseNumber(text)
	case ast.LiteralBoolean:
		return text == "true", nil
	case ast.LiteralNull:
		return nil, nil
	case ast.LiteralDateTime:
		t, err := parseDateTime(text)
		if err != nil {
			return nil, err
		}
		return isoUTC(t), nil
	case ast.LiteralGUID:
		id, err := uuid.Parse(text)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid guid literal %q", text)
		}
		return id.String(), nil
	default:
		return nil, &UnsupportedNodeError{NodeKind: lit.Kind()}
	}
}

func parseNumber(text string) (any, error) {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, errors.Errorf("invalid number literal %q", text)
	}
	return f, nil
}

// numericValue extracts a float64 from a resolved literal value for
// arithmetic inversion.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// round2 rounds to 2 decimal places. Applied to every inverted arithmetic
// threshold on both the primary and the fallback path, so the two paths
// agree on the emitted value.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// invertThreshold solves `field <op> operand <cmp> threshold` for field
// alone. The target query layer cannot apply arithmetic to a column inside
// a filter, so the comparison is pre-solved at compile time.
func invertThreshold(op ast.ArithmeticOp, operand, threshold float64) (float64, error) {
	switch op {
	case ast.OpMul:
		if operand == 0 {
			return 0, errors.New("cannot invert multiplication by zero")
		}
		return threshold / operand, nil
	case ast.OpDiv:
		return threshold * operand, nil
	case ast.OpAdd:
		return threshold - operand, nil
	case ast.OpSub:
		return threshold + operand, nil
	default:
		return 0, &UnsupportedNodeError{NodeKind: "arithmetic " + string(op)}
	}
}

var numberPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// coerceString converts a raw literal string from the fallback grammar
// into a native value: single-quoted → string, true/false → bool,
// null → nil, numeric pattern → number, anything else the raw string.
func coerceString(raw string) any {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && strings.HasPrefix(raw, "'") && strings.HasSuffix(raw, "'") {
		return strings.ReplaceAll(raw[1:len(raw)-1], "''", "'")
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if numberPattern.MatchString(raw) {
		v, err := parseNumber(raw)
		if err == nil {
			return v
		}
	}
	return raw
}
