package filter

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/krew-solutions/odata-query-go/odataql/ast"
)

// comparisonSymbols renders comparison kinds for diagnostics.
var comparisonSymbols = map[ast.ComparisonOp]string{
	ast.OpEq: "=",
	ast.OpNe: "!=",
	ast.OpGt: ">",
	ast.OpGe: ">=",
	ast.OpLt: "<",
	ast.OpLe: "<=",
}

// lowerFunctionComparison handles method calls in comparison position,
// e.g. year(CreatedAt) eq 2023 or indexof(Name, 'x') ge 0.
func (c *compiler) lowerFunctionComparison(call ast.CallNode, cmp ast.ComparisonOp, right ast.Node) (Filter, error) {
	switch call.Function() {
	case "year":
		return c.lowerYearComparison(call, cmp, right)

	case "month", "day":
		field := c.callFieldForDiagnostics(call)
		return nil, &RequiresRawSQLError{
			Function: call.Function(),
			Detail:   fmt.Sprintf("date-part extraction on %s is not expressible in the target filter", field),
		}

	case "indexof":
		return c.lowerIndexofComparison(call, cmp, right)

	case "length":
		field := c.callFieldForDiagnostics(call)
		threshold, _ := c.resolveOperand(right)
		return nil, &RequiresRawSQLError{
			Function: "length",
			Detail:   fmt.Sprintf("%s %s %v", field, comparisonSymbols[cmp], threshold),
		}

	case "round", "floor", "ceiling":
		return nil, &RequiresRawSQLError{Function: call.Function()}

	default:
		return nil, &UnsupportedNodeError{NodeKind: "call " + call.Function() + " in comparison position"}
	}
}

// lowerYearComparison emits year(field) eq Y as the half-open UTC range
// [Jan 1 Y, Jan 1 Y+1).
func (c *compiler) lowerYearComparison(call ast.CallNode, cmp ast.ComparisonOp, right ast.Node) (Filter, error) {
	if cmp != ast.OpEq {
		return nil, &UnsupportedNodeError{NodeKind: "year() with " + string(cmp)}
	}
	if len(call.Args()) != 1 {
		return nil, &UnsupportedNodeError{NodeKind: "year() with wrong argument count"}
	}
	field, err := c.fieldName(unwrapParen(call.Args()[0]))
	if err != nil {
		return nil, err
	}
	year, ok, err := c.intOperand(right)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Errorf("year() comparison requires an integer year, got %s", right.Kind())
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return Filter{field: Condition{OpGte: isoUTC(start), OpLt: isoUTC(end)}}, nil
}

// lowerIndexofComparison maps index positions onto containment:
// indexof(f, t) ge 0 means the text was found, eq -1 means it was not.
func (c *compiler) lowerIndexofComparison(call ast.CallNode, cmp ast.ComparisonOp, right ast.Node) (Filter, error) {
	contains, err := c.lowerStringCall(call, OpContains)
	if err != nil {
		return nil, err
	}
	threshold, err := c.resolveOperand(right)
	if err != nil {
		return nil, err
	}
	n, isNumber := numericValue(threshold)

	switch {
	case cmp == ast.OpGe && isNumber && n == 0:
		return contains, nil
	case cmp == ast.OpEq && isNumber && n == -1:
		return Filter{KeyNot: contains}, nil
	default:
		return nil, &UnsupportedNodeError{
			NodeKind: fmt.Sprintf("indexof() %s %v", comparisonSymbols[cmp], threshold),
		}
	}
}

// lowerStandaloneCall handles method calls outside comparison position.
func (c *compiler) lowerStandaloneCall(call ast.CallNode) (Filter, error) {
	switch call.Function() {
	case "contains", "substringof", "indexof":
		return c.lowerStringCall(call, OpContains)
	case "startswith":
		return c.lowerStringCall(call, OpStartsWith)
	case "endswith":
		return c.lowerStringCall(call, OpEndsWith)
	case "tolower", "toupper", "trim", "concat":
		return nil, errors.Errorf("%s() must be used in comparison context", call.Function())
	default:
		return nil, &UnsupportedNodeError{NodeKind: "call " + call.Function()}
	}
}

// lowerStringCall lowers a two-argument string method into a condition.
// substringof carries its arguments in (value, field) order; the others
// use (field, value). A tolower() wrapper around the field argument of
// startswith/endswith forces case-insensitive mode regardless of the
// configured flag.
func (c *compiler) lowerStringCall(call ast.CallNode, op string) (Filter, error) {
	args := call.Args()
	if len(args) != 2 {
		return nil, errors.Errorf("%s() requires exactly 2 arguments, got %d", call.Function(), len(args))
	}

	fieldArg, valueArg := args[0], args[1]
	if call.Function() == "substringof" {
		fieldArg, valueArg = valueArg, fieldArg
	}

	forced := false
	if wrapper, ok := unwrapParen(fieldArg).(ast.CallNode); ok && wrapper.Function() == "tolower" {
		if op == OpStartsWith || op == OpEndsWith {
			if len(wrapper.Args()) != 1 {
				return nil, errors.New("tolower() requires exactly 1 argument")
			}
			fieldArg = wrapper.Args()[0]
			forced = true
		}
	}

	field, err := c.fieldName(unwrapParen(fieldArg))
	if err != nil {
		return nil, err
	}
	value, err := c.resolveOperand(valueArg)
	if err != nil {
		return nil, err
	}

	cond := Condition{op: value}
	if c.cfg.insensitive(forced) {
		cond[KeyMode] = ModeInsensitive
	}
	return Filter{field: cond}, nil
}

// callFieldForDiagnostics extracts the field argument of a call for error
// messages, tolerating malformed arguments.
func (c *compiler) callFieldForDiagnostics(call ast.CallNode) string {
	if len(call.Args()) == 0 {
		return "?"
	}
	if ident, ok := unwrapParen(call.Args()[0]).(ast.IdentNode); ok {
		return ident.Segments()[0]
	}
	return "?"
}
