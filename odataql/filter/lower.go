package filter

import (
	"time"

	"github.com/krew-solutions/odata-query-go/odataql/ast"
	"github.com/krew-solutions/odata-query-go/odataql/schema"
)

// comparisonOperators maps AST comparison kinds to target operator keys.
var comparisonOperators = map[ast.ComparisonOp]string{
	ast.OpEq: OpEquals,
	ast.OpNe: OpNotKey,
	ast.OpGt: OpGt,
	ast.OpGe: OpGte,
	ast.OpLt: OpLt,
	ast.OpLe: OpLte,
}

// compiler lowers AST nodes into target filter objects. It holds no state
// between calls beyond the immutable configuration, so lowering the same
// tree twice yields identical results.
type compiler struct {
	cfg config
}

// lower dispatches on the node kind and produces a target filter object.
func (c *compiler) lower(node ast.Node) (Filter, error) {
	switch n := node.(type) {
	case ast.ParenNode:
		return c.lower(n.Expr())
	case ast.ComparisonNode:
		return c.lowerComparison(n)
	case ast.LogicalNode:
		return c.lowerLogical(n)
	case ast.NotNode:
		inner, err := c.lower(n.Operand())
		if err != nil {
			return nil, err
		}
		return Filter{KeyNot: inner}, nil
	case ast.CallNode:
		return c.lowerStandaloneCall(n)
	case ast.InNode:
		return c.lowerIn(n)
	default:
		return nil, &UnsupportedNodeError{NodeKind: node.Kind()}
	}
}

func unwrapParen(node ast.Node) ast.Node {
	for {
		p, ok := node.(ast.ParenNode)
		if !ok {
			return node
		}
		node = p.Expr()
	}
}

func (c *compiler) lowerComparison(n ast.ComparisonNode) (Filter, error) {
	left := unwrapParen(n.Left())

	switch l := left.(type) {
	case ast.ArithmeticNode:
		return c.lowerArithmeticComparison(l, n.Op(), n.Right())
	case ast.CallNode:
		return c.lowerFunctionComparison(l, n.Op(), n.Right())
	}

	field, err := c.fieldName(left)
	if err != nil {
		return nil, err
	}
	value, err := c.resolveOperand(n.Right())
	if err != nil {
		return nil, err
	}

	// Null comparison uses identity in the target representation, not an
	// operator.
	if value == nil {
		switch n.Op() {
		case ast.OpEq:
			return Filter{field: nil}, nil
		case ast.OpNe:
			return Filter{field: Condition{OpNotKey: nil}}, nil
		}
	}

	op, ok := comparisonOperators[n.Op()]
	if !ok {
		return nil, &UnsupportedNodeError{NodeKind: n.Kind()}
	}
	return Filter{field: Condition{op: value}}, nil
}

// lowerArithmeticComparison solves `field <op> operand <cmp> threshold`
// for field alone and emits the inverted comparison.
func (c *compiler) lowerArithmeticComparison(a ast.ArithmeticNode, cmp ast.ComparisonOp, right ast.Node) (Filter, error) {
	field, err := c.fieldName(unwrapParen(a.Left()))
	if err != nil {
		return nil, err
	}

	operandValue, err := c.resolveOperand(a.Right())
	if err != nil {
		return nil, err
	}
	operand, ok := numericValue(operandValue)
	if !ok {
		return nil, &UnsupportedNodeError{NodeKind: "arithmetic with non-numeric operand"}
	}

	thresholdValue, err := c.resolveOperand(right)
	if err != nil {
		return nil, err
	}
	threshold, ok := numericValue(thresholdValue)
	if !ok {
		return nil, &UnsupportedNodeError{NodeKind: "arithmetic comparison with non-numeric threshold"}
	}

	inverted, err := invertThreshold(a.Op(), operand, threshold)
	if err != nil {
		return nil, err
	}
	value := round2(inverted)

	if cmp == ast.OpNe {
		return Filter{field: Condition{OpNotKey: Condition{OpEquals: value}}}, nil
	}
	op, ok := comparisonOperators[cmp]
	if !ok {
		return nil, &UnsupportedNodeError{NodeKind: "comparison " + string(cmp)}
	}
	return Filter{field: Condition{op: value}}, nil
}

func (c *compiler) lowerLogical(n ast.LogicalNode) (Filter, error) {
	if n.Op() == ast.OpAnd {
		if merged, ok, err := c.tryMergeAnd(n.Left(), n.Right()); err != nil {
			return nil, err
		} else if ok {
			return merged, nil
		}
	}

	left, err := c.lower(n.Left())
	if err != nil {
		return nil, err
	}
	right, err := c.lower(n.Right())
	if err != nil {
		return nil, err
	}

	key := KeyAnd
	if n.Op() == ast.OpOr {
		key = KeyOr
	}
	return Filter{key: []Filter{left, right}}, nil
}

// tryMergeAnd attempts the two AND special cases, each tried in both
// operand orders: year+month equality on the same field collapses into one
// month-wide range, and a ge/gt paired with a le/lt on the same field
// collapses into a single two-bound condition.
func (c *compiler) tryMergeAnd(left, right ast.Node) (Filter, bool, error) {
	lc, lok := unwrapParen(left).(ast.ComparisonNode)
	rc, rok := unwrapParen(right).(ast.ComparisonNode)
	if !lok || !rok {
		return nil, false, nil
	}

	if merged, ok, err := c.mergeYearMonth(lc, rc); ok || err != nil {
		return merged, ok, err
	}
	if merged, ok, err := c.mergeYearMonth(rc, lc); ok || err != nil {
		return merged, ok, err
	}
	if merged, ok, err := c.mergeDateRange(lc, rc); ok || err != nil {
		return merged, ok, err
	}
	return nil, false, nil
}

// mergeYearMonth merges `year(f) eq Y and month(f) eq M` into the
// half-open UTC range [Y-M-01, next month).
func (c *compiler) mergeYearMonth(yearSide, monthSide ast.ComparisonNode) (Filter, bool, error) {
	if yearSide.Op() != ast.OpEq || monthSide.Op() != ast.OpEq {
		return nil, false, nil
	}
	yearCall, ok := unwrapParen(yearSide.Left()).(ast.CallNode)
	if !ok || yearCall.Function() != "year" || len(yearCall.Args()) != 1 {
		return nil, false, nil
	}
	monthCall, ok := unwrapParen(monthSide.Left()).(ast.CallNode)
	if !ok || monthCall.Function() != "month" || len(monthCall.Args()) != 1 {
		return nil, false, nil
	}

	yearField, err := c.fieldName(unwrapParen(yearCall.Args()[0]))
	if err != nil {
		return nil, false, err
	}
	monthField, err := c.fieldName(unwrapParen(monthCall.Args()[0]))
	if err != nil {
		return nil, false, err
	}
	if yearField != monthField {
		return nil, false, nil
	}

	year, ok, err := c.intOperand(yearSide.Right())
	if !ok || err != nil {
		return nil, false, err
	}
	month, ok, err := c.intOperand(monthSide.Right())
	if !ok || err != nil {
		return nil, false, err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return Filter{yearField: Condition{OpGte: isoUTC(start), OpLt: isoUTC(end)}}, true, nil
}

// mergeDateRange merges a lower-bound and an upper-bound comparison on the
// same field into one condition carrying both bounds.
func (c *compiler) mergeDateRange(a, b ast.ComparisonNode) (Filter, bool, error) {
	lower, upper := a, b
	if lower.Op() == ast.OpLe || lower.Op() == ast.OpLt {
		lower, upper = upper, lower
	}
	if lower.Op() != ast.OpGe && lower.Op() != ast.OpGt {
		return nil, false, nil
	}
	if upper.Op() != ast.OpLe && upper.Op() != ast.OpLt {
		return nil, false, nil
	}

	lowerIdent, ok := unwrapParen(lower.Left()).(ast.IdentNode)
	if !ok {
		return nil, false, nil
	}
	upperIdent, ok := unwrapParen(upper.Left()).(ast.IdentNode)
	if !ok {
		return nil, false, nil
	}

	lowerField, err := c.fieldName(lowerIdent)
	if err != nil {
		return nil, false, err
	}
	upperField, err := c.fieldName(upperIdent)
	if err != nil {
		return nil, false, err
	}
	if lowerField != upperField {
		return nil, false, nil
	}

	lowerValue, err := c.resolveOperand(lower.Right())
	if err != nil {
		return nil, false, err
	}
	upperValue, err := c.resolveOperand(upper.Right())
	if err != nil {
		return nil, false, err
	}

	cond := Condition{
		comparisonOperators[lower.Op()]: lowerValue,
		comparisonOperators[upper.Op()]: upperValue,
	}
	return Filter{lowerField: cond}, true, nil
}

func (c *compiler) lowerIn(n ast.InNode) (Filter, error) {
	field, err := c.fieldName(unwrapParen(n.Left()))
	if err != nil {
		return nil, err
	}
	values := make([]any, 0, len(n.Values()))
	for _, lit := range n.Values() {
		v, err := resolveLiteral(lit)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return Filter{field: Condition{OpIn: values}}, nil
}

// fieldName extracts a field name from an identifier node, validating the
// path against the schema in strict mode.
func (c *compiler) fieldName(node ast.Node) (string, error) {
	ident, ok := node.(ast.IdentNode)
	if !ok {
		return "", &UnsupportedNodeError{NodeKind: node.Kind() + " in field position"}
	}
	segments := ident.Segments()
	if c.cfg.strictFields {
		if err := c.cfg.validator.Validate(segments, schema.OperationFilter); err != nil {
			return "", err
		}
	}
	return segments[0], nil
}

// resolveOperand resolves a right-hand operand into a native value.
func (c *compiler) resolveOperand(node ast.Node) (any, error) {
	lit, ok := unwrapParen(node).(ast.LiteralNode)
	if !ok {
		return nil, &UnsupportedNodeError{NodeKind: node.Kind() + " in value position"}
	}
	return resolveLiteral(lit)
}

// intOperand resolves an operand expected to be an integer literal.
func (c *compiler) intOperand(node ast.Node) (int, bool, error) {
	v, err := c.resolveOperand(node)
	if err != nil {
		return 0, false, nil
	}
	n, ok := numericValue(v)
	if !ok || n != float64(int(n)) {
		return 0, false, nil
	}
	return int(n), true, nil
}
