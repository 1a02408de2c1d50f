package filter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/odata-query-go/odataql/ast"
	"github.com/krew-solutions/odata-query-go/odataql/schema"
)

// errFallbackFailed is returned when no fallback pattern matches; the
// caller combines it with the primary parser's original failure.
var errFallbackFailed = errors.New("fallback parsing failed")

// fallbackOperators maps textual comparison operators to target keys for
// the regex-based path. Mirrors the lowering engine's comparison table.
var fallbackOperators = map[string]string{
	"eq": OpEquals,
	"ne": OpNotKey,
	"gt": OpGt,
	"ge": OpGte,
	"lt": OpLt,
	"le": OpLte,
}

var fallbackArithmeticOps = map[string]ast.ArithmeticOp{
	"mul": ast.OpMul, "*": ast.OpMul,
	"div": ast.OpDiv, "/": ast.OpDiv,
	"add": ast.OpAdd, "+": ast.OpAdd,
	"sub": ast.OpSub, "-": ast.OpSub,
}

var (
	lambdaPattern = regexp.MustCompile(
		`^([A-Za-z_]\w*(?:/[A-Za-z_]\w*)*)/(any|all)\(\s*([A-Za-z_]\w*)\s*:\s*(.+)\)$`)
	nestedFieldPattern = regexp.MustCompile(
		`^([A-Za-z_]\w*(?:/[A-Za-z_]\w*)+)\s+(eq|ne|gt|ge|lt|le)\s+(.+)$`)
	simpleFieldPattern = regexp.MustCompile(
		`^([A-Za-z_]\w*)\s+(eq|ne|gt|ge|lt|le)\s+(.+)$`)
	arithmeticPattern = regexp.MustCompile(
		`^([A-Za-z_]\w*)\s*(mul|div|add|sub|[*/+-])\s*(-?\d+(?:\.\d+)?)\s+(eq|ne|gt|ge|lt|le)\s+(-?\d+(?:\.\d+)?)$`)
	inExpressionPattern = regexp.MustCompile(
		`^([A-Za-z_]\w*)\s+in\s+\(([^)]*)\)$`)
)

// fallbackParse is the regex-based secondary grammar, invoked only after
// the primary grammar rejected the input. It tries its patterns in order
// and produces a target filter object directly, bypassing the lowering
// engine and optimizer.
func fallbackParse(input string, cfg config) (Filter, error) {
	input = strings.TrimSpace(input)

	if m := lambdaPattern.FindStringSubmatch(input); m != nil {
		return fallbackLambda(m[1], m[2], m[3], m[4], cfg)
	}
	if m := nestedFieldPattern.FindStringSubmatch(input); m != nil {
		return fallbackNestedField(m[1], m[2], m[3], cfg)
	}
	if m := arithmeticPattern.FindStringSubmatch(input); m != nil {
		return fallbackArithmetic(m[1], m[2], m[3], m[4], m[5])
	}
	if m := inExpressionPattern.FindStringSubmatch(input); m != nil {
		return fallbackIn(m[1], m[2])
	}
	return nil, errFallbackFailed
}

// fallbackLambda handles `path/any(v: condition)` and `path/all(...)`.
// The bound-variable prefix is stripped from the condition and the
// remaining simple condition nested under some/every at the deepest path
// segment.
func fallbackLambda(path, quantifier, boundVar, condition string, cfg config) (Filter, error) {
	if !cfg.nestedQueries {
		return nil, errors.New("nested queries are disabled")
	}
	segments := strings.Split(path, "/")

	if cfg.strictFields && cfg.validator != nil {
		if err := cfg.validator.Validate(segments, schema.OperationFilter); err != nil {
			return nil, err
		}
		if !cfg.validator.IsCollection(segments) {
			return nil, &schema.PathError{
				Path:      strings.Join(segments, "."),
				Operation: schema.OperationFilter,
				Reason:    quantifier + "() requires a collection field",
			}
		}
	}

	condition = strings.TrimSpace(strings.ReplaceAll(condition, boundVar+"/", ""))
	inner, err := fallbackCondition(condition, cfg)
	if err != nil {
		return nil, err
	}

	quantifierKey := OpSome
	if quantifier == "all" {
		quantifierKey = OpEvery
	}
	return nestPath(segments, Condition{quantifierKey: inner}), nil
}

// fallbackCondition parses the simple field/op/value condition inside a
// lambda, tolerating nested paths.
func fallbackCondition(condition string, cfg config) (Filter, error) {
	if m := nestedFieldPattern.FindStringSubmatch(condition); m != nil {
		return fallbackNestedField(m[1], m[2], m[3], cfg)
	}
	if m := simpleFieldPattern.FindStringSubmatch(condition); m != nil {
		return Filter{m[1]: Condition{fallbackOperators[m[2]]: coerceString(m[3])}}, nil
	}
	return nil, errors.Errorf("unparseable lambda condition %q", condition)
}

// fallbackNestedField handles `a/b/c <op> value`.
func fallbackNestedField(path, op, rawValue string, cfg config) (Filter, error) {
	segments := strings.Split(path, "/")
	if cfg.strictFields && cfg.validator != nil {
		if err := cfg.validator.Validate(segments, schema.OperationFilter); err != nil {
			return nil, err
		}
	}
	return nestPath(segments, Condition{fallbackOperators[op]: coerceString(rawValue)}), nil
}

// fallbackArithmetic handles `field <op> operand <cmp> threshold` via the
// shared inversion helper.
func fallbackArithmetic(field, op, rawOperand, cmp, rawThreshold string) (Filter, error) {
	operand, err := strconv.ParseFloat(rawOperand, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid arithmetic operand %q", rawOperand)
	}
	threshold, err := strconv.ParseFloat(rawThreshold, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid comparison threshold %q", rawThreshold)
	}

	inverted, err := invertThreshold(fallbackArithmeticOps[op], operand, threshold)
	if err != nil {
		return nil, err
	}
	value := round2(inverted)

	if cmp == "ne" {
		return Filter{field: Condition{OpNotKey: Condition{OpEquals: value}}}, nil
	}
	return Filter{field: Condition{fallbackOperators[cmp]: value}}, nil
}

// fallbackIn handles `field in (v1, v2, ...)`.
func fallbackIn(field, list string) (Filter, error) {
	raw := splitListValues(list)
	if len(raw) == 0 {
		return nil, errors.Errorf("empty in-list for field %q", field)
	}
	values := make([]any, len(raw))
	for i, r := range raw {
		values[i] = coerceString(r)
	}
	return Filter{field: Condition{OpIn: values}}, nil
}

// nestPath wraps a terminal condition in single-key objects along the
// path, deepest segment last.
func nestPath(segments []string, terminal any) Filter {
	f := Filter{segments[len(segments)-1]: terminal}
	for i := len(segments) - 2; i >= 0; i-- {
		f = Filter{segments[i]: f}
	}
	return f
}
