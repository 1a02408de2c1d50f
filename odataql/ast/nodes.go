// Package ast defines the abstract syntax tree produced by the grammar
// package and consumed by the filter lowering engine.
//
// The tree is a closed tagged union: every node kind is one of the types
// below, each carrying exactly the children its kind requires. Nodes are
// immutable once constructed; fields are unexported and reachable only
// through accessors.
package ast

// Node is implemented by every AST node type.
type Node interface {
	// Kind returns the node kind discriminator, e.g. "comparison" or "literal".
	Kind() string

	// node is a marker method to keep the union closed.
	node()
}

// ComparisonOp enumerates the six OData comparison operators.
type ComparisonOp string

const (
	OpEq ComparisonOp = "eq"
	OpNe ComparisonOp = "ne"
	OpGt ComparisonOp = "gt"
	OpGe ComparisonOp = "ge"
	OpLt ComparisonOp = "lt"
	OpLe ComparisonOp = "le"
)

// LogicalOp enumerates the binary logical operators.
type LogicalOp string

const (
	OpAnd LogicalOp = "and"
	OpOr  LogicalOp = "or"
)

// ArithmeticOp enumerates the arithmetic operators.
type ArithmeticOp string

const (
	OpAdd ArithmeticOp = "add"
	OpSub ArithmeticOp = "sub"
	OpMul ArithmeticOp = "mul"
	OpDiv ArithmeticOp = "div"
)

// LiteralKind classifies a literal's inferred type.
type LiteralKind string

const (
	LiteralString   LiteralKind = "string"
	LiteralNumber   LiteralKind = "number"
	LiteralBoolean  LiteralKind = "boolean"
	LiteralNull     LiteralKind = "null"
	LiteralDateTime LiteralKind = "datetime"
	LiteralGUID     LiteralKind = "guid"
)

// Comparison creates a comparison node (eq, ne, gt, ge, lt, le).
func Comparison(left Node, op ComparisonOp, right Node) ComparisonNode {
	return ComparisonNode{left: left, op: op, right: right}
}

// ComparisonNode represents a binary comparison, e.g. Price gt 100.
type ComparisonNode struct {
	left  Node
	op    ComparisonOp
	right Node
}

func (n ComparisonNode) Left() Node       { return n.left }
func (n ComparisonNode) Op() ComparisonOp { return n.op }
func (n ComparisonNode) Right() Node      { return n.right }
func (n ComparisonNode) Kind() string     { return "comparison " + string(n.op) }
func (n ComparisonNode) node()            {}

// And creates a logical AND node.
func And(left, right Node) LogicalNode {
	return LogicalNode{left: left, op: OpAnd, right: right}
}

// Or creates a logical OR node.
func Or(left, right Node) LogicalNode {
	return LogicalNode{left: left, op: OpOr, right: right}
}

// LogicalNode represents a binary logical expression (and/or).
type LogicalNode struct {
	left  Node
	op    LogicalOp
	right Node
}

func (n LogicalNode) Left() Node    { return n.left }
func (n LogicalNode) Op() LogicalOp { return n.op }
func (n LogicalNode) Right() Node   { return n.right }
func (n LogicalNode) Kind() string  { return "logical " + string(n.op) }
func (n LogicalNode) node()         {}

// Not creates a logical negation node.
func Not(operand Node) NotNode {
	return NotNode{operand: operand}
}

// NotNode represents a logical negation.
type NotNode struct {
	operand Node
}

func (n NotNode) Operand() Node { return n.operand }
func (n NotNode) Kind() string  { return "not" }
func (n NotNode) node()         {}

// Call creates a method-call node, e.g. contains(Name, 'text').
func Call(function string, args ...Node) CallNode {
	return CallNode{function: function, args: args}
}

// CallNode represents a method call with an ordered argument list.
type CallNode struct {
	function string
	args     []Node
}

func (n CallNode) Function() string { return n.function }
func (n CallNode) Args() []Node     { return n.args }
func (n CallNode) Kind() string     { return "call " + n.function }
func (n CallNode) node()            {}

// Paren creates a parenthesized pass-through wrapper.
func Paren(expr Node) ParenNode {
	return ParenNode{expr: expr}
}

// ParenNode wraps a single child expression in parentheses.
type ParenNode struct {
	expr Node
}

func (n ParenNode) Expr() Node   { return n.expr }
func (n ParenNode) Kind() string { return "paren" }
func (n ParenNode) node()        {}

// In creates an in-expression node: field in (literal, literal, ...).
func In(left Node, values ...LiteralNode) InNode {
	return InNode{left: left, values: values}
}

// InNode represents membership in a literal list.
type InNode struct {
	left   Node
	values []LiteralNode
}

func (n InNode) Left() Node            { return n.left }
func (n InNode) Values() []LiteralNode { return n.values }
func (n InNode) Kind() string          { return "in" }
func (n InNode) node()                 {}

// Arithmetic creates an arithmetic node (add, sub, mul, div).
func Arithmetic(left Node, op ArithmeticOp, right Node) ArithmeticNode {
	return ArithmeticNode{left: left, op: op, right: right}
}

// ArithmeticNode represents a binary arithmetic expression.
type ArithmeticNode struct {
	left  Node
	op    ArithmeticOp
	right Node
}

func (n ArithmeticNode) Left() Node        { return n.left }
func (n ArithmeticNode) Op() ArithmeticOp  { return n.op }
func (n ArithmeticNode) Right() Node       { return n.right }
func (n ArithmeticNode) Kind() string      { return "arithmetic " + string(n.op) }
func (n ArithmeticNode) node()             {}

// Ident creates an identifier node from ordered path segments.
func Ident(segments ...string) IdentNode {
	return IdentNode{segments: segments}
}

// IdentNode represents a field or member/property-path identifier chain.
type IdentNode struct {
	segments []string
}

func (n IdentNode) Segments() []string { return n.segments }
func (n IdentNode) Kind() string       { return "identifier" }
func (n IdentNode) node()              {}

// Literal creates a literal node carrying its raw text and inferred kind.
// For string literals text holds the unquoted content.
func Literal(kind LiteralKind, text string) LiteralNode {
	return LiteralNode{kind: kind, text: text}
}

// LiteralNode represents a literal value as raw text plus an inferred type.
type LiteralNode struct {
	kind LiteralKind
	text string
}

func (n LiteralNode) LiteralKind() LiteralKind { return n.kind }
func (n LiteralNode) Text() string             { return n.text }
func (n LiteralNode) Kind() string             { return "literal " + string(n.kind) }
func (n LiteralNode) node()                    {}
