package filter

import "fmt"

// UnsupportedNodeError reports an AST node kind, method name, or
// comparison combination the lowering engine has no handler for.
type UnsupportedNodeError struct {
	NodeKind string
}

func (e *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("unsupported filter construct: %s", e.NodeKind)
}

// RequiresRawSQLError reports an OData function that is semantically valid
// but inexpressible in the target filter language. Detail, when present,
// carries the field/operator/threshold context so the caller can build a
// manual escape-hatch query.
type RequiresRawSQLError struct {
	Function string
	Detail   string
}

func (e *RequiresRawSQLError) Error() string {
	msg := fmt.Sprintf("%s() requires raw SQL", e.Function)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg + " (execute it as a raw query instead)"
}
