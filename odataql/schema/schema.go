// Package schema validates OData field paths against a structural schema
// descriptor. Validation is opt-in: a nil Validator accepts every path.
package schema

import (
	"fmt"
	"strings"
)

// Kind classifies a field descriptor.
type Kind int

const (
	KindScalar Kind = iota
	KindObject
	KindArray
)

// Field describes a single field of the schema.
type Field struct {
	Kind     Kind
	Nullable bool

	// Fields holds the nested field map for object-kind descriptors.
	Fields map[string]Field

	// Items describes the element type for array-kind descriptors.
	Items *Field
}

// Definition is the structural schema: a map from root field name to its
// descriptor.
type Definition map[string]Field

// Operation names the query operation a path was used in.
type Operation string

const (
	OperationFilter  Operation = "filter"
	OperationSelect  Operation = "select"
	OperationOrderBy Operation = "orderby"
)

// PathError reports an invalid field path. Path and Operation are carried
// as structured attributes so callers can render targeted feedback.
type PathError struct {
	Path      string
	Operation Operation
	Reason    string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid field path %q in $%s: %s", e.Path, e.Operation, e.Reason)
}

// Validator answers path validity questions against a flattened schema.
// The internal map is built once at construction and read-only afterwards,
// so a Validator is safe to share across concurrent callers.
type Validator struct {
	paths map[string]Field
}

// NewValidator flattens the definition into a path descriptor map.
// Every prefix of a registered nested path is itself registered.
func NewValidator(def Definition) *Validator {
	v := &Validator{paths: make(map[string]Field)}
	v.register("", def)
	return v
}

func (v *Validator) register(prefix string, fields map[string]Field) {
	for name, field := range fields {
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		v.paths[path] = field
		if field.Kind == KindObject && field.Fields != nil {
			v.register(path, field.Fields)
		}
		if field.Kind == KindArray && field.Items != nil && field.Items.Fields != nil {
			// Array element fields are addressed through the array path
			// itself, e.g. orders.total for orders[].total.
			v.register(path, field.Items.Fields)
		}
	}
}

// Validate checks a field path for the given operation. A nil Validator
// accepts everything. A path is valid when it and all of its successive
// prefixes are registered and the terminal descriptor is not an object
// with declared nested fields (selecting a whole related entity as if it
// were a scalar is rejected).
func (v *Validator) Validate(path []string, op Operation) error {
	if v == nil {
		return nil
	}
	dotted := strings.Join(path, ".")

	for i := 1; i <= len(path); i++ {
		prefix := strings.Join(path[:i], ".")
		if _, ok := v.paths[prefix]; !ok {
			return &PathError{Path: dotted, Operation: op, Reason: fmt.Sprintf("unknown field %q", prefix)}
		}
	}

	terminal := v.paths[dotted]
	if terminal.Kind == KindObject && len(terminal.Fields) > 0 {
		return &PathError{Path: dotted, Operation: op, Reason: "path resolves to an object; address one of its fields"}
	}
	return nil
}

// IsCollection reports whether the path resolves to an array-kind
// descriptor. Used to reject any/all quantifiers on non-collection fields.
// A nil Validator reports true for every path.
func (v *Validator) IsCollection(path []string) bool {
	if v == nil {
		return true
	}
	field, ok := v.paths[strings.Join(path, ".")]
	return ok && field.Kind == KindArray
}

// Known reports whether the path is registered at all.
func (v *Validator) Known(path []string) bool {
	if v == nil {
		return true
	}
	_, ok := v.paths[strings.Join(path, ".")]
	return ok
}
