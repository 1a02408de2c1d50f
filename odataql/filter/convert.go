package filter

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/krew-solutions/odata-query-go/odataql/grammar"
	"github.com/krew-solutions/odata-query-go/odataql/schema"
)

// Convert compiles an OData $filter expression into a target filter
// object. Empty input yields an empty filter without error.
//
// The pre-processed input goes through the primary grammar and the
// lowering engine, then the optimizer. When the primary grammar rejects
// the input, the raw input is retried through the fallback grammar; only
// if both fail is an error returned, combining the fallback failure with
// the primary parser's original reason.
func Convert(input string, opts ...Option) (Filter, error) {
	if strings.TrimSpace(input) == "" {
		return Filter{}, nil
	}
	cfg := newConfig(opts)

	node, parseErr := grammar.Parse(Preprocess(input))
	if parseErr != nil {
		f, fallbackErr := fallbackParse(input, cfg)
		if fallbackErr == nil {
			return f, nil
		}
		// Schema rejections are definitive; combining them with the
		// parse error would bury the actionable path information.
		if _, ok := fallbackErr.(*schema.PathError); ok {
			return nil, fallbackErr
		}
		combined := multierror.Append(nil,
			errors.Wrap(parseErr, "primary grammar rejected filter"),
			fallbackErr,
		)
		return nil, combined.ErrorOrNil()
	}

	c := &compiler{cfg: cfg}
	lowered, err := c.lower(node)
	if err != nil {
		return nil, err
	}
	return Optimize(lowered), nil
}
