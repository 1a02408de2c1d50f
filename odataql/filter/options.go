package filter

import "github.com/krew-solutions/odata-query-go/odataql/schema"

// Option configures a Convert call.
type Option func(*config)

type config struct {
	// caseSensitive is tri-state: nil means the target store's native case
	// sensitivity applies; an explicit false adds the insensitive mode
	// marker to string conditions.
	caseSensitive *bool

	validator     *schema.Validator
	strictFields  bool
	nestedQueries bool
}

func newConfig(opts []Option) config {
	cfg := config{nestedQueries: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// CaseSensitive controls string comparison case handling. Passing false
// marks every string condition with mode "insensitive". Passing true, or
// not passing this option at all, leaves conditions unmarked. A
// tolower() wrapper in the filter expression overrides this in both
// directions.
func CaseSensitive(sensitive bool) Option {
	return func(cfg *config) {
		cfg.caseSensitive = &sensitive
	}
}

// WithSchema supplies a schema validator used to check field paths during
// compilation. Pass it together with StrictFields to reject unknown paths.
func WithSchema(v *schema.Validator) Option {
	return func(cfg *config) {
		cfg.validator = v
	}
}

// StrictFields rejects filters referencing paths the schema does not
// declare. Without a schema this option has no effect.
func StrictFields(strict bool) Option {
	return func(cfg *config) {
		cfg.strictFields = strict
	}
}

// NestedQueries toggles navigation-path and collection-lambda support in
// the fallback grammar. Enabled by default.
func NestedQueries(enabled bool) Option {
	return func(cfg *config) {
		cfg.nestedQueries = enabled
	}
}

// insensitive reports whether string conditions should carry the
// case-insensitive mode marker. forced comes from a tolower() wrapper and
// wins over the configured flag.
func (cfg config) insensitive(forced bool) bool {
	if forced {
		return true
	}
	return cfg.caseSensitive != nil && !*cfg.caseSensitive
}
