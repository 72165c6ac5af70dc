package denorm

import (
	"log/slog"

	"github.com/go-openapi/inflect"
)

// Config holds the settings shared by the populate entry points.
type Config struct {
	// Strategy picks the evaluator used by Populate. Default: Lazy.
	Strategy Strategy
	// Pluralizer maps singular field names to collection names.
	// Default: inflect.Pluralize.
	Pluralizer Pluralizer
	// Logger receives debug records about unresolved references.
	// Default: a logger that discards everything.
	Logger *slog.Logger
	// Stats, when set, counts lookups and lazy accesses.
	Stats *Stats
}

// Option configures a populate call.
type Option func(*Config) error

// NewConfig returns a Config with defaults applied and then opts.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Strategy:   Lazy,
		Pluralizer: inflect.Pluralize,
		Logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithStrategy sets the evaluator used by Populate.
func WithStrategy(s Strategy) Option {
	return func(c *Config) error {
		switch s {
		case Lazy, Eager:
			c.Strategy = s
			return nil
		default:
			return NewConfigError("Strategy", s, "unsupported strategy; use Lazy or Eager")
		}
	}
}

// WithPluralizer replaces the default pluralization rules.
func WithPluralizer(p Pluralizer) Option {
	return func(c *Config) error {
		if p == nil {
			return NewConfigError("Pluralizer", nil, "pluralizer cannot be nil")
		}
		c.Pluralizer = p
		return nil
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		c.Logger = l
		return nil
	}
}

// WithStats attaches a Stats collector.
func WithStats(s *Stats) Option {
	return func(c *Config) error {
		c.Stats = s
		return nil
	}
}
