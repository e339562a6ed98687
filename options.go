package depmerge

import (
	"context"
	"errors"
	"log/slog"
)

// Option configures merge behavior.
type Option func(*mergerConfig) error

// mergerConfig holds all merge configuration.
type mergerConfig struct {
	// logger receives the warning emitted when no intersection exists.
	// Unset means slog.Default(); an explicit nil silences it.
	logger    *slog.Logger
	loggerSet bool

	onFallback func(Fallback)
}

// WithLogger sets the structured logger for merge diagnostics. Fallbacks to
// the maximum version are logged at warn level; debug level traces every
// merge. A nil logger disables logging.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("component", "depmerge")
//	m, err := depmerge.NewMerger(depmerge.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *mergerConfig) error {
		c.logger = l
		c.loggerSet = true
		return nil
	}
}

// WithFallbackHandler registers a callback invoked whenever a merge had to
// fall back to the maximum version because the specifiers do not intersect.
func WithFallbackHandler(fn func(Fallback)) Option {
	return func(c *mergerConfig) error {
		if fn == nil {
			return errors.New("fallback handler must not be nil")
		}
		c.onFallback = fn
		return nil
	}
}

// log returns the configured logger.
func (c *mergerConfig) log() *slog.Logger {
	switch {
	case !c.loggerSet:
		return slog.Default()
	case c.logger == nil:
		return slog.New(discardHandler{})
	}
	return c.logger
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

func newMergerConfig(opts ...Option) (*mergerConfig, error) {
	c := &mergerConfig{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
