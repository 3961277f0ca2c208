package driftd

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/diachron-labs/driftd/internal/domain"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	path          string
	busyTimeoutMS int

	policy domain.MagnitudePolicy

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithSQLite sets the database file path. The file is created and migrated
// on first open.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.path = path
	})
}

// WithBusyTimeout sets the SQLite busy timeout in milliseconds.
// Default: 5000.
func WithBusyTimeout(ms int) Option {
	return optionFunc(func(c *clientConfig) {
		c.busyTimeoutMS = ms
	})
}

// WithMagnitudeWeights sets the drift magnitude metric weights.
// Weights must be non-negative and sum to 1.
// Defaults: overlap 0.5, positional 0.25, reduction 0.25.
func WithMagnitudeWeights(overlap, positional, reduction float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.policy.OverlapWeight = overlap
		c.policy.PositionalWeight = positional
		c.policy.ReductionWeight = reduction
	})
}

// WithDetectionThreshold sets the magnitude at or above which drift counts
// as detected. Default: 0.3.
func WithDetectionThreshold(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.policy.Threshold = t
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
