package engine

import (
	"time"

	"go.uber.org/zap"
)

// ============================================================================
// GRAPH OPTIONS: Functional options for NewGraph()
// ============================================================================

// Option configures graph behavior via functional options pattern.
type Option func(*config)

// Observer is notified after each publish and each rejected signal update.
// Calls happen outside the graph lock.
type Observer interface {
	Published(output Output, took time.Duration)
	Rejected(signal Signal, err error)
}

type config struct {
	RangeCeiling float64 // upper bound accepted for payloadRange besides the dataset max
	Observers    []Observer
	Logger       *zap.Logger
}

// WithRangeCeiling widens the accepted payloadRange domain to [0, max(ceiling, dataset max)].
// Range sliders usually extend past the heaviest payload.
func WithRangeCeiling(ceiling float64) Option {
	return func(c *config) {
		c.RangeCeiling = ceiling
	}
}

// WithObserver registers an observer. May be given more than once.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.Observers = append(c.Observers, o)
		}
	}
}

// WithLogger sets the logger. Defaults to zap.L() at construction time.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.Logger = l
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.L()
	}
	return cfg
}
