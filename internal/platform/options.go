package platform

import (
	"io/fs"
	"log/slog"

	"github.com/aretw0/dom/pkg/adapters/memory"
	"github.com/aretw0/dom/pkg/core"
	"github.com/prometheus/client_golang/prometheus"
)

// options holds the configuration shared by the store and the cache.
type options struct {
	transport  core.Transport
	store      *memory.Store
	logger     *slog.Logger
	registerer prometheus.Registerer
	batchSize  int

	fixtures       fs.FS
	fixturePattern string
}

// Option defines a functional option for configuring DOM components.
type Option func(*options)

func defaultOptions() *options {
	return &options{}
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTransport makes the cache read through a custom transport (e.g. a
// remote service client). It takes precedence over WithStore.
func WithTransport(t core.Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithStore makes the cache read through an existing in-memory store.
func WithStore(s *memory.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithRegisterer registers the store and cache metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithBatchSize bounds the number of ids per OR filter in batched reads.
// Zero means default (500).
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithFixtures seeds a freshly built store with the YAML fixtures of fsys
// matching pattern. It has no effect on stores passed through WithStore or
// on custom transports.
func WithFixtures(fsys fs.FS, pattern string) Option {
	return func(o *options) {
		o.fixtures = fsys
		o.fixturePattern = pattern
	}
}
