package dom

import (
	"io/fs"
	"log/slog"

	"github.com/aretw0/dom/internal/platform"
	"github.com/aretw0/dom/pkg/adapters/memory"
	"github.com/aretw0/dom/pkg/cache"
	"github.com/aretw0/dom/pkg/core"
	"github.com/aretw0/dom/pkg/typed"
	"github.com/prometheus/client_golang/prometheus"
)

// --- Types ---

// Cache is a public alias for the indexed cache.
type Cache = cache.Cache

// Store is a public alias for the in-memory object store.
type Store = memory.Store

// Helper is a public alias for the typed transport helper.
type Helper = typed.Helper

// --- Configuration ---

// Option defines a functional option for configuring DOM components.
type Option = platform.Option

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithTransport makes the cache read through a custom transport.
func WithTransport(t core.Transport) Option {
	return platform.WithTransport(t)
}

// WithStore makes the cache read through an existing in-memory store.
func WithStore(s *Store) Option {
	return platform.WithStore(s)
}

// WithRegisterer registers the store and cache metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return platform.WithRegisterer(reg)
}

// WithBatchSize bounds the number of ids per OR filter in batched reads.
func WithBatchSize(n int) Option {
	return platform.WithBatchSize(n)
}

// WithFixtures seeds a freshly built store with YAML fixtures.
func WithFixtures(fsys fs.FS, pattern string) Option {
	return platform.WithFixtures(fsys, pattern)
}

// FromEnv builds options from DOM_* environment variables
// (DOM_BATCH_SIZE, DOM_LOG_LEVEL, DOM_FIXTURE_DIR, DOM_FIXTURE_GLOB).
func FromEnv() ([]Option, error) {
	return platform.FromEnv()
}

// --- Factory ---

// New creates a cache over the configured transport.
func New(opts ...Option) (*Cache, error) {
	return platform.New(opts...)
}

// NewStore creates an in-memory object store.
func NewStore(opts ...Option) (*Store, error) {
	return platform.NewStore(opts...)
}

// NewHelper creates a typed helper over any transport.
func NewHelper(t core.Transport) *Helper {
	return typed.NewHelper(t)
}
