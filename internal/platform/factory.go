package platform

import (
	"fmt"

	"github.com/aretw0/dom/pkg/adapters/memory"
	"github.com/aretw0/dom/pkg/cache"
	"github.com/aretw0/dom/pkg/fixtures"
	"github.com/aretw0/dom/pkg/typed"
)

// NewStore builds an in-memory object store, seeded with fixtures when
// WithFixtures is given.
//
//	store, err := dom.NewStore(dom.WithFixtures(os.DirFS("testdata"), "*.yaml"))
func NewStore(opts ...Option) (*memory.Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return newStore(o)
}

func newStore(o *options) (*memory.Store, error) {
	var storeOpts []memory.Option
	if o.logger != nil {
		storeOpts = append(storeOpts, memory.WithLogger(o.logger))
	}
	if o.registerer != nil {
		storeOpts = append(storeOpts, memory.WithRegisterer(o.registerer))
	}
	store := memory.New(storeOpts...)

	if o.fixtures != nil {
		doc, err := fixtures.Load(o.fixtures, o.fixturePattern)
		if err != nil {
			return nil, fmt.Errorf("failed to load fixtures: %w", err)
		}
		if err := doc.Seed(store); err != nil {
			return nil, fmt.Errorf("failed to seed store: %w", err)
		}
	}
	return store, nil
}

// New wires a cache over the configured transport. Without WithTransport or
// WithStore a fresh in-memory store is created.
//
//	c, err := dom.New(dom.WithStore(store), dom.WithBatchSize(100))
func New(opts ...Option) (*cache.Cache, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	transport := o.transport
	if transport == nil && o.store != nil {
		transport = o.store
	}
	if transport == nil {
		store, err := newStore(o)
		if err != nil {
			return nil, err
		}
		transport = store
	}

	cacheOpts := []cache.Option{cache.WithBatchSize(o.batchSize)}
	if o.logger != nil {
		cacheOpts = append(cacheOpts, cache.WithLogger(o.logger))
	}
	if o.registerer != nil {
		cacheOpts = append(cacheOpts, cache.WithRegisterer(o.registerer))
	}
	return cache.New(typed.NewHelper(transport), cacheOpts...)
}
