// Package cache memoizes lookups against a core.Transport so that repeated
// reads of definitions, schemas and instances cost no round-trip.
//
// Every index is a concurrent map with get-or-load semantics. No lock is held
// while a fetch is in flight, and at most one fetch per key runs at a time.
// Entries are never invalidated: a cache reflects the store as it was when
// each entry was loaded. Build a new Cache to observe later changes.
package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/dom/pkg/core"
	"github.com/aretw0/dom/pkg/typed"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultBatchSize is the maximum number of ids in one OR filter.
const DefaultBatchSize = 500

type config struct {
	logger    *slog.Logger
	registry  prometheus.Registerer
	batchSize int
	metrics   *metrics
}

// Option configures a Cache.
type Option func(*config)

// WithLogger sets the logger for cache misses and fetch failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithRegisterer registers the cache metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registry = reg
	}
}

// WithBatchSize bounds the number of ids per OR filter in batched reads.
// All chunks of one batch still travel in a single round-trip. Values below
// one restore the default.
func WithBatchSize(n int) Option {
	return func(c *config) {
		c.batchSize = n
	}
}

// Cache bundles one EntityCache per entity type plus the instances-by-
// definition index.
type Cache struct {
	helper *typed.Helper

	definitions         *EntityCache[*core.Definition]
	sectionDefinitions  *EntityCache[*core.SectionDefinition]
	behaviorDefinitions *EntityCache[*core.BehaviorDefinition]
	instances           *EntityCache[*core.Instance]

	byDefinition *index[[]*core.Instance]

	logger  *slog.Logger
	metrics *metrics
}

// New creates an empty cache reading through helper.
func New(helper *typed.Helper, opts ...Option) (*Cache, error) {
	if helper == nil {
		return nil, fmt.Errorf("%w: helper cannot be nil", core.ErrInvalidArgument)
	}
	cfg := &config{batchSize: DefaultBatchSize}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.batchSize < 1 {
		cfg.batchSize = DefaultBatchSize
	}
	cfg.metrics = newMetrics(cfg.registry)

	return &Cache{
		helper:              helper,
		definitions:         newEntityCache(helper.Definitions, cfg),
		sectionDefinitions:  newEntityCache(helper.SectionDefinitions, cfg),
		behaviorDefinitions: newEntityCache(helper.BehaviorDefinitions, cfg),
		instances:           newEntityCache(helper.Instances, cfg),
		byDefinition:        newIndex[[]*core.Instance](),
		logger:              cfg.logger,
		metrics:             cfg.metrics,
	}, nil
}

// Definitions returns the definition cache.
func (c *Cache) Definitions() *EntityCache[*core.Definition] { return c.definitions }

// SectionDefinitions returns the section definition cache.
func (c *Cache) SectionDefinitions() *EntityCache[*core.SectionDefinition] {
	return c.sectionDefinitions
}

// BehaviorDefinitions returns the behavior definition cache.
func (c *Cache) BehaviorDefinitions() *EntityCache[*core.BehaviorDefinition] {
	return c.behaviorDefinitions
}

// Instances returns the instance cache. Instances have no name index.
func (c *Cache) Instances() *EntityCache[*core.Instance] { return c.instances }

// Helper returns the typed helper the cache reads through.
func (c *Cache) Helper() *typed.Helper { return c.helper }

// InstancesByDefinition returns every instance of the given definition. The
// first call fetches them in one round-trip and back-fills the by-id index;
// later calls return the same slice without a fetch, even when the store has
// changed since.
func (c *Cache) InstancesByDefinition(ctx context.Context, definitionID core.ID) ([]*core.Instance, error) {
	if definitionID == core.EmptyID {
		return nil, fmt.Errorf("%w: definition id cannot be empty", core.ErrInvalidArgument)
	}
	entity := string(core.EntityInstance)
	key := definitionID.String()
	list, hit, err := c.byDefinition.getOrLoad(key, func() ([]*core.Instance, error) {
		c.logger.Debug("cache miss", "entity", entity, "index", indexByDefinition, "key", key)
		c.metrics.fetch(entity, indexByDefinition)
		items, err := c.helper.InstancesOf(ctx, definitionID)
		if err != nil {
			return nil, err
		}
		for _, inst := range items {
			c.instances.store(inst)
		}
		return items, nil
	})
	c.metrics.lookup(entity, indexByDefinition, hit)
	if err != nil {
		c.instances.logFailure(indexByDefinition, key, err)
		return nil, err
	}
	return list, nil
}

// InstancesByDefinitionName resolves the definition through the name index
// and returns its instances.
func (c *Cache) InstancesByDefinitionName(ctx context.Context, name string) ([]*core.Instance, error) {
	def, err := c.definitions.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return c.InstancesByDefinition(ctx, def.ID)
}

// FindInstances queries the store with filter and refreshes the by-id index
// with the matches.
func (c *Cache) FindInstances(ctx context.Context, filter core.Filter) ([]*core.Instance, error) {
	return c.instances.Find(ctx, filter)
}

// FieldDescriptor returns a copy of the field descriptor fieldID of the
// section definition sectionDefinitionID.
func (c *Cache) FieldDescriptor(ctx context.Context, sectionDefinitionID, fieldID core.ID) (*core.FieldDescriptor, error) {
	sd, err := c.sectionDefinitions.GetByID(ctx, sectionDefinitionID)
	if err != nil {
		return nil, err
	}
	fd, err := sd.FieldByID(fieldID)
	if err != nil {
		return nil, err
	}
	cp := fd.Clone()
	return &cp, nil
}

// FieldDescriptorByName returns a copy of the field named fieldName of the
// section definition named sectionName.
func (c *Cache) FieldDescriptorByName(ctx context.Context, sectionName, fieldName string) (*core.FieldDescriptor, error) {
	sd, err := c.sectionDefinitions.GetByName(ctx, sectionName)
	if err != nil {
		return nil, err
	}
	fd, err := sd.FieldByName(fieldName)
	if err != nil {
		return nil, err
	}
	cp := fd.Clone()
	return &cp, nil
}
