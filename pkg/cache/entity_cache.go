package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/dom/pkg/core"
	"github.com/aretw0/dom/pkg/typed"
)

// EntityCache memoizes the entities of one type by id and, for named
// entity types, by name. The two indices back-fill each other so that a
// lookup through one never costs a round-trip for the other.
//
// Cached entities are shared between callers and must be treated as
// read-only; submit changes through the store and build a new cache to see
// them.
type EntityCache[T core.Object] struct {
	repo      *typed.Repository[T]
	entity    string
	named     bool
	batchSize int

	byID   *index[T]
	byName *index[T]

	logger  *slog.Logger
	metrics *metrics
}

func newEntityCache[T core.Object](repo *typed.Repository[T], cfg *config) *EntityCache[T] {
	var zero T
	_, named := any(zero).(core.Named)
	return &EntityCache[T]{
		repo:      repo,
		entity:    string(repo.Entity()),
		named:     named,
		batchSize: cfg.batchSize,
		byID:      newIndex[T](),
		byName:    newIndex[T](),
		logger:    cfg.logger,
		metrics:   cfg.metrics,
	}
}

// GetByID returns the entity with the given id, fetching it on a miss. A
// store miss yields a not-found error and is not memoized.
func (c *EntityCache[T]) GetByID(ctx context.Context, id core.ID) (T, error) {
	var zero T
	if id == core.EmptyID {
		return zero, fmt.Errorf("%w: %s id cannot be empty", core.ErrInvalidArgument, c.entity)
	}
	key := id.String()
	// The fetch runs under the context of the first caller for the key.
	v, hit, err := c.byID.getOrLoad(key, func() (T, error) {
		c.logger.Debug("cache miss", "entity", c.entity, "index", indexByID, "key", key)
		c.metrics.fetch(c.entity, indexByID)
		item, err := c.repo.GetByID(ctx, id)
		if err != nil {
			return zero, err
		}
		c.bindName(item)
		return item, nil
	})
	c.metrics.lookup(c.entity, indexByID, hit)
	if err != nil {
		c.logFailure(indexByID, key, err)
		return zero, err
	}
	return v, nil
}

// GetManyByID resolves many ids with at most one round-trip. Empty and
// repeated ids are ignored; ids without a match are absent from the result.
func (c *EntityCache[T]) GetManyByID(ctx context.Context, ids []core.ID) (map[core.ID]T, error) {
	result := make(map[core.ID]T, len(ids))
	seen := make(map[core.ID]struct{}, len(ids))
	var missing []core.ID
	for _, id := range ids {
		if id == core.EmptyID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		v, hit := c.byID.get(id.String())
		c.metrics.lookup(c.entity, indexByID, hit)
		if hit {
			result[id] = v
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return result, nil
	}

	c.logger.Debug("cache batch fetch", "entity", c.entity, "index", indexByID, "missing", len(missing))
	c.metrics.fetch(c.entity, indexByID)
	items, err := c.repo.ReadByIDs(ctx, missing, c.batchSize)
	if err != nil {
		c.logFailure(indexByID, fmt.Sprintf("%d ids", len(missing)), err)
		return nil, err
	}
	for _, item := range items {
		c.store(item)
		result[item.ObjectID()] = item
	}
	return result, nil
}

// GetByName returns the entity with the given name. Zero matches yield a
// not-found error, several an ambiguity error. Names known to be bound to
// several ids fail without a round-trip.
func (c *EntityCache[T]) GetByName(ctx context.Context, name string) (T, error) {
	var zero T
	if !c.named {
		return zero, fmt.Errorf("%w: %s has no name index", core.ErrUnsupported, c.entity)
	}
	if strings.TrimSpace(name) == "" {
		return zero, fmt.Errorf("%w: %s name cannot be empty", core.ErrInvalidArgument, c.entity)
	}
	if c.byName.isAmbiguous(name) {
		c.metrics.lookup(c.entity, indexByName, true)
		return zero, &core.AmbiguousError{Entity: core.EntityType(c.entity), Key: name}
	}
	v, hit, err := c.byName.getOrLoad(name, func() (T, error) {
		c.logger.Debug("cache miss", "entity", c.entity, "index", indexByName, "key", name)
		c.metrics.fetch(c.entity, indexByName)
		item, err := c.repo.GetByName(ctx, name)
		if err != nil {
			return zero, err
		}
		c.byID.setIfAbsent(item.ObjectID().String(), item)
		return item, nil
	})
	c.metrics.lookup(c.entity, indexByName, hit)
	if err != nil {
		if errors.Is(err, core.ErrAmbiguous) {
			c.byName.markAmbiguous(name)
		}
		c.logFailure(indexByName, name, err)
		return zero, err
	}
	return v, nil
}

// Find always queries the store and refreshes the by-id index with every
// match.
func (c *EntityCache[T]) Find(ctx context.Context, filter core.Filter) ([]T, error) {
	c.metrics.fetch(c.entity, indexFilter)
	items, err := c.repo.Read(ctx, filter)
	if err != nil {
		c.logFailure(indexFilter, fmt.Sprint(filter), err)
		return nil, err
	}
	for _, item := range items {
		c.store(item)
	}
	return items, nil
}

// Len returns the number of entities cached by id.
func (c *EntityCache[T]) Len() int {
	return c.byID.len()
}

// store overwrites the by-id slot with item and back-fills the name index.
func (c *EntityCache[T]) store(item T) {
	c.byID.set(item.ObjectID().String(), item)
	c.bindName(item)
}

func (c *EntityCache[T]) bindName(item T) {
	named, ok := any(item).(core.Named)
	if !ok || named.ObjectName() == "" {
		return
	}
	id := item.ObjectID()
	c.byName.bind(named.ObjectName(), item, func(existing T) bool {
		return existing.ObjectID() != id
	})
}

// logFailure reports expected outcomes at Debug, caller mistakes at Error and
// everything else at Warn.
func (c *EntityCache[T]) logFailure(index, key string, err error) {
	attrs := []any{"entity", c.entity, "index", index, "key", key, "error", err}
	switch {
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrAmbiguous):
		c.logger.Debug("cache lookup failed", attrs...)
	case errors.Is(err, core.ErrInvalidArgument), errors.Is(err, core.ErrUnsupported):
		c.logger.Error("cache lookup rejected", attrs...)
	default:
		c.logger.Warn("cache fetch failed", attrs...)
	}
}
