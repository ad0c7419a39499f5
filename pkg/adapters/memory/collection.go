package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/dom/pkg/core"
)

// handler is the CRUD record registered per entity type.
type handler interface {
	read(filter core.Filter) ([]core.Object, error)
	put(o core.Object) (obj core.Object, existed bool, err error)
	remove(o core.Object) (core.Object, error)
	size() int
}

// collection is an identity-keyed set of entities of one type. Items are
// cloned on the way in and on the way out, so no caller ever holds a pointer
// into the store.
type collection[T core.Object] struct {
	entity core.EntityType
	clone  func(T) T

	mu    sync.RWMutex
	order []core.ID
	items map[core.ID]T
}

func newCollection[T core.Object](clone func(T) T) *collection[T] {
	var zero T
	return &collection[T]{
		entity: zero.EntityType(),
		clone:  clone,
		items:  make(map[core.ID]T),
	}
}

func (c *collection[T]) get(id core.ID) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	if !ok {
		return item, false
	}
	return c.clone(item), true
}

// snapshot returns clones of every item in insertion order.
func (c *collection[T]) snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.clone(c.items[id]))
	}
	return out
}

func (c *collection[T]) store(item T) (T, bool) {
	cp := c.clone(item)
	id := cp.ObjectID()

	c.mu.Lock()
	defer c.mu.Unlock()

	_, existed := c.items[id]
	if !existed {
		c.order = append(c.order, id)
	}
	c.items[id] = cp
	return c.clone(cp), existed
}

func (c *collection[T]) delete(id core.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	c.order = slices.DeleteFunc(c.order, func(k core.ID) bool { return k == id })
	return true
}

// replace swaps the whole content of the collection. Later duplicates of an
// id overwrite earlier ones.
func (c *collection[T]) replace(items []T) {
	next := make(map[core.ID]T, len(items))
	order := make([]core.ID, 0, len(items))
	for _, item := range items {
		id := item.ObjectID()
		if _, ok := next[id]; !ok {
			order = append(order, id)
		}
		next[id] = c.clone(item)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = next
	c.order = order
}

// modify applies fn to a copy of the item under the write lock and stores the
// copy only when fn succeeds.
func (c *collection[T]) modify(id core.ID, fn func(item T) error) (T, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	current, ok := c.items[id]
	if !ok {
		return zero, false, nil
	}
	next := c.clone(current)
	if err := fn(next); err != nil {
		return zero, true, err
	}
	c.items[id] = next
	return c.clone(next), true, nil
}

func (c *collection[T]) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *collection[T]) read(filter core.Filter) ([]core.Object, error) {
	matches, err := core.Apply(filter, c.snapshot())
	if err != nil {
		return nil, err
	}
	out := make([]core.Object, len(matches))
	for i, m := range matches {
		out[i] = m
	}
	return out, nil
}

func (c *collection[T]) put(o core.Object) (core.Object, bool, error) {
	item, err := c.cast(o)
	if err != nil {
		return nil, false, err
	}
	stored, existed := c.store(item)
	return stored, existed, nil
}

func (c *collection[T]) remove(o core.Object) (core.Object, error) {
	item, err := c.cast(o)
	if err != nil {
		return nil, err
	}
	c.delete(item.ObjectID())
	return c.clone(item), nil
}

func (c *collection[T]) cast(o core.Object) (T, error) {
	item, ok := o.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %T does not belong to the %s collection", core.ErrUnsupported, o, c.entity)
	}
	if item.ObjectID() == core.EmptyID {
		var zero T
		return zero, fmt.Errorf("%w: %s id cannot be empty", core.ErrInvalidArgument, c.entity)
	}
	return item, nil
}
