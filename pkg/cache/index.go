package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// index is a concurrent map with get-or-load semantics. The lock guards only
// the map; loads run outside it, and concurrent loads of the same key share
// one in-flight call.
type index[V any] struct {
	mu        sync.RWMutex
	items     map[string]V
	ambiguous map[string]struct{}
	group     singleflight.Group
}

func newIndex[V any]() *index[V] {
	return &index[V]{
		items:     make(map[string]V),
		ambiguous: make(map[string]struct{}),
	}
}

func (x *index[V]) get(key string) (V, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	v, ok := x.items[key]
	return v, ok
}

// getOrLoad returns the cached value for key, or calls load and caches its
// result unless another writer filled the slot meanwhile, in which case the
// existing value wins. Failed loads are not cached. hit reports whether the
// value came from the map without waiting on a load.
func (x *index[V]) getOrLoad(key string, load func() (V, error)) (v V, hit bool, err error) {
	if v, ok := x.get(key); ok {
		return v, true, nil
	}
	res, err, _ := x.group.Do(key, func() (any, error) {
		if v, ok := x.get(key); ok {
			return v, nil
		}
		loaded, err := load()
		if err != nil {
			return nil, err
		}
		return x.setIfAbsent(key, loaded), nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return res.(V), false, nil
}

// setIfAbsent stores v unless key is present and returns the value now held.
func (x *index[V]) setIfAbsent(key string, v V) V {
	x.mu.Lock()
	defer x.mu.Unlock()
	if existing, ok := x.items[key]; ok {
		return existing
	}
	x.items[key] = v
	return v
}

func (x *index[V]) set(key string, v V) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.items[key] = v
}

// bind stores v under key when the slot is empty. When the slot holds a value
// for which conflicts reports true, the key is marked ambiguous instead.
func (x *index[V]) bind(key string, v V, conflicts func(existing V) bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	existing, ok := x.items[key]
	if !ok {
		x.items[key] = v
		return
	}
	if conflicts(existing) {
		x.ambiguous[key] = struct{}{}
	}
}

func (x *index[V]) markAmbiguous(key string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ambiguous[key] = struct{}{}
}

func (x *index[V]) isAmbiguous(key string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.ambiguous[key]
	return ok
}

func (x *index[V]) len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.items)
}

func (x *index[V]) ambiguousLen() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ambiguous)
}
