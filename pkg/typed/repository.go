// Package typed provides type-safe CRUD access to a core.Transport, one
// Repository per entity type.
package typed

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/dom/pkg/core"
)

// Repository wraps a core.Transport to provide type-safe access to the
// entities of one type. T is a pointer entity type such as *core.Definition.
type Repository[T core.Object] struct {
	transport core.Transport
	entity    core.EntityType
}

// NewRepository creates a new type-safe wrapper around a transport.
func NewRepository[T core.Object](transport core.Transport) *Repository[T] {
	var zero T
	return &Repository[T]{transport: transport, entity: zero.EntityType()}
}

// Entity returns the entity type served by r.
func (r *Repository[T]) Entity() core.EntityType {
	return r.entity
}

// Read returns every entity matching filter. No match is not an error.
func (r *Repository[T]) Read(ctx context.Context, filter core.Filter) ([]T, error) {
	if filter == nil {
		return nil, fmt.Errorf("%w: filter cannot be nil", core.ErrInvalidArgument)
	}
	return r.ReadMany(ctx, []core.Filter{filter})
}

// ReadMany sends one read request per filter in a single round-trip and
// concatenates the matches in request order.
func (r *Repository[T]) ReadMany(ctx context.Context, filters []core.Filter) ([]T, error) {
	requests := make([]core.Request, len(filters))
	for i, f := range filters {
		requests[i] = core.ReadRequest{Entity: r.entity, Filter: f}
	}
	responses, err := r.send(ctx, requests)
	if err != nil {
		return nil, err
	}

	result := []T{}
	for _, resp := range responses {
		crud, ok := resp.(core.CrudResponse)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected response %T to %s read", core.ErrUnsupported, resp, r.entity)
		}
		items, err := r.convert(crud.Objects)
		if err != nil {
			return nil, err
		}
		result = append(result, items...)
	}
	return result, nil
}

// ReadAll returns every stored entity of this type.
func (r *Repository[T]) ReadAll(ctx context.Context) ([]T, error) {
	return r.Read(ctx, core.True())
}

// ReadByIDs fetches many entities in a single round-trip. The ids are split
// into OR filters of at most batchSize operands (no limit when batchSize <= 0)
// that all travel in the same Send call. Unknown ids are simply absent from
// the result.
func (r *Repository[T]) ReadByIDs(ctx context.Context, ids []core.ID, batchSize int) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	if batchSize <= 0 || batchSize > len(ids) {
		batchSize = len(ids)
	}
	filters := make([]core.Filter, 0, (len(ids)+batchSize-1)/batchSize)
	for start := 0; start < len(ids); start += batchSize {
		end := min(start+batchSize, len(ids))
		filters = append(filters, core.IDIn(ids[start:end]...))
	}
	return r.ReadMany(ctx, filters)
}

// GetByID returns the entity with the given id.
func (r *Repository[T]) GetByID(ctx context.Context, id core.ID) (T, error) {
	var zero T
	if id == core.EmptyID {
		return zero, fmt.Errorf("%w: %s id cannot be empty", core.ErrInvalidArgument, r.entity)
	}
	items, err := r.Read(ctx, core.IDEqual(id))
	if err != nil {
		return zero, err
	}
	return single(r.entity, id.String(), items)
}

// GetByName returns the entity with the given name. Zero matches yield a
// not-found error, several an ambiguity error.
func (r *Repository[T]) GetByName(ctx context.Context, name string) (T, error) {
	var zero T
	if strings.TrimSpace(name) == "" {
		return zero, fmt.Errorf("%w: %s name cannot be empty", core.ErrInvalidArgument, r.entity)
	}
	items, err := r.Read(ctx, core.NameEqual(name))
	if err != nil {
		return zero, err
	}
	return single(r.entity, name, items)
}

// Create stores obj and returns the stored entity.
func (r *Repository[T]) Create(ctx context.Context, obj T) (T, error) {
	return r.write(ctx, obj, core.CreateRequest{Object: obj})
}

// Update replaces the stored entity with obj.
func (r *Repository[T]) Update(ctx context.Context, obj T) (T, error) {
	return r.write(ctx, obj, core.UpdateRequest{Object: obj})
}

// Delete removes obj. Deleting an absent entity is not an error.
func (r *Repository[T]) Delete(ctx context.Context, obj T) error {
	_, err := r.write(ctx, obj, core.DeleteRequest{Object: obj})
	return err
}

func (r *Repository[T]) write(ctx context.Context, obj T, req core.Request) (T, error) {
	var zero T
	if core.IsNil(obj) {
		return zero, fmt.Errorf("%w: %s cannot be nil", core.ErrInvalidArgument, r.entity)
	}
	responses, err := r.send(ctx, []core.Request{req})
	if err != nil {
		return zero, err
	}
	crud, ok := responses[0].(core.CrudResponse)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected response %T to %s %s", core.ErrUnsupported, responses[0], r.entity, req.Kind())
	}
	items, err := r.convert(crud.Objects)
	if err != nil {
		return zero, err
	}
	if len(items) != 1 {
		return zero, fmt.Errorf("%s %s returned %d objects", r.entity, req.Kind(), len(items))
	}
	return items[0], nil
}

func (r *Repository[T]) send(ctx context.Context, requests []core.Request) ([]core.Response, error) {
	if r.transport == nil {
		return nil, fmt.Errorf("%w: %s repository has no transport", core.ErrInvalidArgument, r.entity)
	}
	responses, err := r.transport.Send(ctx, requests)
	if err != nil {
		return nil, err
	}
	if len(responses) != len(requests) {
		return nil, fmt.Errorf("transport returned %d responses for %d requests", len(responses), len(requests))
	}
	return responses, nil
}

func (r *Repository[T]) convert(objects []core.Object) ([]T, error) {
	out := make([]T, 0, len(objects))
	for _, o := range objects {
		item, ok := o.(T)
		if !ok {
			return nil, fmt.Errorf("%w: got %T from %s collection", core.ErrUnsupported, o, r.entity)
		}
		out = append(out, item)
	}
	return out, nil
}

func single[T any](entity core.EntityType, key string, items []T) (T, error) {
	var zero T
	switch len(items) {
	case 0:
		return zero, &core.NotFoundError{Entity: entity, Key: key}
	case 1:
		return items[0], nil
	default:
		return zero, &core.AmbiguousError{Entity: entity, Key: key, Count: len(items)}
	}
}
