package cache_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aretw0/dom/pkg/cache"
	"github.com/aretw0/dom/pkg/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestNew(t *testing.T) {
	_, err := cache.New(nil)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Second Call Is Served From Cache", func(t *testing.T) {
		e := newEnv(t)
		def := &core.Definition{ID: core.NewID(), Name: "Booking"}
		require.NoError(t, e.store.SetDefinitions(def))

		first, err := e.cache.Definitions().GetByID(ctx, def.ID)
		require.NoError(t, err)
		second, err := e.cache.Definitions().GetByID(ctx, def.ID)
		require.NoError(t, err)

		assert.Equal(t, def, first)
		assert.Same(t, first, second)
		assert.Equal(t, 1, e.probe.Sends())
	})

	t.Run("Misses Are Not Memoized", func(t *testing.T) {
		e := newEnv(t)
		id := core.NewID()

		_, err := e.cache.Instances().GetByID(ctx, id)
		require.ErrorIs(t, err, core.ErrNotFound)
		_, err = e.cache.Instances().GetByID(ctx, id)
		require.ErrorIs(t, err, core.ErrNotFound)
		assert.Equal(t, 2, e.probe.Sends())

		// The entity appears later and is found without rebuilding the cache.
		require.NoError(t, e.store.SetInstances(&core.Instance{ID: id}))
		got, err := e.cache.Instances().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
	})

	t.Run("Empty ID", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.cache.Definitions().GetByID(ctx, core.EmptyID)
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
		assert.Zero(t, e.probe.Sends())
	})

	t.Run("Back-Fills Name Index", func(t *testing.T) {
		e := newEnv(t)
		def := &core.Definition{ID: core.NewID(), Name: "Booking"}
		require.NoError(t, e.store.SetDefinitions(def))

		byID, err := e.cache.Definitions().GetByID(ctx, def.ID)
		require.NoError(t, err)
		byName, err := e.cache.Definitions().GetByName(ctx, "Booking")
		require.NoError(t, err)

		assert.Same(t, byID, byName)
		assert.Equal(t, 1, e.probe.Sends())
	})

	t.Run("Transport Failure Propagates", func(t *testing.T) {
		boom := errors.New("connection reset")
		e := newEnv(t)
		e.probe.next = core.TransportFunc(func(context.Context, []core.Request) ([]core.Response, error) {
			return nil, boom
		})

		_, err := e.cache.Definitions().GetByID(ctx, core.NewID())
		assert.ErrorIs(t, err, boom)
	})
}

func TestGetByID_Concurrent(t *testing.T) {
	const callers = 16
	ctx := context.Background()
	e := newEnv(t)
	inst := &core.Instance{ID: core.NewID(), DefinitionID: core.NewID(), StatusID: "draft"}
	require.NoError(t, e.store.SetInstances(inst))

	results := make([]*core.Instance, callers)
	var g errgroup.Group
	for i := range callers {
		g.Go(func() error {
			got, err := e.cache.Instances().GetByID(ctx, inst.ID)
			results[i] = got
			return err
		})
	}
	require.NoError(t, g.Wait())

	for _, got := range results {
		assert.Equal(t, inst, got)
	}
	assert.GreaterOrEqual(t, e.probe.Sends(), 1)
	assert.LessOrEqual(t, e.probe.Sends(), callers)
}

func TestGetManyByID(t *testing.T) {
	ctx := context.Background()

	t.Run("One Batched Fetch For Distinct Missing IDs", func(t *testing.T) {
		e := newEnv(t)
		a := &core.Instance{ID: core.NewID()}
		b := &core.Instance{ID: core.NewID()}
		require.NoError(t, e.store.SetInstances(a, b, &core.Instance{ID: core.NewID()}))

		got, err := e.cache.Instances().GetManyByID(ctx, []core.ID{a.ID, b.ID, a.ID, core.EmptyID, b.ID})
		require.NoError(t, err)

		assert.Len(t, got, 2)
		assert.Equal(t, a, got[a.ID])
		assert.Equal(t, b, got[b.ID])
		assert.Equal(t, 1, e.probe.Sends())
		require.Len(t, e.probe.Reads(), 1)
		assert.Equal(t, "(id == "+a.ID.String()+" OR id == "+b.ID.String()+")", e.probe.Reads()[0].Filter.String())
	})

	t.Run("Cached IDs Are Not Fetched Again", func(t *testing.T) {
		e := newEnv(t)
		a := &core.Instance{ID: core.NewID()}
		b := &core.Instance{ID: core.NewID()}
		require.NoError(t, e.store.SetInstances(a, b))

		_, err := e.cache.Instances().GetByID(ctx, a.ID)
		require.NoError(t, err)
		got, err := e.cache.Instances().GetManyByID(ctx, []core.ID{a.ID, b.ID})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		reads := e.probe.Reads()
		require.Len(t, reads, 2)
		assert.Equal(t, core.IDEqual(b.ID), reads[1].Filter)

		// Both are cached now: no further round-trip.
		_, err = e.cache.Instances().GetManyByID(ctx, []core.ID{b.ID, a.ID})
		require.NoError(t, err)
		assert.Equal(t, 2, e.probe.Sends())
	})

	t.Run("Unknown IDs Are Absent", func(t *testing.T) {
		e := newEnv(t)
		a := &core.Instance{ID: core.NewID()}
		require.NoError(t, e.store.SetInstances(a))

		got, err := e.cache.Instances().GetManyByID(ctx, []core.ID{a.ID, core.NewID()})
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Contains(t, got, a.ID)
	})

	t.Run("Nothing To Fetch", func(t *testing.T) {
		e := newEnv(t)
		got, err := e.cache.Instances().GetManyByID(ctx, []core.ID{core.EmptyID})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Zero(t, e.probe.Sends())
	})

	t.Run("Chunks Travel In One Send", func(t *testing.T) {
		e := newEnv(t, cache.WithBatchSize(2))
		var items []*core.Instance
		var ids []core.ID
		for range 5 {
			inst := &core.Instance{ID: core.NewID()}
			items = append(items, inst)
			ids = append(ids, inst.ID)
		}
		require.NoError(t, e.store.SetInstances(items...))

		got, err := e.cache.Instances().GetManyByID(ctx, ids)
		require.NoError(t, err)
		assert.Len(t, got, 5)
		assert.Equal(t, 1, e.probe.Sends())
		assert.Len(t, e.probe.Reads(), 3)
	})

	t.Run("Back-Fills Name Index", func(t *testing.T) {
		e := newEnv(t)
		def := &core.Definition{ID: core.NewID(), Name: "Booking"}
		require.NoError(t, e.store.SetDefinitions(def))

		_, err := e.cache.Definitions().GetManyByID(ctx, []core.ID{def.ID})
		require.NoError(t, err)
		_, err = e.cache.Definitions().GetByName(ctx, "Booking")
		require.NoError(t, err)
		assert.Equal(t, 1, e.probe.Sends())
	})
}

func TestGetByName(t *testing.T) {
	ctx := context.Background()

	t.Run("Ambiguous In Store", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, e.store.SetDefinitions(
			&core.Definition{ID: core.NewID(), Name: "Booking"},
			&core.Definition{ID: core.NewID(), Name: "Booking"},
		))

		_, err := e.cache.Definitions().GetByName(ctx, "Booking")
		var amb *core.AmbiguousError
		require.ErrorAs(t, err, &amb)
		assert.Equal(t, 2, amb.Count)

		// Known ambiguity needs no second round-trip.
		_, err = e.cache.Definitions().GetByName(ctx, "Booking")
		assert.ErrorIs(t, err, core.ErrAmbiguous)
		assert.Equal(t, 1, e.probe.Sends())
	})

	t.Run("Ambiguity Detected While Back-Filling", func(t *testing.T) {
		e := newEnv(t)
		a := &core.SectionDefinition{ID: core.NewID(), Name: "Address"}
		b := &core.SectionDefinition{ID: core.NewID(), Name: "Address"}
		require.NoError(t, e.store.SetSectionDefinitions(a, b))

		_, err := e.cache.SectionDefinitions().GetManyByID(ctx, []core.ID{a.ID, b.ID})
		require.NoError(t, err)

		_, err = e.cache.SectionDefinitions().GetByName(ctx, "Address")
		assert.ErrorIs(t, err, core.ErrAmbiguous)
		assert.Equal(t, 1, e.probe.Sends())
	})

	t.Run("Not Found", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.cache.BehaviorDefinitions().GetByName(ctx, "Workflow")
		var nf *core.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, core.EntityBehaviorDefinition, nf.Entity)
		assert.Equal(t, "Workflow", nf.Key)
	})

	t.Run("Back-Fills ID Index", func(t *testing.T) {
		e := newEnv(t)
		b := &core.BehaviorDefinition{ID: core.NewID(), Name: "Workflow"}
		require.NoError(t, e.store.SetBehaviorDefinitions(b))

		byName, err := e.cache.BehaviorDefinitions().GetByName(ctx, "Workflow")
		require.NoError(t, err)
		byID, err := e.cache.BehaviorDefinitions().GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Same(t, byName, byID)
		assert.Equal(t, 1, e.probe.Sends())
	})

	t.Run("Invalid Input", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.cache.Definitions().GetByName(ctx, "  ")
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
		_, err = e.cache.Instances().GetByName(ctx, "anything")
		assert.ErrorIs(t, err, core.ErrUnsupported)
		assert.Zero(t, e.probe.Sends())
	})
}

func TestInstancesByDefinition(t *testing.T) {
	ctx := context.Background()

	t.Run("Stale Until Rebuilt", func(t *testing.T) {
		e := newEnv(t)
		def := &core.Definition{ID: core.NewID(), Name: "Booking"}
		i1 := &core.Instance{ID: core.NewID(), DefinitionID: def.ID}
		i2 := &core.Instance{ID: core.NewID(), DefinitionID: def.ID}
		other := &core.Instance{ID: core.NewID(), DefinitionID: core.NewID()}
		require.NoError(t, e.store.SetDefinitions(def))
		require.NoError(t, e.store.SetInstances(i1, other, i2))

		first, err := e.cache.InstancesByDefinition(ctx, def.ID)
		require.NoError(t, err)
		assert.Equal(t, []*core.Instance{i1, i2}, first)

		_, err = e.cache.Helper().Instances.Create(ctx, &core.Instance{ID: core.NewID(), DefinitionID: def.ID})
		require.NoError(t, err)
		sends := e.probe.Sends()

		second, err := e.cache.InstancesByDefinition(ctx, def.ID)
		require.NoError(t, err)
		assert.Len(t, second, 2)
		assert.Same(t, &first[0], &second[0], "the same cached slice is returned")
		assert.Equal(t, sends, e.probe.Sends())
	})

	t.Run("Back-Fills ID Index", func(t *testing.T) {
		e := newEnv(t)
		defID := core.NewID()
		inst := &core.Instance{ID: core.NewID(), DefinitionID: defID}
		require.NoError(t, e.store.SetInstances(inst))

		list, err := e.cache.InstancesByDefinition(ctx, defID)
		require.NoError(t, err)
		got, err := e.cache.Instances().GetByID(ctx, inst.ID)
		require.NoError(t, err)
		assert.Same(t, list[0], got)
		assert.Equal(t, 1, e.probe.Sends())
	})

	t.Run("By Definition Name", func(t *testing.T) {
		e := newEnv(t)
		def := &core.Definition{ID: core.NewID(), Name: "Booking"}
		inst := &core.Instance{ID: core.NewID(), DefinitionID: def.ID}
		require.NoError(t, e.store.SetDefinitions(def))
		require.NoError(t, e.store.SetInstances(inst))

		list, err := e.cache.InstancesByDefinitionName(ctx, "Booking")
		require.NoError(t, err)
		assert.Equal(t, []*core.Instance{inst}, list)

		_, err = e.cache.InstancesByDefinitionName(ctx, "Missing")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("Empty Definition", func(t *testing.T) {
		e := newEnv(t)
		list, err := e.cache.InstancesByDefinition(ctx, core.NewID())
		require.NoError(t, err)
		assert.Empty(t, list)

		_, err = e.cache.InstancesByDefinition(ctx, core.EmptyID)
		assert.ErrorIs(t, err, core.ErrInvalidArgument)
	})
}

func TestFindInstances(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	draft := &core.Instance{ID: core.NewID(), StatusID: "draft"}
	done := &core.Instance{ID: core.NewID(), StatusID: "done"}
	require.NoError(t, e.store.SetInstances(draft, done))

	filter := core.Equal(core.AttrStatusID, "draft")
	got, err := e.cache.FindInstances(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, []*core.Instance{draft}, got)

	// Filter reads always reach the store.
	_, err = e.cache.FindInstances(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, e.probe.Sends())

	// The matches were back-filled by id.
	_, err = e.cache.Instances().GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, e.probe.Sends())
	assert.Equal(t, 1, e.cache.Instances().Len())

	_, err = e.cache.FindInstances(ctx, nil)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestFieldDescriptor(t *testing.T) {
	ctx := context.Background()
	street := core.FieldDescriptor{ID: core.NewID(), Name: "Street", Type: core.ValueString}
	city := core.FieldDescriptor{ID: core.NewID(), Name: "City", Type: core.ValueString}
	sd := &core.SectionDefinition{ID: core.NewID(), Name: "Address", Fields: []core.FieldDescriptor{street, city}}

	t.Run("By ID", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, e.store.SetSectionDefinitions(sd))

		got, err := e.cache.FieldDescriptor(ctx, sd.ID, city.ID)
		require.NoError(t, err)
		assert.Equal(t, city, *got)

		_, err = e.cache.FieldDescriptor(ctx, sd.ID, core.NewID())
		var nf *core.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, core.EntityFieldDescriptor, nf.Entity)
		assert.Equal(t, 1, e.probe.Sends())
	})

	t.Run("By Name", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, e.store.SetSectionDefinitions(sd))

		got, err := e.cache.FieldDescriptorByName(ctx, "Address", "Street")
		require.NoError(t, err)
		assert.Equal(t, street, *got)

		_, err = e.cache.FieldDescriptorByName(ctx, "Address", "Zip")
		assert.ErrorIs(t, err, core.ErrNotFound)
		_, err = e.cache.FieldDescriptorByName(ctx, "Contact", "Street")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("Returned Copy Does Not Alias The Cache", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, e.store.SetSectionDefinitions(sd))

		got, err := e.cache.FieldDescriptor(ctx, sd.ID, street.ID)
		require.NoError(t, err)
		got.Name = "changed"

		again, err := e.cache.FieldDescriptor(ctx, sd.ID, street.ID)
		require.NoError(t, err)
		assert.Equal(t, "Street", again.Name)
	})
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewPedanticRegistry()
	e := newEnv(t, cache.WithRegisterer(reg))
	def := &core.Definition{ID: core.NewID(), Name: "Booking"}
	require.NoError(t, e.store.SetDefinitions(def))

	for range 3 {
		_, err := e.cache.Definitions().GetByID(ctx, def.ID)
		require.NoError(t, err)
	}

	expected := `
# HELP dom_cache_fetches_total Round-trips to the object store issued by the cache.
# TYPE dom_cache_fetches_total counter
dom_cache_fetches_total{entity="definition",index="id"} 1
# HELP dom_cache_lookups_total Cache lookups by entity type, index and result.
# TYPE dom_cache_lookups_total counter
dom_cache_lookups_total{entity="definition",index="id",result="hit"} 2
dom_cache_lookups_total{entity="definition",index="id",result="miss"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"dom_cache_fetches_total", "dom_cache_lookups_total"))
}

func TestState(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	def := &core.Definition{ID: core.NewID(), Name: "Booking"}
	require.NoError(t, e.store.SetDefinitions(def))
	_, err := e.cache.Definitions().GetByID(ctx, def.ID)
	require.NoError(t, err)

	state, ok := e.cache.State().(cache.CacheState)
	require.True(t, ok)
	assert.Equal(t, cache.IndexState{ByID: 1, ByName: 1}, state.Definitions)
	assert.Zero(t, state.Instances.ByID)
	assert.Equal(t, "cache", e.cache.ComponentType())
}

func TestCache_ConcurrentMixedLookups(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	def := &core.Definition{ID: core.NewID(), Name: "Booking"}
	var items []*core.Instance
	var ids []core.ID
	for range 20 {
		inst := &core.Instance{ID: core.NewID(), DefinitionID: def.ID}
		items = append(items, inst)
		ids = append(ids, inst.ID)
	}
	require.NoError(t, e.store.SetDefinitions(def))
	require.NoError(t, e.store.SetInstances(items...))

	var failures atomic.Int32
	var g errgroup.Group
	for i := range 10 {
		g.Go(func() error {
			switch i % 3 {
			case 0:
				_, err := e.cache.InstancesByDefinitionName(ctx, "Booking")
				return err
			case 1:
				got, err := e.cache.Instances().GetManyByID(ctx, ids)
				if len(got) != len(ids) {
					failures.Add(1)
				}
				return err
			default:
				_, err := e.cache.Instances().GetByID(ctx, ids[i])
				return err
			}
		})
	}
	require.NoError(t, g.Wait())
	assert.Zero(t, failures.Load())
	assert.Equal(t, len(ids), e.cache.Instances().Len())
}
