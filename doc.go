// Package dom is the Composition Root for the DOM object model.
//
// DOM stores typed, schema-driven objects: definitions describe instances,
// section definitions group field descriptors, and behavior definitions
// declare the statuses an instance moves through and the transitions that
// connect them.
//
// Architecture:
//
// The core (pkg/core) holds the entity model, the filter language and the
// Transport contract. Every object store speaks that contract, whether it is
// a remote service client or the in-memory store (pkg/adapters/memory) used
// by tests and demos. Callers read through a typed helper (pkg/typed) and,
// when lookups repeat, through the indexed cache (pkg/cache).
//
// Features:
//
//   - **Drop-in Store**: the in-memory store answers exactly the requests a remote store would.
//   - **Status Transitions**: a strict state machine per instance, driven by its behavior definition.
//   - **Indexed Cache**: by-id, by-name and by-definition lookups with O(1) round-trips for batches.
//   - **Fixtures**: YAML documents seed stores explicitly, no shared test data.
//   - **Observability**: Prometheus counters and introspection state on store and cache.
//
// Usage:
//
//	store, err := dom.NewStore(dom.WithFixtures(os.DirFS("testdata"), "*.yaml"))
//
//	c, err := dom.New(dom.WithStore(store), dom.WithLogger(logger))
//	instances, err := c.InstancesByDefinitionName(ctx, "Booking")
package dom
