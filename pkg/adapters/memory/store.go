// Package memory provides an in-memory object store implementing
// core.Transport. It is the authoritative copy of every entity collection in
// tests and ephemeral environments, and a drop-in replacement for the remote
// service.
package memory

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/dom/pkg/core"
	"github.com/prometheus/client_golang/prometheus"
)

// Compile-time contract assertion.
var _ core.Transport = (*Store)(nil)

// Store holds one collection per entity type and answers transport requests
// against them. Each request on a single entity is atomic.
type Store struct {
	definitions         *collection[*core.Definition]
	sectionDefinitions  *collection[*core.SectionDefinition]
	behaviorDefinitions *collection[*core.BehaviorDefinition]
	instances           *collection[*core.Instance]

	handlers map[core.EntityType]handler
	engine   engine
	logger   *slog.Logger
	metrics  *metrics
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegisterer registers the store metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Store) {
		s.metrics = newMetrics(reg)
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		definitions:         newCollection((*core.Definition).Clone),
		sectionDefinitions:  newCollection((*core.SectionDefinition).Clone),
		behaviorDefinitions: newCollection((*core.BehaviorDefinition).Clone),
		instances:           newCollection((*core.Instance).Clone),
		logger:              slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = newMetrics(nil)
	}
	s.handlers = map[core.EntityType]handler{
		core.EntityDefinition:         s.definitions,
		core.EntitySectionDefinition:  s.sectionDefinitions,
		core.EntityBehaviorDefinition: s.behaviorDefinitions,
		core.EntityInstance:           s.instances,
	}
	s.engine = engine{definitions: s.definitions, behaviors: s.behaviorDefinitions}
	return s
}

// Send handles requests in order and returns one response per request.
// Processing stops at the first failing request; requests before it stay
// applied since there is no cross-request transaction.
func (s *Store) Send(ctx context.Context, requests []core.Request) ([]core.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	responses := make([]core.Response, 0, len(requests))
	for i, req := range requests {
		resp, err := s.handle(req)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *Store) handle(req core.Request) (core.Response, error) {
	switch r := req.(type) {
	case core.ReadRequest:
		h, err := s.handler(r.Entity)
		if err != nil {
			return nil, err
		}
		s.observe(core.KindRead, r.Entity)
		objects, err := h.read(r.Filter)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", r.Entity, err)
		}
		s.logger.Debug("read", "entity", r.Entity, "filter", r.Filter, "matches", len(objects))
		return core.CrudResponse{Objects: objects}, nil

	case core.CreateRequest:
		return s.put(core.KindCreate, r.Object)

	case core.UpdateRequest:
		return s.put(core.KindUpdate, r.Object)

	case core.DeleteRequest:
		h, err := s.handlerFor(r.Object)
		if err != nil {
			return nil, err
		}
		s.observe(core.KindDelete, r.Object.EntityType())
		obj, err := h.remove(r.Object)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("delete", "entity", obj.EntityType(), "id", obj.ObjectID())
		return core.CrudResponse{Objects: []core.Object{obj}}, nil

	case core.TransitionRequest:
		s.observe(core.KindTransition, core.EntityInstance)
		inst, err := s.transition(r.InstanceID, r.TransitionID)
		if err != nil {
			s.logger.Debug("transition rejected", "instance", r.InstanceID, "transition", r.TransitionID, "error", err)
			return nil, err
		}
		s.logger.Debug("transition", "instance", inst.ID, "transition", r.TransitionID, "status", inst.StatusID)
		return core.TransitionResponse{Instance: inst}, nil

	case nil:
		return nil, fmt.Errorf("%w: nil request", core.ErrUnsupported)
	default:
		return nil, fmt.Errorf("%w: request type %T", core.ErrUnsupported, req)
	}
}

// put serves both create and update: an update of a missing id inserts it.
func (s *Store) put(kind core.RequestKind, o core.Object) (core.Response, error) {
	h, err := s.handlerFor(o)
	if err != nil {
		return nil, err
	}
	s.observe(kind, o.EntityType())
	obj, existed, err := h.put(o)
	if err != nil {
		return nil, err
	}
	if kind == core.KindUpdate && !existed {
		s.logger.Debug("update of missing entity inserted it", "entity", obj.EntityType(), "id", obj.ObjectID())
	} else {
		s.logger.Debug(string(kind), "entity", obj.EntityType(), "id", obj.ObjectID())
	}
	return core.CrudResponse{Objects: []core.Object{obj}}, nil
}

func (s *Store) handler(entity core.EntityType) (handler, error) {
	h, ok := s.handlers[entity]
	if !ok {
		return nil, fmt.Errorf("%w: entity type %q", core.ErrUnsupported, entity)
	}
	return h, nil
}

func (s *Store) handlerFor(o core.Object) (handler, error) {
	if core.IsNil(o) {
		return nil, fmt.Errorf("%w: object cannot be nil", core.ErrInvalidArgument)
	}
	return s.handler(o.EntityType())
}

func (s *Store) observe(kind core.RequestKind, entity core.EntityType) {
	s.metrics.requests.WithLabelValues(string(kind), string(entity)).Inc()
}
