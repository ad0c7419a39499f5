package core

import "context"

// Transport carries batches of requests to an object store and returns one
// response per request, in order. Implementations are either the remote
// service client or a local store such as memory.Store; callers cannot tell
// them apart.
type Transport interface {
	Send(ctx context.Context, requests []Request) ([]Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, requests []Request) ([]Response, error)

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, requests []Request) ([]Response, error) {
	return f(ctx, requests)
}

// RequestKind names a request variant.
type RequestKind string

// Request kinds.
const (
	KindRead       RequestKind = "read"
	KindCreate     RequestKind = "create"
	KindUpdate     RequestKind = "update"
	KindDelete     RequestKind = "delete"
	KindTransition RequestKind = "transition"
)

// Request is one of ReadRequest, CreateRequest, UpdateRequest, DeleteRequest
// or TransitionRequest.
type Request interface {
	Kind() RequestKind
	isRequest()
}

// ReadRequest selects the entities of one type matching Filter.
type ReadRequest struct {
	Entity EntityType
	Filter Filter
}

// CreateRequest stores Object, overwriting any entity with the same id.
type CreateRequest struct{ Object Object }

// UpdateRequest replaces the stored entity with Object.
type UpdateRequest struct{ Object Object }

// DeleteRequest removes the entity with Object's id.
type DeleteRequest struct{ Object Object }

// TransitionRequest moves an instance along a status transition of its
// behavior definition.
type TransitionRequest struct {
	InstanceID   ID
	TransitionID string
}

func (ReadRequest) Kind() RequestKind       { return KindRead }
func (CreateRequest) Kind() RequestKind     { return KindCreate }
func (UpdateRequest) Kind() RequestKind     { return KindUpdate }
func (DeleteRequest) Kind() RequestKind     { return KindDelete }
func (TransitionRequest) Kind() RequestKind { return KindTransition }

func (ReadRequest) isRequest()       {}
func (CreateRequest) isRequest()     {}
func (UpdateRequest) isRequest()     {}
func (DeleteRequest) isRequest()     {}
func (TransitionRequest) isRequest() {}

// Response is one of CrudResponse or TransitionResponse.
type Response interface {
	isResponse()
}

// CrudResponse answers read, create, update and delete requests. Reads carry
// every match (possibly none); writes echo the affected entity.
type CrudResponse struct {
	Objects []Object
}

// TransitionResponse carries the instance after a successful transition.
type TransitionResponse struct {
	Instance *Instance
}

func (CrudResponse) isResponse()       {}
func (TransitionResponse) isResponse() {}
