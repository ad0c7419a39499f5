package typed

import (
	"context"
	"fmt"

	"github.com/aretw0/dom/pkg/core"
)

// Helper bundles the typed repositories of every entity type over one
// transport, plus the status transition operation.
type Helper struct {
	Definitions         *Repository[*core.Definition]
	SectionDefinitions  *Repository[*core.SectionDefinition]
	BehaviorDefinitions *Repository[*core.BehaviorDefinition]
	Instances           *Repository[*core.Instance]

	transport core.Transport
}

// NewHelper creates a Helper sending every request through transport.
func NewHelper(transport core.Transport) *Helper {
	return &Helper{
		Definitions:         NewRepository[*core.Definition](transport),
		SectionDefinitions:  NewRepository[*core.SectionDefinition](transport),
		BehaviorDefinitions: NewRepository[*core.BehaviorDefinition](transport),
		Instances:           NewRepository[*core.Instance](transport),
		transport:           transport,
	}
}

// Transport returns the underlying transport.
func (h *Helper) Transport() core.Transport {
	return h.transport
}

// InstancesOf returns every instance of the given definition.
func (h *Helper) InstancesOf(ctx context.Context, definitionID core.ID) ([]*core.Instance, error) {
	if definitionID == core.EmptyID {
		return nil, fmt.Errorf("%w: definition id cannot be empty", core.ErrInvalidArgument)
	}
	return h.Instances.Read(ctx, core.DefinitionIDEqual(definitionID))
}

// Transition moves an instance along the status transition with the given id
// and returns the updated instance.
func (h *Helper) Transition(ctx context.Context, instanceID core.ID, transitionID string) (*core.Instance, error) {
	if instanceID == core.EmptyID || transitionID == "" {
		return nil, fmt.Errorf("%w: instance id and transition id are required", core.ErrInvalidArgument)
	}
	if h.transport == nil {
		return nil, fmt.Errorf("%w: helper has no transport", core.ErrInvalidArgument)
	}
	responses, err := h.transport.Send(ctx, []core.Request{core.TransitionRequest{
		InstanceID:   instanceID,
		TransitionID: transitionID,
	}})
	if err != nil {
		return nil, err
	}
	if len(responses) != 1 {
		return nil, fmt.Errorf("transport returned %d responses for 1 request", len(responses))
	}
	resp, ok := responses[0].(core.TransitionResponse)
	if !ok || resp.Instance == nil {
		return nil, fmt.Errorf("%w: unexpected response %T to transition", core.ErrUnsupported, responses[0])
	}
	return resp.Instance, nil
}
