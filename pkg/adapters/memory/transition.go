package memory

import (
	"fmt"
	"strings"

	"github.com/aretw0/dom/pkg/core"
)

// engine validates and applies status transitions. It reads definitions and
// behaviors while the caller holds the instance write lock, so the lock order
// is always instances, definitions, behaviors.
type engine struct {
	definitions *collection[*core.Definition]
	behaviors   *collection[*core.BehaviorDefinition]
}

// apply moves inst along transitionID. Existence checks run before the state
// check; inst is left untouched on failure.
func (e engine) apply(inst *core.Instance, transitionID string) error {
	def, ok := e.definitions.get(inst.DefinitionID)
	if !ok {
		return &core.NotFoundError{Entity: core.EntityDefinition, Key: inst.DefinitionID.String()}
	}
	behavior, ok := e.behaviors.get(def.BehaviorDefinitionID)
	if !ok {
		return &core.NotFoundError{Entity: core.EntityBehaviorDefinition, Key: def.BehaviorDefinitionID.String()}
	}
	tr, ok := behavior.Transition(transitionID)
	if !ok {
		return &core.NotFoundError{Entity: core.EntityStatusTransition, Key: transitionID}
	}
	if inst.StatusID != tr.FromStatusID {
		return &core.InvalidStateError{
			InstanceID:   inst.ID,
			TransitionID: transitionID,
			Expected:     tr.FromStatusID,
			Actual:       inst.StatusID,
		}
	}
	inst.StatusID = tr.ToStatusID
	return nil
}

// transition resolves the instance and applies the transition atomically.
func (s *Store) transition(instanceID core.ID, transitionID string) (*core.Instance, error) {
	if instanceID == core.EmptyID {
		return nil, fmt.Errorf("%w: instance id cannot be empty", core.ErrInvalidArgument)
	}
	if strings.TrimSpace(transitionID) == "" {
		return nil, fmt.Errorf("%w: transition id cannot be empty", core.ErrInvalidArgument)
	}
	inst, found, err := s.instances.modify(instanceID, func(inst *core.Instance) error {
		return s.engine.apply(inst, transitionID)
	})
	if !found {
		return nil, &core.NotFoundError{Entity: core.EntityInstance, Key: instanceID.String()}
	}
	if err != nil {
		return nil, err
	}
	return inst, nil
}
