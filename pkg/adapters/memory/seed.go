package memory

import (
	"fmt"

	"github.com/aretw0/dom/pkg/core"
)

// SetDefinitions replaces every stored definition with defs.
func (s *Store) SetDefinitions(defs ...*core.Definition) error {
	return seed(s.definitions, defs)
}

// SetSectionDefinitions replaces every stored section definition with defs.
func (s *Store) SetSectionDefinitions(defs ...*core.SectionDefinition) error {
	return seed(s.sectionDefinitions, defs)
}

// SetBehaviorDefinitions replaces every stored behavior definition with defs.
func (s *Store) SetBehaviorDefinitions(defs ...*core.BehaviorDefinition) error {
	return seed(s.behaviorDefinitions, defs)
}

// SetInstances replaces every stored instance with instances.
func (s *Store) SetInstances(instances ...*core.Instance) error {
	return seed(s.instances, instances)
}

func seed[T core.Object](c *collection[T], items []T) error {
	for i, item := range items {
		if core.IsNil(item) {
			return fmt.Errorf("%w: %s %d is nil", core.ErrInvalidArgument, c.entity, i)
		}
		if item.ObjectID() == core.EmptyID {
			return fmt.Errorf("%w: %s %d has an empty id", core.ErrInvalidArgument, c.entity, i)
		}
	}
	c.replace(items)
	return nil
}
