package memory

import "github.com/aretw0/introspection"

// StoreState exposes collection sizes for observability.
type StoreState struct {
	Definitions         int `json:"definitions"`
	SectionDefinitions  int `json:"section_definitions"`
	BehaviorDefinitions int `json:"behavior_definitions"`
	Instances           int `json:"instances"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	return StoreState{
		Definitions:         s.definitions.size(),
		SectionDefinitions:  s.sectionDefinitions.size(),
		BehaviorDefinitions: s.behaviorDefinitions.size(),
		Instances:           s.instances.size(),
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
