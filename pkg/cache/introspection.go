package cache

import "github.com/aretw0/introspection"

// IndexState reports the size of the indices of one entity type.
type IndexState struct {
	ByID      int `json:"by_id"`
	ByName    int `json:"by_name"`
	Ambiguous int `json:"ambiguous"`
}

// CacheState exposes index sizes for observability.
type CacheState struct {
	Definitions           IndexState `json:"definitions"`
	SectionDefinitions    IndexState `json:"section_definitions"`
	BehaviorDefinitions   IndexState `json:"behavior_definitions"`
	Instances             IndexState `json:"instances"`
	InstancesByDefinition int        `json:"instances_by_definition"`
}

func (c *EntityCache[T]) state() IndexState {
	return IndexState{
		ByID:      c.byID.len(),
		ByName:    c.byName.len(),
		Ambiguous: c.byName.ambiguousLen(),
	}
}

// State implements introspection.Introspectable.
func (c *Cache) State() any {
	return CacheState{
		Definitions:           c.definitions.state(),
		SectionDefinitions:    c.sectionDefinitions.state(),
		BehaviorDefinitions:   c.behaviorDefinitions.state(),
		Instances:             c.instances.state(),
		InstancesByDefinition: c.byDefinition.len(),
	}
}

// ComponentType implements introspection.Component.
func (c *Cache) ComponentType() string {
	return "cache"
}

var _ introspection.Introspectable = (*Cache)(nil)
var _ introspection.Component = (*Cache)(nil)
