package core

import "reflect"

// EntityType identifies an entity collection, and doubles as the subject of
// lookup errors.
type EntityType string

// Stored entity types. Each has its own identity-keyed collection.
const (
	EntityDefinition         EntityType = "definition"
	EntitySectionDefinition  EntityType = "section_definition"
	EntityInstance           EntityType = "instance"
	EntityBehaviorDefinition EntityType = "behavior_definition"
)

// Nested schema elements. They are never stored on their own but show up in
// lookup errors.
const (
	EntityFieldDescriptor  EntityType = "field_descriptor"
	EntityStatusTransition EntityType = "status_transition"
)

// EntityTypes lists the stored entity types in dependency order.
var EntityTypes = []EntityType{
	EntityBehaviorDefinition,
	EntitySectionDefinition,
	EntityDefinition,
	EntityInstance,
}

// Object is implemented by every stored entity.
// EntityType must not dereference its receiver so that it can be called on a
// typed nil.
type Object interface {
	EntityType() EntityType
	ObjectID() ID
	// Attribute returns the value of a filterable attribute, or false when the
	// entity type does not carry it.
	Attribute(a Attribute) (any, bool)
}

// IsNil reports whether o is nil or a typed nil pointer.
func IsNil(o Object) bool {
	if o == nil {
		return true
	}
	v := reflect.ValueOf(o)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Named is implemented by entities addressable by a globally unique name.
type Named interface {
	Object
	ObjectName() string
}

// Attribute names an entity property a filter can compare against.
type Attribute struct {
	name  string
	field ID
}

// Supported attributes.
var (
	AttrID                   = Attribute{name: "id"}
	AttrName                 = Attribute{name: "name"}
	AttrDefinitionID         = Attribute{name: "definition_id"}
	AttrStatusID             = Attribute{name: "status_id"}
	AttrBehaviorDefinitionID = Attribute{name: "behavior_definition_id"}
)

// FieldValueAttr addresses the value stored for a field descriptor in any
// section of an instance.
func FieldValueAttr(fieldDescriptorID ID) Attribute {
	return Attribute{name: "field_value", field: fieldDescriptorID}
}

func (a Attribute) String() string {
	if a.field != EmptyID {
		return a.name + "[" + a.field.String() + "]"
	}
	return a.name
}

// IsFieldValue reports whether a addresses a field value, returning the field
// descriptor.
func (a Attribute) IsFieldValue() (ID, bool) {
	return a.field, a.name == "field_value"
}

var (
	_ Named  = (*Definition)(nil)
	_ Named  = (*SectionDefinition)(nil)
	_ Named  = (*BehaviorDefinition)(nil)
	_ Object = (*Instance)(nil)
)
