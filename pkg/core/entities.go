// Package core defines the DOM entity model (definitions, section
// definitions, behavior definitions and instances), the filter language used
// to query them, and the transport contract every object store implements.
package core

// ValueType is the declared type of a field.
type ValueType string

// Field value types.
const (
	ValueString ValueType = "string"
	ValueInt    ValueType = "int"
	ValueDouble ValueType = "double"
	ValueBool   ValueType = "bool"
	ValueTime   ValueType = "datetime"
	ValueID     ValueType = "guid"
	ValueList   ValueType = "list"
)

// Value wraps a typed field value.
type Value struct {
	Type ValueType `yaml:"type"`
	Data any       `yaml:"data"`
}

// FieldDescriptor is the schema of a single field.
type FieldDescriptor struct {
	ID           ID        `yaml:"id"`
	Name         string    `yaml:"name"`
	Type         ValueType `yaml:"type"`
	DefaultValue *Value    `yaml:"default_value,omitempty"`
	IsOptional   bool      `yaml:"optional,omitempty"`
}

// ReservationLink marks a section definition as describing a booking of a
// resource between two time fields.
type ReservationLink struct {
	ResourceFieldID ID `yaml:"resource_field_id"`
	StartFieldID    ID `yaml:"start_field_id"`
	EndFieldID      ID `yaml:"end_field_id"`
}

// SectionDefinition is a named group of field descriptors.
type SectionDefinition struct {
	ID          ID                `yaml:"id"`
	Name        string            `yaml:"name"`
	Fields      []FieldDescriptor `yaml:"fields"`
	Reservation *ReservationLink  `yaml:"reservation,omitempty"`
}

// Status is a named state of a behavior definition.
type Status struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// StatusTransition is a named, directed edge between two statuses.
type StatusTransition struct {
	ID           string `yaml:"id"`
	FromStatusID string `yaml:"from"`
	ToStatusID   string `yaml:"to"`
}

// BehaviorDefinition declares the statuses of an instance and the legal
// transitions between them.
type BehaviorDefinition struct {
	ID              ID                 `yaml:"id"`
	Name            string             `yaml:"name"`
	InitialStatusID string             `yaml:"initial_status"`
	Statuses        []Status           `yaml:"statuses"`
	Transitions     []StatusTransition `yaml:"transitions"`
}

// SectionDefinitionLink attaches a section definition to a definition.
type SectionDefinitionLink struct {
	SectionDefinitionID ID   `yaml:"section_definition_id"`
	AllowMultiple       bool `yaml:"allow_multiple,omitempty"`
}

// Definition is the schema of instances.
// BehaviorDefinitionID is EmptyID when instances carry no status.
type Definition struct {
	ID                   ID                      `yaml:"id"`
	Name                 string                  `yaml:"name"`
	BehaviorDefinitionID ID                      `yaml:"behavior_definition_id,omitempty"`
	SectionLinks         []SectionDefinitionLink `yaml:"section_links"`
}

// Section holds the values of one section definition within an instance.
// A field absent from FieldValues is unset, which differs from a field set to
// its default.
type Section struct {
	ID                  ID           `yaml:"id"`
	SectionDefinitionID ID           `yaml:"section_definition_id"`
	FieldValues         map[ID]Value `yaml:"field_values"`
}

// Instance is a data object conforming to a definition.
// StatusID is empty while the instance has no status.
type Instance struct {
	ID           ID        `yaml:"id"`
	DefinitionID ID        `yaml:"definition_id"`
	StatusID     string    `yaml:"status,omitempty"`
	Sections     []Section `yaml:"sections"`
}

func (*Definition) EntityType() EntityType { return EntityDefinition }
func (d *Definition) ObjectID() ID         { return d.ID }
func (d *Definition) ObjectName() string   { return d.Name }

func (d *Definition) Attribute(a Attribute) (any, bool) {
	switch a {
	case AttrID:
		return d.ID, true
	case AttrName:
		return d.Name, true
	case AttrBehaviorDefinitionID:
		return d.BehaviorDefinitionID, true
	}
	return nil, false
}

func (*SectionDefinition) EntityType() EntityType { return EntitySectionDefinition }
func (s *SectionDefinition) ObjectID() ID         { return s.ID }
func (s *SectionDefinition) ObjectName() string   { return s.Name }

func (s *SectionDefinition) Attribute(a Attribute) (any, bool) {
	switch a {
	case AttrID:
		return s.ID, true
	case AttrName:
		return s.Name, true
	}
	return nil, false
}

func (*BehaviorDefinition) EntityType() EntityType { return EntityBehaviorDefinition }
func (b *BehaviorDefinition) ObjectID() ID         { return b.ID }
func (b *BehaviorDefinition) ObjectName() string   { return b.Name }

func (b *BehaviorDefinition) Attribute(a Attribute) (any, bool) {
	switch a {
	case AttrID:
		return b.ID, true
	case AttrName:
		return b.Name, true
	}
	return nil, false
}

func (*Instance) EntityType() EntityType { return EntityInstance }
func (i *Instance) ObjectID() ID         { return i.ID }

func (i *Instance) Attribute(a Attribute) (any, bool) {
	switch a {
	case AttrID:
		return i.ID, true
	case AttrDefinitionID:
		return i.DefinitionID, true
	case AttrStatusID:
		return i.StatusID, true
	}
	if fd, ok := a.IsFieldValue(); ok {
		for _, s := range i.Sections {
			if v, ok := s.FieldValues[fd]; ok {
				return v.Data, true
			}
		}
		// Unset fields never match, but the attribute itself is supported.
		return unset{}, true
	}
	return nil, false
}

// unset stands in for a field without a value. It compares unequal to every
// filter operand.
type unset struct{}
