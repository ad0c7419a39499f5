package core

import (
	"fmt"
	"strings"
)

// FieldByID returns the field descriptor with the given id.
func (s *SectionDefinition) FieldByID(id ID) (*FieldDescriptor, error) {
	for i := range s.Fields {
		if s.Fields[i].ID == id {
			return &s.Fields[i], nil
		}
	}
	return nil, notFound(EntityFieldDescriptor, id.String())
}

// FieldByName returns the field descriptor with the given name. Names must be
// unique within a section definition; duplicates are reported as ambiguous.
func (s *SectionDefinition) FieldByName(name string) (*FieldDescriptor, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: field name cannot be empty", ErrInvalidArgument)
	}
	var found *FieldDescriptor
	count := 0
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			found = &s.Fields[i]
			count++
		}
	}
	switch count {
	case 0:
		return nil, notFound(EntityFieldDescriptor, s.Name+"/"+name)
	case 1:
		return found, nil
	default:
		return nil, &AmbiguousError{Entity: EntityFieldDescriptor, Key: s.Name + "/" + name, Count: count}
	}
}

// HasStatus reports whether id is one of the declared statuses.
func (b *BehaviorDefinition) HasStatus(id string) bool {
	for _, st := range b.Statuses {
		if st.ID == id {
			return true
		}
	}
	return false
}

// Transition returns the transition with the given id.
func (b *BehaviorDefinition) Transition(id string) (StatusTransition, bool) {
	for _, t := range b.Transitions {
		if t.ID == id {
			return t, true
		}
	}
	return StatusTransition{}, false
}

// FieldValue returns the value stored for a field descriptor.
func (s *Section) FieldValue(fieldDescriptorID ID) (Value, bool) {
	v, ok := s.FieldValues[fieldDescriptorID]
	return v, ok
}

// SetFieldValue stores a value for a field descriptor.
func (s *Section) SetFieldValue(fieldDescriptorID ID, v Value) {
	if s.FieldValues == nil {
		s.FieldValues = make(map[ID]Value)
	}
	s.FieldValues[fieldDescriptorID] = v
}

// RemoveFieldValue unsets a field. Removing an unset field is a no-op.
func (s *Section) RemoveFieldValue(fieldDescriptorID ID) {
	delete(s.FieldValues, fieldDescriptorID)
}

// SectionsWithDefinition returns pointers to the sections of i that
// instantiate the given section definition, in order.
func (i *Instance) SectionsWithDefinition(sectionDefinitionID ID) []*Section {
	var out []*Section
	for idx := range i.Sections {
		if i.Sections[idx].SectionDefinitionID == sectionDefinitionID {
			out = append(out, &i.Sections[idx])
		}
	}
	return out
}
