package core

import "fmt"

// Clone helpers return deep copies so that stores and caches never share
// mutable state with their callers.

func cloneValue(v Value) Value {
	if list, ok := v.Data.([]any); ok {
		v.Data = append([]any(nil), list...)
	}
	return v
}

// Clone returns a deep copy of the field descriptor.
func (f FieldDescriptor) Clone() FieldDescriptor {
	if f.DefaultValue != nil {
		dv := cloneValue(*f.DefaultValue)
		f.DefaultValue = &dv
	}
	return f
}

// Clone returns a deep copy of d.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	cp := *d
	cp.SectionLinks = append([]SectionDefinitionLink(nil), d.SectionLinks...)
	return &cp
}

// Clone returns a deep copy of s.
func (s *SectionDefinition) Clone() *SectionDefinition {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Fields != nil {
		cp.Fields = make([]FieldDescriptor, len(s.Fields))
		for i, f := range s.Fields {
			cp.Fields[i] = f.Clone()
		}
	}
	if s.Reservation != nil {
		r := *s.Reservation
		cp.Reservation = &r
	}
	return &cp
}

// Clone returns a deep copy of b.
func (b *BehaviorDefinition) Clone() *BehaviorDefinition {
	if b == nil {
		return nil
	}
	cp := *b
	cp.Statuses = append([]Status(nil), b.Statuses...)
	cp.Transitions = append([]StatusTransition(nil), b.Transitions...)
	return &cp
}

// Clone returns a deep copy of s.
func (s Section) Clone() Section {
	if s.FieldValues != nil {
		values := make(map[ID]Value, len(s.FieldValues))
		for k, v := range s.FieldValues {
			values[k] = cloneValue(v)
		}
		s.FieldValues = values
	}
	return s
}

// Clone returns a deep copy of i.
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	cp := *i
	if i.Sections != nil {
		cp.Sections = make([]Section, len(i.Sections))
		for idx, s := range i.Sections {
			cp.Sections[idx] = s.Clone()
		}
	}
	return &cp
}

// CloneObject deep-copies any stored entity.
func CloneObject(o Object) (Object, error) {
	switch v := o.(type) {
	case *Definition:
		return v.Clone(), nil
	case *SectionDefinition:
		return v.Clone(), nil
	case *BehaviorDefinition:
		return v.Clone(), nil
	case *Instance:
		return v.Clone(), nil
	default:
		return nil, fmt.Errorf("%w: cannot clone %T", ErrUnsupported, o)
	}
}
