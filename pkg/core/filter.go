package core

import (
	"fmt"
	"reflect"
)

// Filter is a predicate over entities. The set of node kinds is closed:
// TrueFilter, FalseFilter, AndFilter, OrFilter and EqualFilter.
type Filter interface {
	fmt.Stringer
	isFilter()
}

// TrueFilter matches every entity.
type TrueFilter struct{}

// FalseFilter matches no entity.
type FalseFilter struct{}

// AndFilter matches when both operands match.
type AndFilter struct{ Left, Right Filter }

// OrFilter matches when either operand matches.
type OrFilter struct{ Left, Right Filter }

// EqualFilter matches when the attribute equals Value.
type EqualFilter struct {
	Attr  Attribute
	Value any
}

func (TrueFilter) isFilter()  {}
func (FalseFilter) isFilter() {}
func (AndFilter) isFilter()   {}
func (OrFilter) isFilter()    {}
func (EqualFilter) isFilter() {}

func (TrueFilter) String() string    { return "TRUE" }
func (FalseFilter) String() string   { return "FALSE" }
func (f AndFilter) String() string   { return "(" + str(f.Left) + " AND " + str(f.Right) + ")" }
func (f OrFilter) String() string    { return "(" + str(f.Left) + " OR " + str(f.Right) + ")" }
func (f EqualFilter) String() string { return fmt.Sprintf("%s == %v", f.Attr, f.Value) }

func str(f Filter) string {
	if f == nil {
		return "<nil>"
	}
	return f.String()
}

// True returns a filter matching everything.
func True() Filter { return TrueFilter{} }

// False returns a filter matching nothing.
func False() Filter { return FalseFilter{} }

// And combines two filters conjunctively.
func And(left, right Filter) Filter { return AndFilter{Left: left, Right: right} }

// Or combines two filters disjunctively.
func Or(left, right Filter) Filter { return OrFilter{Left: left, Right: right} }

// Equal compares an attribute with a value.
func Equal(attr Attribute, value any) Filter { return EqualFilter{Attr: attr, Value: value} }

// IDEqual matches the entity with the given identity.
func IDEqual(id ID) Filter { return Equal(AttrID, id) }

// NameEqual matches entities with the given name.
func NameEqual(name string) Filter { return Equal(AttrName, name) }

// DefinitionIDEqual matches instances of the given definition.
func DefinitionIDEqual(id ID) Filter { return Equal(AttrDefinitionID, id) }

// AnyOf joins filters with OR. The tree is balanced so that its depth grows
// logarithmically with the number of operands. An empty list matches nothing.
func AnyOf(filters ...Filter) Filter {
	switch len(filters) {
	case 0:
		return False()
	case 1:
		return filters[0]
	}
	mid := len(filters) / 2
	return Or(AnyOf(filters[:mid]...), AnyOf(filters[mid:]...))
}

// AllOf joins filters with AND. An empty list matches everything.
func AllOf(filters ...Filter) Filter {
	switch len(filters) {
	case 0:
		return True()
	case 1:
		return filters[0]
	}
	mid := len(filters) / 2
	return And(AllOf(filters[:mid]...), AllOf(filters[mid:]...))
}

// IDIn matches any of the given identities.
func IDIn(ids ...ID) Filter {
	filters := make([]Filter, len(ids))
	for i, id := range ids {
		filters[i] = IDEqual(id)
	}
	return AnyOf(filters...)
}

// Match evaluates f against a single entity.
func Match(f Filter, o Object) (bool, error) {
	switch f := f.(type) {
	case TrueFilter:
		return true, nil
	case FalseFilter:
		return false, nil
	case AndFilter:
		ok, err := Match(f.Left, o)
		if err != nil || !ok {
			return false, err
		}
		return Match(f.Right, o)
	case OrFilter:
		ok, err := Match(f.Left, o)
		if err != nil || ok {
			return ok, err
		}
		return Match(f.Right, o)
	case EqualFilter:
		actual, ok := o.Attribute(f.Attr)
		if !ok {
			return false, fmt.Errorf("%w: %s has no attribute %s", ErrUnsupported, o.EntityType(), f.Attr)
		}
		return equalValues(actual, f.Value), nil
	case nil:
		return false, fmt.Errorf("%w: nil filter node", ErrUnsupported)
	default:
		return false, fmt.Errorf("%w: filter node %T", ErrUnsupported, f)
	}
}

// Apply returns the items matching f, preserving their order. It fails on
// the first unsupported node or attribute, even when no items are given.
func Apply[T Object](f Filter, items []T) ([]T, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: filter cannot be nil", ErrInvalidArgument)
	}
	if err := Validate(f); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		ok, err := Match(f, item)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// Validate checks that f is built only from known node kinds.
func Validate(f Filter) error {
	switch f := f.(type) {
	case TrueFilter, FalseFilter, EqualFilter:
		return nil
	case AndFilter:
		if err := Validate(f.Left); err != nil {
			return err
		}
		return Validate(f.Right)
	case OrFilter:
		if err := Validate(f.Left); err != nil {
			return err
		}
		return Validate(f.Right)
	case nil:
		return fmt.Errorf("%w: nil filter node", ErrUnsupported)
	default:
		return fmt.Errorf("%w: filter node %T", ErrUnsupported, f)
	}
}

func equalValues(actual, expected any) bool {
	if _, ok := actual.(unset); ok {
		return false
	}
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	ta, te := reflect.TypeOf(actual), reflect.TypeOf(expected)
	if ta == te && ta.Comparable() {
		return actual == expected
	}
	return reflect.DeepEqual(actual, expected)
}
