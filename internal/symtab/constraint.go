package symtab

import (
	"slices"

	"github.com/golangsnmp/mibc/internal/module"
)

// RangeSet is a union of ranges.
type RangeSet []module.Range

// Contains reports whether any range holds v.
func (rs RangeSet) Contains(v module.Bound) bool {
	return slices.ContainsFunc(rs, func(r module.Range) bool { return r.Contains(v) })
}

// Constraint is the refinement carried by a syntax. Ranges and Sizes
// are intersections of unions: a value must lie in every set.
type Constraint struct {
	Enums  []module.NamedNumber
	Ranges []RangeSet
	Sizes  []RangeSet
}

// ConstraintOf returns the refinement written on a syntax.
func ConstraintOf(s module.Syntax) Constraint {
	var c Constraint
	c.Enums = slices.Clone(s.Enums)
	if len(s.Ranges) > 0 {
		c.Ranges = []RangeSet{slices.Clone(s.Ranges)}
	}
	if len(s.Sizes) > 0 {
		c.Sizes = []RangeSet{slices.Clone(s.Sizes)}
	}
	return c
}

// IsZero reports whether the constraint restricts nothing.
func (c Constraint) IsZero() bool {
	return len(c.Enums) == 0 && len(c.Ranges) == 0 && len(c.Sizes) == 0
}

// Merge refines parent c with a child constraint. Enumerations are
// unioned with the parent's label winning on conflict. Range and size
// lists are concatenated, parent first.
func (c Constraint) Merge(child Constraint) Constraint {
	out := Constraint{
		Enums:  slices.Clone(c.Enums),
		Ranges: append(slices.Clone(c.Ranges), child.Ranges...),
		Sizes:  append(slices.Clone(c.Sizes), child.Sizes...),
	}
	for _, e := range child.Enums {
		if _, ok := out.Lookup(e.Label); !ok {
			out.Enums = append(out.Enums, e)
		}
	}
	return out
}

// Lookup returns the value of an enumeration label.
func (c Constraint) Lookup(label string) (int64, bool) {
	for _, e := range c.Enums {
		if e.Label == label {
			return e.Value, true
		}
	}
	return 0, false
}

// HasEnumValue reports whether v is an enumerated value.
func (c Constraint) HasEnumValue(v int64) bool {
	return slices.ContainsFunc(c.Enums, func(e module.NamedNumber) bool { return e.Value == v })
}

// AllowsValue reports whether v satisfies every range set.
func (c Constraint) AllowsValue(v module.Bound) bool {
	for _, rs := range c.Ranges {
		if !rs.Contains(v) {
			return false
		}
	}
	return true
}

// AllowsSize reports whether a length of n satisfies every size set.
func (c Constraint) AllowsSize(n int) bool {
	for _, rs := range c.Sizes {
		if !rs.Contains(module.Int(int64(n))) {
			return false
		}
	}
	return true
}
