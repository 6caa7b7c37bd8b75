package datatable

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Filter is a column predicate. The set of implementations is closed:
// TextContains, NumericRange and SetMembership. A filter is only applied to a
// column whose FilterKind matches.
type Filter interface {
	Kind() FilterKind
	// Match reports whether v passes the filter.
	Match(v Value) bool
	// Empty reports whether the filter constrains nothing. Setting an empty
	// filter clears the column's entry.
	Empty() bool
	String() string

	sealed()
}

// TextContains matches values whose display form contains Needle, ignoring case.
type TextContains struct {
	Needle string `json:"needle"`
}

func (TextContains) Kind() FilterKind { return FilterText }
func (f TextContains) Empty() bool    { return strings.TrimSpace(f.Needle) == "" }
func (TextContains) sealed()          {}

func (f TextContains) Match(v Value) bool {
	if v.IsNull() {
		return false
	}
	return strings.Contains(strings.ToLower(v.String()), strings.ToLower(strings.TrimSpace(f.Needle)))
}

func (f TextContains) String() string { return fmt.Sprintf("contains %q", f.Needle) }

// NumericRange matches numbers within [Min, Max]. A nil bound is open.
type NumericRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Between builds a closed range.
func Between(lo, hi float64) NumericRange { return NumericRange{Min: &lo, Max: &hi} }

// AtLeast builds a range with only a lower bound.
func AtLeast(lo float64) NumericRange { return NumericRange{Min: &lo} }

// AtMost builds a range with only an upper bound.
func AtMost(hi float64) NumericRange { return NumericRange{Max: &hi} }

// ParseBound reads one range bound. Blank input is an open bound; NaN is
// rejected since no value compares against it.
func ParseBound(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBound, s)
	}
	return &f, nil
}

func (NumericRange) Kind() FilterKind { return FilterRange }
func (f NumericRange) Empty() bool    { return f.Min == nil && f.Max == nil }
func (NumericRange) sealed()          {}

func (f NumericRange) Match(v Value) bool {
	if v.Kind != KindNumber {
		return false
	}
	if f.Min != nil && v.Num < *f.Min {
		return false
	}
	if f.Max != nil && v.Num > *f.Max {
		return false
	}
	return true
}

func (f NumericRange) String() string {
	lo, hi := "-inf", "+inf"
	if f.Min != nil {
		lo = fmt.Sprint(*f.Min)
	}
	if f.Max != nil {
		hi = fmt.Sprint(*f.Max)
	}
	return fmt.Sprintf("in [%s, %s]", lo, hi)
}

// SetMembership matches values whose display form equals one of Values.
type SetMembership struct {
	Values []string `json:"values"`
}

// OneOf builds a set filter.
func OneOf(values ...string) SetMembership { return SetMembership{Values: values} }

func (SetMembership) Kind() FilterKind { return FilterSet }
func (f SetMembership) Empty() bool    { return len(f.Values) == 0 }
func (SetMembership) sealed()          {}

func (f SetMembership) Match(v Value) bool {
	s := v.String()
	for _, want := range f.Values {
		if want == s {
			return true
		}
	}
	return false
}

func (f SetMembership) String() string { return "one of " + strings.Join(f.Values, ", ") }
