// Package grid implements the data explorer engine: the filter/search/sort
// query pipeline, viewport windowing, column layout and the drill-down
// bridge.
package grid

import (
	"strings"

	"github.com/google/uuid"
	"github.com/johan-st/datadeck/internal/dataset"
)

// Operator is a filter comparison operator.
type Operator string

const (
	OpEquals   Operator = "equals"
	OpContains Operator = "contains"
	OpGT       Operator = "gt"
	OpLT       Operator = "lt"
	OpBetween  Operator = "between"
)

// Operators lists the operators the filter builder offers.
var Operators = []Operator{OpEquals, OpContains, OpGT, OpLT, OpBetween}

// Filter is one active filter. Filters are AND-combined by the pipeline.
// ValueEnd is only read by OpBetween.
type Filter struct {
	ID       string
	Column   string
	Op       Operator
	Value    any
	ValueEnd any
}

// NewFilter creates a filter with a fresh id.
func NewFilter(column string, op Operator, value, valueEnd any) Filter {
	return Filter{
		ID:       uuid.NewString(),
		Column:   column,
		Op:       op,
		Value:    value,
		ValueEnd: valueEnd,
	}
}

// Match reports whether a row satisfies the filter.
//
// A missing column never matches. Ordered comparisons coerce through
// dataset.Number, so non-numeric operands become NaN and the comparison is
// false. An unrecognized operator tag matches everything rather than
// silently hiding rows.
func (f Filter) Match(row dataset.Row) bool {
	cell, ok := row[f.Column]
	if !ok {
		return false
	}

	switch f.Op {
	case OpEquals:
		return dataset.Format(cell) == dataset.Format(f.Value)
	case OpContains:
		return strings.Contains(
			strings.ToLower(dataset.Format(cell)),
			strings.ToLower(dataset.Format(f.Value)),
		)
	case OpGT:
		return dataset.Number(cell) > dataset.Number(f.Value)
	case OpLT:
		return dataset.Number(cell) < dataset.Number(f.Value)
	case OpBetween:
		n := dataset.Number(cell)
		return n >= dataset.Number(f.Value) && n <= dataset.Number(f.ValueEnd)
	default:
		return true
	}
}

// FilterSet is the ordered collection of active filters. It carries a
// revision counter so the pipeline can key its cache on filter identity
// without hashing filter contents.
type FilterSet struct {
	filters []Filter
	rev     uint64
}

// NewFilterSet creates an empty filter set.
func NewFilterSet() *FilterSet {
	return &FilterSet{rev: 1}
}

// List returns the active filters. Callers must not mutate the slice.
func (s *FilterSet) List() []Filter {
	return s.filters
}

// Revision returns the mutation counter.
func (s *FilterSet) Revision() uint64 {
	return s.rev
}

// Add appends a filter. Existing filters are never replaced.
func (s *FilterSet) Add(f Filter) {
	s.filters = append(s.filters, f)
	s.rev++
}

// Remove deletes the filter with the given id. No-op if absent.
func (s *FilterSet) Remove(id string) {
	for i, f := range s.filters {
		if f.ID == id {
			s.filters = append(s.filters[:i], s.filters[i+1:]...)
			s.rev++
			return
		}
	}
}

// Clear removes all filters.
func (s *FilterSet) Clear() {
	if len(s.filters) == 0 {
		return
	}
	s.filters = nil
	s.rev++
}

// Match reports whether a row satisfies every filter in the set.
func (s *FilterSet) Match(row dataset.Row) bool {
	for _, f := range s.filters {
		if !f.Match(row) {
			return false
		}
	}
	return true
}
