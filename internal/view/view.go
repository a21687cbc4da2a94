// Package view derives filtered, sorted, paginated views over mirrored
// collections. Derivation is pure: the input slice is never mutated and the
// same inputs always produce the same view.
package view

import (
	"sort"
	"strings"
)

// Direction is a two-way sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// FilterAll is the sentinel value that turns an attribute filter off.
const FilterAll = "all"

// DefaultPerPage is the page size used when a request does not set one.
const DefaultPerPage = 30

// Params are the view inputs supplied by the caller.
type Params struct {
	Search    string
	Sort      string
	Direction Direction
	Page      int
	PerPage   int
}

// Toggle returns the params after a sort request on field: the same field
// flips the direction, a new field resets it to ascending.
func (p Params) Toggle(field string) Params {
	if p.Sort == field {
		if p.Direction == Ascending {
			p.Direction = Descending
		} else {
			p.Direction = Ascending
		}
		return p
	}
	p.Sort = field
	p.Direction = Ascending
	return p
}

// Result is one derived view.
type Result[T any] struct {
	Items      []T // the requested page
	Filtered   []T // the full filtered and sorted sequence
	Total      int
	TotalPages int
	Page       int // the served page, clamped into range
}

// Engine describes how one entity type is searched and sorted.
type Engine[T any] struct {
	// SearchText extracts the search-relevant strings of a record. A record
	// matches when any of them contains the search term, case-insensitively.
	SearchText func(T) []string

	// Compare holds one three-way comparator per sortable field.
	Compare map[string]func(a, b T) int

	// DefaultSort is used when params name no field or an unknown one.
	DefaultSort string
}

// Apply derives the view of records for the given params. Every supplied
// filter must pass for a record to be included. The page is clamped into
// the valid range so a shrinking filtered set never leaves the caller on an
// empty page past the end.
func (e Engine[T]) Apply(records []T, p Params, filters ...func(T) bool) Result[T] {
	term := strings.ToLower(strings.TrimSpace(p.Search))

	filtered := make([]T, 0, len(records))
	for _, rec := range records {
		if !e.matchesSearch(rec, term) {
			continue
		}
		pass := true
		for _, filter := range filters {
			if !filter(rec) {
				pass = false
				break
			}
		}
		if pass {
			filtered = append(filtered, rec)
		}
	}

	cmp := e.Compare[p.Sort]
	if cmp == nil {
		cmp = e.Compare[e.DefaultSort]
	}
	if cmp != nil {
		desc := p.Direction == Descending
		sort.SliceStable(filtered, func(i, j int) bool {
			c := cmp(filtered[i], filtered[j])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	perPage := p.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	totalPages := (len(filtered) + perPage - 1) / perPage

	page := p.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Result[T]{
		Items:      filtered[start:end],
		Filtered:   filtered,
		Total:      len(filtered),
		TotalPages: totalPages,
		Page:       page,
	}
}

func (e Engine[T]) matchesSearch(rec T, term string) bool {
	if term == "" {
		return true
	}
	for _, text := range e.SearchText(rec) {
		if strings.Contains(strings.ToLower(text), term) {
			return true
		}
	}
	return false
}

// CompareStrings compares case-insensitively, empty values first.
func CompareStrings(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
