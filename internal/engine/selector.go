package engine

import (
	"salesdash/internal/models"
)

// ============================================================================
// HIERARCHICAL SELECTOR: Region → State → City
// ============================================================================
// Every non-empty level is an independent predicate; a row survives when it
// passes all of them. Values within one level are OR-combined. An empty level
// places no restriction. Values unknown to the dataset match no rows.
// ============================================================================

// Selection holds the user's picks at each hierarchy level.
type Selection struct {
	Regions []string `json:"regions,omitempty"`
	States  []string `json:"states,omitempty"`
	Cities  []string `json:"cities,omitempty"`
}

// IsEmpty reports whether no level restricts the rows.
func (s Selection) IsEmpty() bool {
	return len(s.Regions) == 0 && len(s.States) == 0 && len(s.Cities) == 0
}

// levelFilter accepts rows whose dictionary ID at one level is in the mask.
type levelFilter struct {
	ids  []int32
	mask []bool
}

func newLevelFilter(ids []int32, dict *Dictionary, values []string) levelFilter {
	mask := make([]bool, dict.Len())
	for _, v := range values {
		if id, ok := dict.ID(v); ok {
			mask[id] = true
		}
	}
	return levelFilter{ids: ids, mask: mask}
}

func (cs *ColumnStore) levelFilters(sel Selection) []levelFilter {
	filters := make([]levelFilter, 0, 3)
	if len(sel.Regions) > 0 {
		filters = append(filters, newLevelFilter(cs.RegionIDs, cs.Regions, sel.Regions))
	}
	if len(sel.States) > 0 {
		filters = append(filters, newLevelFilter(cs.StateIDs, cs.States, sel.States))
	}
	if len(sel.Cities) > 0 {
		filters = append(filters, newLevelFilter(cs.CityIDs, cs.Cities, sel.Cities))
	}
	return filters
}

// Select returns the rows of view that satisfy every non-empty level of sel.
// With an empty selection the view is returned unchanged.
func Select(view View, sel Selection) View {
	if sel.IsEmpty() || view.Len() == 0 {
		return view
	}

	filters := view.store.levelFilters(sel)

	// Single pass: a row passes if it matches ALL level filters
	n := view.Len()
	indices := make([]int32, 0, n)
	for i := 0; i < n; i++ {
		j := view.at(i)
		pass := true
		for _, f := range filters {
			if !f.mask[f.ids[j]] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, j)
		}
	}
	return newSubView(view, indices)
}

// ============================================================================
// CANDIDATES: values offered at each level given the levels above it
// ============================================================================

// RegionCandidates returns the distinct regions of view in first-seen order.
func RegionCandidates(view View) []string {
	if view.Len() == 0 {
		return []string{}
	}
	return uniqueValues(view, view.store.RegionIDs, view.store.Regions)
}

// StateCandidates returns the distinct states among rows in the selected
// regions, or among all rows when regions is empty.
func StateCandidates(view View, regions []string) []string {
	narrowed := Select(view, Selection{Regions: regions})
	if narrowed.Len() == 0 {
		return []string{}
	}
	return uniqueValues(narrowed, narrowed.store.StateIDs, narrowed.store.States)
}

// CityCandidates returns the distinct cities among rows matching both the
// region and the state selection.
func CityCandidates(view View, regions, states []string) []string {
	narrowed := Select(view, Selection{Regions: regions, States: states})
	if narrowed.Len() == 0 {
		return []string{}
	}
	return uniqueValues(narrowed, narrowed.store.CityIDs, narrowed.store.Cities)
}

// Candidates bundles the candidate lists of all three levels for sel.
// The cities already picked in sel do not narrow anything.
func Candidates(view View, sel Selection) models.FilterOptions {
	return models.FilterOptions{
		Regions: RegionCandidates(view),
		States:  StateCandidates(view, sel.Regions),
		Cities:  CityCandidates(view, sel.Regions, sel.States),
	}
}

func uniqueValues(view View, ids []int32, dict *Dictionary) []string {
	seen := make([]bool, dict.Len())
	result := make([]string, 0)
	for i := 0; i < view.Len(); i++ {
		id := ids[view.at(i)]
		if !seen[id] {
			seen[id] = true
			result = append(result, dict.Values[id])
		}
	}
	return result
}
