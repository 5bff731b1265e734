package search

import (
	"sort"
	"strings"

	"github.com/egoavara/bitrix-console/internal/marketplace"
	"github.com/sahilm/fuzzy"
)

// SearchResult represents a search result
type SearchResult struct {
	Module marketplace.Module
	Index  int // position in discovery order
	Score  int // Higher is better
}

// ModuleSearchable wraps modules for fuzzy searching
type ModuleSearchable []marketplace.Module

// String returns the searchable string for a module
func (m ModuleSearchable) String(i int) string {
	return strings.ToLower(m[i].Code + " " + m[i].Name)
}

// Len returns the number of modules
func (m ModuleSearchable) Len() int {
	return len(m)
}

// FuzzySearch matches query against module codes and names, best first
func FuzzySearch(modules *marketplace.Modules, query string) []SearchResult {
	list := modules.List()
	matches := fuzzy.FindFrom(strings.ToLower(query), ModuleSearchable(list))

	results := make([]SearchResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, SearchResult{
			Module: list[match.Index],
			Index:  match.Index,
			Score:  match.Score,
		})
	}

	// Sort by score (descending)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// Filter returns the modules matching query, keeping discovery order.
// exact switches from fuzzy to substring matching. An empty query returns
// modules unchanged.
func Filter(modules *marketplace.Modules, query string, exact bool) *marketplace.Modules {
	if strings.TrimSpace(query) == "" {
		return modules
	}

	var results []SearchResult
	if exact {
		results = SimpleSearch(modules, query)
	} else {
		results = FuzzySearch(modules, query)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	filtered := marketplace.NewModules()
	for _, r := range results {
		filtered.Set(r.Module.Code, r.Module.Name)
	}
	return filtered
}

// SimpleSearch performs a simple substring search
func SimpleSearch(modules *marketplace.Modules, query string) []SearchResult {
	var results []SearchResult
	query = strings.ToLower(query)

	for i, m := range modules.List() {
		if strings.Contains(strings.ToLower(m.Code), query) || strings.Contains(strings.ToLower(m.Name), query) {
			results = append(results, SearchResult{
				Module: m,
				Index:  i,
				Score:  100, // Default score for simple matches
			})
		}
	}

	return results
}
