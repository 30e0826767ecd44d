package dork

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Priority orders templates by investigative value. Lower rank runs
// first.
type Priority int

const (
	// PriorityHigh marks the queries most likely to surface findings.
	PriorityHigh Priority = iota + 1

	// PriorityMedium marks useful but secondary queries.
	PriorityMedium

	// PriorityLow marks long-tail queries.
	PriorityLow
)

// ParsePriority converts a priority name to its value. "all" is an
// alias for the low ceiling: every template runs.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(s) {
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low", "all":
		return PriorityLow, nil
	default:
		return 0, fmt.Errorf("unknown priority %q", s)
	}
}

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// Template is one search query pattern with its metadata.
type Template struct {
	// Category groups related templates (e.g. "Social Media").
	Category string

	// Objective names what the query tries to surface.
	Objective string

	// Pattern is the query with placeholders: {target} for the raw
	// alias, {target_clean} for the alias without a leading '@',
	// {domain} for a domain, {company} for an organization name.
	Pattern string

	// Description explains the query for report output.
	Description string

	// Priority orders execution and drives high-value marking.
	Priority Priority
}

// Key returns the stable result key for this template: category and
// objective joined, lowercased, spaces replaced with underscores.
func (t Template) Key() string {
	return strings.ToLower(strings.ReplaceAll(t.Category+"_"+t.Objective, " ", "_"))
}

// Vars holds the substitution values for rendering.
type Vars struct {
	// Target is the raw alias or username, as given.
	Target string

	// Domain is the target domain.
	Domain string

	// Company is the target organization name.
	Company string
}

// Render substitutes the template placeholders. The clean variant of
// the target is derived by stripping one leading '@'. Unset values
// substitute as empty strings.
func (t Template) Render(vars Vars) string {
	replacer := strings.NewReplacer(
		"{target}", vars.Target,
		"{target_clean}", strings.TrimPrefix(vars.Target, "@"),
		"{domain}", vars.Domain,
		"{company}", vars.Company,
	)
	return replacer.Replace(t.Pattern)
}

// ByPriority selects the templates at or above the given priority:
// asking for medium also returns high. The input order is preserved.
func ByPriority(templates []Template, ceiling Priority) []Template {
	selected := make([]Template, 0, len(templates))
	for _, t := range templates {
		if t.Priority <= ceiling {
			selected = append(selected, t)
		}
	}
	return selected
}

// ByCategory selects the templates in one category.
func ByCategory(templates []Template, category string) []Template {
	selected := make([]Template, 0, len(templates))
	for _, t := range templates {
		if t.Category == category {
			selected = append(selected, t)
		}
	}
	return selected
}

// SortByPriority orders templates high first, preserving the registry
// order within each priority.
func SortByPriority(templates []Template) {
	sort.SliceStable(templates, func(i, j int) bool {
		return templates[i].Priority < templates[j].Priority
	})
}

// Categories returns the distinct categories in registry order.
func Categories(templates []Template) []string {
	seen := make(map[string]bool, len(templates))
	categories := make([]string, 0, len(templates))
	for _, t := range templates {
		if !seen[t.Category] {
			seen[t.Category] = true
			categories = append(categories, t.Category)
		}
	}
	return categories
}
