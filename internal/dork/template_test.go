package dork

import (
	"strings"
	"testing"
)

// TestParsePriority tests name to priority conversion.
func TestParsePriority(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input   string
		want    Priority
		wantErr bool
	}{
		{"high", PriorityHigh, false},
		{"medium", PriorityMedium, false},
		{"low", PriorityLow, false},
		{"all", PriorityLow, false},
		{"HIGH", PriorityHigh, false},
		{"urgent", 0, true},
		{"", 0, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParsePriority(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("ParsePriority(%q): expected error", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePriority(%q): %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParsePriority(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

// TestTemplateKey tests the stable result key scheme.
func TestTemplateKey(t *testing.T) {
	t.Parallel()

	tmpl := Template{Category: "Social Media", Objective: "Twitter/X profile"}
	if got := tmpl.Key(); got != "social_media_twitter/x_profile" {
		t.Errorf("Key() = %q", got)
	}
}

// TestTemplateRender tests placeholder substitution.
func TestTemplateRender(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		pattern string
		vars    Vars
		want    string
	}{
		{
			name:    "target",
			pattern: `site:github.com "{target}"`,
			vars:    Vars{Target: "johndoe"},
			want:    `site:github.com "johndoe"`,
		},
		{
			name:    "clean strips leading at",
			pattern: `"{target}" OR "{target_clean}"`,
			vars:    Vars{Target: "@johndoe"},
			want:    `"@johndoe" OR "johndoe"`,
		},
		{
			name:    "domain placeholder",
			pattern: `site:*.{domain} -site:www.{domain}`,
			vars:    Vars{Domain: "example.com"},
			want:    `site:*.example.com -site:www.example.com`,
		},
		{
			name:    "unset placeholders render empty",
			pattern: `"{target}" {domain} {company}`,
			vars:    Vars{},
			want:    `""  `,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tmpl := Template{Pattern: tc.pattern}
			if got := tmpl.Render(tc.vars); got != tc.want {
				t.Errorf("Render() = %q, want %q", got, tc.want)
			}
		})
	}
}

// TestByPriorityIsInclusive tests that a priority ceiling keeps every
// template at or above it.
func TestByPriorityIsInclusive(t *testing.T) {
	t.Parallel()

	templates := []Template{
		{Objective: "a", Priority: PriorityHigh},
		{Objective: "b", Priority: PriorityMedium},
		{Objective: "c", Priority: PriorityLow},
		{Objective: "d", Priority: PriorityHigh},
	}

	high := ByPriority(templates, PriorityHigh)
	if len(high) != 2 {
		t.Errorf("high ceiling selected %d templates, want 2", len(high))
	}

	medium := ByPriority(templates, PriorityMedium)
	if len(medium) != 3 {
		t.Fatalf("medium ceiling selected %d templates, want 3", len(medium))
	}
	for _, tmpl := range medium {
		if tmpl.Priority > PriorityMedium {
			t.Errorf("medium ceiling included %s priority template", tmpl.Priority)
		}
	}

	if got := ByPriority(templates, PriorityLow); len(got) != 4 {
		t.Errorf("low ceiling selected %d templates, want all 4", len(got))
	}
}

// TestSortByPriorityIsStable tests ordering: high first, registry
// order preserved within a priority.
func TestSortByPriorityIsStable(t *testing.T) {
	t.Parallel()

	templates := []Template{
		{Objective: "m1", Priority: PriorityMedium},
		{Objective: "h1", Priority: PriorityHigh},
		{Objective: "l1", Priority: PriorityLow},
		{Objective: "h2", Priority: PriorityHigh},
		{Objective: "m2", Priority: PriorityMedium},
	}
	SortByPriority(templates)

	var order []string
	for _, tmpl := range templates {
		order = append(order, tmpl.Objective)
	}
	want := "h1 h2 m1 m2 l1"
	if got := strings.Join(order, " "); got != want {
		t.Errorf("order = %q, want %q", got, want)
	}
}

// TestRegistries tests the shipped template sets.
func TestRegistries(t *testing.T) {
	t.Parallel()

	alias := AliasTemplates()
	if len(alias) != 23 {
		t.Errorf("alias templates = %d, want 23", len(alias))
	}
	domain := DomainTemplates()
	if len(domain) != 3 {
		t.Errorf("domain templates = %d, want 3", len(domain))
	}

	// Keys must be unique within a registry.
	for _, templates := range [][]Template{alias, domain} {
		seen := make(map[string]bool)
		for _, tmpl := range templates {
			key := tmpl.Key()
			if seen[key] {
				t.Errorf("duplicate template key %q", key)
			}
			seen[key] = true
		}
	}

	// Every alias pattern must reference the target.
	for _, tmpl := range alias {
		if !strings.Contains(tmpl.Pattern, "{target}") {
			t.Errorf("alias template %q does not reference {target}", tmpl.Objective)
		}
	}
	for _, tmpl := range domain {
		if !strings.Contains(tmpl.Pattern, "{domain}") {
			t.Errorf("domain template %q does not reference {domain}", tmpl.Objective)
		}
	}

	// Mutating the returned slice must not affect the registry.
	alias[0].Objective = "mutated"
	if AliasTemplates()[0].Objective == "mutated" {
		t.Error("AliasTemplates returns a shared slice")
	}

	categories := Categories(AliasTemplates())
	if len(categories) != 6 {
		t.Errorf("alias categories = %v, want 6 distinct", categories)
	}
	if categories[0] != "Social Media" {
		t.Errorf("first category = %q, want registry order", categories[0])
	}
}
