package match

import (
	"sort"
	"strings"
)

// QueryContext carries caller-supplied hints that refine extraction, e.g. the
// research interests and target degree stored on a user profile.
type QueryContext struct {
	ResearchInterests []string `json:"research_interests,omitempty"`
	TargetDegree      string   `json:"target_degree,omitempty"`
}

// ParsedCriteria is the structured filter set derived from a query. All
// research-area and degree-type values are canonical vocabulary labels;
// un-normalized query text never enters this structure. Immutable once built.
type ParsedCriteria struct {
	Intent        Intent   `json:"intent"`
	ResearchAreas []string `json:"research_areas"`
	Universities  []string `json:"universities,omitempty"`
	DegreeTypes   []string `json:"degree_types"`
	HiringFocus   bool     `json:"hiring_focus"`
}

// ExtractCriteria derives ParsedCriteria from free text plus optional caller
// context. Deterministic and idempotent: the same input always yields the
// same criteria. Absence of matches is not an error; the documented defaults
// (computer science / PhD) keep downstream retrieval filters non-empty.
func ExtractCriteria(query string, qctx *QueryContext) ParsedCriteria {
	q := strings.ToLower(query)

	areas := map[string]struct{}{}
	for area, syns := range researchAreaSynonyms {
		for _, syn := range syns {
			if containsTerm(q, syn) {
				areas[area] = struct{}{}
				break
			}
		}
	}
	if qctx != nil {
		for _, interest := range qctx.ResearchInterests {
			if area, ok := NormalizeArea(interest); ok {
				areas[area] = struct{}{}
			}
		}
	}

	unis := map[string]struct{}{}
	for alias, name := range universityAliases {
		if containsTerm(q, alias) {
			unis[name] = struct{}{}
		}
	}

	degrees := map[string]struct{}{}
	for alias, label := range degreeAliases {
		if containsTerm(q, alias) {
			degrees[label] = struct{}{}
		}
	}
	if qctx != nil {
		if label, ok := degreeAliases[strings.ToLower(strings.TrimSpace(qctx.TargetDegree))]; ok {
			degrees[label] = struct{}{}
		}
	}

	hiring := false
	for _, term := range hiringTerms {
		if containsTerm(q, term) {
			hiring = true
			break
		}
	}

	if len(areas) == 0 {
		areas[DefaultResearchArea] = struct{}{}
	}
	if len(degrees) == 0 {
		degrees[DefaultDegreeType] = struct{}{}
	}

	return ParsedCriteria{
		Intent:        ClassifyIntent(query),
		ResearchAreas: sortedKeys(areas),
		Universities:  sortedKeys(unis),
		DegreeTypes:   sortedKeys(degrees),
		HiringFocus:   hiring,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
