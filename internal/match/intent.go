package match

import (
	"strings"
	"unicode"
)

// Intent is the coarse category a query is routed to.
type Intent string

const (
	IntentFacultySearch    Intent = "faculty_search"
	IntentProgramSearch    Intent = "program_search"
	IntentResearchAnalysis Intent = "research_analysis"
	IntentApplicationInfo  Intent = "application_info"
	IntentGeneralChat      Intent = "general_chat"
	IntentMixed            Intent = "mixed"
)

// intentOrder fixes the iteration order so classification is deterministic.
var intentOrder = []Intent{
	IntentFacultySearch,
	IntentProgramSearch,
	IntentResearchAnalysis,
	IntentApplicationInfo,
}

// intentKeywords holds the trigger terms per label. Terms of three characters
// or fewer match on word boundaries so that e.g. "gre" does not fire inside
// "degree".
var intentKeywords = map[Intent][]string{
	IntentFacultySearch:    {"professor", "faculty", "advisor", "supervisor", "hiring", "recruiting"},
	IntentProgramSearch:    {"program", "degree", "phd", "masters", "requirements", "deadline"},
	IntentResearchAnalysis: {"research trends", "trends", "publication", "papers", "citation", "state of the art", "survey"},
	IntentApplicationInfo:  {"application", "apply", "gre", "toefl", "sop", "statement of purpose", "transcript", "admission"},
}

// ClassifyIntent maps free text to exactly one intent label. The label with
// the strictly highest keyword-hit count wins; a tie between non-zero counts
// resolves to mixed, and zero hits everywhere resolves to general_chat.
// Pure function of the input and the static keyword tables; never errors.
func ClassifyIntent(query string) Intent {
	q := strings.ToLower(query)

	best := IntentGeneralChat
	bestCount, tied := 0, false
	for _, intent := range intentOrder {
		count := 0
		for _, kw := range intentKeywords[intent] {
			if containsTerm(q, kw) {
				count++
			}
		}
		switch {
		case count > bestCount:
			best, bestCount, tied = intent, count, false
		case count == bestCount && count > 0:
			tied = true
		}
	}

	if bestCount == 0 {
		return IntentGeneralChat
	}
	if tied {
		return IntentMixed
	}
	return best
}

// containsTerm reports whether term occurs in s (both lowercase). Short terms
// require a whole-word match; longer terms match as substrings.
func containsTerm(s, term string) bool {
	if len(term) > 3 {
		return strings.Contains(s, term)
	}
	for _, w := range strings.FieldsFunc(s, isTermBoundary) {
		if w == term {
			return true
		}
	}
	return false
}

func isTermBoundary(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

func foldTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
