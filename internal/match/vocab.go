package match

// The controlled vocabulary shared by query parsing and candidate tagging.
// Criteria values are always canonical labels from these tables, never raw
// query text, so substring/set matching between queries and candidates is
// meaningful.

// researchAreaSynonyms maps each canonical research-area label to the terms
// that select it in free text.
var researchAreaSynonyms = map[string][]string{
	"machine learning":            {"machine learning", "ml", "deep learning"},
	"artificial intelligence":     {"artificial intelligence", "ai"},
	"computer vision":             {"computer vision", "cv", "image processing", "visual"},
	"natural language processing": {"natural language processing", "nlp", "natural language", "text processing"},
	"robotics":                    {"robotics", "robot", "autonomous"},
	"systems":                     {"distributed systems", "operating systems", "systems"},
	"theory":                      {"theory", "algorithms", "complexity"},
	"security":                    {"security", "cryptography", "privacy", "cybersecurity"},
	"databases":                   {"database", "data management", "big data"},
	"networks":                    {"networking", "networks", "protocols"},
	"hci":                         {"hci", "human computer interaction", "user interface"},
	"quantum computing":           {"quantum computing", "quantum"},
	"graphics":                    {"graphics", "rendering"},
}

// universityAliases maps lowercase aliases to the stored university name.
var universityAliases = map[string]string{
	"stanford":        "Stanford",
	"mit":             "MIT",
	"berkeley":        "UC Berkeley",
	"ucb":             "UC Berkeley",
	"cmu":             "CMU",
	"carnegie mellon": "CMU",
	"caltech":         "Caltech",
	"harvard":         "Harvard",
	"princeton":       "Princeton",
	"cornell":         "Cornell",
	"georgia tech":    "Georgia Tech",
	"uiuc":            "UIUC",
	"washington":      "University of Washington",
}

// degreeAliases maps lowercase aliases to the canonical degree label.
var degreeAliases = map[string]string{
	"phd":       "PhD",
	"ph.d":      "PhD",
	"doctorate": "PhD",
	"doctoral":  "PhD",
	"ms":        "MS",
	"msc":       "MS",
	"master":    "MS",
	"masters":   "MS",
}

// hiringTerms flip the hiring-focus flag when present in a query.
var hiringTerms = []string{"hiring", "recruiting", "accepting"}

// Defaults applied when extraction finds nothing, so downstream retrieval
// always has a non-empty filter. This is stated policy, not an accident.
const (
	DefaultResearchArea = "computer science"
	DefaultDegreeType   = "PhD"
)

// ResearchAreas returns the canonical research-area labels.
func ResearchAreas() []string {
	out := make([]string, 0, len(researchAreaSynonyms))
	for area := range researchAreaSynonyms {
		out = append(out, area)
	}
	return out
}

// AreasInText scans free text for research-area synonyms and returns the
// canonical labels found, sorted. Used by both query parsing and page tagging
// so candidates and criteria share one vocabulary.
func AreasInText(text string) []string {
	t := foldTerm(text)
	if t == "" {
		return nil
	}
	found := make(map[string]struct{})
	for area, syns := range researchAreaSynonyms {
		for _, syn := range syns {
			if containsTerm(t, syn) {
				found[area] = struct{}{}
				break
			}
		}
	}
	return sortedKeys(found)
}

// NormalizeArea maps a free-text research interest onto a canonical label.
// Unknown terms return ok=false and must not enter ParsedCriteria.
func NormalizeArea(term string) (string, bool) {
	t := foldTerm(term)
	if t == "" {
		return "", false
	}
	if _, ok := researchAreaSynonyms[t]; ok {
		return t, true
	}
	for area, syns := range researchAreaSynonyms {
		for _, syn := range syns {
			if containsTerm(t, syn) || containsTerm(syn, t) {
				return area, true
			}
		}
	}
	return "", false
}
