package match

import (
	"reflect"
	"testing"
)

func TestExtractCriteriaFacultyQuery(t *testing.T) {
	c := ExtractCriteria("Find machine learning professors at Stanford who are hiring", nil)

	if c.Intent != IntentFacultySearch {
		t.Fatalf("expected faculty_search intent, got %s", c.Intent)
	}
	if !reflect.DeepEqual(c.ResearchAreas, []string{"machine learning"}) {
		t.Fatalf("expected research areas [machine learning], got %v", c.ResearchAreas)
	}
	if !reflect.DeepEqual(c.Universities, []string{"Stanford"}) {
		t.Fatalf("expected universities [Stanford], got %v", c.Universities)
	}
	if !c.HiringFocus {
		t.Fatalf("expected hiring focus to be set")
	}
}

func TestExtractCriteriaProgramQuery(t *testing.T) {
	c := ExtractCriteria("What are PhD program requirements?", nil)

	if c.Intent != IntentProgramSearch {
		t.Fatalf("expected program_search intent, got %s", c.Intent)
	}
	if !reflect.DeepEqual(c.DegreeTypes, []string{"PhD"}) {
		t.Fatalf("expected degree types [PhD], got %v", c.DegreeTypes)
	}
	if c.HiringFocus {
		t.Fatalf("did not expect hiring focus")
	}
}

func TestExtractCriteriaDefaults(t *testing.T) {
	c := ExtractCriteria("hello there", nil)

	if !reflect.DeepEqual(c.ResearchAreas, []string{DefaultResearchArea}) {
		t.Fatalf("expected default research area, got %v", c.ResearchAreas)
	}
	if !reflect.DeepEqual(c.DegreeTypes, []string{DefaultDegreeType}) {
		t.Fatalf("expected default degree type, got %v", c.DegreeTypes)
	}
	if len(c.Universities) != 0 {
		t.Fatalf("expected no universities, got %v", c.Universities)
	}
}

func TestExtractCriteriaIdempotent(t *testing.T) {
	q := "NLP or computer vision PhD at MIT, accepting students"
	first := ExtractCriteria(q, nil)
	second := ExtractCriteria(q, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("extraction not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestExtractCriteriaContextInterestsAreNormalized(t *testing.T) {
	qctx := &QueryContext{ResearchInterests: []string{"Deep Learning", "underwater basket weaving"}}
	c := ExtractCriteria("professors at Berkeley", qctx)

	if !reflect.DeepEqual(c.ResearchAreas, []string{"machine learning"}) {
		t.Fatalf("expected context interest to normalize to machine learning, got %v", c.ResearchAreas)
	}
}

func TestExtractCriteriaContextTargetDegree(t *testing.T) {
	qctx := &QueryContext{TargetDegree: "Masters"}
	c := ExtractCriteria("machine learning professors", qctx)
	if !reflect.DeepEqual(c.DegreeTypes, []string{"MS"}) {
		t.Fatalf("expected context degree [MS], got %v", c.DegreeTypes)
	}

	// Unknown hints fall back to the default, not an empty filter.
	c = ExtractCriteria("machine learning professors", &QueryContext{TargetDegree: "JD"})
	if !reflect.DeepEqual(c.DegreeTypes, []string{DefaultDegreeType}) {
		t.Fatalf("expected default degree type, got %v", c.DegreeTypes)
	}
}

func TestExtractCriteriaShortDegreeAliasNeedsWordBoundary(t *testing.T) {
	// "systems" must not produce an MS degree via the "ms" alias.
	c := ExtractCriteria("distributed systems professors", nil)
	if !reflect.DeepEqual(c.DegreeTypes, []string{DefaultDegreeType}) {
		t.Fatalf("expected default degree type, got %v", c.DegreeTypes)
	}
	if !reflect.DeepEqual(c.ResearchAreas, []string{"systems"}) {
		t.Fatalf("expected research areas [systems], got %v", c.ResearchAreas)
	}

	c = ExtractCriteria("MS in machine learning", nil)
	if !reflect.DeepEqual(c.DegreeTypes, []string{"MS"}) {
		t.Fatalf("expected degree types [MS], got %v", c.DegreeTypes)
	}
}

func TestNormalizeArea(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Deep Learning", "machine learning", true},
		{"machine learning", "machine learning", true},
		{"NLP", "natural language processing", true},
		{"underwater basket weaving", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeArea(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("NormalizeArea(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}
