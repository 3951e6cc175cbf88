package assistant

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/gradscout/gradscout/internal/match"
)

type fakeLLM struct {
	output string
	err    error
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return f.output, f.err
}

func (f *fakeLLM) GenerateWithTokens(ctx context.Context, prompt string) (string, int64, int64, error) {
	return f.output, 10, 5, f.err
}

func (f *fakeLLM) CalculateCost(inputTokens, outputTokens int64) float64 { return 0.001 }

func TestQueryParserDelegatesToLLM(t *testing.T) {
	llm := &fakeLLM{output: `Here you go:
{"intent": "faculty_search", "research_areas": ["deep learning"], "universities": ["Stanford"], "degree_types": ["phd"], "hiring_focus": true}`}
	p := NewQueryParser(llm, "gpt-4o-mini", nil, quietLogger())

	c := p.Parse(context.Background(), "anything", nil)
	if c.Intent != match.IntentFacultySearch {
		t.Fatalf("expected faculty_search, got %s", c.Intent)
	}
	if !reflect.DeepEqual(c.ResearchAreas, []string{"machine learning"}) {
		t.Fatalf("expected deep learning normalized to machine learning, got %v", c.ResearchAreas)
	}
	if !reflect.DeepEqual(c.Universities, []string{"Stanford"}) {
		t.Fatalf("expected [Stanford], got %v", c.Universities)
	}
	if !reflect.DeepEqual(c.DegreeTypes, []string{"PhD"}) {
		t.Fatalf("expected [PhD], got %v", c.DegreeTypes)
	}
	if !c.HiringFocus {
		t.Fatalf("expected hiring focus")
	}
}

func TestQueryParserFallsBackOnError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("rate limited")}
	p := NewQueryParser(llm, "gpt-4o-mini", nil, quietLogger())

	c := p.Parse(context.Background(), "Find machine learning professors at Stanford", nil)
	if c.Intent != match.IntentFacultySearch {
		t.Fatalf("fallback must still classify, got %s", c.Intent)
	}
	if !reflect.DeepEqual(c.ResearchAreas, []string{"machine learning"}) {
		t.Fatalf("fallback must still extract areas, got %v", c.ResearchAreas)
	}
}

func TestQueryParserFallsBackOnBadIntent(t *testing.T) {
	llm := &fakeLLM{output: `{"intent": "world_domination"}`}
	p := NewQueryParser(llm, "gpt-4o-mini", nil, quietLogger())

	c := p.Parse(context.Background(), "What are PhD program requirements?", nil)
	if c.Intent != match.IntentProgramSearch {
		t.Fatalf("unknown model intent must fall back to keywords, got %s", c.Intent)
	}
}

func TestQueryParserFillsGapsFromKeywords(t *testing.T) {
	// Model finds the intent but nothing else; defaults come from the
	// keyword path.
	llm := &fakeLLM{output: `{"intent": "program_search"}`}
	p := NewQueryParser(llm, "gpt-4o-mini", nil, quietLogger())

	c := p.Parse(context.Background(), "tell me about grad school", nil)
	if !reflect.DeepEqual(c.ResearchAreas, []string{match.DefaultResearchArea}) {
		t.Fatalf("expected default research area, got %v", c.ResearchAreas)
	}
	if !reflect.DeepEqual(c.DegreeTypes, []string{match.DefaultDegreeType}) {
		t.Fatalf("expected default degree type, got %v", c.DegreeTypes)
	}
}

func TestExtractFirstJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"prefix {\"a\": {\"b\": 2}} suffix", `{"a": {"b": 2}}`},
		{"no json here", "no json here"},
	}
	for _, c := range cases {
		if got := extractFirstJSON(c.in); got != c.want {
			t.Fatalf("extractFirstJSON(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestComposerUsesLLMNarrative(t *testing.T) {
	llm := &fakeLLM{output: "Ada Lovelace at Stanford looks like your best bet."}
	c := NewComposer(llm, "gpt-4o-mini", nil, quietLogger())

	out := c.Compose(context.Background(), "q", match.ParsedCriteria{ResearchAreas: []string{"machine learning"}},
		[]match.ScoredMatch{{Candidate: match.Candidate{Kind: match.KindFaculty, Name: "Ada Lovelace", University: "Stanford"}, Score: 0.9}}, nil)
	if out != "Ada Lovelace at Stanford looks like your best bet." {
		t.Fatalf("expected LLM narrative, got %q", out)
	}
}

func TestComposerFallsBackToTemplate(t *testing.T) {
	llm := &fakeLLM{err: errors.New("timeout")}
	c := NewComposer(llm, "gpt-4o-mini", nil, quietLogger())

	out := c.Compose(context.Background(), "q", match.ParsedCriteria{ResearchAreas: []string{"robotics"}}, nil, nil)
	if out == "" {
		t.Fatalf("expected template fallback")
	}
}
