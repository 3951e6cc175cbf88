package assistant

import (
	"context"
	"io"
	"log"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gradscout/gradscout/config"
	"github.com/gradscout/gradscout/internal/match"
	"github.com/gradscout/gradscout/internal/telemetry"
)

type fakeRetriever struct {
	candidates []match.Candidate
	calls      int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, criteria match.ParsedCriteria) []match.Candidate {
	f.calls++
	return f.candidates
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func newTestOrchestrator(r CandidateRetriever) *Orchestrator {
	cfg := &config.Config{}
	cfg.General.MaxConcurrentQueries = 2
	tel := telemetry.New(config.TelemetryConfig{})
	logger := quietLogger()
	return NewOrchestrator(cfg, logger, tel,
		NewQueryParser(nil, "", tel, logger),
		r,
		NewComposer(nil, "", tel, logger))
}

func TestAnswerFacultyQuery(t *testing.T) {
	now := time.Now()
	hIndex := 80
	r := &fakeRetriever{candidates: []match.Candidate{
		{Kind: match.KindFaculty, ID: "f1", Name: "Ada Lovelace", University: "Stanford",
			ResearchAreas: []string{"machine learning"}, HiringStatus: match.HiringStatusHiring,
			HIndex: &hIndex, LastScraped: &now, SourceURL: "https://cs.stanford.edu/ada"},
		{Kind: match.KindFaculty, ID: "f2", Name: "Outsider", University: "Elsewhere",
			ResearchAreas: []string{"graphics"}},
	}}
	o := newTestOrchestrator(r)

	answer, err := o.Answer(context.Background(), Query{Text: "Find machine learning professors at Stanford who are hiring"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Intent != match.IntentFacultySearch {
		t.Fatalf("expected faculty_search intent, got %s", answer.Intent)
	}
	if len(answer.FacultyMatches) != 2 || len(answer.ProgramMatches) != 0 {
		t.Fatalf("expected 2 faculty matches, got %d faculty / %d programs", len(answer.FacultyMatches), len(answer.ProgramMatches))
	}
	if answer.FacultyMatches[0].Candidate.ID != "f1" {
		t.Fatalf("expected f1 ranked first, got %s", answer.FacultyMatches[0].Candidate.ID)
	}
	if answer.ConfidenceScore <= 0 || answer.ConfidenceScore > 0.95 {
		t.Fatalf("confidence out of range: %f", answer.ConfidenceScore)
	}
	if len(answer.Sources) != 1 || answer.Sources[0].URL != "https://cs.stanford.edu/ada" {
		t.Fatalf("expected one source from f1, got %v", answer.Sources)
	}
	if !strings.Contains(answer.Response, "Ada Lovelace") {
		t.Fatalf("response should name the top match, got %q", answer.Response)
	}
	if answer.QueryID == "" {
		t.Fatalf("expected a generated query ID")
	}
}

func TestAnswerGeneralChatSkipsRetrieval(t *testing.T) {
	r := &fakeRetriever{}
	o := newTestOrchestrator(r)

	answer, err := o.Answer(context.Background(), Query{Text: "hello there"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Intent != match.IntentGeneralChat {
		t.Fatalf("expected general_chat, got %s", answer.Intent)
	}
	if r.calls != 0 {
		t.Fatalf("general chat must not hit retrievers, got %d calls", r.calls)
	}
	if answer.ConfidenceScore != 0 {
		t.Fatalf("chat answers carry no match confidence, got %f", answer.ConfidenceScore)
	}
	if answer.Response == "" {
		t.Fatalf("expected a response")
	}
}

func TestAnswerScoringErrorSurfaces(t *testing.T) {
	r := &fakeRetriever{candidates: []match.Candidate{{Name: "broken, no kind"}}}
	o := newTestOrchestrator(r)

	if _, err := o.Answer(context.Background(), Query{Text: "machine learning professors"}); err == nil {
		t.Fatalf("expected error for malformed candidate")
	}
}

func TestAnswerNoMatchesMessage(t *testing.T) {
	o := newTestOrchestrator(&fakeRetriever{})

	answer, err := o.Answer(context.Background(), Query{Text: "robotics professors at CMU"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.ConfidenceScore != 0 {
		t.Fatalf("expected zero confidence without matches, got %f", answer.ConfidenceScore)
	}
	if !strings.Contains(answer.Response, "couldn't find strong matches") {
		t.Fatalf("expected the no-match message, got %q", answer.Response)
	}
}

func TestConfidence(t *testing.T) {
	if got := Confidence(nil); got != 0 {
		t.Fatalf("no matches must yield zero confidence, got %f", got)
	}

	one := []match.ScoredMatch{{Score: 1.0}}
	want := 0.7*1.0 + 0.3*0.1
	if got := Confidence(one); math.Abs(got-want) > 1e-9 {
		t.Fatalf("Confidence(one perfect match) = %f, want %f", got, want)
	}

	many := make([]match.ScoredMatch, 20)
	for i := range many {
		many[i] = match.ScoredMatch{Score: 1.0}
	}
	if got := Confidence(many); got != 0.95 {
		t.Fatalf("confidence must cap at 0.95, got %f", got)
	}
}

func TestCollectSourcesDeduplicates(t *testing.T) {
	matches := []match.ScoredMatch{
		{Candidate: match.Candidate{Kind: match.KindFaculty, Name: "A", SourceURL: "https://x.edu"}},
		{Candidate: match.Candidate{Kind: match.KindFaculty, Name: "B", SourceURL: "https://x.edu"}},
		{Candidate: match.Candidate{Kind: match.KindFaculty, Name: "C", Homepage: "https://c.edu"}},
		{Candidate: match.Candidate{Kind: match.KindFaculty, Name: "D"}},
	}
	sources := collectSources(matches)
	if len(sources) != 2 {
		t.Fatalf("expected 2 unique sources, got %v", sources)
	}
	if sources[0].URL != "https://x.edu" || sources[1].URL != "https://c.edu" {
		t.Fatalf("unexpected source order: %v", sources)
	}
}
