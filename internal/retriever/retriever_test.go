package retriever

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/gradscout/gradscout/internal/match"
	"github.com/gradscout/gradscout/tools/web_search/models"
)

type fakeRetriever struct {
	name       string
	candidates []match.Candidate
	err        error
	delay      time.Duration
}

func (f *fakeRetriever) Name() string { return f.name }

func (f *fakeRetriever) Retrieve(ctx context.Context, criteria match.ParsedCriteria) ([]match.Candidate, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.candidates, f.err
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func mlCriteria() match.ParsedCriteria {
	return match.ParsedCriteria{
		Intent:        match.IntentFacultySearch,
		ResearchAreas: []string{"machine learning"},
		DegreeTypes:   []string{"PhD"},
	}
}

func TestFanoutMergesInRetrieverOrder(t *testing.T) {
	a := &fakeRetriever{name: "store", candidates: []match.Candidate{
		{Kind: match.KindFaculty, ID: "f1", Name: "first"},
		{Kind: match.KindFaculty, ID: "f2", Name: "second"},
	}}
	b := &fakeRetriever{name: "web", candidates: []match.Candidate{
		{Kind: match.KindFaculty, ID: "f3", Name: "third"},
	}}

	f := NewFanout([]Retriever{a, b}, nil, time.Second, quietLogger())
	got := f.Retrieve(context.Background(), mlCriteria())

	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	for i, want := range []string{"f1", "f2", "f3"} {
		if got[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].ID)
		}
	}
}

func TestFanoutToleratesFailure(t *testing.T) {
	ok := &fakeRetriever{name: "store", candidates: []match.Candidate{{Kind: match.KindFaculty, ID: "f1"}}}
	broken := &fakeRetriever{name: "web", err: errors.New("boom")}

	f := NewFanout([]Retriever{broken, ok}, nil, time.Second, quietLogger())
	got := f.Retrieve(context.Background(), mlCriteria())

	if len(got) != 1 || got[0].ID != "f1" {
		t.Fatalf("expected surviving retriever's candidate, got %v", got)
	}
}

func TestFanoutTimesOutSlowRetriever(t *testing.T) {
	slow := &fakeRetriever{name: "web", delay: time.Second, candidates: []match.Candidate{{Kind: match.KindFaculty, ID: "slow"}}}
	fast := &fakeRetriever{name: "store", candidates: []match.Candidate{{Kind: match.KindFaculty, ID: "fast"}}}

	f := NewFanout([]Retriever{slow, fast}, nil, 50*time.Millisecond, quietLogger())
	got := f.Retrieve(context.Background(), mlCriteria())

	if len(got) != 1 || got[0].ID != "fast" {
		t.Fatalf("expected only the fast retriever's candidate, got %v", got)
	}
}

func TestFanoutDeduplicates(t *testing.T) {
	a := &fakeRetriever{name: "store", candidates: []match.Candidate{{Kind: match.KindFaculty, ID: "f1", Name: "stored"}}}
	b := &fakeRetriever{name: "web", candidates: []match.Candidate{{Kind: match.KindFaculty, ID: "f1", Name: "webbed"}}}

	f := NewFanout([]Retriever{a, b}, nil, time.Second, quietLogger())
	got := f.Retrieve(context.Background(), mlCriteria())

	if len(got) != 1 {
		t.Fatalf("expected 1 candidate after dedupe, got %d", len(got))
	}
	if got[0].Name != "stored" {
		t.Fatalf("earlier retriever must win on duplicate IDs, got %s", got[0].Name)
	}
}

type fakeSearcher struct {
	results []models.Result
	gotQ    string
}

func (f *fakeSearcher) Discover(ctx context.Context, q string, k int, sites []string, recency int) ([]models.Result, error) {
	f.gotQ = q
	if k < len(f.results) {
		return f.results[:k], nil
	}
	return f.results, nil
}

func TestWebRetrieverTagsResults(t *testing.T) {
	searcher := &fakeSearcher{results: []models.Result{
		{Title: "Prof. Ada Lovelace, deep learning lab", URL: "https://example.edu/ada", Snippet: "Currently accepting students."},
		{Title: "Some unrelated page", URL: "https://example.com/x", Snippet: "nothing here"},
	}}

	r := &WebRetriever{Searcher: searcher, MaxResults: 10}
	criteria := mlCriteria()
	criteria.HiringFocus = true
	got, err := r.Retrieve(context.Background(), criteria)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}

	if got[0].HiringStatus != match.HiringStatusHiring {
		t.Fatalf("expected hiring status from snippet, got %s", got[0].HiringStatus)
	}
	if got[0].ResearchAreas[0] != "machine learning" {
		t.Fatalf("expected deep learning to normalize to machine learning, got %v", got[0].ResearchAreas)
	}
	if got[0].LastScraped != nil {
		t.Fatalf("web candidates must not carry a freshness timestamp")
	}
	if got[1].ResearchAreas[0] != "machine learning" {
		t.Fatalf("untagged results fall back to criteria areas, got %v", got[1].ResearchAreas)
	}

	if !strings.Contains(searcher.gotQ, "professor") || !strings.Contains(searcher.gotQ, "accepting students") {
		t.Fatalf("unexpected search query %q", searcher.gotQ)
	}
}

func TestWebRetrieverDropsIrrelevantResults(t *testing.T) {
	searcher := &fakeSearcher{results: []models.Result{
		{Title: "Prof. Ada Lovelace", URL: "https://example.edu/ada", Snippet: "machine learning and neural networks"},
		{Title: "Robotics outreach day", URL: "https://example.edu/event", Snippet: "robot demos for high schoolers"},
	}}

	r := &WebRetriever{Searcher: searcher, MaxResults: 10}
	got, err := r.Retrieve(context.Background(), mlCriteria())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the robotics-only result to be filtered, got %d candidates", len(got))
	}
	if got[0].Name != "Prof. Ada Lovelace" {
		t.Fatalf("expected the relevant candidate to survive, got %s", got[0].Name)
	}
}

func TestWebRetrieverProgramKind(t *testing.T) {
	searcher := &fakeSearcher{results: []models.Result{{Title: "CS PhD Program", URL: "https://example.edu/phd"}}}
	r := &WebRetriever{Searcher: searcher}
	criteria := mlCriteria()
	criteria.Intent = match.IntentProgramSearch
	got, err := r.Retrieve(context.Background(), criteria)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Kind != match.KindProgram {
		t.Fatalf("expected program kind for program_search, got %s", got[0].Kind)
	}
}
