package index

import (
	"testing"

	"github.com/gradscout/gradscout/internal/match"
)

func TestIndexSearch(t *testing.T) {
	idx, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	candidates := []match.Candidate{
		{Kind: match.KindFaculty, ID: "f1", Name: "Ada Lovelace", University: "MIT", Department: "CSAIL", ResearchAreas: []string{"machine learning", "theory"}},
		{Kind: match.KindFaculty, ID: "f2", Name: "Grace Hopper", University: "Harvard", Department: "Computer Science", ResearchAreas: []string{"systems"}},
		{Kind: match.KindProgram, ID: "p1", Name: "Computer Science PhD", University: "Stanford", ResearchAreas: []string{"computer science"}},
	}
	if err := idx.AddAll(candidates); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("expected 3 indexed candidates, got %d", idx.Len())
	}

	hits, err := idx.Search("machine learning", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) == 0 {
		t.Fatalf("expected at least one hit")
	}
	if hits[0].Candidate.ID != "f1" {
		t.Fatalf("expected f1 as top hit, got %s", hits[0].Candidate.ID)
	}
	if hits[0].Rank != 1 {
		t.Fatalf("expected rank 1 for top hit, got %d", hits[0].Rank)
	}
}

func TestIndexReAddReplaces(t *testing.T) {
	idx, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := match.Candidate{Kind: match.KindFaculty, ID: "f1", Name: "Ada Lovelace", ResearchAreas: []string{"robotics"}}
	if err := idx.Add(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.ResearchAreas = []string{"machine learning"}
	if err := idx.Add(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Len() != 1 {
		t.Fatalf("expected 1 indexed candidate after re-add, got %d", idx.Len())
	}

	hits, err := idx.Search("robotics", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected stale document to be replaced, got %d hits", len(hits))
	}
}

func TestIndexEmptyQuery(t *testing.T) {
	idx, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hits, err := idx.Search("  ", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits != nil {
		t.Fatalf("expected no hits for blank query")
	}
}
