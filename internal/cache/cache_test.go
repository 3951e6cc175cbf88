package cache

import (
	"context"
	"testing"

	"github.com/gradscout/gradscout/internal/match"
)

func TestFingerprintStable(t *testing.T) {
	criteria := match.ParsedCriteria{
		Intent:        match.IntentFacultySearch,
		ResearchAreas: []string{"machine learning"},
		Universities:  []string{"Stanford"},
		DegreeTypes:   []string{"PhD"},
		HiringFocus:   true,
	}
	if Fingerprint(criteria) != Fingerprint(criteria) {
		t.Fatalf("fingerprint must be stable for equal criteria")
	}

	other := criteria
	other.HiringFocus = false
	if Fingerprint(criteria) == Fingerprint(other) {
		t.Fatalf("different criteria must not collide")
	}
}

func TestNoopNeverHits(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []match.Candidate{{Kind: match.KindFaculty, Name: "A"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || got != nil {
		t.Fatalf("noop cache must never hit")
	}
}
