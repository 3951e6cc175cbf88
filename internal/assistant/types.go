package assistant

import (
	"context"
	"time"

	"github.com/gradscout/gradscout/internal/match"
)

// Query is one user question handed to the orchestrator.
type Query struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id,omitempty"`
	Text      string              `json:"text"`
	Context   *match.QueryContext `json:"context,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// Source attributes where a piece of the answer came from.
type Source struct {
	Title    string `json:"title,omitempty"`
	URL      string `json:"url"`
	Provider string `json:"provider"`
}

// Answer is the full orchestrator output for one query.
type Answer struct {
	QueryID         string               `json:"query_id"`
	Intent          match.Intent         `json:"intent"`
	Criteria        match.ParsedCriteria `json:"criteria"`
	Response        string               `json:"response"`
	FacultyMatches  []match.ScoredMatch  `json:"faculty_matches"`
	ProgramMatches  []match.ScoredMatch  `json:"program_matches"`
	ConfidenceScore float64              `json:"confidence_score"`
	Sources         []Source             `json:"sources,omitempty"`
	ProcessingTime  time.Duration        `json:"processing_time"`
}

// ProcessingStatus tracks an in-flight query.
type ProcessingStatus struct {
	QueryID     string    `json:"query_id"`
	Status      string    `json:"status"`
	Progress    float64   `json:"progress"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// CandidateRetriever is the retrieval surface the orchestrator depends on.
// The fanout retriever satisfies it; tests substitute fakes.
type CandidateRetriever interface {
	Retrieve(ctx context.Context, criteria match.ParsedCriteria) []match.Candidate
}

// Confidence scores how trustworthy a match list is: weight on the strength
// of the best match, plus a smaller weight on how many matches there are,
// capped below certainty. No matches means no confidence.
func Confidence(matches []match.ScoredMatch) float64 {
	if len(matches) == 0 {
		return 0
	}
	top := matches[0].Score
	for _, m := range matches[1:] {
		if m.Score > top {
			top = m.Score
		}
	}
	volume := float64(len(matches)) / 10.0
	if volume > 1 {
		volume = 1
	}
	c := 0.7*top + 0.3*volume
	if c > 0.95 {
		c = 0.95
	}
	return c
}
