package match

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Canonical scoring weights. The four weighted sub-scores sum to at most 1.0
// by construction; the final clamp guards against malformed candidate data.
const (
	weightAreaOverlap = 0.40
	weightStatus      = 0.30
	weightQuality     = 0.20
	weightRecency     = 0.10

	// hIndexCeiling is the h-index treated as a full quality score.
	hIndexCeiling = 100.0
	// recencyWindowDays is the span over which the recency credit decays
	// linearly to zero.
	recencyWindowDays = 30.0
)

// ScoreCandidates assigns every candidate a match score in [0,1] against the
// criteria and returns the full list sorted by score descending. The sort is
// stable: equal scores retain retrieval order, so output is deterministic
// given identical input ordering. Truncation to top-K is the caller's
// concern.
//
// Missing optional fields degrade their sub-score to zero; in particular a
// missing last-scraped timestamp earns no recency credit, so stale or
// unknown data never outranks fresh data. A candidate of unknown kind is a
// programmer error and yields a non-nil error.
func ScoreCandidates(criteria ParsedCriteria, candidates []Candidate) ([]ScoredMatch, error) {
	now := time.Now()
	out := make([]ScoredMatch, 0, len(candidates))
	for _, c := range candidates {
		m, err := scoreCandidate(criteria, c, now)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func scoreCandidate(criteria ParsedCriteria, c Candidate, now time.Time) (ScoredMatch, error) {
	if c.Kind != KindFaculty && c.Kind != KindProgram {
		return ScoredMatch{}, fmt.Errorf("match: unknown candidate kind %q for %q", c.Kind, c.Name)
	}

	var b ScoreBreakdown

	if len(c.ResearchAreas) > 0 {
		matched := 0
		for _, area := range c.ResearchAreas {
			if areaMatches(area, criteria.ResearchAreas) {
				matched++
			}
		}
		overlap := float64(matched) / float64(len(c.ResearchAreas))
		b.AreaOverlap = clamp01(overlap) * weightAreaOverlap
	}

	switch c.Kind {
	case KindFaculty:
		switch c.HiringStatus {
		case HiringStatusHiring:
			b.Status = weightStatus
		case HiringStatusMaybe:
			b.Status = 0.5 * weightStatus
		}
		if c.HIndex != nil {
			b.Quality = clamp01(float64(*c.HIndex)/hIndexCeiling) * weightQuality
		}
	case KindProgram:
		if c.FundingAvailable {
			b.Status = weightStatus
		}
		if c.AcceptanceRate != nil {
			b.Quality = clamp01(*c.AcceptanceRate) * weightQuality
		}
	}

	if c.LastScraped != nil {
		days := now.Sub(*c.LastScraped).Hours() / 24
		if fresh := 1 - days/recencyWindowDays; fresh > 0 {
			b.Recency = clamp01(fresh) * weightRecency
		}
	}

	score := clamp01(b.AreaOverlap + b.Status + b.Quality + b.Recency)
	return ScoredMatch{Candidate: c, Score: score, Breakdown: b}, nil
}

// areaMatches reports whether a candidate area substring-matches any criteria
// area, case-insensitively in either direction ("Machine Learning" matches
// criteria "machine learning" and vice versa).
func areaMatches(candidateArea string, criteriaAreas []string) bool {
	ca := foldTerm(candidateArea)
	if ca == "" {
		return false
	}
	for _, qa := range criteriaAreas {
		if strings.Contains(ca, qa) || strings.Contains(qa, ca) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
