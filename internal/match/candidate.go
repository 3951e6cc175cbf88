package match

import "time"

// Kind tags a candidate as a faculty or program record.
type Kind string

const (
	KindFaculty Kind = "faculty"
	KindProgram Kind = "program"
)

// Hiring status labels as stored on faculty records. Anything else is
// treated as unknown by the scorer.
const (
	HiringStatusHiring    = "hiring"
	HiringStatusMaybe     = "maybe"
	HiringStatusNotHiring = "not_hiring"
	HiringStatusUnknown   = "unknown"
)

// Candidate is a faculty or program record being evaluated against a query.
// Optional fields are pointers so that "missing" is a typed state rather than
// a silent zero. Candidates are read-only inputs to scoring.
type Candidate struct {
	Kind       Kind   `json:"kind"`
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	University string `json:"university,omitempty"`
	Department string `json:"department,omitempty"`

	ResearchAreas []string `json:"research_areas,omitempty"`

	// Faculty fields.
	HiringStatus string `json:"hiring_status,omitempty"`
	HIndex       *int   `json:"h_index,omitempty"`

	// Program fields.
	DegreeType          string   `json:"degree_type,omitempty"`
	FundingAvailable    bool     `json:"funding_available,omitempty"`
	AcceptanceRate      *float64 `json:"acceptance_rate,omitempty"`
	ApplicationDeadline string   `json:"application_deadline,omitempty"`

	LastScraped *time.Time `json:"last_scraped,omitempty"`

	Homepage  string `json:"homepage_url,omitempty"`
	Email     string `json:"email,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

// ScoreBreakdown records each weighted sub-score contribution, in the order
// they are summed, so a ranking can be audited after the fact.
type ScoreBreakdown struct {
	AreaOverlap float64 `json:"area_overlap"`
	Status      float64 `json:"status"`
	Quality     float64 `json:"quality"`
	Recency     float64 `json:"recency"`
}

// ScoredMatch pairs a candidate with its match score in [0,1]. Transient:
// created per query, sorted, serialized, discarded.
type ScoredMatch struct {
	Candidate Candidate      `json:"candidate"`
	Score     float64        `json:"match_score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}
