package index

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve"

	"github.com/gradscout/gradscout/internal/match"
)

// Index is an in-memory full-text index over candidates. It backs keyword
// relevance lookups the structured scoring pass does not cover, for example
// free-text search over names and departments.
type Index struct {
	idx  bleve.Index
	meta map[string]match.Candidate
	mu   sync.RWMutex
}

// Hit is a single relevance result.
type Hit struct {
	Candidate match.Candidate
	Score     float64
	Rank      int
}

// document is the shape handed to bleve for analysis.
type document struct {
	Name          string `json:"name"`
	University    string `json:"university"`
	Department    string `json:"department"`
	ResearchAreas string `json:"research_areas"`
}

// New creates an empty mem-only index.
func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return &Index{idx: idx, meta: make(map[string]match.Candidate)}, nil
}

// Add indexes one candidate. Re-adding the same candidate replaces the
// previous document.
func (x *Index) Add(c match.Candidate) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	id := docID(c)
	x.meta[id] = c
	return x.idx.Index(id, document{
		Name:          c.Name,
		University:    c.University,
		Department:    c.Department,
		ResearchAreas: strings.Join(c.ResearchAreas, " "),
	})
}

// AddAll indexes a batch of candidates, stopping at the first failure.
func (x *Index) AddAll(candidates []match.Candidate) error {
	for _, c := range candidates {
		if err := x.Add(c); err != nil {
			return err
		}
	}
	return nil
}

// Len reports how many candidates are indexed.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.meta)
}

// Search runs a query-string search and returns up to k hits in descending
// relevance order.
func (x *Index) Search(q string, k int) ([]Hit, error) {
	if strings.TrimSpace(q) == "" || k <= 0 {
		return nil, nil
	}
	query := bleve.NewQueryStringQuery(q)
	req := bleve.NewSearchRequestOptions(query, k, 0, false)

	x.mu.RLock()
	defer x.mu.RUnlock()
	res, err := x.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	var out []Hit
	for i, hit := range res.Hits {
		c, ok := x.meta[hit.ID]
		if !ok {
			continue
		}
		out = append(out, Hit{Candidate: c, Score: hit.Score, Rank: i + 1})
		if len(out) >= k {
			break
		}
	}
	return out, nil
}

func docID(c match.Candidate) string {
	return string(c.Kind) + ":" + c.ID
}
