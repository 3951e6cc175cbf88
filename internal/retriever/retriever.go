package retriever

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gradscout/gradscout/internal/cache"
	"github.com/gradscout/gradscout/internal/helpers"
	"github.com/gradscout/gradscout/internal/index"
	"github.com/gradscout/gradscout/internal/match"
	"github.com/gradscout/gradscout/internal/scrape"
	"github.com/gradscout/gradscout/internal/telemetry"
	"github.com/gradscout/gradscout/tools/web_search"
)

// Retriever produces candidates for a set of parsed criteria.
type Retriever interface {
	Name() string
	Retrieve(ctx context.Context, criteria match.ParsedCriteria) ([]match.Candidate, error)
}

// CandidateSearcher is the persistence surface the store retriever needs.
type CandidateSearcher interface {
	SearchCandidates(ctx context.Context, criteria match.ParsedCriteria) ([]match.Candidate, error)
}

// StoreRetriever serves candidates from persistent storage.
type StoreRetriever struct {
	Store CandidateSearcher
}

func (r *StoreRetriever) Name() string { return "store" }

func (r *StoreRetriever) Retrieve(ctx context.Context, criteria match.ParsedCriteria) ([]match.Candidate, error) {
	return r.Store.SearchCandidates(ctx, criteria)
}

// WebRetriever discovers fresh candidates through a web search provider.
// Results are tagged with the shared vocabulary so they score like stored
// candidates, but they carry no timestamp and earn no recency credit.
type WebRetriever struct {
	Searcher   web_search.WebSearcher
	MaxResults int
}

func (r *WebRetriever) Name() string { return "web" }

func (r *WebRetriever) Retrieve(ctx context.Context, criteria match.ParsedCriteria) ([]match.Candidate, error) {
	k := r.MaxResults
	if k <= 0 {
		k = 10
	}
	results, err := r.Searcher.Discover(ctx, buildQuery(criteria), k, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("web discover: %w", err)
	}

	kind := match.KindFaculty
	if criteria.Intent == match.IntentProgramSearch {
		kind = match.KindProgram
	}

	var out []match.Candidate
	for _, res := range results {
		text := res.Title + " " + res.Snippet
		status, _ := scrape.DetectHiringStatus(text)
		areas := match.AreasInText(text)
		if len(areas) == 0 {
			areas = criteria.ResearchAreas
		}
		// The same profile page surfaces with tracking params and casing
		// variants; canonicalize so duplicates collapse in the fanout merge.
		sourceURL := res.URL
		if canonical, err := helpers.CanonicalURL(res.URL); err == nil {
			sourceURL = canonical
		}
		out = append(out, match.Candidate{
			Kind:          kind,
			ID:            "web:" + sourceURL,
			Name:          res.Title,
			ResearchAreas: areas,
			HiringStatus:  status,
			SourceURL:     sourceURL,
		})
	}
	return filterRelevant(out, criteria), nil
}

// filterRelevant drops web candidates whose indexed text matches none of the
// criteria terms, preserving retrieval order. Any index failure keeps the
// unfiltered set.
func filterRelevant(candidates []match.Candidate, criteria match.ParsedCriteria) []match.Candidate {
	if len(candidates) == 0 || len(criteria.ResearchAreas) == 0 {
		return candidates
	}
	idx, err := index.New()
	if err != nil {
		return candidates
	}
	if err := idx.AddAll(candidates); err != nil {
		return candidates
	}
	hits, err := idx.Search(strings.Join(criteria.ResearchAreas, " "), len(candidates))
	if err != nil {
		return candidates
	}
	relevant := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		relevant[string(h.Candidate.Kind)+":"+h.Candidate.ID] = struct{}{}
	}
	var out []match.Candidate
	for _, c := range candidates {
		if _, ok := relevant[string(c.Kind)+":"+c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// buildQuery turns criteria back into a search string.
func buildQuery(criteria match.ParsedCriteria) string {
	parts := append([]string{}, criteria.ResearchAreas...)
	if criteria.Intent == match.IntentProgramSearch {
		parts = append(parts, strings.Join(criteria.DegreeTypes, " "), "graduate program")
	} else {
		parts = append(parts, "professor")
	}
	parts = append(parts, criteria.Universities...)
	if criteria.HiringFocus {
		parts = append(parts, "accepting students")
	}
	return strings.Join(parts, " ")
}

// Fanout queries several retrievers concurrently and merges their results.
// A retriever that fails or times out contributes nothing; the merge keeps
// the configured retriever order so output is deterministic for fixed
// retriever behavior. Results are cached under the criteria fingerprint.
type Fanout struct {
	Retrievers []Retriever
	Cache      cache.Cache
	Timeout    time.Duration
	Logger     *log.Logger

	// Telemetry is optional; when set, per-retriever outcomes are counted.
	Telemetry *telemetry.Telemetry
}

// NewFanout wires a fanout over the given retrievers.
func NewFanout(retrievers []Retriever, c cache.Cache, timeout time.Duration, logger *log.Logger) *Fanout {
	if c == nil {
		c = cache.Noop{}
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Fanout{Retrievers: retrievers, Cache: c, Timeout: timeout, Logger: logger}
}

func (f *Fanout) Retrieve(ctx context.Context, criteria match.ParsedCriteria) []match.Candidate {
	key := cache.Fingerprint(criteria)
	if cached, ok, err := f.Cache.Get(ctx, key); err == nil && ok {
		f.Logger.Printf("[RETRIEVE] cache hit for %s (%d candidates)", key, len(cached))
		return cached
	}

	results := make([][]match.Candidate, len(f.Retrievers))
	var wg sync.WaitGroup
	for i, r := range f.Retrievers {
		wg.Add(1)
		go func(i int, r Retriever) {
			defer wg.Done()
			rctx, cancel := context.WithTimeout(ctx, f.Timeout)
			defer cancel()
			candidates, err := r.Retrieve(rctx, criteria)
			if f.Telemetry != nil {
				f.Telemetry.RecordRetrieval(r.Name(), err == nil)
			}
			if err != nil {
				f.Logger.Printf("[RETRIEVE] %s failed: %v", r.Name(), err)
				return
			}
			results[i] = candidates
		}(i, r)
	}
	wg.Wait()

	merged := dedupe(results)
	if err := f.Cache.Set(ctx, key, merged); err != nil {
		f.Logger.Printf("[RETRIEVE] cache set failed: %v", err)
	}
	return merged
}

// dedupe flattens per-retriever results in order, dropping candidates whose
// kind and ID were already seen from an earlier retriever.
func dedupe(results [][]match.Candidate) []match.Candidate {
	seen := make(map[string]struct{})
	var out []match.Candidate
	for _, batch := range results {
		for _, c := range batch {
			key := string(c.Kind) + ":" + c.ID
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
