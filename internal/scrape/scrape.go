package scrape

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/gradscout/gradscout/config"
	"github.com/gradscout/gradscout/internal/match"
	"github.com/gradscout/gradscout/tools/web_fetch"
)

// DirectorySource is one university faculty directory to scrape.
type DirectorySource struct {
	Key        string
	University string
	Department string
	URL        string
}

// DefaultSources returns the built-in CS department directories.
func DefaultSources() []DirectorySource {
	return []DirectorySource{
		{Key: "stanford", University: "Stanford", Department: "Computer Science", URL: "https://cs.stanford.edu/directory/faculty"},
		{Key: "mit", University: "MIT", Department: "Computer Science", URL: "https://www.csail.mit.edu/people"},
		{Key: "cmu", University: "CMU", Department: "Computer Science", URL: "https://csd.cmu.edu/directory/faculty"},
		{Key: "berkeley", University: "UC Berkeley", Department: "Computer Science", URL: "https://eecs.berkeley.edu/faculty"},
		{Key: "caltech", University: "Caltech", Department: "Computer Science", URL: "https://www.cms.caltech.edu/people/faculty"},
	}
}

// Hiring signal phrases looked for in page text.
var (
	positiveSignals = []string{
		"accepting students", "recruiting phd", "graduate positions",
		"seeking students", "applications welcome", "phd openings",
		"prospective students", "looking for motivated",
		"graduate student positions", "currently recruiting", "open positions",
	}
	negativeSignals = []string{
		"not accepting", "no openings", "full capacity", "no positions",
		"not taking students", "not recruiting",
	}
)

// namePattern matches names introduced with an academic title, e.g.
// "Prof. Ada Lovelace" or "Professor Alan Turing".
var namePattern = regexp.MustCompile(`(?:Dr\.|Prof\.|Professor)\s+([A-Z][a-zA-Z\-]+(?:\s+[A-Z][a-zA-Z\-]+)+)`)

// emailPattern matches addresses near a name in directory text.
var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// Scraper fetches faculty directories and turns rendered page text into
// candidates tagged with the shared research-area vocabulary.
type Scraper struct {
	fetcher      web_fetch.WebFetcher
	sources      []DirectorySource
	maxPerSource int
	logger       *log.Logger
}

// NewScraper builds a scraper with a headless-browser fetcher.
func NewScraper(cfg config.ScrapeConfig, logger *log.Logger) (*Scraper, error) {
	if logger == nil {
		logger = log.Default()
	}
	fetcher, err := web_fetch.NewWebFetcher(web_fetch.ChromedpFetcherType, cfg.Timeout, cfg.MaxChars)
	if err != nil {
		return nil, fmt.Errorf("creating fetcher: %w", err)
	}
	return &Scraper{
		fetcher:      fetcher,
		sources:      DefaultSources(),
		maxPerSource: 20,
		logger:       logger,
	}, nil
}

// ScrapeAll walks every source and returns all candidates found. A failing
// source is logged and skipped; the others still contribute.
func (s *Scraper) ScrapeAll(ctx context.Context) []match.Candidate {
	var out []match.Candidate
	for _, src := range s.sources {
		candidates, err := s.ScrapeDirectory(ctx, src)
		if err != nil {
			s.logger.Printf("[SCRAPE] source %s failed: %v", src.Key, err)
			continue
		}
		s.logger.Printf("[SCRAPE] source %s yielded %d faculty", src.Key, len(candidates))
		out = append(out, candidates...)
	}
	return out
}

// ScrapeDirectory fetches one directory page and extracts faculty candidates.
func (s *Scraper) ScrapeDirectory(ctx context.Context, src DirectorySource) ([]match.Candidate, error) {
	page, err := s.fetcher.Exec(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src.URL, err)
	}
	if page.Status != 200 || page.Text == "" {
		return nil, fmt.Errorf("fetching %s: status %d, empty content", src.URL, page.Status)
	}
	return s.parseDirectory(page.Text, src), nil
}

// parseDirectory extracts candidates from rendered directory text. The text
// is segmented at each titled name so signals between two names are
// attributed to the first of them, mirroring how directory entries read.
func (s *Scraper) parseDirectory(text string, src DirectorySource) []match.Candidate {
	now := time.Now().UTC()
	seen := make(map[string]struct{})
	var out []match.Candidate

	locs := namePattern.FindAllStringSubmatchIndex(text, -1)
	for i, loc := range locs {
		name := strings.TrimSpace(text[loc[2]:loc[3]])
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		block := text[loc[0]:end]
		status, _ := DetectHiringStatus(block)
		email := ""
		if e := emailPattern.FindString(block); e != "" {
			email = e
		}

		ts := now
		out = append(out, match.Candidate{
			Kind:          match.KindFaculty,
			ID:            candidateID(src.Key, name),
			Name:          name,
			University:    src.University,
			Department:    src.Department,
			ResearchAreas: match.AreasInText(block),
			HiringStatus:  status,
			Email:         email,
			SourceURL:     src.URL,
			LastScraped:   &ts,
		})
		if len(out) >= s.maxPerSource {
			break
		}
	}
	return out
}

// DetectHiringStatus inspects text for hiring signal phrases. Negative
// signals override positive ones; no signal at all reads as unknown.
func DetectHiringStatus(text string) (string, []string) {
	t := strings.ToLower(text)

	var indicators []string
	positives, negatives := 0, 0
	for _, sig := range positiveSignals {
		if strings.Contains(t, sig) {
			indicators = append(indicators, sig)
			positives++
		}
	}
	for _, sig := range negativeSignals {
		if strings.Contains(t, sig) {
			indicators = append(indicators, sig)
			negatives++
		}
	}

	switch {
	case negatives > 0:
		return match.HiringStatusNotHiring, indicators
	case positives > 0:
		return match.HiringStatusHiring, indicators
	default:
		return match.HiringStatusUnknown, nil
	}
}

func candidateID(sourceKey, name string) string {
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	return sourceKey + ":" + slug
}
