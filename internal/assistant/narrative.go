package assistant

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/gradscout/gradscout/internal/match"
	"github.com/gradscout/gradscout/internal/telemetry"
	"github.com/gradscout/gradscout/provider"
)

// Composer renders the natural-language part of an answer. With an LLM it
// writes a short narrative over the top matches; without one it falls back to
// a deterministic template. Matches themselves are never generated by the
// model, only described by it.
type Composer struct {
	llm       provider.Provider
	model     string
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// NewComposer builds a composer. llm may be nil.
func NewComposer(llm provider.Provider, model string, tel *telemetry.Telemetry, logger *log.Logger) *Composer {
	if logger == nil {
		logger = log.Default()
	}
	return &Composer{llm: llm, model: model, telemetry: tel, logger: logger}
}

// Compose writes the response text for a scored answer.
func (c *Composer) Compose(ctx context.Context, query string, criteria match.ParsedCriteria, faculty, programs []match.ScoredMatch) string {
	if c.llm == nil {
		return templateResponse(criteria, faculty, programs)
	}
	out, err := c.composeWithLLM(ctx, query, criteria, faculty, programs)
	if err != nil {
		c.logger.Printf("[COMPOSE] LLM compose failed, using template: %v", err)
		return templateResponse(criteria, faculty, programs)
	}
	return out
}

func (c *Composer) composeWithLLM(ctx context.Context, query string, criteria match.ParsedCriteria, faculty, programs []match.ScoredMatch) (string, error) {
	var sb strings.Builder
	sb.WriteString("You are a graduate-admissions research assistant. Answer the question below using ONLY the listed matches. Do not invent people, programs, or facts. Keep it under 150 words, plain text.\n\n")
	fmt.Fprintf(&sb, "Question: %s\n", query)
	fmt.Fprintf(&sb, "Research areas: %s\n\n", strings.Join(criteria.ResearchAreas, ", "))

	if len(faculty) == 0 && len(programs) == 0 {
		sb.WriteString("No matches were found. Say so and suggest broadening the search.\n")
	}
	if len(faculty) > 0 {
		sb.WriteString("Faculty matches:\n")
		for i, m := range top(faculty, 5) {
			fmt.Fprintf(&sb, "%d. %s (%s), areas: %s, hiring status: %s, match score %.2f\n",
				i+1, m.Candidate.Name, m.Candidate.University, strings.Join(m.Candidate.ResearchAreas, ", "), m.Candidate.HiringStatus, m.Score)
		}
	}
	if len(programs) > 0 {
		sb.WriteString("Program matches:\n")
		for i, m := range top(programs, 5) {
			funding := "funding unknown"
			if m.Candidate.FundingAvailable {
				funding = "funding available"
			}
			fmt.Fprintf(&sb, "%d. %s (%s), %s, %s, match score %.2f\n",
				i+1, m.Candidate.Name, m.Candidate.University, m.Candidate.DegreeType, funding, m.Score)
		}
	}

	out, inTok, outTok, err := c.llm.GenerateWithTokens(ctx, sb.String())
	if err != nil {
		return "", err
	}
	if c.telemetry != nil {
		c.telemetry.RecordLLMUsage("compose", c.model, inTok, outTok, c.llm.CalculateCost(inTok, outTok))
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("empty completion")
	}
	return out, nil
}

// templateResponse is the deterministic composer used without an LLM.
func templateResponse(criteria match.ParsedCriteria, faculty, programs []match.ScoredMatch) string {
	if len(faculty) == 0 && len(programs) == 0 {
		return fmt.Sprintf("I couldn't find strong matches for %s right now. Try broadening the research areas or asking about a different university.",
			strings.Join(criteria.ResearchAreas, ", "))
	}

	var sb strings.Builder
	if len(faculty) > 0 {
		fmt.Fprintf(&sb, "I found %d faculty match(es) for %s.", len(faculty), strings.Join(criteria.ResearchAreas, ", "))
		for i, m := range top(faculty, 3) {
			fmt.Fprintf(&sb, " %d) %s at %s", i+1, m.Candidate.Name, m.Candidate.University)
			if m.Candidate.HiringStatus == match.HiringStatusHiring {
				sb.WriteString(" (currently accepting students)")
			}
			sb.WriteString(".")
		}
	}
	if len(programs) > 0 {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "I found %d program match(es).", len(programs))
		for i, m := range top(programs, 3) {
			fmt.Fprintf(&sb, " %d) %s at %s", i+1, m.Candidate.Name, m.Candidate.University)
			if m.Candidate.FundingAvailable {
				sb.WriteString(" (funding available)")
			}
			sb.WriteString(".")
		}
	}
	return sb.String()
}

func top(matches []match.ScoredMatch, k int) []match.ScoredMatch {
	if len(matches) <= k {
		return matches
	}
	return matches[:k]
}
