package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/gradscout/gradscout/internal/match"
	"github.com/gradscout/gradscout/internal/telemetry"
	"github.com/gradscout/gradscout/provider"
)

// QueryParser turns free text into parsed criteria. With an LLM configured it
// delegates classification and extraction to the model and validates the
// result against the controlled vocabulary; without one, or on any model
// failure, it uses the deterministic keyword path. Both paths return the same
// criteria shape, so downstream scoring never knows which one ran.
type QueryParser struct {
	llm       provider.Provider
	model     string
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// NewQueryParser builds a parser. llm may be nil.
func NewQueryParser(llm provider.Provider, model string, tel *telemetry.Telemetry, logger *log.Logger) *QueryParser {
	if logger == nil {
		logger = log.Default()
	}
	return &QueryParser{llm: llm, model: model, telemetry: tel, logger: logger}
}

// Parse derives criteria from a query. Never errors; worst case it degrades
// to keyword extraction.
func (p *QueryParser) Parse(ctx context.Context, query string, qctx *match.QueryContext) match.ParsedCriteria {
	if p.llm == nil {
		return match.ExtractCriteria(query, qctx)
	}
	criteria, err := p.parseWithLLM(ctx, query, qctx)
	if err != nil {
		p.logger.Printf("[PARSE] LLM parse failed, falling back to keywords: %v", err)
		return match.ExtractCriteria(query, qctx)
	}
	return criteria
}

const parsePromptTemplate = `You classify graduate-admissions questions and extract search criteria.

Known research areas: %s
Intent labels: faculty_search, program_search, research_analysis, application_info, general_chat, mixed

Question: %q

Respond ONLY with a JSON object of this shape:
{
  "intent": "one intent label",
  "research_areas": ["labels from the known list only"],
  "universities": ["university names mentioned"],
  "degree_types": ["PhD or MS"],
  "hiring_focus": true
}`

func (p *QueryParser) parseWithLLM(ctx context.Context, query string, qctx *match.QueryContext) (match.ParsedCriteria, error) {
	prompt := fmt.Sprintf(parsePromptTemplate, strings.Join(match.ResearchAreas(), ", "), query)

	out, inTok, outTok, err := p.llm.GenerateWithTokens(ctx, prompt)
	if err != nil {
		return match.ParsedCriteria{}, err
	}
	if p.telemetry != nil {
		p.telemetry.RecordLLMUsage("parse", p.model, inTok, outTok, p.llm.CalculateCost(inTok, outTok))
	}

	var parsed struct {
		Intent        string   `json:"intent"`
		ResearchAreas []string `json:"research_areas"`
		Universities  []string `json:"universities"`
		DegreeTypes   []string `json:"degree_types"`
		HiringFocus   bool     `json:"hiring_focus"`
	}
	if err := json.Unmarshal([]byte(extractFirstJSON(out)), &parsed); err != nil {
		return match.ParsedCriteria{}, fmt.Errorf("parsing model output: %w", err)
	}

	intent, ok := validIntent(parsed.Intent)
	if !ok {
		return match.ParsedCriteria{}, fmt.Errorf("model returned unknown intent %q", parsed.Intent)
	}

	// Rebuild the model's answer through the vocabulary so only canonical
	// labels survive, then fill gaps exactly like the keyword path does.
	fallback := match.ExtractCriteria(query, qctx)
	criteria := match.ParsedCriteria{Intent: intent, HiringFocus: parsed.HiringFocus}
	for _, a := range parsed.ResearchAreas {
		if area, ok := match.NormalizeArea(a); ok {
			criteria.ResearchAreas = appendUnique(criteria.ResearchAreas, area)
		}
	}
	if len(criteria.ResearchAreas) == 0 {
		criteria.ResearchAreas = fallback.ResearchAreas
	}
	for _, u := range parsed.Universities {
		if u = strings.TrimSpace(u); u != "" {
			criteria.Universities = appendUnique(criteria.Universities, u)
		}
	}
	if len(criteria.Universities) == 0 {
		criteria.Universities = fallback.Universities
	}
	for _, d := range parsed.DegreeTypes {
		switch strings.ToUpper(strings.TrimSpace(d)) {
		case "PHD", "PH.D", "PH.D.":
			criteria.DegreeTypes = appendUnique(criteria.DegreeTypes, "PhD")
		case "MS", "MSC":
			criteria.DegreeTypes = appendUnique(criteria.DegreeTypes, "MS")
		}
	}
	if len(criteria.DegreeTypes) == 0 {
		criteria.DegreeTypes = fallback.DegreeTypes
	}
	return criteria, nil
}

func validIntent(s string) (match.Intent, bool) {
	switch match.Intent(strings.TrimSpace(strings.ToLower(s))) {
	case match.IntentFacultySearch:
		return match.IntentFacultySearch, true
	case match.IntentProgramSearch:
		return match.IntentProgramSearch, true
	case match.IntentResearchAnalysis:
		return match.IntentResearchAnalysis, true
	case match.IntentApplicationInfo:
		return match.IntentApplicationInfo, true
	case match.IntentGeneralChat:
		return match.IntentGeneralChat, true
	case match.IntentMixed:
		return match.IntentMixed, true
	}
	return "", false
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// extractFirstJSON attempts to find the first top-level JSON object in a string
func extractFirstJSON(s string) string {
	start := -1
	depth := 0
	for i, ch := range s {
		if ch == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == '}' {
			if depth > 0 {
				depth--
			}
			if depth == 0 && start != -1 {
				return s[start : i+1]
			}
		}
	}
	return s
}
