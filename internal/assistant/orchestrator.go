package assistant

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gradscout/gradscout/config"
	"github.com/gradscout/gradscout/internal/match"
	"github.com/gradscout/gradscout/internal/telemetry"
)

var orchestratorTracer trace.Tracer = otel.Tracer("gradscout/internal/assistant")

// Orchestrator runs the query pipeline: parse criteria, retrieve candidates,
// score them, compose a response. One instance serves all requests; a
// semaphore bounds how many queries run at once.
type Orchestrator struct {
	config    *config.Config
	logger    *log.Logger
	telemetry *telemetry.Telemetry

	parser    *QueryParser
	retriever CandidateRetriever
	composer  *Composer

	processing map[string]*ProcessingStatus
	mu         sync.RWMutex

	semaphore chan struct{}
}

// NewOrchestrator wires the pipeline together.
func NewOrchestrator(cfg *config.Config, logger *log.Logger, tel *telemetry.Telemetry, parser *QueryParser, retriever CandidateRetriever, composer *Composer) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[ASSISTANT] ", log.LstdFlags)
	}
	limit := cfg.General.MaxConcurrentQueries
	if limit <= 0 {
		limit = 8
	}
	return &Orchestrator{
		config:     cfg,
		logger:     logger,
		telemetry:  tel,
		parser:     parser,
		retriever:  retriever,
		composer:   composer,
		processing: make(map[string]*ProcessingStatus),
		semaphore:  make(chan struct{}, limit),
	}
}

// Answer processes one query end to end.
func (o *Orchestrator) Answer(ctx context.Context, query Query) (Answer, error) {
	startTime := time.Now()
	if query.ID == "" {
		query.ID = uuid.New().String()
	}

	ctx, span := orchestratorTracer.Start(ctx, "assistant.answer",
		trace.WithAttributes(
			attribute.String("query.id", query.ID),
			attribute.String("user.id", query.UserID),
		))
	defer span.End()

	status := &ProcessingStatus{
		QueryID:     query.ID,
		Status:      "pending",
		CreatedAt:   time.Now(),
		LastUpdated: time.Now(),
	}
	o.mu.Lock()
	o.processing[query.ID] = status
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.processing, query.ID)
		o.mu.Unlock()
	}()

	select {
	case o.semaphore <- struct{}{}:
		defer func() { <-o.semaphore }()
	case <-ctx.Done():
		return Answer{}, ctx.Err()
	}

	o.logger.Printf("Starting processing for query: %s", query.ID)
	o.updateStatus(status, "parsing", 0.1, "Extracting search criteria")

	parseCtx, parseSpan := orchestratorTracer.Start(ctx, "assistant.parse")
	criteria := o.parser.Parse(parseCtx, query.Text, query.Context)
	parseSpan.SetAttributes(attribute.String("query.intent", string(criteria.Intent)))
	parseSpan.SetStatus(codes.Ok, "completed")
	parseSpan.End()
	span.SetAttributes(attribute.String("query.intent", string(criteria.Intent)))

	// Chit-chat needs no retrieval.
	if criteria.Intent == match.IntentGeneralChat {
		answer := Answer{
			QueryID:        query.ID,
			Intent:         criteria.Intent,
			Criteria:       criteria,
			Response:       o.composer.Compose(ctx, query.Text, criteria, nil, nil),
			ProcessingTime: time.Since(startTime),
		}
		o.finish(status, span, criteria, startTime, true)
		return answer, nil
	}

	o.updateStatus(status, "retrieving", 0.4, "Gathering candidates")
	retrieveCtx, retrieveSpan := orchestratorTracer.Start(ctx, "assistant.retrieve")
	candidates := o.retriever.Retrieve(retrieveCtx, criteria)
	retrieveSpan.SetAttributes(attribute.Int("retrieve.candidate_count", len(candidates)))
	retrieveSpan.SetStatus(codes.Ok, "completed")
	retrieveSpan.End()

	o.updateStatus(status, "scoring", 0.7, "Scoring candidates")
	scored, err := match.ScoreCandidates(criteria, candidates)
	if err != nil {
		o.updateStatus(status, "failed", 0.0, fmt.Sprintf("Scoring failed: %v", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.finish(status, span, criteria, startTime, false)
		return Answer{}, fmt.Errorf("scoring failed: %w", err)
	}

	var faculty, programs []match.ScoredMatch
	for _, m := range scored {
		switch m.Candidate.Kind {
		case match.KindFaculty:
			faculty = append(faculty, m)
		case match.KindProgram:
			programs = append(programs, m)
		}
	}

	o.updateStatus(status, "composing", 0.9, "Writing response")
	answer := Answer{
		QueryID:         query.ID,
		Intent:          criteria.Intent,
		Criteria:        criteria,
		Response:        o.composer.Compose(ctx, query.Text, criteria, faculty, programs),
		FacultyMatches:  faculty,
		ProgramMatches:  programs,
		ConfidenceScore: Confidence(scored),
		Sources:         collectSources(scored),
		ProcessingTime:  time.Since(startTime),
	}

	span.SetAttributes(
		attribute.Int("answer.faculty_matches", len(faculty)),
		attribute.Int("answer.program_matches", len(programs)),
		attribute.Float64("answer.confidence", answer.ConfidenceScore),
	)
	o.finish(status, span, criteria, startTime, true)
	o.logger.Printf("Completed processing for query: %s in %v", query.ID, time.Since(startTime))
	return answer, nil
}

// GetStatus returns the status of an in-flight query.
func (o *Orchestrator) GetStatus(queryID string) (ProcessingStatus, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	status, ok := o.processing[queryID]
	if !ok {
		return ProcessingStatus{}, false
	}
	return *status, true
}

func (o *Orchestrator) finish(status *ProcessingStatus, span trace.Span, criteria match.ParsedCriteria, startTime time.Time, success bool) {
	if success {
		o.updateStatus(status, "completed", 1.0, "Processing completed successfully")
		span.SetStatus(codes.Ok, "completed")
	}
	if o.telemetry != nil {
		o.telemetry.RecordQuery(string(criteria.Intent), success, time.Since(startTime))
	}
}

func (o *Orchestrator) updateStatus(status *ProcessingStatus, state string, progress float64, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	status.Status = state
	status.Progress = progress
	status.Message = message
	status.LastUpdated = time.Now()
}

// collectSources gathers unique source URLs from scored matches, in match
// order so higher-ranked evidence lists first.
func collectSources(matches []match.ScoredMatch) []Source {
	seen := make(map[string]struct{})
	var out []Source
	for _, m := range matches {
		url := m.Candidate.SourceURL
		if url == "" {
			url = m.Candidate.Homepage
		}
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, Source{Title: m.Candidate.Name, URL: url, Provider: string(m.Candidate.Kind)})
	}
	return out
}
