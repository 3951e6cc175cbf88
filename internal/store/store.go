package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/gradscout/gradscout/config"
	"github.com/gradscout/gradscout/internal/match"
)

// Store persists users, chat history, and the scraped faculty and program
// corpus in Postgres.
type Store struct {
	DB *sql.DB
}

// ChatMessage is one turn of a stored conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// New opens a connection using the configured DSN.
func New(ctx context.Context, cfg config.PostgresConfig) (*Store, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	return NewWithDSN(ctx, dsn)
}

// NewWithDSN constructs the Store using an explicit Postgres DSN
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// User operations
func (s *Store) CreateUser(ctx context.Context, email, hash string) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES ($1,$2)`, email, hash)
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (id string, hash string, err error) {
	err = s.DB.QueryRowContext(ctx, `SELECT id, password_hash FROM users WHERE email=$1`, email).Scan(&id, &hash)
	return
}

// Chat operations
func (s *Store) SaveChatMessage(ctx context.Context, userID, role, content string) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO chat_messages (user_id, role, content) VALUES ($1,$2,$3)`, userID, role, content)
	return err
}

func (s *Store) ListChatMessages(ctx context.Context, userID string, limit int) ([]ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, user_id, role, content, created_at
FROM chat_messages
WHERE user_id=$1
ORDER BY created_at DESC
LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Faculty operations

// UpsertFaculty writes a faculty candidate, replacing any previous scrape of
// the same ID.
func (s *Store) UpsertFaculty(ctx context.Context, c match.Candidate) error {
	if c.Kind != match.KindFaculty {
		return fmt.Errorf("store: candidate %q is not faculty", c.ID)
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO faculty (id, name, university, department, research_areas, hiring_status, h_index, email, homepage, source_url, last_scraped)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  name = EXCLUDED.name,
  university = EXCLUDED.university,
  department = EXCLUDED.department,
  research_areas = EXCLUDED.research_areas,
  hiring_status = EXCLUDED.hiring_status,
  h_index = EXCLUDED.h_index,
  email = EXCLUDED.email,
  homepage = EXCLUDED.homepage,
  source_url = EXCLUDED.source_url,
  last_scraped = EXCLUDED.last_scraped;
`, c.ID, c.Name, c.University, c.Department, pq.Array(normalizeAreas(c.ResearchAreas)), c.HiringStatus, c.HIndex, c.Email, c.Homepage, c.SourceURL, c.LastScraped)
	return err
}

// UpsertProgram writes a program candidate.
func (s *Store) UpsertProgram(ctx context.Context, c match.Candidate) error {
	if c.Kind != match.KindProgram {
		return fmt.Errorf("store: candidate %q is not a program", c.ID)
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO programs (id, name, university, department, degree_type, research_areas, funding_available, acceptance_rate, application_deadline, source_url, last_scraped)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  name = EXCLUDED.name,
  university = EXCLUDED.university,
  department = EXCLUDED.department,
  degree_type = EXCLUDED.degree_type,
  research_areas = EXCLUDED.research_areas,
  funding_available = EXCLUDED.funding_available,
  acceptance_rate = EXCLUDED.acceptance_rate,
  application_deadline = EXCLUDED.application_deadline,
  source_url = EXCLUDED.source_url,
  last_scraped = EXCLUDED.last_scraped;
`, c.ID, c.Name, c.University, c.Department, c.DegreeType, pq.Array(normalizeAreas(c.ResearchAreas)), c.FundingAvailable, c.AcceptanceRate, c.ApplicationDeadline, c.SourceURL, c.LastScraped)
	return err
}

// SearchCandidates returns stored candidates matching the criteria's research
// areas, optionally narrowed to universities. Intent decides which tables are
// consulted; scoring, not the store, decides ranking.
func (s *Store) SearchCandidates(ctx context.Context, criteria match.ParsedCriteria) ([]match.Candidate, error) {
	var out []match.Candidate

	if criteria.Intent != match.IntentProgramSearch {
		faculty, err := s.searchFaculty(ctx, criteria)
		if err != nil {
			return nil, err
		}
		out = append(out, faculty...)
	}
	if criteria.Intent != match.IntentFacultySearch {
		programs, err := s.searchPrograms(ctx, criteria)
		if err != nil {
			return nil, err
		}
		out = append(out, programs...)
	}
	return out, nil
}

func (s *Store) searchFaculty(ctx context.Context, criteria match.ParsedCriteria) ([]match.Candidate, error) {
	query := `
SELECT id, name, university, department, research_areas, hiring_status, h_index, email, homepage, source_url, last_scraped
FROM faculty
WHERE research_areas && $1`
	args := []interface{}{pq.Array(criteria.ResearchAreas)}
	if len(criteria.Universities) > 0 {
		query += ` AND university = ANY($2)`
		args = append(args, pq.Array(criteria.Universities))
	}
	query += `
ORDER BY name`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []match.Candidate
	for rows.Next() {
		c := match.Candidate{Kind: match.KindFaculty}
		var areas pq.StringArray
		var hIndex sql.NullInt64
		var lastScraped sql.NullTime
		var email, homepage, sourceURL sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.University, &c.Department, &areas, &c.HiringStatus, &hIndex, &email, &homepage, &sourceURL, &lastScraped); err != nil {
			return nil, err
		}
		c.ResearchAreas = areas
		if hIndex.Valid {
			v := int(hIndex.Int64)
			c.HIndex = &v
		}
		if lastScraped.Valid {
			t := lastScraped.Time
			c.LastScraped = &t
		}
		c.Email = email.String
		c.Homepage = homepage.String
		c.SourceURL = sourceURL.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) searchPrograms(ctx context.Context, criteria match.ParsedCriteria) ([]match.Candidate, error) {
	query := `
SELECT id, name, university, department, degree_type, research_areas, funding_available, acceptance_rate, application_deadline, source_url, last_scraped
FROM programs
WHERE research_areas && $1`
	args := []interface{}{pq.Array(criteria.ResearchAreas)}
	next := 2
	if len(criteria.Universities) > 0 {
		query += fmt.Sprintf(` AND university = ANY($%d)`, next)
		args = append(args, pq.Array(criteria.Universities))
		next++
	}
	if len(criteria.DegreeTypes) > 0 {
		query += fmt.Sprintf(` AND degree_type = ANY($%d)`, next)
		args = append(args, pq.Array(criteria.DegreeTypes))
	}
	query += `
ORDER BY name`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []match.Candidate
	for rows.Next() {
		c := match.Candidate{Kind: match.KindProgram}
		var areas pq.StringArray
		var acceptance sql.NullFloat64
		var lastScraped sql.NullTime
		var deadline, sourceURL sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.University, &c.Department, &c.DegreeType, &areas, &c.FundingAvailable, &acceptance, &deadline, &sourceURL, &lastScraped); err != nil {
			return nil, err
		}
		c.ResearchAreas = areas
		if acceptance.Valid {
			v := acceptance.Float64
			c.AcceptanceRate = &v
		}
		if lastScraped.Valid {
			t := lastScraped.Time
			c.LastScraped = &t
		}
		c.ApplicationDeadline = deadline.String
		c.SourceURL = sourceURL.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListStaleFaculty returns faculty whose scrape data is older than maxAge,
// oldest first, for the refresh scheduler.
func (s *Store) ListStaleFaculty(ctx context.Context, maxAge time.Duration, limit int) ([]match.Candidate, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, name, university, department, research_areas, hiring_status, source_url
FROM faculty
WHERE last_scraped IS NULL OR last_scraped < NOW() - $1::interval
ORDER BY last_scraped NULLS FIRST
LIMIT $2`, fmt.Sprintf("%d seconds", int(maxAge.Seconds())), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []match.Candidate
	for rows.Next() {
		c := match.Candidate{Kind: match.KindFaculty}
		var areas pq.StringArray
		var sourceURL sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.University, &c.Department, &areas, &c.HiringStatus, &sourceURL); err != nil {
			return nil, err
		}
		c.ResearchAreas = areas
		c.SourceURL = sourceURL.String
		out = append(out, c)
	}
	return out, rows.Err()
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// normalizeAreas lowercases area labels before storage so the overlap
// operator compares like with like.
func normalizeAreas(areas []string) []string {
	out := make([]string, len(areas))
	for i, a := range areas {
		out[i] = strings.ToLower(strings.TrimSpace(a))
	}
	return out
}
