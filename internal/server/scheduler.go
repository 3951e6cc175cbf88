package server

import (
	"context"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/gradscout/gradscout/internal/index"
	"github.com/gradscout/gradscout/internal/match"
	"github.com/gradscout/gradscout/internal/scrape"
	"github.com/gradscout/gradscout/internal/store"
)

// Scheduler refreshes the faculty directory on a cron schedule. A Redis lock
// keeps concurrent replicas from scraping the same sources twice.
type Scheduler struct {
	Store    *store.Store
	Scraper  *scrape.Scraper
	Index    *index.Index
	Rdb      *redis.Client
	CronSpec string
	Logger   *log.Logger
	Stop     chan struct{}

	lastRun *time.Time
}

func (s *Scheduler) Start() {
	if s.Logger == nil {
		s.Logger = log.New(log.Writer(), "[SCHED] ", log.LstdFlags)
	}
	ticker := time.NewTicker(15 * time.Minute)
	go func() {
		for {
			select {
			case <-s.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *Scheduler) tick() {
	if s.Scraper == nil {
		return
	}
	if !isDue(s.CronSpec, s.lastRun) {
		return
	}

	ctx := context.Background()
	if s.Rdb != nil {
		lockKey := "sched:lock:directory-refresh"
		ok, _ := s.Rdb.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if !ok {
			return
		}
		defer s.Rdb.Del(ctx, lockKey)
	}

	now := time.Now()
	s.lastRun = &now
	s.refresh(ctx)
}

// refresh scrapes all configured directories and folds the results into the
// store and the full-text index.
func (s *Scheduler) refresh(ctx context.Context) {
	candidates := s.Scraper.ScrapeAll(ctx)
	var stored int
	for _, c := range candidates {
		if c.Kind != match.KindFaculty {
			continue
		}
		if err := s.Store.UpsertFaculty(ctx, c); err != nil {
			s.Logger.Printf("upsert %s failed: %v", c.ID, err)
			continue
		}
		stored++
	}
	if s.Index != nil {
		if err := s.Index.AddAll(candidates); err != nil {
			s.Logger.Printf("index update failed: %v", err)
		}
	}

	stale, err := s.Store.ListStaleFaculty(ctx, 7*24*time.Hour, 100)
	if err == nil && len(stale) > 0 {
		s.Logger.Printf("refresh stored %d candidates, %d records still stale", stored, len(stale))
	} else {
		s.Logger.Printf("refresh stored %d candidates", stored)
	}
}

// isDue determines whether the refresh should run now given the cron spec and
// last run time. Supports "@daily", "@hourly", and standard 5-field cron
// expressions; invalid specs fall back to @daily.
func isDue(cronSpec string, last *time.Time) bool {
	now := time.Now()
	switch cronSpec {
	case "@daily":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= 24*time.Hour
	case "@hourly":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= time.Hour
	default:
		expr, err := cronexpr.Parse(cronSpec)
		if err != nil {
			if last == nil {
				return true
			}
			return now.Sub(*last) >= 24*time.Hour
		}
		if last == nil {
			return true
		}
		next := expr.Next(*last)
		return !next.After(now)
	}
}
