package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/gradscout/gradscout/config"
	"github.com/gradscout/gradscout/internal/assistant"
	"github.com/gradscout/gradscout/internal/cache"
	"github.com/gradscout/gradscout/internal/index"
	"github.com/gradscout/gradscout/internal/retriever"
	"github.com/gradscout/gradscout/internal/runtime"
	"github.com/gradscout/gradscout/internal/scrape"
	"github.com/gradscout/gradscout/internal/store"
	"github.com/gradscout/gradscout/internal/telemetry"
	"github.com/gradscout/gradscout/provider"
	"github.com/gradscout/gradscout/tools/web_search"
)

// Run builds every dependency from config and serves the API until the
// process exits. addr overrides the configured listen address when non-empty.
func Run(addr string, cfgPath string) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, HTTPError{Error: msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	registerDocs(e)

	ctx := context.Background()

	dsn, err := cfg.Storage.Postgres.DSN()
	if err != nil {
		return err
	}
	if err := Migrate("file://migrations", dsn, "up", 0); err != nil {
		baseLogger.Printf("migrate: %v", err)
	}
	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return err
	}

	tel := telemetry.New(cfg.Telemetry)
	e.GET("/metrics", echo.WrapHandler(tel.Handler()))

	// LLM provider is optional; the parser and composer fall back to the
	// deterministic keyword paths without it.
	var llm provider.Provider
	if cfg.LLM.APIKey != "" {
		llm, err = provider.NewProvider(cfg.LLM)
		if err != nil {
			return err
		}
	}

	orchLogger := log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	parser := assistant.NewQueryParser(llm, cfg.LLM.Model, tel, orchLogger)
	composer := assistant.NewComposer(llm, cfg.LLM.Model, tel, orchLogger)

	// Retrieval fanout: persistent store always, web discovery when a search
	// key is configured.
	retrievers := []retriever.Retriever{&retriever.StoreRetriever{Store: st}}
	if searcher := buildWebSearcher(cfg.Sources.WebSearch); searcher != nil {
		retrievers = append(retrievers, &retriever.WebRetriever{
			Searcher:   searcher,
			MaxResults: cfg.Sources.WebSearch.MaxResults,
		})
	}

	var rdb *redis.Client
	var retrievalCache cache.Cache = cache.Noop{}
	if cfg.Storage.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr(),
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed (%s): %w", cfg.Storage.Redis.Addr(), err)
		}
		retrievalCache = cache.NewRedisCache(cfg.Storage.Redis.Addr(), cfg.Storage.Redis.Password, cfg.Storage.Redis.DB, cfg.Storage.Redis.TTL)
	}

	fanout := retriever.NewFanout(retrievers, retrievalCache, cfg.General.DefaultTimeout, orchLogger)
	fanout.Telemetry = tel
	orch := assistant.NewOrchestrator(cfg, orchLogger, tel, parser, fanout, composer)

	secret, err := runtime.LoadJWTSecret(cfg)
	if err != nil {
		return err
	}
	auth, err := initAuth(ctx, st, secret)
	if err != nil {
		return err
	}

	idx, err := index.New()
	if err != nil {
		return err
	}

	api := e.Group("/api")
	auth.Register(api.Group("/auth"))

	me := api.Group("/me")
	me.Use(runtime.EchoAuthMiddleware(secret))
	me.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, MeResponse{UserID: c.Get("user_id").(string)})
	})

	ch := &ChatHandler{Store: st, Orch: orch}
	ch.Register(api.Group("/chat"), secret)

	dh := &DirectoryHandler{Store: st, Index: idx}
	dh.Register(api, secret)

	if cfg.Scrape.Enabled {
		scraper, err := scrape.NewScraper(cfg.Scrape, log.New(log.Writer(), "[SCRAPE] ", log.LstdFlags))
		if err != nil {
			return err
		}
		sched := &Scheduler{
			Store:    st,
			Scraper:  scraper,
			Index:    idx,
			Rdb:      rdb,
			CronSpec: cfg.Scrape.RefreshCron,
			Stop:     make(chan struct{}),
		}
		sched.Start()
	}

	if addr == "" {
		addr = cfg.Server.Listen
		if addr != "" && addr[0] != ':' {
			addr = ":" + addr
		}
		if addr == "" {
			addr = ":10001"
		}
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// buildWebSearcher picks a search provider from configured keys, Serper first.
func buildWebSearcher(cfg config.WebSearchConfig) web_search.WebSearcher {
	if cfg.SerperAPIKey != "" {
		if s, err := web_search.NewWebSearcher(web_search.SerperProvider, cfg.SerperAPIKey); err == nil {
			return s
		}
	}
	if cfg.BraveAPIKey != "" {
		if s, err := web_search.NewWebSearcher(web_search.BraveProvider, cfg.BraveAPIKey); err == nil {
			return s
		}
	}
	return nil
}
