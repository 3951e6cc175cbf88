package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gradscout/gradscout/config"
	"github.com/gradscout/gradscout/internal/assistant"
	"github.com/gradscout/gradscout/internal/cache"
	"github.com/gradscout/gradscout/internal/retriever"
	"github.com/gradscout/gradscout/internal/store"
	"github.com/gradscout/gradscout/internal/telemetry"
	"github.com/gradscout/gradscout/provider"
	"github.com/gradscout/gradscout/tools/web_search"
)

// askCMD runs a single query through the full pipeline and prints the answer.
func askCMD() *cobra.Command {
	var cfgPath string
	var ask = &cobra.Command{
		Use:   "ask [query]",
		Short: "Answer one query from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")

			logger := log.New(log.Writer(), "[ASK] ", log.LstdFlags)
			tel := telemetry.New(cfg.Telemetry)
			defer tel.Shutdown()

			var llm provider.Provider
			if cfg.LLM.APIKey != "" {
				llm, err = provider.NewProvider(cfg.LLM)
				if err != nil {
					return err
				}
			}

			ctx := context.Background()
			var retrievers []retriever.Retriever
			if dsn, err := cfg.Storage.Postgres.DSN(); err == nil {
				st, err := store.NewWithDSN(ctx, dsn)
				if err != nil {
					return err
				}
				defer st.Close()
				retrievers = append(retrievers, &retriever.StoreRetriever{Store: st})
			}
			if key := cfg.Sources.WebSearch.SerperAPIKey; key != "" {
				if s, err := web_search.NewWebSearcher(web_search.SerperProvider, key); err == nil {
					retrievers = append(retrievers, &retriever.WebRetriever{Searcher: s, MaxResults: cfg.Sources.WebSearch.MaxResults})
				}
			} else if key := cfg.Sources.WebSearch.BraveAPIKey; key != "" {
				if s, err := web_search.NewWebSearcher(web_search.BraveProvider, key); err == nil {
					retrievers = append(retrievers, &retriever.WebRetriever{Searcher: s, MaxResults: cfg.Sources.WebSearch.MaxResults})
				}
			}
			if len(retrievers) == 0 {
				return fmt.Errorf("no retrieval source configured (postgres or web search key)")
			}

			parser := assistant.NewQueryParser(llm, cfg.LLM.Model, tel, logger)
			composer := assistant.NewComposer(llm, cfg.LLM.Model, tel, logger)
			fanout := retriever.NewFanout(retrievers, cache.Noop{}, cfg.General.DefaultTimeout, logger)
			fanout.Telemetry = tel
			orch := assistant.NewOrchestrator(cfg, logger, tel, parser, fanout, composer)

			answer, err := orch.Answer(ctx, assistant.Query{Text: query, Timestamp: time.Now()})
			if err != nil {
				return err
			}

			fmt.Println(answer.Response)
			fmt.Println()
			for i, m := range answer.FacultyMatches {
				if i >= 5 {
					break
				}
				fmt.Printf("  %d. %s (%s) score=%.2f\n", i+1, m.Candidate.Name, m.Candidate.University, m.Score)
			}
			for i, m := range answer.ProgramMatches {
				if i >= 5 {
					break
				}
				fmt.Printf("  %d. %s (%s) score=%.2f\n", i+1, m.Candidate.Name, m.Candidate.University, m.Score)
			}
			fmt.Printf("\nintent=%s confidence=%.2f took=%s\n", answer.Intent, answer.ConfidenceScore, answer.ProcessingTime)
			return nil
		},
	}
	ask.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	return ask
}
