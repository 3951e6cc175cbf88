package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/gradscout/gradscout/config"
	"github.com/gradscout/gradscout/internal/match"
	"github.com/gradscout/gradscout/internal/scrape"
	"github.com/gradscout/gradscout/internal/store"
)

// scrapeCMD runs one directory refresh and writes the results to Postgres.
func scrapeCMD() *cobra.Command {
	var cfgPath string
	var dryRun bool
	var sc = &cobra.Command{
		Use:   "scrape",
		Short: "Scrape configured faculty directories once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			logger := log.New(log.Writer(), "[SCRAPE] ", log.LstdFlags)
			scraper, err := scrape.NewScraper(cfg.Scrape, logger)
			if err != nil {
				return err
			}

			ctx := context.Background()
			candidates := scraper.ScrapeAll(ctx)
			if dryRun {
				for _, c := range candidates {
					fmt.Printf("%s\t%s\t%s\t%v\n", c.ID, c.Name, c.HiringStatus, c.ResearchAreas)
				}
				return nil
			}

			dsn, err := cfg.Storage.Postgres.DSN()
			if err != nil {
				return err
			}
			st, err := store.NewWithDSN(ctx, dsn)
			if err != nil {
				return err
			}
			defer st.Close()

			var stored int
			for _, c := range candidates {
				if c.Kind != match.KindFaculty {
					continue
				}
				if err := st.UpsertFaculty(ctx, c); err != nil {
					logger.Printf("upsert %s failed: %v", c.ID, err)
					continue
				}
				stored++
			}
			logger.Printf("stored %d of %d scraped candidates", stored, len(candidates))
			return nil
		},
	}
	sc.Flags().BoolVar(&dryRun, "dry-run", false, "print candidates instead of writing them")
	sc.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	return sc
}
