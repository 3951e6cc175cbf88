package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/gradscout/gradscout/config"
	"github.com/gradscout/gradscout/internal/match"
	"github.com/gradscout/gradscout/internal/store"
)

// programCatalog is the curated seed set for the programs table. Faculty rows
// come from the scraper, but program pages carry no scrapeable structure, so
// the directory starts from this catalog and upserts keep re-seeding safe.
var programCatalog = []match.Candidate{
	{
		Kind:                match.KindProgram,
		ID:                  "stanford:cs-phd",
		Name:                "Computer Science PhD",
		University:          "Stanford",
		Department:          "Computer Science",
		DegreeType:          "PhD",
		ResearchAreas:       []string{"artificial intelligence", "machine learning", "systems", "theory", "hci"},
		FundingAvailable:    true,
		AcceptanceRate:      floatPtr(0.06),
		ApplicationDeadline: "December 1",
		SourceURL:           "https://cs.stanford.edu/admissions/phd",
	},
	{
		Kind:                match.KindProgram,
		ID:                  "mit:eecs-phd",
		Name:                "Electrical Engineering and Computer Science PhD",
		University:          "MIT",
		Department:          "EECS",
		DegreeType:          "PhD",
		ResearchAreas:       []string{"artificial intelligence", "robotics", "systems", "theory"},
		FundingAvailable:    true,
		AcceptanceRate:      floatPtr(0.08),
		ApplicationDeadline: "December 15",
		SourceURL:           "https://www.eecs.mit.edu/academics/graduate-programs",
	},
	{
		Kind:                match.KindProgram,
		ID:                  "cmu:ml-ms",
		Name:                "Machine Learning MS",
		University:          "CMU",
		Department:          "Machine Learning Department",
		DegreeType:          "MS",
		ResearchAreas:       []string{"machine learning", "artificial intelligence"},
		FundingAvailable:    false,
		AcceptanceRate:      floatPtr(0.12),
		ApplicationDeadline: "December 11",
		SourceURL:           "https://www.ml.cmu.edu/academics/primary-ms-machine-learning-masters.html",
	},
	{
		Kind:                match.KindProgram,
		ID:                  "berkeley:cs-phd",
		Name:                "Computer Science PhD",
		University:          "UC Berkeley",
		Department:          "EECS",
		DegreeType:          "PhD",
		ResearchAreas:       []string{"artificial intelligence", "computer vision", "security", "databases"},
		FundingAvailable:    true,
		AcceptanceRate:      floatPtr(0.09),
		ApplicationDeadline: "December 8",
		SourceURL:           "https://eecs.berkeley.edu/academics/graduate/research-programs/admissions",
	},
}

// seedCMD loads the built-in program catalog into Postgres.
func seedCMD() *cobra.Command {
	var cfgPath string
	var sc = &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in program catalog into the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			logger := log.New(log.Writer(), "[SEED] ", log.LstdFlags)

			ctx := context.Background()
			dsn, err := cfg.Storage.Postgres.DSN()
			if err != nil {
				return err
			}
			st, err := store.NewWithDSN(ctx, dsn)
			if err != nil {
				return err
			}
			defer st.Close()

			stored := seedPrograms(ctx, st, logger)
			logger.Printf("stored %d of %d catalog programs", stored, len(programCatalog))
			return nil
		},
	}
	sc.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	return sc
}

func seedPrograms(ctx context.Context, st *store.Store, logger *log.Logger) int {
	var stored int
	for _, c := range programCatalog {
		if err := st.UpsertProgram(ctx, c); err != nil {
			logger.Printf("upsert %s failed: %v", c.ID, err)
			continue
		}
		stored++
	}
	return stored
}

func floatPtr(f float64) *float64 { return &f }
