package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/job-similarity/internal/catalog"
	"github.com/jonathan/job-similarity/internal/config"
	"github.com/jonathan/job-similarity/internal/db"
	"github.com/jonathan/job-similarity/internal/types"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a job catalog into PostgreSQL",
	Long:  "Applies the database schema and upserts every company and job posting from a JSON catalog.",
	RunE:  runImport,
}

var importCatalog string

func init() {
	importCmd.Flags().StringVarP(&importCatalog, "catalog", "c", "", "Path to job catalog JSON file (required)")
	if err := importCmd.MarkFlagRequired("catalog"); err != nil {
		panic(fmt.Sprintf("failed to mark catalog flag as required: %v", err))
	}
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or database.url is required")
	}

	cat, err := catalog.Load(importCatalog)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := db.Connect(ctx, db.PoolConfig{URL: cfg.Database.URL, MaxConns: cfg.Database.MaxConns, MinConns: cfg.Database.MinConns})
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	jobs := cat.All()
	companies := companiesOf(jobs)
	for id, job := range companies {
		if err := store.UpsertCompany(ctx, id, job.CompanyName, job.Company); err != nil {
			return fmt.Errorf("company %s: %w", id, err)
		}
	}
	for i := range jobs {
		if err := store.UpsertJob(ctx, &jobs[i]); err != nil {
			return fmt.Errorf("job %s: %w", jobs[i].ID, err)
		}
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d job(s) from %d company(ies)\n", len(jobs), len(companies))
	return nil
}

// companiesOf picks one posting per company id to carry its name and details.
// Later postings with company details win over earlier ones without.
func companiesOf(jobs []types.JobRecord) map[uuid.UUID]*types.JobRecord {
	out := make(map[uuid.UUID]*types.JobRecord)
	for i := range jobs {
		job := &jobs[i]
		if job.CompanyID == uuid.Nil {
			continue
		}
		if prev, ok := out[job.CompanyID]; ok && (prev.Company != nil || job.Company == nil) {
			continue
		}
		out[job.CompanyID] = job
	}
	return out
}
