package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/job-similarity/internal/catalog"
	"github.com/jonathan/job-similarity/internal/config"
	"github.com/jonathan/job-similarity/internal/logging"
	"github.com/jonathan/job-similarity/internal/schemas"
	"github.com/jonathan/job-similarity/internal/types"
	"github.com/spf13/cobra"
)

var similarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Recommend similar jobs from an offline catalog",
	Long:  "Loads a JSON job catalog, runs the recommendation engine for one reference job and writes the response as JSON.",
	RunE:  runSimilar,
}

var (
	similarCatalog string
	similarJob     string
	similarLimit   int
	similarDebug   bool
	similarOutput  string
	similarSchema  string
)

func init() {
	similarCmd.Flags().StringVarP(&similarCatalog, "catalog", "c", "", "Path to job catalog JSON file (required)")
	similarCmd.Flags().StringVarP(&similarJob, "job", "j", "", "Reference job ID (required)")
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", 0, "Number of results (clamped to the configured maximum)")
	similarCmd.Flags().BoolVar(&similarDebug, "debug", false, "Include per-factor scores and a step trace")
	similarCmd.Flags().StringVarP(&similarOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	similarCmd.Flags().StringVar(&similarSchema, "schema", "", "Validate the catalog against this JSON schema before loading")

	if err := similarCmd.MarkFlagRequired("catalog"); err != nil {
		panic(fmt.Sprintf("failed to mark catalog flag as required: %v", err))
	}
	if err := similarCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}

	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(similarCatalog); os.IsNotExist(err) {
		return fmt.Errorf("catalog file not found: %s", similarCatalog)
	}

	if similarSchema != "" {
		schemaPath := schemas.ResolveSchemaPath(similarSchema)
		if schemaPath == "" {
			return fmt.Errorf("schema file not found: %s", similarSchema)
		}
		if err := schemas.ValidateJSON(schemaPath, similarCatalog); err != nil {
			var validationErr *schemas.ValidationError
			if errors.As(err, &validationErr) {
				return fmt.Errorf("catalog does not match schema: %w", err)
			}
			return fmt.Errorf("failed to validate catalog: %w", err)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cat, err := catalog.Load(similarCatalog)
	if err != nil {
		return err
	}

	// The offline catalog cannot fail like a network store, so no breaker.
	cfg.Breaker.Enabled = false
	engine, _, err := buildEngine(cfg, cat, logger)
	if err != nil {
		return err
	}

	resp, err := engine.Recommend(cmd.Context(), types.SimilarJobsRequest{
		ReferenceJobID: similarJob,
		Limit:          types.ClampLimit(similarLimit, cfg.Engine.DefaultLimit, cfg.Engine.MaxLimit),
		Debug:          similarDebug,
	})
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response to JSON: %w", err)
	}

	if similarOutput == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
		return err
	}

	outputDir := filepath.Dir(similarOutput)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(similarOutput, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Found %d similar job(s) out of %d considered\n", resp.Metadata.Returned, resp.Metadata.TotalConsidered)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", similarOutput)
	return nil
}
