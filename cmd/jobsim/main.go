// Package main provides the jobsim CLI: the similar-jobs HTTP server and offline tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "jobsim",
	Short:        "Job similarity recommendation engine",
	Long:         "jobsim recommends job postings similar to a reference posting, either over HTTP backed by PostgreSQL or offline from a JSON catalog.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML or JSON config file (optional)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
