package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/jonathan/job-similarity/internal/config"
	"github.com/jonathan/job-similarity/internal/ranking"
	"github.com/spf13/cobra"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Print the effective factor weight table",
	Long:  "Loads configuration, validates the factor weights and prints them with their total.",
	RunE:  runWeights,
}

func init() {
	rootCmd.AddCommand(weightsCmd)
}

func runWeights(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	table, err := cfg.WeightTable()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "FACTOR\tWEIGHT")
	for _, f := range ranking.Factors {
		_, _ = fmt.Fprintf(tw, "%s\t%.2f\n", f, table.Weight(f))
	}
	_, _ = fmt.Fprintf(tw, "total\t%.2f\n", table.Sum())
	return tw.Flush()
}
