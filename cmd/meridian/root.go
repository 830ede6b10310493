package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "Meridian - loan underwriting decision engine",
	Long: `Meridian evaluates loan applications through a persistent eight-step
underwriting pipeline and records every decision in an append-only
audit log.

The pipeline combines three signals per application:
  - A policy rule catalogue with regulatory veto power
  - A probability-of-default score compared against decision thresholds
  - An advisory qualitative opinion, recorded but never decisive`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
