package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"analytica-hq/meridian/pkg/rules"
	"analytica-hq/meridian/pkg/rules/source"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate rule catalogues",
}

var rulesValidateFlags struct {
	path string
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a rule catalogue file or directory",
	Long: `Validate a rule catalogue without starting the engine.

Exits non-zero when the catalogue fails to parse or validate, so the
command can gate catalogue changes in CI.

Examples:
  meridian rules validate --path rules.yaml
  meridian rules validate --path /etc/meridian/rules/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rulesValidateFlags.path == "" {
			return fmt.Errorf("--path is required")
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		src := source.NewFileSource(rulesValidateFlags.path, logger)
		rs, err := src.Load(context.Background())
		if err != nil {
			return err
		}
		if err := rs.Validate(); err != nil {
			return err
		}
		fmt.Printf("catalogue %q (version %s) is valid: %d rules\n", rs.Name, rs.Version, rs.Len())
		return nil
	},
}

var rulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the built-in catalogue as YAML",
	Long: `Print the built-in rule catalogue in the file format the engine
loads, as a starting point for a custom catalogue.

Rules backed by custom predicates cannot be expressed in YAML and are
listed on stderr instead of exported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		full := rules.DefaultRuleSet()
		exportable := &rules.RuleSet{Version: full.Version, Name: full.Name}
		for _, r := range full.Rules {
			if r.Custom != nil {
				fmt.Fprintf(os.Stderr, "skipping %s: custom predicate cannot be serialized\n", r.ID)
				continue
			}
			exportable.Rules = append(exportable.Rules, r)
		}
		data, err := rules.MarshalRuleSet(exportable)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
	rulesCmd.AddCommand(rulesExportCmd)

	rulesValidateCmd.Flags().StringVarP(&rulesValidateFlags.path, "path", "p", "", "catalogue file or directory")
}
