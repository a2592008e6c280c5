package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/white-rabbit/pkg/narrative"
	"github.com/jwebster45206/white-rabbit/pkg/prompts"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "validate",
		Short:         "Check narrative configuration and saved LLM completions",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newConfigCmd(), newResponseCmd())
	return root
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config <narrative.yaml>",
		Short: "Validate a narrative config file",
		Long: `Loads a YAML file overriding prompt templates and parse patterns, then
checks that every template renders and every pattern exposes the stage's field count.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := prompts.LoadConfig(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", args[0])
			return nil
		},
	}
}

func newResponseCmd() *cobra.Command {
	var (
		stage      string
		configPath string
	)
	cmd := &cobra.Command{
		Use:   "response --stage <initial|round|final> <completion.txt>",
		Short: "Parse a saved LLM completion and print the record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := narrative.ParseStage(stage)
			if err != nil {
				return err
			}
			cfg, err := prompts.LoadConfig(configPath)
			if err != nil {
				return err
			}
			patterns, err := cfg.PatternSet()
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read completion: %w", err)
			}
			rec, err := patterns.Parse(string(raw), s)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
	cmd.Flags().StringVar(&stage, "stage", "", "stage the completion was generated for")
	cmd.Flags().StringVar(&configPath, "config", "", "narrative config overriding the default patterns")
	_ = cmd.MarkFlagRequired("stage")
	return cmd
}
