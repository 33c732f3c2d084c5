package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sitehawk/sitehawk/internal/config"
	"github.com/sitehawk/sitehawk/internal/schedule"
	"github.com/sitehawk/sitehawk/internal/tui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sitehawk.yaml configuration",
	Long: `Create a configuration file. In a terminal this walks through an
interactive setup; with --target (or outside a terminal) it writes the
defaults non-interactively.`,
	Example: `  sitehawk init
  sitehawk init --target https://example.com --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	initTarget string
	initForce  bool
)

func init() {
	initCmd.Flags().StringVar(&initTarget, "target", "", "target URL to write into the configuration")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration file")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}

	cfg := config.Default()
	cfg.Target = initTarget

	if initTarget == "" && tui.ShouldPrompt() {
		if err := interactiveSetup(cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg, cfgPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n\nNext: run 'sitehawk audit' to audit %s\n", cfgPath, cfg.Target)
	return nil
}

func interactiveSetup(cfg *config.Config) error {
	target, err := tui.PromptForString(tui.Prompt{
		Message:     "Which site should sitehawk audit?",
		Placeholder: "https://example.com",
		Required:    true,
	})
	if err != nil {
		return err
	}
	cfg.Target = target

	crawl, err := tui.PromptForConfirmation(
		fmt.Sprintf("Crawl the whole site (up to %d pages)?", cfg.Crawl.MaxPages), true)
	if err != nil {
		return err
	}
	cfg.Crawl.Enabled = crawl

	all := schedule.DefaultRegistry().IDs()
	selected, err := tui.PromptForMultiSelect("Which tests should run?", all, all)
	if err != nil {
		return err
	}
	// The full selection is the default; keep the config terse in that case.
	if len(selected) != len(all) {
		cfg.Tests = selected
	}

	return nil
}
