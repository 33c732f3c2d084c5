package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitehawk/sitehawk/internal/audit"
	"github.com/sitehawk/sitehawk/internal/tui"
	"github.com/sitehawk/sitehawk/internal/ux"
)

var planCmd = &cobra.Command{
	Use:   "plan [url]",
	Short: "Preview the execution strategy without running anything",
	Long: `Compute and display the execution strategy for the configured test
selection: the phases, their ordering, session versus per-page tests, the
recommended concurrency, and a duration estimate.

The plan never touches the network or starts a browser.`,
	Example: `  sitehawk plan
  sitehawk plan --tests screenshot-desktop,screenshot-mobile,performance-timing
  sitehawk plan --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

var planFormat string

func init() {
	planCmd.Flags().StringSlice("tests", nil, "comma-separated test ids to plan (default: all)")
	planCmd.Flags().Bool("no-crawl", false, "plan for a single-page audit")
	planCmd.Flags().Int("max-pages", 0, "page budget used for duration estimates")
	planCmd.Flags().StringVar(&planFormat, "format", "text", "output format (text, json, yaml)")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args, false)
	if err != nil {
		return ux.EnhanceError(err)
	}

	orchestrator := audit.New(cfg, nil)
	strategy, ordered, err := orchestrator.Plan()
	if err != nil {
		return ux.EnhanceError(err)
	}

	switch planFormat {
	case "json", "yaml":
		formatter, err := ux.NewFormatter(planFormat, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
		if err != nil {
			return err
		}
		return formatter.Format(strategy)
	default:
		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderStrategy(strategy, orchestrator.Scheduler(), tui.DefaultStyles()))
		fmt.Fprintf(cmd.OutOrStdout(), "Run order: %v\n", ordered)
		fmt.Fprintln(cmd.OutOrStdout(), ux.SuggestNextSteps())
	}

	return nil
}
