package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitehawk/sitehawk/internal/audit"
	"github.com/sitehawk/sitehawk/internal/browser"
	"github.com/sitehawk/sitehawk/internal/session"
	"github.com/sitehawk/sitehawk/internal/tui"
	"github.com/sitehawk/sitehawk/internal/ux"
)

var auditCmd = &cobra.Command{
	Use:   "audit [url]",
	Short: "Run the configured audit tests against a website",
	Long: `Run the audit: crawl the target site (or just the target page with
--no-crawl), execute the selected tests phase by phase, and write all
artifacts into a new session directory under the output directory.

The target URL comes from the configuration file or the positional
argument; the argument wins when both are given.

Exit code 4 means the audit itself succeeded but produced failing checks.`,
	Example: `  sitehawk audit https://example.com
  sitehawk audit --tests robots-audit,link-check,content-scrape
  sitehawk audit --no-crawl --format json https://example.com/pricing`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAudit,
}

var auditFormat string

func init() {
	auditCmd.Flags().StringSlice("tests", nil, "comma-separated test ids to run (default: all)")
	auditCmd.Flags().Bool("no-crawl", false, "audit only the target page, skip crawling")
	auditCmd.Flags().Int("max-pages", 0, "maximum number of pages to crawl")
	auditCmd.Flags().Int("max-depth", 0, "maximum crawl depth from the target")
	auditCmd.Flags().Int("concurrency", 0, "override the scheduler's page concurrency")
	auditCmd.Flags().String("output", "", "output directory for session artifacts")
	auditCmd.Flags().Duration("timeout", 0, "per-test timeout")
	auditCmd.Flags().Bool("headed", false, "run the browser with a visible window")
	auditCmd.Flags().StringVar(&auditFormat, "format", "text", "output format (text, json)")

	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := resolveConfig(cmd, args, true)
	if err != nil {
		return ux.EnhanceError(err)
	}

	driver, err := browser.NewChromeDriver(ctx, browser.Options{Headless: cfg.Headless})
	if err != nil {
		return ux.EnhanceError(err)
	}
	defer driver.Close()

	orchestrator := audit.New(cfg, driver)
	results, err := orchestrator.Run(ctx)
	if err != nil {
		return ux.EnhanceError(err)
	}

	switch auditFormat {
	case "json":
		formatter, err := ux.NewFormatter("json", &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
		if err != nil {
			return err
		}
		if err := formatter.Format(results); err != nil {
			return err
		}
	default:
		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderAuditSummary(results, tui.DefaultStyles()))

		paths := &ux.PathDefaults{OutputDir: cfg.OutputDir}
		if dir, ok := paths.LatestSession(); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Artifacts: %s\n", dir)
		}
	}

	failed := results.Summary[string(session.StatusFailed)]
	errored := results.Summary[string(session.StatusError)]
	if failed+errored > 0 {
		return fmt.Errorf("audit completed with failing checks: %d failed, %d errored", failed, errored)
	}

	return nil
}
