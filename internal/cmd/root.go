// Package cmd wires the sitehawk CLI commands.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sitehawk/sitehawk/internal/config"
	"github.com/sitehawk/sitehawk/internal/errors"
	"github.com/sitehawk/sitehawk/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "sitehawk",
	Short: "Website auditing from the command line",
	Long: `sitehawk crawls a website with a headless browser and runs a phased
suite of audit tests against it: sitemap generation, robots.txt checks,
screenshots, content scraping, performance timing, accessibility scanning,
SEO analysis, and link health.

Results are written as a machine-readable results.json and a human-readable
markdown report into a per-run session directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	cfgPath   string
	logLevel  string
	logFormat string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultFileName, "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// resolveConfig loads the configuration file when present, falls back to
// defaults otherwise, and applies the positional target and command-line
// overrides on top. Validation runs only when a target is required.
func resolveConfig(cmd *cobra.Command, args []string, requireTarget bool) (*config.Config, error) {
	cfg := config.Default()

	if _, err := os.Stat(cfgPath); err == nil {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if cfgPath != config.DefaultFileName {
		// An explicitly requested config file must exist.
		return nil, errors.NewConfigNotFoundError(cfgPath)
	}

	if len(args) > 0 {
		cfg.Target = args[0]
	}

	applyOverride(cmd, "tests", func() { cfg.Tests, _ = cmd.Flags().GetStringSlice("tests") })
	applyOverride(cmd, "no-crawl", func() {
		noCrawl, _ := cmd.Flags().GetBool("no-crawl")
		cfg.Crawl.Enabled = !noCrawl
	})
	applyOverride(cmd, "max-pages", func() { cfg.Crawl.MaxPages, _ = cmd.Flags().GetInt("max-pages") })
	applyOverride(cmd, "max-depth", func() { cfg.Crawl.MaxDepth, _ = cmd.Flags().GetInt("max-depth") })
	applyOverride(cmd, "concurrency", func() { cfg.Concurrency, _ = cmd.Flags().GetInt("concurrency") })
	applyOverride(cmd, "output", func() { cfg.OutputDir, _ = cmd.Flags().GetString("output") })
	applyOverride(cmd, "timeout", func() {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		cfg.Timeout = config.Duration(timeout)
	})
	applyOverride(cmd, "headed", func() {
		headed, _ := cmd.Flags().GetBool("headed")
		cfg.Headless = !headed
	})

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	if requireTarget {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	configureLogging(cfg)

	return cfg, nil
}

func applyOverride(cmd *cobra.Command, flag string, apply func()) {
	if cmd.Flags().Lookup(flag) != nil && cmd.Flags().Changed(flag) {
		apply()
	}
}

func configureLogging(cfg *config.Config) {
	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.Log.Level)
	logCfg.Format = log.ParseFormat(cfg.Log.Format)
	log.SetDefaultLogger(log.New(logCfg))
}
