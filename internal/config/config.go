// Package config loads and validates the sitehawk.yaml audit configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sitehawk/sitehawk/internal/errors"
)

// DefaultFileName is the configuration file sitehawk looks for in the
// working directory.
const DefaultFileName = "sitehawk.yaml"

// Duration wraps time.Duration so YAML configs can use human-readable
// values like "30s" or "2m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the top-level audit configuration.
type Config struct {
	// Target is the root URL of the site to audit.
	Target string `yaml:"target"`

	// Tests is the list of enabled test ids. Empty means all registered
	// tests.
	Tests []string `yaml:"tests,omitempty"`

	// Crawl controls multi-page discovery.
	Crawl CrawlConfig `yaml:"crawl"`

	// OutputDir is where session directories are created.
	OutputDir string `yaml:"output_dir"`

	// Concurrency overrides the scheduler's recommended page concurrency
	// when greater than zero.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Timeout bounds a single page navigation.
	Timeout Duration `yaml:"timeout"`

	// Headless controls whether the browser runs without a window.
	Headless bool `yaml:"headless"`

	// Log configures logging output.
	Log LogConfig `yaml:"log"`
}

// CrawlConfig controls page discovery.
type CrawlConfig struct {
	Enabled  bool `yaml:"enabled"`
	MaxPages int  `yaml:"max_pages"`
	MaxDepth int  `yaml:"max_depth"`
}

// LogConfig configures the logger from the config file.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Crawl: CrawlConfig{
			Enabled:  true,
			MaxPages: 25,
			MaxDepth: 3,
		},
		OutputDir: ".sitehawk",
		Timeout:   Duration(30 * time.Second),
		Headless:  true,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a Config from a YAML file, applies defaults for unset fields,
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to read config: %s", path), err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigUnmarshal, fmt.Sprintf("failed to parse YAML config: %s", path), err).
			WithSuggestion("Check the file for YAML syntax errors").
			WithSuggestion("Run 'sitehawk init' to regenerate a valid configuration")
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the Config to a YAML file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "failed to marshal config", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.NewFileWriteError(path, err)
	}

	return nil
}

// Validate checks the configuration for consistency. Test ids are not
// resolved here; the scheduler rejects unknown ids during pre-flight so the
// error can list every offender in one batch.
func (c *Config) Validate() error {
	if c.Target == "" {
		return errors.New(errors.ErrCodeConfigNoTarget, "no target URL configured").
			WithSuggestion("Set 'target' in sitehawk.yaml").
			WithSuggestion("Or pass the URL directly: 'sitehawk audit https://example.com'")
	}

	parsed, err := url.Parse(c.Target)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errors.NewConfigInvalidError(fmt.Sprintf("target %q is not an absolute URL", c.Target)).
			WithSuggestion("Use a fully qualified URL, e.g. https://example.com")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.NewConfigInvalidError(fmt.Sprintf("unsupported URL scheme %q", parsed.Scheme))
	}

	if c.Crawl.Enabled && c.Crawl.MaxPages < 1 {
		return errors.NewConfigInvalidError("crawl.max_pages must be at least 1 when crawling is enabled")
	}
	if c.Crawl.MaxDepth < 0 {
		return errors.NewConfigInvalidError("crawl.max_depth must not be negative")
	}
	if c.Concurrency < 0 {
		return errors.NewConfigInvalidError("concurrency must not be negative")
	}
	if c.Timeout <= 0 {
		return errors.NewConfigInvalidError("timeout must be positive")
	}

	return nil
}

// ExpectedPages returns the number of pages an audit is expected to visit,
// used for duration estimation.
func (c *Config) ExpectedPages() int {
	if !c.Crawl.Enabled {
		return 1
	}
	return c.Crawl.MaxPages
}

func (c *Config) applyDefaults() {
	defaults := Default()
	if c.OutputDir == "" {
		c.OutputDir = defaults.OutputDir
	}
	if c.Timeout == 0 {
		c.Timeout = defaults.Timeout
	}
	if c.Crawl.MaxPages == 0 {
		c.Crawl.MaxPages = defaults.Crawl.MaxPages
	}
	if c.Crawl.MaxDepth == 0 {
		c.Crawl.MaxDepth = defaults.Crawl.MaxDepth
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}
