package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitehawk/sitehawk/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
target: https://example.com
tests:
  - sitemap-generate
  - screenshot-desktop
crawl:
  enabled: true
  max_pages: 10
  max_depth: 2
timeout: 45s
headless: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", cfg.Target)
	assert.Equal(t, []string{"sitemap-generate", "screenshot-desktop"}, cfg.Tests)
	assert.Equal(t, 10, cfg.Crawl.MaxPages)
	assert.Equal(t, 45*time.Second, cfg.Timeout.Std())
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
target: https://example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, defaults.OutputDir, cfg.OutputDir)
	assert.Equal(t, defaults.Timeout, cfg.Timeout)
	assert.Equal(t, defaults.Crawl.MaxPages, cfg.Crawl.MaxPages)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Tests, "empty test list means all registered tests")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var auditErr *errors.AuditError
	require.ErrorAs(t, err, &auditErr)
	assert.Equal(t, errors.ErrCodeConfigNotFound, auditErr.Code)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "target: [unclosed")

	_, err := Load(path)
	require.Error(t, err)

	var auditErr *errors.AuditError
	require.ErrorAs(t, err, &auditErr)
	assert.Equal(t, errors.ErrCodeConfigUnmarshal, auditErr.Code)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantCode errors.ErrorCode
	}{
		{
			name:     "missing target",
			mutate:   func(c *Config) { c.Target = "" },
			wantCode: errors.ErrCodeConfigNoTarget,
		},
		{
			name:     "relative target",
			mutate:   func(c *Config) { c.Target = "/just/a/path" },
			wantCode: errors.ErrCodeConfigInvalid,
		},
		{
			name:     "bad scheme",
			mutate:   func(c *Config) { c.Target = "ftp://example.com" },
			wantCode: errors.ErrCodeConfigInvalid,
		},
		{
			name:     "zero max pages with crawl",
			mutate:   func(c *Config) { c.Crawl.MaxPages = 0 },
			wantCode: errors.ErrCodeConfigInvalid,
		},
		{
			name:     "negative concurrency",
			mutate:   func(c *Config) { c.Concurrency = -1 },
			wantCode: errors.ErrCodeConfigInvalid,
		},
		{
			name:     "zero timeout",
			mutate:   func(c *Config) { c.Timeout = 0 },
			wantCode: errors.ErrCodeConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Target = "https://example.com"
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var auditErr *errors.AuditError
			require.ErrorAs(t, err, &auditErr)
			assert.Equal(t, tt.wantCode, auditErr.Code)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Target = "https://example.com"
	cfg.Tests = []string{"content-scrape"}

	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Target, loaded.Target)
	assert.Equal(t, cfg.Tests, loaded.Tests)
}

func TestExpectedPages(t *testing.T) {
	cfg := Default()
	cfg.Crawl.Enabled = false
	assert.Equal(t, 1, cfg.ExpectedPages())

	cfg.Crawl.Enabled = true
	cfg.Crawl.MaxPages = 42
	assert.Equal(t, 42, cfg.ExpectedPages())
}
