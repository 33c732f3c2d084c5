package ux

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sitehawk/sitehawk/internal/config"
)

// PathDefaults provides smart defaults for common file paths
type PathDefaults struct {
	OutputDir string
}

// NewPathDefaults creates a new PathDefaults with sensible defaults
func NewPathDefaults() *PathDefaults {
	return &PathDefaults{
		OutputDir: ".sitehawk",
	}
}

// ConfigFile returns the default path to sitehawk.yaml
func (pd *PathDefaults) ConfigFile() string {
	return config.DefaultFileName
}

// SessionsDir returns the directory where audit sessions are written
func (pd *PathDefaults) SessionsDir() string {
	return pd.OutputDir
}

// LatestSession returns the most recent session directory, if any.
// Session directories sort lexically by their timestamp prefix.
func (pd *PathDefaults) LatestSession() (string, bool) {
	entries, err := os.ReadDir(pd.OutputDir)
	if err != nil {
		return "", false
	}

	latest := ""
	for _, entry := range entries {
		if entry.IsDir() && entry.Name() > latest {
			latest = entry.Name()
		}
	}
	if latest == "" {
		return "", false
	}
	return filepath.Join(pd.OutputDir, latest), true
}

// ValidateRequiredFile checks if a required file exists and provides helpful error
func ValidateRequiredFile(path string, fileType string, creationCommand string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%s not found at: %s\n\nRun '%s' to create it", fileType, path, creationCommand)
	} else if err != nil {
		return fmt.Errorf("error accessing %s: %w", path, err)
	}
	return nil
}

// SuggestNextSteps provides contextual next steps based on what exists
func SuggestNextSteps() string {
	defaults := NewPathDefaults()

	if _, err := os.Stat(defaults.ConfigFile()); os.IsNotExist(err) {
		return "Run 'sitehawk init' to set up your audit configuration"
	}

	if _, ok := defaults.LatestSession(); !ok {
		return "Run 'sitehawk audit' to audit your configured target"
	}

	return "Review your latest report under " + defaults.OutputDir
}
