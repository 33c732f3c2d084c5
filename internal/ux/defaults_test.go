package ux

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathDefaults(t *testing.T) {
	pd := NewPathDefaults()
	assert.Equal(t, ".sitehawk", pd.OutputDir)
	assert.Equal(t, "sitehawk.yaml", pd.ConfigFile())
	assert.Equal(t, ".sitehawk", pd.SessionsDir())
}

func TestLatestSession(t *testing.T) {
	root := t.TempDir()
	pd := &PathDefaults{OutputDir: root}

	_, ok := pd.LatestSession()
	assert.False(t, ok)

	require.NoError(t, os.Mkdir(filepath.Join(root, "20260101-090000-aaaa1111"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "20260301-120000-bbbb2222"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "zz-not-a-dir.txt"), nil, 0o644))

	latest, ok := pd.LatestSession()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "20260301-120000-bbbb2222"), latest)
}

func TestValidateRequiredFile(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "sitehawk.yaml")
	require.NoError(t, os.WriteFile(existing, []byte("target: https://example.com\n"), 0o644))

	assert.NoError(t, ValidateRequiredFile(existing, "configuration", "sitehawk init"))

	err := ValidateRequiredFile(filepath.Join(dir, "missing.yaml"), "configuration", "sitehawk init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sitehawk init")
}
