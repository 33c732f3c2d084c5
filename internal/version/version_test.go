package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetInfo(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	Version = "1.0.0"
	Commit = "abc123def456"
	Date = "2026-01-01T12:00:00Z"
	defer func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	}()

	info := GetInfo()

	assert.Equal(t, "1.0.0", info.Version)
	assert.Equal(t, "abc123def456", info.Commit)
	assert.Equal(t, "2026-01-01T12:00:00Z", info.Date)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:   "1.0.0",
		Commit:    "abc123def456",
		Date:      "2026-01-01",
		GoVersion: "go1.24.6",
		Platform:  "linux/amd64",
	}

	str := info.String()
	assert.Contains(t, str, "sitehawk 1.0.0")
	assert.Contains(t, str, "abc123de") // truncated commit
	assert.NotContains(t, str, "abc123def")
	assert.Contains(t, str, "built 2026-01-01")
	assert.Contains(t, str, "linux/amd64")
}

func TestInfoStringShortCommit(t *testing.T) {
	info := Info{Version: "dev", Commit: "abc"}
	assert.Contains(t, info.String(), "(abc)")
}

func TestInfoShort(t *testing.T) {
	assert.Equal(t, "1.0.0-rc1", Info{Version: "1.0.0-rc1"}.Short())
	assert.Equal(t, "dev", Info{Version: "dev"}.Short())
}

func TestDefaultValues(t *testing.T) {
	info := GetInfo()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.Commit)
	assert.NotEmpty(t, info.Date)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Platform)
}
