// Package session manages the lifecycle of a single audit run: a unique
// run identity, the on-disk artifact layout, and the shared result store
// that test runners write into.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sitehawk/sitehawk/internal/errors"
)

// Session identifies one audit run and owns its artifact directory.
type Session struct {
	// ID is the unique identifier for this run.
	ID string `json:"id"`

	// Target is the root URL the audit runs against.
	Target string `json:"target"`

	// StartedAt is the wall-clock start of the run.
	StartedAt time.Time `json:"started_at"`

	// Dir is the root artifact directory for this run.
	Dir string `json:"dir"`

	// Results collects test outcomes as runners produce them.
	Results *Store `json:"-"`
}

// Artifact subdirectories inside a session directory.
const (
	ScreenshotsDir = "screenshots"
	ReportsDir     = "reports"
	DataDir        = "data"
)

// New creates a session rooted under outputDir. The session directory is
// named after the start timestamp plus a short id suffix so concurrent
// runs never collide, and the artifact subdirectories are created up
// front.
func New(outputDir, target string) (*Session, error) {
	id := uuid.NewString()
	started := time.Now()

	dir := filepath.Join(outputDir, fmt.Sprintf("%s-%s", started.Format("20060102-150405"), id[:8]))
	for _, sub := range []string{ScreenshotsDir, ReportsDir, DataDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("failed to create session directory: %s", dir), err)
		}
	}

	return &Session{
		ID:        id,
		Target:    target,
		StartedAt: started,
		Dir:       dir,
		Results:   NewStore(),
	}, nil
}

// ScreenshotPath returns the path for a named screenshot artifact.
func (s *Session) ScreenshotPath(name string) string {
	return filepath.Join(s.Dir, ScreenshotsDir, name)
}

// ReportPath returns the path for a named report artifact.
func (s *Session) ReportPath(name string) string {
	return filepath.Join(s.Dir, ReportsDir, name)
}

// DataPath returns the path for a named data artifact.
func (s *Session) DataPath(name string) string {
	return filepath.Join(s.Dir, DataDir, name)
}
