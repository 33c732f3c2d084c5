// Package report renders and persists audit artifacts: the JSON results
// document, the XML sitemap, and the human-readable markdown report.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sitehawk/sitehawk/internal/crawl"
	"github.com/sitehawk/sitehawk/internal/errors"
	"github.com/sitehawk/sitehawk/internal/session"
)

// Results is the complete machine-readable record of one audit run.
type Results struct {
	SessionID   string           `json:"session_id"`
	Target      string           `json:"target"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
	Pages       []crawl.Page     `json:"pages"`
	Tests       []string         `json:"tests"`
	Results     []session.Result `json:"results"`
	Summary     map[string]int   `json:"summary"`
}

// BuildResults assembles the results document from a finished session.
func BuildResults(sess *session.Session, pages []crawl.Page, tests []string) *Results {
	counts := sess.Results.CountByStatus()
	summary := make(map[string]int, len(counts))
	for status, n := range counts {
		summary[string(status)] = n
	}

	return &Results{
		SessionID:   sess.ID,
		Target:      sess.Target,
		StartedAt:   sess.StartedAt,
		CompletedAt: time.Now(),
		Pages:       pages,
		Tests:       tests,
		Results:     sess.Results.All(),
		Summary:     summary,
	}
}

// SaveResults writes the results document as indented JSON.
func SaveResults(r *Results, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to marshal results", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewFileWriteError(path, err)
	}

	return nil
}

// LoadResults reads a previously saved results document.
func LoadResults(path string) (*Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, fmt.Sprintf("results file not found: %s", path))
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to read results file: %s", path), err)
	}

	var r Results
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to parse results file: %s", path), err)
	}

	return &r, nil
}
