package session

import (
	"sort"
	"sync"
	"time"
)

// Status is the outcome of one test execution.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// Result records the outcome of one test against one page. PageURL is
// empty for session-scoped tests, which run once per audit.
type Result struct {
	TestID   string         `json:"test_id"`
	PageURL  string         `json:"page_url,omitempty"`
	Status   Status         `json:"status"`
	Details  map[string]any `json:"details,omitempty"`
	Duration time.Duration  `json:"duration"`
	Error    string         `json:"error,omitempty"`
}

// Key returns the store key for this result.
func (r Result) Key() string {
	return r.TestID + "\x00" + r.PageURL
}

// Store is a thread-safe collection of results. Runners from concurrently
// audited pages write into the same store.
type Store struct {
	mu      sync.RWMutex
	results map[string]Result
}

// NewStore creates an empty result store.
func NewStore() *Store {
	return &Store{results: make(map[string]Result)}
}

// Add records a result, replacing any previous result for the same
// (test, page) pair.
func (s *Store) Add(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.Key()] = r
}

// Get returns the result for a (test, page) pair. PageURL must be empty
// for session-scoped tests.
func (s *Store) Get(testID, pageURL string) (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[Result{TestID: testID, PageURL: pageURL}.Key()]
	return r, ok
}

// ByTest returns every result recorded for a test id, sorted by page URL.
func (s *Store) ByTest(testID string) []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Result
	for _, r := range s.results {
		if r.TestID == testID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PageURL < out[j].PageURL })
	return out
}

// All returns every result sorted by (test id, page URL) for deterministic
// reporting.
func (s *Store) All() []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Result, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TestID != out[j].TestID {
			return out[i].TestID < out[j].TestID
		}
		return out[i].PageURL < out[j].PageURL
	})
	return out
}

// Len returns the number of recorded results.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// CountByStatus tallies results per status.
func (s *Store) CountByStatus() map[Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[Status]int)
	for _, r := range s.results {
		counts[r.Status]++
	}
	return counts
}

// HasFindings reports whether any result failed, errored, or warned.
func (s *Store) HasFindings() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.results {
		switch r.Status {
		case StatusFailed, StatusError, StatusWarning:
			return true
		}
	}
	return false
}
