// Package schedule computes ordered, concurrency-bounded execution
// strategies for audit test selections. It is purely a planning component:
// it never executes a test, touches the network, or holds state across
// calls. Every operation is a deterministic function over the immutable
// classification and phase registries and a caller-supplied selection.
package schedule

import (
	"sort"
	"time"

	"github.com/sitehawk/sitehawk/internal/errors"
)

const (
	// baselineConcurrency is the starting recommendation for concurrent
	// page slots before resource-intensity reductions.
	baselineConcurrency = 4

	// sessionTestCost is the display-only duration estimate for one
	// session-scope test.
	sessionTestCost = 5 * time.Second

	// pageTestCost is the display-only duration estimate for one
	// page-scope test against a single page.
	pageTestCost = 3 * time.Second

	// defaultExpectedPages is used for duration estimation when the caller
	// does not know the crawl budget yet.
	defaultExpectedPages = 10
)

// Scheduler plans test execution over the classification and phase
// registries. It is safe for concurrent use: all methods are read-only.
type Scheduler struct {
	registry      *Registry
	phases        *PhaseRegistry
	expectedPages int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithExpectedPages sets the page count used for duration estimation when
// crawling is enabled. It has no scheduling authority.
func WithExpectedPages(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.expectedPages = n
		}
	}
}

// NewScheduler creates a Scheduler over the given registries.
func NewScheduler(registry *Registry, phases *PhaseRegistry, opts ...Option) *Scheduler {
	s := &Scheduler{
		registry:      registry,
		phases:        phases,
		expectedPages: defaultExpectedPages,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDefaultScheduler creates a Scheduler over the builtin tables.
func NewDefaultScheduler(opts ...Option) *Scheduler {
	return NewScheduler(DefaultRegistry(), DefaultPhaseRegistry(), opts...)
}

// Registry returns the classification registry the scheduler plans over.
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// PhaseRegistry returns the phase registry the scheduler plans over.
func (s *Scheduler) PhaseRegistry() *PhaseRegistry {
	return s.phases
}

// OrganizeTestsIntoPhases turns a selection of test ids into an
// ExecutionStrategy. The selection is deduplicated defensively. Ids absent
// from the registry fail the whole call with a batch error listing every
// offending id. Phases absent from the selection are omitted from the
// strategy. crawlEnabled signals whether the run covers multiple discovered
// pages; a single-page run never gets page-level parallelism.
func (s *Scheduler) OrganizeTestsIntoPhases(selection []string, crawlEnabled bool) (*ExecutionStrategy, error) {
	ids, unknown := s.resolveSelection(selection)
	if len(unknown) > 0 {
		return nil, errors.NewUnknownTestsError(unknown)
	}

	byPhase := make(map[int][]TestClassification)
	for _, id := range ids {
		tc, _ := s.registry.Lookup(id)
		byPhase[tc.Phase] = append(byPhase[tc.Phase], tc)
	}

	phaseNumbers := make([]int, 0, len(byPhase))
	for phase := range byPhase {
		phaseNumbers = append(phaseNumbers, phase)
	}
	sort.Ints(phaseNumbers)

	pages := s.pageEstimate(crawlEnabled)

	strategy := &ExecutionStrategy{
		MaxConcurrentPages: 1,
	}

	for _, phase := range phaseNumbers {
		group := byPhase[phase]

		var sessionTests, pageTests []string
		for _, tc := range group {
			switch tc.Scope {
			case ScopeSession:
				sessionTests = append(sessionTests, tc.TestID)
			default:
				pageTests = append(pageTests, tc.TestID)
			}
		}
		s.sortByExecutionOrder(sessionTests)
		s.sortByExecutionOrder(pageTests)

		phaseIDs := testIDs(group)
		maxConcurrency := s.PhaseResourceRequirements(phase, phaseIDs).RecommendedConcurrency
		if !crawlEnabled {
			maxConcurrency = 1
		}
		if def, ok := s.phases.Lookup(phase); ok && !def.Parallelizable {
			maxConcurrency = 1
		}

		plan := PhaseExecutionPlan{
			Phase:             phase,
			SessionTests:      sessionTests,
			PageTests:         pageTests,
			MaxConcurrency:    maxConcurrency,
			EstimatedDuration: estimateDuration(group, pages),
		}

		strategy.Phases = append(strategy.Phases, plan)
		strategy.TotalEstimatedDuration += plan.EstimatedDuration
		if maxConcurrency > strategy.MaxConcurrentPages {
			strategy.MaxConcurrentPages = maxConcurrency
		}
	}

	strategy.ParallelPages = crawlEnabled && strategy.MaxConcurrentPages > 1

	return strategy, nil
}

// CanRunInParallel reports whether two tests may overlap in time. A test
// never runs in parallel with itself, with a declared conflict (checked in
// both directions), or across scopes where one side is session scope: a
// session test is a barrier for its phase because it typically establishes
// state the page tests depend on.
func (s *Scheduler) CanRunInParallel(idA, idB string) bool {
	if idA == idB {
		return false
	}

	a, okA := s.registry.Lookup(idA)
	b, okB := s.registry.Lookup(idB)
	if !okA || !okB {
		return false
	}

	if declaresConflict(a, idB) || declaresConflict(b, idA) {
		return false
	}

	if a.Scope != b.Scope && (a.Scope == ScopeSession || b.Scope == ScopeSession) {
		return false
	}

	return true
}

// ExecutionOrder sorts the given ids into the canonical flat run sequence:
// ascending by (phase, execution order, test id). The result is independent
// of input order; duplicates are removed. Ids unknown to the registry sort
// after all known ids, lexically.
func (s *Scheduler) ExecutionOrder(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, okA := s.registry.Lookup(out[i])
		b, okB := s.registry.Lookup(out[j])
		switch {
		case okA && !okB:
			return true
		case !okA && okB:
			return false
		case !okA && !okB:
			return out[i] < out[j]
		}
		if a.Phase != b.Phase {
			return a.Phase < b.Phase
		}
		if a.ExecutionOrder != b.ExecutionOrder {
			return a.ExecutionOrder < b.ExecutionOrder
		}
		return a.TestID < b.TestID
	})

	return out
}

// ValidateDependencies checks that every dependency of every id in the
// selection is itself part of the selection. It never fails: absent
// dependencies are a reportable result for the caller to act on.
func (s *Scheduler) ValidateDependencies(ids []string) DependencyReport {
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	missingSet := make(map[string]bool)
	for _, id := range ids {
		tc, ok := s.registry.Lookup(id)
		if !ok {
			continue
		}
		for _, dep := range tc.Dependencies {
			if !selected[dep] {
				missingSet[dep] = true
			}
		}
	}

	if len(missingSet) == 0 {
		return DependencyReport{Valid: true}
	}

	missing := make([]string, 0, len(missingSet))
	for dep := range missingSet {
		missing = append(missing, dep)
	}
	sort.Strings(missing)

	return DependencyReport{Valid: false, MissingDependencies: missing}
}

// PhaseResourceRequirements profiles the given ids restricted to one phase.
// Resource-intensive tests feed both the memory and CPU counters; each
// page-scope test counts as network-intensive since it implies a page
// navigation. The recommended concurrency starts at the baseline, drops by
// one per resource-intensive test, and collapses to one when any two tests
// in the set declare a conflict.
func (s *Scheduler) PhaseResourceRequirements(phase int, ids []string) ResourceRequirements {
	var inPhase []TestClassification
	for _, id := range ids {
		tc, ok := s.registry.Lookup(id)
		if ok && tc.Phase == phase {
			inPhase = append(inPhase, tc)
		}
	}

	req := ResourceRequirements{}
	for _, tc := range inPhase {
		if tc.ResourceIntensive {
			req.MemoryIntensive++
			req.CPUIntensive++
		}
		if tc.Scope == ScopePage {
			req.NetworkIntensive++
		}
	}

	req.RecommendedConcurrency = baselineConcurrency - req.MemoryIntensive
	if req.RecommendedConcurrency < 1 {
		req.RecommendedConcurrency = 1
	}

	if hasConflictPair(inPhase) {
		req.RecommendedConcurrency = 1
	}

	return req
}

// Summary builds the display projection for one phase of a selection.
func (s *Scheduler) Summary(phase int, ids []string) (PhaseSummary, bool) {
	def, ok := s.phases.Lookup(phase)
	if !ok {
		return PhaseSummary{}, false
	}

	summary := PhaseSummary{
		Phase:       phase,
		Name:        def.Name,
		Description: def.Description,
	}

	var inPhase []TestClassification
	for _, id := range ids {
		tc, ok := s.registry.Lookup(id)
		if !ok || tc.Phase != phase {
			continue
		}
		inPhase = append(inPhase, tc)
		if tc.Scope == ScopeSession {
			summary.SessionTestCount++
		} else {
			summary.PageTestCount++
		}
	}

	summary.EstimatedDuration = estimateDuration(inPhase, s.expectedPages)

	return summary, true
}

// resolveSelection deduplicates the selection preserving first occurrence
// and collects ids missing from the registry, sorted for deterministic
// error output.
func (s *Scheduler) resolveSelection(selection []string) (known, unknown []string) {
	seen := make(map[string]bool, len(selection))
	unknownSet := make(map[string]bool)

	for _, id := range selection {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := s.registry.Lookup(id); ok {
			known = append(known, id)
		} else {
			unknownSet[id] = true
		}
	}

	for id := range unknownSet {
		unknown = append(unknown, id)
	}
	sort.Strings(unknown)

	return known, unknown
}

func (s *Scheduler) sortByExecutionOrder(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, _ := s.registry.Lookup(ids[i])
		b, _ := s.registry.Lookup(ids[j])
		if a.ExecutionOrder != b.ExecutionOrder {
			return a.ExecutionOrder < b.ExecutionOrder
		}
		return a.TestID < b.TestID
	})
}

func (s *Scheduler) pageEstimate(crawlEnabled bool) int {
	if !crawlEnabled {
		return 1
	}
	return s.expectedPages
}

// estimateDuration assigns each test a fixed baseline cost by scope and
// sums them. Page tests scale with the number of pages the strategy
// expects to visit. Display heuristic only; it carries no scheduling
// authority.
func estimateDuration(tests []TestClassification, pages int) time.Duration {
	if pages < 1 {
		pages = 1
	}

	var total time.Duration
	for _, tc := range tests {
		switch tc.Scope {
		case ScopeSession:
			total += sessionTestCost
		case ScopePage:
			total += pageTestCost * time.Duration(pages)
		}
	}
	return total
}

func declaresConflict(tc TestClassification, id string) bool {
	for _, conflict := range tc.ConflictsWith {
		if conflict == id {
			return true
		}
	}
	return false
}

func hasConflictPair(tests []TestClassification) bool {
	inSet := make(map[string]bool, len(tests))
	for _, tc := range tests {
		inSet[tc.TestID] = true
	}
	for _, tc := range tests {
		for _, conflict := range tc.ConflictsWith {
			if inSet[conflict] {
				return true
			}
		}
	}
	return false
}

func testIDs(tests []TestClassification) []string {
	ids := make([]string, len(tests))
	for i, tc := range tests {
		ids[i] = tc.TestID
	}
	return ids
}
