package schedule

import "time"

// Scope describes how often a test runs during an audit.
type Scope string

const (
	// ScopeSession tests run once for the whole site run
	ScopeSession Scope = "session"
	// ScopePage tests run once per discovered page
	ScopePage Scope = "page"
)

// TestClassification holds the static scheduling metadata for one test id.
// Classifications are immutable once registered.
type TestClassification struct {
	TestID            string   `json:"test_id"`
	Phase             int      `json:"phase"`
	Scope             Scope    `json:"scope"`
	ExecutionOrder    int      `json:"execution_order"`
	Dependencies      []string `json:"dependencies,omitempty"`
	ConflictsWith     []string `json:"conflicts_with,omitempty"`
	ResourceIntensive bool     `json:"resource_intensive"`
}

// PhaseDefinition describes one of the fixed audit phases.
type PhaseDefinition struct {
	Phase          int    `json:"phase"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Scope          Scope  `json:"scope"`
	Dependencies   []int  `json:"dependencies,omitempty"`
	Parallelizable bool   `json:"parallelizable"`
}

// PhaseExecutionPlan is the computed plan for a single phase.
// SessionTests always run to completion before PageTests begin.
type PhaseExecutionPlan struct {
	Phase             int           `json:"phase"`
	SessionTests      []string      `json:"session_tests,omitempty"`
	PageTests         []string      `json:"page_tests,omitempty"`
	MaxConcurrency    int           `json:"max_concurrency"`
	EstimatedDuration time.Duration `json:"estimated_duration,omitempty"`
}

// ExecutionStrategy is the complete ordered, concurrency-annotated plan.
// Phases are sorted ascending by phase number; a later phase logically
// starts only after every test in earlier phases has been run by the
// orchestrator.
type ExecutionStrategy struct {
	Phases                 []PhaseExecutionPlan `json:"phases"`
	TotalEstimatedDuration time.Duration        `json:"total_estimated_duration"`
	ParallelPages          bool                 `json:"parallel_pages"`
	MaxConcurrentPages     int                  `json:"max_concurrent_pages"`
}

// DependencyReport is the structured result of ValidateDependencies.
// A missing dependency is a reportable condition, not an error.
type DependencyReport struct {
	Valid               bool     `json:"valid"`
	MissingDependencies []string `json:"missing_dependencies,omitempty"`
}

// ResourceRequirements summarizes the resource profile of a phase's tests.
// The counters are coarse: a resource-intensive test contributes to both
// the memory and CPU counters.
type ResourceRequirements struct {
	MemoryIntensive        int `json:"memory_intensive"`
	CPUIntensive           int `json:"cpu_intensive"`
	NetworkIntensive       int `json:"network_intensive"`
	RecommendedConcurrency int `json:"recommended_concurrency"`
}

// PhaseSummary is a read-only projection of a phase for display purposes.
// No scheduling decision is derived from it.
type PhaseSummary struct {
	Phase             int           `json:"phase"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	SessionTestCount  int           `json:"session_test_count"`
	PageTestCount     int           `json:"page_test_count"`
	EstimatedDuration time.Duration `json:"estimated_duration"`
}
