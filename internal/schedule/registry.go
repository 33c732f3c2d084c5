package schedule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sitehawk/sitehawk/internal/errors"
)

// Registry is the immutable classification table mapping each known test id
// to its static scheduling metadata. It is built once at process start and
// never mutated afterwards.
type Registry struct {
	byID map[string]TestClassification
	ids  []string
}

// NewRegistry builds a Registry from the given classifications and runs the
// startup validation pass: unique ids, no self-references, all referenced
// ids known, and an acyclic dependency graph. Conflict declarations are
// normalized to be symmetric regardless of how the table was authored.
func NewRegistry(classifications []TestClassification) (*Registry, error) {
	byID := make(map[string]TestClassification, len(classifications))

	for _, tc := range classifications {
		if _, exists := byID[tc.TestID]; exists {
			return nil, errors.New(errors.ErrCodeRegistryDuplicateID,
				fmt.Sprintf("duplicate test id %q in classification table", tc.TestID))
		}
		byID[tc.TestID] = tc
	}

	for id, tc := range byID {
		for _, dep := range tc.Dependencies {
			if dep == id {
				return nil, errors.New(errors.ErrCodeRegistrySelfReference,
					fmt.Sprintf("test %q lists itself as a dependency", id))
			}
			if _, ok := byID[dep]; !ok {
				return nil, errors.New(errors.ErrCodeRegistryUnknownRef,
					fmt.Sprintf("test %q depends on unregistered test %q", id, dep))
			}
		}
		for _, conflict := range tc.ConflictsWith {
			if conflict == id {
				return nil, errors.New(errors.ErrCodeRegistrySelfReference,
					fmt.Sprintf("test %q lists itself as a conflict", id))
			}
			if _, ok := byID[conflict]; !ok {
				return nil, errors.New(errors.ErrCodeRegistryUnknownRef,
					fmt.Sprintf("test %q conflicts with unregistered test %q", id, conflict))
			}
		}
	}

	if err := checkDependencyCycles(byID); err != nil {
		return nil, err
	}

	normalizeConflicts(byID)

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &Registry{byID: byID, ids: ids}, nil
}

// MustNewRegistry is like NewRegistry but panics on validation failure.
// Intended for the static builtin table, where a malformed entry is a
// programming bug rather than a runtime condition.
func MustNewRegistry(classifications []TestClassification) *Registry {
	r, err := NewRegistry(classifications)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the classification for a test id.
func (r *Registry) Lookup(id string) (TestClassification, bool) {
	tc, ok := r.byID[id]
	return tc, ok
}

// IDs returns all registered test ids in lexical order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of registered tests.
func (r *Registry) Len() int {
	return len(r.byID)
}

// normalizeConflicts makes conflict declarations symmetric: if A declares a
// conflict with B, B gains the reverse declaration. Authoring a one-sided
// conflict is tolerated; scheduling always sees both directions.
func normalizeConflicts(byID map[string]TestClassification) {
	reverse := make(map[string][]string)
	for id, tc := range byID {
		for _, conflict := range tc.ConflictsWith {
			reverse[conflict] = append(reverse[conflict], id)
		}
	}

	for id, extras := range reverse {
		tc := byID[id]
		declared := make(map[string]bool, len(tc.ConflictsWith))
		for _, c := range tc.ConflictsWith {
			declared[c] = true
		}
		for _, extra := range extras {
			if !declared[extra] {
				tc.ConflictsWith = append(tc.ConflictsWith, extra)
				declared[extra] = true
			}
		}
		sort.Strings(tc.ConflictsWith)
		byID[id] = tc
	}
}

// checkDependencyCycles detects cycles in the dependency graph using DFS.
func checkDependencyCycles(byID map[string]TestClassification) error {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		visited[id] = true
		recStack[id] = true
		path = append(path, id)

		for _, dep := range byID[id].Dependencies {
			if !visited[dep] {
				if err := visit(dep, path); err != nil {
					return err
				}
			} else if recStack[dep] {
				cyclePath := append(path, dep)
				return errors.New(errors.ErrCodeRegistryCyclicDep,
					fmt.Sprintf("circular dependency detected: %s", strings.Join(cyclePath, " -> ")))
			}
		}

		recStack[id] = false
		return nil
	}

	// Iterate in sorted order so a reported cycle is deterministic.
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if !visited[id] {
			if err := visit(id, nil); err != nil {
				return err
			}
		}
	}

	return nil
}

// PhaseRegistry is the immutable table of the fixed audit phases.
type PhaseRegistry struct {
	byPhase map[int]PhaseDefinition
	order   []int
}

// NewPhaseRegistry builds a PhaseRegistry and validates that phase
// dependencies only reference earlier, registered phases.
func NewPhaseRegistry(definitions []PhaseDefinition) (*PhaseRegistry, error) {
	byPhase := make(map[int]PhaseDefinition, len(definitions))
	for _, def := range definitions {
		if _, exists := byPhase[def.Phase]; exists {
			return nil, errors.New(errors.ErrCodeRegistryDuplicateID,
				fmt.Sprintf("duplicate phase %d in phase table", def.Phase))
		}
		byPhase[def.Phase] = def
	}

	for _, def := range byPhase {
		for _, dep := range def.Dependencies {
			if _, ok := byPhase[dep]; !ok {
				return nil, errors.New(errors.ErrCodeRegistryUnknownPhase,
					fmt.Sprintf("phase %d depends on unregistered phase %d", def.Phase, dep))
			}
			if dep >= def.Phase {
				return nil, errors.New(errors.ErrCodeRegistryCyclicDep,
					fmt.Sprintf("phase %d depends on phase %d, which does not precede it", def.Phase, dep))
			}
		}
	}

	order := make([]int, 0, len(byPhase))
	for phase := range byPhase {
		order = append(order, phase)
	}
	sort.Ints(order)

	return &PhaseRegistry{byPhase: byPhase, order: order}, nil
}

// MustNewPhaseRegistry is like NewPhaseRegistry but panics on failure.
func MustNewPhaseRegistry(definitions []PhaseDefinition) *PhaseRegistry {
	r, err := NewPhaseRegistry(definitions)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the definition for a phase number.
func (r *PhaseRegistry) Lookup(phase int) (PhaseDefinition, bool) {
	def, ok := r.byPhase[phase]
	return def, ok
}

// Phases returns all registered phase numbers in ascending order.
func (r *PhaseRegistry) Phases() []int {
	out := make([]int, len(r.order))
	copy(out, r.order)
	return out
}
