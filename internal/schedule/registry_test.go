package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitehawk/sitehawk/internal/errors"
)

func TestNewRegistryValidation(t *testing.T) {
	tests := []struct {
		name            string
		classifications []TestClassification
		wantCode        errors.ErrorCode
	}{
		{
			name: "duplicate id",
			classifications: []TestClassification{
				{TestID: "a", Phase: 1, Scope: ScopeSession},
				{TestID: "a", Phase: 2, Scope: ScopePage},
			},
			wantCode: errors.ErrCodeRegistryDuplicateID,
		},
		{
			name: "self dependency",
			classifications: []TestClassification{
				{TestID: "a", Phase: 1, Scope: ScopeSession, Dependencies: []string{"a"}},
			},
			wantCode: errors.ErrCodeRegistrySelfReference,
		},
		{
			name: "self conflict",
			classifications: []TestClassification{
				{TestID: "a", Phase: 1, Scope: ScopeSession, ConflictsWith: []string{"a"}},
			},
			wantCode: errors.ErrCodeRegistrySelfReference,
		},
		{
			name: "unknown dependency",
			classifications: []TestClassification{
				{TestID: "a", Phase: 1, Scope: ScopeSession, Dependencies: []string{"ghost"}},
			},
			wantCode: errors.ErrCodeRegistryUnknownRef,
		},
		{
			name: "unknown conflict",
			classifications: []TestClassification{
				{TestID: "a", Phase: 1, Scope: ScopeSession, ConflictsWith: []string{"ghost"}},
			},
			wantCode: errors.ErrCodeRegistryUnknownRef,
		},
		{
			name: "dependency cycle",
			classifications: []TestClassification{
				{TestID: "a", Phase: 1, Scope: ScopeSession, Dependencies: []string{"b"}},
				{TestID: "b", Phase: 1, Scope: ScopeSession, Dependencies: []string{"c"}},
				{TestID: "c", Phase: 1, Scope: ScopeSession, Dependencies: []string{"a"}},
			},
			wantCode: errors.ErrCodeRegistryCyclicDep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.classifications)
			require.Error(t, err)

			var auditErr *errors.AuditError
			require.ErrorAs(t, err, &auditErr)
			assert.Equal(t, tt.wantCode, auditErr.Code)
		})
	}
}

func TestNewRegistryNormalizesConflicts(t *testing.T) {
	// Conflict declared one-sided on purpose: the registry must expose it
	// symmetrically.
	reg, err := NewRegistry([]TestClassification{
		{TestID: "a", Phase: 1, Scope: ScopePage, ConflictsWith: []string{"b"}},
		{TestID: "b", Phase: 1, Scope: ScopePage},
	})
	require.NoError(t, err)

	b, ok := reg.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, b.ConflictsWith)
}

func TestRegistryLookup(t *testing.T) {
	reg := DefaultRegistry()

	tc, ok := reg.Lookup(TestSitemapCrawl)
	require.True(t, ok)
	assert.Equal(t, PhaseDiscovery, tc.Phase)
	assert.Equal(t, ScopeSession, tc.Scope)
	assert.Equal(t, []string{TestSitemapGenerate}, tc.Dependencies)

	_, ok = reg.Lookup("no-such-test")
	assert.False(t, ok)
}

func TestRegistryIDsSorted(t *testing.T) {
	ids := DefaultRegistry().IDs()
	require.Len(t, ids, DefaultRegistry().Len())
	assert.IsIncreasing(t, ids)
}

func TestBuiltinTablesValid(t *testing.T) {
	// The builtin tables go through the same validation as user tables.
	_, err := NewRegistry(builtinClassifications)
	require.NoError(t, err)

	_, err = NewPhaseRegistry(builtinPhases)
	require.NoError(t, err)
}

func TestBuiltinConflictsSymmetric(t *testing.T) {
	reg := DefaultRegistry()
	for _, id := range reg.IDs() {
		tc, _ := reg.Lookup(id)
		for _, conflict := range tc.ConflictsWith {
			other, ok := reg.Lookup(conflict)
			require.True(t, ok, "conflict target %s must be registered", conflict)
			assert.Contains(t, other.ConflictsWith, id,
				"conflict between %s and %s must be symmetric", id, conflict)
		}
	}
}

func TestNewPhaseRegistryValidation(t *testing.T) {
	_, err := NewPhaseRegistry([]PhaseDefinition{
		{Phase: 1, Name: "one"},
		{Phase: 1, Name: "dup"},
	})
	assert.Error(t, err)

	_, err = NewPhaseRegistry([]PhaseDefinition{
		{Phase: 1, Name: "one", Dependencies: []int{2}},
		{Phase: 2, Name: "two"},
	})
	assert.Error(t, err)

	_, err = NewPhaseRegistry([]PhaseDefinition{
		{Phase: 1, Name: "one", Dependencies: []int{3}},
	})
	assert.Error(t, err)
}

func TestPhaseRegistryPhases(t *testing.T) {
	phases := DefaultPhaseRegistry().Phases()
	assert.Equal(t, []int{PhaseDiscovery, PhaseCapture, PhaseAnalysis}, phases)
}
