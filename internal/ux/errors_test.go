package ux

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorWithSuggestion(t *testing.T) {
	base := errors.New("something broke")
	err := NewErrorWithSuggestion(base, "try turning it off and on again")

	assert.Contains(t, err.Error(), "something broke")
	assert.Contains(t, err.Error(), "💡 Suggestion: try turning it off and on again")
	assert.ErrorIs(t, err, base)
}

func TestNewErrorWithSuggestionNil(t *testing.T) {
	assert.Nil(t, NewErrorWithSuggestion(nil, "irrelevant"))
}

func TestEnhanceError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantSuggestion string
	}{
		{
			name:           "missing config file",
			err:            errors.New("open sitehawk.yaml: no such file or directory"),
			wantSuggestion: "sitehawk init",
		},
		{
			name:           "chrome binary missing",
			err:            errors.New(`exec: "google-chrome": executable file not found in $PATH`),
			wantSuggestion: "CHROME_PATH",
		},
		{
			name:           "target unreachable",
			err:            errors.New("dial tcp 203.0.113.7:443: connection refused"),
			wantSuggestion: "reachable from this machine",
		},
		{
			name:           "unresolvable host",
			err:            errors.New("dial tcp: lookup exmaple.com: no such host"),
			wantSuggestion: "typos",
		},
		{
			name:           "slow site",
			err:            errors.New("context deadline exceeded"),
			wantSuggestion: "'timeout' setting",
		},
		{
			name:           "unwritable output",
			err:            errors.New("mkdir .sitehawk: permission denied"),
			wantSuggestion: "output_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enhanced := EnhanceError(tt.err)
			require.Error(t, enhanced)
			assert.Contains(t, enhanced.Error(), tt.wantSuggestion)
			assert.ErrorIs(t, enhanced, tt.err)
		})
	}
}

func TestEnhanceErrorPassthrough(t *testing.T) {
	assert.Nil(t, EnhanceError(nil))

	plain := errors.New("some unrecognized condition")
	assert.Same(t, plain, EnhanceError(plain))
}

func TestFormatError(t *testing.T) {
	base := errors.New("connection refused")

	err := FormatError(base, "crawling https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crawling https://example.com:")
	assert.Contains(t, err.Error(), "💡 Suggestion")
	assert.ErrorIs(t, err, base)

	assert.Nil(t, FormatError(nil, "anything"))
}

func TestFormatErrorWithoutContext(t *testing.T) {
	base := fmt.Errorf("no such host")
	err := FormatError(base, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such host")
}
