package ux

import (
	"fmt"
	"strings"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError analyzes an error and adds contextual suggestions
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	errMsg := err.Error()

	// Config file errors
	if strings.Contains(errMsg, "no such file or directory") {
		if strings.Contains(errMsg, "sitehawk.yaml") {
			return NewErrorWithSuggestion(err,
				"Create a configuration by running 'sitehawk init', or pass a target URL directly: 'sitehawk audit https://example.com'")
		}
		if strings.Contains(errMsg, "results.json") {
			return NewErrorWithSuggestion(err,
				"Run an audit first with 'sitehawk audit' to produce results")
		}
	}

	// Browser errors
	if strings.Contains(errMsg, "executable file not found") ||
		strings.Contains(errMsg, "chrome") && strings.Contains(errMsg, "not found") {
		return NewErrorWithSuggestion(err,
			"Install Google Chrome or Chromium, or point CHROME_PATH at the browser binary")
	}

	if strings.Contains(errMsg, "websocket url timeout") {
		return NewErrorWithSuggestion(err,
			"The browser took too long to start. Check that Chrome can launch on this machine")
	}

	// Network errors
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no route to host") {
		return NewErrorWithSuggestion(err,
			"Check that the target URL is reachable from this machine and that no firewall blocks it")
	}

	if strings.Contains(errMsg, "no such host") {
		return NewErrorWithSuggestion(err,
			"The hostname does not resolve. Check the target URL for typos")
	}

	if strings.Contains(errMsg, "certificate") {
		return NewErrorWithSuggestion(err,
			"The site's TLS certificate could not be verified. Check the certificate chain with your browser")
	}

	// Timeouts
	if strings.Contains(errMsg, "context deadline exceeded") || strings.Contains(errMsg, "timeout") {
		return NewErrorWithSuggestion(err,
			"Increase the 'timeout' setting in sitehawk.yaml for slow sites")
	}

	// Permission errors
	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check that the output directory is writable, or change 'output_dir' in sitehawk.yaml")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
