package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Test selection errors (TEST-001 to TEST-099)
	ErrCodeTestUnknown           ErrorCode = "TEST-001"
	ErrCodeTestMissingDependency ErrorCode = "TEST-002"
	ErrCodeTestNoneSelected      ErrorCode = "TEST-003"

	// Registry errors (REGISTRY-001 to REGISTRY-099)
	ErrCodeRegistryDuplicateID   ErrorCode = "REGISTRY-001"
	ErrCodeRegistrySelfReference ErrorCode = "REGISTRY-002"
	ErrCodeRegistryCyclicDep     ErrorCode = "REGISTRY-003"
	ErrCodeRegistryUnknownRef    ErrorCode = "REGISTRY-004"
	ErrCodeRegistryUnknownPhase  ErrorCode = "REGISTRY-005"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound  ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid   ErrorCode = "CONFIG-002"
	ErrCodeConfigUnmarshal ErrorCode = "CONFIG-003"
	ErrCodeConfigNoTarget  ErrorCode = "CONFIG-004"

	// Browser errors (BROWSER-001 to BROWSER-099)
	ErrCodeBrowserStart      ErrorCode = "BROWSER-001"
	ErrCodeBrowserNavigate   ErrorCode = "BROWSER-002"
	ErrCodeBrowserScreenshot ErrorCode = "BROWSER-003"
	ErrCodeBrowserEvaluate   ErrorCode = "BROWSER-004"

	// Crawl errors (CRAWL-001 to CRAWL-099)
	ErrCodeCrawlFailed  ErrorCode = "CRAWL-001"
	ErrCodeCrawlNoPages ErrorCode = "CRAWL-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
)

// AuditError represents an enhanced error with code, suggestions, and documentation
type AuditError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *AuditError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *AuditError) Unwrap() error {
	return e.Cause
}

// New creates a new AuditError
func New(code ErrorCode, message string) *AuditError {
	return &AuditError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AuditError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *AuditError {
	return &AuditError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *AuditError) WithSuggestion(suggestion string) *AuditError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *AuditError) WithSuggestions(suggestions ...string) *AuditError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *AuditError) WithDocs(url string) *AuditError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewUnknownTestsError creates an error listing every selected test id
// that is absent from the classification registry. The ids are expected
// to be pre-sorted by the caller so output stays deterministic.
func NewUnknownTestsError(ids []string) *AuditError {
	return New(ErrCodeTestUnknown, fmt.Sprintf("unknown test id(s): %s", strings.Join(ids, ", "))).
		WithSuggestion("Run 'sitehawk tests' to list all registered tests").
		WithSuggestion("Check the 'tests' section of your sitehawk.yaml for typos")
}

// NewMissingDependenciesError creates a pre-flight error for a selection
// whose dependencies are not part of the selection itself.
func NewMissingDependenciesError(missing []string) *AuditError {
	return New(ErrCodeTestMissingDependency, fmt.Sprintf("selection is missing required dependencies: %s", strings.Join(missing, ", "))).
		WithSuggestion("Add the missing tests to your selection").
		WithSuggestion("Run 'sitehawk plan' to preview the execution strategy before auditing")
}

// NewConfigNotFoundError creates a config file not found error
func NewConfigNotFoundError(path string) *AuditError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithSuggestion("Run 'sitehawk init' to create a new configuration").
		WithSuggestion("Pass the target URL directly: 'sitehawk audit https://example.com'")
}

// NewConfigInvalidError creates a config validation error
func NewConfigInvalidError(details string) *AuditError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Run 'sitehawk init' to regenerate a valid configuration")
}

// NewBrowserStartError creates a browser startup error
func NewBrowserStartError(cause error) *AuditError {
	return Wrap(ErrCodeBrowserStart, "failed to start headless browser", cause).
		WithSuggestion("Install Google Chrome or Chromium").
		WithSuggestion("Set the CHROME_PATH environment variable if Chrome is in a non-standard location")
}

// NewNavigateError creates a page navigation error
func NewNavigateError(url string, cause error) *AuditError {
	return Wrap(ErrCodeBrowserNavigate, fmt.Sprintf("failed to navigate to %s", url), cause).
		WithSuggestion("Check that the URL is reachable from this machine").
		WithSuggestion("Increase the navigation timeout with --timeout")
}

// NewFileWriteError creates a file write error
func NewFileWriteError(path string, cause error) *AuditError {
	return Wrap(ErrCodeFileWriteFailed, fmt.Sprintf("failed to write file: %s", path), cause).
		WithSuggestion("Check that the output directory exists and is writable")
}
