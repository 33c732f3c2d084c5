package exitcode

import (
	"os"
	"strings"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ConfigError indicates an invalid selection or configuration file
	ConfigError = 3

	// AuditFindings indicates the audit completed but produced failing checks
	AuditFindings = 4

	// BrowserError indicates the headless browser could not be driven
	BrowserError = 5

	// NetworkError indicates a network connectivity issue
	NetworkError = 6

	// Interrupted indicates the run was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	Exit(code)
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	errMsg := strings.ToLower(err.Error())

	// A finished audit with failing checks
	if strings.Contains(errMsg, "failing checks") {
		return AuditFindings
	}

	// Selection and configuration errors
	if strings.Contains(errMsg, "[test-") || strings.Contains(errMsg, "[config-") || strings.Contains(errMsg, "[registry-") {
		return ConfigError
	}
	if strings.Contains(errMsg, "unknown test") || strings.Contains(errMsg, "missing required dependencies") {
		return ConfigError
	}

	// Browser errors
	if strings.Contains(errMsg, "[browser-") || strings.Contains(errMsg, "headless browser") {
		return BrowserError
	}

	// Network errors
	if strings.Contains(errMsg, "network") || strings.Contains(errMsg, "connection") {
		return NetworkError
	}
	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "unreachable") {
		return NetworkError
	}

	// Usage errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "missing argument") {
		return UsageError
	}

	// Default to general error
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case ConfigError:
		return "Configuration or test selection error"
	case AuditFindings:
		return "Audit completed with failing checks"
	case BrowserError:
		return "Browser automation error"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted by user"
	default:
		return "Unknown error"
	}
}
