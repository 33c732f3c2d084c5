package log

import "log/slog"

// Level is the severity of a log record.
type Level int

const (
	// LevelDebug traces crawl and scheduling decisions.
	LevelDebug Level = iota
	// LevelInfo reports audit progress.
	LevelInfo
	// LevelWarn flags recoverable conditions, such as an unreachable page.
	LevelWarn
	// LevelError reports failures.
	LevelError
)

// String renders the level for log output.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ToSlogLevel maps the level onto its slog equivalent.
func (l Level) ToSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel reads a level from configuration or flag input. Unknown
// values fall back to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return LevelDebug
	case "info", "INFO":
		return LevelInfo
	case "warn", "WARN", "warning", "WARNING":
		return LevelWarn
	case "error", "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}
