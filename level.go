package logkit

import (
	"fmt"
	"strings"
)

// Level represents the severity of a log record. Levels are ordered:
// a handler or filter configured at a given level accepts that level and
// everything above it.
type Level int

// Log levels
const (
	DebugLevel Level = iota
	InfoLevel
	WarningLevel
	ErrorLevel
	CriticalLevel
)

// String returns the canonical upper-case name of the level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarningLevel:
		return "WARNING"
	case ErrorLevel:
		return "ERROR"
	case CriticalLevel:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name, case-insensitively. "warn" and "fatal"
// are accepted as aliases for WARNING and CRITICAL.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warning", "warn":
		return WarningLevel, nil
	case "error":
		return ErrorLevel, nil
	case "critical", "fatal":
		return CriticalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("logkit: unknown level %q", s)
	}
}
