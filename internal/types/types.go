// Package types provides internal types shared across mibc packages.
package types

import (
	"context"
	"log/slog"
)

// LevelTrace is a custom log level more verbose than Debug.
// Use for per-item iteration logging (tokens, symbols, OID arcs).
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = slog.Level(-8)

var ctx = context.Background()

// Logger wraps slog.Logger with nil-safe helpers.
type Logger struct {
	L *slog.Logger
}

// Enabled reports whether logging is enabled at the given level.
func (l *Logger) Enabled(level slog.Level) bool {
	return l.L != nil && l.L.Enabled(ctx, level)
}

// Log emits a log message if logging is enabled.
func (l *Logger) Log(level slog.Level, msg string, attrs ...slog.Attr) {
	if l.L != nil && l.L.Enabled(ctx, level) {
		l.L.LogAttrs(ctx, level, msg, attrs...)
	}
}

// TraceEnabled reports whether trace-level logging is enabled.
func (l *Logger) TraceEnabled() bool {
	return l.Enabled(LevelTrace)
}

// Trace emits a trace-level log.
func (l *Logger) Trace(msg string, attrs ...slog.Attr) {
	l.Log(LevelTrace, msg, attrs...)
}

// Component returns a child logger tagged with a component name,
// or nil when logger is nil.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("component", name))
}

// ByteOffset is a byte position in source text.
type ByteOffset uint32

// Span represents a range in source text.
type Span struct {
	Start ByteOffset // inclusive
	End   ByteOffset // exclusive
}

// Synthetic is the span of compiler-generated constructs.
var Synthetic = Span{}

// NewSpan creates a new span.
func NewSpan(start, end ByteOffset) Span {
	return Span{Start: start, End: end}
}

// IsSynthetic reports whether this is a synthetic span.
func (s Span) IsSynthetic() bool {
	return s.Start == 0 && s.End == 0
}

// Language is the SMI dialect a module is written in.
type Language int

const (
	LanguageUnknown Language = iota
	LanguageSMIv1
	LanguageSMIv2
)

func (l Language) String() string {
	switch l {
	case LanguageSMIv1:
		return "SMIv1"
	case LanguageSMIv2:
		return "SMIv2"
	default:
		return "unknown"
	}
}

// Access is a MAX-ACCESS / ACCESS value.
type Access int

const (
	AccessUnknown Access = iota
	AccessNotAccessible
	AccessAccessibleForNotify
	AccessReadOnly
	AccessReadWrite
	AccessReadCreate
	AccessWriteOnly
	AccessNotImplemented
)

var accessNames = [...]string{
	AccessUnknown:             "",
	AccessNotAccessible:       "not-accessible",
	AccessAccessibleForNotify: "accessible-for-notify",
	AccessReadOnly:            "read-only",
	AccessReadWrite:           "read-write",
	AccessReadCreate:          "read-create",
	AccessWriteOnly:           "write-only",
	AccessNotImplemented:      "not-implemented",
}

func (a Access) String() string {
	if int(a) < len(accessNames) {
		return accessNames[a]
	}
	return ""
}

// Status is a STATUS value. SMIv1 mandatory/optional are kept distinct.
type Status int

const (
	StatusUnknown Status = iota
	StatusCurrent
	StatusDeprecated
	StatusObsolete
	StatusMandatory
	StatusOptional
)

var statusNames = [...]string{
	StatusUnknown:    "",
	StatusCurrent:    "current",
	StatusDeprecated: "deprecated",
	StatusObsolete:   "obsolete",
	StatusMandatory:  "mandatory",
	StatusOptional:   "optional",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return ""
}
