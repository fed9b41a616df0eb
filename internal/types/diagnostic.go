package types

import (
	"fmt"
	"slices"
	"strings"
)

// Severity is the severity of a diagnostic. Lower is more severe.
type Severity int

const (
	SeverityFatal Severity = iota
	SeveritySevere
	SeverityError
	SeverityMinor
	SeverityStyle
	SeverityWarning
	SeverityInfo
)

var severityNames = [...]string{"fatal", "severe", "error", "minor", "style", "warning", "info"}

func (s Severity) String() string {
	if s >= 0 && int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s <= other
}

// StrictnessLevel selects how much malformed input is tolerated.
type StrictnessLevel int

const (
	StrictnessStrict     StrictnessLevel = 0
	StrictnessNormal     StrictnessLevel = 3
	StrictnessPermissive StrictnessLevel = 5
	StrictnessSilent     StrictnessLevel = 6
)

func (l StrictnessLevel) String() string {
	switch {
	case l < StrictnessNormal:
		return "strict"
	case l < StrictnessPermissive:
		return "normal"
	case l < StrictnessSilent:
		return "permissive"
	default:
		return "silent"
	}
}

// ParseStrictness parses a strictness name as written in config files.
func ParseStrictness(s string) (StrictnessLevel, error) {
	switch strings.ToLower(s) {
	case "strict":
		return StrictnessStrict, nil
	case "", "normal":
		return StrictnessNormal, nil
	case "permissive":
		return StrictnessPermissive, nil
	case "silent":
		return StrictnessSilent, nil
	}
	return 0, fmt.Errorf("unknown strictness %q", s)
}

// SpanDiagnostic is a diagnostic located by byte span, produced by the
// lexer and parser before line information is attached.
type SpanDiagnostic struct {
	Severity Severity
	Code     string
	Span     Span
	Message  string
}

// Diagnostic is an issue found while parsing or compiling a module.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Module   string
	Line     int // 1-based, 0 if not applicable
	Column   int // 1-based, 0 if not applicable
}

// String formats the diagnostic as "[severity] module:line:col: message",
// omitting location parts that are zero.
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(d.Severity.String())
	b.WriteString("] ")
	if d.Module != "" {
		b.WriteString(d.Module)
		if d.Line > 0 {
			fmt.Fprintf(&b, ":%d", d.Line)
			if d.Column > 0 {
				fmt.Fprintf(&b, ":%d", d.Column)
			}
		}
		b.WriteString(": ")
	}
	b.WriteString(d.Message)
	return b.String()
}

// DiagnosticConfig controls strictness and diagnostic filtering. It is
// passed explicitly to the parser, the symbol table builder and the
// resolver.
type DiagnosticConfig struct {
	// Level sets the base strictness level.
	// Diagnostics with severity > Level are suppressed.
	Level StrictnessLevel

	// FailAt is the severity threshold at which a parsed module is
	// rejected with a syntax error.
	FailAt Severity

	// Overrides change severity for specific diagnostic codes.
	Overrides map[string]Severity

	// Ignore lists diagnostic codes to suppress. Supports a leading or
	// trailing * wildcard.
	Ignore []string
}

// DefaultConfig returns the default configuration (normal strictness).
func DefaultConfig() DiagnosticConfig {
	return DiagnosticConfig{
		Level:  StrictnessNormal,
		FailAt: SeverityError,
	}
}

// StrictConfig returns a configuration for RFC compliance checking.
func StrictConfig() DiagnosticConfig {
	return DiagnosticConfig{
		Level:  StrictnessStrict,
		FailAt: SeverityError,
	}
}

// PermissiveConfig returns a configuration for legacy and vendor MIBs.
func PermissiveConfig() DiagnosticConfig {
	return DiagnosticConfig{
		Level:  StrictnessPermissive,
		FailAt: SeveritySevere,
		Ignore: []string{
			DiagIdentifierUnderscore,
			DiagIdentifierLength32,
			DiagBadIdentifierCase,
		},
	}
}

// Severity returns the effective severity of code after overrides.
func (c DiagnosticConfig) Severity(code string, sev Severity) Severity {
	if override, ok := c.Overrides[code]; ok {
		return override
	}
	return sev
}

// ShouldReport reports whether a diagnostic with the given code and
// severity is kept under this configuration.
func (c DiagnosticConfig) ShouldReport(code string, sev Severity) bool {
	if slices.ContainsFunc(c.Ignore, func(pattern string) bool {
		return MatchGlob(pattern, code)
	}) {
		return false
	}
	sev = c.Severity(code, sev)
	if c.Level >= StrictnessSilent {
		return false
	}
	if c.Level == StrictnessStrict {
		return true
	}
	return int(sev) <= int(c.Level)
}

// ShouldFail reports whether a diagnostic of this severity rejects the module.
func (c DiagnosticConfig) ShouldFail(sev Severity) bool {
	return sev <= c.FailAt
}

// IsStrict reports whether strict compliance is required. Strict mode
// makes duplicate MODULE-IDENTITY clauses, malformed revision dates and
// duplicate OIDs fatal.
func (c DiagnosticConfig) IsStrict() bool {
	return c.Level < StrictnessNormal
}

// MatchGlob performs simple glob matching with a leading or trailing *.
func MatchGlob(pattern, s string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(s, prefix)
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok {
		return strings.HasSuffix(s, suffix)
	}
	return pattern == s
}
