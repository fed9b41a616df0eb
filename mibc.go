// Package mibc compiles SMI MIB modules into structured documents.
//
// A Compiler resolves the transitive import closure of the requested
// modules, builds a symbol table for each, decides which modules need
// regenerating, and persists the generated artifacts. Every module
// reached gets an Outcome in the returned Results.
//
//	c := mibc.New(
//	    mibc.WithSources(mibc.MustDir("/usr/share/snmp/mibs")),
//	    mibc.WithGenerator(mibc.JSONGenerator()),
//	    mibc.WithSink(mibc.MustDirSink("out")),
//	)
//	res, err := c.Compile(ctx, "IF-MIB")
package mibc

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/golangsnmp/mibc/internal/codegen"
	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/resolver"
	"github.com/golangsnmp/mibc/internal/symtab"
	"github.com/golangsnmp/mibc/internal/types"
)

// Version is reported in artifact comments and by the CLI.
var Version = "0.1.0"

// LevelTrace is a custom log level more verbose than Debug.
// Use for per-item iteration logging (symbols, OID arcs, providers).
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = types.LevelTrace

var (
	// ErrSourceUnchanged is returned by a SourceProvider that has the
	// module but has nothing new to offer. The next provider is tried.
	ErrSourceUnchanged = errors.New("source unchanged")

	// ErrNotModified is returned by a FreshnessChecker when an up to
	// date artifact exists.
	ErrNotModified = errors.New("artifact not modified")

	// ErrNoGenerator is returned by Compile when no generator is set.
	ErrNoGenerator = errors.New("no generator configured")
)

// SyntaxError reports a module whose source could not be parsed.
type SyntaxError struct {
	Module      string
	Diagnostics []Diagnostic
}

func (e *SyntaxError) Error() string {
	name := e.Module
	if name == "" {
		name = "<unnamed>"
	}
	if len(e.Diagnostics) == 0 {
		return fmt.Sprintf("%s: syntax error", name)
	}
	return fmt.Sprintf("%s: syntax error: %s (%d diagnostics)", name, e.Diagnostics[0].Message, len(e.Diagnostics))
}

// CodegenError wraps a generator failure.
type CodegenError struct {
	Module string
	Err    error
}

func (e *CodegenError) Error() string { return fmt.Sprintf("generating %s: %v", e.Module, e.Err) }
func (e *CodegenError) Unwrap() error { return e.Err }

// WriteError wraps a sink failure.
type WriteError struct {
	Module string
	Err    error
}

func (e *WriteError) Error() string { return fmt.Sprintf("writing %s: %v", e.Module, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }

// Aliases for the types that cross the package boundary.
type (
	Module           = module.Module
	Tables           = symtab.Tables
	Oid              = resolver.Oid
	MibInfo          = resolver.MibInfo
	Diagnostic       = types.Diagnostic
	DiagnosticConfig = types.DiagnosticConfig
	Severity         = types.Severity
	StrictnessLevel  = types.StrictnessLevel
	GenerateOptions  = codegen.Options
)

// Diagnostic severities, most severe first.
const (
	SeverityFatal   = types.SeverityFatal
	SeveritySevere  = types.SeveritySevere
	SeverityError   = types.SeverityError
	SeverityMinor   = types.SeverityMinor
	SeverityStyle   = types.SeverityStyle
	SeverityWarning = types.SeverityWarning
	SeverityInfo    = types.SeverityInfo
)

// Strictness levels; lower is stricter.
const (
	StrictnessStrict     = types.StrictnessStrict
	StrictnessNormal     = types.StrictnessNormal
	StrictnessPermissive = types.StrictnessPermissive
	StrictnessSilent     = types.StrictnessSilent
)

// DefaultConfig, StrictConfig and PermissiveConfig return the preset
// diagnostic configurations.
var (
	DefaultConfig    = types.DefaultConfig
	StrictConfig     = types.StrictConfig
	PermissiveConfig = types.PermissiveConfig
)

// Option configures a Compiler.
type Option func(*config)

type config struct {
	sources        []SourceProvider
	checkers       []FreshnessChecker
	borrowers      []Borrower
	sink           Sink
	generator      Generator
	parser         Parser
	logger         *slog.Logger
	diagConfig     types.DiagnosticConfig
	ignoreErrors   bool
	skipTransitive bool
	rebuild        bool
	dryRun         bool
	texts          bool
	systemPaths    bool
	builtins       []string
	comments       []string
}

func defaultConfig() config {
	return config{
		diagConfig: types.DefaultConfig(),
		builtins:   module.BaseModuleNames(),
	}
}

// WithSources appends source providers. Providers are tried in the
// order they were added.
func WithSources(sources ...SourceProvider) Option {
	return func(c *config) { c.sources = append(c.sources, sources...) }
}

// WithCheckers appends freshness checkers.
func WithCheckers(checkers ...FreshnessChecker) Option {
	return func(c *config) { c.checkers = append(c.checkers, checkers...) }
}

// WithBorrowers appends fallback providers of pre-built artifacts.
func WithBorrowers(borrowers ...Borrower) Option {
	return func(c *config) { c.borrowers = append(c.borrowers, borrowers...) }
}

// WithSink sets where artifacts are written.
func WithSink(s Sink) Option {
	return func(c *config) { c.sink = s }
}

// WithGenerator sets the output format.
func WithGenerator(g Generator) Option {
	return func(c *config) { c.generator = g }
}

// WithParser replaces the built-in SMI parser.
func WithParser(p Parser) Option {
	return func(c *config) { c.parser = p }
}

// WithLogger sets the logger for debug/trace output.
// If not set, no logging occurs (zero overhead).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithDiagnosticConfig sets strictness for parsing, table building and
// resolution.
func WithDiagnosticConfig(cfg DiagnosticConfig) Option {
	return func(c *config) { c.diagConfig = cfg }
}

// WithIgnoreErrors writes whatever was built even when some modules
// failed.
func WithIgnoreErrors(v bool) Option {
	return func(c *config) { c.ignoreErrors = v }
}

// WithSkipTransitive limits generation and borrowing to the modules
// named in Compile. Dependencies are still parsed for their symbols.
func WithSkipTransitive(v bool) Option {
	return func(c *config) { c.skipTransitive = v }
}

// WithRebuild regenerates artifacts even when they are up to date.
func WithRebuild(v bool) Option {
	return func(c *config) { c.rebuild = v }
}

// WithDryRun runs every phase but asks the sink not to persist.
func WithDryRun(v bool) Option {
	return func(c *config) { c.dryRun = v }
}

// WithTexts keeps DESCRIPTION and other free text in the artifacts.
func WithTexts(v bool) Option {
	return func(c *config) { c.texts = v }
}

// WithBuiltins adds module names that are never fetched or generated.
// The base SMI modules are always built in.
func WithBuiltins(names ...string) Option {
	return func(c *config) { c.builtins = append(c.builtins, names...) }
}

// WithComments adds lines to every artifact header.
func WithComments(lines ...string) Option {
	return func(c *config) { c.comments = append(c.comments, lines...) }
}

// WithSystemPaths enables automatic discovery of MIB search paths from
// net-snmp and libsmi configuration (config files, env vars, defaults).
// Discovered directories are tried after any explicit source.
func WithSystemPaths() Option {
	return func(c *config) { c.systemPaths = true }
}

func (c *config) isBuiltin(name string) bool {
	return slices.Contains(c.builtins, name)
}
