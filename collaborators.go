package mibc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golangsnmp/mibc/internal/codegen"
	"github.com/golangsnmp/mibc/internal/parser"
	"github.com/golangsnmp/mibc/internal/types"
)

// SourceMeta describes where module text or an artifact came from.
type SourceMeta struct {
	// Name is the name the provider found the file under. It differs
	// from the module name when the file is an alias.
	Name    string
	Path    string
	ModTime time.Time
}

// SourceProvider fetches module source text by module name.
//
// Get returns fs.ErrNotExist when the module is not available from this
// provider and ErrSourceUnchanged when it has nothing new to offer. Both
// let the next provider be tried.
type SourceProvider interface {
	Get(ctx context.Context, name string) (SourceMeta, []byte, error)
}

// Parser turns source text into modules. A single source may hold
// several modules. A parse failure is reported as *SyntaxError.
type Parser interface {
	Parse(data []byte) ([]*Module, error)
}

// FreshnessChecker reports whether an up to date artifact exists.
//
// Exists returns ErrNotModified when the artifact is current,
// fs.ErrNotExist when this checker has no artifact, and nil when it has
// one that is stale or rebuild is set. Any other error is logged and the
// next checker is tried.
type FreshnessChecker interface {
	Exists(ctx context.Context, name string, sourceModTime time.Time, rebuild bool) error
}

// Generator renders a module, given the symbol tables of everything
// built in the run.
type Generator interface {
	Generate(mod *Module, tables Tables, opts GenerateOptions) (*MibInfo, []byte, error)
	// Extension is appended to the module name by file based sinks.
	Extension() string
	// GenerateIndex merges infos into a previous index, which may be
	// empty. A nil result means the format has no index.
	GenerateIndex(infos []*MibInfo, previous []byte, comments []string) ([]byte, error)
}

// BorrowOptions describe the artifact a Borrower should supply.
type BorrowOptions struct {
	Texts bool
}

// Borrower supplies a pre-built artifact for a module that could not
// be generated. It returns fs.ErrNotExist when it has none.
type Borrower interface {
	Borrow(ctx context.Context, name string, opts BorrowOptions) (SourceMeta, []byte, error)
}

// Sink persists artifacts. Write returns where the artifact went.
// Read returns fs.ErrNotExist when nothing was stored under name.
type Sink interface {
	Write(ctx context.Context, name string, payload []byte, comments []string, dryRun bool) (string, error)
	Read(ctx context.Context, name string) ([]byte, error)
}

// JSONGenerator renders documents as JSON.
func JSONGenerator() Generator { return codegen.JSON{} }

// YAMLGenerator renders documents as YAML.
func YAMLGenerator() Generator { return codegen.YAML{} }

// NullGenerator resolves modules without producing artifacts.
func NullGenerator() Generator { return codegen.Null{} }

// GeneratorFor returns the generator for a format name: json, yaml or
// null.
func GeneratorFor(format string) (Generator, error) {
	switch strings.ToLower(format) {
	case "json", "":
		return JSONGenerator(), nil
	case "yaml", "yml":
		return YAMLGenerator(), nil
	case "null", "none":
		return NullGenerator(), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// smiParser is the built-in Parser.
type smiParser struct {
	logger *slog.Logger
	cfg    types.DiagnosticConfig
}

// NewParser returns the built-in SMI parser.
func NewParser(logger *slog.Logger, cfg DiagnosticConfig) Parser {
	return &smiParser{logger: logger, cfg: cfg}
}

func (p *smiParser) Parse(data []byte) ([]*Module, error) {
	mods := parser.Parse(data, p.logger, p.cfg)
	for _, m := range mods {
		if failing := p.failing(m); len(failing) > 0 {
			return nil, &SyntaxError{Module: m.Name, Diagnostics: failing}
		}
	}
	return mods, nil
}

// failing returns the diagnostics of m that fail it under the
// configured strictness.
func (p *smiParser) failing(m *Module) []Diagnostic {
	var out []Diagnostic
	for _, d := range m.Diagnostics {
		if p.cfg.ShouldFail(p.cfg.Severity(d.Code, d.Severity)) {
			out = append(out, d)
		}
	}
	return out
}
