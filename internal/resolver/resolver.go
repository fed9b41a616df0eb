// Package resolver turns symbol tables into concrete values: numeric
// OIDs, flattened types, validated default values and module metadata.
package resolver

import (
	"log/slog"

	"github.com/golangsnmp/mibc/internal/symtab"
	"github.com/golangsnmp/mibc/internal/types"
)

// Resolver answers value questions over a set of symbol tables. Results
// are memoized, so asking twice returns the same answer.
type Resolver struct {
	tables symtab.Tables
	cfg    types.DiagnosticConfig
	oids   map[symtab.Ref]Oid
	flats  map[symtab.Ref]Flat
	// owners records which symbol first claimed each OID.
	owners      map[string]symtab.Ref
	diagnostics []types.Diagnostic
	types.Logger
}

// New returns a resolver over tables. The map is read, never written,
// and may grow between calls.
func New(tables symtab.Tables, cfg types.DiagnosticConfig, logger *slog.Logger) *Resolver {
	return &Resolver{
		tables: tables,
		cfg:    cfg,
		oids:   make(map[symtab.Ref]Oid),
		flats:  make(map[symtab.Ref]Flat),
		owners: make(map[string]symtab.Ref),
		Logger: types.Logger{L: types.Component(logger, "resolver")},
	}
}

// Diagnostics returns the diagnostics reported so far.
func (r *Resolver) Diagnostics() []types.Diagnostic {
	return r.diagnostics
}

func (r *Resolver) diag(mod, code string, sev types.Severity, msg string) {
	r.Log(slog.LevelDebug, msg, slog.String("module", mod), slog.String("code", code))
	if !r.cfg.ShouldReport(code, sev) {
		return
	}
	r.diagnostics = append(r.diagnostics, types.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Module:   mod,
	})
}
