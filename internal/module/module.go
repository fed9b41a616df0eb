// Package module defines the immutable parsed form of a MIB module.
//
// A Module is what the parser hands to the symbol table builder: the
// module name, its grouped imports and its declarations in source
// order. Names are kept as written; import rewriting, symbol
// registration and OID resolution happen later in symtab and resolver.
package module

import (
	"iter"

	"github.com/golangsnmp/mibc/internal/types"
)

// Module is one parsed MIB module.
type Module struct {
	Name string
	// Oid is the optional { ... } written between the module name and
	// DEFINITIONS.
	Oid          *OidValue
	Language     types.Language
	Imports      []ImportGroup
	Declarations []Declaration
	Span         types.Span
	Diagnostics  []types.Diagnostic
}

// ImportGroup is one "symbols FROM Module" clause.
type ImportGroup struct {
	Module  string
	Symbols []string
}

// HasErrors reports whether any diagnostic is at least error severity.
func (m *Module) HasErrors() bool {
	for _, d := range m.Diagnostics {
		if d.Severity.AtLeast(types.SeverityError) {
			return true
		}
	}
	return false
}

// ImportedModules returns the distinct module names in import order.
func (m *Module) ImportedModules() []string {
	seen := make(map[string]bool, len(m.Imports))
	var names []string
	for _, g := range m.Imports {
		if !seen[g.Module] {
			seen[g.Module] = true
			names = append(names, g.Module)
		}
	}
	return names
}

// DeclarationsOf yields the declarations of the given kind in order.
func (m *Module) DeclarationsOf(kind Kind) iter.Seq[Declaration] {
	return func(yield func(Declaration) bool) {
		for _, d := range m.Declarations {
			if d.Kind() == kind && !yield(d) {
				return
			}
		}
	}
}

// Dependencies returns the distinct modules the imports resolve to
// after alias and legacy rewrites, in import order.
func (m *Module) Dependencies() []string {
	seen := make(map[string]bool, len(m.Imports))
	var names []string
	for _, g := range m.Imports {
		for _, sym := range g.Symbols {
			ref, _ := RewriteImport(g.Module, sym)
			if ref.Module != m.Name && !seen[ref.Module] {
				seen[ref.Module] = true
				names = append(names, ref.Module)
			}
		}
	}
	return names
}
