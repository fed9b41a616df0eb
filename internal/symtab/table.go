// Package symtab builds the per-module symbol table: imports after
// legacy rewrites, every declared symbol with its role in tables, and
// the syntax each object and type refers to.
package symtab

import (
	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/types"
)

// Ref names a symbol in a module.
type Ref struct {
	Module string
	Name   string
}

func (r Ref) String() string { return r.Module + "." + r.Name }

// ImportMap maps a local name to the symbol it was imported as. Legacy
// rewrites can give the local name a different target name, as with
// RFC1155-SMI.Counter becoming SNMPv2-SMI.Counter32.
type ImportMap map[string]Ref

// Tables holds the tables of every module built so far, by name.
type Tables map[string]*Table

// Lookup returns the symbol name in module mod.
func (ts Tables) Lookup(mod, name string) (*Symbol, bool) {
	t, ok := ts[mod]
	if !ok {
		return nil, false
	}
	return t.Lookup(name)
}

// Table is the symbol table of one module.
type Table struct {
	Module   string
	Language types.Language
	Symbols  map[string]*Symbol
	// Order lists registered symbols in declaration order.
	Order []string
	// Tables, Rows and Columns list symbols by table role, in
	// declaration order.
	Tables    []string
	Rows      []string
	Columns   []string
	Sequences map[string]*module.Sequence
	Imports   ImportMap
	// Source is the parsed module the table was built from.
	Source      *module.Module
	Diagnostics []types.Diagnostic
}

// Lookup returns the local symbol name.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	s, ok := t.Symbols[name]
	return s, ok
}

// Resolve finds where a name used in this module is defined: locally,
// through an import, or nowhere.
func (t *Table) Resolve(name string) (Ref, bool) {
	if _, ok := t.Symbols[name]; ok {
		return Ref{Module: t.Module, Name: name}, true
	}
	if ref, ok := t.Imports[name]; ok {
		return ref, true
	}
	return Ref{}, false
}

// Symbol is one registered definition.
type Symbol struct {
	Name   string
	Module string
	Kind   module.Kind
	// Oid is nil for types.
	Oid *module.OidValue
	// Syntax is set for object types and type declarations.
	Syntax            *Syntax
	TextualConvention bool
	DisplayHint       string
	Status            types.Status
	Access            types.Access
	Units             string
	Description       string

	IsTable  bool
	IsRow    bool
	IsColumn bool
	// TableParent is the row a column belongs to.
	TableParent string
	Index       []module.IndexItem
	Augments    string
	DefVal      *module.DefVal

	// Synthetic marks hidden index columns made for SMIv1 INDEX
	// clauses that name a type instead of a column.
	Synthetic bool
	// Decl is the source declaration, nil for synthetic symbols.
	Decl module.Declaration
}

// Syntax is a syntax reference with its owning module resolved.
type Syntax struct {
	// Type is the referenced type name after import rewrites, or a
	// built-in such as "INTEGER" or "SEQUENCE OF".
	Type string
	// Module defines Type; empty for built-in types written inline.
	Module string
	// Entry is the row type of a SEQUENCE OF.
	Entry      string
	Constraint Constraint
}

// IsBuiltin reports whether the syntax names one of the fixed base
// types directly.
func (s *Syntax) IsBuiltin() bool {
	_, ok := types.Primitive(s.Type)
	return ok
}
