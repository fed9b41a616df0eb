package resolver

import (
	"fmt"
	"slices"

	"github.com/golangsnmp/mibc/internal/symtab"
	"github.com/golangsnmp/mibc/internal/types"
)

// Flat is a type with its chain of textual conventions and refinements
// collapsed onto the base type.
type Flat struct {
	Base types.BaseType
	// Type is the outermost named type; zero for inline base syntax.
	Type symtab.Ref
	// Convention is the nearest textual convention in the chain.
	Convention  symtab.Ref
	DisplayHint string
	Constraint  symtab.Constraint
}

// Flatten flattens the type name as seen from module mod, which either
// defines or imports it.
func (r *Resolver) Flatten(mod, name string) (Flat, error) {
	ref := symtab.Ref{Module: mod, Name: name}
	if t, ok := r.tables[mod]; ok {
		if resolved, ok := t.Resolve(name); ok {
			ref = resolved
		}
	}
	return r.flattenRef(ref, mod, nil)
}

// FlattenSyntax flattens a syntax as written on an object or type.
// Table and row syntaxes have no base type and flatten to BaseUnknown.
func (r *Resolver) FlattenSyntax(s *symtab.Syntax) (Flat, error) {
	return r.flattenSyntax(s, "", nil)
}

func (r *Resolver) flattenSyntax(s *symtab.Syntax, from string, path []symtab.Ref) (Flat, error) {
	if s.Module == "" {
		if base, ok := types.Primitive(s.Type); ok {
			return Flat{Base: base, Constraint: s.Constraint}, nil
		}
		if s.Type == "SEQUENCE OF" || s.Type == "SEQUENCE" || s.Type == "CHOICE" {
			return Flat{Constraint: s.Constraint}, nil
		}
		return Flat{}, &symtab.UnknownSymbolError{Name: s.Type, From: from}
	}
	if t, ok := r.tables[s.Module]; ok {
		if _, row := t.Sequences[s.Type]; row {
			return Flat{Type: symtab.Ref{Module: s.Module, Name: s.Type}}, nil
		}
	}
	parent, err := r.flattenRef(symtab.Ref{Module: s.Module, Name: s.Type}, from, path)
	if err != nil {
		return Flat{}, err
	}
	parent.Constraint = parent.Constraint.Merge(s.Constraint)
	return parent, nil
}

func (r *Resolver) flattenRef(ref symtab.Ref, from string, path []symtab.Ref) (Flat, error) {
	if f, ok := r.flats[ref]; ok {
		return f, nil
	}
	if slices.Contains(path, ref) {
		return Flat{}, &CycleError{Path: append(slices.Clone(path), ref)}
	}
	sym, ok := r.tables.Lookup(ref.Module, ref.Name)
	if !ok {
		// Base types referenced through a module that does not define
		// them, such as an SMIv1 Counter without a table for RFC1155-SMI.
		if base, prim := types.Primitive(ref.Name); prim {
			return Flat{Base: base, Type: ref}, nil
		}
		if _, known := r.tables[ref.Module]; !known {
			return Flat{}, &symtab.UnknownModuleError{Module: ref.Module, From: from}
		}
		return Flat{}, &symtab.UnknownSymbolError{Module: ref.Module, Name: ref.Name, From: from}
	}
	if sym.Syntax == nil {
		return Flat{}, fmt.Errorf("%s: %s is not a type: %w", from, ref, symtab.ErrSemantic)
	}

	f, err := r.flattenSyntax(sym.Syntax, ref.Module, append(path, ref))
	if err != nil {
		return Flat{}, err
	}
	// Application types keep their own identity even though they are
	// written as refinements of INTEGER or OCTET STRING.
	if base, prim := types.Primitive(ref.Name); prim {
		f.Base = base
	}
	f.Type = ref
	if sym.TextualConvention {
		f.Convention = ref
	}
	if sym.DisplayHint != "" {
		f.DisplayHint = sym.DisplayHint
	}
	r.flats[ref] = f
	return f, nil
}
