package resolver

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/symtab"
)

// Oid is a resolved object identifier.
type Oid []uint32

// ParseOid parses a dotted OID such as "1.3.6.1". A leading dot is
// allowed.
func ParseOid(s string) (Oid, error) {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ".")
	oid := make(Oid, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid OID arc %q in %s", p, s)
		}
		oid[i] = uint32(n)
	}
	return oid, nil
}

// String returns the dotted form.
func (o Oid) String() string {
	var b strings.Builder
	for i, arc := range o {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(uint64(arc), 10))
	}
	return b.String()
}

// MarshalText encodes the OID in dotted form.
func (o Oid) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Oid) UnmarshalText(text []byte) error {
	oid, err := ParseOid(string(text))
	if err != nil {
		return err
	}
	*o = oid
	return nil
}

// HasPrefix reports whether o starts with prefix.
func (o Oid) HasPrefix(prefix Oid) bool {
	return len(prefix) <= len(o) && slices.Equal(o[:len(prefix)], prefix)
}

func (o Oid) Equal(other Oid) bool {
	return slices.Equal(o, other)
}

// roots are the top-level arcs, known without any definition.
var roots = map[string]uint32{
	"ccitt":           0,
	"iso":             1,
	"joint-iso-ccitt": 2,
}

// SymbolOid returns the OID of a symbol.
func (r *Resolver) SymbolOid(ref symtab.Ref) (Oid, error) {
	return r.symbolOid(ref, ref.Module, nil)
}

// ResolveOid resolves an OID value written in module mod.
func (r *Resolver) ResolveOid(mod string, value *module.OidValue) (Oid, error) {
	return r.resolve(mod, value, nil)
}

func (r *Resolver) symbolOid(ref symtab.Ref, from string, path []symtab.Ref) (Oid, error) {
	if oid, ok := r.oids[ref]; ok {
		return oid, nil
	}
	if slices.Contains(path, ref) {
		return nil, &CycleError{Path: append(slices.Clone(path), ref)}
	}
	t, ok := r.tables[ref.Module]
	if !ok {
		return nil, &symtab.UnknownModuleError{Module: ref.Module, From: from}
	}
	sym, ok := t.Lookup(ref.Name)
	if !ok {
		return nil, &symtab.UnknownSymbolError{Module: ref.Module, Name: ref.Name, From: from}
	}
	if sym.Oid == nil {
		return nil, fmt.Errorf("%s: %s has no OID value: %w", from, ref, symtab.ErrSemantic)
	}
	oid, err := r.resolve(ref.Module, sym.Oid, append(path, ref))
	if err != nil {
		return nil, err
	}
	r.oids[ref] = oid
	if r.TraceEnabled() {
		r.Trace("oid resolved", slog.String("symbol", ref.String()), slog.String("oid", oid.String()))
	}
	return oid, nil
}

func (r *Resolver) resolve(mod string, value *module.OidValue, path []symtab.Ref) (Oid, error) {
	var oid Oid
	for i, arc := range value.Arcs {
		if arc.HasNumber {
			oid = append(oid, arc.Number)
			continue
		}
		if i > 0 {
			return nil, fmt.Errorf("%s: arc %s of %s has no number: %w", mod, arc, value, symtab.ErrSemantic)
		}
		prefix, err := r.namedArc(mod, arc, path)
		if err != nil {
			return nil, err
		}
		oid = append(oid, prefix...)
	}
	return oid, nil
}

// namedArc resolves the leading name of an OID value.
func (r *Resolver) namedArc(mod string, arc module.Arc, path []symtab.Ref) (Oid, error) {
	if arc.Module != "" {
		return r.symbolOid(symtab.Ref{Module: arc.Module, Name: arc.Name}, mod, path)
	}
	t, ok := r.tables[mod]
	if !ok {
		return nil, &symtab.UnknownModuleError{Module: mod, From: mod}
	}
	if n, ok := roots[arc.Name]; ok {
		if _, local := t.Symbols[arc.Name]; !local {
			return Oid{n}, nil
		}
	}
	ref, ok := t.Resolve(arc.Name)
	if !ok {
		return nil, &symtab.UnknownSymbolError{Name: arc.Name, From: mod}
	}
	if n, ok := roots[ref.Name]; ok {
		if _, defined := r.tables.Lookup(ref.Module, ref.Name); !defined {
			return Oid{n}, nil
		}
	}
	return r.symbolOid(ref, mod, path)
}
