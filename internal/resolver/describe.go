package resolver

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/symtab"
	"github.com/golangsnmp/mibc/internal/types"
)

// MibInfo is the summary of a compiled module that ends up in the
// artifact header and the index.
type MibInfo struct {
	Name     string `json:"name" yaml:"name"`
	Identity string `json:"identity,omitempty" yaml:"identity,omitempty"`
	// Oid is the OID of the MODULE-IDENTITY.
	Oid Oid `json:"oid,omitempty" yaml:"oid,omitempty"`
	// Revision is the latest of LAST-UPDATED and the REVISION dates.
	Revision time.Time `json:"revision,omitzero" yaml:"revision,omitempty"`
	Oids     []string  `json:"oids,omitempty" yaml:"oids,omitempty"`
	// Enterprise is the private enterprise arc of the first OID defined
	// under enterprises.
	Enterprise Oid      `json:"enterprise,omitempty" yaml:"enterprise,omitempty"`
	Compliance []string `json:"compliance,omitempty" yaml:"compliance,omitempty"`
	Imported   []string `json:"imported,omitempty" yaml:"imported,omitempty"`
}

var enterprises = Oid{1, 3, 6, 1, 4, 1}

// Describe derives the MibInfo of module mod and resolves the OID of
// every symbol it defines.
func (r *Resolver) Describe(mod string) (*MibInfo, error) {
	t, ok := r.tables[mod]
	if !ok {
		return nil, &symtab.UnknownModuleError{Module: mod, From: mod}
	}
	info := &MibInfo{Name: mod}
	if t.Source != nil {
		info.Imported = t.Source.Dependencies()
	}

	var identities []string
	for _, name := range t.Order {
		sym := t.Symbols[name]
		if sym.Oid == nil || sym.Synthetic {
			continue
		}
		ref := symtab.Ref{Module: mod, Name: name}
		oid, err := r.SymbolOid(ref)
		if err != nil {
			return nil, err
		}
		if err := r.claim(oid, ref); err != nil {
			return nil, err
		}
		info.Oids = append(info.Oids, oid.String())
		if info.Enterprise == nil && oid.HasPrefix(enterprises) && len(oid) > len(enterprises) {
			info.Enterprise = slices.Clone(oid[:len(enterprises)+1])
		}

		switch sym.Kind {
		case module.KindModuleIdentity:
			identities = append(identities, name)
			if len(identities) > 1 {
				continue
			}
			info.Identity = name
			info.Oid = oid
			if err := r.revision(mod, sym, info); err != nil {
				return nil, err
			}
		case module.KindCompliance:
			info.Compliance = append(info.Compliance, oid.String())
		}
	}

	if len(identities) > 1 {
		if r.cfg.IsStrict() {
			return nil, &DuplicateModuleIdentityError{Module: mod, Names: identities}
		}
		r.Log(slog.LevelWarn, "multiple MODULE-IDENTITY definitions, keeping the first",
			slog.String("module", mod), slog.String("identity", info.Identity))
		r.diag(mod, types.DiagDuplicateIdentity, types.SeverityMinor,
			fmt.Sprintf("%d MODULE-IDENTITY definitions, using %s", len(identities), info.Identity))
	}
	return info, nil
}

// claim records ref as the owner of oid. A second owner is an error in
// strict mode and is accepted otherwise.
func (r *Resolver) claim(oid Oid, ref symtab.Ref) error {
	key := oid.String()
	owner, ok := r.owners[key]
	if !ok {
		r.owners[key] = ref
		return nil
	}
	if owner == ref {
		return nil
	}
	if r.cfg.IsStrict() {
		return &DuplicateOidError{Oid: oid, First: owner, Second: ref}
	}
	r.diag(ref.Module, types.DiagDuplicateOid, types.SeverityInfo,
		fmt.Sprintf("OID %s of %s already assigned to %s", key, ref, owner))
	return nil
}

// revision sets info.Revision from the dates on a MODULE-IDENTITY.
func (r *Resolver) revision(mod string, sym *symtab.Symbol, info *MibInfo) error {
	mi, ok := sym.Decl.(*module.ModuleIdentity)
	if !ok {
		return nil
	}
	dates := []string{mi.LastUpdated}
	for _, rev := range mi.Revisions {
		dates = append(dates, rev.Date)
	}
	for _, d := range dates {
		if d == "" {
			continue
		}
		ts, err := ParseRevision(d)
		if err != nil {
			if r.cfg.IsStrict() {
				return &RevisionDateError{Module: mod, Value: d}
			}
			r.diag(mod, types.DiagBadRevisionDate, types.SeverityMinor,
				fmt.Sprintf("skipping malformed revision date %q", d))
			continue
		}
		if ts.After(info.Revision) {
			info.Revision = ts
		}
	}
	return nil
}

// ParseRevision parses an SMI date, "YYMMDDHHMMZ" or "YYYYMMDDHHMMZ".
// Two digit years are in the 1900s.
func ParseRevision(s string) (time.Time, error) {
	switch len(s) {
	case 11:
		s = "19" + s
	case 13:
	default:
		return time.Time{}, fmt.Errorf("revision date %q has the wrong length", s)
	}
	return time.Parse("200601021504Z", s)
}
