// Package codegen renders resolved modules into output artifacts. All
// generators build the same document model; they differ only in the
// encoding.
package codegen

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/resolver"
	"github.com/golangsnmp/mibc/internal/symtab"
	"github.com/golangsnmp/mibc/internal/types"
)

// Options controls generation.
type Options struct {
	// Texts keeps DESCRIPTION, REFERENCE and the other free text
	// clauses in the output.
	Texts bool
	// Comments are recorded in the document header.
	Comments []string
	// Resolver is shared across a run so that OIDs are resolved once
	// and duplicates are seen across modules. A private one is made
	// when nil.
	Resolver *resolver.Resolver
	Config   types.DiagnosticConfig
	Logger   *slog.Logger
}

func (o Options) resolver(tables symtab.Tables) *resolver.Resolver {
	if o.Resolver != nil {
		return o.Resolver
	}
	return resolver.New(tables, o.Config, o.Logger)
}

// Document is the generated form of one module.
type Document struct {
	Meta    Meta        `json:"meta" yaml:"meta"`
	Imports []ImportDoc `json:"imports,omitempty" yaml:"imports,omitempty"`
	Symbols []*Symbol   `json:"symbols" yaml:"symbols"`
}

type Meta struct {
	Module   string            `json:"module" yaml:"module"`
	Language string            `json:"language,omitempty" yaml:"language,omitempty"`
	Comments []string          `json:"comments,omitempty" yaml:"comments,omitempty"`
	Info     *resolver.MibInfo `json:"info" yaml:"info"`
}

type ImportDoc struct {
	Module  string   `json:"module" yaml:"module"`
	Symbols []string `json:"symbols" yaml:"symbols"`
}

// Symbol is one generated definition. Class names follow the SMI
// macro that declared it.
type Symbol struct {
	Name        string       `json:"name" yaml:"name"`
	Class       string       `json:"class" yaml:"class"`
	Oid         string       `json:"oid,omitempty" yaml:"oid,omitempty"`
	NodeType    string       `json:"nodetype,omitempty" yaml:"nodetype,omitempty"`
	Syntax      *SyntaxDoc   `json:"syntax,omitempty" yaml:"syntax,omitempty"`
	Default     *DefaultDoc  `json:"default,omitempty" yaml:"default,omitempty"`
	Units       string       `json:"units,omitempty" yaml:"units,omitempty"`
	MaxAccess   string       `json:"maxaccess,omitempty" yaml:"maxaccess,omitempty"`
	Status      string       `json:"status,omitempty" yaml:"status,omitempty"`
	DisplayHint string       `json:"displayhint,omitempty" yaml:"displayhint,omitempty"`
	Indices     []IndexDoc   `json:"indices,omitempty" yaml:"indices,omitempty"`
	Augmention  *ObjectRef   `json:"augmention,omitempty" yaml:"augmention,omitempty"`
	Objects     []ObjectRef  `json:"objects,omitempty" yaml:"objects,omitempty"`
	Identity    *IdentityDoc `json:"identity,omitempty" yaml:"identity,omitempty"`
	Release     string       `json:"productrelease,omitempty" yaml:"productrelease,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Reference   string       `json:"reference,omitempty" yaml:"reference,omitempty"`
}

// SyntaxDoc is a flattened syntax. Type is the name as written.
type SyntaxDoc struct {
	Type       string       `json:"type" yaml:"type"`
	Module     string       `json:"module,omitempty" yaml:"module,omitempty"`
	Base       string       `json:"base,omitempty" yaml:"base,omitempty"`
	Convention string       `json:"tc,omitempty" yaml:"tc,omitempty"`
	Entry      string       `json:"entry,omitempty" yaml:"entry,omitempty"`
	Enums      []NamedDoc   `json:"enumeration,omitempty" yaml:"enumeration,omitempty"`
	Bits       []NamedDoc   `json:"bits,omitempty" yaml:"bits,omitempty"`
	Ranges     [][]RangeDoc `json:"ranges,omitempty" yaml:"ranges,omitempty"`
	Sizes      [][]RangeDoc `json:"sizes,omitempty" yaml:"sizes,omitempty"`
}

type NamedDoc struct {
	Name  string `json:"name" yaml:"name"`
	Value int64  `json:"value" yaml:"value"`
}

type RangeDoc struct {
	Min Number `json:"min" yaml:"min"`
	Max Number `json:"max" yaml:"max"`
}

type DefaultDoc struct {
	Format string   `json:"format" yaml:"format"`
	Value  string   `json:"value" yaml:"value"`
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

type IndexDoc struct {
	Module  string `json:"module" yaml:"module"`
	Object  string `json:"object" yaml:"object"`
	Implied bool   `json:"implied,omitempty" yaml:"implied,omitempty"`
}

type ObjectRef struct {
	Module string `json:"module" yaml:"module"`
	Object string `json:"object" yaml:"object"`
}

type IdentityDoc struct {
	LastUpdated  string        `json:"lastupdated,omitempty" yaml:"lastupdated,omitempty"`
	Organization string        `json:"organization,omitempty" yaml:"organization,omitempty"`
	ContactInfo  string        `json:"contactinfo,omitempty" yaml:"contactinfo,omitempty"`
	Revisions    []RevisionDoc `json:"revisions,omitempty" yaml:"revisions,omitempty"`
}

type RevisionDoc struct {
	Revision    string `json:"revision" yaml:"revision"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Build resolves mod against tables and returns its document.
func Build(mod *module.Module, tables symtab.Tables, opts Options) (*Document, error) {
	t, ok := tables[mod.Name]
	if !ok {
		return nil, &symtab.UnknownModuleError{Module: mod.Name, From: mod.Name}
	}
	r := opts.resolver(tables)
	info, err := r.Describe(mod.Name)
	if err != nil {
		return nil, err
	}

	doc := &Document{Meta: Meta{
		Module:   mod.Name,
		Language: mod.Language.String(),
		Comments: opts.Comments,
		Info:     info,
	}}
	for _, g := range mod.Imports {
		doc.Imports = append(doc.Imports, ImportDoc{Module: g.Module, Symbols: slices.Clone(g.Symbols)})
	}

	b := &docBuilder{table: t, r: r, texts: opts.Texts, logger: types.Logger{L: opts.Logger}}
	for _, name := range t.Order {
		sym, err := b.symbol(t.Symbols[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		doc.Symbols = append(doc.Symbols, sym)
	}
	return doc, nil
}

type docBuilder struct {
	table  *symtab.Table
	r      *resolver.Resolver
	texts  bool
	logger types.Logger
}

func (b *docBuilder) symbol(sym *symtab.Symbol) (*Symbol, error) {
	out := &Symbol{Name: sym.Name, Class: className(sym)}
	if sym.Oid != nil {
		oid, err := b.r.SymbolOid(symtab.Ref{Module: sym.Module, Name: sym.Name})
		if err != nil {
			return nil, err
		}
		out.Oid = oid.String()
	}
	if sym.Status != types.StatusUnknown {
		out.Status = sym.Status.String()
	}
	if sym.Kind == module.KindObjectType {
		out.MaxAccess = sym.Access.String()
		out.NodeType = nodeType(sym)
		out.Units = sym.Units
	}
	if b.texts {
		out.Description = sym.Description
		out.Reference = reference(sym.Decl)
	}

	if sym.Syntax != nil {
		syn, flat, err := b.syntax(sym.Syntax)
		if err != nil {
			return nil, err
		}
		out.Syntax = syn
		out.DisplayHint = sym.DisplayHint
		if sym.DefVal != nil {
			if d, ok := b.r.ValidateDefault(sym.Module, sym.DefVal, flat); ok {
				out.Default = &DefaultDoc{Format: d.Format.String(), Value: d.Value, Labels: d.Labels}
			}
		}
	}
	for _, item := range sym.Index {
		ref := b.ref(item.Object)
		out.Indices = append(out.Indices, IndexDoc{Module: ref.Module, Object: ref.Object, Implied: item.Implied})
	}
	if sym.Augments != "" {
		ref := b.ref(sym.Augments)
		out.Augmention = &ref
	}

	switch d := sym.Decl.(type) {
	case *module.Notification:
		out.Objects = b.refs(d.Objects)
	case *module.ObjectGroup:
		out.Objects = b.refs(d.Objects)
	case *module.NotificationGroup:
		out.Objects = b.refs(d.Notifications)
	case *module.Capabilities:
		out.Release = d.ProductRelease
	case *module.ModuleIdentity:
		id := &IdentityDoc{LastUpdated: d.LastUpdated}
		if b.texts {
			id.Organization, id.ContactInfo = d.Organization, d.ContactInfo
		}
		for _, rev := range d.Revisions {
			rd := RevisionDoc{Revision: rev.Date}
			if b.texts {
				rd.Description = rev.Description
			}
			id.Revisions = append(id.Revisions, rd)
		}
		out.Identity = id
	}
	return out, nil
}

func (b *docBuilder) syntax(s *symtab.Syntax) (*SyntaxDoc, resolver.Flat, error) {
	flat, err := b.r.FlattenSyntax(s)
	if err != nil {
		return nil, resolver.Flat{}, err
	}
	doc := &SyntaxDoc{
		Type:   s.Type,
		Module: s.Module,
		Base:   flat.Base.String(),
		Entry:  s.Entry,
	}
	if flat.Convention != (symtab.Ref{}) {
		doc.Convention = flat.Convention.String()
	}
	named := make([]NamedDoc, len(flat.Constraint.Enums))
	for i, e := range flat.Constraint.Enums {
		named[i] = NamedDoc{Name: e.Label, Value: e.Value}
	}
	if len(named) > 0 {
		if flat.Base == types.BaseBits {
			doc.Bits = named
		} else {
			doc.Enums = named
		}
	}
	doc.Ranges = rangeDocs(flat.Constraint.Ranges)
	doc.Sizes = rangeDocs(flat.Constraint.Sizes)
	return doc, flat, nil
}

func rangeDocs(sets []symtab.RangeSet) [][]RangeDoc {
	if len(sets) == 0 {
		return nil
	}
	out := make([][]RangeDoc, len(sets))
	for i, set := range sets {
		for _, r := range set {
			out[i] = append(out[i], RangeDoc{Min: Number(r.Min), Max: Number(r.Max)})
		}
	}
	return out
}

// ref names the module that defines a name used in this module.
func (b *docBuilder) ref(name string) ObjectRef {
	if ref, ok := b.table.Resolve(name); ok {
		return ObjectRef{Module: ref.Module, Object: ref.Name}
	}
	b.logger.Log(slog.LevelDebug, "reference to undefined object",
		slog.String("module", b.table.Module), slog.String("object", name))
	return ObjectRef{Module: b.table.Module, Object: name}
}

func (b *docBuilder) refs(names []string) []ObjectRef {
	out := make([]ObjectRef, len(names))
	for i, n := range names {
		out[i] = b.ref(n)
	}
	return out
}

func className(sym *symtab.Symbol) string {
	switch sym.Kind {
	case module.KindObjectType:
		return "objecttype"
	case module.KindTypeDecl:
		if sym.TextualConvention {
			return "textualconvention"
		}
		return "type"
	case module.KindModuleIdentity:
		return "moduleidentity"
	case module.KindObjectIdentity, module.KindValue:
		return "objectidentity"
	case module.KindNotification:
		return "notificationtype"
	case module.KindObjectGroup:
		return "objectgroup"
	case module.KindNotificationGroup:
		return "notificationgroup"
	case module.KindCompliance:
		return "modulecompliance"
	case module.KindCapabilities:
		return "agentcapabilities"
	}
	return sym.Kind.String()
}

func nodeType(sym *symtab.Symbol) string {
	switch {
	case sym.IsTable:
		return "table"
	case sym.IsRow:
		return "row"
	case sym.IsColumn:
		return "column"
	}
	return "scalar"
}

func reference(decl module.Declaration) string {
	switch d := decl.(type) {
	case *module.ObjectType:
		return d.Reference
	case *module.TypeDecl:
		return d.Reference
	case *module.ObjectIdentity:
		return d.Reference
	case *module.Notification:
		return d.Reference
	case *module.ObjectGroup:
		return d.Reference
	case *module.NotificationGroup:
		return d.Reference
	case *module.Compliance:
		return d.Reference
	case *module.Capabilities:
		return d.Reference
	}
	return ""
}
