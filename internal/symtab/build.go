package symtab

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"

	"github.com/golangsnmp/mibc/internal/graph"
	"github.com/golangsnmp/mibc/internal/lexer"
	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/types"
)

// Pending is a symbol waiting for its parents. Parents lists the type
// names, AUGMENTS target and synthesized index columns the symbol
// depends on; OID parents are resolved later and never block.
type Pending struct {
	Symbol  *Symbol
	Parents []string
}

// fakeColumnPrefix names hidden index columns; their arcs count down
// from the largest arc value to stay clear of real columns.
const fakeColumnPrefix = "fakeIndexColumn"

type builder struct {
	mod     *module.Module
	prior   Tables
	cfg     types.DiagnosticConfig
	table   *Table
	rows    map[string]bool // row markers: SEQUENCE OF entry types and repaired rows
	local   map[string]bool // every name declared in the module
	waiting []*Pending
	fakes   int
	types.Logger
}

// Build constructs the symbol table of mod. prior holds tables already
// built in this run and is only read, to check explicit imports
// against modules that are already known.
func Build(mod *module.Module, prior Tables, cfg types.DiagnosticConfig, logger *slog.Logger) (*Table, error) {
	b := &builder{
		mod:   mod,
		prior: prior,
		cfg:   cfg,
		table: &Table{
			Module:    mod.Name,
			Language:  mod.Language,
			Symbols:   make(map[string]*Symbol),
			Sequences: make(map[string]*module.Sequence),
			Imports:   make(ImportMap),
			Source:    mod,
		},
		rows:   make(map[string]bool),
		local:  make(map[string]bool),
		Logger: types.Logger{L: logger},
	}
	if err := b.collectNames(); err != nil {
		return nil, err
	}
	if err := b.buildImports(); err != nil {
		return nil, err
	}
	b.markRowTypes()

	for _, decl := range mod.Declarations {
		switch d := decl.(type) {
		case *module.Macro:
			continue
		case *module.Sequence:
			b.table.Sequences[d.Name] = d
			continue
		}
		b.offer(b.pendingFor(decl))
	}

	if len(b.waiting) > 0 {
		b.repairRows()
	}
	if len(b.waiting) > 0 {
		return nil, b.unresolvedError()
	}

	b.classify()
	b.Log(slog.LevelDebug, "symbol table built",
		slog.String("module", mod.Name),
		slog.Int("symbols", len(b.table.Symbols)),
		slog.Int("rows", len(b.table.Rows)),
		slog.Int("columns", len(b.table.Columns)))
	return b.table, nil
}

// collectNames rejects duplicate declarations before anything is
// registered.
func (b *builder) collectNames() error {
	for _, decl := range b.mod.Declarations {
		if decl.Kind() == module.KindMacro {
			continue
		}
		name := decl.DeclName()
		if b.local[name] {
			return &DuplicateSymbolError{Module: b.mod.Name, Name: name}
		}
		b.local[name] = true
	}
	return nil
}

// buildImports applies legacy rewrites, validates explicit imports
// against known modules, then unions in the constant imports.
func (b *builder) buildImports() error {
	for _, group := range b.mod.Imports {
		for _, sym := range group.Symbols {
			target, changed := module.RewriteImport(group.Module, sym)
			ref := Ref{Module: target.Module, Name: target.Name}
			if changed {
				b.diag(types.DiagLegacyImport, types.SeverityInfo,
					fmt.Sprintf("import %s from %s rewritten to %s", sym, group.Module, ref))
			}
			if err := b.checkExported(ref); err != nil {
				return err
			}
			b.table.Imports[sym] = ref
		}
	}
	for _, group := range module.ConstantImports {
		if group.Module == b.mod.Name {
			continue
		}
		for _, sym := range group.Symbols {
			if b.local[sym] {
				continue
			}
			if _, ok := b.table.Imports[sym]; ok {
				continue
			}
			b.table.Imports[sym] = Ref{Module: group.Module, Name: sym}
		}
	}
	return nil
}

func (b *builder) checkExported(ref Ref) error {
	if lexer.IsReserved(ref.Name) {
		return nil
	}
	t, ok := b.prior[ref.Module]
	if !ok {
		return nil
	}
	if _, ok := t.Symbols[ref.Name]; ok {
		return nil
	}
	if b.cfg.IsStrict() {
		return &UnknownSymbolError{Module: ref.Module, Name: ref.Name, From: b.mod.Name}
	}
	b.diag(types.DiagImportNotExported, types.SeverityMinor,
		fmt.Sprintf("%s is not defined in %s", ref.Name, ref.Module))
	return nil
}

// markRowTypes records the entry type of every SEQUENCE OF.
func (b *builder) markRowTypes() {
	for d := range b.mod.DeclarationsOf(module.KindObjectType) {
		obj := d.(*module.ObjectType)
		if obj.Syntax.IsTable() && obj.Syntax.Entry != "" {
			b.rows[obj.Syntax.Entry] = true
		}
	}
}

// pendingFor turns a declaration into a symbol and its parent list.
// Hidden index columns are registered immediately, ahead of the row.
func (b *builder) pendingFor(decl module.Declaration) *Pending {
	sym := &Symbol{
		Name:   decl.DeclName(),
		Module: b.mod.Name,
		Kind:   decl.Kind(),
		Oid:    decl.DeclOid(),
		Decl:   decl,
	}
	p := &Pending{Symbol: sym}

	switch d := decl.(type) {
	case *module.ObjectType:
		sym.Syntax = b.syntaxOf(d.Syntax)
		sym.Status = d.Status
		sym.Access = d.Access
		sym.Units = d.Units
		sym.Description = d.Description
		sym.Augments = d.Augments
		sym.DefVal = d.DefVal
		sym.Index = slices.Clone(d.Index)
		p.Parents = append(p.Parents, parentType(d.Syntax))
		if d.Augments != "" {
			p.Parents = append(p.Parents, d.Augments)
		}
		for i, item := range sym.Index {
			if _, ok := types.Primitive(item.Object); !ok {
				continue
			}
			fake := b.fakeColumn(sym.Name, item.Object)
			sym.Index[i].Object = fake.Name
			p.Parents = append(p.Parents, fake.Name)
		}
	case *module.TypeDecl:
		sym.Syntax = b.syntaxOf(d.Syntax)
		sym.TextualConvention = d.TextualConvention
		sym.DisplayHint = d.DisplayHint
		sym.Status = d.Status
		sym.Description = d.Description
		p.Parents = append(p.Parents, parentType(d.Syntax))
	case *module.ModuleIdentity:
		sym.Description = d.Description
	case *module.ObjectIdentity:
		sym.Status = d.Status
		sym.Description = d.Description
	case *module.Notification:
		sym.Status = d.Status
		sym.Description = d.Description
	case *module.ObjectGroup:
		sym.Status = d.Status
		sym.Description = d.Description
	case *module.NotificationGroup:
		sym.Status = d.Status
		sym.Description = d.Description
	case *module.Compliance:
		sym.Status = d.Status
		sym.Description = d.Description
	case *module.Capabilities:
		sym.Status = d.Status
		sym.Description = d.Description
	}
	return p
}

// parentType is the name a syntax depends on for registration. A
// module-qualified reference needs no import and blocks nothing.
func parentType(s module.Syntax) string {
	if s.Module != "" {
		return ""
	}
	if s.IsTable() {
		return s.Entry
	}
	return s.Type
}

// syntaxOf resolves the defining module of a syntax reference.
func (b *builder) syntaxOf(s module.Syntax) *Syntax {
	out := &Syntax{Type: s.Type, Module: s.Module, Entry: s.Entry, Constraint: ConstraintOf(s)}
	switch {
	case s.Module != "":
	case s.IsTable() || isConstructed(s.Type):
	case b.local[s.Type]:
		out.Module = b.mod.Name
	default:
		if ref, ok := b.table.Imports[s.Type]; ok {
			out.Module, out.Type = ref.Module, ref.Name
		}
	}
	return out
}

func isConstructed(name string) bool {
	return name == "SEQUENCE OF" || name == "SEQUENCE" || name == "CHOICE"
}

// fakeColumn registers a hidden column for an SMIv1 INDEX entry that
// names a type. Its OID hangs off the row.
func (b *builder) fakeColumn(row, typeName string) *Symbol {
	b.fakes++
	arc := uint32(math.MaxUint32 - uint32(b.fakes-1))
	sym := &Symbol{
		Name:   fakeColumnPrefix + strconv.Itoa(b.fakes),
		Module: b.mod.Name,
		Kind:   module.KindObjectType,
		Oid: &module.OidValue{Arcs: []module.Arc{
			{Name: row},
			{Number: arc, HasNumber: true},
		}},
		Syntax:    &Syntax{Type: typeName},
		Access:    types.AccessNotAccessible,
		Status:    types.StatusMandatory,
		Synthetic: true,
	}
	b.register(sym)
	return sym
}

// resolvable reports whether a parent name is available: registered,
// imported, a base type, or a row marker.
func (b *builder) resolvable(name string) bool {
	if name == "" || isConstructed(name) {
		return true
	}
	if _, ok := b.table.Symbols[name]; ok {
		return true
	}
	if _, ok := b.table.Imports[name]; ok {
		return true
	}
	if _, ok := types.Primitive(name); ok {
		return true
	}
	return b.rows[name]
}

func (b *builder) ready(p *Pending) bool {
	for _, parent := range p.Parents {
		if !b.resolvable(parent) {
			return false
		}
	}
	return true
}

func (b *builder) register(sym *Symbol) {
	b.table.Symbols[sym.Name] = sym
	if b.TraceEnabled() {
		b.Trace("symbol registered", slog.String("module", b.mod.Name),
			slog.String("symbol", sym.Name), slog.String("kind", sym.Kind.String()))
	}
}

// offer registers p when it is ready and then drains the waiting list
// to a fixed point; otherwise p waits.
func (b *builder) offer(p *Pending) {
	if !b.ready(p) {
		b.waiting = append(b.waiting, p)
		return
	}
	b.register(p.Symbol)
	b.drain()
}

// drain registers waiting symbols until a full pass makes no progress.
// Each productive pass registers at least one symbol, so the number of
// passes is bounded by the number waiting.
func (b *builder) drain() {
	for limit := len(b.waiting); limit >= 0 && len(b.waiting) > 0; limit-- {
		var still []*Pending
		for _, p := range b.waiting {
			if b.ready(p) {
				b.register(p.Symbol)
			} else {
				still = append(still, p)
			}
		}
		progressed := len(still) < len(b.waiting)
		b.waiting = still
		if !progressed {
			return
		}
	}
}

// repairRows is the single leniency pass: an object whose syntax names
// a SEQUENCE type that no table references is taken to be a row.
func (b *builder) repairRows() {
	repaired := false
	for _, p := range b.waiting {
		if p.Symbol.Kind != module.KindObjectType || len(p.Parents) == 0 {
			continue
		}
		if _, ok := b.table.Sequences[p.Parents[0]]; !ok {
			continue
		}
		b.rows[p.Parents[0]] = true
		repaired = true
		b.diag(types.DiagRowLeniency, types.SeverityMinor,
			fmt.Sprintf("%s uses SEQUENCE type %s without a table; treating it as a row",
				p.Symbol.Name, p.Parents[0]))
	}
	if repaired {
		b.drain()
	}
}

func (b *builder) unresolvedError() error {
	err := &UnresolvedParentsError{Module: b.mod.Name}
	g := graph.New[string]()
	for _, p := range b.waiting {
		u := Unresolved{Name: p.Symbol.Name}
		for _, parent := range p.Parents {
			if !b.resolvable(parent) {
				u.Missing = append(u.Missing, parent)
				g.AddEdge(p.Symbol.Name, parent)
			}
		}
		err.Symbols = append(err.Symbols, u)
	}
	err.Cycles = g.Cycles()
	return err
}

// classify records declaration order and table roles once every
// symbol is registered.
func (b *builder) classify() {
	t := b.table
	for _, decl := range b.mod.Declarations {
		if sym, ok := t.Symbols[decl.DeclName()]; ok && sym.Decl == decl {
			t.Order = append(t.Order, sym.Name)
		}
	}
	// hidden columns follow the declarations they were made for
	for i := 1; i <= b.fakes; i++ {
		t.Order = append(t.Order, fakeColumnPrefix+strconv.Itoa(i))
	}

	for _, name := range t.Order {
		sym := t.Symbols[name]
		if sym.Kind != module.KindObjectType || sym.Syntax == nil {
			continue
		}
		switch {
		case sym.Syntax.Type == "SEQUENCE OF":
			sym.IsTable = true
			t.Tables = append(t.Tables, name)
		case b.rows[sym.Syntax.Type]:
			sym.IsRow = true
			t.Rows = append(t.Rows, name)
		}
	}
	for _, name := range t.Order {
		sym := t.Symbols[name]
		if sym.Kind != module.KindObjectType || sym.Oid == nil || len(sym.Oid.Arcs) == 0 {
			continue
		}
		first := sym.Oid.Arcs[0]
		if first.HasNumber || first.Module != "" && first.Module != b.mod.Name {
			continue
		}
		if parent, ok := t.Symbols[first.Name]; ok && parent.IsRow {
			sym.IsColumn = true
			sym.TableParent = parent.Name
			t.Columns = append(t.Columns, name)
		}
	}
}

func (b *builder) diag(code string, sev types.Severity, msg string) {
	b.Log(slog.LevelDebug, msg, slog.String("module", b.mod.Name), slog.String("code", code))
	if !b.cfg.ShouldReport(code, sev) {
		return
	}
	b.table.Diagnostics = append(b.table.Diagnostics, types.Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Module:   b.mod.Name,
	})
}
