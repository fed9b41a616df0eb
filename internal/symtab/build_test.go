package symtab

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/parser"
	"github.com/golangsnmp/mibc/internal/types"
)

func parse(t *testing.T, src string) *module.Module {
	t.Helper()
	mods := parser.Parse([]byte(src), nil, types.DefaultConfig())
	require.Len(t, mods, 1)
	require.False(t, mods[0].HasErrors(), "parse errors: %v", mods[0].Diagnostics)
	return mods[0]
}

func build(t *testing.T, src string) *Table {
	t.Helper()
	tbl, err := Build(parse(t, src), nil, types.DefaultConfig(), nil)
	require.NoError(t, err)
	return tbl
}

// baseTables builds the built-in modules for import checks.
func baseTables(t *testing.T) Tables {
	t.Helper()
	tables := make(Tables)
	for _, name := range module.BaseModuleNames() {
		src, ok := module.BaseSource(name)
		require.True(t, ok)
		tbl, err := Build(parse(t, string(src)), tables, types.DefaultConfig(), nil)
		require.NoError(t, err, name)
		tables[name] = tbl
	}
	return tables
}

const fooMIB = `FOO-MIB DEFINITIONS ::= BEGIN
IMPORTS
	OBJECT-TYPE, Integer32, enterprises FROM SNMPv2-SMI
	DisplayString FROM SNMPv2-TC;

foo OBJECT IDENTIFIER ::= { enterprises 99 }

FooName ::= TEXTUAL-CONVENTION
	STATUS current
	DESCRIPTION "name"
	SYNTAX DisplayString (SIZE (0..32))

fooTable OBJECT-TYPE
	SYNTAX SEQUENCE OF FooEntry
	MAX-ACCESS not-accessible
	STATUS current
	DESCRIPTION "table"
	::= { foo 1 }

fooEntry OBJECT-TYPE
	SYNTAX FooEntry
	MAX-ACCESS not-accessible
	STATUS current
	DESCRIPTION "row"
	INDEX { fooIndex }
	::= { fooTable 1 }

FooEntry ::= SEQUENCE {
	fooIndex Integer32,
	fooName  FooName
}

fooIndex OBJECT-TYPE
	SYNTAX Integer32 (1..100)
	MAX-ACCESS not-accessible
	STATUS current
	DESCRIPTION "index"
	::= { fooEntry 1 }

fooName OBJECT-TYPE
	SYNTAX FooName
	MAX-ACCESS read-only
	STATUS current
	DESCRIPTION "name"
	::= { fooEntry 2 }
END`

func TestBuildTableRoles(t *testing.T) {
	tbl := build(t, fooMIB)

	require.Equal(t, []string{"foo", "FooName", "fooTable", "fooEntry", "fooIndex", "fooName"}, tbl.Order)
	require.Equal(t, []string{"fooTable"}, tbl.Tables)
	require.Equal(t, []string{"fooEntry"}, tbl.Rows)
	require.Equal(t, []string{"fooIndex", "fooName"}, tbl.Columns)
	require.Contains(t, tbl.Sequences, "FooEntry")
	require.NotContains(t, tbl.Symbols, "FooEntry", "sequence types are not symbols")

	name := tbl.Symbols["fooName"]
	require.True(t, name.IsColumn)
	require.Equal(t, "fooEntry", name.TableParent)
	require.Equal(t, "FooName", name.Syntax.Type)
	require.Equal(t, "FOO-MIB", name.Syntax.Module)

	tc := tbl.Symbols["FooName"]
	require.True(t, tc.TextualConvention)
	require.Equal(t, Ref{Module: "SNMPv2-TC", Name: "DisplayString"}, Ref{Module: tc.Syntax.Module, Name: tc.Syntax.Type})

	idx := tbl.Symbols["fooIndex"]
	require.Equal(t, "SNMPv2-SMI", idx.Syntax.Module)
	require.True(t, idx.Syntax.IsBuiltin())
	require.Len(t, idx.Syntax.Constraint.Ranges, 1)
}

func TestBuildOrderIndependent(t *testing.T) {
	want := build(t, fooMIB)

	mod := parse(t, fooMIB)
	slices.Reverse(mod.Declarations)
	got, err := Build(mod, nil, types.DefaultConfig(), nil)
	require.NoError(t, err)

	require.Len(t, got.Symbols, len(want.Symbols))
	for name, w := range want.Symbols {
		g, ok := got.Symbols[name]
		require.True(t, ok, name)
		require.Equal(t, w.Kind, g.Kind, name)
		require.Equal(t, w.IsRow, g.IsRow, name)
		require.Equal(t, w.IsColumn, g.IsColumn, name)
		require.Equal(t, w.IsTable, g.IsTable, name)
		require.Equal(t, w.TableParent, g.TableParent, name)
		require.Equal(t, w.Syntax, g.Syntax, name)
	}
	require.ElementsMatch(t, want.Columns, got.Columns)
}

func TestBuildRowLeniency(t *testing.T) {
	tbl := build(t, `C-MIB DEFINITIONS ::= BEGIN
	cEntry OBJECT-TYPE
		SYNTAX CEntry
		ACCESS not-accessible
		STATUS mandatory
		INDEX { cIndex }
		::= { cTable 1 }
	CEntry ::= SEQUENCE { cIndex INTEGER }
	cIndex OBJECT-TYPE
		SYNTAX INTEGER
		ACCESS read-only
		STATUS mandatory
		::= { cEntry 1 }
	cTable OBJECT IDENTIFIER ::= { iso 3 }
	END`)

	require.True(t, tbl.Symbols["cEntry"].IsRow)
	require.Equal(t, []string{"cEntry"}, tbl.Rows)
	require.Equal(t, []string{"cIndex"}, tbl.Columns)
	require.Len(t, tbl.Diagnostics, 1)
	require.Equal(t, types.DiagRowLeniency, tbl.Diagnostics[0].Code)
}

func TestBuildDuplicateSymbol(t *testing.T) {
	mod := parse(t, `DUP-MIB DEFINITIONS ::= BEGIN
	a OBJECT IDENTIFIER ::= { iso 3 }
	a OBJECT IDENTIFIER ::= { iso 4 }
	END`)

	_, err := Build(mod, nil, types.PermissiveConfig(), nil)
	var dup *DuplicateSymbolError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "a", dup.Name)
	require.ErrorIs(t, err, ErrSemantic)
}

func TestBuildUnresolvedParents(t *testing.T) {
	mod := parse(t, `BAD-MIB DEFINITIONS ::= BEGIN
	x OBJECT-TYPE
		SYNTAX MissingType
		ACCESS read-only
		STATUS mandatory
		::= { iso 1 }
	y OBJECT-TYPE
		SYNTAX INTEGER
		ACCESS read-only
		STATUS mandatory
		AUGMENTS { nowhere }
		::= { iso 2 }
	Loop1 ::= Loop2
	Loop2 ::= Loop1
	fine OBJECT IDENTIFIER ::= { iso 3 }
	END`)

	_, err := Build(mod, nil, types.DefaultConfig(), nil)
	var unresolved *UnresolvedParentsError
	require.ErrorAs(t, err, &unresolved)
	require.True(t, errors.Is(err, ErrSemantic))

	names := make(map[string][]string)
	for _, u := range unresolved.Symbols {
		names[u.Name] = u.Missing
	}
	require.Equal(t, map[string][]string{
		"x":     {"MissingType"},
		"y":     {"nowhere"},
		"Loop1": {"Loop2"},
		"Loop2": {"Loop1"},
	}, names)
	require.Equal(t, [][]string{{"Loop1", "Loop2"}}, unresolved.Cycles)
	require.Contains(t, err.Error(), "MissingType")
}

func TestBuildFakeIndexColumns(t *testing.T) {
	tbl := build(t, `V1-MIB DEFINITIONS ::= BEGIN
	vTable OBJECT-TYPE
		SYNTAX SEQUENCE OF VEntry
		ACCESS not-accessible
		STATUS mandatory
		::= { iso 5 }
	vEntry OBJECT-TYPE
		SYNTAX VEntry
		ACCESS not-accessible
		STATUS mandatory
		INDEX { INTEGER, OCTET STRING }
		::= { vTable 1 }
	VEntry ::= SEQUENCE { vValue INTEGER }
	vValue OBJECT-TYPE
		SYNTAX INTEGER
		ACCESS read-only
		STATUS mandatory
		::= { vEntry 1 }
	END`)

	row := tbl.Symbols["vEntry"]
	require.Equal(t, []module.IndexItem{{Object: "fakeIndexColumn1"}, {Object: "fakeIndexColumn2"}}, row.Index)

	fake := tbl.Symbols["fakeIndexColumn1"]
	require.True(t, fake.Synthetic)
	require.True(t, fake.IsColumn)
	require.Equal(t, "vEntry", fake.TableParent)
	require.Equal(t, "INTEGER", fake.Syntax.Type)
	require.Equal(t, uint32(4294967295), fake.Oid.Arcs[1].Number)
	require.Equal(t, uint32(4294967294), tbl.Symbols["fakeIndexColumn2"].Oid.Arcs[1].Number)
	require.Equal(t, []string{"vValue", "fakeIndexColumn1", "fakeIndexColumn2"}, tbl.Columns)
}

func TestBuildLegacyImports(t *testing.T) {
	tbl := build(t, `OLD-MIB DEFINITIONS ::= BEGIN
	IMPORTS Counter, enterprises FROM RFC1155-SMI
		OBJECT-TYPE FROM RFC-1212
		DisplayString FROM RFC1213-MIB;
	oldCount OBJECT-TYPE
		SYNTAX Counter
		ACCESS read-only
		STATUS mandatory
		::= { enterprises 1 }
	END`)

	require.Equal(t, Ref{"SNMPv2-SMI", "Counter32"}, tbl.Imports["Counter"])
	require.Equal(t, Ref{"SNMPv2-SMI", "OBJECT-TYPE"}, tbl.Imports["OBJECT-TYPE"])
	require.Equal(t, Ref{"SNMPv2-TC", "DisplayString"}, tbl.Imports["DisplayString"])

	syn := tbl.Symbols["oldCount"].Syntax
	require.Equal(t, "Counter32", syn.Type)
	require.Equal(t, "SNMPv2-SMI", syn.Module)
}

func TestBuildConstantImports(t *testing.T) {
	tbl := build(t, `CONST-MIB DEFINITIONS ::= BEGIN
	Integer32 ::= INTEGER (0..10)
	x OBJECT IDENTIFIER ::= { iso 3 }
	END`)

	require.Equal(t, Ref{"SNMPv2-SMI", "iso"}, tbl.Imports["iso"])
	require.Equal(t, Ref{"SNMPv2-TC", "DisplayString"}, tbl.Imports["DisplayString"])
	_, imported := tbl.Imports["Integer32"]
	require.False(t, imported, "local definition shadows constant import")

	ref, ok := tbl.Resolve("Integer32")
	require.True(t, ok)
	require.Equal(t, "CONST-MIB", ref.Module)
}

func TestBuildImportNotExported(t *testing.T) {
	prior := baseTables(t)
	src := `IMP-MIB DEFINITIONS ::= BEGIN
	IMPORTS NoSuchThing, DisplayString, TEXTUAL-CONVENTION FROM SNMPv2-TC;
	END`

	tbl, err := Build(parse(t, src), prior, types.DefaultConfig(), nil)
	require.NoError(t, err)
	require.Len(t, tbl.Diagnostics, 1)
	require.Equal(t, types.DiagImportNotExported, tbl.Diagnostics[0].Code)

	_, err = Build(parse(t, src), prior, types.StrictConfig(), nil)
	var unknown *UnknownSymbolError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "NoSuchThing", unknown.Name)
	require.Equal(t, "SNMPv2-TC", unknown.Module)
}

func TestBuildBaseModules(t *testing.T) {
	tables := baseTables(t)
	smi := tables["SNMPv2-SMI"]
	require.Contains(t, smi.Symbols, "enterprises")
	require.Contains(t, smi.Symbols, "Counter64")
	require.Contains(t, tables["SNMPv2-TC"].Symbols, "RowStatus")
	require.Contains(t, tables["RFC1155-SMI"].Symbols, "NetworkAddress")
}
