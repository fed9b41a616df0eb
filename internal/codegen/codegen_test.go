package codegen

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/parser"
	"github.com/golangsnmp/mibc/internal/resolver"
	"github.com/golangsnmp/mibc/internal/symtab"
	"github.com/golangsnmp/mibc/internal/types"
)

func buildTables(t *testing.T, srcs ...string) (symtab.Tables, []*module.Module) {
	t.Helper()
	tables := make(symtab.Tables)
	var mods []*module.Module
	add := func(src string) []*module.Module {
		parsed := parser.Parse([]byte(src), nil, types.DefaultConfig())
		for _, m := range parsed {
			require.False(t, m.HasErrors(), "%s: %v", m.Name, m.Diagnostics)
			tbl, err := symtab.Build(m, tables, types.DefaultConfig(), nil)
			require.NoError(t, err, m.Name)
			tables[m.Name] = tbl
		}
		return parsed
	}
	for _, name := range module.BaseModuleNames() {
		src, _ := module.BaseSource(name)
		add(string(src))
	}
	for _, src := range srcs {
		mods = append(mods, add(src)...)
	}
	return tables, mods
}

const widgetMIB = `WIDGET-MIB DEFINITIONS ::= BEGIN
IMPORTS
	MODULE-IDENTITY, OBJECT-TYPE, NOTIFICATION-TYPE, Integer32, enterprises FROM SNMPv2-SMI
	TEXTUAL-CONVENTION, DisplayString FROM SNMPv2-TC;

widgetMIB MODULE-IDENTITY
	LAST-UPDATED "202402030000Z"
	ORGANIZATION "Widgets"
	CONTACT-INFO "ops@example.com"
	DESCRIPTION "widgets"
	REVISION "202402030000Z"
	DESCRIPTION "initial"
	::= { enterprises 4242 }

WidgetState ::= TEXTUAL-CONVENTION
	STATUS current
	DESCRIPTION "state"
	SYNTAX INTEGER { idle(1), busy(2) }

widgetTable OBJECT-TYPE
	SYNTAX SEQUENCE OF WidgetEntry
	MAX-ACCESS not-accessible
	STATUS current
	DESCRIPTION "widgets"
	::= { widgetMIB 1 }

widgetEntry OBJECT-TYPE
	SYNTAX WidgetEntry
	MAX-ACCESS not-accessible
	STATUS current
	DESCRIPTION "a widget"
	INDEX { widgetIndex }
	::= { widgetTable 1 }

WidgetEntry ::= SEQUENCE {
	widgetIndex Integer32,
	widgetName  DisplayString,
	widgetState WidgetState
}

widgetIndex OBJECT-TYPE
	SYNTAX Integer32 (1..1000)
	MAX-ACCESS not-accessible
	STATUS current
	DESCRIPTION "index"
	::= { widgetEntry 1 }

widgetName OBJECT-TYPE
	SYNTAX DisplayString (SIZE (0..16))
	MAX-ACCESS read-create
	STATUS current
	DESCRIPTION "name"
	DEFVAL { "unnamed" }
	::= { widgetEntry 2 }

widgetState OBJECT-TYPE
	SYNTAX WidgetState
	MAX-ACCESS read-only
	STATUS current
	DESCRIPTION "state"
	DEFVAL { bogus }
	::= { widgetEntry 3 }

widgetAlarm NOTIFICATION-TYPE
	OBJECTS { widgetState }
	STATUS current
	DESCRIPTION "alarm"
	::= { widgetMIB 2 }
END`

func findSymbol(t *testing.T, doc *Document, name string) *Symbol {
	t.Helper()
	for _, s := range doc.Symbols {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("symbol %s not in document", name)
	return nil
}

func TestBuildDocument(t *testing.T) {
	tables, mods := buildTables(t, widgetMIB)
	doc, err := Build(mods[0], tables, Options{Texts: true, Comments: []string{"test"}})
	require.NoError(t, err)

	require.Equal(t, "WIDGET-MIB", doc.Meta.Module)
	require.Equal(t, "SMIv2", doc.Meta.Language)
	require.Equal(t, "1.3.6.1.4.1.4242", doc.Meta.Info.Oid.String())
	require.Equal(t, []string{"test"}, doc.Meta.Comments)
	require.Len(t, doc.Imports, 2)

	table := findSymbol(t, doc, "widgetTable")
	require.Equal(t, "table", table.NodeType)
	require.Equal(t, "WidgetEntry", table.Syntax.Entry)

	entry := findSymbol(t, doc, "widgetEntry")
	require.Equal(t, "row", entry.NodeType)
	require.Equal(t, []IndexDoc{{Module: "WIDGET-MIB", Object: "widgetIndex"}}, entry.Indices)

	name := findSymbol(t, doc, "widgetName")
	require.Equal(t, "column", name.NodeType)
	require.Equal(t, "1.3.6.1.4.1.4242.1.1.2", name.Oid)
	require.Equal(t, "read-create", name.MaxAccess)
	require.Equal(t, "OCTET STRING", name.Syntax.Base)
	require.Equal(t, "SNMPv2-TC.DisplayString", name.Syntax.Convention)
	require.Equal(t, &DefaultDoc{Format: "string", Value: "unnamed"}, name.Default)
	require.Equal(t, "name", name.Description)

	state := findSymbol(t, doc, "widgetState")
	require.Nil(t, state.Default, "invalid default dropped")
	require.Equal(t, []NamedDoc{{Name: "idle", Value: 1}, {Name: "busy", Value: 2}}, state.Syntax.Enums)

	tc := findSymbol(t, doc, "WidgetState")
	require.Equal(t, "textualconvention", tc.Class)

	alarm := findSymbol(t, doc, "widgetAlarm")
	require.Equal(t, "notificationtype", alarm.Class)
	require.Equal(t, []ObjectRef{{Module: "WIDGET-MIB", Object: "widgetState"}}, alarm.Objects)

	ident := findSymbol(t, doc, "widgetMIB")
	require.Equal(t, "moduleidentity", ident.Class)
	require.Equal(t, "Widgets", ident.Identity.Organization)
}

func TestBuildDocumentWithoutTexts(t *testing.T) {
	tables, mods := buildTables(t, widgetMIB)
	doc, err := Build(mods[0], tables, Options{})
	require.NoError(t, err)
	name := findSymbol(t, doc, "widgetName")
	require.Empty(t, name.Description)
	require.Empty(t, findSymbol(t, doc, "widgetMIB").Identity.Organization)
}

func TestJSONGenerate(t *testing.T) {
	tables, mods := buildTables(t, widgetMIB)
	info, data, err := JSON{}.Generate(mods[0], tables, Options{})
	require.NoError(t, err)
	require.Equal(t, "widgetMIB", info.Identity)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, "WIDGET-MIB", doc.Meta.Module)
	require.Equal(t, "1.3.6.1.4.1.4242", doc.Meta.Info.Oid.String())
	idx := findSymbol(t, &doc, "widgetIndex")
	require.Equal(t, "1", idx.Syntax.Ranges[1][0].Min.String())
	require.Equal(t, "1000", idx.Syntax.Ranges[1][0].Max.String())
	require.Contains(t, string(data), `"min": -2147483648`)
}

func TestYAMLGenerate(t *testing.T) {
	tables, mods := buildTables(t, widgetMIB)
	_, data, err := YAML{}.Generate(mods[0], tables, Options{})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "meta:\n"))

	var doc Document
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Equal(t, "WIDGET-MIB", doc.Meta.Module)
	require.Equal(t, "2024", doc.Meta.Info.Revision.Format("2006"))
	require.Equal(t, "1000", findSymbol(t, &doc, "widgetIndex").Syntax.Ranges[1][0].Max.String())
}

func TestNullGenerate(t *testing.T) {
	tables, mods := buildTables(t, widgetMIB)
	info, data, err := Null{}.Generate(mods[0], tables, Options{})
	require.NoError(t, err)
	require.Nil(t, data)
	require.Equal(t, "1.3.6.1.4.1.4242", info.Enterprise.String())
}

func TestGenerateUnresolvedOid(t *testing.T) {
	tables, mods := buildTables(t, `BROKEN-MIB DEFINITIONS ::= BEGIN
IMPORTS thing FROM ABSENT-MIB;
x OBJECT IDENTIFIER ::= { thing 1 }
END`)
	_, _, err := JSON{}.Generate(mods[0], tables, Options{})
	require.ErrorIs(t, err, symtab.ErrSemantic)
}

func TestSharedResolverSeesDuplicates(t *testing.T) {
	tables, mods := buildTables(t,
		"ONE-MIB DEFINITIONS ::= BEGIN\none OBJECT IDENTIFIER ::= { iso 99 }\nEND",
		"TWO-MIB DEFINITIONS ::= BEGIN\ntwo OBJECT IDENTIFIER ::= { iso 99 }\nEND")
	opts := Options{Resolver: resolver.New(tables, types.StrictConfig(), nil)}

	_, _, err := JSON{}.Generate(mods[0], tables, opts)
	require.NoError(t, err)
	_, _, err = JSON{}.Generate(mods[1], tables, opts)
	var dup *resolver.DuplicateOidError
	require.ErrorAs(t, err, &dup)
}

func TestIndexMerge(t *testing.T) {
	first := []*resolver.MibInfo{
		{Name: "A-MIB", Oid: resolver.Oid{1, 3, 6, 1, 4, 1, 9, 1}, Enterprise: resolver.Oid{1, 3, 6, 1, 4, 1, 9},
			Oids: []string{"1.3.6.1.4.1.9.1", "1.3.6.1.4.1.9.1.1", "1.3.6.1.4.1.9.1.2"}},
		{Name: "B-MIB", Oids: []string{"1.3.6.1.4.1.9.1.2", "1.3.6.1.4.1.9.2"}, Compliance: []string{"1.3.6.1.4.1.9.2"}},
	}
	data, err := JSON{}.GenerateIndex(first, nil, []string{"first run"})
	require.NoError(t, err)

	var idx Index
	require.NoError(t, json.Unmarshal(data, &idx))
	require.Equal(t, []string{"A-MIB"}, idx.Identity["1.3.6.1.4.1.9.1"])
	require.Equal(t, []string{"A-MIB"}, idx.Enterprise["1.3.6.1.4.1.9"])
	require.Equal(t, []string{"B-MIB"}, idx.Compliance["1.3.6.1.4.1.9.2"])
	require.Equal(t, []string{"A-MIB"}, idx.Oids["1.3.6.1.4.1.9.1"])
	require.Equal(t, []string{"A-MIB", "B-MIB"}, idx.Oids["1.3.6.1.4.1.9.1.2"])
	require.NotContains(t, idx.Oids, "1.3.6.1.4.1.9.1.1", "covered by its prefix")

	second := []*resolver.MibInfo{{Name: "B-MIB", Oids: []string{"1.3.6.1.4.1.9.3"}}}
	data, err = JSON{}.GenerateIndex(second, data, nil)
	require.NoError(t, err)
	idx = Index{}
	require.NoError(t, json.Unmarshal(data, &idx))
	require.NotContains(t, idx.Compliance, "1.3.6.1.4.1.9.2", "B-MIB entries replaced")
	require.Equal(t, []string{"B-MIB"}, idx.Oids["1.3.6.1.4.1.9.3"])
	require.Equal(t, []string{"A-MIB"}, idx.Identity["1.3.6.1.4.1.9.1"], "A-MIB kept")
	require.Equal(t, []string{"first run"}, idx.Meta.Comments)

	_, err = JSON{}.GenerateIndex(second, []byte("{not json"), nil)
	require.Error(t, err)
}

func TestNumberEncoding(t *testing.T) {
	big := Number(module.Max)
	data, err := json.Marshal(RangeDoc{Min: Number(module.Int(-5)), Max: big})
	require.NoError(t, err)
	require.Equal(t, `{"min":-5,"max":18446744073709551615}`, string(data))

	var back RangeDoc
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, big, back.Max)

	out, err := yaml.Marshal(RangeDoc{Min: Number(module.Int(0)), Max: big})
	require.NoError(t, err)
	require.Equal(t, "min: 0\nmax: 18446744073709551615\n", string(out))
}
