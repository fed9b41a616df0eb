package parser

import (
	"testing"

	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/testutil"
	"github.com/golangsnmp/mibc/internal/types"
)

func parseOne(t *testing.T, src string) *module.Module {
	t.Helper()
	mods := Parse([]byte(src), nil, types.PermissiveConfig())
	testutil.Len(t, mods, 1, "module count")
	return mods[0]
}

func declAs[T module.Declaration](t *testing.T, mod *module.Module, i int) T {
	t.Helper()
	if i >= len(mod.Declarations) {
		t.Fatalf("declaration %d missing, have %d", i, len(mod.Declarations))
	}
	d, ok := mod.Declarations[i].(T)
	if !ok {
		t.Fatalf("declaration %d is %T", i, mod.Declarations[i])
	}
	return d
}

func TestParseEmptyModule(t *testing.T) {
	mod := parseOne(t, "TEST-MIB DEFINITIONS ::= BEGIN END")
	testutil.Equal(t, "TEST-MIB", mod.Name, "module name")
	testutil.Len(t, mod.Declarations, 0, "no declarations")
	testutil.False(t, mod.HasErrors(), "no errors")
	testutil.Equal(t, types.LanguageSMIv1, mod.Language, "language")
}

func TestParseImports(t *testing.T) {
	mod := parseOne(t, `TEST-MIB DEFINITIONS ::= BEGIN
		IMPORTS
			MODULE-IDENTITY, OBJECT-TYPE, enterprises FROM SNMPv2-SMI
			DisplayString FROM SNMPv2-TC;
		END`)

	testutil.Len(t, mod.Imports, 2, "import groups")
	testutil.Equal(t, "SNMPv2-SMI", mod.Imports[0].Module, "first module")
	testutil.SliceEqual(t, []string{"MODULE-IDENTITY", "OBJECT-TYPE", "enterprises"}, mod.Imports[0].Symbols, "first symbols")
	testutil.SliceEqual(t, []string{"DisplayString"}, mod.Imports[1].Symbols, "second symbols")
	testutil.Equal(t, types.LanguageSMIv2, mod.Language, "language")
}

func TestParseExportsSkipped(t *testing.T) {
	mod := parseOne(t, `OLD-MIB DEFINITIONS ::= BEGIN
		EXPORTS everything, we, have;
		foo OBJECT IDENTIFIER ::= { iso 3 }
		END`)
	testutil.Len(t, mod.Declarations, 1, "declarations")
	testutil.False(t, mod.HasErrors(), "no errors")
}

func TestParseValueAssignment(t *testing.T) {
	mod := parseOne(t, `TEST-MIB DEFINITIONS ::= BEGIN
		testObject OBJECT IDENTIFIER ::= { iso org(3) 6 SNMPv2-SMI.internet }
		END`)

	v := declAs[*module.Value](t, mod, 0)
	testutil.Equal(t, "testObject", v.Name, "name")
	testutil.Len(t, v.Oid.Arcs, 4, "arcs")
	testutil.Equal(t, module.Arc{Name: "iso"}, v.Oid.Arcs[0], "named arc")
	testutil.Equal(t, module.Arc{Name: "org", Number: 3, HasNumber: true}, v.Oid.Arcs[1], "name and number")
	testutil.Equal(t, module.Arc{Number: 6, HasNumber: true}, v.Oid.Arcs[2], "number")
	testutil.Equal(t, module.Arc{Module: "SNMPv2-SMI", Name: "internet"}, v.Oid.Arcs[3], "qualified")
	testutil.Equal(t, "{ iso org(3) 6 SNMPv2-SMI.internet }", v.Oid.String(), "string form")
}

func TestParseObjectType(t *testing.T) {
	mod := parseOne(t, `TEST-MIB DEFINITIONS ::= BEGIN
		testIndex OBJECT-TYPE
			SYNTAX Integer32 (1..100 | 200)
			UNITS "seconds"
			MAX-ACCESS read-only
			STATUS current
			DESCRIPTION "Test description"
			REFERENCE "RFC 0"
			DEFVAL { 7 }
			::= { testEntry 1 }
		END`)

	obj := declAs[*module.ObjectType](t, mod, 0)
	testutil.Equal(t, "Integer32", obj.Syntax.Type, "syntax type")
	testutil.Len(t, obj.Syntax.Ranges, 2, "ranges")
	testutil.Equal(t, "1..100", obj.Syntax.Ranges[0].String(), "first range")
	testutil.Equal(t, "200", obj.Syntax.Ranges[1].String(), "second range")
	testutil.Equal(t, "seconds", obj.Units, "units")
	testutil.Equal(t, types.AccessReadOnly, obj.Access, "access")
	testutil.Equal(t, types.StatusCurrent, obj.Status, "status")
	testutil.Equal(t, "Test description", obj.Description, "description")
	testutil.Equal(t, "RFC 0", obj.Reference, "reference")
	testutil.NotNil(t, obj.DefVal, "defval")
	testutil.Equal(t, module.DefNumber, obj.DefVal.Kind, "defval kind")
	testutil.Equal(t, "7", obj.DefVal.Text, "defval text")
	testutil.Equal(t, "testEntry", obj.Oid.Arcs[0].Name, "parent arc")
}

func TestParseTable(t *testing.T) {
	mod := parseOne(t, `TEST-MIB DEFINITIONS ::= BEGIN
		fooTable OBJECT-TYPE
			SYNTAX SEQUENCE OF FooEntry
			ACCESS not-accessible
			STATUS mandatory
			::= { foo 1 }
		fooEntry OBJECT-TYPE
			SYNTAX FooEntry
			ACCESS not-accessible
			STATUS mandatory
			INDEX { fooIndex, IMPLIED fooName, INTEGER, OCTET STRING }
			::= { fooTable 1 }
		FooEntry ::= SEQUENCE {
			fooIndex INTEGER,
			fooName OCTET STRING (SIZE (0..32))
		}
		barEntry OBJECT-TYPE
			SYNTAX BarEntry
			MAX-ACCESS not-accessible
			STATUS current
			AUGMENTS { fooEntry }
			::= { barTable 1 }
		END`)

	table := declAs[*module.ObjectType](t, mod, 0)
	testutil.True(t, table.Syntax.IsTable(), "table syntax")
	testutil.Equal(t, "FooEntry", table.Syntax.Entry, "entry")
	testutil.Equal(t, types.StatusMandatory, table.Status, "SMIv1 status")

	row := declAs[*module.ObjectType](t, mod, 1)
	testutil.Len(t, row.Index, 4, "index items")
	testutil.Equal(t, module.IndexItem{Object: "fooName", Implied: true}, row.Index[1], "implied index")
	testutil.Equal(t, "OCTET STRING", row.Index[3].Object, "type index")

	seq := declAs[*module.Sequence](t, mod, 2)
	testutil.Len(t, seq.Fields, 2, "fields")
	testutil.Equal(t, "fooName", seq.Fields[1].Name, "field name")
	testutil.Equal(t, "OCTET STRING", seq.Fields[1].Syntax.Type, "field type")
	testutil.Equal(t, "0..32", seq.Fields[1].Syntax.Sizes[0].String(), "field size")

	aug := declAs[*module.ObjectType](t, mod, 3)
	testutil.Equal(t, "fooEntry", aug.Augments, "augments")
	testutil.False(t, mod.HasErrors(), "no errors")
}

func TestParseEnumsAndBits(t *testing.T) {
	mod := parseOne(t, `TEST-MIB DEFINITIONS ::= BEGIN
		Status ::= INTEGER { up(1), down(2), unknown(-1) }
		Flags ::= BITS { a(0), b(1), c(2) }
		END`)

	st := declAs[*module.TypeDecl](t, mod, 0)
	testutil.Equal(t, "INTEGER", st.Syntax.Type, "type")
	testutil.Len(t, st.Syntax.Enums, 3, "enum count")
	testutil.Equal(t, module.NamedNumber{Label: "unknown", Value: -1}, st.Syntax.Enums[2], "negative enum")

	flags := declAs[*module.TypeDecl](t, mod, 1)
	testutil.Equal(t, "BITS", flags.Syntax.Type, "bits")
	testutil.Len(t, flags.Syntax.Enums, 3, "bit count")
}

func TestParseRangeBounds(t *testing.T) {
	mod := parseOne(t, `TEST-MIB DEFINITIONS ::= BEGIN
		Big ::= Counter64 (0..18446744073709551615)
		Neg ::= INTEGER (MIN..-1 | 'FF'H..MAX)
		END`)

	big := declAs[*module.TypeDecl](t, mod, 0)
	testutil.Equal(t, module.Max, big.Syntax.Ranges[0].Max, "max uint64")

	neg := declAs[*module.TypeDecl](t, mod, 1)
	testutil.Equal(t, module.Min, neg.Syntax.Ranges[0].Min, "MIN")
	testutil.Equal(t, module.Int(-1), neg.Syntax.Ranges[0].Max, "negative")
	testutil.Equal(t, module.Int(255), neg.Syntax.Ranges[1].Min, "hex bound")
	testutil.Equal(t, module.Max, neg.Syntax.Ranges[1].Max, "MAX")
}

func TestParseTextualConvention(t *testing.T) {
	mod := parseOne(t, `TEST-MIB DEFINITIONS ::= BEGIN
		MyString ::= TEXTUAL-CONVENTION
			DISPLAY-HINT "255a"
			STATUS current
			DESCRIPTION "A string"
			SYNTAX OCTET STRING (SIZE (0..255))
		END`)

	tc := declAs[*module.TypeDecl](t, mod, 0)
	testutil.True(t, tc.TextualConvention, "textual convention")
	testutil.Equal(t, "255a", tc.DisplayHint, "hint")
	testutil.Equal(t, "OCTET STRING", tc.Syntax.Type, "syntax")
	testutil.Equal(t, "0..255", tc.Syntax.Sizes[0].String(), "size")
}

func TestParseDefValForms(t *testing.T) {
	tests := []struct {
		defval string
		kind   module.DefValKind
		text   string
		labels []string
	}{
		{`-5`, module.DefNumber, "-5", nil},
		{`'0A'H`, module.DefHex, "0A", nil},
		{`'101'B`, module.DefBinary, "101", nil},
		{`"hello"`, module.DefString, "hello", nil},
		{`enabled`, module.DefLabel, "enabled", nil},
		{`{ a, c }`, module.DefList, "", []string{"a", "c"}},
		{`{ }`, module.DefList, "", nil},
		{`{ 0 0 }`, module.DefOid, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.defval, func(t *testing.T) {
			mod := parseOne(t, `TEST-MIB DEFINITIONS ::= BEGIN
				x OBJECT-TYPE
					SYNTAX INTEGER
					ACCESS read-write
					STATUS current
					DEFVAL { `+tt.defval+` }
					::= { y 1 }
				END`)
			obj := declAs[*module.ObjectType](t, mod, 0)
			testutil.NotNil(t, obj.DefVal, "defval")
			testutil.Equal(t, tt.kind, obj.DefVal.Kind, "kind")
			testutil.Equal(t, tt.text, obj.DefVal.Text, "text")
			testutil.SliceEqual(t, tt.labels, obj.DefVal.Labels, "labels")
		})
	}
}

func TestParseMacrosAndIdentity(t *testing.T) {
	mod := parseOne(t, `TEST-MIB DEFINITIONS ::= BEGIN
		IMPORTS MODULE-IDENTITY FROM SNMPv2-SMI;

		testMIB MODULE-IDENTITY
			LAST-UPDATED "202401010000Z"
			ORGANIZATION "Example"
			CONTACT-INFO "nobody"
			DESCRIPTION "Test"
			REVISION "202401010000Z"
			DESCRIPTION "First"
			::= { enterprises 99999 }

		testId OBJECT-IDENTITY
			STATUS current
			DESCRIPTION "identity"
			::= { testMIB 1 }

		testNotif NOTIFICATION-TYPE
			OBJECTS { a, b }
			STATUS current
			DESCRIPTION "n"
			::= { testMIB 2 }

		testGroup OBJECT-GROUP
			OBJECTS { a, b }
			STATUS current
			DESCRIPTION "g"
			::= { testMIB 3 }

		testNotifs NOTIFICATION-GROUP
			NOTIFICATIONS { testNotif }
			STATUS current
			DESCRIPTION "ng"
			::= { testMIB 4 }

		testCompliance MODULE-COMPLIANCE
			STATUS current
			DESCRIPTION "c"
			MODULE
				MANDATORY-GROUPS { testGroup }
				GROUP testNotifs
				DESCRIPTION "optional"
				OBJECT a
				MIN-ACCESS read-only
				DESCRIPTION "ro"
			MODULE IF-MIB
				MANDATORY-GROUPS { ifGeneralGroup }
			::= { testMIB 5 }

		testCaps AGENT-CAPABILITIES
			PRODUCT-RELEASE "1.0"
			STATUS current
			DESCRIPTION "caps"
			SUPPORTS IF-MIB
			INCLUDES { ifGeneralGroup }
			VARIATION ifAdminStatus
				ACCESS read-only
				DESCRIPTION "ro"
			::= { testMIB 6 }
		END`)

	testutil.False(t, mod.HasErrors(), "errors: %v", mod.Diagnostics)
	testutil.Len(t, mod.Declarations, 7, "declarations")

	mi := declAs[*module.ModuleIdentity](t, mod, 0)
	testutil.Equal(t, "202401010000Z", mi.LastUpdated, "last updated")
	testutil.Len(t, mi.Revisions, 1, "revisions")

	n := declAs[*module.Notification](t, mod, 2)
	testutil.SliceEqual(t, []string{"a", "b"}, n.Objects, "objects")

	c := declAs[*module.Compliance](t, mod, 5)
	testutil.Len(t, c.Modules, 2, "compliance modules")
	testutil.Equal(t, "", c.Modules[0].Module, "current module")
	testutil.SliceEqual(t, []string{"testNotifs"}, c.Modules[0].Groups, "groups")
	testutil.SliceEqual(t, []string{"a"}, c.Modules[0].Objects, "objects")
	testutil.Equal(t, "IF-MIB", c.Modules[1].Module, "named module")

	caps := declAs[*module.Capabilities](t, mod, 6)
	testutil.Equal(t, "1.0", caps.ProductRelease, "release")
	testutil.SliceEqual(t, []string{"ifAdminStatus"}, caps.Supports[0].Variations, "variations")
}

func TestParseTrapType(t *testing.T) {
	mod := parseOne(t, `TRAP-MIB DEFINITIONS ::= BEGIN
		IMPORTS TRAP-TYPE FROM RFC-1215;
		linkDown TRAP-TYPE
			ENTERPRISE myCompany
			VARIABLES { ifIndex }
			DESCRIPTION "down"
			::= 2
		END`)

	n := declAs[*module.Notification](t, mod, 0)
	testutil.NotNil(t, n.Trap, "trap")
	testutil.Equal(t, "myCompany", n.Trap.Enterprise, "enterprise")
	testutil.Equal(t, "{ myCompany 0 2 }", n.Oid.String(), "trap oid")
}

func TestParseMacroDefinitionSkipped(t *testing.T) {
	mod := parseOne(t, `TEST-MIB DEFINITIONS ::= BEGIN
		OBJECT-TYPE MACRO ::= BEGIN
			TYPE NOTATION ::= "SYNTAX" type(TYPE ObjectSyntax)
			VALUE NOTATION ::= value(VALUE ObjectName)
		END
		foo OBJECT IDENTIFIER ::= { iso 3 }
		END`)

	m := declAs[*module.Macro](t, mod, 0)
	testutil.Equal(t, "OBJECT-TYPE", m.Name, "macro name")
	declAs[*module.Value](t, mod, 1)
}

func TestParseMultipleModules(t *testing.T) {
	mods := Parse([]byte(`
		A-MIB DEFINITIONS ::= BEGIN
		a OBJECT IDENTIFIER ::= { iso 3 }
		END
		B-MIB DEFINITIONS ::= BEGIN
		b OBJECT IDENTIFIER ::= { a 1 }
		END`), nil, types.DefaultConfig())

	testutil.Len(t, mods, 2, "modules")
	testutil.Equal(t, "A-MIB", mods[0].Name, "first")
	testutil.Equal(t, "B-MIB", mods[1].Name, "second")
}

func TestParseRecoversAfterBadDefinition(t *testing.T) {
	mod := parseOne(t, `TEST-MIB DEFINITIONS ::= BEGIN
		broken OBJECT-TYPE
			SYNTAX Integer32
			BOGUS-CLAUSE foo
			::= { x 1 }
		good OBJECT IDENTIFIER ::= { iso 3 }
		END`)

	testutil.True(t, mod.HasErrors(), "error recorded")
	testutil.Len(t, mod.Declarations, 1, "good definition kept")
	testutil.Equal(t, "good", mod.Declarations[0].DeclName(), "name")
	testutil.Greater(t, mod.Diagnostics[0].Line, 0, "line attached")
	testutil.Equal(t, "TEST-MIB", mod.Diagnostics[0].Module, "module attached")
}

func TestParseNoModule(t *testing.T) {
	mods := Parse([]byte("this is not a mib"), nil, types.DefaultConfig())
	testutil.Len(t, mods, 1, "placeholder module")
	testutil.True(t, mods[0].HasErrors(), "error reported")
}

func TestParseBaseModules(t *testing.T) {
	for _, name := range module.BaseModuleNames() {
		src, ok := module.BaseSource(name)
		testutil.True(t, ok, "source for %s", name)
		mods := Parse(src, nil, types.StrictConfig())
		testutil.Len(t, mods, 1, "%s module count", name)
		testutil.Equal(t, name, mods[0].Name, "module name")
		testutil.False(t, mods[0].HasErrors(), "%s: %v", name, mods[0].Diagnostics)
	}
}
