package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/symtab"
	"github.com/golangsnmp/mibc/internal/types"
)

const defvalMIB = `DEFVAL-MIB DEFINITIONS ::= BEGIN
IMPORTS
	OBJECT-TYPE, enterprises, zeroDotZero FROM SNMPv2-SMI;

dv OBJECT IDENTIFIER ::= { enterprises 7 }

dvFlags OBJECT-TYPE
	SYNTAX BITS { a(0), b(1), c(2) }
	MAX-ACCESS read-write
	STATUS current
	DESCRIPTION "flags"
	DEFVAL { '101'B }
	::= { dv 1 }

dvPointer OBJECT-TYPE
	SYNTAX OBJECT IDENTIFIER
	MAX-ACCESS read-write
	STATUS current
	DESCRIPTION "pointer"
	DEFVAL { zeroDotZero }
	::= { dv 2 }
END`

func TestValidateDefaultBitsScenario(t *testing.T) {
	tables := buildTables(t, defvalMIB)
	r := New(tables, types.DefaultConfig(), nil)

	sym, ok := tables.Lookup("DEFVAL-MIB", "dvFlags")
	require.True(t, ok)
	flat, err := r.FlattenSyntax(sym.Syntax)
	require.NoError(t, err)
	require.Equal(t, types.BaseBits, flat.Base)

	d, ok := r.ValidateDefault("DEFVAL-MIB", sym.DefVal, flat)
	require.True(t, ok)
	require.Equal(t, Default{Format: FormatHex, Value: "05"}, d)
}

func TestValidateDefaultOid(t *testing.T) {
	tables := buildTables(t, defvalMIB)
	r := New(tables, types.DefaultConfig(), nil)
	flat := Flat{Base: types.BaseObjectIdentifier}

	d, ok := r.ValidateDefault("DEFVAL-MIB", &module.DefVal{Kind: module.DefLabel, Text: "zeroDotZero"}, flat)
	require.True(t, ok)
	require.Equal(t, FormatOid, d.Format)
	require.Equal(t, "0.0", d.Value)
	require.Equal(t, []string{"zeroDotZero"}, d.Labels)
	require.Equal(t, symtab.Ref{Module: "SNMPv2-SMI", Name: "zeroDotZero"}, d.Ref)

	_, ok = r.ValidateDefault("DEFVAL-MIB", &module.DefVal{Kind: module.DefLabel, Text: "nothingHere"}, flat)
	require.False(t, ok)

	zeroZero := &module.OidValue{Arcs: []module.Arc{{HasNumber: true}, {HasNumber: true}}}
	_, ok = r.ValidateDefault("DEFVAL-MIB", &module.DefVal{Kind: module.DefOid, Oid: zeroZero}, flat)
	require.False(t, ok, "only symbolic OID defaults are valid")
}

const defvalRemoteMIB = `DEFVAL-REMOTE-MIB DEFINITIONS ::= BEGIN
IMPORTS
	remoteRoot FROM ABSENT-MIB;
END`

func TestValidateDefaultOidUnresolvable(t *testing.T) {
	tables := buildTables(t, defvalRemoteMIB)
	r := New(tables, types.DefaultConfig(), nil)
	flat := Flat{Base: types.BaseObjectIdentifier}

	_, ok := r.ValidateDefault("DEFVAL-REMOTE-MIB", &module.DefVal{Kind: module.DefLabel, Text: "remoteRoot"}, flat)
	require.False(t, ok, "label from a module with no table")
}

func TestValidateDefault(t *testing.T) {
	r := New(symtab.Tables{}, types.DefaultConfig(), nil)

	updown := symtab.Constraint{Enums: []module.NamedNumber{{Label: "up", Value: 1}, {Label: "down", Value: 2}}}
	oneToTen := symtab.Constraint{Ranges: []symtab.RangeSet{rangeSet(1, 10)}}
	bits := symtab.Constraint{Enums: []module.NamedNumber{{Label: "a", Value: 0}, {Label: "b", Value: 1}, {Label: "c", Value: 2}, {Label: "j", Value: 9}}}
	short := symtab.Constraint{Sizes: []symtab.RangeSet{rangeSet(0, 4)}}
	four := symtab.Constraint{Sizes: []symtab.RangeSet{rangeSet(4, 4)}}
	oneOctet := symtab.Constraint{Enums: bits.Enums, Sizes: []symtab.RangeSet{rangeSet(1, 1)}}

	integer := func(c symtab.Constraint) Flat { return Flat{Base: types.BaseInteger32, Constraint: c} }
	octets := func(c symtab.Constraint) Flat { return Flat{Base: types.BaseOctetString, Constraint: c} }
	bitsFlat := Flat{Base: types.BaseBits, Constraint: bits}

	tests := []struct {
		name  string
		raw   module.DefVal
		flat  Flat
		want  Default
		valid bool
	}{
		{"integer in range", module.DefVal{Kind: module.DefNumber, Text: "5"}, integer(oneToTen), Default{Format: FormatDecimal, Value: "5"}, true},
		{"integer out of range", module.DefVal{Kind: module.DefNumber, Text: "11"}, integer(oneToTen), Default{}, false},
		{"negative integer", module.DefVal{Kind: module.DefNumber, Text: "-3"}, integer(symtab.Constraint{}), Default{Format: FormatDecimal, Value: "-3"}, true},
		{"integer from hex", module.DefVal{Kind: module.DefHex, Text: "1F"}, integer(symtab.Constraint{}), Default{Format: FormatDecimal, Value: "31"}, true},
		{"integer from empty binary", module.DefVal{Kind: module.DefBinary}, integer(symtab.Constraint{}), Default{Format: FormatDecimal, Value: "0"}, true},
		{"integer bad hex", module.DefVal{Kind: module.DefHex, Text: "XYZ"}, integer(symtab.Constraint{}), Default{}, false},
		{"enum label", module.DefVal{Kind: module.DefLabel, Text: "down"}, integer(updown), Default{Format: FormatDecimal, Value: "2", Labels: []string{"down"}}, true},
		{"unknown enum label", module.DefVal{Kind: module.DefLabel, Text: "sideways"}, integer(updown), Default{}, false},
		{"enum by value", module.DefVal{Kind: module.DefNumber, Text: "1"}, integer(updown), Default{Format: FormatDecimal, Value: "1"}, true},
		{"enum value not listed", module.DefVal{Kind: module.DefNumber, Text: "3"}, integer(updown), Default{}, false},
		{"integer from list", module.DefVal{Kind: module.DefList, Labels: []string{"up"}}, integer(updown), Default{}, false},
		{"integer from string", module.DefVal{Kind: module.DefString, Text: "1"}, integer(symtab.Constraint{}), Default{}, false},

		{"octets decimal", module.DefVal{Kind: module.DefNumber, Text: "1"}, octets(symtab.Constraint{}), Default{}, false},
		{"octets odd hex", module.DefVal{Kind: module.DefHex, Text: "abc"}, octets(symtab.Constraint{}), Default{Format: FormatHex, Value: "0ABC"}, true},
		{"octets binary", module.DefVal{Kind: module.DefBinary, Text: "101"}, octets(symtab.Constraint{}), Default{Format: FormatHex, Value: "05"}, true},
		{"octets empty binary", module.DefVal{Kind: module.DefBinary}, octets(symtab.Constraint{}), Default{Format: FormatHex}, true},
		{"octets string", module.DefVal{Kind: module.DefString, Text: "hi"}, octets(short), Default{Format: FormatString, Value: "hi"}, true},
		{"octets string too long", module.DefVal{Kind: module.DefString, Text: "hello"}, octets(short), Default{}, false},
		{"address", module.DefVal{Kind: module.DefHex, Text: "C0A80001"}, Flat{Base: types.BaseIpAddress, Constraint: four}, Default{Format: FormatHex, Value: "C0A80001"}, true},
		{"short address", module.DefVal{Kind: module.DefHex, Text: "C0A8"}, Flat{Base: types.BaseIpAddress, Constraint: four}, Default{}, false},
		{"octets label", module.DefVal{Kind: module.DefLabel, Text: "x"}, octets(symtab.Constraint{}), Default{}, false},

		{"bits decimal", module.DefVal{Kind: module.DefNumber, Text: "5"}, bitsFlat, Default{Format: FormatHex, Value: "05"}, true},
		{"bits zero", module.DefVal{Kind: module.DefNumber, Text: "0"}, bitsFlat, Default{Format: FormatHex}, true},
		{"bits negative", module.DefVal{Kind: module.DefNumber, Text: "-1"}, bitsFlat, Default{}, false},
		{"bits hex trimmed", module.DefVal{Kind: module.DefHex, Text: "0005"}, bitsFlat, Default{Format: FormatHex, Value: "05"}, true},
		{"bits binary", module.DefVal{Kind: module.DefBinary, Text: "101"}, bitsFlat, Default{Format: FormatHex, Value: "05"}, true},
		{"bits binary leading zeros", module.DefVal{Kind: module.DefBinary, Text: "0000000000000101"}, bitsFlat, Default{Format: FormatHex, Value: "05"}, true},
		{"bits binary trailing zeros", module.DefVal{Kind: module.DefBinary, Text: "0100000000000000"}, bitsFlat, Default{Format: FormatHex, Value: "4000"}, true},
		{"bits labels", module.DefVal{Kind: module.DefList, Labels: []string{"a", "c"}}, bitsFlat, Default{Format: FormatHex, Value: "05", Labels: []string{"a", "c"}}, true},
		{"bits second octet", module.DefVal{Kind: module.DefList, Labels: []string{"j"}}, bitsFlat, Default{Format: FormatHex, Value: "0200", Labels: []string{"j"}}, true},
		{"bits fits size", module.DefVal{Kind: module.DefList, Labels: []string{"c"}}, Flat{Base: types.BaseBits, Constraint: oneOctet}, Default{Format: FormatHex, Value: "04", Labels: []string{"c"}}, true},
		{"bits labels exceed size", module.DefVal{Kind: module.DefList, Labels: []string{"j"}}, Flat{Base: types.BaseBits, Constraint: oneOctet}, Default{}, false},
		{"bits hex exceeds size", module.DefVal{Kind: module.DefHex, Text: "0100"}, Flat{Base: types.BaseBits, Constraint: oneOctet}, Default{}, false},
		{"bits empty list", module.DefVal{Kind: module.DefList}, bitsFlat, Default{Format: FormatHex}, true},
		{"bits unknown label", module.DefVal{Kind: module.DefList, Labels: []string{"a", "z"}}, bitsFlat, Default{}, false},
		{"bits string", module.DefVal{Kind: module.DefString, Text: "a"}, bitsFlat, Default{}, false},

		{"oid from number", module.DefVal{Kind: module.DefNumber, Text: "0"}, Flat{Base: types.BaseObjectIdentifier}, Default{}, false},
		{"unknown base", module.DefVal{Kind: module.DefNumber, Text: "1"}, Flat{}, Default{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := tc.raw
			got, ok := r.ValidateDefault("X-MIB", &raw, tc.flat)
			require.Equal(t, tc.valid, ok)
			if tc.valid {
				require.Equal(t, tc.want, got)
			}
		})
	}
}

// Any raw value against any type either validates or is dropped.
func TestValidateDefaultNeverFails(t *testing.T) {
	r := New(symtab.Tables{}, types.DefaultConfig(), nil)
	texts := []string{"", "0", "-", "-0", "18446744073709551616", "ZZ", "1 0", "\x00", "label", "-9223372036854775808"}
	kinds := []module.DefValKind{0, module.DefNumber, module.DefHex, module.DefBinary, module.DefString, module.DefLabel, module.DefList, module.DefOid, 99}
	bases := []types.BaseType{types.BaseUnknown, types.BaseInteger32, types.BaseCounter64, types.BaseOctetString, types.BaseIpAddress, types.BaseObjectIdentifier, types.BaseBits}
	constraint := symtab.Constraint{
		Enums:  []module.NamedNumber{{Label: "label", Value: -1}},
		Ranges: []symtab.RangeSet{rangeSet(-5, 5)},
		Sizes:  []symtab.RangeSet{rangeSet(0, 1)},
	}

	for _, base := range bases {
		for _, kind := range kinds {
			for _, text := range texts {
				raw := &module.DefVal{Kind: kind, Text: text, Labels: []string{text}}
				require.NotPanics(t, func() {
					r.ValidateDefault("X-MIB", raw, Flat{Base: base, Constraint: constraint})
				})
			}
		}
	}
	_, ok := r.ValidateDefault("X-MIB", nil, Flat{Base: types.BaseInteger32})
	require.False(t, ok)
}
