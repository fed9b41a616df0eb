package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/symtab"
	"github.com/golangsnmp/mibc/internal/types"
)

const typesMIB = `TYPES-MIB DEFINITIONS ::= BEGIN
IMPORTS
	Integer32, Unsigned32, IpAddress FROM SNMPv2-SMI
	TEXTUAL-CONVENTION, DisplayString FROM SNMPv2-TC;

Status ::= TEXTUAL-CONVENTION
	DISPLAY-HINT "d"
	STATUS current
	DESCRIPTION "status"
	SYNTAX INTEGER { up(1), down(2) }

SubStatus ::= TEXTUAL-CONVENTION
	STATUS current
	DESCRIPTION "refined status"
	SYNTAX Status { up(5), testing(3) }

Percent ::= TEXTUAL-CONVENTION
	STATUS current
	DESCRIPTION "0..100"
	SYNTAX Integer32 (0..100)

Narrow ::= TEXTUAL-CONVENTION
	STATUS current
	DESCRIPTION "narrower"
	SYNTAX Percent (10..20)

Label ::= TEXTUAL-CONVENTION
	STATUS current
	DESCRIPTION "label"
	SYNTAX DisplayString (SIZE (0..8))

Count ::= Unsigned32

Address ::= IpAddress
END`

func TestFlattenEnumsParentWins(t *testing.T) {
	r := New(buildTables(t, typesMIB), types.DefaultConfig(), nil)

	f, err := r.Flatten("TYPES-MIB", "SubStatus")
	require.NoError(t, err)
	require.Equal(t, types.BaseInteger32, f.Base)
	require.Equal(t, []module.NamedNumber{
		{Label: "up", Value: 1},
		{Label: "down", Value: 2},
		{Label: "testing", Value: 3},
	}, f.Constraint.Enums)
	require.Equal(t, symtab.Ref{Module: "TYPES-MIB", Name: "SubStatus"}, f.Type)
	require.Equal(t, "d", f.DisplayHint, "inherited display hint")
}

func TestFlattenRangesIntersect(t *testing.T) {
	r := New(buildTables(t, typesMIB), types.DefaultConfig(), nil)

	f, err := r.Flatten("TYPES-MIB", "Narrow")
	require.NoError(t, err)
	require.Equal(t, types.BaseInteger32, f.Base)
	require.Len(t, f.Constraint.Ranges, 3, "Integer32, Percent and Narrow ranges")
	require.True(t, f.Constraint.AllowsValue(module.Int(15)))
	require.False(t, f.Constraint.AllowsValue(module.Int(50)))
	require.False(t, f.Constraint.AllowsValue(module.Int(-1)))
}

func TestFlattenApplicationTypes(t *testing.T) {
	r := New(buildTables(t, typesMIB), types.DefaultConfig(), nil)

	count, err := r.Flatten("TYPES-MIB", "Count")
	require.NoError(t, err)
	require.Equal(t, types.BaseUnsigned32, count.Base)
	require.False(t, count.Constraint.AllowsValue(module.Int(-1)))

	addr, err := r.Flatten("TYPES-MIB", "Address")
	require.NoError(t, err)
	require.Equal(t, types.BaseIpAddress, addr.Base)
	require.True(t, addr.Constraint.AllowsSize(4))
	require.False(t, addr.Constraint.AllowsSize(6))

	label, err := r.Flatten("TYPES-MIB", "Label")
	require.NoError(t, err)
	require.Equal(t, types.BaseOctetString, label.Base)
	require.Equal(t, "255a", label.DisplayHint)
	require.Equal(t, symtab.Ref{Module: "TYPES-MIB", Name: "Label"}, label.Convention)
	require.False(t, label.Constraint.AllowsSize(9))

	imported, err := r.Flatten("TYPES-MIB", "DisplayString")
	require.NoError(t, err)
	require.Equal(t, symtab.Ref{Module: "SNMPv2-TC", Name: "DisplayString"}, imported.Type)
}

func TestFlattenTableSyntax(t *testing.T) {
	r := New(symtab.Tables{}, types.DefaultConfig(), nil)
	f, err := r.FlattenSyntax(&symtab.Syntax{Type: "SEQUENCE OF", Entry: "FooEntry"})
	require.NoError(t, err)
	require.Equal(t, types.BaseUnknown, f.Base)
}

func TestFlattenCycle(t *testing.T) {
	tables := symtab.Tables{
		"M": &symtab.Table{Module: "M", Symbols: map[string]*symtab.Symbol{
			"A": {Name: "A", Module: "M", Kind: module.KindTypeDecl, Syntax: &symtab.Syntax{Type: "B", Module: "M"}},
			"B": {Name: "B", Module: "M", Kind: module.KindTypeDecl, Syntax: &symtab.Syntax{Type: "A", Module: "M"}},
		}},
	}
	r := New(tables, types.DefaultConfig(), nil)
	_, err := r.Flatten("M", "A")
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	require.ErrorIs(t, err, symtab.ErrSemantic)
}

func rangeSet(lo, hi int64) symtab.RangeSet {
	return symtab.RangeSet{{Min: module.Int(lo), Max: module.Int(hi)}}
}

func TestMergeAssociative(t *testing.T) {
	a := symtab.Constraint{
		Enums:  []module.NamedNumber{{Label: "x", Value: 1}},
		Ranges: []symtab.RangeSet{rangeSet(0, 100)},
	}
	b := symtab.Constraint{
		Enums:  []module.NamedNumber{{Label: "x", Value: 9}, {Label: "y", Value: 2}},
		Ranges: []symtab.RangeSet{rangeSet(10, 50)},
		Sizes:  []symtab.RangeSet{rangeSet(0, 4)},
	}
	c := symtab.Constraint{
		Enums:  []module.NamedNumber{{Label: "y", Value: 7}, {Label: "z", Value: 3}},
		Ranges: []symtab.RangeSet{rangeSet(20, 30)},
	}

	left := a.Merge(b).Merge(c)
	right := a.Merge(b.Merge(c))
	require.Equal(t, left, right)
	require.Equal(t, []module.NamedNumber{{Label: "x", Value: 1}, {Label: "y", Value: 2}, {Label: "z", Value: 3}}, left.Enums)
	for v := int64(-5); v <= 105; v++ {
		want := v >= 20 && v <= 30
		require.Equal(t, want, left.AllowsValue(module.Int(v)), "value %d", v)
	}
}
