package module

import (
	"math"
	"strconv"
	"strings"
)

// Syntax is a declared type: a base or referenced type name with the
// refinements written after it.
//
// Type holds "INTEGER", "OCTET STRING", "OBJECT IDENTIFIER", "BITS",
// "SEQUENCE OF", "SEQUENCE", "CHOICE", or a referenced type name.
type Syntax struct {
	Type string
	// Module qualifies a Module.Type reference.
	Module string
	// Enums holds INTEGER or BITS named numbers.
	Enums []NamedNumber
	// Ranges is the value range union, e.g. (0..10 | 20).
	Ranges []Range
	// Sizes is the SIZE range union.
	Sizes []Range
	// Entry is the row type of a SEQUENCE OF.
	Entry string
}

// IsZero reports whether no syntax was given.
func (s Syntax) IsZero() bool { return s.Type == "" }

// IsTable reports whether the syntax is SEQUENCE OF.
func (s Syntax) IsTable() bool { return s.Type == "SEQUENCE OF" }

// NamedNumber is a "label(value)" pair.
type NamedNumber struct {
	Label string
	Value int64
}

// Bound is an endpoint of a range. Values past the int64 range (for
// Counter64) need the sign and magnitude split.
type Bound struct {
	Neg bool
	Abs uint64
}

// Min and Max stand in for the MIN and MAX keywords.
var (
	Min = Bound{Neg: true, Abs: 1 << 63}
	Max = Bound{Abs: math.MaxUint64}
)

// Int returns the bound for v.
func Int(v int64) Bound {
	if v < 0 {
		return Bound{Neg: true, Abs: uint64(-(v + 1)) + 1}
	}
	return Bound{Abs: uint64(v)}
}

// ParseBound parses a decimal with optional leading '-'.
func ParseBound(s string) (Bound, error) {
	neg := strings.HasPrefix(s, "-")
	abs, err := strconv.ParseUint(strings.TrimPrefix(s, "-"), 10, 64)
	if err != nil {
		return Bound{}, err
	}
	if abs == 0 {
		neg = false
	}
	return Bound{Neg: neg, Abs: abs}, nil
}

// Cmp returns -1, 0 or 1.
func (b Bound) Cmp(o Bound) int {
	switch {
	case b.Neg && !o.Neg:
		return -1
	case !b.Neg && o.Neg:
		return 1
	}
	c := 0
	if b.Abs < o.Abs {
		c = -1
	} else if b.Abs > o.Abs {
		c = 1
	}
	if b.Neg {
		return -c
	}
	return c
}

func (b Bound) String() string {
	s := strconv.FormatUint(b.Abs, 10)
	if b.Neg {
		return "-" + s
	}
	return s
}

// Range is an inclusive interval. A single value has Min == Max.
type Range struct {
	Min, Max Bound
}

// Contains reports whether v lies in r.
func (r Range) Contains(v Bound) bool {
	return r.Min.Cmp(v) <= 0 && v.Cmp(r.Max) <= 0
}

func (r Range) String() string {
	if r.Min == r.Max {
		return r.Min.String()
	}
	return r.Min.String() + ".." + r.Max.String()
}

// OidValue is the arc list of an OID assignment.
type OidValue struct {
	Arcs []Arc
}

// Arc is one OID component: a number, a name, "name(number)", or a
// qualified "Module.name".
type Arc struct {
	Name      string
	Module    string
	Number    uint32
	HasNumber bool
}

// IsNumeric reports whether the arc's value is known without lookup.
func (a Arc) IsNumeric() bool { return a.HasNumber }

func (a Arc) String() string {
	switch {
	case a.Name == "":
		return strconv.FormatUint(uint64(a.Number), 10)
	case a.HasNumber:
		return a.Name + "(" + strconv.FormatUint(uint64(a.Number), 10) + ")"
	case a.Module != "":
		return a.Module + "." + a.Name
	}
	return a.Name
}

func (o OidValue) String() string {
	parts := make([]string, len(o.Arcs))
	for i, a := range o.Arcs {
		parts[i] = a.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

// DefValKind is the lexical form of a DEFVAL.
type DefValKind int

const (
	DefNumber DefValKind = iota + 1
	DefHex
	DefBinary
	DefString
	DefLabel
	DefList
	DefOid
)

var defValKindNames = [...]string{
	DefNumber: "number",
	DefHex:    "hex",
	DefBinary: "binary",
	DefString: "string",
	DefLabel:  "label",
	DefList:   "list",
	DefOid:    "oid",
}

func (k DefValKind) String() string {
	if k > 0 && int(k) < len(defValKindNames) {
		return defValKindNames[k]
	}
	return "unknown"
}

// DefVal is the raw DEFVAL as written. Text holds the number, the hex
// or binary digits without quotes and suffix, the string contents, or
// the label. Labels holds the entries of a braced list.
type DefVal struct {
	Kind   DefValKind
	Text   string
	Labels []string
	Oid    *OidValue
}
