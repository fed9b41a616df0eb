package resolver

import (
	"encoding/hex"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/symtab"
	"github.com/golangsnmp/mibc/internal/types"
)

// DefaultFormat says how a normalized default value is written.
type DefaultFormat int

const (
	FormatDecimal DefaultFormat = iota + 1
	FormatHex
	FormatString
	FormatOid
)

var defaultFormatNames = [...]string{
	FormatDecimal: "decimal",
	FormatHex:     "hex",
	FormatString:  "string",
	FormatOid:     "oid",
}

func (f DefaultFormat) String() string {
	if f > 0 && int(f) < len(defaultFormatNames) {
		return defaultFormatNames[f]
	}
	return "unknown"
}

// Default is a validated, normalized DEFVAL. Hex values are upper case
// with an even digit count.
type Default struct {
	Format DefaultFormat
	Value  string
	// Labels holds the enumeration, bit or OID labels the value was written
	// with.
	Labels []string
	// Ref is the symbol an OID default names.
	Ref symtab.Ref
}

// ValidateDefault checks a raw DEFVAL written in module mod against the
// flattened type of its object. It never fails: a value that does not
// fit its type is dropped and ok is false.
func (r *Resolver) ValidateDefault(mod string, raw *module.DefVal, flat Flat) (d Default, ok bool) {
	if raw == nil {
		return Default{}, false
	}
	c := flat.Constraint
	switch flat.Base.Family() {
	case types.FamilyInteger:
		d, ok = integerDefault(raw, c)
	case types.FamilyOctets:
		d, ok = octetsDefault(raw, c)
	case types.FamilyBits:
		d, ok = bitsDefault(raw, c)
	case types.FamilyOid:
		d, ok = r.oidDefault(mod, raw)
	}
	if !ok {
		r.diag(mod, types.DiagDefvalDropped, types.SeverityInfo,
			"default value "+raw.Kind.String()+" "+raw.Text+" does not fit "+flat.Base.String())
	}
	return d, ok
}

func integerDefault(raw *module.DefVal, c symtab.Constraint) (Default, bool) {
	var v module.Bound
	switch raw.Kind {
	case module.DefNumber:
		b, err := module.ParseBound(raw.Text)
		if err != nil {
			return Default{}, false
		}
		v = b
	case module.DefHex, module.DefBinary:
		radix := 16
		if raw.Kind == module.DefBinary {
			radix = 2
		}
		digits := raw.Text
		if digits == "" {
			digits = "0"
		}
		n, err := strconv.ParseUint(digits, radix, 64)
		if err != nil {
			return Default{}, false
		}
		v = module.Bound{Abs: n}
	case module.DefLabel:
		n, ok := c.Lookup(raw.Text)
		if !ok {
			return Default{}, false
		}
		return Default{Format: FormatDecimal, Value: strconv.FormatInt(n, 10), Labels: []string{raw.Text}}, true
	default:
		return Default{}, false
	}

	if len(c.Enums) > 0 {
		n, ok := boundInt64(v)
		if !ok || !c.HasEnumValue(n) {
			return Default{}, false
		}
	}
	if !c.AllowsValue(v) {
		return Default{}, false
	}
	return Default{Format: FormatDecimal, Value: v.String()}, true
}

func boundInt64(b module.Bound) (int64, bool) {
	switch {
	case !b.Neg && b.Abs <= math.MaxInt64:
		return int64(b.Abs), true
	case b.Neg && b.Abs <= 1<<63:
		return -int64(b.Abs-1) - 1, true
	}
	return 0, false
}

func octetsDefault(raw *module.DefVal, c symtab.Constraint) (Default, bool) {
	var d Default
	var size int
	switch raw.Kind {
	case module.DefHex:
		if strings.IndexFunc(raw.Text, notHexDigit) >= 0 {
			return Default{}, false
		}
		d = Default{Format: FormatHex, Value: padEven(strings.ToUpper(raw.Text))}
		size = len(d.Value) / 2
	case module.DefBinary:
		if strings.IndexFunc(raw.Text, notBinaryDigit) >= 0 {
			return Default{}, false
		}
		d = Default{Format: FormatHex, Value: binaryToHex(raw.Text)}
		size = len(d.Value) / 2
	case module.DefString:
		d = Default{Format: FormatString, Value: raw.Text}
		size = len(raw.Text)
	default:
		return Default{}, false
	}
	if !c.AllowsSize(size) {
		return Default{}, false
	}
	return d, true
}

// bitsDefault reads decimal, hex and binary values as the number whose
// set bits are the named positions, bit 0 being the least significant.
// Label lists use the same numbering.
func bitsDefault(raw *module.DefVal, c symtab.Constraint) (Default, bool) {
	var d Default
	switch raw.Kind {
	case module.DefNumber:
		v, err := module.ParseBound(raw.Text)
		if err != nil || v.Neg {
			return Default{}, false
		}
		d = Default{Format: FormatHex}
		if v.Abs != 0 {
			d.Value = padEven(strings.ToUpper(strconv.FormatUint(v.Abs, 16)))
		}
	case module.DefHex:
		if strings.IndexFunc(raw.Text, notHexDigit) >= 0 {
			return Default{}, false
		}
		d = Default{Format: FormatHex, Value: padEven(strings.ToUpper(strings.TrimLeft(raw.Text, "0")))}
	case module.DefBinary:
		if strings.IndexFunc(raw.Text, notBinaryDigit) >= 0 {
			return Default{}, false
		}
		d = Default{Format: FormatHex, Value: binaryToHex(strings.TrimLeft(raw.Text, "0"))}
	case module.DefList:
		positions := make([]int64, 0, len(raw.Labels))
		for _, label := range raw.Labels {
			n, ok := c.Lookup(label)
			if !ok || n < 0 || n > maxBit {
				return Default{}, false
			}
			positions = append(positions, n)
		}
		d = Default{Format: FormatHex, Value: bitsHex(positions), Labels: raw.Labels}
	default:
		return Default{}, false
	}
	if !c.AllowsSize(len(d.Value) / 2) {
		return Default{}, false
	}
	return d, true
}

// oidDefault resolves a symbolic OID default to its numeric value. The
// label must name a symbol whose OID resolves.
func (r *Resolver) oidDefault(mod string, raw *module.DefVal) (Default, bool) {
	if raw.Kind != module.DefLabel {
		return Default{}, false
	}
	t, ok := r.tables[mod]
	if !ok {
		return Default{}, false
	}
	ref, ok := t.Resolve(raw.Text)
	if !ok {
		return Default{}, false
	}
	oid, err := r.SymbolOid(ref)
	if err != nil {
		return Default{}, false
	}
	return Default{Format: FormatOid, Value: oid.String(), Labels: []string{raw.Text}, Ref: ref}, true
}

// maxBit bounds named bit positions; larger values are not usable as
// BITS labels.
const maxBit = 1<<16 - 1

// bitsHex encodes bit positions as the hex of the number with those
// bits set, left-padded to whole octets. No positions yields "".
func bitsHex(positions []int64) string {
	if len(positions) == 0 {
		return ""
	}
	octets := make([]byte, slices.Max(positions)/8+1)
	for _, p := range positions {
		octets[len(octets)-1-int(p/8)] |= 1 << (p % 8)
	}
	return strings.ToUpper(hex.EncodeToString(octets))
}

// binaryToHex converts binary digits to hex, left-padding the digits to
// whole octets.
func binaryToHex(bin string) string {
	if bin == "" {
		return ""
	}
	if rem := len(bin) % 8; rem != 0 {
		bin = strings.Repeat("0", 8-rem) + bin
	}
	octets := make([]byte, len(bin)/8)
	for i, ch := range bin {
		if ch == '1' {
			octets[i/8] |= 0x80 >> (i % 8)
		}
	}
	return strings.ToUpper(hex.EncodeToString(octets))
}

func padEven(digits string) string {
	if len(digits)%2 == 1 {
		return "0" + digits
	}
	return digits
}

func notHexDigit(ch rune) bool {
	return !('0' <= ch && ch <= '9') && !('a' <= ch && ch <= 'f') && !('A' <= ch && ch <= 'F')
}

func notBinaryDigit(ch rune) bool { return ch != '0' && ch != '1' }
