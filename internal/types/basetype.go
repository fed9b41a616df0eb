package types

// BaseType is one of the fixed primitive SMI types that type
// inheritance chains bottom out in.
type BaseType int

const (
	BaseUnknown BaseType = iota
	BaseInteger32
	BaseUnsigned32
	BaseCounter32
	BaseCounter64
	BaseGauge32
	BaseTimeTicks
	BaseIpAddress
	BaseOpaque
	BaseOctetString
	BaseObjectIdentifier
	BaseBits
)

// Family groups base types by value representation.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyInteger
	FamilyOctets
	FamilyOid
	FamilyBits
)

var baseTypeNames = [...]string{
	BaseUnknown:          "",
	BaseInteger32:        "Integer32",
	BaseUnsigned32:       "Unsigned32",
	BaseCounter32:        "Counter32",
	BaseCounter64:        "Counter64",
	BaseGauge32:          "Gauge32",
	BaseTimeTicks:        "TimeTicks",
	BaseIpAddress:        "IpAddress",
	BaseOpaque:           "Opaque",
	BaseOctetString:      "OCTET STRING",
	BaseObjectIdentifier: "OBJECT IDENTIFIER",
	BaseBits:             "BITS",
}

func (b BaseType) String() string {
	if int(b) < len(baseTypeNames) {
		return baseTypeNames[b]
	}
	return ""
}

// Family returns the value family of the base type.
func (b BaseType) Family() Family {
	switch b {
	case BaseInteger32, BaseUnsigned32, BaseCounter32, BaseCounter64,
		BaseGauge32, BaseTimeTicks:
		return FamilyInteger
	case BaseIpAddress, BaseOpaque, BaseOctetString:
		return FamilyOctets
	case BaseObjectIdentifier:
		return FamilyOid
	case BaseBits:
		return FamilyBits
	default:
		return FamilyUnknown
	}
}

// primitives maps every spelling a SYNTAX clause may use for a
// primitive type, including SMIv1 aliases, to its base type.
var primitives = map[string]BaseType{
	"INTEGER":           BaseInteger32,
	"Integer32":         BaseInteger32,
	"Unsigned32":        BaseUnsigned32,
	"Counter32":         BaseCounter32,
	"Counter":           BaseCounter32,
	"Counter64":         BaseCounter64,
	"Gauge32":           BaseGauge32,
	"Gauge":             BaseGauge32,
	"TimeTicks":         BaseTimeTicks,
	"IpAddress":         BaseIpAddress,
	"NetworkAddress":    BaseIpAddress,
	"Opaque":            BaseOpaque,
	"OCTET STRING":      BaseOctetString,
	"OBJECT IDENTIFIER": BaseObjectIdentifier,
	"BITS":              BaseBits,
}

// Primitive returns the base type for a primitive type name.
func Primitive(name string) (BaseType, bool) {
	b, ok := primitives[name]
	return b, ok
}
