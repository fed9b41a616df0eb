package module

import (
	"embed"
	"slices"
)

//go:embed base/*.mib
var baseFS embed.FS

// baseModuleNames lists the built-in modules in dependency order.
var baseModuleNames = []string{
	"SNMPv2-SMI",
	"SNMPv2-TC",
	"SNMPv2-CONF",
	"RFC1155-SMI",
	"RFC1065-SMI",
	"RFC-1212",
	"RFC-1215",
}

// BaseModuleNames returns the names of the modules that are always
// available without a source.
func BaseModuleNames() []string {
	return slices.Clone(baseModuleNames)
}

// IsBaseModule reports whether name is a built-in module.
func IsBaseModule(name string) bool {
	return slices.Contains(baseModuleNames, name)
}

// BaseSource returns the SMI text of a built-in module.
func BaseSource(name string) ([]byte, bool) {
	if !IsBaseModule(name) {
		return nil, false
	}
	data, err := baseFS.ReadFile("base/" + name + ".mib")
	if err != nil {
		return nil, false
	}
	return data, true
}

// ConstantImports are added to every module's imports. They name
// symbols that MIBs use without importing.
var ConstantImports = []ImportGroup{
	{Module: "SNMPv2-SMI", Symbols: []string{
		"iso", "org", "dod", "internet", "mgmt", "mib-2",
		"private", "enterprises", "zeroDotZero",
		"Integer32", "Counter32", "Gauge32", "Unsigned32",
		"TimeTicks", "Counter64", "IpAddress", "Opaque",
	}},
	{Module: "SNMPv2-TC", Symbols: []string{"DisplayString", "TEXTUAL-CONVENTION"}},
}

// ModuleAliases maps outdated module names to their replacement.
var ModuleAliases = map[string]string{
	"SNMPv2-SMI-v1": "SNMPv2-SMI",
	"SNMPv2-TC-v1":  "SNMPv2-TC",
	"RFC-1213":      "RFC1213-MIB",
}

// SymbolRef names a symbol in another module.
type SymbolRef struct {
	Module string
	Name   string
}

var smiv1Rewrites = map[string]SymbolRef{
	"internet":          {"SNMPv2-SMI", "internet"},
	"directory":         {"SNMPv2-SMI", "directory"},
	"mgmt":              {"SNMPv2-SMI", "mgmt"},
	"experimental":      {"SNMPv2-SMI", "experimental"},
	"private":           {"SNMPv2-SMI", "private"},
	"enterprises":       {"SNMPv2-SMI", "enterprises"},
	"OBJECT-TYPE":       {"SNMPv2-SMI", "OBJECT-TYPE"},
	"ObjectName":        {"SNMPv2-SMI", "ObjectName"},
	"ObjectSyntax":      {"SNMPv2-SMI", "ObjectSyntax"},
	"SimpleSyntax":      {"SNMPv2-SMI", "SimpleSyntax"},
	"ApplicationSyntax": {"SNMPv2-SMI", "ApplicationSyntax"},
	"NetworkAddress":    {"SNMPv2-SMI", "IpAddress"},
	"IpAddress":         {"SNMPv2-SMI", "IpAddress"},
	"Counter":           {"SNMPv2-SMI", "Counter32"},
	"Gauge":             {"SNMPv2-SMI", "Gauge32"},
	"TimeTicks":         {"SNMPv2-SMI", "TimeTicks"},
	"Opaque":            {"SNMPv2-SMI", "Opaque"},
}

var mib2Rewrites = map[string]SymbolRef{
	"mib-2":         {"SNMPv2-SMI", "mib-2"},
	"DisplayString": {"SNMPv2-TC", "DisplayString"},
	"PhysAddress":   {"SNMPv2-TC", "PhysAddress"},
}

// LegacyImports maps (module, symbol) pairs from SMIv1 era modules to
// their SMIv2 home. Symbols not listed keep their original module.
var LegacyImports = map[string]map[string]SymbolRef{
	"RFC1065-SMI": smiv1Rewrites,
	"RFC1155-SMI": smiv1Rewrites,
	"RFC-1212":    {"OBJECT-TYPE": {"SNMPv2-SMI", "OBJECT-TYPE"}},
	"RFC-1215":    {"TRAP-TYPE": {"SNMPv2-SMI", "TRAP-TYPE"}},
	"RFC1213-MIB": mib2Rewrites,
	"RFC1158-MIB": mib2Rewrites,
}

// RewriteImport applies the alias and legacy tables to one imported
// symbol. The second result reports whether anything changed.
func RewriteImport(mod, sym string) (SymbolRef, bool) {
	if syms, ok := LegacyImports[mod]; ok {
		if ref, ok := syms[sym]; ok {
			return ref, true
		}
	}
	if alias, ok := ModuleAliases[mod]; ok {
		return SymbolRef{Module: alias, Name: sym}, true
	}
	return SymbolRef{Module: mod, Name: sym}, false
}
