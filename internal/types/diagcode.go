package types

// Diagnostic codes. Centralizing these prevents silent breakage from
// typos in string literals.

// Parser diagnostic codes.
const (
	DiagIdentifierUnderscore = "identifier-underscore"
	DiagIdentifierHyphenEnd  = "identifier-hyphen-end"
	DiagIdentifierLength64   = "identifier-length-64"
	DiagIdentifierLength32   = "identifier-length-32"
	DiagBadIdentifierCase    = "bad-identifier-case"
	DiagLexError             = "lex-error"
	DiagParseError           = "parse-error"
	DiagInvalidNumber        = "invalid-number"
	DiagKeywordReserved      = "keyword-reserved"
	DiagInvalidHexRange      = "invalid-hex-range"
)

// Builder and resolver diagnostic codes. These appear as the "code"
// attribute of log records rather than in module diagnostics.
const (
	DiagImportNotExported     = "import-not-exported"
	DiagLegacyImport          = "legacy-import"
	DiagRowLeniency           = "row-leniency"
	DiagDuplicateIdentity     = "duplicate-module-identity"
	DiagDuplicateOid          = "duplicate-oid"
	DiagBadRevisionDate       = "bad-revision-date"
	DiagDefvalDropped         = "defval-dropped"
	DiagImportCycle           = "import-cycle"
	DiagFreshnessCheckerError = "freshness-checker-error"
)

// AllDiagnosticCodes returns all known diagnostic codes grouped by phase.
func AllDiagnosticCodes() []DiagCodeInfo {
	return []DiagCodeInfo{
		{Code: DiagIdentifierUnderscore, Phase: "parser"},
		{Code: DiagIdentifierHyphenEnd, Phase: "parser"},
		{Code: DiagIdentifierLength64, Phase: "parser"},
		{Code: DiagIdentifierLength32, Phase: "parser"},
		{Code: DiagBadIdentifierCase, Phase: "parser"},
		{Code: DiagLexError, Phase: "parser"},
		{Code: DiagParseError, Phase: "parser"},
		{Code: DiagInvalidNumber, Phase: "parser"},
		{Code: DiagKeywordReserved, Phase: "parser"},
		{Code: DiagInvalidHexRange, Phase: "parser"},
		{Code: DiagImportNotExported, Phase: "symtab"},
		{Code: DiagLegacyImport, Phase: "symtab"},
		{Code: DiagRowLeniency, Phase: "symtab"},
		{Code: DiagDuplicateIdentity, Phase: "resolver"},
		{Code: DiagDuplicateOid, Phase: "resolver"},
		{Code: DiagBadRevisionDate, Phase: "resolver"},
		{Code: DiagDefvalDropped, Phase: "resolver"},
		{Code: DiagImportCycle, Phase: "compiler"},
		{Code: DiagFreshnessCheckerError, Phase: "compiler"},
	}
}

// DiagCodeInfo describes a diagnostic code and the phase that emits it.
type DiagCodeInfo struct {
	Code  string
	Phase string
}
