// Package lexer tokenizes SMIv1/SMIv2 MIB source text.
package lexer

import "github.com/golangsnmp/mibc/internal/types"

// TokenKind classifies a token. Reserved words share TokKeyword and are
// told apart by Token.Text; status, access and type names stay
// identifiers because MIBs reuse them as enum labels and index objects.
type TokenKind int

const (
	TokError TokenKind = iota
	TokEOF
	TokUppercaseIdent
	TokLowercaseIdent
	TokKeyword
	TokNumber
	TokNegativeNumber
	TokQuotedString
	TokHexString
	TokBinString
	TokLBracket
	TokRBracket
	TokLBrace
	TokRBrace
	TokLParen
	TokRParen
	TokColon
	TokSemicolon
	TokComma
	TokDot
	TokPipe
	TokMinus
	TokDotDot
	TokAssign // ::=
)

var kindNames = [...]string{
	TokError:          "error",
	TokEOF:            "end of input",
	TokUppercaseIdent: "uppercase identifier",
	TokLowercaseIdent: "lowercase identifier",
	TokKeyword:        "keyword",
	TokNumber:         "number",
	TokNegativeNumber: "negative number",
	TokQuotedString:   "quoted string",
	TokHexString:      "hex string",
	TokBinString:      "binary string",
	TokLBracket:       "'['",
	TokRBracket:       "']'",
	TokLBrace:         "'{'",
	TokRBrace:         "'}'",
	TokLParen:         "'('",
	TokRParen:         "')'",
	TokColon:          "':'",
	TokSemicolon:      "';'",
	TokComma:          "','",
	TokDot:            "'.'",
	TokPipe:           "'|'",
	TokMinus:          "'-'",
	TokDotDot:         "'..'",
	TokAssign:         "'::='",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsIdentifier reports whether the kind is an upper or lowercase identifier.
func (k TokenKind) IsIdentifier() bool {
	return k == TokUppercaseIdent || k == TokLowercaseIdent
}

// Token is a lexical token. Text holds the source text for identifiers,
// keywords and literals; punctuation leaves it empty.
type Token struct {
	Kind TokenKind
	Text string
	Span types.Span
}

// Is reports whether the token is the given reserved word.
func (t Token) Is(keyword string) bool {
	return t.Kind == TokKeyword && t.Text == keyword
}

func (t Token) String() string {
	if t.Text != "" {
		return t.Text
	}
	return t.Kind.String()
}

// reserved lists the words that are never identifiers in SMI source.
var reserved = map[string]bool{
	"ACCESS": true, "AGENT-CAPABILITIES": true, "APPLICATION": true,
	"AUGMENTS": true, "BEGIN": true, "CHOICE": true, "CONTACT-INFO": true,
	"CREATION-REQUIRES": true, "DEFINITIONS": true, "DEFVAL": true,
	"DESCRIPTION": true, "DISPLAY-HINT": true, "END": true,
	"ENTERPRISE": true, "EXPORTS": true, "FROM": true, "GROUP": true,
	"IDENTIFIER": true, "IMPLICIT": true, "IMPLIED": true, "IMPORTS": true,
	"INCLUDES": true, "INDEX": true, "LAST-UPDATED": true, "MACRO": true,
	"MANDATORY-GROUPS": true, "MAX-ACCESS": true, "MIN-ACCESS": true,
	"MODULE": true, "MODULE-COMPLIANCE": true, "MODULE-IDENTITY": true,
	"NOTIFICATION-GROUP": true, "NOTIFICATION-TYPE": true,
	"NOTIFICATIONS": true, "OBJECT": true, "OBJECT-GROUP": true,
	"OBJECT-IDENTITY": true, "OBJECT-TYPE": true, "OBJECTS": true,
	"OF": true, "ORGANIZATION": true, "PRODUCT-RELEASE": true,
	"REFERENCE": true, "REVISION": true, "SEQUENCE": true, "SIZE": true,
	"STATUS": true, "SUPPORTS": true, "SYNTAX": true,
	"TEXTUAL-CONVENTION": true, "TRAP-TYPE": true, "UNITS": true,
	"UNIVERSAL": true, "VARIABLES": true, "VARIATION": true,
	"WRITE-SYNTAX": true,
}

// IsReserved reports whether text is an SMI reserved word.
func IsReserved(text string) bool {
	return reserved[text]
}

// macroNames are the keywords that introduce a macro invocation.
var macroNames = map[string]bool{
	"MODULE-IDENTITY": true, "OBJECT-IDENTITY": true, "OBJECT-TYPE": true,
	"NOTIFICATION-TYPE": true, "TRAP-TYPE": true, "TEXTUAL-CONVENTION": true,
	"OBJECT-GROUP": true, "NOTIFICATION-GROUP": true,
	"MODULE-COMPLIANCE": true, "AGENT-CAPABILITIES": true,
}

// IsMacro reports whether the token names an SMI macro.
func (t Token) IsMacro() bool {
	return t.Kind == TokKeyword && macroNames[t.Text]
}
