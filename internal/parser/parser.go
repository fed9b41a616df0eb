// Package parser turns MIB source text into module.Module values.
//
// The parser is recursive descent over a three token lookahead. It
// recovers from errors at definition boundaries, so one malformed
// definition costs only that definition; the errors are recorded as
// diagnostics on the module. Whether a module with errors is usable is
// decided by the caller through DiagnosticConfig.ShouldFail.
package parser

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/golangsnmp/mibc/internal/lexer"
	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/types"
)

// Parser converts a token stream into modules with diagnostics.
type Parser struct {
	source      []byte
	lex         *lexer.Lexer
	buf         [3]lexer.Token
	lexDiags    int
	diagnostics []types.SpanDiagnostic
	diagConfig  types.DiagnosticConfig
	lines       []int
	types.Logger
}

// New returns a Parser over source. Pass nil for logger to disable
// logging.
func New(source []byte, logger *slog.Logger, diagConfig types.DiagnosticConfig) *Parser {
	lex := lexer.New(source, types.Component(logger, "lexer"))
	p := &Parser{
		source:     source,
		lex:        lex,
		diagConfig: diagConfig,
		Logger:     types.Logger{L: logger},
	}
	p.buf[0] = lex.Next()
	p.buf[1] = lex.Next()
	p.buf[2] = lex.Next()
	return p
}

// Parse parses every module in source.
func Parse(source []byte, logger *slog.Logger, diagConfig types.DiagnosticConfig) []*module.Module {
	return New(source, logger, diagConfig).ParseAll()
}

// ParseAll parses modules until end of input. Text that is not a
// module header is skipped with a diagnostic.
func (p *Parser) ParseAll() []*module.Module {
	var mods []*module.Module
	for !p.check(lexer.TokEOF) {
		if !p.atModuleHeader() {
			if p.skipToModuleHeader() {
				continue
			}
			break
		}
		mod := p.parseModule()
		mods = append(mods, mod)
		p.Log(slog.LevelDebug, "module parsed",
			slog.String("module", mod.Name),
			slog.Int("definitions", len(mod.Declarations)),
			slog.Int("diagnostics", len(mod.Diagnostics)))
	}
	if len(mods) == 0 {
		p.error(p.peek().Span, "no module definition found")
		mods = append(mods, &module.Module{Diagnostics: p.takeDiagnostics("")})
	}
	return mods
}

func (p *Parser) atModuleHeader() bool {
	second := p.peekNth(1)
	return p.peek().Kind.IsIdentifier() && (second.Is("DEFINITIONS") || second.Kind == lexer.TokLBrace)
}

// skipToModuleHeader advances to the next "Name DEFINITIONS". It
// reports false at end of input.
func (p *Parser) skipToModuleHeader() bool {
	start := p.peek().Span
	for !p.check(lexer.TokEOF) {
		if p.atModuleHeader() {
			p.error(start, "unexpected text before module definition")
			return true
		}
		p.advance()
	}
	return false
}

// === Token helpers ===

func (p *Parser) peek() lexer.Token { return p.buf[0] }

func (p *Parser) peekNth(n int) lexer.Token { return p.buf[n] }

func (p *Parser) advance() lexer.Token {
	tok := p.buf[0]
	p.buf[0] = p.buf[1]
	p.buf[1] = p.buf[2]
	p.buf[2] = p.lex.Next()
	return tok
}

func (p *Parser) check(kind lexer.TokenKind) bool { return p.peek().Kind == kind }

func (p *Parser) checkKeyword(kw string) bool { return p.peek().Is(kw) }

func (p *Parser) accept(kind lexer.TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) acceptKeyword(kw string) bool {
	if p.checkKeyword(kw) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	p.errorf(p.peek().Span, "expected %s, found %s", kind, p.describe(p.peek()))
	return p.peek(), false
}

func (p *Parser) expectKeyword(kw string) bool {
	if p.acceptKeyword(kw) {
		return true
	}
	p.errorf(p.peek().Span, "expected %s, found %s", kw, p.describe(p.peek()))
	return false
}

func (p *Parser) describe(tok lexer.Token) string {
	if tok.Kind == lexer.TokEOF {
		return "end of input"
	}
	return strconv.Quote(tok.String())
}

// expectIdent accepts an identifier of either case. Reserved words
// are accepted with a diagnostic since vendor MIBs use them as names.
func (p *Parser) expectIdent() (lexer.Token, bool) {
	tok := p.peek()
	switch {
	case tok.Kind.IsIdentifier():
		return p.advance(), true
	case tok.Kind == lexer.TokKeyword && !tok.Is("END") && !tok.Is("FROM"):
		p.emit(types.DiagKeywordReserved, types.SeverityMinor, tok.Span,
			fmt.Sprintf("reserved word %s used as identifier", tok.Text))
		return p.advance(), true
	}
	p.errorf(tok.Span, "expected identifier, found %s", p.describe(tok))
	return tok, false
}

func (p *Parser) expectString() (string, bool) {
	tok, ok := p.expect(lexer.TokQuotedString)
	if !ok {
		return "", false
	}
	return unquote(tok.Text), true
}

func unquote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

// === Diagnostics ===

func (p *Parser) emit(code string, severity types.Severity, span types.Span, message string) {
	if !p.diagConfig.ShouldReport(code, severity) {
		return
	}
	p.diagnostics = append(p.diagnostics, types.SpanDiagnostic{
		Severity: severity,
		Code:     code,
		Span:     span,
		Message:  message,
	})
}

func (p *Parser) error(span types.Span, message string) {
	p.emit(types.DiagParseError, types.SeverityError, span, message)
}

func (p *Parser) errorf(span types.Span, format string, args ...any) {
	p.error(span, fmt.Sprintf(format, args...))
}

// validateIdentifier checks RFC 2578 identifier rules.
func (p *Parser) validateIdentifier(name string, span types.Span) {
	if strings.Contains(name, "_") {
		p.emit(types.DiagIdentifierUnderscore, types.SeverityStyle, span,
			fmt.Sprintf("identifier %q contains underscore", name))
	}
	if strings.HasSuffix(name, "-") {
		p.emit(types.DiagIdentifierHyphenEnd, types.SeverityMinor, span,
			fmt.Sprintf("identifier %q ends with hyphen", name))
	}
	switch n := len(name); {
	case n > 64:
		p.emit(types.DiagIdentifierLength64, types.SeverityMinor, span,
			fmt.Sprintf("identifier %q longer than 64 characters", name))
	case n > 32:
		p.emit(types.DiagIdentifierLength32, types.SeverityStyle, span,
			fmt.Sprintf("identifier %q longer than 32 characters", name))
	}
}

// takeDiagnostics drains lexer and parser diagnostics into the
// line/column form stored on a module.
func (p *Parser) takeDiagnostics(moduleName string) []types.Diagnostic {
	lexDiags := p.lex.Diagnostics()
	span := append(lexDiags[p.lexDiags:], p.diagnostics...)
	p.lexDiags = len(lexDiags)
	p.diagnostics = nil
	if len(span) == 0 {
		return nil
	}
	sort.SliceStable(span, func(i, j int) bool { return span[i].Span.Start < span[j].Span.Start })
	out := make([]types.Diagnostic, 0, len(span))
	for _, d := range span {
		if d.Code == types.DiagLexError && !p.diagConfig.ShouldReport(d.Code, d.Severity) {
			continue
		}
		line, col := p.lineCol(d.Span.Start)
		out = append(out, types.Diagnostic{
			Severity: d.Severity,
			Code:     d.Code,
			Message:  d.Message,
			Module:   moduleName,
			Line:     line,
			Column:   col,
		})
	}
	return out
}

func (p *Parser) lineCol(off types.ByteOffset) (int, int) {
	if p.lines == nil {
		p.lines = []int{0}
		for i, c := range p.source {
			if c == '\n' {
				p.lines = append(p.lines, i+1)
			}
		}
	}
	o := int(off)
	line := sort.Search(len(p.lines), func(i int) bool { return p.lines[i] > o }) - 1
	return line + 1, o - p.lines[line] + 1
}

// === Module structure ===

func (p *Parser) parseModule() *module.Module {
	nameTok := p.advance()
	mod := &module.Module{Name: nameTok.Text}
	p.validateIdentifier(mod.Name, nameTok.Span)
	if nameTok.Kind != lexer.TokUppercaseIdent {
		p.emit(types.DiagBadIdentifierCase, types.SeverityMinor, nameTok.Span,
			fmt.Sprintf("module name %q should start with an uppercase letter", mod.Name))
	}

	if p.check(lexer.TokLBrace) {
		if oid, ok := p.parseOidValue(); ok {
			mod.Oid = &oid
		}
	}

	if p.expectKeyword("DEFINITIONS") {
		// DEFINITIONS [IMPLICIT TAGS | EXPLICIT TAGS] ::= BEGIN
		for !p.check(lexer.TokAssign) && !p.check(lexer.TokEOF) && !p.checkKeyword("BEGIN") {
			p.advance()
		}
		p.expect(lexer.TokAssign)
		p.expectKeyword("BEGIN")
	}

	if p.acceptKeyword("EXPORTS") {
		p.accept(lexer.TokSemicolon)
	}
	if p.checkKeyword("IMPORTS") {
		mod.Imports = p.parseImports()
	}

	for !p.check(lexer.TokEOF) && !p.checkKeyword("END") {
		start := p.peek().Span.Start
		if decl := p.parseDefinition(); decl != nil {
			mod.Declarations = append(mod.Declarations, decl)
		} else {
			p.recoverToDefinition()
		}
		if p.peek().Span.Start == start && !p.check(lexer.TokEOF) {
			p.advance()
		}
	}
	end := p.peek().Span.End
	if !p.acceptKeyword("END") {
		p.errorf(p.peek().Span, "missing END for module %s", mod.Name)
	}
	mod.Span = types.NewSpan(nameTok.Span.Start, end)
	mod.Language = detectLanguage(mod)
	mod.Diagnostics = p.takeDiagnostics(mod.Name)
	return mod
}

func detectLanguage(mod *module.Module) types.Language {
	for _, g := range mod.Imports {
		switch g.Module {
		case "SNMPv2-SMI", "SNMPv2-TC", "SNMPv2-CONF":
			return types.LanguageSMIv2
		}
	}
	for _, d := range mod.Declarations {
		switch d.(type) {
		case *module.ModuleIdentity, *module.ObjectIdentity, *module.Compliance:
			return types.LanguageSMIv2
		}
	}
	return types.LanguageSMIv1
}

// parseImports reads "IMPORTS a, b FROM M1 c FROM M2 ;".
func (p *Parser) parseImports() []module.ImportGroup {
	p.advance()
	var groups []module.ImportGroup
	var symbols []string
	for !p.check(lexer.TokSemicolon) && !p.check(lexer.TokEOF) {
		tok := p.peek()
		switch {
		case tok.Is("FROM"):
			p.advance()
			modTok, ok := p.expectIdent()
			if !ok {
				p.skipTo(lexer.TokSemicolon)
				return groups
			}
			groups = append(groups, module.ImportGroup{Module: modTok.Text, Symbols: symbols})
			symbols = nil
			// optional AssignedIdentifier
			if p.check(lexer.TokLBrace) {
				p.skipBraces()
			}
		case tok.Kind == lexer.TokComma:
			p.advance()
		case tok.Kind.IsIdentifier() || tok.Kind == lexer.TokKeyword && !tok.Is("END"):
			p.advance()
			symbols = append(symbols, tok.Text)
		default:
			p.errorf(tok.Span, "unexpected %s in IMPORTS", p.describe(tok))
			p.skipTo(lexer.TokSemicolon)
		}
	}
	if len(symbols) > 0 {
		p.errorf(p.peek().Span, "imported symbols without FROM clause")
	}
	p.expect(lexer.TokSemicolon)
	return groups
}

// parseDefinition dispatches on the first two tokens. It returns nil
// after recording a diagnostic.
func (p *Parser) parseDefinition() module.Declaration {
	first, second := p.peek(), p.peekNth(1)

	if second.Is("MACRO") {
		p.advance()
		p.advance()
		p.expectKeyword("END")
		return &module.Macro{Name: first.Text, Span: first.Span}
	}

	if first.Kind == lexer.TokLowercaseIdent || first.Kind == lexer.TokUppercaseIdent && second.IsMacro() {
		if first.Kind == lexer.TokUppercaseIdent {
			p.emit(types.DiagBadIdentifierCase, types.SeverityMinor, first.Span,
				fmt.Sprintf("value name %q should start with a lowercase letter", first.Text))
		}
		p.validateIdentifier(first.Text, first.Span)
		switch {
		case second.Is("OBJECT") && p.peekNth(2).Is("IDENTIFIER"):
			return p.parseValueAssignment()
		case second.Is("OBJECT-TYPE"):
			return p.parseObjectType()
		case second.Is("MODULE-IDENTITY"):
			return p.parseModuleIdentity()
		case second.Is("OBJECT-IDENTITY"):
			return p.parseObjectIdentity()
		case second.Is("NOTIFICATION-TYPE"):
			return p.parseNotificationType()
		case second.Is("TRAP-TYPE"):
			return p.parseTrapType()
		case second.Is("OBJECT-GROUP"):
			return p.parseObjectGroup()
		case second.Is("NOTIFICATION-GROUP"):
			return p.parseNotificationGroup()
		case second.Is("MODULE-COMPLIANCE"):
			return p.parseModuleCompliance()
		case second.Is("AGENT-CAPABILITIES"):
			return p.parseAgentCapabilities()
		}
		p.errorf(second.Span, "unexpected %s after %s", p.describe(second), first.Text)
		return nil
	}

	if first.Kind == lexer.TokUppercaseIdent && second.Kind == lexer.TokAssign {
		p.validateIdentifier(first.Text, first.Span)
		return p.parseTypeAssignment()
	}

	p.errorf(first.Span, "unexpected %s at start of definition", p.describe(first))
	return nil
}

// recoverToDefinition skips tokens until something that looks like the
// start of a definition or the module END.
func (p *Parser) recoverToDefinition() {
	for !p.check(lexer.TokEOF) {
		if p.atDefinitionStart() || p.checkKeyword("END") && !p.peekNth(1).Is("MACRO") {
			return
		}
		p.advance()
	}
}

func (p *Parser) atDefinitionStart() bool {
	first, second := p.peek(), p.peekNth(1)
	if !first.Kind.IsIdentifier() && !first.IsMacro() {
		return false
	}
	return second.IsMacro() || second.Is("MACRO") || second.Kind == lexer.TokAssign ||
		second.Is("OBJECT") && p.peekNth(2).Is("IDENTIFIER")
}

func (p *Parser) skipTo(kind lexer.TokenKind) {
	for !p.check(kind) && !p.check(lexer.TokEOF) {
		p.advance()
	}
}

// skipBraces consumes a balanced { ... } group.
func (p *Parser) skipBraces() {
	depth := 0
	for !p.check(lexer.TokEOF) {
		switch p.advance().Kind {
		case lexer.TokLBrace:
			depth++
		case lexer.TokRBrace:
			depth--
			if depth <= 0 {
				return
			}
		}
	}
}

// === Assignments ===

func (p *Parser) parseValueAssignment() module.Declaration {
	name := p.advance()
	p.advance() // OBJECT
	p.advance() // IDENTIFIER
	if _, ok := p.expect(lexer.TokAssign); !ok {
		return nil
	}
	oid, ok := p.parseOidValue()
	if !ok {
		return nil
	}
	return &module.Value{Name: name.Text, Oid: oid, Span: p.spanFrom(name)}
}

func (p *Parser) spanFrom(start lexer.Token) types.Span {
	return types.NewSpan(start.Span.Start, p.peek().Span.Start)
}

// parseTypeAssignment handles "Name ::= ..." for plain types, textual
// conventions and SEQUENCE row types.
func (p *Parser) parseTypeAssignment() module.Declaration {
	name := p.advance()
	p.advance() // ::=

	if p.acceptKeyword("TEXTUAL-CONVENTION") {
		return p.parseTextualConvention(name)
	}
	if p.checkKeyword("SEQUENCE") && p.peekNth(1).Kind == lexer.TokLBrace {
		return p.parseSequence(name)
	}
	syntax, ok := p.parseSyntax()
	if !ok {
		return nil
	}
	return &module.TypeDecl{Name: name.Text, Syntax: syntax, Span: p.spanFrom(name)}
}

func (p *Parser) parseTextualConvention(name lexer.Token) module.Declaration {
	tc := &module.TypeDecl{Name: name.Text, TextualConvention: true}
	for !p.check(lexer.TokEOF) {
		ok := true
		switch tok := p.peek(); {
		case tok.Is("DISPLAY-HINT"):
			p.advance()
			tc.DisplayHint, ok = p.expectString()
		case tok.Is("STATUS"):
			tc.Status, ok = p.parseStatus()
		case tok.Is("DESCRIPTION"):
			p.advance()
			tc.Description, ok = p.expectString()
		case tok.Is("REFERENCE"):
			p.advance()
			tc.Reference, ok = p.expectString()
		case tok.Is("SYNTAX"):
			p.advance()
			if tc.Syntax, ok = p.parseSyntax(); !ok {
				return nil
			}
			tc.Span = p.spanFrom(name)
			return tc
		default:
			p.errorf(tok.Span, "unexpected %s in TEXTUAL-CONVENTION", p.describe(tok))
			return nil
		}
		if !ok {
			return nil
		}
	}
	p.errorf(p.peek().Span, "TEXTUAL-CONVENTION %s has no SYNTAX", name.Text)
	return nil
}

func (p *Parser) parseSequence(name lexer.Token) module.Declaration {
	p.advance() // SEQUENCE
	p.advance() // {
	seq := &module.Sequence{Name: name.Text}
	for !p.check(lexer.TokRBrace) && !p.check(lexer.TokEOF) {
		field, ok := p.expectIdent()
		if !ok {
			return nil
		}
		syntax, ok := p.parseSyntax()
		if !ok {
			return nil
		}
		seq.Fields = append(seq.Fields, module.Field{Name: field.Text, Syntax: syntax})
		if !p.accept(lexer.TokComma) {
			break
		}
	}
	if _, ok := p.expect(lexer.TokRBrace); !ok {
		return nil
	}
	seq.Span = p.spanFrom(name)
	return seq
}

// === OID values ===

// parseOidValue reads "{ arc arc ... }".
func (p *Parser) parseOidValue() (module.OidValue, bool) {
	var oid module.OidValue
	if _, ok := p.expect(lexer.TokLBrace); !ok {
		return oid, false
	}
	for !p.check(lexer.TokRBrace) {
		arc, ok := p.parseArc()
		if !ok {
			return oid, false
		}
		oid.Arcs = append(oid.Arcs, arc)
	}
	p.advance()
	if len(oid.Arcs) == 0 {
		p.error(p.peek().Span, "empty OID value")
		return oid, false
	}
	return oid, true
}

func (p *Parser) parseArc() (module.Arc, bool) {
	tok := p.peek()
	switch {
	case tok.Kind == lexer.TokNumber:
		p.advance()
		n, ok := p.arcNumber(tok)
		return module.Arc{Number: n, HasNumber: true}, ok
	case tok.Kind == lexer.TokUppercaseIdent && p.peekNth(1).Kind == lexer.TokDot:
		p.advance()
		p.advance()
		name, ok := p.expectIdent()
		return module.Arc{Module: tok.Text, Name: name.Text}, ok
	case tok.Kind.IsIdentifier():
		p.advance()
		arc := module.Arc{Name: tok.Text}
		if p.accept(lexer.TokLParen) {
			num, ok := p.expect(lexer.TokNumber)
			if !ok {
				return arc, false
			}
			if arc.Number, ok = p.arcNumber(num); !ok {
				return arc, false
			}
			arc.HasNumber = true
			if _, ok := p.expect(lexer.TokRParen); !ok {
				return arc, false
			}
		}
		return arc, true
	}
	p.errorf(tok.Span, "unexpected %s in OID value", p.describe(tok))
	return module.Arc{}, false
}

func (p *Parser) arcNumber(tok lexer.Token) (uint32, bool) {
	n, err := strconv.ParseUint(tok.Text, 10, 32)
	if err != nil {
		p.emit(types.DiagInvalidNumber, types.SeverityError, tok.Span,
			fmt.Sprintf("OID arc %s out of range", tok.Text))
		return 0, false
	}
	return uint32(n), true
}

// parseAssignedOid reads the trailing "::= { ... }" of a macro.
func (p *Parser) parseAssignedOid() (module.OidValue, bool) {
	if _, ok := p.expect(lexer.TokAssign); !ok {
		return module.OidValue{}, false
	}
	return p.parseOidValue()
}

// === Shared clauses ===

func (p *Parser) parseStatus() (types.Status, bool) {
	p.advance()
	tok, ok := p.expectIdent()
	if !ok {
		return types.StatusUnknown, false
	}
	switch tok.Text {
	case "current":
		return types.StatusCurrent, true
	case "deprecated":
		return types.StatusDeprecated, true
	case "obsolete":
		return types.StatusObsolete, true
	case "mandatory":
		return types.StatusMandatory, true
	case "optional":
		return types.StatusOptional, true
	}
	p.errorf(tok.Span, "unknown STATUS %q", tok.Text)
	return types.StatusUnknown, true
}

func (p *Parser) parseAccess() (types.Access, bool) {
	p.advance()
	tok, ok := p.expectIdent()
	if !ok {
		return types.AccessUnknown, false
	}
	switch tok.Text {
	case "not-accessible":
		return types.AccessNotAccessible, true
	case "accessible-for-notify":
		return types.AccessAccessibleForNotify, true
	case "read-only":
		return types.AccessReadOnly, true
	case "read-write":
		return types.AccessReadWrite, true
	case "read-create":
		return types.AccessReadCreate, true
	case "write-only":
		return types.AccessWriteOnly, true
	case "not-implemented":
		return types.AccessNotImplemented, true
	}
	p.errorf(tok.Span, "unknown access %q", tok.Text)
	return types.AccessUnknown, true
}

// parseNameList reads "{ a, b, c }".
func (p *Parser) parseNameList() ([]string, bool) {
	if _, ok := p.expect(lexer.TokLBrace); !ok {
		return nil, false
	}
	var names []string
	for !p.check(lexer.TokRBrace) {
		tok, ok := p.expectIdent()
		if !ok {
			return names, false
		}
		names = append(names, tok.Text)
		if !p.accept(lexer.TokComma) {
			break
		}
	}
	_, ok := p.expect(lexer.TokRBrace)
	return names, ok
}

// textClause handles the DESCRIPTION and REFERENCE clauses shared by
// all macros. handled is false when the token is neither.
func (p *Parser) textClause(description, reference *string) (handled, ok bool) {
	switch {
	case p.checkKeyword("DESCRIPTION"):
		p.advance()
		*description, ok = p.expectString()
		return true, ok
	case p.checkKeyword("REFERENCE"):
		p.advance()
		*reference, ok = p.expectString()
		return true, ok
	}
	return false, false
}

func (p *Parser) unexpectedClause(macro string) {
	tok := p.peek()
	p.errorf(tok.Span, "unexpected %s in %s", p.describe(tok), macro)
}
