package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golangsnmp/mibc/internal/lexer"
	"github.com/golangsnmp/mibc/internal/module"
	"github.com/golangsnmp/mibc/internal/types"
)

// parseSyntax reads a type: a built-in type with optional named
// numbers or constraint, SEQUENCE OF, CHOICE, or a type reference.
func (p *Parser) parseSyntax() (module.Syntax, bool) {
	var syn module.Syntax

	// [APPLICATION n] IMPLICIT prefixes appear in SMI base modules.
	if p.check(lexer.TokLBracket) {
		for !p.check(lexer.TokRBracket) && !p.check(lexer.TokEOF) {
			p.advance()
		}
		p.advance()
		p.acceptKeyword("IMPLICIT")
	}

	tok := p.peek()
	switch {
	case tok.Text == "OCTET" && p.peekNth(1).Text == "STRING":
		p.advance()
		p.advance()
		syn.Type = "OCTET STRING"
	case tok.Is("OBJECT") && p.peekNth(1).Is("IDENTIFIER"):
		p.advance()
		p.advance()
		syn.Type = "OBJECT IDENTIFIER"
		return syn, true
	case tok.Is("SEQUENCE") && p.peekNth(1).Is("OF"):
		p.advance()
		p.advance()
		entry, ok := p.expectIdent()
		if !ok {
			return syn, false
		}
		syn.Type = "SEQUENCE OF"
		syn.Entry = entry.Text
		return syn, true
	case tok.Is("CHOICE"):
		p.advance()
		p.skipBraces()
		syn.Type = "CHOICE"
		return syn, true
	case tok.Kind == lexer.TokUppercaseIdent && p.peekNth(1).Kind == lexer.TokDot:
		p.advance()
		p.advance()
		name, ok := p.expectIdent()
		if !ok {
			return syn, false
		}
		syn.Module = tok.Text
		syn.Type = name.Text
	case tok.Kind == lexer.TokUppercaseIdent:
		p.advance()
		syn.Type = tok.Text
	default:
		p.errorf(tok.Span, "expected type, found %s", p.describe(tok))
		return syn, false
	}

	switch {
	case p.check(lexer.TokLBrace):
		enums, ok := p.parseNamedNumbers()
		if !ok {
			return syn, false
		}
		syn.Enums = enums
	case p.check(lexer.TokLParen):
		if !p.parseConstraint(&syn) {
			return syn, false
		}
	}
	return syn, true
}

// parseNamedNumbers reads "{ label(n), ... }".
func (p *Parser) parseNamedNumbers() ([]module.NamedNumber, bool) {
	p.advance()
	var out []module.NamedNumber
	for !p.check(lexer.TokRBrace) {
		label, ok := p.expectIdent()
		if !ok {
			return out, false
		}
		if _, ok := p.expect(lexer.TokLParen); !ok {
			return out, false
		}
		numTok := p.advance()
		if numTok.Kind != lexer.TokNumber && numTok.Kind != lexer.TokNegativeNumber {
			p.errorf(numTok.Span, "expected number for %s, found %s", label.Text, p.describe(numTok))
			return out, false
		}
		v, err := strconv.ParseInt(numTok.Text, 10, 64)
		if err != nil {
			p.emit(types.DiagInvalidNumber, types.SeverityError, numTok.Span,
				fmt.Sprintf("value %s of %s out of range", numTok.Text, label.Text))
			return out, false
		}
		if _, ok := p.expect(lexer.TokRParen); !ok {
			return out, false
		}
		out = append(out, module.NamedNumber{Label: label.Text, Value: v})
		if !p.accept(lexer.TokComma) {
			break
		}
	}
	_, ok := p.expect(lexer.TokRBrace)
	return out, ok
}

// parseConstraint reads "(ranges)" or "(SIZE (ranges))".
func (p *Parser) parseConstraint(syn *module.Syntax) bool {
	p.advance()
	if p.acceptKeyword("SIZE") {
		if _, ok := p.expect(lexer.TokLParen); !ok {
			return false
		}
		sizes, ok := p.parseRanges()
		if !ok {
			return false
		}
		syn.Sizes = sizes
		if _, ok := p.expect(lexer.TokRParen); !ok {
			return false
		}
	} else {
		ranges, ok := p.parseRanges()
		if !ok {
			return false
		}
		syn.Ranges = ranges
	}
	_, ok := p.expect(lexer.TokRParen)
	return ok
}

// parseRanges reads "a..b | c | d..e".
func (p *Parser) parseRanges() ([]module.Range, bool) {
	var out []module.Range
	for {
		lo, ok := p.parseBound()
		if !ok {
			return out, false
		}
		r := module.Range{Min: lo, Max: lo}
		if p.accept(lexer.TokDotDot) {
			if r.Max, ok = p.parseBound(); !ok {
				return out, false
			}
		}
		out = append(out, r)
		if !p.accept(lexer.TokPipe) {
			return out, true
		}
	}
}

func (p *Parser) parseBound() (module.Bound, bool) {
	tok := p.advance()
	switch {
	case tok.Kind == lexer.TokNumber || tok.Kind == lexer.TokNegativeNumber:
		b, err := module.ParseBound(tok.Text)
		if err != nil {
			p.emit(types.DiagInvalidNumber, types.SeverityError, tok.Span,
				fmt.Sprintf("range bound %s out of range", tok.Text))
			return b, false
		}
		return b, true
	case tok.Kind == lexer.TokHexString:
		digits := quotedDigits(tok.Text)
		v, err := strconv.ParseUint(digits, 16, 64)
		if err != nil {
			p.emit(types.DiagInvalidHexRange, types.SeverityError, tok.Span,
				fmt.Sprintf("invalid hex range bound %s", tok.Text))
			return module.Bound{}, false
		}
		return module.Bound{Abs: v}, true
	case tok.Kind == lexer.TokBinString:
		v, err := strconv.ParseUint(quotedDigits(tok.Text), 2, 64)
		if err != nil {
			p.emit(types.DiagInvalidNumber, types.SeverityError, tok.Span,
				fmt.Sprintf("invalid binary range bound %s", tok.Text))
			return module.Bound{}, false
		}
		return module.Bound{Abs: v}, true
	case tok.Text == "MIN":
		return module.Min, true
	case tok.Text == "MAX":
		return module.Max, true
	}
	p.errorf(tok.Span, "expected range bound, found %s", p.describe(tok))
	return module.Bound{}, false
}

// quotedDigits strips the quotes and radix suffix of 'xx'H or 'xx'B.
func quotedDigits(text string) string {
	text = strings.TrimPrefix(text, "'")
	if i := strings.LastIndexByte(text, '\''); i >= 0 {
		text = text[:i]
	}
	return text
}

// parseDefVal reads the braces of a DEFVAL clause. A value the parser
// cannot classify is skipped and yields nil.
func (p *Parser) parseDefVal() (*module.DefVal, bool) {
	if _, ok := p.expect(lexer.TokLBrace); !ok {
		return nil, false
	}
	var dv *module.DefVal
	tok := p.peek()
	switch {
	case tok.Kind == lexer.TokNumber || tok.Kind == lexer.TokNegativeNumber:
		p.advance()
		dv = &module.DefVal{Kind: module.DefNumber, Text: tok.Text}
	case tok.Kind == lexer.TokHexString:
		p.advance()
		dv = &module.DefVal{Kind: module.DefHex, Text: quotedDigits(tok.Text)}
	case tok.Kind == lexer.TokBinString:
		p.advance()
		dv = &module.DefVal{Kind: module.DefBinary, Text: quotedDigits(tok.Text)}
	case tok.Kind == lexer.TokQuotedString:
		p.advance()
		dv = &module.DefVal{Kind: module.DefString, Text: unquote(tok.Text)}
	case tok.Kind.IsIdentifier():
		p.advance()
		dv = &module.DefVal{Kind: module.DefLabel, Text: tok.Text}
	case tok.Kind == lexer.TokLBrace:
		dv = p.parseBracedDefVal()
	}
	if dv == nil {
		// Unclassified content: skip to the closing brace.
		depth := 1
		for depth > 0 && !p.check(lexer.TokEOF) {
			switch p.advance().Kind {
			case lexer.TokLBrace:
				depth++
			case lexer.TokRBrace:
				depth--
			}
		}
		return nil, true
	}
	_, ok := p.expect(lexer.TokRBrace)
	return dv, ok
}

// parseBracedDefVal distinguishes a BITS label list "{ a, b }" from an
// OID value "{ iso 3 6 }".
func (p *Parser) parseBracedDefVal() *module.DefVal {
	p.advance()
	var toks []lexer.Token
	for !p.check(lexer.TokRBrace) && !p.check(lexer.TokEOF) {
		toks = append(toks, p.advance())
	}
	p.accept(lexer.TokRBrace)

	list := true
	var labels []string
	for i, t := range toks {
		if i%2 == 1 {
			list = list && t.Kind == lexer.TokComma
			continue
		}
		list = list && t.Kind.IsIdentifier()
		labels = append(labels, t.Text)
	}
	if list && (len(toks) == 0 || len(toks)%2 == 1) {
		return &module.DefVal{Kind: module.DefList, Labels: labels}
	}

	var oid module.OidValue
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.Kind == lexer.TokNumber:
			n, err := strconv.ParseUint(t.Text, 10, 32)
			if err != nil {
				return nil
			}
			oid.Arcs = append(oid.Arcs, module.Arc{Number: uint32(n), HasNumber: true})
		case t.Kind.IsIdentifier():
			arc := module.Arc{Name: t.Text}
			if i+3 < len(toks) && toks[i+1].Kind == lexer.TokLParen && toks[i+2].Kind == lexer.TokNumber && toks[i+3].Kind == lexer.TokRParen {
				n, err := strconv.ParseUint(toks[i+2].Text, 10, 32)
				if err != nil {
					return nil
				}
				arc.Number, arc.HasNumber = uint32(n), true
				i += 3
			}
			oid.Arcs = append(oid.Arcs, arc)
		default:
			return nil
		}
	}
	return &module.DefVal{Kind: module.DefOid, Oid: &oid}
}
