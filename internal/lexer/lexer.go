package lexer

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/golangsnmp/mibc/internal/types"
)

// Lexer produces tokens on demand from MIB source text. Comments are
// dropped, MACRO bodies collapse to MACRO ... END and EXPORTS lists
// collapse to EXPORTS ;.
type Lexer struct {
	src         []byte
	pos         int
	pending     []Token
	diagnostics []types.SpanDiagnostic
	types.Logger
}

// New returns a Lexer over source. Pass nil to disable logging.
func New(source []byte, logger *slog.Logger) *Lexer {
	l := &Lexer{src: source, Logger: types.Logger{L: logger}}
	l.Log(slog.LevelDebug, "lexer initialized", slog.Int("bytes", len(source)))
	return l
}

// Diagnostics returns a copy of the diagnostics collected so far.
func (l *Lexer) Diagnostics() []types.SpanDiagnostic {
	return slices.Clone(l.diagnostics)
}

// Tokenize consumes the whole input, including the final TokEOF.
func (l *Lexer) Tokenize() ([]Token, []types.SpanDiagnostic) {
	tokens := make([]Token, 0, max(len(l.src)/6, 64))
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	return tokens, l.Diagnostics()
}

// Next returns the next token, TokEOF once input is exhausted.
func (l *Lexer) Next() Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}
	for {
		tok, ok := l.scan()
		if !ok {
			continue
		}
		if l.TraceEnabled() {
			l.Trace("token", slog.String("kind", tok.Kind.String()),
				slog.String("text", tok.Text), slog.Int("start", int(tok.Span.Start)))
		}
		if tok.Kind == TokKeyword {
			switch tok.Text {
			case "MACRO":
				l.pending = append(l.pending, l.skipMacroBody())
			case "EXPORTS":
				l.pending = append(l.pending, l.skipExports())
			}
		}
		return tok
	}
}

func (l *Lexer) at(off int) byte {
	if i := l.pos + off; i < len(l.src) {
		return l.src[i]
	}
	return 0
}

func (l *Lexer) make(kind TokenKind, start int, withText bool) Token {
	tok := Token{Kind: kind, Span: types.NewSpan(types.ByteOffset(start), types.ByteOffset(l.pos))}
	if withText {
		tok.Text = string(l.src[start:l.pos])
	}
	return tok
}

func (l *Lexer) errorf(start int, format string, args ...any) {
	l.diagnostics = append(l.diagnostics, types.SpanDiagnostic{
		Severity: types.SeverityError,
		Code:     types.DiagLexError,
		Span:     types.NewSpan(types.ByteOffset(start), types.ByteOffset(l.pos)),
		Message:  fmt.Sprintf(format, args...),
	})
}

// scan reads one token. ok is false when only trivia or garbage was
// consumed and the caller should scan again.
func (l *Lexer) scan() (Token, bool) {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	start := l.pos
	if l.pos >= len(l.src) {
		return l.make(TokEOF, start, false), true
	}

	c := l.src[l.pos]
	switch {
	case c == '-' && l.at(1) == '-':
		l.skipComment()
		return Token{}, false
	case c == '-' && isDigit(l.at(1)):
		l.pos++
		l.skipDigits()
		return l.make(TokNegativeNumber, start, true), true
	case isDigit(c):
		l.skipDigits()
		return l.make(TokNumber, start, true), true
	case isAlpha(c):
		return l.scanWord(), true
	case c == '"':
		return l.scanQuoted(), true
	case c == '\'':
		return l.scanBinaryOrHex(), true
	case c == ':' && l.at(1) == ':' && l.at(2) == '=':
		l.pos += 3
		return l.make(TokAssign, start, false), true
	case c == '.' && l.at(1) == '.':
		l.pos += 2
		return l.make(TokDotDot, start, false), true
	}

	if kind, ok := punctuation[c]; ok {
		l.pos++
		return l.make(kind, start, false), true
	}

	l.pos++
	l.errorf(start, "unexpected character: 0x%02x", c)
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
	return Token{}, false
}

var punctuation = map[byte]TokenKind{
	'[': TokLBracket, ']': TokRBracket, '{': TokLBrace, '}': TokRBrace,
	'(': TokLParen, ')': TokRParen, ':': TokColon, ';': TokSemicolon,
	',': TokComma, '.': TokDot, '|': TokPipe, '-': TokMinus,
}

// skipComment consumes "--" up to the next "--" or end of line.
func (l *Lexer) skipComment() {
	l.pos += 2
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\n' || c == '\r' {
			return
		}
		if c == '-' && l.at(1) == '-' {
			l.pos += 2
			return
		}
		l.pos++
	}
}

func (l *Lexer) skipDigits() {
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
}

// scanWord reads an identifier or reserved word. A hyphen belongs to
// the word unless it starts a "--" comment.
func (l *Lexer) scanWord() Token {
	start := l.pos
	upper := isUpper(l.src[l.pos])
	l.pos++
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isAlpha(c) || isDigit(c) || c == '_' || (c == '-' && l.at(1) != '-') {
			l.pos++
			continue
		}
		break
	}
	text := string(l.src[start:l.pos])
	kind := TokLowercaseIdent
	switch {
	case reserved[text]:
		kind = TokKeyword
	case upper:
		kind = TokUppercaseIdent
	}
	tok := l.make(kind, start, false)
	tok.Text = text
	return tok
}

// scanQuoted reads a double-quoted string. Text keeps the quotes.
func (l *Lexer) scanQuoted() Token {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) {
		if l.src[l.pos] == '"' {
			l.pos++
			return l.make(TokQuotedString, start, true)
		}
		l.pos++
	}
	l.errorf(start, "unterminated string literal")
	return l.make(TokQuotedString, start, true)
}

// scanBinaryOrHex reads 'digits'H or 'digits'B.
func (l *Lexer) scanBinaryOrHex() Token {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) && l.src[l.pos] != '\'' {
		l.pos++
	}
	if l.pos >= len(l.src) {
		l.errorf(start, "unterminated hex/binary string")
		return l.make(TokError, start, true)
	}
	l.pos++
	switch l.at(0) {
	case 'H', 'h':
		l.pos++
		return l.make(TokHexString, start, true)
	case 'B', 'b':
		l.pos++
		return l.make(TokBinString, start, true)
	}
	l.errorf(start, "expected 'H' or 'B' suffix for hex/binary string")
	return l.make(TokError, start, true)
}

// skipMacroBody discards everything up to the END closing a MACRO
// definition and returns that END token.
func (l *Lexer) skipMacroBody() Token {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '-' && l.at(1) == '-':
			l.skipComment()
		case c == '"':
			l.scanQuoted()
		case isAlpha(c):
			tok := l.scanWord()
			if tok.Text == "END" {
				return tok
			}
		default:
			l.pos++
		}
	}
	return l.make(TokEOF, l.pos, false)
}

// skipExports discards the EXPORTS symbol list and returns its ';'.
func (l *Lexer) skipExports() Token {
	for l.pos < len(l.src) {
		if l.src[l.pos] == ';' {
			l.pos++
			return l.make(TokSemicolon, l.pos-1, false)
		}
		l.pos++
	}
	return l.make(TokEOF, l.pos, false)
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isAlpha(c byte) bool { return isUpper(c) || (c >= 'a' && c <= 'z') }
