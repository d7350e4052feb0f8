// Package lexer translates Vex source bytes into a token stream,
// synthesizing the Indent/Dedent/Newline markers an off-side-rule
// parser needs. It is grounded on the teacher's cursor/rune scanning
// style (clarete-langlang/go/base_parser.go, pos.go) adapted to a
// single-pass tokenizer instead of a backtracking PEG runtime — a
// lexer for an indentation-sensitive language has no alternatives to
// backtrack over, so the lighter cursor-only design fits better here.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vexlang/vexc/internal/token"
)

// defaultTabWidth is used by Tokenize; TokenizeWithTabWidth lets a
// caller honor the configured lexer.tab_width instead.
const defaultTabWidth = 4

// Error is a fatal lexical error, carrying the 1-based location at
// which scanning stopped. All lex errors are fatal for the compile
// (spec.md §7).
type Error struct {
	Line, Col int
	Message   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s @ %d:%d", e.Message, e.Line, e.Col)
}

type lexer struct {
	src  string
	pos  int // byte offset
	line int
	col  int // column in the current line, 1-based

	bracketDepth int
	indents      []int
	atLineStart  bool
	parenStack   []rune
	tabWidth     int

	toks []token.Token
}

// Tokenize scans source into a token stream using the default tab
// width, or returns a *Error on the first unrecoverable lexical
// problem.
func Tokenize(source []byte) ([]token.Token, error) {
	return TokenizeWithTabWidth(source, defaultTabWidth)
}

// TokenizeWithTabWidth is Tokenize with an explicit tab-to-columns
// width, for callers honoring the configured lexer.tab_width setting.
func TokenizeWithTabWidth(source []byte, tabWidth int) ([]token.Token, error) {
	l := &lexer{
		src:         string(source),
		line:        1,
		col:         1,
		indents:     []int{0},
		atLineStart: true,
		tabWidth:    tabWidth,
	}
	return l.run()
}

func (l *lexer) run() ([]token.Token, error) {
	for {
		if l.atLineStart && l.bracketDepth == 0 {
			if err := l.handleLineStart(); err != nil {
				return nil, err
			}
			if l.eof() {
				break
			}
		}
		if l.eof() {
			break
		}
		if err := l.scanOne(); err != nil {
			return nil, err
		}
	}

	l.emitNewlineIfNeeded()
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(token.Dedent, "", l.line, l.col)
	}
	l.emit(token.Eof, "", l.line, l.col)
	return l.toks, nil
}

// handleLineStart measures leading indentation, skips blank/comment
// lines entirely, and emits Indent/Dedent tokens per spec.md §4.1.
func (l *lexer) handleLineStart() error {
	for {
		start := l.pos
		col := 0
		for !l.eof() {
			c := l.peekByte()
			if c == ' ' {
				col++
				l.advanceByte()
				continue
			}
			if c == '\t' {
				col += l.tabWidth
				l.advanceByte()
				continue
			}
			break
		}
		_ = start

		if l.eof() {
			l.atLineStart = false
			return nil
		}
		c := l.peekByte()
		if c == '\n' {
			l.advanceByte()
			l.line++
			l.col = 1
			continue
		}
		if c == '\r' {
			l.advanceByte()
			continue
		}
		if c == '#' {
			l.skipComment()
			continue
		}

		top := l.indents[len(l.indents)-1]
		switch {
		case col > top:
			l.indents = append(l.indents, col)
			l.emit(token.Indent, "", l.line, 1)
		case col < top:
			for len(l.indents) > 0 && l.indents[len(l.indents)-1] > col {
				l.indents = l.indents[:len(l.indents)-1]
				l.emit(token.Dedent, "", l.line, 1)
			}
			if l.indents[len(l.indents)-1] != col {
				return &Error{Line: l.line, Col: 1, Message: "inconsistent indentation"}
			}
		}
		l.atLineStart = false
		return nil
	}
}

func (l *lexer) skipComment() {
	for !l.eof() && l.peekByte() != '\n' {
		l.advanceByte()
	}
}

func (l *lexer) scanOne() error {
	c := l.peekRune()

	switch {
	case c == ' ' || c == '\t':
		l.advanceRune()
		return nil
	case c == '\r':
		l.advanceRune()
		return nil
	case c == '\\' && l.peekByteAt(l.pos+1) == '\n':
		l.advanceByte()
		l.advanceByte()
		l.line++
		l.col = 1
		return nil
	case c == '#':
		l.skipComment()
		return nil
	case c == '\n':
		l.advanceRune()
		l.line++
		l.col = 1
		if l.bracketDepth == 0 {
			l.emitNewlineIfNeeded()
			l.atLineStart = true
		}
		return nil
	case isIdentStart(c):
		return l.scanIdentOrPrefixedString()
	case isDigitRune(c):
		return l.scanNumber()
	case c == '"' || c == '\'':
		return l.scanString(c, false, false)
	default:
		return l.scanOperator()
	}
}

func (l *lexer) emitNewlineIfNeeded() {
	if len(l.toks) == 0 {
		return
	}
	if l.toks[len(l.toks)-1].Kind == token.Newline {
		return
	}
	switch l.toks[len(l.toks)-1].Kind {
	case token.Indent, token.Dedent:
		return
	}
	l.emit(token.Newline, "", l.line, l.col)
}

func (l *lexer) scanIdentOrPrefixedString() error {
	start := l.pos
	startCol := l.col
	for !l.eof() && isIdentCont(l.peekRune()) {
		l.advanceRune()
	}
	word := l.src[start:l.pos]

	if !l.eof() {
		q := l.peekByte()
		if q == '"' || q == '\'' {
			lower := strings.ToLower(word)
			switch lower {
			case "f":
				return l.scanString(rune(q), false, true)
			case "r":
				return l.scanString(rune(q), true, false)
			case "b":
				return l.scanByteString(rune(q), false)
			case "rb", "br":
				return l.scanByteString(rune(q), true)
			case "rf", "fr":
				return l.scanString(rune(q), true, true)
			}
		}
	}

	if word == "..." {
		l.emit(token.Ellipsis, word, l.line, startCol)
		return nil
	}
	if kw, ok := token.Lookup(word); ok {
		l.emit(kw, word, l.line, startCol)
		return nil
	}
	l.emit(token.Ident, word, l.line, startCol)
	return nil
}

func (l *lexer) scanNumber() error {
	start := l.pos
	startCol := l.col
	isFloat := false
	isComplex := false

	if l.peekByte() == '0' && l.pos+1 < len(l.src) {
		switch l.src[l.pos+1] {
		case 'x', 'X':
			l.advanceByte()
			l.advanceByte()
			for !l.eof() && isHexDigit(l.peekByte()) {
				l.advanceByte()
			}
			l.emit(token.Int, l.src[start:l.pos], l.line, startCol)
			return nil
		case 'o', 'O':
			l.advanceByte()
			l.advanceByte()
			for !l.eof() && l.peekByte() >= '0' && l.peekByte() <= '7' {
				l.advanceByte()
			}
			l.emit(token.Int, l.src[start:l.pos], l.line, startCol)
			return nil
		case 'b', 'B':
			l.advanceByte()
			l.advanceByte()
			for !l.eof() && (l.peekByte() == '0' || l.peekByte() == '1') {
				l.advanceByte()
			}
			l.emit(token.Int, l.src[start:l.pos], l.line, startCol)
			return nil
		}
	}

	for !l.eof() && isDigit(l.peekByte()) {
		l.advanceByte()
	}
	if !l.eof() && l.peekByte() == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
		isFloat = true
		l.advanceByte()
		for !l.eof() && isDigit(l.peekByte()) {
			l.advanceByte()
		}
	}
	if !l.eof() && (l.peekByte() == 'e' || l.peekByte() == 'E') {
		save := l.pos
		l.advanceByte()
		if !l.eof() && (l.peekByte() == '+' || l.peekByte() == '-') {
			l.advanceByte()
		}
		if !l.eof() && isDigit(l.peekByte()) {
			isFloat = true
			for !l.eof() && isDigit(l.peekByte()) {
				l.advanceByte()
			}
		} else {
			l.pos = save
		}
	}
	if !l.eof() && (l.peekByte() == 'j' || l.peekByte() == 'J') {
		isComplex = true
		l.advanceByte()
	}

	kind := token.Int
	switch {
	case isComplex:
		kind = token.Complex
	case isFloat:
		kind = token.Float
	}
	l.emit(kind, l.src[start:l.pos], l.line, startCol)
	return nil
}

// scanString handles regular, raw, and f-string variants. The lexeme
// is the raw slice between quotes — unescaping is deferred to
// emission, per spec.md §4.1.
func (l *lexer) scanString(quote rune, raw, isF bool) error {
	startCol := l.col
	startLine := l.line
	l.advanceRune() // opening quote

	triple := false
	if l.peekRune() == quote && l.peekRuneAt(l.advanceIndex(1)) == quote {
		triple = true
		l.advanceRune()
		l.advanceRune()
	}

	bodyStart := l.pos
	for {
		if l.eof() {
			return &Error{Line: startLine, Col: startCol, Message: "unterminated string literal"}
		}
		c := l.peekRune()
		if c == '\\' && !raw {
			l.advanceRune()
			if !l.eof() {
				l.advanceRune()
			}
			continue
		}
		if c == '\\' && raw {
			// raw strings keep backslashes verbatim but still
			// don't terminate on an escaped quote
			l.advanceRune()
			if !l.eof() {
				l.advanceRune()
			}
			continue
		}
		if c == quote {
			if triple {
				if l.peekRuneAt(l.advanceIndex(1)) == quote && l.peekRuneAt(l.advanceIndex(2)) == quote {
					body := l.src[bodyStart:l.pos]
					l.advanceRune()
					l.advanceRune()
					l.advanceRune()
					return l.finishStringToken(body, raw, isF, startLine, startCol)
				}
				l.advanceRune()
				continue
			}
			body := l.src[bodyStart:l.pos]
			l.advanceRune()
			return l.finishStringToken(body, raw, isF, startLine, startCol)
		}
		if c == '\n' && !triple {
			return &Error{Line: startLine, Col: startCol, Message: "unterminated string literal"}
		}
		if c == '\n' {
			l.line++
		}
		l.advanceRune()
	}
}

func (l *lexer) scanByteString(quote rune, raw bool) error {
	startCol := l.col
	startLine := l.line
	l.advanceRune()
	bodyStart := l.pos
	for {
		if l.eof() {
			return &Error{Line: startLine, Col: startCol, Message: "unterminated byte string literal"}
		}
		c := l.peekRune()
		if c == '\\' {
			l.advanceRune()
			if !l.eof() {
				l.advanceRune()
			}
			continue
		}
		if c == quote {
			body := l.src[bodyStart:l.pos]
			l.advanceRune()
			l.emit(token.ByteString, body, startLine, startCol)
			return nil
		}
		if c == '\n' {
			return &Error{Line: startLine, Col: startCol, Message: "unterminated byte string literal"}
		}
		l.advanceRune()
	}
}

func (l *lexer) finishStringToken(body string, raw, isF bool, line, col int) error {
	if !isF {
		kind := token.String
		if raw {
			kind = token.RawString
		}
		l.emit(kind, body, line, col)
		return nil
	}
	parts, err := splitFStringParts(body, line, col)
	if err != nil {
		return err
	}
	t := token.New(token.FString, body, line, col)
	t.FParts = parts
	l.toks = append(l.toks, t)
	return nil
}

// splitFStringParts implements spec.md §4.1's f-string scan: braces
// are depth-tracked so `{{`/`}}` are literal, and each `{...}` chunk
// may carry a conversion (!r/!s/!a) or a format spec (:…).
func splitFStringParts(body string, line, col int) ([]token.FStringPart, error) {
	var parts []token.FStringPart
	var lit strings.Builder
	i := 0
	n := len(body)
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, token.FStringPart{Kind: token.FLiteral, Text: lit.String()})
			lit.Reset()
		}
	}
	for i < n {
		c := body[i]
		if c == '{' && i+1 < n && body[i+1] == '{' {
			lit.WriteByte('{')
			i += 2
			continue
		}
		if c == '}' && i+1 < n && body[i+1] == '}' {
			lit.WriteByte('}')
			i += 2
			continue
		}
		if c == '{' {
			flush()
			depth := 1
			j := i + 1
			exprStart := j
			for j < n && depth > 0 {
				switch body[j] {
				case '{':
					depth++
				case '}':
					depth--
					if depth == 0 {
						goto closed
					}
				}
				j++
			}
			return nil, &Error{Line: line, Col: col, Message: "unterminated f-string expression"}
		closed:
			raw := body[exprStart:j]
			part := token.FStringPart{Kind: token.FExpr}
			expr := raw
			if idx := strings.LastIndex(expr, ":"); idx >= 0 && !withinBracket(expr, idx) {
				part.Kind = token.FExprWithSpec
				part.Expr = strings.TrimSpace(expr[:idx])
				part.Spec = expr[idx+1:]
			} else if len(expr) >= 2 && expr[len(expr)-2] == '!' {
				conv := rune(expr[len(expr)-1])
				if conv == 'r' || conv == 's' || conv == 'a' {
					part.Kind = token.FExprWithConv
					part.Conv = conv
					part.Expr = strings.TrimSpace(expr[:len(expr)-2])
				} else {
					part.Expr = strings.TrimSpace(expr)
				}
			} else {
				part.Expr = strings.TrimSpace(expr)
			}
			parts = append(parts, part)
			i = j + 1
			continue
		}
		lit.WriteByte(c)
		i++
	}
	flush()
	if len(parts) == 0 {
		parts = append(parts, token.FStringPart{Kind: token.FLiteral, Text: ""})
	}
	return parts, nil
}

func withinBracket(s string, at int) bool {
	depth := 0
	for i := 0; i < at; i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	return depth > 0
}

var twoCharOps = map[string]token.Kind{
	"**": token.DoubleStar, "//": token.DoubleSlash, "<<": token.LShift, ">>": token.RShift,
	"==": token.EqEq, "!=": token.NotEq, "<=": token.LtEq, ">=": token.GtEq, ":=": token.Walrus,
	"+=": token.PlusEq, "-=": token.MinusEq, "*=": token.StarEq, "/=": token.SlashEq,
	"%=": token.PercentEq, "&=": token.AmpEq, "|=": token.PipeEq, "^=": token.CaretEq,
	"->": token.Arrow,
}

var threeCharOps = map[string]token.Kind{
	"**=": token.DoubleStarEq, "//=": token.DoubleSlashEq, "<<=": token.LShiftEq, ">>=": token.RShiftEq,
}

var oneCharOps = map[byte]token.Kind{
	'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash, '%': token.Percent,
	'&': token.Amp, '|': token.Pipe, '^': token.Caret, '~': token.Tilde,
	'<': token.Lt, '>': token.Gt, '=': token.Eq,
	'(': token.LParen, ')': token.RParen, '[': token.LBracket, ']': token.RBracket,
	'{': token.LBrace, '}': token.RBrace, ',': token.Comma, ':': token.Colon, '.': token.Dot,
	'@': token.At,
}

func (l *lexer) scanOperator() error {
	startCol := l.col
	startLine := l.line

	if l.pos+3 <= len(l.src) {
		if kind, ok := threeCharOps[l.src[l.pos:l.pos+3]]; ok {
			lex := l.src[l.pos : l.pos+3]
			l.advanceByte()
			l.advanceByte()
			l.advanceByte()
			l.emit(kind, lex, startLine, startCol)
			return nil
		}
	}
	if l.pos+2 <= len(l.src) {
		if kind, ok := twoCharOps[l.src[l.pos:l.pos+2]]; ok {
			lex := l.src[l.pos : l.pos+2]
			l.advanceByte()
			l.advanceByte()
			l.emit(kind, lex, startLine, startCol)
			return nil
		}
	}

	c := l.peekByte()
	switch c {
	case '(', '[', '{':
		l.bracketDepth++
	case ')', ']', '}':
		if l.bracketDepth > 0 {
			l.bracketDepth--
		}
	}
	if kind, ok := oneCharOps[c]; ok {
		l.advanceByte()
		l.emit(kind, string(c), startLine, startCol)
		return nil
	}
	return &Error{Line: startLine, Col: startCol, Message: fmt.Sprintf("unexpected character %q", rune(c))}
}

// --- low level cursor helpers ---

func (l *lexer) eof() bool { return l.pos >= len(l.src) }

func (l *lexer) peekByte() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekByteAt(i int) byte {
	if i < 0 || i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

func (l *lexer) peekRune() rune {
	if l.eof() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return r
}

func (l *lexer) peekRuneAt(idx int) rune {
	if idx < 0 || idx >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[idx:])
	return r
}

// advanceIndex returns the byte index n runes ahead of the cursor,
// without mutating the lexer.
func (l *lexer) advanceIndex(n int) int {
	idx := l.pos
	for i := 0; i < n && idx < len(l.src); i++ {
		_, size := utf8.DecodeRuneInString(l.src[idx:])
		idx += size
	}
	return idx
}

func (l *lexer) advanceByte() {
	l.pos++
	l.col++
}

func (l *lexer) advanceRune() {
	_, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	l.col++
}

func (l *lexer) emit(kind token.Kind, lexeme string, line, col int) {
	l.toks = append(l.toks, token.New(kind, lexeme, line, col))
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || isDigitRune(r)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isDigitRune(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
