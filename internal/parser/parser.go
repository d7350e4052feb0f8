// Package parser turns a token stream into a Vex AST via recursive
// descent with precedence climbing for expressions, per spec.md §4.2.
// Grounded on the teacher's hand-written recursive descent layer
// (clarete-langlang/go/base_parser.go) for the cursor/expect/error
// discipline, generalized from PEG backtracking to a single committed
// descent since Vex's grammar (unlike a PEG host language) needs no
// alternative-rule backtracking once the next token is known.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/lexer"
	"github.com/vexlang/vexc/internal/token"
)

// Error is a syntax error, carrying the 1-based location the parser
// was at when it gave up. All parse errors are fatal (spec.md §7).
type Error struct {
	Line, Col int
	Message   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s @ %d:%d", e.Message, e.Line, e.Col)
}

type parser struct {
	toks []token.Token
	pos  int
}

// Parse consumes a full token stream (as produced by lexer.Tokenize,
// always Eof-terminated) and returns the module's AST.
func Parse(toks []token.Token) (*ast.Module, error) {
	if len(toks) == 0 {
		toks = []token.Token{token.New(token.Eof, "", 1, 1)}
	}
	p := &parser{toks: toks}
	body, err := p.parseStatements(token.Eof)
	if err != nil {
		return nil, err
	}
	return ast.NewModule(body), nil
}

// ---- cursor helpers ----

func (p *parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *parser) atAny(ks ...token.Kind) bool {
	c := p.cur().Kind
	for _, k := range ks {
		if c == k {
			return true
		}
	}
	return false
}

func (p *parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k token.Kind) (token.Token, error) {
	if !p.at(k) {
		return token.Token{}, p.errorf("expected %s, got %s %q", k, p.cur().Kind, p.cur().Lexeme)
	}
	return p.advance(), nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &Error{Line: p.cur().Line, Col: p.cur().Col, Message: fmt.Sprintf(format, args...)}
}

// ---- statements ----

var compoundStarters = map[token.Kind]bool{
	token.Def: true, token.Class: true, token.If: true, token.While: true,
	token.For: true, token.Try: true, token.With: true, token.Async: true,
}

func (p *parser) parseStatements(stop token.Kind) ([]ast.Node, error) {
	var out []ast.Node
	for !p.at(stop) && !p.at(token.Eof) {
		if p.at(token.Newline) {
			p.advance()
			continue
		}
		if compoundStarters[p.cur().Kind] {
			stmt, err := p.parseCompoundStatement()
			if err != nil {
				return nil, err
			}
			out = append(out, stmt)
			continue
		}
		stmt, err := p.parseSimpleStatement()
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
		if p.at(token.Newline) {
			p.advance()
		}
	}
	return out, nil
}

func (p *parser) parseCompoundStatement() (ast.Node, error) {
	switch p.cur().Kind {
	case token.Def:
		return p.parseFunctionDef(false)
	case token.Class:
		return p.parseClassDef()
	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.For:
		return p.parseFor()
	case token.Try:
		return p.parseTry()
	case token.With:
		return p.parseWith()
	case token.Async:
		p.advance()
		switch p.cur().Kind {
		case token.Def:
			return p.parseFunctionDef(true)
		case token.For:
			return p.parseFor()
		case token.With:
			return p.parseWith()
		default:
			return nil, p.errorf("expected def, for or with after async")
		}
	default:
		return nil, p.errorf("unexpected token %s", p.cur().Kind)
	}
}

// parseSuite parses a `:` followed either by a single simple statement
// on the same line, or a Newline/Indent block, per spec.md §4.1's
// off-side-rule blocks (and the single-line-suite shorthand the
// language also allows, e.g. `if x: return 1`).
func (p *parser) parseSuite() ([]ast.Node, error) {
	if _, err := p.expect(token.Colon); err != nil {
		return nil, err
	}
	if !p.at(token.Newline) {
		stmt, err := p.parseSimpleStatement()
		if err != nil {
			return nil, err
		}
		if p.at(token.Newline) {
			p.advance()
		}
		return []ast.Node{stmt}, nil
	}
	p.advance() // Newline
	if _, err := p.expect(token.Indent); err != nil {
		return nil, err
	}
	body, err := p.parseStatements(token.Dedent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Dedent); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *parser) parseFunctionDef(isAsync bool) (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	p.advance() // def
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	args, err := p.parseParams(token.RParen)
	if err != nil {
		return nil, err
	}
	returns := ""
	if p.at(token.Arrow) {
		p.advance()
		returns, err = p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return ast.NewFunctionDef(name.Lexeme, args, returns, body, isAsync, line, col), nil
}

func (p *parser) parseParams(stop token.Kind) ([]ast.Arg, error) {
	var args []ast.Arg
	for !p.at(stop) {
		var a ast.Arg
		if p.at(token.Star) {
			p.advance()
			a.IsStar = true
		} else if p.at(token.DoubleStar) {
			p.advance()
			a.IsDoubleStar = true
		}
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		a.Name = name.Lexeme
		if p.at(token.Colon) {
			p.advance()
			ann, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			a.Annotation = ann
		}
		if p.at(token.Eq) {
			p.advance()
			def, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			a.Default = def
		}
		args = append(args, a)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(stop); err != nil {
		return nil, err
	}
	return args, nil
}

// parseTypeExpr consumes a restricted type expression (Name, dotted
// attributes, and a single level of `[...]` generic args) and returns
// its literal source text, since internal/types resolves annotations
// from plain strings rather than AST nodes.
func (p *parser) parseTypeExpr() (string, error) {
	var b strings.Builder
	depth := 0
	for {
		switch p.cur().Kind {
		case token.Ident, token.None:
			b.WriteString(p.advance().Lexeme)
		case token.Dot:
			p.advance()
			b.WriteString(".")
		case token.LBracket:
			p.advance()
			depth++
			b.WriteString("[")
		case token.RBracket:
			if depth == 0 {
				return b.String(), nil
			}
			p.advance()
			depth--
			b.WriteString("]")
		case token.Comma:
			if depth == 0 {
				return b.String(), nil
			}
			p.advance()
			b.WriteString(", ")
		default:
			if depth > 0 {
				return "", p.errorf("unterminated type expression")
			}
			return b.String(), nil
		}
	}
}

func (p *parser) parseClassDef() (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	p.advance() // class
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	var bases []string
	if p.at(token.LParen) {
		p.advance()
		for !p.at(token.RParen) {
			b, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			bases = append(bases, b.Lexeme)
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return ast.NewClassDef(name.Lexeme, bases, body, line, col), nil
}

func (p *parser) parseIf() (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	p.advance() // if
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	var elseBody []ast.Node
	switch p.cur().Kind {
	case token.Elif:
		elifLine, elifCol := p.cur().Line, p.cur().Col
		elifStmt, err := p.parseElif(elifLine, elifCol)
		if err != nil {
			return nil, err
		}
		elseBody = []ast.Node{elifStmt}
	case token.Else:
		p.advance()
		elseBody, err = p.parseSuite()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIf(cond, body, elseBody, line, col), nil
}

// parseElif treats `elif` as a single-statement else-body wrapping a
// nested If, mirroring how the target representation chains elif as
// nested if/else.
func (p *parser) parseElif(line, col int) (ast.Node, error) {
	p.advance() // elif
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	var elseBody []ast.Node
	switch p.cur().Kind {
	case token.Elif:
		elifLine, elifCol := p.cur().Line, p.cur().Col
		nested, err := p.parseElif(elifLine, elifCol)
		if err != nil {
			return nil, err
		}
		elseBody = []ast.Node{nested}
	case token.Else:
		p.advance()
		elseBody, err = p.parseSuite()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIf(cond, body, elseBody, line, col), nil
}

func (p *parser) parseWhile() (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	p.advance() // while
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(cond, body, line, col), nil
}

func (p *parser) parseFor() (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	p.advance() // for
	target, err := p.parseTargetList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.In); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return ast.NewFor(target, iter, body, line, col), nil
}

// parseTargetList parses a comma-separated list of assignment/loop
// targets, wrapping more than one into a Tuple (spec.md §4.2's
// tuple-target unpacking rule).
func (p *parser) parseTargetList() (ast.Node, error) {
	first, err := p.parseTargetAtom()
	if err != nil {
		return nil, err
	}
	if !p.at(token.Comma) {
		return first, nil
	}
	line, col := first.Line(), first.Col()
	elts := []ast.Node{first}
	for p.at(token.Comma) {
		p.advance()
		if p.atAny(token.In, token.Colon, token.Eq) {
			break
		}
		e, err := p.parseTargetAtom()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	return ast.NewTuple(elts, line, col), nil
}

func (p *parser) parseTargetAtom() (ast.Node, error) {
	if p.at(token.Star) {
		line, col := p.cur().Line, p.cur().Col
		p.advance()
		v, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		return ast.NewStarred(v, line, col), nil
	}
	if p.at(token.LParen) {
		p.advance()
		t, err := p.parseTargetList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return t, nil
	}
	return p.parsePostfix()
}

func (p *parser) parseTry() (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	p.advance() // try
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	var handlers []ast.ExceptHandler
	for p.at(token.Except) {
		p.advance()
		var h ast.ExceptHandler
		if !p.at(token.Colon) {
			excType, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			h.ExcType = excType
			if p.at(token.As) {
				p.advance()
				name, err := p.expect(token.Ident)
				if err != nil {
					return nil, err
				}
				h.Name = name.Lexeme
			}
		}
		hbody, err := p.parseSuite()
		if err != nil {
			return nil, err
		}
		h.Body = hbody
		handlers = append(handlers, h)
	}
	var elseBody, finally []ast.Node
	if p.at(token.Else) {
		p.advance()
		elseBody, err = p.parseSuite()
		if err != nil {
			return nil, err
		}
	}
	if p.at(token.Finally) {
		p.advance()
		finally, err = p.parseSuite()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewTryStmt(body, handlers, elseBody, finally, line, col), nil
}

func (p *parser) parseWith() (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	p.advance() // with
	ctx, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var as ast.Node
	if p.at(token.As) {
		p.advance()
		as, err = p.parseTargetAtom()
		if err != nil {
			return nil, err
		}
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	return ast.NewWith(ctx, as, body, line, col), nil
}

// parseSimpleStatement parses one of the "small statement" forms,
// each occupying a single logical line.
func (p *parser) parseSimpleStatement() (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	switch p.cur().Kind {
	case token.Pass:
		p.advance()
		return ast.NewPass(line, col), nil
	case token.Break:
		p.advance()
		return ast.NewBreak(line, col), nil
	case token.Continue:
		p.advance()
		return ast.NewContinue(line, col), nil
	case token.Return:
		p.advance()
		if p.at(token.Newline) || p.at(token.Eof) || p.at(token.Dedent) {
			return ast.NewReturn(nil, line, col), nil
		}
		v, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		return ast.NewReturn(v, line, col), nil
	case token.Raise:
		p.advance()
		if p.at(token.Newline) || p.at(token.Eof) || p.at(token.Dedent) {
			return ast.NewRaise(nil, line, col), nil
		}
		exc, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.at(token.From) {
			p.advance()
			if _, err := p.parseExpr(); err != nil {
				return nil, err
			}
		}
		return ast.NewRaise(exc, line, col), nil
	case token.Import:
		return p.parseImportStmt()
	case token.From:
		return p.parseImportFrom()
	case token.Global:
		p.advance()
		names, err := p.parseNameList()
		if err != nil {
			return nil, err
		}
		return ast.NewGlobal(names, line, col), nil
	case token.Del:
		p.advance()
		first, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		targets := []ast.Node{first}
		for p.at(token.Comma) {
			p.advance()
			t, err := p.parsePostfix()
			if err != nil {
				return nil, err
			}
			targets = append(targets, t)
		}
		return ast.NewDel(targets, line, col), nil
	case token.Assert:
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		var msg ast.Node
		if p.at(token.Comma) {
			p.advance()
			msg, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		return ast.NewAssert(cond, msg, line, col), nil
	default:
		return p.parseExprOrAssign()
	}
}

func (p *parser) parseNameList() ([]string, error) {
	first, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	out := []string{first.Lexeme}
	for p.at(token.Comma) {
		p.advance()
		n, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		out = append(out, n.Lexeme)
	}
	return out, nil
}

func (p *parser) parseImportStmt() (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	p.advance() // import
	mod, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	asname := ""
	if p.at(token.As) {
		p.advance()
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		asname = name.Lexeme
	}
	return ast.NewImportStmt(mod, asname, line, col), nil
}

func (p *parser) parseImportFrom() (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	p.advance() // from
	mod, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Import); err != nil {
		return nil, err
	}
	var names, asnames []string
	star := p.at(token.Star)
	if star {
		p.advance()
		names = []string{"*"}
		asnames = []string{""}
	} else {
		wrapped := p.at(token.LParen)
		if wrapped {
			p.advance()
		}
		for {
			n, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			as := ""
			if p.at(token.As) {
				p.advance()
				a, err := p.expect(token.Ident)
				if err != nil {
					return nil, err
				}
				as = a.Lexeme
			}
			names = append(names, n.Lexeme)
			asnames = append(asnames, as)
			if p.at(token.Comma) {
				p.advance()
				if wrapped && p.at(token.RParen) {
					break
				}
				continue
			}
			break
		}
		if wrapped {
			if _, err := p.expect(token.RParen); err != nil {
				return nil, err
			}
		}
	}
	return ast.NewImportFrom(mod, names, asnames, line, col), nil
}

func (p *parser) parseDottedName() (string, error) {
	first, err := p.expect(token.Ident)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(first.Lexeme)
	for p.at(token.Dot) {
		p.advance()
		n, err := p.expect(token.Ident)
		if err != nil {
			return "", err
		}
		b.WriteString(".")
		b.WriteString(n.Lexeme)
	}
	return b.String(), nil
}

// parseExprOrAssign parses an expression statement, possibly an
// assignment, chained assignment, augmented assignment, or annotated
// assignment, per spec.md §4.2.
func (p *parser) parseExprOrAssign() (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	first, err := p.parseExprList()
	if err != nil {
		return nil, err
	}

	if p.at(token.Colon) {
		p.advance()
		ann, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		var value ast.Node
		if p.at(token.Eq) {
			p.advance()
			value, err = p.parseExprList()
			if err != nil {
				return nil, err
			}
		}
		return ast.NewAnnAssign(first, ann, value, line, col), nil
	}

	if augOp, ok := augAssignOp(p.cur().Kind); ok {
		p.advance()
		value, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		return ast.NewAugAssign(first, augOp, value, line, col), nil
	}

	if p.at(token.Eq) {
		targets := []ast.Node{first}
		var value ast.Node
		for p.at(token.Eq) {
			p.advance()
			rhs, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			if p.at(token.Eq) {
				targets = append(targets, rhs)
				continue
			}
			value = rhs
		}
		return ast.NewAssign(targets, value, line, col), nil
	}

	return ast.NewExprStmt(first, line, col), nil
}

func augAssignOp(k token.Kind) (string, bool) {
	switch k {
	case token.PlusEq:
		return "+=", true
	case token.MinusEq:
		return "-=", true
	case token.StarEq:
		return "*=", true
	case token.SlashEq:
		return "/=", true
	case token.DoubleSlashEq:
		return "//=", true
	case token.PercentEq:
		return "%=", true
	case token.AmpEq:
		return "&=", true
	case token.PipeEq:
		return "|=", true
	case token.CaretEq:
		return "^=", true
	case token.LShiftEq:
		return "<<=", true
	case token.RShiftEq:
		return ">>=", true
	case token.DoubleStarEq:
		return "**=", true
	}
	return "", false
}

// parseExprList parses one or more comma-separated expressions,
// wrapping more than one into a Tuple — used both for the left-hand
// side of assignments and for bare/returned tuples without parens.
func (p *parser) parseExprList() (ast.Node, error) {
	first, err := p.parseExprOrStarred()
	if err != nil {
		return nil, err
	}
	if !p.at(token.Comma) {
		return first, nil
	}
	line, col := first.Line(), first.Col()
	elts := []ast.Node{first}
	for p.at(token.Comma) {
		p.advance()
		if p.atAny(token.Eq, token.Newline, token.Eof, token.Colon, token.Dedent, token.RParen, token.RBracket, token.RBrace) {
			break
		}
		e, err := p.parseExprOrStarred()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	return ast.NewTuple(elts, line, col), nil
}

func (p *parser) parseExprOrStarred() (ast.Node, error) {
	if p.at(token.Star) {
		line, col := p.cur().Line, p.cur().Col
		p.advance()
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewStarred(v, line, col), nil
	}
	return p.parseExpr()
}

// ---- expressions: precedence ladder (spec.md §4.2) ----

func (p *parser) parseExpr() (ast.Node, error) {
	return p.parseTernary()
}

func (p *parser) parseTernary() (ast.Node, error) {
	if p.at(token.Lambda) {
		return p.parseLambda()
	}
	body, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.at(token.If) {
		line, col := body.Line(), body.Col()
		p.advance()
		cond, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Else); err != nil {
			return nil, err
		}
		elseVal, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		return ast.NewIf(cond, []ast.Node{ast.NewExprStmt(body, line, col)}, []ast.Node{ast.NewExprStmt(elseVal, line, col)}, line, col), nil
	}
	return body, nil
}

func (p *parser) parseLambda() (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	p.advance() // lambda
	args, err := p.parseParams(token.Colon)
	if err != nil {
		return nil, err
	}
	body, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return ast.NewLambda(args, body, line, col), nil
}

func (p *parser) parseOr() (ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if !p.at(token.Or) {
		return left, nil
	}
	values := []ast.Node{left}
	line, col := left.Line(), left.Col()
	for p.at(token.Or) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		values = append(values, right)
	}
	return ast.NewBoolOp("or", values, line, col), nil
}

func (p *parser) parseAnd() (ast.Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	if !p.at(token.And) {
		return left, nil
	}
	values := []ast.Node{left}
	line, col := left.Line(), left.Col()
	for p.at(token.And) {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		values = append(values, right)
	}
	return ast.NewBoolOp("and", values, line, col), nil
}

func (p *parser) parseNot() (ast.Node, error) {
	if p.at(token.Not) {
		line, col := p.cur().Line, p.cur().Col
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp("not", operand, line, col), nil
	}
	return p.parseComparison()
}

var compareOps = map[token.Kind]string{
	token.Lt: "<", token.LtEq: "<=", token.Gt: ">", token.GtEq: ">=",
	token.EqEq: "==", token.NotEq: "!=", token.In: "in", token.Is: "is",
}

func (p *parser) parseComparison() (ast.Node, error) {
	left, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	var ops []string
	var comparators []ast.Node
	for {
		if p.at(token.Not) && p.peekKind(1) == token.In {
			p.advance()
			p.advance()
			right, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			ops = append(ops, "not in")
			comparators = append(comparators, right)
			continue
		}
		if p.at(token.Is) && p.peekKind(1) == token.Not {
			p.advance()
			p.advance()
			right, err := p.parseBitOr()
			if err != nil {
				return nil, err
			}
			ops = append(ops, "is not")
			comparators = append(comparators, right)
			continue
		}
		op, ok := compareOps[p.cur().Kind]
		if !ok {
			break
		}
		p.advance()
		right, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		comparators = append(comparators, right)
	}
	if len(ops) == 0 {
		return left, nil
	}
	return ast.NewCompare(left, ops, comparators, left.Line(), left.Col()), nil
}

func (p *parser) peekKind(n int) token.Kind {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return token.Eof
	}
	return p.toks[idx].Kind
}

func (p *parser) parseBitOr() (ast.Node, error) {
	return p.parseBinaryLevel(p.parseBitXor, map[token.Kind]string{token.Pipe: "|"})
}

func (p *parser) parseBitXor() (ast.Node, error) {
	return p.parseBinaryLevel(p.parseBitAnd, map[token.Kind]string{token.Caret: "^"})
}

func (p *parser) parseBitAnd() (ast.Node, error) {
	return p.parseBinaryLevel(p.parseShift, map[token.Kind]string{token.Amp: "&"})
}

func (p *parser) parseShift() (ast.Node, error) {
	return p.parseBinaryLevel(p.parseAdditive, map[token.Kind]string{token.LShift: "<<", token.RShift: ">>"})
}

func (p *parser) parseAdditive() (ast.Node, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, map[token.Kind]string{token.Plus: "+", token.Minus: "-"})
}

func (p *parser) parseMultiplicative() (ast.Node, error) {
	return p.parseBinaryLevel(p.parseUnary, map[token.Kind]string{
		token.Star: "*", token.Slash: "/", token.DoubleSlash: "//", token.Percent: "%",
	})
}

// parseBinaryLevel implements one left-associative precedence level:
// parse a sub-expression, then repeatedly fold in `op sub` pairs.
func (p *parser) parseBinaryLevel(sub func() (ast.Node, error), ops map[token.Kind]string) (ast.Node, error) {
	left, err := sub()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.cur().Kind]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := sub()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp(left, op, right, left.Line(), left.Col())
	}
}

func (p *parser) parseUnary() (ast.Node, error) {
	switch p.cur().Kind {
	case token.Plus, token.Minus, token.Tilde:
		line, col := p.cur().Line, p.cur().Col
		op := p.cur().Kind
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		opStr := map[token.Kind]string{token.Plus: "+", token.Minus: "-", token.Tilde: "~"}[op]
		return ast.NewUnaryOp(opStr, operand, line, col), nil
	}
	return p.parsePower()
}

// parsePower binds `**` tighter than unary operators but loosely
// enough on its right side to admit a unary operand (2**-1), and is
// right-associative (2**3**2 == 2**(3**2)) because its right operand
// recurses back through parseUnary into parsePower.
func (p *parser) parsePower() (ast.Node, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if !p.at(token.DoubleStar) {
		return left, nil
	}
	p.advance()
	right, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return ast.NewBinOp(left, "**", right, left.Line(), left.Col()), nil
}

func (p *parser) parsePostfix() (ast.Node, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case token.LParen:
			left, err = p.parseCallTrailer(left)
		case token.LBracket:
			left, err = p.parseSubscriptTrailer(left)
		case token.Dot:
			left, err = p.parseAttributeTrailer(left)
		default:
			return left, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseCallTrailer(fn ast.Node) (ast.Node, error) {
	p.advance() // (
	var args []ast.Node
	for !p.at(token.RParen) {
		arg, err := p.parseCallArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return ast.NewCall(fn, args, fn.Line(), fn.Col()), nil
}

// parseCallArg handles positional, *args, **kwargs, and keyword
// (name=value) call arguments. A keyword argument is represented as
// an Assign node with a single Name target, which the emitter
// recognizes among Call.Args by kind — there being no separate
// Keyword node in spec.md §3.2's exhaustive node set.
func (p *parser) parseCallArg() (ast.Node, error) {
	if p.at(token.Star) || p.at(token.DoubleStar) {
		line, col := p.cur().Line, p.cur().Col
		double := p.at(token.DoubleStar)
		p.advance()
		v, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if double {
			return ast.NewUnaryOp("**", v, line, col), nil
		}
		return ast.NewStarred(v, line, col), nil
	}
	if p.at(token.Ident) && p.peekKind(1) == token.Eq {
		line, col := p.cur().Line, p.cur().Col
		name := p.advance().Lexeme
		p.advance() // =
		v, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		return ast.NewAssign([]ast.Node{ast.NewName(name, line, col)}, v, line, col), nil
	}
	return p.parseTernary()
}

func (p *parser) parseSubscriptTrailer(value ast.Node) (ast.Node, error) {
	p.advance() // [
	idx, err := p.parseSliceOrIndex()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBracket); err != nil {
		return nil, err
	}
	return ast.NewSubscript(value, idx, value.Line(), value.Col()), nil
}

// parseSliceOrIndex distinguishes `x[i]` from `x[a:b:c]` by the
// presence of a `:`; omitted bounds are nil Slice fields.
func (p *parser) parseSliceOrIndex() (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	var lower, upper, step ast.Node
	var err error
	if !p.at(token.Colon) {
		lower, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.at(token.Colon) {
			return ast.NewIndex(lower, lower.Line(), lower.Col()), nil
		}
	}
	p.advance() // :
	if !p.atAny(token.Colon, token.RBracket) {
		upper, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if p.at(token.Colon) {
		p.advance()
		if !p.at(token.RBracket) {
			step, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
	}
	return ast.NewSlice(lower, upper, step, line, col), nil
}

func (p *parser) parseAttributeTrailer(value ast.Node) (ast.Node, error) {
	p.advance() // .
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	return ast.NewAttribute(value, name.Lexeme, value.Line(), value.Col()), nil
}

func (p *parser) parseAtom() (ast.Node, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.Int:
		p.advance()
		return p.parseIntLiteral(tok)
	case token.Float:
		p.advance()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid float literal %q", tok.Lexeme)
		}
		return ast.NewConstantFloat(v, tok.Line, tok.Col), nil
	case token.Complex:
		// Vex's native type lattice has no distinct complex kind;
		// the imaginary magnitude is folded into a float constant.
		p.advance()
		v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSuffix(tok.Lexeme, "j"), "J"), 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid complex literal %q", tok.Lexeme)
		}
		return ast.NewConstantFloat(v, tok.Line, tok.Col), nil
	case token.String, token.RawString:
		p.advance()
		return ast.NewConstantString(unescapeString(tok.Lexeme, tok.Kind == token.RawString), tok.Line, tok.Col), nil
	case token.ByteString:
		p.advance()
		return ast.NewConstantString(tok.Lexeme, tok.Line, tok.Col), nil
	case token.FString:
		p.advance()
		return p.buildFString(tok)
	case token.True:
		p.advance()
		return ast.NewConstantBool(true, tok.Line, tok.Col), nil
	case token.False:
		p.advance()
		return ast.NewConstantBool(false, tok.Line, tok.Col), nil
	case token.None:
		p.advance()
		return ast.NewConstantNone(tok.Line, tok.Col), nil
	case token.Ellipsis:
		p.advance()
		return ast.NewConstantNone(tok.Line, tok.Col), nil
	case token.Ident:
		p.advance()
		if p.at(token.Walrus) {
			p.advance()
			value, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			return ast.NewNamedExpr(ast.NewName(tok.Lexeme, tok.Line, tok.Col), value, tok.Line, tok.Col), nil
		}
		return ast.NewName(tok.Lexeme, tok.Line, tok.Col), nil
	case token.Await:
		p.advance()
		v, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewAwaitExpr(v, tok.Line, tok.Col), nil
	case token.LParen:
		return p.parseParenGroup()
	case token.LBracket:
		return p.parseListOrComp()
	case token.LBrace:
		return p.parseDictOrSet()
	}
	return nil, p.errorf("unexpected token %s %q", tok.Kind, tok.Lexeme)
}

func (p *parser) errorAt(tok token.Token, format string, args ...any) error {
	return &Error{Line: tok.Line, Col: tok.Col, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseIntLiteral(tok token.Token) (ast.Node, error) {
	lex := tok.Lexeme
	base := 0
	switch {
	case strings.HasPrefix(lex, "0x") || strings.HasPrefix(lex, "0X"):
		base, lex = 16, lex[2:]
	case strings.HasPrefix(lex, "0o") || strings.HasPrefix(lex, "0O"):
		base, lex = 8, lex[2:]
	case strings.HasPrefix(lex, "0b") || strings.HasPrefix(lex, "0B"):
		base, lex = 2, lex[2:]
	}
	v, err := strconv.ParseInt(lex, base, 64)
	if err != nil {
		return nil, p.errorAt(tok, "invalid integer literal %q", tok.Lexeme)
	}
	return ast.NewConstantInt(v, tok.Line, tok.Col), nil
}

// buildFString recursively parses each expression chunk the lexer
// already split out, turning token.FStringPart into ast.FStringPart.
func (p *parser) buildFString(tok token.Token) (ast.Node, error) {
	var parts []ast.FStringPart
	for _, fp := range tok.FParts {
		if fp.Kind == token.FLiteral {
			parts = append(parts, ast.FStringPart{Literal: fp.Text})
			continue
		}
		exprToks, err := tokenizeFragment(fp.Expr, tok.Line, tok.Col)
		if err != nil {
			return nil, err
		}
		sub := &parser{toks: exprToks}
		exprNode, err := sub.parseExpr()
		if err != nil {
			return nil, err
		}
		parts = append(parts, ast.FStringPart{Expr: exprNode, Spec: fp.Spec, Conv: fp.Conv})
	}
	return ast.NewFString(parts, tok.Line, tok.Col), nil
}

// tokenizeFragment re-lexes a raw f-string expression chunk with the
// same lexer used for the whole source, since each `{...}` chunk is
// itself valid Vex expression syntax (spec.md §4.1).
func tokenizeFragment(src string, line, col int) ([]token.Token, error) {
	toks, err := lexer.Tokenize([]byte(src))
	if err != nil {
		return nil, &Error{Line: line, Col: col, Message: err.Error()}
	}
	// Strip the trailing Newline/Eof/Indent/Dedent markers a full
	// tokenize run adds; a fragment is a single expression, and the
	// sub-parser's own Eof sentinel is appended back.
	var out []token.Token
	for _, t := range toks {
		switch t.Kind {
		case token.Newline, token.Indent, token.Dedent, token.Eof:
			continue
		}
		out = append(out, t)
	}
	out = append(out, token.New(token.Eof, "", line, col))
	return out, nil
}

func (p *parser) parseParenGroup() (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	p.advance() // (
	if p.at(token.RParen) {
		p.advance()
		return ast.NewTuple(nil, line, col), nil
	}
	first, err := p.parseExprOrStarred()
	if err != nil {
		return nil, err
	}
	if p.at(token.For) {
		gens, err := p.parseComprehensionClauses()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return ast.NewGenExp(first, gens, line, col), nil
	}
	if !p.at(token.Comma) {
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return first, nil
	}
	elts := []ast.Node{first}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RParen) {
			break
		}
		e, err := p.parseExprOrStarred()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return ast.NewTuple(elts, line, col), nil
}

func (p *parser) parseListOrComp() (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	p.advance() // [
	if p.at(token.RBracket) {
		p.advance()
		return ast.NewList(nil, line, col), nil
	}
	first, err := p.parseExprOrStarred()
	if err != nil {
		return nil, err
	}
	if p.at(token.For) {
		gens, err := p.parseComprehensionClauses()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBracket); err != nil {
			return nil, err
		}
		return ast.NewListComp(first, gens, line, col), nil
	}
	elts := []ast.Node{first}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RBracket) {
			break
		}
		e, err := p.parseExprOrStarred()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	if _, err := p.expect(token.RBracket); err != nil {
		return nil, err
	}
	return ast.NewList(elts, line, col), nil
}

// parseDictOrSet disambiguates `{}`, `{k: v, ...}`, `{k: v for ...}`,
// `{x, ...}` and `{x for ...}` by the presence of `:` and `for` after
// the first entry, per spec.md §4.2.
func (p *parser) parseDictOrSet() (ast.Node, error) {
	line, col := p.cur().Line, p.cur().Col
	p.advance() // {
	if p.at(token.RBrace) {
		p.advance()
		return ast.NewDict(nil, nil, line, col), nil
	}
	if p.at(token.DoubleStar) {
		return p.parseDictTail(line, col, nil, nil)
	}
	startedWithStar := p.at(token.Star)
	first, err := p.parseExprOrStarred()
	if err != nil {
		return nil, err
	}
	if !startedWithStar && p.at(token.Colon) {
		p.advance()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.at(token.For) {
			gens, err := p.parseComprehensionClauses()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBrace); err != nil {
				return nil, err
			}
			return ast.NewDictComp(first, val, gens, line, col), nil
		}
		return p.parseDictTail(line, col, []ast.Node{first}, []ast.Node{val})
	}
	if p.at(token.For) {
		gens, err := p.parseComprehensionClauses()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBrace); err != nil {
			return nil, err
		}
		// Vex's AST has no distinct set-comprehension kind; a
		// set-comp shares GenExp's (elt, generators) shape and folds
		// into a GenExp. The surrounding `{}` is recorded nowhere, so
		// the emitter lowers it like any GenExp: an eagerly built list.
		return ast.NewGenExp(first, gens, line, col), nil
	}
	elts := []ast.Node{first}
	for p.at(token.Comma) {
		p.advance()
		if p.at(token.RBrace) {
			break
		}
		e, err := p.parseExprOrStarred()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return ast.NewSet(elts, line, col), nil
}

func (p *parser) parseDictTail(line, col int, keys, values []ast.Node) (ast.Node, error) {
	for p.at(token.Comma) || p.at(token.DoubleStar) {
		if p.at(token.Comma) {
			p.advance()
			if p.at(token.RBrace) {
				break
			}
		}
		if p.at(token.DoubleStar) {
			p.advance()
			v, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			keys = append(keys, nil)
			values = append(values, v)
			continue
		}
		k, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
		values = append(values, v)
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return nil, err
	}
	return ast.NewDict(keys, values, line, col), nil
}

// parseComprehensionClauses parses the `for ... [if ...]` clauses of
// a comprehension/generator. The `if` guard is restricted to an
// or-expression (no bare ternary) so a following `else` can never be
// mistaken for part of the guard.
func (p *parser) parseComprehensionClauses() ([]ast.Comprehension, error) {
	var gens []ast.Comprehension
	for p.at(token.For) || p.at(token.Async) {
		if p.at(token.Async) {
			p.advance()
		}
		if _, err := p.expect(token.For); err != nil {
			return nil, err
		}
		target, err := p.parseTargetList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.In); err != nil {
			return nil, err
		}
		iter, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		var ifs []ast.Node
		for p.at(token.If) {
			p.advance()
			cond, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			ifs = append(ifs, cond)
		}
		gens = append(gens, ast.Comprehension{Target: target, Iter: iter, Ifs: ifs})
	}
	return gens, nil
}

// unescapeString resolves the common backslash escapes for non-raw
// string literals; raw strings keep backslashes verbatim.
func unescapeString(s string, raw bool) string {
	if raw {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case '\'':
			b.WriteByte('\'')
		case '"':
			b.WriteByte('"')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
