package asmparser

import (
	"varvm/internal/asmerr"
	"varvm/internal/asmlexer"
)

// Parser consumes a token stream produced by asmlexer and builds the
// flat Item list described in ast.go.
type Parser struct {
	file string
	toks []asmlexer.Token
	pos  int
}

// New returns a Parser over toks, attributing errors to file.
func New(file string, toks []asmlexer.Token) *Parser {
	return &Parser{file: file, toks: toks}
}

func (p *Parser) peek() asmlexer.Token {
	if p.pos >= len(p.toks) {
		return asmlexer.Token{Kind: asmlexer.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) advance() asmlexer.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) peekAt(off int) asmlexer.Token {
	if p.pos+off >= len(p.toks) {
		return asmlexer.Token{Kind: asmlexer.EOF}
	}
	return p.toks[p.pos+off]
}

func (p *Parser) errAt(tok asmlexer.Token, format string, args ...any) *asmerr.Error {
	return asmerr.At(asmerr.Parse, asmerr.Location{File: p.file, Line: tok.Line, Column: tok.Column}, format, args...)
}

// Parse consumes the whole token stream and returns its Items.
func (p *Parser) Parse() ([]Item, error) {
	var items []Item
	for {
		for p.peek().Kind == asmlexer.Newline {
			p.advance()
		}
		if p.peek().Kind == asmlexer.EOF {
			return items, nil
		}
		item, err := p.parseLine()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.peek().Kind != asmlexer.EOF && p.peek().Kind != asmlexer.Newline {
			return nil, p.errAt(p.peek(), "expected end of line, found %s %q", p.peek().Kind, p.peek().Text)
		}
	}
}

func (p *Parser) parseLine() (Item, error) {
	tok := p.peek()
	switch tok.Kind {
	case asmlexer.Directive:
		p.advance()
		if tok.Text != "data" && tok.Text != "text" {
			return Item{}, p.errAt(tok, "unknown section directive %q", tok.Text)
		}
		return Item{Kind: SectionDirective, Section: tok.Text, Line: tok.Line, Column: tok.Column}, nil
	case asmlexer.Label:
		if p.peekAt(1).Kind != asmlexer.Colon {
			return Item{}, p.errAt(tok, "expected ':' after local label %q", tok.Text)
		}
		p.advance()
		p.advance()
		return Item{Kind: LabelDef, Label: tok.Text, Line: tok.Line, Column: tok.Column}, nil
	case asmlexer.Ident:
		if p.peekAt(1).Kind == asmlexer.Colon {
			p.advance()
			p.advance()
			return Item{Kind: LabelDef, Label: tok.Text, Line: tok.Line, Column: tok.Column}, nil
		}
		return p.parseStmt()
	default:
		return Item{}, p.errAt(tok, "expected instruction, label or directive, found %s", tok.Kind)
	}
}

func (p *Parser) parseStmt() (Item, error) {
	mnem := p.advance()
	item := Item{Kind: Stmt, Mnemonic: mnem.Text, Line: mnem.Line, Column: mnem.Column}
	if p.peek().Kind == asmlexer.Newline || p.peek().Kind == asmlexer.EOF {
		return item, nil
	}
	for {
		op, err := p.parseOperand()
		if err != nil {
			return Item{}, err
		}
		item.Operands = append(item.Operands, op)
		if p.peek().Kind == asmlexer.Comma {
			p.advance()
			continue
		}
		// The first operand may be followed by plain whitespace instead of
		// a comma, as in "local i32 x" or "define SIZE 16".
		if k := p.peek().Kind; len(item.Operands) == 1 &&
			(k == asmlexer.Ident || k == asmlexer.Number || k == asmlexer.String || k == asmlexer.Label) {
			continue
		}
		break
	}
	return item, nil
}

func (p *Parser) parseOperand() (Operand, error) {
	tok := p.peek()
	switch tok.Kind {
	case asmlexer.Ident:
		p.advance()
		if tok.Text == "_" {
			return Operand{Kind: OpUnderscore, Text: tok.Text, Line: tok.Line, Column: tok.Column}, nil
		}
		return Operand{Kind: OpIdent, Text: tok.Text, Line: tok.Line, Column: tok.Column}, nil
	case asmlexer.Number:
		p.advance()
		return Operand{Kind: OpNumber, Text: tok.Text, Line: tok.Line, Column: tok.Column}, nil
	case asmlexer.String:
		p.advance()
		return Operand{Kind: OpString, Text: tok.Text, Line: tok.Line, Column: tok.Column}, nil
	case asmlexer.Label:
		p.advance()
		return Operand{Kind: OpLabel, Text: tok.Text, Line: tok.Line, Column: tok.Column}, nil
	default:
		return Operand{}, p.errAt(tok, "expected operand, found %s", tok.Kind)
	}
}
