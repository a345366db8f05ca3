package sexpr

import (
	"fmt"
	"io"
)

type parser struct {
	lex *lexer
}

func newParser(r io.Reader) *parser {
	return &parser{lex: newLexer(r)}
}

func (p *parser) parseAll() ([]Node, error) {
	var out []Node
	for {
		tok, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		if tok.typ == tokenEOF {
			return out, nil
		}
		n, err := p.parseNode(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
}

func (p *parser) parseNode(tok token) (Node, error) {
	switch tok.typ {
	case tokenAtom:
		return Atom(tok.text), nil
	case tokenOpen:
		return p.parseList(tok.line)
	case tokenClose:
		return nil, fmt.Errorf("line %d: unexpected ')'", tok.line)
	default:
		return nil, fmt.Errorf("line %d: unexpected end of input", tok.line)
	}
}

func (p *parser) parseList(start int) (*List, error) {
	l := &List{}
	for {
		tok, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		switch tok.typ {
		case tokenClose:
			return l, nil
		case tokenEOF:
			return nil, fmt.Errorf("line %d: unclosed list", start)
		}
		n, err := p.parseNode(tok)
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, n)
	}
}
