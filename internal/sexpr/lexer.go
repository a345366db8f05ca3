package sexpr

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenOpen
	tokenClose
	tokenAtom
)

type token struct {
	typ  tokenType
	text string
	line int
}

// lexer tokenizes s-expressions. Comments run from '#' to the end of the line.
type lexer struct {
	r    *bufio.Reader
	line int
	last rune
}

func newLexer(r io.Reader) *lexer {
	return &lexer{r: bufio.NewReader(r), line: 1}
}

func (l *lexer) next() (token, error) {
	for {
		ch, err := l.read()
		if err == io.EOF {
			return token{typ: tokenEOF, line: l.line}, nil
		}
		if err != nil {
			return token{}, err
		}

		switch {
		case unicode.IsSpace(ch):
			continue
		case ch == '#':
			if err := l.skipLine(); err != nil {
				return token{}, err
			}
			continue
		case ch == '(':
			return token{typ: tokenOpen, text: "(", line: l.line}, nil
		case ch == ')':
			return token{typ: tokenClose, text: ")", line: l.line}, nil
		case ch == '"':
			return l.quoted()
		default:
			l.unread()
			return l.symbol()
		}
	}
}

func (l *lexer) read() (rune, error) {
	ch, _, err := l.r.ReadRune()
	if err == nil && ch == '\n' {
		l.line++
	}
	l.last = ch
	return ch, err
}

func (l *lexer) unread() {
	if l.r.UnreadRune() == nil && l.last == '\n' {
		l.line--
	}
}

func (l *lexer) skipLine() error {
	for {
		ch, err := l.read()
		if err == io.EOF || ch == '\n' {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// quoted reads a string whose opening quote was consumed. Backslash escapes
// and doubled quotes are both accepted.
func (l *lexer) quoted() (token, error) {
	start := l.line
	var b strings.Builder
	for {
		ch, err := l.read()
		if err == io.EOF {
			return token{}, fmt.Errorf("line %d: unterminated string", start)
		}
		if err != nil {
			return token{}, err
		}

		switch ch {
		case '"':
			nxt, err := l.read()
			if err == nil && nxt == '"' {
				b.WriteRune('"')
				continue
			}
			if err == nil {
				l.unread()
			}
			return token{typ: tokenAtom, text: b.String(), line: start}, nil
		case '\\':
			esc, err := l.read()
			if err != nil {
				return token{}, fmt.Errorf("line %d: unterminated escape", l.line)
			}
			switch esc {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			default:
				b.WriteRune(esc)
			}
		default:
			b.WriteRune(ch)
		}
	}
}

func (l *lexer) symbol() (token, error) {
	var b strings.Builder
	for {
		ch, err := l.read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return token{}, err
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			l.unread()
			break
		}
		b.WriteRune(ch)
	}
	return token{typ: tokenAtom, text: b.String(), line: l.line}, nil
}
