// Package sexpr reads the s-expression files KiCad writes (netlists,
// schematics, boards) into a small tree of atoms and lists.
package sexpr

import (
	"io"
	"strings"
)

// Node is an s-expression: either an Atom or a *List.
type Node interface {
	// IsAtom returns true for atoms
	IsAtom() bool

	// String returns the s-expression text
	String() string
}

// Atom is a symbol, number or quoted string. Quotes are removed by the reader.
type Atom string

func (a Atom) IsAtom() bool { return true }

func (a Atom) String() string { return string(a) }

// List is a parenthesized sequence of nodes.
type List struct {
	Items []Node
}

func (l *List) IsAtom() bool { return false }

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, n := range l.Items {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(n.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Len returns the number of items in the list.
func (l *List) Len() int {
	return len(l.Items)
}

// Key returns the leading atom of the list, or "" when the list is empty or
// starts with a sub-list.
func (l *List) Key() string {
	if len(l.Items) == 0 {
		return ""
	}
	if a, ok := l.Items[0].(Atom); ok {
		return string(a)
	}
	return ""
}

// Find returns the first child list whose key is key.
// Example: Find("value") on (comp (ref R1) (value 10k)) returns (value 10k).
func (l *List) Find(key string) (*List, bool) {
	for _, n := range l.Items {
		if sub, ok := n.(*List); ok && sub.Key() == key {
			return sub, true
		}
	}
	return nil, false
}

// FindAll returns every child list whose key is key.
func (l *List) FindAll(key string) []*List {
	var out []*List
	for _, n := range l.Items {
		if sub, ok := n.(*List); ok && sub.Key() == key {
			out = append(out, sub)
		}
	}
	return out
}

// Text returns the atoms after the key joined by single spaces.
// Example: Text() on (description "Chip resistor") returns "Chip resistor".
func (l *List) Text() string {
	if len(l.Items) <= 1 {
		return ""
	}
	parts := make([]string, 0, len(l.Items)-1)
	for _, n := range l.Items[1:] {
		if a, ok := n.(Atom); ok {
			parts = append(parts, string(a))
		}
	}
	return strings.Join(parts, " ")
}

// Lookup follows a path of keys and returns the text of the final list.
// Example: Lookup("libsource", "part") on a comp node returns the part name.
func (l *List) Lookup(path ...string) (string, bool) {
	cur := l
	for _, key := range path {
		next, ok := cur.Find(key)
		if !ok {
			return "", false
		}
		cur = next
	}
	return cur.Text(), true
}

// Parse reads every top-level s-expression from r.
func Parse(r io.Reader) ([]Node, error) {
	return newParser(r).parseAll()
}

// ParseString parses s-expressions from a string.
func ParseString(s string) ([]Node, error) {
	return Parse(strings.NewReader(s))
}
