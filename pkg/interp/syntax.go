package interp

// syntax.go: a small reader for discriminator and query text.
//
// Clauses:   f(x,y) = f(y,x) | -r(x,0).
// Formulas:  all x exists y (x * y = e & -r(x,y)).
//
// Function application is prefix, with infix + (lowest), then * / \ ^ @,
// and postfix ' (e.g. x'). In clauses, names starting with u..z are
// variables. In formulas only quantified names are variables. A quantifier
// binds one variable and scopes over the next unary formula, so bodies
// with connectives need parentheses. Statements end with '.', and '%'
// starts a comment that runs to the end of the line.

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrSyntax reports malformed clause or formula text.
var ErrSyntax = errors.New("syntax error")

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokNum
	tokPunct
)

type token struct {
	kind tokKind
	text string
	pos  int
}

var multiPunct = []string{"<->", "->", "!="}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := rune(src[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '%':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentPart(rune(src[j])) {
				j++
			}
			toks = append(toks, token{tokIdent, src[i:j], i})
			i = j
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(src) && src[j] >= '0' && src[j] <= '9' {
				j++
			}
			toks = append(toks, token{tokNum, src[i:j], i})
			i = j
		default:
			matched := false
			for _, p := range multiPunct {
				if strings.HasPrefix(src[i:], p) {
					toks = append(toks, token{tokPunct, p, i})
					i += len(p)
					matched = true
					break
				}
			}
			if matched {
				continue
			}
			if !strings.ContainsRune("(),=|&-*+/\\^@'.", c) {
				return nil, fmt.Errorf("%w at offset %d: unexpected character %q", ErrSyntax, i, c)
			}
			toks = append(toks, token{tokPunct, string(c), i})
			i++
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

func isIdentStart(c rune) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c rune) bool { return isIdentStart(c) || (c >= '0' && c <= '9') }

// isClauseVariable follows the usual convention: u, v, w, x, y, z and
// names starting with them are variables in clauses.
func isClauseVariable(name string) bool {
	return name[0] >= 'u' && name[0] <= 'z'
}

type parser struct {
	toks []token
	pos  int

	clauseMode bool
	slots      map[string]int
	bound      map[string]int
}

func newParser(src string, clauseMode bool) (*parser, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	return &parser{toks: toks, clauseMode: clauseMode, slots: map[string]int{}, bound: map[string]int{}}, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }
func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isPunct(s string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == s
}

func (p *parser) accept(s string) bool {
	if p.isPunct(s) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(s string) error {
	if !p.accept(s) {
		return p.errorf("expected %q", s)
	}
	return nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	t := p.peek()
	found := t.text
	if t.kind == tokEOF {
		found = "end of input"
	}
	return fmt.Errorf("%w at offset %d near %q: %s", ErrSyntax, t.pos, found, fmt.Sprintf(format, args...))
}

func (p *parser) slot(name string) (Var, error) {
	s, ok := p.slots[name]
	if !ok {
		s = len(p.slots)
		if s >= MaxVars {
			return Var{}, fmt.Errorf("%w: more than %d", ErrTooManyVariables, MaxVars)
		}
		p.slots[name] = s
	}
	return Var{Slot: s, Name: name}, nil
}

func (p *parser) parseTerm() (Term, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.isPunct("+") {
		op := p.next().text
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = Apply(op, left, right)
	}
	return left, nil
}

func (p *parser) parseProduct() (Term, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for p.isPunct("*") || p.isPunct("/") || p.isPunct("\\") || p.isPunct("^") || p.isPunct("@") {
		op := p.next().text
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		left = Apply(op, left, right)
	}
	return left, nil
}

func (p *parser) parsePostfix() (Term, error) {
	t, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.accept("'") {
		t = Apply("'", t)
	}
	return t, nil
}

func (p *parser) parsePrimary() (Term, error) {
	tok := p.peek()
	switch tok.kind {
	case tokNum:
		p.next()
		return Const(tok.text), nil
	case tokIdent:
		p.next()
		if p.accept("(") {
			var args []Term
			for {
				a, err := p.parseTerm()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if p.accept(")") {
					break
				}
				if err := p.expect(","); err != nil {
					return nil, err
				}
			}
			return Apply(tok.text, args...), nil
		}
		if p.isVariable(tok.text) {
			return p.slot(tok.text)
		}
		return Const(tok.text), nil
	case tokPunct:
		if tok.text == "(" {
			p.next()
			t, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return t, nil
		}
	}
	return nil, p.errorf("expected a term")
}

func (p *parser) isVariable(name string) bool {
	if p.clauseMode {
		return isClauseVariable(name)
	}
	return p.bound[name] > 0
}

// parseAtomic reads "t1 = t2", "t1 != t2" or a relation atom. The bool is
// false for a negated equality.
func (p *parser) parseAtomic() (Atom, bool, error) {
	t, err := p.parseTerm()
	if err != nil {
		return Atom{}, false, err
	}
	if p.accept("=") {
		r, err := p.parseTerm()
		return Eq(t, r), true, err
	}
	if p.accept("!=") {
		r, err := p.parseTerm()
		return Eq(t, r), false, err
	}
	app, ok := t.(*App)
	if !ok {
		return Atom{}, false, p.errorf("variable %s used as an atom", t)
	}
	return Atom{Pred: app.Name, Args: app.Args}, true, nil
}

func (p *parser) parseLiteral() (Literal, error) {
	neg := p.accept("-")
	a, pos, err := p.parseAtomic()
	if err != nil {
		return Literal{}, err
	}
	return Literal{Positive: pos != neg, Atom: a}, nil
}

func (p *parser) parseClause() (Clause, error) {
	var c Clause
	for {
		l, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		c = append(c, l)
		if !p.accept("|") {
			return c, nil
		}
	}
}

func (p *parser) parseFormula() (Formula, error) {
	l, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	if p.accept("<->") {
		r, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		return Iff{L: l, R: r}, nil
	}
	return l, nil
}

func (p *parser) parseImplies() (Formula, error) {
	l, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.accept("->") {
		r, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		return Implies{L: l, R: r}, nil
	}
	return l, nil
}

func (p *parser) parseOr() (Formula, error) {
	f, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	args := []Formula{f}
	for p.accept("|") {
		g, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		args = append(args, g)
	}
	if len(args) == 1 {
		return f, nil
	}
	return Or{Args: args}, nil
}

func (p *parser) parseAnd() (Formula, error) {
	f, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	args := []Formula{f}
	for p.accept("&") {
		g, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		args = append(args, g)
	}
	if len(args) == 1 {
		return f, nil
	}
	return And{Args: args}, nil
}

func (p *parser) parseUnary() (Formula, error) {
	if p.accept("-") {
		f, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{F: f}, nil
	}
	if t := p.peek(); t.kind == tokIdent && (t.text == "all" || t.text == "exists") {
		if nt := p.toks[p.pos+1]; nt.kind == tokIdent {
			return p.parseQuant()
		}
	}
	if p.isPunct("(") {
		// Either a parenthesized formula or a term such as (x * y) = z.
		save := p.pos
		if a, pos, err := p.parseAtomic(); err == nil && a.IsEquality() {
			return signed(a, pos), nil
		}
		p.pos = save
		p.next()
		f, err := p.parseFormula()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return f, nil
	}
	a, pos, err := p.parseAtomic()
	if err != nil {
		return nil, err
	}
	return signed(a, pos), nil
}

func signed(a Atom, positive bool) Formula {
	if positive {
		return AtomFormula{Atom: a}
	}
	return Not{F: AtomFormula{Atom: a}}
}

func (p *parser) parseQuant() (Formula, error) {
	q := Forall
	if p.next().text == "exists" {
		q = Exists
	}
	name := p.next().text
	v, err := p.slot(name)
	if err != nil {
		return nil, err
	}
	p.bound[name]++
	body, err := p.parseUnary()
	p.bound[name]--
	if err != nil {
		return nil, err
	}
	return Quant{Q: q, Var: v, Body: body}, nil
}

// statements splits src at top-level '.' terminators and parses each
// statement with fn. Variable numbering restarts for every statement.
func statements[T any](src string, clauseMode bool, fn func(*parser) (T, error)) ([]T, error) {
	p, err := newParser(src, clauseMode)
	if err != nil {
		return nil, err
	}
	var out []T
	for p.peek().kind != tokEOF {
		p.slots = map[string]int{}
		p.bound = map[string]int{}
		x, err := fn(p)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
		if !p.accept(".") && p.peek().kind != tokEOF {
			return nil, p.errorf("expected '.' after statement")
		}
	}
	return out, nil
}

// ParseClause reads a single clause. A trailing '.' is optional.
func ParseClause(src string) (Clause, error) {
	cs, err := ParseClauses(src)
	if err != nil {
		return nil, err
	}
	if len(cs) != 1 {
		return nil, fmt.Errorf("%w: expected one clause, found %d", ErrSyntax, len(cs))
	}
	return cs[0], nil
}

// ParseClauses reads a sequence of '.'-terminated clauses.
func ParseClauses(src string) ([]Clause, error) {
	return statements(src, true, (*parser).parseClause)
}

// ParseFormula reads a single closed formula. A trailing '.' is optional.
func ParseFormula(src string) (Formula, error) {
	fs, err := ParseFormulas(src)
	if err != nil {
		return nil, err
	}
	if len(fs) != 1 {
		return nil, fmt.Errorf("%w: expected one formula, found %d", ErrSyntax, len(fs))
	}
	return fs[0], nil
}

// ParseFormulas reads a sequence of '.'-terminated formulas.
func ParseFormulas(src string) ([]Formula, error) {
	return statements(src, false, (*parser).parseFormula)
}
