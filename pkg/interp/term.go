package interp

// term.go: ground-or-quantified terms, atoms, clauses and formulas.
//
// Terms are small owned trees; nothing is shared or reference counted.
// Variables are addressed by slot so an assignment is a plain slice.

import (
	"sort"
	"strconv"
	"strings"
)

// MaxVars is the number of variable slots available to one clause or
// formula.
const MaxVars = 100

// EqualityPredicate is the built-in equality predicate name.
const EqualityPredicate = "="

// Term is a variable or an application of a function symbol.
type Term interface {
	String() string
	isTerm()
}

// Var is a variable occupying an assignment slot.
type Var struct {
	Slot int
	Name string
}

func (Var) isTerm() {}

// String returns the variable name, or v<slot> when unnamed.
func (v Var) String() string {
	if v.Name != "" {
		return v.Name
	}
	return "v" + strconv.Itoa(v.Slot)
}

// App applies a function symbol to arguments. A constant is an App without
// arguments; a constant spelled as a natural number denotes that element.
type App struct {
	Name string
	Args []Term
}

func (*App) isTerm() {}

// String renders the application in prefix notation.
func (a *App) String() string {
	if len(a.Args) == 0 {
		return a.Name
	}
	parts := make([]string, len(a.Args))
	for i, t := range a.Args {
		parts[i] = t.String()
	}
	return a.Name + "(" + strings.Join(parts, ",") + ")"
}

// Const builds a constant term.
func Const(name string) *App { return &App{Name: name} }

// Apply builds a function application.
func Apply(name string, args ...Term) *App { return &App{Name: name, Args: args} }

// Atom is a predicate applied to terms. The predicate "=" with two
// arguments is built-in equality.
type Atom struct {
	Pred string
	Args []Term
}

// IsEquality reports whether the atom is a built-in equality.
func (a Atom) IsEquality() bool {
	return a.Pred == EqualityPredicate && len(a.Args) == 2
}

// String renders the atom.
func (a Atom) String() string {
	if a.IsEquality() {
		return a.Args[0].String() + " = " + a.Args[1].String()
	}
	return (&App{Name: a.Pred, Args: a.Args}).String()
}

// Eq builds an equality atom.
func Eq(l, r Term) Atom { return Atom{Pred: EqualityPredicate, Args: []Term{l, r}} }

// Pred builds a relation atom.
func Pred(name string, args ...Term) Atom { return Atom{Pred: name, Args: args} }

// Literal is a signed atom.
type Literal struct {
	Positive bool
	Atom     Atom
}

// String renders the literal; negated equality prints as !=.
func (l Literal) String() string {
	if l.Positive {
		return l.Atom.String()
	}
	if l.Atom.IsEquality() {
		return l.Atom.Args[0].String() + " != " + l.Atom.Args[1].String()
	}
	return "-" + l.Atom.String()
}

// Pos and Neg build literals.
func Pos(a Atom) Literal { return Literal{Positive: true, Atom: a} }

// Neg builds a negative literal.
func Neg(a Atom) Literal { return Literal{Positive: false, Atom: a} }

// Clause is a disjunction of literals whose variables are implicitly
// universally quantified. The empty clause is false.
type Clause []Literal

// String renders the clause with " | " separators.
func (c Clause) String() string {
	if len(c) == 0 {
		return "$F"
	}
	parts := make([]string, len(c))
	for i, l := range c {
		parts[i] = l.String()
	}
	return strings.Join(parts, " | ")
}

// Vars returns the distinct variable slots of the clause in ascending
// order.
func (c Clause) Vars() []int {
	seen := make(map[int]bool)
	for _, l := range c {
		for _, t := range l.Atom.Args {
			collectVars(t, seen)
		}
	}
	return sortedKeys(seen)
}

func collectVars(t Term, seen map[int]bool) {
	switch x := t.(type) {
	case Var:
		seen[x.Slot] = true
	case *App:
		for _, a := range x.Args {
			collectVars(a, seen)
		}
	}
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Formula is a first-order formula with explicit quantifiers.
type Formula interface {
	String() string
	isFormula()
}

// AtomFormula wraps an atom.
type AtomFormula struct{ Atom Atom }

// Not negates a formula.
type Not struct{ F Formula }

// And is a conjunction; the empty conjunction is true.
type And struct{ Args []Formula }

// Or is a disjunction; the empty disjunction is false.
type Or struct{ Args []Formula }

// Implies is material implication.
type Implies struct{ L, R Formula }

// Iff is equivalence.
type Iff struct{ L, R Formula }

// Quantifier selects all or exists.
type Quantifier int

const (
	// Forall is universal quantification.
	Forall Quantifier = iota
	// Exists is existential quantification.
	Exists
)

// Quant binds one variable over a body.
type Quant struct {
	Q    Quantifier
	Var  Var
	Body Formula
}

func (AtomFormula) isFormula() {}
func (Not) isFormula()         {}
func (And) isFormula()         {}
func (Or) isFormula()          {}
func (Implies) isFormula()     {}
func (Iff) isFormula()         {}
func (Quant) isFormula()       {}

func (f AtomFormula) String() string { return f.Atom.String() }
func (f Not) String() string         { return "-(" + f.F.String() + ")" }
func (f And) String() string         { return joinFormulas(f.Args, " & ", "$T") }
func (f Or) String() string          { return joinFormulas(f.Args, " | ", "$F") }
func (f Implies) String() string     { return "(" + f.L.String() + " -> " + f.R.String() + ")" }
func (f Iff) String() string         { return "(" + f.L.String() + " <-> " + f.R.String() + ")" }

func (f Quant) String() string {
	q := "all"
	if f.Q == Exists {
		q = "exists"
	}
	return q + " " + f.Var.String() + " " + f.Body.String()
}

func joinFormulas(fs []Formula, sep, empty string) string {
	if len(fs) == 0 {
		return empty
	}
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// ClauseFormula returns the universal closure of a clause as a formula.
func ClauseFormula(c Clause) Formula {
	lits := make([]Formula, len(c))
	names := make(map[int]Var)
	for i, l := range c {
		var f Formula = AtomFormula{Atom: l.Atom}
		if !l.Positive {
			f = Not{F: f}
		}
		lits[i] = f
		for _, t := range l.Atom.Args {
			collectNamedVars(t, names)
		}
	}
	var body Formula = Or{Args: lits}
	vars := c.Vars()
	for i := len(vars) - 1; i >= 0; i-- {
		body = Quant{Q: Forall, Var: names[vars[i]], Body: body}
	}
	return body
}

func collectNamedVars(t Term, m map[int]Var) {
	switch x := t.(type) {
	case Var:
		m[x.Slot] = x
	case *App:
		for _, a := range x.Args {
			collectNamedVars(a, m)
		}
	}
}
