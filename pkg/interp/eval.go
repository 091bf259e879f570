package interp

// eval.go: ground evaluation of terms, atoms, clauses and formulas.
//
// Clause-level counting enumerates every assignment of the clause's
// variables (size^v of them). It is deliberately simple and unmemoized.

import (
	"fmt"
	"strconv"
)

// Unbound marks an empty assignment slot.
const Unbound = -1

// Assignment maps variable slots to domain elements.
type Assignment []int

// NewAssignment returns an assignment with every slot unbound.
func NewAssignment() Assignment {
	a := make(Assignment, MaxVars)
	for i := range a {
		a[i] = Unbound
	}
	return a
}

// naturalConstant returns the element denoted by a numeral constant, or
// -1 when name is not a numeral.
func naturalConstant(name string) (int, bool) {
	if name == "" {
		return -1, false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return -1, false
		}
	}
	v, err := strconv.Atoi(name)
	if err != nil {
		// Too many digits for an int; certainly outside any domain.
		return maxTableLen, true
	}
	return v, true
}

// EvalTerm evaluates t under the assignment a.
func (in *Interpretation) EvalTerm(t Term, a Assignment) (int, error) {
	switch x := t.(type) {
	case Var:
		if x.Slot < 0 || x.Slot >= len(a) || a[x.Slot] == Unbound {
			return 0, fmt.Errorf("%w: %s", ErrFreeVariable, x)
		}
		return a[x.Slot], nil
	case *App:
		if len(x.Args) == 0 {
			if v, ok := naturalConstant(x.Name); ok {
				if v >= in.size {
					return 0, fmt.Errorf("%w: %s, size %d", ErrConstantRange, x.Name, in.size)
				}
				return v, nil
			}
		}
		sym := Symbol{Name: x.Name, Arity: len(x.Args)}
		tab, ok := in.tables[sym]
		if !ok || tab.kind != Function {
			return 0, fmt.Errorf("%w: function %s", ErrUnknownSymbol, sym)
		}
		idx, err := in.argIndex(x.Args, a)
		if err != nil {
			return 0, err
		}
		v := tab.values[idx]
		if v == Undefined {
			return 0, fmt.Errorf("%w: %s", ErrUndefinedValue, x)
		}
		return v, nil
	}
	return 0, fmt.Errorf("unsupported term %T", t)
}

// EvalAtom evaluates an atom. Equality compares the two evaluated terms;
// any other predicate is a relation table lookup.
func (in *Interpretation) EvalAtom(at Atom, a Assignment) (bool, error) {
	if at.IsEquality() {
		l, err := in.EvalTerm(at.Args[0], a)
		if err != nil {
			return false, err
		}
		r, err := in.EvalTerm(at.Args[1], a)
		if err != nil {
			return false, err
		}
		return l == r, nil
	}
	sym := Symbol{Name: at.Pred, Arity: len(at.Args)}
	tab, ok := in.tables[sym]
	if !ok || tab.kind != Relation {
		return false, fmt.Errorf("%w: relation %s", ErrUnknownSymbol, sym)
	}
	idx, err := in.argIndex(at.Args, a)
	if err != nil {
		return false, err
	}
	return tab.values[idx] == 1, nil
}

// argIndex evaluates args and returns their flat table index.
func (in *Interpretation) argIndex(args []Term, a Assignment) (int, error) {
	var buf [4]int
	vals := buf[:0]
	for _, arg := range args {
		v, err := in.EvalTerm(arg, a)
		if err != nil {
			return 0, err
		}
		vals = append(vals, v)
	}
	return FlatIndex(in.size, vals...), nil
}

// EvalClause reports whether some literal of c is true under a.
func (in *Interpretation) EvalClause(c Clause, a Assignment) (bool, error) {
	for _, lit := range c {
		v, err := in.EvalAtom(lit.Atom, a)
		if err != nil {
			return false, err
		}
		if v == lit.Positive {
			return true, nil
		}
	}
	return false, nil
}

func clauseAssignment(c Clause) ([]int, Assignment, error) {
	vars := c.Vars()
	if len(vars) > 0 && vars[0] < 0 {
		return nil, nil, fmt.Errorf("%w: negative slot %d", ErrTooManyVariables, vars[0])
	}
	if len(vars) > 0 && vars[len(vars)-1] >= MaxVars {
		return nil, nil, fmt.Errorf("%w: slot %d, limit %d", ErrTooManyVariables, vars[len(vars)-1], MaxVars)
	}
	return vars, NewAssignment(), nil
}

// EvalClauseUniversally reports whether c is true under every assignment
// of its variables.
func (in *Interpretation) EvalClauseUniversally(c Clause) (bool, error) {
	vars, a, err := clauseAssignment(c)
	if err != nil {
		return false, err
	}
	return in.allTrue(c, vars, a)
}

func (in *Interpretation) allTrue(c Clause, vars []int, a Assignment) (bool, error) {
	if len(vars) == 0 {
		return in.EvalClause(c, a)
	}
	slot := vars[0]
	for e := 0; e < in.size; e++ {
		a[slot] = e
		ok, err := in.allTrue(c, vars[1:], a)
		if err != nil || !ok {
			a[slot] = Unbound
			return false, err
		}
	}
	a[slot] = Unbound
	return true, nil
}

// TrueInstances counts the assignments of c's variables that make it true.
func (in *Interpretation) TrueInstances(c Clause) (int, error) {
	vars, a, err := clauseAssignment(c)
	if err != nil {
		return 0, err
	}
	return in.countInstances(c, vars, a, true)
}

// FalseInstances counts the assignments of c's variables that make it
// false.
func (in *Interpretation) FalseInstances(c Clause) (int, error) {
	vars, a, err := clauseAssignment(c)
	if err != nil {
		return 0, err
	}
	return in.countInstances(c, vars, a, false)
}

// countInstances enumerates the free slots in vars; slots already bound in
// a stay fixed.
func (in *Interpretation) countInstances(c Clause, vars []int, a Assignment, want bool) (int, error) {
	if len(vars) == 0 {
		v, err := in.EvalClause(c, a)
		if err != nil {
			return 0, err
		}
		if v == want {
			return 1, nil
		}
		return 0, nil
	}
	slot := vars[0]
	total := 0
	for e := 0; e < in.size; e++ {
		a[slot] = e
		k, err := in.countInstances(c, vars[1:], a, want)
		if err != nil {
			a[slot] = Unbound
			return 0, err
		}
		total += k
	}
	a[slot] = Unbound
	return total, nil
}

// EvalFormula evaluates a closed formula.
func (in *Interpretation) EvalFormula(f Formula) (bool, error) {
	return in.evalFormula(f, NewAssignment())
}

func (in *Interpretation) evalFormula(f Formula, a Assignment) (bool, error) {
	switch x := f.(type) {
	case AtomFormula:
		return in.EvalAtom(x.Atom, a)
	case Not:
		v, err := in.evalFormula(x.F, a)
		return !v, err
	case And:
		for _, g := range x.Args {
			v, err := in.evalFormula(g, a)
			if err != nil || !v {
				return false, err
			}
		}
		return true, nil
	case Or:
		for _, g := range x.Args {
			v, err := in.evalFormula(g, a)
			if err != nil || v {
				return v, err
			}
		}
		return false, nil
	case Implies:
		l, err := in.evalFormula(x.L, a)
		if err != nil || !l {
			return true, err
		}
		return in.evalFormula(x.R, a)
	case Iff:
		l, err := in.evalFormula(x.L, a)
		if err != nil {
			return false, err
		}
		r, err := in.evalFormula(x.R, a)
		if err != nil {
			return false, err
		}
		return l == r, nil
	case Quant:
		return in.evalQuant(x, a)
	}
	return false, fmt.Errorf("unsupported formula %T", f)
}

// evalQuant binds the quantified slot one element at a time. The previous
// binding is restored on exit so nested quantifiers may reuse a slot.
func (in *Interpretation) evalQuant(q Quant, a Assignment) (bool, error) {
	slot := q.Var.Slot
	if slot < 0 || slot >= len(a) {
		return false, fmt.Errorf("%w: slot %d, limit %d", ErrTooManyVariables, slot, MaxVars)
	}
	saved := a[slot]
	defer func() { a[slot] = saved }()

	for e := 0; e < in.size; e++ {
		a[slot] = e
		v, err := in.evalFormula(q.Body, a)
		if err != nil {
			return false, err
		}
		if q.Q == Forall && !v {
			return false, nil
		}
		if q.Q == Exists && v {
			return true, nil
		}
	}
	return q.Q == Forall, nil
}
