package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// z3 is addition modulo 3 with identity e, a successor s and the strict
// order lt.
func z3(t *testing.T) *Interpretation {
	t.Helper()
	var add []int
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			add = append(add, (i+j)%3)
		}
	}
	return build(t, 3,
		fnOp("*", 2, add...),
		fnOp("e", 0, 0),
		fnOp("s", 1, 1, 2, 0),
		relOp("lt", 2, 0, 1, 1, 0, 0, 1, 0, 0, 0),
	)
}

func TestEvalTerm(t *testing.T) {
	in := z3(t)
	a := NewAssignment()
	a[0] = 2

	tests := []struct {
		term Term
		want int
	}{
		{Const("e"), 0},
		{Const("2"), 2},
		{Var{Slot: 0}, 2},
		{Apply("s", Var{Slot: 0}), 0},
		{Apply("*", Apply("s", Const("e")), Var{Slot: 0}), 0},
	}
	for _, tt := range tests {
		got, err := in.EvalTerm(tt.term, a)
		require.NoError(t, err, tt.term.String())
		assert.Equal(t, tt.want, got, tt.term.String())
	}

	_, err := in.EvalTerm(Const("3"), a)
	assert.ErrorIs(t, err, ErrConstantRange)
	_, err = in.EvalTerm(Apply("g", Const("e")), a)
	assert.ErrorIs(t, err, ErrUnknownSymbol)
	_, err = in.EvalTerm(Var{Slot: 1}, a)
	assert.ErrorIs(t, err, ErrFreeVariable)
	// A relation symbol cannot be used as a function.
	_, err = in.EvalTerm(Apply("lt", Const("0"), Const("1")), a)
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestEvalClause(t *testing.T) {
	in := z3(t)

	comm := mustClause(t, "x * y = y * x")
	ok, err := in.EvalClauseUniversally(comm)
	require.NoError(t, err)
	assert.True(t, ok)

	inverse := mustClause(t, "x * y = e")
	n, err := in.TrueInstances(inverse)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = in.FalseInstances(inverse)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	ok, err = in.EvalClauseUniversally(inverse)
	require.NoError(t, err)
	assert.False(t, ok)

	// lt is total for the strict order 0 < 1 < 2.
	total := mustClause(t, "lt(x,y) | lt(y,x) | x = y")
	ok, err = in.EvalClauseUniversally(total)
	require.NoError(t, err)
	assert.True(t, ok)

	irreflexive := mustClause(t, "-lt(x,x)")
	ok, err = in.EvalClauseUniversally(irreflexive)
	require.NoError(t, err)
	assert.True(t, ok)

	ground := mustClause(t, "s(e) != e")
	ok, err = in.EvalClauseUniversally(ground)
	require.NoError(t, err)
	assert.True(t, ok)

	empty := Clause{}
	ok, err = in.EvalClauseUniversally(empty)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = in.EvalClauseUniversally(mustClause(t, "q(x)"))
	assert.ErrorIs(t, err, ErrUnknownSymbol)

	wide := Clause{Pos(Eq(Var{Slot: MaxVars}, Var{Slot: MaxVars}))}
	_, err = in.TrueInstances(wide)
	assert.ErrorIs(t, err, ErrTooManyVariables)

	negative := Clause{Pos(Eq(Var{Slot: -1}, Var{Slot: 0}))}
	_, err = in.TrueInstances(negative)
	assert.ErrorIs(t, err, ErrTooManyVariables)
	_, err = in.FalseInstances(negative)
	assert.ErrorIs(t, err, ErrTooManyVariables)
	_, err = in.EvalClauseUniversally(negative)
	assert.ErrorIs(t, err, ErrTooManyVariables)
	_, err = ComputeProfile(in, []Clause{negative})
	assert.ErrorIs(t, err, ErrTooManyVariables)
}

func TestEvalFormula(t *testing.T) {
	in := z3(t)
	tests := []struct {
		src  string
		want bool
	}{
		{"all x (x * e = x)", true},
		{"all x exists y (x * y = e)", true},
		{"exists x (x * x = 1 & -(x = 0))", true},
		{"exists x (s(x) = x)", false},
		{"all x all y (x * y = y * x)", true},
		{"all x (lt(x, s(x)))", false},
		{"all x (x = 0 | x = 1 | x = 2)", true},
		{"all x (lt(x,1) -> x = 0)", true},
		{"all x (s(s(s(x))) = x <-> x = x)", true},
		{"exists x (x = 2 & exists x (x = 0) & x = 2)", true},
		{"all x -(lt(x,x))", true},
		{"lt(0,1) & -lt(1,0)", true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			f, err := ParseFormula(tt.src)
			require.NoError(t, err)
			got, err := in.EvalFormula(f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalFormulaErrors(t *testing.T) {
	in := z3(t)

	free := AtomFormula{Atom: Eq(Var{Slot: 0, Name: "x"}, Const("0"))}
	_, err := in.EvalFormula(free)
	assert.ErrorIs(t, err, ErrFreeVariable)

	// Outside a quantifier x is just an unknown constant.
	f, err := ParseFormula("x = 0")
	require.NoError(t, err)
	_, err = in.EvalFormula(f)
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestClauseFormula(t *testing.T) {
	in := z3(t)
	c := mustClause(t, "x * y = y * x")
	f := ClauseFormula(c)
	ok, err := in.EvalFormula(f)
	require.NoError(t, err)
	assert.True(t, ok)

	c = mustClause(t, "x * y = e")
	ok, err = in.EvalFormula(ClauseFormula(c))
	require.NoError(t, err)
	assert.False(t, ok)
}
