package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	in := build(t, 3,
		fnOp("s", 1, 1, 2, 0),
		fnOp("e", 0, 0),
		relOp("r", 2, 0, 1, 0, 0, 0, 1, 1, 0, 0),
	)

	assert.Equal(t, 3, in.Size())
	assert.False(t, in.Incomplete())
	assert.False(t, in.Normalized())
	assert.Equal(t, []Symbol{{"e", 0}, {"r", 2}, {"s", 1}}, in.Symbols())

	s, ok := in.Table(Symbol{Name: "s", Arity: 1})
	require.True(t, ok)
	assert.Equal(t, Function, s.Kind())
	assert.Equal(t, []int{1, 2, 0}, s.Values())

	// e contributes one occurrence of 0; relations contribute nothing.
	assert.Equal(t, []int{2, 1, 1}, in.Occurrences())
	assert.Nil(t, in.Profile())
	assert.Nil(t, in.Blocks())
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		desc Description
		want error
	}{
		{
			name: "empty domain",
			desc: Description{Size: 0},
			want: ErrDomainSize,
		},
		{
			name: "huge domain with only constants",
			desc: Description{Size: 1 << 50, Operations: []OperationDesc{fnOp("c", 0, 0)}},
			want: ErrDomainSize,
		},
		{
			name: "short table",
			desc: Description{Size: 2, Operations: []OperationDesc{fnOp("f", 1, 0)}},
			want: ErrTableLength,
		},
		{
			name: "value outside domain",
			desc: Description{Size: 2, Operations: []OperationDesc{fnOp("f", 1, 0, 2)}},
			want: ErrValueRange,
		},
		{
			name: "undefined without AllowIncomplete",
			desc: Description{Size: 2, Operations: []OperationDesc{fnOp("f", 1, 0, Undefined)}},
			want: ErrValueRange,
		},
		{
			name: "relation value",
			desc: Description{Size: 2, Operations: []OperationDesc{relOp("p", 1, 0, 2)}},
			want: ErrRelationValue,
		},
		{
			name: "duplicate symbol",
			desc: Description{Size: 1, Operations: []OperationDesc{fnOp("c", 0, 0), fnOp("c", 0, 0)}},
			want: ErrDuplicateSymbol,
		},
		{
			name: "unknown kind",
			desc: Description{Size: 1, Operations: []OperationDesc{{Name: "c", Kind: "predicate", Values: vals(0)}}},
			want: ErrInvalidDescription,
		},
		{
			name: "missing name",
			desc: Description{Size: 1, Operations: []OperationDesc{{Kind: "function", Values: vals(0)}}},
			want: ErrInvalidDescription,
		},
		{
			name: "negative arity",
			desc: Description{Size: 1, Operations: []OperationDesc{{Name: "c", Kind: "function", Arity: -1}}},
			want: ErrInvalidDescription,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.desc)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCompileIncomplete(t *testing.T) {
	desc := Description{Size: 3, Operations: []OperationDesc{fnOp("f", 1, 1, Undefined, 1)}}
	in, err := Compile(desc, AllowIncomplete())
	require.NoError(t, err)
	assert.True(t, in.Incomplete())
	assert.Equal(t, []int{0, 2, 0}, in.Occurrences())

	_, err = in.EvalTerm(Apply("f", Const("1")), NewAssignment())
	assert.ErrorIs(t, err, ErrUndefinedValue)
}

func TestDescribeRoundTrip(t *testing.T) {
	in := build(t, 2,
		fnOp("f", 2, 0, 1, 1, 0),
		relOp("p", 1, 1, 0),
	)
	again, err := Compile(in.WithLabel("copy").Describe())
	require.NoError(t, err)
	assert.True(t, Equal(in, again))
	assert.Equal(t, "copy", again.Label())
	assert.Equal(t, "", in.Label())
}

func TestCompare(t *testing.T) {
	a := build(t, 2, fnOp("f", 1, 0, 1))
	b := build(t, 2, fnOp("f", 1, 1, 0))
	c := build(t, 3, fnOp("f", 1, 0, 1, 2))
	d := build(t, 2, fnOp("g", 1, 0, 1))

	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, 1, Compare(b, a))
	assert.Equal(t, -1, Compare(a, c))
	assert.Equal(t, -1, Compare(a, d))
	assert.True(t, Equal(a, a))
	assert.False(t, Equal(a, b))
}

func TestRestrictAndConstants(t *testing.T) {
	in := build(t, 2,
		fnOp("e", 0, 1),
		fnOp("f", 1, 1, 1),
		fnOp("f", 2, 0, 0, 0, 0),
		relOp("p", 1, 0, 1),
	)

	onlyF := in.Restrict([]Symbol{{Name: "f", Arity: -1}})
	assert.Equal(t, []Symbol{{"f", 1}, {"f", 2}}, onlyF.Symbols())
	assert.Equal(t, []int{4, 2}, onlyF.Occurrences())

	unary := in.Restrict([]Symbol{{Name: "f", Arity: 1}, {Name: "missing", Arity: 0}})
	assert.Equal(t, []Symbol{{"f", 1}}, unary.Symbols())

	noConst := in.RemoveConstants()
	assert.Equal(t, []Symbol{{"f", 1}, {"f", 2}, {"p", 1}}, noConst.Symbols())
	assert.Equal(t, []int{4, 2}, noConst.Occurrences())
	assert.Equal(t, []int{4, 3}, in.Occurrences(), "source must not change")

	withC, err := noConst.WithConstant("c", 0)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 2}, withC.Occurrences())

	_, err = withC.WithConstant("c", 1)
	assert.ErrorIs(t, err, ErrDuplicateSymbol)
	_, err = noConst.WithConstant("d", 2)
	assert.ErrorIs(t, err, ErrValueRange)
}

func TestParseSymbol(t *testing.T) {
	s, err := ParseSymbol("f/2")
	require.NoError(t, err)
	assert.Equal(t, Symbol{Name: "f", Arity: 2}, s)

	s, err = ParseSymbol("f")
	require.NoError(t, err)
	assert.Equal(t, -1, s.Arity)

	_, err = ParseSymbol("f/x")
	assert.Error(t, err)
}

func TestTableIndexing(t *testing.T) {
	n, err := IntPower(3, 3)
	require.NoError(t, err)
	assert.Equal(t, 27, n)

	_, err = IntPower(100, 10)
	assert.Error(t, err)

	idx := FlatIndex(3, 2, 0, 1)
	assert.Equal(t, 19, idx)
	assert.Equal(t, []int{2, 0, 1}, TupleOf(3, 3, idx))
}
