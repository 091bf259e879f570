package interp

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func vals(xs ...int) Values {
	out := make(Values, len(xs))
	for i, x := range xs {
		out[i] = Value(x)
	}
	return out
}

func fnOp(name string, arity int, xs ...int) OperationDesc {
	return OperationDesc{Name: name, Kind: "function", Arity: arity, Values: vals(xs...)}
}

func relOp(name string, arity int, xs ...int) OperationDesc {
	return OperationDesc{Name: name, Kind: "relation", Arity: arity, Values: vals(xs...)}
}

func build(t testing.TB, size int, ops ...OperationDesc) *Interpretation {
	t.Helper()
	in, err := Compile(Description{Size: size, Operations: ops})
	require.NoError(t, err)
	return in
}

func normalize(t testing.TB, in *Interpretation, discs ...Clause) *Interpretation {
	t.Helper()
	out, err := Normalize(testCtx, in, discs)
	require.NoError(t, err)
	return out
}

func canonical(t testing.TB, in *Interpretation, discs ...Clause) *Interpretation {
	t.Helper()
	c, _, err := Canonicalize(testCtx, normalize(t, in, discs...))
	require.NoError(t, err)
	return c
}

func mustClause(t testing.TB, src string) Clause {
	t.Helper()
	c, err := ParseClause(src)
	require.NoError(t, err)
	return c
}

// allTables enumerates every table of the given length over values
// [0,base).
func allTables(length, base int) [][]int {
	var out [][]int
	cur := make([]int, length)
	var rec func(i int)
	rec = func(i int) {
		if i == length {
			out = append(out, append([]int(nil), cur...))
			return
		}
		for v := 0; v < base; v++ {
			cur[i] = v
			rec(i + 1)
		}
	}
	rec(0)
	return out
}

// randomInterp builds a structure with a constant, a unary and a binary
// function, a binary and a ternary relation.
func randomInterp(t testing.TB, rng *rand.Rand, n int) *Interpretation {
	t.Helper()
	table := func(length, base int) []int {
		xs := make([]int, length)
		for i := range xs {
			xs[i] = rng.Intn(base)
		}
		return xs
	}
	return build(t, n,
		fnOp("e", 0, table(1, n)...),
		fnOp("g", 1, table(n, n)...),
		fnOp("*", 2, table(n*n, n)...),
		relOp("r", 2, table(n*n, 2)...),
		relOp("t", 3, table(n*n*n, 2)...),
	)
}

func randomPerm(rng *rand.Rand, n int) Perm {
	return Perm(rng.Perm(n))
}

var testCtx = context.Background()
