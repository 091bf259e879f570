package dedup

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/gofinite/pkg/canonstore"
	"github.com/gitrdm/gofinite/pkg/interp"
)

func model(t *testing.T, size int, ops ...interp.OperationDesc) *interp.Interpretation {
	t.Helper()
	in, err := interp.Compile(interp.Description{Size: size, Operations: ops})
	require.NoError(t, err)
	return in
}

func op(name, kind string, arity int, vals ...int) interp.OperationDesc {
	vs := make(interp.Values, len(vals))
	for i, v := range vals {
		vs[i] = interp.Value(v)
	}
	return interp.OperationDesc{Name: name, Kind: kind, Arity: arity, Values: vs}
}

// allUnary returns every unary function on n elements, in lexicographic
// table order.
func allUnary(t *testing.T, n int) []*interp.Interpretation {
	total := 1
	for i := 0; i < n; i++ {
		total *= n
	}
	var out []*interp.Interpretation
	for code := 0; code < total; code++ {
		vals := make([]int, n)
		c := code
		for i := n - 1; i >= 0; i-- {
			vals[i] = c % n
			c /= n
		}
		out = append(out, model(t, n, op("f", "function", 1, vals...)))
	}
	return out
}

func allBinaryRelations(t *testing.T) []*interp.Interpretation {
	var out []*interp.Interpretation
	for code := 0; code < 16; code++ {
		out = append(out, model(t, 2, op("r", "relation", 2,
			code>>3&1, code>>2&1, code>>1&1, code&1)))
	}
	return out
}

func run(t *testing.T, opts Options, models []*interp.Interpretation) Result {
	t.Helper()
	f, err := New(opts)
	require.NoError(t, err)
	res, err := f.Run(context.Background(), models)
	require.NoError(t, err)
	return res
}

func TestClassCountsBothModes(t *testing.T) {
	involution, err := interp.ParseClause("f(f(x)) = x")
	require.NoError(t, err)

	tests := []struct {
		name   string
		models []*interp.Interpretation
		discs  []interp.Clause
		want   int
	}{
		{"unary n=3", allUnary(t, 3), nil, 7},
		{"unary n=4", allUnary(t, 4), nil, 19},
		{"unary n=4 discriminated", allUnary(t, 4), []interp.Clause{involution}, 19},
		{"binary relations n=2", allBinaryRelations(t), nil, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canon := run(t, Options{Mode: Canonical, Discriminators: tt.discs, Workers: 4}, tt.models)
			pairs := run(t, Options{Mode: Pairwise, Discriminators: tt.discs}, tt.models)

			assert.Equal(t, tt.want, canon.KeptCount())
			assert.Equal(t, tt.want, pairs.KeptCount())
			assert.Equal(t, canon.Kept, pairs.Kept, "both modes keep the first member of each class")
			assert.Equal(t, len(tt.models), canon.Read)
			assert.Len(t, canon.Canonical, tt.want)
			assert.Nil(t, pairs.Canonical)
			assert.Greater(t, canon.Stats.Permutations, int64(0))
		})
	}
}

func TestKeepsFirstOfClass(t *testing.T) {
	models := []*interp.Interpretation{
		model(t, 3, op("s", "function", 1, 1, 2, 0)),
		model(t, 3, op("s", "function", 1, 0, 1, 2)),
		model(t, 3, op("s", "function", 1, 2, 0, 1)),
		model(t, 3, op("s", "function", 1, 0, 2, 1)),
		model(t, 3, op("s", "function", 1, 1, 0, 2)),
	}
	for _, mode := range []Mode{Canonical, Pairwise} {
		res := run(t, Options{Mode: mode}, models)
		assert.Equal(t, []int{0, 1, 3}, res.Kept, mode)
	}
}

func TestCheckSymbolsAndConstants(t *testing.T) {
	a := model(t, 2,
		op("f", "function", 1, 1, 0),
		op("g", "function", 1, 0, 0),
		op("c", "function", 0, 0),
	)
	b := model(t, 2,
		op("f", "function", 1, 1, 0),
		op("g", "function", 1, 0, 1),
		op("c", "function", 0, 1),
	)

	res := run(t, Options{}, []*interp.Interpretation{a, b})
	assert.Equal(t, 2, res.KeptCount())

	res = run(t, Options{CheckSymbols: []interp.Symbol{{Name: "f", Arity: -1}}}, []*interp.Interpretation{a, b})
	assert.Equal(t, []int{0}, res.Kept)

	// Without g the two differ only in the constant.
	onlyFC := []interp.Symbol{{Name: "f", Arity: 1}, {Name: "c", Arity: 0}}
	res = run(t, Options{CheckSymbols: onlyFC}, []*interp.Interpretation{a, b})
	assert.Equal(t, 1, res.KeptCount(), "f swaps 0 and 1, so c=0 and c=1 are isomorphic")

	res = run(t, Options{Mode: Pairwise, IgnoreConstants: true, CheckSymbols: onlyFC}, []*interp.Interpretation{a, b})
	assert.Equal(t, 1, res.KeptCount())
}

func TestStoreAcrossRuns(t *testing.T) {
	store, err := canonstore.OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	models := allUnary(t, 3)
	first := run(t, Options{Store: store}, models)
	assert.Equal(t, 7, first.KeptCount())
	assert.Equal(t, 7, first.Stored)

	second := run(t, Options{Store: store}, models)
	assert.Zero(t, second.KeptCount())
	assert.Zero(t, second.Stored)

	n, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestNewErrors(t *testing.T) {
	_, err := New(Options{Mode: "fuzzy"})
	assert.ErrorIs(t, err, ErrUnknownMode)

	store, err := canonstore.OpenInMemory()
	require.NoError(t, err)
	defer store.Close()
	_, err = New(Options{Mode: Pairwise, Store: store})
	assert.ErrorIs(t, err, ErrStoreNeedsCanonical)

	f, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, Canonical, f.Mode())
}

func TestRunErrors(t *testing.T) {
	wide := model(t, 2, op("q", "relation", 4, make([]int, 16)...))
	for _, mode := range []Mode{Canonical, Pairwise} {
		f, err := New(Options{Mode: mode})
		require.NoError(t, err)
		_, err = f.Run(context.Background(), []*interp.Interpretation{wide})
		assert.ErrorIs(t, err, interp.ErrArityUnsupported)
	}

	unknown, err := interp.ParseClause("h(x) = x")
	require.NoError(t, err)
	f, err := New(Options{Discriminators: []interp.Clause{unknown}})
	require.NoError(t, err)
	_, err = f.Run(context.Background(), allUnary(t, 2))
	assert.ErrorIs(t, err, interp.ErrUnknownSymbol)
}

func TestSummary(t *testing.T) {
	res := Result{
		Kept:    []int{0, 2},
		Read:    5,
		Stats:   interp.Stats{Checks: 3, Permutations: 12},
		Elapsed: 1500 * time.Millisecond,
	}
	assert.Equal(t, "% isofilter: 5 read, 2 kept, 3 checks, 12 permutations, 1.50 seconds", res.Summary())

	live := run(t, Options{}, allUnary(t, 2))
	assert.Regexp(t, regexp.MustCompile(`^% isofilter: 4 read, 3 kept, \d+ checks, \d+ permutations, \d+\.\d\d seconds$`), live.Summary())
}
