package interp

import (
	"bytes"
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeProfile(t *testing.T) {
	in := build(t, 3, fnOp("f", 1, 0, 0, 1))
	fixed := mustClause(t, "f(x) = x")

	prof, err := ComputeProfile(in, []Clause{fixed})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{2, 1}, {1, 0}, {0, 0}}, prof)

	counts, err := ComputeDiscriminatorCounts(in, []Clause{fixed})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, counts)

	// Without discriminators the profile is the occurrence count alone.
	prof, err = ComputeProfile(in, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{2}, {1}, {0}}, prof)
}

func TestComputeProfileTwoVariables(t *testing.T) {
	// r is the strict order 0 < 1 < 2; pinning x counts successors,
	// pinning y counts predecessors.
	in := build(t, 3, relOp("r", 2, 0, 1, 1, 0, 0, 1, 0, 0, 0))
	prof, err := ComputeProfile(in, []Clause{mustClause(t, "r(x,y)")})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 2, 0}, {0, 1, 1}, {0, 0, 2}}, prof)
}

func TestComputeProfileUnknownSymbol(t *testing.T) {
	in := build(t, 2, fnOp("f", 1, 0, 1))
	_, err := ComputeProfile(in, []Clause{mustClause(t, "g(x) = x")})
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestNormalize(t *testing.T) {
	in := build(t, 3, fnOp("f", 1, 2, 2, 1))
	out, err := Normalize(context.Background(), in, nil)
	require.NoError(t, err)

	// Element 2 occurs twice, 1 once, 0 never: the order is reversed.
	f, _ := out.Table(Symbol{Name: "f", Arity: 1})
	assert.Equal(t, []int{1, 0, 0}, f.Values())
	assert.Equal(t, []int{2, 1, 0}, out.Occurrences())
	assert.Equal(t, []int{0, 1, 2}, out.Blocks())
	assert.Equal(t, [][]int{{2}, {1}, {0}}, out.Profile())
	assert.Empty(t, out.DiscriminatorCounts())
	assert.True(t, out.Normalized())
	assert.False(t, in.Normalized(), "input must not change")
}

func TestNormalizeStableTies(t *testing.T) {
	// Every element has the same profile: the order is kept and there is
	// a single block.
	in := build(t, 3, fnOp("s", 1, 1, 2, 0))
	out := normalize(t, in)
	assert.True(t, Equal(in, out))
	assert.Equal(t, []int{0, 0, 0}, out.Blocks())
}

func TestNormalizeProfilesNonIncreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	discs := []Clause{
		mustClause(t, "x * y = y * x"),
		mustClause(t, "g(x) = x | r(x,e)"),
	}
	for i := 0; i < 20; i++ {
		in := randomInterp(t, rng, 4)
		out := normalize(t, in, discs...)
		prof := out.Profile()
		blocks := out.Blocks()
		for e := 1; e < len(prof); e++ {
			c := compareProfiles(prof[e-1], prof[e])
			assert.GreaterOrEqual(t, c, 0)
			if c == 0 {
				assert.Equal(t, blocks[e-1], blocks[e])
			} else {
				assert.Equal(t, blocks[e-1]+1, blocks[e])
			}
		}
		// The stored profile is the profile of the normalized tables.
		recomputed, err := ComputeProfile(out, discs)
		require.NoError(t, err)
		assert.Equal(t, prof, recomputed)
	}
}

func TestNormalizeArityUnsupported(t *testing.T) {
	in := build(t, 2, relOp("q", 4, make([]int, 16)...))
	_, err := Normalize(context.Background(), in, nil)
	assert.ErrorIs(t, err, ErrArityUnsupported)
}

func TestNormalizeCancelledDuringProfiling(t *testing.T) {
	in := build(t, 3, fnOp("s", 1, 1, 2, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Normalize(ctx, in, []Clause{mustClause(t, "s(x) = y")})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = Normalize(ctx, in, nil)
	assert.NoError(t, err, "without discriminators there is nothing to interrupt")
}

func TestProfileInvariantUnderAutomorphism(t *testing.T) {
	// x -> 1-x is an automorphism of the symmetric relation r and of the
	// involution g.
	in := build(t, 2,
		relOp("r", 2, 0, 1, 1, 0),
		fnOp("g", 1, 1, 0),
	)
	discs := []Clause{mustClause(t, "r(x,y) | g(x) = y")}
	prof, err := ComputeProfile(in, discs)
	require.NoError(t, err)

	auto := Perm{1, 0}
	image, err := Permute(in, auto)
	require.NoError(t, err)
	require.True(t, Equal(in, image))
	for e := range prof {
		assert.Equal(t, prof[e], prof[auto[e]])
	}
}

func TestWriteProfile(t *testing.T) {
	in := build(t, 2, fnOp("f", 1, 0, 0))
	var buf bytes.Buffer
	require.NoError(t, WriteProfile(&buf, in))
	assert.Equal(t, "  0  block -   [2]\n  1  block -   [0]\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteProfile(&buf, normalize(t, in)))
	assert.Equal(t, "  0  block 0   [2]\n  1  block 1   [0]\n", buf.String())
}
