package interp

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerm(t *testing.T) {
	p := Perm{2, 0, 1}
	require.NoError(t, p.Validate())
	assert.Equal(t, Perm{1, 2, 0}, p.Inverse())
	assert.True(t, Compose(p.Inverse(), p).IsIdentity())
	assert.Equal(t, Perm{1, 2, 0}, Compose(p, p))
	assert.True(t, Identity(4).IsIdentity())
	assert.False(t, p.IsIdentity())

	assert.ErrorIs(t, Perm{0, 0}.Validate(), ErrInvalidPermutation)
	assert.ErrorIs(t, Perm{0, 2}.Validate(), ErrInvalidPermutation)
}

func TestPermuteRelation(t *testing.T) {
	in := build(t, 2, relOp("r", 2, 0, 1, 1, 0))
	out, err := Permute(in, Perm{1, 0})
	require.NoError(t, err)
	r, _ := out.Table(Symbol{Name: "r", Arity: 2})
	assert.Equal(t, []int{0, 1, 1, 0}, r.Values())
}

func TestPermuteFunction(t *testing.T) {
	in := build(t, 2,
		fnOp("f", 2, 0, 1, 1, 0),
		fnOp("c", 0, 0),
	)
	out, err := Permute(in, Perm{1, 0})
	require.NoError(t, err)

	f, _ := out.Table(Symbol{Name: "f", Arity: 2})
	assert.Equal(t, []int{1, 0, 0, 1}, f.Values())
	c, _ := out.Table(Symbol{Name: "c", Arity: 0})
	assert.Equal(t, []int{1}, c.Values())
	assert.Equal(t, []int{3, 2}, in.Occurrences())
	assert.Equal(t, []int{2, 3}, out.Occurrences())

	f, _ = in.Table(Symbol{Name: "f", Arity: 2})
	assert.Equal(t, []int{0, 1, 1, 0}, f.Values(), "input must not change")
}

func TestPermuteIncomplete(t *testing.T) {
	desc := Description{Size: 2, Operations: []OperationDesc{fnOp("f", 1, Undefined, 0)}}
	in, err := Compile(desc, AllowIncomplete())
	require.NoError(t, err)
	out, err := Permute(in, Perm{1, 0})
	require.NoError(t, err)
	f, _ := out.Table(Symbol{Name: "f", Arity: 1})
	assert.Equal(t, []int{1, Undefined}, f.Values())
	assert.True(t, out.Incomplete())
}

func TestPermuteErrors(t *testing.T) {
	in := build(t, 2, relOp("q", 4, make([]int, 16)...))
	_, err := Permute(in, Perm{1, 0})
	assert.ErrorIs(t, err, ErrArityUnsupported)

	small := build(t, 2, fnOp("f", 1, 0, 1))
	_, err = Permute(small, Perm{0, 1, 2})
	assert.ErrorIs(t, err, ErrSizeMismatch)
	_, err = Permute(small, Perm{1, 1})
	assert.ErrorIs(t, err, ErrInvalidPermutation)
}

func TestPermuteFunctorial(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, n := range []int{1, 2, 3, 4} {
		for i := 0; i < 10; i++ {
			in := randomInterp(t, rng, n)
			p1, p2 := randomPerm(rng, n), randomPerm(rng, n)

			step, err := Permute(in, p1)
			require.NoError(t, err)
			twice, err := Permute(step, p2)
			require.NoError(t, err)
			once, err := Permute(in, Compose(p2, p1))
			require.NoError(t, err)
			assert.True(t, Equal(twice, once), "n=%d p1=%v p2=%v", n, p1, p2)

			back, err := Permute(step, p1.Inverse())
			require.NoError(t, err)
			assert.True(t, Equal(in, back))

			id, err := Permute(in, Identity(n))
			require.NoError(t, err)
			assert.True(t, Equal(in, id))
		}
	}
}

func TestPermuteKeepsBlocksWithinBlock(t *testing.T) {
	in := normalize(t, build(t, 3, fnOp("f", 1, 1, 0, 2)))
	require.Equal(t, []int{0, 0, 0}, in.Blocks())
	within, err := Permute(in, Perm{1, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, within.Blocks())

	twoBlocks := normalize(t, build(t, 3, fnOp("f", 1, 0, 0, 1)))
	require.Equal(t, []int{0, 1, 2}, twoBlocks.Blocks())
	across, err := Permute(twoBlocks, Perm{1, 0, 2})
	require.NoError(t, err)
	assert.Nil(t, across.Blocks())
}
