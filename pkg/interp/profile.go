package interp

// profile.go: isomorphism-invariant vectors per domain element.
//
// Layout of one element's profile:
//
//	[ occurrences, d0.v0, d0.v1, ..., d1.v0, ... ]
//
// where dk.vj is the number of true instances of discriminator k when its
// j-th variable (ascending slot order) is pinned to the element. Any
// isomorphism between interpretations profiled with the same
// discriminators maps elements only to elements with identical profiles.

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// ComputeProfile returns one invariant vector per element.
func ComputeProfile(in *Interpretation, discriminators []Clause) ([][]int, error) {
	return computeProfile(context.Background(), in, discriminators)
}

// computeProfile checks ctx before each pinned variable of each
// discriminator, the unit of n^v work.
func computeProfile(ctx context.Context, in *Interpretation, discriminators []Clause) ([][]int, error) {
	width := 1
	varsOf := make([][]int, len(discriminators))
	for k, c := range discriminators {
		vars, _, err := clauseAssignment(c)
		if err != nil {
			return nil, fmt.Errorf("discriminator %d: %w", k, err)
		}
		varsOf[k] = vars
		width += len(vars)
	}

	prof := make([][]int, in.size)
	for e := range prof {
		prof[e] = make([]int, 1, width)
		prof[e][0] = in.occurrences[e]
	}

	a := NewAssignment()
	for k, c := range discriminators {
		vars := varsOf[k]
		for j, pinned := range vars {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rest := make([]int, 0, len(vars)-1)
			rest = append(rest, vars[:j]...)
			rest = append(rest, vars[j+1:]...)
			for e := 0; e < in.size; e++ {
				a[pinned] = e
				cnt, err := in.countInstances(c, rest, a, true)
				if err != nil {
					return nil, fmt.Errorf("discriminator %d (%s): %w", k, c, err)
				}
				prof[e] = append(prof[e], cnt)
			}
			a[pinned] = Unbound
		}
	}
	return prof, nil
}

// ComputeDiscriminatorCounts returns the total number of true instances of
// each discriminator. It is a cheap global invariant checked before any
// permutation search.
func ComputeDiscriminatorCounts(in *Interpretation, discriminators []Clause) ([]int, error) {
	return computeDiscriminatorCounts(context.Background(), in, discriminators)
}

func computeDiscriminatorCounts(ctx context.Context, in *Interpretation, discriminators []Clause) ([]int, error) {
	out := make([]int, len(discriminators))
	for k, c := range discriminators {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := in.TrueInstances(c)
		if err != nil {
			return nil, fmt.Errorf("discriminator %d (%s): %w", k, c, err)
		}
		out[k] = n
	}
	return out, nil
}

// compareProfiles orders two profile vectors lexicographically.
func compareProfiles(p, q []int) int {
	for i := 0; i < len(p) && i < len(q); i++ {
		if p[i] != q[i] {
			return cmpInt(p[i], q[i])
		}
	}
	return cmpInt(len(p), len(q))
}

func sameProfiles(a, b [][]int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if compareProfiles(a[i], b[i]) != 0 {
			return false
		}
	}
	return true
}

// WriteProfile prints one line per element: element, block (when known)
// and its profile vector.
func WriteProfile(w io.Writer, in *Interpretation) error {
	prof := in.profile
	if prof == nil {
		prof = make([][]int, in.size)
		for e := range prof {
			prof[e] = []int{in.occurrences[e]}
		}
	}
	for e, p := range prof {
		parts := make([]string, len(p))
		for i, v := range p {
			parts[i] = fmt.Sprint(v)
		}
		block := "-"
		if in.blocks != nil {
			block = fmt.Sprint(in.blocks[e])
		}
		if _, err := fmt.Fprintf(w, "%3d  block %-3s [%s]\n", e, block, strings.Join(parts, ", ")); err != nil {
			return err
		}
	}
	return nil
}
