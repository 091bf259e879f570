package interp

// permute.go: applying a domain permutation to an interpretation.
//
// For a function entry f(i0,...,ik-1) = v the permuted table holds
// f'(π(i0),...,π(ik-1)) = π(v). Relation entries keep their boolean at the
// permuted tuple. Only arities 0..3 are supported.

import "fmt"

// checkPermArity rejects interpretations with a table above MaxPermArity.
func checkPermArity(in *Interpretation) error {
	for _, s := range in.order {
		if s.Arity > MaxPermArity {
			return fmt.Errorf("%w: %s", ErrArityUnsupported, s)
		}
	}
	return nil
}

// permIndex maps a flat index of an arity-k table through p.
func permIndex(p []int, n, arity, idx int) int {
	switch arity {
	case 0:
		return 0
	case 1:
		return p[idx]
	case 2:
		return p[idx/n]*n + p[idx%n]
	case 3:
		nn := n * n
		return (p[idx/nn]*n+p[(idx/n)%n])*n + p[idx%n]
	}
	panic(fmt.Sprintf("permIndex: arity %d", arity))
}

// mapValue maps a table value through p; relation values and undefined
// entries are left as they are.
func mapValue(p []int, kind Kind, v int) int {
	if kind == Relation || v == Undefined {
		return v
	}
	return p[v]
}

// Permute returns the image of in under p. The input is not modified.
// Occurrence counts and profiles move with their elements; blocks are kept
// only when p maps every element into its own block.
func Permute(in *Interpretation, p Perm) (*Interpretation, error) {
	if len(p) != in.size {
		return nil, fmt.Errorf("%w: permutation of %d, domain %d", ErrSizeMismatch, len(p), in.size)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := checkPermArity(in); err != nil {
		return nil, err
	}
	return permute(in, p), nil
}

// permute assumes p and the table arities have been checked.
func permute(in *Interpretation, p Perm) *Interpretation {
	n := in.size
	out := &Interpretation{
		size:       n,
		label:      in.label,
		incomplete: in.incomplete,
		tables:     make(map[Symbol]*Table, len(in.tables)),
		order:      append([]Symbol(nil), in.order...),
	}
	for _, s := range in.order {
		t := in.tables[s]
		nt := &Table{symbol: s, kind: t.kind, values: make([]int, len(t.values))}
		for idx, v := range t.values {
			nt.values[permIndex(p, n, s.Arity, idx)] = mapValue(p, t.kind, v)
		}
		out.tables[s] = nt
	}

	out.occurrences = make([]int, n)
	for e, c := range in.occurrences {
		out.occurrences[p[e]] = c
	}
	if in.profile != nil {
		out.profile = make([][]int, n)
		for e, v := range in.profile {
			out.profile[p[e]] = append([]int(nil), v...)
		}
	}
	if in.discrim != nil {
		out.discrim = append([]int(nil), in.discrim...)
	}
	if in.blocks != nil && preservesBlocks(in.blocks, p) {
		out.blocks = append([]int(nil), in.blocks...)
	}
	return out
}

func preservesBlocks(blocks []int, p Perm) bool {
	for e, v := range p {
		if blocks[e] != blocks[v] {
			return false
		}
	}
	return true
}
