package interp

import "fmt"

// Perm is a bijection of {0..n-1}; p[e] is the image of e.
type Perm []int

// Identity returns the identity permutation of size n.
func Identity(n int) Perm {
	p := make(Perm, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// Validate checks that p is a bijection of {0..len(p)-1}.
func (p Perm) Validate() error {
	seen := make([]bool, len(p))
	for i, v := range p {
		if v < 0 || v >= len(p) || seen[v] {
			return fmt.Errorf("%w: position %d maps to %d", ErrInvalidPermutation, i, v)
		}
		seen[v] = true
	}
	return nil
}

// Inverse returns p⁻¹.
func (p Perm) Inverse() Perm {
	inv := make(Perm, len(p))
	for i, v := range p {
		inv[v] = i
	}
	return inv
}

// Compose returns q∘p, the permutation that applies p first and then q.
func Compose(q, p Perm) Perm {
	out := make(Perm, len(p))
	for i, v := range p {
		out[i] = q[v]
	}
	return out
}

// IsIdentity reports whether p fixes every element.
func (p Perm) IsIdentity() bool {
	for i, v := range p {
		if i != v {
			return false
		}
	}
	return true
}
