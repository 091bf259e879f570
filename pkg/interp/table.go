// Package interp provides finite interpretations of first-order vocabularies.
// This file defines operation tables: the flat, mixed-radix encoded value
// arrays backing every function and relation symbol.
package interp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Undefined marks a function entry with no value. It is only accepted when
// an interpretation is compiled with AllowIncomplete.
const Undefined = -1

// MaxPermArity is the largest arity supported by permutation, isomorphism
// testing and canonicalization.
const MaxPermArity = 3

// maxTableLen bounds size^arity so that a table always fits in memory.
const maxTableLen = 1 << 26

// MaxDomainSize is the largest accepted domain. Every unary table and the
// per-element caches must fit within maxTableLen.
const MaxDomainSize = maxTableLen

// Kind distinguishes functions from relations.
type Kind int

const (
	// Function tables hold domain elements.
	Function Kind = iota
	// Relation tables hold booleans encoded as 0/1.
	Relation
)

// String returns the description spelling of the kind.
func (k Kind) String() string {
	switch k {
	case Function:
		return "function"
	case Relation:
		return "relation"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps "function" or "relation" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "function":
		return Function, nil
	case "relation":
		return Relation, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrKind, s)
}

// Symbol identifies an operation by name and arity. Two symbols with the
// same name and different arities are distinct operations.
type Symbol struct {
	Name  string
	Arity int
}

// String renders the symbol as name/arity.
func (s Symbol) String() string {
	return s.Name + "/" + strconv.Itoa(s.Arity)
}

// Less orders symbols by name, then arity. This is the table iteration
// order used for comparison and canonical forms.
func (s Symbol) Less(t Symbol) bool {
	if s.Name != t.Name {
		return s.Name < t.Name
	}
	return s.Arity < t.Arity
}

// ParseSymbol parses "name/arity". A bare name is accepted with arity -1,
// which matches every arity of that name.
func ParseSymbol(s string) (Symbol, error) {
	s = strings.TrimSpace(s)
	i := strings.LastIndexByte(s, '/')
	if i <= 0 {
		if s == "" {
			return Symbol{}, fmt.Errorf("empty symbol")
		}
		return Symbol{Name: s, Arity: -1}, nil
	}
	arity, err := strconv.Atoi(s[i+1:])
	if err != nil || arity < 0 {
		return Symbol{}, fmt.Errorf("bad arity in symbol %q", s)
	}
	return Symbol{Name: s[:i], Arity: arity}, nil
}

// matches reports whether s selects t. A negative arity matches any arity.
func (s Symbol) matches(t Symbol) bool {
	return s.Name == t.Name && (s.Arity < 0 || s.Arity == t.Arity)
}

// Table is the tabulated value array of one symbol over a domain.
// Tables are owned by exactly one Interpretation and are never modified
// after compilation.
type Table struct {
	symbol Symbol
	kind   Kind
	values []int
}

// Symbol returns the operation symbol of the table.
func (t *Table) Symbol() Symbol { return t.symbol }

// Kind returns whether the table is a function or a relation.
func (t *Table) Kind() Kind { return t.kind }

// Arity returns the number of arguments.
func (t *Table) Arity() int { return t.symbol.Arity }

// Len returns the number of entries, size^arity.
func (t *Table) Len() int { return len(t.values) }

// At returns the entry at a flat index.
func (t *Table) At(index int) int { return t.values[index] }

// Values returns a copy of the flat value array.
func (t *Table) Values() []int {
	out := make([]int, len(t.values))
	copy(out, t.values)
	return out
}

// IntPower returns n^k, or an error when the result would exceed the
// maximum table length.
func IntPower(n, k int) (int, error) {
	if k < 0 {
		return 0, fmt.Errorf("negative exponent %d", k)
	}
	p := 1
	for i := 0; i < k; i++ {
		if n != 0 && p > math.MaxInt/n {
			return 0, fmt.Errorf("%d^%d overflows", n, k)
		}
		p *= n
		if p > maxTableLen {
			return 0, fmt.Errorf("%w: %d^%d exceeds %d entries", ErrTableLength, n, k, maxTableLen)
		}
	}
	return p, nil
}

// FlatIndex encodes an argument tuple into a flat table index, most
// significant argument first: Σ args[i] * size^(k-1-i).
func FlatIndex(size int, args ...int) int {
	idx := 0
	for _, a := range args {
		idx = idx*size + a
	}
	return idx
}

// TupleOf decodes a flat index back into its argument tuple.
func TupleOf(size, arity, index int) []int {
	args := make([]int, arity)
	for i := arity - 1; i >= 0; i-- {
		args[i] = index % size
		index /= size
	}
	return args
}
