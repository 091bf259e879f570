// Package interp implements finite interpretations (models) of first-order
// vocabularies together with the machinery to evaluate formulas in them,
// compute isomorphism invariants, and decide isomorphism or compute a
// canonical representative of an isomorphism class.
//
// # Lifecycle
//
//	Description ──Compile──▶ Interpretation ──Normalize──▶ normalized copy
//	                                                  │
//	                        Isomorphic / Canonicalize ◀┘
//
// An Interpretation is never mutated after Compile. Every transformation
// (Permute, Normalize, Restrict, ...) allocates a fresh, independent copy.
//
// Thread safety: an Interpretation is immutable and may be read from many
// goroutines. Searches keep their state private, so independent pairs can
// be checked concurrently.
package interp

import (
	"fmt"
	"sort"
	"strconv"
)

// Interpretation is a finite structure: a domain {0..size-1} and a table
// for each operation symbol it defines.
type Interpretation struct {
	size       int
	label      string
	incomplete bool

	tables map[Symbol]*Table
	order  []Symbol // sorted by Symbol.Less

	// Derived caches.
	occurrences []int
	profile     [][]int
	discrim     []int
	blocks      []int
}

// CompileOption adjusts how a Description is compiled.
type CompileOption func(*compileConfig)

type compileConfig struct {
	allowIncomplete bool
}

// AllowIncomplete accepts the Undefined marker in function tables and marks
// the result as incomplete.
func AllowIncomplete() CompileOption {
	return func(c *compileConfig) { c.allowIncomplete = true }
}

// Compile validates a description and builds an Interpretation from it.
// Occurrence counts are computed from function tables; profiles and blocks
// are left empty until Normalize.
func Compile(desc Description, opts ...CompileOption) (*Interpretation, error) {
	var cfg compileConfig
	for _, o := range opts {
		o(&cfg)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	n := desc.Size
	in := &Interpretation{
		size:   n,
		label:  desc.Label,
		tables: make(map[Symbol]*Table, len(desc.Operations)),
	}
	for i, op := range desc.Operations {
		kind, err := ParseKind(op.Kind)
		if err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i, op.Name, err)
		}
		sym := Symbol{Name: op.Name, Arity: op.Arity}
		if _, dup := in.tables[sym]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSymbol, sym)
		}
		want, err := IntPower(n, op.Arity)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", sym, err)
		}
		if len(op.Values) != want {
			return nil, fmt.Errorf("%w: %s has %d values, want %d", ErrTableLength, sym, len(op.Values), want)
		}
		t := &Table{symbol: sym, kind: kind, values: make([]int, want)}
		for j, v := range op.Values {
			x := int(v)
			switch kind {
			case Function:
				if x == Undefined && cfg.allowIncomplete {
					in.incomplete = true
				} else if x < 0 || x >= n {
					return nil, fmt.Errorf("%w: %s entry %d is %s, size %d", ErrValueRange, sym, j, valueString(x), n)
				}
			case Relation:
				if x != 0 && x != 1 {
					return nil, fmt.Errorf("%w: %s entry %d is %s", ErrRelationValue, sym, j, valueString(x))
				}
			}
			t.values[j] = x
		}
		in.tables[sym] = t
	}
	in.sortSymbols()
	in.occurrences = countOccurrences(in)
	return in, nil
}

// MustCompile is like Compile but panics on error. It is meant for tests
// and fixed literals.
func MustCompile(desc Description, opts ...CompileOption) *Interpretation {
	in, err := Compile(desc, opts...)
	if err != nil {
		panic(err)
	}
	return in
}

func valueString(v int) string {
	if v == Undefined {
		return "-"
	}
	return strconv.Itoa(v)
}

func (in *Interpretation) sortSymbols() {
	in.order = in.order[:0]
	for s := range in.tables {
		in.order = append(in.order, s)
	}
	sort.Slice(in.order, func(i, j int) bool { return in.order[i].Less(in.order[j]) })
}

func countOccurrences(in *Interpretation) []int {
	occ := make([]int, in.size)
	for _, s := range in.order {
		t := in.tables[s]
		if t.kind != Function {
			continue
		}
		for _, v := range t.values {
			if v != Undefined {
				occ[v]++
			}
		}
	}
	return occ
}

// Size returns the domain size.
func (in *Interpretation) Size() int { return in.size }

// Label returns the free-text label carried from the description.
func (in *Interpretation) Label() string { return in.label }

// Incomplete reports whether some function entry is Undefined.
func (in *Interpretation) Incomplete() bool { return in.incomplete }

// Symbols returns the defined symbols in table order.
func (in *Interpretation) Symbols() []Symbol {
	out := make([]Symbol, len(in.order))
	copy(out, in.order)
	return out
}

// Table returns the table for sym.
func (in *Interpretation) Table(sym Symbol) (*Table, bool) {
	t, ok := in.tables[sym]
	return t, ok
}

// Occurrences returns, per element, how often it appears as a function
// value.
func (in *Interpretation) Occurrences() []int {
	return append([]int(nil), in.occurrences...)
}

// Profile returns the per-element invariant vectors, or nil when the
// interpretation has not been normalized.
func (in *Interpretation) Profile() [][]int {
	if in.profile == nil {
		return nil
	}
	out := make([][]int, len(in.profile))
	for i, p := range in.profile {
		out[i] = append([]int(nil), p...)
	}
	return out
}

// DiscriminatorCounts returns the aggregate true-instance counts computed
// by Normalize, or nil.
func (in *Interpretation) DiscriminatorCounts() []int {
	if in.discrim == nil {
		return nil
	}
	return append([]int(nil), in.discrim...)
}

// Blocks returns the block id of each element, or nil when the
// interpretation has not been normalized.
func (in *Interpretation) Blocks() []int {
	if in.blocks == nil {
		return nil
	}
	return append([]int(nil), in.blocks...)
}

// Normalized reports whether block information is available.
func (in *Interpretation) Normalized() bool { return in.blocks != nil }

// Describe converts the interpretation back to its raw description.
// Compile(in.Describe()) reproduces the same tables.
func (in *Interpretation) Describe() Description {
	d := Description{Size: in.size, Label: in.label}
	for _, s := range in.order {
		t := in.tables[s]
		vals := make(Values, len(t.values))
		for i, v := range t.values {
			vals[i] = Value(v)
		}
		d.Operations = append(d.Operations, OperationDesc{
			Name:   s.Name,
			Kind:   t.kind.String(),
			Arity:  s.Arity,
			Values: vals,
		})
	}
	return d
}

// WithLabel returns a copy carrying a different label.
func (in *Interpretation) WithLabel(label string) *Interpretation {
	out := in.shallowCopy()
	out.label = label
	return out
}

// shallowCopy shares the (immutable) tables and caches.
func (in *Interpretation) shallowCopy() *Interpretation {
	out := *in
	out.order = append([]Symbol(nil), in.order...)
	return &out
}

// derive builds a new interpretation over the given tables. Caches are
// recomputed from scratch; profiles and blocks are dropped.
func (in *Interpretation) derive(tables map[Symbol]*Table) *Interpretation {
	out := &Interpretation{size: in.size, label: in.label, tables: tables}
	for _, t := range tables {
		if t.kind == Function {
			for _, v := range t.values {
				if v == Undefined {
					out.incomplete = true
				}
			}
		}
	}
	out.sortSymbols()
	out.occurrences = countOccurrences(out)
	return out
}

// Restrict keeps only the tables selected by syms. A symbol with negative
// arity selects every arity of its name. Unknown symbols are ignored.
func (in *Interpretation) Restrict(syms []Symbol) *Interpretation {
	tables := make(map[Symbol]*Table)
	for _, s := range in.order {
		for _, want := range syms {
			if want.matches(s) {
				tables[s] = in.tables[s]
				break
			}
		}
	}
	return in.derive(tables)
}

// RemoveConstants drops every arity-0 function table.
func (in *Interpretation) RemoveConstants() *Interpretation {
	tables := make(map[Symbol]*Table)
	for _, s := range in.order {
		t := in.tables[s]
		if t.kind == Function && s.Arity == 0 {
			continue
		}
		tables[s] = t
	}
	return in.derive(tables)
}

// WithConstant returns a copy that also interprets the constant name as
// value.
func (in *Interpretation) WithConstant(name string, value int) (*Interpretation, error) {
	sym := Symbol{Name: name, Arity: 0}
	if _, ok := in.tables[sym]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSymbol, sym)
	}
	if value < 0 || value >= in.size {
		return nil, fmt.Errorf("%w: %s = %d, size %d", ErrValueRange, sym, value, in.size)
	}
	tables := make(map[Symbol]*Table, len(in.tables)+1)
	for s, t := range in.tables {
		tables[s] = t
	}
	tables[sym] = &Table{symbol: sym, kind: Function, values: []int{value}}
	return in.derive(tables), nil
}

// Equal reports whether a and b have the same size and identical tables.
// Labels and caches are ignored.
func Equal(a, b *Interpretation) bool {
	return Compare(a, b) == 0
}

// Compare is a total order on interpretations: by size, then symbol list,
// then table contents in table order and flat-index order.
func Compare(a, b *Interpretation) int {
	if a.size != b.size {
		return cmpInt(a.size, b.size)
	}
	for i := 0; i < len(a.order) && i < len(b.order); i++ {
		sa, sb := a.order[i], b.order[i]
		if sa != sb {
			if sa.Less(sb) {
				return -1
			}
			return 1
		}
		ta, tb := a.tables[sa], b.tables[sb]
		if ta.kind != tb.kind {
			return cmpInt(int(ta.kind), int(tb.kind))
		}
		for j := range ta.values {
			if ta.values[j] != tb.values[j] {
				return cmpInt(ta.values[j], tb.values[j])
			}
		}
	}
	return cmpInt(len(a.order), len(b.order))
}

func cmpInt(x, y int) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// String returns a one-line summary.
func (in *Interpretation) String() string {
	return fmt.Sprintf("Interpretation{size: %d, tables: %d, normalized: %v}",
		in.size, len(in.order), in.Normalized())
}
