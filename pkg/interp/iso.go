package interp

// iso.go: isomorphism testing and canonical forms.
//
// Both searches walk the same tree: a candidate permutation p is built
// position by position, trying p[k] unchanged first and then swapping it
// with each later position. With block information a swap is only tried
// inside one block, which is where the pruning comes from.

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ctxCheckInterval is how many leaves are visited between context polls.
const ctxCheckInterval = 1024

type searcher struct {
	ctx    context.Context
	n      int
	tabs   []*Table
	btabs  []*Table // target tables, nil when canonicalizing
	blocks []int    // nil means unrestricted

	p       Perm
	best    Perm
	bestInv Perm

	stats Stats
	err   error
}

func newSearcher(ctx context.Context, a *Interpretation, blocks []int) *searcher {
	s := &searcher{
		ctx:    ctx,
		n:      a.size,
		blocks: blocks,
		p:      Identity(a.size),
	}
	for _, sym := range a.order {
		s.tabs = append(s.tabs, a.tables[sym])
	}
	return s
}

// sameSignature reports whether a and b define the same symbols with the
// same kinds.
func sameSignature(a, b *Interpretation) bool {
	if len(a.order) != len(b.order) {
		return false
	}
	for i, s := range a.order {
		if b.order[i] != s || a.tables[s].kind != b.tables[s].kind {
			return false
		}
	}
	return true
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedCopy(xs []int) []int {
	out := append([]int(nil), xs...)
	sort.Ints(out)
	return out
}

// Isomorphic decides whether a and b are isomorphic. When normalized is
// true both must come from Normalize with the same discriminators; the
// search then only permutes elements within blocks.
//
// Cheap invariants are checked first (size, signature, profiles,
// discriminator counts, occurrence multisets); the permutation search runs
// only when all of them agree.
func Isomorphic(ctx context.Context, a, b *Interpretation, normalized bool) (bool, Stats, error) {
	ctx, span := getTracer().Start(ctx, "interp.Isomorphic")
	defer span.End()
	span.SetAttributes(attribute.Int("size", a.size), attribute.Bool("normalized", normalized))

	var stats Stats
	if a.size != b.size || !sameSignature(a, b) {
		return false, stats, nil
	}
	if err := checkPermArity(a); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "arity")
		return false, stats, err
	}
	if normalized {
		if a.blocks == nil || b.blocks == nil {
			err := fmt.Errorf("%w: Isomorphic with normalized=true", ErrNotNormalized)
			span.RecordError(err)
			span.SetStatus(codes.Error, "not normalized")
			return false, stats, err
		}
		if !sameProfiles(a.profile, b.profile) {
			return false, stats, nil
		}
	}
	if a.discrim != nil && b.discrim != nil && !sameInts(a.discrim, b.discrim) {
		return false, stats, nil
	}
	if !sameInts(sortedCopy(a.occurrences), sortedCopy(b.occurrences)) {
		return false, stats, nil
	}

	var blocks []int
	if normalized {
		blocks = a.blocks
	}
	s := newSearcher(ctx, a, blocks)
	for _, sym := range b.order {
		s.btabs = append(s.btabs, b.tables[sym])
	}
	s.stats.Checks = 1
	found := s.searchIso(0)
	recordStats(s.stats)
	span.SetAttributes(
		attribute.Int64("permutations", s.stats.Permutations),
		attribute.Bool("isomorphic", found),
	)
	if s.err != nil {
		span.RecordError(s.err)
		span.SetStatus(codes.Error, "search interrupted")
		return false, s.stats, s.err
	}
	span.SetStatus(codes.Ok, "checked")
	return found, s.stats, nil
}

func (s *searcher) leaf() bool {
	s.stats.Permutations++
	if s.stats.Permutations%ctxCheckInterval == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return false
		}
	}
	return true
}

func (s *searcher) searchIso(k int) bool {
	if s.err != nil {
		return false
	}
	if k == s.n {
		return s.leaf() && s.matches()
	}
	if s.searchIso(k + 1) {
		return true
	}
	for i := k + 1; i < s.n; i++ {
		if s.blocks != nil && s.blocks[i] != s.blocks[k] {
			break // blocks are contiguous
		}
		s.p[k], s.p[i] = s.p[i], s.p[k]
		found := s.searchIso(k + 1)
		s.p[k], s.p[i] = s.p[i], s.p[k]
		if found || s.err != nil {
			return found
		}
	}
	return false
}

// matches reports whether p maps every source table onto its target.
func (s *searcher) matches() bool {
	for j, at := range s.tabs {
		bt := s.btabs[j]
		arity := at.symbol.Arity
		for idx, v := range at.values {
			if bt.values[permIndex(s.p, s.n, arity, idx)] != mapValue(s.p, at.kind, v) {
				return false
			}
		}
	}
	return true
}

// Canonicalize returns the canonical form of a normalized interpretation:
// the lexicographically least table image over all block-respecting
// permutations. Two interpretations normalized with the same
// discriminators are isomorphic exactly when their canonical forms are
// Equal.
func Canonicalize(ctx context.Context, a *Interpretation) (*Interpretation, Stats, error) {
	ctx, span := getTracer().Start(ctx, "interp.Canonicalize")
	defer span.End()
	span.SetAttributes(attribute.Int("size", a.size))
	start := time.Now()

	var stats Stats
	if a.blocks == nil {
		err := fmt.Errorf("%w: Canonicalize", ErrNotNormalized)
		span.RecordError(err)
		span.SetStatus(codes.Error, "not normalized")
		return nil, stats, err
	}
	if err := checkPermArity(a); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "arity")
		return nil, stats, err
	}

	s := newSearcher(ctx, a, a.blocks)
	s.best = Identity(a.size)
	s.bestInv = Identity(a.size)
	s.stats.Checks = 1
	s.searchCanon(0)
	recordStats(s.stats)
	span.SetAttributes(attribute.Int64("permutations", s.stats.Permutations))
	if s.err != nil {
		span.RecordError(s.err)
		span.SetStatus(codes.Error, "search interrupted")
		return nil, s.stats, s.err
	}

	out := permute(a, s.best)
	canonicalizeSeconds.Observe(time.Since(start).Seconds())
	span.SetStatus(codes.Ok, "canonicalized")
	return out, s.stats, nil
}

func (s *searcher) searchCanon(k int) {
	if s.err != nil {
		return
	}
	if k == s.n {
		if !s.leaf() {
			return
		}
		inv := s.p.Inverse()
		if s.compareToBest(inv) < 0 {
			copy(s.best, s.p)
			copy(s.bestInv, inv)
		}
		return
	}
	s.searchCanon(k + 1)
	for i := k + 1; i < s.n && s.err == nil; i++ {
		if s.blocks[i] != s.blocks[k] {
			break
		}
		s.p[k], s.p[i] = s.p[i], s.p[k]
		s.searchCanon(k + 1)
		s.p[k], s.p[i] = s.p[i], s.p[k]
	}
}

// compareToBest compares the image of a under the candidate p (with
// inverse inv) against the image under the best permutation so far, table
// by table and tuple by tuple, without building either image.
func (s *searcher) compareToBest(inv Perm) int {
	for _, t := range s.tabs {
		arity := t.symbol.Arity
		for idx := range t.values {
			cv := mapValue(s.p, t.kind, t.values[permIndex(inv, s.n, arity, idx)])
			bv := mapValue(s.best, t.kind, t.values[permIndex(s.bestInv, s.n, arity, idx)])
			if cv != bv {
				return cmpInt(cv, bv)
			}
		}
	}
	return 0
}
