package interp

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Normalize profiles in with the given discriminators, reorders the domain
// so that profiles are non-increasing (ties keep original order), and
// partitions the result into blocks of identical profiles.
//
// Any automorphism of the result preserves profiles, so it can only
// permute elements inside a block. Isomorphic and Canonicalize use this to
// restrict their search.
func Normalize(ctx context.Context, in *Interpretation, discriminators []Clause) (*Interpretation, error) {
	ctx, span := getTracer().Start(ctx, "interp.Normalize")
	defer span.End()
	span.SetAttributes(
		attribute.Int("size", in.size),
		attribute.Int("discriminators", len(discriminators)),
	)
	start := time.Now()

	if err := checkPermArity(in); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "arity")
		return nil, err
	}
	prof, err := computeProfile(ctx, in, discriminators)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "profile")
		return nil, err
	}
	counts, err := computeDiscriminatorCounts(ctx, in, discriminators)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "discriminator counts")
		return nil, err
	}

	// order[k] is the element placed at position k.
	order := make([]int, in.size)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return compareProfiles(prof[order[i]], prof[order[j]]) > 0
	})
	p := make(Perm, in.size)
	for pos, e := range order {
		p[e] = pos
	}

	profiled := in.shallowCopy()
	profiled.profile = prof
	profiled.discrim = counts
	profiled.blocks = nil
	out := permute(profiled, p)

	out.blocks = make([]int, in.size)
	for e := 1; e < in.size; e++ {
		out.blocks[e] = out.blocks[e-1]
		if compareProfiles(out.profile[e], out.profile[e-1]) != 0 {
			out.blocks[e]++
		}
	}

	normalizeSeconds.Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("blocks", out.blocks[in.size-1]+1))
	span.SetStatus(codes.Ok, "normalized")
	return out, nil
}
