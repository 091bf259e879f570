// Package dedup removes isomorphic duplicates from a list of
// interpretations, keeping the first member of every isomorphism class.
//
// Two strategies are available. Canonical mode computes one canonical form
// per interpretation (in parallel) and keeps those with an unseen
// fingerprint; it can also consult a persistent canonical store. Pairwise
// mode tests each candidate against every kept interpretation. Both give
// the same answer.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gitrdm/gofinite/internal/parallel"
	"github.com/gitrdm/gofinite/pkg/canonstore"
	"github.com/gitrdm/gofinite/pkg/interp"
)

// Mode selects the deduplication strategy.
type Mode string

const (
	// Canonical compares canonical-form fingerprints.
	Canonical Mode = "canonical"
	// Pairwise runs an isomorphism test against every kept interpretation.
	Pairwise Mode = "pairwise"
)

var (
	// ErrUnknownMode is returned for a mode other than canonical or pairwise.
	ErrUnknownMode = errors.New("unknown deduplication mode")

	// ErrStoreNeedsCanonical is returned when a store is combined with
	// pairwise mode.
	ErrStoreNeedsCanonical = errors.New("canonical store requires canonical mode")
)

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Canonical, Pairwise:
		return Mode(s), nil
	case "":
		return Canonical, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Options configures a Filter.
type Options struct {
	// Mode is the strategy; empty means Canonical.
	Mode Mode

	// Discriminators refine profiles and shrink the search.
	Discriminators []interp.Clause

	// CheckSymbols restricts the comparison to these symbols. Nil means
	// every symbol.
	CheckSymbols []interp.Symbol

	// IgnoreConstants drops constants before comparing.
	IgnoreConstants bool

	// Workers bounds parallel normalization and canonicalization.
	// 0 means one per CPU.
	Workers int

	// Store, when set, remembers canonical forms across runs. Classes
	// already in the store are dropped.
	Store *canonstore.Store

	// Logger receives per-model decisions at debug level. Nil disables
	// logging.
	Logger *slog.Logger
}

// Result reports what a run kept and how much work it did.
type Result struct {
	// Kept holds indices into the input, in input order.
	Kept []int

	// Canonical holds the canonical form of each kept interpretation in
	// canonical mode, parallel to Kept. It is nil in pairwise mode.
	Canonical []*interp.Interpretation

	Read    int
	Stored  int
	Stats   interp.Stats
	Elapsed time.Duration
}

// KeptCount returns the number of kept interpretations.
func (r Result) KeptCount() int { return len(r.Kept) }

// Summary renders the one-line run report.
func (r Result) Summary() string {
	return fmt.Sprintf("%% isofilter: %d read, %d kept, %d checks, %d permutations, %.2f seconds",
		r.Read, r.KeptCount(), r.Stats.Checks, r.Stats.Permutations, r.Elapsed.Seconds())
}

// Filter deduplicates interpretations up to isomorphism.
type Filter struct {
	opts   Options
	logger *slog.Logger
}

// New validates opts and returns a Filter.
func New(opts Options) (*Filter, error) {
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	opts.Mode = mode
	if opts.Store != nil && mode != Canonical {
		return nil, ErrStoreNeedsCanonical
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Filter{opts: opts, logger: logger}, nil
}

// Mode returns the strategy in use.
func (f *Filter) Mode() Mode { return f.opts.Mode }

// view applies the symbol selection used for comparison.
func (f *Filter) view(m *interp.Interpretation) *interp.Interpretation {
	if f.opts.CheckSymbols != nil {
		m = m.Restrict(f.opts.CheckSymbols)
	}
	if f.opts.IgnoreConstants {
		m = m.RemoveConstants()
	}
	return m
}

// Run deduplicates models. The input is not modified.
func (f *Filter) Run(ctx context.Context, models []*interp.Interpretation) (Result, error) {
	ctx, span := otel.Tracer("github.com/gitrdm/gofinite/pkg/dedup").Start(ctx, "dedup.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("mode", string(f.opts.Mode)),
		attribute.Int("models", len(models)),
	)
	start := time.Now()

	res := Result{Read: len(models)}
	normalized := make([]*interp.Interpretation, len(models))
	err := parallel.ForEach(ctx, f.opts.Workers, models, func(ctx context.Context, i int, m *interp.Interpretation) error {
		n, err := interp.Normalize(ctx, f.view(m), f.opts.Discriminators)
		if err != nil {
			return fmt.Errorf("model %d: %w", i+1, err)
		}
		normalized[i] = n
		return nil
	})
	if err == nil {
		switch f.opts.Mode {
		case Pairwise:
			err = f.runPairwise(ctx, normalized, &res)
		default:
			err = f.runCanonical(ctx, normalized, &res)
		}
	}
	res.Elapsed = time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dedup failed")
		return res, err
	}

	span.SetAttributes(
		attribute.Int("kept", res.KeptCount()),
		attribute.Int64("checks", res.Stats.Checks),
		attribute.Int64("permutations", res.Stats.Permutations),
	)
	span.SetStatus(codes.Ok, "deduplicated")
	f.logger.Info("isofilter finished",
		slog.String("mode", string(f.opts.Mode)),
		slog.Int("read", res.Read),
		slog.Int("kept", res.KeptCount()),
		slog.Int64("checks", res.Stats.Checks),
		slog.Int64("permutations", res.Stats.Permutations),
		slog.Duration("elapsed", res.Elapsed))
	return res, nil
}

func (f *Filter) runCanonical(ctx context.Context, normalized []*interp.Interpretation, res *Result) error {
	canon := make([]*interp.Interpretation, len(normalized))
	var totals interp.Totals
	err := parallel.ForEach(ctx, f.opts.Workers, normalized, func(ctx context.Context, i int, n *interp.Interpretation) error {
		c, stats, err := interp.Canonicalize(ctx, n)
		totals.Add(stats)
		if err != nil {
			return fmt.Errorf("model %d: %w", i+1, err)
		}
		canon[i] = c
		return nil
	})
	res.Stats.Add(totals.Snapshot())
	if err != nil {
		return err
	}

	// Keep decisions are made in input order so the first member of each
	// class wins regardless of scheduling.
	seen := make(map[string]bool)
	for i, c := range canon {
		fp := interp.Fingerprint(c)
		if seen[fp] {
			f.logger.Debug("duplicate model", slog.Int("model", i+1), slog.String("fingerprint", fp))
			continue
		}
		seen[fp] = true
		if f.opts.Store != nil {
			_, added, err := f.opts.Store.PutIfAbsent(ctx, fp, c.Describe())
			if err != nil {
				return fmt.Errorf("model %d: %w", i+1, err)
			}
			if !added {
				f.logger.Debug("model already stored", slog.Int("model", i+1), slog.String("fingerprint", fp))
				continue
			}
			res.Stored++
		}
		res.Kept = append(res.Kept, i)
		res.Canonical = append(res.Canonical, c)
	}
	return nil
}

func (f *Filter) runPairwise(ctx context.Context, normalized []*interp.Interpretation, res *Result) error {
	var kept []*interp.Interpretation
	for i, n := range normalized {
		dup := false
		for _, k := range kept {
			iso, stats, err := interp.Isomorphic(ctx, k, n, true)
			res.Stats.Add(stats)
			if err != nil {
				return fmt.Errorf("model %d: %w", i+1, err)
			}
			if iso {
				dup = true
				break
			}
		}
		if dup {
			f.logger.Debug("duplicate model", slog.Int("model", i+1))
			continue
		}
		kept = append(kept, n)
		res.Kept = append(res.Kept, i)
	}
	return nil
}
