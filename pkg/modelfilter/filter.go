// Package modelfilter keeps interpretations according to how they evaluate
// a list of closed formulas.
package modelfilter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gitrdm/gofinite/internal/parallel"
	"github.com/gitrdm/gofinite/pkg/interp"
)

// Mode decides which interpretations are kept.
type Mode string

const (
	// AllTrue keeps models in which every formula is true.
	AllTrue Mode = "all_true"
	// SomeFalse keeps models in which at least one formula is false.
	SomeFalse Mode = "some_false"
	// AllFalse keeps models in which every formula is false.
	AllFalse Mode = "all_false"
	// SomeTrue keeps models in which at least one formula is true.
	SomeTrue Mode = "some_true"
)

var (
	// ErrUnknownMode is returned by ParseMode for an unrecognized mode.
	ErrUnknownMode = errors.New("unknown filter mode")
	// ErrNoFormulas is returned when a filter is built without formulas.
	ErrNoFormulas = errors.New("model filter needs at least one formula")
)

// ParseMode accepts the four mode names plus the short forms "true"
// (all_true) and "false" (some_false).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "true", string(AllTrue):
		return AllTrue, nil
	case "false", string(SomeFalse):
		return SomeFalse, nil
	case string(AllFalse):
		return AllFalse, nil
	case string(SomeTrue):
		return SomeTrue, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Filter evaluates formulas against interpretations.
type Filter struct {
	formulas []interp.Formula
	mode     Mode
	workers  int
	logger   *slog.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithWorkers bounds parallel evaluation across models.
func WithWorkers(n int) Option {
	return func(f *Filter) { f.workers = n }
}

// WithLogger sets the logger used for per-model decisions.
func WithLogger(l *slog.Logger) Option {
	return func(f *Filter) {
		if l != nil {
			f.logger = l
		}
	}
}

// New builds a filter.
func New(formulas []interp.Formula, mode Mode, opts ...Option) (*Filter, error) {
	if len(formulas) == 0 {
		return nil, ErrNoFormulas
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	f := &Filter{
		formulas: formulas,
		mode:     mode,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(f)
	}
	return f, nil
}

// Keep evaluates the formulas in m and applies the mode. Evaluation stops
// as soon as the outcome is decided.
func (f *Filter) Keep(m *interp.Interpretation) (bool, error) {
	for i, formula := range f.formulas {
		v, err := m.EvalFormula(formula)
		if err != nil {
			return false, fmt.Errorf("formula %d (%s): %w", i+1, formula, err)
		}
		switch {
		case f.mode == AllTrue && !v:
			return false, nil
		case f.mode == SomeFalse && !v:
			return true, nil
		case f.mode == AllFalse && v:
			return false, nil
		case f.mode == SomeTrue && v:
			return true, nil
		}
	}
	return f.mode == AllTrue || f.mode == AllFalse, nil
}

// Result lists the kept models by input index.
type Result struct {
	Kept []int
	Read int
}

// Run applies Keep to every model, in parallel across models.
func (f *Filter) Run(ctx context.Context, models []*interp.Interpretation) (Result, error) {
	keep := make([]bool, len(models))
	err := parallel.ForEach(ctx, f.workers, models, func(ctx context.Context, i int, m *interp.Interpretation) error {
		ok, err := f.Keep(m)
		if err != nil {
			return fmt.Errorf("model %d: %w", i+1, err)
		}
		keep[i] = ok
		return nil
	})
	res := Result{Read: len(models)}
	if err != nil {
		return res, err
	}
	for i, ok := range keep {
		if ok {
			res.Kept = append(res.Kept, i)
		} else {
			f.logger.Debug("model rejected", slog.Int("model", i+1), slog.String("mode", string(f.mode)))
		}
	}
	f.logger.Info("interpfilter finished",
		slog.String("mode", string(f.mode)),
		slog.Int("read", res.Read),
		slog.Int("kept", len(res.Kept)))
	return res, nil
}
