package interp

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Process-wide search counters. Every search also returns its own Stats, so
// callers that need exact per-call numbers never have to read these.
var (
	isoChecksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finterp_iso_checks_total",
		Help: "Isomorphism checks and canonicalizations that reached the permutation search",
	})

	isoPermsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finterp_iso_permutations_total",
		Help: "Complete candidate permutations examined by the search",
	})

	canonicalizeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "finterp_canonicalize_seconds",
		Help:    "Time spent computing one canonical form",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
	})

	normalizeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "finterp_normalize_seconds",
		Help:    "Time spent profiling and normalizing one interpretation",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
	})
)

// Stats counts the work done by searches.
type Stats struct {
	// Checks is the number of searches that reached the permutation stage.
	Checks int64
	// Permutations is the number of complete permutations examined.
	Permutations int64
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Checks += o.Checks
	s.Permutations += o.Permutations
}

// Totals is a concurrency-safe Stats accumulator for callers that run
// searches in parallel.
type Totals struct {
	checks atomic.Int64
	perms  atomic.Int64
}

// Add records one search's stats.
func (t *Totals) Add(s Stats) {
	t.checks.Add(s.Checks)
	t.perms.Add(s.Permutations)
}

// Snapshot returns the accumulated stats.
func (t *Totals) Snapshot() Stats {
	return Stats{Checks: t.checks.Load(), Permutations: t.perms.Load()}
}

func recordStats(s Stats) {
	isoChecksTotal.Add(float64(s.Checks))
	isoPermsTotal.Add(float64(s.Permutations))
}

var (
	tracer     trace.Tracer
	tracerOnce sync.Once
)

// getTracer returns the package tracer, resolved lazily so a provider
// installed by main after package init is honoured.
func getTracer() trace.Tracer {
	tracerOnce.Do(func() {
		tracer = otel.Tracer("github.com/gitrdm/gofinite/pkg/interp")
	})
	return tracer
}
