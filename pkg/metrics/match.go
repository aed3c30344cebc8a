package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MatchEngineMetrics records roll submissions and match resolution outcomes.
type MatchEngineMetrics struct {
	rollsSubmitted  *prometheus.CounterVec
	matches         prometheus.Counter
	noMatch         prometheus.Counter
	claimConflicts  prometheus.Counter
	resolveDuration prometheus.Histogram
}

// NewMatchEngineMetrics registers the match engine metrics on the provided registerer.
func NewMatchEngineMetrics(reg prometheus.Registerer) *MatchEngineMetrics {
	if reg == nil {
		return &MatchEngineMetrics{}
	}
	rollsSubmitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rolls_submitted_total",
		Help: "Roll events accepted into the store.",
	}, []string{"dice_value"})
	matches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matches_total",
		Help: "Successful match pairings.",
	})
	noMatch := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "no_match_total",
		Help: "Roll submissions that ended without a match.",
	})
	claimConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "claim_conflicts_total",
		Help: "Candidate claim attempts lost to a concurrent submitter.",
	})
	resolveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_resolve_duration_seconds",
		Help:    "Duration of candidate resolution per submitted roll.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(rollsSubmitted, matches, noMatch, claimConflicts, resolveDuration)
	return &MatchEngineMetrics{
		rollsSubmitted:  rollsSubmitted,
		matches:         matches,
		noMatch:         noMatch,
		claimConflicts:  claimConflicts,
		resolveDuration: resolveDuration,
	}
}

// IncRollSubmitted counts an accepted roll for the given dice value.
func (m *MatchEngineMetrics) IncRollSubmitted(diceValue string) {
	if m == nil || m.rollsSubmitted == nil {
		return
	}
	m.rollsSubmitted.WithLabelValues(diceValue).Inc()
}

// IncMatched counts a successful pairing.
func (m *MatchEngineMetrics) IncMatched() {
	if m == nil || m.matches == nil {
		return
	}
	m.matches.Inc()
}

// IncNoMatch counts a submission that found no counterpart.
func (m *MatchEngineMetrics) IncNoMatch() {
	if m == nil || m.noMatch == nil {
		return
	}
	m.noMatch.Inc()
}

// IncClaimConflict counts a lost claim race.
func (m *MatchEngineMetrics) IncClaimConflict() {
	if m == nil || m.claimConflicts == nil {
		return
	}
	m.claimConflicts.Inc()
}

// ObserveResolveDuration records how long candidate resolution took.
func (m *MatchEngineMetrics) ObserveResolveDuration(d time.Duration) {
	if m == nil || m.resolveDuration == nil {
		return
	}
	m.resolveDuration.Observe(d.Seconds())
}
