package match

import (
	"context"
	"errors"
	"time"

	"github.com/rollmates/dicematch-backend/internal/rolls"
	"github.com/rollmates/dicematch-backend/pkg/config"
	"github.com/rollmates/dicematch-backend/pkg/db/models"
	"github.com/rollmates/dicematch-backend/pkg/logger"
	"github.com/rollmates/dicematch-backend/pkg/metrics"
)

// Resolver pairs a freshly appended roll against the open candidate pool.
type Resolver struct {
	store   rolls.Store
	ledger  *Ledger
	cfg     config.MatchConfig
	metrics *metrics.MatchEngineMetrics
	logger  *logger.Logger
	now     func() time.Time
}

// NewResolver wires the resolution loop. metrics and logg may be nil.
func NewResolver(store rolls.Store, ledger *Ledger, cfg config.MatchConfig, m *metrics.MatchEngineMetrics, logg *logger.Logger) *Resolver {
	return &Resolver{
		store:   store,
		ledger:  ledger,
		cfg:     cfg,
		metrics: m,
		logger:  logg,
		now:     time.Now,
	}
}

// Resolve walks the ranked candidates and claims the first one still open.
// A nil match with a nil error is the no-match outcome; the submitter's roll
// stays in the pool for later arrivals.
func (r *Resolver) Resolve(ctx context.Context, submitter *models.RollEvent) (*models.Match, error) {
	started := r.now()
	defer func() {
		r.metrics.ObserveResolveDuration(time.Since(started))
	}()

	candidates, err := r.store.QueryCandidates(ctx, rolls.CandidateQuery{
		DiceValue:      submitter.DiceValue,
		ExcludeUserID:  submitter.UserID,
		RequiredGender: submitter.Gender.Opposite(),
		Since:          started.Add(-r.cfg.Horizon),
		Limit:          r.cfg.CandidateLimit,
	})
	if err != nil {
		return nil, err
	}

	for _, candidate := range Rank(submitter, candidates) {
		match, err := r.ledger.TryClaim(ctx, submitter, candidate, started.UTC())
		if errors.Is(err, ErrClaimFailed) {
			r.metrics.IncClaimConflict()
			continue
		}
		if errors.Is(err, ErrRollConsumed) {
			// Another resolver matched our roll first; that match stands.
			if r.logger != nil {
				r.logger.Info(ctx, "own roll consumed during resolution")
			}
			r.metrics.IncNoMatch()
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		r.metrics.IncMatched()
		return match, nil
	}

	r.metrics.IncNoMatch()
	return nil, nil
}
