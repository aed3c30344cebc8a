package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rollmates/dicematch-backend/internal/rolls"
	"github.com/rollmates/dicematch-backend/pkg/db"
	"github.com/rollmates/dicematch-backend/pkg/db/models"
)

// ErrClaimFailed signals a lost claim race on a candidate roll. The caller
// moves on to the next candidate.
var ErrClaimFailed = errors.New("candidate roll already claimed")

// ErrRollConsumed signals that the submitter's own roll was claimed by a
// concurrent resolver while this one was still pairing. Resolution stops;
// the other side recorded the match.
var ErrRollConsumed = errors.New("own roll claimed concurrently")

// TxRunner executes fn transactionally. Database-backed deployments pass the
// db client's WithTx; the in-memory setup uses PassthroughTx.
type TxRunner func(ctx context.Context, fn func(tx *gorm.DB) error) error

// PassthroughTx runs fn directly. Stores without transactions rely on their
// own atomic claim transition instead.
func PassthroughTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// Ledger performs the two-sided claim that turns a candidate pairing into a
// persisted match.
type Ledger struct {
	store   rolls.Store
	matches Repository
	runTx   TxRunner
}

// NewLedger wires the claim path. runTx may be nil, which degrades to
// PassthroughTx.
func NewLedger(store rolls.Store, matches Repository, runTx TxRunner) *Ledger {
	if runTx == nil {
		runTx = PassthroughTx
	}
	return &Ledger{store: store, matches: matches, runTx: runTx}
}

// TryClaim claims the candidate, then the submitter's own roll, and records
// the match. The candidate claim is the contended step and happens first;
// returns ErrClaimFailed when another submitter won it. The own-roll claim
// plus the match insert run in one transaction so a failure there leaves no
// half-written match.
func (l *Ledger) TryClaim(ctx context.Context, submitter *models.RollEvent, candidate RankedCandidate, now time.Time) (*models.Match, error) {
	claimed, err := l.store.MarkClaimed(ctx, candidate.Event.ID)
	if err != nil {
		return nil, fmt.Errorf("claiming candidate roll: %w", err)
	}
	if !claimed {
		return nil, ErrClaimFailed
	}

	var match *models.Match
	err = l.runTx(ctx, func(tx *gorm.DB) error {
		own, err := l.store.WithTx(tx).MarkClaimed(ctx, submitter.ID)
		if err != nil {
			return fmt.Errorf("claiming own roll: %w", err)
		}
		if !own {
			return ErrRollConsumed
		}

		match = &models.Match{
			RollEventAID:   submitter.ID,
			RollEventBID:   candidate.Event.ID,
			UserAID:        submitter.UserID,
			UserBID:        candidate.Event.UserID,
			DiceValue:      submitter.DiceValue,
			DistanceMeters: candidate.DistanceMeters,
			MatchedAt:      now,
		}
		if err := l.matches.WithTx(tx).Create(ctx, match); err != nil {
			// The unique indexes on the roll columns catch a pairing that
			// another node already recorded.
			if db.IsUniqueViolation(err, "") {
				return ErrRollConsumed
			}
			return fmt.Errorf("recording match: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}
