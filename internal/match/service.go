package match

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rollmates/dicematch-backend/internal/rolls"
	"github.com/rollmates/dicematch-backend/internal/users"
	"github.com/rollmates/dicematch-backend/pkg/db/models"
	"github.com/rollmates/dicematch-backend/pkg/enums"
	pkgerrors "github.com/rollmates/dicematch-backend/pkg/errors"
	"github.com/rollmates/dicematch-backend/pkg/logger"
	"github.com/rollmates/dicematch-backend/pkg/metrics"
	"github.com/rollmates/dicematch-backend/pkg/pagination"
	"github.com/rollmates/dicematch-backend/pkg/types"
)

const (
	diceMin = 1
	diceMax = 6
)

// Notifier publishes match lifecycle events. Implementations must not block
// the request path.
type Notifier interface {
	MatchCreated(ctx context.Context, match *models.Match)
}

// Service is the submission facade: it appends the roll, resolves a
// counterpart and shapes the API views.
type Service interface {
	SubmitRoll(ctx context.Context, params SubmitRollParams) (*SubmitRollResult, error)
	ListMatches(ctx context.Context, params ListMatchesParams) (*ListMatchesResult, error)
}

// SubmitRollParams carries one dice roll from the client. Gender is
// optional when the user has a registered profile.
type SubmitRollParams struct {
	UserID    string
	Gender    int
	DiceValue int
	Location  *types.Location
}

// SubmitRollResult reports the submission outcome. Match is set only when
// Outcome is matched.
type SubmitRollResult struct {
	Outcome enums.MatchOutcome `json:"outcome"`
	Roll    models.RollEvent   `json:"roll"`
	Match   *MatchView         `json:"match,omitempty"`
}

// ListMatchesParams configures the match history listing.
type ListMatchesParams struct {
	UserID string
	Limit  int
	Cursor string
}

// ListMatchesResult wraps returned matches and the cursor for the next page.
type ListMatchesResult struct {
	Items  []MatchView `json:"items"`
	Cursor string      `json:"cursor"`
}

// MatchView is the API shape of a match from one user's perspective.
type MatchView struct {
	ID             uuid.UUID        `json:"id"`
	DiceValue      int              `json:"diceValue"`
	DistanceMeters *float64         `json:"distanceMeters"`
	MatchedAt      time.Time        `json:"matchedAt"`
	Counterpart    *CounterpartView `json:"counterpart,omitempty"`
}

// CounterpartView is the matched user's public profile slice.
type CounterpartView struct {
	UserID    string       `json:"userId"`
	Nickname  string       `json:"nickname"`
	AvatarURL string       `json:"avatarUrl"`
	Gender    enums.Gender `json:"gender"`
	City      string       `json:"city,omitempty"`
}

type service struct {
	store    rolls.Store
	resolver *Resolver
	matches  Repository
	users    users.Repository
	notifier Notifier
	metrics  *metrics.MatchEngineMetrics
	logger   *logger.Logger
	now      func() time.Time
}

// NewService wires the match engine facade. notifier, metrics and logg may
// be nil.
func NewService(
	store rolls.Store,
	resolver *Resolver,
	matches Repository,
	userRepo users.Repository,
	notifier Notifier,
	m *metrics.MatchEngineMetrics,
	logg *logger.Logger,
) (Service, error) {
	if store == nil || resolver == nil || matches == nil || userRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "match service dependencies missing")
	}
	return &service{
		store:    store,
		resolver: resolver,
		matches:  matches,
		users:    userRepo,
		notifier: notifier,
		metrics:  m,
		logger:   logg,
		now:      time.Now,
	}, nil
}

func (s *service) SubmitRoll(ctx context.Context, params SubmitRollParams) (*SubmitRollResult, error) {
	if strings.TrimSpace(params.UserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if params.DiceValue < diceMin || params.DiceValue > diceMax {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dice value out of range").
			WithDetails(map[string]int{"min": diceMin, "max": diceMax})
	}

	user, err := s.users.GetByUserID(ctx, params.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load submitting user")
	}

	var gender enums.Gender
	switch {
	case params.Gender != 0:
		g, err := enums.ParseGender(params.Gender)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid gender")
		}
		gender = g
	case user != nil && user.Gender.IsValid():
		gender = user.Gender
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gender required for unregistered user")
	}

	now := s.now().UTC()
	event := &models.RollEvent{
		UserID:    params.UserID,
		Gender:    gender,
		DiceValue: params.DiceValue,
		CreatedAt: now,
	}
	switch {
	case params.Location != nil:
		lat, lon := params.Location.Lat, params.Location.Lon
		event.Lat, event.Lon = &lat, &lon
	case user != nil && user.Lat != nil && user.Lon != nil:
		// Fall back to the last known profile location.
		lat, lon := *user.Lat, *user.Lon
		event.Lat, event.Lon = &lat, &lon
	}

	if err := s.store.Append(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append roll event")
	}
	s.metrics.IncRollSubmitted(strconv.Itoa(params.DiceValue))

	if user != nil {
		if err := s.users.RecordRoll(ctx, user.UserID, now); err != nil && s.logger != nil {
			// Counters are best effort; the roll itself is already durable.
			s.logger.Warn(ctx, "recording roll counters failed: "+err.Error())
		}
	}

	match, err := s.resolver.Resolve(ctx, event)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve match")
	}

	result := &SubmitRollResult{Outcome: enums.MatchOutcomeNoMatch, Roll: *event}
	if match == nil {
		return result, nil
	}

	if err := s.users.IncrementMatchCount(ctx, match.UserAID, match.UserBID); err != nil && s.logger != nil {
		s.logger.Warn(ctx, "incrementing match counters failed: "+err.Error())
	}
	if s.notifier != nil {
		s.notifier.MatchCreated(ctx, match)
	}

	result.Outcome = enums.MatchOutcomeMatched
	result.Roll.Claimed = true
	result.Match = s.buildView(ctx, match, params.UserID)
	return result, nil
}

func (s *service) ListMatches(ctx context.Context, params ListMatchesParams) (*ListMatchesResult, error) {
	if strings.TrimSpace(params.UserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := ListParams{Limit: pagination.NormalizeLimit(params.Limit)}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	matches, next, err := s.matches.ListByUser(ctx, params.UserID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list matches")
	}

	views := make([]MatchView, 0, len(matches))
	for i := range matches {
		views = append(views, *s.buildView(ctx, &matches[i], params.UserID))
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListMatchesResult{Items: views, Cursor: cursor}, nil
}

func (s *service) buildView(ctx context.Context, match *models.Match, viewerID string) *MatchView {
	view := &MatchView{
		ID:             match.ID,
		DiceValue:      match.DiceValue,
		DistanceMeters: match.DistanceMeters,
		MatchedAt:      match.MatchedAt,
	}

	otherID := match.OtherUser(viewerID)
	other, err := s.users.GetByUserID(ctx, otherID)
	if err != nil && s.logger != nil {
		s.logger.Warn(ctx, "loading counterpart profile failed: "+err.Error())
	}
	if other != nil {
		view.Counterpart = &CounterpartView{
			UserID:    other.UserID,
			Nickname:  other.Nickname,
			AvatarURL: other.AvatarURL,
			Gender:    other.Gender,
			City:      other.City,
		}
	} else {
		view.Counterpart = &CounterpartView{UserID: otherID}
	}
	return view
}
