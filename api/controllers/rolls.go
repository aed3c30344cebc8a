package controllers

import (
	"net/http"
	"strings"

	"github.com/rollmates/dicematch-backend/api/middleware"
	"github.com/rollmates/dicematch-backend/api/responses"
	"github.com/rollmates/dicematch-backend/api/validators"
	"github.com/rollmates/dicematch-backend/internal/match"
	"github.com/rollmates/dicematch-backend/internal/rolls"
	pkgerrors "github.com/rollmates/dicematch-backend/pkg/errors"
	"github.com/rollmates/dicematch-backend/pkg/logger"
	"github.com/rollmates/dicematch-backend/pkg/pagination"
	"github.com/rollmates/dicematch-backend/pkg/types"
)

type submitRollRequest struct {
	UserID    string          `json:"userId"`
	Gender    int             `json:"gender" validate:"omitempty,min=1,max=2"`
	DiceValue int             `json:"diceValue" validate:"required,min=1,max=6"`
	Location  *types.Location `json:"location,omitempty"`
}

// SubmitRoll accepts one dice roll and responds with either a pairing or the
// no-match outcome.
func SubmitRoll(svc match.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req submitRollRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		userID := resolveUserID(r, req.UserID)
		if userID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "user id required"))
			return
		}
		if logg != nil {
			ctx = logg.WithUserID(ctx, userID)
		}

		result, err := svc.SubmitRoll(ctx, match.SubmitRollParams{
			UserID:    userID,
			Gender:    req.Gender,
			DiceValue: req.DiceValue,
			Location:  req.Location,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if result.Match != nil && logg != nil {
			logCtx := logg.WithMatchID(ctx, result.Match.ID.String())
			logg.Info(logCtx, "roll matched")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListRolls returns the caller's roll history, newest first.
func ListRolls(svc rolls.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := resolveUserID(r, r.URL.Query().Get("userId"))
		if userID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "user id required"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		todayOnly, err := validators.ParseQueryBool(r, "today", false)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.History(ctx, rolls.HistoryParams{
			UserID:    userID,
			Limit:     limit,
			Cursor:    r.URL.Query().Get("cursor"),
			TodayOnly: todayOnly,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func resolveUserID(r *http.Request, fallback string) string {
	if id := middleware.UserIDFromContext(r.Context()); id != "" {
		return id
	}
	return strings.TrimSpace(fallback)
}
