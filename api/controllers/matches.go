package controllers

import (
	"net/http"

	"github.com/rollmates/dicematch-backend/api/responses"
	"github.com/rollmates/dicematch-backend/api/validators"
	"github.com/rollmates/dicematch-backend/internal/match"
	pkgerrors "github.com/rollmates/dicematch-backend/pkg/errors"
	"github.com/rollmates/dicematch-backend/pkg/logger"
	"github.com/rollmates/dicematch-backend/pkg/pagination"
)

// ListMatches returns the caller's pairings, newest first.
func ListMatches(svc match.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.ListMatches(ctx, match.ListMatchesParams{
			UserID: userID,
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
