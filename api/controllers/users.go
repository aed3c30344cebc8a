package controllers

import (
	"net/http"

	"github.com/rollmates/dicematch-backend/api/responses"
	"github.com/rollmates/dicematch-backend/api/validators"
	"github.com/rollmates/dicematch-backend/internal/users"
	pkgerrors "github.com/rollmates/dicematch-backend/pkg/errors"
	"github.com/rollmates/dicematch-backend/pkg/logger"
	"github.com/rollmates/dicematch-backend/pkg/types"
)

type upsertUserRequest struct {
	UserID    string          `json:"userId"`
	Nickname  string          `json:"nickname" validate:"required,max=64"`
	AvatarURL string          `json:"avatarUrl" validate:"omitempty,url"`
	Gender    int             `json:"gender" validate:"required,min=1,max=2"`
	Country   string          `json:"country" validate:"omitempty,max=64"`
	Province  string          `json:"province" validate:"omitempty,max=64"`
	City      string          `json:"city" validate:"omitempty,max=64"`
	Location  *types.Location `json:"location,omitempty"`
}

// UpsertUser registers or refreshes a client profile.
func UpsertUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req upsertUserRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		userID := resolveUserID(r, req.UserID)
		if userID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "user id required"))
			return
		}

		user, err := svc.UpsertProfile(ctx, users.UpsertProfileParams{
			UserID:    userID,
			Nickname:  req.Nickname,
			AvatarURL: req.AvatarURL,
			Gender:    req.Gender,
			Country:   req.Country,
			Province:  req.Province,
			City:      req.City,
			Location:  req.Location,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// GetUser returns the caller's stored profile and counters.
func GetUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := resolveUserID(r, r.URL.Query().Get("userId"))
		if userID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "user id required"))
			return
		}

		user, err := svc.GetProfile(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
