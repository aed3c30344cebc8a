package users

import (
	"context"
	"strings"
	"time"

	"github.com/rollmates/dicematch-backend/pkg/db/models"
	"github.com/rollmates/dicematch-backend/pkg/enums"
	pkgerrors "github.com/rollmates/dicematch-backend/pkg/errors"
	"github.com/rollmates/dicematch-backend/pkg/types"
)

// Service handles profile upserts and lookups for the user directory.
type Service interface {
	UpsertProfile(ctx context.Context, params UpsertProfileParams) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
}

// UpsertProfileParams carries the client profile fields. Mirrors what the
// mobile client sends on login.
type UpsertProfileParams struct {
	UserID    string
	Nickname  string
	AvatarURL string
	Gender    int
	Country   string
	Province  string
	City      string
	Location  *types.Location
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the user directory dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) UpsertProfile(ctx context.Context, params UpsertProfileParams) (*models.User, error) {
	if strings.TrimSpace(params.UserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	gender, err := enums.ParseGender(params.Gender)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid gender")
	}

	now := s.now().UTC()
	user := &models.User{
		UserID:    params.UserID,
		Nickname:  params.Nickname,
		AvatarURL: params.AvatarURL,
		Gender:    gender,
		Country:   params.Country,
		Province:  params.Province,
		City:      params.City,
		IsActive:  true,
		UpdatedAt: now,
	}
	if params.Location != nil {
		lat, lon := params.Location.Lat, params.Location.Lon
		user.Lat, user.Lon = &lat, &lon
	}

	if err := s.repo.Upsert(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert user profile")
	}

	stored, err := s.repo.GetByUserID(ctx, params.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user profile")
	}
	if stored == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user profile missing after upsert")
	}
	return stored, nil
}

func (s *service) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user profile")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}
