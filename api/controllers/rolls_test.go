package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rollmates/dicematch-backend/api/middleware"
	"github.com/rollmates/dicematch-backend/internal/match"
	"github.com/rollmates/dicematch-backend/internal/rolls"
	"github.com/rollmates/dicematch-backend/pkg/enums"
	pkgerrors "github.com/rollmates/dicematch-backend/pkg/errors"
)

type fakeMatchService struct {
	submitParams *match.SubmitRollParams
	submitResult *match.SubmitRollResult
	submitErr    error

	listParams *match.ListMatchesParams
	listResult *match.ListMatchesResult
	listErr    error
}

func (f *fakeMatchService) SubmitRoll(ctx context.Context, params match.SubmitRollParams) (*match.SubmitRollResult, error) {
	f.submitParams = &params
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitResult, nil
}

func (f *fakeMatchService) ListMatches(ctx context.Context, params match.ListMatchesParams) (*match.ListMatchesResult, error) {
	f.listParams = &params
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listResult, nil
}

type fakeRollService struct {
	params *rolls.HistoryParams
	result *rolls.HistoryResult
	err    error
}

func (f *fakeRollService) History(ctx context.Context, params rolls.HistoryParams) (*rolls.HistoryResult, error) {
	f.params = &params
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func TestSubmitRollReturnsMatch(t *testing.T) {
	svc := &fakeMatchService{
		submitResult: &match.SubmitRollResult{
			Outcome: enums.MatchOutcomeMatched,
			Match:   &match.MatchView{ID: uuid.New(), DiceValue: 6},
		},
	}
	handler := SubmitRoll(svc, nil)

	body := `{"diceValue":6,"location":{"lat":39.9,"lon":116.4}}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/rolls", strings.NewReader(body)), "u1")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.submitParams.UserID != "u1" || svc.submitParams.DiceValue != 6 {
		t.Fatalf("unexpected params: %+v", svc.submitParams)
	}
	if svc.submitParams.Location == nil || svc.submitParams.Location.Lat != 39.9 {
		t.Fatal("expected location to reach the service")
	}

	var envelope struct {
		Data match.SubmitRollResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Outcome != enums.MatchOutcomeMatched {
		t.Fatalf("expected matched outcome, got %s", envelope.Data.Outcome)
	}
}

func TestSubmitRollRejectsBadDice(t *testing.T) {
	handler := SubmitRoll(&fakeMatchService{}, nil)

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/rolls", strings.NewReader(`{"diceValue":9}`)), "u1")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSubmitRollRequiresUser(t *testing.T) {
	handler := SubmitRoll(&fakeMatchService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rolls", strings.NewReader(`{"diceValue":3}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSubmitRollBodyUserFallback(t *testing.T) {
	svc := &fakeMatchService{submitResult: &match.SubmitRollResult{Outcome: enums.MatchOutcomeNoMatch}}
	handler := SubmitRoll(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rolls", strings.NewReader(`{"userId":"wx-9","diceValue":2}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.submitParams.UserID != "wx-9" {
		t.Fatalf("expected body user id, got %q", svc.submitParams.UserID)
	}
}

func TestSubmitRollServiceErrorMapsToStatus(t *testing.T) {
	svc := &fakeMatchService{submitErr: pkgerrors.New(pkgerrors.CodeNotFound, "user not found")}
	handler := SubmitRoll(svc, nil)

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/rolls", strings.NewReader(`{"diceValue":3}`)), "ghost")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListRollsParsesQuery(t *testing.T) {
	svc := &fakeRollService{result: &rolls.HistoryResult{}}
	handler := ListRolls(svc, nil)

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/rolls?limit=10&today=true&cursor=abc", nil), "u1")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.params.UserID != "u1" || svc.params.Limit != 10 || !svc.params.TodayOnly || svc.params.Cursor != "abc" {
		t.Fatalf("unexpected params: %+v", svc.params)
	}
}

func TestListRollsRejectsBadLimit(t *testing.T) {
	handler := ListRolls(&fakeRollService{}, nil)

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/rolls?limit=0", nil), "u1")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
