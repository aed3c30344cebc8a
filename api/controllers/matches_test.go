package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rollmates/dicematch-backend/internal/match"
)

func TestListMatchesPassesParams(t *testing.T) {
	svc := &fakeMatchService{listResult: &match.ListMatchesResult{}}
	handler := ListMatches(svc, nil)

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/matches?limit=5&cursor=xyz", nil), "u1")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.listParams.UserID != "u1" || svc.listParams.Limit != 5 || svc.listParams.Cursor != "xyz" {
		t.Fatalf("unexpected params: %+v", svc.listParams)
	}
}

func TestListMatchesRequiresUser(t *testing.T) {
	handler := ListMatches(&fakeMatchService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
