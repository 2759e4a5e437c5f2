package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/esport-notifier/internal/domain/user"
	"github.com/riskibarqy/esport-notifier/internal/usecase"
)

type fakeVerifier struct {
	principal user.Principal
	err       error
	token     string
}

func (f *fakeVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	f.token = token
	return f.principal, f.err
}

func TestRequireAuth(t *testing.T) {
	verifier := &fakeVerifier{principal: user.Principal{UserID: "u1", Email: "u1@example.com"}}
	var seen user.Principal
	handler := RequireAuth(verifier, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = principalFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer  ", status: http.StatusUnauthorized},
		{name: "valid", header: "bearer tok-1", status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/preferences", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
	if verifier.token != "tok-1" || seen.UserID != "u1" {
		t.Fatalf("expected verified principal in context, got token=%q principal=%+v", verifier.token, seen)
	}
}

func TestRequireAuth_VerifierRejects(t *testing.T) {
	verifier := &fakeVerifier{err: fmt.Errorf("%w: token expired", usecase.ErrUnauthorized)}
	handler := RequireAuth(verifier, okHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/preferences", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireSharedSecret(t *testing.T) {
	handler := RequireSharedSecret("X-Cron-Secret", "s3cret", okHandler())

	cases := []struct {
		name   string
		value  string
		status int
	}{
		{name: "missing", value: "", status: http.StatusUnauthorized},
		{name: "wrong", value: "nope", status: http.StatusUnauthorized},
		{name: "valid", value: "s3cret", status: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/notifications/sweep", nil)
			if tc.value != "" {
				req.Header.Set("X-Cron-Secret", tc.value)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestRequireSharedSecret_Unconfigured(t *testing.T) {
	handler := RequireSharedSecret("", "", okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/notifications/sweep", nil)
	req.Header.Set("X-API-Key", "anything")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for missing secret configuration, got %d", rec.Code)
	}
}
