package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/staynest/staynest-go/internal/crypto"
)

func okHandler(t *testing.T, wantUser string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok || id != wantUser {
			t.Errorf("UserIDFromContext() = %q, %v; want %q, true", id, ok, wantUser)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestJWTAuth(t *testing.T) {
	issuer := crypto.NewTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	foreign, err := crypto.NewTokenIssuer("other-secret", time.Hour).Issue("user-1")
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + token, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"foreign signature", "Bearer " + foreign, http.StatusUnauthorized},
	}

	h := JWTAuth(issuer)(okHandler(t, "user-1"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized {
				var body map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["error"] == "" {
					t.Errorf("expected JSON error body, got %q (%v)", rec.Body.String(), err)
				}
			}
		})
	}
}

func TestUserIDFromContextMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := UserIDFromContext(req.Context()); ok {
		t.Error("expected no user id in a bare context")
	}
}

type observed struct {
	status int
	calls  int
}

func (o *observed) RecordHTTPRequest(status int, d time.Duration) {
	o.status = status
	o.calls++
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestObserveLogsAndRecords(t *testing.T) {
	buf := captureLogs(t)
	obs := &observed{}

	h := Observe(obs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/auth/register", nil))

	if obs.calls != 1 || obs.status != http.StatusConflict {
		t.Errorf("observer got %d calls, status %d", obs.calls, obs.status)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log is not JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", entry["level"])
	}
	if entry["path"] != "/auth/register" {
		t.Errorf("path = %v, want /auth/register", entry["path"])
	}
	if entry["status"] != float64(http.StatusConflict) {
		t.Errorf("status = %v, want 409", entry["status"])
	}
}

func TestObserveWithoutObserverDefaultsTo200(t *testing.T) {
	buf := captureLogs(t)

	h := Observe(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if !strings.Contains(buf.String(), `"status":200`) {
		t.Errorf("expected status 200 in log, got %q", buf.String())
	}
}

func TestRecoverer(t *testing.T) {
	captureLogs(t)

	h := Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/properties", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
