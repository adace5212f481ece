package auth

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riskdash/riskdash/internal/config"
)

// passHandler writes 200 "ok".
var passHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
})

func serve(t *testing.T, cfg config.AuthConfig, mutate func(r *http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/report", nil)
	if mutate != nil {
		mutate(req)
	}
	rr := httptest.NewRecorder()
	Middleware(cfg)(passHandler).ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_ModeNone_PassesThrough(t *testing.T) {
	rr := serve(t, config.AuthConfig{Mode: "none"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
}

// captureLogs routes slog output into a buffer for the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestMiddleware_EmptySecret_PassesThrough(t *testing.T) {
	logs := captureLogs(t)
	// key_env points at an unset variable: auth is not configured.
	rr := serve(t, config.AuthConfig{Mode: "apikey", KeyEnv: "RISKDASH_UNSET_KEY"}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if !strings.Contains(logs.String(), `"level":"WARN"`) || !strings.Contains(logs.String(), "gate is open") {
		t.Errorf("expected a warning for an open gate, got logs: %s", logs.String())
	}
}

func TestMiddleware_ModeNone_NoWarning(t *testing.T) {
	logs := captureLogs(t)
	Middleware(config.AuthConfig{Mode: "none"})
	if strings.Contains(logs.String(), `"level":"WARN"`) {
		t.Errorf("mode none must not warn, got logs: %s", logs.String())
	}
}

func TestMiddleware_APIKey(t *testing.T) {
	t.Setenv("TEST_API_KEY", "supersecret")
	cfg := config.AuthConfig{Mode: "apikey", KeyEnv: "TEST_API_KEY"}

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"correct key", "supersecret", http.StatusOK},
		{"wrong key", "nope", http.StatusUnauthorized},
		{"missing key", "", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(t, cfg, func(r *http.Request) {
				if tc.key != "" {
					r.Header.Set(config.DefaultAPIKeyHeader, tc.key)
				}
			})
			if rr.Code != tc.want {
				t.Errorf("status: got %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestMiddleware_APIKey_CustomHeader(t *testing.T) {
	t.Setenv("TEST_API_KEY", "k")
	cfg := config.AuthConfig{Mode: "apikey", KeyEnv: "TEST_API_KEY", Header: "X-Dashboard-Key"}
	rr := serve(t, cfg, func(r *http.Request) { r.Header.Set("X-Dashboard-Key", "k") })
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
}

func TestMiddleware_Basic(t *testing.T) {
	t.Setenv("TEST_PASSWORD", "admin123")
	cfg := config.AuthConfig{Mode: "basic", Username: "admin", PasswordEnv: "TEST_PASSWORD"}

	tests := []struct {
		name       string
		user, pass string
		set        bool
		want       int
	}{
		{"valid credentials", "admin", "admin123", true, http.StatusOK},
		{"wrong password", "admin", "admin", true, http.StatusUnauthorized},
		{"wrong user", "root", "admin123", true, http.StatusUnauthorized},
		{"no credentials", "", "", false, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(t, cfg, func(r *http.Request) {
				if tc.set {
					r.SetBasicAuth(tc.user, tc.pass)
				}
			})
			if rr.Code != tc.want {
				t.Errorf("status: got %d, want %d", rr.Code, tc.want)
			}
			if tc.want == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate challenge on 401")
			}
		})
	}
}
