package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/riskdash/riskdash/internal/config"
)

// Middleware returns an http middleware enforcing cfg on every request.
//
// Behaviour:
//   - If the mode is not "apikey" or "basic", or its secret is empty, all
//     requests are allowed (pass-through).
//   - "apikey" compares the value of cfg.EffectiveHeader() to the key.
//   - "basic" compares the request's basic-auth pair to the configured one.
//   - A missing or incorrect credential returns 401 immediately.
func Middleware(cfg config.AuthConfig) func(http.Handler) http.Handler {
	var check func(r *http.Request) bool

	switch cfg.Mode {
	case "apikey":
		if key := cfg.Key(); key != "" {
			header := cfg.EffectiveHeader()
			check = func(r *http.Request) bool {
				return equal(r.Header.Get(header), key)
			}
		}
	case "basic":
		if pass := cfg.Password(); pass != "" {
			user := cfg.Username
			check = func(r *http.Request) bool {
				u, p, ok := r.BasicAuth()
				// Evaluate both comparisons so timing does not reveal which failed.
				userOK := subtle.ConstantTimeCompare([]byte(u), []byte(user))
				passOK := subtle.ConstantTimeCompare([]byte(p), []byte(pass))
				return ok && userOK&passOK == 1
			}
		}
	}

	if check == nil {
		if cfg.Mode == "apikey" || cfg.Mode == "basic" {
			slog.Warn("auth: secret not set, gate is open", "mode", cfg.Mode,
				"key_env", cfg.KeyEnv, "password_env", cfg.PasswordEnv)
		} else {
			slog.Debug("auth: gate disabled", "mode", cfg.Mode)
		}
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !check(r) {
				if cfg.Mode == "basic" {
					w.Header().Set("WWW-Authenticate", `Basic realm="riskdash"`)
				}
				slog.Warn("auth: rejected request", "path", r.URL.Path, "remote", r.RemoteAddr)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func equal(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
