// Package auth provides the binary access gate in front of the riskdash API.
//
// Middleware(cfg) returns net/http middleware. Modes:
//   - "none" (or empty): every request passes
//   - "apikey": the configured header must carry the key from key_env
//   - "basic": HTTP basic credentials must match username and password_env
//
// When the secret for the selected mode is not configured all requests pass,
// which keeps local development usable. Rejections are 401 with a JSON body.
package auth
