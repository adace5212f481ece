package registry

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/riskdash/riskdash/internal/config"
	"github.com/riskdash/riskdash/pkg/types"
)

// maxDocumentBytes caps how much of a remote registry response is read.
const maxDocumentBytes = 4 << 20

// Fetcher retrieves registry documents from an HTTP endpoint. Build it once
// with NewFetcher and reuse it; the HTTP client is shared across calls.
type Fetcher struct {
	url    string
	client *http.Client
}

// NewFetcher returns a Fetcher for cfg.URL using cfg's auth and TLS settings.
func NewFetcher(cfg config.RegistryConfig) (*Fetcher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("registry: fetch: url is required")
	}
	client, err := buildHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("registry: build http client: %w", err)
	}
	return &Fetcher{url: cfg.URL, client: client}, nil
}

// Fetch performs an HTTP GET and parses the body as a registry document.
func (f *Fetcher) Fetch(ctx context.Context) ([]types.ComponentRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("registry: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry: unexpected status %d from %s", resp.StatusCode, f.url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("registry: read body: %w", err)
	}
	return Parse(data)
}

// authRoundTripper injects authentication headers into every outgoing request.
type authRoundTripper struct {
	base http.RoundTripper
	auth config.AuthConfig
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	switch t.auth.Mode {
	case "apikey":
		req = req.Clone(req.Context())
		req.Header.Set(t.auth.EffectiveHeader(), t.auth.Key())
	case "bearer":
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.auth.Token())
	case "basic":
		req = req.Clone(req.Context())
		req.SetBasicAuth(t.auth.Username, t.auth.Password())
	}
	return t.base.RoundTrip(req)
}

// buildHTTPClient constructs an http.Client for the registry's auth and TLS settings.
func buildHTTPClient(cfg config.RegistryConfig) (*http.Client, error) {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: cfg.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
	}
	if cfg.TLS.CAFile != "" {
		caPEM, err := os.ReadFile(cfg.TLS.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("no valid certs found in ca file %q", cfg.TLS.CAFile)
		}
		tlsCfg.RootCAs = pool
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultRegistryTimeout
	}
	return &http.Client{
		Transport: &authRoundTripper{
			base: &http.Transport{TLSClientConfig: tlsCfg},
			auth: cfg.Auth,
		},
		Timeout: timeout,
	}, nil
}

// Resolve loads the records cfg points at: the file at Path, the document
// at URL, or Default() when neither is set.
func Resolve(ctx context.Context, cfg config.RegistryConfig) ([]types.ComponentRecord, error) {
	switch {
	case cfg.Path != "":
		return Load(cfg.Path)
	case cfg.URL != "":
		f, err := NewFetcher(cfg)
		if err != nil {
			return nil, err
		}
		return f.Fetch(ctx)
	default:
		return Default(), nil
	}
}
