package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskdash/riskdash/internal/config"
	"github.com/riskdash/riskdash/pkg/types"
)

const sampleYAML = `
components:
  - name: High-End GPU
    supplier_count: 1
    lead_time_months: 10
    substitutability: 0.2
    geo_risk: 0.9
    inventory_buffer_months: 1
    demand_volatility: 0.8
  - name: Network Switch
    supplier_count: 4
    lead_time_months: 4
    substitutability: 0.7
    geo_risk: 0.3
    inventory_buffer_months: 6
    demand_volatility: 0.4
`

func TestDefault_IsValid(t *testing.T) {
	recs := Default()
	require.Len(t, recs, 3)
	assert.NoError(t, Validate(recs))
	assert.Equal(t, "High-End GPU", recs[0].Name)
}

func TestParse_Mapping(t *testing.T) {
	recs, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, types.ComponentRecord{
		Name: "High-End GPU", SupplierCount: 1, LeadTimeMonths: 10,
		Substitutability: 0.2, GeoRisk: 0.9, InventoryBufferMonths: 1, DemandVolatility: 0.8,
	}, recs[0])
}

func TestParse_JSONList(t *testing.T) {
	doc := `[{"name":"HBM Memory","supplier_count":2,"lead_time_months":9,
	"substitutability":0.3,"geo_risk":0.8,"inventory_buffer_months":2,"demand_volatility":0.7}]`
	recs, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 2, recs[0].SupplierCount)
	assert.Equal(t, 0.7, recs[0].DemandVolatility)
}

func TestParse_Empty(t *testing.T) {
	recs, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, recs)

	recs, err = Parse([]byte("components: []\n"))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("components: [\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("just a string"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	good := Default()[0]
	tests := []struct {
		name   string
		mutate func(r *types.ComponentRecord)
	}{
		{"empty name", func(r *types.ComponentRecord) { r.Name = "" }},
		{"zero suppliers", func(r *types.ComponentRecord) { r.SupplierCount = 0 }},
		{"negative lead time", func(r *types.ComponentRecord) { r.LeadTimeMonths = -1 }},
		{"negative buffer", func(r *types.ComponentRecord) { r.InventoryBufferMonths = -2 }},
		{"substitutability above 1", func(r *types.ComponentRecord) { r.Substitutability = 1.5 }},
		{"negative geo risk", func(r *types.ComponentRecord) { r.GeoRisk = -0.1 }},
		{"volatility above 1", func(r *types.ComponentRecord) { r.DemandVolatility = 2 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := good
			tc.mutate(&r)
			assert.ErrorIs(t, Validate([]types.ComponentRecord{r}), types.ErrInvalidInput)
		})
	}

	t.Run("duplicate names", func(t *testing.T) {
		err := Validate([]types.ComponentRecord{good, good})
		assert.ErrorIs(t, err, types.ErrInvalidInput)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("boundaries accepted", func(t *testing.T) {
		r := good
		r.Substitutability, r.GeoRisk, r.DemandVolatility = 0, 1, 1
		r.LeadTimeMonths, r.InventoryBufferMonths = 0, 0
		assert.NoError(t, Validate([]types.ComponentRecord{r}))
	})
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, sampleYAML)
	recs, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	st := NewStore(Default())
	assert.Equal(t, 3, st.Count())
	assert.Equal(t, 1, st.Version())

	r, ok := st.Get("HBM Memory")
	require.True(t, ok)
	assert.Equal(t, 2, r.SupplierCount)

	_, ok = st.Get("nope")
	assert.False(t, ok)

	// List returns a copy; mutating it does not leak into the store.
	list := st.List()
	list[0].Name = "mutated"
	_, ok = st.Get("High-End GPU")
	assert.True(t, ok)

	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return fixed }
	st.Replace(Default()[:1])
	assert.Equal(t, 1, st.Count())
	assert.Equal(t, 2, st.Version())
	assert.Equal(t, fixed, st.UpdatedAt())
}

// waitFor keeps applying save until the watcher delivers records named want.
func waitFor(t *testing.T, got <-chan []types.ComponentRecord, want string, save func()) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case recs := <-got:
			// A reload can observe a truncated file mid-write; wait for the
			// complete document.
			if len(recs) == 1 && recs[0].Name == want {
				return
			}
		case <-tick.C:
			save()
		case <-deadline:
			t.Fatalf("no reload to %q observed within 5s", want)
		}
	}
}

func startWatch(t *testing.T, path string) <-chan []types.ComponentRecord {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	got := make(chan []types.ComponentRecord, 8)
	go func() {
		_ = Watch(ctx, path, func(recs []types.ComponentRecord) {
			select {
			case got <- recs:
			default:
			}
		})
	}()
	return got
}

func doc(name string) []byte {
	return []byte("components:\n  - name: " + name + "\n    supplier_count: 3\n    lead_time_months: 2\n")
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeFile(t, sampleYAML)
	got := startWatch(t, path)

	waitFor(t, got, "Solo", func() {
		require.NoError(t, os.WriteFile(path, doc("Solo"), 0o600))
	})
}

func TestWatch_SurvivesAtomicSaveAndBadReload(t *testing.T) {
	path := writeFile(t, sampleYAML)
	got := startWatch(t, path)

	// Editor-style save: write a temp file, rename it over path.
	tmp := path + ".tmp"
	waitFor(t, got, "Renamed", func() {
		require.NoError(t, os.WriteFile(tmp, doc("Renamed"), 0o600))
		require.NoError(t, os.Rename(tmp, path))
	})

	// An invalid document is skipped without ending the watch.
	require.NoError(t, os.WriteFile(path, []byte("components: [oops"), 0o600))

	// Plain edits after the rename are still picked up.
	waitFor(t, got, "Edited", func() {
		require.NoError(t, os.WriteFile(path, doc("Edited"), 0o600))
	})
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), func([]types.ComponentRecord) {})
	assert.Error(t, err)
}

func TestFetch_Bearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer regtoken" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(sampleYAML))
	}))
	defer srv.Close()

	t.Setenv("REGISTRY_TOKEN", "regtoken")
	cfg := config.RegistryConfig{
		URL:  srv.URL,
		Auth: config.AuthConfig{Mode: "bearer", TokenEnv: "REGISTRY_TOKEN"},
	}
	recs, err := Resolve(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	cfg.Auth.TokenEnv = ""
	_, err = Resolve(context.Background(), cfg)
	assert.ErrorContains(t, err, "unexpected status 401")
}

func TestFetch_APIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Registry-Key") != "k1" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"components": []}`))
	}))
	defer srv.Close()

	t.Setenv("REG_KEY", "k1")
	f, err := NewFetcher(config.RegistryConfig{
		URL:  srv.URL,
		Auth: config.AuthConfig{Mode: "apikey", Header: "X-Registry-Key", KeyEnv: "REG_KEY"},
	})
	require.NoError(t, err)
	recs, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestNewFetcher_Errors(t *testing.T) {
	_, err := NewFetcher(config.RegistryConfig{})
	assert.Error(t, err)

	_, err = NewFetcher(config.RegistryConfig{
		URL: "https://example.invalid",
		TLS: config.TLSConfig{CAFile: filepath.Join(t.TempDir(), "missing.pem")},
	})
	assert.Error(t, err)
}

func TestResolve_DefaultAndPath(t *testing.T) {
	recs, err := Resolve(context.Background(), config.RegistryConfig{})
	require.NoError(t, err)
	assert.Equal(t, Default(), recs)

	recs, err = Resolve(context.Background(), config.RegistryConfig{Path: writeFile(t, sampleYAML)})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "components.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ExampleFile(t *testing.T) {
	recs, err := Load(filepath.Join("..", "..", "config", "components.example.yaml"))
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, Default(), recs[:3], "example starts with the built-in dataset")
	assert.Equal(t, "Power Supply Unit", recs[3].Name)
}
