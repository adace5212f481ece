package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/riskdash/riskdash/internal/alerts"
	"github.com/riskdash/riskdash/internal/report"
	"github.com/riskdash/riskdash/internal/risk"
	"github.com/riskdash/riskdash/pkg/types"
)

// MaxSimulateTrials caps the trials an ad-hoc /simulate request may ask for.
const MaxSimulateTrials = 1_000_000

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It builds reports on demand from the Builder's current records.
type Handler struct {
	builder *report.Builder
	alerts  *alerts.Engine
	router  chi.Router
	private chi.Router
}

// New creates a Handler and registers all routes. gate wraps every route
// except health; nil means no authentication. ae may be nil.
func New(b *report.Builder, ae *alerts.Engine, gate func(http.Handler) http.Handler) *Handler {
	if gate == nil {
		gate = func(next http.Handler) http.Handler { return next }
	}
	h := &Handler{builder: b, alerts: ae, router: chi.NewRouter()}

	h.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	h.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonErr(w, http.StatusNotFound, "not found")
	})

	h.router.Get("/api/v1/health", h.health)

	h.private = h.router.With(gate)
	h.private.Get("/api/v1/summary", h.summary)
	h.private.Get("/api/v1/components", h.listComponents)
	h.private.Get("/api/v1/components/{name}", h.getComponent)
	h.private.Get("/api/v1/report", h.report)
	h.private.Get("/api/v1/simulate", h.simulate)
	h.private.Get("/api/v1/alerts", h.listAlerts)

	return h
}

// Handle mounts an extra GET handler behind the auth gate, e.g. /metrics.
func (h *Handler) Handle(pattern string, handler http.Handler) {
	h.private.Method(http.MethodGet, pattern, handler)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:     "ok",
		Components: len(h.builder.Records()),
	}
	if h.alerts != nil {
		resp.AlertRules = h.alerts.Rules()
	}
	jsonResp(w, http.StatusOK, resp)
}

// summary returns GET /api/v1/summary. Only scoring runs; the failed count
// therefore covers scoring failures alone.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	records := h.builder.Records()
	scored, failures := report.Rank(records)

	s := report.Summary{
		Total:   len(records),
		Failed:  len(failures),
		ByLevel: make(map[types.RiskLevel]int, len(types.Levels)),
	}
	for _, l := range types.Levels {
		s.ByLevel[l] = 0
	}
	for _, c := range scored {
		s.ByLevel[c.RiskLevel]++
	}
	s.Critical = s.ByLevel[types.LevelCritical]
	s.High = s.ByLevel[types.LevelHigh]
	jsonResp(w, http.StatusOK, s)
}

// listComponents returns GET /api/v1/components, highest risk first.
func (h *Handler) listComponents(w http.ResponseWriter, r *http.Request) {
	scored, failures := report.Rank(h.builder.Records())
	jsonResp(w, http.StatusOK, ComponentsResponse{Components: scored, Failures: failures})
}

// getComponent returns GET /api/v1/components/{name}.
func (h *Handler) getComponent(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when the request needed it (e.g. an escaped
	// '/'), leaving the param escaped; otherwise it is already decoded.
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		var err error
		if name, err = url.PathUnescape(name); err != nil {
			jsonErr(w, http.StatusBadRequest, "invalid component name")
			return
		}
	}

	var (
		rec   types.ComponentRecord
		found bool
	)
	for _, c := range h.builder.Records() {
		if c.Name == name {
			rec, found = c, true
			break
		}
	}
	if !found {
		jsonErr(w, http.StatusNotFound, "component not found")
		return
	}

	factors, err := risk.Factors(rec)
	if err != nil {
		jsonErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	scored, err := risk.Score(rec)
	if err != nil {
		jsonErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := ComponentResponse{Component: scored, Factors: factors}
	tl, err := h.builder.Simulator().Simulate(rec.LeadTimeMonths, h.builder.EffectiveTrials())
	if err != nil {
		resp.TimelineError = err.Error()
	} else {
		resp.Timeline = &tl
	}
	resp.Hints = computeHints(scored, resp.Timeline)
	jsonResp(w, http.StatusOK, resp)
}

// report returns GET /api/v1/report, a freshly assembled report.
func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, h.builder.Build())
}

// simulate returns GET /api/v1/simulate?base_months=&trials=.
func (h *Handler) simulate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	base, err := strconv.ParseFloat(q.Get("base_months"), 64)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "base_months must be a number")
		return
	}

	trials := h.builder.EffectiveTrials()
	if v := q.Get("trials"); v != "" {
		trials, err = strconv.Atoi(v)
		if err != nil {
			jsonErr(w, http.StatusBadRequest, "trials must be an integer")
			return
		}
		if trials > MaxSimulateTrials {
			jsonErr(w, http.StatusBadRequest, fmt.Sprintf("trials must not exceed %d", MaxSimulateTrials))
			return
		}
	}

	tl, err := h.builder.Simulator().Simulate(base, trials)
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, types.ErrSimulationUnstable):
		jsonErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, SimulateResponse{BaseMonths: base, Trials: trials, Timeline: tl})
}

// listAlerts returns GET /api/v1/alerts: firing plus recently resolved.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if h.alerts == nil {
		jsonResp(w, http.StatusOK, []*alerts.Alert{})
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Active())
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
