package api

import (
	"github.com/riskdash/riskdash/internal/report"
	"github.com/riskdash/riskdash/internal/risk"
	"github.com/riskdash/riskdash/pkg/types"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status     string `json:"status"`
	Components int    `json:"components"`
	AlertRules int    `json:"alert_rules"`
}

// ComponentsResponse is the payload for GET /api/v1/components.
type ComponentsResponse struct {
	Components []types.ScoredComponent `json:"components"`
	Failures   []report.Failure        `json:"failures"`
}

// ComponentResponse is the payload for GET /api/v1/components/{name}.
type ComponentResponse struct {
	Component types.ScoredComponent `json:"component"`
	Factors   risk.Breakdown        `json:"factors"`
	Hints     []Hint                `json:"hints"`

	// Timeline is nil when the simulation failed; TimelineError says why.
	Timeline      *types.TimelineEstimate `json:"timeline,omitempty"`
	TimelineError string                  `json:"timeline_error,omitempty"`
}

// SimulateResponse is the payload for GET /api/v1/simulate.
type SimulateResponse struct {
	BaseMonths float64                `json:"base_months"`
	Trials     int                    `json:"trials"`
	Timeline   types.TimelineEstimate `json:"timeline"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
