package report

import (
	"cmp"
	"log/slog"
	"slices"
	"time"

	"github.com/riskdash/riskdash/internal/risk"
	"github.com/riskdash/riskdash/internal/simulate"
	"github.com/riskdash/riskdash/pkg/types"
)

// Failure stages.
const (
	StageScore    = "score"
	StageSimulate = "simulate"
)

// Entry pairs a scored component with its projected recovery timeline.
type Entry struct {
	Component types.ScoredComponent `json:"component"`
	Timeline  types.TimelineEstimate `json:"timeline"`
}

// Failure records one input that could not be fully processed.
type Failure struct {
	Index int    `json:"index"` // position in the input slice
	Name  string `json:"name"`
	Stage string `json:"stage"` // "score" | "simulate"
	Error string `json:"error"`

	// Scored is set when scoring succeeded but simulation did not.
	Scored *types.ScoredComponent `json:"scored,omitempty"`

	err error
}

// Err returns the underlying error, usable with errors.Is.
func (f Failure) Err() error { return f.err }

// Report is the ranked output of one assembly pass.
type Report struct {
	Entries     []Entry   `json:"entries"`
	Failures    []Failure `json:"failures"`
	Total       int       `json:"total"`
	Critical    int       `json:"critical"`
	High        int       `json:"high"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Summary is the set of derived tallies shown above the ranking table.
type Summary struct {
	Total    int                     `json:"total"`
	Critical int                     `json:"critical"`
	High     int                     `json:"high"`
	Failed   int                     `json:"failed"`
	ByLevel  map[types.RiskLevel]int `json:"by_level"`
}

// Assemble scores and simulates every record and returns the ranked report.
// trials <= 0 selects simulate.DefaultTrials.
func Assemble(records []types.ComponentRecord, sim simulate.Timeliner, trials int) *Report {
	if trials <= 0 {
		trials = simulate.DefaultTrials
	}

	out := &Report{
		Entries:     make([]Entry, 0, len(records)),
		Failures:    []Failure{},
		Total:       len(records),
		GeneratedAt: time.Now().UTC(),
	}

	for i, rec := range records {
		scored, err := risk.Score(rec)
		if err != nil {
			slog.Warn("report: skipping component, scoring failed", "component", rec.Name, "err", err)
			out.Failures = append(out.Failures, newFailure(i, rec.Name, StageScore, err, nil))
			continue
		}

		timeline, err := sim.Simulate(rec.LeadTimeMonths, trials)
		if err != nil {
			slog.Warn("report: skipping component, simulation failed", "component", rec.Name, "err", err)
			out.Failures = append(out.Failures, newFailure(i, rec.Name, StageSimulate, err, &scored))
			continue
		}

		out.Entries = append(out.Entries, Entry{Component: scored, Timeline: timeline})
	}

	slices.SortStableFunc(out.Entries, func(a, b Entry) int {
		return cmp.Compare(b.Component.RiskScore, a.Component.RiskScore)
	})

	for _, e := range out.Entries {
		switch e.Component.RiskLevel {
		case types.LevelCritical:
			out.Critical++
		case types.LevelHigh:
			out.High++
		}
	}
	return out
}

// Summary returns the report tallies including a per-level breakdown.
func (r *Report) Summary() Summary {
	s := Summary{
		Total:    r.Total,
		Critical: r.Critical,
		High:     r.High,
		Failed:   len(r.Failures),
		ByLevel:  make(map[types.RiskLevel]int, len(types.Levels)),
	}
	for _, l := range types.Levels {
		s.ByLevel[l] = 0
	}
	for _, e := range r.Entries {
		s.ByLevel[e.Component.RiskLevel]++
	}
	return s
}

// Find returns the entry for the named component.
func (r *Report) Find(name string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Component.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

func newFailure(i int, name, stage string, err error, scored *types.ScoredComponent) Failure {
	return Failure{Index: i, Name: name, Stage: stage, Error: err.Error(), Scored: scored, err: err}
}
