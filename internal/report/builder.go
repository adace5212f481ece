package report

import (
	"cmp"
	"slices"

	"github.com/riskdash/riskdash/internal/risk"
	"github.com/riskdash/riskdash/internal/simulate"
	"github.com/riskdash/riskdash/pkg/types"
)

// Builder produces reports on demand from a live record source.
// Each Build gets its own Simulator, so a Builder is safe for concurrent use
// as long as Records is.
type Builder struct {
	// Records returns the current component set, e.g. (*registry.Store).List.
	Records func() []types.ComponentRecord

	// Trials per timeline; <= 0 selects simulate.DefaultTrials.
	Trials int

	// Seed fixes every report's random source when non-zero.
	Seed uint64
}

// Simulator returns a new Simulator honouring the Builder's seed.
func (b *Builder) Simulator() *simulate.Simulator {
	if b.Seed != 0 {
		return simulate.NewSeeded(b.Seed)
	}
	return simulate.New(nil)
}

// EffectiveTrials returns the trials count used per timeline.
func (b *Builder) EffectiveTrials() int {
	if b.Trials <= 0 {
		return simulate.DefaultTrials
	}
	return b.Trials
}

// Build assembles a report over the current records.
func (b *Builder) Build() *Report {
	return Assemble(b.Records(), b.Simulator(), b.EffectiveTrials())
}

// Rank scores records without simulating timelines and returns them sorted by
// score descending, ties in input order, plus any scoring failures.
func Rank(records []types.ComponentRecord) ([]types.ScoredComponent, []Failure) {
	scored := make([]types.ScoredComponent, 0, len(records))
	failures := []Failure{}
	for i, rec := range records {
		sc, err := risk.Score(rec)
		if err != nil {
			failures = append(failures, newFailure(i, rec.Name, StageScore, err, nil))
			continue
		}
		scored = append(scored, sc)
	}
	slices.SortStableFunc(scored, func(a, b types.ScoredComponent) int {
		return cmp.Compare(b.RiskScore, a.RiskScore)
	})
	return scored, failures
}
