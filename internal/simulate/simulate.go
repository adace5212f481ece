package simulate

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/riskdash/riskdash/internal/risk"
	"github.com/riskdash/riskdash/pkg/types"
)

const (
	// DefaultTrials is the number of draws used when callers have no preference.
	DefaultTrials = 10000

	// MinSamples is the fewest surviving draws percentiles are computed from.
	MinSamples = 100

	// relativeSpread is the standard deviation as a fraction of the base.
	relativeSpread = 0.25

	// timelineDecimals is the precision of each reported percentile.
	timelineDecimals = 1
)

// Percentile levels reported as best, likely and worst case.
const (
	quantileBest   = 0.10
	quantileLikely = 0.50
	quantileWorst  = 0.90
)

// Timeliner produces a recovery timeline from a base lead time.
// *Simulator implements it; the report assembler depends only on this.
type Timeliner interface {
	Simulate(baseMonths float64, trials int) (types.TimelineEstimate, error)
}

// Simulator runs recovery-time simulations against one random source.
type Simulator struct {
	src rand.Source
}

// New returns a Simulator drawing from src. A nil src is replaced by a
// freshly seeded PCG source.
func New(src rand.Source) *Simulator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Simulator{src: src}
}

// NewSeeded returns a Simulator whose draws are fully determined by seed.
func NewSeeded(seed uint64) *Simulator {
	return New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Simulate draws trials samples around baseMonths and returns the rounded
// p10/p50/p90 of the positive draws.
//
// It returns an error wrapping types.ErrInvalidInput when baseMonths is not a
// positive finite number or trials < 1, and types.ErrSimulationUnstable when
// fewer than MinSamples draws survive filtering.
func (s *Simulator) Simulate(baseMonths float64, trials int) (types.TimelineEstimate, error) {
	if !(baseMonths > 0) || math.IsInf(baseMonths, 0) {
		return types.TimelineEstimate{}, fmt.Errorf("simulate: base_months must be positive, got %v: %w",
			baseMonths, types.ErrInvalidInput)
	}
	if trials < 1 {
		return types.TimelineEstimate{}, fmt.Errorf("simulate: trials must be >= 1, got %d: %w",
			trials, types.ErrInvalidInput)
	}

	dist := distuv.Normal{
		Mu:    baseMonths,
		Sigma: relativeSpread * baseMonths,
		Src:   s.src,
	}

	samples := make([]float64, 0, trials)
	for i := 0; i < trials; i++ {
		// Lead times cannot be zero or negative.
		if v := dist.Rand(); v > 0 {
			samples = append(samples, v)
		}
	}
	if len(samples) < MinSamples {
		return types.TimelineEstimate{}, fmt.Errorf("simulate: %d of %d draws positive, need %d: %w",
			len(samples), trials, MinSamples, types.ErrSimulationUnstable)
	}

	slices.Sort(samples)
	return types.TimelineEstimate{
		BestMonths:   risk.Round(Percentile(samples, quantileBest), timelineDecimals),
		LikelyMonths: risk.Round(Percentile(samples, quantileLikely), timelineDecimals),
		WorstMonths:  risk.Round(Percentile(samples, quantileWorst), timelineDecimals),
	}, nil
}
