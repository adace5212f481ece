package risk

import (
	"fmt"
	"math"

	"github.com/riskdash/riskdash/pkg/types"
)

// Weight constants for the risk score formula. They are part of the model
// and are not configurable.
const (
	weightSupplier   = 0.25
	weightLeadTime   = 0.20
	weightGeo        = 0.20
	weightSubstitute = 0.15
	weightDemand     = 0.10
	weightBuffer     = 0.10 // subtracted

	monthsPerYear = 12.0
)

// Thresholds that map a rounded score to a risk level.
const (
	ThresholdCritical = 0.65
	ThresholdHigh     = 0.45
	ThresholdMedium   = 0.30
)

// scoreDecimals is the precision the composite score is rounded to.
const scoreDecimals = 3

// Breakdown holds the six signed, weighted contributions that sum to the
// unrounded score. Useful for per-factor views in the UI.
type Breakdown struct {
	Supplier         float64 `json:"supplier"`
	LeadTime         float64 `json:"lead_time"`
	Geo              float64 `json:"geo"`
	Substitutability float64 `json:"substitutability"`
	Demand           float64 `json:"demand"`
	InventoryBuffer  float64 `json:"inventory_buffer"` // <= 0 for valid input
}

// Sum returns the unrounded composite score.
func (b Breakdown) Sum() float64 {
	return b.Supplier + b.LeadTime + b.Geo + b.Substitutability + b.Demand + b.InventoryBuffer
}

// Factors returns the weighted contribution of each input of rec.
//
// The only runtime-checked precondition is SupplierCount >= 1; fractional
// fields outside [0,1] are the caller's contract violation and are used as-is.
func Factors(rec types.ComponentRecord) (Breakdown, error) {
	if rec.SupplierCount <= 0 {
		return Breakdown{}, fmt.Errorf("risk: component %q: supplier_count must be >= 1, got %d: %w",
			rec.Name, rec.SupplierCount, types.ErrInvalidInput)
	}
	return Breakdown{
		Supplier:         weightSupplier * (1 / float64(rec.SupplierCount)),
		LeadTime:         weightLeadTime * (rec.LeadTimeMonths / monthsPerYear),
		Geo:              weightGeo * rec.GeoRisk,
		Substitutability: weightSubstitute * (1 - rec.Substitutability),
		Demand:           weightDemand * rec.DemandVolatility,
		InventoryBuffer:  -weightBuffer * (rec.InventoryBufferMonths / monthsPerYear),
	}, nil
}

// Score computes the rounded risk score and level for rec.
// It is deterministic and has no side effects.
func Score(rec types.ComponentRecord) (types.ScoredComponent, error) {
	b, err := Factors(rec)
	if err != nil {
		return types.ScoredComponent{}, err
	}
	score := Round(b.Sum(), scoreDecimals)
	return types.ScoredComponent{
		ComponentRecord: rec,
		RiskScore:       score,
		RiskLevel:       Classify(score),
	}, nil
}

// Classify maps a rounded score to a risk level.
func Classify(score float64) types.RiskLevel {
	switch {
	case score >= ThresholdCritical:
		return types.LevelCritical
	case score >= ThresholdHigh:
		return types.LevelHigh
	case score >= ThresholdMedium:
		return types.LevelMedium
	default:
		return types.LevelLow
	}
}

// Round rounds v to the given number of decimals using round-half-to-even on
// the scaled value, so 0.0625 rounds to 0.062 at 3 decimals.
func Round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*scale) / scale
}
