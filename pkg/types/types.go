package types

import "errors"

// Error taxonomy. Operations wrap these with context; test with errors.Is.
var (
	// ErrInvalidInput reports a violated precondition such as a zero supplier
	// count or a non-positive base lead time.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSimulationUnstable reports that too few valid samples survived
	// filtering to compute meaningful percentiles.
	ErrSimulationUnstable = errors.New("simulation unstable")
)

// RiskLevel is the coarse bucket derived from a risk score.
type RiskLevel string

// Risk levels, lowest first.
const (
	LevelLow      RiskLevel = "LOW"
	LevelMedium   RiskLevel = "MEDIUM"
	LevelHigh     RiskLevel = "HIGH"
	LevelCritical RiskLevel = "CRITICAL"
)

// Levels lists every RiskLevel in ascending order of severity.
var Levels = []RiskLevel{LevelLow, LevelMedium, LevelHigh, LevelCritical}

// Valid reports whether l is one of the four known levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh, LevelCritical:
		return true
	}
	return false
}

// ComponentRecord describes one hardware dependency.
type ComponentRecord struct {
	// Name identifies the component; unique within a registry.
	Name string `yaml:"name" json:"name"`

	// SupplierCount is the number of qualified suppliers. Must be >= 1.
	SupplierCount int `yaml:"supplier_count" json:"supplier_count"`

	// LeadTimeMonths is the normal acquisition lead time.
	LeadTimeMonths float64 `yaml:"lead_time_months" json:"lead_time_months"`

	// Substitutability is in [0,1]; 1 means fully substitutable.
	Substitutability float64 `yaml:"substitutability" json:"substitutability"`

	// GeoRisk is the geographic concentration risk in [0,1].
	GeoRisk float64 `yaml:"geo_risk" json:"geo_risk"`

	// InventoryBufferMonths is how many months of stock are on hand.
	InventoryBufferMonths float64 `yaml:"inventory_buffer_months" json:"inventory_buffer_months"`

	// DemandVolatility is in [0,1].
	DemandVolatility float64 `yaml:"demand_volatility" json:"demand_volatility"`
}

// ScoredComponent is a ComponentRecord with its derived score and level.
// It is a value; recompute from a new record instead of mutating it.
type ScoredComponent struct {
	ComponentRecord
	RiskScore float64   `json:"risk_score"`
	RiskLevel RiskLevel `json:"risk_level"`
}

// TimelineEstimate is a three-point projection of recovery time in months.
// BestMonths <= LikelyMonths <= WorstMonths.
type TimelineEstimate struct {
	BestMonths   float64 `json:"best_months"`   // p10
	LikelyMonths float64 `json:"likely_months"` // p50
	WorstMonths  float64 `json:"worst_months"`  // p90
}
