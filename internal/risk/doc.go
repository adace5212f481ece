// Package risk computes the supply-chain risk score of a hardware component.
//
// score.go provides the pure Score(ComponentRecord) function. The composite
// is a fixed weighted sum:
//
//	0.25 * 1/supplier_count
//	0.20 * lead_time_months/12
//	0.20 * geo_risk
//	0.15 * (1 - substitutability)
//	0.10 * demand_volatility
//	-0.10 * inventory_buffer_months/12
//
// The sum is rounded to 3 decimals with round-half-to-even on the scaled value
// and is never clamped; negative scores are valid and mean very low risk.
//
// Level thresholds (lower bound inclusive, evaluated on the rounded score):
// Critical >= 0.65, High >= 0.45, Medium >= 0.30, Low otherwise.
package risk
