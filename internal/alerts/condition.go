package alerts

import (
	"strconv"
	"strings"

	"github.com/riskdash/riskdash/internal/report"
	"github.com/riskdash/riskdash/pkg/types"
)

// evalCondition evaluates a rule condition string against a report entry.
//
// Supported expressions (field operator value):
//
//	risk_score > 0.6
//	risk_level == CRITICAL
//	risk_level != LOW
//	lead_time_months >= 9
//	supplier_count < 2
//	geo_risk > 0.7
//	worst_months > 12
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, e report.Entry) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	if field == "risk_level" {
		level := types.RiskLevel(strings.ToUpper(rhs))
		switch op {
		case "==":
			return e.Component.RiskLevel == level, e.Component.RiskScore
		case "!=":
			return e.Component.RiskLevel != level, e.Component.RiskScore
		}
		return false, 0
	}

	v, ok := numericField(field, e)
	if !ok {
		return false, 0
	}
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// validCondition reports whether cond is well-formed for evalCondition.
func validCondition(cond string) bool {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false
	}
	field, op, rhs := parts[0], parts[1], parts[2]
	if field == "risk_level" {
		return (op == "==" || op == "!=") && types.RiskLevel(strings.ToUpper(rhs)).Valid()
	}
	if _, ok := numericField(field, report.Entry{}); !ok {
		return false
	}
	switch op {
	case ">", ">=", "<", "<=", "==":
	default:
		return false
	}
	_, err := strconv.ParseFloat(rhs, 64)
	return err == nil
}

// numericField maps a field name to its value in the entry.
func numericField(field string, e report.Entry) (float64, bool) {
	c := e.Component
	switch field {
	case "risk_score":
		return c.RiskScore, true
	case "supplier_count":
		return float64(c.SupplierCount), true
	case "lead_time_months":
		return c.LeadTimeMonths, true
	case "substitutability":
		return c.Substitutability, true
	case "geo_risk":
		return c.GeoRisk, true
	case "inventory_buffer_months":
		return c.InventoryBufferMonths, true
	case "demand_volatility":
		return c.DemandVolatility, true
	case "best_months":
		return e.Timeline.BestMonths, true
	case "likely_months":
		return e.Timeline.LikelyMonths, true
	case "worst_months":
		return e.Timeline.WorstMonths, true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
