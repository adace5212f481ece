package api

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/riskdash/riskdash/pkg/types"
)

// Hint is one human-readable insight about what drives a component's risk.
// The UI renders these as chips on the component card.
type Hint struct {
	// Key is a stable machine-readable identifier.
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical".
	Level string `json:"level"`
	// Title is a short label shown on the chip.
	Title string `json:"title"`
	// Detail is the full explanation shown on click/hover.
	Detail string `json:"detail"`
	// Value is the input that triggered the hint, when numeric.
	Value *float64 `json:"value,omitempty"`
}

var hintOrder = map[string]int{"critical": 0, "warning": 1, "info": 2, "ok": 3}

// computeHints derives hints from a scored component and, when available,
// its timeline. Ordered critical first, then warnings, then info.
func computeHints(c types.ScoredComponent, tl *types.TimelineEstimate) []Hint {
	var hints []Hint
	add := func(key, level, title, detail string, v float64) {
		hints = append(hints, Hint{Key: key, Level: level, Title: title, Detail: detail, Value: &v})
	}

	switch {
	case c.SupplierCount == 1:
		add("single_source", "critical", "Single source",
			"Only one qualified supplier. Any disruption at that supplier stops supply entirely; "+
				"qualifying a second source removes the largest single term of the score.",
			float64(c.SupplierCount))
	case c.SupplierCount == 2:
		add("dual_source", "warning", "Two suppliers",
			"Two suppliers leave little slack if one of them is constrained.",
			float64(c.SupplierCount))
	}

	if c.LeadTimeMonths >= 9 {
		add("long_lead_time", "warning", fmt.Sprintf("%.0f month lead time", c.LeadTimeMonths),
			"Replacement orders take most of a year to arrive. Plan orders well ahead of demand.",
			c.LeadTimeMonths)
	}

	if c.GeoRisk >= 0.7 {
		add("geo_concentration", "warning", "Geographic concentration",
			"Production is concentrated in a region with elevated geopolitical or disaster risk.",
			c.GeoRisk)
	}

	if c.Substitutability <= 0.3 {
		add("hard_to_substitute", "info", "Hard to substitute",
			"Few drop-in alternatives exist; switching parts means redesign or requalification.",
			c.Substitutability)
	}

	if c.InventoryBufferMonths < c.LeadTimeMonths/4 {
		add("thin_buffer", "warning", "Thin inventory buffer",
			fmt.Sprintf("%.1f months of stock covers less than a quarter of the %.0f month lead time.",
				c.InventoryBufferMonths, c.LeadTimeMonths),
			c.InventoryBufferMonths)
	}

	if c.DemandVolatility >= 0.7 {
		add("volatile_demand", "info", "Volatile demand",
			"Demand swings make forecasts unreliable, so buffers drain faster than planned.",
			c.DemandVolatility)
	}

	if tl != nil && tl.WorstMonths > 12 {
		add("slow_recovery", "warning", "Recovery over a year",
			fmt.Sprintf("In the worst simulated case supply takes %.1f months to recover.", tl.WorstMonths),
			tl.WorstMonths)
	}

	if len(hints) == 0 {
		hints = append(hints, Hint{
			Key:    "no_dominant_driver",
			Level:  "ok",
			Title:  "No dominant driver",
			Detail: "No single input stands out; the score reflects a balanced profile.",
		})
	}

	slices.SortStableFunc(hints, func(a, b Hint) int {
		return cmp.Compare(hintOrder[a.Level], hintOrder[b.Level])
	})
	return hints
}
