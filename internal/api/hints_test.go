package api

import (
	"testing"

	"github.com/riskdash/riskdash/pkg/types"
)

func scored(rec types.ComponentRecord) types.ScoredComponent {
	return types.ScoredComponent{ComponentRecord: rec}
}

func keys(hints []Hint) []string {
	out := make([]string, len(hints))
	for i, h := range hints {
		out[i] = h.Key
	}
	return out
}

func TestComputeHints(t *testing.T) {
	tests := []struct {
		name string
		rec  types.ComponentRecord
		tl   *types.TimelineEstimate
		want []string
	}{
		{
			name: "balanced profile",
			rec: types.ComponentRecord{SupplierCount: 4, LeadTimeMonths: 4, Substitutability: 0.7,
				GeoRisk: 0.3, InventoryBufferMonths: 6, DemandVolatility: 0.4},
			want: []string{"no_dominant_driver"},
		},
		{
			name: "single source sorts first",
			rec: types.ComponentRecord{SupplierCount: 1, LeadTimeMonths: 10, Substitutability: 0.2,
				GeoRisk: 0.9, InventoryBufferMonths: 1, DemandVolatility: 0.8},
			tl: &types.TimelineEstimate{BestMonths: 6.8, LikelyMonths: 10, WorstMonths: 13.2},
			want: []string{"single_source", "long_lead_time", "geo_concentration", "thin_buffer",
				"slow_recovery", "hard_to_substitute", "volatile_demand"},
		},
		{
			name: "dual source only",
			rec: types.ComponentRecord{SupplierCount: 2, LeadTimeMonths: 4, Substitutability: 0.5,
				GeoRisk: 0.5, InventoryBufferMonths: 2, DemandVolatility: 0.5},
			want: []string{"dual_source"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := keys(computeHints(scored(tc.rec), tc.tl))
			if len(got) != len(tc.want) {
				t.Fatalf("hints: got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("hints[%d]: got %q, want %q (all: %v)", i, got[i], tc.want[i], got)
				}
			}
		})
	}
}
