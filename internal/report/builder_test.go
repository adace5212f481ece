package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskdash/riskdash/internal/simulate"
	"github.com/riskdash/riskdash/pkg/types"
)

func TestBuilder_SeededReportsMatch(t *testing.T) {
	b := &Builder{
		Records: func() []types.ComponentRecord { return []types.ComponentRecord{gpuRec, hbmRec} },
		Trials:  2000,
		Seed:    11,
	}
	r1, r2 := b.Build(), b.Build()
	require.Len(t, r1.Entries, 2)
	assert.Equal(t, r1.Entries, r2.Entries)
}

func TestBuilder_DefaultTrials(t *testing.T) {
	b := &Builder{}
	assert.Equal(t, simulate.DefaultTrials, b.EffectiveTrials())
	assert.NotNil(t, b.Simulator())
}

func TestRank(t *testing.T) {
	bad := gpuRec
	bad.Name = "bad"
	bad.SupplierCount = 0

	scored, failures := Rank([]types.ComponentRecord{switchRec, bad, gpuRec, hbmRec})
	require.Len(t, scored, 3)
	assert.Equal(t, "High-End GPU", scored[0].Name)
	assert.Equal(t, "Network Switch", scored[2].Name)
	require.Len(t, failures, 1)
	assert.Equal(t, 1, failures[0].Index)
	assert.ErrorIs(t, failures[0].Err(), types.ErrInvalidInput)
}
