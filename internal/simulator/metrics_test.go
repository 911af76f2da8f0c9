package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/models"
)

func TestFinalizeCosts(t *testing.T) {
	agg := models.ShiftAggregate{
		PatientCount:      25,
		TotalWaitMinutes:  1000,
		BedsBlocked:       5,
		TestUnitCostTotal: 125,
	}

	fin := FinalizeCosts(agg, 135, 30)

	// (135+30)/60 = £2.75 of blended staff time per waiting minute
	assert.InDelta(t, 2750, fin.WaitingCost, 0.001)
	assert.InDelta(t, 125, fin.TestingCost, 0.001)
	assert.InDelta(t, 2875, fin.TotalCost, 0.001)
	assert.Equal(t, 5, fin.BedsBlocked)
	assert.InDelta(t, 20, fin.BlockRatePct, 0.001)
}

func TestFinalizeCosts_EmptyShift(t *testing.T) {
	fin := FinalizeCosts(models.ShiftAggregate{}, 135, 30)

	assert.Zero(t, fin.WaitingCost)
	assert.Zero(t, fin.TestingCost)
	assert.Zero(t, fin.TotalCost)
	assert.Zero(t, fin.BlockRatePct, "zero patients is a 0%% block rate, not a division fault")
}

func TestFinalizeCosts_Pure(t *testing.T) {
	agg := models.ShiftAggregate{PatientCount: 10, TotalWaitMinutes: 600, BedsBlocked: 2, TestUnitCostTotal: 50}

	first := FinalizeCosts(agg, 135, 30)
	second := FinalizeCosts(agg, 135, 30)

	assert.Equal(t, first, second, "same aggregate and rates must yield identical figures")
}

func TestFinancialSummary_AnnualProjections(t *testing.T) {
	fin := models.FinancialSummary{TotalCost: 100, BedsBlocked: 3}

	assert.InDelta(t, 36500, fin.Annualized(), 0.001)
	assert.Equal(t, 1095, fin.AnnualBedDaysLost())
}
