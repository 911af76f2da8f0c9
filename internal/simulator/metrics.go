package simulator

import "github.com/thomaswlyons-a11y/Chestpain28012026/internal/models"

// FinalizeCosts combines shift totals with staffing rates into the financial
// summary. Pure: same aggregate and rates always yield the same figures.
func FinalizeCosts(agg models.ShiftAggregate, consultantRate, nurseRate float64) models.FinancialSummary {
	staffCostPerMinute := (consultantRate + nurseRate) / 60
	waitingCost := float64(agg.TotalWaitMinutes) * staffCostPerMinute

	fin := models.FinancialSummary{
		WaitingCost: waitingCost,
		TestingCost: agg.TestUnitCostTotal,
		TotalCost:   waitingCost + agg.TestUnitCostTotal,
		BedsBlocked: agg.BedsBlocked,
	}
	// an empty shift has a 0% block rate, not a division fault
	if agg.PatientCount > 0 {
		fin.BlockRatePct = float64(agg.BedsBlocked) / float64(agg.PatientCount) * 100
	}
	return fin
}
