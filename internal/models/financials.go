package models

import (
	"time"

	"github.com/lucsky/cuid"
)

// ShiftAggregate accumulates running totals over one simulated shift. It is
// owned by the shift runner while the loop is live and read-only afterwards.
type ShiftAggregate struct {
	PatientCount      int     `json:"patientCount"`
	TotalWaitMinutes  int     `json:"totalWaitMinutes"`
	BedsBlocked       int     `json:"bedsBlocked"`
	TestUnitCostTotal float64 `json:"testUnitCostTotal"`

	// Condition/outcome tallies the capacity report surfaces.
	TrueNSTEMI      int `json:"trueNstemi"`
	MissedUA        int `json:"missedUa"`
	ClinicalRescues int `json:"clinicalRescues"`
}

// FinancialSummary is the finalized cost picture for one shift.
type FinancialSummary struct {
	WaitingCost  float64 `json:"waitingCost"`
	TestingCost  float64 `json:"testingCost"`
	TotalCost    float64 `json:"totalCost"`
	BedsBlocked  int     `json:"bedsBlocked"`
	BlockRatePct float64 `json:"blockRatePct"`
}

// Annualized projects the daily total over a year. Derived, never stored.
func (f FinancialSummary) Annualized() float64 {
	return f.TotalCost * 365
}

// AnnualBedDaysLost projects the daily bed blocks over a year.
func (f FinancialSummary) AnnualBedDaysLost() int {
	return f.BedsBlocked * 365
}

// RunResult is the immutable snapshot handed to presentation collaborators.
type RunResult struct {
	RunID             string           `json:"runId"`
	ConfigFingerprint string           `json:"configFingerprint"`
	GeneratedAt       time.Time        `json:"generatedAt"`
	Patients          []PatientRecord  `json:"patients"`
	Aggregate         ShiftAggregate   `json:"aggregate"`
	Financials        FinancialSummary `json:"financials"`
}

func NewRunResult(cfg *Config, patients []PatientRecord, agg ShiftAggregate, fin FinancialSummary) RunResult {
	return RunResult{
		RunID:             cuid.New(),
		ConfigFingerprint: cfg.Fingerprint(),
		GeneratedAt:       time.Now().UTC(),
		Patients:          patients,
		Aggregate:         agg,
		Financials:        fin,
	}
}

// Stale reports whether the current configuration no longer matches the one
// that produced this result. Collaborators caching results must check this
// before presenting them as current.
func (r RunResult) Stale(cfg *Config) bool {
	return r.ConfigFingerprint != cfg.Fingerprint()
}
