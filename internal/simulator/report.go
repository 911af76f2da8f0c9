package simulator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/models"
)

// ErrExportUnavailable signals that an optional export collaborator (the PDF
// renderer) is not wired in. It is never a simulation failure.
var ErrExportUnavailable = errors.New("pdf export unavailable: no renderer configured")

// PDFRenderer is implemented by an external presentation collaborator.
type PDFRenderer interface {
	RenderCapacityPlan(cfg *models.Config, result models.RunResult) ([]byte, error)
}

// GeneratePDF delegates to the renderer if one is present.
func GeneratePDF(renderer PDFRenderer, cfg *models.Config, result models.RunResult) ([]byte, error) {
	if renderer == nil {
		return nil, ErrExportUnavailable
	}
	return renderer.RenderCapacityPlan(cfg, result)
}

// Annual bed blocks above this trip the flow warning in the capacity plan.
const bedBlockWarningThreshold = 1000

// GenerateCapacityPlan builds the plain-text strategic capacity report.
func GenerateCapacityPlan(cfg *models.Config, result models.RunResult) string {
	platform, _ := cfg.PlatformSettings()
	fin := result.Financials

	var b strings.Builder
	b.WriteString("OFFICIAL NHS CAPACITY PLAN - GENERATED REPORT\n")
	b.WriteString("=============================================\n\n")

	b.WriteString("OPERATIONAL PARAMETERS\n")
	b.WriteString("----------------------\n")
	fmt.Fprintf(&b, "Run ID: %s\n", result.RunID)
	fmt.Fprintf(&b, "Daily Census: %d patients\n", cfg.DailyCensus)
	fmt.Fprintf(&b, "Chest Pain Load: %d patients/day (%.0f%%)\n", result.Aggregate.PatientCount, cfg.ChestPainPct)
	fmt.Fprintf(&b, "Strategy: %s\n\n", platform.Name)

	b.WriteString("CLINICAL ALGORITHM\n")
	b.WriteString("------------------\n")
	fmt.Fprintf(&b, "1. RULE OUT: Troponin < %d ng/L -> Discharged to %s\n", cfg.RuleOutThreshold, cfg.DischargeDestination)
	fmt.Fprintf(&b, "2. OBSERVE:  Troponin %d-%d ng/L\n", cfg.RuleOutThreshold, cfg.RuleInThreshold)
	fmt.Fprintf(&b, "3. RULE IN:  Troponin > %d ng/L\n\n", cfg.RuleInThreshold)

	b.WriteString("SAFETY\n")
	b.WriteString("------\n")
	fmt.Fprintf(&b, "True NSTEMI: %d\n", result.Aggregate.TrueNSTEMI)
	fmt.Fprintf(&b, "Clinical Rescues: %d\n", result.Aggregate.ClinicalRescues)
	fmt.Fprintf(&b, "Missed UA (dangerous discharges): %d\n\n", result.Aggregate.MissedUA)

	b.WriteString("FINANCIAL FORECAST (DAILY)\n")
	b.WriteString("--------------------------\n")
	fmt.Fprintf(&b, "Diagnostic Cost: £%.2f\n", fin.TestingCost)
	fmt.Fprintf(&b, "Wasted Staff Time Cost: £%.2f\n", fin.WaitingCost)
	fmt.Fprintf(&b, "Total Daily Cost: £%.2f\n", fin.TotalCost)
	fmt.Fprintf(&b, "Beds Blocked: %d (%.1f%%)\n\n", fin.BedsBlocked, fin.BlockRatePct)

	b.WriteString("PROJECTED ANNUAL COST (x365)\n")
	b.WriteString("----------------------------\n")
	fmt.Fprintf(&b, "£%.2f\n", fin.Annualized())
	fmt.Fprintf(&b, "Projected Bed Days Lost: %d\n", fin.AnnualBedDaysLost())

	if fin.AnnualBedDaysLost() > bedBlockWarningThreshold {
		b.WriteString("\nCRITICAL WARNING: current pathway is causing significant bed blocking.\n")
		b.WriteString("Consider switching to POC to improve flow.\n")
	}

	return b.String()
}

// GenerateGPLetter drafts the discharge letter the system auto-generates for
// ruled-out patients.
func GenerateGPLetter(cfg *models.Config) string {
	return fmt.Sprintf("Dear GP,\nPatient discharged to %s.\nTrop < %dng/L.\nRegards, ED",
		cfg.DischargeDestination, cfg.RuleOutThreshold)
}
