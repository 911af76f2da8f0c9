package simulator

import (
	"fmt"
	"math/rand"

	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/models"
)

// ESC 0h/1h delta criteria (ng/L): a low presentation value with a flat rise
// still rules out; a big rise rules in even when T0 sits below the cutoff.
const (
	escLowPresentation = 12
	escFlatDeltaBelow  = 3
	escRiseDeltaAbove  = 5
)

// Disposition is what the evaluator hands back for one patient: the clinical
// outcome, a display action, the resource time consumed, whether a bed is
// blocked, and the test-kit cost incurred along the way.
type Disposition struct {
	Outcome     string
	Action      string
	WaitMinutes int
	BedsBlocked int
	TestCost    float64
}

// ProtocolStrategy applies one clinical decision algorithm to a patient.
// resultReady is drawn once per patient by the shift runner from the
// platform's availability chance; strategies that resolve availability
// internally ignore it.
type ProtocolStrategy interface {
	Name() string
	Evaluate(p *models.PatientRecord, resultReady bool, rng *rand.Rand) Disposition
}

// NewProtocolStrategy selects the configured algorithm.
func NewProtocolStrategy(cfg *models.Config) (ProtocolStrategy, error) {
	platform, err := cfg.PlatformSettings()
	if err != nil {
		return nil, err
	}
	switch cfg.Protocol {
	case models.ProtocolESC:
		return &ESCSerialStrategy{
			platform:    platform,
			ruleOut:     cfg.RuleOutThreshold,
			ruleIn:      cfg.RuleInThreshold,
			destination: cfg.DischargeDestination,
		}, nil
	case models.ProtocolWaterfall:
		return &WaterfallStrategy{
			platform:        platform,
			ruleOut:         cfg.RuleOutThreshold,
			ruleIn:          cfg.RuleInThreshold,
			useSingleSample: cfg.UseSingleSample,
			destination:     cfg.DischargeDestination,
		}, nil
	default:
		return nil, fmt.Errorf("unknown protocol %q", cfg.Protocol)
	}
}

type troponinClass int

const (
	classRuleOut troponinClass = iota
	classRuleIn
	classGreyZone
)

// classifyTroponin applies the shared threshold comparison. Rule Out is
// checked before Rule In, so contradictory thresholds resolve to Rule Out.
func classifyTroponin(t0, t1, ruleOut, ruleIn int) troponinClass {
	delta := t1 - t0
	switch {
	case t0 < ruleOut || (t0 < escLowPresentation && delta < escFlatDeltaBelow):
		return classRuleOut
	case t0 > ruleIn || delta > escRiseDeltaAbove:
		return classRuleIn
	default:
		return classGreyZone
	}
}

func isRuleOut(outcome string) bool {
	switch outcome {
	case models.OutcomeRuleOut, models.OutcomeRuleOutSingleSample, models.OutcomeRuleOutSerial:
		return true
	}
	return false
}

// applyClinicalRescue is the safety net over any rule-out: an Unstable
// Angina patient with a worrying HEART score gets admitted half the time on
// clinical judgement alone. The other half is a dangerous discharge, kept
// visible as Missed UA so the missed-diagnosis risk shows up in the metrics.
func applyClinicalRescue(p *models.PatientRecord, d Disposition, destination string, rng *rand.Rand) Disposition {
	if !isRuleOut(d.Outcome) || p.Condition != models.ConditionUnstableAngina || p.HeartScore < models.RescueHeartScoreMin {
		return d
	}
	if rng.Float64() < 0.5 {
		d.Outcome = models.OutcomeClinicalRescue
		d.Action = "Admit (High Risk)"
		d.WaitMinutes = models.RescueWaitMinutes
		d.BedsBlocked = 1
	} else {
		d.Outcome = models.OutcomeMissedUA
		d.Action = fmt.Sprintf("Discharge (%s)", destination)
	}
	return d
}

// ESCSerialStrategy models the ESC 0h/1h pathway: one test cycle whose
// result may not be acted on in time, then serial threshold logic.
type ESCSerialStrategy struct {
	platform    models.Platform
	ruleOut     int
	ruleIn      int
	destination string
}

func (s *ESCSerialStrategy) Name() string { return models.ProtocolESC }

func (s *ESCSerialStrategy) Evaluate(p *models.PatientRecord, resultReady bool, rng *rand.Rand) Disposition {
	d := Disposition{TestCost: s.platform.UnitCost}

	if !resultReady {
		d.Outcome = models.OutcomePending
		d.Action = "Bed Blocked (Wait)"
		d.WaitMinutes = s.platform.TurnaroundTime + models.ResultDelayMinutes
		d.BedsBlocked = 1
		return d
	}

	switch classifyTroponin(p.T0, p.T1, s.ruleOut, s.ruleIn) {
	case classRuleOut:
		d.Outcome = models.OutcomeRuleOut
		d.Action = fmt.Sprintf("Discharge (%s)", s.destination)
		d.WaitMinutes = models.RuleOutWaitMinutes
	case classRuleIn:
		d.Outcome = models.OutcomeRuleIn
		d.Action = "Cath Lab Transfer"
		d.WaitMinutes = models.RuleInWaitMinutes
	default:
		d.Outcome = models.OutcomeObserve
		d.Action = "Admit AMU (Serial Trop)"
		d.WaitMinutes = models.ObserveWaitMinutes
		d.BedsBlocked = 1
	}

	return applyClinicalRescue(p, d, s.destination, rng)
}

// WaterfallStrategy models the hybrid pathway: every patient consumes a
// first test cycle, low-risk patients can exit on the single sample, and the
// rest fall through to a second cycle before the serial thresholds apply.
type WaterfallStrategy struct {
	platform        models.Platform
	ruleOut         int
	ruleIn          int
	useSingleSample bool
	destination     string
}

func (s *WaterfallStrategy) Name() string { return models.ProtocolWaterfall }

func (s *WaterfallStrategy) Evaluate(p *models.PatientRecord, _ bool, rng *rand.Rand) Disposition {
	// First cycle. The clinician-availability penalty is resolved here, per
	// patient, instead of via the runner's pre-drawn readiness flag.
	d := Disposition{
		WaitMinutes: s.platform.TurnaroundTime,
		TestCost:    s.platform.UnitCost,
	}
	if rng.Float64() > s.platform.AvailabilityChance {
		d.WaitMinutes += models.ResultDelayMinutes
	}

	if s.useSingleSample && p.T0 < s.ruleOut && p.HeartScore <= models.SingleSampleHeartScoreMax {
		d.Outcome = models.OutcomeRuleOutSingleSample
		d.Action = fmt.Sprintf("Early Discharge (%s)", s.destination)
		return applyClinicalRescue(p, d, s.destination, rng)
	}

	// Second cycle: another kit, the retest interval, another turnaround.
	d.TestCost += s.platform.UnitCost
	d.WaitMinutes += models.ResultDelayMinutes + s.platform.TurnaroundTime

	switch classifyTroponin(p.T0, p.T1, s.ruleOut, s.ruleIn) {
	case classRuleOut:
		d.Outcome = models.OutcomeRuleOutSerial
		d.Action = fmt.Sprintf("Discharge (%s)", s.destination)
	case classRuleIn:
		d.Outcome = models.OutcomeRuleIn
		d.Action = "Cath Lab Transfer"
	default:
		d.Outcome = models.OutcomeGreyZone
		d.Action = "Admit AMU"
		d.BedsBlocked = 1
	}

	return applyClinicalRescue(p, d, s.destination, rng)
}
