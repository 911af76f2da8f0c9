package models

const (
	ConditionNSTEMI         = "NSTEMI"
	ConditionUnstableAngina = "Unstable Angina"
	ConditionChronicInjury  = "Chronic Injury"
	ConditionNonCardiac     = "Non-Cardiac"

	OutcomeRuleOut             = "Rule Out"
	OutcomeRuleOutSingleSample = "Rule Out (Single Sample)"
	OutcomeRuleOutSerial       = "Rule Out (Serial)"
	OutcomeRuleIn              = "Rule In"
	OutcomeObserve             = "Observe"
	OutcomeGreyZone            = "Grey Zone"
	OutcomePending             = "Pending"
	OutcomeClinicalRescue      = "Clinical Rescue"
	OutcomeMissedUA            = "Missed UA"

	ProtocolESC       = "esc"
	ProtocolWaterfall = "waterfall"

	PlatformCentralLab  = "central_lab"
	PlatformPointOfCare = "point_of_care"
)

// Band widths for the non-NSTEMI conditions are fixed regardless of the
// configured ACS prevalence.
const (
	UnstableAnginaBandWidth = 5
	ChronicInjuryBandWidth  = 10
)

// Pathway timings in minutes.
const (
	RuleOutWaitMinutes = 20
	RuleInWaitMinutes  = 60
	ObserveWaitMinutes = 180
	RescueWaitMinutes  = 120

	// Extra delay when no clinician is free to act on a ready result; also
	// the serial retest interval in the waterfall pathway.
	ResultDelayMinutes = 60
)

// Clinical-rescue and single-sample HEART score boundaries.
const (
	RescueHeartScoreMin       = 4
	SingleSampleHeartScoreMax = 3
)
