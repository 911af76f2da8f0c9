package simulator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/models"
)

func testConfig() *models.Config {
	return &models.Config{
		Seed:                 1,
		DailyCensus:          250,
		ChestPainPct:         10,
		ACSPrevalence:        15,
		Platform:             models.PlatformCentralLab,
		Protocol:             models.ProtocolESC,
		RuleOutThreshold:     5,
		RuleInThreshold:      52,
		DischargeDestination: "GP Surgery",
		ConsultantRate:       135,
		NurseRate:            30,
	}
}

func TestNewProtocolStrategy(t *testing.T) {
	cfg := testConfig()

	esc, err := NewProtocolStrategy(cfg)
	require.NoError(t, err)
	assert.Equal(t, models.ProtocolESC, esc.Name())

	cfg.Protocol = models.ProtocolWaterfall
	wf, err := NewProtocolStrategy(cfg)
	require.NoError(t, err)
	assert.Equal(t, models.ProtocolWaterfall, wf.Name())

	cfg.Protocol = "triage-by-vibes"
	_, err = NewProtocolStrategy(cfg)
	assert.Error(t, err)
}

func TestClassifyTroponin(t *testing.T) {
	tests := []struct {
		name    string
		t0, t1  int
		ruleOut int
		ruleIn  int
		want    troponinClass
	}{
		{"below rule out cutoff", 3, 4, 5, 52, classRuleOut},
		{"low presentation with flat delta", 8, 9, 5, 52, classRuleOut},
		{"above rule in cutoff", 100, 101, 5, 52, classRuleIn},
		{"sharp rise below cutoff", 20, 40, 5, 52, classRuleIn},
		{"grey zone", 30, 31, 5, 52, classGreyZone},
		{"low presentation but rising", 8, 20, 5, 52, classRuleIn},
		// contradictory thresholds resolve to rule out
		{"overlapping thresholds favour rule out", 30, 31, 60, 52, classRuleOut},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyTroponin(tc.t0, tc.t1, tc.ruleOut, tc.ruleIn))
		})
	}
}

func TestESCSerialStrategy_Evaluate(t *testing.T) {
	cfg := testConfig()
	strategy, err := NewProtocolStrategy(cfg)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))

	t.Run("rule out discharges without a bed", func(t *testing.T) {
		// GIVEN a low-risk patient with an undetectable troponin
		p := &models.PatientRecord{Condition: models.ConditionNonCardiac, HeartScore: 2, T0: 3, T1: 4}

		// WHEN the result is back in time
		d := strategy.Evaluate(p, true, rng)

		// THEN the patient is discharged with no bed blocked
		assert.Equal(t, models.OutcomeRuleOut, d.Outcome)
		assert.Equal(t, "Discharge (GP Surgery)", d.Action)
		assert.Equal(t, models.RuleOutWaitMinutes, d.WaitMinutes)
		assert.Equal(t, 0, d.BedsBlocked)
		assert.Equal(t, 5.0, d.TestCost)
	})

	t.Run("rule in goes to the cath lab", func(t *testing.T) {
		p := &models.PatientRecord{Condition: models.ConditionNSTEMI, HeartScore: 8, T0: 100, T1: 150}

		d := strategy.Evaluate(p, true, rng)

		assert.Equal(t, models.OutcomeRuleIn, d.Outcome)
		assert.Equal(t, "Cath Lab Transfer", d.Action)
		assert.Equal(t, models.RuleInWaitMinutes, d.WaitMinutes)
		assert.Equal(t, 0, d.BedsBlocked)
	})

	t.Run("grey zone admits for observation", func(t *testing.T) {
		p := &models.PatientRecord{Condition: models.ConditionChronicInjury, HeartScore: 5, T0: 30, T1: 31}

		d := strategy.Evaluate(p, true, rng)

		assert.Equal(t, models.OutcomeObserve, d.Outcome)
		assert.Equal(t, models.ObserveWaitMinutes, d.WaitMinutes)
		assert.Equal(t, 1, d.BedsBlocked)
	})

	t.Run("late result blocks a bed regardless of troponin", func(t *testing.T) {
		// even an obvious rule-in cannot be acted on before the result lands
		p := &models.PatientRecord{Condition: models.ConditionNSTEMI, HeartScore: 9, T0: 400, T1: 480}

		d := strategy.Evaluate(p, false, rng)

		assert.Equal(t, models.OutcomePending, d.Outcome)
		assert.Equal(t, "Bed Blocked (Wait)", d.Action)
		assert.Equal(t, 90+models.ResultDelayMinutes, d.WaitMinutes)
		assert.Equal(t, 1, d.BedsBlocked)
		assert.Equal(t, 5.0, d.TestCost)
	})
}

func TestWaterfallStrategy_SingleSampleExit(t *testing.T) {
	cfg := testConfig()
	cfg.Protocol = models.ProtocolWaterfall
	cfg.UseSingleSample = true
	strategy, err := NewProtocolStrategy(cfg)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(7))

	// GIVEN a low-troponin, low-HEART patient
	for i := 0; i < 200; i++ {
		p := &models.PatientRecord{Condition: models.ConditionNonCardiac, HeartScore: 2, T0: 3, T1: 4}

		// WHEN evaluated with the single-sample pathway enabled
		d := strategy.Evaluate(p, false, rng)

		// THEN they exit on the first kit, paying at most the clinician delay
		assert.Equal(t, models.OutcomeRuleOutSingleSample, d.Outcome)
		assert.Equal(t, "Early Discharge (GP Surgery)", d.Action)
		assert.Equal(t, 5.0, d.TestCost, "one kit only")
		assert.Equal(t, 0, d.BedsBlocked)
		assert.GreaterOrEqual(t, d.WaitMinutes, 90)
		assert.LessOrEqual(t, d.WaitMinutes, 90+models.ResultDelayMinutes)
	}
}

func TestWaterfallStrategy_SingleSampleRequiresLowHeartScore(t *testing.T) {
	cfg := testConfig()
	cfg.Protocol = models.ProtocolWaterfall
	cfg.UseSingleSample = true
	strategy, err := NewProtocolStrategy(cfg)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(7))

	// HEART 4 misses the single-sample gate even with a clean troponin
	p := &models.PatientRecord{Condition: models.ConditionNonCardiac, HeartScore: 4, T0: 3, T1: 4}

	d := strategy.Evaluate(p, false, rng)

	assert.Equal(t, models.OutcomeRuleOutSerial, d.Outcome)
	assert.Equal(t, 10.0, d.TestCost, "two kits on the serial path")
}

func TestWaterfallStrategy_SerialPath(t *testing.T) {
	cfg := testConfig()
	cfg.Protocol = models.ProtocolWaterfall
	strategy, err := NewProtocolStrategy(cfg)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(3))

	t.Run("serial rule out", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			p := &models.PatientRecord{Condition: models.ConditionNonCardiac, HeartScore: 2, T0: 3, T1: 4}

			d := strategy.Evaluate(p, false, rng)

			assert.Equal(t, models.OutcomeRuleOutSerial, d.Outcome)
			assert.Equal(t, 10.0, d.TestCost)
			assert.Equal(t, 0, d.BedsBlocked)
			// two turnarounds plus the retest interval, plus at most one delay penalty
			assert.GreaterOrEqual(t, d.WaitMinutes, 90+models.ResultDelayMinutes+90)
			assert.LessOrEqual(t, d.WaitMinutes, 90+2*models.ResultDelayMinutes+90)
		}
	})

	t.Run("serial rule in", func(t *testing.T) {
		p := &models.PatientRecord{Condition: models.ConditionNSTEMI, HeartScore: 8, T0: 200, T1: 260}

		d := strategy.Evaluate(p, false, rng)

		assert.Equal(t, models.OutcomeRuleIn, d.Outcome)
		assert.Equal(t, "Cath Lab Transfer", d.Action)
		assert.Equal(t, 0, d.BedsBlocked)
	})

	t.Run("grey zone blocks a bed", func(t *testing.T) {
		p := &models.PatientRecord{Condition: models.ConditionChronicInjury, HeartScore: 5, T0: 30, T1: 31}

		d := strategy.Evaluate(p, false, rng)

		assert.Equal(t, models.OutcomeGreyZone, d.Outcome)
		assert.Equal(t, "Admit AMU", d.Action)
		assert.Equal(t, 1, d.BedsBlocked)
	})
}

func TestClinicalRescue_SplitsRuleOutsForRiskyAngina(t *testing.T) {
	cfg := testConfig()
	strategy, err := NewProtocolStrategy(cfg)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(11))

	// GIVEN an Unstable Angina patient the thresholds would discharge
	const trials = 10000
	rescued, missed := 0, 0
	for i := 0; i < trials; i++ {
		p := &models.PatientRecord{Condition: models.ConditionUnstableAngina, HeartScore: 6, T0: 3, T1: 4}

		d := strategy.Evaluate(p, true, rng)

		switch d.Outcome {
		case models.OutcomeClinicalRescue:
			rescued++
			assert.Equal(t, "Admit (High Risk)", d.Action)
			assert.Equal(t, models.RescueWaitMinutes, d.WaitMinutes)
			assert.Equal(t, 1, d.BedsBlocked)
		case models.OutcomeMissedUA:
			missed++
			assert.Equal(t, "Discharge (GP Surgery)", d.Action)
			assert.Equal(t, models.RuleOutWaitMinutes, d.WaitMinutes, "missed discharge keeps the rule-out wait")
			assert.Equal(t, 0, d.BedsBlocked)
		default:
			t.Fatalf("unexpected outcome %q for a ruled-out risky angina", d.Outcome)
		}
	}

	// WHEN run many times THEN the coin is fair to within sampling noise
	require.Equal(t, trials, rescued+missed)
	assert.InDelta(t, 0.5, float64(rescued)/trials, 0.05)
}

func TestClinicalRescue_LeavesOtherPatientsAlone(t *testing.T) {
	cfg := testConfig()
	strategy, err := NewProtocolStrategy(cfg)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(13))

	t.Run("low HEART angina is discharged normally", func(t *testing.T) {
		for i := 0; i < 500; i++ {
			p := &models.PatientRecord{Condition: models.ConditionUnstableAngina, HeartScore: models.RescueHeartScoreMin - 1, T0: 3, T1: 4}
			d := strategy.Evaluate(p, true, rng)
			assert.Equal(t, models.OutcomeRuleOut, d.Outcome)
		}
	})

	t.Run("non cardiac rule outs never trigger the net", func(t *testing.T) {
		for i := 0; i < 500; i++ {
			p := &models.PatientRecord{Condition: models.ConditionNonCardiac, HeartScore: 5, T0: 3, T1: 4}
			d := strategy.Evaluate(p, true, rng)
			assert.Equal(t, models.OutcomeRuleOut, d.Outcome)
		}
	})

	t.Run("angina in the grey zone is observed, not rescued", func(t *testing.T) {
		p := &models.PatientRecord{Condition: models.ConditionUnstableAngina, HeartScore: 8, T0: 30, T1: 31}
		d := strategy.Evaluate(p, true, rng)
		assert.Equal(t, models.OutcomeObserve, d.Outcome)
	})
}

func TestEvaluate_OutcomeAlwaysWellFormed(t *testing.T) {
	known := map[string]bool{
		models.OutcomeRuleOut:             true,
		models.OutcomeRuleOutSingleSample: true,
		models.OutcomeRuleOutSerial:       true,
		models.OutcomeRuleIn:              true,
		models.OutcomeObserve:             true,
		models.OutcomeGreyZone:            true,
		models.OutcomePending:             true,
		models.OutcomeClinicalRescue:      true,
		models.OutcomeMissedUA:            true,
	}

	for _, protocol := range []string{models.ProtocolESC, models.ProtocolWaterfall} {
		cfg := testConfig()
		cfg.Protocol = protocol
		cfg.UseSingleSample = true
		strategy, err := NewProtocolStrategy(cfg)
		require.NoError(t, err)
		rng := rand.New(rand.NewSource(17))

		for i := 0; i < 2000; i++ {
			p := &models.PatientRecord{
				Condition:  models.ConditionChronicInjury,
				HeartScore: rng.Intn(11),
				T0:         rng.Intn(200),
			}
			p.T1 = p.T0 + rng.Intn(20)

			d := strategy.Evaluate(p, rng.Intn(2) == 0, rng)

			assert.True(t, known[d.Outcome], "unknown outcome %q", d.Outcome)
			assert.NotEmpty(t, d.Action)
			assert.Greater(t, d.WaitMinutes, 0)
			assert.Contains(t, []int{0, 1}, d.BedsBlocked)
			assert.Greater(t, d.TestCost, 0.0)
		}
	}
}
