package factories

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/models"
)

func TestPickCondition_BandPartition(t *testing.T) {
	pf := &PatientFactory{}

	tests := []struct {
		name       string
		draw       float64
		prevalence float64
		want       string
	}{
		{"top of the NSTEMI band", 14.99, 15, models.ConditionNSTEMI},
		{"start of the angina band", 15, 15, models.ConditionUnstableAngina},
		{"top of the angina band", 19.99, 15, models.ConditionUnstableAngina},
		{"start of the chronic band", 20, 15, models.ConditionChronicInjury},
		{"top of the chronic band", 29.99, 15, models.ConditionChronicInjury},
		{"remainder is non cardiac", 30, 15, models.ConditionNonCardiac},
		{"zero prevalence still yields angina", 0, 0, models.ConditionUnstableAngina},
		{"zero prevalence chronic band", 5, 0, models.ConditionChronicInjury},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, pf.pickCondition(tc.draw, tc.prevalence))
		})
	}
}

func TestPickCondition_HighPrevalenceSqueezesNonCardiac(t *testing.T) {
	pf := &PatientFactory{}

	// at 85% the non cardiac band is exactly zero width, beyond that the
	// chronic band truncates at 100 instead of going negative
	for _, prevalence := range []float64{85, 90, 100} {
		for draw := 0.0; draw < 100; draw += 0.5 {
			got := pf.pickCondition(draw, prevalence)
			assert.NotEqual(t, models.ConditionNonCardiac, got,
				"draw %.1f at prevalence %.0f", draw, prevalence)
		}
	}
}

func TestCreatePatient_ClinicalRanges(t *testing.T) {
	pf := &PatientFactory{}
	rng := rand.New(rand.NewSource(42))

	seen := map[string]int{}
	for i := 1; i <= 5000; i++ {
		p := pf.CreatePatient(i, 15, rng)
		seen[p.Condition]++

		require.Equal(t, i, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.GreaterOrEqual(t, p.T0, 0)
		assert.GreaterOrEqual(t, p.T1, p.T0, "troponin never falls over the retest interval")
		assert.GreaterOrEqual(t, p.HeartScore, 0)
		assert.LessOrEqual(t, p.HeartScore, 10)

		switch p.Condition {
		case models.ConditionNSTEMI:
			assert.GreaterOrEqual(t, p.HeartScore, 5)
			assert.GreaterOrEqual(t, p.T0, 20)
			assert.LessOrEqual(t, p.T0, 800)
			assert.GreaterOrEqual(t, p.Delta(), 10)
			assert.LessOrEqual(t, p.Delta(), 100)
		case models.ConditionUnstableAngina:
			// the trap case: worrying score, normal flat troponin
			assert.GreaterOrEqual(t, p.HeartScore, 4)
			assert.LessOrEqual(t, p.T0, 10)
			assert.LessOrEqual(t, p.Delta(), 2)
		case models.ConditionChronicInjury:
			assert.GreaterOrEqual(t, p.T0, 20)
			assert.LessOrEqual(t, p.T0, 60)
			assert.LessOrEqual(t, p.Delta(), 3)
		case models.ConditionNonCardiac:
			assert.LessOrEqual(t, p.HeartScore, 5)
			assert.LessOrEqual(t, p.T0, 6)
			assert.LessOrEqual(t, p.Delta(), 1)
		default:
			t.Fatalf("unknown condition %q", p.Condition)
		}
	}

	// all four bands should show up at 15% prevalence
	require.Len(t, seen, 4)
	assert.Greater(t, seen[models.ConditionNonCardiac], seen[models.ConditionNSTEMI],
		"the remainder band dominates at typical prevalence")
}

func TestWeightedChoice(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("zero weight values are never drawn", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			assert.Equal(t, 2, WeightedChoice(rng, []int{1, 2}, []int{0, 5}))
		}
	})

	t.Run("all weights zero falls back to the last value", func(t *testing.T) {
		assert.Equal(t, 9, WeightedChoice(rng, []int{3, 9}, []int{0, 0}))
	})

	t.Run("draws stay within the value set", func(t *testing.T) {
		values := []int{0, 1, 2, 3, 4, 5}
		weights := []int{30, 30, 20, 10, 5, 5}
		counts := map[int]int{}
		for i := 0; i < 10000; i++ {
			v := WeightedChoice(rng, values, weights)
			require.GreaterOrEqual(t, v, 0)
			require.LessOrEqual(t, v, 5)
			counts[v]++
		}
		// heaviest bucket should clearly beat the lightest
		assert.Greater(t, counts[0], counts[5])
	})
}
