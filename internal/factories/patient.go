package factories

import (
	"math/rand"

	"github.com/jaswdr/faker"
	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/models"
)

var fake = faker.New()

// conditionProfile holds the prior ranges a condition draws its clinical
// variables from. Troponin values in ng/L, deltas over the retest interval.
type conditionProfile struct {
	heartMin, heartMax int
	tropMin, tropMax   int
	deltaMin, deltaMax int
	ageMin, ageMax     int
}

var conditionProfiles = map[string]conditionProfile{
	// True MI: high score, high or sharply rising troponin
	models.ConditionNSTEMI: {heartMin: 5, heartMax: 10, tropMin: 20, tropMax: 800, deltaMin: 10, deltaMax: 100, ageMin: 45, ageMax: 92},
	// Ischaemia without necrosis: high score but normal, flat troponin
	models.ConditionUnstableAngina: {heartMin: 4, heartMax: 9, tropMin: 0, tropMax: 10, deltaMin: 0, deltaMax: 2, ageMin: 40, ageMax: 88},
	// e.g. CKD: elevated but stable, grey-zone troponin
	models.ConditionChronicInjury: {heartMin: 3, heartMax: 8, tropMin: 20, tropMax: 60, deltaMin: 0, deltaMax: 3, ageMin: 55, ageMax: 95},
	models.ConditionNonCardiac:    {tropMin: 0, tropMax: 6, deltaMin: 0, deltaMax: 1, ageMin: 18, ageMax: 85},
}

// Non-Cardiac HEART scores follow a fixed discrete weighted distribution
// rather than a uniform range.
var (
	nonCardiacHeartScores  = []int{0, 1, 2, 3, 4, 5}
	nonCardiacHeartWeights = []int{30, 30, 20, 10, 5, 5}
)

type PatientFactory struct{}

// pickCondition partitions a draw in [0,100) into contiguous bands. The
// Unstable Angina and Chronic Injury widths are fixed; only the NSTEMI band
// scales with prevalence, and the Non-Cardiac band absorbs the remainder
// (empty once prevalence passes 85, never negative).
func (pf *PatientFactory) pickCondition(r, acsPrevalence float64) string {
	switch {
	case r < acsPrevalence:
		return models.ConditionNSTEMI
	case r < acsPrevalence+models.UnstableAnginaBandWidth:
		return models.ConditionUnstableAngina
	case r < acsPrevalence+models.UnstableAnginaBandWidth+models.ChronicInjuryBandWidth:
		return models.ConditionChronicInjury
	default:
		return models.ConditionNonCardiac
	}
}

// CreatePatient generates one synthetic attendance. Each call draws
// independently from rng; seeding rng externally makes runs reproducible.
func (pf *PatientFactory) CreatePatient(id int, acsPrevalence float64, rng *rand.Rand) models.PatientRecord {
	condition := pf.pickCondition(rng.Float64()*100, acsPrevalence)
	profile := conditionProfiles[condition]

	var heartScore int
	if condition == models.ConditionNonCardiac {
		heartScore = WeightedChoice(rng, nonCardiacHeartScores, nonCardiacHeartWeights)
	} else {
		heartScore = intBetween(rng, profile.heartMin, profile.heartMax)
	}

	t0 := intBetween(rng, profile.tropMin, profile.tropMax)
	delta := intBetween(rng, profile.deltaMin, profile.deltaMax)

	return models.PatientRecord{
		ID:         id,
		Name:       fake.Person().Name(),
		Age:        intBetween(rng, profile.ageMin, profile.ageMax),
		Condition:  condition,
		HeartScore: heartScore,
		T0:         t0,
		T1:         t0 + delta,
	}
}
