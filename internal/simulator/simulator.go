package simulator

import (
	"encoding/json"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/factories"
	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/models"
)

type Simulator struct {
	Config *models.Config
	Rng    *rand.Rand
}

func NewSimulator(config *models.Config) *Simulator {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		Config: config,
		Rng:    rand.New(rand.NewSource(seed)),
	}
}

// RunShift simulates one 24-hour shift: generate each patient, draw the
// platform availability, evaluate the protocol, accumulate the aggregate.
// A zero caseload returns an empty table and zeroed totals, not an error.
func (s *Simulator) RunShift() (models.RunResult, error) {
	strategy, err := NewProtocolStrategy(s.Config)
	if err != nil {
		return models.RunResult{}, err
	}
	platform, err := s.Config.PlatformSettings()
	if err != nil {
		return models.RunResult{}, err
	}

	count := s.Config.DailyPatientCount()
	patients := make([]models.PatientRecord, 0, count)
	var agg models.ShiftAggregate

	factory := &factories.PatientFactory{}
	bar := progressbar.Default(int64(count), "simulating shift")

	for i := 1; i <= count; i++ {
		patient := factory.CreatePatient(i, s.Config.ACSPrevalence, s.Rng)
		resultReady := s.Rng.Float64() < platform.AvailabilityChance

		d := strategy.Evaluate(&patient, resultReady, s.Rng)
		patient.Outcome = d.Outcome
		patient.Action = d.Action
		patient.WaitMinutes = d.WaitMinutes
		patient.BedsBlocked = d.BedsBlocked

		agg.PatientCount++
		agg.TotalWaitMinutes += d.WaitMinutes
		agg.BedsBlocked += d.BedsBlocked
		agg.TestUnitCostTotal += d.TestCost

		switch patient.Condition {
		case models.ConditionNSTEMI:
			agg.TrueNSTEMI++
		}
		switch d.Outcome {
		case models.OutcomeMissedUA:
			agg.MissedUA++
		case models.OutcomeClinicalRescue:
			agg.ClinicalRescues++
		}

		patients = append(patients, patient)
		_ = bar.Add(1)
	}

	fin := FinalizeCosts(agg, s.Config.ConsultantRate, s.Config.NurseRate)
	return models.NewRunResult(s.Config, patients, agg, fin), nil
}

// Run executes a shift and streams the result to the configured output
// destination: one event per patient, then the shift summary.
func (s *Simulator) Run() (models.RunResult, error) {
	output := s.determineOutputDestination()
	defer func() {
		if closer, ok := output.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				log.Printf("Error closing output: %v", err)
			}
		}
	}()

	log.Printf("Shift starts: census=%d, chest pain %.0f%%, ACS prevalence %.0f%%, protocol=%s",
		s.Config.DailyCensus, s.Config.ChestPainPct, s.Config.ACSPrevalence, s.Config.Protocol)

	result, err := s.RunShift()
	if err != nil {
		return models.RunResult{}, err
	}

	for _, patient := range result.Patients {
		msg, err := json.Marshal(NewPatientEvent(result, patient))
		if err != nil {
			log.Printf("Error serializing patient event: %v", err)
			continue
		}
		if err := output.WriteMessage(TopicPatientEvents, msg); err != nil {
			log.Printf("Failed to write message: %v", err)
		}
	}

	summary, err := json.Marshal(NewShiftSummaryEvent(result))
	if err != nil {
		return result, err
	}
	if err := output.WriteMessage(TopicShiftSummary, summary); err != nil {
		log.Printf("Failed to write shift summary: %v", err)
	}

	log.Printf("Shift complete: %d patients, %d beds blocked, £%.2f total cost",
		result.Aggregate.PatientCount, result.Aggregate.BedsBlocked, result.Financials.TotalCost)
	return result, nil
}
