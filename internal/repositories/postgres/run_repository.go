package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thomaswlyons-a11y/Chestpain28012026/internal/models"
)

type RunRepository struct {
	pool *pgxpool.Pool
}

func NewRunRepository(ctx context.Context, dsn string) (*RunRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return &RunRepository{pool: pool}, nil
}

// SaveRun writes the run header and every patient row in one transaction.
func (r *RunRepository) SaveRun(ctx context.Context, result models.RunResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        INSERT INTO simulation_runs (
            run_id, config_fingerprint, generated_at, patient_count,
            total_wait_minutes, beds_blocked, true_nstemi, missed_ua,
            clinical_rescues, waiting_cost, testing_cost, total_cost
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		result.RunID,
		result.ConfigFingerprint,
		result.GeneratedAt,
		result.Aggregate.PatientCount,
		result.Aggregate.TotalWaitMinutes,
		result.Aggregate.BedsBlocked,
		result.Aggregate.TrueNSTEMI,
		result.Aggregate.MissedUA,
		result.Aggregate.ClinicalRescues,
		result.Financials.WaitingCost,
		result.Financials.TestingCost,
		result.Financials.TotalCost,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", result.RunID, err)
	}

	stmt := `
        INSERT INTO shift_patients (
            run_id, patient_id, name, age, condition, heart_score,
            t0, t1, outcome, action, wait_minutes, beds_blocked
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	for _, p := range result.Patients {
		_, err = tx.Exec(ctx, stmt,
			result.RunID,
			p.ID,
			p.Name,
			p.Age,
			p.Condition,
			p.HeartScore,
			p.T0,
			p.T1,
			p.Outcome,
			p.Action,
			p.WaitMinutes,
			p.BedsBlocked,
		)
		if err != nil {
			return fmt.Errorf("failed to insert patient %d: %w", p.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *RunRepository) Close() {
	r.pool.Close()
}
