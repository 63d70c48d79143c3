package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrate creates the result tables if they do not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS fit_results (
			id BIGSERIAL PRIMARY KEY,
			study_id TEXT NOT NULL,
			model TEXT NOT NULL,
			theta JSONB NOT NULL,
			nll DOUBLE PRECISION NOT NULL,
			num_params INT NOT NULL,
			sample_size INT NOT NULL,
			converged BOOLEAN NOT NULL,
			restarts INT NOT NULL,
			evaluations INT NOT NULL,
			fitted_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fit_results_study ON fit_results (study_id)`,
		`CREATE TABLE IF NOT EXISTS comparison_records (
			id BIGSERIAL PRIMARY KEY,
			study_id TEXT NOT NULL,
			model TEXT NOT NULL,
			log_likelihood DOUBLE PRECISION NOT NULL,
			aic DOUBLE PRECISION NOT NULL,
			bic DOUBLE PRECISION NOT NULL,
			rescaled_aic DOUBLE PRECISION NOT NULL,
			rescaled_bic DOUBLE PRECISION NOT NULL,
			num_params INT NOT NULL,
			sample_size INT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comparison_records_study ON comparison_records (study_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
