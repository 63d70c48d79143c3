package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"psychofit/domain/core"
	"psychofit/domain/psychometric"
	"psychofit/ports"
)

// fitRepository implements the FitStore interface
type fitRepository struct {
	db *sqlx.DB
}

// NewFitRepository creates a new fit result repository
func NewFitRepository(db *sqlx.DB) ports.FitStore {
	return &fitRepository{db: db}
}

// Connect opens a postgres connection pool for the repository.
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// SaveFit inserts a fit result for a study
func (r *fitRepository) SaveFit(ctx context.Context, studyID core.StudyID, result psychometric.FitResult) error {
	thetaJSON, err := json.Marshal(result.Theta)
	if err != nil {
		return fmt.Errorf("failed to marshal theta: %w", err)
	}

	query := `INSERT INTO fit_results (
		study_id, model, theta, nll, num_params, sample_size,
		converged, restarts, evaluations, fitted_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.ExecContext(ctx, query,
		studyID, result.Model, thetaJSON, result.NLL, result.NumParams, result.SampleSize,
		result.Converged, result.Restarts, result.Evaluations, result.FittedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to save fit result: %w", err)
	}
	return nil
}

// SaveCriteria inserts a comparison record for a study
func (r *fitRepository) SaveCriteria(ctx context.Context, studyID core.StudyID, c psychometric.Criteria) error {
	query := `INSERT INTO comparison_records (
		study_id, model, log_likelihood, aic, bic, rescaled_aic, rescaled_bic,
		num_params, sample_size
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		studyID, c.Model, c.LogLikelihood, c.AIC, c.BIC, c.RescaledAIC, c.RescaledBIC,
		c.NumParams, c.SampleSize,
	)
	if err != nil {
		return fmt.Errorf("failed to save comparison record: %w", err)
	}
	return nil
}

// fitRow is the database shape of a fit result
type fitRow struct {
	StudyID     string    `db:"study_id"`
	Model       string    `db:"model"`
	Theta       []byte    `db:"theta"`
	NLL         float64   `db:"nll"`
	NumParams   int       `db:"num_params"`
	SampleSize  int       `db:"sample_size"`
	Converged   bool      `db:"converged"`
	Restarts    int       `db:"restarts"`
	Evaluations int       `db:"evaluations"`
	FittedAt    time.Time `db:"fitted_at"`
}

// FitsByStudy returns all fit results stored for a study
func (r *fitRepository) FitsByStudy(ctx context.Context, studyID core.StudyID) ([]psychometric.FitResult, error) {
	query := `SELECT study_id, model, theta, nll, num_params, sample_size,
		converged, restarts, evaluations, fitted_at
		FROM fit_results WHERE study_id = $1 ORDER BY fitted_at`

	var rows []fitRow
	if err := r.db.SelectContext(ctx, &rows, query, studyID); err != nil {
		return nil, fmt.Errorf("failed to load fit results: %w", err)
	}

	results := make([]psychometric.FitResult, len(rows))
	for i, row := range rows {
		var theta []float64
		if err := json.Unmarshal(row.Theta, &theta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal theta: %w", err)
		}
		results[i] = psychometric.FitResult{
			Model:       row.Model,
			Theta:       theta,
			NLL:         row.NLL,
			NumParams:   row.NumParams,
			SampleSize:  row.SampleSize,
			Converged:   row.Converged,
			Restarts:    row.Restarts,
			Evaluations: row.Evaluations,
			FittedAt:    core.NewTimestamp(row.FittedAt),
		}
	}
	return results, nil
}

// criteriaRow is the database shape of a comparison record
type criteriaRow struct {
	StudyID       string  `db:"study_id"`
	Model         string  `db:"model"`
	LogLikelihood float64 `db:"log_likelihood"`
	AIC           float64 `db:"aic"`
	BIC           float64 `db:"bic"`
	RescaledAIC   float64 `db:"rescaled_aic"`
	RescaledBIC   float64 `db:"rescaled_bic"`
	NumParams     int     `db:"num_params"`
	SampleSize    int     `db:"sample_size"`
}

// CriteriaByStudy returns all comparison records stored for a study
func (r *fitRepository) CriteriaByStudy(ctx context.Context, studyID core.StudyID) ([]psychometric.Criteria, error) {
	query := `SELECT study_id, model, log_likelihood, aic, bic, rescaled_aic, rescaled_bic,
		num_params, sample_size
		FROM comparison_records WHERE study_id = $1 ORDER BY model`

	var rows []criteriaRow
	if err := r.db.SelectContext(ctx, &rows, query, studyID); err != nil {
		return nil, fmt.Errorf("failed to load comparison records: %w", err)
	}

	records := make([]psychometric.Criteria, len(rows))
	for i, row := range rows {
		records[i] = psychometric.Criteria{
			Model:         row.Model,
			LogLikelihood: row.LogLikelihood,
			AIC:           row.AIC,
			BIC:           row.BIC,
			RescaledAIC:   row.RescaledAIC,
			RescaledBIC:   row.RescaledBIC,
			NumParams:     row.NumParams,
			SampleSize:    row.SampleSize,
		}
	}
	return records, nil
}
