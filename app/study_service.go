package app

import (
	"context"

	"psychofit/domain/core"
	"psychofit/domain/psychometric"
	internal "psychofit/internal"
	"psychofit/internal/compare"
	"psychofit/internal/fit"
	"psychofit/ports"
)

// StudyService runs the single-dataset workflow: load trials, fit both
// psychometric models by multi-start maximum likelihood, compare them, and
// optionally persist the results.
type StudyService struct {
	reader ports.TrialReader
	fitter *fit.Fitter
	store  ports.FitStore // nil disables persistence
	rngs   ports.RNGFactory
	log    *internal.Logger
}

// NewStudyService wires a study service.
func NewStudyService(reader ports.TrialReader, fitter *fit.Fitter, store ports.FitStore, rngs ports.RNGFactory, logger *internal.Logger) *StudyService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &StudyService{reader: reader, fitter: fitter, store: store, rngs: rngs, log: logger}
}

// StudyReport is the structured outcome of one comparison study.
type StudyReport struct {
	StudyID      core.StudyID              `json:"study_id"`
	Trials       int                       `json:"trials"`
	PositiveRate float64                   `json:"positive_rate"`
	Fits         []psychometric.FitResult  `json:"fits"`
	Records      []psychometric.Criteria   `json:"records"`
	BestByAIC    string                    `json:"best_by_aic"`
	BestByBIC    string                    `json:"best_by_bic"`
}

// Models fitted by the comparison pipeline, in evidence-column order.
var comparisonModels = []psychometric.Model{
	psychometric.Stationary{},
	psychometric.NonStationary{},
}

// RunComparison loads the dataset at path and fits and compares both models.
func (s *StudyService) RunComparison(ctx context.Context, path string, restarts int) (*StudyReport, error) {
	data, err := s.reader.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	s.log.Info("loaded %d trials from %s (positive rate %.3f)", len(data), path, data.PositiveRate())
	return s.CompareDataset(ctx, data, restarts)
}

// CompareDataset fits and compares both models on an in-memory dataset.
func (s *StudyService) CompareDataset(ctx context.Context, data psychometric.Dataset, restarts int) (*StudyReport, error) {
	studyID := core.NewID()

	fits := make([]psychometric.FitResult, 0, len(comparisonModels))
	for _, model := range comparisonModels {
		obj, err := fit.NewNLLObjective(model, data, model.DefaultBounds())
		if err != nil {
			return nil, err
		}
		rng := s.rngs.Stream("fit/"+model.Name(), int64(len(data)))
		result, err := s.fitter.FitMultiStart(ctx, obj, restarts, rng)
		if err != nil {
			return nil, err
		}
		s.log.Info("fitted %s: nll=%.4f theta=%v converged=%v", result.Model, result.NLL, result.Theta, result.Converged)
		fits = append(fits, result)
	}

	records := compare.Compare(fits)
	report := &StudyReport{
		StudyID:      studyID,
		Trials:       len(data),
		PositiveRate: data.PositiveRate(),
		Fits:         fits,
		Records:      records,
		BestByAIC:    records[compare.BestByAIC(records)].Model,
		BestByBIC:    records[compare.BestByBIC(records)].Model,
	}

	if s.store != nil {
		for _, f := range fits {
			if err := s.store.SaveFit(ctx, studyID, f); err != nil {
				return nil, err
			}
		}
		for _, r := range records {
			if err := s.store.SaveCriteria(ctx, studyID, r); err != nil {
				return nil, err
			}
		}
	}

	return report, nil
}
