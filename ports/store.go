package ports

import (
	"context"

	"psychofit/domain/core"
	"psychofit/domain/psychometric"
)

// FitStore persists fit results and comparison records per study.
type FitStore interface {
	SaveFit(ctx context.Context, studyID core.StudyID, result psychometric.FitResult) error
	SaveCriteria(ctx context.Context, studyID core.StudyID, criteria psychometric.Criteria) error
	FitsByStudy(ctx context.Context, studyID core.StudyID) ([]psychometric.FitResult, error)
	CriteriaByStudy(ctx context.Context, studyID core.StudyID) ([]psychometric.Criteria, error)
}
