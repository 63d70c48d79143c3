package ports

import (
	"context"

	"psychofit/domain/psychometric"
)

// TrialReader loads a two-column behavioral dataset:
// column 1 = stimulus (degrees), column 2 = response category in {1,2}.
type TrialReader interface {
	Read(ctx context.Context, path string) (psychometric.Dataset, error)
}
