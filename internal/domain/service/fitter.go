package service

import (
	"context"

	"FitPull/internal/domain/models"
)

// ModelFitter fits ARMA(1,1) and GARCH(1,1) models to a return series and
// returns the raw coefficient mapping. Implementations enforce their own
// minimum-observation requirement and report refusals via Success=false
// rather than an error; errors are reserved for transport failures.
type ModelFitter interface {
	Fit(ctx context.Context, series []float64) (models.FittedModel, error)
}
