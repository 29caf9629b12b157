package fitter

import (
	"context"
	"fmt"
	"time"

	"FitPull/internal/domain/models"
	domsvc "FitPull/internal/domain/service"
	"FitPull/pkg/config"
	xhttp "FitPull/pkg/http"
)

// HTTPModelFitter delegates ARMA/GARCH estimation to the model-fitting
// service over HTTP. Fit calls are CPU-bound on the remote side and may run
// for a long time; the client timeout comes from config.
type HTTPModelFitter struct {
	baseURL string
	client  *xhttp.Client
	retries int
}

func NewHTTPModelFitter(cfg *config.Config) *HTTPModelFitter {
	return &HTTPModelFitter{
		baseURL: cfg.Fitter.ServiceURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.Fitter.Timeout)),
		retries: cfg.Fitter.Retries,
	}
}

type fitRequest struct {
	Series []float64 `json:"series"`
}

func (f *HTTPModelFitter) Fit(ctx context.Context, series []float64) (models.FittedModel, error) {
	var fm models.FittedModel
	if f.client == nil || f.baseURL == "" {
		return fm, fmt.Errorf("fitter http client not initialized")
	}

	err := f.postJSON(ctx, "/fit", fitRequest{Series: series}, &fm)
	if err != nil {
		return fm, fmt.Errorf("fit request: %w", err)
	}
	return fm, nil
}

func (f *HTTPModelFitter) postJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	attempts := f.retries
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = f.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodPost,
			URL:    f.baseURL + path,
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
			Body: payload,
		}, dest)
		if err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		// simple backoff
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

var _ domsvc.ModelFitter = (*HTTPModelFitter)(nil)
