package models

import "time"

// FittedModel is the raw output of a model-fitting run. Coefficient names are
// not stable across fitter library versions: newer builds emit the flattened
// Coefficients map, older builds and test doubles emit the nested Arma/Garch
// maps. Always pass through params.Normalize before using the values.
type FittedModel struct {
	Success      bool               `json:"success"`
	Error        string             `json:"error,omitempty"`
	Coefficients map[string]float64 `json:"coefficients,omitempty"`
	Arma         map[string]float64 `json:"arma,omitempty"`
	Garch        map[string]float64 `json:"garch,omitempty"`
}

// NormalizedMetrics is the canonical parameter record. Missing coefficients
// default to zero.
type NormalizedMetrics struct {
	ArCoeff         float64 `json:"ar_coeff"`
	MaCoeff         float64 `json:"ma_coeff"`
	Const           float64 `json:"const"`
	Omega           float64 `json:"omega"`
	Alpha           float64 `json:"alpha"`
	Beta            float64 `json:"beta"`
	GarchVolatility float64 `json:"garch_volatility"`
}

// SymbolMetrics tags a normalized record with its symbol for batch responses.
type SymbolMetrics struct {
	Symbol string `json:"symbol"`
	NormalizedMetrics
}

// LatestMetrics is the read shape of the persisted sink: the most recent
// stored record for a symbol.
type LatestMetrics struct {
	Symbol          string    `json:"symbol"`
	ArCoeff         float64   `json:"ar_coeff"`
	MaCoeff         float64   `json:"ma_coeff"`
	GarchVolatility float64   `json:"garch_volatility"`
	CalculatedAt    time.Time `json:"calculated_at"`
}

// OutcomeCode classifies the terminal state of one symbol's processing.
type OutcomeCode string

const (
	OutcomeSuccess                 OutcomeCode = "success"
	OutcomeSkippedNoData           OutcomeCode = "skipped_no_data"
	OutcomeSkippedInsufficientData OutcomeCode = "skipped_insufficient_data"
	OutcomeTrainingFailed          OutcomeCode = "training_failed"
	OutcomeFetchFailed             OutcomeCode = "fetch_failed"
)

// BatchOutcome is the per-symbol result tag within a batch.
type BatchOutcome struct {
	Symbol string      `json:"symbol"`
	Code   OutcomeCode `json:"code"`
	Reason string      `json:"reason,omitempty"`
}

// BatchSummary aggregates outcomes across one batch, in input order.
type BatchSummary struct {
	Outcomes        []BatchOutcome `json:"outcomes"`
	Succeeded       int            `json:"succeeded"`
	Skipped         int            `json:"skipped"`
	Failed          int            `json:"failed"`
	PersistFailures int            `json:"persist_failures"`
}

// Add records an outcome and updates the counters.
func (s *BatchSummary) Add(o BatchOutcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Code {
	case OutcomeSuccess:
		s.Succeeded++
	case OutcomeSkippedNoData, OutcomeSkippedInsufficientData:
		s.Skipped++
	default:
		s.Failed++
	}
}
