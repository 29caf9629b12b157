package models

// Requests and responses for the training HTTP endpoints.

type TrainRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,dive,required"`
}

// TrainSyncResponse carries the full ordered list of successful records.
// Skipped and failed symbols are omitted, not reported as errors.
type TrainSyncResponse struct {
	Status  string          `json:"status"`
	Results []SymbolMetrics `json:"results"`
}

// TrainBatchAck acknowledges a deferred batch before any processing happens.
type TrainBatchAck struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
	Queued int    `json:"queued"`
}

// TrainBatchPayload is the queue message for one deferred batch.
type TrainBatchPayload struct {
	JobID   string   `json:"job_id"`
	Symbols []string `json:"symbols"`
}
