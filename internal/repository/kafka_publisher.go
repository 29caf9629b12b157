package repository

import (
	"context"
	"time"

	"FitPull/internal/domain/models"
	"FitPull/internal/domain/repository"
	pkgkafka "FitPull/pkg/kafka"
)

// KafkaMetricsPublisher emits one event per persisted parameter set, keyed by
// symbol so per-symbol ordering is preserved by the hash balancer.
type KafkaMetricsPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaMetricsPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaMetricsPublisher{producer: producer, topic: topic}
}

func (p *KafkaMetricsPublisher) PublishMetrics(ctx context.Context, sm models.SymbolMetrics) error {
	return p.producer.Publish(ctx, p.topic, []byte(sm.Symbol), map[string]interface{}{
		"symbol":           sm.Symbol,
		"ar_coeff":         sm.ArCoeff,
		"ma_coeff":         sm.MaCoeff,
		"const":            sm.Const,
		"omega":            sm.Omega,
		"alpha":            sm.Alpha,
		"beta":             sm.Beta,
		"garch_volatility": sm.GarchVolatility,
		"calculated_at":    time.Now().UTC().Unix(),
	})
}

func (p *KafkaMetricsPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopPublisher is used when Kafka is disabled in config.
type NoopPublisher struct{}

func (NoopPublisher) PublishMetrics(ctx context.Context, sm models.SymbolMetrics) error { return nil }
func (NoopPublisher) Close() error                                                      { return nil }
