package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"FitPull/internal/domain/models"
	domrepo "FitPull/internal/domain/repository"
	pkgch "FitPull/pkg/clickhouse"
	applogger "FitPull/pkg/logger"
)

// CHMetricsStore is the result sink backed by ClickHouse. Writes are
// append-only: every Save inserts a new timestamped row, and Latest reads the
// max-timestamp row per symbol. Fixed schema:
// (timestamp, symbol, ar_param, ma_param, volatility).
type CHMetricsStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHMetricsStore(ch *pkgch.Client, table string) *CHMetricsStore {
	return &CHMetricsStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHMetricsStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHMetricsStore) Save(ctx context.Context, symbol string, m models.NormalizedMetrics) error {
	start := time.Now()
	q := fmt.Sprintf("INSERT INTO %s (timestamp, symbol, ar_param, ma_param, volatility) VALUES (?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		time.Now().UTC(),
		symbol,
		m.ArCoeff,
		m.MaCoeff,
		m.GarchVolatility,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_metrics error",
				applogger.String("table", s.table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("save metrics: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse save_metrics ok",
			applogger.String("symbol", symbol),
			applogger.Float64("volatility", m.GarchVolatility),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHMetricsStore) Latest(ctx context.Context, symbol string) (*models.LatestMetrics, error) {
	q := fmt.Sprintf(`
        SELECT ar_param, ma_param, volatility, timestamp
        FROM %s
        WHERE symbol = ?
        ORDER BY timestamp DESC
        LIMIT 1
    `, s.table)
	row := s.db.QueryRowContext(ctx, q, symbol)

	var lm models.LatestMetrics
	lm.Symbol = symbol
	err := row.Scan(&lm.ArCoeff, &lm.MaCoeff, &lm.GarchVolatility, &lm.CalculatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domrepo.ErrNotFound
		}
		if s.l != nil {
			s.l.Error("clickhouse latest_metrics error",
				applogger.String("table", s.table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("latest metrics: %w", err)
	}
	return &lm, nil
}

func (s *CHMetricsStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var _ domrepo.MetricsStore = (*CHMetricsStore)(nil)
