package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domrepo "FitPull/internal/domain/repository"
	pkgch "FitPull/pkg/clickhouse"
	applogger "FitPull/pkg/logger"
)

// CHPriceSource reads historical close prices from ClickHouse.
type CHPriceSource struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHPriceSource(ch *pkgch.Client, table string) *CHPriceSource {
	return &CHPriceSource{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHPriceSource) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHPriceSource) FetchPrices(ctx context.Context, symbol string) ([]float64, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT price
        FROM %s
        WHERE symbol = ?
        ORDER BY timestamp ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse fetch_prices query error",
				applogger.String("table", s.table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	defer rows.Close()

	out := make([]float64, 0, 1024)
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse fetch_prices scan error",
					applogger.String("table", s.table),
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan price: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse fetch_prices rows error",
				applogger.String("table", s.table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse fetch_prices ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

var _ domrepo.PriceSource = (*CHPriceSource)(nil)
