package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LowStockScanner walks the catalog and reports products that fell to or
// below their minimum stock.
type LowStockScanner struct {
	logger *slog.Logger
	pool   *pgxpool.Pool
}

// NewLowStockScanner constructs the scanner.
func NewLowStockScanner(logger *slog.Logger, pool *pgxpool.Pool) *LowStockScanner {
	return &LowStockScanner{logger: logger, pool: pool}
}

// Handle processes TaskLowStockScan tasks.
func (s *LowStockScanner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	rows, err := s.pool.Query(ctx, `
		SELECT business_id, code, description, current_stock, minimum_stock
		FROM products
		WHERE deleted_at IS NULL AND is_active
			AND current_stock <= minimum_stock
		ORDER BY business_id, code
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	flagged := 0
	for rows.Next() {
		var businessID, code, description string
		var current, minimum int64
		if err := rows.Scan(&businessID, &code, &description, &current, &minimum); err != nil {
			return err
		}
		flagged++
		s.logger.Warn("low stock",
			"business_id", businessID,
			"code", code,
			"description", description,
			"current", current,
			"minimum", minimum,
		)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.logger.Info("low stock scan finished", "flagged", flagged,
		"scheduled_for", payload.ScheduledFor)
	return nil
}
