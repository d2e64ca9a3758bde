package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/australsoft/comercia/internal/cash"
)

// ExpiredSessionScanner reports register sessions left open past their
// lifetime. Sessions are never force-closed here: the close needs a counted
// drawer, so the scan only surfaces them for the operator.
type ExpiredSessionScanner struct {
	logger *slog.Logger
	pool   *pgxpool.Pool
}

// NewExpiredSessionScanner constructs the scanner.
func NewExpiredSessionScanner(logger *slog.Logger, pool *pgxpool.Pool) *ExpiredSessionScanner {
	return &ExpiredSessionScanner{logger: logger, pool: pool}
}

// Handle processes TaskExpiredSessionScan tasks.
func (s *ExpiredSessionScanner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	cutoff := time.Now().UTC().Add(-cash.SessionTTL)
	rows, err := s.pool.Query(ctx, `
		SELECT id, business_id, opened_by, opened_at
		FROM cash_sessions
		WHERE status = $1 AND opened_at < $2
		ORDER BY opened_at
	`, cash.SessionOpen, cutoff)
	if err != nil {
		return err
	}
	defer rows.Close()

	flagged := 0
	for rows.Next() {
		var id, businessID, openedBy string
		var openedAt time.Time
		if err := rows.Scan(&id, &businessID, &openedBy, &openedAt); err != nil {
			return err
		}
		flagged++
		s.logger.Warn("cash session expired without close",
			"session_id", id,
			"business_id", businessID,
			"opened_by", openedBy,
			"opened_at", openedAt,
		)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.logger.Info("expired session scan finished", "flagged", flagged,
		"scheduled_for", payload.ScheduledFor)
	return nil
}
