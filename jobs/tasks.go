// Package jobs runs the asynchronous side of the back office: nightly
// stock scans and the sweep for register sessions left open past their
// lifetime.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan flags products at or below their minimum stock.
	TaskLowStockScan = "stock:lowscan"
	// TaskExpiredSessionScan reports register sessions open past their
	// lifetime.
	TaskExpiredSessionScan = "cash:expiredscan"
)

// ScanPayload carries scheduling metadata shared by both scans.
type ScanPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewLowStockScanTask constructs the low stock scan task.
func NewLowStockScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body, asynq.Queue(QueueDefault)), nil
}

// NewExpiredSessionScanTask constructs the expired session scan task.
func NewExpiredSessionScanTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(ScanPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExpiredSessionScan, body, asynq.Queue(QueueDefault)), nil
}
