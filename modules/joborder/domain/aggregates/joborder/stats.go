package joborder

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type MonthlyCount struct {
	Year      int      `json:"year"`
	Month     int      `json:"month"`
	Category  Category `json:"category"`
	Total     int64    `json:"total"`
	Completed int64    `json:"completed"`
}

// WorkloadEntry is one maintenance staff member's share of active work.
type WorkloadEntry struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Active int64     `json:"active"`
}

type StatsRepository interface {
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	MonthlySeries(ctx context.Context, from time.Time) ([]MonthlyCount, error)
	Workload(ctx context.Context) ([]WorkloadEntry, error)
	// OpenWithTargetDate lists non-terminal requests that have a target
	// date, for deadline bucketing.
	OpenWithTargetDate(ctx context.Context) ([]*JobRequest, error)
}
