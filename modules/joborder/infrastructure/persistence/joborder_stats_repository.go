package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pdnportal/portal/modules/joborder/domain/aggregates/joborder"
	"github.com/pdnportal/portal/pkg/composables"
)

type JobOrderStatsRepository struct{}

func NewJobOrderStatsRepository() joborder.StatsRepository {
	return &JobOrderStatsRepository{}
}

func (r *JobOrderStatsRepository) CountByStatus(ctx context.Context) (map[joborder.Status]int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT status, COUNT(*)
		FROM joborder_requests
		GROUP BY status`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[joborder.Status]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[joborder.Status(status)] = count
	}
	return counts, rows.Err()
}

func (r *JobOrderStatsRepository) MonthlySeries(ctx context.Context, from time.Time) ([]joborder.MonthlyCount, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT
			EXTRACT(YEAR FROM created_at)::int,
			EXTRACT(MONTH FROM created_at)::int,
			category,
			COUNT(*),
			COUNT(*) FILTER (WHERE status IN ('Completed', 'Checked', 'Closed'))
		FROM joborder_requests
		WHERE created_at >= $1
		GROUP BY 1, 2, 3
		ORDER BY 1, 2, 3`,
		from,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series []joborder.MonthlyCount
	for rows.Next() {
		var mc joborder.MonthlyCount
		var category string
		if err := rows.Scan(&mc.Year, &mc.Month, &category, &mc.Total, &mc.Completed); err != nil {
			return nil, err
		}
		mc.Category = joborder.Category(category)
		series = append(series, mc)
	}
	return series, rows.Err()
}

func (r *JobOrderStatsRepository) Workload(ctx context.Context) ([]joborder.WorkloadEntry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT u.id, u.name,
			COUNT(jr.id) FILTER (WHERE jr.status IN ('Routing', 'Completed'))
		FROM users u
		LEFT JOIN joborder_requests jr ON jr.in_charge_id = u.id
		WHERE u.maintenance
		GROUP BY u.id, u.name
		ORDER BY u.name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []joborder.WorkloadEntry
	for rows.Next() {
		var entry joborder.WorkloadEntry
		var id string
		if err := rows.Scan(&id, &entry.Name, &entry.Active); err != nil {
			return nil, err
		}
		userID, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		entry.UserID = userID
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *JobOrderStatsRepository) OpenWithTargetDate(ctx context.Context) ([]*joborder.JobRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT `+jobRequestFields+`
		FROM joborder_requests
		WHERE target_date IS NOT NULL
		  AND status NOT IN ('Closed', 'Cancelled', 'Rejected')
		ORDER BY target_date`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*joborder.JobRequest
	for rows.Next() {
		row, err := scanJobRequest(rows)
		if err != nil {
			return nil, err
		}
		jr, err := toDomainJobRequest(row)
		if err != nil {
			return nil, err
		}
		results = append(results, jr)
	}
	return results, rows.Err()
}
