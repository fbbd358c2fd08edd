package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pdnportal/portal/modules/joborder/domain/aggregates/joborder"
)

// StatsService feeds the portal dashboards: per-user counters, chart
// series, maintenance workload and deadline buckets.
type StatsService struct {
	repo  joborder.Repository
	stats joborder.StatsRepository
}

func NewStatsService(repo joborder.Repository, stats joborder.StatsRepository) *StatsService {
	return &StatsService{repo: repo, stats: stats}
}

type Overview struct {
	ByStatus map[joborder.Status]int64 `json:"by_status"`

	SubmittedThisMonth int64 `json:"submitted_this_month"`
	PendingForUser     int64 `json:"pending_for_user"`
	ClosedThisMonth    int64 `json:"closed_this_month"`
	AwaitingAction     int64 `json:"awaiting_action"`
}

var pendingStatuses = []joborder.Status{
	joborder.StatusRouting,
	joborder.StatusCompleted,
	joborder.StatusChecked,
}

// Overview aggregates module-wide status counts with the acting user's
// month-scoped figures.
func (s *StatsService) Overview(ctx context.Context, userID uuid.UUID) (*Overview, error) {
	byStatus, err := s.stats.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	submitted, err := s.repo.Count(ctx, &joborder.FindParams{
		PreparerID:  &userID,
		CreatedFrom: &monthStart,
	})
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.Count(ctx, &joborder.FindParams{
		PreparerID: &userID,
		Statuses:   pendingStatuses,
	})
	if err != nil {
		return nil, err
	}
	closed, err := s.repo.Count(ctx, &joborder.FindParams{
		PreparerID:  &userID,
		Statuses:    []joborder.Status{joborder.StatusClosed},
		CreatedFrom: &monthStart,
	})
	if err != nil {
		return nil, err
	}
	awaiting, err := s.repo.Count(ctx, &joborder.FindParams{
		ApproverID: &userID,
	})
	if err != nil {
		return nil, err
	}

	return &Overview{
		ByStatus:           byStatus,
		SubmittedThisMonth: submitted,
		PendingForUser:     pending,
		ClosedThisMonth:    closed,
		AwaitingAction:     awaiting,
	}, nil
}

// Monthly returns the per-category submission series for the last n months.
func (s *StatsService) Monthly(ctx context.Context, months int) ([]joborder.MonthlyCount, error) {
	if months <= 0 {
		months = 6
	}
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, -(months - 1), 0)
	return s.stats.MonthlySeries(ctx, from)
}

func (s *StatsService) Workload(ctx context.Context) ([]joborder.WorkloadEntry, error) {
	return s.stats.Workload(ctx)
}

type DeadlineBuckets struct {
	Overdue  []*joborder.JobRequest `json:"overdue"`
	Today    []*joborder.JobRequest `json:"today"`
	Tomorrow []*joborder.JobRequest `json:"tomorrow"`
	ThisWeek []*joborder.JobRequest `json:"this_week"`
	NextWeek []*joborder.JobRequest `json:"next_week"`
	Later    []*joborder.JobRequest `json:"later"`
}

// Deadlines buckets open requests by how soon their target date falls.
func (s *StatsService) Deadlines(ctx context.Context) (*DeadlineBuckets, error) {
	requests, err := s.stats.OpenWithTargetDate(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	// Weeks roll over on Monday.
	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	nextMonday := today.AddDate(0, 0, 8-weekday)
	mondayAfter := nextMonday.AddDate(0, 0, 7)

	buckets := &DeadlineBuckets{}
	for _, req := range requests {
		target := *req.TargetDate
		switch {
		case target.Before(today):
			buckets.Overdue = append(buckets.Overdue, req)
		case target.Before(tomorrow):
			buckets.Today = append(buckets.Today, req)
		case target.Before(tomorrow.AddDate(0, 0, 1)):
			buckets.Tomorrow = append(buckets.Tomorrow, req)
		case target.Before(nextMonday):
			buckets.ThisWeek = append(buckets.ThisWeek, req)
		case target.Before(mondayAfter):
			buckets.NextWeek = append(buckets.NextWeek, req)
		default:
			buckets.Later = append(buckets.Later, req)
		}
	}
	return buckets, nil
}
