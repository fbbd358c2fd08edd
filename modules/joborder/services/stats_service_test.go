package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pdnportal/portal/modules/joborder/domain/aggregates/joborder"
)

type stubStatsRepo struct {
	byStatus       map[joborder.Status]int64
	monthlyFrom    time.Time
	series         []joborder.MonthlyCount
	workload       []joborder.WorkloadEntry
	withTargetDate []*joborder.JobRequest
}

func (s *stubStatsRepo) CountByStatus(context.Context) (map[joborder.Status]int64, error) {
	return s.byStatus, nil
}

func (s *stubStatsRepo) MonthlySeries(_ context.Context, from time.Time) ([]joborder.MonthlyCount, error) {
	s.monthlyFrom = from
	return s.series, nil
}

func (s *stubStatsRepo) Workload(context.Context) ([]joborder.WorkloadEntry, error) {
	return s.workload, nil
}

func (s *stubStatsRepo) OpenWithTargetDate(context.Context) ([]*joborder.JobRequest, error) {
	return s.withTargetDate, nil
}

func requestDueAt(id int64, target time.Time) *joborder.JobRequest {
	return &joborder.JobRequest{ID: id, Status: joborder.StatusRouting, TargetDate: &target}
}

func TestStatsService_Deadlines_BucketsByTargetDate(t *testing.T) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	nextMonday := today.AddDate(0, 0, 8-weekday)

	stats := &stubStatsRepo{withTargetDate: []*joborder.JobRequest{
		requestDueAt(1, today.AddDate(0, 0, -3)),
		requestDueAt(2, today),
		requestDueAt(3, today.AddDate(0, 0, 1)),
		requestDueAt(4, nextMonday.AddDate(0, 0, 2)),
		requestDueAt(5, nextMonday.AddDate(0, 0, 4)),
		requestDueAt(6, today.AddDate(0, 0, 60)),
	}}
	service := NewStatsService(newMemoryRepo(), stats)

	buckets, err := service.Deadlines(context.Background())
	require.NoError(t, err)

	require.Len(t, buckets.Overdue, 1)
	require.Equal(t, int64(1), buckets.Overdue[0].ID)
	require.Len(t, buckets.Today, 1)
	require.Equal(t, int64(2), buckets.Today[0].ID)
	require.Len(t, buckets.Tomorrow, 1)
	require.Equal(t, int64(3), buckets.Tomorrow[0].ID)
	require.Len(t, buckets.NextWeek, 2)
	require.Len(t, buckets.Later, 1)
	require.Equal(t, int64(6), buckets.Later[0].ID)
}

func TestStatsService_Deadlines_DayBeforeNextMondayCountsAsThisWeek(t *testing.T) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	nextMonday := today.AddDate(0, 0, 8-weekday)
	target := nextMonday.AddDate(0, 0, -1)
	if !target.After(today.AddDate(0, 0, 1)) {
		t.Skip("end of week overlaps today/tomorrow buckets")
	}

	stats := &stubStatsRepo{withTargetDate: []*joborder.JobRequest{requestDueAt(1, target)}}
	service := NewStatsService(newMemoryRepo(), stats)

	buckets, err := service.Deadlines(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets.ThisWeek, 1)
}

func TestStatsService_Monthly_DefaultsToSixMonthWindow(t *testing.T) {
	stats := &stubStatsRepo{}
	service := NewStatsService(newMemoryRepo(), stats)

	_, err := service.Monthly(context.Background(), 0)
	require.NoError(t, err)

	now := time.Now()
	expected := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -5, 0)
	require.Equal(t, expected, stats.monthlyFrom)
}

func TestStatsService_Overview_CountsActingUsersFigures(t *testing.T) {
	f := newWorkflowFixture(t)
	f.submit(t)
	cancelled := f.submit(t)
	require.NoError(t, f.service.Cancel(f.ctx, cancelled.ID, f.requester))

	stats := &stubStatsRepo{byStatus: map[joborder.Status]int64{
		joborder.StatusRouting:   1,
		joborder.StatusCancelled: 1,
	}}
	service := NewStatsService(f.repo, stats)

	overview, err := service.Overview(f.ctx, f.requester)
	require.NoError(t, err)
	require.Equal(t, int64(2), overview.SubmittedThisMonth)
	require.Equal(t, int64(1), overview.PendingForUser)
	require.Equal(t, int64(0), overview.ClosedThisMonth)

	approverView, err := service.Overview(f.ctx, f.approvers[0])
	require.NoError(t, err)
	require.Equal(t, int64(1), approverView.AwaitingAction)
}
