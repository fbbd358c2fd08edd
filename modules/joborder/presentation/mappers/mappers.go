package mappers

import (
	"time"

	"github.com/pdnportal/portal/modules/joborder/domain/aggregates/joborder"
	"github.com/pdnportal/portal/modules/joborder/presentation/viewmodels"
	"github.com/pdnportal/portal/modules/joborder/services"
)

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func JobRequestToViewModel(r *joborder.JobRequest) *viewmodels.JobRequest {
	vm := &viewmodels.JobRequest{
		ID:               r.ID,
		ControlNumber:    r.ControlNumber,
		Category:         string(r.Category),
		RequesterID:      r.RequesterID.String(),
		RequestorName:    r.RequestorName,
		Line:             r.Line,
		Tool:             r.Tool,
		NatureOfChange:   r.NatureOfChange,
		Details:          r.Details,
		Status:           string(r.Status),
		CurrentStage:     int(r.CurrentStage),
		CurrentStageName: r.CurrentStage.String(),
		DateReceived:     formatDatePtr(r.DateReceived),
		TargetDate:       formatDatePtr(r.TargetDate),
		TargetDateReason: r.TargetDateReason,
		ActionTaken:      r.ActionTaken,
		DateCompleted:    formatTimePtr(r.DateCompleted),
		CreatedAt:        formatTime(r.CreatedAt),
		UpdatedAt:        formatTime(r.UpdatedAt),
	}
	if r.InChargeID != nil {
		s := r.InChargeID.String()
		vm.InChargeID = &s
	}
	return vm
}

func RoutingStepToViewModel(s *joborder.RoutingStep) *viewmodels.RoutingStep {
	return &viewmodels.RoutingStep{
		ID:            s.ID,
		RequestID:     s.RequestID,
		RequesterID:   s.RequesterID.String(),
		ApproverID:    s.ApproverID.String(),
		Sequence:      s.Sequence,
		Status:        string(s.Status),
		Remarks:       s.Remarks,
		FirstApprover: s.FirstApprover,
		CreatedAt:     formatTime(s.CreatedAt),
		ApprovedAt:    formatTimePtr(s.ApprovedAt),
	}
}

func JobRequestDetailToViewModel(r *joborder.JobRequest, steps []*joborder.RoutingStep) *viewmodels.JobRequestDetail {
	vmSteps := make([]*viewmodels.RoutingStep, 0, len(steps))
	for _, s := range steps {
		vmSteps = append(vmSteps, RoutingStepToViewModel(s))
	}
	return &viewmodels.JobRequestDetail{
		JobRequest: *JobRequestToViewModel(r),
		Steps:      vmSteps,
	}
}

func OverviewToViewModel(o *services.Overview) *viewmodels.StatsOverview {
	byStatus := make(map[string]int64, len(o.ByStatus))
	for status, total := range o.ByStatus {
		byStatus[string(status)] = total
	}
	return &viewmodels.StatsOverview{
		ByStatus:           byStatus,
		SubmittedThisMonth: o.SubmittedThisMonth,
		ClosedThisMonth:    o.ClosedThisMonth,
		PendingForUser:     o.PendingForUser,
		AwaitingAction:     o.AwaitingAction,
	}
}

func MonthlyCountToViewModel(c joborder.MonthlyCount) *viewmodels.MonthlyCount {
	return &viewmodels.MonthlyCount{
		Year:      c.Year,
		Month:     c.Month,
		Category:  string(c.Category),
		Total:     c.Total,
		Completed: c.Completed,
	}
}

func WorkloadEntryToViewModel(e joborder.WorkloadEntry) *viewmodels.WorkloadEntry {
	return &viewmodels.WorkloadEntry{
		UserID: e.UserID.String(),
		Name:   e.Name,
		Active: e.Active,
	}
}

func DeadlineBucketsToViewModel(b *services.DeadlineBuckets) *viewmodels.DeadlineBuckets {
	toVMs := func(requests []*joborder.JobRequest) []*viewmodels.JobRequest {
		vms := make([]*viewmodels.JobRequest, 0, len(requests))
		for _, r := range requests {
			vms = append(vms, JobRequestToViewModel(r))
		}
		return vms
	}
	return &viewmodels.DeadlineBuckets{
		Overdue:  toVMs(b.Overdue),
		Today:    toVMs(b.Today),
		Tomorrow: toVMs(b.Tomorrow),
		ThisWeek: toVMs(b.ThisWeek),
		NextWeek: toVMs(b.NextWeek),
		Later:    toVMs(b.Later),
	}
}
