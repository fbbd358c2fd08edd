package persistence

import (
	"github.com/google/uuid"

	"github.com/pdnportal/portal/modules/joborder/domain/aggregates/joborder"
	"github.com/pdnportal/portal/modules/joborder/infrastructure/persistence/models"
)

func toDomainJobRequest(row *models.JobRequest) (*joborder.JobRequest, error) {
	requesterID, err := uuid.Parse(row.RequesterID)
	if err != nil {
		return nil, err
	}
	r := &joborder.JobRequest{
		ID:               row.ID,
		ControlNumber:    row.ControlNumber,
		Category:         joborder.Category(row.Category),
		RequesterID:      requesterID,
		RequestorName:    row.RequestorName,
		Tool:             row.Tool,
		NatureOfChange:   row.NatureOfChange,
		Details:          row.Details,
		Line:             row.Line,
		Status:           joborder.Status(row.Status),
		CurrentStage:     joborder.Stage(row.CurrentStage),
		DateReceived:     row.DateReceived,
		TargetDate:       row.TargetDate,
		TargetDateReason: row.TargetDateReason,
		ActionTaken:      row.ActionTaken,
		DateCompleted:    row.DateCompleted,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.InChargeID != nil {
		inCharge, err := uuid.Parse(*row.InChargeID)
		if err != nil {
			return nil, err
		}
		r.InChargeID = &inCharge
	}
	return r, nil
}

func toDBJobRequest(r *joborder.JobRequest) *models.JobRequest {
	row := &models.JobRequest{
		ID:               r.ID,
		ControlNumber:    r.ControlNumber,
		Category:         string(r.Category),
		RequesterID:      r.RequesterID.String(),
		RequestorName:    r.RequestorName,
		Tool:             r.Tool,
		NatureOfChange:   r.NatureOfChange,
		Details:          r.Details,
		Line:             r.Line,
		Status:           string(r.Status),
		CurrentStage:     int(r.CurrentStage),
		DateReceived:     r.DateReceived,
		TargetDate:       r.TargetDate,
		TargetDateReason: r.TargetDateReason,
		ActionTaken:      r.ActionTaken,
		DateCompleted:    r.DateCompleted,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.InChargeID != nil {
		s := r.InChargeID.String()
		row.InChargeID = &s
	}
	return row
}

func toDomainRoutingStep(row *models.RoutingStep) (*joborder.RoutingStep, error) {
	requesterID, err := uuid.Parse(row.RequesterID)
	if err != nil {
		return nil, err
	}
	approverID, err := uuid.Parse(row.ApproverID)
	if err != nil {
		return nil, err
	}
	return &joborder.RoutingStep{
		ID:            row.ID,
		RequestID:     row.RequestID,
		RequesterID:   requesterID,
		ApproverID:    approverID,
		Sequence:      row.Sequence,
		Status:        joborder.StepStatus(row.Status),
		Remarks:       row.Remarks,
		FirstApprover: row.FirstApprover,
		CreatedAt:     row.CreatedAt,
		ApprovedAt:    row.ApprovedAt,
	}, nil
}

func toDBRoutingStep(s *joborder.RoutingStep) *models.RoutingStep {
	return &models.RoutingStep{
		ID:            s.ID,
		RequestID:     s.RequestID,
		RequesterID:   s.RequesterID.String(),
		ApproverID:    s.ApproverID.String(),
		Sequence:      s.Sequence,
		Status:        string(s.Status),
		Remarks:       s.Remarks,
		FirstApprover: s.FirstApprover,
		CreatedAt:     s.CreatedAt,
		ApprovedAt:    s.ApprovedAt,
	}
}
