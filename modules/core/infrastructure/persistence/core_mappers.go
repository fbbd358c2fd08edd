package persistence

import (
	"github.com/google/uuid"

	"github.com/pdnportal/portal/modules/core/domain/aggregates/user"
	"github.com/pdnportal/portal/modules/core/domain/entities/approver"
	"github.com/pdnportal/portal/modules/core/infrastructure/persistence/models"
)

func toDomainUser(row *models.User) (*user.User, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, err
	}
	return &user.User{
		ID:          id,
		Username:    row.Username,
		Name:        row.Name,
		Position:    row.Position,
		Line:        row.Line,
		Requestor:   row.Requestor,
		Approver:    row.Approver,
		Checker:     row.Checker,
		Maintenance: row.Maintenance,
		Facilitator: row.Facilitator,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func toDBUser(u *user.User) *models.User {
	return &models.User{
		ID:          u.ID.String(),
		Username:    u.Username,
		Name:        u.Name,
		Position:    u.Position,
		Line:        u.Line,
		Requestor:   u.Requestor,
		Approver:    u.Approver,
		Checker:     u.Checker,
		Maintenance: u.Maintenance,
		Facilitator: u.Facilitator,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func toDomainAssignment(row *models.ApproverAssignment) (*approver.Assignment, error) {
	approverID, err := uuid.Parse(row.ApproverID)
	if err != nil {
		return nil, err
	}
	a := &approver.Assignment{
		ID:         row.ID,
		Module:     row.Module,
		Role:       row.Role,
		ApproverID: approverID,
		Position:   row.Position,
		CreatedAt:  row.CreatedAt,
	}
	if row.UserID != nil {
		userID, err := uuid.Parse(*row.UserID)
		if err != nil {
			return nil, err
		}
		a.UserID = &userID
	}
	return a, nil
}
