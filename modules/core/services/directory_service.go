package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/pdnportal/portal/modules/core/domain/aggregates/user"
	"github.com/pdnportal/portal/modules/core/domain/entities/approver"
)

// DirectoryService answers the "who acts next" questions of the routing
// workflow: configured approvers, the module facilitator, and the pool of
// maintenance staff.
type DirectoryService struct {
	users     user.Repository
	approvers approver.Repository
}

func NewDirectoryService(users user.Repository, approvers approver.Repository) *DirectoryService {
	return &DirectoryService{users: users, approvers: approvers}
}

func (s *DirectoryService) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *DirectoryService) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *DirectoryService) List(ctx context.Context, params *user.FindParams) ([]*user.User, error) {
	return s.users.List(ctx, params)
}

// ApproverFor resolves the configured counterpart (approver or checker)
// for a user within a module.
func (s *DirectoryService) ApproverFor(ctx context.Context, userID uuid.UUID, module, role string) (*user.User, error) {
	assignment, err := s.approvers.ApproverFor(ctx, userID, module, role)
	if err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, assignment.ApproverID)
}

// Facilitator returns the module's designated facilitator. Resolution is
// deterministic: the lowest-position assignment row wins.
func (s *DirectoryService) Facilitator(ctx context.Context, module string) (*user.User, error) {
	designees, err := s.approvers.Designees(ctx, module, approver.RoleFacilitator)
	if err != nil {
		return nil, err
	}
	if len(designees) == 0 {
		return nil, approver.ErrNotFound
	}
	return s.users.GetByID(ctx, designees[0].ApproverID)
}

// MaintenanceStaff lists the module's execution owners in assignment order.
func (s *DirectoryService) MaintenanceStaff(ctx context.Context, module string) ([]*user.User, error) {
	designees, err := s.approvers.Designees(ctx, module, approver.RoleMaintenance)
	if err != nil {
		return nil, err
	}
	staff := make([]*user.User, 0, len(designees))
	for _, d := range designees {
		u, err := s.users.GetByID(ctx, d.ApproverID)
		if err != nil {
			return nil, err
		}
		staff = append(staff, u)
	}
	return staff, nil
}

func (s *DirectoryService) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	return s.users.Create(ctx, u)
}

func (s *DirectoryService) AssignApprover(ctx context.Context, a *approver.Assignment) (*approver.Assignment, error) {
	return s.approvers.Create(ctx, a)
}
