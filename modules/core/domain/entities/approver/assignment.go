package approver

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("approver assignment not found")

const (
	ModuleJobOrder = "joborder"

	RoleApprover    = "approver"
	RoleChecker     = "checker"
	RoleFacilitator = "facilitator"
	RoleMaintenance = "maintenance"
)

// Assignment is one row of the routing table: for a given module and role,
// who acts on behalf of (or next after) a user. Module-level designees such
// as the facilitator carry no subject user. Rows are ordered by Position so
// resolution is deterministic when several candidates exist.
type Assignment struct {
	ID         int64      `json:"id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	Module     string     `json:"module"`
	Role       string     `json:"role"`
	ApproverID uuid.UUID  `json:"approver_id"`
	Position   int        `json:"position"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Repository interface {
	// ApproverFor resolves the configured counterpart for a user, lowest
	// position first.
	ApproverFor(ctx context.Context, userID uuid.UUID, module, role string) (*Assignment, error)
	// Designees lists module-level assignments for a role, ordered by
	// position.
	Designees(ctx context.Context, module, role string) ([]*Assignment, error)
	Create(ctx context.Context, a *Assignment) (*Assignment, error)
}
