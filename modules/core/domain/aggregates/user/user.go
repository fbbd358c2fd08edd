package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("user not found")

// User is a portal account. Role flags gate what the user may do inside
// the job-order module; the approver chain itself lives in the assignment
// table, not here.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	Line      string    `json:"line"`
	Requestor bool      `json:"requestor"`
	Approver  bool      `json:"approver"`
	Checker   bool      `json:"checker"`
	// Maintenance marks execution owners a facilitator may assign work to.
	Maintenance bool      `json:"maintenance"`
	Facilitator bool      `json:"facilitator"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FindParams struct {
	Maintenance *bool
	Facilitator *bool
	Limit       int
	Offset      int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, params *FindParams) ([]*User, error)
	Create(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, u *User) (*User, error)
}
