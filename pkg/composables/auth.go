package composables

import (
	"context"

	"github.com/google/uuid"

	"github.com/pdnportal/portal/pkg/constants"
)

// WithUserID returns a new context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, constants.UserKey, userID)
}

// UseUserID returns the authenticated user's ID from the context.
func UseUserID(ctx context.Context) (uuid.UUID, error) {
	v := ctx.Value(constants.UserKey)
	if v == nil {
		return uuid.Nil, ErrNoUser
	}
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrNoUser
	}
	return id, nil
}
