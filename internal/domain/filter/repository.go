package filter

import (
	"context"

	"github.com/tradepals/match-core/internal/domain/shared"
)

// Repository persists filter requests. The single-pending invariant is the
// workflow's responsibility, but CreatePending must still guard it at the
// storage boundary: under concurrent submissions a read-then-write check
// races, so implementations run the check and insert in one transaction (or
// lean on a partial unique index) and return shared.ErrRequestPending when
// a pending request already exists for the user.
type Repository interface {
	// CreatePending atomically verifies no pending request exists for the
	// user and inserts the new one.
	CreatePending(ctx context.Context, req *Request) error

	// FindPendingByUser returns the user's pending request, or
	// shared.ErrRequestNotFound.
	FindPendingByUser(ctx context.Context, userID shared.UserID) (*Request, error)

	// FindLatestByUser returns the user's most recent request regardless of
	// status, or shared.ErrRequestNotFound if the user never submitted one.
	FindLatestByUser(ctx context.Context, userID shared.UserID) (*Request, error)

	// Update persists a reviewed request.
	Update(ctx context.Context, req *Request) error

	// DeletePendingByUser discards the user's pending request if one exists.
	// Used when a trusted user's submission auto-approves. Returns nil when
	// there was nothing to delete.
	DeletePendingByUser(ctx context.Context, userID shared.UserID) error
}
