// Package filter implements the match-filter change request workflow:
// none -> pending -> {approved, rejected}, with auto-approval for trusted
// users and at most one pending request per user.
package filter

import (
	"time"

	"github.com/tradepals/match-core/internal/domain/shared"
)

// Status is the lifecycle state of a filter request. A user with no request
// on record reads as StatusNone.
type Status string

const (
	StatusNone     Status = "none"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// IsValid checks the status is a known state.
func (s Status) IsValid() bool {
	switch s {
	case StatusNone, StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// IsFinal reports whether the status is terminal.
func (s Status) IsFinal() bool {
	return s == StatusApproved || s == StatusRejected
}

const (
	// DefaultReasonLimit caps rejection reasons unless configured otherwise.
	DefaultReasonLimit = 40

	// RejectAll is the single rejected-filters marker. Per-field partial
	// rejection is not supported; rejection always covers the whole request.
	RejectAll = "all"
)

// Request is one user's filter change request.
type Request struct {
	ID               string
	UserID           shared.UserID
	RequestedFilters []string
	Status           Status
	ApprovedFilters  []string
	RejectedFilters  []string
	RejectionReason  string
	CreatedAt        time.Time
	ReviewedAt       *time.Time
}

// NewRequest creates a pending request holding the full requested filter set.
func NewRequest(id string, userID shared.UserID, filters []string) (*Request, error) {
	if !userID.IsValid() {
		return nil, shared.ErrInvalidUserID
	}
	if len(filters) == 0 {
		return nil, shared.ErrEmptyFilters
	}
	return &Request{
		ID:               id,
		UserID:           userID,
		RequestedFilters: filters,
		Status:           StatusPending,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// Approve moves a pending request to approved with the admin-selected subset.
// An empty subset approves the full requested set.
func (r *Request) Approve(approvedFilters []string) error {
	if r.Status.IsFinal() {
		return shared.ErrRequestFinal
	}
	if r.Status != StatusPending {
		return shared.ErrRequestNotFound
	}

	if len(approvedFilters) == 0 {
		approvedFilters = r.RequestedFilters
	}
	now := time.Now().UTC()
	r.Status = StatusApproved
	r.ApprovedFilters = approvedFilters
	r.RejectedFilters = nil
	r.RejectionReason = ""
	r.ReviewedAt = &now
	return nil
}

// Reject moves a pending request to rejected. Rejection is all-or-nothing:
// RejectedFilters is always [RejectAll]. The reason is truncated to limit
// runes (DefaultReasonLimit when limit <= 0).
func (r *Request) Reject(reason string, limit int) error {
	if r.Status.IsFinal() {
		return shared.ErrRequestFinal
	}
	if r.Status != StatusPending {
		return shared.ErrRequestNotFound
	}

	if limit <= 0 {
		limit = DefaultReasonLimit
	}
	now := time.Now().UTC()
	r.Status = StatusRejected
	r.RejectedFilters = []string{RejectAll}
	r.RejectionReason = truncate(reason, limit)
	r.ApprovedFilters = nil
	r.ReviewedAt = &now
	return nil
}

// truncate cuts s to at most limit runes.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
