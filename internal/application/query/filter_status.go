package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/tradepals/match-core/internal/domain/filter"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FILTER STATUS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// FilterStatusQuery asks for the state of a user's latest filter request.
type FilterStatusQuery struct {
	// UserID is the requesting user.
	UserID string
}

// FilterStatusResult describes the user's latest filter request. A user who
// never submitted one reads as status "none".
type FilterStatusResult struct {
	Status           filter.Status `json:"status"`
	RequestedFilters []string      `json:"requestedFilters,omitempty"`
	ApprovedFilters  []string      `json:"approvedFilters,omitempty"`
	RejectedFilters  []string      `json:"rejectedFilters,omitempty"`
	RejectionReason  string        `json:"rejectionReason,omitempty"`
}

// FilterStatusHandler handles the FilterStatusQuery.
type FilterStatusHandler struct {
	filterRepo filter.Repository
}

// NewFilterStatusHandler creates a new FilterStatusHandler.
func NewFilterStatusHandler(filterRepo filter.Repository) *FilterStatusHandler {
	return &FilterStatusHandler{filterRepo: filterRepo}
}

// Handle executes the filter status query.
func (h *FilterStatusHandler) Handle(ctx context.Context, q FilterStatusQuery) (*FilterStatusResult, error) {
	if q.UserID == "" {
		return nil, fmt.Errorf("filter_status: %w", shared.ErrInvalidUserID)
	}

	req, err := h.filterRepo.FindLatestByUser(ctx, shared.UserID(q.UserID))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &FilterStatusResult{Status: filter.StatusNone}, nil
		}
		return nil, fmt.Errorf("filter_status: %w", err)
	}

	return &FilterStatusResult{
		Status:           req.Status,
		RequestedFilters: req.RequestedFilters,
		ApprovedFilters:  req.ApprovedFilters,
		RejectedFilters:  req.RejectedFilters,
		RejectionReason:  req.RejectionReason,
	}, nil
}
