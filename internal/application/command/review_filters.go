package command

import (
	"context"
	"fmt"

	"github.com/tradepals/match-core/internal/domain/filter"
	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REVIEW FILTERS COMMANDS
// Admin decisions over pending filter requests. Approval applies the chosen
// subset to the user's active filters; rejection always covers the whole
// request with a truncated reason.
// ══════════════════════════════════════════════════════════════════════════════

// ApproveFiltersCommand approves a user's pending filter request.
type ApproveFiltersCommand struct {
	// UserID is the user whose pending request is being approved.
	UserID string

	// ApprovedFilters is the admin-selected subset; empty approves everything.
	ApprovedFilters []string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c ApproveFiltersCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("approve_filters: %w", shared.ErrInvalidUserID)
	}
	return nil
}

// RejectFiltersCommand rejects a user's pending filter request.
type RejectFiltersCommand struct {
	// UserID is the user whose pending request is being rejected.
	UserID string

	// Reason is the rejection reason, truncated to the configured limit.
	Reason string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RejectFiltersCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("reject_filters: %w", shared.ErrInvalidUserID)
	}
	return nil
}

// ReviewFiltersResult contains the review outcome.
type ReviewFiltersResult struct {
	RequestID       string
	Status          filter.Status
	ApprovedFilters []string
	RejectedFilters []string
	RejectionReason string
}

// ReviewFiltersHandler handles both review commands.
type ReviewFiltersHandler struct {
	filterRepo     filter.Repository
	profileRepo    profile.Repository
	reasonLimit    int
	eventPublisher shared.EventPublisher
}

// NewReviewFiltersHandler creates a new ReviewFiltersHandler. reasonLimit <= 0
// falls back to the domain default.
func NewReviewFiltersHandler(
	filterRepo filter.Repository,
	profileRepo profile.Repository,
	reasonLimit int,
	eventPublisher shared.EventPublisher,
) *ReviewFiltersHandler {
	return &ReviewFiltersHandler{
		filterRepo:     filterRepo,
		profileRepo:    profileRepo,
		reasonLimit:    reasonLimit,
		eventPublisher: eventPublisher,
	}
}

// HandleApprove executes the approve command.
func (h *ReviewFiltersHandler) HandleApprove(ctx context.Context, cmd ApproveFiltersCommand) (*ReviewFiltersResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	userID := shared.UserID(cmd.UserID)
	req, err := h.filterRepo.FindPendingByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("approve_filters: %w", err)
	}

	if err := req.Approve(cmd.ApprovedFilters); err != nil {
		return nil, fmt.Errorf("approve_filters: %w", err)
	}
	if err := h.filterRepo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("approve_filters: save: %w", err)
	}
	if err := h.profileRepo.UpdateActiveFilters(ctx, userID, req.ApprovedFilters); err != nil {
		return nil, fmt.Errorf("approve_filters: apply filters: %w", err)
	}

	event := shared.NewFilterReviewedEvent(
		shared.EventFilterApproved, cmd.UserID, req.ID, string(req.Status), req.ApprovedFilters, "")
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &ReviewFiltersResult{
		RequestID:       req.ID,
		Status:          req.Status,
		ApprovedFilters: req.ApprovedFilters,
	}, nil
}

// HandleReject executes the reject command.
func (h *ReviewFiltersHandler) HandleReject(ctx context.Context, cmd RejectFiltersCommand) (*ReviewFiltersResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	userID := shared.UserID(cmd.UserID)
	req, err := h.filterRepo.FindPendingByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reject_filters: %w", err)
	}

	if err := req.Reject(cmd.Reason, h.reasonLimit); err != nil {
		return nil, fmt.Errorf("reject_filters: %w", err)
	}
	if err := h.filterRepo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("reject_filters: save: %w", err)
	}

	event := shared.NewFilterReviewedEvent(
		shared.EventFilterRejected, cmd.UserID, req.ID, string(req.Status), nil, req.RejectionReason)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &ReviewFiltersResult{
		RequestID:       req.ID,
		Status:          req.Status,
		RejectedFilters: req.RejectedFilters,
		RejectionReason: req.RejectionReason,
	}, nil
}
