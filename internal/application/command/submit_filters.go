// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tradepals/match-core/internal/domain/filter"
	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
	"github.com/tradepals/match-core/internal/domain/trust"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT FILTERS COMMAND
// A user asks to change their match filters. Trusted users get the change
// applied immediately; everyone else goes through the pending review queue,
// at most one pending request per user.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitFiltersCommand contains the requested filter change.
type SubmitFiltersCommand struct {
	// UserID is the submitting user.
	UserID string

	// Filters is the requested filter set.
	Filters []string

	// ForcePending routes the request through review even for trusted users.
	// Set when the auto-approve feature is disabled for the caller.
	ForcePending bool

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c SubmitFiltersCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("submit_filters: %w", shared.ErrInvalidUserID)
	}
	if len(c.Filters) == 0 {
		return fmt.Errorf("submit_filters: %w", shared.ErrEmptyFilters)
	}
	return nil
}

// SubmitFiltersResult contains the submission outcome.
type SubmitFiltersResult struct {
	// Success is false only when a pending request already blocks this one.
	Success bool

	// Status is the resulting request status.
	Status filter.Status

	// Message carries the user-visible explanation when Success is false.
	Message string

	// RequestID identifies the created pending request, if one was created.
	RequestID string

	// AutoApproved is true when the trust policy applied the change directly.
	AutoApproved bool

	// CriteriaMet lists the trust criteria the user satisfied.
	CriteriaMet []string

	// PriorityRatio is the user's trust ratio at submission time.
	PriorityRatio float64
}

// IDGenerator produces unique identifiers for new requests and groups.
type IDGenerator interface {
	NewID() string
}

// SubmitFiltersHandler handles the SubmitFiltersCommand.
type SubmitFiltersHandler struct {
	profileRepo    profile.Repository
	filterRepo     filter.Repository
	evaluator      *trust.Evaluator
	idGen          IDGenerator
	eventPublisher shared.EventPublisher
}

// NewSubmitFiltersHandler creates a new SubmitFiltersHandler.
func NewSubmitFiltersHandler(
	profileRepo profile.Repository,
	filterRepo filter.Repository,
	evaluator *trust.Evaluator,
	idGen IDGenerator,
	eventPublisher shared.EventPublisher,
) *SubmitFiltersHandler {
	return &SubmitFiltersHandler{
		profileRepo:    profileRepo,
		filterRepo:     filterRepo,
		evaluator:      evaluator,
		idGen:          idGen,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the submit filters command.
func (h *SubmitFiltersHandler) Handle(ctx context.Context, cmd SubmitFiltersCommand) (*SubmitFiltersResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	userID := shared.UserID(cmd.UserID)
	user, err := h.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("submit_filters: %w", err)
	}

	evaluation := h.evaluator.Evaluate(user)
	if evaluation.IsTrusted && !cmd.ForcePending {
		return h.autoApprove(ctx, cmd, userID, evaluation)
	}

	req, err := filter.NewRequest(h.idGen.NewID(), userID, cmd.Filters)
	if err != nil {
		return nil, fmt.Errorf("submit_filters: %w", err)
	}

	if err := h.filterRepo.CreatePending(ctx, req); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return &SubmitFiltersResult{
				Success: false,
				Status:  filter.StatusPending,
				Message: "a filter change request is already pending review",
			}, nil
		}
		return nil, fmt.Errorf("submit_filters: %w", err)
	}

	event := shared.NewFilterReviewedEvent(
		shared.EventFilterSubmitted, cmd.UserID, req.ID, string(filter.StatusPending), cmd.Filters, "")
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &SubmitFiltersResult{
		Success:       true,
		Status:        filter.StatusPending,
		RequestID:     req.ID,
		CriteriaMet:   evaluation.CriteriaMet,
		PriorityRatio: evaluation.PriorityRatio,
	}, nil
}

// autoApprove applies the filters directly for a trusted user. Any pending
// request the user had is discarded; it never reaches an admin.
func (h *SubmitFiltersHandler) autoApprove(ctx context.Context, cmd SubmitFiltersCommand, userID shared.UserID, evaluation trust.Evaluation) (*SubmitFiltersResult, error) {
	if err := h.filterRepo.DeletePendingByUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("submit_filters: discard pending: %w", err)
	}
	if err := h.profileRepo.UpdateActiveFilters(ctx, userID, cmd.Filters); err != nil {
		return nil, fmt.Errorf("submit_filters: apply filters: %w", err)
	}

	event := shared.NewFilterReviewedEvent(
		shared.EventFilterAutoApproved, cmd.UserID, "", string(filter.StatusApproved), cmd.Filters, "")
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return &SubmitFiltersResult{
		Success:       true,
		Status:        filter.StatusApproved,
		AutoApproved:  true,
		CriteriaMet:   evaluation.CriteriaMet,
		PriorityRatio: evaluation.PriorityRatio,
	}, nil
}
