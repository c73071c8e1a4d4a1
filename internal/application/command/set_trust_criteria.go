package command

import (
	"context"
	"fmt"

	"github.com/tradepals/match-core/internal/domain/shared"
	"github.com/tradepals/match-core/internal/domain/trust"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET TRUST CRITERIA COMMAND
// Wholesale replacement of the process-wide trust policy. The swap is atomic;
// requests in flight finish against the policy they loaded.
// ══════════════════════════════════════════════════════════════════════════════

// SetTrustCriteriaCommand replaces the trust policy.
type SetTrustCriteriaCommand struct {
	// Priority is the new priority criteria list. Must be non-empty.
	Priority []string

	// General is the new general criteria list.
	General []string

	// CorrelationID for tracing.
	CorrelationID string
}

// SetTrustCriteriaHandler handles the SetTrustCriteriaCommand.
type SetTrustCriteriaHandler struct {
	store          *trust.Store
	eventPublisher shared.EventPublisher
}

// NewSetTrustCriteriaHandler creates a new SetTrustCriteriaHandler.
func NewSetTrustCriteriaHandler(store *trust.Store, eventPublisher shared.EventPublisher) *SetTrustCriteriaHandler {
	return &SetTrustCriteriaHandler{store: store, eventPublisher: eventPublisher}
}

// Handle executes the set trust criteria command.
func (h *SetTrustCriteriaHandler) Handle(ctx context.Context, cmd SetTrustCriteriaCommand) (trust.TrustCriteria, error) {
	criteria := trust.TrustCriteria{
		Priority: cmd.Priority,
		General:  cmd.General,
	}
	if err := h.store.Replace(criteria); err != nil {
		return trust.TrustCriteria{}, fmt.Errorf("set_trust_criteria: %w", err)
	}

	event := shared.NewTrustCriteriaReplacedEvent(len(criteria.Priority), len(criteria.General))
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	_ = h.eventPublisher.Publish(event)

	return h.store.Current(), nil
}
