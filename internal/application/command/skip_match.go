package command

import (
	"context"
	"fmt"

	"github.com/tradepals/match-core/internal/domain/matching"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SKIP MATCH COMMAND
// The user dismisses a suggested candidate. The target lands in the skipped
// and recently-shown sets, which keeps it out of fresh matching and makes it
// rematch material later.
// ══════════════════════════════════════════════════════════════════════════════

// SkipMatchCommand records a dismissed candidate.
type SkipMatchCommand struct {
	// UserID is the user doing the skipping.
	UserID string

	// TargetID is the dismissed candidate.
	TargetID string
}

// Validate validates the command.
func (c SkipMatchCommand) Validate() error {
	if c.UserID == "" || c.TargetID == "" {
		return fmt.Errorf("skip_match: %w", shared.ErrInvalidUserID)
	}
	if c.UserID == c.TargetID {
		return fmt.Errorf("skip_match: cannot skip self: %w", shared.ErrInvalidInput)
	}
	return nil
}

// SkipMatchHandler handles the SkipMatchCommand.
type SkipMatchHandler struct {
	history matching.HistoryStore
}

// NewSkipMatchHandler creates a new SkipMatchHandler.
func NewSkipMatchHandler(history matching.HistoryStore) *SkipMatchHandler {
	return &SkipMatchHandler{history: history}
}

// Handle executes the skip match command.
func (h *SkipMatchHandler) Handle(ctx context.Context, cmd SkipMatchCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if err := h.history.RecordSkip(ctx, shared.UserID(cmd.UserID), shared.UserID(cmd.TargetID)); err != nil {
		return fmt.Errorf("skip_match: %w", err)
	}
	return nil
}
