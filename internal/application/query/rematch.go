package query

import (
	"context"
	"fmt"

	"github.com/tradepals/match-core/internal/domain/matching"
	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMATCH QUERY
// Second-chance matching over the user's skipped and recently shown sets.
// ══════════════════════════════════════════════════════════════════════════════

// RematchQuery requests improved matches among previously seen candidates.
type RematchQuery struct {
	// UserID is the requesting user.
	UserID string
}

// RematchResult contains the improved candidates, if any.
type RematchResult struct {
	Candidates []CandidateView `json:"candidates"`
}

// RematchHandler handles the RematchQuery.
type RematchHandler struct {
	profileRepo    profile.Repository
	engine         *matching.RematchEngine
	history        matching.HistoryStore
	eventPublisher shared.EventPublisher
}

// NewRematchHandler creates a new RematchHandler.
func NewRematchHandler(
	profileRepo profile.Repository,
	engine *matching.RematchEngine,
	history matching.HistoryStore,
	eventPublisher shared.EventPublisher,
) *RematchHandler {
	return &RematchHandler{
		profileRepo:    profileRepo,
		engine:         engine,
		history:        history,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the rematch query. An empty result means nothing improved
// enough; that is not an error.
func (h *RematchHandler) Handle(ctx context.Context, q RematchQuery) (*RematchResult, error) {
	if q.UserID == "" {
		return nil, fmt.Errorf("rematch: %w", shared.ErrMissingSeedUser)
	}

	user, err := h.profileRepo.FindByID(ctx, shared.UserID(q.UserID))
	if err != nil {
		return nil, fmt.Errorf("rematch: %w", err)
	}
	mergeHistory(ctx, h.history, user)

	seen := user.ExcludedIDs()
	if len(seen) == 0 {
		return &RematchResult{Candidates: []CandidateView{}}, nil
	}

	candidates, err := h.profileRepo.FindByIDs(ctx, seen.Slice())
	if err != nil {
		return nil, fmt.Errorf("rematch: resolve seen candidates: %w", err)
	}

	results, err := h.engine.Rematch(user, candidates)
	if err != nil {
		return nil, fmt.Errorf("rematch: %w", err)
	}

	views := make([]CandidateView, 0, len(results))
	for _, r := range results {
		views = append(views, toCandidateView(r))
	}

	if len(views) > 0 {
		_ = h.eventPublisher.Publish(shared.NewRematchProducedEvent(q.UserID, len(views)))
	}

	return &RematchResult{Candidates: views}, nil
}
