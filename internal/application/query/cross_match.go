package query

import (
	"context"
	"fmt"

	"github.com/tradepals/match-core/internal/domain/matching"
	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CROSS MATCH QUERY
// Simple pairwise matching: the top scored candidates for the user, no group
// structure, recently shown and skipped candidates excluded.
// ══════════════════════════════════════════════════════════════════════════════

// crossMatchLimit is how many candidates a cross match returns.
const crossMatchLimit = 10

// CrossMatchQuery requests pairwise matches for a user.
type CrossMatchQuery struct {
	// UserID is the requesting user.
	UserID string
}

// CandidateView is the wire shape of one scored candidate.
type CandidateView struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Avatar     string `json:"avatar"`
	Rank       string `json:"rank"`
	IsVerified bool   `json:"isVerified"`
	MatchScore int    `json:"matchScore"`
	Reason     string `json:"reason,omitempty"`
}

// CrossMatchResult contains the top candidates.
type CrossMatchResult struct {
	Candidates []CandidateView `json:"candidates"`
}

// CrossMatchHandler handles the CrossMatchQuery.
type CrossMatchHandler struct {
	profileRepo profile.Repository
	candidates  profile.CandidateSource
	engine      *matching.GroupFormationEngine
	history     matching.HistoryStore
}

// NewCrossMatchHandler creates a new CrossMatchHandler.
func NewCrossMatchHandler(
	profileRepo profile.Repository,
	candidates profile.CandidateSource,
	engine *matching.GroupFormationEngine,
	history matching.HistoryStore,
) *CrossMatchHandler {
	return &CrossMatchHandler{
		profileRepo: profileRepo,
		candidates:  candidates,
		engine:      engine,
		history:     history,
	}
}

// Handle executes the cross match query.
func (h *CrossMatchHandler) Handle(ctx context.Context, q CrossMatchQuery) (*CrossMatchResult, error) {
	if q.UserID == "" {
		return nil, fmt.Errorf("cross_match: %w", shared.ErrMissingSeedUser)
	}

	user, err := h.profileRepo.FindByID(ctx, shared.UserID(q.UserID))
	if err != nil {
		return nil, fmt.Errorf("cross_match: %w", err)
	}
	mergeHistory(ctx, h.history, user)

	pool, err := h.candidates.Candidates(ctx, user.ID, profile.PoolFilter{}, poolFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("cross_match: fetch pool: %w", err)
	}

	results, err := h.engine.CrossMatch(user, pool, crossMatchLimit)
	if err != nil {
		return nil, fmt.Errorf("cross_match: %w", err)
	}

	views := make([]CandidateView, 0, len(results))
	shown := make([]shared.UserID, 0, len(results))
	for _, r := range results {
		views = append(views, toCandidateView(r))
		shown = append(shown, r.Profile.ID)
	}
	if len(shown) > 0 {
		_ = h.history.RecordShown(ctx, user.ID, shown)
	}

	return &CrossMatchResult{Candidates: views}, nil
}

// toCandidateView maps a scored candidate to its wire shape.
func toCandidateView(c matching.ScoredCandidate) CandidateView {
	return CandidateView{
		ID:         c.Profile.ID.String(),
		Username:   c.Profile.Username,
		Avatar:     c.Profile.Avatar,
		Rank:       c.Profile.Rank.String(),
		IsVerified: c.Profile.Verified,
		MatchScore: c.Score,
		Reason:     c.Reason,
	}
}
