package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
	"github.com/tradepals/match-core/internal/domain/trust"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRUST SCORES QUERY
// Admin report: every user's trust evaluation against the current policy,
// sorted by priority ratio descending.
// ══════════════════════════════════════════════════════════════════════════════

// TrustScoresQuery requests the trust report.
type TrustScoresQuery struct {
	// Page and PageSize bound the underlying profile scan.
	Page     int
	PageSize int
}

// TrustScoreView is one user's evaluation in the report.
type TrustScoreView struct {
	UserID        string   `json:"userId"`
	Username      string   `json:"username"`
	IsTrusted     bool     `json:"isTrusted"`
	PriorityRatio float64  `json:"priorityRatio"`
	CriteriaMet   []string `json:"criteriaMet"`
}

// TrustScoresResult contains the sorted report.
type TrustScoresResult struct {
	Scores []TrustScoreView `json:"scores"`
}

// TrustScoresHandler handles the TrustScoresQuery.
type TrustScoresHandler struct {
	profileRepo profile.Repository
	evaluator   *trust.Evaluator
}

// NewTrustScoresHandler creates a new TrustScoresHandler.
func NewTrustScoresHandler(profileRepo profile.Repository, evaluator *trust.Evaluator) *TrustScoresHandler {
	return &TrustScoresHandler{profileRepo: profileRepo, evaluator: evaluator}
}

// Handle executes the trust scores query.
func (h *TrustScoresHandler) Handle(ctx context.Context, q TrustScoresQuery) (*TrustScoresResult, error) {
	users, err := h.profileRepo.ListAll(ctx, shared.NewPagination(q.Page, q.PageSize))
	if err != nil {
		return nil, fmt.Errorf("trust_scores: %w", err)
	}

	scores := make([]TrustScoreView, 0, len(users))
	for _, user := range users {
		evaluation := h.evaluator.Evaluate(user)
		scores = append(scores, TrustScoreView{
			UserID:        user.ID.String(),
			Username:      user.Username,
			IsTrusted:     evaluation.IsTrusted,
			PriorityRatio: evaluation.PriorityRatio,
			CriteriaMet:   evaluation.CriteriaMet,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].PriorityRatio != scores[j].PriorityRatio {
			return scores[i].PriorityRatio > scores[j].PriorityRatio
		}
		return scores[i].UserID < scores[j].UserID
	})

	return &TrustScoresResult{Scores: scores}, nil
}
