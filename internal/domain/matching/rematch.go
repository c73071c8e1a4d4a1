package matching

import (
	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMATCH
// Second-chance matching over the candidates fresh matching is forbidden to
// touch: the user's skipped and recently shown sets. The bar is stricter than
// fresh matching so a rematch only surfaces when compatibility genuinely
// improved since the user last saw the candidate.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// RematchThreshold is the score a previously seen candidate must beat
	// to be offered again.
	RematchThreshold = 40

	// RematchReason tags every rematch result.
	RematchReason = "Improved compatibility"
)

// RematchEngine re-scores previously skipped or shown candidates.
type RematchEngine struct {
	scorer    *Scorer
	threshold int
}

// NewRematchEngine creates a rematch engine with the default threshold.
func NewRematchEngine(scorer *Scorer) *RematchEngine {
	return &RematchEngine{scorer: scorer, threshold: RematchThreshold}
}

// Rematch scores the given candidates, which the caller resolves from the
// union of the user's skipped and recent sets, and keeps those scoring
// strictly above the threshold. Results carry the rematch reason. An empty
// result is a valid outcome.
func (e *RematchEngine) Rematch(user *profile.UserProfile, candidates []*profile.UserProfile) (CandidateList, error) {
	if user == nil {
		return nil, shared.ErrMissingSeedUser
	}

	eligible := user.ExcludedIDs()
	results := make(CandidateList, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == nil || candidate.ID == user.ID {
			continue
		}
		if !eligible.Contains(candidate.ID) {
			continue
		}
		score := e.scorer.Score(user, candidate)
		if score <= e.threshold {
			continue
		}
		results = append(results, ScoredCandidate{
			Profile: candidate,
			Score:   score,
			Reason:  RematchReason,
		})
	}

	results.Sort()
	return results, nil
}
