// Package matching contains the compatibility scorer, the group formation
// engine, and the rematch engine. All three are pure computations over
// candidate pools supplied by the caller; nothing in this package performs I/O.
package matching

import (
	"sort"

	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORING PHILOSOPHY
//
// The score is deliberately asymmetric: score(a, b) answers "how good is b
// FOR a". It penalizes a's exclusion sets (recent matches) against b, and
// rewards b's own attributes (rank, verification, trade record) without any
// symmetric treatment of a. Do not "fix" the asymmetry; the product depends
// on it.
// ══════════════════════════════════════════════════════════════════════════════

// ScoreWeights holds the additive weights of the compatibility score.
type ScoreWeights struct {
	// SharedInterest is added per interest tag present on both profiles.
	SharedInterest int

	// SameLocation is added when both profiles report the same location.
	SameLocation int

	// SameCountry is added when both profiles report the same country.
	SameCountry int

	// SameCurrency is added when both profiles trade the same currency.
	SameCurrency int

	// LiquidBalance is added when the candidate's balance clears MinBalance.
	LiquidBalance int

	// MinBalance is the balance floor for the LiquidBalance bonus.
	MinBalance float64

	// RankMultiplier is multiplied by the candidate's 1-based rank index.
	RankMultiplier int

	// Verified is added when the candidate is verification-badged.
	Verified int

	// TradeMultiplier is multiplied by the candidate's successful trade count.
	TradeMultiplier int

	// MutualPal is added per pal present on both profiles.
	MutualPal int

	// ChatHistory is added when the candidate appears in the user's chat history.
	ChatHistory int

	// Pocket is added when the candidate is in the user's pocket list.
	Pocket int

	// RecentMatchPenalty is subtracted when the candidate was recently shown.
	RecentMatchPenalty int

	// HighRiskPenalty is subtracted when the candidate's risk score is high.
	HighRiskPenalty int
}

// DefaultScoreWeights returns the production weights.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		SharedInterest:     20,
		SameLocation:       15,
		SameCountry:        10,
		SameCurrency:       25,
		LiquidBalance:      10,
		MinBalance:         50,
		RankMultiplier:     10,
		Verified:           25,
		TradeMultiplier:    5,
		MutualPal:          10,
		ChatHistory:        10,
		Pocket:             5,
		RecentMatchPenalty: 20,
		HighRiskPenalty:    30,
	}
}

// Scorer computes the pairwise compatibility score.
type Scorer struct {
	weights ScoreWeights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(weights ScoreWeights) *Scorer {
	return &Scorer{weights: weights}
}

// NewDefaultScorer creates a scorer with the production weights.
func NewDefaultScorer() *Scorer {
	return NewScorer(DefaultScoreWeights())
}

// Score computes how compatible candidate b is for user a. The result is
// additive over the configured weights and floored at zero. Pure function,
// no I/O.
func (s *Scorer) Score(a, b *profile.UserProfile) int {
	w := s.weights
	score := 0

	score += w.SharedInterest * a.SharedInterests(b)

	if a.Location != "" && a.Location == b.Location {
		score += w.SameLocation
	}
	if a.Country != "" && a.Country == b.Country {
		score += w.SameCountry
	}
	if a.Currency != "" && a.Currency == b.Currency {
		score += w.SameCurrency
	}
	if b.Balance >= w.MinBalance {
		score += w.LiquidBalance
	}

	score += w.RankMultiplier * b.Rank.Index()

	if b.Verified {
		score += w.Verified
	}

	score += w.TradeMultiplier * b.SuccessfulTrades
	score += w.MutualPal * a.MutualPals(b)

	if a.ChatHistory.Contains(b.ID) {
		score += w.ChatHistory
	}
	if a.Pocket.Contains(b.ID) {
		score += w.Pocket
	}
	if a.RecentMatches.Contains(b.ID) {
		score -= w.RecentMatchPenalty
	}
	if b.RiskScore.IsHigh() {
		score -= w.HighRiskPenalty
	}

	if score < 0 {
		return 0
	}
	return score
}

// ══════════════════════════════════════════════════════════════════════════════
// SCORED CANDIDATES
// ══════════════════════════════════════════════════════════════════════════════

// ScoredCandidate pairs a candidate profile with its score against the
// requesting user, plus an optional human-readable reason.
type ScoredCandidate struct {
	Profile *profile.UserProfile
	Score   int
	Reason  string
}

// CandidateList is a sortable list of scored candidates.
type CandidateList []ScoredCandidate

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Less implements sort.Interface; ordering is by score, descending. Ties
// break on user ID so results are deterministic across runs.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}
	return c[i].Profile.ID < c[j].Profile.ID
}

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Sort orders the list by descending score.
func (c CandidateList) Sort() {
	sort.Sort(c)
}

// TopN returns the first n candidates of a sorted list.
func (c CandidateList) TopN(n int) CandidateList {
	if n >= len(c) {
		return c
	}
	return c[:n]
}

// FilterAboveScore keeps candidates scoring strictly above min.
func (c CandidateList) FilterAboveScore(min int) CandidateList {
	filtered := make(CandidateList, 0, len(c))
	for _, sc := range c {
		if sc.Score > min {
			filtered = append(filtered, sc)
		}
	}
	return filtered
}

// Exclude removes candidates whose IDs appear in the given set.
func (c CandidateList) Exclude(ids shared.UserIDSet) CandidateList {
	filtered := make(CandidateList, 0, len(c))
	for _, sc := range c {
		if !ids.Contains(sc.Profile.ID) {
			filtered = append(filtered, sc)
		}
	}
	return filtered
}

// ScorePool scores every candidate in the pool against the user, skipping
// the user's own profile if present.
func ScorePool(scorer *Scorer, user *profile.UserProfile, pool []*profile.UserProfile) CandidateList {
	scored := make(CandidateList, 0, len(pool))
	for _, candidate := range pool {
		if candidate == nil || candidate.ID == user.ID {
			continue
		}
		scored = append(scored, ScoredCandidate{
			Profile: candidate,
			Score:   scorer.Score(user, candidate),
		})
	}
	return scored
}
