package matching

import (
	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GROUP FORMATION
// Greedy single-pass bucketing of a scored candidate pool into fixed-size
// groups. Deterministic for a given pool; bounded cost via the pool cap.
// ══════════════════════════════════════════════════════════════════════════════

const (
	// DefaultGroupSize is used when the caller does not specify a size.
	DefaultGroupSize = 4

	// MinGroupSize is the smallest meaningful group.
	MinGroupSize = 2

	// PoolCap bounds the working set after scoring, so formation cost does
	// not grow with the candidate pool.
	PoolCap = 30
)

// GroupThresholds holds the score bars applied during formation.
type GroupThresholds struct {
	// Solo is the bar a candidate must clear against the requesting user
	// to enter the working set at all. Candidates scoring <= Solo are dropped.
	Solo int

	// Pair is the bar a candidate must clear against a group seed to join
	// that seed's group. Candidates scoring <= Pair do not qualify.
	Pair int
}

// DefaultGroupThresholds returns the production thresholds.
func DefaultGroupThresholds() GroupThresholds {
	return GroupThresholds{Solo: 30, Pair: 25}
}

// IsValid checks that neither threshold is negative.
func (t GroupThresholds) IsValid() bool {
	return t.Solo >= 0 && t.Pair >= 0
}

// GroupMember is a group participant with its score against the group seed.
type GroupMember struct {
	Profile    *profile.UserProfile
	MatchScore int
}

// MatchGroup is an ordered list of members anchored by a seed. The first
// member is always the seed; GroupScore is the sum of every member's score
// against it. Groups are transient, created per request and never persisted.
type MatchGroup struct {
	ID             string
	Members        []GroupMember
	GroupScore     int
	FiltersApplied profile.PoolFilter
}

// Size returns the number of members.
func (g MatchGroup) Size() int {
	return len(g.Members)
}

// Seed returns the anchoring member, or nil for an empty group.
func (g MatchGroup) Seed() *profile.UserProfile {
	if len(g.Members) == 0 {
		return nil
	}
	return g.Members[0].Profile
}

// MemberIDs returns the IDs of all members in order.
func (g MatchGroup) MemberIDs() []shared.UserID {
	ids := make([]shared.UserID, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.Profile.ID)
	}
	return ids
}

// GroupFormationEngine forms match groups out of candidate pools.
type GroupFormationEngine struct {
	scorer     *Scorer
	thresholds GroupThresholds
	newID      func() string
}

// NewGroupFormationEngine creates an engine. newID generates group IDs and
// must not be nil.
func NewGroupFormationEngine(scorer *Scorer, thresholds GroupThresholds, newID func() string) (*GroupFormationEngine, error) {
	if !thresholds.IsValid() {
		return nil, shared.ErrInvalidThresholds
	}
	return &GroupFormationEngine{
		scorer:     scorer,
		thresholds: thresholds,
		newID:      newID,
	}, nil
}

// FormGroups buckets the candidate pool into groups of exactly groupSize
// members. An empty result is a valid outcome, not an error.
//
// Algorithm, in order:
//  1. Apply the caller's pool filter and drop the user's own exclusion set
//     (recently shown and skipped candidates).
//  2. Score every remaining candidate against the user; drop anyone at or
//     below the solo threshold.
//  3. Sort descending, cap the working set at PoolCap.
//  4. Repeatedly pop the top candidate as a group seed and collect up to
//     groupSize-1 members scoring above the pair threshold against it,
//     skipping anyone already a pal of the seed or of the requesting user.
//     A seed that cannot fill its group is discarded and forms nothing.
func (e *GroupFormationEngine) FormGroups(user *profile.UserProfile, pool []*profile.UserProfile, groupSize int, filter profile.PoolFilter) ([]MatchGroup, error) {
	if user == nil {
		return nil, shared.ErrMissingSeedUser
	}
	if groupSize < MinGroupSize {
		return nil, shared.ErrInvalidGroupSize
	}

	eligible := make([]*profile.UserProfile, 0, len(pool))
	excluded := user.ExcludedIDs()
	for _, candidate := range pool {
		if candidate == nil || candidate.ID == user.ID {
			continue
		}
		if excluded.Contains(candidate.ID) {
			continue
		}
		if !filter.Matches(candidate) {
			continue
		}
		eligible = append(eligible, candidate)
	}

	scored := ScorePool(e.scorer, user, eligible)
	scored = scored.FilterAboveScore(e.thresholds.Solo)
	scored.Sort()
	scored = scored.TopN(PoolCap)

	groups := make([]MatchGroup, 0)
	working := scored

	for len(working) >= groupSize-1 {
		seed := working[0]
		working = working[1:]

		members, rest := e.collectMembers(user, seed, working, groupSize-1)
		if len(members) < groupSize-1 {
			// Seed cannot fill a group; it forms nothing. Unpicked
			// candidates stay available for later seeds.
			continue
		}

		group := MatchGroup{
			ID:             e.newID(),
			Members:        make([]GroupMember, 0, groupSize),
			FiltersApplied: filter,
		}
		group.Members = append(group.Members, GroupMember{Profile: seed.Profile, MatchScore: seed.Score})
		for _, m := range members {
			group.Members = append(group.Members, m)
			group.GroupScore += m.MatchScore
		}
		group.GroupScore += seed.Score

		groups = append(groups, group)
		working = rest
	}

	return groups, nil
}

// collectMembers selects up to want candidates scoring above the pair
// threshold against the seed, excluding existing pals of the seed or the
// requesting user. It returns the selected members and the remaining pool.
func (e *GroupFormationEngine) collectMembers(user *profile.UserProfile, seed ScoredCandidate, pool CandidateList, want int) ([]GroupMember, CandidateList) {
	members := make([]GroupMember, 0, want)
	rest := make(CandidateList, 0, len(pool))

	for _, candidate := range pool {
		if len(members) == want {
			rest = append(rest, candidate)
			continue
		}
		if seed.Profile.IsPalOf(candidate.Profile.ID) || user.IsPalOf(candidate.Profile.ID) {
			rest = append(rest, candidate)
			continue
		}
		pairScore := e.scorer.Score(seed.Profile, candidate.Profile)
		if pairScore <= e.thresholds.Pair {
			rest = append(rest, candidate)
			continue
		}
		members = append(members, GroupMember{Profile: candidate.Profile, MatchScore: pairScore})
	}

	if len(members) < want {
		// Formation failed; give everything back for the next seed.
		return members, pool
	}
	return members, rest
}

// FormOverrideGroup builds one group containing exactly the given members,
// bypassing thresholds and exclusion rules. Scores are still computed against
// the first member for display. Admin use only.
func (e *GroupFormationEngine) FormOverrideGroup(user *profile.UserProfile, members []*profile.UserProfile) (MatchGroup, error) {
	if user == nil {
		return MatchGroup{}, shared.ErrMissingSeedUser
	}
	if len(members) == 0 {
		return MatchGroup{}, shared.ErrInvalidOverride
	}

	group := MatchGroup{
		ID:      e.newID(),
		Members: make([]GroupMember, 0, len(members)),
	}
	for _, m := range members {
		if m == nil {
			return MatchGroup{}, shared.ErrInvalidOverride
		}
		score := e.scorer.Score(user, m)
		group.Members = append(group.Members, GroupMember{Profile: m, MatchScore: score})
		group.GroupScore += score
	}
	return group, nil
}

// CrossMatch scores the pool against the user and returns the top limit
// candidates, excluding recently shown and skipped ones. Used for simple
// pairwise matching where no group structure is needed.
func (e *GroupFormationEngine) CrossMatch(user *profile.UserProfile, pool []*profile.UserProfile, limit int) (CandidateList, error) {
	if user == nil {
		return nil, shared.ErrMissingSeedUser
	}
	if limit <= 0 {
		limit = 10
	}

	scored := ScorePool(e.scorer, user, pool)
	scored = scored.Exclude(user.ExcludedIDs())
	scored.Sort()
	return scored.TopN(limit), nil
}
