package matching

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
)

func newTestEngine(t *testing.T) *GroupFormationEngine {
	t.Helper()
	seq := 0
	engine, err := NewGroupFormationEngine(NewDefaultScorer(), DefaultGroupThresholds(), func() string {
		seq++
		return fmt.Sprintf("group-%d", seq)
	})
	require.NoError(t, err)
	return engine
}

// strongCandidate builds a profile that scores well against any user:
// Elite rank (60) + verified (25) = 85, clearing both thresholds.
func strongCandidate(id string) *profile.UserProfile {
	p := newProfile(id)
	p.Rank = shared.RankElite
	p.Verified = true
	return p
}

func TestFormGroups_GroupSizeInvariant(t *testing.T) {
	engine := newTestEngine(t)
	user := newProfile("user")

	pool := make([]*profile.UserProfile, 0, 9)
	for i := 0; i < 9; i++ {
		pool = append(pool, strongCandidate(fmt.Sprintf("c%d", i)))
	}

	groups, err := engine.FormGroups(user, pool, 4, profile.PoolFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, groups)

	for _, g := range groups {
		assert.Equal(t, 4, g.Size())
	}
}

func TestFormGroups_EmptyPoolIsNotAnError(t *testing.T) {
	engine := newTestEngine(t)

	groups, err := engine.FormGroups(newProfile("user"), nil, 4, profile.PoolFilter{})
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestFormGroups_NoCandidateClearsSoloThreshold(t *testing.T) {
	engine := newTestEngine(t)
	user := newProfile("user")

	// Bare Homie profiles score 10 against anyone, below the solo bar of 30.
	pool := []*profile.UserProfile{newProfile("c1"), newProfile("c2"), newProfile("c3")}

	groups, err := engine.FormGroups(user, pool, 2, profile.PoolFilter{})
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestFormGroups_ExclusionInvariant(t *testing.T) {
	engine := newTestEngine(t)
	user := newProfile("user")
	user.SkippedIDs.Add("skipped")
	user.RecentMatches.Add("recent")

	pool := []*profile.UserProfile{
		strongCandidate("skipped"),
		strongCandidate("recent"),
		strongCandidate("fresh-1"),
		strongCandidate("fresh-2"),
	}

	groups, err := engine.FormGroups(user, pool, 2, profile.PoolFilter{})
	require.NoError(t, err)

	for _, g := range groups {
		for _, id := range g.MemberIDs() {
			assert.NotContains(t, []shared.UserID{"skipped", "recent"}, id)
		}
	}
}

func TestFormGroups_PalsNeverGroupedTogether(t *testing.T) {
	engine := newTestEngine(t)
	user := newProfile("user")

	seed := strongCandidate("seed")
	seed.SuccessfulTrades = 10 // guarantees seed sorts first

	palOfSeed := strongCandidate("pal")
	seed.Pals.Add(palOfSeed.ID)
	palOfSeed.Pals.Add(seed.ID)

	stranger := strongCandidate("stranger")

	groups, err := engine.FormGroups(user, []*profile.UserProfile{seed, palOfSeed, stranger}, 2, profile.PoolFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, groups)

	first := groups[0]
	assert.Equal(t, shared.UserID("seed"), first.Members[0].Profile.ID)
	assert.Equal(t, shared.UserID("stranger"), first.Members[1].Profile.ID)
}

func TestFormGroups_PoolFilterApplied(t *testing.T) {
	engine := newTestEngine(t)
	user := newProfile("user")

	lagos := strongCandidate("lagos-1")
	lagos.Region = "Lagos"
	lagos2 := strongCandidate("lagos-2")
	lagos2.Region = "Lagos"
	abuja := strongCandidate("abuja")
	abuja.Region = "Abuja"

	groups, err := engine.FormGroups(user, []*profile.UserProfile{lagos, lagos2, abuja}, 2,
		profile.PoolFilter{Region: "Lagos"})
	require.NoError(t, err)
	require.Len(t, groups, 1)

	for _, id := range groups[0].MemberIDs() {
		assert.NotEqual(t, shared.UserID("abuja"), id)
	}
}

func TestFormGroups_RejectsInvalidInput(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.FormGroups(nil, nil, 4, profile.PoolFilter{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = engine.FormGroups(newProfile("user"), nil, 1, profile.PoolFilter{})
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)
}

func TestFormGroups_GroupScoreIsSumAgainstSeed(t *testing.T) {
	engine := newTestEngine(t)
	user := newProfile("user")

	pool := []*profile.UserProfile{
		strongCandidate("c1"),
		strongCandidate("c2"),
		strongCandidate("c3"),
	}

	groups, err := engine.FormGroups(user, pool, 3, profile.PoolFilter{})
	require.NoError(t, err)
	require.Len(t, groups, 1)

	g := groups[0]
	require.Equal(t, 3, g.Size())

	sum := 0
	for _, m := range g.Members {
		sum += m.MatchScore
	}
	assert.Equal(t, sum, g.GroupScore)
}

func TestFormOverrideGroup_BypassesThresholds(t *testing.T) {
	engine := newTestEngine(t)
	user := newProfile("user")

	// Members that would never clear the solo threshold.
	weak1 := newProfile("weak-1")
	weak2 := newProfile("weak-2")

	group, err := engine.FormOverrideGroup(user, []*profile.UserProfile{weak1, weak2})
	require.NoError(t, err)

	assert.Equal(t, 2, group.Size())
	assert.Equal(t, 20, group.GroupScore) // two Homie profiles at 10 each
}

func TestFormOverrideGroup_RejectsEmptyList(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.FormOverrideGroup(newProfile("user"), nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCrossMatch_TopTenExcludesSeen(t *testing.T) {
	engine := newTestEngine(t)
	user := newProfile("user")
	user.SkippedIDs.Add("seen")

	pool := make([]*profile.UserProfile, 0, 13)
	pool = append(pool, strongCandidate("seen"))
	for i := 0; i < 12; i++ {
		pool = append(pool, strongCandidate(fmt.Sprintf("c%02d", i)))
	}

	results, err := engine.CrossMatch(user, pool, 10)
	require.NoError(t, err)

	assert.Len(t, results, 10)
	for _, r := range results {
		assert.NotEqual(t, shared.UserID("seen"), r.Profile.ID)
	}
}
