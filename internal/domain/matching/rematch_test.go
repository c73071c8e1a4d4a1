package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
)

func TestRematch_OnlySeenCandidatesAboveThreshold(t *testing.T) {
	engine := NewRematchEngine(NewDefaultScorer())

	user := newProfile("user")
	user.SkippedIDs.Add("improved")
	user.SkippedIDs.Add("still-weak")

	// Skipped back when unverified; now Elite and verified, scoring 85.
	improved := strongCandidate("improved")

	stillWeak := newProfile("still-weak")

	// Never shown to the user, so not rematch material no matter the score.
	fresh := strongCandidate("fresh")

	results, err := engine.Rematch(user, []*profile.UserProfile{improved, stillWeak, fresh})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, shared.UserID("improved"), results[0].Profile.ID)
	assert.Equal(t, RematchReason, results[0].Reason)
	assert.Greater(t, results[0].Score, RematchThreshold)
}

func TestRematch_RecentMatchesCarryPenalty(t *testing.T) {
	engine := NewRematchEngine(NewDefaultScorer())

	user := newProfile("user")
	user.RecentMatches.Add("recent")

	// 85 raw minus the recent-match penalty of 20 still clears the bar.
	recent := strongCandidate("recent")

	results, err := engine.Rematch(user, []*profile.UserProfile{recent})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, 65, results[0].Score)
}

func TestRematch_EmptyResultIsValid(t *testing.T) {
	engine := NewRematchEngine(NewDefaultScorer())

	results, err := engine.Rematch(newProfile("user"), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRematch_RequiresUser(t *testing.T) {
	engine := NewRematchEngine(NewDefaultScorer())

	_, err := engine.Rematch(nil, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
