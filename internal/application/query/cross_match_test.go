package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepals/match-core/internal/domain/shared"
)

func newCrossHandler(t *testing.T, store *fakeProfileStore, history *fakeHistory) *CrossMatchHandler {
	t.Helper()
	return NewCrossMatchHandler(store, store, testEngine(t), history)
}

func TestCrossMatch_ReturnsScoredCandidates(t *testing.T) {
	user := testProfile("user")
	strong := strongProfile("c1")
	weak := testProfile("c2") // Homie rank, scores 10
	store := newFakeProfileStore(user, strong, weak)
	history := newFakeHistory()
	handler := newCrossHandler(t, store, history)

	result, err := handler.Handle(context.Background(), CrossMatchQuery{UserID: "user"})
	require.NoError(t, err)
	require.Len(t, result.Candidates, 2)

	// Sorted by score descending, no group structure.
	assert.Equal(t, "c1", result.Candidates[0].ID)
	assert.Greater(t, result.Candidates[0].MatchScore, result.Candidates[1].MatchScore)

	// Every surfaced candidate is recorded as shown.
	recent, err := history.Recent(context.Background(), "user")
	require.NoError(t, err)
	assert.True(t, recent.Contains("c1"))
	assert.True(t, recent.Contains("c2"))
}

func TestCrossMatch_ExcludesSkippedAndRecent(t *testing.T) {
	user := testProfile("user")
	store := newFakeProfileStore(user, strongProfile("c1"), strongProfile("c2"))
	history := newFakeHistory()
	require.NoError(t, history.RecordSkip(context.Background(), "user", "c1"))
	handler := newCrossHandler(t, store, history)

	result, err := handler.Handle(context.Background(), CrossMatchQuery{UserID: "user"})
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "c2", result.Candidates[0].ID)
}

func TestCrossMatch_MissingUser(t *testing.T) {
	handler := newCrossHandler(t, newFakeProfileStore(), newFakeHistory())

	_, err := handler.Handle(context.Background(), CrossMatchQuery{})
	assert.ErrorIs(t, err, shared.ErrMissingSeedUser)

	_, err = handler.Handle(context.Background(), CrossMatchQuery{UserID: "ghost"})
	assert.ErrorIs(t, err, shared.ErrProfileNotFound)
}
