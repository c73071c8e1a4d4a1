package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepals/match-core/internal/domain/matching"
	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
)

func testProfile(id string) *profile.UserProfile {
	p := profile.NewUserProfile(shared.UserID(id))
	p.Username = id
	return p
}

// strongProfile scores 85 against anyone (Elite rank 60 + verified 25),
// clearing both formation thresholds.
func strongProfile(id string) *profile.UserProfile {
	p := testProfile(id)
	p.Rank = shared.RankElite
	p.Verified = true
	return p
}

func testEngine(t *testing.T) *matching.GroupFormationEngine {
	t.Helper()
	seq := 0
	engine, err := matching.NewGroupFormationEngine(
		matching.NewDefaultScorer(),
		matching.DefaultGroupThresholds(),
		func() string {
			seq++
			return fmt.Sprintf("group-%d", seq)
		},
	)
	require.NoError(t, err)
	return engine
}

func newGroupsHandler(t *testing.T, store *fakeProfileStore, history *fakeHistory, events *fakeEventRepo, pub *capturePublisher) *MatchGroupsHandler {
	t.Helper()
	if events == nil {
		events = &fakeEventRepo{}
	}
	return NewMatchGroupsHandler(store, store, testEngine(t), history, events, pub)
}

func TestMatchGroups_FormsGroupsAndRecordsShown(t *testing.T) {
	user := testProfile("user")
	store := newFakeProfileStore(user,
		strongProfile("c1"), strongProfile("c2"), strongProfile("c3"), strongProfile("c4"))
	history := newFakeHistory()
	pub := &capturePublisher{}
	handler := newGroupsHandler(t, store, history, nil, pub)

	result, err := handler.Handle(context.Background(), MatchGroupsQuery{UserID: "user", Size: 4})
	require.NoError(t, err)
	require.Len(t, result.Groups, 1)

	group := result.Groups[0]
	assert.Len(t, group.Members, 4)
	assert.Greater(t, group.GroupScore, 0)

	// Surfaced members land in the recently-shown set.
	recent, err := history.Recent(context.Background(), "user")
	require.NoError(t, err)
	for _, m := range group.Members {
		assert.True(t, recent.Contains(shared.UserID(m.ID)))
	}

	require.Len(t, pub.events, 1)
	assert.Equal(t, shared.EventMatchGroupFormed, pub.events[0].EventType())
}

func TestMatchGroups_EmptyResultIsSuccess(t *testing.T) {
	user := testProfile("user")
	store := newFakeProfileStore(user) // nobody else registered
	history := newFakeHistory()
	pub := &capturePublisher{}
	handler := newGroupsHandler(t, store, history, nil, pub)

	result, err := handler.Handle(context.Background(), MatchGroupsQuery{UserID: "user"})
	require.NoError(t, err)
	assert.Empty(t, result.Groups)

	// No groups means no shown-set writes and no events.
	recent, _ := history.Recent(context.Background(), "user")
	assert.Empty(t, recent)
	assert.Empty(t, pub.events)
}

func TestMatchGroups_RegionFilterNarrowsPool(t *testing.T) {
	user := testProfile("user")
	eu1 := strongProfile("c1")
	eu1.Region = "EU"
	eu2 := strongProfile("c2")
	eu2.Region = "EU"
	na := strongProfile("c3")
	na.Region = "NA"
	store := newFakeProfileStore(user, eu1, eu2, na)
	handler := newGroupsHandler(t, store, newFakeHistory(), nil, &capturePublisher{})

	result, err := handler.Handle(context.Background(), MatchGroupsQuery{
		UserID: "user",
		Size:   2,
		Region: "EU",
	})
	require.NoError(t, err)
	require.Len(t, result.Groups, 1)

	ids := memberIDs(result.Groups[0])
	assert.ElementsMatch(t, []string{"c1", "c2"}, ids)
}

func TestMatchGroups_SkippedCandidatesExcluded(t *testing.T) {
	user := testProfile("user")
	store := newFakeProfileStore(user, strongProfile("c1"), strongProfile("c2"), strongProfile("c3"))
	history := newFakeHistory()
	require.NoError(t, history.RecordSkip(context.Background(), "user", "c1"))
	handler := newGroupsHandler(t, store, history, nil, &capturePublisher{})

	result, err := handler.Handle(context.Background(), MatchGroupsQuery{UserID: "user", Size: 2})
	require.NoError(t, err)
	require.Len(t, result.Groups, 1)

	assert.NotContains(t, memberIDs(result.Groups[0]), "c1")
}

func TestMatchGroups_OverrideBypassesScoring(t *testing.T) {
	user := testProfile("user")
	// Weak members (Homie rank, unverified) score well under both
	// thresholds; only the override path can group them.
	store := newFakeProfileStore(user, testProfile("w1"), testProfile("w2"))
	handler := newGroupsHandler(t, store, newFakeHistory(), nil, &capturePublisher{})

	result, err := handler.Handle(context.Background(), MatchGroupsQuery{
		UserID:   "user",
		Override: []string{"w1", "w2"},
	})
	require.NoError(t, err)
	require.Len(t, result.Groups, 1)

	assert.ElementsMatch(t, []string{"w1", "w2"}, memberIDs(result.Groups[0]))
}

func TestMatchGroups_OverrideUnknownMember(t *testing.T) {
	store := newFakeProfileStore(testProfile("user"), testProfile("w1"))
	handler := newGroupsHandler(t, store, newFakeHistory(), nil, &capturePublisher{})

	_, err := handler.Handle(context.Background(), MatchGroupsQuery{
		UserID:   "user",
		Override: []string{"w1", "ghost"},
	})
	assert.ErrorIs(t, err, shared.ErrInvalidOverride)
}

func TestMatchGroups_EventConstraintsApply(t *testing.T) {
	user := testProfile("user")
	v1 := strongProfile("c1")
	v2 := strongProfile("c2")
	unverified := testProfile("c3")
	unverified.Rank = shared.RankElite // scores 60, clears thresholds
	store := newFakeProfileStore(user, v1, v2, unverified)

	events := &fakeEventRepo{events: map[string]*matching.MatchEvent{
		"ev1": {ID: "ev1", Title: "Lagos Traders Meetup", GroupSize: 2, VerifiedOnly: true},
	}}
	handler := newGroupsHandler(t, store, newFakeHistory(), events, &capturePublisher{})

	result, err := handler.HandleEvent(context.Background(), EventGroupsQuery{UserID: "user", EventID: "ev1"})
	require.NoError(t, err)
	assert.Equal(t, "Lagos Traders Meetup", result.EventTitle)
	require.Len(t, result.Groups, 1)
	assert.ElementsMatch(t, []string{"c1", "c2"}, memberIDs(result.Groups[0]))
}

func TestMatchGroups_UnknownEvent(t *testing.T) {
	store := newFakeProfileStore(testProfile("user"))
	handler := newGroupsHandler(t, store, newFakeHistory(), &fakeEventRepo{}, &capturePublisher{})

	_, err := handler.HandleEvent(context.Background(), EventGroupsQuery{UserID: "user", EventID: "nope"})
	assert.ErrorIs(t, err, shared.ErrEventNotFound)
}

func TestMatchGroups_MissingUser(t *testing.T) {
	handler := newGroupsHandler(t, newFakeProfileStore(), newFakeHistory(), nil, &capturePublisher{})

	_, err := handler.Handle(context.Background(), MatchGroupsQuery{})
	assert.ErrorIs(t, err, shared.ErrMissingSeedUser)

	_, err = handler.Handle(context.Background(), MatchGroupsQuery{UserID: "ghost"})
	assert.ErrorIs(t, err, shared.ErrProfileNotFound)
}

func memberIDs(g GroupView) []string {
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.ID)
	}
	return ids
}
