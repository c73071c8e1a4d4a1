package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepals/match-core/internal/domain/filter"
	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
	"github.com/tradepals/match-core/internal/domain/trust"
)

// trustedProfile meets 3 of the 6 default priority criteria (verified, KYC,
// premium), landing exactly on the 0.5 trust threshold.
func trustedProfile(id string) *profile.UserProfile {
	p := profile.NewUserProfile(shared.UserID(id))
	p.Username = id
	p.Verified = true
	p.KYCVerified = true
	p.Premium = true
	return p
}

func untrustedProfile(id string) *profile.UserProfile {
	p := profile.NewUserProfile(shared.UserID(id))
	p.Username = id
	return p
}

func newSubmitHandler(profiles *fakeProfileRepo, filters *fakeFilterRepo, pub *capturePublisher) *SubmitFiltersHandler {
	evaluator := trust.NewEvaluator(trust.NewDefaultStore())
	return NewSubmitFiltersHandler(profiles, filters, evaluator, &seqIDGen{}, pub)
}

func TestSubmitFilters_UntrustedUserGoesPending(t *testing.T) {
	profiles := newFakeProfileRepo(untrustedProfile("u1"))
	filters := newFakeFilterRepo()
	pub := &capturePublisher{}
	handler := newSubmitHandler(profiles, filters, pub)

	result, err := handler.Handle(context.Background(), SubmitFiltersCommand{
		UserID:  "u1",
		Filters: []string{"region:EU", "verified_only"},
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, filter.StatusPending, result.Status)
	assert.False(t, result.AutoApproved)
	assert.NotEmpty(t, result.RequestID)

	pending, err := filters.FindPendingByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"region:EU", "verified_only"}, pending.RequestedFilters)

	// The user's active filters stay untouched until an admin reviews.
	assert.Empty(t, profiles.activeFilters["u1"])
	assert.Contains(t, pub.typesSeen(), shared.EventFilterSubmitted)
}

func TestSubmitFilters_TrustedUserAutoApproves(t *testing.T) {
	profiles := newFakeProfileRepo(trustedProfile("u1"))
	filters := newFakeFilterRepo()
	pub := &capturePublisher{}
	handler := newSubmitHandler(profiles, filters, pub)

	result, err := handler.Handle(context.Background(), SubmitFiltersCommand{
		UserID:  "u1",
		Filters: []string{"region:EU"},
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.AutoApproved)
	assert.Equal(t, filter.StatusApproved, result.Status)
	assert.InDelta(t, 0.5, result.PriorityRatio, 0.001)
	assert.Contains(t, result.CriteriaMet, trust.CriterionVerified)

	// Filters applied directly, nothing left in the review queue.
	assert.Equal(t, []string{"region:EU"}, profiles.activeFilters["u1"])
	_, err = filters.FindPendingByUser(context.Background(), "u1")
	assert.ErrorIs(t, err, shared.ErrRequestNotFound)

	assert.Contains(t, pub.typesSeen(), shared.EventFilterAutoApproved)
}

func TestSubmitFilters_ForcePendingOverridesTrust(t *testing.T) {
	profiles := newFakeProfileRepo(trustedProfile("u1"))
	filters := newFakeFilterRepo()
	handler := newSubmitHandler(profiles, filters, &capturePublisher{})

	result, err := handler.Handle(context.Background(), SubmitFiltersCommand{
		UserID:       "u1",
		Filters:      []string{"region:EU"},
		ForcePending: true,
	})
	require.NoError(t, err)

	// Trusted, but auto-approval is switched off: the request still queues.
	assert.False(t, result.AutoApproved)
	assert.Equal(t, filter.StatusPending, result.Status)
	assert.InDelta(t, 0.5, result.PriorityRatio, 0.001)
	assert.Empty(t, profiles.activeFilters["u1"])
}

func TestSubmitFilters_AutoApproveDiscardsEarlierPending(t *testing.T) {
	// A user who became trusted after queueing a request: the stale pending
	// request must not linger for an admin to act on.
	profiles := newFakeProfileRepo(trustedProfile("u1"))
	filters := newFakeFilterRepo()
	stale, err := filter.NewRequest("old", "u1", []string{"category:crypto"})
	require.NoError(t, err)
	require.NoError(t, filters.CreatePending(context.Background(), stale))

	handler := newSubmitHandler(profiles, filters, &capturePublisher{})

	result, err := handler.Handle(context.Background(), SubmitFiltersCommand{
		UserID:  "u1",
		Filters: []string{"region:EU"},
	})
	require.NoError(t, err)
	assert.True(t, result.AutoApproved)

	_, err = filters.FindPendingByUser(context.Background(), "u1")
	assert.ErrorIs(t, err, shared.ErrRequestNotFound)
}

func TestSubmitFilters_SecondPendingIsRefused(t *testing.T) {
	profiles := newFakeProfileRepo(untrustedProfile("u1"))
	filters := newFakeFilterRepo()
	handler := newSubmitHandler(profiles, filters, &capturePublisher{})

	_, err := handler.Handle(context.Background(), SubmitFiltersCommand{
		UserID:  "u1",
		Filters: []string{"region:EU"},
	})
	require.NoError(t, err)

	result, err := handler.Handle(context.Background(), SubmitFiltersCommand{
		UserID:  "u1",
		Filters: []string{"region:NA"},
	})
	require.NoError(t, err)

	// Refusal is a business outcome, not a transport error.
	assert.False(t, result.Success)
	assert.Equal(t, filter.StatusPending, result.Status)
	assert.NotEmpty(t, result.Message)

	// The original request is untouched.
	pending, err := filters.FindPendingByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"region:EU"}, pending.RequestedFilters)
}

func TestSubmitFilters_Validation(t *testing.T) {
	handler := newSubmitHandler(newFakeProfileRepo(), newFakeFilterRepo(), &capturePublisher{})

	_, err := handler.Handle(context.Background(), SubmitFiltersCommand{Filters: []string{"x"}})
	assert.ErrorIs(t, err, shared.ErrInvalidUserID)

	_, err = handler.Handle(context.Background(), SubmitFiltersCommand{UserID: "u1"})
	assert.ErrorIs(t, err, shared.ErrEmptyFilters)
}

func TestSubmitFilters_UnknownUser(t *testing.T) {
	handler := newSubmitHandler(newFakeProfileRepo(), newFakeFilterRepo(), &capturePublisher{})

	_, err := handler.Handle(context.Background(), SubmitFiltersCommand{
		UserID:  "ghost",
		Filters: []string{"region:EU"},
	})
	assert.ErrorIs(t, err, shared.ErrProfileNotFound)
}
