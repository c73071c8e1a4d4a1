package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepals/match-core/internal/domain/shared"
)

func newPendingRequest(t *testing.T) *Request {
	t.Helper()
	req, err := NewRequest("req-1", "user-1", []string{"region", "min_balance"})
	require.NoError(t, err)
	return req
}

func TestNewRequest_StartsPending(t *testing.T) {
	req := newPendingRequest(t)

	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, []string{"region", "min_balance"}, req.RequestedFilters)
	assert.Empty(t, req.ApprovedFilters)
	assert.Nil(t, req.ReviewedAt)
}

func TestNewRequest_RejectsEmptyInput(t *testing.T) {
	_, err := NewRequest("req-1", "", []string{"region"})
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = NewRequest("req-1", "user-1", nil)
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}

func TestApprove_SetsSubsetAndClearsRejection(t *testing.T) {
	req := newPendingRequest(t)

	err := req.Approve([]string{"region"})
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, req.Status)
	assert.Equal(t, []string{"region"}, req.ApprovedFilters)
	assert.Empty(t, req.RejectedFilters)
	assert.NotNil(t, req.ReviewedAt)
}

func TestApprove_EmptySubsetApprovesEverything(t *testing.T) {
	req := newPendingRequest(t)

	require.NoError(t, req.Approve(nil))
	assert.Equal(t, req.RequestedFilters, req.ApprovedFilters)
}

func TestReject_AlwaysRejectsAll(t *testing.T) {
	req := newPendingRequest(t)

	err := req.Reject("profile incomplete", 0)
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, req.Status)
	assert.Equal(t, []string{RejectAll}, req.RejectedFilters)
	assert.Equal(t, "profile incomplete", req.RejectionReason)
	assert.Empty(t, req.ApprovedFilters)
}

func TestReject_TruncatesReason(t *testing.T) {
	req := newPendingRequest(t)

	long := strings.Repeat("x", 100)
	require.NoError(t, req.Reject(long, 0))
	assert.Len(t, req.RejectionReason, DefaultReasonLimit)

	req2 := newPendingRequest(t)
	require.NoError(t, req2.Reject(long, 10))
	assert.Len(t, req2.RejectionReason, 10)
}

func TestReview_TerminalStatesAreFinal(t *testing.T) {
	approved := newPendingRequest(t)
	require.NoError(t, approved.Approve(nil))
	assert.ErrorIs(t, approved.Approve(nil), shared.ErrStateTransition)
	assert.ErrorIs(t, approved.Reject("late", 0), shared.ErrStateTransition)

	rejected := newPendingRequest(t)
	require.NoError(t, rejected.Reject("no", 0))
	assert.ErrorIs(t, rejected.Approve(nil), shared.ErrStateTransition)
}

func TestStatus_Predicates(t *testing.T) {
	assert.True(t, StatusApproved.IsFinal())
	assert.True(t, StatusRejected.IsFinal())
	assert.False(t, StatusPending.IsFinal())
	assert.False(t, StatusNone.IsFinal())

	assert.True(t, StatusNone.IsValid())
	assert.False(t, Status("weird").IsValid())
}
