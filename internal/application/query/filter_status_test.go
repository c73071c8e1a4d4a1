package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepals/match-core/internal/domain/filter"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// fakeFilterStore serves only the reads the status query needs.
type fakeFilterStore struct {
	latest map[shared.UserID]*filter.Request
}

func (s *fakeFilterStore) CreatePending(_ context.Context, req *filter.Request) error {
	s.latest[req.UserID] = req
	return nil
}

func (s *fakeFilterStore) FindPendingByUser(_ context.Context, userID shared.UserID) (*filter.Request, error) {
	return nil, shared.ErrRequestNotFound
}

func (s *fakeFilterStore) FindLatestByUser(_ context.Context, userID shared.UserID) (*filter.Request, error) {
	req, ok := s.latest[userID]
	if !ok {
		return nil, shared.ErrRequestNotFound
	}
	return req, nil
}

func (s *fakeFilterStore) Update(_ context.Context, req *filter.Request) error {
	s.latest[req.UserID] = req
	return nil
}

func (s *fakeFilterStore) DeletePendingByUser(_ context.Context, _ shared.UserID) error {
	return nil
}

func TestFilterStatus_NoRequestReadsAsNone(t *testing.T) {
	handler := NewFilterStatusHandler(&fakeFilterStore{latest: map[shared.UserID]*filter.Request{}})

	result, err := handler.Handle(context.Background(), FilterStatusQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, filter.StatusNone, result.Status)
	assert.Empty(t, result.RequestedFilters)
}

func TestFilterStatus_ReflectsLatestRequest(t *testing.T) {
	store := &fakeFilterStore{latest: map[shared.UserID]*filter.Request{}}
	req, err := filter.NewRequest("r1", "u1", []string{"region:EU"})
	require.NoError(t, err)
	require.NoError(t, req.Reject("too broad", 0))
	store.latest["u1"] = req

	handler := NewFilterStatusHandler(store)
	result, err := handler.Handle(context.Background(), FilterStatusQuery{UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, filter.StatusRejected, result.Status)
	assert.Equal(t, []string{"region:EU"}, result.RequestedFilters)
	assert.Equal(t, []string{filter.RejectAll}, result.RejectedFilters)
	assert.Equal(t, "too broad", result.RejectionReason)
}

func TestFilterStatus_MissingUser(t *testing.T) {
	handler := NewFilterStatusHandler(&fakeFilterStore{latest: map[shared.UserID]*filter.Request{}})

	_, err := handler.Handle(context.Background(), FilterStatusQuery{})
	assert.ErrorIs(t, err, shared.ErrInvalidUserID)
}
