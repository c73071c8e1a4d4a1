package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepals/match-core/internal/domain/shared"
)

func TestSkipMatch_RecordsBothSets(t *testing.T) {
	history := newFakeHistory()
	handler := NewSkipMatchHandler(history)

	err := handler.Handle(context.Background(), SkipMatchCommand{UserID: "u1", TargetID: "u2"})
	require.NoError(t, err)

	skipped, err := history.Skipped(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, skipped.Contains("u2"))

	// A skipped candidate is also excluded from fresh matching.
	recent, err := history.Recent(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, recent.Contains("u2"))
}

func TestSkipMatch_Validation(t *testing.T) {
	handler := NewSkipMatchHandler(newFakeHistory())

	err := handler.Handle(context.Background(), SkipMatchCommand{UserID: "u1"})
	assert.ErrorIs(t, err, shared.ErrInvalidUserID)

	err = handler.Handle(context.Background(), SkipMatchCommand{UserID: "u1", TargetID: "u1"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
