package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepals/match-core/internal/domain/trust"
)

func TestTrustScores_SortedByPriorityRatioDescending(t *testing.T) {
	// 3 of 6 priority criteria met: ratio 0.5, trusted.
	trusted := testProfile("alice")
	trusted.Verified = true
	trusted.KYCVerified = true
	trusted.Premium = true

	// 1 of 6: ratio ~0.17, not trusted.
	partial := testProfile("bob")
	partial.Premium = true

	nobody := testProfile("carol")

	store := newFakeProfileStore(trusted, partial, nobody)
	evaluator := trust.NewEvaluator(trust.NewDefaultStore())
	handler := NewTrustScoresHandler(store, evaluator)

	result, err := handler.Handle(context.Background(), TrustScoresQuery{Page: 1, PageSize: 50})
	require.NoError(t, err)
	require.Len(t, result.Scores, 3)

	assert.Equal(t, "alice", result.Scores[0].UserID)
	assert.True(t, result.Scores[0].IsTrusted)
	assert.InDelta(t, 0.5, result.Scores[0].PriorityRatio, 0.001)
	assert.Contains(t, result.Scores[0].CriteriaMet, trust.CriterionKYCVerified)

	assert.Equal(t, "bob", result.Scores[1].UserID)
	assert.False(t, result.Scores[1].IsTrusted)

	assert.Equal(t, "carol", result.Scores[2].UserID)
	assert.Zero(t, result.Scores[2].PriorityRatio)
}

func TestTrustScores_ReflectsReplacedPolicy(t *testing.T) {
	premiumOnly := testProfile("alice")
	premiumOnly.Premium = true

	store := newFakeProfileStore(premiumOnly)
	trustStore := trust.NewDefaultStore()
	evaluator := trust.NewEvaluator(trustStore)
	handler := NewTrustScoresHandler(store, evaluator)

	// Under a premium-only policy the same user becomes fully trusted.
	require.NoError(t, trustStore.Replace(trust.TrustCriteria{
		Priority: []string{trust.CriterionPremium},
	}))

	result, err := handler.Handle(context.Background(), TrustScoresQuery{Page: 1, PageSize: 50})
	require.NoError(t, err)
	require.Len(t, result.Scores, 1)
	assert.True(t, result.Scores[0].IsTrusted)
	assert.InDelta(t, 1.0, result.Scores[0].PriorityRatio, 0.001)
}
