package trust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
)

func newTrustProfile(id string) *profile.UserProfile {
	return profile.NewUserProfile(shared.UserID(id))
}

func TestEvaluate_HalfPriorityMakesTrusted(t *testing.T) {
	evaluator := NewEvaluator(NewDefaultStore())

	// Verified, premium, tier-one country: 3 of 6 priority criteria.
	p := newTrustProfile("u1")
	p.Verified = true
	p.Premium = true
	p.Country = "US"

	result := evaluator.Evaluate(p)

	assert.InDelta(t, 0.5, result.PriorityRatio, 1e-9)
	assert.True(t, result.IsTrusted)
	assert.ElementsMatch(t, []string{CriterionVerified, CriterionPremium, CriterionTierOneCountry}, result.CriteriaMet)
}

func TestEvaluate_BelowHalfIsNotTrusted(t *testing.T) {
	evaluator := NewEvaluator(NewDefaultStore())

	p := newTrustProfile("u1")
	p.Verified = true
	p.Premium = true

	result := evaluator.Evaluate(p)

	assert.InDelta(t, 2.0/6.0, result.PriorityRatio, 1e-9)
	assert.False(t, result.IsTrusted)
}

func TestEvaluate_RatioAlwaysWithinUnitInterval(t *testing.T) {
	evaluator := NewEvaluator(NewDefaultStore())

	empty := newTrustProfile("empty")

	full := newTrustProfile("full")
	full.Verified = true
	full.KYCVerified = true
	full.RealProfilePic = true
	full.LastActiveAt = time.Now().Add(-time.Hour)
	full.PostsPerWeek = 20
	full.Premium = true
	full.GiftBalance = 50
	full.HasPaidActivity = true
	full.Country = "GB"
	full.Region = "GB"

	low := evaluator.Evaluate(empty)
	high := evaluator.Evaluate(full)

	assert.GreaterOrEqual(t, low.PriorityRatio, 0.0)
	assert.LessOrEqual(t, low.PriorityRatio, 1.0)
	assert.False(t, low.IsTrusted)

	assert.Equal(t, 1.0, high.PriorityRatio)
	assert.True(t, high.IsTrusted)
	assert.Len(t, high.CriteriaMet, 10)
}

func TestEvaluate_GeneralCriteriaDoNotAffectRatio(t *testing.T) {
	evaluator := NewEvaluator(NewDefaultStore())

	p := newTrustProfile("u1")
	p.RealProfilePic = true
	p.PostsPerWeek = 15
	p.GiftBalance = 100

	result := evaluator.Evaluate(p)

	assert.Equal(t, 0.0, result.PriorityRatio)
	assert.False(t, result.IsTrusted)
	assert.Len(t, result.CriteriaMet, 3)
}

func TestEvaluate_ActivityWindowIsSevenDays(t *testing.T) {
	evaluator := NewEvaluator(NewDefaultStore())

	p := newTrustProfile("u1")
	p.LastActiveAt = time.Now().Add(-6 * 24 * time.Hour)
	assert.Contains(t, evaluator.Evaluate(p).CriteriaMet, CriterionActive7d)

	p.LastActiveAt = time.Now().Add(-8 * 24 * time.Hour)
	assert.NotContains(t, evaluator.Evaluate(p).CriteriaMet, CriterionActive7d)
}

func TestEvaluate_ReflectsReplacedCriteria(t *testing.T) {
	store := NewDefaultStore()
	evaluator := NewEvaluator(store)

	p := newTrustProfile("u1")
	p.Verified = true

	before := evaluator.Evaluate(p)
	assert.False(t, before.IsTrusted)

	err := store.Replace(TrustCriteria{
		Priority: []string{CriterionVerified, CriterionPremium},
		General:  []string{CriterionGiftBalance},
	})
	require.NoError(t, err)

	after := evaluator.Evaluate(p)
	assert.InDelta(t, 0.5, after.PriorityRatio, 1e-9)
	assert.True(t, after.IsTrusted)
}

func TestEvaluate_UnknownCriterionNeverMet(t *testing.T) {
	store := NewDefaultStore()
	require.NoError(t, store.Replace(TrustCriteria{
		Priority: []string{CriterionVerified, "crystal_ball"},
	}))

	p := newTrustProfile("u1")
	p.Verified = true

	result := NewEvaluator(store).Evaluate(p)
	assert.InDelta(t, 0.5, result.PriorityRatio, 1e-9)
	assert.NotContains(t, result.CriteriaMet, "crystal_ball")
}
