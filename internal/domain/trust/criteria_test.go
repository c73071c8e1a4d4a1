package trust

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradepals/match-core/internal/domain/shared"
)

func TestTrustCriteria_Validate(t *testing.T) {
	assert.NoError(t, DefaultTrustCriteria().Validate())

	empty := TrustCriteria{General: []string{CriterionPremium}}
	assert.ErrorIs(t, empty.Validate(), shared.ErrInvalidInput)

	overlap := TrustCriteria{
		Priority: []string{CriterionVerified},
		General:  []string{CriterionVerified},
	}
	assert.ErrorIs(t, overlap.Validate(), shared.ErrInvalidInput)
}

func TestStore_ReplaceRejectsInvalid(t *testing.T) {
	store := NewDefaultStore()

	err := store.Replace(TrustCriteria{})
	assert.Error(t, err)

	// Failed replace leaves the current policy untouched.
	assert.Equal(t, DefaultTrustCriteria(), store.Current())
}

func TestStore_ConcurrentReadersSeeCompletePolicy(t *testing.T) {
	store := NewDefaultStore()

	policyA := TrustCriteria{Priority: []string{CriterionVerified}}
	policyB := TrustCriteria{Priority: []string{CriterionPremium, CriterionKYCVerified}}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Replace(policyA))
			assert.NoError(t, store.Replace(policyB))
		}()
		go func() {
			defer wg.Done()
			got := store.Current()
			// Every observed snapshot is one of the full policies.
			switch len(got.Priority) {
			case 1:
				assert.Equal(t, policyA.Priority, got.Priority)
			case 2:
				assert.Equal(t, policyB.Priority, got.Priority)
			case 6:
				assert.Equal(t, DefaultTrustCriteria().Priority, got.Priority)
			default:
				t.Errorf("observed partial policy: %v", got.Priority)
			}
		}()
	}
	wg.Wait()
}
