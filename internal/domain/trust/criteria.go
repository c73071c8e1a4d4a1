// Package trust implements the configurable trust policy: named boolean
// predicates over a user profile, split into priority and general criteria,
// with the ratio of met priority criteria gating filter auto-approval.
package trust

import (
	"sync/atomic"

	"github.com/tradepals/match-core/internal/domain/shared"
)

// Well-known criterion names. The evaluator only understands these; unknown
// names in a criteria list are carried but never satisfied.
const (
	CriterionVerified       = "verified"
	CriterionKYCVerified    = "kyc_verified"
	CriterionRealProfilePic = "real_profile_picture"
	CriterionActive7d       = "active_7d"
	CriterionPostingStreak  = "posting_streak"
	CriterionPremium        = "premium"
	CriterionGiftBalance    = "gift_balance"
	CriterionPaidActivity   = "paid_activity"
	CriterionRegionMatches  = "region_matches_country"
	CriterionTierOneCountry = "tier_one_country"
)

// TrustCriteria is the process-wide trust policy: two disjoint lists of
// criterion names. Priority criteria drive the trust ratio; general criteria
// are informational. The value is immutable once built; replacement happens
// wholesale through Store.Replace.
type TrustCriteria struct {
	Priority []string
	General  []string
}

// DefaultTrustCriteria returns the production policy.
func DefaultTrustCriteria() TrustCriteria {
	return TrustCriteria{
		Priority: []string{
			CriterionVerified,
			CriterionKYCVerified,
			CriterionPremium,
			CriterionPaidActivity,
			CriterionTierOneCountry,
			CriterionActive7d,
		},
		General: []string{
			CriterionRealProfilePic,
			CriterionPostingStreak,
			CriterionGiftBalance,
			CriterionRegionMatches,
		},
	}
}

// Validate checks the policy invariants: the priority list must be non-empty
// and no name may appear in both lists. Unknown names are allowed; the
// evaluator simply never satisfies them.
func (c TrustCriteria) Validate() error {
	if len(c.Priority) == 0 {
		return shared.ErrEmptyPriorityCriteria
	}
	seen := make(map[string]struct{}, len(c.Priority))
	for _, name := range c.Priority {
		seen[name] = struct{}{}
	}
	for _, name := range c.General {
		if _, ok := seen[name]; ok {
			return shared.ErrDuplicateCriterion
		}
	}
	return nil
}

// IsPriority reports whether name is a priority criterion.
func (c TrustCriteria) IsPriority(name string) bool {
	for _, n := range c.Priority {
		if n == name {
			return true
		}
	}
	return false
}

// All returns every configured criterion name, priority first.
func (c TrustCriteria) All() []string {
	all := make([]string, 0, len(c.Priority)+len(c.General))
	all = append(all, c.Priority...)
	all = append(all, c.General...)
	return all
}

// Store holds the current trust policy behind an atomic pointer. Readers
// always observe a complete list; writers swap wholesale. The store is safe
// for concurrent use without locks.
type Store struct {
	current atomic.Pointer[TrustCriteria]
}

// NewStore creates a store seeded with the given policy.
func NewStore(initial TrustCriteria) (*Store, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	s := &Store{}
	s.current.Store(&initial)
	return s, nil
}

// NewDefaultStore creates a store seeded with the production policy.
func NewDefaultStore() *Store {
	s, _ := NewStore(DefaultTrustCriteria())
	return s
}

// Current returns the active policy.
func (s *Store) Current() TrustCriteria {
	return *s.current.Load()
}

// Replace validates and installs a new policy. In-flight evaluations keep
// the snapshot they loaded; no reader ever sees a partial list.
func (s *Store) Replace(criteria TrustCriteria) error {
	if err := criteria.Validate(); err != nil {
		return err
	}
	c := criteria
	s.current.Store(&c)
	return nil
}
