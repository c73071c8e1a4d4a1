package trust

import (
	"sort"
	"time"

	"github.com/tradepals/match-core/internal/domain/profile"
)

// Tunables for the boolean predicates. Kept as constants; if product wants
// them configurable they move into Config.
const (
	activeWindow    = 7 * 24 * time.Hour
	minPostsPerWeek = 12
	minGiftBalance  = 10.0
)

// tierOneCountries is the fixed list used by the tier_one_country criterion.
var tierOneCountries = map[string]struct{}{
	"US": {}, "GB": {}, "CA": {}, "AU": {}, "DE": {}, "FR": {}, "JP": {}, "SG": {},
}

// IsTierOneCountry reports whether the country code is in the tier-one list.
func IsTierOneCountry(country string) bool {
	_, ok := tierOneCountries[country]
	return ok
}

// predicate evaluates one criterion against a profile at a point in time.
type predicate func(p *profile.UserProfile, now time.Time) bool

// predicates maps criterion names to their checks. A name missing here is
// never satisfied, which is how unknown criteria in a replaced policy
// degrade: carried, reported unmet, ignored.
var predicates = map[string]predicate{
	CriterionVerified: func(p *profile.UserProfile, _ time.Time) bool {
		return p.Verified
	},
	CriterionKYCVerified: func(p *profile.UserProfile, _ time.Time) bool {
		return p.KYCVerified
	},
	CriterionRealProfilePic: func(p *profile.UserProfile, _ time.Time) bool {
		return p.RealProfilePic
	},
	CriterionActive7d: func(p *profile.UserProfile, now time.Time) bool {
		return p.ActiveWithin(activeWindow, now)
	},
	CriterionPostingStreak: func(p *profile.UserProfile, _ time.Time) bool {
		return p.PostsPerWeek >= minPostsPerWeek
	},
	CriterionPremium: func(p *profile.UserProfile, _ time.Time) bool {
		return p.Premium
	},
	CriterionGiftBalance: func(p *profile.UserProfile, _ time.Time) bool {
		return p.GiftBalance >= minGiftBalance
	},
	CriterionPaidActivity: func(p *profile.UserProfile, _ time.Time) bool {
		return p.HasPaidActivity
	},
	CriterionRegionMatches: func(p *profile.UserProfile, _ time.Time) bool {
		return p.Region != "" && p.Region == p.Country
	},
	CriterionTierOneCountry: func(p *profile.UserProfile, _ time.Time) bool {
		return IsTierOneCountry(p.Country)
	},
}

// TrustThreshold is the priority ratio at which a user becomes trusted.
const TrustThreshold = 0.5

// Evaluation is the outcome of evaluating a user against the trust policy.
type Evaluation struct {
	IsTrusted     bool
	CriteriaMet   []string
	PriorityRatio float64
}

// Evaluator computes trust evaluations against the policy in its store.
type Evaluator struct {
	store *Store
	now   func() time.Time
}

// NewEvaluator creates an evaluator reading policy from the given store.
func NewEvaluator(store *Store) *Evaluator {
	return &Evaluator{store: store, now: time.Now}
}

// Evaluate checks the user against every configured criterion and computes
// the priority ratio. The policy snapshot is loaded once per call, so a
// concurrent Replace never yields a mixed view.
func (e *Evaluator) Evaluate(p *profile.UserProfile) Evaluation {
	criteria := e.store.Current()
	now := e.now()

	met := make([]string, 0, len(criteria.Priority)+len(criteria.General))
	priorityMet := 0

	for _, name := range criteria.All() {
		check, known := predicates[name]
		if !known || !check(p, now) {
			continue
		}
		met = append(met, name)
		if criteria.IsPriority(name) {
			priorityMet++
		}
	}
	sort.Strings(met)

	ratio := 0.0
	if len(criteria.Priority) > 0 {
		ratio = float64(priorityMet) / float64(len(criteria.Priority))
	}

	return Evaluation{
		IsTrusted:     ratio >= TrustThreshold,
		CriteriaMet:   met,
		PriorityRatio: ratio,
	}
}
