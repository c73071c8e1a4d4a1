// Package profile defines the user profile read model consumed by the
// matchmaking core, together with the ports it is loaded through. The core
// never writes profiles; they are owned by the platform's user service.
package profile

import (
	"context"
	"time"

	"github.com/tradepals/match-core/internal/domain/shared"
)

// UserProfile is the read-only scoring input. Every field is optional in the
// upstream store; zero values (empty sets, zero balances) are the documented
// defaults, so scoring never needs nil checks beyond map membership.
type UserProfile struct {
	ID       shared.UserID
	Username string
	Avatar   string

	// Compatibility attributes
	Interests        map[string]struct{}
	Location         string
	Country          string
	Currency         string
	Balance          float64
	Rank             shared.Rank
	Verified         bool
	SuccessfulTrades int
	RiskScore        shared.RiskScore

	// Relationship sets
	Pals          shared.UserIDSet
	ChatHistory   shared.UserIDSet
	Pocket        shared.UserIDSet
	RecentMatches shared.UserIDSet
	SkippedIDs    shared.UserIDSet

	// Trust-predicate attributes
	KYCVerified     bool
	RealProfilePic  bool
	LastActiveAt    time.Time
	PostsPerWeek    int
	Premium         bool
	GiftBalance     float64
	HasPaidActivity bool
	Region          string
	ActiveFilters   []string
}

// NewUserProfile creates a profile with all relationship sets initialized,
// so callers can populate it field by field without nil-map panics.
func NewUserProfile(id shared.UserID) *UserProfile {
	return &UserProfile{
		ID:            id,
		Rank:          shared.RankHomie,
		Interests:     make(map[string]struct{}),
		Pals:          shared.NewUserIDSet(),
		ChatHistory:   shared.NewUserIDSet(),
		Pocket:        shared.NewUserIDSet(),
		RecentMatches: shared.NewUserIDSet(),
		SkippedIDs:    shared.NewUserIDSet(),
	}
}

// HasInterest reports whether the profile carries the given interest tag.
func (p *UserProfile) HasInterest(tag string) bool {
	_, ok := p.Interests[tag]
	return ok
}

// SharedInterests counts interest tags present on both profiles.
func (p *UserProfile) SharedInterests(other *UserProfile) int {
	small, large := p.Interests, other.Interests
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for tag := range small {
		if _, ok := large[tag]; ok {
			n++
		}
	}
	return n
}

// MutualPals counts pal IDs present on both profiles.
func (p *UserProfile) MutualPals(other *UserProfile) int {
	return p.Pals.Intersect(other.Pals)
}

// IsPalOf reports whether other is already a pal of this user.
func (p *UserProfile) IsPalOf(other shared.UserID) bool {
	return p.Pals.Contains(other)
}

// ExcludedIDs returns the union of recently shown and skipped match IDs.
// Fresh matching must never surface these; rematching operates on exactly
// this set.
func (p *UserProfile) ExcludedIDs() shared.UserIDSet {
	return p.RecentMatches.Union(p.SkippedIDs)
}

// ActiveWithin reports whether the user was active within the window.
func (p *UserProfile) ActiveWithin(window time.Duration, now time.Time) bool {
	if p.LastActiveAt.IsZero() {
		return false
	}
	return now.Sub(p.LastActiveAt) <= window
}

// PoolFilter narrows a candidate pool before scoring. Zero values mean
// "no constraint".
type PoolFilter struct {
	Region       string
	Category     string
	VerifiedOnly bool
}

// Matches reports whether the candidate passes the filter.
func (f PoolFilter) Matches(p *UserProfile) bool {
	if f.Region != "" && p.Region != f.Region && p.Location != f.Region {
		return false
	}
	if f.Category != "" && !p.HasInterest(f.Category) {
		return false
	}
	if f.VerifiedOnly && !p.Verified {
		return false
	}
	return true
}

// Repository loads single profiles from the external user store.
type Repository interface {
	// FindByID returns the profile for the given user, or
	// shared.ErrProfileNotFound.
	FindByID(ctx context.Context, id shared.UserID) (*UserProfile, error)

	// FindByIDs returns profiles for the given users, skipping unknown IDs.
	FindByIDs(ctx context.Context, ids []shared.UserID) ([]*UserProfile, error)

	// ListAll returns every profile, paginated, for admin trust reporting.
	ListAll(ctx context.Context, page shared.Pagination) ([]*UserProfile, error)

	// UpdateActiveFilters replaces the user's active match filters.
	UpdateActiveFilters(ctx context.Context, id shared.UserID, filters []string) error
}

// CandidateSource supplies bounded candidate pools for matching. The core
// never scans the whole user base; the source applies the coarse filter and
// the cap server-side.
type CandidateSource interface {
	// Candidates returns up to limit candidate profiles for the seed user,
	// excluding the seed itself. The filter is applied before the cap.
	Candidates(ctx context.Context, seed shared.UserID, filter PoolFilter, limit int) ([]*UserProfile, error)
}
