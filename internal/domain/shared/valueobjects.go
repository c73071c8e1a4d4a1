// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UserID represents a unique platform user identifier.
type UserID string

// IsValid checks if the user ID is non-empty after trimming.
func (u UserID) IsValid() bool {
	return strings.TrimSpace(string(u)) != ""
}

// String returns the string representation.
func (u UserID) String() string {
	return string(u)
}

// NewUserID creates a new UserID with validation.
func NewUserID(id string) (UserID, error) {
	uid := UserID(strings.TrimSpace(id))
	if !uid.IsValid() {
		return "", ErrInvalidUserID
	}
	return uid, nil
}

// UserIDSet is a membership set of user identifiers.
type UserIDSet map[UserID]struct{}

// NewUserIDSet builds a set from a slice of IDs.
func NewUserIDSet(ids ...UserID) UserIDSet {
	s := make(UserIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (s UserIDSet) Contains(id UserID) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set.
func (s UserIDSet) Add(id UserID) {
	s[id] = struct{}{}
}

// Intersect returns the number of IDs present in both sets.
func (s UserIDSet) Intersect(other UserIDSet) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for id := range small {
		if large.Contains(id) {
			n++
		}
	}
	return n
}

// Union returns a new set containing every ID from both sets.
func (s UserIDSet) Union(other UserIDSet) UserIDSet {
	out := make(UserIDSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Slice returns the set members as a slice (unordered).
func (s UserIDSet) Slice() []UserID {
	out := make([]UserID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// ═══════════════════════════════════════════════════════════════════════════
// Rank Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Rank represents a user's tier on the platform, ordered from Homie (lowest)
// to Elite (highest). The ordering feeds directly into compatibility scoring.
type Rank string

const (
	RankHomie      Rank = "Homie"
	RankPal        Rank = "Pal"
	RankBuddy      Rank = "Buddy"
	RankFriend     Rank = "Friend"
	RankBestFriend Rank = "BestFriend"
	RankElite      Rank = "Elite"
)

// rankOrder is the fixed ordering of ranks, 1-based index = scoring weight.
var rankOrder = []Rank{RankHomie, RankPal, RankBuddy, RankFriend, RankBestFriend, RankElite}

// Index returns the 1-based position of the rank in the fixed ordering
// (Homie=1 ... Elite=6). Unknown ranks return 0.
func (r Rank) Index() int {
	for i, rank := range rankOrder {
		if rank == r {
			return i + 1
		}
	}
	return 0
}

// IsValid checks if the rank is one of the known tiers.
func (r Rank) IsValid() bool {
	return r.Index() > 0
}

// String returns the string representation.
func (r Rank) String() string {
	return string(r)
}

// ParseRank parses a rank label, case-insensitively. Unknown labels map to
// RankHomie so a missing or garbled rank never inflates a score.
func ParseRank(s string) Rank {
	for _, rank := range rankOrder {
		if strings.EqualFold(string(rank), s) {
			return rank
		}
	}
	return RankHomie
}

// ═══════════════════════════════════════════════════════════════════════════
// RiskScore Value Object
// ═══════════════════════════════════════════════════════════════════════════

// RiskScore represents a user's fraud-risk estimate (0-100, higher = riskier).
type RiskScore int

const (
	MinRiskScore RiskScore = 0
	MaxRiskScore RiskScore = 100

	// HighRiskThreshold is the point above which compatibility scoring
	// applies its risk penalty.
	HighRiskThreshold RiskScore = 70
)

// IsValid checks if the risk score is within the valid range.
func (r RiskScore) IsValid() bool {
	return r >= MinRiskScore && r <= MaxRiskScore
}

// IsHigh reports whether the score is above the high-risk threshold.
func (r RiskScore) IsHigh() bool {
	return r > HighRiskThreshold
}

// Int returns the underlying int value.
func (r RiskScore) Int() int {
	return int(r)
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents pagination parameters for list queries.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// NewPagination creates a new Pagination with defaults applied.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}
