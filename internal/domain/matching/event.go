package matching

import (
	"context"

	"github.com/tradepals/match-core/internal/domain/profile"
)

// MatchEvent is a platform event (meetup, trading competition) that scopes a
// group-matching request: its constraints replace the caller's ad-hoc filter.
type MatchEvent struct {
	ID           string
	Title        string
	Region       string
	Category     string
	GroupSize    int
	VerifiedOnly bool
}

// Filter converts the event constraints into a pool filter.
func (e MatchEvent) Filter() profile.PoolFilter {
	return profile.PoolFilter{
		Region:       e.Region,
		Category:     e.Category,
		VerifiedOnly: e.VerifiedOnly,
	}
}

// Size returns the event's group size, or the default when unset.
func (e MatchEvent) Size() int {
	if e.GroupSize < MinGroupSize {
		return DefaultGroupSize
	}
	return e.GroupSize
}

// EventRepository resolves match events by ID.
type EventRepository interface {
	// FindByID returns the event, or shared.ErrEventNotFound.
	FindByID(ctx context.Context, id string) (*MatchEvent, error)
}
