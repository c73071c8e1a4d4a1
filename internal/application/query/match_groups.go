// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"

	"github.com/tradepals/match-core/internal/domain/matching"
	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCH GROUPS QUERY
// Forms match groups for the requesting user from a bounded candidate pool.
// Also serves the event-scoped variant, where an event's stored constraints
// replace the caller's ad-hoc filter, and the admin override variant, which
// bypasses scoring entirely.
// ══════════════════════════════════════════════════════════════════════════════

// poolFetchLimit caps how many candidates are pulled from the profile store
// per matching request, before scoring narrows them further.
const poolFetchLimit = 100

// MatchGroupsQuery requests group formation.
type MatchGroupsQuery struct {
	// UserID is the requesting user.
	UserID string

	// Size is the desired group size; zero means the default.
	Size int

	// Region and Category narrow the candidate pool. Empty means no constraint.
	Region   string
	Category string

	// Override, when non-empty, lists the exact member IDs of a single
	// admin-assembled group. Scoring thresholds do not apply.
	Override []string
}

// Validate validates the query.
func (q MatchGroupsQuery) Validate() error {
	if q.UserID == "" {
		return fmt.Errorf("match_groups: %w", shared.ErrMissingSeedUser)
	}
	return nil
}

// EventGroupsQuery requests group formation scoped to a platform event.
type EventGroupsQuery struct {
	// UserID is the requesting user.
	UserID string

	// EventID resolves to stored region/category/size/verified constraints.
	EventID string
}

// MemberView is the wire shape of one group member.
type MemberView struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Avatar     string `json:"avatar"`
	Rank       string `json:"rank"`
	IsVerified bool   `json:"isVerified"`
	MatchScore int    `json:"matchScore"`
}

// GroupView is the wire shape of one match group.
type GroupView struct {
	ID             string       `json:"id"`
	Members        []MemberView `json:"members"`
	GroupScore     int          `json:"groupScore"`
	FiltersApplied []string     `json:"filtersApplied"`
}

// MatchGroupsResult contains the formed groups.
type MatchGroupsResult struct {
	Groups     []GroupView `json:"groups"`
	EventTitle string      `json:"eventTitle,omitempty"`
}

// MatchGroupsHandler handles group matching queries.
type MatchGroupsHandler struct {
	profileRepo    profile.Repository
	candidates     profile.CandidateSource
	engine         *matching.GroupFormationEngine
	history        matching.HistoryStore
	eventRepo      matching.EventRepository
	eventPublisher shared.EventPublisher
}

// NewMatchGroupsHandler creates a new MatchGroupsHandler.
func NewMatchGroupsHandler(
	profileRepo profile.Repository,
	candidates profile.CandidateSource,
	engine *matching.GroupFormationEngine,
	history matching.HistoryStore,
	eventRepo matching.EventRepository,
	eventPublisher shared.EventPublisher,
) *MatchGroupsHandler {
	return &MatchGroupsHandler{
		profileRepo:    profileRepo,
		candidates:     candidates,
		engine:         engine,
		history:        history,
		eventRepo:      eventRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the match groups query. An empty group list is a valid,
// fully successful result.
func (h *MatchGroupsHandler) Handle(ctx context.Context, q MatchGroupsQuery) (*MatchGroupsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	user, err := h.loadUserWithHistory(ctx, shared.UserID(q.UserID))
	if err != nil {
		return nil, fmt.Errorf("match_groups: %w", err)
	}

	if len(q.Override) > 0 {
		return h.handleOverride(ctx, user, q.Override)
	}

	size := q.Size
	if size == 0 {
		size = matching.DefaultGroupSize
	}
	filter := profile.PoolFilter{Region: q.Region, Category: q.Category}

	groups, err := h.formGroups(ctx, user, size, filter)
	if err != nil {
		return nil, err
	}
	return &MatchGroupsResult{Groups: groups}, nil
}

// HandleEvent executes the event-scoped variant.
func (h *MatchGroupsHandler) HandleEvent(ctx context.Context, q EventGroupsQuery) (*MatchGroupsResult, error) {
	if q.UserID == "" {
		return nil, fmt.Errorf("match_groups: %w", shared.ErrMissingSeedUser)
	}

	event, err := h.eventRepo.FindByID(ctx, q.EventID)
	if err != nil {
		return nil, fmt.Errorf("match_groups: %w", err)
	}

	user, err := h.loadUserWithHistory(ctx, shared.UserID(q.UserID))
	if err != nil {
		return nil, fmt.Errorf("match_groups: %w", err)
	}

	groups, err := h.formGroups(ctx, user, event.Size(), event.Filter())
	if err != nil {
		return nil, err
	}
	return &MatchGroupsResult{Groups: groups, EventTitle: event.Title}, nil
}

// formGroups runs the engine over a freshly fetched pool and records the
// surfaced members as shown.
func (h *MatchGroupsHandler) formGroups(ctx context.Context, user *profile.UserProfile, size int, filter profile.PoolFilter) ([]GroupView, error) {
	pool, err := h.candidates.Candidates(ctx, user.ID, filter, poolFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("match_groups: fetch pool: %w", err)
	}

	groups, err := h.engine.FormGroups(user, pool, size, filter)
	if err != nil {
		return nil, fmt.Errorf("match_groups: %w", err)
	}

	views := make([]GroupView, 0, len(groups))
	shown := make([]shared.UserID, 0)
	groupIDs := make([]string, 0, len(groups))
	topScore := 0
	for _, g := range groups {
		views = append(views, toGroupView(g))
		shown = append(shown, g.MemberIDs()...)
		groupIDs = append(groupIDs, g.ID)
		if g.GroupScore > topScore {
			topScore = g.GroupScore
		}
	}

	if len(groups) > 0 {
		// Shown-set recording is best effort; losing it only means a
		// candidate may be offered once more.
		_ = h.history.RecordShown(ctx, user.ID, shown)
		_ = h.eventPublisher.Publish(shared.NewMatchGroupFormedEvent(user.ID.String(), groupIDs, topScore))
	}

	return views, nil
}

// handleOverride builds the single admin-specified group.
func (h *MatchGroupsHandler) handleOverride(ctx context.Context, user *profile.UserProfile, memberIDs []string) (*MatchGroupsResult, error) {
	ids := make([]shared.UserID, 0, len(memberIDs))
	for _, raw := range memberIDs {
		id, err := shared.NewUserID(raw)
		if err != nil {
			return nil, fmt.Errorf("match_groups: %w", shared.ErrInvalidOverride)
		}
		ids = append(ids, id)
	}

	members, err := h.profileRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("match_groups: resolve override members: %w", err)
	}
	if len(members) != len(ids) {
		return nil, fmt.Errorf("match_groups: unknown override member: %w", shared.ErrInvalidOverride)
	}

	group, err := h.engine.FormOverrideGroup(user, members)
	if err != nil {
		return nil, fmt.Errorf("match_groups: %w", err)
	}
	return &MatchGroupsResult{Groups: []GroupView{toGroupView(group)}}, nil
}

// toGroupView maps a domain group to its wire shape.
func toGroupView(g matching.MatchGroup) GroupView {
	members := make([]MemberView, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, MemberView{
			ID:         m.Profile.ID.String(),
			Username:   m.Profile.Username,
			Avatar:     m.Profile.Avatar,
			Rank:       m.Profile.Rank.String(),
			IsVerified: m.Profile.Verified,
			MatchScore: m.MatchScore,
		})
	}

	applied := make([]string, 0, 3)
	if g.FiltersApplied.Region != "" {
		applied = append(applied, "region:"+g.FiltersApplied.Region)
	}
	if g.FiltersApplied.Category != "" {
		applied = append(applied, "category:"+g.FiltersApplied.Category)
	}
	if g.FiltersApplied.VerifiedOnly {
		applied = append(applied, "verified_only")
	}

	return GroupView{
		ID:             g.ID,
		Members:        members,
		GroupScore:     g.GroupScore,
		FiltersApplied: applied,
	}
}

// loadUserWithHistory loads the user profile and merges the history store's
// recent and skipped sets into it, so exclusion sees both sources.
func (h *MatchGroupsHandler) loadUserWithHistory(ctx context.Context, id shared.UserID) (*profile.UserProfile, error) {
	user, err := h.profileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	mergeHistory(ctx, h.history, user)
	return user, nil
}

// mergeHistory folds cached recent/skipped sets into the profile. Cache
// failures degrade to the profile record alone.
func mergeHistory(ctx context.Context, history matching.HistoryStore, user *profile.UserProfile) {
	if history == nil {
		return
	}
	if recent, err := history.Recent(ctx, user.ID); err == nil {
		for id := range recent {
			user.RecentMatches.Add(id)
		}
	}
	if skipped, err := history.Skipped(ctx, user.ID); err == nil {
		for id := range skipped {
			user.SkippedIDs.Add(id)
		}
	}
}
