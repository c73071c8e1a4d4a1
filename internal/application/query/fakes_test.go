package query

import (
	"context"
	"sort"

	"github.com/tradepals/match-core/internal/domain/matching"
	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// In-memory fakes for the query handler tests. The profile store doubles as
// the candidate source, the way the production repository does.

type fakeProfileStore struct {
	profiles map[shared.UserID]*profile.UserProfile
}

func newFakeProfileStore(profiles ...*profile.UserProfile) *fakeProfileStore {
	store := &fakeProfileStore{profiles: make(map[shared.UserID]*profile.UserProfile)}
	for _, p := range profiles {
		store.profiles[p.ID] = p
	}
	return store
}

func (s *fakeProfileStore) FindByID(_ context.Context, id shared.UserID) (*profile.UserProfile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, shared.ErrProfileNotFound
	}
	return p, nil
}

func (s *fakeProfileStore) FindByIDs(_ context.Context, ids []shared.UserID) ([]*profile.UserProfile, error) {
	found := make([]*profile.UserProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			found = append(found, p)
		}
	}
	return found, nil
}

func (s *fakeProfileStore) ListAll(_ context.Context, page shared.Pagination) ([]*profile.UserProfile, error) {
	all := make([]*profile.UserProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (s *fakeProfileStore) UpdateActiveFilters(_ context.Context, id shared.UserID, filters []string) error {
	if _, ok := s.profiles[id]; !ok {
		return shared.ErrProfileNotFound
	}
	s.profiles[id].ActiveFilters = filters
	return nil
}

func (s *fakeProfileStore) Candidates(_ context.Context, seed shared.UserID, filter profile.PoolFilter, limit int) ([]*profile.UserProfile, error) {
	pool := make([]*profile.UserProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if p.ID == seed || !filter.Matches(p) {
			continue
		}
		pool = append(pool, p)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	if limit > 0 && len(pool) > limit {
		pool = pool[:limit]
	}
	return pool, nil
}

type fakeHistory struct {
	recent  map[shared.UserID]shared.UserIDSet
	skipped map[shared.UserID]shared.UserIDSet
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{
		recent:  make(map[shared.UserID]shared.UserIDSet),
		skipped: make(map[shared.UserID]shared.UserIDSet),
	}
}

func (h *fakeHistory) RecordShown(_ context.Context, userID shared.UserID, shown []shared.UserID) error {
	set := h.recent[userID]
	if set == nil {
		set = shared.NewUserIDSet()
		h.recent[userID] = set
	}
	for _, id := range shown {
		set.Add(id)
	}
	return nil
}

func (h *fakeHistory) RecordSkip(_ context.Context, userID, target shared.UserID) error {
	for _, m := range []map[shared.UserID]shared.UserIDSet{h.skipped, h.recent} {
		set := m[userID]
		if set == nil {
			set = shared.NewUserIDSet()
			m[userID] = set
		}
		set.Add(target)
	}
	return nil
}

func (h *fakeHistory) Recent(_ context.Context, userID shared.UserID) (shared.UserIDSet, error) {
	if set, ok := h.recent[userID]; ok {
		return set, nil
	}
	return shared.NewUserIDSet(), nil
}

func (h *fakeHistory) Skipped(_ context.Context, userID shared.UserID) (shared.UserIDSet, error) {
	if set, ok := h.skipped[userID]; ok {
		return set, nil
	}
	return shared.NewUserIDSet(), nil
}

type fakeEventRepo struct {
	events map[string]*matching.MatchEvent
}

func (r *fakeEventRepo) FindByID(_ context.Context, id string) (*matching.MatchEvent, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, shared.ErrEventNotFound
	}
	return e, nil
}

type capturePublisher struct {
	events []shared.Event
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}
