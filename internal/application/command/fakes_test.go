package command

import (
	"context"
	"fmt"

	"github.com/tradepals/match-core/internal/domain/filter"
	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// In-memory fakes for the command handler tests. They implement just enough
// of the repository contracts to exercise the workflows, including the
// single-pending guard in the filter repository.

type fakeProfileRepo struct {
	profiles map[shared.UserID]*profile.UserProfile

	// activeFilters records UpdateActiveFilters calls per user.
	activeFilters map[shared.UserID][]string
}

func newFakeProfileRepo(profiles ...*profile.UserProfile) *fakeProfileRepo {
	repo := &fakeProfileRepo{
		profiles:      make(map[shared.UserID]*profile.UserProfile),
		activeFilters: make(map[shared.UserID][]string),
	}
	for _, p := range profiles {
		repo.profiles[p.ID] = p
	}
	return repo
}

func (r *fakeProfileRepo) FindByID(_ context.Context, id shared.UserID) (*profile.UserProfile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, shared.ErrProfileNotFound
	}
	return p, nil
}

func (r *fakeProfileRepo) FindByIDs(_ context.Context, ids []shared.UserID) ([]*profile.UserProfile, error) {
	found := make([]*profile.UserProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			found = append(found, p)
		}
	}
	return found, nil
}

func (r *fakeProfileRepo) ListAll(_ context.Context, page shared.Pagination) ([]*profile.UserProfile, error) {
	all := make([]*profile.UserProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		all = append(all, p)
	}
	return all, nil
}

func (r *fakeProfileRepo) UpdateActiveFilters(_ context.Context, id shared.UserID, filters []string) error {
	if _, ok := r.profiles[id]; !ok {
		return shared.ErrProfileNotFound
	}
	r.activeFilters[id] = filters
	return nil
}

type fakeFilterRepo struct {
	pending map[shared.UserID]*filter.Request
	latest  map[shared.UserID]*filter.Request
}

func newFakeFilterRepo() *fakeFilterRepo {
	return &fakeFilterRepo{
		pending: make(map[shared.UserID]*filter.Request),
		latest:  make(map[shared.UserID]*filter.Request),
	}
}

func (r *fakeFilterRepo) CreatePending(_ context.Context, req *filter.Request) error {
	if _, exists := r.pending[req.UserID]; exists {
		return shared.ErrRequestPending
	}
	r.pending[req.UserID] = req
	r.latest[req.UserID] = req
	return nil
}

func (r *fakeFilterRepo) FindPendingByUser(_ context.Context, userID shared.UserID) (*filter.Request, error) {
	req, ok := r.pending[userID]
	if !ok {
		return nil, shared.ErrRequestNotFound
	}
	return req, nil
}

func (r *fakeFilterRepo) FindLatestByUser(_ context.Context, userID shared.UserID) (*filter.Request, error) {
	req, ok := r.latest[userID]
	if !ok {
		return nil, shared.ErrRequestNotFound
	}
	return req, nil
}

func (r *fakeFilterRepo) Update(_ context.Context, req *filter.Request) error {
	if req.Status.IsFinal() {
		delete(r.pending, req.UserID)
	}
	r.latest[req.UserID] = req
	return nil
}

func (r *fakeFilterRepo) DeletePendingByUser(_ context.Context, userID shared.UserID) error {
	delete(r.pending, userID)
	return nil
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

// capturePublisher records every published event for assertions.
type capturePublisher struct {
	events []shared.Event
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) typesSeen() []shared.EventType {
	types := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

// seqIDGen yields deterministic IDs.
type seqIDGen struct {
	n int
}

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}
