package postgres

import (
	"context"
	"fmt"

	"github.com/tradepals/match-core/internal/domain/matching"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCH EVENT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// MatchEventRepository implements matching.EventRepository on PostgreSQL.
type MatchEventRepository struct {
	conn *Connection
}

// NewMatchEventRepository creates a new MatchEventRepository.
func NewMatchEventRepository(conn *Connection) *MatchEventRepository {
	return &MatchEventRepository{conn: conn}
}

// FindByID implements matching.EventRepository.
func (r *MatchEventRepository) FindByID(ctx context.Context, id string) (*matching.MatchEvent, error) {
	row := r.conn.QueryRow(ctx, `
		SELECT id, title, region, category, group_size, verified_only
		FROM match_events
		WHERE id = $1`, id)

	ev := &matching.MatchEvent{}
	err := row.Scan(&ev.ID, &ev.Title, &ev.Region, &ev.Category, &ev.GroupSize, &ev.VerifiedOnly)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrEventNotFound
		}
		return nil, fmt.Errorf("postgres: find match event: %w", err)
	}
	return ev, nil
}
