package matching

import (
	"context"

	"github.com/tradepals/match-core/internal/domain/shared"
)

// HistoryStore tracks which candidates a user has recently been shown and
// which ones they skipped. The sets feed the fresh-matching exclusion rule
// and are exactly what the rematch engine re-scores. Backed by Redis in
// production; entries expire on their own.
type HistoryStore interface {
	// RecordShown adds candidate IDs to the user's recently-shown set.
	RecordShown(ctx context.Context, userID shared.UserID, shown []shared.UserID) error

	// RecordSkip adds the target to both the user's skipped and
	// recently-shown sets.
	RecordSkip(ctx context.Context, userID, target shared.UserID) error

	// Recent returns the user's recently-shown set.
	Recent(ctx context.Context, userID shared.UserID) (shared.UserIDSet, error)

	// Skipped returns the user's skipped set.
	Skipped(ctx context.Context, userID shared.UserID) (shared.UserIDSet, error)
}
