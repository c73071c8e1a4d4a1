package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/tradepals/match-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCH HISTORY CACHE
// ══════════════════════════════════════════════════════════════════════════════

// MatchHistoryCache implements matching.HistoryStore on Redis sets. Each
// user has two sets: match:recent:{id} for candidates they were shown and
// match:skipped:{id} for explicit skips. Both expire on their own, which is
// what makes a recently-shown candidate eligible again later.
type MatchHistoryCache struct {
	cache      *Cache
	recentTTL  time.Duration
	skippedTTL time.Duration
}

// NewMatchHistoryCache creates a new MatchHistoryCache with default TTLs.
func NewMatchHistoryCache(cache *Cache) *MatchHistoryCache {
	return &MatchHistoryCache{
		cache:      cache,
		recentTTL:  TTLRecentMatches,
		skippedTTL: TTLSkippedMatches,
	}
}

// WithTTLs overrides the default expirations. Non-positive values keep the
// defaults.
func (h *MatchHistoryCache) WithTTLs(recent, skipped time.Duration) *MatchHistoryCache {
	if recent > 0 {
		h.recentTTL = recent
	}
	if skipped > 0 {
		h.skippedTTL = skipped
	}
	return h
}

// RecordShown implements matching.HistoryStore.
func (h *MatchHistoryCache) RecordShown(ctx context.Context, userID shared.UserID, shown []shared.UserID) error {
	if !userID.IsValid() {
		return shared.ErrInvalidUserID
	}
	if len(shown) == 0 {
		return nil
	}

	members := make([]interface{}, 0, len(shown))
	for _, id := range shown {
		members = append(members, id.String())
	}

	key := RecentKey(userID.String())
	pipe := h.cache.Client().Pipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, h.recentTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("history: record shown: %w", err)
	}
	return nil
}

// RecordSkip implements matching.HistoryStore. A skip also counts as shown
// so the candidate is excluded from fresh matching either way.
func (h *MatchHistoryCache) RecordSkip(ctx context.Context, userID, target shared.UserID) error {
	if !userID.IsValid() || !target.IsValid() {
		return shared.ErrInvalidUserID
	}

	skippedKey := SkippedKey(userID.String())
	recentKey := RecentKey(userID.String())

	pipe := h.cache.Client().Pipeline()
	pipe.SAdd(ctx, skippedKey, target.String())
	pipe.Expire(ctx, skippedKey, h.skippedTTL)
	pipe.SAdd(ctx, recentKey, target.String())
	pipe.Expire(ctx, recentKey, h.recentTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("history: record skip: %w", err)
	}
	return nil
}

// Recent implements matching.HistoryStore.
func (h *MatchHistoryCache) Recent(ctx context.Context, userID shared.UserID) (shared.UserIDSet, error) {
	return h.members(ctx, RecentKey(userID.String()))
}

// Skipped implements matching.HistoryStore.
func (h *MatchHistoryCache) Skipped(ctx context.Context, userID shared.UserID) (shared.UserIDSet, error) {
	return h.members(ctx, SkippedKey(userID.String()))
}

func (h *MatchHistoryCache) members(ctx context.Context, key string) (shared.UserIDSet, error) {
	values, err := h.cache.Client().SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("history: read %s: %w", key, err)
	}

	set := shared.NewUserIDSet()
	for _, v := range values {
		set.Add(shared.UserID(v))
	}
	return set, nil
}
