package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tradepals/match-core/internal/domain/profile"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE REPOSITORY
// Read-mostly access to the platform's user profiles. The matchmaking core
// never creates profiles; the only write is the active-filters update after
// a filter request is approved.
// ══════════════════════════════════════════════════════════════════════════════

const profileColumns = `
	id, username, avatar, interests, location, country, region, currency,
	balance, rank, verified, successful_trades, risk_score,
	pals, chat_history, pocket, recent_matches, skipped_matches,
	kyc_verified, real_profile_pic, last_active_at, posts_per_week,
	premium, gift_balance, paid_activity, active_filters`

// ProfileRepository implements profile.Repository and profile.CandidateSource
// on PostgreSQL.
type ProfileRepository struct {
	conn *Connection
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(conn *Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

// FindByID implements profile.Repository.
func (r *ProfileRepository) FindByID(ctx context.Context, id shared.UserID) (*profile.UserProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM user_profiles WHERE id = $1", profileColumns)

	row := r.conn.QueryRow(ctx, query, id.String())
	p, err := scanProfile(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrProfileNotFound
		}
		return nil, fmt.Errorf("postgres: find profile: %w", err)
	}
	return p, nil
}

// FindByIDs implements profile.Repository. Unknown IDs are silently skipped.
func (r *ProfileRepository) FindByIDs(ctx context.Context, ids []shared.UserID) ([]*profile.UserProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}

	query := fmt.Sprintf("SELECT %s FROM user_profiles WHERE id = ANY($1)", profileColumns)
	rows, err := r.conn.Query(ctx, query, raw)
	if err != nil {
		return nil, fmt.Errorf("postgres: find profiles: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

// ListAll implements profile.Repository.
func (r *ProfileRepository) ListAll(ctx context.Context, page shared.Pagination) ([]*profile.UserProfile, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM user_profiles ORDER BY id LIMIT $1 OFFSET $2", profileColumns)

	rows, err := r.conn.Query(ctx, query, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("postgres: list profiles: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

// UpdateActiveFilters implements profile.Repository.
func (r *ProfileRepository) UpdateActiveFilters(ctx context.Context, id shared.UserID, filters []string) error {
	if filters == nil {
		filters = []string{}
	}
	tag, err := r.conn.Exec(ctx,
		"UPDATE user_profiles SET active_filters = $2, updated_at = NOW() WHERE id = $1",
		id.String(), filters)
	if err != nil {
		return fmt.Errorf("postgres: update active filters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrProfileNotFound
	}
	return nil
}

// Candidates implements profile.CandidateSource. The coarse filter runs
// server-side so the core only ever scores a bounded pool.
func (r *ProfileRepository) Candidates(ctx context.Context, seed shared.UserID, f profile.PoolFilter, limit int) ([]*profile.UserProfile, error) {
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf("SELECT %s FROM user_profiles WHERE id <> $1", profileColumns)
	args := []interface{}{seed.String()}

	if f.Region != "" {
		args = append(args, f.Region)
		query += fmt.Sprintf(" AND (region = $%d OR location = $%d)", len(args), len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(" AND $%d = ANY(interests)", len(args))
	}
	if f.VerifiedOnly {
		query += " AND verified = TRUE"
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY last_active_at DESC NULLS LAST LIMIT $%d", len(args))

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch candidates: %w", err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

// collectProfiles drains rows into profiles.
func collectProfiles(rows pgx.Rows) ([]*profile.UserProfile, error) {
	profiles := make([]*profile.UserProfile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// scanProfile maps one row onto a UserProfile.
func scanProfile(row pgx.Row) (*profile.UserProfile, error) {
	var (
		id            string
		rank          string
		riskScore     int
		interests     []string
		pals          []string
		chatHistory   []string
		pocket        []string
		recentMatches []string
		skipped       []string
		lastActiveAt  *time.Time
	)

	p := &profile.UserProfile{}
	err := row.Scan(
		&id, &p.Username, &p.Avatar, &interests, &p.Location, &p.Country, &p.Region, &p.Currency,
		&p.Balance, &rank, &p.Verified, &p.SuccessfulTrades, &riskScore,
		&pals, &chatHistory, &pocket, &recentMatches, &skipped,
		&p.KYCVerified, &p.RealProfilePic, &lastActiveAt, &p.PostsPerWeek,
		&p.Premium, &p.GiftBalance, &p.HasPaidActivity, &p.ActiveFilters,
	)
	if err != nil {
		return nil, err
	}

	p.ID = shared.UserID(id)
	p.Rank = shared.ParseRank(rank)
	p.RiskScore = shared.RiskScore(riskScore)
	p.Interests = toSet(interests)
	p.Pals = toIDSet(pals)
	p.ChatHistory = toIDSet(chatHistory)
	p.Pocket = toIDSet(pocket)
	p.RecentMatches = toIDSet(recentMatches)
	p.SkippedIDs = toIDSet(skipped)
	if lastActiveAt != nil {
		p.LastActiveAt = *lastActiveAt
	}
	return p, nil
}

func toSet(values []string) map[string]struct{} {
	s := make(map[string]struct{}, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func toIDSet(values []string) shared.UserIDSet {
	s := shared.NewUserIDSet()
	for _, v := range values {
		s.Add(shared.UserID(v))
	}
	return s
}
