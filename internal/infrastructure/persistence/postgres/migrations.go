package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Migrator applies embedded migrations in order, tracking them in
// schema_migrations.
type Migrator struct {
	conn      *Connection
	tableName string
}

// NewMigrator creates a new migrator.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn, tableName: "schema_migrations"}
}

// Migrate applies all pending migrations.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, mig := range migrations() {
		if _, ok := applied[mig.Version]; ok {
			continue
		}

		err := m.conn.WithTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("execute migration %d: %w", mig.Version, err)
			}
			_, err := tx.Exec(ctx,
				fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName),
				mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}
	return nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	if _, err := m.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[int]time.Time, error) {
	rows, err := m.conn.Query(ctx,
		fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName))
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}
	return applied, rows.Err()
}

// migrations returns all embedded migrations.
func migrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_user_profiles", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_filter_requests", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "create_match_events", UpSQL: migration003Up, DownSQL: migration003Down},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS user_profiles (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL DEFAULT '',
	avatar TEXT NOT NULL DEFAULT '',
	interests TEXT[] NOT NULL DEFAULT '{}',
	location TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	region TEXT NOT NULL DEFAULT '',
	currency TEXT NOT NULL DEFAULT '',
	balance DOUBLE PRECISION NOT NULL DEFAULT 0,
	rank TEXT NOT NULL DEFAULT 'Homie',
	verified BOOLEAN NOT NULL DEFAULT FALSE,
	successful_trades INTEGER NOT NULL DEFAULT 0,
	risk_score INTEGER NOT NULL DEFAULT 0,
	pals TEXT[] NOT NULL DEFAULT '{}',
	chat_history TEXT[] NOT NULL DEFAULT '{}',
	pocket TEXT[] NOT NULL DEFAULT '{}',
	recent_matches TEXT[] NOT NULL DEFAULT '{}',
	skipped_matches TEXT[] NOT NULL DEFAULT '{}',
	kyc_verified BOOLEAN NOT NULL DEFAULT FALSE,
	real_profile_pic BOOLEAN NOT NULL DEFAULT FALSE,
	last_active_at TIMESTAMP WITH TIME ZONE,
	posts_per_week INTEGER NOT NULL DEFAULT 0,
	premium BOOLEAN NOT NULL DEFAULT FALSE,
	gift_balance DOUBLE PRECISION NOT NULL DEFAULT 0,
	paid_activity BOOLEAN NOT NULL DEFAULT FALSE,
	active_filters TEXT[] NOT NULL DEFAULT '{}',
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_user_profiles_region ON user_profiles (region);
CREATE INDEX IF NOT EXISTS idx_user_profiles_country ON user_profiles (country);
`

const migration001Down = `DROP TABLE IF EXISTS user_profiles;`

const migration002Up = `
CREATE TABLE IF NOT EXISTS filter_requests (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	requested_filters TEXT[] NOT NULL DEFAULT '{}',
	status TEXT NOT NULL DEFAULT 'pending',
	approved_filters TEXT[] NOT NULL DEFAULT '{}',
	rejected_filters TEXT[] NOT NULL DEFAULT '{}',
	rejection_reason TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	reviewed_at TIMESTAMP WITH TIME ZONE
);

-- Backs the one-pending-request-per-user invariant at the storage level.
CREATE UNIQUE INDEX IF NOT EXISTS idx_filter_requests_one_pending
	ON filter_requests (user_id) WHERE status = 'pending';

CREATE INDEX IF NOT EXISTS idx_filter_requests_user ON filter_requests (user_id, created_at DESC);
`

const migration002Down = `DROP TABLE IF EXISTS filter_requests;`

const migration003Up = `
CREATE TABLE IF NOT EXISTS match_events (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	region TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	group_size INTEGER NOT NULL DEFAULT 4,
	verified_only BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const migration003Down = `DROP TABLE IF EXISTS match_events;`
