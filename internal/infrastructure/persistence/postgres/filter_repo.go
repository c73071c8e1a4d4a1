package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tradepals/match-core/internal/domain/filter"
	"github.com/tradepals/match-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FILTER REQUEST REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

const filterRequestColumns = `
	id, user_id, requested_filters, status, approved_filters,
	rejected_filters, rejection_reason, created_at, reviewed_at`

// FilterRequestRepository implements filter.Repository on PostgreSQL. The
// single-pending invariant is enforced twice: a check inside the insert
// transaction and the partial unique index idx_filter_requests_one_pending.
type FilterRequestRepository struct {
	conn *Connection
}

// NewFilterRequestRepository creates a new FilterRequestRepository.
func NewFilterRequestRepository(conn *Connection) *FilterRequestRepository {
	return &FilterRequestRepository{conn: conn}
}

// CreatePending implements filter.Repository.
func (r *FilterRequestRepository) CreatePending(ctx context.Context, req *filter.Request) error {
	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM filter_requests WHERE user_id = $1 AND status = $2 FOR UPDATE)",
			req.UserID.String(), string(filter.StatusPending)).Scan(&exists)
		if err != nil {
			return err
		}
		if exists {
			return shared.ErrRequestPending
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO filter_requests
				(id, user_id, requested_filters, status, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			req.ID, req.UserID.String(), req.RequestedFilters, string(req.Status), req.CreatedAt)
		return err
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrRequestPending
		}
		if shared.IsConflict(err) {
			return err
		}
		return fmt.Errorf("postgres: create filter request: %w", err)
	}
	return nil
}

// FindPendingByUser implements filter.Repository.
func (r *FilterRequestRepository) FindPendingByUser(ctx context.Context, userID shared.UserID) (*filter.Request, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM filter_requests WHERE user_id = $1 AND status = $2", filterRequestColumns)

	req, err := scanFilterRequest(r.conn.QueryRow(ctx, query, userID.String(), string(filter.StatusPending)))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrRequestNotFound
		}
		return nil, fmt.Errorf("postgres: find pending request: %w", err)
	}
	return req, nil
}

// FindLatestByUser implements filter.Repository.
func (r *FilterRequestRepository) FindLatestByUser(ctx context.Context, userID shared.UserID) (*filter.Request, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM filter_requests WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1",
		filterRequestColumns)

	req, err := scanFilterRequest(r.conn.QueryRow(ctx, query, userID.String()))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrRequestNotFound
		}
		return nil, fmt.Errorf("postgres: find latest request: %w", err)
	}
	return req, nil
}

// Update implements filter.Repository.
func (r *FilterRequestRepository) Update(ctx context.Context, req *filter.Request) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE filter_requests
		SET status = $2,
			approved_filters = $3,
			rejected_filters = $4,
			rejection_reason = $5,
			reviewed_at = $6
		WHERE id = $1`,
		req.ID, string(req.Status), emptyIfNil(req.ApprovedFilters),
		emptyIfNil(req.RejectedFilters), req.RejectionReason, req.ReviewedAt)
	if err != nil {
		return fmt.Errorf("postgres: update filter request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrRequestNotFound
	}
	return nil
}

// DeletePendingByUser implements filter.Repository.
func (r *FilterRequestRepository) DeletePendingByUser(ctx context.Context, userID shared.UserID) error {
	_, err := r.conn.Exec(ctx,
		"DELETE FROM filter_requests WHERE user_id = $1 AND status = $2",
		userID.String(), string(filter.StatusPending))
	if err != nil {
		return fmt.Errorf("postgres: delete pending request: %w", err)
	}
	return nil
}

func scanFilterRequest(row pgx.Row) (*filter.Request, error) {
	var (
		userID     string
		status     string
		reviewedAt *time.Time
	)

	req := &filter.Request{}
	err := row.Scan(
		&req.ID, &userID, &req.RequestedFilters, &status, &req.ApprovedFilters,
		&req.RejectedFilters, &req.RejectionReason, &req.CreatedAt, &reviewedAt,
	)
	if err != nil {
		return nil, err
	}

	req.UserID = shared.UserID(userID)
	req.Status = filter.Status(status)
	req.ReviewedAt = reviewedAt
	return req, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
