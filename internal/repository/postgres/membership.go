package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
)

const backend = "postgres"

// uniqueViolation is the SQLSTATE raised by the one-open-request-per-user index.
const uniqueViolation = "23505"

const selectColumns = `SELECT id, user_id, user_email, github_username, note, status, admin_notes, reviewed_by,
	invite_error, created_at, updated_at, reviewed_at, invite_sent_at, joined_at FROM membership_requests`

type membershipRequestRepository struct {
	db *sql.DB
}

func NewMembershipRequestRepository(db *sql.DB) repository.MembershipRequestRepository {
	return &membershipRequestRepository{db: db}
}

func (r *membershipRequestRepository) Create(ctx context.Context, req *domain.MembershipRequest) error {
	query := `INSERT INTO membership_requests (id, user_id, user_email, github_username, note, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	logger.StoreCall(backend, "Create", "user_id", req.UserID)

	res, err := r.db.ExecContext(ctx, query, req.ID, req.UserID, req.UserEmail, req.GitHubUsername, req.Note, string(req.Status), req.CreatedAt, req.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrActiveRequestExists
	}
	logger.StoreResult(backend, "Create", err, "request_id", req.ID, "rows_affected", rowsAffected(res))
	return err
}

func (r *membershipRequestRepository) GetByID(ctx context.Context, id string) (*domain.MembershipRequest, error) {
	query := selectColumns + ` WHERE id = $1`
	logger.StoreCall(backend, "GetByID", "request_id", id)

	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		logger.StoreResult(backend, "GetByID", err, "request_id", id)
		return nil, err
	}
	return req, nil
}

func (r *membershipRequestRepository) Update(ctx context.Context, req *domain.MembershipRequest) error {
	query := `UPDATE membership_requests SET status = $1, admin_notes = $2, reviewed_by = $3, invite_error = $4,
	          updated_at = $5, reviewed_at = $6, invite_sent_at = $7, joined_at = $8 WHERE id = $9`
	logger.StoreCall(backend, "Update", "request_id", req.ID, "status", req.Status)

	res, err := r.db.ExecContext(ctx, query, string(req.Status), req.AdminNotes, req.ReviewedBy, req.InviteError,
		req.UpdatedAt, nullTime(req.ReviewedAt), nullTime(req.InviteSentAt), nullTime(req.JoinedAt), req.ID)
	if err != nil {
		logger.StoreResult(backend, "Update", err, "request_id", req.ID)
		return err
	}
	if rowsAffected(res) == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *membershipRequestRepository) ListByUser(ctx context.Context, userID string) ([]domain.MembershipRequest, error) {
	query := selectColumns + ` WHERE user_id = $1 ORDER BY created_at DESC`
	logger.StoreCall(backend, "ListByUser", "user_id", userID)
	return r.list(ctx, query, userID)
}

func (r *membershipRequestRepository) ListByStatus(ctx context.Context, statuses ...domain.MembershipStatus) ([]domain.MembershipRequest, error) {
	logger.StoreCall(backend, "ListByStatus", "statuses", statuses)
	if len(statuses) == 0 {
		return r.list(ctx, selectColumns+` ORDER BY created_at DESC`)
	}

	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return r.list(ctx, selectColumns+` WHERE status = ANY($1) ORDER BY created_at DESC`, pq.Array(names))
}

func (r *membershipRequestRepository) list(ctx context.Context, query string, args ...any) ([]domain.MembershipRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.StoreResult(backend, "List", err)
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.MembershipRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.StoreResult(backend, "List", nil, "count", len(reqs))
	return reqs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*domain.MembershipRequest, error) {
	var (
		req                                domain.MembershipRequest
		status                             string
		reviewedAt, inviteSentAt, joinedAt sql.NullTime
	)
	err := row.Scan(&req.ID, &req.UserID, &req.UserEmail, &req.GitHubUsername, &req.Note, &status, &req.AdminNotes,
		&req.ReviewedBy, &req.InviteError, &req.CreatedAt, &req.UpdatedAt, &reviewedAt, &inviteSentAt, &joinedAt)
	if err != nil {
		return nil, err
	}
	req.Status = domain.MembershipStatus(status)
	req.ReviewedAt = timePtr(reviewedAt)
	req.InviteSentAt = timePtr(inviteSentAt)
	req.JoinedAt = timePtr(joinedAt)
	return &req, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func rowsAffected(res sql.Result) int64 {
	if res == nil {
		return 0
	}
	n, _ := res.RowsAffected()
	return n
}
