package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/brmonteiro/saipos-bridge/internal/entities"
	"github.com/brmonteiro/saipos-bridge/pkg/trm"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type postgresRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewPostgresRepo(db *sqlx.DB) *postgresRepo {
	return &postgresRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var submissionColumns = []string{
	"order_id", "idempotency_key", "status", "payload",
	"pos_response", "last_error", "created_at", "updated_at",
}

// CreatePending inserts the journal row and reports whether this call
// won it. A re-received order keeps its original key and payload: the
// insert is the authority on who submits, not the preceding read.
func (r *postgresRepo) CreatePending(ctx context.Context, s entities.Submission) (bool, error) {
	now := time.Now().UTC()
	query, args := r.qb.Insert("submissions").
		Columns(submissionColumns...).
		Values(
			s.OrderID,
			s.IdempotencyKey,
			string(entities.StatusPending),
			// payload column is jsonb, pass the text representation
			string(s.Payload),
			[]byte(nil),
			sql.NullString{},
			now,
			now,
		).
		Suffix("ON CONFLICT (order_id) DO NOTHING").
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to create submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

func (r *postgresRepo) GetByOrderID(ctx context.Context, orderID string) (entities.Submission, error) {
	query, args := r.qb.Select(submissionColumns...).
		From("submissions").
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	var row Submission
	err := r.getContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Submission{}, entities.ErrSubmissionNotFound
	}
	if err != nil {
		return entities.Submission{}, fmt.Errorf("failed to get submission: %w", err)
	}
	return row.toEntity(), nil
}

func (r *postgresRepo) ListByStatus(ctx context.Context, status entities.SubmissionStatus, limit int) ([]entities.Submission, error) {
	query, args := r.qb.Select(submissionColumns...).
		From("submissions").
		Where(sq.Eq{"status": string(status)}).
		OrderBy("updated_at DESC").
		Limit(uint64(limit)).
		MustSql()

	var rows []Submission
	if err := r.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	subs := make([]entities.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.toEntity())
	}
	return subs, nil
}

func (r *postgresRepo) MarkDelivered(ctx context.Context, orderID string, posResponse []byte) error {
	return r.updateStatus(ctx, orderID, entities.StatusDelivered, posResponse, "")
}

func (r *postgresRepo) MarkFailed(ctx context.Context, orderID string, posResponse []byte, lastError string) error {
	return r.updateStatus(ctx, orderID, entities.StatusFailed, posResponse, lastError)
}

func (r *postgresRepo) updateStatus(ctx context.Context, orderID string, status entities.SubmissionStatus, posResponse []byte, lastError string) error {
	query, args := r.qb.Update("submissions").
		Set("status", string(status)).
		Set("pos_response", posResponse).
		Set("last_error", nullString(lastError)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"order_id": orderID}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update submission status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return entities.ErrSubmissionNotFound
	}
	return nil
}

func (r *postgresRepo) AddAttempt(ctx context.Context, a entities.Attempt) error {
	query, args := r.qb.Insert("submission_attempts").
		Columns("order_id", "status", "pos_response", "error", "attempted_at").
		Values(a.OrderID, string(a.Status), a.POSResponse, nullString(a.Error), a.AttemptedAt.UTC()).
		MustSql()

	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to add attempt: %w", err)
	}
	return nil
}

func (r *postgresRepo) ListAttempts(ctx context.Context, orderID string) ([]entities.Attempt, error) {
	query, args := r.qb.Select("order_id", "status", "pos_response", "error", "attempted_at").
		From("submission_attempts").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("attempted_at ASC").
		MustSql()

	var rows []Attempt
	if err := r.selectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	attempts := make([]entities.Attempt, 0, len(rows))
	for _, row := range rows {
		attempts = append(attempts, row.toEntity())
	}
	return attempts, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func (r *postgresRepo) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return r.db.ExecContext(ctx, query, args...)
}

func (r *postgresRepo) getContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.GetContext(ctx, dest, query, args...)
	}
	return r.db.GetContext(ctx, dest, query, args...)
}

func (r *postgresRepo) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.SelectContext(ctx, dest, query, args...)
	}
	return r.db.SelectContext(ctx, dest, query, args...)
}
