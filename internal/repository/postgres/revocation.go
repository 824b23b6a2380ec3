package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/diary-server/internal/model"
)

var _ model.RevocationStore = (*RevocationRepository)(nil)

// DBTX is the subset of database/sql the revocation repository needs.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RevocationRepository persists revoked token ids. The primary key on
// token_id makes Revoke an atomic insert-if-absent.
type RevocationRepository struct {
	db DBTX
}

func NewRevocationRepository(db DBTX) *RevocationRepository {
	return &RevocationRepository{db: db}
}

func (r *RevocationRepository) Revoke(ctx context.Context, record model.RevocationRecord) (bool, error) {
	const query = `
        INSERT INTO revoked_tokens (token_id, subject_id, reason, expires_at, revoked_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (token_id) DO NOTHING
    `

	revokedAt := record.RevokedAt
	if revokedAt.IsZero() {
		revokedAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx, query,
		record.TokenID, nullableUUID(record.SubjectID), string(record.Reason), record.ExpiresAt, revokedAt,
	)
	if err != nil {
		return false, fmt.Errorf("%w: failed to revoke token: %w", model.ErrStoreUnavailable, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: failed to read revoke result: %w", model.ErrStoreUnavailable, err)
	}
	return n == 1, nil
}

func (r *RevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, tokenID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: failed to check revocation: %w", model.ErrStoreUnavailable, err)
	}
	return exists, nil
}

func (r *RevocationRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	for _, query := range []string{
		`DELETE FROM revoked_tokens WHERE expires_at < $1`,
		`DELETE FROM subject_revocations WHERE expires_at < $1`,
	} {
		res, err := r.db.ExecContext(ctx, query, now)
		if err != nil {
			return total, fmt.Errorf("%w: failed to purge revocations: %w", model.ErrStoreUnavailable, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("%w: failed to read purge result: %w", model.ErrStoreUnavailable, err)
		}
		total += n
	}
	return total, nil
}

func (r *RevocationRepository) RevokeSubject(ctx context.Context, revocation model.SubjectRevocation) error {
	const query = `
        INSERT INTO subject_revocations (subject_id, not_before, expires_at, reason, updated_at)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (subject_id) DO UPDATE SET
            not_before = GREATEST(subject_revocations.not_before, EXCLUDED.not_before),
            expires_at = GREATEST(subject_revocations.expires_at, EXCLUDED.expires_at),
            reason = CASE
                WHEN EXCLUDED.not_before > subject_revocations.not_before THEN EXCLUDED.reason
                ELSE subject_revocations.reason
            END,
            updated_at = NOW()
    `

	if _, err := r.db.ExecContext(ctx, query,
		revocation.SubjectID, revocation.NotBefore, revocation.ExpiresAt, string(revocation.Reason),
	); err != nil {
		return fmt.Errorf("%w: failed to revoke subject: %w", model.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *RevocationRepository) SubjectNotBefore(ctx context.Context, subjectID uuid.UUID) (time.Time, bool, error) {
	const query = `SELECT not_before FROM subject_revocations WHERE subject_id = $1`

	var notBefore time.Time
	err := r.db.QueryRowContext(ctx, query, subjectID).Scan(&notBefore)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("%w: failed to read subject revocation: %w", model.ErrStoreUnavailable, err)
	}
	return notBefore, true, nil
}

func nullableUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
