package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RevocationReason records why a token was revoked. It is informational only.
type RevocationReason string

const (
	ReasonLogout         RevocationReason = "logout"
	ReasonRotation       RevocationReason = "rotation"
	ReasonPasswordChange RevocationReason = "password_change"
	ReasonEmailChange    RevocationReason = "email_change"
	ReasonAccountDeleted RevocationReason = "account_deleted"
)

// RevocationRecord marks a single token id as permanently rejected.
// ExpiresAt is copied from the token so the record can be purged once the
// token would have expired anyway.
type RevocationRecord struct {
	TokenID   string
	SubjectID uuid.UUID
	ExpiresAt time.Time
	Reason    RevocationReason
	RevokedAt time.Time
}

// SubjectRevocation rejects every token of a subject issued before NotBefore.
type SubjectRevocation struct {
	SubjectID uuid.UUID
	NotBefore time.Time
	ExpiresAt time.Time
	Reason    RevocationReason
}

// RevocationStore is a durable, idempotent set of revoked token ids.
//
// Revoke reports whether this call created the record; a second revocation
// of the same id returns false and no error. Once Revoke has returned, every
// later IsRevoked for that id observes true.
type RevocationStore interface {
	Revoke(ctx context.Context, record RevocationRecord) (created bool, err error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
	RevokeSubject(ctx context.Context, revocation SubjectRevocation) error
	SubjectNotBefore(ctx context.Context, subjectID uuid.UUID) (time.Time, bool, error)
}
