package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/diary-server/internal/logger"
	"github.com/dtroode/diary-server/internal/model"
)

// IdentityLookup resolves a token subject to a live account.
type IdentityLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

// SessionConfig holds the token lifetimes. It is built once at startup.
type SessionConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Now overrides the issuing clock. Defaults to time.Now.
	Now func() time.Time
}

// Validate checks that both lifetimes are positive.
func (c SessionConfig) Validate() error {
	if c.AccessTTL <= 0 {
		return errors.New("access token ttl must be positive")
	}
	if c.RefreshTTL <= 0 {
		return errors.New("refresh token ttl must be positive")
	}
	return nil
}

// Session issues, verifies, refreshes and revokes bearer tokens.
// It holds no mutable state; concurrent safety comes from the store.
type Session struct {
	codec  model.TokenCodec
	store  model.RevocationStore
	users  IdentityLookup
	cfg    SessionConfig
	now    func() time.Time
	logger *logger.Logger
}

// NewSession creates a session manager.
func NewSession(
	codec model.TokenCodec,
	store model.RevocationStore,
	users IdentityLookup,
	cfg SessionConfig,
	logger *logger.Logger,
) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		codec:  codec,
		store:  store,
		users:  users,
		cfg:    cfg,
		now:    now,
		logger: logger,
	}, nil
}

// Issue mints an access token and, if withRefresh is set, a refresh token.
// Nothing is persisted.
func (s *Session) Issue(ctx context.Context, subjectID uuid.UUID, withRefresh bool) (model.TokenPair, error) {
	now := s.now()

	access, err := s.encode(subjectID, model.KindAccess, now, s.cfg.AccessTTL)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("issue access: %w", err)
	}

	pair := model.TokenPair{AccessToken: access, TokenType: model.TokenTypeBearer}
	if withRefresh {
		pair.RefreshToken, err = s.encode(subjectID, model.KindRefresh, now, s.cfg.RefreshTTL)
		if err != nil {
			return model.TokenPair{}, fmt.Errorf("issue refresh: %w", err)
		}
	}

	s.logger.Debug("Session service: issued tokens",
		"subject_id", subjectID,
		"with_refresh", withRefresh)

	return pair, nil
}

func (s *Session) encode(subjectID uuid.UUID, kind model.TokenKind, now time.Time, ttl time.Duration) (string, error) {
	return s.codec.Encode(model.Claims{
		SubjectID: subjectID,
		TokenID:   uuid.NewString(),
		Kind:      kind,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	})
}

// Verify checks signature, expiry and revocation, then resolves the subject.
// It accepts both token kinds.
func (s *Session) Verify(ctx context.Context, token string) (model.User, error) {
	_, user, err := s.verify(ctx, token)
	return user, err
}

// VerifyAccess is Verify restricted to access tokens.
func (s *Session) VerifyAccess(ctx context.Context, token string) (model.User, error) {
	claims, user, err := s.verify(ctx, token)
	if err != nil {
		return model.User{}, err
	}
	if claims.Kind != model.KindAccess {
		s.reject("verify access", claims, model.ErrWrongKind)
		return model.User{}, model.ErrWrongKind
	}
	return user, nil
}

func (s *Session) verify(ctx context.Context, token string) (model.Claims, model.User, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		s.reject("verify", claims, err)
		return model.Claims{}, model.User{}, err
	}

	if err := s.checkRevoked(ctx, claims); err != nil {
		s.reject("verify", claims, err)
		return model.Claims{}, model.User{}, err
	}

	user, err := s.users.GetByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			err = model.ErrUnknownSubject
		} else {
			err = fmt.Errorf("%w: identity lookup: %w", model.ErrStoreUnavailable, err)
		}
		s.reject("verify", claims, err)
		return model.Claims{}, model.User{}, err
	}

	return claims, user, nil
}

func (s *Session) checkRevoked(ctx context.Context, claims model.Claims) error {
	revoked, err := s.store.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return err
	}
	if revoked {
		return model.ErrTokenRevoked
	}

	notBefore, found, err := s.store.SubjectNotBefore(ctx, claims.SubjectID)
	if err != nil {
		return err
	}
	if found && claims.IssuedAt.Before(notBefore) {
		return fmt.Errorf("%w: issued before subject revocation", model.ErrTokenRevoked)
	}

	return nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. Of several concurrent calls with the same token only the
// one whose revocation inserted the record succeeds.
func (s *Session) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	claims, _, err := s.verify(ctx, refreshToken)
	if err != nil {
		return model.TokenPair{}, err
	}
	if claims.Kind != model.KindRefresh {
		s.reject("refresh", claims, model.ErrWrongKind)
		return model.TokenPair{}, model.ErrWrongKind
	}

	created, err := s.store.Revoke(ctx, model.RevocationRecord{
		TokenID:   claims.TokenID,
		SubjectID: claims.SubjectID,
		ExpiresAt: claims.ExpiresAt,
		Reason:    model.ReasonRotation,
		RevokedAt: s.now(),
	})
	if err != nil {
		s.reject("refresh", claims, err)
		return model.TokenPair{}, err
	}
	if !created {
		s.reject("refresh", claims, model.ErrTokenRevoked)
		return model.TokenPair{}, model.ErrTokenRevoked
	}

	pair, err := s.Issue(ctx, claims.SubjectID, true)
	if err != nil {
		return model.TokenPair{}, err
	}

	s.logger.Info("Session service: refresh token rotated",
		"subject_id", claims.SubjectID,
		"rotated_jti", claims.TokenID)

	return pair, nil
}

// Revoke persists a revocation for the token. Expired tokens are accepted;
// revoking an already revoked token is a no-op.
func (s *Session) Revoke(ctx context.Context, token string) error {
	claims, err := s.codec.DecodeAllowExpired(token)
	if err != nil {
		s.reject("revoke", claims, err)
		return err
	}

	created, err := s.store.Revoke(ctx, model.RevocationRecord{
		TokenID:   claims.TokenID,
		SubjectID: claims.SubjectID,
		ExpiresAt: claims.ExpiresAt,
		Reason:    model.ReasonLogout,
		RevokedAt: s.now(),
	})
	if err != nil {
		s.reject("revoke", claims, err)
		return err
	}

	s.logger.Info("Session service: token revoked",
		"subject_id", claims.SubjectID,
		"jti", claims.TokenID,
		"kind", claims.Kind,
		"already_revoked", !created)

	return nil
}

// RevokeSubject rejects every token of the subject issued before the current
// second. Tokens issued later in the same second stay valid.
func (s *Session) RevokeSubject(ctx context.Context, subjectID uuid.UUID, reason model.RevocationReason) error {
	notBefore := s.now().Truncate(time.Second)
	longest := max(s.cfg.AccessTTL, s.cfg.RefreshTTL)

	err := s.store.RevokeSubject(ctx, model.SubjectRevocation{
		SubjectID: subjectID,
		NotBefore: notBefore,
		ExpiresAt: notBefore.Add(longest),
		Reason:    reason,
	})
	if err != nil {
		s.logger.Error("Session service: failed to revoke subject",
			"subject_id", subjectID,
			"reason", reason,
			"error", err.Error())
		return err
	}

	s.logger.Info("Session service: subject tokens revoked",
		"subject_id", subjectID,
		"reason", reason)

	return nil
}

// reject logs the specific rejection reason. Callers outside the process
// only ever see a generic failure.
func (s *Session) reject(op string, claims model.Claims, err error) {
	level := s.logger.Debug
	if errors.Is(err, model.ErrStoreUnavailable) {
		level = s.logger.Error
	}
	level("Session service: token rejected",
		"op", op,
		"jti", claims.TokenID,
		"subject_id", claims.SubjectID,
		"error", err.Error())
}
