package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/diary-server/internal/logger"
	"github.com/dtroode/diary-server/internal/model"
)

// MinPasswordLength is the shortest password, in bytes, Register and
// ChangePassword accept.
const MinPasswordLength = 8

// SessionManager is the part of Session the account flows depend on.
type SessionManager interface {
	Issue(ctx context.Context, subjectID uuid.UUID, withRefresh bool) (model.TokenPair, error)
	Revoke(ctx context.Context, token string) error
	RevokeSubject(ctx context.Context, subjectID uuid.UUID, reason model.RevocationReason) error
}

// Account implements registration, login and credential management on top of
// the session manager.
type Account struct {
	userStore model.UserStore
	hasher    model.PasswordHasher
	sessions  SessionManager
	logger    *logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAccount creates an account service.
func NewAccount(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	sessions SessionManager,
	logger *logger.Logger,
) *Account {
	return &Account{
		userStore: userStore,
		hasher:    hasher,
		sessions:  sessions,
		logger:    logger,
	}
}

// Register creates an account. The email is stored lower-cased.
func (a *Account) Register(ctx context.Context, email, password string) (model.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return model.User{}, err
	}
	if len(password) < MinPasswordLength {
		return model.User{}, model.ErrWeakPassword
	}

	a.logger.Debug("Account service: starting user registration",
		"email", email)

	existing, err := a.userStore.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Account service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if existing.ID != uuid.Nil {
		a.logger.Info("Account service: user already exists",
			"email", email)
		return model.User{}, model.ErrEmailTaken
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		a.logger.Error("Account service: failed to create user",
			"email", email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Account service: user registered",
		"email", email,
		"user_id", user.ID)

	return user, nil
}

// Login checks the credentials and issues an access and refresh token.
// An unknown email and a wrong password both yield ErrInvalidCredentials.
func (a *Account) Login(ctx context.Context, email, password string) (model.TokenPair, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.burnVerify(password)
		a.logger.Info("Account service: login for unknown email",
			"email", email)
		return model.TokenPair{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	ok, err := a.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		a.logger.Error("Account service: stored password hash is unreadable",
			"user_id", user.ID,
			"error", err.Error())
		return model.TokenPair{}, model.ErrInvalidCredentials
	}
	if !ok {
		a.logger.Info("Account service: wrong password",
			"user_id", user.ID)
		return model.TokenPair{}, model.ErrInvalidCredentials
	}

	pair, err := a.sessions.Issue(ctx, user.ID, true)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Account service: login completed",
		"user_id", user.ID)

	return pair, nil
}

// Profile returns the account of an authenticated user.
func (a *Account) Profile(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the password and revokes every token issued
// before the change. If the revocation fails the password is left as is.
func (a *Account) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if len(next) < MinPasswordLength {
		return model.ErrWeakPassword
	}

	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := a.hasher.Verify(current, user.PasswordHash)
	if err != nil || !ok {
		a.logger.Info("Account service: password change with wrong current password",
			"user_id", userID)
		return model.ErrInvalidCredentials
	}

	hash, err := a.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Sessions go first: the password must not change while old tokens
	// stay valid.
	if err := a.sessions.RevokeSubject(ctx, userID, model.ReasonPasswordChange); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	if err := a.userStore.UpdatePassword(ctx, userID, hash); err != nil {
		a.logger.Error("Account service: failed to update password",
			"user_id", userID,
			"error", err.Error())
		return fmt.Errorf("failed to update password: %w", err)
	}

	a.logger.Info("Account service: password changed",
		"user_id", userID)

	return nil
}

// UpdateProfile changes the account email and revokes every token issued
// before the change. Setting the current email again is a no-op.
func (a *Account) UpdateProfile(ctx context.Context, userID uuid.UUID, email string) (model.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return model.User{}, err
	}

	user, err := a.userStore.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Email == email {
		return user, nil
	}

	owner, err := a.userStore.GetByEmail(ctx, email)
	switch {
	case err == nil && owner.ID != userID:
		a.logger.Info("Account service: email change to a taken address",
			"user_id", userID)
		return model.User{}, model.ErrEmailTaken
	case err != nil && !errors.Is(err, model.ErrNotFound):
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := a.sessions.RevokeSubject(ctx, userID, model.ReasonEmailChange); err != nil {
		return model.User{}, fmt.Errorf("failed to revoke sessions: %w", err)
	}

	if err := a.userStore.UpdateEmail(ctx, userID, email); err != nil {
		a.logger.Error("Account service: failed to update email",
			"user_id", userID,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to update email: %w", err)
	}

	a.logger.Info("Account service: email changed",
		"user_id", userID)

	return a.Profile(ctx, userID)
}

// DeleteAccount soft-deletes the user and revokes all of its tokens.
func (a *Account) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := a.userStore.SoftDelete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := a.sessions.RevokeSubject(ctx, userID, model.ReasonAccountDeleted); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	a.logger.Info("Account service: account deleted",
		"user_id", userID)

	return nil
}

// Logout revokes the refresh token, when given, and then the presented
// access token. A rejected refresh token leaves the access token untouched.
func (a *Account) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if refreshToken != "" {
		if err := a.sessions.Revoke(ctx, refreshToken); err != nil {
			return err
		}
	}
	return a.sessions.Revoke(ctx, accessToken)
}

// burnVerify spends one hash verification so unknown emails take as long as
// wrong passwords.
func (a *Account) burnVerify(password string) {
	a.dummyOnce.Do(func() {
		hash, err := a.hasher.Hash("dummy-password")
		if err != nil {
			a.logger.Error("Account service: failed to prepare dummy hash",
				"error", err.Error())
			return
		}
		a.dummyHash = hash
	})
	if a.dummyHash == "" {
		return
	}
	_, _ = a.hasher.Verify(password, a.dummyHash)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", model.ErrInvalidEmail
	}
	return email, nil
}
