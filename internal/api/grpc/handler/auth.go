package handler

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/dtroode/diary-server/internal/api/grpc/authv1"
	"github.com/dtroode/diary-server/internal/logger"
	"github.com/dtroode/diary-server/internal/model"
)

// AccountService defines registration, login and account management.
type AccountService interface {
	Register(ctx context.Context, email, password string) (model.User, error)
	Login(ctx context.Context, email, password string) (model.TokenPair, error)
	Profile(ctx context.Context, userID uuid.UUID) (model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, email string) (model.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
	Logout(ctx context.Context, accessToken, refreshToken string) error
}

// SessionService defines token refresh and revoke operations.
type SessionService interface {
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Revoke(ctx context.Context, token string) error
}

// Auth handles gRPC endpoints of the diary.auth.v1.Auth service.
type Auth struct {
	authv1.UnimplementedAuthServer
	accountService AccountService
	sessionService SessionService
	contextManager model.ContextManager
	logger         *logger.Logger
}

var _ authv1.AuthServer = (*Auth)(nil)

// NewAuth creates a new Auth handler.
func NewAuth(
	accountService AccountService,
	sessionService SessionService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		accountService: accountService,
		sessionService: sessionService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register creates an account.
func (h *Auth) Register(ctx context.Context, req *authv1.RegisterRequest) (*authv1.RegisterResponse, error) {
	h.logger.Debug("Auth handler: processing registration request",
		"email", req.Email)

	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password are required")
	}

	user, err := h.accountService.Register(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: registration failed",
			"email", req.Email,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &authv1.RegisterResponse{UserID: user.ID.String()}, nil
}

// Login exchanges credentials for an access and refresh token.
func (h *Auth) Login(ctx context.Context, req *authv1.LoginRequest) (*authv1.TokenResponse, error) {
	h.logger.Debug("Auth handler: processing login request",
		"email", req.Email)

	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "email and password are required")
	}

	pair, err := h.accountService.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: login failed",
			"email", req.Email,
			"error", err.Error())
		return nil, handleError(err)
	}

	return tokenResponse(pair), nil
}

// Refresh rotates a refresh token into a new pair.
func (h *Auth) Refresh(ctx context.Context, req *authv1.RefreshRequest) (*authv1.TokenResponse, error) {
	h.logger.Debug("Auth handler: processing token refresh request")

	if req.RefreshToken == "" {
		return nil, status.Error(codes.InvalidArgument, "refresh token is required")
	}

	pair, err := h.sessionService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.logger.Error("Auth handler: token refresh failed",
			"error", err.Error())
		return nil, handleError(err)
	}

	return tokenResponse(pair), nil
}

// Logout revokes the caller's access token and the optional refresh token.
func (h *Auth) Logout(ctx context.Context, req *authv1.LogoutRequest) (*emptypb.Empty, error) {
	accessToken, ok := h.contextManager.GetTokenFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "authentication failed")
	}

	if err := h.accountService.Logout(ctx, accessToken, req.RefreshToken); err != nil {
		h.logger.Error("Auth handler: logout failed",
			"error", err.Error())
		return nil, handleError(err)
	}

	return &emptypb.Empty{}, nil
}

// Revoke revokes any token; expired tokens are accepted.
func (h *Auth) Revoke(ctx context.Context, req *authv1.RevokeRequest) (*emptypb.Empty, error) {
	h.logger.Debug("Auth handler: processing token revoke request")

	if req.Token == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}

	if err := h.sessionService.Revoke(ctx, req.Token); err != nil {
		h.logger.Error("Auth handler: token revoke failed",
			"error", err.Error())
		return nil, handleError(err)
	}

	return &emptypb.Empty{}, nil
}

// Profile returns the authenticated account.
func (h *Auth) Profile(ctx context.Context, _ *emptypb.Empty) (*authv1.ProfileResponse, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "authentication failed")
	}

	user, err := h.accountService.Profile(ctx, userID)
	if err != nil {
		h.logger.Error("Auth handler: profile lookup failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return profileResponse(user), nil
}

// ChangePassword replaces the password and ends every existing session.
func (h *Auth) ChangePassword(ctx context.Context, req *authv1.ChangePasswordRequest) (*emptypb.Empty, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "authentication failed")
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		return nil, status.Error(codes.InvalidArgument, "current and new password are required")
	}

	if err := h.accountService.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.logger.Error("Auth handler: password change failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &emptypb.Empty{}, nil
}

// UpdateProfile changes the email of the authenticated account and ends every
// existing session.
func (h *Auth) UpdateProfile(ctx context.Context, req *authv1.UpdateProfileRequest) (*authv1.ProfileResponse, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "authentication failed")
	}

	if req.Email == "" {
		return nil, status.Error(codes.InvalidArgument, "email is required")
	}

	user, err := h.accountService.UpdateProfile(ctx, userID, req.Email)
	if err != nil {
		h.logger.Error("Auth handler: profile update failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return profileResponse(user), nil
}

// DeleteAccount removes the authenticated account.
func (h *Auth) DeleteAccount(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "authentication failed")
	}

	if err := h.accountService.DeleteAccount(ctx, userID); err != nil {
		h.logger.Error("Auth handler: account deletion failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return &emptypb.Empty{}, nil
}

func tokenResponse(pair model.TokenPair) *authv1.TokenResponse {
	return &authv1.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
	}
}

func profileResponse(user model.User) *authv1.ProfileResponse {
	return &authv1.ProfileResponse{
		UserID:    user.ID.String(),
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
