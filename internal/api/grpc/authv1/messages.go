// Package authv1 defines the diary.auth.v1.Auth gRPC service: its messages,
// service descriptor, client and the JSON wire codec it is served with.
package authv1

import "time"

// RegisterRequest creates an account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse carries the id of the new account.
type RegisterResponse struct {
	UserID string `json:"user_id"`
}

// LoginRequest exchanges credentials for a token pair.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by Login and Refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// RefreshRequest rotates a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest ends the session of the access token in the authorization
// metadata. RefreshToken is revoked too when set.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RevokeRequest revokes any token, expired or not.
type RevokeRequest struct {
	Token string `json:"token"`
}

// ProfileResponse describes the authenticated account.
type ProfileResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ChangePasswordRequest replaces the password of the authenticated account.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdateProfileRequest changes the email of the authenticated account.
type UpdateProfileRequest struct {
	Email string `json:"email"`
}
