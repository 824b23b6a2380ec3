package model

import "errors"

// Token rejection reasons. Every one of them is terminal for the request and
// is reported to clients as a generic authentication failure.
var (
	ErrTokenMalformed   = errors.New("token malformed")
	ErrTokenSignature   = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenRevoked     = errors.New("token revoked")
	ErrUnknownSubject   = errors.New("token subject unknown")
	ErrWrongKind        = errors.New("token kind mismatch")
	ErrStoreUnavailable = errors.New("revocation store unavailable")
)

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email is already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password is too short")
	ErrInvalidEmail       = errors.New("invalid email")
)

// IsAuthError reports whether err is one of the token rejection reasons.
func IsAuthError(err error) bool {
	for _, target := range []error{
		ErrTokenMalformed,
		ErrTokenSignature,
		ErrTokenExpired,
		ErrTokenRevoked,
		ErrUnknownSubject,
		ErrWrongKind,
		ErrStoreUnavailable,
		ErrInvalidCredentials,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
