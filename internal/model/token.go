package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenKind distinguishes short-lived access tokens from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// TokenTypeBearer is the token_type returned with every issued pair.
const TokenTypeBearer = "bearer"

// Claims is the decoded content of a session token.
type Claims struct {
	SubjectID uuid.UUID
	TokenID   string
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is returned by Issue and Refresh. RefreshToken is empty when the
// caller asked for an access token only.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// TokenCodec encodes and decodes signed session tokens. Implementations are
// stateless and never consult the revocation store.
type TokenCodec interface {
	Encode(claims Claims) (string, error)
	Decode(token string) (Claims, error)
	DecodeAllowExpired(token string) (Claims, error)
}
