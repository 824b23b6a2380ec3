package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/diary-server/internal/model"
)

// DefaultAlgorithm is used when Config.Algorithm is empty.
const DefaultAlgorithm = "HS256"

// Config holds the signing parameters. It is built once at startup and never
// changed afterwards.
type Config struct {
	Secret    []byte
	Algorithm string
	// Now overrides the verification clock. Defaults to time.Now.
	Now func() time.Time
}

// Claims is the JWT payload: registered sub/jti/iat/exp plus the token kind.
type Claims struct {
	jwt.RegisteredClaims
	Kind string `json:"kind"`
}

// JWT implements model.TokenCodec backed by symmetric HMAC.
type JWT struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	now    func() time.Time
}

var _ model.TokenCodec = (*JWT)(nil)

// NewJWT creates a codec for the configured HMAC algorithm.
func NewJWT(cfg Config) (*JWT, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt secret must not be empty")
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = DefaultAlgorithm
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &JWT{secret: secret, method: method, now: now}, nil
}

// Algorithm returns the JWT "alg" header value this codec signs with.
func (j *JWT) Algorithm() string {
	return j.method.Alg()
}

// Encode signs claims. The output depends only on claims and the key.
func (j *JWT) Encode(c model.Claims) (string, error) {
	if c.SubjectID == uuid.Nil {
		return "", errors.New("token subject is empty")
	}
	if c.TokenID == "" {
		return "", errors.New("token id is empty")
	}
	if c.Kind != model.KindAccess && c.Kind != model.KindRefresh {
		return "", fmt.Errorf("unknown token kind %q", c.Kind)
	}
	if !c.ExpiresAt.After(c.IssuedAt) {
		return "", errors.New("token expiry must be after issue time")
	}

	token := jwt.NewWithClaims(j.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.SubjectID.String(),
			ID:        c.TokenID,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
		Kind: string(c.Kind),
	})

	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", c.Kind, err)
	}

	return tokenString, nil
}

// Decode validates structure, signature and expiry.
func (j *JWT) Decode(tokenString string) (model.Claims, error) {
	return j.parse(tokenString, false)
}

// DecodeAllowExpired validates structure and signature but accepts tokens
// whose expiry has passed.
func (j *JWT) DecodeAllowExpired(tokenString string) (model.Claims, error) {
	return j.parse(tokenString, true)
}

func (j *JWT) parse(tokenString string, allowExpired bool) (model.Claims, error) {
	if n := strings.Count(tokenString, "."); n != 2 {
		// A '.' inside the signature segment still leaves an intact header
		// and payload in front of it.
		if n > 2 && validHeaderAndPayload(strings.SplitN(tokenString, ".", 3)) {
			return model.Claims{}, fmt.Errorf("%w: signature segment contains a separator", model.ErrTokenSignature)
		}
		return model.Claims{}, fmt.Errorf("%w: expected three segments", model.ErrTokenMalformed)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
	}
	if allowExpired {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, j.keyFunc, opts...)
	if err != nil {
		return model.Claims{}, classify(tokenString, err)
	}

	return claims.toModel()
}

func (j *JWT) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
	}
	return j.secret, nil
}

// classify maps jwt parser errors onto the token rejection reasons.
// The parser checks the signature before the claims, so an authentic token
// past its expiry is reported as expired, never as a bad signature.
func classify(tokenString string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", model.ErrTokenSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", model.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenMalformed) && corruptSignatureSegment(tokenString):
		return fmt.Errorf("%w: %w", model.ErrTokenSignature, err)
	default:
		return fmt.Errorf("%w: %w", model.ErrTokenMalformed, err)
	}
}

// corruptSignatureSegment reports whether header and payload are well formed
// while the signature segment is not valid base64url.
func corruptSignatureSegment(tokenString string) bool {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 || !validHeaderAndPayload(parts) {
		return false
	}
	_, err := base64.RawURLEncoding.Strict().DecodeString(parts[2])
	return err != nil
}

// validHeaderAndPayload reports whether the first two segments decode to JSON.
func validHeaderAndPayload(parts []string) bool {
	if len(parts) < 2 {
		return false
	}
	enc := base64.RawURLEncoding.Strict()
	for _, part := range parts[:2] {
		raw, err := enc.DecodeString(part)
		if err != nil || !json.Valid(raw) {
			return false
		}
	}
	return true
}

func (c *Claims) toModel() (model.Claims, error) {
	subject, err := uuid.Parse(c.Subject)
	if err != nil {
		return model.Claims{}, fmt.Errorf("%w: invalid subject: %w", model.ErrTokenMalformed, err)
	}
	if c.ID == "" {
		return model.Claims{}, fmt.Errorf("%w: missing token id", model.ErrTokenMalformed)
	}
	if c.IssuedAt == nil || c.ExpiresAt == nil {
		return model.Claims{}, fmt.Errorf("%w: missing iat or exp", model.ErrTokenMalformed)
	}

	kind := model.TokenKind(c.Kind)
	if kind != model.KindAccess && kind != model.KindRefresh {
		return model.Claims{}, fmt.Errorf("%w: unknown kind %q", model.ErrTokenMalformed, c.Kind)
	}

	return model.Claims{
		SubjectID: subject,
		TokenID:   c.ID,
		Kind:      kind,
		IssuedAt:  c.IssuedAt.Time,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
