package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/diary-server/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newCodec(t *testing.T, clock *fakeClock) *JWT {
	t.Helper()
	j, err := NewJWT(Config{Secret: []byte("secret"), Now: clock.Now})
	require.NoError(t, err)
	return j
}

func sampleClaims(now time.Time, kind model.TokenKind, ttl time.Duration) model.Claims {
	return model.Claims{
		SubjectID: uuid.New(),
		TokenID:   uuid.NewString(),
		Kind:      kind,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestNewJWT_Validation(t *testing.T) {
	_, err := NewJWT(Config{})
	require.Error(t, err)

	_, err = NewJWT(Config{Secret: []byte("s"), Algorithm: "RS256"})
	require.Error(t, err)

	_, err = NewJWT(Config{Secret: []byte("s"), Algorithm: "none"})
	require.Error(t, err)

	for _, alg := range []string{"", "HS256", "HS384", "HS512"} {
		j, err := NewJWT(Config{Secret: []byte("s"), Algorithm: alg})
		require.NoError(t, err, alg)
		if alg == "" {
			alg = DefaultAlgorithm
		}
		assert.Equal(t, alg, j.Algorithm())
	}
}

func TestJWT_Roundtrip(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newCodec(t, clock)

	for _, kind := range []model.TokenKind{model.KindAccess, model.KindRefresh} {
		in := sampleClaims(clock.t, kind, time.Minute)
		tokenString, err := j.Encode(in)
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(tokenString, "."))

		got, err := j.Decode(tokenString)
		require.NoError(t, err)
		assert.Equal(t, in.SubjectID, got.SubjectID)
		assert.Equal(t, in.TokenID, got.TokenID)
		assert.Equal(t, kind, got.Kind)
		assert.Equal(t, in.IssuedAt.Unix(), got.IssuedAt.Unix())
		assert.Equal(t, in.ExpiresAt.Unix(), got.ExpiresAt.Unix())
	}
}

func TestJWT_Encode_Deterministic(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newCodec(t, clock)
	in := sampleClaims(clock.t, model.KindAccess, time.Minute)

	first, err := j.Encode(in)
	require.NoError(t, err)
	second, err := j.Encode(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestJWT_Encode_RejectsInvalidClaims(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newCodec(t, clock)

	tests := []struct {
		name   string
		mutate func(*model.Claims)
	}{
		{"nil subject", func(c *model.Claims) { c.SubjectID = uuid.Nil }},
		{"empty token id", func(c *model.Claims) { c.TokenID = "" }},
		{"unknown kind", func(c *model.Claims) { c.Kind = "id" }},
		{"expiry before issue", func(c *model.Claims) { c.ExpiresAt = c.IssuedAt.Add(-time.Second) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleClaims(clock.t, model.KindAccess, time.Minute)
			tt.mutate(&c)
			_, err := j.Encode(c)
			require.Error(t, err)
		})
	}
}

func TestJWT_Decode_Expired(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newCodec(t, clock)

	tokenString, err := j.Encode(sampleClaims(clock.t, model.KindAccess, 5*time.Second))
	require.NoError(t, err)

	clock.t = clock.t.Add(6 * time.Second)
	_, err = j.Decode(tokenString)
	require.ErrorIs(t, err, model.ErrTokenExpired)
	assert.NotErrorIs(t, err, model.ErrTokenSignature)

	got, err := j.DecodeAllowExpired(tokenString)
	require.NoError(t, err)
	assert.Equal(t, model.KindAccess, got.Kind)
}

func TestJWT_Decode_SignatureBitFlips(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newCodec(t, clock)

	tokenString, err := j.Encode(sampleClaims(clock.t, model.KindAccess, time.Minute))
	require.NoError(t, err)

	parts := strings.Split(tokenString, ".")
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)

	for i := range sig {
		for bit := 0; bit < 8; bit++ {
			tampered := make([]byte, len(sig))
			copy(tampered, sig)
			tampered[i] ^= 1 << bit

			forged := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(tampered)
			_, err := j.Decode(forged)
			require.ErrorIs(t, err, model.ErrTokenSignature, "byte %d bit %d", i, bit)
		}
	}
}

func TestJWT_Decode_SignatureSegmentCharFlips(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newCodec(t, clock)

	tokenString, err := j.Encode(sampleClaims(clock.t, model.KindRefresh, time.Minute))
	require.NoError(t, err)

	sigStart := strings.LastIndex(tokenString, ".") + 1
	for i := sigStart; i < len(tokenString); i++ {
		for bit := 0; bit < 8; bit++ {
			b := []byte(tokenString)
			b[i] ^= 1 << bit
			_, err := j.Decode(string(b))
			require.ErrorIs(t, err, model.ErrTokenSignature, "position %d bit %d (%q -> %q)", i, bit, tokenString[i], b[i])
		}
	}
}

func TestJWT_Decode_SeparatorInSignature(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newCodec(t, clock)

	tokenString, err := j.Encode(sampleClaims(clock.t, model.KindAccess, time.Minute))
	require.NoError(t, err)

	sigStart := strings.LastIndex(tokenString, ".") + 1
	b := []byte(tokenString)
	b[sigStart+3] = '.'

	_, err = j.Decode(string(b))
	require.ErrorIs(t, err, model.ErrTokenSignature)
	_, err = j.DecodeAllowExpired(string(b))
	require.ErrorIs(t, err, model.ErrTokenSignature)

	_, err = j.Decode("a.b.c.d")
	require.ErrorIs(t, err, model.ErrTokenMalformed)
	_, err = j.Decode("onlyone.segment")
	require.ErrorIs(t, err, model.ErrTokenMalformed)
}

func TestJWT_Decode_ExpiredAndTampered(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newCodec(t, clock)

	tokenString, err := j.Encode(sampleClaims(clock.t, model.KindAccess, time.Second))
	require.NoError(t, err)
	clock.t = clock.t.Add(time.Hour)

	b := []byte(tokenString)
	last := len(b) - 2
	if b[last] == 'A' {
		b[last] = 'B'
	} else {
		b[last] = 'A'
	}

	_, err = j.Decode(string(b))
	require.ErrorIs(t, err, model.ErrTokenSignature)
}

func TestJWT_Decode_ForeignKeyAndAlgorithm(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newCodec(t, clock)
	claims := sampleClaims(clock.t, model.KindAccess, time.Minute)

	other, err := NewJWT(Config{Secret: []byte("other"), Now: clock.Now})
	require.NoError(t, err)
	foreign, err := other.Encode(claims)
	require.NoError(t, err)
	_, err = j.Decode(foreign)
	require.ErrorIs(t, err, model.ErrTokenSignature)

	hs512, err := NewJWT(Config{Secret: []byte("secret"), Algorithm: "HS512", Now: clock.Now})
	require.NoError(t, err)
	wrongAlg, err := hs512.Encode(claims)
	require.NoError(t, err)
	_, err = j.Decode(wrongAlg)
	require.ErrorIs(t, err, model.ErrTokenSignature)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.SubjectID.String(),
			ID:        claims.TokenID,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
		Kind: string(model.KindAccess),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = j.Decode(unsigned)
	require.ErrorIs(t, err, model.ErrTokenSignature)
}

func TestJWT_Decode_Malformed(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	j := newCodec(t, clock)

	signWith := func(c Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
		require.NoError(t, err)
		return s
	}
	registered := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(clock.t),
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Minute)),
	}

	noSubject := registered
	noSubject.Subject = "u1"
	noID := registered
	noID.ID = ""
	noExp := registered
	noExp.ExpiresAt = nil
	noIat := registered
	noIat.IssuedAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", "abc.def"},
		{"four segments", "a.b.c.d"},
		{"header not base64", "***.e30.c2ln"},
		{"payload not json", base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".c2ln"},
		{"subject not uuid", signWith(Claims{RegisteredClaims: noSubject, Kind: "access"})},
		{"missing jti", signWith(Claims{RegisteredClaims: noID, Kind: "access"})},
		{"missing exp", signWith(Claims{RegisteredClaims: noExp, Kind: "access"})},
		{"missing iat", signWith(Claims{RegisteredClaims: noIat, Kind: "access"})},
		{"unknown kind", signWith(Claims{RegisteredClaims: registered, Kind: "id"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := j.Decode(tt.token)
			require.ErrorIs(t, err, model.ErrTokenMalformed)
		})
	}
}
