package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/diary-server/internal/config"
	"github.com/dtroode/diary-server/internal/model"
	"github.com/dtroode/diary-server/internal/password"
	"github.com/dtroode/diary-server/internal/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func stubConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	orig := loadConfig
	loadConfig = func() (*config.Config, error) { return cfg, nil }
	t.Cleanup(func() { loadConfig = orig })
}

func stubPassword(t *testing.T, pw string, err error) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), err }
	t.Cleanup(func() { readPassword = orig })
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), nil, &stdout, &stderr)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), "usage: sessionctl")

	stderr.Reset()
	err = run(context.Background(), []string{"bogus"}, &stdout, &stderr)
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), `unknown command "bogus"`)

	err = run(context.Background(), []string{"help"}, &stdout, &stderr)
	assert.NoError(t, err)
	assert.Contains(t, stdout.String(), "commands:")
}

func TestHash(t *testing.T) {
	stubPassword(t, "correct horse", nil)
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"hash", "-time", "1", "-mem", "64", "-par", "1"}, &stdout, &stderr)
	require.NoError(t, err)

	hash := strings.TrimSpace(stdout.String())
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"), hash)

	ok, err := password.NewArgon2(password.Params{}).Verify("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHash_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	stubPassword(t, "", nil)
	err := run(context.Background(), []string{"hash", "-mem", "64", "-par", "1"}, &stdout, &stderr)
	assert.EqualError(t, err, "password must not be empty")

	stubPassword(t, "", errors.New("not a terminal"))
	err = run(context.Background(), []string{"hash"}, &stdout, &stderr)
	assert.ErrorContains(t, err, "not a terminal")

	err = run(context.Background(), []string{"hash", "-par", "300"}, &stdout, &stderr)
	assert.ErrorContains(t, err, "par must be at most 255")

	err = run(context.Background(), []string{"hash", "-nope"}, &stdout, &stderr)
	assert.ErrorIs(t, err, errUsage)
	assert.Empty(t, stdout.String())
}

func TestInspect(t *testing.T) {
	stubConfig(t, &config.Config{JWT: config.JWT{Secret: testSecret, Algorithm: "HS256"}})

	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	codec, err := token.NewJWT(token.Config{Secret: []byte(testSecret), Algorithm: "HS256"})
	require.NoError(t, err)

	subject := uuid.New()
	tok, err := codec.Encode(model.Claims{
		SubjectID: subject,
		TokenID:   "jti-inspect",
		Kind:      model.KindRefresh,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(time.Hour),
	})
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	err = run(context.Background(), []string{"inspect", tok}, &stdout, &stderr)
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "subject:    "+subject.String())
	assert.Contains(t, out, "token_id:   jti-inspect")
	assert.Contains(t, out, "kind:       refresh")
	assert.Contains(t, out, "issued_at:  2026-01-02T03:04:05Z")
	assert.Contains(t, out, "expires_at: 2026-01-02T04:04:05Z")
	assert.Contains(t, out, "expired:    true")
}

func TestInspect_Rejected(t *testing.T) {
	stubConfig(t, &config.Config{JWT: config.JWT{Secret: testSecret, Algorithm: "HS256"}})
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"inspect", "not-a-token"}, &stdout, &stderr)
	assert.ErrorIs(t, err, model.ErrTokenMalformed)

	err = run(context.Background(), []string{"inspect"}, &stdout, &stderr)
	assert.ErrorIs(t, err, errUsage)
}

func TestPurge(t *testing.T) {
	stubConfig(t, &config.Config{
		RevocationBackend: config.BackendMemory,
		PurgeInterval:     time.Minute,
	})
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"purge"}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "purged 0 expired revocation records\n", stdout.String())
}

func TestPurge_ConfigError(t *testing.T) {
	orig := loadConfig
	loadConfig = func() (*config.Config, error) { return nil, errors.New("invalid config: JWT_SECRET") }
	t.Cleanup(func() { loadConfig = orig })

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"purge"}, &stdout, &stderr)
	assert.ErrorContains(t, err, "JWT_SECRET")
}
