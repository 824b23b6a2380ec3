// Package password hashes and verifies account passwords with argon2id.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/dtroode/diary-server/internal/model"
)

const (
	algorithmID = "argon2id"
	saltLength  = 16
	keyLength   = 32
)

// Defaults follow the argon2id recommendation for interactive logins.
const (
	DefaultTime   uint32 = 1
	DefaultMemKiB uint32 = 64 * 1024
	DefaultPar    uint8  = 2
)

var errInvalidHash = errors.New("invalid password hash format")

// Params are the argon2id cost parameters used for new hashes.
type Params struct {
	Time   uint32
	MemKiB uint32
	Par    uint8
}

// Argon2 implements model.PasswordHasher.
type Argon2 struct {
	params Params
	rand   io.Reader
}

var _ model.PasswordHasher = (*Argon2)(nil)

// NewArgon2 creates a hasher. Zero parameters fall back to the defaults.
func NewArgon2(params Params) *Argon2 {
	if params.Time == 0 {
		params.Time = DefaultTime
	}
	if params.MemKiB == 0 {
		params.MemKiB = DefaultMemKiB
	}
	if params.Par == 0 {
		params.Par = DefaultPar
	}
	return &Argon2{params: params, rand: rand.Reader}
}

// Hash derives a PHC-encoded argon2id hash with a fresh random salt, so two
// calls with the same password never return the same string.
func (a *Argon2) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(a.rand, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, a.params.Time, a.params.MemKiB, a.params.Par, keyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		a.params.MemKiB,
		a.params.Time,
		a.params.Par,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the hash with the stored parameters and compares in
// constant time. A malformed hash is an error, a wrong password is not.
func (a *Argon2) Verify(password, encodedHash string) (bool, error) {
	p, salt, key, err := decode(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, p.Time, p.MemKiB, p.Par, uint32(len(key)))

	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

func decode(encodedHash string) (Params, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return Params{}, nil, nil, errInvalidHash
	}

	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return Params{}, nil, nil, fmt.Errorf("%w: unsupported version %q", errInvalidHash, parts[2])
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemKiB, &p.Time, &p.Par); err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: %w", errInvalidHash, err)
	}
	if p.MemKiB == 0 || p.Time == 0 || p.Par == 0 {
		return Params{}, nil, nil, fmt.Errorf("%w: zero cost parameter", errInvalidHash)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return Params{}, nil, nil, fmt.Errorf("%w: bad salt", errInvalidHash)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Params{}, nil, nil, fmt.Errorf("%w: bad key", errInvalidHash)
	}

	return p, salt, key, nil
}
