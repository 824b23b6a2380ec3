package password

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast
func testHasher() *Argon2 {
	return NewArgon2(Params{Time: 1, MemKiB: 1024, Par: 1})
}

func TestNewArgon2_Defaults(t *testing.T) {
	a := NewArgon2(Params{})
	assert.Equal(t, DefaultTime, a.params.Time)
	assert.Equal(t, DefaultMemKiB, a.params.MemKiB)
	assert.Equal(t, DefaultPar, a.params.Par)
}

func TestArgon2_HashVerify(t *testing.T) {
	a := testHasher()

	for _, secret := range []string{"", "a", "correct horse battery staple", "пароль-🔑", strings.Repeat("x", 1024)} {
		h, err := a.Hash(secret)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=1024,t=1,p=1$"))

		ok, err := a.Verify(secret, h)
		require.NoError(t, err)
		assert.True(t, ok, "secret %q", secret)

		ok, err = a.Verify(secret+"!", h)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestArgon2_Hash_SaltedPerCall(t *testing.T) {
	a := testHasher()

	first, err := a.Hash("secret")
	require.NoError(t, err)
	second, err := a.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	for _, h := range []string{first, second} {
		ok, err := a.Verify("secret", h)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestArgon2_Verify_UsesStoredParams(t *testing.T) {
	h, err := NewArgon2(Params{Time: 2, MemKiB: 2048, Par: 1}).Hash("secret")
	require.NoError(t, err)

	ok, err := testHasher().Verify("secret", h)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgon2_Verify_InvalidHash(t *testing.T) {
	a := testHasher()
	valid, err := a.Hash("secret")
	require.NoError(t, err)
	parts := strings.Split(valid, "$")

	tests := []string{
		"",
		"plaintext",
		"$2b$12$abcdefghijklmnopqrstuv",
		"$argon2i$v=19$m=1024,t=1,p=1$" + parts[4] + "$" + parts[5],
		"$argon2id$v=16$m=1024,t=1,p=1$" + parts[4] + "$" + parts[5],
		"$argon2id$v=19$m=x,t=1,p=1$" + parts[4] + "$" + parts[5],
		"$argon2id$v=19$m=0,t=1,p=1$" + parts[4] + "$" + parts[5],
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$" + parts[5],
		"$argon2id$v=19$m=1024,t=1,p=1$" + parts[4] + "$",
	}

	for _, h := range tests {
		ok, err := a.Verify("secret", h)
		assert.False(t, ok)
		assert.True(t, errors.Is(err, errInvalidHash), "hash %q: %v", h, err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestArgon2_Hash_RandError(t *testing.T) {
	a := testHasher()
	a.rand = failingReader{}

	_, err := a.Hash("secret")
	require.Error(t, err)
}
