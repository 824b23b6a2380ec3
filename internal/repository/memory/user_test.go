package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/diary-server/internal/model"
)

func TestUserStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	user := model.User{ID: uuid.New(), Email: "a@b.c", PasswordHash: "h1", CreatedAt: time.Now()}
	created, err := s.Create(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, user, created)

	_, err = s.Create(ctx, model.User{ID: uuid.New(), Email: "a@b.c"})
	require.ErrorIs(t, err, model.ErrEmailTaken)

	got, err := s.GetByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	require.NoError(t, s.UpdatePassword(ctx, user.ID, "h2"))
	got, err = s.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "h2", got.PasswordHash)

	require.NoError(t, s.SoftDelete(ctx, user.ID))
	_, err = s.GetByID(ctx, user.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.GetByEmail(ctx, "a@b.c")
	require.ErrorIs(t, err, model.ErrNotFound)
	require.ErrorIs(t, s.SoftDelete(ctx, user.ID), model.ErrNotFound)
	require.ErrorIs(t, s.UpdatePassword(ctx, user.ID, "h3"), model.ErrNotFound)

	// the email is free again after deletion
	_, err = s.Create(ctx, model.User{ID: uuid.New(), Email: "a@b.c"})
	require.NoError(t, err)
}

func TestUserStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	_, err := s.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.GetByEmail(ctx, "nobody@b.c")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserStore_UpdateEmail(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()

	alice, err := s.Create(ctx, model.User{ID: uuid.New(), Email: "alice@b.c"})
	require.NoError(t, err)
	bob, err := s.Create(ctx, model.User{ID: uuid.New(), Email: "bob@b.c"})
	require.NoError(t, err)

	require.ErrorIs(t, s.UpdateEmail(ctx, alice.ID, "bob@b.c"), model.ErrEmailTaken)

	require.NoError(t, s.UpdateEmail(ctx, alice.ID, "alice2@b.c"))
	got, err := s.GetByEmail(ctx, "alice2@b.c")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	_, err = s.GetByEmail(ctx, "alice@b.c")
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.SoftDelete(ctx, bob.ID))
	require.NoError(t, s.UpdateEmail(ctx, alice.ID, "bob@b.c"))
	require.ErrorIs(t, s.UpdateEmail(ctx, bob.ID, "x@b.c"), model.ErrNotFound)
	require.ErrorIs(t, s.UpdateEmail(ctx, uuid.New(), "y@b.c"), model.ErrNotFound)
}
