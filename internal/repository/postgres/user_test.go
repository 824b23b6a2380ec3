package postgres

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/diary-server/internal/model"
)

// fakeRow scans fixed values or returns err.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

// fakeQuerier records the last statement and answers with canned results.
type fakeQuerier struct {
	row     fakeRow
	tag     pgconn.CommandTag
	execErr error

	lastSQL  string
	lastArgs []any
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.lastSQL, q.lastArgs = sql, args
	return q.row
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.lastSQL, q.lastArgs = sql, args
	return q.tag, q.execErr
}

func TestNewUserRepository(t *testing.T) {
	db := &Connection{}
	repo := NewUserRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	user := model.User{ID: uuid.New(), Email: "a@b.c", PasswordHash: "h", CreatedAt: now, UpdatedAt: now}

	q := &fakeQuerier{row: fakeRow{values: []any{user.ID, user.Email, user.PasswordHash, now, now, (*time.Time)(nil)}}}
	saved, err := NewUserRepository(q).Create(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, user, saved)
	assert.Equal(t, []any{user.ID, user.Email, user.PasswordHash, now, now}, q.lastArgs)

	q = &fakeQuerier{row: fakeRow{err: &pgconn.PgError{Code: uniqueViolation}}}
	_, err = NewUserRepository(q).Create(ctx, user)
	require.ErrorIs(t, err, model.ErrEmailTaken)

	q = &fakeQuerier{row: fakeRow{err: assert.AnError}}
	_, err = NewUserRepository(q).Create(ctx, user)
	require.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, model.ErrEmailTaken)
}

func TestUserRepository_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	q := &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}
	repo := NewUserRepository(q)

	_, err := repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, model.ErrNotFound)
	assert.Contains(t, q.lastSQL, "deleted_at IS NULL")

	_, err = repo.GetByEmail(ctx, "a@b.c")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestUserRepository_UpdateEmail(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	q := &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 1")}
	require.NoError(t, NewUserRepository(q).UpdateEmail(ctx, id, "new@b.c"))
	assert.Equal(t, []any{id, "new@b.c"}, q.lastArgs)

	q = &fakeQuerier{execErr: &pgconn.PgError{Code: uniqueViolation}}
	require.ErrorIs(t, NewUserRepository(q).UpdateEmail(ctx, id, "taken@b.c"), model.ErrEmailTaken)

	q = &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 0")}
	require.ErrorIs(t, NewUserRepository(q).UpdateEmail(ctx, id, "new@b.c"), model.ErrNotFound)
}

func TestUserRepository_NoRowsAffected(t *testing.T) {
	ctx := context.Background()
	q := &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 0")}
	repo := NewUserRepository(q)

	require.ErrorIs(t, repo.SoftDelete(ctx, uuid.New()), model.ErrNotFound)
	require.ErrorIs(t, repo.UpdatePassword(ctx, uuid.New(), "h"), model.ErrNotFound)

	q.tag = pgconn.NewCommandTag("UPDATE 1")
	require.NoError(t, repo.SoftDelete(ctx, uuid.New()))

	q.execErr = assert.AnError
	require.ErrorIs(t, repo.UpdatePassword(ctx, uuid.New(), "h"), assert.AnError)
}
