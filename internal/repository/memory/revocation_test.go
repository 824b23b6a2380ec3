package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/diary-server/internal/model"
)

func TestRevocationStore_RevokeIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewRevocationStore()
	record := model.RevocationRecord{TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Hour), Reason: model.ReasonLogout}

	created, err := s.Revoke(ctx, record)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Revoke(ctx, record)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, s.Len())

	revoked, err := s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationStore_ConcurrentRevokeSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewRevocationStore()

	const workers = 32
	var winners atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			created, err := s.Revoke(ctx, model.RevocationRecord{TokenID: "shared", ExpiresAt: time.Now().Add(time.Hour)})
			assert.NoError(t, err)
			if created {
				winners.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestRevocationStore_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	s := NewRevocationStore()
	now := time.Now()

	_, err := s.Revoke(ctx, model.RevocationRecord{TokenID: "old", ExpiresAt: now.Add(-time.Minute)})
	require.NoError(t, err)
	_, err = s.Revoke(ctx, model.RevocationRecord{TokenID: "live", ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)
	_, err = s.Revoke(ctx, model.RevocationRecord{TokenID: "edge", ExpiresAt: now})
	require.NoError(t, err)

	purged, err := s.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	for id, want := range map[string]bool{"old": false, "live": true, "edge": true} {
		got, err := s.IsRevoked(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got, id)
	}
}

func TestRevocationStore_SubjectWatermarkMonotonic(t *testing.T) {
	ctx := context.Background()
	s := NewRevocationStore()
	subject := uuid.New()
	now := time.Now().Truncate(time.Second)

	_, found, err := s.SubjectNotBefore(ctx, subject)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.RevokeSubject(ctx, model.SubjectRevocation{SubjectID: subject, NotBefore: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, s.RevokeSubject(ctx, model.SubjectRevocation{SubjectID: subject, NotBefore: now.Add(-time.Minute), ExpiresAt: now.Add(2 * time.Hour)}))

	notBefore, found, err := s.SubjectNotBefore(ctx, subject)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, now, notBefore)

	purged, err := s.PurgeExpired(ctx, now.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(0), purged)

	purged, err = s.PurgeExpired(ctx, now.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}
