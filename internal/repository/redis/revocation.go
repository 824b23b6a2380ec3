package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dtroode/diary-server/internal/model"
)

// minTTL keeps records of already-expired tokens alive long enough for the
// revoke-then-check guarantee to hold.
const minTTL = time.Second

// raiseSubjectScript stores the subject watermark only if it moves forward.
// KEYS[1] watermark key; ARGV[1] not_before unix ms; ARGV[2] ttl ms.
const raiseSubjectScript = `
local current = redis.call("GET", KEYS[1])
if current and tonumber(current) >= tonumber(ARGV[1]) then
  local ttl = redis.call("PTTL", KEYS[1])
  if ttl >= 0 and ttl < tonumber(ARGV[2]) then
    redis.call("PEXPIRE", KEYS[1], ARGV[2])
  end
  return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`

var raiseSubjectLua = goredis.NewScript(raiseSubjectScript)

var _ model.RevocationStore = (*RevocationStore)(nil)

// RevocationStore keeps one key per revoked token id plus a sorted-set index
// scored by expiry that PurgeExpired trims.
type RevocationStore struct {
	client goredis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRevocationStore creates a store that namespaces its keys under prefix.
func NewRevocationStore(client goredis.UniversalClient, prefix string) *RevocationStore {
	if prefix == "" {
		prefix = "diary"
	}
	return &RevocationStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RevocationStore) tokenKey(tokenID string) string {
	return s.prefix + ":revoked:" + tokenID
}

func (s *RevocationStore) indexKey() string {
	return s.prefix + ":revoked:index"
}

func (s *RevocationStore) subjectKey(subjectID uuid.UUID) string {
	return s.prefix + ":subject:" + subjectID.String()
}

func (s *RevocationStore) ttlUntil(t time.Time) time.Duration {
	ttl := t.Sub(s.now())
	if ttl < minTTL {
		return minTTL
	}
	return ttl
}

func (s *RevocationStore) Revoke(ctx context.Context, record model.RevocationRecord) (bool, error) {
	var setNX *goredis.BoolCmd
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		setNX = pipe.SetNX(ctx, s.tokenKey(record.TokenID), string(record.Reason), s.ttlUntil(record.ExpiresAt))
		pipe.ZAdd(ctx, s.indexKey(), goredis.Z{
			Score:  float64(record.ExpiresAt.UnixMilli()),
			Member: record.TokenID,
		})
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: failed to revoke token: %w", model.ErrStoreUnavailable, err)
	}
	return setNX.Val(), nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.tokenKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: failed to check revocation: %w", model.ErrStoreUnavailable, err)
	}
	return n == 1, nil
}

// PurgeExpired trims index entries whose token expired before now. The token
// keys themselves carry a TTL and are dropped by Redis.
func (s *RevocationStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	maxScore := "(" + strconv.FormatInt(now.UnixMilli(), 10)

	expired, err := s.client.ZRangeByScore(ctx, s.indexKey(), &goredis.ZRangeBy{Min: "-inf", Max: maxScore}).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to list expired revocations: %w", model.ErrStoreUnavailable, err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(expired))
	members := make([]interface{}, 0, len(expired))
	for _, id := range expired {
		keys = append(keys, s.tokenKey(id))
		members = append(members, id)
	}

	var removed *goredis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		removed = pipe.ZRem(ctx, s.indexKey(), members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: failed to purge revocations: %w", model.ErrStoreUnavailable, err)
	}
	return removed.Val(), nil
}

func (s *RevocationStore) RevokeSubject(ctx context.Context, revocation model.SubjectRevocation) error {
	err := raiseSubjectLua.Run(ctx, s.client,
		[]string{s.subjectKey(revocation.SubjectID)},
		revocation.NotBefore.UnixMilli(),
		s.ttlUntil(revocation.ExpiresAt).Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("%w: failed to revoke subject: %w", model.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RevocationStore) SubjectNotBefore(ctx context.Context, subjectID uuid.UUID) (time.Time, bool, error) {
	ms, err := s.client.Get(ctx, s.subjectKey(subjectID)).Int64()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("%w: failed to read subject revocation: %w", model.ErrStoreUnavailable, err)
	}
	return time.UnixMilli(ms), true, nil
}
