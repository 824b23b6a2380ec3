// Package memory provides in-process user and revocation stores for development
// and tests. Records do not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/diary-server/internal/model"
)

var _ model.RevocationStore = (*RevocationStore)(nil)

// RevocationStore keeps revoked token ids in a mutex-guarded map.
type RevocationStore struct {
	mu       sync.RWMutex
	revoked  map[string]model.RevocationRecord
	subjects map[uuid.UUID]model.SubjectRevocation
}

// NewRevocationStore creates an empty store.
func NewRevocationStore() *RevocationStore {
	return &RevocationStore{
		revoked:  make(map[string]model.RevocationRecord),
		subjects: make(map[uuid.UUID]model.SubjectRevocation),
	}
}

func (s *RevocationStore) Revoke(_ context.Context, record model.RevocationRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.revoked[record.TokenID]; exists {
		return false, nil
	}
	s.revoked[record.TokenID] = record
	return true, nil
}

func (s *RevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.revoked[tokenID]
	return exists, nil
}

func (s *RevocationStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for id, record := range s.revoked {
		if record.ExpiresAt.Before(now) {
			delete(s.revoked, id)
			purged++
		}
	}
	for id, revocation := range s.subjects {
		if revocation.ExpiresAt.Before(now) {
			delete(s.subjects, id)
			purged++
		}
	}
	return purged, nil
}

func (s *RevocationStore) RevokeSubject(_ context.Context, revocation model.SubjectRevocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.subjects[revocation.SubjectID]
	if exists && !revocation.NotBefore.After(current.NotBefore) {
		if revocation.ExpiresAt.After(current.ExpiresAt) {
			current.ExpiresAt = revocation.ExpiresAt
			s.subjects[revocation.SubjectID] = current
		}
		return nil
	}
	if exists && current.ExpiresAt.After(revocation.ExpiresAt) {
		revocation.ExpiresAt = current.ExpiresAt
	}
	s.subjects[revocation.SubjectID] = revocation
	return nil
}

func (s *RevocationStore) SubjectNotBefore(_ context.Context, subjectID uuid.UUID) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	revocation, exists := s.subjects[subjectID]
	if !exists {
		return time.Time{}, false, nil
	}
	return revocation.NotBefore, true, nil
}

// Len returns the number of revoked token ids currently held.
func (s *RevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.revoked)
}
