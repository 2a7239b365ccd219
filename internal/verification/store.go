// Package verification issues and checks single-use SMS codes.
package verification

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/bizlab-kr/leadbot/internal/models"
)

// Store keeps one record per normalized phone number.
type Store interface {
	// Put stores rec, replacing any record for the same phone.
	Put(ctx context.Context, rec models.VerificationRecord) error
	// Consume atomically marks the record consumed when it is pending, unexpired at now
	// and holds code. It reports whether that happened.
	Consume(ctx context.Context, phone, code string, now time.Time) (bool, error)
}

// MemoryStore is a Store for single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]models.VerificationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.VerificationRecord)}
}

func (s *MemoryStore) Put(_ context.Context, rec models.VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Phone] = rec
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, phone, code string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[phone]
	if !ok || rec.Consumed {
		return false, nil
	}
	if rec.Expired(now) {
		delete(s.records, phone)
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		return false, nil
	}
	rec.Consumed = true
	s.records[phone] = rec
	return true, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
