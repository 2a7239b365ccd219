package store

import (
	"context"
	"sort"
	"sync"

	"github.com/bizlab-kr/leadbot/internal/models"
)

// LeadStore persists captured leads.
type LeadStore interface {
	Save(ctx context.Context, lead *models.Lead) error
	Get(ctx context.Context, id string) (*models.Lead, error)
	// List returns up to limit leads, newest first.
	List(ctx context.Context, limit int) ([]models.Lead, error)
}

const defaultListLimit = 50

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultListLimit
	}
	return limit
}

func cloneLead(l models.Lead) models.Lead {
	l.Fields = l.Fields.Clone()
	if l.VerifiedAt != nil {
		t := *l.VerifiedAt
		l.VerifiedAt = &t
	}
	return l
}

// MemoryLeadStore keeps leads in process memory.
type MemoryLeadStore struct {
	mu    sync.RWMutex
	leads map[string]models.Lead
}

func NewMemoryLeadStore() *MemoryLeadStore {
	return &MemoryLeadStore{leads: make(map[string]models.Lead)}
}

func (s *MemoryLeadStore) Save(_ context.Context, lead *models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[lead.ID] = cloneLead(*lead)
	return nil
}

func (s *MemoryLeadStore) Get(_ context.Context, id string) (*models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.leads[id]
	if !ok {
		return nil, models.NewNotFoundError("lead", id)
	}
	l = cloneLead(l)
	return &l, nil
}

func (s *MemoryLeadStore) List(_ context.Context, limit int) ([]models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		out = append(out, cloneLead(l))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
