// Package store persists questions, leads and chat sessions.
package store

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/bizlab-kr/leadbot/internal/models"
)

// QuestionStore persists question records. Ordering policy belongs to the caller.
type QuestionStore interface {
	// All returns every question sorted by order_index, then step.
	All(ctx context.Context) ([]models.Question, error)
	Get(ctx context.Context, step string) (*models.Question, error)
	Insert(ctx context.Context, q models.Question) error
	Replace(ctx context.Context, q models.Question) error
	Delete(ctx context.Context, step string) error
	// SetOrder writes order_index for the given steps.
	SetOrder(ctx context.Context, order map[string]int) error
}

// AtomicQuestionStore is implemented by stores that can apply a group of writes all or
// nothing. Writes inside fn must use the ctx it receives.
type AtomicQuestionStore interface {
	QuestionStore
	Atomically(ctx context.Context, fn func(ctx context.Context) error) error
}

func sortQuestions(qs []models.Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		if qs[i].OrderIndex != qs[j].OrderIndex {
			return qs[i].OrderIndex < qs[j].OrderIndex
		}
		return qs[i].Step < qs[j].Step
	})
}

func cloneQuestion(q models.Question) models.Question {
	q.Options = append([]string(nil), q.Options...)
	q.Branches = append([]models.Branch(nil), q.Branches...)
	if q.Validation != nil {
		v := *q.Validation
		q.Validation = &v
	}
	return q
}

// MemoryQuestionStore keeps questions in process memory.
type MemoryQuestionStore struct {
	mu        sync.RWMutex
	questions map[string]models.Question
}

func NewMemoryQuestionStore(seed ...models.Question) *MemoryQuestionStore {
	s := &MemoryQuestionStore{questions: make(map[string]models.Question, len(seed))}
	for _, q := range seed {
		s.questions[q.Step] = cloneQuestion(q)
	}
	return s
}

func (s *MemoryQuestionStore) All(_ context.Context) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Question, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, cloneQuestion(q))
	}
	sortQuestions(out)
	return out, nil
}

func (s *MemoryQuestionStore) Get(_ context.Context, step string) (*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[step]
	if !ok {
		return nil, models.NewNotFoundError("question", step)
	}
	q = cloneQuestion(q)
	return &q, nil
}

func (s *MemoryQuestionStore) Insert(_ context.Context, q models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.Step]; ok {
		return models.NewValidationError("step", "%q already exists", q.Step)
	}
	s.questions[q.Step] = cloneQuestion(q)
	return nil
}

func (s *MemoryQuestionStore) Replace(_ context.Context, q models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.Step]; !ok {
		return models.NewNotFoundError("question", q.Step)
	}
	s.questions[q.Step] = cloneQuestion(q)
	return nil
}

func (s *MemoryQuestionStore) Delete(_ context.Context, step string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[step]; !ok {
		return models.NewNotFoundError("question", step)
	}
	delete(s.questions, step)
	return nil
}

func (s *MemoryQuestionStore) SetOrder(_ context.Context, order map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for step := range order {
		if _, ok := s.questions[step]; !ok {
			return models.NewNotFoundError("question", step)
		}
	}
	for step, idx := range order {
		q := s.questions[step]
		q.OrderIndex = idx
		s.questions[step] = q
	}
	return nil
}

// Atomically restores the previous contents when fn fails. Writers must be serialized by
// the caller.
func (s *MemoryQuestionStore) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.RLock()
	snapshot := maps.Clone(s.questions)
	s.mu.RUnlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.questions = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}
