package store

import (
	"context"
	"errors"
	"testing"

	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuestion(step string, order int) models.Question {
	return models.Question{
		Step:       step,
		Type:       models.QuestionTypeSelect,
		Question:   step + "?",
		Options:    []string{"a", "b"},
		Validation: &models.Validation{Required: true},
		OrderIndex: order,
		IsActive:   true,
	}
}

// questionStoreContract runs the behavior every QuestionStore must share.
func questionStoreContract(t *testing.T, s QuestionStore) {
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, sampleQuestion("b", 2)))
	require.NoError(t, s.Insert(ctx, sampleQuestion("a", 1)))
	require.NoError(t, s.Insert(ctx, sampleQuestion("c", 2)))

	err := s.Insert(ctx, sampleQuestion("a", 9))
	assert.ErrorIs(t, err, models.ErrValidation, "duplicate step")

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].Step, all[1].Step, all[2].Step})

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Options)
	require.NotNil(t, got.Validation)
	assert.True(t, got.Validation.Required)

	_, err = s.Get(ctx, "zzz")
	assert.ErrorIs(t, err, models.ErrNotFound)

	got.Question = "changed"
	require.NoError(t, s.Replace(ctx, *got))
	got, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Question)

	assert.ErrorIs(t, s.Replace(ctx, sampleQuestion("zzz", 1)), models.ErrNotFound)

	require.NoError(t, s.SetOrder(ctx, map[string]int{"a": 3, "b": 1, "c": 2}))
	all, err = s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, []string{all[0].Step, all[1].Step, all[2].Step})

	require.NoError(t, s.Delete(ctx, "c"))
	assert.ErrorIs(t, s.Delete(ctx, "c"), models.ErrNotFound)

	all, err = s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryQuestionStore(t *testing.T) {
	questionStoreContract(t, NewMemoryQuestionStore())
}

func TestMemoryQuestionStore_Isolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryQuestionStore(sampleQuestion("a", 1))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	got.Options[0] = "mutated"
	got.Validation.Required = false

	again, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", again.Options[0])
	assert.True(t, again.Validation.Required)
}

func TestMemoryQuestionStore_SetOrderUnknown(t *testing.T) {
	s := NewMemoryQuestionStore(sampleQuestion("a", 1))
	err := s.SetOrder(context.Background(), map[string]int{"a": 2, "ghost": 1})
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, _ := s.Get(context.Background(), "a")
	assert.Equal(t, 1, got.OrderIndex, "failed reorder leaves records untouched")
}

func TestMemoryQuestionStore_Atomically(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryQuestionStore(sampleQuestion("a", 1))
	boom := errors.New("boom")

	err := s.Atomically(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Insert(ctx, sampleQuestion("b", 1)))
		require.NoError(t, s.SetOrder(ctx, map[string]int{"a": 2}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "failed group is rolled back")
	assert.Equal(t, 1, all[0].OrderIndex)

	err = s.Atomically(ctx, func(ctx context.Context) error {
		return s.Insert(ctx, sampleQuestion("b", 2))
	})
	require.NoError(t, err)
	all, err = s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMongoQuestionStore(t *testing.T) {
	db := testutil.Mongo(t)
	s := NewMongoQuestionStore(db, "questions", nil)
	require.NoError(t, s.EnsureIndexes(context.Background()))

	questionStoreContract(t, s)

	ctx := context.Background()
	err := s.Atomically(ctx, func(ctx context.Context) error {
		return s.Insert(ctx, sampleQuestion("d", 3))
	})
	require.NoError(t, err)
	_, err = s.Get(ctx, "d")
	assert.NoError(t, err)

	boom := errors.New("boom")
	assert.ErrorIs(t, s.Atomically(ctx, func(context.Context) error { return boom }), boom)
}
