package services

import (
	"context"
	"errors"
	"testing"

	"github.com/bizlab-kr/leadbot/internal/flow"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textQuestion(step string, order int) models.Question {
	return models.Question{Step: step, Type: models.QuestionTypeText, Question: step + "?", OrderIndex: order, IsActive: true}
}

func newTestRepository(t *testing.T, seed ...models.Question) *QuestionRepository {
	t.Helper()
	repo := NewQuestionRepository(store.NewMemoryQuestionStore(), flow.Options{}, nil)
	for _, q := range seed {
		_, err := repo.Create(context.Background(), q)
		require.NoError(t, err)
	}
	return repo
}

// assertDense checks every question is numbered 1..n, active ones first.
func assertDense(t *testing.T, repo *QuestionRepository, wantActive ...string) {
	t.Helper()
	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	for i, q := range all {
		assert.Equal(t, i+1, q.OrderIndex, "question %q", q.Step)
	}
	active, err := repo.List(context.Background())
	require.NoError(t, err)
	steps := make([]string, 0, len(active))
	for _, q := range active {
		steps = append(steps, q.Step)
	}
	assert.Equal(t, wantActive, steps)
}

func TestQuestionRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("appends with zero order", func(t *testing.T) {
		repo := newTestRepository(t, textQuestion("a", 0), textQuestion("b", 0), textQuestion("c", 0))
		assertDense(t, repo, "a", "b", "c")
	})

	t.Run("sparse indices are compacted", func(t *testing.T) {
		repo := newTestRepository(t, textQuestion("a", 10), textQuestion("b", 20))
		assertDense(t, repo, "a", "b")
	})

	t.Run("collision shifts later questions", func(t *testing.T) {
		repo := newTestRepository(t, textQuestion("a", 1), textQuestion("b", 2), textQuestion("c", 3))
		created, err := repo.Create(ctx, textQuestion("x", 2))
		require.NoError(t, err)
		assert.Equal(t, 2, created.OrderIndex)
		assert.False(t, created.CreatedAt.IsZero())
		assertDense(t, repo, "a", "x", "b", "c")
	})

	t.Run("inactive questions sort after active ones", func(t *testing.T) {
		hidden := textQuestion("hidden", 1)
		hidden.IsActive = false
		repo := newTestRepository(t, textQuestion("a", 1), hidden, textQuestion("b", 1))
		assertDense(t, repo, "b", "a")

		all, err := repo.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, "hidden", all[2].Step)
	})

	t.Run("duplicate step", func(t *testing.T) {
		repo := newTestRepository(t, textQuestion("a", 1))
		_, err := repo.Create(ctx, textQuestion("a", 2))
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("select without options", func(t *testing.T) {
		repo := newTestRepository(t)
		q := textQuestion("stage", 1)
		q.Type = models.QuestionTypeSelect
		_, err := repo.Create(ctx, q)
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("single phone collector", func(t *testing.T) {
		phone := textQuestion("phone", 1)
		phone.Type = models.QuestionTypePhone
		repo := newTestRepository(t, phone)

		mobile := textQuestion("mobile", 2)
		mobile.Type = models.QuestionTypePhone
		mobile.Role = models.RolePhoneCollector
		_, err := repo.Create(ctx, mobile)
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("phone collector must collect phones", func(t *testing.T) {
		repo := newTestRepository(t)
		_, err := repo.Create(ctx, textQuestion("phone", 1))
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestQuestionRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown step", func(t *testing.T) {
		repo := newTestRepository(t)
		text := "x"
		_, err := repo.Update(ctx, "ghost", models.QuestionUpdate{Question: &text})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("fields change in place", func(t *testing.T) {
		repo := newTestRepository(t, textQuestion("a", 1), textQuestion("b", 2))
		text := "이름이 무엇인가요?"
		updated, err := repo.Update(ctx, "a", models.QuestionUpdate{Question: &text})
		require.NoError(t, err)
		assert.Equal(t, text, updated.Question)
		assert.Equal(t, 1, updated.OrderIndex)
		assertDense(t, repo, "a", "b")
	})

	t.Run("order change moves the question", func(t *testing.T) {
		repo := newTestRepository(t, textQuestion("a", 1), textQuestion("b", 2), textQuestion("c", 3))
		to := 1
		_, err := repo.Update(ctx, "c", models.QuestionUpdate{OrderIndex: &to})
		require.NoError(t, err)
		assertDense(t, repo, "c", "a", "b")
	})

	t.Run("deactivation closes the gap", func(t *testing.T) {
		repo := newTestRepository(t, textQuestion("a", 1), textQuestion("b", 2), textQuestion("c", 3))
		off := false
		_, err := repo.Update(ctx, "b", models.QuestionUpdate{IsActive: &off})
		require.NoError(t, err)
		assertDense(t, repo, "a", "c")

		on := true
		_, err = repo.Update(ctx, "b", models.QuestionUpdate{IsActive: &on})
		require.NoError(t, err)
		assertDense(t, repo, "a", "c", "b")
	})

	t.Run("invalid update is rejected", func(t *testing.T) {
		repo := newTestRepository(t, textQuestion("a", 1))
		typ := models.QuestionTypeQuickReply
		_, err := repo.Update(ctx, "a", models.QuestionUpdate{Type: &typ})
		assert.ErrorIs(t, err, models.ErrValidation)

		got, err := repo.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, models.QuestionTypeText, got.Type)
	})
}

func TestQuestionRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, textQuestion("a", 1), textQuestion("b", 2), textQuestion("c", 3), textQuestion("d", 4))

	require.NoError(t, repo.Delete(ctx, "b"))
	assertDense(t, repo, "a", "c", "d")

	require.NoError(t, repo.Delete(ctx, "a"))
	assertDense(t, repo, "c", "d")

	assert.ErrorIs(t, repo.Delete(ctx, "a"), models.ErrNotFound)
}

func TestQuestionRepository_Reorder(t *testing.T) {
	ctx := context.Background()
	hidden := textQuestion("hidden", 0)
	hidden.IsActive = false

	tests := []struct {
		name    string
		steps   []string
		wantErr bool
	}{
		{"reverse", []string{"c", "b", "a"}, false},
		{"missing step", []string{"c", "b"}, true},
		{"unknown step", []string{"c", "b", "z"}, true},
		{"duplicate step", []string{"c", "c", "a"}, true},
		{"inactive step", []string{"c", "b", "hidden"}, true},
		{"extra step", []string{"c", "b", "a", "hidden"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepository(t, textQuestion("a", 1), textQuestion("b", 2), textQuestion("c", 3), hidden)

			got, err := repo.Reorder(ctx, tt.steps)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrValidation)
				assertDense(t, repo, "a", "b", "c")
				return
			}
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, 1, got[0].OrderIndex)
			assertDense(t, repo, tt.steps...)
		})
	}
}

func TestQuestionRepository_FlowCache(t *testing.T) {
	ctx := context.Background()
	phone := textQuestion("phone", 2)
	phone.Type = models.QuestionTypePhone
	repo := newTestRepository(t, textQuestion("name", 1), phone)

	g1, err := repo.Flow(ctx)
	require.NoError(t, err)
	g2, err := repo.Flow(ctx)
	require.NoError(t, err)
	assert.Same(t, g1, g2, "graph is cached")
	assert.Equal(t, []string{"name", "phone", models.StepPhoneVerification, models.StepComplete}, g1.Order())

	_, err = repo.Create(ctx, textQuestion("budget", 0))
	require.NoError(t, err)

	g3, err := repo.Flow(ctx)
	require.NoError(t, err)
	assert.NotSame(t, g1, g3, "mutations invalidate the cache")
	assert.Equal(t, []string{"name", "phone", models.StepPhoneVerification, "budget", models.StepComplete}, g3.Order())

	require.NoError(t, repo.Delete(ctx, "budget"))
	g4, err := repo.Flow(ctx)
	require.NoError(t, err)
	assert.Equal(t, g1.Order(), g4.Order())
}

// reorderFailingStore accepts record writes but fails every renumbering.
type reorderFailingStore struct {
	*store.MemoryQuestionStore
	fail bool
}

var errReorder = errors.New("bulk write interrupted")

func (s *reorderFailingStore) SetOrder(ctx context.Context, order map[string]int) error {
	if s.fail && len(order) > 0 {
		return errReorder
	}
	return s.MemoryQuestionStore.SetOrder(ctx, order)
}

func TestQuestionRepository_FailedRenumberLeavesNoPartialWrite(t *testing.T) {
	ctx := context.Background()
	hidden := textQuestion("hidden", 3)
	hidden.IsActive = false
	backing := &reorderFailingStore{MemoryQuestionStore: store.NewMemoryQuestionStore()}
	repo := NewQuestionRepository(backing, flow.Options{}, nil)
	for _, q := range []models.Question{textQuestion("a", 1), textQuestion("b", 2), hidden} {
		_, err := repo.Create(ctx, q)
		require.NoError(t, err)
	}
	backing.fail = true

	_, err := repo.Create(ctx, textQuestion("x", 1))
	assert.ErrorIs(t, err, errReorder)
	_, err = repo.Get(ctx, "x")
	assert.ErrorIs(t, err, models.ErrNotFound, "insert is rolled back with the renumbering")
	assertDense(t, repo, "a", "b")

	first := 1
	_, err = repo.Update(ctx, "b", models.QuestionUpdate{OrderIndex: &first})
	assert.ErrorIs(t, err, errReorder)
	assertDense(t, repo, "a", "b")

	assert.ErrorIs(t, repo.Delete(ctx, "a"), errReorder)
	assertDense(t, repo, "a", "b")

	backing.fail = false
	_, err = repo.Create(ctx, textQuestion("x", 1))
	require.NoError(t, err)
	assertDense(t, repo, "x", "a", "b")
}

func TestPlace(t *testing.T) {
	arranged := []models.Question{
		textQuestion("a", 1), textQuestion("b", 2),
		{Step: "x", OrderIndex: 3}, {Step: "y", OrderIndex: 4},
	}
	steps := func(qs []models.Question) []string {
		out := make([]string, 0, len(qs))
		for _, q := range qs {
			out = append(out, q.Step)
		}
		return out
	}

	assert.Equal(t, []string{"n", "a", "b", "x", "y"}, steps(place(arranged, textQuestion("n", 0), 1)))
	assert.Equal(t, []string{"a", "b", "n", "x", "y"}, steps(place(arranged, textQuestion("n", 0), 0)))
	assert.Equal(t, []string{"a", "b", "n", "x", "y"}, steps(place(arranged, textQuestion("n", 0), 9)))
	assert.Equal(t, []string{"a", "b", "x", "y", "n"}, steps(place(arranged, models.Question{Step: "n"}, 0)))
	assert.Equal(t, []string{"a", "b", "x", "n", "y"}, steps(place(arranged, models.Question{Step: "n"}, 4)))
	assert.Equal(t, []string{"a", "b", "x", "y", "n"}, steps(place(arranged, models.Question{Step: "n"}, 1)))
}
