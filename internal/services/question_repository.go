package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bizlab-kr/leadbot/internal/flow"
	"github.com/bizlab-kr/leadbot/internal/logging"
	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/bizlab-kr/leadbot/internal/observability"
	"github.com/bizlab-kr/leadbot/internal/store"
	"go.uber.org/zap"
)

// QuestionRepository owns the question set. It keeps order_index dense (active questions
// first, numbered from 1, inactive ones after them) and caches the compiled flow.
type QuestionRepository struct {
	store  store.QuestionStore
	opts   flow.Options
	logger *logging.SafeLogger
	now    func() time.Time

	// mu serializes mutations so renumbering sees a stable snapshot.
	mu sync.Mutex

	graphMu sync.RWMutex
	graph   *flow.Graph
}

// NewQuestionRepository creates a repository over s.
func NewQuestionRepository(s store.QuestionStore, opts flow.Options, logger *logging.SafeLogger) *QuestionRepository {
	if logger == nil {
		logger = logging.Logger
	}
	return &QuestionRepository{
		store:  s,
		opts:   opts,
		logger: logger.Named("question_repository"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns the active questions in flow order.
func (r *QuestionRepository) List(ctx context.Context) ([]models.Question, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	active, _ := splitActive(all)
	return active, nil
}

// ListAll returns every question, active ones first.
func (r *QuestionRepository) ListAll(ctx context.Context) ([]models.Question, error) {
	all, err := r.store.All(ctx)
	if err != nil {
		return nil, err
	}
	arrange(all)
	return all, nil
}

// Get returns one question.
func (r *QuestionRepository) Get(ctx context.Context, step string) (*models.Question, error) {
	return r.store.Get(ctx, step)
}

// Create stores q. An order_index of 0 appends; an occupied index inserts before the
// current holder and shifts the rest down.
func (r *QuestionRepository) Create(ctx context.Context, q models.Question) (created *models.Question, err error) {
	defer r.record("create", &err)

	if err := q.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	position := q.OrderIndex
	err = r.atomically(ctx, func(ctx context.Context) error {
		all, err := r.ListAll(ctx)
		if err != nil {
			return err
		}
		for _, existing := range all {
			if existing.Step == q.Step {
				return models.NewValidationError("step", "%q already exists", q.Step)
			}
		}
		if err := checkRole(all, q); err != nil {
			return err
		}

		now := r.now()
		q.CreatedAt = now
		q.UpdatedAt = now

		order := renumber(place(all, q, position))
		q.OrderIndex = order[q.Step]

		if err := r.store.Insert(ctx, q); err != nil {
			return err
		}
		return r.store.SetOrder(ctx, changedOrder(all, order))
	})
	if err != nil {
		return nil, err
	}
	r.Invalidate()

	r.logger.Info("question created", zap.String("step", q.Step), zap.Int("order_index", q.OrderIndex))
	return &q, nil
}

// Update applies u to the question identified by step. The step id itself never changes.
func (r *QuestionRepository) Update(ctx context.Context, step string, u models.QuestionUpdate) (updated *models.Question, err error) {
	defer r.record("update", &err)

	r.mu.Lock()
	defer r.mu.Unlock()

	var q models.Question
	err = r.atomically(ctx, func(ctx context.Context) error {
		existing, err := r.store.Get(ctx, step)
		if err != nil {
			return err
		}
		q = *existing
		u.Apply(&q)
		if err := q.Validate(); err != nil {
			return err
		}

		all, err := r.ListAll(ctx)
		if err != nil {
			return err
		}
		if err := checkRole(all, q); err != nil {
			return err
		}

		others := make([]models.Question, 0, len(all))
		position := 0
		for _, o := range all {
			if o.Step == step {
				continue
			}
			others = append(others, o)
		}
		if u.OrderIndex != nil {
			position = *u.OrderIndex
		} else if q.IsActive == existing.IsActive {
			position = existing.OrderIndex
		}

		order := renumber(place(others, q, position))
		q.OrderIndex = order[q.Step]
		q.UpdatedAt = r.now()

		if err := r.store.Replace(ctx, q); err != nil {
			return err
		}
		return r.store.SetOrder(ctx, changedOrder(others, order))
	})
	if err != nil {
		return nil, err
	}
	r.Invalidate()

	r.logger.Info("question updated", zap.String("step", step), zap.Int("order_index", q.OrderIndex))
	return &q, nil
}

// Delete removes the question and closes the gap it leaves.
func (r *QuestionRepository) Delete(ctx context.Context, step string) (err error) {
	defer r.record("delete", &err)

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.atomically(ctx, func(ctx context.Context) error {
		if err := r.store.Delete(ctx, step); err != nil {
			return err
		}
		remaining, err := r.ListAll(ctx)
		if err != nil {
			return err
		}
		for _, q := range remaining {
			if q.NextStep == step {
				r.logger.Warn("deleted step is still referenced as next_step",
					zap.String("deleted", step), zap.String("referenced_by", q.Step))
			}
		}
		return r.store.SetOrder(ctx, changedOrder(remaining, renumber(remaining)))
	})
	if err != nil {
		return err
	}
	r.Invalidate()

	r.logger.Info("question deleted", zap.String("step", step))
	return nil
}

// Reorder assigns order_index by position in steps, which must list every active
// question exactly once.
func (r *QuestionRepository) Reorder(ctx context.Context, steps []string) (reordered []models.Question, err error) {
	defer r.record("reorder", &err)

	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	active, inactive := splitActive(all)

	byStep := make(map[string]models.Question, len(active))
	for _, q := range active {
		byStep[q.Step] = q
	}
	if len(steps) != len(active) {
		return nil, models.NewValidationError("steps", "expected %d active steps, got %d", len(active), len(steps))
	}
	ordered := make([]models.Question, 0, len(all))
	seen := make(map[string]bool, len(steps))
	for _, step := range steps {
		q, ok := byStep[step]
		if !ok {
			return nil, models.NewValidationError("steps", "%q is not an active step", step)
		}
		if seen[step] {
			return nil, models.NewValidationError("steps", "%q is listed twice", step)
		}
		seen[step] = true
		ordered = append(ordered, q)
	}
	ordered = append(ordered, inactive...)

	order := renumber(ordered)
	err = r.atomically(ctx, func(ctx context.Context) error {
		return r.store.SetOrder(ctx, changedOrder(all, order))
	})
	if err != nil {
		return nil, err
	}
	r.Invalidate()

	for i := range ordered {
		ordered[i].OrderIndex = order[ordered[i].Step]
	}
	return ordered[:len(active)], nil
}

// Flow returns the compiled graph for the current active questions.
func (r *QuestionRepository) Flow(ctx context.Context) (*flow.Graph, error) {
	r.graphMu.RLock()
	g := r.graph
	r.graphMu.RUnlock()
	if g != nil {
		return g, nil
	}

	r.graphMu.Lock()
	defer r.graphMu.Unlock()
	if r.graph != nil {
		return r.graph, nil
	}

	active, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	g = flow.Compile(active, r.opts)
	observability.FlowCompilations.Inc()
	for _, w := range g.Warnings {
		r.logger.Warn("flow compilation warning", zap.String("warning", w))
	}
	r.graph = g
	return g, nil
}

// atomically runs fn in a store transaction when the store offers one.
func (r *QuestionRepository) atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := r.store.(store.AtomicQuestionStore); ok {
		return tx.Atomically(ctx, fn)
	}
	return fn(ctx)
}

// Invalidate drops the cached graph.
func (r *QuestionRepository) Invalidate() {
	r.graphMu.Lock()
	r.graph = nil
	r.graphMu.Unlock()
}

func (r *QuestionRepository) record(operation string, err *error) {
	observability.QuestionMutations.WithLabelValues(operation, observability.StatusLabel(*err)).Inc()
}

// arrange sorts questions into canonical order: active first, then by order_index and step.
func arrange(qs []models.Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		if qs[i].IsActive != qs[j].IsActive {
			return qs[i].IsActive
		}
		if qs[i].OrderIndex != qs[j].OrderIndex {
			return qs[i].OrderIndex < qs[j].OrderIndex
		}
		return qs[i].Step < qs[j].Step
	})
}

func splitActive(arranged []models.Question) (active, inactive []models.Question) {
	for i, q := range arranged {
		if !q.IsActive {
			return arranged[:i], arranged[i:]
		}
	}
	return arranged, nil
}

// place inserts q into the arranged list at the 1-based position, clamped to the block
// q belongs to: active questions before inactive ones. 0 or out of range appends to the block.
func place(arranged []models.Question, q models.Question, position int) []models.Question {
	active, _ := splitActive(arranged)
	lo, hi := 0, len(active)
	if !q.IsActive {
		lo, hi = len(active), len(arranged)
	}
	idx := hi
	if position >= 1 && position-1 >= lo && position-1 <= hi {
		idx = position - 1
	}
	out := make([]models.Question, 0, len(arranged)+1)
	out = append(out, arranged[:idx]...)
	out = append(out, q)
	return append(out, arranged[idx:]...)
}

// renumber assigns 1..n by list position.
func renumber(ordered []models.Question) map[string]int {
	order := make(map[string]int, len(ordered))
	for i, q := range ordered {
		order[q.Step] = i + 1
	}
	return order
}

// changedOrder keeps only entries that differ from the stored value.
func changedOrder(stored []models.Question, order map[string]int) map[string]int {
	changed := make(map[string]int)
	for _, q := range stored {
		if idx, ok := order[q.Step]; ok && idx != q.OrderIndex {
			changed[q.Step] = idx
		}
	}
	return changed
}

// checkRole enforces at most one phone collector and one terminal question.
func checkRole(all []models.Question, q models.Question) error {
	role := q.EffectiveRole()
	if role == models.RoleNone {
		return nil
	}
	if role == models.RolePhoneCollector && q.Type != models.QuestionTypePhone {
		return models.NewValidationError("role", "the phone collector must be a phone question")
	}
	for _, o := range all {
		if o.Step != q.Step && o.EffectiveRole() == role {
			return models.NewValidationError("role", "%s is already assigned to %q", role, o.Step)
		}
	}
	return nil
}
