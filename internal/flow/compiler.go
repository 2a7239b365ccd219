package flow

import (
	"fmt"
	"sort"

	"github.com/bizlab-kr/leadbot/internal/models"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// VerificationNext selects where the verification step routes after a correct code.
type VerificationNext string

const (
	// VerificationNextComplete routes straight to the terminal step.
	VerificationNextComplete VerificationNext = "complete"
	// VerificationNextFollowing resumes with the question that followed the phone step.
	VerificationNextFollowing VerificationNext = "following"
)

const (
	DefaultCompleteMessage = "상담 신청이 완료되었습니다. 담당 컨설턴트가 곧 연락드리겠습니다. 감사합니다!"
	verificationPrompt     = "입력하신 번호로 발송된 6자리 인증번호를 입력해주세요."
	verificationHint       = "인증번호 6자리"
)

// Options tunes compilation.
type Options struct {
	VerificationNext VerificationNext
	CompleteMessage  string
}

type branch struct {
	program *vm.Program
	target  string
}

// Compile derives the flow graph from an ordered set of questions. It never fails:
// broken references degrade to the terminal step and invalid branches are dropped
// with a warning.
func Compile(questions []models.Question, opts Options) *Graph {
	active := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		if q.IsActive {
			active = append(active, q)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].OrderIndex < active[j].OrderIndex
	})

	g := &Graph{steps: make(map[string]*Step, len(active)+2)}

	// Resolve ids and special roles first; the first claimant of a role wins.
	ids := make([]string, 0, len(active))
	known := make(map[string]bool, len(active))
	kept := active[:0]
	for _, q := range active {
		if known[q.Step] || q.Step == models.StepPhoneVerification {
			g.warnf("duplicate or reserved step %q ignored", q.Step)
			continue
		}
		known[q.Step] = true
		ids = append(ids, q.Step)
		kept = append(kept, q)
	}
	active = kept

	for _, q := range active {
		switch q.EffectiveRole() {
		case models.RolePhoneCollector:
			if g.phoneStep == "" {
				g.phoneStep = q.Step
			} else {
				g.warnf("step %q ignored as phone collector; %q already is one", q.Step, g.phoneStep)
			}
		case models.RoleTerminal:
			if g.terminal == "" {
				g.terminal = q.Step
			} else {
				g.warnf("step %q ignored as terminal; %q already is one", q.Step, g.terminal)
			}
		}
	}
	if g.terminal == "" {
		g.terminal = models.StepComplete
	}
	terminal := g.terminal

	for i, q := range active {
		following := ""
		if i+1 < len(ids) {
			following = ids[i+1]
		}

		step := &Step{
			ID:          q.Step,
			Question:    q.Question,
			InputType:   q.Type,
			Options:     append([]string(nil), q.Options...),
			Multiple:    q.Multiple,
			Placeholder: q.Placeholder,
			validate:    buildValidator(q),
		}

		switch {
		case q.Step == terminal:
			step.Role = models.RoleTerminal
			id := q.Step
			step.next = func(string) string { return id }
		case q.Step == g.phoneStep:
			step.Role = models.RolePhoneCollector
			step.next = func(string) string { return models.StepPhoneVerification }
		default:
			fallback := terminal
			if q.NextStep != "" {
				if known[q.NextStep] || q.NextStep == terminal {
					fallback = q.NextStep
				} else {
					g.warnf("step %q references unknown next_step %q", q.Step, q.NextStep)
				}
			}
			step.next = sequenceNext(g.compileBranches(q, known, terminal), following, fallback)
		}

		g.steps[q.Step] = step
		g.order = append(g.order, q.Step)

		if q.Step == g.phoneStep {
			g.steps[models.StepPhoneVerification] = verificationStep(opts, following, terminal)
			g.order = append(g.order, models.StepPhoneVerification)
		}
	}

	if _, ok := g.steps[terminal]; !ok {
		message := opts.CompleteMessage
		if message == "" {
			message = DefaultCompleteMessage
		}
		g.steps[terminal] = &Step{
			ID:        terminal,
			Question:  message,
			InputType: models.QuestionTypeText,
			Role:      models.RoleTerminal,
			Synthetic: true,
			next:      func(string) string { return terminal },
		}
		g.order = append(g.order, terminal)
	}

	return g
}

// sequenceNext resolves, in order: a matching branch, the following question, the
// explicit next_step (already checked) and finally the terminal step.
func sequenceNext(branches []branch, following, fallback string) func(string) string {
	return func(value string) string {
		if len(branches) > 0 {
			env := branchEnv(value)
			for _, b := range branches {
				out, err := expr.Run(b.program, env)
				if err != nil {
					continue
				}
				if matched, ok := out.(bool); ok && matched {
					return b.target
				}
			}
		}
		if following != "" {
			return following
		}
		return fallback
	}
}

func verificationStep(opts Options, following, terminal string) *Step {
	target := terminal
	if opts.VerificationNext == VerificationNextFollowing && following != "" {
		target = following
	}
	return &Step{
		ID:          models.StepPhoneVerification,
		Question:    verificationPrompt,
		InputType:   models.QuestionTypeVerification,
		Placeholder: verificationHint,
		Synthetic:   true,
		validate:    validateCode,
		next:        func(string) string { return target },
	}
}

func (g *Graph) compileBranches(q models.Question, known map[string]bool, terminal string) []branch {
	var out []branch
	for _, b := range q.Branches {
		if !known[b.Goto] && b.Goto != terminal {
			g.warnf("step %q branch targets unknown step %q", q.Step, b.Goto)
			continue
		}
		program, err := expr.Compile(b.When, expr.Env(branchEnv("")), expr.AsBool())
		if err != nil {
			g.warnf("step %q branch %q does not compile: %v", q.Step, b.When, err)
			continue
		}
		out = append(out, branch{program: program, target: b.Goto})
	}
	return out
}

func branchEnv(value string) map[string]any {
	return map[string]any{
		"value":  value,
		"values": splitMulti(value),
	}
}

func (g *Graph) warnf(format string, args ...any) {
	g.Warnings = append(g.Warnings, fmt.Sprintf(format, args...))
}
