package flow

import (
	"strings"

	"github.com/bizlab-kr/leadbot/internal/models"
)

// Step is one node of the compiled flow.
type Step struct {
	ID          string
	Question    string
	InputType   models.QuestionType
	Options     []string
	Multiple    bool
	Placeholder string
	Role        models.StepRole
	Synthetic   bool

	validate func(value string) error
	next     func(value string) string
}

// Validate checks an answer for this step. A step without a validator accepts everything.
func (s *Step) Validate(value string) error {
	if s.validate == nil {
		return nil
	}
	return s.validate(value)
}

// Next resolves the step that follows this one for the given answer.
func (s *Step) Next(value string) string {
	return s.next(value)
}

// IsTerminal reports whether the step absorbs every transition.
func (s *Step) IsTerminal() bool {
	return s.Role == models.RoleTerminal
}

// IsPhoneCollector reports whether the step collects the phone number to verify.
func (s *Step) IsPhoneCollector() bool {
	return s.Role == models.RolePhoneCollector
}

// IsVerification reports whether the step checks the SMS code.
func (s *Step) IsVerification() bool {
	return s.ID == models.StepPhoneVerification
}

// ValueKind is the lead value variant this step records.
func (s *Step) ValueKind() models.LeadValueKind {
	return models.ExpectedKind(s.InputType, s.Multiple)
}

// Value converts a validated raw answer into the typed value recorded on the lead.
func (s *Step) Value(raw string) models.LeadValue {
	switch s.ValueKind() {
	case models.LeadValueBool:
		return models.BoolValue(true)
	case models.LeadValueStrings:
		return models.StringsValue(splitMulti(raw))
	default:
		return models.StringValue(strings.TrimSpace(raw))
	}
}

// View returns the client-facing description of the step.
func (s *Step) View() models.StepView {
	return models.StepView{
		ID:          s.ID,
		Question:    s.Question,
		InputType:   s.InputType,
		Options:     s.Options,
		Multiple:    s.Multiple,
		Placeholder: s.Placeholder,
		Terminal:    s.IsTerminal(),
	}
}

// Graph is the navigable step structure derived from the active questions.
type Graph struct {
	steps     map[string]*Step
	order     []string
	terminal  string
	phoneStep string

	// Warnings lists definitions that were ignored during compilation.
	Warnings []string
}

// Step looks up a step by id.
func (g *Graph) Step(id string) (*Step, bool) {
	s, ok := g.steps[id]
	return s, ok
}

// Start returns the first step of the flow.
func (g *Graph) Start() *Step {
	return g.steps[g.order[0]]
}

// Terminal returns the id of the absorbing step.
func (g *Graph) Terminal() string {
	return g.terminal
}

// PhoneStep returns the id of the phone collector, or "" when the flow has none.
func (g *Graph) PhoneStep() string {
	return g.phoneStep
}

// Order returns step ids in presentation order, synthetic steps included.
func (g *Graph) Order() []string {
	return append([]string(nil), g.order...)
}

// Len returns the number of steps.
func (g *Graph) Len() int {
	return len(g.order)
}

// Describe renders every step with its default successor, for admin previews.
func (g *Graph) Describe() []StepDescription {
	out := make([]StepDescription, 0, len(g.order))
	for _, id := range g.order {
		s := g.steps[id]
		out = append(out, StepDescription{
			StepView:  s.View(),
			Role:      s.Role,
			Synthetic: s.Synthetic,
			Next:      s.Next(""),
		})
	}
	return out
}

// StepDescription is a step plus its successor for an empty answer.
type StepDescription struct {
	models.StepView
	Role      models.StepRole `json:"role,omitempty"`
	Synthetic bool            `json:"synthetic,omitempty"`
	Next      string          `json:"next"`
}

func splitMulti(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
