package models

import (
	"regexp"
	"strings"
	"time"
)

// QuestionType is the input kind a question expects.
type QuestionType string

const (
	QuestionTypeText         QuestionType = "text"
	QuestionTypeTextarea     QuestionType = "textarea"
	QuestionTypeSelect       QuestionType = "select"
	QuestionTypeQuickReply   QuestionType = "quick-reply"
	QuestionTypePhone        QuestionType = "phone"
	QuestionTypeVerification QuestionType = "verification"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeText, QuestionTypeTextarea, QuestionTypeSelect,
		QuestionTypeQuickReply, QuestionTypePhone, QuestionTypeVerification:
		return true
	}
	return false
}

// HasOptions reports whether the type requires a non-empty options list.
func (t QuestionType) HasOptions() bool {
	return t == QuestionTypeSelect || t == QuestionTypeQuickReply
}

// StepRole marks a question for special handling by the flow compiler.
type StepRole string

const (
	RoleNone           StepRole = ""
	RolePhoneCollector StepRole = "phone_collector"
	RoleTerminal       StepRole = "terminal"
)

// Reserved step identifiers.
const (
	StepPhone             = "phone"
	StepPhoneVerification = "phoneVerification"
	StepComplete          = "complete"
)

// Validation is an optional input rule attached to a question.
type Validation struct {
	Required  bool   `bson:"required" json:"required" yaml:"required"`
	MinLength int    `bson:"min_length,omitempty" json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength int    `bson:"max_length,omitempty" json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Pattern   string `bson:"pattern,omitempty" json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Message   string `bson:"message,omitempty" json:"message,omitempty" yaml:"message,omitempty"`
}

// Branch routes to Goto when the expression When evaluates to true for the answer.
// The answer is available as `value`.
type Branch struct {
	When string `bson:"when" json:"when" yaml:"when"`
	Goto string `bson:"goto" json:"goto" yaml:"goto"`
}

// Question is a single conversational prompt.
type Question struct {
	Step        string       `bson:"step" json:"step" yaml:"step"`
	Type        QuestionType `bson:"type" json:"type" yaml:"type"`
	Question    string       `bson:"question" json:"question" yaml:"question"`
	Placeholder string       `bson:"placeholder,omitempty" json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []string     `bson:"options,omitempty" json:"options,omitempty" yaml:"options,omitempty"`
	Multiple    bool         `bson:"multiple,omitempty" json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Validation  *Validation  `bson:"validation,omitempty" json:"validation,omitempty" yaml:"validation,omitempty"`
	OrderIndex  int          `bson:"order_index" json:"order_index" yaml:"order_index"`
	IsActive    bool         `bson:"is_active" json:"is_active" yaml:"is_active"`
	NextStep    string       `bson:"next_step,omitempty" json:"next_step,omitempty" yaml:"next_step,omitempty"`
	Role        StepRole     `bson:"role,omitempty" json:"role,omitempty" yaml:"role,omitempty"`
	Branches    []Branch     `bson:"branches,omitempty" json:"branches,omitempty" yaml:"branches,omitempty"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt   time.Time    `bson:"updated_at" json:"updated_at" yaml:"-"`
}

// EffectiveRole returns the explicit role, falling back to the legacy reserved ids.
func (q *Question) EffectiveRole() StepRole {
	if q.Role != RoleNone {
		return q.Role
	}
	switch q.Step {
	case StepPhone:
		return RolePhoneCollector
	case StepComplete:
		return RoleTerminal
	}
	return RoleNone
}

var stepIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,63}$`)

// Validate checks the question in isolation. Cross-record rules live in the repository.
func (q *Question) Validate() error {
	if !stepIDPattern.MatchString(q.Step) {
		return NewValidationError("step", "must start with a letter and contain only letters, digits, '-' or '_'")
	}
	if q.Step == StepPhoneVerification {
		return NewValidationError("step", "%q is reserved", StepPhoneVerification)
	}
	if !q.Type.Valid() {
		return NewValidationError("type", "unknown question type %q", q.Type)
	}
	if strings.TrimSpace(q.Question) == "" {
		return NewValidationError("question", "is required")
	}
	if q.Type.HasOptions() {
		if len(q.Options) == 0 {
			return NewValidationError("options", "are required for %s questions", q.Type)
		}
		for _, option := range q.Options {
			if strings.TrimSpace(option) == "" {
				return NewValidationError("options", "must not contain empty entries")
			}
		}
	}
	if q.Multiple && q.Type != QuestionTypeSelect {
		return NewValidationError("multiple", "is only supported for select questions")
	}
	switch q.Role {
	case RoleNone, RolePhoneCollector, RoleTerminal:
	default:
		return NewValidationError("role", "unknown role %q", q.Role)
	}
	if q.OrderIndex < 0 {
		return NewValidationError("order_index", "must not be negative")
	}
	if v := q.Validation; v != nil {
		if v.MinLength < 0 || v.MaxLength < 0 {
			return NewValidationError("validation", "lengths must not be negative")
		}
		if v.MaxLength > 0 && v.MinLength > v.MaxLength {
			return NewValidationError("validation", "min_length exceeds max_length")
		}
		if v.Pattern != "" {
			if _, err := regexp.Compile(v.Pattern); err != nil {
				return NewValidationError("validation.pattern", "invalid regular expression: %v", err)
			}
		}
	}
	for i, branch := range q.Branches {
		if strings.TrimSpace(branch.When) == "" || strings.TrimSpace(branch.Goto) == "" {
			return NewValidationError("branches", "entry %d needs both when and goto", i)
		}
	}
	return nil
}

// QuestionUpdate carries a partial update. Nil fields are left unchanged.
type QuestionUpdate struct {
	Type        *QuestionType `json:"type,omitempty"`
	Question    *string       `json:"question,omitempty"`
	Placeholder *string       `json:"placeholder,omitempty"`
	Options     *[]string     `json:"options,omitempty"`
	Multiple    *bool         `json:"multiple,omitempty"`
	Validation  *Validation   `json:"validation,omitempty"`
	OrderIndex  *int          `json:"order_index,omitempty"`
	IsActive    *bool         `json:"is_active,omitempty"`
	NextStep    *string       `json:"next_step,omitempty"`
	Role        *StepRole     `json:"role,omitempty"`
	Branches    *[]Branch     `json:"branches,omitempty"`
}

// Apply copies the set fields onto q.
func (u *QuestionUpdate) Apply(q *Question) {
	if u.Type != nil {
		q.Type = *u.Type
	}
	if u.Question != nil {
		q.Question = *u.Question
	}
	if u.Placeholder != nil {
		q.Placeholder = *u.Placeholder
	}
	if u.Options != nil {
		q.Options = append([]string(nil), (*u.Options)...)
	}
	if u.Multiple != nil {
		q.Multiple = *u.Multiple
	}
	if u.Validation != nil {
		v := *u.Validation
		q.Validation = &v
	}
	if u.OrderIndex != nil {
		q.OrderIndex = *u.OrderIndex
	}
	if u.IsActive != nil {
		q.IsActive = *u.IsActive
	}
	if u.NextStep != nil {
		q.NextStep = *u.NextStep
	}
	if u.Role != nil {
		q.Role = *u.Role
	}
	if u.Branches != nil {
		q.Branches = append([]Branch(nil), (*u.Branches)...)
	}
}

// CreateQuestionRequest is the body for creating a question. IsActive defaults to true.
type CreateQuestionRequest struct {
	Step        string       `json:"step" binding:"required"`
	Type        QuestionType `json:"type" binding:"required"`
	Question    string       `json:"question" binding:"required"`
	Placeholder string       `json:"placeholder,omitempty"`
	Options     []string     `json:"options,omitempty"`
	Multiple    bool         `json:"multiple,omitempty"`
	Validation  *Validation  `json:"validation,omitempty"`
	OrderIndex  int          `json:"order_index,omitempty"`
	IsActive    *bool        `json:"is_active,omitempty"`
	NextStep    string       `json:"next_step,omitempty"`
	Role        StepRole     `json:"role,omitempty"`
	Branches    []Branch     `json:"branches,omitempty"`
}

// ToQuestion converts the request into a Question.
func (r *CreateQuestionRequest) ToQuestion() Question {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return Question{
		Step:        strings.TrimSpace(r.Step),
		Type:        r.Type,
		Question:    r.Question,
		Placeholder: r.Placeholder,
		Options:     r.Options,
		Multiple:    r.Multiple,
		Validation:  r.Validation,
		OrderIndex:  r.OrderIndex,
		IsActive:    active,
		NextStep:    r.NextStep,
		Role:        r.Role,
		Branches:    r.Branches,
	}
}

// ReorderRequest lists every active step id in the desired order.
type ReorderRequest struct {
	Steps []string `json:"steps" binding:"required"`
}

// QuestionListResponse wraps a list of questions.
type QuestionListResponse struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
}
