package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuestion() Question {
	return Question{Step: "name", Type: QuestionTypeText, Question: "성함을 알려주세요.", OrderIndex: 1, IsActive: true}
}

func TestQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *Question)
		field   string
		wantErr bool
	}{
		{"valid", func(q *Question) {}, "", false},
		{"empty step", func(q *Question) { q.Step = "" }, "step", true},
		{"step with space", func(q *Question) { q.Step = "my step" }, "step", true},
		{"step starting with digit", func(q *Question) { q.Step = "1st" }, "step", true},
		{"reserved step", func(q *Question) { q.Step = StepPhoneVerification }, "step", true},
		{"unknown type", func(q *Question) { q.Type = "slider" }, "type", true},
		{"blank prompt", func(q *Question) { q.Question = "  " }, "question", true},
		{"select without options", func(q *Question) { q.Type = QuestionTypeSelect }, "options", true},
		{"quick reply with empty option", func(q *Question) {
			q.Type = QuestionTypeQuickReply
			q.Options = []string{"예", " "}
		}, "options", true},
		{"select with options", func(q *Question) {
			q.Type = QuestionTypeSelect
			q.Options = []string{"a", "b"}
			q.Multiple = true
		}, "", false},
		{"multiple on text", func(q *Question) { q.Multiple = true }, "multiple", true},
		{"unknown role", func(q *Question) { q.Role = "boss" }, "role", true},
		{"negative order", func(q *Question) { q.OrderIndex = -1 }, "order_index", true},
		{"min above max", func(q *Question) { q.Validation = &Validation{MinLength: 5, MaxLength: 2} }, "validation", true},
		{"bad pattern", func(q *Question) { q.Validation = &Validation{Pattern: "("} }, "validation.pattern", true},
		{"incomplete branch", func(q *Question) { q.Branches = []Branch{{When: "true"}} }, "branches", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(&q)
			err := q.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestEffectiveRole(t *testing.T) {
	assert.Equal(t, RolePhoneCollector, (&Question{Step: "phone"}).EffectiveRole())
	assert.Equal(t, RoleTerminal, (&Question{Step: "complete"}).EffectiveRole())
	assert.Equal(t, RoleNone, (&Question{Step: "name"}).EffectiveRole())
	assert.Equal(t, RolePhoneCollector, (&Question{Step: "mobile", Role: RolePhoneCollector}).EffectiveRole())
}

func TestQuestionUpdateApply(t *testing.T) {
	q := validQuestion()
	text := "새 질문"
	inactive := false
	options := []string{"x"}
	update := QuestionUpdate{Question: &text, IsActive: &inactive, Options: &options}

	update.Apply(&q)

	assert.Equal(t, "name", q.Step)
	assert.Equal(t, "새 질문", q.Question)
	assert.False(t, q.IsActive)
	assert.Equal(t, []string{"x"}, q.Options)

	options[0] = "mutated"
	assert.Equal(t, []string{"x"}, q.Options, "apply copies slices")
}

func TestCreateQuestionRequestDefaults(t *testing.T) {
	req := CreateQuestionRequest{Step: "budget", Type: QuestionTypeText, Question: "예산은?"}
	q := req.ToQuestion()
	assert.True(t, q.IsActive)
	assert.Equal(t, "budget", q.Step)
}
