package models

import "time"

// ChatSession is one visitor's walk through the compiled flow.
type ChatSession struct {
	ID                  string     `json:"id"`
	CurrentStep         string     `json:"current_step"`
	Fields              LeadFields `json:"fields"`
	Phone               string     `json:"phone,omitempty"`
	Verified            bool       `json:"verified"`
	VerificationSkipped bool       `json:"verification_skipped,omitempty"`
	Completed           bool       `json:"completed"`
	LeadID              string     `json:"lead_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// StepView is the client-facing description of a step.
type StepView struct {
	ID          string       `json:"id"`
	Question    string       `json:"question"`
	InputType   QuestionType `json:"input_type"`
	Options     []string     `json:"options,omitempty"`
	Multiple    bool         `json:"multiple,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	Terminal    bool         `json:"terminal,omitempty"`
}

// ChatReply is returned by every chat interaction.
type ChatReply struct {
	Session *ChatSession `json:"session"`
	Step    StepView     `json:"step"`
	Error   string       `json:"error,omitempty"`
	Notice  string       `json:"notice,omitempty"`
}

// ChatMessageRequest carries the visitor's answer for the current step.
type ChatMessageRequest struct {
	Value string `json:"value"`
}

// Clone returns a deep copy of s.
func (s *ChatSession) Clone() *ChatSession {
	out := *s
	out.Fields = s.Fields.Clone()
	return &out
}
