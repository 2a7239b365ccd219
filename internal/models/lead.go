package models

import (
	"fmt"
	"strings"
	"time"
)

// LeadValueKind tags the variant held by a LeadValue.
type LeadValueKind string

const (
	LeadValueString  LeadValueKind = "string"
	LeadValueStrings LeadValueKind = "strings"
	LeadValueBool    LeadValueKind = "bool"
)

// LeadValue is one submitted answer: a string, a string list or a boolean.
type LeadValue struct {
	Kind    LeadValueKind `bson:"kind" json:"kind"`
	String  string        `bson:"string,omitempty" json:"string,omitempty"`
	Strings []string      `bson:"strings,omitempty" json:"strings,omitempty"`
	Bool    bool          `bson:"bool,omitempty" json:"bool,omitempty"`
}

func StringValue(s string) LeadValue { return LeadValue{Kind: LeadValueString, String: s} }

func StringsValue(s []string) LeadValue { return LeadValue{Kind: LeadValueStrings, Strings: s} }

func BoolValue(b bool) LeadValue { return LeadValue{Kind: LeadValueBool, Bool: b} }

// Interface returns the plain Go value held by v.
func (v LeadValue) Interface() any {
	switch v.Kind {
	case LeadValueStrings:
		return v.Strings
	case LeadValueBool:
		return v.Bool
	default:
		return v.String
	}
}

// Text renders the value for humans.
func (v LeadValue) Text() string {
	switch v.Kind {
	case LeadValueStrings:
		return strings.Join(v.Strings, ", ")
	case LeadValueBool:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return v.String
	}
}

// ExpectedKind is the value variant a question type records.
func ExpectedKind(t QuestionType, multiple bool) LeadValueKind {
	switch {
	case t == QuestionTypeVerification:
		return LeadValueBool
	case t == QuestionTypeSelect && multiple:
		return LeadValueStrings
	default:
		return LeadValueString
	}
}

// LeadFields maps step ids to submitted values.
type LeadFields map[string]LeadValue

// Set records value for step after checking it matches the kind the step declares.
func (f LeadFields) Set(step string, want LeadValueKind, value LeadValue) error {
	if value.Kind != want {
		return NewValidationError(step, "expected %s value, got %s", want, value.Kind)
	}
	f[step] = value
	return nil
}

// Clone returns a deep copy of f.
func (f LeadFields) Clone() LeadFields {
	if f == nil {
		return nil
	}
	out := make(LeadFields, len(f))
	for k, v := range f {
		if v.Strings != nil {
			v.Strings = append([]string(nil), v.Strings...)
		}
		out[k] = v
	}
	return out
}

// Lead is the captured end-user record.
type Lead struct {
	ID         string     `bson:"_id" json:"id"`
	SessionID  string     `bson:"session_id" json:"session_id"`
	Fields     LeadFields `bson:"fields" json:"fields"`
	Phone      string     `bson:"phone,omitempty" json:"phone,omitempty"`
	PhoneE164  string     `bson:"phone_e164,omitempty" json:"phone_e164,omitempty"`
	Verified   bool       `bson:"verified" json:"verified"`
	VerifiedAt *time.Time `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
}

// Field returns the text of a captured answer, or "" when absent.
func (l *Lead) Field(step string) string {
	if v, ok := l.Fields[step]; ok {
		return v.Text()
	}
	return ""
}

func (l *Lead) String() string {
	return fmt.Sprintf("lead(%s verified=%t fields=%d)", l.ID, l.Verified, len(l.Fields))
}
