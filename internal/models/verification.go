package models

import "time"

// VerificationRecord is the proof-of-possession state for one phone number.
type VerificationRecord struct {
	Phone     string    `json:"phone"`
	Code      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Consumed  bool      `json:"consumed"`
}

// Expired reports whether the record is past its expiry at now.
func (r *VerificationRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Verification actions accepted by POST /verify.
const (
	VerifyActionSend   = "send"
	VerifyActionVerify = "verify"
)

// VerifyRequest is the body of POST /verify.
type VerifyRequest struct {
	Action string `json:"action" binding:"required,oneof=send verify"`
	Phone  string `json:"phone" binding:"required"`
	Code   string `json:"code,omitempty"`
}

// VerifySendResponse is returned after a code was dispatched.
type VerifySendResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Provider  string    `json:"provider"`
	MessageID string    `json:"message_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifyCheckResponse is returned after a successful code check.
type VerifyCheckResponse struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

// Verification constants
const (
	VerificationCodeLength = 6
)
