package model

import "time"

const (
	PurposeRegister = "register"
	PurposeForget   = "forget"
)

// ValidPurpose reports whether purpose is a known OTP purpose.
func ValidPurpose(purpose string) bool {
	return purpose == PurposeRegister || purpose == PurposeForget
}

// Otp is a pending one-time code for an email/purpose pair. Only the
// SHA-256 digest of the code is ever stored.
type Otp struct {
	ID              int       `json:"id"`
	Email           string    `json:"email"`
	OtpHash         string    `json:"-"`
	Purpose         string    `json:"purpose"`
	OtpExpiry       time.Time `json:"otp_expiry"`
	Attempts        int       `json:"attempts"`
	LastRequestTime time.Time `json:"last_request_time"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
