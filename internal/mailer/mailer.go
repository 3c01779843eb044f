// Package mailer delivers one-time codes to users by email. The OTP
// subsystem only depends on the Mailer interface so tests can inject a
// fake transport.
package mailer

import "context"

// Mailer dispatches a plaintext OTP code to an email address
type Mailer interface {
	SendOtp(ctx context.Context, email, code string) error
}
