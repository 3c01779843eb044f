package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auth_service/internal/mailer"
	"auth_service/internal/model"
	"auth_service/internal/repository"
	"auth_service/internal/utils"
)

var (
	ErrAlreadyRegistered = errors.New("User already registered, please login!")
	ErrUserNotFound      = errors.New("User not found!")
	ErrOtpInvalid        = errors.New("Invalid OTP or expired!")
	ErrOtpExpired        = errors.New("OTP expired. Please request a new one!")
	ErrTooManyRequests   = errors.New("Too many OTP requests. Try again later!")
)

// CooldownError is returned when an OTP is requested again within the
// cooldown window. It reports how long the caller still has to wait.
type CooldownError struct {
	WaitSeconds int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("Wait %d seconds before requesting another OTP.", e.WaitSeconds)
}

const (
	otpTTL         = 10 * time.Minute
	otpCooldown    = 60 * time.Second
	otpRateWindow  = time.Hour
	otpHourlyLimit = 10
)

// OtpService manages the one-time-code lifecycle: rate-gated issuance,
// verification and single-use consumption.
type OtpService interface {
	Issue(ctx context.Context, email, purpose string) error
	Verify(ctx context.Context, email, purpose, code string) error
	Consume(ctx context.Context, email, purpose string) error
}

type otpService struct {
	otpRepo  repository.OtpRepository
	userRepo repository.UserRepository
	mail     mailer.Mailer
}

// NewOtpService creates a new OtpService
func NewOtpService(otpRepo repository.OtpRepository, userRepo repository.UserRepository, mail mailer.Mailer) OtpService {
	return &otpService{
		otpRepo:  otpRepo,
		userRepo: userRepo,
		mail:     mail,
	}
}

// Issue generates a fresh code for (email, purpose), replaces any
// pending record and mails the plaintext code. The code itself is never
// stored or logged; a mail failure leaves the record persisted.
func (s *otpService) Issue(ctx context.Context, email, purpose string) error {
	if err := s.checkRateLimits(ctx, email); err != nil {
		return err
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	switch purpose {
	case model.PurposeRegister:
		if existing != nil {
			return ErrAlreadyRegistered
		}
	case model.PurposeForget:
		if existing == nil {
			return ErrUserNotFound
		}
	}

	now := time.Now()

	// Lazy sweep: expired codes and request-log rows outside the rate
	// window go away on the next issue, not on a timer.
	if err := s.otpRepo.DeleteExpired(ctx, now); err != nil {
		return err
	}
	if err := s.otpRepo.PruneRequestsBefore(ctx, now.Add(-otpRateWindow)); err != nil {
		return err
	}

	code, err := utils.GenerateOtp()
	if err != nil {
		return err
	}

	record := &model.Otp{
		Email:           email,
		OtpHash:         utils.HashOtp(code),
		Purpose:         purpose,
		OtpExpiry:       now.Add(otpTTL),
		Attempts:        0,
		LastRequestTime: now,
	}
	if err := s.otpRepo.Replace(ctx, record); err != nil {
		return err
	}

	return s.mail.SendOtp(ctx, email, code)
}

// checkRateLimits applies the two independent gates: a 60 second
// cooldown since the most recent request for this email (across
// purposes), and a cap of 10 requests in the trailing hour.
func (s *otpService) checkRateLimits(ctx context.Context, email string) error {
	last, err := s.otpRepo.LastRequestTime(ctx, email)
	if err != nil {
		return err
	}
	if last != nil {
		if elapsed := time.Since(*last); elapsed < otpCooldown {
			return &CooldownError{WaitSeconds: int(otpCooldown.Seconds()) - int(elapsed.Seconds())}
		}
	}

	count, err := s.otpRepo.CountRequestsSince(ctx, email, time.Now().Add(-otpRateWindow))
	if err != nil {
		return err
	}
	if count >= otpHourlyLimit {
		return ErrTooManyRequests
	}
	return nil
}

// Verify checks a candidate code against the pending record. Expired
// records are deleted on sight. A successful verification does not
// consume the record; the caller does that once its dependent operation
// has completed.
func (s *otpService) Verify(ctx context.Context, email, purpose, code string) error {
	record, err := s.otpRepo.FindByEmailAndPurpose(ctx, email, purpose)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrOtpInvalid
	}

	if time.Now().After(record.OtpExpiry) {
		if err := s.otpRepo.Delete(ctx, email, purpose); err != nil {
			return err
		}
		return ErrOtpExpired
	}

	if utils.HashOtp(code) != record.OtpHash {
		return ErrOtpInvalid
	}
	return nil
}

// Consume deletes the pending record, making the code single-use
func (s *otpService) Consume(ctx context.Context, email, purpose string) error {
	return s.otpRepo.Delete(ctx, email, purpose)
}
