package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auth_service/internal/model"

	"github.com/jackc/pgx/v5"
)

// OtpRepository defines operations for pending OTP records and the
// per-email request log backing the rate-limit gates.
type OtpRepository interface {
	FindByEmailAndPurpose(ctx context.Context, email, purpose string) (*model.Otp, error)
	Replace(ctx context.Context, otp *model.Otp) error
	Delete(ctx context.Context, email, purpose string) error
	DeleteExpired(ctx context.Context, now time.Time) error
	LastRequestTime(ctx context.Context, email string) (*time.Time, error)
	CountRequestsSince(ctx context.Context, email string, since time.Time) (int, error)
	PruneRequestsBefore(ctx context.Context, cutoff time.Time) error
}

type otpRepository struct {
	db DB
}

// NewOtpRepository creates a new OtpRepository
func NewOtpRepository(db DB) OtpRepository {
	return &otpRepository{db: db}
}

// FindByEmailAndPurpose retrieves the live OTP record for an email/purpose pair
func (r *otpRepository) FindByEmailAndPurpose(ctx context.Context, email, purpose string) (*model.Otp, error) {
	otp := &model.Otp{}
	sql := `SELECT id, email, otp_hash, purpose, otp_expiry, attempts, last_request_time, created_at, updated_at
            FROM otps WHERE email = $1 AND purpose = $2`
	err := r.db.QueryRow(ctx, sql, email, purpose).Scan(
		&otp.ID, &otp.Email, &otp.OtpHash, &otp.Purpose, &otp.OtpExpiry,
		&otp.Attempts, &otp.LastRequestTime, &otp.CreatedAt, &otp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No pending OTP is handled by the service layer
		}
		return nil, fmt.Errorf("failed to find otp: %w", err)
	}
	return otp, nil
}

// Replace stores a new OTP record for (email, purpose), removing any
// existing one, and appends a row to the request log. All three
// statements run in one transaction so two concurrent issues cannot
// leave both codes live.
func (r *otpRepository) Replace(ctx context.Context, otp *model.Otp) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin otp replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM otps WHERE email = $1 AND purpose = $2`, otp.Email, otp.Purpose); err != nil {
		return fmt.Errorf("failed to delete previous otp: %w", err)
	}

	insert := `INSERT INTO otps (email, otp_hash, purpose, otp_expiry, attempts, last_request_time)
               VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`
	err = tx.QueryRow(ctx, insert, otp.Email, otp.OtpHash, otp.Purpose, otp.OtpExpiry, otp.Attempts, otp.LastRequestTime).
		Scan(&otp.ID, &otp.CreatedAt, &otp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert otp: %w", err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO otp_requests (email, requested_at) VALUES ($1, $2)`, otp.Email, otp.LastRequestTime); err != nil {
		return fmt.Errorf("failed to record otp request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit otp replace: %w", err)
	}
	return nil
}

// Delete removes the OTP record for an email/purpose pair
func (r *otpRepository) Delete(ctx context.Context, email, purpose string) error {
	sql := `DELETE FROM otps WHERE email = $1 AND purpose = $2`
	if _, err := r.db.Exec(ctx, sql, email, purpose); err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	return nil
}

// DeleteExpired removes every OTP record whose expiry has passed
func (r *otpRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	sql := `DELETE FROM otps WHERE otp_expiry <= $1`
	if _, err := r.db.Exec(ctx, sql, now); err != nil {
		return fmt.Errorf("failed to delete expired otps: %w", err)
	}
	return nil
}

// LastRequestTime returns the newest request-log timestamp for an email,
// or nil when the email has never requested an OTP
func (r *otpRepository) LastRequestTime(ctx context.Context, email string) (*time.Time, error) {
	var ts time.Time
	sql := `SELECT requested_at FROM otp_requests WHERE email = $1 ORDER BY requested_at DESC LIMIT 1`
	err := r.db.QueryRow(ctx, sql, email).Scan(&ts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read last request time: %w", err)
	}
	return &ts, nil
}

// CountRequestsSince counts OTP requests for an email at or after since
func (r *otpRepository) CountRequestsSince(ctx context.Context, email string, since time.Time) (int, error) {
	var count int
	sql := `SELECT COUNT(*) FROM otp_requests WHERE email = $1 AND requested_at >= $2`
	if err := r.db.QueryRow(ctx, sql, email, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count otp requests: %w", err)
	}
	return count, nil
}

// PruneRequestsBefore drops request-log rows older than the rate window
func (r *otpRepository) PruneRequestsBefore(ctx context.Context, cutoff time.Time) error {
	sql := `DELETE FROM otp_requests WHERE requested_at < $1`
	if _, err := r.db.Exec(ctx, sql, cutoff); err != nil {
		return fmt.Errorf("failed to prune otp requests: %w", err)
	}
	return nil
}
