package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"auth_service/internal/model"
	"auth_service/internal/repository"
	"auth_service/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("Invalid credentials!")
	ErrOldPasswordInvalid = errors.New("Old password is invalid please try again!")
)

// ValidationError carries a client-facing message for a rejected input,
// such as a weak password or an unknown role.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthService composes the credential store, OTP lifecycle and session
// issuance into the register/login/reset/update/delete flows.
type AuthService interface {
	Register(ctx context.Context, name, email, password, role, otp, purpose string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Profile(ctx context.Context, id int) (*model.User, error)
	UpdateProfile(ctx context.Context, id int, name string) (*model.User, error)
	UpdatePassword(ctx context.Context, id int, oldPassword, newPassword string) error
	ResetPassword(ctx context.Context, email, password, otp, purpose string) error
	DeleteAccount(ctx context.Context, id int) error
}

type authService struct {
	userRepo repository.UserRepository
	otps     OtpService
	jwtUtil  *utils.JWTUtil
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, otps OtpService, jwtUtil *utils.JWTUtil) AuthService {
	return &authService{
		userRepo: userRepo,
		otps:     otps,
		jwtUtil:  jwtUtil,
	}
}

// Register creates a new account after OTP verification and issues a session token
func (s *authService) Register(ctx context.Context, name, email, password, role, otp, purpose string) (*model.User, string, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrAlreadyRegistered
	}

	if err := s.otps.Verify(ctx, email, purpose, otp); err != nil {
		return nil, "", err
	}

	if ok, msg := utils.ValidatePassword(password); !ok {
		return nil, "", &ValidationError{Message: msg}
	}

	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return nil, "", &ValidationError{Message: "Invalid role!"}
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// Lost the race against a concurrent registration
			return nil, "", ErrAlreadyRegistered
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	// The account exists; the code must not be reusable even if the
	// delete fails, so only log the failure.
	if err := s.otps.Consume(ctx, email, purpose); err != nil {
		log.Printf("WARN: failed to consume otp for %s: %v", email, err)
	}

	token, err := s.jwtUtil.GenerateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}

	user.PasswordHash = ""
	return user, token, nil
}

// Login authenticates a user and issues a session token. Unknown email
// and wrong password produce the same error so callers cannot probe
// which addresses are registered.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmailWithPassword(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}

	storedHash := ""
	if user != nil {
		storedHash = user.PasswordHash
	}
	if user == nil || !utils.CheckPasswordHash(password, storedHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	user.PasswordHash = ""
	return user, token, nil
}

// Profile retrieves the account bound to a session
func (s *authService) Profile(ctx context.Context, id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile changes the display name and returns the fresh record
func (s *authService) UpdateProfile(ctx context.Context, id int, name string) (*model.User, error) {
	if err := s.userRepo.UpdateName(ctx, id, name); err != nil {
		return nil, err
	}
	return s.Profile(ctx, id)
}

// UpdatePassword rotates the password of an authenticated user after
// checking the old one
func (s *authService) UpdatePassword(ctx context.Context, id int, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByIDWithPassword(ctx, id)
	if err != nil {
		return err
	}

	storedHash := ""
	if user != nil {
		storedHash = user.PasswordHash
	}
	if !utils.CheckPasswordHash(oldPassword, storedHash) {
		return ErrOldPasswordInvalid
	}

	if ok, msg := utils.ValidatePassword(newPassword); !ok {
		return &ValidationError{Message: msg}
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePasswordByID(ctx, id, hashedPassword)
}

// ResetPassword replaces a forgotten password after OTP verification.
// Runs without a session.
func (s *authService) ResetPassword(ctx context.Context, email, password, otp, purpose string) error {
	if err := s.otps.Verify(ctx, email, purpose, otp); err != nil {
		return err
	}

	if ok, msg := utils.ValidatePassword(password); !ok {
		return &ValidationError{Message: msg}
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePasswordByEmail(ctx, email, hashedPassword); err != nil {
		return err
	}

	if err := s.otps.Consume(ctx, email, purpose); err != nil {
		log.Printf("WARN: failed to consume otp for %s: %v", email, err)
	}
	return nil
}

// DeleteAccount removes the account bound to a session
func (s *authService) DeleteAccount(ctx context.Context, id int) error {
	return s.userRepo.Delete(ctx, id)
}
