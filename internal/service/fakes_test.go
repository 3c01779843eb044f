package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"auth_service/internal/model"
	"auth_service/internal/repository"
)

// In-memory stand-ins for the pgx repositories and the mailer. They keep
// the same not-found-is-nil contract as the real implementations.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*model.User // keyed by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[string]*model.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.users[user.Email] = &clone
	return nil
}

func (f *fakeUserRepo) find(match func(*model.User) bool, withPassword bool) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			clone := *u
			if !withPassword {
				clone.PasswordHash = ""
			}
			return &clone
		}
	}
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email }, false), nil
}

func (f *fakeUserRepo) FindByEmailWithPassword(ctx context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email }, true), nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id }, false), nil
}

func (f *fakeUserRepo) FindByIDWithPassword(ctx context.Context, id int) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id }, true), nil
}

func (f *fakeUserRepo) UpdateName(ctx context.Context, id int, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			u.Name = name
			u.UpdatedAt = time.Now()
			return nil
		}
	}
	return nil
}

func (f *fakeUserRepo) UpdatePasswordByID(ctx context.Context, id int, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return nil
}

func (f *fakeUserRepo) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[email]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, u := range f.users {
		if u.ID == id {
			delete(f.users, email)
			return nil
		}
	}
	return nil
}

type otpKey struct {
	email   string
	purpose string
}

type otpRequest struct {
	email string
	at    time.Time
}

type fakeOtpRepo struct {
	mu       sync.Mutex
	nextID   int
	records  map[otpKey]*model.Otp
	requests []otpRequest
}

func newFakeOtpRepo() *fakeOtpRepo {
	return &fakeOtpRepo{nextID: 1, records: map[otpKey]*model.Otp{}}
}

func (f *fakeOtpRepo) FindByEmailAndPurpose(ctx context.Context, email, purpose string) (*model.Otp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[otpKey{email, purpose}]; ok {
		clone := *rec
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeOtpRepo) Replace(ctx context.Context, otp *model.Otp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	otp.ID = f.nextID
	f.nextID++
	clone := *otp
	f.records[otpKey{otp.Email, otp.Purpose}] = &clone
	f.requests = append(f.requests, otpRequest{otp.Email, otp.LastRequestTime})
	return nil
}

func (f *fakeOtpRepo) Delete(ctx context.Context, email, purpose string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, otpKey{email, purpose})
	return nil
}

func (f *fakeOtpRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, rec := range f.records {
		if !rec.OtpExpiry.After(now) {
			delete(f.records, k)
		}
	}
	return nil
}

func (f *fakeOtpRepo) LastRequestTime(ctx context.Context, email string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *time.Time
	for _, r := range f.requests {
		if r.email == email && (latest == nil || r.at.After(*latest)) {
			at := r.at
			latest = &at
		}
	}
	return latest, nil
}

func (f *fakeOtpRepo) CountRequestsSince(ctx context.Context, email string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.requests {
		if r.email == email && !r.at.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeOtpRepo) PruneRequestsBefore(ctx context.Context, cutoff time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.requests[:0]
	for _, r := range f.requests {
		if !r.at.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	f.requests = kept
	return nil
}

// recordRequest backdates a prior OTP request, for exercising the gates
func (f *fakeOtpRepo) recordRequest(email string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, otpRequest{email, at})
}

type fakeMailer struct {
	mu       sync.Mutex
	sent     []string // plaintext codes, in order
	lastTo   string
	failWith error
}

func (f *fakeMailer) SendOtp(ctx context.Context, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.sent = append(f.sent, code)
	f.lastTo = email
	return nil
}

func (f *fakeMailer) lastCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

var errMailDown = errors.New("smtp unreachable")
