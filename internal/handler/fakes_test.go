package handler

import (
	"context"
	"time"

	"auth_service/internal/model"
	"auth_service/internal/repository"
)

// In-memory repositories and mailer backing the full handler stack in
// tests. Same nil-for-not-found contract as the pgx implementations.

type fakeUserRepo struct {
	nextID int
	users  map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[string]*model.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
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
	for _, u := range f.users {
		if u.ID == id {
			u.Name = name
		}
	}
	return nil
}

func (f *fakeUserRepo) UpdatePasswordByID(ctx context.Context, id int, passwordHash string) error {
	for _, u := range f.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
		}
	}
	return nil
}

func (f *fakeUserRepo) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	if u, ok := f.users[email]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int) error {
	for email, u := range f.users {
		if u.ID == id {
			delete(f.users, email)
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
	nextID   int
	records  map[otpKey]*model.Otp
	requests []otpRequest
}

func newFakeOtpRepo() *fakeOtpRepo {
	return &fakeOtpRepo{nextID: 1, records: map[otpKey]*model.Otp{}}
}

func (f *fakeOtpRepo) FindByEmailAndPurpose(ctx context.Context, email, purpose string) (*model.Otp, error) {
	if rec, ok := f.records[otpKey{email, purpose}]; ok {
		clone := *rec
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeOtpRepo) Replace(ctx context.Context, otp *model.Otp) error {
	otp.ID = f.nextID
	f.nextID++
	clone := *otp
	f.records[otpKey{otp.Email, otp.Purpose}] = &clone
	f.requests = append(f.requests, otpRequest{otp.Email, otp.LastRequestTime})
	return nil
}

func (f *fakeOtpRepo) Delete(ctx context.Context, email, purpose string) error {
	delete(f.records, otpKey{email, purpose})
	return nil
}

func (f *fakeOtpRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	for k, rec := range f.records {
		if !rec.OtpExpiry.After(now) {
			delete(f.records, k)
		}
	}
	return nil
}

func (f *fakeOtpRepo) LastRequestTime(ctx context.Context, email string) (*time.Time, error) {
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
	count := 0
	for _, r := range f.requests {
		if r.email == email && !r.at.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeOtpRepo) PruneRequestsBefore(ctx context.Context, cutoff time.Time) error {
	kept := f.requests[:0]
	for _, r := range f.requests {
		if !r.at.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	f.requests = kept
	return nil
}

// backdateRequests shifts every logged request into the past so the next
// issue clears the cooldown gate
func (f *fakeOtpRepo) backdateRequests(d time.Duration) {
	for i := range f.requests {
		f.requests[i].at = f.requests[i].at.Add(-d)
	}
}

type fakeMailer struct {
	sent []string
}

func (f *fakeMailer) SendOtp(ctx context.Context, email, code string) error {
	f.sent = append(f.sent, code)
	return nil
}

func (f *fakeMailer) lastCode() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}
