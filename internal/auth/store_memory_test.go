// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/kinora-dev/kinora/internal/auth"
	"github.com/kinora-dev/kinora/internal/platform/apperr"
)

// memoryAccountRepository is an in-memory [auth.AccountRepository] used by
// the service and session tests. It mirrors the storage semantics the flows
// rely on: unique email/username, token state on the account row, and
// single-use verification consumption.
type memoryAccountRepository struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*auth.Account
}

func newMemoryAccountRepository() *memoryAccountRepository {
	return &memoryAccountRepository{records: make(map[int64]*auth.Account)}
}

// count reports the number of stored accounts.
func (repo *memoryAccountRepository) count() int {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return len(repo.records)
}

// get returns a snapshot of the stored account, for test assertions that
// need to inspect raw row state (tokens, expiries).
func (repo *memoryAccountRepository) get(id int64) *auth.Account {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if account, ok := repo.records[id]; ok {
		return clone(account)
	}
	return nil
}

// expireVerificationToken rewinds the stored expiry, simulating a token
// whose 24 hour window has passed.
func (repo *memoryAccountRepository) expireVerificationToken(id int64) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if account, ok := repo.records[id]; ok && account.VerificationTokenExpires != nil {
		past := time.Now().Add(-time.Minute)
		account.VerificationTokenExpires = &past
	}
}

func clone(account *auth.Account) *auth.Account {
	copied := *account
	if account.VerificationToken != nil {
		token := *account.VerificationToken
		copied.VerificationToken = &token
	}
	if account.VerificationTokenExpires != nil {
		expiry := *account.VerificationTokenExpires
		copied.VerificationTokenExpires = &expiry
	}
	if account.SessionToken != nil {
		token := *account.SessionToken
		copied.SessionToken = &token
	}
	return &copied
}

func (repo *memoryAccountRepository) Create(_ context.Context, account *auth.Account) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, existing := range repo.records {
		if existing.Email == account.Email {
			return apperr.Conflict("Email is already registered")
		}
		if existing.Username == account.Username {
			return apperr.Conflict("Username is already taken")
		}
	}

	repo.nextID++
	account.ID = repo.nextID
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now
	repo.records[account.ID] = clone(account)
	return nil
}

func (repo *memoryAccountRepository) FindByID(_ context.Context, id int64) (*auth.Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if account, ok := repo.records[id]; ok {
		return clone(account), nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryAccountRepository) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, account := range repo.records {
		if account.Email == email {
			return clone(account), nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryAccountRepository) FindByUsername(_ context.Context, username string) (*auth.Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, account := range repo.records {
		if account.Username == username {
			return clone(account), nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryAccountRepository) FindBySessionToken(_ context.Context, token string) (*auth.Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, account := range repo.records {
		if account.SessionToken != nil && *account.SessionToken == token {
			return clone(account), nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryAccountRepository) Update(_ context.Context, account *auth.Account) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored, ok := repo.records[account.ID]
	if !ok {
		return apperr.NotFound("User")
	}
	for _, other := range repo.records {
		if other.ID != account.ID && other.Username == account.Username {
			return apperr.Conflict("Username is already taken")
		}
	}
	stored.Fullname = account.Fullname
	stored.Username = account.Username
	stored.UpdatedAt = time.Now()
	account.UpdatedAt = stored.UpdatedAt
	return nil
}

func (repo *memoryAccountRepository) SetSessionToken(_ context.Context, accountID int64, token *string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	account, ok := repo.records[accountID]
	if !ok {
		return apperr.NotFound("User")
	}
	if token != nil {
		value := *token
		account.SessionToken = &value
	} else {
		account.SessionToken = nil
	}
	account.UpdatedAt = time.Now()
	return nil
}

func (repo *memoryAccountRepository) SetVerificationToken(_ context.Context, accountID int64, token string, expiresAt time.Time) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	account, ok := repo.records[accountID]
	if !ok {
		return apperr.NotFound("User")
	}
	account.VerificationToken = &token
	account.VerificationTokenExpires = &expiresAt
	account.UpdatedAt = time.Now()
	return nil
}

func (repo *memoryAccountRepository) ConsumeVerificationToken(_ context.Context, token string) (*auth.Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, account := range repo.records {
		if account.VerificationToken == nil || *account.VerificationToken != token {
			continue
		}
		if account.VerificationTokenExpires == nil || !account.VerificationTokenExpires.After(time.Now()) {
			break
		}
		account.IsVerified = true
		account.VerificationToken = nil
		account.VerificationTokenExpires = nil
		account.UpdatedAt = time.Now()
		return clone(account), nil
	}
	return nil, apperr.NotFound("User")
}

// fakeMailer records dispatched verification emails and can be told to fail.
type fakeMailer struct {
	mu       sync.Mutex
	sent     []string // verification URLs, in dispatch order
	failWith error
}

func (mailer *fakeMailer) SendVerificationEmail(_ context.Context, _ *auth.Account, verificationURL string) error {
	mailer.mu.Lock()
	defer mailer.mu.Unlock()

	if mailer.failWith != nil {
		return mailer.failWith
	}
	mailer.sent = append(mailer.sent, verificationURL)
	return nil
}

func (mailer *fakeMailer) sentCount() int {
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	return len(mailer.sent)
}
