// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

/*
Package auth implements the core account and session management flows.

It handles registration with mandatory email verification, password login
issuing server-validated bearer sessions, session refresh with rotation, and
logout.

Architecture:

  - Service: Orchestrates the flows (Register, Login, VerifyEmail, Refresh).
  - SessionRegistry: Owns token issuance and the single-active-session rule.
  - VerificationTokenManager: Owns the single-use verification challenge.
  - Repository: Abstracted interface over the PostgreSQL account store.

The package ensures that identity data remains consistent and secure
throughout the platform's lifecycle.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kinora-dev/kinora/internal/platform/apperr"
	"github.com/kinora-dev/kinora/internal/platform/ctxutil"
	"github.com/kinora-dev/kinora/internal/platform/sec"
	"github.com/kinora-dev/kinora/internal/platform/validate"
)

// # Definitions & Constructors

// Service implements the account lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing,
// registration, or login logic must be reviewed carefully.
type Service struct {
	accounts      AccountRepository
	sessions      *SessionRegistry
	verifications *VerificationTokenManager
	mailer        EmailSender
	baseURL       string
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	accounts AccountRepository,
	sessions *SessionRegistry,
	verifications *VerificationTokenManager,
	mailer EmailSender,
	baseURL string,
) *Service {
	return &Service{
		accounts:      accounts,
		sessions:      sessions,
		verifications: verifications,
		mailer:        mailer,
		baseURL:       baseURL,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Fullname string
	Username string
	Email    string
	Password string
}

/*
Register validates, hashes, and persists a brand new account.

Description: The account starts unverified with a pending verification token.
Email dispatch is best effort: a transport failure is logged and swallowed so
the created account survives (the resend endpoint recovers from it).

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Profile: Created account, sanitized
  - error: Validation, Conflict (if identity exists), or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Profile, error) {

	// ── 1. Input Validation (nothing is persisted on failure) ─────────────
	validator := &validate.Validator{}
	validator.Required(FieldFullname, input.Fullname).
		MaxLen(FieldFullname, input.Fullname, MaxNameLength).
		Required(FieldUsername, input.Username).
		MaxLen(FieldUsername, input.Username, MaxNameLength).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. Uniqueness Pre-Checks ──────────────────────────────────────────
	// The database unique constraints remain the authoritative guard; these
	// lookups just produce precise client-safe Conflict errors.
	if err := service.checkIdentityAvailable(context, input.Email, input.Username); err != nil {
		return nil, err
	}

	// ── 3. Credential Hashing ─────────────────────────────────────────────
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 4. Persistence ────────────────────────────────────────────────────
	account := &Account{
		Fullname:     input.Fullname,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		IsVerified:   false,
	}

	if err := service.accounts.Create(context, account); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// ── 5. Verification Challenge (best effort) ───────────────────────────
	service.dispatchVerification(context, account)

	return account.Profile(), nil
}

// checkIdentityAvailable rejects the registration if either identifier is
// taken. Storage outages during the lookups fail the request rather than
// being mistaken for "available".
func (service *Service) checkIdentityAvailable(context context.Context, email, username string) error {
	_, err := service.accounts.FindByEmail(context, email)
	if err == nil {
		return apperr.Conflict("Email is already registered",
			apperr.FieldError{Field: FieldEmail, Message: "Already in use"})
	}
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		return err
	}

	_, err = service.accounts.FindByUsername(context, username)
	if err == nil {
		return apperr.Conflict("Username is already taken",
			apperr.FieldError{Field: FieldUsername, Message: "Already in use"})
	}
	if !apperr.IsCode(err, apperr.CodeNotFound) {
		return err
	}

	return nil
}

// dispatchVerification issues a token and sends the verification email.
// Failures are logged and swallowed; registration itself already succeeded.
func (service *Service) dispatchVerification(context context.Context, account *Account) {
	logger := ctxutil.GetLogger(context)

	token, err := service.verifications.Issue(context, account.ID)
	if err != nil {
		logger.WarnContext(context, "verification_token_issue_failed",
			slog.Int64("user_id", account.ID),
			slog.Any("error", err),
		)
		return
	}

	link := VerificationURL(service.baseURL, token)
	if err := service.mailer.SendVerificationEmail(context, account, link); err != nil {
		logger.WarnContext(context, "verification_email_dispatch_failed",
			slog.Int64("user_id", account.ID),
			slog.Any("error", err),
		)
	}
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginSession represents a successfully established session.
type LoginSession struct {
	SessionToken string
	User         *Profile
}

/*
Login validates credentials and issues the account's single active session.

Description: The password is checked before the verification status, so a
wrong password on an unverified account reports INVALID_CREDENTIALS, not
NOT_VERIFIED. An unknown email and a wrong password share one identical
message to prevent account enumeration.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session token and profile
  - error: InvalidCredentials, NotVerified, or storage failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 1. Account Lookup ─────────────────────────────────────────────────
	account, err := service.accounts.FindByEmail(context, input.Email)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return nil, apperr.InvalidCredentials()
		}
		return nil, err
	}

	// ── 2. Password Check (constant-time comparison inside bcrypt) ────────
	if !sec.CheckPasswordHash(input.Password, account.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	// ── 3. Verification Gate ──────────────────────────────────────────────
	if !account.IsVerified {
		return nil, apperr.NotVerified()
	}

	// ── 4. Session Issuance (supersedes any previous session) ─────────────
	token, err := service.sessions.Issue(context, account)
	if err != nil {
		return nil, fmt.Errorf("auth_service_login_failed: %w", err)
	}

	return &LoginSession{
		SessionToken: token,
		User:         account.Profile(),
	}, nil
}

/*
Logout revokes the caller's active session.

Description: Idempotent; logging out with no live session still succeeds.

Parameters:
  - context: context.Context
  - accountID: int64

Returns:
  - error: Persistence failures
*/
func (service *Service) Logout(context context.Context, accountID int64) error {
	if err := service.sessions.Revoke(context, accountID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// # Session Refresh

/*
RefreshSession rotates the caller's session token.

Description: The presented token goes through the full server-side validation
(signature, expiry, purpose, registry match) before a fresh token is issued.
Issuing the new token invalidates the old one.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *LoginSession: The rotated session token and profile
  - error: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, token string) (*LoginSession, error) {
	account, err := service.sessions.Validate(context, token)
	if err != nil {
		return nil, err
	}

	newToken, err := service.sessions.Issue(context, account)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_failed: %w", err)
	}

	return &LoginSession{
		SessionToken: newToken,
		User:         account.Profile(),
	}, nil
}

// # Email Verification

/*
VerifyEmail confirms an account's email address using a single-use token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *Profile: The verified account, sanitized
  - error: apperr.InvalidToken or storage failures
*/
func (service *Service) VerifyEmail(context context.Context, token string) (*Profile, error) {
	account, err := service.verifications.Consume(context, token)
	if err != nil {
		return nil, err
	}
	return account.Profile(), nil
}

/*
ResendVerificationEmail reissues the verification challenge for an account.

Description: Unlike registration, a transport failure here is surfaced to the
caller: resending exists precisely to recover from a lost email, so a
swallowed failure would leave the user stuck.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: NotFound, AlreadyVerified, EmailTransport, or storage failures
*/
func (service *Service) ResendVerificationEmail(context context.Context, email string) error {
	account, err := service.accounts.FindByEmail(context, email)
	if err != nil {
		return err
	}

	if account.IsVerified {
		return apperr.AlreadyVerified()
	}

	// Reissue replaces the previous token; only the newest link works.
	token, err := service.verifications.Issue(context, account.ID)
	if err != nil {
		return fmt.Errorf("auth_service_resend_issue_failed: %w", err)
	}

	link := VerificationURL(service.baseURL, token)
	if err := service.mailer.SendVerificationEmail(context, account, link); err != nil {
		return apperr.EmailTransport(err)
	}

	return nil
}
