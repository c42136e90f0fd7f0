// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kinora-dev/kinora/internal/platform/apperr"
	"github.com/kinora-dev/kinora/internal/platform/ctxutil"
	"github.com/kinora-dev/kinora/internal/platform/sec"
)

// # Session Lifecycle

// SessionRegistry owns the bearer session lifecycle: issuance, server-side
// validation, and revocation.
//
// # Single Active Session
//
// Each account holds at most one live session. The stored session token on
// the account row is the authority: issuing a new token overwrites the old
// one, so a token that no longer matches the stored value is dead even if
// its signature and expiry are still intact.
type SessionRegistry struct {
	accounts AccountRepository
	codec    *sec.TokenCodec
	ttl      time.Duration
}

// NewSessionRegistry constructs a registry. A non-positive ttl falls back to
// [DefaultSessionTTL].
func NewSessionRegistry(accounts AccountRepository, codec *sec.TokenCodec, ttl time.Duration) *SessionRegistry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionRegistry{
		accounts: accounts,
		codec:    codec,
		ttl:      ttl,
	}
}

/*
Issue mints a signed session token for the account and stores it as the
account's single active session.

Description: The overwrite is one row-scoped write, so under concurrent
logins exactly one token survives as valid (last writer wins).

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - string: The signed bearer token
  - error: Signing or persistence failures
*/
func (registry *SessionRegistry) Issue(context context.Context, account *Account) (string, error) {
	token, err := registry.codec.Issue(account.ID, account.Email, account.Username, sec.PurposeSession, registry.ttl)
	if err != nil {
		return "", fmt.Errorf("session_registry_issue_failed: %w", err)
	}

	if err := registry.accounts.SetSessionToken(context, account.ID, &token); err != nil {
		return "", fmt.Errorf("session_registry_store_failed: %w", err)
	}

	return token, nil
}

/*
Validate performs the full server-side session check.

Description: Verifies signature, expiry, and purpose, then confirms the
presented token is the account's currently stored session. All rejection
reasons collapse into one Unauthorized outcome for the caller; the precise
reason is only logged server-side. Storage outages keep their own kind.

Parameters:
  - context: context.Context
  - token: string (bare token, any "Bearer " prefix already stripped)

Returns:
  - *Account: The session's account, freshly loaded
  - error: apperr.Unauthorized or storage failures
*/
func (registry *SessionRegistry) Validate(context context.Context, token string) (*Account, error) {
	logger := ctxutil.GetLogger(context)

	// ── 1. Cryptographic Check (signature, expiry, purpose) ───────────────
	claims, err := registry.codec.Verify(token, sec.PurposeSession)
	if err != nil {
		logger.DebugContext(context, "session_token_rejected", slog.String("reason", err.Error()))
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	// ── 2. Registry Check (stored token must match the presented one) ─────
	account, err := registry.accounts.FindBySessionToken(context, token)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			// Superseded by a later login, or revoked by logout.
			logger.DebugContext(context, "session_token_superseded", slog.Int64("user_id", claims.UserID))
			return nil, apperr.Unauthorized("Invalid or expired session")
		}
		return nil, err
	}

	// ── 3. Ownership Check ────────────────────────────────────────────────
	if account.ID != claims.UserID {
		logger.WarnContext(context, "session_token_owner_mismatch",
			slog.Int64("claims_user_id", claims.UserID),
			slog.Int64("stored_user_id", account.ID),
		)
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	return account, nil
}

/*
Revoke clears the account's active session, if any.

Description: Idempotent. Revoking an account with no live session is a no-op
success.

Parameters:
  - context: context.Context
  - accountID: int64

Returns:
  - error: Persistence failures
*/
func (registry *SessionRegistry) Revoke(context context.Context, accountID int64) error {
	if err := registry.accounts.SetSessionToken(context, accountID, nil); err != nil {
		return fmt.Errorf("session_registry_revoke_failed: %w", err)
	}
	return nil
}

/*
Authenticate resolves a bearer token into a verified caller identity.

Description: Adapter for the access guard middleware. Identity values come
from the stored account row at validation time, not from the token payload.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *sec.Identity: The verified identity
  - error: apperr.Unauthorized or storage failures
*/
func (registry *SessionRegistry) Authenticate(context context.Context, token string) (*sec.Identity, error) {
	account, err := registry.Validate(context, token)
	if err != nil {
		return nil, err
	}
	return account.Identity(), nil
}
