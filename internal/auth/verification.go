// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/kinora-dev/kinora/internal/platform/apperr"
	"github.com/kinora-dev/kinora/internal/platform/sec"
)

// # Email Verification Tokens

// VerificationTokenManager issues and consumes single-use email
// verification tokens.
//
// Tokens are opaque 256-bit random values stored on the account row, so the
// row is the only place a token can be checked against. Issuing a new token
// replaces the previous one; consuming is atomic and single-use.
type VerificationTokenManager struct {
	accounts AccountRepository
}

// NewVerificationTokenManager constructs a manager over the account store.
func NewVerificationTokenManager(accounts AccountRepository) *VerificationTokenManager {
	return &VerificationTokenManager{accounts: accounts}
}

/*
Issue generates a fresh verification token for the account and persists it
with a 24 hour expiry.

Parameters:
  - context: context.Context
  - accountID: int64

Returns:
  - string: The freshly minted token (to embed in the email link)
  - error: Generation or persistence failures
*/
func (manager *VerificationTokenManager) Issue(context context.Context, accountID int64) (string, error) {
	token, err := sec.GenerateSecureToken(VerificationTokenLength)
	if err != nil {
		return "", fmt.Errorf("verification_token_generate_failed: %w", err)
	}

	expiresAt := time.Now().Add(VerificationTokenTTL)
	if err := manager.accounts.SetVerificationToken(context, accountID, token, expiresAt); err != nil {
		return "", fmt.Errorf("verification_token_store_failed: %w", err)
	}

	return token, nil
}

/*
Consume redeems a verification token, marking the matching account verified.

Description: Unknown, expired, and already-used tokens are indistinguishable
to the caller. Storage outages keep their own error kind so the client sees
503 rather than a misleading "invalid token".

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *Account: The verified account
  - error: apperr.InvalidToken or storage failures
*/
func (manager *VerificationTokenManager) Consume(context context.Context, token string) (*Account, error) {
	if token == "" {
		return nil, apperr.InvalidToken()
	}

	account, err := manager.accounts.ConsumeVerificationToken(context, token)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return nil, apperr.InvalidToken()
		}
		return nil, err
	}

	return account, nil
}
