// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

package auth

import "time"

// # Authentication Constraints

const (
	// DefaultSessionTTL is the fallback session lifetime when the deployment
	// does not configure one. A week balances convenience against exposure,
	// given that each account holds at most one live session.
	DefaultSessionTTL = 7 * 24 * time.Hour

	// VerificationTokenTTL is the duration an email verification token
	// remains valid. Long-lived (24 hours) as users might not check email
	// immediately.
	VerificationTokenTTL = 24 * time.Hour

	// VerificationTokenLength is the byte length of the random verification
	// token. 32 bytes of entropy, rendered as 64 hex characters.
	VerificationTokenLength = 32

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6

	// MaxNameLength bounds fullname and username input.
	MaxNameLength = 100
)
