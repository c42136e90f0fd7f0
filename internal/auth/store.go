// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

package auth

import (
	"context"
	"time"
)

// # Account Data Access

// AccountRepository defines the data access contract for user accounts.
//
// All token state (session and verification) lives on the account row itself,
// so the row is the single source of truth for an account's credentials.
type AccountRepository interface {

	/*
		Create persists a brand-new account and assigns its immutable ID.

		Parameters:
		  - context: context.Context
		  - account: *Account (ID, CreatedAt, UpdatedAt are populated on return)

		Returns:
		  - error: Conflict on duplicate email/username, or persistence failures
	*/
	Create(context context.Context, account *Account) error

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *Account: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id int64) (*Account, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Account: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *Account: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*Account, error)

	/*
		FindBySessionToken returns the account whose stored session token
		equals the given value. Used for server-side session validation.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *Account: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindBySessionToken(context context.Context, token string) (*Account, error)

	/*
		Update persists changes to the account's mutable profile fields
		(fullname, username).

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: Conflict on duplicate username, or persistence failures
	*/
	Update(context context.Context, account *Account) error

	/*
		SetSessionToken overwrites the stored session token in a single
		row-scoped write. Passing nil clears the active session.

		Parameters:
		  - context: context.Context
		  - accountID: int64
		  - token: *string (nil to revoke)

		Returns:
		  - error: NotFound or persistence failures
	*/
	SetSessionToken(context context.Context, accountID int64, token *string) error

	/*
		SetVerificationToken stores a fresh verification challenge on the
		account row, replacing any previous one.

		Parameters:
		  - context: context.Context
		  - accountID: int64
		  - token: string
		  - expiresAt: time.Time

		Returns:
		  - error: NotFound or persistence failures
	*/
	SetVerificationToken(context context.Context, accountID int64, token string, expiresAt time.Time) error

	/*
		ConsumeVerificationToken atomically marks the matching account as
		verified and clears the token state, in one conditional UPDATE. A
		token that is unknown, already used, or past its expiry matches no
		row. Concurrent calls with the same token can succeed at most once.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - *Account: The verified account, post-update
		  - error: NotFound when no live token matches, or persistence failures
	*/
	ConsumeVerificationToken(context context.Context, token string) (*Account, error)
}
