// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

// PostgreSQL implementation of the account storage contract.
//
// # Architecture
//
// The repository is strictly separated from domain logic. It implements the
// domain-defined [AccountRepository] interface using the [pgxpool.Pool]
// connection manager.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, SQLSTATE 23505) are mapped to
// domain-friendly [apperr.AppError] kinds via dberr.Wrap, so callers branch
// on error codes instead of SQL details.

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kinora-dev/kinora/internal/platform/dberr"
)

const accountColumns = `
	id, fullname, username, email, passwordhash,
	isverified, verificationtoken, verificationtokenexpires,
	sessiontoken, createdat, updatedat`

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of the AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// scanAccount hydrates a full Account from a row matching accountColumns order.
func scanAccount(row interface{ Scan(dest ...any) error }) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Fullname,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.IsVerified,
		&account.VerificationToken,
		&account.VerificationTokenExpires,
		&account.SessionToken,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

/*
Create persists a new account record into the users.account table.

Description: The database assigns the immutable numeric ID; the generated
ID and timestamps are written back onto the entity.

Parameters:
  - context: context.Context
  - account: *Account (Entity to persist)

Returns:
  - error: Conflict on duplicate email/username, or connectivity errors
*/
func (repository *PostgresAccountRepository) Create(context context.Context, account *Account) error {
	const query = `
		INSERT INTO users.account (
			fullname, username, email, passwordhash, isverified,
			verificationtoken, verificationtokenexpires, sessiontoken,
			createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, createdat, updatedat`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	err := repository.pool.QueryRow(context, query,
		account.Fullname,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.IsVerified,
		account.VerificationToken,
		account.VerificationTokenExpires,
		account.SessionToken,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_account_repo_create_failed: %w", err), "User")
	}

	return nil
}

/*
FindByID retrieves an account record by its unique ID.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id int64) (*Account, error) {
	const query = `
		SELECT` + accountColumns + `
		FROM users.account
		WHERE id = $1`

	account, err := scanAccount(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_account_repo_find_by_id_failed: %w", err), "User")
	}

	return account, nil
}

/*
FindByEmail retrieves an account record by its unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	const query = `
		SELECT` + accountColumns + `
		FROM users.account
		WHERE email = $1`

	account, err := scanAccount(repository.pool.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_account_repo_find_by_email_failed: %w", err), "User")
	}

	return account, nil
}

/*
FindByUsername retrieves an account record by its unique username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByUsername(context context.Context, username string) (*Account, error) {
	const query = `
		SELECT` + accountColumns + `
		FROM users.account
		WHERE username = $1`

	account, err := scanAccount(repository.pool.QueryRow(context, query, username))
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_account_repo_find_by_username_failed: %w", err), "User")
	}

	return account, nil
}

/*
FindBySessionToken retrieves the account whose stored session token equals
the given value.

Description: The lookup reads the current stored value, so a token that was
superseded by a later login or cleared by logout matches no row.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindBySessionToken(context context.Context, token string) (*Account, error) {
	const query = `
		SELECT` + accountColumns + `
		FROM users.account
		WHERE sessiontoken = $1`

	account, err := scanAccount(repository.pool.QueryRow(context, query, token))
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_account_repo_find_by_session_token_failed: %w", err), "User")
	}

	return account, nil
}

/*
Update persists changes to an account's mutable profile fields.

Description: Synchronizes fullname and username with the database, refreshing
the updatedat timestamp. The unique constraint on username remains the
authoritative guard against rename races.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: Conflict on duplicate username, or update failures
*/
func (repository *PostgresAccountRepository) Update(context context.Context, account *Account) error {
	const query = `
		UPDATE users.account
		SET fullname = $2, username = $3, updatedat = $4
		WHERE id = $1`

	account.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Fullname,
		account.Username,
		account.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_account_repo_update_failed: %w", err), "User")
	}

	return nil
}

/*
SetSessionToken overwrites the stored session token for an account.

Description: A single row-scoped UPDATE. Under concurrent logins the last
write wins and only that token remains valid, which is exactly the
single-active-session behavior.

Parameters:
  - context: context.Context
  - accountID: int64
  - token: *string (nil clears the session)

Returns:
  - error: Execution errors
*/
func (repository *PostgresAccountRepository) SetSessionToken(context context.Context, accountID int64, token *string) error {
	const query = `
		UPDATE users.account
		SET sessiontoken = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, accountID, token, time.Now())
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_account_repo_set_session_token_failed: %w", err), "User")
	}

	return nil
}

/*
SetVerificationToken stores a fresh verification challenge on the account row.

Description: Replaces any previous token, so only the most recently issued
verification link works.

Parameters:
  - context: context.Context
  - accountID: int64
  - token: string
  - expiresAt: time.Time

Returns:
  - error: Execution errors
*/
func (repository *PostgresAccountRepository) SetVerificationToken(context context.Context, accountID int64, token string, expiresAt time.Time) error {
	const query = `
		UPDATE users.account
		SET verificationtoken = $2, verificationtokenexpires = $3, updatedat = $4
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, accountID, token, expiresAt, time.Now())
	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_account_repo_set_verification_token_failed: %w", err), "User")
	}

	return nil
}

/*
ConsumeVerificationToken atomically verifies the account holding a live token.

Description: One conditional UPDATE guards single use. The WHERE clause
matches only an unexpired, still-present token; the same statement flips
isverified and clears the token state, so a second consume of the same token
(or a concurrent one) matches zero rows.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *Account: The account, post-update
  - error: apperr.NotFound when no live token matches, or execution errors
*/
func (repository *PostgresAccountRepository) ConsumeVerificationToken(context context.Context, token string) (*Account, error) {
	const query = `
		UPDATE users.account
		SET isverified = TRUE,
			verificationtoken = NULL,
			verificationtokenexpires = NULL,
			updatedat = NOW()
		WHERE verificationtoken = $1
			AND verificationtokenexpires > NOW()
		RETURNING` + accountColumns

	account, err := scanAccount(repository.pool.QueryRow(context, query, token))
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("postgres_account_repo_consume_verification_token_failed: %w", err), "User")
	}

	return account, nil
}
