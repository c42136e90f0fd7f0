// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

/*
Package account provides profile management for authenticated users.

It sits on top of the auth domain's account store: the auth package owns the
credential lifecycle, while this package owns the read/update surface of the
profile itself.
*/
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kinora-dev/kinora/internal/auth"
	"github.com/kinora-dev/kinora/internal/platform/apperr"
	"github.com/kinora-dev/kinora/internal/platform/ctxutil"
	"github.com/kinora-dev/kinora/internal/platform/validate"
)

// # Service Layer

// Service orchestrates business logic for profile reads and updates.
type Service struct {
	accounts auth.AccountRepository
}

// NewService constructs a new [Service] over the account store.
func NewService(accounts auth.AccountRepository) *Service {
	return &Service{accounts: accounts}
}

// # Profile Management

/*
GetProfile retrieves the sanitized profile of an account.

Parameters:
  - context: context.Context
  - accountID: int64

Returns:
  - *auth.Profile: The sanitized profile
  - error: NotFound or storage failures
*/
func (service *Service) GetProfile(context context.Context, accountID int64) (*auth.Profile, error) {
	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}
	return account.Profile(), nil
}

// UpdateProfileInput defines the mutable subset of profile fields. Nil
// pointers mean "leave unchanged".
type UpdateProfileInput struct {
	Fullname *string
	Username *string
}

/*
UpdateProfile applies a partial set of changes to the caller's profile.

Description: Fetches the existing state, overlays the provided fields, and
persists the result. A username change is rejected when another account
already holds the requested name; keeping one's own current username is not
a collision.

Parameters:
  - context: context.Context
  - accountID: int64
  - input: UpdateProfileInput

Returns:
  - *auth.Profile: The updated profile
  - error: Validation, Conflict, NotFound, or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, accountID int64, input UpdateProfileInput) (*auth.Profile, error) {

	// ── 1. Input Validation ───────────────────────────────────────────────
	validator := &validate.Validator{}
	if input.Fullname != nil {
		validator.Required(auth.FieldFullname, *input.Fullname).
			MaxLen(auth.FieldFullname, *input.Fullname, auth.MaxNameLength)
	}
	if input.Username != nil {
		validator.Required(auth.FieldUsername, *input.Username).
			MaxLen(auth.FieldUsername, *input.Username, auth.MaxNameLength)
	}
	validator.Custom("profile", input.Fullname == nil && input.Username == nil,
		"At least one field must be provided")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. Load Current State ─────────────────────────────────────────────
	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}

	// ── 3. Username Collision Check ───────────────────────────────────────
	if input.Username != nil && *input.Username != account.Username {
		existing, err := service.accounts.FindByUsername(context, *input.Username)
		if err == nil && existing.ID != accountID {
			return nil, apperr.Conflict("Username is already taken",
				apperr.FieldError{Field: auth.FieldUsername, Message: "Already in use"})
		}
		if err != nil && !apperr.IsCode(err, apperr.CodeNotFound) {
			return nil, err
		}
	}

	// ── 4. Overlay & Persist ──────────────────────────────────────────────
	if input.Fullname != nil {
		account.Fullname = *input.Fullname
	}
	if input.Username != nil {
		account.Username = *input.Username
	}

	if err := service.accounts.Update(context, account); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_profile_updated",
		slog.Int64("user_id", accountID))

	return account.Profile(), nil
}
