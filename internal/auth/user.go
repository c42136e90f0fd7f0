// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

/*
Package auth implements the account identity and session lifecycle layer.

It defines the core domain entity (Account) and the logic for registration,
email verification, login, session issuance, and per-request validation.

# Architecture

This layer is the "Truth" of the system. The Account entity carries every
credential-bearing field; the sanitized Profile projection is the only shape
that ever crosses the API boundary.
*/
package auth

import (
	"time"

	"github.com/kinora-dev/kinora/internal/platform/sec"
)

// # Domain Entities

// Account represents a registered member of the Kinora platform.
//
// The entity is never serialized directly. Handlers must go through
// [Account.Profile] so that the password hash, the session token, and the
// verification token state cannot leak into a response body.
type Account struct {
	// ID is assigned by the database on insert and never changes afterwards.
	ID           int64
	Fullname     string
	Username     string
	Email        string
	PasswordHash string

	// IsVerified gates login. A freshly registered account starts unverified.
	IsVerified bool

	// VerificationToken and VerificationTokenExpires hold the pending
	// email-verification challenge. Both are nil once the account is verified.
	VerificationToken        *string
	VerificationTokenExpires *time.Time

	// SessionToken is the single currently valid bearer token for this
	// account, or nil when no session is active. Issuing a new session
	// overwrites it, which invalidates the previous token server-side.
	SessionToken *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile is the client-safe projection of an [Account].
type Profile struct {
	ID         int64     `json:"id"`
	Fullname   string    `json:"fullname"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Profile returns the sanitized projection of the account.
func (account *Account) Profile() *Profile {
	return &Profile{
		ID:         account.ID,
		Fullname:   account.Fullname,
		Username:   account.Username,
		Email:      account.Email,
		IsVerified: account.IsVerified,
		CreatedAt:  account.CreatedAt,
		UpdatedAt:  account.UpdatedAt,
	}
}

// Identity returns the verified caller identity used by the access guard.
// The values come from the stored row, not from any token payload.
func (account *Account) Identity() *sec.Identity {
	return &sec.Identity{
		UserID:   account.ID,
		Email:    account.Email,
		Username: account.Username,
	}
}

// # Field Identifiers

// Global field names for validation and response mapping in the auth domain.
const (
	FieldFullname     = "fullname"
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldToken        = "token"
	FieldSessionToken = "session_token"
	FieldUser         = "user"
	FieldMessage      = "message"
)
