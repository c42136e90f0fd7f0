// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kinora-dev/kinora/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error kind.
//
// # Classification
//
//  1. pgx.ErrNoRows            → NOT_FOUND for the named resource.
//  2. SQLSTATE 23505 (unique)  → CONFLICT with the violated field as detail.
//  3. Anything else            → STORE_UNAVAILABLE (never retried by the core).
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == pgerrcode.UniqueViolation {
		field, message := fieldFromConstraint(pgError.ConstraintName)
		return apperr.Conflict(message, apperr.FieldError{Field: field, Message: "Already in use"})
	}

	return apperr.StoreUnavailable(err)
}

// fieldFromConstraint maps a unique-constraint name (e.g. "account_email_key")
// to the column it protects. The constraint stays the authoritative guard
// against insert races; this mapping only makes the error precise.
func fieldFromConstraint(constraint string) (field, message string) {
	switch {
	case strings.Contains(constraint, "email"):
		return "email", "Email is already registered"
	case strings.Contains(constraint, "username"):
		return "username", "Username is already taken"
	default:
		return "resource", "Resource already exists"
	}
}
