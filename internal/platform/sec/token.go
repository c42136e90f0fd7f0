// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, Token Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer behind small interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PurposeSession is the purpose tag embedded in bearer session tokens.
// A token minted for any other purpose is rejected at session validation.
const PurposeSession = "session"

// Codec verification failures. These are server-side diagnostics only;
// callers collapse all of them into a single Unauthorized outcome.
var (
	// ErrInvalidSignature means the MAC does not match (or the token is malformed).
	ErrInvalidSignature = errors.New("sec: invalid token signature")

	// ErrTokenExpired means the embedded expiry is in the past.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrWrongPurpose means the purpose tag does not match the call site's expectation.
	ErrWrongPurpose = errors.New("sec: wrong token purpose")
)

// SessionClaims represents the payload embedded inside a signed bearer token.
//
// # Why custom claims?
//
// Embedding the UserID, Email, and Username directly inside the token lets
// the access guard hand a verified identity to downstream handlers without a
// second lookup. Claim names are abbreviated to keep the token small.
type SessionClaims struct {
	jwt.RegisteredClaims

	UserID   int64  `json:"uid"`
	Email    string `json:"eml"`
	Username string `json:"unm"`
	Purpose  string `json:"pur"`
}

// TokenCodec mints and verifies self-contained, tamper-evident tokens.
//
// Tokens are signed with HMAC-SHA256 over the whole payload using a secret
// known only to the issuing process. Verification is deterministic and
// side-effect-free; revocation lives in the session registry, not here.
type TokenCodec struct {
	secret []byte
	issuer string
}

// NewTokenCodec creates a TokenCodec from the configured signing secret.
func NewTokenCodec(secret, issuer string) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("sec: signing secret must not be empty")
	}
	return &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// Issue produces a signed token carrying the identity payload, a purpose
// tag, and an expiry of now + timeToLive.
func (codec *TokenCodec) Issue(userID int64, email, username, purpose string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// A unique jti guarantees two tokens minted within the same
			// second for the same account are still distinct strings, so
			// re-login always supersedes the previous session token.
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", userID),
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID:   userID,
		Email:    email,
		Username: username,
		Purpose:  purpose,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the MAC, the embedded expiry, and the purpose tag.
//
// # Returns
//   - The decoded [*SessionClaims] on success.
//   - [ErrInvalidSignature], [ErrTokenExpired], or [ErrWrongPurpose] on failure.
func (codec *TokenCodec) Verify(tokenString, expectedPurpose string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return codec.secret, nil
	})

	if err != nil {
		// Expiry is checked by the parser; surface it as its own kind so the
		// registry can log expired-vs-forged distinctly.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSignature
	}

	if claims.Purpose != expectedPurpose {
		return nil, fmt.Errorf("%w: got %q", ErrWrongPurpose, claims.Purpose)
	}

	return claims, nil
}
