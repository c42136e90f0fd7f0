// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kinora-dev/kinora/internal/platform/apperr"
	"github.com/kinora-dev/kinora/internal/platform/ctxkey"
	"github.com/kinora-dev/kinora/internal/platform/ctxutil"
	"github.com/kinora-dev/kinora/internal/platform/respond"
	"github.com/kinora-dev/kinora/internal/platform/sec"
)

// SessionValidator resolves a presented bearer token into a verified identity.
//
// # Why an interface?
//
// Defining SessionValidator here decouples the guard from the session
// registry implementation, allowing us to easily inject fakes during unit
// testing. Validation is the full server-side check (signature, expiry,
// purpose, AND registry match), not a mere token decode.
type SessionValidator interface {
	Authenticate(ctx context.Context, token string) (*sec.Identity, error)
}

// Authenticate is the per-request access guard.
//
// # Flow
//
//  1. Read the Authorization header. If absent, the request proceeds as
//     anonymous ([RequireAuth] blocks anonymous access on protected routes).
//  2. Strip an optional "Bearer " prefix — a bare token is also accepted.
//     The dual format is deliberate and preserved from the original API
//     contract; flagged for product confirmation before tightening.
//  3. Validate the token via [SessionValidator].
//  4. Inject the verified [*sec.Identity] into the request context.
//
// On any validation failure the response is a stable, non-account-specific
// 401 message.
func Authenticate(validator SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Extraction (bare or Bearer-prefixed) ─────────────────
			token := strings.TrimPrefix(authHeader, "Bearer ")

			// ── 3. Full Session Validation ────────────────────────────────────
			identity, err := validator.Authenticate(request.Context(), token)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired session"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := context.WithValue(request.Context(), ctxkey.KeyUser, identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		identity := ctxutil.GetAuthUser(request.Context())
		if identity == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
