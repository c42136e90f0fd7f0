// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

// HTTP delivery layer for the authentication lifecycle.
//
// # Architecture
//
// The handler acts as a thin mediation layer between the web and the domain
// service:
//   - Protocol: Standard RESTful JSON interface.
//   - Security: Session tokens travel in the Authorization header only;
//     nothing auth-related is stored in cookies.
//   - Verification: Input validation lives in [Service] so that no transport
//     can bypass it.
//
// This layer is strictly responsible for transport concerns (status codes,
// query parameters, JSON envelopes).

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kinora-dev/kinora/internal/platform/apperr"
	"github.com/kinora-dev/kinora/internal/platform/middleware"
	requestutil "github.com/kinora-dev/kinora/internal/platform/request"
	"github.com/kinora-dev/kinora/internal/platform/respond"
	"github.com/kinora-dev/kinora/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /register            : Creates a new unverified account.
//   - POST /login               : Authenticates and returns a session token.
//   - GET  /verify-email        : Redeems the emailed verification link.
//   - POST /resend-verification : Reissues the verification email.
//   - POST /refresh             : Rotates the session token.
//   - POST /logout              : Revokes the active session (protected).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Get("/verify-email", handler.verifyEmail)
	router.Post("/resend-verification", handler.resendVerification)
	router.Post("/refresh", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Fullname string `json:"fullname"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resendVerificationRequest struct {
	Email string `json:"email"`
}

type refreshRequest struct {
	SessionToken string `json:"session_token"`
}

/*
Register handles the creation of a new account.

POST /api/v1/auth/register

Description: Persists an unverified account and triggers the verification
email. The response never includes a session token; login requires a
verified email first.

Request:
  - Body: registerRequest (Fullname, Username, Email, Password)

Response:
  - 201: Profile: Created account
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	profile, err := handler.authService.Register(request.Context(), RegisterInput{
		Fullname: input.Fullname,
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{
		FieldMessage: "Registration successful. Please check your email to verify your account.",
		FieldUser:    profile,
	})
}

/*
Login authenticates a user and establishes the single active session.

POST /api/v1/auth/login

Description: Verifies credentials and verification status, then issues a
signed bearer token that supersedes any previous session.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: LoginSession: Session token and profile
  - 401: ErrInvalidCredentials: Unknown email or wrong password
  - 403: ErrNotVerified: Email not verified yet
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldSessionToken: session.SessionToken,
		FieldUser:         session.User,
	})
}

/*
Logout revokes the caller's active session.

POST /api/v1/auth/logout

Description: Clears the stored session token server-side. The presented
bearer token (and any copy of it) stops validating immediately.

Response:
  - 204: No Content: Session revoked
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), accountID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
Refresh rotates the session token.

POST /api/v1/auth/refresh

Description: Validates the presented token end to end and replaces it with a
fresh one. The previous token stops validating the moment the new one is
stored.

Request:
  - Body: refreshRequest (SessionToken)

Response:
  - 200: LoginSession: Rotated session token and profile
  - 401: ErrUnauthorized: Invalid or expired session
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.SessionToken == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing session token"))
		return
	}

	session, err := handler.authService.RefreshSession(request.Context(), input.SessionToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldSessionToken: session.SessionToken,
		FieldUser:         session.User,
	})
}

/*
VerifyEmail redeems the verification link from the email.

GET /api/v1/auth/verify-email?token=...

Description: The endpoint is a GET because the link lands here straight from
the user's mail client. The token is single-use; a second click reports it
invalid.

Response:
  - 200: Success: Email verified
  - 400: ErrInvalidToken: Unknown, expired, or already used token
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	token := request.URL.Query().Get(FieldToken)

	profile, err := handler.authService.VerifyEmail(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldMessage: "Email verified successfully",
		FieldUser:    profile,
	})
}

/*
ResendVerification reissues the verification email.

POST /api/v1/auth/resend-verification

Description: Replaces the pending token and sends a fresh link. Transport
failures are surfaced here (unlike during registration) because this endpoint
exists to recover from exactly that situation.

Request:
  - Body: resendVerificationRequest (Email)

Response:
  - 200: Success: Verification email sent
  - 404: ErrNotFound: No account with this email
  - 409: ErrAlreadyVerified: Account already verified
  - 502: ErrEmailTransport: Email could not be delivered
*/
func (handler *Handler) resendVerification(writer http.ResponseWriter, request *http.Request) {
	var input resendVerificationRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResendVerificationEmail(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Verification email sent",
	})
}
