// Copyright (c) 2026 Kinora. All rights reserved.
// Author: hello@kinora.dev

// HTTP delivery layer for profile management.
//
// # Security
//
// All endpoints in this package require an active session provided by the
// RequireAuth middleware.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kinora-dev/kinora/internal/platform/middleware"
	requestutil "github.com/kinora-dev/kinora/internal/platform/request"
	"github.com/kinora-dev/kinora/internal/platform/respond"
	"github.com/kinora-dev/kinora/internal/platform/validate"
)

// Handler implements the HTTP layer for profile management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account endpoints.
//
// # Endpoints
//   - GET   /me : The caller's sanitized profile.
//   - PATCH /me : Partial profile update.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/me", handler.getMe)
	router.Patch("/me", handler.updateMe)

	return router
}

// # Profile Endpoints

/*
GetMe retrieves the authenticated caller's profile.

GET /api/v1/me

Response:
  - 200: Profile: Sanitized profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// updateMeRequest defines the expected JSON payload for profile updates.
type updateMeRequest struct {
	Fullname *string `json:"fullname"`
	Username *string `json:"username"`
}

/*
UpdateMe applies partial updates to the caller's profile.

PATCH /api/v1/me

Request:
  - Body: updateMeRequest (Partial JSON)

Response:
  - 200: Profile: The updated profile
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
  - 409: ErrConflict: Username already taken
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	profile, err := handler.accountService.UpdateProfile(request.Context(), accountID, UpdateProfileInput{
		Fullname: input.Fullname,
		Username: input.Username,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}
