// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/okoshkin/revu/internal/platform/request"
	"github.com/okoshkin/revu/internal/platform/respond"
)

// Handler exposes the authentication endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a new auth Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the auth endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/email", handler.requestCode)
	router.Post("/token", handler.exchangeToken)
}

type requestCodePayload struct {
	Email string `json:"email"`
}

type exchangeTokenPayload struct {
	Email            string `json:"email"`
	ConfirmationCode string `json:"confirmation_code"`
}

/*
requestCode handles POST /auth/email.

Description: Requests a sign-in code for an email address, enrolling the
account on first contact. Always responds 200 on success so the endpoint
does not reveal whether the email was already registered.
*/
func (handler *Handler) requestCode(writer http.ResponseWriter, request *http.Request) {

	// Decode the payload
	var payload requestCodePayload
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Delegate to the service
	if err := handler.service.RequestCode(request.Context(), payload.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Acknowledge without leaking account state
	respond.OK(writer, map[string]string{
		"message": "A confirmation code has been sent to the address",
	})
}

/*
exchangeToken handles POST /auth/token.

Description: Exchanges a valid (email, confirmation_code) pair for a signed
JWT access token.
*/
func (handler *Handler) exchangeToken(writer http.ResponseWriter, request *http.Request) {

	// Decode the payload
	var payload exchangeTokenPayload
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Delegate to the service
	result, err := handler.service.ExchangeToken(request.Context(), payload.Email, payload.ConfirmationCode)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Return the signed token
	respond.OK(writer, result)
}
