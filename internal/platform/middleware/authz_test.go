// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okoshkin/revu/internal/platform/ctxutil"
	"github.com/okoshkin/revu/internal/platform/middleware"
	"github.com/okoshkin/revu/internal/platform/sec"
)

// fakeVerifier accepts a single known token string.
type fakeVerifier struct {
	token  string
	claims *sec.AuthClaims
}

func (f *fakeVerifier) VerifyToken(tokenStr string) (*sec.AuthClaims, error) {
	if tokenStr != f.token {
		return nil, errors.New("signature mismatch")
	}
	return f.claims, nil
}

func TestAuthenticate(t *testing.T) {
	verifier := &fakeVerifier{
		token:  "good-token",
		claims: &sec.AuthClaims{UserID: "u1", Username: "anna", Role: "user"},
	}

	// The terminal handler reports what the middleware resolved.
	var seen *sec.AuthClaims
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = middleware.GetUser(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
	wrapped := middleware.Authenticate(verifier)(next)

	t.Run("no header passes through anonymous", func(t *testing.T) {
		seen = nil
		recorder := httptest.NewRecorder()
		wrapped.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Nil(t, seen)
	})

	t.Run("valid token injects claims", func(t *testing.T) {
		seen = nil
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer good-token")
		recorder := httptest.NewRecorder()
		wrapped.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "anna", seen.Username)
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		seen = nil
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer forged")
		recorder := httptest.NewRecorder()
		wrapped.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Nil(t, seen)
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "good-token")
		recorder := httptest.NewRecorder()
		wrapped.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	reached := false
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		reached = true
		writer.WriteHeader(http.StatusOK)
	})
	wrapped := middleware.RequireAuth(next)

	t.Run("anonymous blocked with 401", func(t *testing.T) {
		reached = false
		recorder := httptest.NewRecorder()
		wrapped.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, reached)
	})

	t.Run("authenticated passes", func(t *testing.T) {
		reached = false
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "u1", Username: "anna", Role: "user"})
		recorder := httptest.NewRecorder()
		wrapped.ServeHTTP(recorder, request.WithContext(ctx))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, reached)
	})
}
