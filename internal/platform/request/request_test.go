// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

package requestutil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okoshkin/revu/internal/platform/apperr"
	"github.com/okoshkin/revu/internal/platform/ctxutil"
	requestutil "github.com/okoshkin/revu/internal/platform/request"
	"github.com/okoshkin/revu/internal/platform/sec"
)

func TestRequiredClaims(t *testing.T) {
	t.Run("anonymous request yields unauthorized", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)

		claims, err := requestutil.RequiredClaims(request)
		assert.Nil(t, claims)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apperr.As(err).HTTPStatus)
	})

	t.Run("authenticated request yields claims", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "u1", Username: "anna", Role: "user"})

		claims, err := requestutil.RequiredClaims(request.WithContext(ctx))
		require.NoError(t, err)
		require.NotNil(t, claims)
		assert.Equal(t, "anna", claims.Username)
	})
}
