// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"codeberg.org/skillnaav/portal/internal/i18n"
	"codeberg.org/skillnaav/portal/internal/middleware"
	"codeberg.org/skillnaav/portal/internal/testutil"
)

func TestLocale(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{"", "en"},
		{"de-DE,de;q=0.9", "de"},
		{"fr-FR", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			e := echo.New()
			var got string
			e.GET("/", func(c echo.Context) error {
				got = i18n.GetLocale(c.Request().Context())
				return c.NoContent(http.StatusOK)
			}, middleware.Locale())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Accept-Language", tt.header)
			}
			e.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLocale_Direct(t *testing.T) {
	e := echo.New()
	c, _ := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/", nil, map[string]string{
		"Accept-Language": "de",
	})

	var got string
	err := middleware.Locale()(func(c echo.Context) error {
		got = i18n.GetLocale(c.Request().Context())
		return nil
	})(c)

	assert.NoError(t, err)
	assert.Equal(t, "de", got)
}
