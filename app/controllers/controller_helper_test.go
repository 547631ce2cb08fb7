package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazos-app/lazos-api/internal/pkg/lifecycle"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		wantIPv4 string
		wantIPv6 string
	}{
		{
			name:     "cloudflare ipv4 header",
			headers:  map[string]string{"CF-Connecting-IP": "203.0.113.10"},
			wantIPv4: "203.0.113.10",
		},
		{
			name: "cloudflare ipv6 with forwarded ipv4 backup",
			headers: map[string]string{
				"CF-Connecting-IP": "2001:db8::1",
				"X-Forwarded-For":  "198.51.100.7, 10.0.0.1",
			},
			wantIPv4: "198.51.100.7",
			wantIPv6: "2001:db8::1",
		},
		{
			name:     "forwarded-for takes first entry",
			headers:  map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.1"},
			wantIPv4: "198.51.100.7",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			var gotIPv4, gotIPv6 string
			app.Get("/", func(c *fiber.Ctx) error {
				gotIPv4, gotIPv6 = GetClientIP(c)
				return c.SendStatus(fiber.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
			assert.Equal(t, tc.wantIPv4, gotIPv4)
			assert.Equal(t, tc.wantIPv6, gotIPv6)
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantOffset int
		wantLimit  int
	}{
		{name: "defaults", query: "", wantOffset: 0, wantLimit: defaultPageSize},
		{name: "second page", query: "page=2&limit=10", wantOffset: 10, wantLimit: 10},
		{name: "limit is capped", query: "limit=1000", wantOffset: 0, wantLimit: maxPageSize},
		{name: "garbage falls back", query: "page=x&limit=y", wantOffset: 0, wantLimit: defaultPageSize},
		{name: "negative page falls back", query: "page=-3", wantOffset: 0, wantLimit: defaultPageSize},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			var gotOffset, gotLimit int
			app.Get("/", func(c *fiber.Ctx) error {
				gotOffset, gotLimit = parsePagination(c)
				return c.SendStatus(fiber.StatusNoContent)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
			assert.Equal(t, tc.wantOffset, gotOffset)
			assert.Equal(t, tc.wantLimit, gotLimit)
		})
	}
}

func TestLifecycleErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "not found", err: lifecycle.ErrNotFound, wantStatus: fiber.StatusNotFound},
		{name: "invalid target", err: lifecycle.ErrInvalidTarget, wantStatus: fiber.StatusConflict},
		{name: "already terminal", err: lifecycle.ErrAlreadyTerminal, wantStatus: fiber.StatusConflict},
		{name: "action in progress", err: lifecycle.ErrActionInProgress, wantStatus: fiber.StatusConflict},
		{name: "unknown error", err: assert.AnError, wantStatus: fiber.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return lifecycleError(c, tc.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}
