package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReportApp() *fiber.App {
	app := fiber.New()
	app.Post("/reports", HandleCreateReport)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// The request validation rejects malformed reports before any storage lookup
// happens, so these run without a database.
func TestCreateReportRequestValidation(t *testing.T) {
	app := newReportApp()

	tests := []struct {
		name string
		body string
	}{
		{
			name: "both targets set",
			body: `{"post_id":"5f0c9d70-61c8-4c4e-9f76-5c83986d61f0","alert_id":"9b8e7b70-95ff-4fd9-8f0f-b7efea63cf39","reason":"spam"}`,
		},
		{
			name: "no target set",
			body: `{"reason":"spam"}`,
		},
		{
			name: "unknown reason",
			body: `{"post_id":"5f0c9d70-61c8-4c4e-9f76-5c83986d61f0","reason":"dislike"}`,
		},
		{
			name: "missing reason",
			body: `{"post_id":"5f0c9d70-61c8-4c4e-9f76-5c83986d61f0"}`,
		},
		{
			name: "reason other without description",
			body: `{"post_id":"5f0c9d70-61c8-4c4e-9f76-5c83986d61f0","reason":"other"}`,
		},
		{
			name: "target is not a uuid",
			body: `{"post_id":"42","reason":"spam"}`,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, app, "/reports", tc.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}
