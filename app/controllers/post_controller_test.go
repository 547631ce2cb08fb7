package controllers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazos-app/lazos-api/internal/pkg/moderation"
)

func newPostApp(t *testing.T) *fiber.App {
	t.Helper()
	engine = moderation.NewEngine(moderation.NewClassifier(moderation.NewSkinToneModel(), nil))
	t.Cleanup(func() { engine = nil })

	app := fiber.New()
	app.Post("/posts", HandleCreatePost)
	return app
}

func newPostRequest(t *testing.T, fields map[string]string, imageCount int) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for i := 0; i < imageCount; i++ {
		part, err := w.CreateFormFile("images", "photo.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("not-a-real-image"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/posts", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func validPostFields() map[string]string {
	return map[string]string{
		"description":   "Vi un perro marrón cerca de la plaza, parecía perdido",
		"animal_type":   "dog",
		"size":          "medium",
		"latitude":      "-34.6037",
		"longitude":     "-58.3816",
		"sighting_date": "2026-08-20",
	}
}

func TestCreatePostRejectsBadDate(t *testing.T) {
	app := newPostApp(t)

	fields := validPostFields()
	fields["sighting_date"] = "20-08-2026"

	resp, err := app.Test(newPostRequest(t, fields, 1), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreatePostRequiresImages(t *testing.T) {
	app := newPostApp(t)

	resp, err := app.Test(newPostRequest(t, validPostFields(), 0), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreatePostRejectsTooManyImages(t *testing.T) {
	app := newPostApp(t)

	resp, err := app.Test(newPostRequest(t, validPostFields(), maxImagesPerPost+1), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestResolveSightingDate(t *testing.T) {
	parsed, err := resolveSightingDate("2026-08-20", nil)
	require.NoError(t, err)
	assert.Equal(t, 2026, parsed.Year())

	_, err = resolveSightingDate("20/08/2026", nil)
	assert.Error(t, err)

	// no date given and no usable EXIF falls back to the current day
	fallback, err := resolveSightingDate("", [][]byte{[]byte("junk")})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), fallback, time.Minute)
}

func TestModerationNote(t *testing.T) {
	assert.Empty(t, moderationNote(nil))
	assert.Equal(t, "una razón", moderationNote([]string{"una razón"}))
	assert.Equal(t, "una razón; otra razón",
		moderationNote([]string{"una razón", "otra razón"}))

	long := moderationNote([]string{strings.Repeat("á", 600)})
	assert.Len(t, []rune(long), 500)
}

// Text that fails validation is rejected before any image work happens, so
// the junk image bytes never reach the classifier.
func TestCreatePostRejectsInvalidText(t *testing.T) {
	app := newPostApp(t)

	fields := validPostFields()
	fields["description"] = "Este perro de mierda no me gusta para nada"

	resp, err := app.Test(newPostRequest(t, fields, 1), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "validation_failed")
	assert.Contains(t, string(body), "lenguaje inapropiado")
}
