package httpapi

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

func testApp(t *testing.T, h fiber.Handler) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/t", h)
	return app
}

func decodeError(t *testing.T, body io.Reader) errorPayload {
	t.Helper()
	var p errorPayload
	require.NoError(t, json.NewDecoder(body).Decode(&p))
	return p
}

func TestApiErrorNotFound(t *testing.T) {
	app := testApp(t, func(c *fiber.Ctx) error {
		return apiError(c, ports.ErrProjectNotFound)
	})
	res, err := app.Test(httptest.NewRequest("GET", "/t", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, res.Body).Error.Code)
}

func TestApiErrorInvalidTransition(t *testing.T) {
	app := testApp(t, func(c *fiber.Ctx) error {
		return apiError(c, &ports.InvalidTransitionError{ProjectID: 3, From: domain.StatusDraft, Op: "start"})
	})
	res, err := app.Test(httptest.NewRequest("GET", "/t", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, res.StatusCode)

	payload := decodeError(t, res.Body)
	assert.Equal(t, "INVALID_TRANSITION", payload.Error.Code)
	assert.Contains(t, payload.Error.Message, "cannot start project 3")
}

func TestApiErrorChunking(t *testing.T) {
	app := testApp(t, func(c *fiber.Ctx) error {
		return apiError(c, &ports.ChunkingError{Reason: "content is not valid UTF-8"})
	})
	res, err := app.Test(httptest.NewRequest("GET", "/t", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, res.StatusCode)
	assert.Equal(t, "CHUNKING_FAILED", decodeError(t, res.Body).Error.Code)
}

func TestApiErrorInternalHidesDetails(t *testing.T) {
	app := testApp(t, func(c *fiber.Ctx) error {
		return apiError(c, assert.AnError)
	})
	res, err := app.Test(httptest.NewRequest("GET", "/t", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, res.StatusCode)

	payload := decodeError(t, res.Body)
	assert.NotContains(t, payload.Error.Message, assert.AnError.Error())
}
