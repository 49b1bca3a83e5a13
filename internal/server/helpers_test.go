package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"ladle/internal/config"
	"ladle/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:             "test",
		Port:            "0",
		JWTSecret:       "unit-test-secret-0123456789abcdef",
		MediaDir:        t.TempDir(),
		MaxUploadSizeMB: 10,
		TokenTTLHours:   1,
	}
}

// newTestApp builds a routed Fiber app over an in-memory database. Redis is
// optional; most tests run without it.
func newTestApp(t *testing.T, redisClient *redis.Client) (*fiber.App, *Server) {
	t.Helper()

	db, err := database.ConnectSQLite("")
	require.NoError(t, err)

	srv, err := NewServerWithDeps(testConfig(t), db, redisClient)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return app, srv
}

// doJSON issues a JSON request, optionally authenticated, and returns the
// response with its decoded body.
func doJSON(t *testing.T, app *fiber.App, method, url, token string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, url, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func decodeJSON[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return out
}

var userCounter int

// registerAndLogin registers a fresh user and returns their token.
func registerAndLogin(t *testing.T, app *fiber.App) (string, string) {
	t.Helper()

	userCounter++
	email := fmt.Sprintf("user%d@example.com", userCounter)

	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/users/register", "", fiber.Map{
		"email":    email,
		"password": "testpass123",
		"name":     "Test User",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, "body: %s", raw)

	resp, raw = doJSON(t, app, fiber.MethodPost, "/api/users/token", "", fiber.Map{
		"email":    email,
		"password": "testpass123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "body: %s", raw)

	body := decodeJSON[map[string]string](t, raw)
	require.NotEmpty(t, body["token"])
	return body["token"], email
}

// uploadImage posts a multipart form with the given field name and file.
func uploadImage(t *testing.T, app *fiber.App, url, token, field, filename string, content []byte) (*http.Response, []byte) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, url, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}
