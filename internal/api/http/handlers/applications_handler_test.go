package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apihttp "github.com/cffrank/jobmatchAI-sub016/internal/api/http"
	"github.com/cffrank/jobmatchAI-sub016/internal/api/http/handlers"
	"github.com/cffrank/jobmatchAI-sub016/internal/auth"
	"github.com/cffrank/jobmatchAI-sub016/internal/config"
	"github.com/cffrank/jobmatchAI-sub016/internal/events"
	"github.com/cffrank/jobmatchAI-sub016/internal/observability"
	"github.com/cffrank/jobmatchAI-sub016/internal/repository"
	"github.com/cffrank/jobmatchAI-sub016/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
	}

	appRepo := repository.NewMemoryApplicationRepository()
	userRepo := repository.NewMemoryUserRepository()
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg, userRepo)
	applicationService := service.NewApplicationService(appRepo, dispatcher)
	statusService := service.NewStatusService(appRepo, dispatcher, zap.NewNop())
	queryService := service.NewQueryService(appRepo)

	app := fiber.New()
	apihttp.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	apihttp.RegisterRoutes(app, apihttp.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "test", nil, nil),
		Users:          handlers.NewUsersHandler(authService),
		Applications:   handlers.NewApplicationsHandler(applicationService, statusService, queryService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), userRepo),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}
	return resp, parsed
}

func registerOwner(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/auth/users/register", "", map[string]any{
		"name":     "Jordan",
		"email":    email,
		"password": "hunter2-hunter2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func createApplication(t *testing.T, app *fiber.App, token string) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/applications", token, map[string]any{
		"job_title": "Backend Engineer",
		"company":   "Acme",
		"location":  "Berlin",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["data"].(map[string]any)["id"].(string)
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %v", body)
	return errObj["code"].(string)
}

func TestApplications_RequireAuth(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/applications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))

	resp, body = doJSON(t, app, http.MethodGet, "/applications", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))
}

func TestApplications_CreateAndFetch(t *testing.T) {
	app := newTestApp(t)
	token := registerOwner(t, app, "jordan@example.com")

	id := createApplication(t, app, token)

	resp, body := doJSON(t, app, http.MethodGet, "/applications/"+id, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "applied", data["status"])
	assert.Equal(t, "active", data["category"])
	history := data["status_history"].([]any)
	require.Len(t, history, 1)
	assert.Equal(t, "applied", history[0].(map[string]any)["status"])
}

func TestApplications_StatusLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := registerOwner(t, app, "jordan@example.com")
	id := createApplication(t, app, token)

	resp, body := doJSON(t, app, http.MethodPatch, "/applications/"+id+"/status", token, map[string]any{
		"status": "screening",
		"note":   "recruiter call booked",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "screening", data["status"])
	history := data["status_history"].([]any)
	require.Len(t, history, 2)
	last := history[1].(map[string]any)
	assert.Equal(t, "screening", last["status"])
	assert.Equal(t, "recruiter call booked", last["note"])

	// accepted is not reachable from screening
	resp, body = doJSON(t, app, http.MethodPatch, "/applications/"+id+"/status", token, map[string]any{
		"status": "accepted",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, body))

	// repeating the current status is rejected, not silently absorbed
	resp, body = doJSON(t, app, http.MethodPatch, "/applications/"+id+"/status", token, map[string]any{
		"status": "screening",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "NO_OP", errorCode(t, body))

	resp, body = doJSON(t, app, http.MethodPatch, "/applications/"+id+"/status", token, map[string]any{
		"status": "ghosted",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))
}

func TestApplications_NotesUpdateLeavesStatusAlone(t *testing.T) {
	app := newTestApp(t)
	token := registerOwner(t, app, "jordan@example.com")
	id := createApplication(t, app, token)

	resp, body := doJSON(t, app, http.MethodPatch, "/applications/"+id+"/notes", token, map[string]any{
		"notes": "asked for feedback",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "asked for feedback", data["notes"])
	assert.Equal(t, "applied", data["status"])
	assert.Len(t, data["status_history"].([]any), 1)
}

func TestApplications_ListFilters(t *testing.T) {
	app := newTestApp(t)
	token := registerOwner(t, app, "jordan@example.com")
	first := createApplication(t, app, token)
	second := createApplication(t, app, token)

	resp, _ := doJSON(t, app, http.MethodPatch, "/applications/"+second+"/status", token, map[string]any{
		"status": "rejected",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/applications?category=negative", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, second, items[0].(map[string]any)["id"])

	resp, body = doJSON(t, app, http.MethodGet, "/applications?status=applied", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items = body["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, first, items[0].(map[string]any)["id"])

	resp, body = doJSON(t, app, http.MethodGet, "/applications?category=archived", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))
}

func TestApplications_OwnersAreIsolated(t *testing.T) {
	app := newTestApp(t)
	ownerToken := registerOwner(t, app, "jordan@example.com")
	otherToken := registerOwner(t, app, "sam@example.com")
	id := createApplication(t, app, ownerToken)

	resp, body := doJSON(t, app, http.MethodGet, "/applications/"+id, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	resp, body = doJSON(t, app, http.MethodPatch, "/applications/"+id+"/status", otherToken, map[string]any{
		"status": "screening",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func TestApplications_Delete(t *testing.T) {
	app := newTestApp(t)
	token := registerOwner(t, app, "jordan@example.com")
	id := createApplication(t, app, token)

	resp, _ := doJSON(t, app, http.MethodDelete, "/applications/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/applications/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func TestUsers_RegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	registerOwner(t, app, "jordan@example.com")

	resp, body := doJSON(t, app, http.MethodPost, "/auth/users/register", "", map[string]any{
		"name":     "Jordan",
		"email":    "jordan@example.com",
		"password": "another-password",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))

	resp, body = doJSON(t, app, http.MethodPost, "/auth/users/login", "", map[string]any{
		"email":    "jordan@example.com",
		"password": "hunter2-hunter2",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)
	assert.NotEmpty(t, token)

	resp, body = doJSON(t, app, http.MethodPost, "/auth/users/login", "", map[string]any{
		"email":    "jordan@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))
}

func TestHealth_Live(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])
}
