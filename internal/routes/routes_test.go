package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/installed"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/practicesync"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminToken = "test-admin-token"

func newApp(t *testing.T) *fiber.App {
	t.Helper()

	plugins := installed.Plugins()
	db := dbtest.New(t, apps.AllModels(plugins)...)
	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
		AdminToken:       adminToken,
	}
	registry := curriculum.Default()

	admins := services.NewAdminNotificationService(db)
	auth := services.NewAuthService(db, cfg, admins)
	notifications := services.NewNotificationService(db)
	practice := services.NewPracticeService(db)
	leaderboard := services.NewLeaderboard(db, nil)
	progress := services.NewProgressService(db, registry, leaderboard, apps.ProgressSources(plugins)...)
	syncer := practicesync.NewSyncer(db, apps.PracticeSources(plugins)...)

	app := fiber.New()
	Setup(app, cfg, db, registry, Handlers{
		Auth:          handlers.NewAuthHandler(auth),
		Health:        handlers.NewHealthHandler(db, registry),
		Notifications: handlers.NewNotificationHandler(notifications),
		Practice:      handlers.NewPracticeHandler(practice, progress),
		Progress:      handlers.NewProgressHandler(progress, leaderboard),
		Admin:         handlers.NewAdminHandler(admins, auth, practice, syncer),
	}, plugins, &apps.Deps{
		DB: db, Config: cfg, Registry: registry, Notifications: notifications, Progress: progress, Syncer: syncer,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func register(t *testing.T, app *fiber.App, name, email string) dto.AuthResponse {
	t.Helper()
	resp := call(t, app, "POST", "/api/auth/register", "", dto.RegisterRequest{Name: name, Email: email, Password: "pw12345678"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var out dto.AuthResponse
	decode(t, resp, &out)
	return out
}

func TestHealth(t *testing.T) {
	app := newApp(t)

	resp := call(t, app, "GET", "/api/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out dto.HealthResponse
	decode(t, resp, &out)
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, 7, out.Categories)
}

func TestAuthFlow(t *testing.T) {
	app := newApp(t)

	auth := register(t, app, "Jane Doe", "jane@x.com")
	assert.NotEmpty(t, auth.Token)
	assert.NotEmpty(t, auth.RefreshToken)
	assert.Equal(t, "Jane Doe", auth.User.Name)
	assert.Equal(t, "jane@x.com", auth.User.Email)

	resp := call(t, app, "POST", "/api/auth/register", "", dto.RegisterRequest{Name: "Jane", Email: "JANE@x.com", Password: "pw12345678"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var dup dto.ErrorResponse
	decode(t, resp, &dup)
	assert.Contains(t, dup.Errors, "email")

	resp = call(t, app, "POST", "/api/auth/login", "", dto.LoginRequest{Email: "jane@x.com", Password: "wrong-password"})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	var bad dto.ErrorResponse
	decode(t, resp, &bad)
	assert.Equal(t, "Invalid email or password", bad.Message)

	resp = call(t, app, "GET", "/api/auth/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = call(t, app, "GET", "/api/auth/me", auth.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var me dto.UserResponse
	decode(t, resp, &me)
	assert.Equal(t, auth.User.ID, me.ID)

	resp = call(t, app, "GET", "/api/auth/google", "", nil)
	assert.Equal(t, fiber.StatusNotImplemented, resp.StatusCode)
}

func TestTierActivityFeedsProgress(t *testing.T) {
	app := newApp(t)
	auth := register(t, app, "Kid", "kid@x.com")

	resp := call(t, app, "POST", "/api/kids/vocabulary", auth.Token, map[string]interface{}{
		"category": "young_kids", "text": "apple", "attempts": 1, "best_score": 90,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = call(t, app, "GET", "/api/progress/young_kids", auth.Token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var row struct {
		Category    string `json:"category"`
		TotalPoints int    `json:"total_points"`
	}
	decode(t, resp, &row)
	assert.Equal(t, "young_kids", row.Category)
	assert.Equal(t, 25, row.TotalPoints)

	resp = call(t, app, "GET", "/api/progress/astrophysics", auth.Token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = call(t, app, "GET", "/api/kids/lessons?category=business_english", auth.Token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdminAccess(t *testing.T) {
	app := newApp(t)
	auth := register(t, app, "Learner", "learner@x.com")

	resp := call(t, app, "POST", "/api/admin/practice/sync?dry_run=true", auth.Token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = call(t, app, "POST", "/api/admin/practice/sync?dry_run=true", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("POST", "/api/admin/practice/sync?dry_run=true", nil)
	req.Header.Set("X-Admin-Token", adminToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var report practicesync.Report
	decode(t, resp, &report)
	assert.True(t, report.DryRun)
	assert.Equal(t, 0, report.Failed)

	req = httptest.NewRequest("GET", "/api/admin/practice/export", nil)
	req.Header.Set("X-Admin-Token", adminToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")

	// New registrations raise an admin notification.
	req = httptest.NewRequest("GET", "/api/admin/notifications", nil)
	req.Header.Set("X-Admin-Token", adminToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list struct {
		Total int64 `json:"total"`
	}
	decode(t, resp, &list)
	assert.Equal(t, int64(1), list.Total)
}
