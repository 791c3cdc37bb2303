package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, secret string, sub uuid.UUID, email string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub.String(),
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func status(t *testing.T, app *fiber.App, path string, headers map[string]string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func ok(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

func TestKnownCategory(t *testing.T) {
	app := fiber.New()
	app.Get("/progress/:category", KnownCategory(curriculum.Default()), func(c *fiber.Ctx) error {
		cat := c.Locals("category").(*curriculum.Category)
		return c.SendString(cat.Tier)
	})

	assert.Equal(t, fiber.StatusOK, status(t, app, "/progress/teen_pro", nil))
	assert.Equal(t, fiber.StatusNotFound, status(t, app, "/progress/chess", nil))
}

func TestTierCategory(t *testing.T) {
	app := fiber.New()
	app.Get("/lessons", TierCategory(curriculum.Default(), curriculum.TierAdults), ok)

	assert.Equal(t, fiber.StatusOK, status(t, app, "/lessons", nil))
	assert.Equal(t, fiber.StatusOK, status(t, app, "/lessons?category=ielts_pte", nil))
	assert.Equal(t, fiber.StatusBadRequest, status(t, app, "/lessons?category=young_kids", nil))
	assert.Equal(t, fiber.StatusBadRequest, status(t, app, "/lessons?category=nope", nil))
}

func TestAdminRequired(t *testing.T) {
	db := dbtest.New(t)
	cfg := &config.Config{JWTSecret: "secret", AdminEmails: "Boss@Example.com", AdminToken: "tok"}

	admin := models.User{Name: "Admin", Email: "admin@example.com", Password: "x", Role: models.RoleAdmin, IsActive: true}
	learner := models.User{Name: "Learner", Email: "learner@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&admin).Error)
	require.NoError(t, db.Create(&learner).Error)

	app := fiber.New()
	app.Get("/admin", AdminTokenOrJWT(cfg), AdminRequired(db, cfg), func(c *fiber.Ctx) error {
		if AdminID(c) == nil {
			return c.SendString("token")
		}
		return c.SendString(AdminID(c).String())
	})

	bearer := func(token string) map[string]string {
		return map[string]string{"Authorization": "Bearer " + token}
	}

	assert.Equal(t, fiber.StatusOK, status(t, app, "/admin", map[string]string{"X-Admin-Token": "tok"}))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "/admin", map[string]string{"X-Admin-Token": "wrong"}))
	assert.Equal(t, fiber.StatusOK, status(t, app, "/admin", bearer(sign(t, "secret", admin.ID, admin.Email))))
	assert.Equal(t, fiber.StatusOK, status(t, app, "/admin", bearer(sign(t, "secret", uuid.New(), "boss@example.com"))))
	assert.Equal(t, fiber.StatusForbidden, status(t, app, "/admin", bearer(sign(t, "secret", learner.ID, learner.Email))))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "/admin", bearer(sign(t, "other", admin.ID, admin.Email))))

	require.NoError(t, db.Model(&admin).Update("is_active", false).Error)
	assert.Equal(t, fiber.StatusForbidden, status(t, app, "/admin", bearer(sign(t, "secret", admin.ID, admin.Email))))
}
