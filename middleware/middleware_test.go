package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"policyportal/models"
	"policyportal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

func newApp(t *testing.T) (*fiber.App, models.Profile, models.Profile) {
	db := testutil.DB(t)
	admin := testutil.SeedProfile(t, db, models.RoleAdmin, "admin@example.com", "Admin")
	carer := testutil.SeedProfile(t, db, models.RoleCarer, "carer@example.com", "Carer")

	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop()))
	auth := JWTMiddleware(secret, "", db)
	app.Get("/me", auth, func(c *fiber.Ctx) error {
		p, _ := CurrentProfile(c)
		return JsonResponse(c, fiber.StatusOK, true, "ok", p.Email)
	})
	app.Get("/admin", auth, RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return JsonResponse(c, fiber.StatusOK, true, "ok", nil)
	})
	return app, admin, carer
}

func do(t *testing.T, app *fiber.App, path, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestJWTMiddleware(t *testing.T) {
	app, admin, _ := newApp(t)

	status, body := do(t, app, "/me", testutil.Token(t, secret, admin.ID))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "admin@example.com", body["data"])

	status, _ = do(t, app, "/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = do(t, app, "/me", testutil.Token(t, "other-secret", admin.ID))
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = do(t, app, "/me", testutil.Token(t, secret, uuid.New()))
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, false, body["status"])
}

func TestJWTMiddlewareRejectsExpired(t *testing.T) {
	app, admin, _ := newApp(t)
	claims := jwt.RegisteredClaims{
		Subject:   admin.ID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	status, _ := do(t, app, "/me", expired)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestJWTMiddlewareAudience(t *testing.T) {
	db := testutil.DB(t)
	admin := testutil.SeedProfile(t, db, models.RoleAdmin, "admin@example.com", "")
	app := fiber.New()
	app.Get("/me", JWTMiddleware(secret, "authenticated", db), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+testutil.Token(t, secret, admin.ID))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	claims := jwt.RegisteredClaims{
		Subject:   admin.ID.String(),
		Audience:  jwt.ClaimStrings{"authenticated"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	app, admin, carer := newApp(t)

	status, _ := do(t, app, "/admin", testutil.Token(t, secret, admin.ID))
	assert.Equal(t, fiber.StatusOK, status)

	status, body := do(t, app, "/admin", testutil.Token(t, secret, carer.ID))
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "You do not have permission to access this resource!", body["message"])
}
