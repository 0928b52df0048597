package profileRoutes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	profileControllers "policyportal/controllers/profile"
	"policyportal/middleware"
	"policyportal/models"
	"policyportal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestProfileRoutes(t *testing.T) {
	db := testutil.DB(t)
	carer := testutil.SeedProfile(t, db, models.RoleCarer, "carer@example.com", "")
	token := testutil.Token(t, secret, carer.ID)

	app := fiber.New()
	SetupProfileRoutes(app, middleware.JWTMiddleware(secret, "", db), &profileControllers.Handler{DB: db})

	call := func(method, body string) (int, map[string]any) {
		t.Helper()
		req := httptest.NewRequest(method, "/me", strings.NewReader(body))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var out map[string]any
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
		return resp.StatusCode, out
	}

	status, resp := call("GET", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "carer@example.com", resp["data"].(map[string]any)["email"])
	assert.Equal(t, "carer", resp["data"].(map[string]any)["role"])

	status, resp = call("PATCH", `{"full_name":"  Sam Carer  ","role":"admin"}`)
	require.Equal(t, fiber.StatusOK, status, resp)
	assert.Equal(t, "Sam Carer", resp["data"].(map[string]any)["full_name"])
	assert.Equal(t, "carer", resp["data"].(map[string]any)["role"])

	status, resp = call("PATCH", `{"full_name":"   "}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, resp["data"].(map[string]any)["full_name"])

	status, _ = call("PATCH", `{"full_name":"`+strings.Repeat("x", 121)+`"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}
