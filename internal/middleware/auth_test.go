package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arnold/okrs-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	prev := Secret
	Secret = "test-secret"
	t.Cleanup(func() { Secret = prev })

	app := fiber.New()
	app.Get("/whoami", Protected(), func(c *fiber.Ctx) error {
		s := GetScope(c)
		return c.JSON(fiber.Map{"userId": s.UserID, "role": s.Role, "hasDept": s.DepartmentID != nil})
	})
	app.Get("/admin", Protected(), RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func request(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestProtected(t *testing.T) {
	app := newApp(t)
	dept := uuid.New()
	token, err := GenerateToken(uuid.New(), models.RoleManager, &dept, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, request(t, app, "/whoami", token))
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/whoami", ""))
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/whoami", "garbage"))

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRejectsForeignSignature(t *testing.T) {
	app := newApp(t)
	claims := Claims{
		UserID: uuid.New(),
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/whoami", forged))
}

func TestProtectedRejectsExpired(t *testing.T) {
	app := newApp(t)
	claims := Claims{
		UserID: uuid.New(),
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/whoami", expired))
}

func TestRequireRole(t *testing.T) {
	app := newApp(t)
	admin, err := GenerateToken(uuid.New(), models.RoleAdmin, nil, time.Hour)
	require.NoError(t, err)
	member, err := GenerateToken(uuid.New(), models.RoleMember, nil, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, request(t, app, "/admin", admin))
	assert.Equal(t, fiber.StatusForbidden, request(t, app, "/admin", member))
}
