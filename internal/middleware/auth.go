package middleware

import (
	"os"
	"strings"
	"time"

	"github.com/arnold/okrs-api/internal/models"
	"github.com/arnold/okrs-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Secret signs and verifies tokens. Empty falls back to JWT_SECRET.
var Secret string

type Claims struct {
	UserID       uuid.UUID  `json:"userId"`
	Role         string     `json:"role"`
	DepartmentID *uuid.UUID `json:"departmentId,omitempty"`
	jwt.RegisteredClaims
}

func secret() string {
	if Secret != "" {
		return Secret
	}
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return "your-secret-key-change-in-production"
}

// GenerateToken issues a token carrying the caller's role and department.
func GenerateToken(userID uuid.UUID, role string, departmentID *uuid.UUID, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	claims := Claims{
		UserID:       userID,
		Role:         role,
		DepartmentID: departmentID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret()))
}

func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		// Extract token from "Bearer <token>"
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization format",
			})
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret()), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || claims.UserID == uuid.Nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token claims",
			})
		}
		if claims.Role == "" {
			claims.Role = models.RoleMember
		}

		c.Locals("userId", claims.UserID)
		c.Locals("role", claims.Role)
		c.Locals("departmentId", claims.DepartmentID)

		return c.Next()
	}
}

// RequireRole rejects callers whose role is not in roles. Must run after Protected.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) uuid.UUID {
	userID, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

// GetScope returns the caller identity used for visibility checks.
func GetScope(c *fiber.Ctx) services.Scope {
	role, _ := c.Locals("role").(string)
	dept, _ := c.Locals("departmentId").(*uuid.UUID)
	return services.Scope{UserID: GetUserID(c), Role: role, DepartmentID: dept}
}
