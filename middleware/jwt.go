package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"policyportal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	localUserID  = "userId"
	localProfile = "profile"
)

// ProfileLoader resolves the token subject to a stored profile.
type ProfileLoader interface {
	GetProfile(ctx context.Context, id uuid.UUID) (models.Profile, error)
}

// JWTMiddleware verifies the identity provider's HS256 bearer token, loads the
// subject's profile and stores both in the request locals. It never issues
// tokens. An empty audience skips the audience check.
func JWTMiddleware(secret, audience string, profiles ProfileLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get the token from the Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header!", nil)
		}

		// The token should be prefixed with "Bearer "
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Authorization header format!", nil)
		}
		tokenString := strings.TrimSpace(authHeader[len("Bearer "):])

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token!", nil)
		}
		if audience != "" && !claims.VerifyAudience(audience, true) {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid token audience!", nil)
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid token payload!", nil)
		}

		profile, err := profiles.GetProfile(c.UserContext(), userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Profile not found!", nil)
		}
		if err != nil {
			zap.L().Error("load profile", zap.String("user_id", userID.String()), zap.Error(err))
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load profile!", nil)
		}

		c.Locals(localUserID, userID)
		c.Locals(localProfile, profile)
		return c.Next()
	}
}

// CurrentProfile returns the profile stored by JWTMiddleware.
func CurrentProfile(c *fiber.Ctx) (models.Profile, bool) {
	p, ok := c.Locals(localProfile).(models.Profile)
	return p, ok
}

func CurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(localUserID).(uuid.UUID)
	return id, ok
}

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}
