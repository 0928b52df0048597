package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that only lets profiles with the given
// role through. It must run after JWTMiddleware.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, ok := CurrentProfile(c)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User not found!", nil)
		}
		if profile.Role != role {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}
		return c.Next()
	}
}
