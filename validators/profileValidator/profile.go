package profileValidator

import (
	"strings"

	"policyportal/middleware"
	"policyportal/validators/common"

	"github.com/gofiber/fiber/v2"
)

type UpdateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=120"`
}

// UpdateProfile accepts only the display name; a blank name clears it.
func UpdateProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateProfileRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.FullName != nil {
			name := strings.TrimSpace(*reqData.FullName)
			if name == "" {
				reqData.FullName = nil
			} else {
				reqData.FullName = &name
			}
		}
		if errors := common.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedProfile", reqData)
		return c.Next()
	}
}
