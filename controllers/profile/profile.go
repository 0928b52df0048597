package profileControllers

import (
	"policyportal/database"
	"policyportal/middleware"
	"policyportal/validators/profileValidator"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	DB database.DbInstance
}

func (h *Handler) GetMe(c *fiber.Ctx) error {
	profile, _ := middleware.CurrentProfile(c)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", profile)
}

// UpdateMe changes the display name, the only field a user may edit.
func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedProfile").(*profileValidator.UpdateProfileRequest)

	profile, err := h.DB.UpdateProfileName(c.UserContext(), userID, reqData.FullName)
	if err != nil {
		zap.L().Error("update profile", zap.String("user_id", userID.String()), zap.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully!", profile)
}
