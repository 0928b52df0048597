package profileRoutes

import (
	profileControllers "policyportal/controllers/profile"
	validators "policyportal/validators/profileValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(app *fiber.App, auth fiber.Handler, h *profileControllers.Handler) {
	me := app.Group("/me", auth)

	me.Get("/", h.GetMe)
	me.Patch("/", validators.UpdateProfile(), h.UpdateMe)
}
