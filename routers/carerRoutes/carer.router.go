package carerRoutes

import (
	carerControllers "policyportal/controllers/carer"
	"policyportal/middleware"
	"policyportal/models"
	validators "policyportal/validators/carerValidator"
	"policyportal/validators/common"

	"github.com/gofiber/fiber/v2"
)

func SetupCarerRoutes(app *fiber.App, auth fiber.Handler, h *carerControllers.Handler) {
	carer := app.Group("/carer", auth, middleware.RequireRole(models.RoleCarer))

	carer.Get("/documents", h.ListDocuments)
	carer.Get("/documents/:id", common.DocumentID(), h.GetDocument)
	carer.Post("/documents/:id/confirm", common.DocumentID(), validators.ConfirmRead(), h.ConfirmRead)
	carer.Post("/documents/:id/quiz", common.DocumentID(), validators.SubmitQuiz(), h.SubmitQuiz)
}
