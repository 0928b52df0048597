package adminRoutes

import (
	documentControllers "policyportal/controllers/documents"
	reportControllers "policyportal/controllers/reports"
	"policyportal/middleware"
	"policyportal/models"
	"policyportal/validators/common"
	validators "policyportal/validators/documentValidator"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes registers every admin route behind one auth and role check.
func SetupAdminRoutes(app *fiber.App, auth fiber.Handler, documents *documentControllers.Handler, reports *reportControllers.Handler) {
	admin := app.Group("/admin", auth, middleware.RequireRole(models.RoleAdmin))

	setupDocumentRoutes(admin, documents)
	setupReportRoutes(admin, reports)
}

func setupDocumentRoutes(admin fiber.Router, h *documentControllers.Handler) {
	documents := admin.Group("/documents")
	documents.Post("/", validators.CreateDocument(), h.CreateDocument)
	documents.Get("/", h.ListDocuments)
	documents.Get("/:id", common.DocumentID(), h.GetDocument)
	documents.Patch("/:id", common.DocumentID(), validators.UpdateDocument(), h.UpdateDocument)
	documents.Post("/:id/status", common.DocumentID(), validators.ChangeStatus(), h.ChangeStatus)
	documents.Post("/:id/enhance", common.DocumentID(), h.EnhanceDocument)
	documents.Get("/:id/quiz", common.DocumentID(), h.GetQuiz)
	documents.Put("/:id/quiz", common.DocumentID(), validators.SaveQuiz(), h.SaveQuiz)
	documents.Post("/:id/remind", common.DocumentID(), h.SendReminders)
	documents.Post("/:id/notify", common.DocumentID(), h.ResendNotifications)

	admin.Post("/extract-text", validators.UploadedFile(), h.ExtractText)
}
