package adminRoutes

import (
	reportControllers "policyportal/controllers/reports"

	"github.com/gofiber/fiber/v2"
)

func setupReportRoutes(admin fiber.Router, h *reportControllers.Handler) {
	admin.Get("/dashboard", h.Dashboard)
	admin.Get("/users", h.Users)
	admin.Get("/reports", h.Reports)
	admin.Get("/reports/export", h.ExportCSV)
}
