package documentControllers

import (
	"policyportal/middleware"
	"policyportal/validators/documentValidator"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetQuiz(c *fiber.Ctx) error {
	doc, ok, err := h.loadDocument(c)
	if !ok {
		return err
	}
	questions, err := h.DB.ListQuizQuestions(c.UserContext(), doc.ID)
	if err != nil {
		return adminError(c, "Failed to fetch quiz", err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", questions)
}

// SaveQuiz replaces the document's whole question set in one transaction.
func (h *Handler) SaveQuiz(c *fiber.Ctx) error {
	doc, ok, err := h.loadDocument(c)
	if !ok {
		return err
	}
	reqData := c.Locals("validatedQuiz").(*documentValidator.SaveQuizRequest)

	saved, err := h.DB.ReplaceQuiz(c.UserContext(), doc.ID, reqData.Models())
	if err != nil {
		return adminError(c, "Failed to save quiz", err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz saved successfully!", saved)
}
