package carerValidator

import (
	"policyportal/middleware"
	"policyportal/validators/common"

	"github.com/gofiber/fiber/v2"
)

type ConfirmReadRequest struct {
	Acknowledged bool `json:"acknowledged"`
}

// ConfirmRead requires the explicit "I have read and understood" checkbox.
func ConfirmRead() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ConfirmReadRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if !reqData.Acknowledged {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"acknowledged": "You must confirm you have read and understood this document!",
			})
		}
		c.Locals("validatedConfirm", reqData)
		return c.Next()
	}
}

type SubmitQuizRequest struct {
	Answers map[string]int `json:"answers" validate:"required,min=1,dive,keys,uuid,endkeys,min=0,max=3"`
}

func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitQuizRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors := common.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedQuizSubmission", reqData)
		return c.Next()
	}
}
