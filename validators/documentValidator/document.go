package documentValidator

import (
	"mime/multipart"
	"strings"
	"time"

	"policyportal/middleware"
	"policyportal/models"
	"policyportal/validators/common"

	"github.com/gofiber/fiber/v2"
)

type CreateDocumentRequest struct {
	Title      string `form:"title" validate:"required,min=3,max=200"`
	ReviewDate string `form:"review_date" validate:"omitempty,datetime=2006-01-02"`

	File       *multipart.FileHeader `form:"-" validate:"-"`
	ReviewTime *time.Time            `form:"-" validate:"-"`
}

// CreateDocument validates the multipart upload of a new policy document.
func CreateDocument() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateDocumentRequest)
		reqData.Title = strings.TrimSpace(c.FormValue("title"))
		reqData.ReviewDate = strings.TrimSpace(c.FormValue("review_date"))

		errors := common.Struct(reqData)

		file, err := c.FormFile("file")
		if err != nil || file == nil {
			errors["file"] = "file is required!"
		} else if file.Size == 0 {
			errors["file"] = "file must not be empty!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		reqData.File = file
		reqData.ReviewTime, _ = common.ParseDate(reqData.ReviewDate)
		c.Locals("validatedDocument", reqData)
		return c.Next()
	}
}

type UpdateDocumentRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=3,max=200"`
	ReviewDate      *string `json:"review_date" validate:"omitempty"`
	EnhancedContent *string `json:"enhanced_content"`
}

// Updates returns the column changes the request asks for. An empty
// review_date clears the date.
func (r *UpdateDocumentRequest) Updates() map[string]interface{} {
	updates := make(map[string]interface{})
	if r.Title != nil {
		updates["title"] = strings.TrimSpace(*r.Title)
	}
	if r.ReviewDate != nil {
		date, _ := common.ParseDate(*r.ReviewDate)
		updates["review_date"] = date
	}
	if r.EnhancedContent != nil {
		updates["enhanced_content"] = *r.EnhancedContent
	}
	return updates
}

func UpdateDocument() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateDocumentRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.Title != nil {
			trimmed := strings.TrimSpace(*reqData.Title)
			reqData.Title = &trimmed
		}

		errors := common.Struct(reqData)
		if reqData.ReviewDate != nil {
			if _, err := common.ParseDate(*reqData.ReviewDate); err != nil {
				errors["review_date"] = "review_date must be a date in YYYY-MM-DD format!"
			}
		}
		if reqData.Title == nil && reqData.ReviewDate == nil && reqData.EnhancedContent == nil {
			errors["body"] = "Nothing to update!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDocumentUpdate", reqData)
		return c.Next()
	}
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft published archived"`
}

func ChangeStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ChangeStatusRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Status = strings.ToLower(strings.TrimSpace(reqData.Status))

		if errors := common.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedStatus", reqData)
		return c.Next()
	}
}

type QuizQuestionInput struct {
	Question     string   `json:"question" validate:"required,max=1000"`
	Options      []string `json:"options" validate:"len=4,dive,required,max=500"`
	CorrectIndex *int     `json:"correct_index" validate:"required,min=0,max=3"`
}

type SaveQuizRequest struct {
	Questions []QuizQuestionInput `json:"questions" validate:"max=50,dive"`
}

// Models converts the request into quiz rows, trimmed and in request order.
func (r *SaveQuizRequest) Models() []models.QuizQuestion {
	out := make([]models.QuizQuestion, len(r.Questions))
	for i, q := range r.Questions {
		opts := make([]string, len(q.Options))
		for j, o := range q.Options {
			opts[j] = strings.TrimSpace(o)
		}
		out[i] = models.QuizQuestion{
			Question:     strings.TrimSpace(q.Question),
			Options:      opts,
			CorrectIndex: *q.CorrectIndex,
			OrderIndex:   i,
		}
	}
	return out
}

// SaveQuiz validates a full replacement question set. An empty list removes
// the quiz from the document.
func SaveQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SaveQuizRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		for i := range reqData.Questions {
			q := &reqData.Questions[i]
			q.Question = strings.TrimSpace(q.Question)
			for j := range q.Options {
				q.Options[j] = strings.TrimSpace(q.Options[j])
			}
		}

		if errors := common.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

// UploadedFile validates a multipart request carrying a single "file".
func UploadedFile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := c.FormFile("file")
		if err != nil || file == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No file provided!", nil)
		}
		c.Locals("validatedFile", file)
		return c.Next()
	}
}
