package carerControllers

import (
	"errors"
	"time"

	"policyportal/database"
	"policyportal/middleware"
	"policyportal/models"
	"policyportal/services/compliance"
	"policyportal/services/quiz"
	"policyportal/services/readflow"
	"policyportal/validators/carerValidator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler serves the carer routes. Failures are reported to carers with a
// generic message; the detail goes to the log.
type Handler struct {
	DB  database.DbInstance
	Log *zap.Logger
}

func (h *Handler) log() *zap.Logger {
	if h.Log != nil {
		return h.Log
	}
	return zap.L()
}

func (h *Handler) carerError(c *fiber.Ctx, message string, err error) error {
	h.log().Error(message, zap.String("path", c.Path()), zap.Error(err))
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong. Please try again!", nil)
}

// loadPublished fetches the :id document if it is published. When ok is
// false the response has already been written.
func (h *Handler) loadPublished(c *fiber.Ctx) (doc models.Document, ok bool, err error) {
	id := c.Locals("documentID").(uuid.UUID)
	doc, err = h.DB.GetPublishedDocument(c.UserContext(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return doc, false, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Document not found!", nil)
	}
	if err != nil {
		return doc, false, h.carerError(c, "fetch published document", err)
	}
	return doc, true, nil
}

type unreadItem struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	ReviewDate *time.Time `json:"review_date"`
	CreatedAt  time.Time  `json:"created_at"`
}

type readItem struct {
	unreadItem
	ReadAt     time.Time `json:"read_at"`
	QuizPassed *bool     `json:"quiz_passed"`
	QuizScore  *int      `json:"quiz_score"`
}

// ListDocuments splits the published documents into unread and read for the
// current carer.
func (h *Handler) ListDocuments(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)
	ctx := c.UserContext()

	docs, err := h.DB.ListPublishedDocuments(ctx)
	if err != nil {
		return h.carerError(c, "list published documents", err)
	}
	reads, err := h.DB.ListReadsForUser(ctx, userID)
	if err != nil {
		return h.carerError(c, "list reads for user", err)
	}

	byDoc := make(map[uuid.UUID]models.DocumentRead, len(reads))
	for _, r := range reads {
		byDoc[r.DocumentID] = r
	}

	unread := make([]unreadItem, 0)
	read := make([]readItem, 0)
	for _, d := range docs {
		item := unreadItem{ID: d.ID, Title: d.Title, ReviewDate: d.ReviewDate, CreatedAt: d.CreatedAt}
		r, found := byDoc[d.ID]
		if !found {
			unread = append(unread, item)
			continue
		}
		read = append(read, readItem{unreadItem: item, ReadAt: r.ReadAt, QuizPassed: r.QuizPassed, QuizScore: r.QuizScore})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Documents fetched successfully!", fiber.Map{
		"unread":  unread,
		"read":    read,
		"percent": compliance.CarerPercent(userID, docs, reads),
	})
}

// carerQuestion is a quiz question without its correct answer.
type carerQuestion struct {
	ID         uuid.UUID `json:"id"`
	Question   string    `json:"question"`
	Options    []string  `json:"options"`
	OrderIndex int       `json:"order_index"`
}

// GetDocument returns a published document for reading.
func (h *Handler) GetDocument(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)
	doc, ok, err := h.loadPublished(c)
	if !ok {
		return err
	}
	ctx := c.UserContext()

	rows, err := h.DB.ListQuizQuestions(ctx, doc.ID)
	if err != nil {
		return h.carerError(c, "list quiz questions", err)
	}
	alreadyRead, err := h.DB.HasRead(ctx, doc.ID, userID)
	if err != nil {
		return h.carerError(c, "check read record", err)
	}

	questions := make([]carerQuestion, len(rows))
	for i, q := range rows {
		questions[i] = carerQuestion{ID: q.ID, Question: q.Question, Options: q.Options, OrderIndex: q.OrderIndex}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Document fetched successfully!", fiber.Map{
		"document": fiber.Map{
			"id":               doc.ID,
			"title":            doc.Title,
			"content":          doc.Content(),
			"original_content": doc.OriginalContent,
			"enhanced_content": doc.EnhancedContent,
			"file_url":         doc.FileURL,
			"file_name":        doc.FileName,
			"review_date":      doc.ReviewDate,
		},
		"has_quiz":     len(questions) > 0,
		"already_read": alreadyRead,
		"questions":    questions,
	})
}

// newSession starts a read session for the current carer on doc.
func (h *Handler) newSession(c *fiber.Ctx, doc models.Document) (*readflow.Session, error) {
	userID, _ := middleware.CurrentUserID(c)
	rows, err := h.DB.ListQuizQuestions(c.UserContext(), doc.ID)
	if err != nil {
		return nil, err
	}
	session := readflow.NewSession(doc.ID, userID, readflow.Questions(rows), h.DB)
	if err := session.Start(); err != nil {
		return nil, err
	}
	return session, nil
}

// ConfirmRead records the acknowledgment of a document without a quiz.
func (h *Handler) ConfirmRead(c *fiber.Ctx) error {
	doc, ok, err := h.loadPublished(c)
	if !ok {
		return err
	}
	reqData, _ := c.Locals("validatedConfirm").(*carerValidator.ConfirmReadRequest)
	if reqData == nil || !reqData.Acknowledged {
		return middleware.ValidationErrorResponse(c, map[string]string{
			"acknowledged": "You must confirm you have read and understood this document!",
		})
	}

	session, err := h.newSession(c, doc)
	if err != nil {
		return h.carerError(c, "start read session", err)
	}
	if session.HasQuiz() {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "This document requires you to pass a quiz!", nil)
	}
	if err := session.Acknowledge(c.UserContext()); err != nil {
		return h.carerError(c, "record read confirmation", err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thank you! Your confirmation has been recorded.", fiber.Map{
		"state": session.State().String(),
	})
}

// SubmitQuiz scores a complete answer set. Only a fully correct submission
// is recorded; otherwise the carer may retry.
func (h *Handler) SubmitQuiz(c *fiber.Ctx) error {
	doc, ok, err := h.loadPublished(c)
	if !ok {
		return err
	}
	reqData := c.Locals("validatedQuizSubmission").(*carerValidator.SubmitQuizRequest)

	session, err := h.newSession(c, doc)
	if err != nil {
		return h.carerError(c, "start read session", err)
	}
	if !session.HasQuiz() {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "This document has no quiz!", nil)
	}
	for qid, option := range reqData.Answers {
		if id, err := uuid.Parse(qid); err == nil {
			qid = id.String()
		}
		if err := session.Select(qid, option); err != nil {
			return h.carerError(c, "select answer", err)
		}
	}

	result, err := session.Submit(c.UserContext())
	switch {
	case errors.Is(err, quiz.ErrIncomplete):
		return middleware.ValidationErrorResponse(c, map[string]string{
			"answers": "Please answer every question before submitting!",
		})
	case err != nil:
		return h.carerError(c, "submit quiz", err)
	}

	data := fiber.Map{
		"passed":  result.Passed,
		"score":   result.Score,
		"total":   result.Total,
		"results": result.Correct,
		"state":   session.State().String(),
	}
	if !result.Passed {
		data["retry"] = true
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Not quite. Please review the document and try again!", data)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz passed! Your confirmation has been recorded.", data)
}
