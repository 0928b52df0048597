package documentControllers

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"policyportal/database"
	"policyportal/middleware"
	"policyportal/models"
	"policyportal/platform/objectstore"
	"policyportal/platform/textextract"
	"policyportal/services/enhance"
	"policyportal/services/lifecycle"
	"policyportal/utils"
	"policyportal/validators/documentValidator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler serves the admin document routes.
type Handler struct {
	DB        database.DbInstance
	Store     objectstore.Store
	Lifecycle *lifecycle.Service
	Relay     *enhance.Relay // nil when no LLM is configured
	MaxUpload int64
	Log       *zap.Logger
	Now       func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) log() *zap.Logger {
	if h.Log != nil {
		return h.Log
	}
	return zap.L()
}

// adminError reports a failure to an admin together with the error text.
func adminError(c *fiber.Ctx, message string, err error) error {
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, fmt.Sprintf("%s: %v", message, err), nil)
}

// loadDocument fetches the :id document. When ok is false the response has
// already been written and err is its result.
func (h *Handler) loadDocument(c *fiber.Ctx) (doc models.Document, ok bool, err error) {
	id := c.Locals("documentID").(uuid.UUID)
	doc, err = h.DB.GetDocument(c.UserContext(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return doc, false, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Document not found!", nil)
	}
	if err != nil {
		return doc, false, adminError(c, "Failed to fetch document", err)
	}
	return doc, true, nil
}

// CreateDocument stores the uploaded file, extracts its text and creates a
// draft document.
func (h *Handler) CreateDocument(c *fiber.Ctx) error {
	profile, _ := middleware.CurrentProfile(c)
	reqData := c.Locals("validatedDocument").(*documentValidator.CreateDocumentRequest)

	data, err := utils.ReadUploadedFile(reqData.File, h.MaxUpload)
	if errors.Is(err, utils.ErrFileTooLarge) {
		return middleware.JsonResponse(c, fiber.StatusRequestEntityTooLarge, false, "File is too large!", nil)
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Could not read uploaded file!", nil)
	}

	fileName := reqData.File.Filename
	key := objectstore.BuildKey(profile.ID, h.now(), fileName)
	fileURL, err := h.Store.Put(c.UserContext(), key, bytes.NewReader(data), textextract.DetectContentType(data))
	if err != nil {
		h.log().Error("upload document file", zap.String("key", key), zap.Error(err))
		return adminError(c, "Failed to upload file", err)
	}

	doc := models.Document{
		Title:      reqData.Title,
		FileURL:    &fileURL,
		FileName:   &fileName,
		Status:     models.StatusDraft,
		ReviewDate: reqData.ReviewTime,
		CreatedBy:  profile.ID,
	}
	if text := textextract.Extract(fileName, data); text != "" {
		doc.OriginalContent = &text
	}

	if err := h.DB.CreateDocument(c.UserContext(), &doc); err != nil {
		return adminError(c, "Failed to create document", err)
	}

	h.log().Info("document created",
		zap.String("document_id", doc.ID.String()),
		zap.String("created_by", profile.ID.String()),
		zap.Bool("text_extracted", doc.OriginalContent != nil),
	)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Document created successfully!", doc)
}

type documentSummary struct {
	models.Document
	ReadCount     int `json:"read_count"`
	TotalCarers   int `json:"total_carers"`
	QuestionCount int `json:"question_count"`
}

// ListDocuments returns every document, newest first, with read and quiz counts.
func (h *Handler) ListDocuments(c *fiber.Ctx) error {
	ctx := c.UserContext()
	docs, err := h.DB.ListDocuments(ctx)
	if err != nil {
		return adminError(c, "Failed to fetch documents", err)
	}
	carers, err := h.DB.ListCarers(ctx)
	if err != nil {
		return adminError(c, "Failed to fetch carers", err)
	}
	reads, err := h.DB.ListReads(ctx)
	if err != nil {
		return adminError(c, "Failed to fetch reads", err)
	}
	questionCounts, err := h.DB.CountQuizQuestions(ctx)
	if err != nil {
		return adminError(c, "Failed to fetch quizzes", err)
	}

	readCounts := carerReadCounts(carers, reads)
	result := make([]documentSummary, len(docs))
	for i, d := range docs {
		result[i] = documentSummary{
			Document:      d,
			ReadCount:     readCounts[d.ID],
			TotalCarers:   len(carers),
			QuestionCount: questionCounts[d.ID],
		}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Documents fetched successfully!", result)
}

// carerReadCounts counts distinct carers with a read record, per document.
func carerReadCounts(carers []models.Profile, reads []models.DocumentRead) map[uuid.UUID]int {
	isCarer := make(map[uuid.UUID]bool, len(carers))
	for _, c := range carers {
		isCarer[c.ID] = true
	}
	seen := make(map[[2]uuid.UUID]bool, len(reads))
	counts := make(map[uuid.UUID]int)
	for _, r := range reads {
		key := [2]uuid.UUID{r.DocumentID, r.UserID}
		if !isCarer[r.UserID] || seen[key] {
			continue
		}
		seen[key] = true
		counts[r.DocumentID]++
	}
	return counts
}

type readDetail struct {
	models.DocumentRead
	CarerName  string `json:"carer_name"`
	CarerEmail string `json:"carer_email"`
}

// GetDocument returns the document with its quiz and carer read records.
func (h *Handler) GetDocument(c *fiber.Ctx) error {
	doc, ok, err := h.loadDocument(c)
	if !ok {
		return err
	}
	ctx := c.UserContext()

	questions, err := h.DB.ListQuizQuestions(ctx, doc.ID)
	if err != nil {
		return adminError(c, "Failed to fetch quiz", err)
	}
	reads, err := h.DB.ListReadsForDocument(ctx, doc.ID)
	if err != nil {
		return adminError(c, "Failed to fetch reads", err)
	}
	carers, err := h.DB.ListCarers(ctx)
	if err != nil {
		return adminError(c, "Failed to fetch carers", err)
	}

	byID := make(map[uuid.UUID]models.Profile, len(carers))
	for _, p := range carers {
		byID[p.ID] = p
	}
	details := make([]readDetail, 0, len(reads))
	for _, r := range reads {
		p, found := byID[r.UserID]
		if !found {
			continue
		}
		details = append(details, readDetail{DocumentRead: r, CarerName: p.DisplayName(), CarerEmail: p.Email})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Document fetched successfully!", fiber.Map{
		"document":     doc,
		"questions":    questions,
		"reads":        details,
		"total_carers": len(carers),
	})
}

// UpdateDocument applies manual edits to title, review date or enhanced text.
func (h *Handler) UpdateDocument(c *fiber.Ctx) error {
	id := c.Locals("documentID").(uuid.UUID)
	reqData := c.Locals("validatedDocumentUpdate").(*documentValidator.UpdateDocumentRequest)

	doc, err := h.DB.UpdateDocument(c.UserContext(), id, reqData.Updates())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Document not found!", nil)
	}
	if err != nil {
		return adminError(c, "Failed to update document", err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Document updated successfully!", doc)
}

// ExtractText returns the plain text of an uploaded file. Extraction
// problems yield an empty text, never an error status.
func (h *Handler) ExtractText(c *fiber.Ctx) error {
	file := c.Locals("validatedFile").(*multipart.FileHeader)

	text := ""
	data, err := utils.ReadUploadedFile(file, h.MaxUpload)
	if err != nil {
		h.log().Warn("extract-text upload unreadable", zap.String("file", file.Filename), zap.Error(err))
	} else {
		text = textextract.Extract(file.Filename, data)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Text extracted!", fiber.Map{"text": text})
}
