package reportControllers

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"policyportal/database"
	"policyportal/middleware"
	"policyportal/models"
	"policyportal/services/compliance"
	"policyportal/utils"

	"github.com/gofiber/fiber/v2"
)

// recentDocuments is how many documents the dashboard lists.
const recentDocuments = 8

// Handler serves the admin dashboard and reporting routes.
type Handler struct {
	DB          database.DbInstance
	DueSoonDays int
	Now         func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func adminError(c *fiber.Ctx, message string, err error) error {
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, fmt.Sprintf("%s: %v", message, err), nil)
}

type complianceData struct {
	carers    []models.Profile
	published []models.Document
	reads     []models.DocumentRead
}

func (h *Handler) loadCompliance(ctx context.Context) (complianceData, error) {
	var d complianceData
	var err error
	if d.carers, err = h.DB.ListCarers(ctx); err != nil {
		return d, fmt.Errorf("list carers: %w", err)
	}
	if d.published, err = h.DB.ListPublishedDocuments(ctx); err != nil {
		return d, fmt.Errorf("list published documents: %w", err)
	}
	if d.reads, err = h.DB.ListReads(ctx); err != nil {
		return d, fmt.Errorf("list reads: %w", err)
	}
	return d, nil
}

// Dashboard returns document counts, advisory review flags for published
// documents and the most recent documents.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	docs, err := h.DB.ListDocuments(ctx)
	if err != nil {
		return adminError(c, "Failed to fetch documents", err)
	}
	carers, err := h.DB.ListCarers(ctx)
	if err != nil {
		return adminError(c, "Failed to fetch carers", err)
	}

	counts := map[string]int{}
	published := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		counts[d.Status]++
		if d.Status == models.StatusPublished {
			published = append(published, d)
		}
	}
	flags := utils.ClassifyReviews(published, h.now(), h.DueSoonDays)

	recent := docs
	if len(recent) > recentDocuments {
		recent = recent[:recentDocuments]
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", fiber.Map{
		"stats": fiber.Map{
			"published": counts[models.StatusPublished],
			"drafts":    counts[models.StatusDraft],
			"archived":  counts[models.StatusArchived],
			"carers":    len(carers),
			"overdue":   len(flags.Overdue),
			"due_soon":  len(flags.DueSoon),
		},
		"overdue":  flags.Overdue,
		"due_soon": flags.DueSoon,
		"recent":   recent,
	})
}

// Users lists carers with their completion of the published documents.
func (h *Handler) Users(c *fiber.Ctx) error {
	d, err := h.loadCompliance(c.UserContext())
	if err != nil {
		return adminError(c, "Failed to fetch users", err)
	}
	summary := compliance.Aggregate(d.carers, d.published, d.reads)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", summary.Carers)
}

// Reports returns overall, per-carer and per-document completion.
func (h *Handler) Reports(c *fiber.Ctx) error {
	d, err := h.loadCompliance(c.UserContext())
	if err != nil {
		return adminError(c, "Failed to fetch reports", err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reports fetched successfully!",
		compliance.Aggregate(d.carers, d.published, d.reads))
}

// ExportCSV downloads one row per carer and published document.
func (h *Handler) ExportCSV(c *fiber.Ctx) error {
	d, err := h.loadCompliance(c.UserContext())
	if err != nil {
		return adminError(c, "Failed to export report", err)
	}

	var buf bytes.Buffer
	if err := compliance.WriteCSV(&buf, compliance.ReportRows(d.carers, d.published, d.reads)); err != nil {
		return adminError(c, "Failed to export report", err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment(compliance.ReportFileName(h.now()))
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}
