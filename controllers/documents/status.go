package documentControllers

import (
	"errors"
	"fmt"

	"policyportal/middleware"
	"policyportal/models"
	"policyportal/services/lifecycle"
	"policyportal/validators/documentValidator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChangeStatus runs a lifecycle transition. Publishing reports how many
// carers were notified.
func (h *Handler) ChangeStatus(c *fiber.Ctx) error {
	id := c.Locals("documentID").(uuid.UUID)
	reqData := c.Locals("validatedStatus").(*documentValidator.ChangeStatusRequest)

	out, err := h.Lifecycle.Transition(c.UserContext(), id, reqData.Status)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Document not found!", nil)
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return middleware.JsonResponse(c, fiber.StatusConflict, false,
			fmt.Sprintf("Cannot move document to %s from its current status!", reqData.Status), nil)
	case err != nil:
		return adminError(c, "Failed to update status", err)
	}

	data := fiber.Map{"document": out.Document}
	message := "Document status updated!"
	if out.NotificationErr != nil {
		data["notification_error"] = out.NotificationErr.Error()
		message = fmt.Sprintf("Document published, but carers could not be notified: %v", out.NotificationErr)
	}
	if out.Notification != nil {
		data["sent"] = out.Notification.Sent
		data["total"] = out.Notification.Total
		message = fmt.Sprintf("Document published! Notifications: %s.", out.Notification.String())
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, data)
}

// SendReminders emails carers who have not yet read a published document.
func (h *Handler) SendReminders(c *fiber.Ctx) error {
	doc, ok, err := h.loadDocument(c)
	if !ok {
		return err
	}
	if doc.Status != models.StatusPublished {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Reminders can only be sent for published documents!", nil)
	}

	res, err := h.Lifecycle.RemindUnread(c.UserContext(), doc)
	if err != nil {
		return adminError(c, "Failed to send reminders", err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true,
		fmt.Sprintf("Reminders: %s!", res.String()),
		fiber.Map{"sent": res.Sent, "total": res.Total})
}

// ResendNotifications repeats the publish notification to every carer.
func (h *Handler) ResendNotifications(c *fiber.Ctx) error {
	doc, ok, err := h.loadDocument(c)
	if !ok {
		return err
	}
	if doc.Status != models.StatusPublished {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Only published documents can be announced!", nil)
	}

	res, err := h.Lifecycle.NotifyPublished(c.UserContext(), doc)
	if err != nil {
		return adminError(c, "Failed to send notifications", err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true,
		fmt.Sprintf("Notifications: %s!", res.String()),
		fiber.Map{"sent": res.Sent, "total": res.Total})
}
