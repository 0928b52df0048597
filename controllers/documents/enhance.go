package documentControllers

import (
	"bufio"
	"context"
	"errors"
	"strings"

	"policyportal/middleware"
	"policyportal/services/enhance"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// EnhanceDocument streams an LLM rewrite of the document text as plain text.
// The rewrite is saved as the enhanced content once the stream completes.
func (h *Handler) EnhanceDocument(c *fiber.Ctx) error {
	if h.Relay == nil {
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Document enhancement is not configured!", nil)
	}
	doc, ok, err := h.loadDocument(c)
	if !ok {
		return err
	}
	content := ""
	if doc.OriginalContent != nil {
		content = *doc.OriginalContent
	}
	if strings.TrimSpace(content) == "" {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Document has no text to enhance!", nil)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("X-Accel-Buffering", "no")

	relay := h.Relay
	log := h.log()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		// the request context is gone once the handler returns; a failed
		// flush is how a disconnect shows up here
		_, err := relay.Run(context.Background(), doc.ID, content, func(chunk string) error {
			if _, err := w.WriteString(chunk); err != nil {
				return err
			}
			return w.Flush()
		})
		if err != nil && !errors.Is(err, enhance.ErrClientGone) {
			log.Error("enhance stream ended with error", zap.String("document_id", doc.ID.String()), zap.Error(err))
		}
	})
	return nil
}
