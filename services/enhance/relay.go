// Package enhance rewrites a document's text with an LLM, streaming the
// output to the admin while it is generated and saving it once complete.
package enhance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoContent = errors.New("document has no text to enhance")
	// ErrClientGone means generation finished but the requester disconnected,
	// so the result was discarded.
	ErrClientGone = errors.New("client disconnected before the stream finished")
)

type Generator interface {
	StreamText(ctx context.Context, prompt string, onDelta func(string) error) (string, error)
}

type Saver interface {
	SaveEnhancedContent(ctx context.Context, id uuid.UUID, text string) error
}

type Relay struct {
	Gen     Generator
	Store   Saver
	OrgName string
	Timeout time.Duration
	Log     *zap.Logger
}

// Run streams the enhanced version of content to sink, chunk by chunk. The
// upstream call runs on a context detached from ctx, so a disconnecting
// client does not cut it short; once the sink fails, remaining chunks are
// drained and the result is discarded instead of saved. The text is saved
// exactly once, and only when generation ended normally.
func (r *Relay) Run(ctx context.Context, documentID uuid.UUID, content string, sink func(chunk string) error) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrNoContent
	}

	upstreamCtx := context.WithoutCancel(ctx)
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		upstreamCtx, cancel = context.WithTimeout(upstreamCtx, r.Timeout)
		defer cancel()
	}

	log := r.logger().With(zap.String("document_id", documentID.String()))

	var gone bool
	text, err := r.Gen.StreamText(upstreamCtx, Prompt(r.OrgName, content), func(chunk string) error {
		if gone {
			return nil
		}
		if ctx.Err() != nil {
			gone = true
			return nil
		}
		if err := sink(chunk); err != nil {
			gone = true
			log.Info("enhance client disconnected, draining", zap.Error(err))
		}
		return nil
	})
	if err != nil {
		log.Error("enhance generation failed", zap.Error(err))
		return "", fmt.Errorf("generate: %w", err)
	}
	if gone || ctx.Err() != nil {
		log.Info("enhance result discarded", zap.Int("chars", len(text)))
		return "", ErrClientGone
	}

	if err := r.Store.SaveEnhancedContent(upstreamCtx, documentID, text); err != nil {
		log.Error("save enhanced content", zap.Error(err))
		return "", fmt.Errorf("save enhanced content: %w", err)
	}
	log.Info("enhanced content saved", zap.Int("chars", len(text)))
	return text, nil
}

func (r *Relay) logger() *zap.Logger {
	if r.Log != nil {
		return r.Log
	}
	return zap.L()
}

// Prompt asks for a clearer rewrite of a policy document for care workers.
func Prompt(orgName, content string) string {
	if orgName == "" {
		orgName = "the organisation"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are helping a care business called %s improve their policy and procedure documents.\n\n", orgName)
	b.WriteString("Please rewrite the following document to make it clearer, better structured, and easier to understand for care workers.\n\n")
	b.WriteString("Guidelines:\n")
	b.WriteString("- Use clear, plain English and avoid jargon\n")
	b.WriteString("- Break content into logical sections with headings\n")
	b.WriteString("- Use bullet points and numbered lists where appropriate\n")
	b.WriteString("- Keep all the important information and do not remove anything critical\n")
	b.WriteString("- Make the tone professional but accessible\n")
	b.WriteString("- Format it well with clear structure\n\n")
	b.WriteString("Original document:\n---\n")
	b.WriteString(content)
	b.WriteString("\n---\n\nPlease provide the enhanced version directly, without any introduction or preamble.")
	return b.String()
}
