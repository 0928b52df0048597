// Package lifecycle moves documents between draft, published and archived,
// and sends the carer notifications that go with those moves.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"policyportal/database"
	"policyportal/models"
	"policyportal/services/notify"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidTransition = errors.New("invalid status transition")

var transitions = map[string]string{
	models.StatusDraft:     models.StatusPublished,
	models.StatusPublished: models.StatusArchived,
	models.StatusArchived:  models.StatusDraft,
}

// CanTransition reports whether from -> to is one of the permitted moves.
func CanTransition(from, to string) bool {
	next, ok := transitions[from]
	return ok && next == to
}

type Store interface {
	GetDocument(ctx context.Context, id uuid.UUID) (models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id uuid.UUID, from, to string) (models.Document, error)
	ListCarers(ctx context.Context) ([]models.Profile, error)
	ListReadsForDocument(ctx context.Context, documentID uuid.UUID) ([]models.DocumentRead, error)
}

// Notifier sends one email about a document to one carer.
type Notifier interface {
	DocumentPublished(ctx context.Context, doc models.Document, to notify.Recipient) error
	Reminder(ctx context.Context, doc models.Document, to notify.Recipient) error
}

type Service struct {
	Store    Store
	Notifier Notifier
	Limit    int
	Log      *zap.Logger
}

// Outcome of a transition. After a publish either Notification is set or
// NotificationErr says why no carer could be tried.
type Outcome struct {
	Document        models.Document
	Notification    *notify.Result
	NotificationErr error
}

// Transition applies a status change. Publishing notifies every carer once;
// notification failures are reported in the outcome and never undo the change.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to string) (Outcome, error) {
	doc, err := s.Store.GetDocument(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if !CanTransition(doc.Status, to) {
		return Outcome{}, fmt.Errorf("%s -> %s: %w", doc.Status, to, ErrInvalidTransition)
	}

	updated, err := s.Store.UpdateDocumentStatus(ctx, id, doc.Status, to)
	if errors.Is(err, database.ErrStatusChanged) {
		return Outcome{}, fmt.Errorf("%s -> %s: %w", doc.Status, to, ErrInvalidTransition)
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("update status: %w", err)
	}

	s.logger().Info("document status changed",
		zap.String("document_id", id.String()),
		zap.String("from", doc.Status),
		zap.String("to", to),
	)

	out := Outcome{Document: updated}
	if to != models.StatusPublished {
		return out, nil
	}

	res, err := s.NotifyPublished(ctx, updated)
	if err != nil {
		// the status change stands
		s.logger().Error("publish notification failed", zap.String("document_id", id.String()), zap.Error(err))
		out.NotificationErr = err
		return out, nil
	}
	out.Notification = &res
	return out, nil
}

// NotifyPublished emails every carer that the document is available.
func (s *Service) NotifyPublished(ctx context.Context, doc models.Document) (notify.Result, error) {
	carers, err := s.Store.ListCarers(ctx)
	if err != nil {
		return notify.Result{}, fmt.Errorf("list carers: %w", err)
	}
	return s.dispatch(ctx, doc, Recipients(carers), s.Notifier.DocumentPublished)
}

// RemindUnread emails carers who have no read record for the document.
func (s *Service) RemindUnread(ctx context.Context, doc models.Document) (notify.Result, error) {
	carers, err := s.Store.ListCarers(ctx)
	if err != nil {
		return notify.Result{}, fmt.Errorf("list carers: %w", err)
	}
	reads, err := s.Store.ListReadsForDocument(ctx, doc.ID)
	if err != nil {
		return notify.Result{}, fmt.Errorf("list reads: %w", err)
	}

	read := make(map[uuid.UUID]struct{}, len(reads))
	for _, r := range reads {
		read[r.UserID] = struct{}{}
	}
	var unread []models.Profile
	for _, c := range carers {
		if _, ok := read[c.ID]; !ok {
			unread = append(unread, c)
		}
	}
	return s.dispatch(ctx, doc, Recipients(unread), s.Notifier.Reminder)
}

func (s *Service) dispatch(ctx context.Context, doc models.Document, to []notify.Recipient,
	send func(context.Context, models.Document, notify.Recipient) error) (notify.Result, error) {
	res, err := notify.Dispatch(ctx, to, func(ctx context.Context, r notify.Recipient) error {
		return send(ctx, doc, r)
	}, notify.Options{Limit: s.Limit})
	if errors.Is(err, notify.ErrNoRecipients) {
		return res, nil
	}
	for _, f := range res.Failures {
		s.logger().Warn("notification not sent",
			zap.String("document_id", doc.ID.String()),
			zap.String("email", f.Recipient.Email),
			zap.Error(f.Err),
		)
	}
	return res, err
}

func (s *Service) logger() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.L()
}

// Recipients maps profiles to email recipients, named by display name.
func Recipients(profiles []models.Profile) []notify.Recipient {
	out := make([]notify.Recipient, len(profiles))
	for i, p := range profiles {
		out[i] = notify.Recipient{Email: p.Email, Name: p.DisplayName()}
	}
	return out
}
