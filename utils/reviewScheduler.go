package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"policyportal/models"
	"policyportal/services/lifecycle"
	"policyportal/services/notify"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReviewFlags splits documents by review date. The flags are advisory only.
type ReviewFlags struct {
	Overdue []models.Document `json:"overdue"`
	DueSoon []models.Document `json:"due_soon"`
}

// ClassifyReviews marks a document overdue when its review date is before
// today, and due soon when it falls within the next dueSoonDays days.
// Documents without a review date are never flagged.
func ClassifyReviews(docs []models.Document, today time.Time, dueSoonDays int) ReviewFlags {
	start := now.With(today).BeginningOfDay()
	horizon := now.With(start.AddDate(0, 0, dueSoonDays)).EndOfDay()

	flags := ReviewFlags{Overdue: []models.Document{}, DueSoon: []models.Document{}}
	for _, d := range docs {
		if d.ReviewDate == nil {
			continue
		}
		// review dates are calendar dates; compare them in today's location
		y, m, day := d.ReviewDate.Date()
		review := time.Date(y, m, day, 0, 0, 0, 0, start.Location())
		switch {
		case review.Before(start):
			flags.Overdue = append(flags.Overdue, d)
		case !review.After(horizon):
			flags.DueSoon = append(flags.DueSoon, d)
		}
	}
	return flags
}

type ReviewDigestStore interface {
	ListPublishedDocuments(ctx context.Context) ([]models.Document, error)
	ListAdmins(ctx context.Context) ([]models.Profile, error)
}

// ReviewDigest emails every admin one summary of published documents that
// are overdue or due soon for review. Nothing is sent when none are flagged.
type ReviewDigest struct {
	Store       ReviewDigestStore
	Email       *EmailService
	DueSoonDays int
	Limit       int
	Now         func() time.Time
}

func (r *ReviewDigest) Run(ctx context.Context) (notify.Result, error) {
	log := zap.L().With(zap.String("component", "review-scheduler"))

	docs, err := r.Store.ListPublishedDocuments(ctx)
	if err != nil {
		return notify.Result{}, fmt.Errorf("list published documents: %w", err)
	}
	today := time.Now()
	if r.Now != nil {
		today = r.Now()
	}
	flags := ClassifyReviews(docs, today, r.DueSoonDays)
	if len(flags.Overdue) == 0 && len(flags.DueSoon) == 0 {
		log.Info("no documents due for review")
		return notify.Result{}, nil
	}

	admins, err := r.Store.ListAdmins(ctx)
	if err != nil {
		return notify.Result{}, fmt.Errorf("list admins: %w", err)
	}
	res, err := notify.Dispatch(ctx, lifecycle.Recipients(admins), func(ctx context.Context, to notify.Recipient) error {
		return r.Email.ReviewDigest(ctx, to, flags.Overdue, flags.DueSoon)
	}, notify.Options{Limit: r.Limit})
	if errors.Is(err, notify.ErrNoRecipients) {
		log.Warn("review digest has no admin recipients")
		return res, nil
	}
	for _, f := range res.Failures {
		log.Warn("review digest not sent", zap.String("email", f.Recipient.Email), zap.Error(f.Err))
	}
	log.Info("review digest sent",
		zap.Int("overdue", len(flags.Overdue)),
		zap.Int("due_soon", len(flags.DueSoon)),
		zap.String("result", res.String()),
	)
	return res, err
}

// InitializeReviewScheduler registers the digest on the given cron spec and
// starts the scheduler. An empty spec disables it and returns nil.
func InitializeReviewScheduler(spec string, digest *ReviewDigest) (*cron.Cron, error) {
	if spec == "" {
		zap.L().Info("review digest scheduler disabled")
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := digest.Run(ctx); err != nil {
			zap.L().Error("review digest failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("review digest schedule %q: %w", spec, err)
	}

	c.Start()
	zap.L().Info("review digest scheduler started", zap.String("schedule", spec))
	return c, nil
}
