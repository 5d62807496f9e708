// Package digest periodically emails the most liked books to elevated users.
package digest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/book-service/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Store is the read access the digest needs.
type Store interface {
	TopLikedBooks(ctx context.Context, limit int) ([]models.BookLikes, error)
	ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

// Mailer delivers one digest to one recipient.
type Mailer interface {
	SendLikeDigest(to string, books []models.BookLikes) error
}

// Job collects the top liked books and mails them.
type Job struct {
	store   Store
	mailer  Mailer
	topN    int
	timeout time.Duration
	log     *logrus.Logger
}

// NewJob creates a digest job for the topN most liked books.
func NewJob(store Store, mailer Mailer, topN int, log *logrus.Logger) *Job {
	if topN <= 0 {
		topN = 5
	}
	return &Job{store: store, mailer: mailer, topN: topN, timeout: time.Minute, log: log}
}

// Run sends one digest round. A failed recipient does not stop the others;
// their errors are joined in the result.
func (j *Job) Run(ctx context.Context) error {
	books, err := j.store.TopLikedBooks(ctx, j.topN)
	if err != nil {
		return fmt.Errorf("failed to load top liked books: %w", err)
	}
	users, err := j.store.ListUsersByRole(ctx, models.RoleElevated)
	if err != nil {
		return fmt.Errorf("failed to load recipients: %w", err)
	}

	var errs []error
	for _, u := range users {
		if err := j.mailer.SendLikeDigest(u.Email, books); err != nil {
			errs = append(errs, err)
		}
	}

	j.log.WithFields(logrus.Fields{
		"books":      len(books),
		"recipients": len(users),
		"failed":     len(errs),
	}).Info("Like digest sent")
	return errors.Join(errs...)
}

// Schedule registers the job on a new cron scheduler under spec and starts
// it. Stop the returned scheduler on shutdown.
func (j *Job) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithLogger(cron.PrintfLogger(j.log)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		if err := j.Run(ctx); err != nil {
			j.log.Errorf("Like digest failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
