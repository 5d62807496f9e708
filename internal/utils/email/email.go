package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/book-service/internal/config"
	"github.com/Dan9191/book-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	s := &Sender{
		cfg:    cfg,
		logger: logger,
	}
	s.send = s.sendSMTP
	return s
}

func (s *Sender) sendSMTP(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	return e.Send(addr, auth)
}

// SendLikeDigest emails the most liked books to a single recipient
func (s *Sender) SendLikeDigest(to string, books []models.BookLikes) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Most Liked Books"
	e.Text = []byte(digestBody(books))

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send digest to %s: %v", to, err)
		return fmt.Errorf("failed to send digest: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func digestBody(books []models.BookLikes) string {
	var b strings.Builder
	b.WriteString("Hello,\n\n")
	if len(books) == 0 {
		b.WriteString("No books have been liked yet.\n")
	} else {
		b.WriteString("These are the most liked books in the catalog:\n\n")
		for i, book := range books {
			fmt.Fprintf(&b, "%d. %s by %s (%d likes)\n", i+1, book.Title, book.Author, book.Likes)
		}
	}
	b.WriteString("\nBest regards,\nBook Service")
	return b.String()
}
