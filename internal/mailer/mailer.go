// Package mailer delivers outreach email over SMTP. Each recipient is an
// independent attempt; one failure never aborts the rest.
package mailer

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"

	"github.com/scoutpost/outreach-backend/internal/config"
	appErrors "github.com/scoutpost/outreach-backend/internal/errors"
)

// Result aggregates per-recipient outcomes after all attempts settle.
type Result struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

type Sender interface {
	Send(ctx context.Context, recipients []string, subject, body string) (*Result, error)
}

type Mailer struct {
	cfg config.SMTPConfig

	// deliver sends one message. Overridable in tests.
	deliver func(to, subject, body string) error
}

func New(cfg config.SMTPConfig) *Mailer {
	m := &Mailer{cfg: cfg}
	m.deliver = m.smtpDeliver
	return m
}

// Send fans the message out to every recipient concurrently and reports
// counts. An incomplete SMTP configuration fails fast before any
// delivery is attempted.
func (m *Mailer) Send(ctx context.Context, recipients []string, subject, body string) (*Result, error) {
	if !m.cfg.Complete() {
		return nil, appErrors.ErrMailerNotConfigured
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	result := &Result{Total: len(recipients)}

	for _, recipient := range recipients {
		wg.Add(1)
		go func(to string) {
			defer wg.Done()
			err := m.deliver(to, subject, body)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logrus.WithError(err).WithField("recipient", to).Warn("email delivery failed")
				result.Failed++
				return
			}
			result.Sent++
		}(recipient)
	}
	wg.Wait()

	logrus.WithFields(logrus.Fields{
		"sent":  result.Sent,
		"total": result.Total,
	}).Info("outreach send finished")
	return result, nil
}

func (m *Mailer) smtpDeliver(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	msg.AddAlternative("text/html", strings.ReplaceAll(body, "\n", "<br>"))

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Pass)
	return dialer.DialAndSend(msg)
}

var _ Sender = (*Mailer)(nil)
