package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutpost/outreach-backend/internal/config"
	appErrors "github.com/scoutpost/outreach-backend/internal/errors"
)

func configuredSMTP() config.SMTPConfig {
	return config.SMTPConfig{
		Host: "smtp.example.com",
		Port: 587,
		User: "mailer",
		Pass: "secret",
		From: "noreply@example.com",
	}
}

func TestSendFailsFastWithoutConfiguration(t *testing.T) {
	cfg := configuredSMTP()
	cfg.Pass = ""

	m := New(cfg)
	attempted := false
	m.deliver = func(to, subject, body string) error {
		attempted = true
		return nil
	}

	_, err := m.Send(context.Background(), []string{"a@x.com"}, "Hi", "Body")
	assert.ErrorIs(t, err, appErrors.ErrMailerNotConfigured)
	assert.False(t, attempted, "no delivery attempt before config check")
}

func TestSendAggregatesPartialFailure(t *testing.T) {
	m := New(configuredSMTP())

	var mu sync.Mutex
	delivered := []string{}
	m.deliver = func(to, subject, body string) error {
		mu.Lock()
		defer mu.Unlock()
		delivered = append(delivered, to)
		if to == "b@y.com" {
			return errors.New("550 mailbox unavailable")
		}
		return nil
	}

	result, err := m.Send(context.Background(), []string{"a@x.com", "b@y.com", "c@z.com"}, "Hi", "Body")
	require.NoError(t, err, "partial failure is not an error")

	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 3, result.Total)
	// The failing recipient never aborted the others.
	assert.Len(t, delivered, 3)
}

func TestSendAllSucceed(t *testing.T) {
	m := New(configuredSMTP())
	m.deliver = func(to, subject, body string) error { return nil }

	result, err := m.Send(context.Background(), []string{"a@x.com", "b@y.com"}, "Hi", "Body")
	require.NoError(t, err)
	assert.Equal(t, &Result{Sent: 2, Failed: 0, Total: 2}, result)
}
