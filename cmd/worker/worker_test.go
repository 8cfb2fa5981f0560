package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutpost/outreach-backend/internal/mailer"
	"github.com/scoutpost/outreach-backend/internal/model"
)

type fakeMailer struct {
	sent   [][]string
	result *mailer.Result
}

func (f *fakeMailer) Send(ctx context.Context, recipients []string, subject, body string) (*mailer.Result, error) {
	f.sent = append(f.sent, recipients)
	if f.result != nil {
		return f.result, nil
	}
	return &mailer.Result{Sent: len(recipients), Total: len(recipients)}, nil
}

func TestNotifierEmailsOwnerOnCompletion(t *testing.T) {
	fm := &fakeMailer{}
	n := &completionNotifier{mailer: fm}

	err := n.Handle(model.CampaignEvent{
		Type:         model.EventCampaignCompleted,
		CampaignID:   "c1",
		CampaignName: "Fintech Q3",
		OwnerEmail:   "owner@corp.com",
		ContactCount: 4,
	})
	require.NoError(t, err)
	require.Len(t, fm.sent, 1)
	assert.Equal(t, []string{"owner@corp.com"}, fm.sent[0])
}

func TestNotifierSkipsEventsWithoutOwnerEmail(t *testing.T) {
	fm := &fakeMailer{}
	n := &completionNotifier{mailer: fm}

	err := n.Handle(model.CampaignEvent{
		Type:       model.EventCampaignFailed,
		CampaignID: "c1",
	})
	require.NoError(t, err)
	assert.Empty(t, fm.sent)
}

func TestNotifierReportsDeliveryFailure(t *testing.T) {
	fm := &fakeMailer{result: &mailer.Result{Sent: 0, Failed: 1, Total: 1}}
	n := &completionNotifier{mailer: fm}

	err := n.Handle(model.CampaignEvent{
		Type:       model.EventCampaignCompleted,
		OwnerEmail: "owner@corp.com",
	})
	assert.Error(t, err)
}
