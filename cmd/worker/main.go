// cmd/worker/main.go
//
// Consumes campaign lifecycle events and emails owners when their
// campaign settles.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/scoutpost/outreach-backend/internal/config"
	"github.com/scoutpost/outreach-backend/internal/mailer"
	"github.com/scoutpost/outreach-backend/internal/model"
	"github.com/scoutpost/outreach-backend/internal/queue"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, relying on OS environment variables")
	}
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(level)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	consumer, err := queue.NewConsumer(cfg.AMQPURL)
	if err != nil {
		logrus.Fatalf("RabbitMQ: %v", err)
	}
	defer consumer.Close()

	notifier := &completionNotifier{mailer: mailer.New(cfg.SMTP)}

	logrus.Info("worker running, waiting for campaign events")
	if err := consumer.Consume(notifier.Handle); err != nil {
		logrus.Fatalf("consume: %v", err)
	}
}

type completionNotifier struct {
	mailer mailer.Sender
}

// Handle emails the campaign owner about the terminal outcome. Events
// without an owner email are acknowledged and skipped.
func (n *completionNotifier) Handle(ev model.CampaignEvent) error {
	if ev.OwnerEmail == "" {
		return nil
	}

	var subject, body string
	switch ev.Type {
	case model.EventCampaignCompleted:
		subject = fmt.Sprintf("Campaign %q completed", ev.CampaignName)
		body = fmt.Sprintf("Your campaign %q finished and discovered %d contacts.", ev.CampaignName, ev.ContactCount)
	case model.EventCampaignFailed:
		subject = fmt.Sprintf("Campaign %q failed", ev.CampaignName)
		body = fmt.Sprintf("Your campaign %q could not be completed. You can start a new one at any time.", ev.CampaignName)
	default:
		logrus.WithField("type", ev.Type).Warn("unknown campaign event type")
		return nil
	}

	result, err := n.mailer.Send(context.Background(), []string{ev.OwnerEmail}, subject, body)
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("notification to %s failed", ev.OwnerEmail)
	}
	return nil
}
