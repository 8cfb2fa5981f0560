// cmd/server/main.go
package main

import (
	"net/http"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/scoutpost/outreach-backend/internal/config"
	"github.com/scoutpost/outreach-backend/internal/controller"
	"github.com/scoutpost/outreach-backend/internal/db"
	"github.com/scoutpost/outreach-backend/internal/enrichment"
	"github.com/scoutpost/outreach-backend/internal/mailer"
	"github.com/scoutpost/outreach-backend/internal/middleware"
	"github.com/scoutpost/outreach-backend/internal/queue"
	"github.com/scoutpost/outreach-backend/internal/repository"
	"github.com/scoutpost/outreach-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, relying on OS environment variables")
	}
	configureLogging()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			logrus.Fatalf("sentry.Init: %v", err)
		}
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("database: %v", err)
	}
	defer conn.Close()
	logrus.Info("connected to database")

	campaignRepo := &repository.CampaignRepository{DB: conn}
	enrichmentClient := enrichment.NewClient(cfg.EnrichmentBaseURL, cfg.EnrichmentAPIKey, cfg.EnrichmentUserID, cfg.EnrichmentPipelineID)

	// Events are best-effort: without RabbitMQ the lifecycle still works,
	// only completion notifications are lost.
	var events service.EventPublisher
	publisher, err := queue.NewPublisher(cfg.AMQPURL)
	if err != nil {
		logrus.Warnf("RabbitMQ unavailable, campaign events disabled: %v", err)
	} else {
		defer publisher.Close()
		events = publisher
	}

	reconciler := service.NewReconciler(campaignRepo, enrichmentClient, events, cfg.PollInterval, cfg.MaxPollAttempts)
	defer reconciler.StopAll()

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		Enrichment:   enrichmentClient,
		Reconciler:   reconciler,
	}

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
		Mailer:          mailer.New(cfg.SMTP),
	}

	// Stale-campaign reaper
	reaper := &service.Reaper{Repo: campaignRepo, StaleAfter: cfg.StaleAfter}
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.ReaperSpec, reaper.Sweep); err != nil {
		logrus.Fatalf("invalid reaper schedule %q: %v", cfg.ReaperSpec, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	auth := middleware.NewAuth(cfg.JWTSecret)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Post("/campaigns", campaignController.CreateCampaign)
		r.Get("/campaigns", campaignController.ListCampaigns)
		r.Get("/campaigns/{id}", campaignController.GetCampaign)
		r.Post("/outreach/send", campaignController.SendOutreach)
	})

	logrus.Infof("server running on :%s", cfg.Port)
	logrus.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}

func configureLogging() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(level)
	}
}
