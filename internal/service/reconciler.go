// internal/service/reconciler.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"github.com/scoutpost/outreach-backend/internal/enrichment"
	"github.com/scoutpost/outreach-backend/internal/model"
	"github.com/scoutpost/outreach-backend/internal/repository"
)

// EventPublisher pushes terminal campaign transitions onto the event
// queue. Publish failures never affect the lifecycle.
type EventPublisher interface {
	PublishCampaignEvent(ev model.CampaignEvent) error
}

// Reconciler supervises one polling task per running campaign. Tasks are
// registered under the campaign id, poll the enrichment job at a fixed
// interval, and apply the terminal remote state to the store. The task
// budget is bounded: a job that never settles within MaxAttempts polls is
// failed rather than tracked forever.
type Reconciler struct {
	Repo         repository.CampaignRepositoryInterface
	Enrichment   enrichment.JobStatusChecker
	Events       EventPublisher
	PollInterval time.Duration
	MaxAttempts  int

	mu    sync.Mutex
	tasks map[string]*taskHandle
	wg    sync.WaitGroup
}

type taskHandle struct {
	cancel context.CancelFunc
}

func NewReconciler(repo repository.CampaignRepositoryInterface, client enrichment.JobStatusChecker, events EventPublisher, pollInterval time.Duration, maxAttempts int) *Reconciler {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 240
	}
	return &Reconciler{
		Repo:         repo,
		Enrichment:   client,
		Events:       events,
		PollInterval: pollInterval,
		MaxAttempts:  maxAttempts,
		tasks:        make(map[string]*taskHandle),
	}
}

// Watch registers a reconciliation task for the campaign and returns
// immediately. One task per campaign: a second Watch for the same id
// cancels the first.
func (r *Reconciler) Watch(campaign *model.Campaign, jobID string) {
	ctx, cancel := context.WithCancel(context.Background())
	handle := &taskHandle{cancel: cancel}

	r.mu.Lock()
	if prev, ok := r.tasks[campaign.ID]; ok {
		prev.cancel()
	}
	r.tasks[campaign.ID] = handle
	r.mu.Unlock()

	r.wg.Add(1)
	go r.run(ctx, handle, campaign, jobID)
}

// Stop cancels the task for a campaign, if one is registered.
func (r *Reconciler) Stop(campaignID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if handle, ok := r.tasks[campaignID]; ok {
		handle.cancel()
		delete(r.tasks, campaignID)
	}
}

// StopAll cancels every task and waits for them to finish. Used at
// shutdown.
func (r *Reconciler) StopAll() {
	r.mu.Lock()
	for id, handle := range r.tasks {
		handle.cancel()
		delete(r.tasks, id)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

// Watching reports whether a task is currently registered for the
// campaign.
func (r *Reconciler) Watching(campaignID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[campaignID]
	return ok
}

// deregister removes the entry only if it still belongs to this task; a
// replacement Watch for the same campaign must not be evicted by its
// predecessor's exit.
func (r *Reconciler) deregister(campaignID string, handle *taskHandle) {
	r.mu.Lock()
	if r.tasks[campaignID] == handle {
		delete(r.tasks, campaignID)
	}
	r.mu.Unlock()
}

func (r *Reconciler) run(ctx context.Context, handle *taskHandle, campaign *model.Campaign, jobID string) {
	defer r.wg.Done()
	defer r.deregister(campaign.ID, handle)

	log := logrus.WithFields(logrus.Fields{
		"campaign_id": campaign.ID,
		"job_id":      jobID,
	})
	log.Info("reconciler started")

	ticker := time.NewTicker(r.PollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		status, err := r.Enrichment.PollJob(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("reconciler cancelled")
				return
			}
			// Transient by assumption: wait out the interval and retry.
			log.WithError(err).Warn("poll attempt failed")
		} else {
			switch status.State {
			case enrichment.StateDone:
				r.complete(log, campaign, status)
				return
			case enrichment.StateFailed, enrichment.StateTerminated:
				r.fail(log, campaign, status.State)
				return
			default:
				// Still running: no store write until a terminal state.
			}
		}

		select {
		case <-ctx.Done():
			log.Info("reconciler cancelled")
			return
		case <-ticker.C:
		}
	}

	// Budget exhausted. The job may be stuck or the id invalid; fail the
	// campaign instead of leaking the task forever.
	log.Error("poll budget exhausted, failing campaign")
	sentry.CaptureException(fmt.Errorf("reconciler for campaign %s exhausted %d poll attempts on job %s",
		campaign.ID, r.MaxAttempts, jobID))
	if err := r.Repo.MarkFailed(campaign.ID); err != nil {
		r.storeFault(log, err)
	}
}

func (r *Reconciler) complete(log *logrus.Entry, campaign *model.Campaign, status *enrichment.RunStatus) {
	contacts := ExtractContacts(status.Outputs.ExtractedEmails)
	if err := r.Repo.MarkCompleted(campaign.ID, contacts); err != nil {
		r.storeFault(log, err)
		return
	}
	log.WithField("contacts", len(contacts)).Info("campaign completed")
	r.publish(log, model.CampaignEvent{
		Type:         model.EventCampaignCompleted,
		CampaignID:   campaign.ID,
		CampaignName: campaign.Name,
		OwnerEmail:   campaign.OwnerEmail,
		ContactCount: len(contacts),
		OccurredAt:   time.Now().UTC(),
	})
}

func (r *Reconciler) fail(log *logrus.Entry, campaign *model.Campaign, state string) {
	if err := r.Repo.MarkFailed(campaign.ID); err != nil {
		r.storeFault(log, err)
		return
	}
	log.WithField("remote_state", state).Info("campaign failed")
	r.publish(log, model.CampaignEvent{
		Type:         model.EventCampaignFailed,
		CampaignID:   campaign.ID,
		CampaignName: campaign.Name,
		OwnerEmail:   campaign.OwnerEmail,
		OccurredAt:   time.Now().UTC(),
	})
}

// storeFault is the accepted gap: a failed store write ends the task and
// leaves the campaign in its last reached status.
func (r *Reconciler) storeFault(log *logrus.Entry, err error) {
	log.WithError(err).Error("store update failed, abandoning task")
	sentry.CaptureException(err)
}

func (r *Reconciler) publish(log *logrus.Entry, ev model.CampaignEvent) {
	if r.Events == nil {
		return
	}
	if err := r.Events.PublishCampaignEvent(ev); err != nil {
		log.WithError(err).Warn("failed to publish campaign event")
	}
}
