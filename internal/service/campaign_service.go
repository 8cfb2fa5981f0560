// internal/service/campaign_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/scoutpost/outreach-backend/internal/enrichment"
	"github.com/scoutpost/outreach-backend/internal/model"
	"github.com/scoutpost/outreach-backend/internal/repository"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	Enrichment   enrichment.JobStatusChecker
	Reconciler   *Reconciler
}

// CreateCampaignInput is the validated creation request.
type CreateCampaignInput struct {
	Name              string
	Sector            string
	NumberOfCompanies int
}

// ErrValidation marks client-fault input problems.
type ErrValidation struct {
	Msg string
}

func (e *ErrValidation) Error() string { return e.Msg }

// CreateCampaign persists a pending campaign, submits the enrichment
// job, and hands the running campaign to the reconciler. It returns as
// soon as the job is accepted; completion is reconciled in the
// background. If submission fails the campaign is marked failed and no
// reconciliation task is launched.
func (s *CampaignService) CreateCampaign(ctx context.Context, userID, ownerEmail string, in CreateCampaignInput) (*model.Campaign, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Sector) == "" {
		return nil, &ErrValidation{Msg: "must provide name and sector"}
	}
	if in.NumberOfCompanies <= 0 {
		in.NumberOfCompanies = 1
	}

	campaign := &model.Campaign{
		UserID:            userID,
		OwnerEmail:        ownerEmail,
		Name:              in.Name,
		Sector:            in.Sector,
		NumberOfCompanies: in.NumberOfCompanies,
		Status:            model.StatusPending,
	}
	if err := s.CampaignRepo.Create(campaign); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	log := logrus.WithField("campaign_id", campaign.ID)
	log.Info("campaign created")

	jobID, err := s.Enrichment.StartJob(ctx, in.Sector, in.NumberOfCompanies)
	if err != nil {
		log.WithError(err).Error("enrichment job submission failed")
		if failErr := s.CampaignRepo.MarkFailed(campaign.ID); failErr != nil {
			log.WithError(failErr).Error("failed to mark campaign failed")
		}
		campaign.Status = model.StatusFailed
		return campaign, fmt.Errorf("start enrichment job: %w", err)
	}

	if err := s.CampaignRepo.MarkRunning(campaign.ID, jobID); err != nil {
		return nil, fmt.Errorf("mark campaign running: %w", err)
	}
	campaign.Status = model.StatusRunning
	campaign.ExternalJobID = &jobID

	log.WithField("job_id", jobID).Info("enrichment job started")
	s.Reconciler.Watch(campaign, jobID)

	return campaign, nil
}

// GetCampaign returns the campaign if it belongs to the user.
func (s *CampaignService) GetCampaign(ctx context.Context, userID, id string) (*model.Campaign, error) {
	return s.CampaignRepo.GetByIDForUser(id, userID)
}

// ListCampaigns returns the user's campaigns, newest first.
func (s *CampaignService) ListCampaigns(ctx context.Context, userID string) ([]model.Campaign, error) {
	return s.CampaignRepo.ListByUser(userID)
}
