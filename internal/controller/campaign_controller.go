// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appErrors "github.com/scoutpost/outreach-backend/internal/errors"
	"github.com/scoutpost/outreach-backend/internal/mailer"
	"github.com/scoutpost/outreach-backend/internal/middleware"
	"github.com/scoutpost/outreach-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
	Mailer          mailer.Sender
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name              string `json:"name"`
		Sector            string `json:"sector"`
		NumberOfCompanies int    `json:"number_of_companies"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	userID := middleware.UserID(r.Context())
	ownerEmail := middleware.UserEmail(r.Context())

	campaign, err := c.CampaignService.CreateCampaign(r.Context(), userID, ownerEmail, service.CreateCampaignInput{
		Name:              body.Name,
		Sector:            body.Sector,
		NumberOfCompanies: body.NumberOfCompanies,
	})
	if err != nil {
		var validation *service.ErrValidation
		if errors.As(err, &validation) {
			writeError(w, http.StatusBadRequest, validation.Msg)
			return
		}
		// Submission failures leave the record failed; surface upstream
		// fault to the caller.
		writeError(w, http.StatusInternalServerError, "failed to start enrichment job")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":              campaign.ID,
		"status":          campaign.Status,
		"external_job_id": campaign.ExternalJobID,
		"message":         "Campaign started. Polling for results in background.",
	})
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	campaigns, err := c.CampaignService.ListCampaigns(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch campaigns")
		return
	}

	writeJSON(w, http.StatusOK, campaigns)
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	userID := middleware.UserID(r.Context())

	campaign, err := c.CampaignService.GetCampaign(r.Context(), userID, id)
	if err != nil {
		if appErrors.IsCampaignNotFound(err) {
			writeError(w, http.StatusNotFound, "campaign not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch campaign")
		return
	}

	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) SendOutreach(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Recipients []string `json:"recipients"`
		Subject    string   `json:"subject"`
		Body       string   `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if len(body.Recipients) == 0 {
		writeError(w, http.StatusBadRequest, "must provide at least one recipient")
		return
	}
	if body.Subject == "" || body.Body == "" {
		writeError(w, http.StatusBadRequest, "must provide subject and body")
		return
	}

	result, err := c.Mailer.Send(r.Context(), body.Recipients, body.Subject, body.Body)
	if err != nil {
		if errors.Is(err, appErrors.ErrMailerNotConfigured) {
			writeError(w, http.StatusInternalServerError, "email service not configured")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to send emails")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
