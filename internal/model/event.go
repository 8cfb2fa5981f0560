// internal/model/event.go
package model

import "time"

const (
	EventCampaignCompleted = "campaign.completed"
	EventCampaignFailed    = "campaign.failed"
)

// CampaignEvent is published to the campaign_events queue whenever a
// campaign reaches a terminal state.
type CampaignEvent struct {
	Type         string    `json:"type"`
	CampaignID   string    `json:"campaign_id"`
	CampaignName string    `json:"campaign_name"`
	OwnerEmail   string    `json:"owner_email,omitempty"`
	ContactCount int       `json:"contact_count"`
	OccurredAt   time.Time `json:"occurred_at"`
}
