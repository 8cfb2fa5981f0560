// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ErrCampaignNotFound is returned for campaigns that do not exist or
// belong to a different user. The two cases are deliberately
// indistinguishable.
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign %s not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// IsCampaignNotFound reports whether err is an ErrCampaignNotFound.
func IsCampaignNotFound(err error) bool {
	var nf *ErrCampaignNotFound
	return errors.As(err, &nf)
}

// ErrInvalidCampaignID is returned for ids that are not well-formed UUIDs.
var ErrInvalidCampaignID = errors.New("invalid campaign id")

// ErrMailerNotConfigured is returned when SMTP settings are incomplete.
// Distinct from delivery errors: no send attempt has been made.
var ErrMailerNotConfigured = errors.New("email service not configured")
