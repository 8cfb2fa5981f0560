// internal/model/campaign.go
package model

import "time"

// Campaign statuses. pending and running are transient; completed and
// failed are terminal and never transition again.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Campaign struct {
	ID                string     `db:"id" json:"id"`
	UserID            string     `db:"user_id" json:"user_id"`
	OwnerEmail        string     `db:"owner_email" json:"-"`
	Name              string     `db:"name" json:"name"`
	Sector            string     `db:"sector" json:"sector"`
	NumberOfCompanies int        `db:"number_of_companies" json:"number_of_companies"`
	Status            string     `db:"status" json:"status"`
	ExternalJobID     *string    `db:"external_job_id" json:"external_job_id"`
	Contacts          []Contact  `db:"contacts" json:"contacts"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Contact is a discovered outreach contact. Company is derived from the
// email domain, not verified separately.
type Contact struct {
	Email   string `json:"email"`
	Company string `json:"company"`
}

// IsTerminal reports whether the campaign can never transition again.
func (c *Campaign) IsTerminal() bool {
	return c.Status == StatusCompleted || c.Status == StatusFailed
}
