package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/scoutpost/outreach-backend/internal/errors"
	"github.com/scoutpost/outreach-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// Owner-scoped reads
	GetByIDForUser(id, userID string) (*model.Campaign, error)
	ListByUser(userID string) ([]model.Campaign, error)

	// Create + trusted transitions (by id alone; the service created the
	// record itself). Terminal rows are never rewritten.
	Create(c *model.Campaign) error
	MarkRunning(id, externalJobID string) error
	MarkCompleted(id string, contacts []model.Contact) error
	MarkFailed(id string) error

	// Reaper sweep
	FailStale(olderThan time.Duration) (int64, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

// terminalGuard keeps completed/failed rows immutable at the SQL level,
// so a late reconciler write can never reopen a finished campaign.
const terminalGuard = `AND status NOT IN ('completed', 'failed')`

func (r *CampaignRepository) Create(c *model.Campaign) error {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	if c.Status == "" {
		c.Status = model.StatusPending
	}
	if c.NumberOfCompanies <= 0 {
		c.NumberOfCompanies = 1
	}
	query := `
        INSERT INTO campaigns (id, user_id, owner_email, name, sector, number_of_companies, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.DB.Exec(query, c.ID, c.UserID, c.OwnerEmail, c.Name, c.Sector, c.NumberOfCompanies, c.Status, c.CreatedAt)
	return err
}

func (r *CampaignRepository) GetByIDForUser(id, userID string) (*model.Campaign, error) {
	query := `
        SELECT id, user_id, owner_email, name, sector, number_of_companies, status, external_job_id, contacts, created_at, updated_at
        FROM campaigns WHERE id=$1 AND user_id=$2
    `
	c, err := scanCampaign(r.DB.QueryRow(query, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			// Absent and foreign rows look identical to the caller.
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListByUser(userID string) ([]model.Campaign, error) {
	query := `
        SELECT id, user_id, owner_email, name, sector, number_of_companies, status, external_job_id, contacts, created_at, updated_at
        FROM campaigns WHERE user_id=$1 ORDER BY created_at DESC
    `
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) MarkRunning(id, externalJobID string) error {
	query := `UPDATE campaigns SET status=$1, external_job_id=$2, updated_at=NOW() WHERE id=$3 ` + terminalGuard
	_, err := r.DB.Exec(query, model.StatusRunning, externalJobID, id)
	return err
}

func (r *CampaignRepository) MarkCompleted(id string, contacts []model.Contact) error {
	if contacts == nil {
		contacts = []model.Contact{}
	}
	payload, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("marshal contacts: %w", err)
	}
	query := `UPDATE campaigns SET status=$1, contacts=$2, updated_at=NOW() WHERE id=$3 ` + terminalGuard
	_, err = r.DB.Exec(query, model.StatusCompleted, payload, id)
	return err
}

func (r *CampaignRepository) MarkFailed(id string) error {
	query := `UPDATE campaigns SET status=$1, updated_at=NOW() WHERE id=$2 ` + terminalGuard
	_, err := r.DB.Exec(query, model.StatusFailed, id)
	return err
}

// FailStale fails running campaigns whose last update is older than the
// cutoff. Covers reconcilers lost to a process restart.
func (r *CampaignRepository) FailStale(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	query := `UPDATE campaigns SET status=$1, updated_at=NOW() WHERE status=$2 AND COALESCE(updated_at, created_at) < $3`
	res, err := r.DB.Exec(query, model.StatusFailed, model.StatusRunning, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	var contacts []byte
	err := row.Scan(&c.ID, &c.UserID, &c.OwnerEmail, &c.Name, &c.Sector, &c.NumberOfCompanies,
		&c.Status, &c.ExternalJobID, &contacts, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if contacts != nil {
		if err := json.Unmarshal(contacts, &c.Contacts); err != nil {
			return nil, fmt.Errorf("unmarshal contacts: %w", err)
		}
	}
	return &c, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
