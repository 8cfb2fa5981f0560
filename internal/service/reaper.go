// internal/service/reaper.go
package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scoutpost/outreach-backend/internal/repository"
)

// Reaper fails running campaigns that stopped making progress, typically
// because their reconciler died with the process. Scheduled via cron from
// main.
type Reaper struct {
	Repo       repository.CampaignRepositoryInterface
	StaleAfter time.Duration
}

// Sweep runs one pass. Only running campaigns past the cutoff are
// touched; terminal rows are already immutable.
func (r *Reaper) Sweep() {
	swept, err := r.Repo.FailStale(r.StaleAfter)
	if err != nil {
		logrus.WithError(err).Error("reaper sweep failed")
		return
	}
	if swept > 0 {
		logrus.WithField("swept", swept).Warn("failed stale running campaigns")
	}
}
