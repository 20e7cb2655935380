// services/rollover_service.go
package services

import (
	"log"
	"roundpro-backend/models"
	"roundpro-backend/utils"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// RolloverService finalizes last week's completed jobs and extends the
// generation horizon by one week. Runs every Monday at midnight.
type RolloverService struct {
	db           *gorm.DB
	jobs         *JobService
	horizonWeeks int
	now          func() time.Time
}

type RolloverResult struct {
	JobsCompleted int `json:"jobsCompleted"`
	JobsCreated   int `json:"jobsCreated"`
}

func NewRolloverService(db *gorm.DB, jobs *JobService) *RolloverService {
	return &RolloverService{
		db:           db,
		jobs:         jobs,
		horizonWeeks: DefaultHorizonWeeks,
		now:          time.Now,
	}
}

func (s *RolloverService) StartScheduler() {
	c := cron.New()

	// Every Monday at midnight
	c.AddFunc("0 0 * * 1", func() {
		if _, err := s.HandleWeeklyRollover(); err != nil {
			log.Printf("Weekly rollover finished with errors: %v", err)
		}
	})

	c.Start()
	log.Println("Weekly rollover scheduler started")
}

// HandleWeeklyRollover processes every active owner: jobs completed during
// the previous week move to the terminal accounted status, and the week at
// the far edge of the horizon gets its jobs created. One owner failing does
// not stop the others.
func (s *RolloverService) HandleWeeklyRollover() (RolloverResult, error) {
	var result RolloverResult
	log.Println("Starting weekly rollover...")

	var owners []models.User
	if err := s.db.Find(&owners, "is_active = ?", true).Error; err != nil {
		log.Printf("Failed to fetch owners: %v", err)
		return result, err
	}

	var firstErr error
	for _, owner := range owners {
		r, err := s.RolloverOwner(owner.ID)
		if err != nil {
			log.Printf("Owner %s: rollover failed: %v", owner.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		result.JobsCompleted += r.JobsCompleted
		result.JobsCreated += r.JobsCreated
	}

	log.Printf("Weekly rollover completed: %d jobs accounted, %d jobs created",
		result.JobsCompleted, result.JobsCreated)
	return result, firstErr
}

// RolloverOwner runs both rollover steps for a single owner.
func (s *RolloverService) RolloverOwner(ownerID uuid.UUID) (RolloverResult, error) {
	var result RolloverResult
	if ownerID == uuid.Nil {
		return result, ErrOwnerNotResolved
	}

	thisWeek := utils.StartOfWeek(s.now())
	prevWeek := thisWeek.AddDate(0, 0, -7)

	res := s.db.Model(&models.Job{}).
		Where("owner_id = ? AND status = ? AND scheduled_time >= ? AND scheduled_time < ?",
			ownerID, models.JobStatusCompleted, prevWeek, thisWeek).
		Update("status", models.JobStatusAccounted)
	if res.Error != nil {
		return result, res.Error
	}
	result.JobsCompleted = int(res.RowsAffected)

	created, err := s.jobs.CreateJobsForWeek(ownerID, thisWeek.AddDate(0, 0, s.horizonWeeks*7))
	result.JobsCreated = created
	return result, err
}
