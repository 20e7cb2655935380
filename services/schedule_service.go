// services/schedule_service.go
package services

import (
	"fmt"
	"log"
	"roundpro-backend/models"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduleService reacts to plan edits and keeps already-created jobs
// consistent with the plan they came from.
type ScheduleService struct {
	db   *gorm.DB
	jobs *JobService
}

func NewScheduleService(db *gorm.DB, jobs *JobService) *ScheduleService {
	return &ScheduleService{db: db, jobs: jobs}
}

type UpdatePlanInput struct {
	ServiceType     *string
	FrequencyWeeks  *int
	StartDate       *time.Time
	LastServiceDate *time.Time
	ScheduledDate   *time.Time
	Price           *float64
}

type RegenerateResult struct {
	Deleted       int `json:"deleted"`
	Created       int `json:"created"`
	FailedDeletes int `json:"failedDeletes"`
}

// UpdatePlan applies an edit to a plan and propagates it to open jobs in the
// same transaction. A rename carries pending and in-progress jobs over to the
// new service name; a price change updates pending jobs that were not manually
// re-priced. Changing the frequency or dates only updates the plan record:
// regeneration of future jobs stays an explicit user action.
func (s *ScheduleService) UpdatePlan(ownerID, planID uuid.UUID, input UpdatePlanInput) (*models.ServicePlan, error) {
	if ownerID == uuid.Nil {
		return nil, ErrOwnerNotResolved
	}

	var plan models.ServicePlan
	if err := s.db.Where("owner_id = ? AND id = ?", ownerID, planID).First(&plan).Error; err != nil {
		return nil, err
	}

	oldName := plan.ServiceType
	oldPrice := plan.Price

	if input.ServiceType != nil {
		plan.ServiceType = *input.ServiceType
	}
	if input.FrequencyWeeks != nil {
		plan.FrequencyWeeks = input.FrequencyWeeks
	}
	if input.StartDate != nil {
		plan.StartDate = input.StartDate
	}
	if input.LastServiceDate != nil {
		plan.LastServiceDate = input.LastServiceDate
	}
	if input.ScheduledDate != nil {
		plan.ScheduledDate = input.ScheduledDate
	}
	if input.Price != nil {
		plan.Price = *input.Price
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&plan).Error; err != nil {
			return err
		}

		if plan.ServiceType != oldName {
			res := tx.Model(&models.Job{}).
				Where("owner_id = ? AND client_id = ? AND service_name = ? AND status IN ?",
					ownerID, plan.ClientID, oldName,
					[]string{models.JobStatusPending, models.JobStatusInProgress}).
				Updates(map[string]interface{}{
					"service_name": plan.ServiceType,
					"dedup_key":    gorm.Expr("replace(dedup_key, ?, ?)", "|"+oldName+"|", "|"+plan.ServiceType+"|"),
				})
			if res.Error != nil {
				return res.Error
			}
			log.Printf("Plan %s: renamed %d open jobs from %q to %q", plan.ID, res.RowsAffected, oldName, plan.ServiceType)
		}

		if plan.Price != oldPrice {
			res := tx.Model(&models.Job{}).
				Where("owner_id = ? AND client_id = ? AND service_name = ? AND status = ? AND has_custom_price = ?",
					ownerID, plan.ClientID, plan.ServiceType, models.JobStatusPending, false).
				Update("price", plan.Price)
			if res.Error != nil {
				return res.Error
			}
			log.Printf("Plan %s: re-priced %d pending jobs to %.2f", plan.ID, res.RowsAffected, plan.Price)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if scheduleChanged(input) {
		log.Printf("Plan %s: schedule changed; future jobs are regenerated only on explicit request", plan.ID)
	}

	return &plan, nil
}

func scheduleChanged(input UpdatePlanInput) bool {
	return input.FrequencyWeeks != nil || input.StartDate != nil || input.ScheduledDate != nil
}

// RegeneratePlanJobs deletes the plan's pending jobs and re-runs the generator
// for it. Individual delete failures are logged and counted rather than
// aborting the rest; a creation failure after the deletes is surfaced without
// rolling them back.
func (s *ScheduleService) RegeneratePlanJobs(ownerID, planID uuid.UUID) (RegenerateResult, error) {
	var result RegenerateResult

	if ownerID == uuid.Nil {
		return result, ErrOwnerNotResolved
	}

	var plan models.ServicePlan
	if err := s.db.Where("owner_id = ? AND id = ?", ownerID, planID).First(&plan).Error; err != nil {
		return result, err
	}

	var client models.Client
	if err := s.db.Where("owner_id = ? AND id = ?", ownerID, plan.ClientID).First(&client).Error; err != nil {
		return result, err
	}

	result.Deleted, result.FailedDeletes = s.deletePlanJobs(&plan, []string{models.JobStatusPending})

	created, err := s.jobs.CreateJobsForPlan(&plan, &client, DefaultHorizonWeeks)
	result.Created = created
	if err != nil {
		return result, fmt.Errorf("regenerate jobs: %w", err)
	}
	return result, nil
}

// SetPlanActive toggles a plan. Deactivating removes its open jobs;
// activating regenerates them. Returns the number of jobs removed or created.
func (s *ScheduleService) SetPlanActive(ownerID, planID uuid.UUID, active bool) (*models.ServicePlan, int, error) {
	if ownerID == uuid.Nil {
		return nil, 0, ErrOwnerNotResolved
	}

	var plan models.ServicePlan
	if err := s.db.Where("owner_id = ? AND id = ?", ownerID, planID).First(&plan).Error; err != nil {
		return nil, 0, err
	}

	if plan.IsActive == active {
		return &plan, 0, nil
	}

	plan.IsActive = active
	if err := s.db.Model(&plan).Update("is_active", active).Error; err != nil {
		return nil, 0, err
	}

	if !active {
		deleted, failed := s.deletePlanJobs(&plan, []string{models.JobStatusPending, models.JobStatusInProgress})
		if failed > 0 {
			return &plan, deleted, fmt.Errorf("failed to delete %d jobs", failed)
		}
		return &plan, deleted, nil
	}

	var client models.Client
	if err := s.db.Where("owner_id = ? AND id = ?", ownerID, plan.ClientID).First(&client).Error; err != nil {
		return nil, 0, err
	}
	created, err := s.jobs.CreateJobsForPlan(&plan, &client, DefaultHorizonWeeks)
	return &plan, created, err
}

// deletePlanJobs hard-deletes the plan's jobs in the given statuses one at a
// time, tolerating per-job failures. Hard delete frees the slot's dedup key
// so regeneration can re-fill it.
func (s *ScheduleService) deletePlanJobs(plan *models.ServicePlan, statuses []string) (deleted, failed int) {
	var jobs []models.Job
	if err := s.db.Where("owner_id = ? AND client_id = ? AND service_name = ? AND status IN ?",
		plan.OwnerID, plan.ClientID, plan.ServiceType, statuses).Find(&jobs).Error; err != nil {
		log.Printf("Plan %s: failed to list jobs for deletion: %v", plan.ID, err)
		return 0, 0
	}

	for i := range jobs {
		if err := s.db.Unscoped().Delete(&jobs[i]).Error; err != nil {
			log.Printf("Plan %s: failed to delete job %s: %v", plan.ID, jobs[i].ID, err)
			failed++
			continue
		}
		deleted++
	}
	return deleted, failed
}

// DeleteClientJobs removes a client's open jobs, used when a client is
// deleted or moved to ex-client. Completed history is never touched.
func (s *ScheduleService) DeleteClientJobs(ownerID, clientID uuid.UUID) (int, error) {
	if ownerID == uuid.Nil {
		return 0, ErrOwnerNotResolved
	}

	res := s.db.Unscoped().
		Where("owner_id = ? AND client_id = ? AND status IN ?",
			ownerID, clientID, []string{models.JobStatusPending, models.JobStatusInProgress}).
		Delete(&models.Job{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
