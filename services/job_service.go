// services/job_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"roundpro-backend/models"
	"roundpro-backend/utils"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// DefaultHorizonWeeks is how far ahead the generator keeps jobs populated.
	DefaultHorizonWeeks = 52

	// FallbackJobPrice applies when neither the plan nor the client carries a price.
	FallbackJobPrice = 25.0
)

var ErrOwnerNotResolved = errors.New("owner not resolved")

// JobService generates scheduled job occurrences from service plans.
type JobService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{db: db, now: time.Now}
}

// CreateJobsForClient generates jobs for all of a client's effective plans up
// to the horizon. Returns the number of jobs created. A failure on one plan
// does not stop generation for the others.
func (s *JobService) CreateJobsForClient(ownerID, clientID uuid.UUID, horizonWeeks int, skipTodayIfComplete bool) (int, error) {
	if ownerID == uuid.Nil {
		return 0, ErrOwnerNotResolved
	}

	var client models.Client
	if err := s.db.Where("owner_id = ? AND id = ?", ownerID, clientID).First(&client).Error; err != nil {
		return 0, fmt.Errorf("load client: %w", err)
	}
	if client.Status != models.ClientStatusActive {
		return 0, nil
	}

	plans, err := EffectivePlans(s.db, &client, s.now())
	if err != nil {
		return 0, err
	}

	created := 0
	var firstErr error
	for i := range plans {
		n, err := s.generateForPlan(&client, &plans[i], horizonWeeks, skipTodayIfComplete)
		if err != nil {
			log.Printf("Client %s: failed to generate jobs for %s: %v", client.ID, plans[i].ServiceType, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		created += n
	}
	return created, firstErr
}

// CreateJobsForPlan generates jobs for a single plan up to the horizon.
// Inactive plans generate nothing, so a deactivated plan stays job-free
// until it is reactivated.
func (s *JobService) CreateJobsForPlan(plan *models.ServicePlan, client *models.Client, horizonWeeks int) (int, error) {
	if plan.OwnerID == uuid.Nil {
		return 0, ErrOwnerNotResolved
	}
	if !plan.IsActive {
		return 0, nil
	}
	return s.generateForPlan(client, plan, horizonWeeks, false)
}

// CreateJobsForWeek creates at most one job per effective plan whose next
// occurrence lands inside [weekStart, weekStart+7d). Used by the weekly
// rollover to keep the far edge of the horizon populated.
func (s *JobService) CreateJobsForWeek(ownerID uuid.UUID, weekStart time.Time) (int, error) {
	if ownerID == uuid.Nil {
		return 0, ErrOwnerNotResolved
	}

	weekStart = utils.BeginningOfDay(weekStart)
	weekEnd := weekStart.AddDate(0, 0, 7)

	var clients []models.Client
	if err := s.db.Where("owner_id = ? AND status = ?", ownerID, models.ClientStatusActive).
		Find(&clients).Error; err != nil {
		return 0, err
	}

	created := 0
	var firstErr error
	for i := range clients {
		client := &clients[i]

		plans, err := EffectivePlans(s.db, client, s.now())
		if err != nil {
			log.Printf("Client %s: failed to resolve plans: %v", client.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(plans) == 0 {
			continue
		}

		covered, err := s.coveredSlots(client)
		if err != nil {
			log.Printf("Client %s: failed to load existing jobs: %v", client.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		for j := range plans {
			plan := &plans[j]
			anchor := ResolveNextAnchor(plan, weekStart)
			if anchor == nil || anchor.Before(weekStart) || !anchor.Before(weekEnd) {
				continue
			}
			if plan.LastServiceDate != nil && anchor.After(utils.BeginningOfDay(*plan.LastServiceDate)) {
				continue
			}
			if covered[slotKey(plan.ServiceType, *anchor)] {
				continue
			}

			job := s.buildJob(client, plan, *anchor)
			res := s.db.Clauses(dedupConflict()).Create(&job)
			if res.Error != nil {
				log.Printf("Client %s: failed to create %s job for %s: %v",
					client.ID, plan.ServiceType, utils.DateKey(*anchor), res.Error)
				if firstErr == nil {
					firstErr = res.Error
				}
				continue
			}
			created += int(res.RowsAffected)
		}
	}
	return created, firstErr
}

// generateForPlan runs the core loop for one plan: resolve the anchor, walk
// forward in frequency-week steps to the horizon, skip covered or closed-out
// slots, and commit everything staged in a single transaction.
func (s *JobService) generateForPlan(client *models.Client, plan *models.ServicePlan, horizonWeeks int, skipTodayIfComplete bool) (int, error) {
	if horizonWeeks <= 0 {
		horizonWeeks = DefaultHorizonWeeks
	}

	today := utils.BeginningOfDay(s.now())
	anchor := ResolveNextAnchor(plan, today)
	if anchor == nil {
		// Incomplete plan; nothing to generate
		return 0, nil
	}

	covered, err := s.coveredSlots(client)
	if err != nil {
		return 0, err
	}

	todayComplete := false
	if skipTodayIfComplete {
		todayComplete, err = s.todayMarkedComplete(client.OwnerID, today)
		if err != nil {
			return 0, err
		}
	}

	horizonEnd := today.AddDate(0, 0, horizonWeeks*7)

	var staged []models.Job
	if plan.ScheduleType == models.ScheduleTypeOneOff {
		if !covered[slotKey(plan.ServiceType, *anchor)] {
			staged = append(staged, s.buildJob(client, plan, *anchor))
		}
	} else {
		cursor := *anchor
		for i := 0; i < horizonWeeks; i++ {
			if plan.LastServiceDate != nil && cursor.After(utils.BeginningOfDay(*plan.LastServiceDate)) {
				break
			}
			if cursor.After(horizonEnd) {
				break
			}

			switch {
			case covered[slotKey(plan.ServiceType, cursor)]:
				// Slot already has a job, or had one before it was moved
			case todayComplete && cursor.Equal(today):
				// Day already closed out on the runsheet
			default:
				staged = append(staged, s.buildJob(client, plan, cursor))
			}

			cursor = cursor.AddDate(0, 0, *plan.FrequencyWeeks*7)
		}
	}

	if len(staged) == 0 {
		return 0, nil
	}

	// One atomic batch per plan
	created := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range staged {
			res := tx.Clauses(dedupConflict()).Create(&staged[i])
			if res.Error != nil {
				return res.Error
			}
			created += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("commit jobs for %s: %w", plan.ServiceType, err)
	}
	return created, nil
}

// coveredSlots loads the client's existing jobs once and indexes every slot
// they cover. A moved job covers both its current date and the original slot
// it was generated into, so regeneration cannot re-fill the vacated date.
func (s *JobService) coveredSlots(client *models.Client) (map[string]bool, error) {
	var existing []models.Job
	if err := s.db.Where("owner_id = ? AND client_id = ?", client.OwnerID, client.ID).
		Find(&existing).Error; err != nil {
		return nil, err
	}

	covered := make(map[string]bool, len(existing)*2)
	for i := range existing {
		covered[slotKey(existing[i].ServiceName, existing[i].ScheduledTime)] = true
		if existing[i].OriginalScheduledTime != nil {
			covered[slotKey(existing[i].ServiceName, *existing[i].OriginalScheduledTime)] = true
		}
	}
	return covered, nil
}

func (s *JobService) todayMarkedComplete(ownerID uuid.UUID, today time.Time) (bool, error) {
	var week models.CompletedWeek
	err := s.db.Where("owner_id = ? AND week_start = ?", ownerID, utils.StartOfWeek(today)).
		First(&week).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return week.DayComplete(today.Weekday()), nil
}

func (s *JobService) buildJob(client *models.Client, plan *models.ServicePlan, date time.Time) models.Job {
	price := plan.Price
	if price == 0 {
		price = client.Quote
	}
	if price == 0 {
		price = FallbackJobPrice
	}

	var planID *uuid.UUID
	if plan.ID != uuid.Nil {
		id := plan.ID
		planID = &id
	}

	return models.Job{
		OwnerID:           client.OwnerID,
		ClientID:          client.ID,
		PlanID:            planID,
		ServiceName:       plan.ServiceType,
		Address:           client.DisplayAddress(),
		ScheduledTime:     utils.AtServiceTime(date),
		Status:            models.JobStatusPending,
		Price:             price,
		PaymentStatus:     models.PaymentStatusUnpaid,
		GocardlessEnabled: client.GocardlessEnabled,
		DedupKey:          models.JobDedupKey(client.OwnerID, client.ID, plan.ServiceType, date),
	}
}

func slotKey(serviceName string, date time.Time) string {
	return serviceName + "|" + utils.DateKey(date)
}

// dedupConflict makes inserts idempotent on the (owner, client, service, date)
// key, so a concurrent second run cannot produce duplicate occurrences.
func dedupConflict() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoNothing: true,
	}
}
