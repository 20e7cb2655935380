// services/plan_service.go
package services

import (
	"log"
	"roundpro-backend/models"
	"roundpro-backend/utils"
	"time"

	"gorm.io/gorm"
)

// LegacyServiceName is the join key used for jobs generated from a client's
// legacy schedule fields, which predate named service plans.
const LegacyServiceName = "Window Cleaning"

// ResolveNextAnchor computes the next occurrence date on-or-after today.
//
// One-off plans return their scheduled date verbatim (a past date is the
// caller's concern). Recurring plans step forward from the start date in
// frequency-week jumps until on-or-after today; a future start date is
// returned unchanged. Plans missing the fields their schedule type needs
// resolve to nil and are skipped by callers.
func ResolveNextAnchor(plan *models.ServicePlan, today time.Time) *time.Time {
	today = utils.BeginningOfDay(today)

	if plan.ScheduleType == models.ScheduleTypeOneOff {
		if plan.ScheduledDate == nil {
			return nil
		}
		anchor := utils.BeginningOfDay(*plan.ScheduledDate)
		return &anchor
	}

	if plan.FrequencyWeeks == nil || *plan.FrequencyWeeks <= 0 || plan.StartDate == nil {
		return nil
	}

	anchor := utils.BeginningOfDay(*plan.StartDate)
	for anchor.Before(today) {
		anchor = anchor.AddDate(0, 0, *plan.FrequencyWeeks*7)
	}
	return &anchor
}

// DeactivateIfExpired marks a plan inactive once its last-service date has
// passed. Idempotent: already-inactive plans are left alone. Returns whether
// the plan was deactivated by this call.
func DeactivateIfExpired(db *gorm.DB, plan *models.ServicePlan, today time.Time) (bool, error) {
	if plan.LastServiceDate == nil || !plan.IsActive {
		return false, nil
	}
	if !utils.BeginningOfDay(*plan.LastServiceDate).Before(utils.BeginningOfDay(today)) {
		return false, nil
	}

	plan.IsActive = false
	if err := db.Model(plan).Update("is_active", false).Error; err != nil {
		return false, err
	}
	log.Printf("Plan %s (%s) auto-deactivated: last service date %s has passed",
		plan.ID, plan.ServiceType, plan.LastServiceDate.Format("2006-01-02"))
	return true, nil
}

// EffectivePlans returns the plans the generator should run for a client.
//
// Clients with ServicePlan rows get their active, unexpired plans. Clients
// with none get transient plans synthesized from the legacy schedule fields
// (frequency/nextVisit/additionalServices), so a single generation algorithm
// serves both generations of the data model. Synthetic plans carry a nil ID
// and are never persisted.
func EffectivePlans(db *gorm.DB, client *models.Client, today time.Time) ([]models.ServicePlan, error) {
	var plans []models.ServicePlan
	if err := db.Where("owner_id = ? AND client_id = ?", client.OwnerID, client.ID).
		Find(&plans).Error; err != nil {
		return nil, err
	}

	if len(plans) == 0 {
		return legacyPlans(client), nil
	}

	active := make([]models.ServicePlan, 0, len(plans))
	for i := range plans {
		if _, err := DeactivateIfExpired(db, &plans[i], today); err != nil {
			return nil, err
		}
		if plans[i].IsActive {
			active = append(active, plans[i])
		}
	}
	return active, nil
}

// legacyPlans maps a client's embedded legacy schedule fields onto transient
// ServicePlan values.
func legacyPlans(client *models.Client) []models.ServicePlan {
	var plans []models.ServicePlan

	if client.NextVisit != nil {
		plan := models.ServicePlan{
			OwnerID:     client.OwnerID,
			ClientID:    client.ID,
			ServiceType: LegacyServiceName,
			Price:       client.Quote,
			IsActive:    true,
		}
		if client.FrequencyWeeks != nil && *client.FrequencyWeeks > 0 {
			plan.ScheduleType = models.ScheduleTypeRecurring
			plan.FrequencyWeeks = client.FrequencyWeeks
			plan.StartDate = client.NextVisit
		} else {
			// Legacy one-off: a next visit with no frequency
			plan.ScheduleType = models.ScheduleTypeOneOff
			plan.ScheduledDate = client.NextVisit
		}
		plans = append(plans, plan)
	}

	for _, extra := range client.AdditionalServices {
		if extra.NextVisit == nil || extra.ServiceName == "" {
			continue
		}
		plan := models.ServicePlan{
			OwnerID:     client.OwnerID,
			ClientID:    client.ID,
			ServiceType: extra.ServiceName,
			Price:       extra.Price,
			IsActive:    true,
		}
		if extra.FrequencyWeeks != nil && *extra.FrequencyWeeks > 0 {
			plan.ScheduleType = models.ScheduleTypeRecurring
			plan.FrequencyWeeks = extra.FrequencyWeeks
			plan.StartDate = extra.NextVisit
		} else {
			plan.ScheduleType = models.ScheduleTypeOneOff
			plan.ScheduledDate = extra.NextVisit
		}
		plans = append(plans, plan)
	}

	return plans
}
