package services

import (
	"roundpro-backend/models"
	"roundpro-backend/utils"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedJob(t *testing.T, db *gorm.DB, client *models.Client, serviceName, status string, day int, mutate func(*models.Job)) *models.Job {
	t.Helper()

	job := &models.Job{
		OwnerID:       client.OwnerID,
		ClientID:      client.ID,
		ServiceName:   serviceName,
		ScheduledTime: utils.AtServiceTime(date(2024, 1, day)),
		Status:        status,
		Price:         15,
		PaymentStatus: models.PaymentStatusUnpaid,
	}
	if mutate != nil {
		mutate(job)
	}
	require.NoError(t, db.Create(job).Error)
	return job
}

func newScheduleService(db *gorm.DB) (*ScheduleService, *JobService) {
	jobs := NewJobService(db)
	jobs.now = fixedNow(date(2024, 1, 1))
	return NewScheduleService(db, jobs), jobs
}

func TestUpdatePlanRenamePropagation(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newScheduleService(db)

	client := seedClient(t, db, nil)
	plan := seedPlan(t, db, client, func(p *models.ServicePlan) {
		p.ServiceType = "Window Cleaning"
		p.FrequencyWeeks = intPtr(4)
		p.StartDate = timePtr(date(2024, 1, 1))
	})

	seedJob(t, db, client, "Window Cleaning", models.JobStatusPending, 1, nil)
	seedJob(t, db, client, "Window Cleaning", models.JobStatusInProgress, 29, nil)
	done := seedJob(t, db, client, "Window Cleaning", models.JobStatusCompleted, 15, nil)

	newName := "Exterior Cleaning"
	updated, err := svc.UpdatePlan(client.OwnerID, plan.ID, UpdatePlanInput{ServiceType: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.ServiceType)

	var renamed int64
	require.NoError(t, db.Model(&models.Job{}).
		Where("client_id = ? AND service_name = ?", client.ID, newName).
		Count(&renamed).Error)
	assert.EqualValues(t, 2, renamed)

	// Completed jobs keep the historical name
	var stored models.Job
	require.NoError(t, db.First(&stored, "id = ?", done.ID).Error)
	assert.Equal(t, "Window Cleaning", stored.ServiceName)
}

func TestUpdatePlanRepriceSkipsCustomPrices(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newScheduleService(db)

	client := seedClient(t, db, nil)
	plan := seedPlan(t, db, client, func(p *models.ServicePlan) {
		p.FrequencyWeeks = intPtr(4)
		p.StartDate = timePtr(date(2024, 1, 1))
		p.Price = 15
	})

	normal := seedJob(t, db, client, "Window Cleaning", models.JobStatusPending, 1, nil)
	custom := seedJob(t, db, client, "Window Cleaning", models.JobStatusPending, 29, func(j *models.Job) {
		j.Price = 99
		j.HasCustomPrice = true
	})
	done := seedJob(t, db, client, "Window Cleaning", models.JobStatusCompleted, 15, nil)

	newPrice := 18.0
	_, err := svc.UpdatePlan(client.OwnerID, plan.ID, UpdatePlanInput{Price: &newPrice})
	require.NoError(t, err)

	var storedNormal models.Job
	require.NoError(t, db.First(&storedNormal, "id = ?", normal.ID).Error)
	assert.Equal(t, 18.0, storedNormal.Price)

	var storedCustom models.Job
	require.NoError(t, db.First(&storedCustom, "id = ?", custom.ID).Error)
	assert.Equal(t, 99.0, storedCustom.Price)

	var storedDone models.Job
	require.NoError(t, db.First(&storedDone, "id = ?", done.ID).Error)
	assert.Equal(t, 15.0, storedDone.Price)
}

func TestUpdatePlanScheduleChangeDoesNotTouchJobs(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newScheduleService(db)

	client := seedClient(t, db, nil)
	plan := seedPlan(t, db, client, func(p *models.ServicePlan) {
		p.FrequencyWeeks = intPtr(4)
		p.StartDate = timePtr(date(2024, 1, 1))
	})
	seedJob(t, db, client, "Window Cleaning", models.JobStatusPending, 1, nil)

	updated, err := svc.UpdatePlan(client.OwnerID, plan.ID, UpdatePlanInput{FrequencyWeeks: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, *updated.FrequencyWeeks)

	// Regeneration is explicit; the existing job set is untouched
	assert.EqualValues(t, 1, countJobs(t, db, client))
}

func TestRegeneratePlanJobs(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newScheduleService(db)

	client := seedClient(t, db, nil)
	plan := seedPlan(t, db, client, func(p *models.ServicePlan) {
		p.FrequencyWeeks = intPtr(4)
		p.StartDate = timePtr(date(2024, 1, 1))
	})

	// Stale pending jobs on off-schedule dates, plus completed history
	seedJob(t, db, client, "Window Cleaning", models.JobStatusPending, 3, nil)
	seedJob(t, db, client, "Window Cleaning", models.JobStatusPending, 10, nil)
	done := seedJob(t, db, client, "Window Cleaning", models.JobStatusCompleted, 15, nil)

	result, err := svc.RegeneratePlanJobs(client.OwnerID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Deleted)
	assert.Zero(t, result.FailedDeletes)
	assert.Greater(t, result.Created, 0)

	// Completed history survives regeneration
	var stored models.Job
	require.NoError(t, db.First(&stored, "id = ?", done.ID).Error)

	// And all pending jobs now sit on the plan's schedule
	var jobs []models.Job
	require.NoError(t, db.Where("client_id = ? AND status = ?", client.ID, models.JobStatusPending).
		Find(&jobs).Error)
	for _, job := range jobs {
		assert.Zero(t, utils.DaysBetween(date(2024, 1, 1), job.ScheduledTime)%28)
	}
}

func TestSetPlanActiveToggle(t *testing.T) {
	db := newTestDB(t)
	svc, jobs := newScheduleService(db)

	client := seedClient(t, db, nil)
	plan := seedPlan(t, db, client, func(p *models.ServicePlan) {
		p.FrequencyWeeks = intPtr(4)
		p.StartDate = timePtr(date(2024, 1, 1))
	})

	created, err := jobs.CreateJobsForPlan(plan, client, 8)
	require.NoError(t, err)
	require.Greater(t, created, 0)

	// Deactivating removes the open jobs
	updated, removed, err := svc.SetPlanActive(client.OwnerID, plan.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, created, removed)
	assert.EqualValues(t, 0, countJobs(t, db, client))

	// Toggling the same state again is a no-op
	_, affected, err := svc.SetPlanActive(client.OwnerID, plan.ID, false)
	require.NoError(t, err)
	assert.Zero(t, affected)

	// Activating regenerates
	updated, regenerated, err := svc.SetPlanActive(client.OwnerID, plan.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.Greater(t, regenerated, 0)
}

func TestDeleteClientJobsKeepsHistory(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newScheduleService(db)

	client := seedClient(t, db, nil)
	seedJob(t, db, client, "Window Cleaning", models.JobStatusPending, 1, nil)
	seedJob(t, db, client, "Window Cleaning", models.JobStatusInProgress, 8, nil)
	seedJob(t, db, client, "Window Cleaning", models.JobStatusCompleted, 15, nil)
	seedJob(t, db, client, "Window Cleaning", models.JobStatusAccounted, 22, nil)

	deleted, err := svc.DeleteClientJobs(client.OwnerID, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.EqualValues(t, 2, countJobs(t, db, client))
}
