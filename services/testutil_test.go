package services

import (
	"fmt"
	"roundpro-backend/models"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.ServicePlan{},
		&models.Job{},
		&models.Payment{},
		&models.CompletedWeek{},
		&models.ReminderLog{},
	))
	return db
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func intPtr(v int) *int { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func seedClient(t *testing.T, db *gorm.DB, mutate func(*models.Client)) *models.Client {
	t.Helper()

	client := &models.Client{
		OwnerID:  uuid.New(),
		Name:     "Mrs Harris",
		Address1: "14 Elm Road",
		Town:     "Shrewsbury",
		Postcode: "SY1 1AA",
		Quote:    20,
		Status:   models.ClientStatusActive,
	}
	if mutate != nil {
		mutate(client)
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

func seedPlan(t *testing.T, db *gorm.DB, client *models.Client, mutate func(*models.ServicePlan)) *models.ServicePlan {
	t.Helper()

	plan := &models.ServicePlan{
		OwnerID:      client.OwnerID,
		ClientID:     client.ID,
		ServiceType:  "Window Cleaning",
		ScheduleType: models.ScheduleTypeRecurring,
		Price:        15,
		IsActive:     true,
	}
	if mutate != nil {
		mutate(plan)
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func countJobs(t *testing.T, db *gorm.DB, client *models.Client) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&models.Job{}).
		Where("owner_id = ? AND client_id = ?", client.OwnerID, client.ID).
		Count(&n).Error)
	return n
}
