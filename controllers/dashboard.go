package controllers

import (
	"net/http"
	"roundpro-backend/config"
	"roundpro-backend/models"
	"roundpro-backend/utils"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DashboardOverview struct {
	TotalClients       int64    `json:"totalClients"`
	JobsDueThisWeek    int64    `json:"jobsDueThisWeek"`
	JobsCompletedWeek  int64    `json:"jobsCompletedThisWeek"`
	OutstandingBalance float64  `json:"outstandingBalance"`
	MonthlyTakings     float64  `json:"monthlyTakings"`
	NextJob            *NextJob `json:"nextJob,omitempty"`
}

type NextJob struct {
	ClientName    string    `json:"clientName"`
	ServiceName   string    `json:"serviceName"`
	ScheduledTime time.Time `json:"scheduledTime"`
}

func GetDashboardOverview(c *gin.Context) {
	ownerID, exists := c.Get("ownerId")
	if !exists {
		utils.RespondWithError(c, http.StatusUnauthorized, "Owner ID not found in context")
		return
	}
	ownerUUID, err := uuid.Parse(ownerID.(string))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Invalid owner ID format")
		return
	}

	overview := DashboardOverview{}

	// Active clients
	config.DB.Model(&models.Client{}).
		Where("owner_id = ? AND status = ?", ownerUUID, models.ClientStatusActive).
		Count(&overview.TotalClients)

	// This week's jobs
	weekStart := utils.StartOfWeek(time.Now())
	weekEnd := weekStart.AddDate(0, 0, 7)
	config.DB.Model(&models.Job{}).
		Where("owner_id = ? AND scheduled_time >= ? AND scheduled_time < ? AND status = ?",
			ownerUUID, weekStart, weekEnd, models.JobStatusPending).
		Count(&overview.JobsDueThisWeek)
	config.DB.Model(&models.Job{}).
		Where("owner_id = ? AND scheduled_time >= ? AND scheduled_time < ? AND status IN ?",
			ownerUUID, weekStart, weekEnd,
			[]string{models.JobStatusCompleted, models.JobStatusAccounted}).
		Count(&overview.JobsCompletedWeek)

	// Outstanding: completed work not yet paid
	config.DB.Model(&models.Job{}).
		Where("owner_id = ? AND status IN ? AND payment_status = ?",
			ownerUUID,
			[]string{models.JobStatusCompleted, models.JobStatusAccounted},
			models.PaymentStatusUnpaid).
		Select("COALESCE(SUM(price), 0)").Scan(&overview.OutstandingBalance)

	// This month's takings
	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	config.DB.Model(&models.Payment{}).
		Where("owner_id = ? AND payment_date >= ?", ownerUUID, firstOfMonth).
		Select("COALESCE(SUM(amount), 0)").Scan(&overview.MonthlyTakings)

	// Next pending job
	var job models.Job
	if err := config.DB.Where("owner_id = ? AND status = ? AND scheduled_time >= ?",
		ownerUUID, models.JobStatusPending, utils.BeginningOfDay(now)).
		Order("scheduled_time asc").First(&job).Error; err == nil {
		next := NextJob{ServiceName: job.ServiceName, ScheduledTime: job.ScheduledTime}
		var client models.Client
		if err := config.DB.Select("name").
			Where("owner_id = ? AND id = ?", ownerUUID, job.ClientID).
			First(&client).Error; err == nil {
			next.ClientName = client.Name
		}
		overview.NextJob = &next
	}

	c.JSON(http.StatusOK, overview)
}
