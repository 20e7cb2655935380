// controllers/job.go
package controllers

import (
	"errors"
	"net/http"
	"roundpro-backend/config"
	"roundpro-backend/models"
	"roundpro-backend/services"
	"roundpro-backend/utils"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpdateJobInput defines the expected JSON structure for updating a job
type UpdateJobInput struct {
	Status             *string    `json:"status" binding:"omitempty,oneof=pending in_progress completed accounted cancelled"`
	ETA                *string    `json:"eta"`
	Price              *float64   `json:"price"`
	PaymentStatus      *string    `json:"paymentStatus" binding:"omitempty,oneof=unpaid paid"`
	ScheduledTime      *time.Time `json:"scheduledTime"` // a move; the original slot stays covered
	CompletionSequence *int       `json:"completionSequence"`
}

// GetJobs retrieves the owner's jobs, filtered to a week when requested
func GetJobs(c *gin.Context) {
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

	query := config.DB.Where("owner_id = ?", ownerUUID)

	if week := c.Query("week"); week != "" {
		weekStart, err := time.Parse("2006-01-02", week)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid week date, expected YYYY-MM-DD")
			return
		}
		weekStart = utils.StartOfWeek(weekStart)
		query = query.Where("scheduled_time >= ? AND scheduled_time < ?", weekStart, weekStart.AddDate(0, 0, 7))
	}
	if clientID := c.Query("clientId"); clientID != "" {
		clientUUID, err := uuid.Parse(clientID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
			return
		}
		query = query.Where("client_id = ?", clientUUID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var jobs []models.Job
	if err := query.Order("scheduled_time asc").Find(&jobs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve jobs")
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// UpdateJob updates a job's status, eta, price or scheduled day. Moving a job
// to another day records the original slot once so the generator never
// re-fills it.
func UpdateJob(c *gin.Context) {
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

	jobUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	var input UpdateJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var job models.Job
	if err := config.DB.Where("owner_id = ? AND id = ?", ownerUUID, jobUUID).
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Job not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if job.Status == models.JobStatusAccounted {
		utils.RespondWithError(c, http.StatusConflict, "Accounted jobs can no longer be edited")
		return
	}

	// Update fields if provided
	if input.Status != nil {
		job.Status = *input.Status
		if job.Status == models.JobStatusCompleted && job.CompletedAt == nil {
			now := time.Now()
			job.CompletedAt = &now
		}
	}
	if input.ETA != nil {
		job.ETA = input.ETA
	}
	if input.Price != nil {
		job.Price = *input.Price
		job.HasCustomPrice = true
	}
	if input.PaymentStatus != nil {
		job.PaymentStatus = *input.PaymentStatus
	}
	if input.CompletionSequence != nil {
		job.CompletionSequence = input.CompletionSequence
	}
	if input.ScheduledTime != nil && !utils.SameDay(*input.ScheduledTime, job.ScheduledTime) {
		// Preserve the first slot the generator filled
		if job.OriginalScheduledTime == nil {
			original := job.ScheduledTime
			job.OriginalScheduledTime = &original
		}
		job.ScheduledTime = utils.AtServiceTime(*input.ScheduledTime)
	}

	if err := config.DB.Save(&job).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update job")
		return
	}

	c.JSON(http.StatusOK, job)
}

// DeleteJob removes a single job permanently
func DeleteJob(c *gin.Context) {
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

	jobUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	result := config.DB.Unscoped().Where("owner_id = ? AND id = ?", ownerUUID, jobUUID).
		Delete(&models.Job{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete job")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Job not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}

// GenerateClientJobs runs the generator for one client on demand
func GenerateClientJobs(c *gin.Context) {
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

	clientUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	skipToday := c.Query("skipTodayIfComplete") == "true"

	jobs := services.NewJobService(config.DB)
	created, err := jobs.CreateJobsForClient(ownerUUID, clientUUID, services.DefaultHorizonWeeks, skipToday)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Job generation failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobsCreated": created})
}

// CompleteDay marks today (or a given date) as closed out on the runsheet
func CompleteDay(c *gin.Context) {
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

	day := time.Now()
	if d := c.Query("date"); d != "" {
		day, err = time.Parse("2006-01-02", d)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
	}

	weekStart := utils.StartOfWeek(day)
	weekday := strings.ToLower(day.Weekday().String())

	var week models.CompletedWeek
	err = config.DB.Where("owner_id = ? AND week_start = ?", ownerUUID, weekStart).First(&week).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		week = models.CompletedWeek{
			OwnerID:   ownerUUID,
			WeekStart: weekStart,
			Days:      models.JSONB{weekday: true},
		}
		if err := config.DB.Create(&week).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to mark day complete")
			return
		}
		c.JSON(http.StatusOK, week)
		return
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	if week.Days == nil {
		week.Days = models.JSONB{}
	}
	week.Days[weekday] = true
	if err := config.DB.Save(&week).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to mark day complete")
		return
	}

	c.JSON(http.StatusOK, week)
}
