// controllers/service_plan.go
package controllers

import (
	"errors"
	"net/http"
	"roundpro-backend/config"
	"roundpro-backend/models"
	"roundpro-backend/services"
	"roundpro-backend/utils"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreatePlanInput defines the expected JSON structure for creating a plan
type CreatePlanInput struct {
	ClientID        uuid.UUID  `json:"clientId" binding:"required"`
	ServiceType     string     `json:"serviceType" binding:"required"`
	ScheduleType    string     `json:"scheduleType" binding:"required,oneof=recurring one_off"`
	FrequencyWeeks  *int       `json:"frequencyWeeks"`
	StartDate       *time.Time `json:"startDate"`
	LastServiceDate *time.Time `json:"lastServiceDate"`
	ScheduledDate   *time.Time `json:"scheduledDate"`
	Price           float64    `json:"price" binding:"min=0"`
	GenerateJobs    bool       `json:"generateJobs"`
}

// UpdatePlanInput defines the expected JSON structure for updating a plan
type UpdatePlanInput struct {
	ServiceType     *string    `json:"serviceType"`
	FrequencyWeeks  *int       `json:"frequencyWeeks"`
	StartDate       *time.Time `json:"startDate"`
	LastServiceDate *time.Time `json:"lastServiceDate"`
	ScheduledDate   *time.Time `json:"scheduledDate"`
	Price           *float64   `json:"price"`
}

// CreatePlan creates a new service plan for a client, optionally generating
// its jobs straight away
func CreatePlan(c *gin.Context) {
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

	var input CreatePlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// The client must exist and belong to this owner
	var client models.Client
	if err := config.DB.Where("owner_id = ? AND id = ?", ownerUUID, input.ClientID).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	plan := models.ServicePlan{
		ID:              uuid.New(),
		OwnerID:         ownerUUID,
		ClientID:        input.ClientID,
		ServiceType:     input.ServiceType,
		ScheduleType:    input.ScheduleType,
		FrequencyWeeks:  input.FrequencyWeeks,
		StartDate:       input.StartDate,
		LastServiceDate: input.LastServiceDate,
		ScheduledDate:   input.ScheduledDate,
		Price:           input.Price,
		IsActive:        true,
	}

	if err := config.DB.Create(&plan).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create plan")
		return
	}

	created := 0
	if input.GenerateJobs {
		jobs := services.NewJobService(config.DB)
		created, err = jobs.CreateJobsForPlan(&plan, &client, services.DefaultHorizonWeeks)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Plan created but job generation failed")
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{"plan": plan, "jobsCreated": created})
}

// GetPlans retrieves the owner's plans, optionally filtered by client
func GetPlans(c *gin.Context) {
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
	if clientID := c.Query("clientId"); clientID != "" {
		clientUUID, err := uuid.Parse(clientID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
			return
		}
		query = query.Where("client_id = ?", clientUUID)
	}

	var plans []models.ServicePlan
	if err := query.Find(&plans).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve plans")
		return
	}

	c.JSON(http.StatusOK, plans)
}

// UpdatePlan edits a plan and propagates renames and price changes to its
// open jobs. Schedule changes never regenerate jobs implicitly.
func UpdatePlan(c *gin.Context) {
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

	planUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	var input UpdatePlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	schedule := services.NewScheduleService(config.DB, services.NewJobService(config.DB))
	plan, err := schedule.UpdatePlan(ownerUUID, planUUID, services.UpdatePlanInput{
		ServiceType:     input.ServiceType,
		FrequencyWeeks:  input.FrequencyWeeks,
		StartDate:       input.StartDate,
		LastServiceDate: input.LastServiceDate,
		ScheduledDate:   input.ScheduledDate,
		Price:           input.Price,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Plan not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update plan")
		}
		return
	}

	c.JSON(http.StatusOK, plan)
}

// RegeneratePlan deletes a plan's pending jobs and recreates them
func RegeneratePlan(c *gin.Context) {
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

	planUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	schedule := services.NewScheduleService(config.DB, services.NewJobService(config.DB))
	result, err := schedule.RegeneratePlanJobs(ownerUUID, planUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Plan not found")
		} else {
			// Deletions are not rolled back; report what happened
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":  "Regeneration failed after deleting existing jobs",
				"result": result,
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// SetPlanActiveInput toggles a plan on or off
type SetPlanActiveInput struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// SetPlanActive deactivates (removing open jobs) or activates (regenerating
// jobs) a plan
func SetPlanActive(c *gin.Context) {
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

	planUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	var input SetPlanActiveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	schedule := services.NewScheduleService(config.DB, services.NewJobService(config.DB))
	plan, affected, err := schedule.SetPlanActive(ownerUUID, planUUID, *input.IsActive)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Plan not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to toggle plan")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan, "jobsAffected": affected})
}

// GeneratePlanJobs runs the generator for one plan on demand
func GeneratePlanJobs(c *gin.Context) {
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

	planUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid plan ID format")
		return
	}

	var plan models.ServicePlan
	if err := config.DB.Where("owner_id = ? AND id = ?", ownerUUID, planUUID).
		First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Plan not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var client models.Client
	if err := config.DB.Where("owner_id = ? AND id = ?", ownerUUID, plan.ClientID).
		First(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Client lookup failed")
		return
	}

	jobs := services.NewJobService(config.DB)
	created, err := jobs.CreateJobsForPlan(&plan, &client, services.DefaultHorizonWeeks)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Job generation failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobsCreated": created})
}
