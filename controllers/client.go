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

// CreateClientInput defines the expected JSON structure for creating a client
type CreateClientInput struct {
	Name           string     `json:"name" binding:"required"`
	Phone          string     `json:"phone"`
	AccountNumber  string     `json:"accountNumber"`
	Address1       string     `json:"address1"`
	Town           string     `json:"town"`
	Postcode       string     `json:"postcode"`
	Address        string     `json:"address"` // legacy single-field form
	Quote          float64    `json:"quote" binding:"min=0"`
	RoundOrder     int        `json:"roundOrder"`
	FrequencyWeeks *int       `json:"frequencyWeeks"`
	NextVisit      *time.Time `json:"nextVisit"`
}

// UpdateClientInput defines the expected JSON structure for updating a client
type UpdateClientInput struct {
	Name              *string    `json:"name"`
	Phone             *string    `json:"phone"`
	AccountNumber     *string    `json:"accountNumber"`
	Address1          *string    `json:"address1"`
	Town              *string    `json:"town"`
	Postcode          *string    `json:"postcode"`
	Address           *string    `json:"address"`
	Quote             *float64   `json:"quote"`
	RoundOrder        *int       `json:"roundOrder"`
	FrequencyWeeks    *int       `json:"frequencyWeeks"`
	NextVisit         *time.Time `json:"nextVisit"`
	GocardlessEnabled *bool      `json:"gocardlessEnabled"`
}

// CreateClient creates a new client for the owner's round
func CreateClient(c *gin.Context) {
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

	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Validate phone format when provided
	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	if input.Postcode != "" && !utils.ValidatePostcode(input.Postcode) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid postcode format")
		return
	}

	client := models.Client{
		ID:             uuid.New(),
		OwnerID:        ownerUUID,
		Name:           input.Name,
		Phone:          input.Phone,
		AccountNumber:  input.AccountNumber,
		Address1:       input.Address1,
		Town:           input.Town,
		Postcode:       input.Postcode,
		Address:        input.Address,
		Quote:          input.Quote,
		RoundOrder:     input.RoundOrder,
		FrequencyWeeks: input.FrequencyWeeks,
		NextVisit:      input.NextVisit,
		Status:         models.ClientStatusActive,
	}

	if err := config.DB.Create(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create client")
		return
	}

	c.JSON(http.StatusCreated, client)
}

// GetClients retrieves all clients for the owner, in round order
func GetClients(c *gin.Context) {
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
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var clients []models.Client
	if err := query.Order("round_order asc").Find(&clients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve clients")
		return
	}

	c.JSON(http.StatusOK, clients)
}

// GetClient retrieves a specific client by ID
func GetClient(c *gin.Context) {
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

	var client models.Client
	if err := config.DB.Where("owner_id = ? AND id = ?", ownerUUID, clientUUID).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, client)
}

// UpdateClient updates an existing client
func UpdateClient(c *gin.Context) {
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

	var input UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Retrieve existing client
	var client models.Client
	if err := config.DB.Where("owner_id = ? AND id = ?", ownerUUID, clientUUID).
		First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Update fields if provided
	if input.Name != nil {
		client.Name = *input.Name
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		client.Phone = *input.Phone
	}
	if input.AccountNumber != nil {
		client.AccountNumber = *input.AccountNumber
	}
	if input.Address1 != nil {
		client.Address1 = *input.Address1
	}
	if input.Town != nil {
		client.Town = *input.Town
	}
	if input.Postcode != nil {
		if *input.Postcode != "" && !utils.ValidatePostcode(*input.Postcode) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid postcode format")
			return
		}
		client.Postcode = *input.Postcode
	}
	if input.Address != nil {
		client.Address = *input.Address
	}
	if input.Quote != nil {
		client.Quote = *input.Quote
	}
	if input.RoundOrder != nil {
		client.RoundOrder = *input.RoundOrder
	}
	if input.FrequencyWeeks != nil {
		client.FrequencyWeeks = input.FrequencyWeeks
	}
	if input.NextVisit != nil {
		client.NextVisit = input.NextVisit
	}
	if input.GocardlessEnabled != nil {
		client.GocardlessEnabled = *input.GocardlessEnabled
	}

	if err := config.DB.Save(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client")
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient moves a client to ex-client and removes their open jobs.
// Completed job history is preserved.
func DeleteClient(c *gin.Context) {
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

	result := config.DB.Model(&models.Client{}).
		Where("owner_id = ? AND id = ?", ownerUUID, clientUUID).
		Update("status", models.ClientStatusEx)

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete client")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		return
	}

	schedule := services.NewScheduleService(config.DB, services.NewJobService(config.DB))
	deleted, err := schedule.DeleteClientJobs(ownerUUID, clientUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Client archived but open jobs could not be removed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client moved to ex-clients", "jobsDeleted": deleted})
}

// RestoreClient moves an ex-client back to active and regenerates their jobs
func RestoreClient(c *gin.Context) {
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

	result := config.DB.Model(&models.Client{}).
		Where("owner_id = ? AND id = ? AND status = ?", ownerUUID, clientUUID, models.ClientStatusEx).
		Update("status", models.ClientStatusActive)

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to restore client")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Ex-client not found")
		return
	}

	jobs := services.NewJobService(config.DB)
	created, err := jobs.CreateJobsForClient(ownerUUID, clientUUID, services.DefaultHorizonWeeks, false)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Client restored but job generation failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client restored", "jobsCreated": created})
}

// UpdateRoundOrderInput is the bulk round-order payload
type UpdateRoundOrderInput struct {
	Positions []struct {
		ClientID   uuid.UUID `json:"clientId" binding:"required"`
		RoundOrder int       `json:"roundOrder"`
	} `json:"positions" binding:"required"`
}

// UpdateRoundOrder bulk-updates client positions on the round
func UpdateRoundOrder(c *gin.Context) {
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

	var input UpdateRoundOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		for _, pos := range input.Positions {
			if err := tx.Model(&models.Client{}).
				Where("owner_id = ? AND id = ?", ownerUUID, pos.ClientID).
				Update("round_order", pos.RoundOrder).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update round order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Round order updated"})
}
