// controllers/payment.go
package controllers

import (
	"errors"
	"net/http"
	"roundpro-backend/config"
	"roundpro-backend/models"
	"roundpro-backend/utils"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreatePaymentInput defines the expected JSON structure for recording a payment
type CreatePaymentInput struct {
	ClientID    uuid.UUID  `json:"clientId" binding:"required"`
	JobID       *uuid.UUID `json:"jobId"`
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	Method      string     `json:"method" binding:"omitempty,oneof=cash transfer cheque direct_debit"`
	PaymentDate *time.Time `json:"paymentDate"`
	Notes       string     `json:"notes"`
}

// CreatePayment records money received from a client, optionally settling a job
func CreatePayment(c *gin.Context) {
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

	var input CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

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

	paymentDate := time.Now()
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}

	payment := models.Payment{
		ID:          uuid.New(),
		OwnerID:     ownerUUID,
		ClientID:    input.ClientID,
		JobID:       input.JobID,
		Amount:      input.Amount,
		Method:      input.Method,
		PaymentDate: paymentDate,
		Notes:       input.Notes,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if input.JobID != nil {
			if err := tx.Model(&models.Job{}).
				Where("owner_id = ? AND id = ?", ownerUUID, *input.JobID).
				Update("payment_status", models.PaymentStatusPaid).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to record payment")
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// GetPayments retrieves the owner's payments, optionally filtered by client
func GetPayments(c *gin.Context) {
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

	var payments []models.Payment
	if err := query.Order("payment_date desc").Find(&payments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve payments")
		return
	}

	c.JSON(http.StatusOK, payments)
}

// DeletePayment removes a payment record
func DeletePayment(c *gin.Context) {
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

	paymentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid payment ID format")
		return
	}

	result := config.DB.Where("owner_id = ? AND id = ?", ownerUUID, paymentUUID).
		Delete(&models.Payment{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete payment")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Payment not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment deleted successfully"})
}

// GetClientBalance returns what a client owes: completed/accounted job value
// less payments received
func GetClientBalance(c *gin.Context) {
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

	var billed float64
	config.DB.Model(&models.Job{}).
		Where("owner_id = ? AND client_id = ? AND status IN ?",
			ownerUUID, clientUUID, []string{models.JobStatusCompleted, models.JobStatusAccounted}).
		Select("COALESCE(SUM(price), 0)").Scan(&billed)

	var paid float64
	config.DB.Model(&models.Payment{}).
		Where("owner_id = ? AND client_id = ?", ownerUUID, clientUUID).
		Select("COALESCE(SUM(amount), 0)").Scan(&paid)

	c.JSON(http.StatusOK, gin.H{
		"billed":  billed,
		"paid":    paid,
		"balance": billed - paid,
	})
}
