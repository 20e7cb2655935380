// services/reminder_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"roundpro-backend/models"
	"roundpro-backend/utils"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// ReminderService texts clients the evening before a scheduled visit.
type ReminderService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewReminderService(db *gorm.DB) *ReminderService {
	// Initialize Twilio client
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &ReminderService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 6 PM
	c.AddFunc("0 18 * * *", func() {
		s.SendVisitReminders()
	})

	c.Start()
	log.Println("Visit reminder scheduler started")
}

func (s *ReminderService) SendVisitReminders() {
	log.Println("Starting daily visit reminder processing...")

	// Get all active owners
	var owners []models.User
	if err := s.db.Find(&owners, "is_active = ?", true).Error; err != nil {
		log.Printf("Failed to fetch owners: %v", err)
		return
	}

	for _, owner := range owners {
		s.ProcessOwnerReminders(owner.ID)
	}

	log.Println("Daily visit reminder processing completed")
}

func (s *ReminderService) ProcessOwnerReminders(ownerID uuid.UUID) {
	tomorrow := utils.BeginningOfDay(time.Now()).AddDate(0, 0, 1)
	dayAfter := tomorrow.AddDate(0, 0, 1)

	var jobs []models.Job
	if err := s.db.Where("owner_id = ? AND status = ? AND scheduled_time >= ? AND scheduled_time < ?",
		ownerID, models.JobStatusPending, tomorrow, dayAfter).Find(&jobs).Error; err != nil {
		log.Printf("Owner %s: failed to get tomorrow's jobs: %v", ownerID, err)
		return
	}

	for i := range jobs {
		s.sendReminder(ownerID, &jobs[i])
	}
}

func (s *ReminderService) sendReminder(ownerID uuid.UUID, job *models.Job) {
	var client models.Client
	if err := s.db.Where("owner_id = ? AND id = ?", ownerID, job.ClientID).
		First(&client).Error; err != nil {
		log.Printf("Owner %s: client %s not found for reminder: %v", ownerID, job.ClientID, err)
		return
	}

	message := fmt.Sprintf("Hi %s, a reminder that your %s visit is booked for tomorrow. Please leave gates unlocked. Thank you!",
		client.Name, strings.ToLower(job.ServiceName))

	// Determine channel (WhatsApp if available, else SMS)
	channel := "sms"
	var to string

	// Use WhatsApp if phone is in E.164 format and starts with '+'
	phone := strings.TrimSpace(client.Phone)
	if phone == "" {
		return
	}
	if strings.HasPrefix(phone, "+") {
		to = "whatsapp:" + phone
		channel = "whatsapp"
	} else {
		to = phone
	}

	// Send message via Twilio
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)

	// Use WhatsApp sender if available
	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	resp, err := s.client.Api.CreateMessage(params)
	status := "sent"
	errorMsg := ""

	if err != nil {
		log.Printf("Failed to send reminder to %s: %v", phone, err)
		status = "failed"
		errorMsg = err.Error()
	} else if resp.Sid != nil {
		log.Printf("Reminder sent to %s, SID: %s", phone, *resp.Sid)
	} else {
		log.Printf("Reminder sent to %s, but no SID returned", phone)
	}

	// Log the reminder
	jobID := job.ID
	reminderLog := models.ReminderLog{
		OwnerID:      ownerID,
		ClientID:     client.ID,
		JobID:        &jobID,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      channel,
		SentAt:       time.Now(),
	}

	if err := s.db.Create(&reminderLog).Error; err != nil {
		log.Printf("Failed to log reminder for client %s: %v", client.ID, err)
	}
}
