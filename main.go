package main

import (
	"fmt"
	"log"
	"os"
	"roundpro-backend/config"
	"roundpro-backend/models"
	"roundpro-backend/routes"
	"roundpro-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.ServicePlan{},
		&models.Job{},
		&models.Payment{},
		&models.CompletedWeek{},
		&models.ReminderLog{},
	)
}

func main() {
	jobService := services.NewJobService(config.DB)
	services.NewRolloverService(config.DB, jobService).StartScheduler()
	services.NewReminderService(config.DB).StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
