package routes

import (
	"roundpro-backend/config"
	"roundpro-backend/controllers"
	"roundpro-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"https://app.roundpro.co.uk",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Client routes
		clients := api.Group("/clients")
		{
			clients.POST("", controllers.CreateClient)
			clients.GET("", controllers.GetClients)
			clients.PUT("/round-order", controllers.UpdateRoundOrder)
			clients.GET("/:id", controllers.GetClient)
			clients.PUT("/:id", controllers.UpdateClient)
			clients.DELETE("/:id", controllers.DeleteClient)
			clients.POST("/:id/restore", controllers.RestoreClient)
			clients.POST("/:id/generate-jobs", controllers.GenerateClientJobs)
			clients.GET("/:id/balance", controllers.GetClientBalance)
		}

		// Service plan routes
		plans := api.Group("/plans")
		{
			plans.POST("", controllers.CreatePlan)
			plans.GET("", controllers.GetPlans)
			plans.PUT("/:id", controllers.UpdatePlan)
			plans.PUT("/:id/active", controllers.SetPlanActive)
			plans.POST("/:id/regenerate", controllers.RegeneratePlan)
			plans.POST("/:id/generate-jobs", controllers.GeneratePlanJobs)
		}

		// Job routes
		jobs := api.Group("/jobs")
		{
			jobs.GET("", controllers.GetJobs)
			jobs.PUT("/:id", controllers.UpdateJob)
			jobs.DELETE("/:id", controllers.DeleteJob)
			jobs.POST("/complete-day", controllers.CompleteDay)
		}

		// Payment routes
		payments := api.Group("/payments")
		{
			payments.POST("", controllers.CreatePayment)
			payments.GET("", controllers.GetPayments)
			payments.DELETE("/:id", controllers.DeletePayment)
		}

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)
	}

	return r
}
