package routes

import (
	"github.com/gin-gonic/gin"

	"peer-eval-api/controllers"
	"peer-eval-api/middleware"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Peer Evaluation API is running",
				})
			})

			// Evaluation forms are reached via emailed token links, no login
			public.GET("/evaluate/:token", controllers.GetEvaluation)
			public.POST("/evaluate/:token", controllers.SubmitEvaluation)
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Roster
			students := protected.Group("/students")
			{
				students.GET("", controllers.GetStudents)
				students.POST("/upload", controllers.UploadStudents)
			}

			// Rubrics
			rubrics := protected.Group("/rubrics")
			{
				rubrics.GET("", controllers.GetRubrics)
				rubrics.POST("", controllers.CreateRubric)
				rubrics.POST("/upload", controllers.UploadRubric)
				rubrics.POST("/:id/items", controllers.AddRubricItem)
				rubrics.DELETE("/:id", controllers.DeleteRubric)
				rubrics.DELETE("/:id/items/:item_id", controllers.DeleteRubricItem)
			}

			// Evaluation rounds
			rounds := protected.Group("/rounds")
			{
				rounds.GET("", controllers.GetRounds)
				rounds.POST("", controllers.StartRound)
				rounds.POST("/:id/close", controllers.CloseRound)
				rounds.DELETE("/:id", controllers.DeleteRound)
				rounds.GET("/:id/report", controllers.GetRoundReport)
			}

			// Dev outbox (queued notifications)
			protected.GET("/outbox", controllers.GetOutbox)
		}
	}
}
