package router

import (
	"net/http"

	"github.com/colabsdev/colabs-be/internal/api/handler"
	"github.com/colabsdev/colabs-be/internal/ratelimit"
	"github.com/colabsdev/colabs-be/internal/telemetry"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, limiter *ratelimit.TokenBucket) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "colabs-api-service",
		})
	})

	r.GET("/metrics", gin.WrapH(telemetry.Handler()))

	jobHandler := handler.NewJobHandler(deps)
	applicationHandler := handler.NewApplicationHandler(deps)
	paymentHandler := handler.NewPaymentHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			// Public listing; everything else resolves an actor first.
			jobs.GET("", jobHandler.ListJobs)

			authed := jobs.Group("")
			authed.Use(ActorMiddleware())
			{
				authed.POST("", jobHandler.PostJob)
				authed.GET("/applications", applicationHandler.ListOwn)
				authed.GET("/applications/:jobId", applicationHandler.ListForJob)
				authed.PUT("/applications/:applicationId", applicationHandler.Decide)
				authed.POST("/apply/:jobId", applicationHandler.Apply)
				authed.PUT("/ready/:jobId", jobHandler.MarkReady)
				authed.PUT("/complete/:jobId", jobHandler.CompleteJob)
				authed.PUT("/team/:jobId", jobHandler.AddTeamMembers)
				authed.DELETE("/delete/:jobId", jobHandler.DeleteJob)
			}
		}

		chapa := v1.Group("/chapa")
		{
			// Gateway-facing paths carry no actor: the webhook authenticates
			// with its signature, and the manual confirmation is keyed by
			// the unguessable tx_ref.
			chapa.POST("/webhook", paymentHandler.Webhook)
			chapa.GET("/update/:tnxRef", paymentHandler.ConfirmPayment)

			authed := chapa.Group("")
			authed.Use(ActorMiddleware())
			{
				authed.POST("/init", RateLimitMiddleware(limiter, deps.Logger), paymentHandler.InitPayment)
				authed.GET("/verify/:tnxRef", paymentHandler.VerifyPayment)
				authed.PUT("/add-bank-info", paymentHandler.AddBankInfo)
				authed.GET("/banks", paymentHandler.ListBanks)
			}
		}
	}

	return r
}
