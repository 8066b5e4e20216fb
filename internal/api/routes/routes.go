package routes

import (
	"net/http"
	"time"

	"farm-service/internal/api/handlers"
	"farm-service/internal/api/middleware"
	"farm-service/internal/config"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Farm      *handlers.FarmHandler
	Livestock *handlers.LivestockHandler
	Crop      *handlers.CropHandler
	Task      *handlers.TaskHandler
	Finance   *handlers.FinanceHandler
	Dashboard *handlers.DashboardHandler
	WebSocket *handlers.WebSocketHandler
}

// SetupRouter builds the gin engine with all middleware and routes
func SetupRouter(cfg *config.Config, h Handlers, rateLimit *middleware.RateLimitMiddleware) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.LogApi())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	v1 := router.Group("/api/v1")
	{
		// Public auth routes, throttled by client IP
		authRoutes := v1.Group("/auth")
		authRoutes.Use(rateLimit.RateLimitIP(20, time.Minute))
		{
			authRoutes.POST("/register", h.Auth.Register)
			authRoutes.POST("/login", h.Auth.Login)
		}

		protected := v1.Group("")
		protected.Use(auth.RequireAuth())
		protected.Use(rateLimit.RateLimit(300, time.Minute))
		{
			users := protected.Group("/users")
			{
				users.GET("/profile", h.User.GetProfile)
				users.PUT("/profile", h.User.UpdateProfile)
				users.GET("/search", h.User.Search)
			}

			farms := protected.Group("/farms")
			{
				farms.GET("", h.Farm.ListFarms)
				farms.POST("", h.Farm.CreateFarm)
				farms.GET("/:id", h.Farm.GetFarm)
				farms.PUT("/:id", h.Farm.UpdateFarm)
				farms.DELETE("/:id", h.Farm.DeleteFarm)
				farms.POST("/:id/photo", h.Farm.UploadPhoto)
				farms.POST("/:id/members", h.Farm.AddMember)
				farms.DELETE("/:id/members/:userId", h.Farm.RemoveMember)
			}

			// Farm-scoped resources; :id is the farm throughout
			farmScoped := protected.Group("/farms/:id")
			{
				farmScoped.GET("/dashboard", h.Dashboard.Get)

				farmScoped.GET("/livestock", h.Livestock.List)
				farmScoped.POST("/livestock", h.Livestock.Create)
				farmScoped.PUT("/livestock/:resourceId", h.Livestock.Update)
				farmScoped.DELETE("/livestock/:resourceId", h.Livestock.Delete)

				farmScoped.GET("/crops", h.Crop.List)
				farmScoped.POST("/crops", h.Crop.Create)
				farmScoped.PUT("/crops/:resourceId", h.Crop.Update)
				farmScoped.DELETE("/crops/:resourceId", h.Crop.Delete)

				farmScoped.GET("/tasks", h.Task.List)
				farmScoped.POST("/tasks", h.Task.Create)
				farmScoped.PUT("/tasks/:resourceId", h.Task.Update)
				farmScoped.DELETE("/tasks/:resourceId", h.Task.Delete)

				farmScoped.GET("/transactions", h.Finance.List)
				farmScoped.POST("/transactions", h.Finance.Create)
				farmScoped.GET("/transactions/totals", h.Finance.Totals)
			}
		}
	}

	// The WebSocket endpoint authenticates inside the handler so browser
	// clients can pass the token as a query parameter. Handshakes are
	// throttled per IP like the other public routes.
	router.GET("/ws", rateLimit.RateLimitIP(60, time.Minute), h.WebSocket.HandleWebSocket)

	return router
}
