package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emergency-alert-service/config"
	"emergency-alert-service/database"
	"emergency-alert-service/email"
	"emergency-alert-service/handlers"
	"emergency-alert-service/jurisdiction"
	"emergency-alert-service/middleware"
	"emergency-alert-service/models"
	"emergency-alert-service/rabbitmq"
	"emergency-alert-service/regions"
	"emergency-alert-service/scorer"
	"emergency-alert-service/service"
	ws "emergency-alert-service/websocket"

	"github.com/apex/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; environment variables win
	_ = godotenv.Load()

	cfg := config.Load()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	directory, err := regions.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load region directory")
	}
	resolver := jurisdiction.NewResolver(directory)

	hub := ws.NewHub()
	go hub.Run()

	mailer := email.NewMailer(cfg)
	if !mailer.Enabled() {
		log.Warn("SendGrid not configured, email notifications disabled")
	}

	severityScorer := scorer.NewClient(cfg.ScorerURL, cfg.ScorerTimeout)
	if !severityScorer.Enabled() {
		log.Warn("Scorer not configured, using keyword fallback only")
	}

	var events service.EventPublisher
	if cfg.AMQPURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.WithError(err).Warn("RabbitMQ unavailable, event publishing disabled")
		} else {
			defer publisher.Close()
			events = publisher
		}
	}

	svc := service.New(db, resolver, directory, severityScorer, mailer, hub, events)
	h := handlers.NewHandlers(svc, hub, resolver, directory)

	router := setupRouter(cfg, db, h)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server exited")
}

func setupRouter(cfg *config.Config, db *database.Database, h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	// Gzip compression
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// CORS
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	auth := middleware.AuthMiddleware(cfg.JWTSecret, db)
	adminOnly := middleware.RequireRoles(models.RoleCityAdmin, models.RoleStateAdmin, models.RoleCentralAdmin)

	api := router.Group("/api/v1")
	{
		// Public intake and lookups
		api.POST("/reports", middleware.OptionalAuth(cfg.JWTSecret, db), h.SubmitReport)
		api.GET("/reports/:id", h.GetReport)
		api.GET("/news", h.ListNews)
		api.GET("/locations/states", h.ListStates)
		api.GET("/locations/cities", h.ListCities)
		api.GET("/locations/validate", h.ValidateLocation)
		api.GET("/health", h.HealthCheck)

		// Reporter routes
		authed := api.Group("", auth)
		{
			authed.GET("/my/reports", h.GetMyReports)
			authed.POST("/reports/:id/review", h.AddReview)
		}

		// Jurisdictional admin routes
		admin := api.Group("", auth, adminOnly)
		{
			admin.PATCH("/reports/:id/status", h.UpdateReportStatus)
			admin.DELETE("/reports/:id", h.DeleteReport)

			admin.GET("/alerts", h.ListAlerts)
			admin.GET("/listen", h.ListenAlerts)
			admin.GET("/alerts/:id", h.GetAlert)
			admin.POST("/alerts/:id/acknowledge", h.AcknowledgeAlert)
			admin.POST("/alerts/:id/escalate/peer-cities", h.EscalateToPeerCities)
			admin.POST("/alerts/:id/escalate/state", h.EscalateToState)
			admin.POST("/alerts/:id/escalate/states", h.EscalateToStates)
			admin.POST("/alerts/:id/escalate/central", h.EscalateToCentral)

			admin.POST("/broadcast", h.Broadcast)
		}

		// News publishing
		news := api.Group("", auth, middleware.RequireRoles(models.RoleNewsAdmin, models.RoleCentralAdmin))
		{
			news.POST("/news", h.PublishNews)
		}
	}

	// Root health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "emergency-alert-service",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	return router
}
