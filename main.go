package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/apex/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"report-analytics/cache"
	"report-analytics/config"
	"report-analytics/database"
	"report-analytics/handlers"
	"report-analytics/middleware"
	"report-analytics/rabbitmq"
	"report-analytics/service"
	"report-analytics/version"
)

const (
	EndPointHealth              = "/health"
	EndPointTrends              = "/trends"
	EndPointStatusDistribution  = "/status-distribution"
	EndPointStatusTransitions   = "/status-transitions"
	EndPointWorkflowTimeline    = "/workflow-timeline"
	EndPointWorkflowBottlenecks = "/workflow-bottlenecks"
	EndPointDrivers             = "/drivers"
	EndPointResolutionTimes     = "/resolution-times"
	EndPointHotspots            = "/hotspots"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using system environment variables")
	}

	// Load configuration
	cfg := config.Load()

	log.Info("Starting the report analytics service...")

	// Connect to database
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize database schema
	if err := database.InitSchema(db.DB()); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	// Initialize cache and analytics service
	resultCache := cache.New(time.Duration(cfg.CacheTTLSeconds) * time.Second)
	analyticsService := service.NewAnalyticsService(
		db,
		resultCache,
		time.Duration(cfg.QueryTimeoutSeconds)*time.Second,
		cfg.MaxCommonPaths,
		cfg.MaxTrendPoints,
	)

	// Subscribe to report mutation events for cache invalidation
	subscriber, err := rabbitmq.NewSubscriber(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		log.Warnf("RabbitMQ unavailable, cache will rely on TTL expiry only: %v", err)
	} else {
		if err := subscriber.Start(analyticsService.HandleMutation); err != nil {
			log.Warnf("Failed to start mutation subscriber: %v", err)
		}
		defer subscriber.Close()
	}

	// Initialize handlers
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Setup router
	router := gin.Default()
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, version.Get("report-analytics"))
	})

	// Register health endpoint (outside API group)
	router.GET(EndPointHealth, analyticsHandler.Health)

	// Create API v3 router group
	apiV3 := router.Group("/api/v3")
	apiV3.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute, time.Minute))
	apiV3.Use(middleware.AuthMiddleware(cfg))
	{
		apiV3.GET(EndPointTrends, analyticsHandler.Trends)
		apiV3.GET(EndPointStatusDistribution, analyticsHandler.StatusDistribution)
		apiV3.GET(EndPointStatusTransitions, analyticsHandler.StatusTransitions)
		apiV3.GET(EndPointWorkflowTimeline, analyticsHandler.WorkflowTimeline)
		apiV3.GET(EndPointWorkflowBottlenecks, analyticsHandler.WorkflowBottlenecks)
		apiV3.GET(EndPointDrivers, analyticsHandler.Drivers)
		apiV3.GET(EndPointResolutionTimes, analyticsHandler.ResolutionTimes)
		apiV3.GET(EndPointHotspots, analyticsHandler.Hotspots)
	}

	// Get server port from config
	serverPort, err := strconv.Atoi(cfg.Port)
	if err != nil {
		log.Fatalf("Invalid PORT configuration: %v", err)
	}

	// Start server
	log.Infof("Report analytics service starting on port %d", serverPort)
	if err := router.Run(fmt.Sprintf(":%d", serverPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
