package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"asetra-system/config"
	"asetra-system/internal/database"
	"asetra-system/internal/database/models"
	"asetra-system/internal/gateway/handlers"
	"asetra-system/internal/gateway/middleware"
	"asetra-system/internal/services/assets/handler"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient := config.NewRedisClientWithFallback(cfg.Redis)

	assetService := handler.NewAssetHandler(db, redisClient)
	assetHandler := handlers.NewAssetHTTPHandler(assetService)
	locationHandler := handlers.NewLocationHTTPHandler(assetService)
	reportHandler := handlers.NewReportHTTPHandler(assetService)

	r := gin.Default()

	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit())

	api := r.Group("/api/v1")
	{
		assets := api.Group("/assets")
		{
			assets.GET("", assetHandler.ListAssets)
			assets.GET("/summary", assetHandler.GetAssetSummary)
			assets.GET("/category/:category", assetHandler.GetAssetsByCategory)
			assets.GET("/:id", assetHandler.GetAsset)
			assets.POST("", assetHandler.CreateAsset)
			assets.PUT("/:id", assetHandler.UpdateAsset)
			assets.DELETE("/:id", assetHandler.DeleteAsset)
			assets.POST("/:id/codes", assetHandler.GenerateCode)
		}

		locations := api.Group("/locations")
		{
			locations.GET("", locationHandler.ListLocations)
			locations.POST("", locationHandler.CreateLocation)
		}

		reports := api.Group("/reports")
		{
			reports.POST("/export", reportHandler.ExportReport)
			reports.GET("/export/download", reportHandler.DownloadReport)
		}

		api.POST("/seed", assetHandler.SeedDummyData)
	}

	r.GET("/health", healthCheckHandler(db, redisClient))

	port := ":" + cfg.Server.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheckHandler(db *gorm.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		status := "healthy"
		httpStatus := http.StatusOK
		services := map[string]string{
			"database": "healthy",
			"cache":    "healthy",
		}

		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			services["database"] = "unavailable"
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}

		if redisClient == nil {
			services["cache"] = "disabled"
		} else if err := redisClient.Ping(ctx).Err(); err != nil {
			services["cache"] = "unavailable"
			status = "degraded"
		}

		c.JSON(httpStatus, gin.H{
			"status":    status,
			"services":  services,
			"timestamp": time.Now(),
		})
	}
}
