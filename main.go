package main

import (
	"log"
	"time"

	"github.com/KYEONGBINKEUM/todo-sub001/api"
	"github.com/KYEONGBINKEUM/todo-sub001/config"
	"github.com/KYEONGBINKEUM/todo-sub001/database"
	"github.com/KYEONGBINKEUM/todo-sub001/middleware"
	"github.com/KYEONGBINKEUM/todo-sub001/models"
	"github.com/KYEONGBINKEUM/todo-sub001/repository"
	"github.com/KYEONGBINKEUM/todo-sub001/services"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
	"gorm.io/gorm"
)

func main() {
	// Load application configuration
	config.LoadConfig()

	// Initialize database connection
	db, err := database.Init()
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to initialize database: %v", err)
	}

	// Auto-migrate database schema
	runMigrations(db)

	// Initialize Repositories
	usageRepo := repository.NewUsageRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	log.Println("INFO: [Main] Repositories initialized.")

	// The provider client is constructed once here and injected; it is
	// shared by every request.
	clientConfig := openai.DefaultConfig(config.AppConfig.OpenAI.APIKey)
	if config.AppConfig.OpenAI.BaseURL != "" {
		clientConfig.BaseURL = config.AppConfig.OpenAI.BaseURL
	}
	openaiClient := openai.NewClientWithConfig(clientConfig)

	// Initialize Services
	invoker := services.NewOpenAIInvoker(
		openaiClient,
		config.AppConfig.OpenAI.Model,
		time.Duration(config.AppConfig.OpenAI.TimeoutSeconds)*time.Second,
	)
	registry := services.NewPromptRegistry()
	fetcher := services.NewYouTubeTranscriptFetcher()
	aiService := services.NewAIService(
		usageRepo,
		settingsRepo,
		registry,
		fetcher,
		invoker,
		config.AppConfig.AI.TranscriptMaxChars,
	)
	log.Println("INFO: [Main] Services initialized.")

	// Initialize API Handler with all dependencies
	apiHandler := api.NewAPIHandler(aiService, db)
	log.Println("INFO: [Main] API Handler initialized.")

	// Create Gin engine
	r := gin.New()
	r.SetTrustedProxies(nil)

	// Register middlewares
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Cors())
	log.Println("INFO: [Main] Middlewares registered.")

	// Register routes
	registerRoutes(r, apiHandler)
	log.Println("INFO: [Main] Routes registered.")

	// Start the server
	serverPort := ":" + config.AppConfig.Server.Port
	if config.AppConfig.Server.Port == "" {
		serverPort = ":8080"
		log.Println("WARN: [Main] Server port not configured, defaulting to 8080.")
	}
	log.Printf("INFO: [Main] Starting server on port %s", serverPort)
	if err := r.Run(serverPort); err != nil {
		log.Fatalf("FATAL: [Main] Failed to start server: %v", err)
	}
}

// runMigrations applies the schema for the models this service owns.
func runMigrations(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.UsageRecord{},
		&models.UserSettings{},
	)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to auto-migrate database schema: %v", err)
	}
	log.Println("INFO: [Main] Database schema migrated.")
}

// registerRoutes wires the HTTP surface. Everything under /api/ai
// requires a verified identity.
func registerRoutes(r *gin.Engine, h *api.APIHandler) {
	r.GET("/health", h.HealthHandler)

	aiGroup := r.Group("/api/ai")
	aiGroup.Use(middleware.Auth())
	{
		aiGroup.POST("/process", h.ProcessAIHandler)
		aiGroup.GET("/usage", h.AIUsageHandler)
	}
}
