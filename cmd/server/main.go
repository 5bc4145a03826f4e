package main

import (
	"context"
	"log"
	"net/http"
	"strconv"

	config "pcaf-advisory-api/configs"
	"pcaf-advisory-api/pkg/advisory"
	"pcaf-advisory-api/pkg/handlers"
	"pcaf-advisory-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg := config.LoadConfig()

	r := gin.Default()

	// Datasets are mandatory: the service has nothing to answer from
	// without them.
	enhanced, base, err := config.LoadDatasets(cfg.DatasetDir)
	if err != nil {
		log.Fatalf("FATAL: Failed to load QA datasets from %s: %v", cfg.DatasetDir, err)
	}
	log.Printf("Loaded QA datasets: %d enhanced categories, %d base categories", len(enhanced.Categories), len(base.Categories))

	promptConfig, err := config.LoadAdvisoryPrompt(cfg.AdvisoryPromptPath)
	if err != nil {
		log.Printf("Warning: advisory prompt config not loaded: %v", err)
	}

	// Service initialization
	monitoringService := services.NewMonitoringService()
	bank := services.NewQuestionBank(enhanced, base)
	scorer := services.NewMatchScorer()
	enhancer := services.NewContextEnhancer()
	customizer := services.NewRoleCustomizer()
	classifier := services.NewQueryClassifier()

	minConfidence := services.DefaultConfidenceThreshold
	if cfg.MinConfidence != "" {
		if parsed, err := strconv.ParseFloat(cfg.MinConfidence, 64); err == nil {
			minConfidence = parsed
		} else {
			log.Printf("Warning: invalid MIN_CONFIDENCE_THRESHOLD %q, using default", cfg.MinConfidence)
		}
	}

	datasetService := services.NewDatasetRAGService(bank, scorer, enhancer, customizer)
	pureService := services.NewPureDatasetRAGService(bank, scorer, enhancer, minConfidence)
	portfolioFileService := services.NewPortfolioFileService()

	var chatBackend services.ChatBackend
	if cfg.AdvisoryEndpoint != "" {
		client := advisory.NewClient(cfg.AdvisoryEndpoint, cfg.AdvisoryAPIKey)
		chatBackend = services.NewAdvisoryService(client, promptConfig)
		log.Printf("Advisory backend configured: %s", cfg.AdvisoryEndpoint)
	} else {
		log.Printf("Advisory backend not configured, dataset and vector paths only")
	}

	// Vector store failures are not fatal: the router falls back to the
	// dataset paths when the backend is unavailable.
	var vectorBackend services.VectorSearchBackend
	vectorStoreService, err := services.NewVectorStoreService(cfg.QdrantURL, cfg.QdrantAPIKey, enhancer)
	if err != nil {
		log.Printf("Warning: Failed to initialize VectorStoreService: %v", err)
	} else {
		vectorBackend = vectorStoreService
		if cfg.SeedKnowledgeBase {
			if err := vectorStoreService.SeedQuestionBank(context.Background(), bank); err != nil {
				log.Printf("Warning: knowledge base seeding failed: %v", err)
			}
		}
	}

	unifiedService := services.NewUnifiedRAGService(classifier, pureService, datasetService, chatBackend, vectorBackend, services.NewRouterStats())

	// Handler initialization
	ragHandler := handlers.NewRAGHandler(unifiedService, datasetService, pureService)
	datasetHandler := handlers.NewDatasetHandler(bank)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioFileService)
	adminHandler := handlers.NewAdminHandler(cfg)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	// Middleware
	r.Use(monitoringService.LoggingMiddleware())
	r.Use(cors.Default())

	authMiddleware := func(apiKey string) gin.HandlerFunc {
		return func(c *gin.Context) {
			if apiKey == "" || apiKey == "default_secret_key" {
				c.Next()
				return
			}
			providedKey := c.GetHeader("X-API-KEY")
			if providedKey != apiKey {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.Next()
		}
	}

	r.GET("/health", handlers.HealthCheck)

	v1 := r.Group("/api/v1")
	v1.Use(authMiddleware(cfg.APIKey))
	{
		v1.GET("/hello", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message": "Hello from PCAF Advisory API!",
			})
		})

		// Admin API
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		// Monitoring API
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}

		// RAG query API
		rag := v1.Group("/rag")
		{
			rag.POST("/query", ragHandler.ProcessUnifiedQuery)
			rag.POST("/dataset-query", ragHandler.ProcessDatasetQuery)
			rag.POST("/enhanced-query", ragHandler.ProcessEnhancedQuery)
			rag.GET("/stats", ragHandler.GetProcessingStats)
			rag.POST("/stats/reset", ragHandler.ResetProcessingStats)
		}

		// Dataset inspection API
		dataset := v1.Group("/dataset")
		{
			dataset.GET("/stats", datasetHandler.GetStats)
			dataset.GET("/question/:id", datasetHandler.GetQuestionByID)
			dataset.GET("/category/:category", datasetHandler.GetQuestionsByCategory)
		}

		// Portfolio ingestion API
		portfolio := v1.Group("/portfolio")
		{
			portfolio.POST("/analyze-file", portfolioHandler.AnalyzeFile)
		}
	}

	log.Printf("Starting PCAF advisory API on port %s (%s)", cfg.Port, cfg.Environment)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
