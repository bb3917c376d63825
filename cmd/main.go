package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/GEO-SCOPE/geoscope-backend/internal/db"
	"github.com/GEO-SCOPE/geoscope-backend/internal/handlers"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/middleware"
	"github.com/GEO-SCOPE/geoscope-backend/internal/repos"
	"github.com/GEO-SCOPE/geoscope-backend/internal/server"
	"github.com/GEO-SCOPE/geoscope-backend/internal/services"
	"github.com/GEO-SCOPE/geoscope-backend/internal/simclient"
	"github.com/GEO-SCOPE/geoscope-backend/internal/sse"
	"github.com/GEO-SCOPE/geoscope-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	port := utils.GetEnv("PORT", "8080", log)
	allowedOrigins := utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log)
	runConcurrency := utils.GetEnvAsInt("RUN_CONCURRENCY", 4, log)
	rankingThreshold := utils.GetEnvAsInt("RANKING_LOW_THRESHOLD", 3, log)
	redisAddr := utils.GetEnv("REDIS_ADDR", "", log)

	// DB
	dbService, err := db.New(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration failed", "error", err)
	}
	theDB := dbService.DB()

	// Redis (optional; update checks fall back to the database without it)
	var redisClient *redis.Client
	if redisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unreachable, continuing without cache", "error", err)
			redisClient = nil
		}
	}

	// Repos
	log.Info("Setting up Repos from main...")
	projectRepo := repos.NewProjectRepo(theDB, log)
	benchmarkRepo := repos.NewBenchmarkRepo(theDB, log)
	questionRepo := repos.NewQuestionRepo(theDB, log)
	versionRepo := repos.NewBenchmarkVersionRepo(theDB, log)
	taskRepo := repos.NewScheduledTaskRepo(theDB, log)
	runRepo := repos.NewRunRepo(theDB, log)
	resultRepo := repos.NewSimulationResultRepo(theDB, log)
	releaseRepo := repos.NewReleaseRepo(theDB, log)
	bugRepo := repos.NewBugReportRepo(theDB, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewHub(log)

	// Services
	log.Info("Setting up Services from main...")
	simClient, err := simclient.New(log)
	if err != nil {
		log.Error("Could not init simulation client", "error", err)
		os.Exit(1)
	}
	projectService := services.NewProjectService(theDB, log, projectRepo)
	versionStore := services.NewVersionStoreService(theDB, log, benchmarkRepo, questionRepo, versionRepo)
	benchmarkService := services.NewBenchmarkService(theDB, log, benchmarkRepo, questionRepo, versionRepo, versionStore)
	questionService := services.NewQuestionService(theDB, log, benchmarkRepo, questionRepo, versionStore)
	runService := services.NewRunService(theDB, log, projectRepo, benchmarkRepo, questionRepo, versionRepo, runRepo, resultRepo, simClient, sseHub, runConcurrency)
	scheduleService := services.NewScheduleService(theDB, log, taskRepo, benchmarkRepo, runService, sseHub)
	metricsService := services.NewMetricsService(theDB, log, runRepo)
	optimizationService := services.NewOptimizationService(theDB, log, runRepo, resultRepo, questionRepo, rankingThreshold)
	generationService := services.NewGenerationService(theDB, log, projectRepo, benchmarkRepo, questionRepo, versionStore, simClient)
	competitorService := services.NewCompetitorService(theDB, log, projectRepo, runRepo, resultRepo, questionRepo, simClient)
	releaseService := services.NewReleaseService(theDB, log, releaseRepo)
	updateService := services.NewUpdateService(theDB, log, releaseService, redisClient)
	bugReportService := services.NewBugReportService(theDB, log, bugRepo)

	// Workers
	scheduleService.StartScheduler(context.Background())

	// Handlers
	log.Info("Setting up Handlers from main...")
	projectHandler := handlers.NewProjectHandler(log, projectService)
	benchmarkHandler := handlers.NewBenchmarkHandler(log, benchmarkService, generationService, versionStore)
	questionHandler := handlers.NewQuestionHandler(log, questionService)
	scheduleHandler := handlers.NewScheduleHandler(log, scheduleService)
	runHandler := handlers.NewRunHandler(log, runService, competitorService)
	metricsHandler := handlers.NewMetricsHandler(log, metricsService)
	optimizationHandler := handlers.NewOptimizationHandler(log, optimizationService)
	sseHandler := handlers.NewSSEHandler(log, sseHub)
	releaseHandler := handlers.NewReleaseHandler(log, releaseService)
	updateHandler := handlers.NewUpdateHandler(log, updateService)
	bugReportHandler := handlers.NewBugReportHandler(log, bugReportService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:      authMiddleware,
		ProjectHandler:      projectHandler,
		BenchmarkHandler:    benchmarkHandler,
		QuestionHandler:     questionHandler,
		ScheduleHandler:     scheduleHandler,
		RunHandler:          runHandler,
		MetricsHandler:      metricsHandler,
		OptimizationHandler: optimizationHandler,
		SSEHandler:          sseHandler,
		ReleaseHandler:      releaseHandler,
		UpdateHandler:       updateHandler,
		BugReportHandler:    bugReportHandler,
		AllowedOrigins:      allowedOrigins,
	})

	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
