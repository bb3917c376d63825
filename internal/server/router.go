package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/GEO-SCOPE/geoscope-backend/internal/handlers"
	"github.com/GEO-SCOPE/geoscope-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware      *middleware.AuthMiddleware
	ProjectHandler      *handlers.ProjectHandler
	BenchmarkHandler    *handlers.BenchmarkHandler
	QuestionHandler     *handlers.QuestionHandler
	ScheduleHandler     *handlers.ScheduleHandler
	RunHandler          *handlers.RunHandler
	MetricsHandler      *handlers.MetricsHandler
	OptimizationHandler *handlers.OptimizationHandler
	SSEHandler          *handlers.SSEHandler
	ReleaseHandler      *handlers.ReleaseHandler
	UpdateHandler       *handlers.UpdateHandler
	BugReportHandler    *handlers.BugReportHandler
	AllowedOrigins      string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if cfg.AllowedOrigins != "" {
		origins = strings.Split(cfg.AllowedOrigins, ",")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// Desktop update channel; the Tauri updater cannot attach auth headers.
	updates := router.Group("/api/updates")
	{
		updates.GET("/check", cfg.UpdateHandler.Check)
		updates.GET("/latest", cfg.UpdateHandler.Latest)
		updates.GET("/changelog", cfg.UpdateHandler.Changelog)
		updates.POST("/beta/validate", cfg.UpdateHandler.ValidateBetaKey)
		updates.GET("/beta/check", cfg.UpdateHandler.BetaCheck)
		updates.GET("/beta/latest", cfg.UpdateHandler.BetaLatest)
	}
	router.POST("/api/releases/:releaseId/download", cfg.ReleaseHandler.RecordDownload)
	router.POST("/api/bugs", cfg.BugReportHandler.Submit)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Releases (admin)
	releases := api.Group("/releases")
	{
		releases.GET("", cfg.ReleaseHandler.List)
		releases.POST("", cfg.ReleaseHandler.Create)
		releases.GET("/:releaseId", cfg.ReleaseHandler.Get)
		releases.PATCH("/:releaseId", cfg.ReleaseHandler.Update)
		releases.DELETE("/:releaseId", cfg.ReleaseHandler.Delete)
	}

	// Bug report review (admin)
	api.GET("/bugs", cfg.BugReportHandler.List)
	api.GET("/bugs/:bugId", cfg.BugReportHandler.Get)

	// Projects
	api.GET("/projects", cfg.ProjectHandler.List)
	api.POST("/projects", cfg.ProjectHandler.Create)

	project := api.Group("/projects/:projectId")
	{
		project.GET("", cfg.ProjectHandler.Get)
		project.PATCH("", cfg.ProjectHandler.Update)
		project.DELETE("", cfg.ProjectHandler.Delete)

		project.GET("/events", cfg.SSEHandler.Stream)
		project.GET("/metrics/dashboard", cfg.MetricsHandler.Dashboard)

		project.GET("/optimizations", cfg.OptimizationHandler.List)
		project.GET("/optimizations/:journey", cfg.OptimizationHandler.GetByJourney)

		benchmarks := project.Group("/benchmarks")
		{
			benchmarks.GET("", cfg.BenchmarkHandler.List)
			benchmarks.POST("", cfg.BenchmarkHandler.Create)
			benchmarks.POST("/generate", cfg.BenchmarkHandler.Generate)
			benchmarks.GET("/:benchmarkId", cfg.BenchmarkHandler.Get)
			benchmarks.PATCH("/:benchmarkId", cfg.BenchmarkHandler.Update)
			benchmarks.DELETE("/:benchmarkId", cfg.BenchmarkHandler.Delete)
			benchmarks.POST("/:benchmarkId/activate", cfg.BenchmarkHandler.Activate)
			benchmarks.POST("/:benchmarkId/archive", cfg.BenchmarkHandler.Archive)

			benchmarks.GET("/:benchmarkId/versions", cfg.BenchmarkHandler.ListVersions)
			benchmarks.GET("/:benchmarkId/versions/quick-restore", cfg.BenchmarkHandler.QuickRestoreCandidate)
			benchmarks.GET("/:benchmarkId/versions/:versionId", cfg.BenchmarkHandler.GetVersion)
			benchmarks.POST("/:benchmarkId/versions/:versionId/restore", cfg.BenchmarkHandler.RestoreVersion)

			benchmarks.GET("/:benchmarkId/questions", cfg.QuestionHandler.List)
			benchmarks.POST("/:benchmarkId/questions", cfg.QuestionHandler.Create)
			benchmarks.PATCH("/:benchmarkId/questions/:questionId", cfg.QuestionHandler.Update)
			benchmarks.DELETE("/:benchmarkId/questions/:questionId", cfg.QuestionHandler.Delete)
			benchmarks.POST("/:benchmarkId/questions/:questionId/approve", cfg.QuestionHandler.SetApproved)
			benchmarks.POST("/:benchmarkId/questions/:questionId/relevance", cfg.QuestionHandler.SetRelevance)
		}

		schedules := project.Group("/scheduled-tasks")
		{
			schedules.GET("", cfg.ScheduleHandler.List)
			schedules.POST("", cfg.ScheduleHandler.Create)
			schedules.GET("/:taskId", cfg.ScheduleHandler.Get)
			schedules.PATCH("/:taskId", cfg.ScheduleHandler.Update)
			schedules.DELETE("/:taskId", cfg.ScheduleHandler.Delete)
			schedules.POST("/:taskId/toggle", cfg.ScheduleHandler.Toggle)
		}

		runs := project.Group("/runs")
		{
			runs.GET("", cfg.RunHandler.List)
			runs.POST("", cfg.RunHandler.Start)
			runs.GET("/:runId", cfg.RunHandler.Get)
			runs.DELETE("/:runId", cfg.RunHandler.Delete)
			runs.GET("/:runId/results", cfg.RunHandler.Results)
			runs.GET("/:runId/results/:resultId/competitor-analysis", cfg.RunHandler.GetCompetitorAnalysis)
			runs.POST("/:runId/results/:resultId/competitor-analysis", cfg.RunHandler.GenerateCompetitorAnalysis)
		}
	}

	return router
}
