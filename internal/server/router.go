package server

import (
  "strings"

  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

  "github.com/yungbote/venturecast-backend/internal/handlers"
)

type RouterConfig struct {
  AllowedOrigins  []string
  ModelHandler    *handlers.ModelHandler
  VersionHandler  *handlers.VersionHandler
  ScenarioHandler *handlers.ScenarioHandler
  SectorHandler   *handlers.SectorHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()
  router.Use(otelgin.Middleware("venturecast-backend"))

  origins := cfg.AllowedOrigins
  if len(origins) == 0 {
    origins = []string{"http://localhost:3000", "http://localhost:5173"}
  }
  for i := range origins {
    origins[i] = strings.TrimSpace(origins[i])
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     origins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  router.GET("/healthcheck", handlers.HealthCheck)

  api := router.Group("/api")
  {
    // Generation
    api.POST("/generate-model", cfg.ModelHandler.Generate)

    // Models
    api.GET("/models", cfg.ModelHandler.List)
    api.GET("/models/:id", cfg.ModelHandler.Get)
    api.POST("/models/:id/regenerate", cfg.ModelHandler.Regenerate)
    api.GET("/models/:id/generation", cfg.ModelHandler.LatestRun)

    // Downloads
    api.GET("/download/:id", cfg.ModelHandler.DownloadSpreadsheet)
    api.GET("/download-docx/:id", cfg.ModelHandler.DownloadDocument)

    // Versions
    api.POST("/models/:id/versions", cfg.VersionHandler.Create)
    api.GET("/models/:id/versions", cfg.VersionHandler.List)
    api.POST("/models/:id/versions/:versionId/restore", cfg.VersionHandler.Restore)

    // Scenarios
    api.POST("/models/:id/scenarios", cfg.ScenarioHandler.Create)
    api.GET("/models/:id/scenarios", cfg.ScenarioHandler.List)
    api.PUT("/scenarios/:id", cfg.ScenarioHandler.Update)
    api.DELETE("/scenarios/:id", cfg.ScenarioHandler.Delete)

    // Sectors
    api.GET("/sectors", cfg.SectorHandler.List)
    api.POST("/sectors", cfg.SectorHandler.Create)
  }

  return router
}
