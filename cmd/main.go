package main

import (
  "context"
  "fmt"
  "os"
  "strings"

  "github.com/yungbote/venturecast-backend/internal/db"
  "github.com/yungbote/venturecast-backend/internal/handlers"
  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/observability"
  "github.com/yungbote/venturecast-backend/internal/repos"
  "github.com/yungbote/venturecast-backend/internal/server"
  "github.com/yungbote/venturecast-backend/internal/services"
  "github.com/yungbote/venturecast-backend/internal/utils"
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

  // Tracing
  shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: "venturecast-backend",
    Environment: utils.GetEnv("APP_ENV", "development", log),
    Version:     utils.GetEnv("APP_VERSION", "dev", log),
  })
  if shutdownOTel != nil {
    defer func() { _ = shutdownOTel(context.Background()) }()
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  modelRepo := repos.NewFinancialModelRepo(thePG, log)
  runRepo := repos.NewGenerationRunRepo(thePG, log)
  versionRepo := repos.NewModelVersionRepo(thePG, log)
  scenarioRepo := repos.NewScenarioRepo(thePG, log)

  // Services
  log.Info("Setting up Services from main...")
  catalog, err := services.NewSectorCatalog(log)
  if err != nil {
    log.Error("Could not init SectorCatalog", "error", err)
    os.Exit(1)
  }
  store, err := services.NewFileStoreFromEnv(log)
  if err != nil {
    log.Error("Could not init FileStore", "error", err)
    os.Exit(1)
  }
  aiClient, err := services.NewOpenAIClient(log)
  if err != nil {
    log.Error("Could not init OpenAIClient", "error", err)
    os.Exit(1)
  }
  generationService := services.NewModelGenerationService(thePG, log, modelRepo, runRepo, catalog, store, aiClient)
  generationService.StartWorker(context.Background())
  modelService := services.NewModelService(log, modelRepo, runRepo, store)
  versionService := services.NewVersionService(thePG, log, modelRepo, versionRepo)
  scenarioService := services.NewScenarioService(log, modelRepo, scenarioRepo)

  // Handlers
  log.Info("Setting up handlers from main...")
  modelHandler := handlers.NewModelHandler(log, modelService, generationService)
  versionHandler := handlers.NewVersionHandler(log, versionService)
  scenarioHandler := handlers.NewScenarioHandler(log, scenarioService)
  sectorHandler := handlers.NewSectorHandler(log, catalog)

  // Router
  log.Info("Setting up router from main...")
  var origins []string
  if raw := utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log); raw != "" {
    origins = strings.Split(raw, ",")
  }
  router := server.NewRouter(server.RouterConfig{
    AllowedOrigins:  origins,
    ModelHandler:    modelHandler,
    VersionHandler:  versionHandler,
    ScenarioHandler: scenarioHandler,
    SectorHandler:   sectorHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  log.Info("Server starting", "port", port)
  if err := router.Run(":" + port); err != nil {
    log.Fatal("Server failed", "error", err)
  }
}
