package server

import (
  "context"
  "encoding/json"
  "net/http"
  "net/http/httptest"
  "path/filepath"
  "strings"
  "testing"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"

  "github.com/yungbote/venturecast-backend/internal/handlers"
  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/repos"
  "github.com/yungbote/venturecast-backend/internal/services"
  "github.com/yungbote/venturecast-backend/internal/types"
)

type staticAI struct{}

func (staticAI) GenerateText(ctx context.Context, system, user string) (string, error) {
  return "brief", nil
}

func (staticAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
  return map[string]any{}, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
  t.Helper()
  gin.SetMode(gin.TestMode)

  db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
    Logger: gormlogger.Default.LogMode(gormlogger.Silent),
  })
  if err != nil {
    t.Fatalf("open sqlite: %v", err)
  }
  if err := db.AutoMigrate(
    &types.FinancialModel{},
    &types.GenerationRun{},
    &types.ModelVersion{},
    &types.Scenario{},
  ); err != nil {
    t.Fatalf("migrate: %v", err)
  }

  log := logger.NewNop()
  modelRepo := repos.NewFinancialModelRepo(db, log)
  runRepo := repos.NewGenerationRunRepo(db, log)
  versionRepo := repos.NewModelVersionRepo(db, log)
  scenarioRepo := repos.NewScenarioRepo(db, log)

  catalog, err := services.NewSectorCatalog(log)
  if err != nil {
    t.Fatalf("NewSectorCatalog: %v", err)
  }
  store, err := services.NewLocalFileStore(log, t.TempDir())
  if err != nil {
    t.Fatalf("NewLocalFileStore: %v", err)
  }

  generationService := services.NewModelGenerationService(db, log, modelRepo, runRepo, catalog, store, staticAI{})
  modelService := services.NewModelService(log, modelRepo, runRepo, store)
  versionService := services.NewVersionService(db, log, modelRepo, versionRepo)
  scenarioService := services.NewScenarioService(log, modelRepo, scenarioRepo)

  return NewRouter(RouterConfig{
    ModelHandler:    handlers.NewModelHandler(log, modelService, generationService),
    VersionHandler:  handlers.NewVersionHandler(log, versionService),
    ScenarioHandler: handlers.NewScenarioHandler(log, scenarioService),
    SectorHandler:   handlers.NewSectorHandler(log, catalog),
  })
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
  t.Helper()
  var reader *strings.Reader
  if body == "" {
    reader = strings.NewReader("")
  } else {
    reader = strings.NewReader(body)
  }
  req := httptest.NewRequest(method, path, reader)
  if body != "" {
    req.Header.Set("Content-Type", "application/json")
  }
  w := httptest.NewRecorder()
  router.ServeHTTP(w, req)
  return w
}

func TestRouter_Healthcheck(t *testing.T) {
  router := newTestRouter(t)
  w := doJSON(t, router, http.MethodGet, "/healthcheck", "")
  if w.Code != http.StatusOK {
    t.Fatalf("status=%d", w.Code)
  }
}

func TestRouter_GenerateModelReturnsProcessing(t *testing.T) {
  router := newTestRouter(t)
  body := `{"business_idea":"a bakery","startup_cost":20000,"monthly_revenue":8000,"gross_margin":60,"operating_expenses":4000}`
  w := doJSON(t, router, http.MethodPost, "/api/generate-model", body)
  if w.Code != http.StatusOK {
    t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
  }
  var resp struct {
    ID     uuid.UUID `json:"id"`
    Status string    `json:"status"`
  }
  if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
    t.Fatalf("decode: %v", err)
  }
  if resp.ID == uuid.Nil || resp.Status != "processing" {
    t.Fatalf("unexpected response: %+v", resp)
  }

  // The model is immediately visible while the run is still queued.
  w = doJSON(t, router, http.MethodGet, "/api/models/"+resp.ID.String(), "")
  if w.Code != http.StatusOK {
    t.Fatalf("get model status=%d", w.Code)
  }
}

func TestRouter_GenerateModelValidation(t *testing.T) {
  router := newTestRouter(t)
  w := doJSON(t, router, http.MethodPost, "/api/generate-model", `{"business_idea":"  ","startup_cost":1}`)
  if w.Code != http.StatusBadRequest {
    t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
  }
  var envelope handlers.ErrorEnvelope
  if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
    t.Fatalf("decode: %v", err)
  }
  if envelope.Error.Code != "invalid_input" {
    t.Fatalf("code=%q", envelope.Error.Code)
  }
}

func TestRouter_NotFoundSemantics(t *testing.T) {
  router := newTestRouter(t)
  unknown := uuid.New().String()
  paths := []struct {
    method string
    path   string
    body   string
  }{
    {http.MethodGet, "/api/models/" + unknown, ""},
    {http.MethodGet, "/api/download/" + unknown, ""},
    {http.MethodGet, "/api/download-docx/" + unknown, ""},
    {http.MethodGet, "/api/models/" + unknown + "/versions", ""},
    {http.MethodGet, "/api/models/" + unknown + "/scenarios", ""},
    {http.MethodPut, "/api/scenarios/" + unknown, `{"name":"x"}`},
    {http.MethodDelete, "/api/scenarios/" + unknown, ""},
    {http.MethodGet, "/api/models/not-a-uuid", ""},
  }
  for _, tc := range paths {
    w := doJSON(t, router, tc.method, tc.path, tc.body)
    if w.Code != http.StatusNotFound {
      t.Fatalf("%s %s: status=%d body=%s", tc.method, tc.path, w.Code, w.Body.String())
    }
  }
}

func TestRouter_Sectors(t *testing.T) {
  router := newTestRouter(t)

  w := doJSON(t, router, http.MethodGet, "/api/sectors", "")
  if w.Code != http.StatusOK {
    t.Fatalf("list status=%d", w.Code)
  }
  var listResp struct {
    Sectors []types.SectorBenchmark `json:"sectors"`
  }
  if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
    t.Fatalf("decode: %v", err)
  }
  if len(listResp.Sectors) == 0 {
    t.Fatalf("expected pre-loaded sectors")
  }

  w = doJSON(t, router, http.MethodPost, "/api/sectors", `{"name":"Laundromat","avg_revenue_year1":150000}`)
  if w.Code != http.StatusOK {
    t.Fatalf("create status=%d body=%s", w.Code, w.Body.String())
  }
  w = doJSON(t, router, http.MethodPost, "/api/sectors", `{"name":"Laundromat"}`)
  if w.Code != http.StatusBadRequest {
    t.Fatalf("duplicate create status=%d", w.Code)
  }
}
