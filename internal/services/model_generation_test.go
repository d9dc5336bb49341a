package services

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "testing"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/repos"
  "github.com/yungbote/venturecast-backend/internal/types"
)

type generationFixture struct {
  db        *gorm.DB
  modelRepo repos.FinancialModelRepo
  runRepo   repos.GenerationRunRepo
  store     FileStore
  svc       *modelGenerationService
}

func newGenerationFixture(t *testing.T, ai AIClient, store FileStore) *generationFixture {
  t.Helper()
  db := newTestDB(t)
  log := logger.NewNop()
  modelRepo := repos.NewFinancialModelRepo(db, log)
  runRepo := repos.NewGenerationRunRepo(db, log)
  catalog, err := NewSectorCatalog(log)
  if err != nil {
    t.Fatalf("NewSectorCatalog: %v", err)
  }
  if store == nil {
    store, err = NewLocalFileStore(log, t.TempDir())
    if err != nil {
      t.Fatalf("NewLocalFileStore: %v", err)
    }
  }
  svc := NewModelGenerationService(db, log, modelRepo, runRepo, catalog, store, ai).(*modelGenerationService)
  return &generationFixture{db: db, modelRepo: modelRepo, runRepo: runRepo, store: store, svc: svc}
}

func submitInput() SubmitModelInput {
  sector := "Coffee Shop"
  return SubmitModelInput{
    BusinessIdea:      "A specialty coffee shop near a university campus",
    Sector:            &sector,
    StartupCost:       50000,
    MonthlyRevenue:    12000,
    GrossMargin:       65,
    OperatingExpenses: 7000,
  }
}

func TestSubmit_CreatesProcessingModelAndQueuedRun(t *testing.T) {
  fx := newGenerationFixture(t, &fakeAI{doc: validArtifactDoc()}, nil)
  ctx := context.Background()

  model, run, err := fx.svc.Submit(ctx, submitInput())
  if err != nil {
    t.Fatalf("Submit: %v", err)
  }
  if model.Status != types.ModelStatusProcessing {
    t.Fatalf("model status=%s", model.Status)
  }
  if run.Status != types.RunStatusQueued || run.Trigger != types.RunTriggerSubmit {
    t.Fatalf("unexpected run: status=%s trigger=%s", run.Status, run.Trigger)
  }

  stored, err := fx.modelRepo.GetByID(ctx, nil, model.ID)
  if err != nil || stored == nil {
    t.Fatalf("GetByID: model=%v err=%v", stored, err)
  }
  if stored.Artifact != nil || stored.SpreadsheetPath != nil || stored.DocumentPath != nil {
    t.Fatalf("results must be empty before the run executes")
  }
}

func TestSubmit_RejectsBadInput(t *testing.T) {
  fx := newGenerationFixture(t, &fakeAI{doc: validArtifactDoc()}, nil)
  ctx := context.Background()

  cases := []struct {
    name   string
    mutate func(in *SubmitModelInput)
  }{
    {"empty idea", func(in *SubmitModelInput) { in.BusinessIdea = "   " }},
    {"negative startup cost", func(in *SubmitModelInput) { in.StartupCost = -1 }},
    {"margin above 100", func(in *SubmitModelInput) { in.GrossMargin = 150 }},
    {"negative margin", func(in *SubmitModelInput) { in.GrossMargin = -5 }},
  }
  for _, tc := range cases {
    t.Run(tc.name, func(t *testing.T) {
      in := submitInput()
      tc.mutate(&in)
      if _, _, err := fx.svc.Submit(ctx, in); !errors.Is(err, ErrInvalidInput) {
        t.Fatalf("expected ErrInvalidInput, got %v", err)
      }
    })
  }
}

func TestProcessRun_Succeeds(t *testing.T) {
  fx := newGenerationFixture(t, &fakeAI{doc: validArtifactDoc()}, nil)
  ctx := context.Background()

  model, run, err := fx.svc.Submit(ctx, submitInput())
  if err != nil {
    t.Fatalf("Submit: %v", err)
  }
  fx.svc.processRun(ctx, run)

  stored, err := fx.modelRepo.GetByID(ctx, nil, model.ID)
  if err != nil || stored == nil {
    t.Fatalf("GetByID: model=%v err=%v", stored, err)
  }
  if stored.Status != types.ModelStatusCompleted {
    t.Fatalf("model status=%s", stored.Status)
  }
  if stored.CompletedAt == nil {
    t.Fatalf("completed_at not set")
  }
  if stored.SpreadsheetPath == nil || stored.DocumentPath == nil {
    t.Fatalf("file paths not recorded")
  }
  for _, path := range []string{*stored.SpreadsheetPath, *stored.DocumentPath} {
    ok, err := fx.store.Exists(ctx, path)
    if err != nil || !ok {
      t.Fatalf("rendered file %s missing: ok=%v err=%v", path, ok, err)
    }
  }

  var artifact types.GeneratedArtifact
  if err := json.Unmarshal(stored.Artifact, &artifact); err != nil {
    t.Fatalf("unmarshal stored artifact: %v", err)
  }
  if len(artifact.RevenueProjections) != 12 || len(artifact.CashFlow) != 12 {
    t.Fatalf("monthly arrays not repaired: %d/%d", len(artifact.RevenueProjections), len(artifact.CashFlow))
  }
  if len(artifact.AnnualProjections) != 5 {
    t.Fatalf("annual projections not reconstructed: %d", len(artifact.AnnualProjections))
  }

  storedRun, err := fx.runRepo.GetByID(ctx, nil, run.ID)
  if err != nil || storedRun == nil {
    t.Fatalf("GetByID run: %v %v", storedRun, err)
  }
  if storedRun.Status != types.RunStatusSucceeded || storedRun.Stage != "done" || storedRun.Progress != 100 {
    t.Fatalf("unexpected run state: %+v", storedRun)
  }
}

func TestProcessRun_ModelerFailure(t *testing.T) {
  fx := newGenerationFixture(t, &fakeAI{jsonErr: fmt.Errorf("upstream unavailable")}, nil)
  ctx := context.Background()

  model, run, err := fx.svc.Submit(ctx, submitInput())
  if err != nil {
    t.Fatalf("Submit: %v", err)
  }
  fx.svc.processRun(ctx, run)

  stored, _ := fx.modelRepo.GetByID(ctx, nil, model.ID)
  if stored.Status != types.ModelStatusFailed {
    t.Fatalf("model status=%s", stored.Status)
  }
  storedRun, _ := fx.runRepo.GetByID(ctx, nil, run.ID)
  if storedRun.Status != types.RunStatusFailed || storedRun.Stage != "modeling" {
    t.Fatalf("unexpected run state: status=%s stage=%s", storedRun.Status, storedRun.Stage)
  }
  if storedRun.Error == "" {
    t.Fatalf("run error not recorded")
  }
}

func TestProcessRun_ShapeFailure(t *testing.T) {
  doc := validArtifactDoc()
  delete(doc, "key_metrics")
  fx := newGenerationFixture(t, &fakeAI{doc: doc}, nil)
  ctx := context.Background()

  model, run, err := fx.svc.Submit(ctx, submitInput())
  if err != nil {
    t.Fatalf("Submit: %v", err)
  }
  fx.svc.processRun(ctx, run)

  stored, _ := fx.modelRepo.GetByID(ctx, nil, model.ID)
  if stored.Status != types.ModelStatusFailed {
    t.Fatalf("model status=%s", stored.Status)
  }
  storedRun, _ := fx.runRepo.GetByID(ctx, nil, run.ID)
  if storedRun.Status != types.RunStatusFailed || storedRun.Stage != "validating" {
    t.Fatalf("unexpected run state: status=%s stage=%s", storedRun.Status, storedRun.Stage)
  }
}

func TestProcessRun_DocumentFailureRemovesSpreadsheet(t *testing.T) {
  log := logger.NewNop()
  local, err := NewLocalFileStore(log, t.TempDir())
  if err != nil {
    t.Fatalf("NewLocalFileStore: %v", err)
  }
  store := &flakyStore{FileStore: local, failSuffix: ".docx"}
  fx := newGenerationFixture(t, &fakeAI{doc: validArtifactDoc()}, store)
  ctx := context.Background()

  model, run, err := fx.svc.Submit(ctx, submitInput())
  if err != nil {
    t.Fatalf("Submit: %v", err)
  }
  fx.svc.processRun(ctx, run)

  stored, _ := fx.modelRepo.GetByID(ctx, nil, model.ID)
  if stored.Status != types.ModelStatusFailed {
    t.Fatalf("model status=%s", stored.Status)
  }
  if stored.SpreadsheetPath != nil || stored.DocumentPath != nil {
    t.Fatalf("paths must not be recorded on failure")
  }
  ok, err := store.Exists(ctx, fmt.Sprintf("models/%s/financial-model.xlsx", model.ID))
  if err != nil {
    t.Fatalf("Exists: %v", err)
  }
  if ok {
    t.Fatalf("orphaned spreadsheet should have been removed")
  }
}

func TestRegenerate_ClearsPreviousResults(t *testing.T) {
  fx := newGenerationFixture(t, &fakeAI{doc: validArtifactDoc()}, nil)
  ctx := context.Background()

  model, run, err := fx.svc.Submit(ctx, submitInput())
  if err != nil {
    t.Fatalf("Submit: %v", err)
  }
  fx.svc.processRun(ctx, run)

  updated, newRun, err := fx.svc.Regenerate(ctx, model.ID, RegenerateInput{})
  if err != nil {
    t.Fatalf("Regenerate: %v", err)
  }
  if len(updated.Artifact) != 0 || updated.SpreadsheetPath != nil || updated.DocumentPath != nil {
    t.Fatalf("previous results must be cleared on regenerate: %+v", updated)
  }
  stored, _ := fx.modelRepo.GetByID(ctx, nil, model.ID)
  if len(stored.Artifact) != 0 || stored.SpreadsheetPath != nil || stored.DocumentPath != nil {
    t.Fatalf("stale results still recorded while processing")
  }

  // A failing rerun must not resurface the old artifact or paths.
  fx.svc.ai = &fakeAI{jsonErr: fmt.Errorf("upstream unavailable")}
  fx.svc.processRun(ctx, newRun)
  stored, _ = fx.modelRepo.GetByID(ctx, nil, model.ID)
  if stored.Status != types.ModelStatusFailed {
    t.Fatalf("model status=%s", stored.Status)
  }
  if len(stored.Artifact) != 0 || stored.SpreadsheetPath != nil || stored.DocumentPath != nil {
    t.Fatalf("failed rerun left stale results behind")
  }
}

func TestHeartbeat_TouchesOnlyRunningRuns(t *testing.T) {
  fx := newGenerationFixture(t, &fakeAI{doc: validArtifactDoc()}, nil)
  ctx := context.Background()

  _, run, err := fx.svc.Submit(ctx, submitInput())
  if err != nil {
    t.Fatalf("Submit: %v", err)
  }

  if err := fx.runRepo.Heartbeat(ctx, nil, run.ID); err != nil {
    t.Fatalf("Heartbeat: %v", err)
  }
  stored, _ := fx.runRepo.GetByID(ctx, nil, run.ID)
  if stored.HeartbeatAt != nil {
    t.Fatalf("queued run must not receive a heartbeat")
  }

  if err := fx.runRepo.UpdateFields(ctx, nil, run.ID, map[string]any{"status": types.RunStatusRunning}); err != nil {
    t.Fatalf("UpdateFields: %v", err)
  }
  if err := fx.runRepo.Heartbeat(ctx, nil, run.ID); err != nil {
    t.Fatalf("Heartbeat: %v", err)
  }
  stored, _ = fx.runRepo.GetByID(ctx, nil, run.ID)
  if stored.HeartbeatAt == nil {
    t.Fatalf("running run heartbeat not recorded")
  }
}

func TestRegenerate_BlockedWhileRunActive(t *testing.T) {
  fx := newGenerationFixture(t, &fakeAI{doc: validArtifactDoc()}, nil)
  ctx := context.Background()

  model, _, err := fx.svc.Submit(ctx, submitInput())
  if err != nil {
    t.Fatalf("Submit: %v", err)
  }
  if _, _, err := fx.svc.Regenerate(ctx, model.ID, RegenerateInput{}); !errors.Is(err, ErrRunInFlight) {
    t.Fatalf("expected ErrRunInFlight, got %v", err)
  }
}

func TestRegenerate_UnknownModel(t *testing.T) {
  fx := newGenerationFixture(t, &fakeAI{doc: validArtifactDoc()}, nil)
  if _, _, err := fx.svc.Regenerate(context.Background(), uuid.New(), RegenerateInput{}); !errors.Is(err, ErrNotFound) {
    t.Fatalf("expected ErrNotFound, got %v", err)
  }
}

func TestRegenerate_AppliesOverridesAndEnqueues(t *testing.T) {
  fx := newGenerationFixture(t, &fakeAI{doc: validArtifactDoc()}, nil)
  ctx := context.Background()

  model, run, err := fx.svc.Submit(ctx, submitInput())
  if err != nil {
    t.Fatalf("Submit: %v", err)
  }
  fx.svc.processRun(ctx, run)

  cost := 80000.0
  margin := 55.0
  updated, newRun, err := fx.svc.Regenerate(ctx, model.ID, RegenerateInput{
    StartupCost: &cost,
    GrossMargin: &margin,
  })
  if err != nil {
    t.Fatalf("Regenerate: %v", err)
  }
  if updated.StartupCost != 80000 || updated.GrossMargin != 55 {
    t.Fatalf("overrides not applied: %+v", updated)
  }
  if updated.BusinessIdea != model.BusinessIdea {
    t.Fatalf("unset fields must be preserved")
  }
  if updated.Status != types.ModelStatusProcessing || updated.CompletedAt != nil {
    t.Fatalf("model not reset: status=%s", updated.Status)
  }
  if newRun.Trigger != types.RunTriggerRegenerate || newRun.Status != types.RunStatusQueued {
    t.Fatalf("unexpected run: %+v", newRun)
  }

  fx.svc.processRun(ctx, newRun)
  stored, _ := fx.modelRepo.GetByID(ctx, nil, model.ID)
  if stored.Status != types.ModelStatusCompleted {
    t.Fatalf("rerun did not complete: %s", stored.Status)
  }
}
