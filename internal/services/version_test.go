package services

import (
  "context"
  "errors"
  "sync"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/repos"
  "github.com/yungbote/venturecast-backend/internal/types"
)

func seedModel(t *testing.T, ctx context.Context, modelRepo repos.FinancialModelRepo) *types.FinancialModel {
  t.Helper()
  now := time.Now()
  model := &types.FinancialModel{
    ID:                uuid.New(),
    BusinessIdea:      "food truck",
    StartupCost:       30000,
    MonthlyRevenue:    9000,
    GrossMargin:       60,
    OperatingExpenses: 5000,
    CustomAssumptions: datatypes.JSON([]byte(`{}`)),
    Status:            types.ModelStatusCompleted,
    CreatedAt:         now,
    UpdatedAt:         now,
  }
  path := "models/x/financial-model.xlsx"
  model.SpreadsheetPath = &path
  model.Artifact = datatypes.JSON([]byte(`{"executive_summary":"ok"}`))
  if _, err := modelRepo.Create(ctx, nil, []*types.FinancialModel{model}); err != nil {
    t.Fatalf("seed model: %v", err)
  }
  return model
}

func TestVersionService_CreateAndListSequential(t *testing.T) {
  db := newTestDB(t)
  log := logger.NewNop()
  modelRepo := repos.NewFinancialModelRepo(db, log)
  versionRepo := repos.NewModelVersionRepo(db, log)
  svc := NewVersionService(db, log, modelRepo, versionRepo)
  ctx := context.Background()

  model := seedModel(t, ctx, modelRepo)

  desc := "baseline"
  v1, err := svc.CreateVersion(ctx, model.ID, &desc)
  if err != nil {
    t.Fatalf("CreateVersion: %v", err)
  }
  if v1.VersionNumber != 1 {
    t.Fatalf("first version number=%d", v1.VersionNumber)
  }
  v2, err := svc.CreateVersion(ctx, model.ID, nil)
  if err != nil {
    t.Fatalf("CreateVersion: %v", err)
  }
  if v2.VersionNumber != 2 {
    t.Fatalf("second version number=%d", v2.VersionNumber)
  }

  versions, err := svc.ListVersions(ctx, model.ID)
  if err != nil {
    t.Fatalf("ListVersions: %v", err)
  }
  if len(versions) != 2 {
    t.Fatalf("expected 2 versions, got %d", len(versions))
  }
  for i, v := range versions {
    if v.VersionNumber != i+1 {
      t.Fatalf("versions out of order: %d at index %d", v.VersionNumber, i)
    }
  }
  if versions[0].BusinessIdea != model.BusinessIdea || versions[0].StartupCost != model.StartupCost {
    t.Fatalf("snapshot does not match model")
  }
}

func TestVersionService_UnknownModel(t *testing.T) {
  db := newTestDB(t)
  log := logger.NewNop()
  svc := NewVersionService(db, log, repos.NewFinancialModelRepo(db, log), repos.NewModelVersionRepo(db, log))
  ctx := context.Background()

  if _, err := svc.CreateVersion(ctx, uuid.New(), nil); !errors.Is(err, ErrNotFound) {
    t.Fatalf("CreateVersion: expected ErrNotFound, got %v", err)
  }
  if _, err := svc.ListVersions(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
    t.Fatalf("ListVersions: expected ErrNotFound, got %v", err)
  }
  if _, err := svc.RestoreVersion(ctx, uuid.New(), uuid.New()); !errors.Is(err, ErrNotFound) {
    t.Fatalf("RestoreVersion: expected ErrNotFound, got %v", err)
  }
}

func TestVersionService_RestoreRoundTrip(t *testing.T) {
  db := newTestDB(t)
  log := logger.NewNop()
  modelRepo := repos.NewFinancialModelRepo(db, log)
  svc := NewVersionService(db, log, modelRepo, repos.NewModelVersionRepo(db, log))
  ctx := context.Background()

  model := seedModel(t, ctx, modelRepo)
  v1, err := svc.CreateVersion(ctx, model.ID, nil)
  if err != nil {
    t.Fatalf("CreateVersion: %v", err)
  }

  // Drift the live model away from the snapshot.
  if err := modelRepo.UpdateFields(ctx, nil, model.ID, map[string]any{
    "business_idea": "gourmet food truck fleet",
    "startup_cost":  90000,
  }); err != nil {
    t.Fatalf("UpdateFields: %v", err)
  }

  restored, err := svc.RestoreVersion(ctx, model.ID, v1.ID)
  if err != nil {
    t.Fatalf("RestoreVersion: %v", err)
  }
  if restored.BusinessIdea != "food truck" || restored.StartupCost != 30000 {
    t.Fatalf("restore did not roll back fields: %+v", restored)
  }
  if restored.Status != types.ModelStatusCompleted {
    t.Fatalf("restored model with artifact should be completed, got %s", restored.Status)
  }

  // Restoring does not delete the version.
  versions, err := svc.ListVersions(ctx, model.ID)
  if err != nil || len(versions) != 1 {
    t.Fatalf("ListVersions after restore: len=%d err=%v", len(versions), err)
  }
}

func TestVersionService_ConcurrentCreateNumbersUnique(t *testing.T) {
  db := newTestDB(t)
  log := logger.NewNop()
  modelRepo := repos.NewFinancialModelRepo(db, log)
  svc := NewVersionService(db, log, modelRepo, repos.NewModelVersionRepo(db, log))
  ctx := context.Background()

  model := seedModel(t, ctx, modelRepo)

  const workers = 8
  numbers := make(chan int, workers)
  errs := make(chan error, workers)
  var wg sync.WaitGroup
  for i := 0; i < workers; i++ {
    wg.Add(1)
    go func() {
      defer wg.Done()
      v, err := svc.CreateVersion(ctx, model.ID, nil)
      if err != nil {
        errs <- err
        return
      }
      numbers <- v.VersionNumber
    }()
  }
  wg.Wait()
  close(numbers)
  close(errs)

  for err := range errs {
    t.Fatalf("CreateVersion: %v", err)
  }
  seen := map[int]bool{}
  for n := range numbers {
    if seen[n] {
      t.Fatalf("duplicate version number %d", n)
    }
    seen[n] = true
  }
  for i := 1; i <= workers; i++ {
    if !seen[i] {
      t.Fatalf("version number %d missing, got %v", i, seen)
    }
  }
}

func TestVersionService_RestoreSnapshotWithoutResults(t *testing.T) {
  db := newTestDB(t)
  log := logger.NewNop()
  modelRepo := repos.NewFinancialModelRepo(db, log)
  svc := NewVersionService(db, log, modelRepo, repos.NewModelVersionRepo(db, log))
  ctx := context.Background()

  now := time.Now()
  model := &types.FinancialModel{
    ID:                uuid.New(),
    BusinessIdea:      "food truck",
    StartupCost:       30000,
    MonthlyRevenue:    9000,
    GrossMargin:       60,
    OperatingExpenses: 5000,
    CustomAssumptions: datatypes.JSON([]byte(`{}`)),
    Status:            types.ModelStatusProcessing,
    CreatedAt:         now,
    UpdatedAt:         now,
  }
  if _, err := modelRepo.Create(ctx, nil, []*types.FinancialModel{model}); err != nil {
    t.Fatalf("seed model: %v", err)
  }

  // Snapshot taken before any results exist.
  v1, err := svc.CreateVersion(ctx, model.ID, nil)
  if err != nil {
    t.Fatalf("CreateVersion: %v", err)
  }

  completedAt := time.Now()
  if err := modelRepo.UpdateFields(ctx, nil, model.ID, map[string]any{
    "artifact":         datatypes.JSON([]byte(`{"executive_summary":"ok"}`)),
    "spreadsheet_path": "models/x/financial-model.xlsx",
    "document_path":    "models/x/business-report.docx",
    "status":           types.ModelStatusCompleted,
    "completed_at":     completedAt,
  }); err != nil {
    t.Fatalf("UpdateFields: %v", err)
  }

  restored, err := svc.RestoreVersion(ctx, model.ID, v1.ID)
  if err != nil {
    t.Fatalf("RestoreVersion: %v", err)
  }
  if restored.Status != types.ModelStatusPending {
    t.Fatalf("restore without results must leave status pending, got %s", restored.Status)
  }
  if len(restored.Artifact) != 0 || restored.SpreadsheetPath != nil || restored.DocumentPath != nil {
    t.Fatalf("results not cleared: %+v", restored)
  }
  if restored.CompletedAt != nil {
    t.Fatalf("completed_at must be cleared with the results")
  }
}

func TestVersionService_RestoreRejectsForeignVersion(t *testing.T) {
  db := newTestDB(t)
  log := logger.NewNop()
  modelRepo := repos.NewFinancialModelRepo(db, log)
  svc := NewVersionService(db, log, modelRepo, repos.NewModelVersionRepo(db, log))
  ctx := context.Background()

  modelA := seedModel(t, ctx, modelRepo)
  modelB := seedModel(t, ctx, modelRepo)
  vA, err := svc.CreateVersion(ctx, modelA.ID, nil)
  if err != nil {
    t.Fatalf("CreateVersion: %v", err)
  }

  if _, err := svc.RestoreVersion(ctx, modelB.ID, vA.ID); !errors.Is(err, ErrNotFound) {
    t.Fatalf("expected ErrNotFound for foreign version, got %v", err)
  }
}
