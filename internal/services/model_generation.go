package services

import (
  "context"
  "encoding/json"
  "fmt"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/repos"
  "github.com/yungbote/venturecast-backend/internal/types"
  "github.com/yungbote/venturecast-backend/internal/utils"
)

// SubmitModelInput is the request payload for a brand new model.
type SubmitModelInput struct {
  BusinessIdea      string         `json:"business_idea"`
  Sector            *string        `json:"sector"`
  StartupCost       float64        `json:"startup_cost"`
  MonthlyRevenue    float64        `json:"monthly_revenue"`
  GrossMargin       float64        `json:"gross_margin"`
  OperatingExpenses float64        `json:"operating_expenses"`
  CustomAssumptions map[string]any `json:"custom_assumptions"`
}

// RegenerateInput carries partial overrides applied before a rerun. Nil fields
// keep the model's current value.
type RegenerateInput struct {
  BusinessIdea      *string        `json:"business_idea"`
  Sector            *string        `json:"sector"`
  StartupCost       *float64       `json:"startup_cost"`
  MonthlyRevenue    *float64       `json:"monthly_revenue"`
  GrossMargin       *float64       `json:"gross_margin"`
  OperatingExpenses *float64       `json:"operating_expenses"`
  CustomAssumptions map[string]any `json:"custom_assumptions"`
}

type ModelGenerationService interface {
  Submit(ctx context.Context, input SubmitModelInput) (*types.FinancialModel, *types.GenerationRun, error)
  Regenerate(ctx context.Context, modelID uuid.UUID, input RegenerateInput) (*types.FinancialModel, *types.GenerationRun, error)
  StartWorker(ctx context.Context)
}

type modelGenerationService struct {
  db  *gorm.DB
  log *logger.Logger

  modelRepo repos.FinancialModelRepo
  runRepo   repos.GenerationRunRepo

  catalog SectorCatalog
  store   FileStore
  ai      AIClient

  // Worker policy. Stale runs are reclaimed after staleRunning without a
  // heartbeat, so heartbeatEvery must stay well under it.
  pollInterval   time.Duration
  staleRunning   time.Duration
  heartbeatEvery time.Duration
}

func NewModelGenerationService(
  db *gorm.DB,
  baseLog *logger.Logger,
  modelRepo repos.FinancialModelRepo,
  runRepo repos.GenerationRunRepo,
  catalog SectorCatalog,
  store FileStore,
  ai AIClient,
) ModelGenerationService {
  return &modelGenerationService{
    db:             db,
    log:            baseLog.With("service", "ModelGenerationService"),
    modelRepo:      modelRepo,
    runRepo:        runRepo,
    catalog:        catalog,
    store:          store,
    ai:             ai,
    pollInterval:   time.Duration(utils.GetEnvAsInt("WORKER_POLL_INTERVAL_SECONDS", 1, baseLog)) * time.Second,
    staleRunning:   time.Duration(utils.GetEnvAsInt("WORKER_STALE_RUNNING_SECONDS", 120, baseLog)) * time.Second,
    heartbeatEvery: time.Duration(utils.GetEnvAsInt("WORKER_HEARTBEAT_SECONDS", 30, baseLog)) * time.Second,
  }
}

func validateModelInput(idea string, startupCost, monthlyRevenue, grossMargin, operatingExpenses float64) error {
  if strings.TrimSpace(idea) == "" {
    return fmt.Errorf("%w: business_idea is required", ErrInvalidInput)
  }
  if startupCost < 0 || monthlyRevenue < 0 || operatingExpenses < 0 {
    return fmt.Errorf("%w: monetary inputs must be non-negative", ErrInvalidInput)
  }
  if grossMargin < 0 || grossMargin > 100 {
    return fmt.Errorf("%w: gross_margin must be between 0 and 100", ErrInvalidInput)
  }
  return nil
}

// Submit records the model and its queued run in one transaction and returns
// without waiting for the worker. The caller sees status "processing" right
// away; the run row is what the worker later claims.
func (mgs *modelGenerationService) Submit(ctx context.Context, input SubmitModelInput) (*types.FinancialModel, *types.GenerationRun, error) {
  if err := validateModelInput(input.BusinessIdea, input.StartupCost, input.MonthlyRevenue, input.GrossMargin, input.OperatingExpenses); err != nil {
    return nil, nil, err
  }

  assumptions := input.CustomAssumptions
  if assumptions == nil {
    assumptions = map[string]any{}
  }

  var model *types.FinancialModel
  var run *types.GenerationRun
  err := mgs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    now := time.Now()
    model = &types.FinancialModel{
      ID:                uuid.New(),
      BusinessIdea:      strings.TrimSpace(input.BusinessIdea),
      Sector:            input.Sector,
      StartupCost:       input.StartupCost,
      MonthlyRevenue:    input.MonthlyRevenue,
      GrossMargin:       input.GrossMargin,
      OperatingExpenses: input.OperatingExpenses,
      CustomAssumptions: datatypes.JSON(mustJSON(assumptions)),
      Status:            types.ModelStatusProcessing,
      CreatedAt:         now,
      UpdatedAt:         now,
    }
    if _, err := mgs.modelRepo.Create(ctx, tx, []*types.FinancialModel{model}); err != nil {
      return fmt.Errorf("create model: %w", err)
    }

    run = &types.GenerationRun{
      ID:        uuid.New(),
      ModelID:   model.ID,
      Trigger:   types.RunTriggerSubmit,
      Status:    types.RunStatusQueued,
      Stage:     "analyzing",
      Progress:  0,
      Attempts:  0,
      Metadata:  datatypes.JSON([]byte(`{}`)),
      CreatedAt: now,
      UpdatedAt: now,
    }
    if _, err := mgs.runRepo.Create(ctx, tx, []*types.GenerationRun{run}); err != nil {
      return fmt.Errorf("create generation run: %w", err)
    }
    return nil
  })
  if err != nil {
    return nil, nil, err
  }
  return model, run, nil
}

// Regenerate applies the overrides, resets the model and enqueues a new run.
// A queued or running run for the same model blocks the request; existing
// versions and scenarios are left untouched and keep pointing at their own
// snapshots.
func (mgs *modelGenerationService) Regenerate(ctx context.Context, modelID uuid.UUID, input RegenerateInput) (*types.FinancialModel, *types.GenerationRun, error) {
  var model *types.FinancialModel
  var run *types.GenerationRun
  err := mgs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    var err error
    model, err = mgs.modelRepo.GetByID(ctx, tx, modelID)
    if err != nil {
      return fmt.Errorf("load model: %w", err)
    }
    if model == nil {
      return ErrNotFound
    }

    active, err := mgs.runRepo.HasActiveRun(ctx, tx, modelID)
    if err != nil {
      return fmt.Errorf("check active runs: %w", err)
    }
    if active {
      return ErrRunInFlight
    }

    if input.BusinessIdea != nil {
      model.BusinessIdea = strings.TrimSpace(*input.BusinessIdea)
    }
    if input.Sector != nil {
      model.Sector = input.Sector
    }
    if input.StartupCost != nil {
      model.StartupCost = *input.StartupCost
    }
    if input.MonthlyRevenue != nil {
      model.MonthlyRevenue = *input.MonthlyRevenue
    }
    if input.GrossMargin != nil {
      model.GrossMargin = *input.GrossMargin
    }
    if input.OperatingExpenses != nil {
      model.OperatingExpenses = *input.OperatingExpenses
    }
    if input.CustomAssumptions != nil {
      model.CustomAssumptions = datatypes.JSON(mustJSON(input.CustomAssumptions))
    }
    if err := validateModelInput(model.BusinessIdea, model.StartupCost, model.MonthlyRevenue, model.GrossMargin, model.OperatingExpenses); err != nil {
      return err
    }

    now := time.Now()
    updates := map[string]any{
      "business_idea":      model.BusinessIdea,
      "sector":             model.Sector,
      "startup_cost":       model.StartupCost,
      "monthly_revenue":    model.MonthlyRevenue,
      "gross_margin":       model.GrossMargin,
      "operating_expenses": model.OperatingExpenses,
      "custom_assumptions": model.CustomAssumptions,
      "artifact":           nil,
      "spreadsheet_path":   nil,
      "document_path":      nil,
      "status":             types.ModelStatusProcessing,
      "completed_at":       nil,
      "updated_at":         now,
    }
    if err := mgs.modelRepo.UpdateFields(ctx, tx, modelID, updates); err != nil {
      return fmt.Errorf("update model: %w", err)
    }
    model.Artifact = nil
    model.SpreadsheetPath = nil
    model.DocumentPath = nil
    model.Status = types.ModelStatusProcessing
    model.CompletedAt = nil
    model.UpdatedAt = now

    run = &types.GenerationRun{
      ID:        uuid.New(),
      ModelID:   modelID,
      Trigger:   types.RunTriggerRegenerate,
      Status:    types.RunStatusQueued,
      Stage:     "analyzing",
      Progress:  0,
      Attempts:  0,
      Metadata:  datatypes.JSON([]byte(`{}`)),
      CreatedAt: now,
      UpdatedAt: now,
    }
    if _, err := mgs.runRepo.Create(ctx, tx, []*types.GenerationRun{run}); err != nil {
      return fmt.Errorf("create generation run: %w", err)
    }
    return nil
  })
  if err != nil {
    return nil, nil, err
  }
  return model, run, nil
}

func (mgs *modelGenerationService) StartWorker(ctx context.Context) {
  go func() {
    ticker := time.NewTicker(mgs.pollInterval)
    defer ticker.Stop()

    for {
      select {
      case <-ctx.Done():
        return
      case <-ticker.C:
        run, err := mgs.runRepo.ClaimNextRunnable(ctx, mgs.db, mgs.staleRunning)
        if err != nil {
          mgs.log.Warn("ClaimNextRunnable failed", "error", err)
          continue
        }
        if run == nil {
          continue
        }
        mgs.processRun(ctx, run)
      }
    }
  }()
}

func (mgs *modelGenerationService) processRun(ctx context.Context, run *types.GenerationRun) {
  runID := run.ID
  modelID := run.ModelID

  // The LLM stages can outlast the stale-running cutoff, so a background
  // heartbeat keeps the claim alive until the run reaches a terminal status.
  hbCtx, stopHeartbeat := context.WithCancel(ctx)
  defer stopHeartbeat()
  go func() {
    ticker := time.NewTicker(mgs.heartbeatEvery)
    defer ticker.Stop()
    for {
      select {
      case <-hbCtx.Done():
        return
      case <-ticker.C:
        if err := mgs.runRepo.Heartbeat(hbCtx, nil, runID); err != nil {
          mgs.log.Warn("run heartbeat failed", "run_id", runID, "error", err)
        }
      }
    }
  }()

  fail := func(stage string, err error) {
    mgs.log.Warn("generation run failed", "run_id", runID, "stage", stage, "error", err)
    now := time.Now()
    _ = mgs.runRepo.UpdateFields(ctx, nil, runID, map[string]any{
      "status":        types.RunStatusFailed,
      "stage":         stage,
      "error":         err.Error(),
      "last_error_at": now,
      "locked_at":     nil,
      "updated_at":    now,
    })
    _ = mgs.modelRepo.UpdateFields(ctx, nil, modelID, map[string]any{
      "status":     types.ModelStatusFailed,
      "updated_at": now,
    })
  }

  progress := func(stage string, pct int) {
    now := time.Now()
    _ = mgs.runRepo.UpdateFields(ctx, nil, runID, map[string]any{
      "stage":        stage,
      "progress":     pct,
      "heartbeat_at": now,
      "updated_at":   now,
    })
  }

  model, err := mgs.modelRepo.GetByID(ctx, nil, modelID)
  if err != nil {
    fail("analyzing", fmt.Errorf("load model: %w", err))
    return
  }
  if model == nil {
    fail("analyzing", fmt.Errorf("model %s not found", modelID))
    return
  }

  // 1) ANALYZING: turn the raw idea and inputs into a structured brief.
  progress("analyzing", 10)
  brief, err := mgs.ai.GenerateText(ctx, analystSystemPrompt, mgs.analystUserPrompt(model))
  if err != nil {
    fail("analyzing", fmt.Errorf("analyst call: %w", err))
    return
  }
  if strings.TrimSpace(brief) == "" {
    fail("analyzing", fmt.Errorf("analyst returned empty brief"))
    return
  }

  // 2) MODELING: produce the full artifact as schema-constrained JSON.
  progress("modeling", 40)
  raw, err := mgs.ai.GenerateJSON(ctx, modelerSystemPrompt, modelerUserPrompt(model, brief), "financial_model_artifact", artifactSchema())
  if err != nil {
    fail("modeling", fmt.Errorf("modeler call: %w", err))
    return
  }

  // 3) VALIDATING: shape-check, then repair arithmetic and fill gaps.
  progress("validating", 70)
  artifact, err := decodeArtifact(raw)
  if err != nil {
    fail("validating", err)
    return
  }
  RepairArtifact(artifact)

  // 4) RENDERING: both files must land or neither does.
  progress("rendering", 85)
  xlsxKey := fmt.Sprintf("models/%s/financial-model.xlsx", modelID)
  docxKey := fmt.Sprintf("models/%s/business-report.docx", modelID)

  xlsxData, err := RenderSpreadsheet(model, artifact)
  if err != nil {
    fail("rendering", fmt.Errorf("render spreadsheet: %w", err))
    return
  }
  if err := mgs.store.Save(ctx, xlsxKey, xlsxData); err != nil {
    fail("rendering", fmt.Errorf("store spreadsheet: %w", err))
    return
  }

  docxData, err := RenderDocument(model, artifact)
  if err == nil {
    err = mgs.store.Save(ctx, docxKey, docxData)
  }
  if err != nil {
    if delErr := mgs.store.Delete(ctx, xlsxKey); delErr != nil {
      mgs.log.Warn("cleanup of orphaned spreadsheet failed", "key", xlsxKey, "error", delErr)
    }
    fail("rendering", fmt.Errorf("render document: %w", err))
    return
  }

  // 5) DONE: artifact, paths and completion land in a single update so a
  // reader never sees a completed model with missing pieces.
  now := time.Now()
  err = mgs.modelRepo.UpdateFields(ctx, nil, modelID, map[string]any{
    "artifact":         datatypes.JSON(mustJSON(artifact)),
    "spreadsheet_path": xlsxKey,
    "document_path":    docxKey,
    "status":           types.ModelStatusCompleted,
    "completed_at":     now,
    "updated_at":       now,
  })
  if err != nil {
    fail("done", fmt.Errorf("finalize model: %w", err))
    return
  }
  _ = mgs.runRepo.UpdateFields(ctx, nil, runID, map[string]any{
    "status":     types.RunStatusSucceeded,
    "stage":      "done",
    "progress":   100,
    "locked_at":  nil,
    "updated_at": now,
  })
  mgs.log.Info("generation run succeeded", "run_id", runID, "model_id", modelID)
}

const analystSystemPrompt = `You are a pragmatic startup financial analyst. Given a business description and the founder's numeric estimates, produce a concise analysis brief in plain text: the business model, realistic revenue drivers, the main cost centers, seasonality if relevant, and any adjustments you would make to the founder's estimates. Do not produce JSON.`

const modelerSystemPrompt = `You are a financial modeler. Using the analyst brief and the founder's inputs, produce a complete five-year financial model as JSON matching the provided schema exactly. Monthly arrays cover months 1 through 12. Annual projections cover years 1 through 5. All currency values are plain numbers in dollars. Be internally consistent: gross profit is revenue minus costs, net cash flow is inflow minus outflow, cumulative cash accumulates month over month.`

func (mgs *modelGenerationService) analystUserPrompt(model *types.FinancialModel) string {
  var b strings.Builder
  fmt.Fprintf(&b, "Business idea:\n%s\n\n", model.BusinessIdea)
  fmt.Fprintf(&b, "Founder estimates:\n")
  fmt.Fprintf(&b, "- Startup cost: $%.2f\n", model.StartupCost)
  fmt.Fprintf(&b, "- Expected monthly revenue: $%.2f\n", model.MonthlyRevenue)
  fmt.Fprintf(&b, "- Gross margin: %.1f%%\n", model.GrossMargin)
  fmt.Fprintf(&b, "- Monthly operating expenses: $%.2f\n", model.OperatingExpenses)

  if len(model.CustomAssumptions) > 0 && string(model.CustomAssumptions) != "{}" {
    fmt.Fprintf(&b, "\nCustom assumptions:\n%s\n", string(model.CustomAssumptions))
  }

  if model.Sector != nil && *model.Sector != "" {
    if bm, ok := mgs.catalog.GetByName(*model.Sector); ok {
      fmt.Fprintf(&b, "\nSector benchmarks (%s):\n", bm.Name)
      fmt.Fprintf(&b, "- Typical year-1 revenue: $%.0f\n", bm.AvgRevenueYear1)
      fmt.Fprintf(&b, "- Gross margin target: %.0f%%\n", bm.GrossMarginTarget)
      fmt.Fprintf(&b, "- Typical total startup cost: $%.0f\n", bm.StartupCostTotal)
      fmt.Fprintf(&b, "- Typical year-1 ROI: %.0f%%\n", bm.ROIYear1)
      if len(bm.CostBreakdown) > 0 {
        fmt.Fprintf(&b, "- Main cost centers: %s\n", strings.Join(bm.CostBreakdown, "; "))
      }
      if bm.Risks != "" {
        fmt.Fprintf(&b, "- Known risks: %s\n", bm.Risks)
      }
      fmt.Fprintf(&b, "Flag founder estimates that fall well outside these benchmarks.\n")
    } else {
      fmt.Fprintf(&b, "\nSector: %s (no benchmark data available)\n", *model.Sector)
    }
  }
  return b.String()
}

func modelerUserPrompt(model *types.FinancialModel, brief string) string {
  var b strings.Builder
  fmt.Fprintf(&b, "Analyst brief:\n%s\n\n", brief)
  fmt.Fprintf(&b, "Founder inputs:\n")
  fmt.Fprintf(&b, "- Business idea: %s\n", model.BusinessIdea)
  fmt.Fprintf(&b, "- Startup cost: $%.2f\n", model.StartupCost)
  fmt.Fprintf(&b, "- Expected monthly revenue: $%.2f\n", model.MonthlyRevenue)
  fmt.Fprintf(&b, "- Gross margin: %.1f%%\n", model.GrossMargin)
  fmt.Fprintf(&b, "- Monthly operating expenses: $%.2f\n", model.OperatingExpenses)
  fmt.Fprintf(&b, "\nProduce the full model now.\n")
  return b.String()
}

func mustJSON(v any) []byte {
  b, err := json.Marshal(v)
  if err != nil {
    return []byte(`{}`)
  }
  return b
}
