package services

import (
  "context"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/repos"
  "github.com/yungbote/venturecast-backend/internal/types"
)

type VersionService interface {
  CreateVersion(ctx context.Context, modelID uuid.UUID, changeDescription *string) (*types.ModelVersion, error)
  ListVersions(ctx context.Context, modelID uuid.UUID) ([]*types.ModelVersion, error)
  RestoreVersion(ctx context.Context, modelID uuid.UUID, versionID uuid.UUID) (*types.FinancialModel, error)
}

type versionService struct {
  db          *gorm.DB
  log         *logger.Logger
  modelRepo   repos.FinancialModelRepo
  versionRepo repos.ModelVersionRepo
}

func NewVersionService(db *gorm.DB, baseLog *logger.Logger, modelRepo repos.FinancialModelRepo, versionRepo repos.ModelVersionRepo) VersionService {
  return &versionService{
    db:          db,
    log:         baseLog.With("service", "VersionService"),
    modelRepo:   modelRepo,
    versionRepo: versionRepo,
  }
}

// CreateVersion snapshots the model as it stands right now. Numbering is
// handled inside the repo so concurrent snapshots of the same model never
// collide.
func (vs *versionService) CreateVersion(ctx context.Context, modelID uuid.UUID, changeDescription *string) (*types.ModelVersion, error) {
  model, err := vs.modelRepo.GetByID(ctx, nil, modelID)
  if err != nil {
    return nil, fmt.Errorf("load model: %w", err)
  }
  if model == nil {
    return nil, ErrNotFound
  }

  version := &types.ModelVersion{
    ID:                uuid.New(),
    ModelID:           model.ID,
    BusinessIdea:      model.BusinessIdea,
    Sector:            model.Sector,
    StartupCost:       model.StartupCost,
    MonthlyRevenue:    model.MonthlyRevenue,
    GrossMargin:       model.GrossMargin,
    OperatingExpenses: model.OperatingExpenses,
    CustomAssumptions: model.CustomAssumptions,
    Artifact:          model.Artifact,
    SpreadsheetPath:   model.SpreadsheetPath,
    DocumentPath:      model.DocumentPath,
    ChangeDescription: changeDescription,
    CreatedAt:         time.Now(),
  }
  created, err := vs.versionRepo.CreateNext(ctx, vs.db, version)
  if err != nil {
    return nil, fmt.Errorf("create version: %w", err)
  }
  return created, nil
}

func (vs *versionService) ListVersions(ctx context.Context, modelID uuid.UUID) ([]*types.ModelVersion, error) {
  model, err := vs.modelRepo.GetByID(ctx, nil, modelID)
  if err != nil {
    return nil, fmt.Errorf("load model: %w", err)
  }
  if model == nil {
    return nil, ErrNotFound
  }
  versions, err := vs.versionRepo.GetByModelID(ctx, nil, modelID)
  if err != nil {
    return nil, fmt.Errorf("load versions: %w", err)
  }
  return versions, nil
}

// RestoreVersion copies the snapshot back onto the live model. The pipeline
// is not rerun; the restored artifact and file paths are served as-is.
func (vs *versionService) RestoreVersion(ctx context.Context, modelID uuid.UUID, versionID uuid.UUID) (*types.FinancialModel, error) {
  var model *types.FinancialModel
  err := vs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    var err error
    model, err = vs.modelRepo.GetByID(ctx, tx, modelID)
    if err != nil {
      return fmt.Errorf("load model: %w", err)
    }
    if model == nil {
      return ErrNotFound
    }

    version, err := vs.versionRepo.GetByID(ctx, tx, versionID)
    if err != nil {
      return fmt.Errorf("load version: %w", err)
    }
    if version == nil || version.ModelID != modelID {
      return ErrNotFound
    }

    now := time.Now()
    updates := map[string]any{
      "business_idea":      version.BusinessIdea,
      "sector":             version.Sector,
      "startup_cost":       version.StartupCost,
      "monthly_revenue":    version.MonthlyRevenue,
      "gross_margin":       version.GrossMargin,
      "operating_expenses": version.OperatingExpenses,
      "custom_assumptions": version.CustomAssumptions,
      "artifact":           version.Artifact,
      "spreadsheet_path":   version.SpreadsheetPath,
      "document_path":      version.DocumentPath,
      "updated_at":         now,
    }
    // Status follows the restored snapshot: completed only when the snapshot
    // actually carries results, so completed never coexists with a nil
    // artifact or missing files.
    if len(version.Artifact) > 0 {
      updates["status"] = types.ModelStatusCompleted
      if model.CompletedAt == nil {
        updates["completed_at"] = now
      }
    } else {
      updates["status"] = types.ModelStatusPending
      updates["completed_at"] = nil
    }
    if err := vs.modelRepo.UpdateFields(ctx, tx, modelID, updates); err != nil {
      return fmt.Errorf("restore model: %w", err)
    }

    model, err = vs.modelRepo.GetByID(ctx, tx, modelID)
    if err != nil {
      return fmt.Errorf("reload model: %w", err)
    }
    return nil
  })
  if err != nil {
    return nil, err
  }
  return model, nil
}
