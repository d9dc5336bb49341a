package services

import (
  "context"
  "fmt"
  "io"

  "github.com/google/uuid"

  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/repos"
  "github.com/yungbote/venturecast-backend/internal/types"
)

// ModelDownloadKind selects which rendered file to resolve.
type ModelDownloadKind string

const (
  DownloadSpreadsheet ModelDownloadKind = "spreadsheet"
  DownloadDocument    ModelDownloadKind = "document"
)

type ModelService interface {
  GetByID(ctx context.Context, id uuid.UUID) (*types.FinancialModel, error)
  GetAll(ctx context.Context) ([]*types.FinancialModel, error)
  GetLatestRun(ctx context.Context, modelID uuid.UUID) (*types.GenerationRun, error)
  OpenDownload(ctx context.Context, id uuid.UUID, kind ModelDownloadKind) (io.ReadCloser, string, error)
}

type modelService struct {
  log       *logger.Logger
  modelRepo repos.FinancialModelRepo
  runRepo   repos.GenerationRunRepo
  store     FileStore
}

func NewModelService(baseLog *logger.Logger, modelRepo repos.FinancialModelRepo, runRepo repos.GenerationRunRepo, store FileStore) ModelService {
  return &modelService{
    log:       baseLog.With("service", "ModelService"),
    modelRepo: modelRepo,
    runRepo:   runRepo,
    store:     store,
  }
}

func (ms *modelService) GetByID(ctx context.Context, id uuid.UUID) (*types.FinancialModel, error) {
  model, err := ms.modelRepo.GetByID(ctx, nil, id)
  if err != nil {
    return nil, fmt.Errorf("load model: %w", err)
  }
  if model == nil {
    return nil, ErrNotFound
  }
  return model, nil
}

func (ms *modelService) GetAll(ctx context.Context) ([]*types.FinancialModel, error) {
  models, err := ms.modelRepo.GetAll(ctx, nil)
  if err != nil {
    return nil, fmt.Errorf("load models: %w", err)
  }
  return models, nil
}

func (ms *modelService) GetLatestRun(ctx context.Context, modelID uuid.UUID) (*types.GenerationRun, error) {
  model, err := ms.modelRepo.GetByID(ctx, nil, modelID)
  if err != nil {
    return nil, fmt.Errorf("load model: %w", err)
  }
  if model == nil {
    return nil, ErrNotFound
  }
  run, err := ms.runRepo.GetLatestByModelID(ctx, nil, modelID)
  if err != nil {
    return nil, fmt.Errorf("load latest run: %w", err)
  }
  if run == nil {
    return nil, ErrNotFound
  }
  return run, nil
}

// OpenDownload hands back the file stream plus a suggested filename. A model
// that is not completed, has no recorded path, or whose file vanished from
// the store is reported the same way as a missing model.
func (ms *modelService) OpenDownload(ctx context.Context, id uuid.UUID, kind ModelDownloadKind) (io.ReadCloser, string, error) {
  model, err := ms.GetByID(ctx, id)
  if err != nil {
    return nil, "", err
  }
  if model.Status != types.ModelStatusCompleted {
    return nil, "", ErrFileMissing
  }

  var path *string
  var filename string
  switch kind {
  case DownloadSpreadsheet:
    path = model.SpreadsheetPath
    filename = "financial-model.xlsx"
  case DownloadDocument:
    path = model.DocumentPath
    filename = "business-report.docx"
  default:
    return nil, "", fmt.Errorf("unknown download kind %q", kind)
  }
  if path == nil || *path == "" {
    return nil, "", ErrFileMissing
  }

  ok, err := ms.store.Exists(ctx, *path)
  if err != nil {
    return nil, "", fmt.Errorf("check file %s: %w", *path, err)
  }
  if !ok {
    ms.log.Warn("recorded file missing from store", "model_id", id, "path", *path)
    return nil, "", ErrFileMissing
  }

  rc, err := ms.store.Open(ctx, *path)
  if err != nil {
    return nil, "", err
  }
  return rc, filename, nil
}
