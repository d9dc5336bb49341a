package repos

import (
  "context"
  "errors"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/types"
)

type ScenarioRepo interface {
  Create(ctx context.Context, tx *gorm.DB, scenarios []*types.Scenario) ([]*types.Scenario, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Scenario, error)
  GetByModelID(ctx context.Context, tx *gorm.DB, modelID uuid.UUID) ([]*types.Scenario, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
  Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type scenarioRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewScenarioRepo(db *gorm.DB, baseLog *logger.Logger) ScenarioRepo {
  return &scenarioRepo{db: db, log: baseLog.With("repo", "ScenarioRepo")}
}

func (r *scenarioRepo) Create(ctx context.Context, tx *gorm.DB, scenarios []*types.Scenario) ([]*types.Scenario, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(scenarios) == 0 {
    return []*types.Scenario{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&scenarios).Error; err != nil {
    return nil, err
  }
  return scenarios, nil
}

func (r *scenarioRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Scenario, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var scenario types.Scenario
  err := transaction.WithContext(ctx).Where("id = ?", id).First(&scenario).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &scenario, nil
}

func (r *scenarioRepo) GetByModelID(ctx context.Context, tx *gorm.DB, modelID uuid.UUID) ([]*types.Scenario, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.Scenario
  if modelID == uuid.Nil {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("model_id = ?", modelID).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *scenarioRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil
  }
  if updates == nil {
    updates = map[string]interface{}{}
  }
  if _, ok := updates["updated_at"]; !ok {
    updates["updated_at"] = time.Now()
  }
  return transaction.WithContext(ctx).
    Model(&types.Scenario{}).
    Where("id = ?", id).
    Updates(updates).Error
}

func (r *scenarioRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil
  }
  return transaction.WithContext(ctx).
    Where("id = ?", id).
    Delete(&types.Scenario{}).Error
}
