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

type FinancialModelRepo interface {
  Create(ctx context.Context, tx *gorm.DB, models []*types.FinancialModel) ([]*types.FinancialModel, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FinancialModel, error)
  GetAll(ctx context.Context, tx *gorm.DB) ([]*types.FinancialModel, error)
  UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type financialModelRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewFinancialModelRepo(db *gorm.DB, baseLog *logger.Logger) FinancialModelRepo {
  return &financialModelRepo{db: db, log: baseLog.With("repo", "FinancialModelRepo")}
}

func (r *financialModelRepo) Create(ctx context.Context, tx *gorm.DB, models []*types.FinancialModel) ([]*types.FinancialModel, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if len(models) == 0 {
    return []*types.FinancialModel{}, nil
  }
  if err := transaction.WithContext(ctx).Create(&models).Error; err != nil {
    return nil, err
  }
  return models, nil
}

func (r *financialModelRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FinancialModel, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var model types.FinancialModel
  err := transaction.WithContext(ctx).Where("id = ?", id).First(&model).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &model, nil
}

func (r *financialModelRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.FinancialModel, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.FinancialModel
  if err := transaction.WithContext(ctx).
    Order("created_at ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *financialModelRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
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
    Model(&types.FinancialModel{}).
    Where("id = ?", id).
    Updates(updates).Error
}
