package repos

import (
  "context"
  "database/sql"
  "errors"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/types"
)

type ModelVersionRepo interface {
  // CreateNext allocates the version number as max(version_number)+1 and
  // inserts the snapshot inside one serializable transaction, so concurrent
  // calls on the same model cannot produce duplicate numbers.
  CreateNext(ctx context.Context, tx *gorm.DB, version *types.ModelVersion) (*types.ModelVersion, error)
  GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ModelVersion, error)
  GetByModelID(ctx context.Context, tx *gorm.DB, modelID uuid.UUID) ([]*types.ModelVersion, error)
}

type modelVersionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewModelVersionRepo(db *gorm.DB, baseLog *logger.Logger) ModelVersionRepo {
  return &modelVersionRepo{db: db, log: baseLog.With("repo", "ModelVersionRepo")}
}

func (r *modelVersionRepo) CreateNext(ctx context.Context, tx *gorm.DB, version *types.ModelVersion) (*types.ModelVersion, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if version == nil {
    return nil, errors.New("version required")
  }

  err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
    var maxNumber sql.NullInt64
    if err := txx.Model(&types.ModelVersion{}).
      Where("model_id = ?", version.ModelID).
      Select("MAX(version_number)").
      Scan(&maxNumber).Error; err != nil {
      return err
    }
    version.VersionNumber = int(maxNumber.Int64) + 1
    return txx.Create(version).Error
  }, &sql.TxOptions{Isolation: sql.LevelSerializable})

  if err != nil {
    return nil, err
  }
  return version, nil
}

func (r *modelVersionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ModelVersion, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  if id == uuid.Nil {
    return nil, nil
  }
  var version types.ModelVersion
  err := transaction.WithContext(ctx).Where("id = ?", id).First(&version).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &version, nil
}

func (r *modelVersionRepo) GetByModelID(ctx context.Context, tx *gorm.DB, modelID uuid.UUID) ([]*types.ModelVersion, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }
  var results []*types.ModelVersion
  if modelID == uuid.Nil {
    return results, nil
  }
  if err := transaction.WithContext(ctx).
    Where("model_id = ?", modelID).
    Order("version_number ASC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
