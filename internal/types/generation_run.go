package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
)

const (
  RunStatusQueued    = "queued"
  RunStatusRunning   = "running"
  RunStatusSucceeded = "succeeded"
  RunStatusFailed    = "failed"

  RunTriggerSubmit     = "submit"
  RunTriggerRegenerate = "regenerate"
)

type GenerationRun struct {
  ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  ModelID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"model_id"`
  Trigger     string         `gorm:"column:trigger;not null" json:"trigger"` // submit|regenerate
  Status      string         `gorm:"column:status;not null;index" json:"status"` // queued|running|succeeded|failed
  Stage       string         `gorm:"column:stage;not null;index" json:"stage"`   // analyzing|modeling|validating|rendering|done
  Progress    int            `gorm:"column:progress;not null;default:0" json:"progress"`
  Attempts    int            `gorm:"column:attempts;not null;default:0" json:"attempts"`
  Error       string         `gorm:"column:error" json:"error"`
  LastErrorAt *time.Time     `gorm:"column:last_error_at" json:"last_error_at,omitempty"`
  LockedAt    *time.Time     `gorm:"column:locked_at;index" json:"locked_at,omitempty"`
  HeartbeatAt *time.Time     `gorm:"column:heartbeat_at;index" json:"heartbeat_at,omitempty"`
  Metadata    datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
  CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
  UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
  DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (GenerationRun) TableName() string { return "generation_run" }
