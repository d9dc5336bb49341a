package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
)

const (
  ModelStatusPending    = "pending"
  ModelStatusProcessing = "processing"
  ModelStatusCompleted  = "completed"
  ModelStatusFailed     = "failed"
)

type FinancialModel struct {
  ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  BusinessIdea      string         `gorm:"column:business_idea;type:text;not null" json:"business_idea"`
  Sector            *string        `gorm:"column:sector;index" json:"sector,omitempty"`
  StartupCost       float64        `gorm:"column:startup_cost;not null" json:"startup_cost"`
  MonthlyRevenue    float64        `gorm:"column:monthly_revenue;not null" json:"monthly_revenue"`
  GrossMargin       float64        `gorm:"column:gross_margin;not null" json:"gross_margin"`
  OperatingExpenses float64        `gorm:"column:operating_expenses;not null" json:"operating_expenses"`
  CustomAssumptions datatypes.JSON `gorm:"column:custom_assumptions;type:jsonb" json:"custom_assumptions,omitempty"`
  Artifact          datatypes.JSON `gorm:"column:artifact;type:jsonb" json:"artifact,omitempty"`
  SpreadsheetPath   *string        `gorm:"column:spreadsheet_path" json:"spreadsheet_path,omitempty"`
  DocumentPath      *string        `gorm:"column:document_path" json:"document_path,omitempty"`
  Status            string         `gorm:"column:status;not null;index" json:"status"` // pending|processing|completed|failed
  CompletedAt       *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
  CreatedAt         time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
  UpdatedAt         time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
  DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (FinancialModel) TableName() string { return "financial_model" }
