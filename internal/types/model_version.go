package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// ModelVersion is an immutable snapshot of a FinancialModel's inputs and
// results at a point in time. Rows are only ever inserted.
type ModelVersion struct {
  ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  ModelID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_model_version_number,unique" json:"model_id"`
  VersionNumber     int            `gorm:"column:version_number;not null;index:idx_model_version_number,unique" json:"version_number"`
  BusinessIdea      string         `gorm:"column:business_idea;type:text;not null" json:"business_idea"`
  Sector            *string        `gorm:"column:sector" json:"sector,omitempty"`
  StartupCost       float64        `gorm:"column:startup_cost;not null" json:"startup_cost"`
  MonthlyRevenue    float64        `gorm:"column:monthly_revenue;not null" json:"monthly_revenue"`
  GrossMargin       float64        `gorm:"column:gross_margin;not null" json:"gross_margin"`
  OperatingExpenses float64        `gorm:"column:operating_expenses;not null" json:"operating_expenses"`
  CustomAssumptions datatypes.JSON `gorm:"column:custom_assumptions;type:jsonb" json:"custom_assumptions,omitempty"`
  Artifact          datatypes.JSON `gorm:"column:artifact;type:jsonb" json:"artifact,omitempty"`
  SpreadsheetPath   *string        `gorm:"column:spreadsheet_path" json:"spreadsheet_path,omitempty"`
  DocumentPath      *string        `gorm:"column:document_path" json:"document_path,omitempty"`
  ChangeDescription *string        `gorm:"column:change_description;type:text" json:"change_description,omitempty"`
  CreatedAt         time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (ModelVersion) TableName() string { return "model_version" }
