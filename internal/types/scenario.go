package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
)

// Scenario is a named alternative assumption set for a model. It has no
// lifecycle of its own and is never fed back into generation.
type Scenario struct {
  ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
  ModelID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"model_id"`
  Name              string         `gorm:"column:name;not null" json:"name"`
  Description       *string        `gorm:"column:description;type:text" json:"description,omitempty"`
  StartupCost       *float64       `gorm:"column:startup_cost" json:"startup_cost,omitempty"`
  MonthlyRevenue    *float64       `gorm:"column:monthly_revenue" json:"monthly_revenue,omitempty"`
  GrossMargin       *float64       `gorm:"column:gross_margin" json:"gross_margin,omitempty"`
  OperatingExpenses *float64       `gorm:"column:operating_expenses" json:"operating_expenses,omitempty"`
  CustomAssumptions datatypes.JSON `gorm:"column:custom_assumptions;type:jsonb" json:"custom_assumptions,omitempty"`
  CreatedAt         time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
  UpdatedAt         time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
  DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Scenario) TableName() string { return "scenario" }
