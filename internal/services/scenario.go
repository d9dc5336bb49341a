package services

import (
  "context"
  "fmt"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/repos"
  "github.com/yungbote/venturecast-backend/internal/types"
)

// ScenarioInput carries create or update fields. Nil fields are left alone
// on update; on create they simply stay unset.
type ScenarioInput struct {
  Name              *string        `json:"name"`
  Description       *string        `json:"description"`
  StartupCost       *float64       `json:"startup_cost"`
  MonthlyRevenue    *float64       `json:"monthly_revenue"`
  GrossMargin       *float64       `json:"gross_margin"`
  OperatingExpenses *float64       `json:"operating_expenses"`
  CustomAssumptions map[string]any `json:"custom_assumptions"`
}

type ScenarioService interface {
  Create(ctx context.Context, modelID uuid.UUID, input ScenarioInput) (*types.Scenario, error)
  List(ctx context.Context, modelID uuid.UUID) ([]*types.Scenario, error)
  Update(ctx context.Context, scenarioID uuid.UUID, input ScenarioInput) (*types.Scenario, error)
  Delete(ctx context.Context, scenarioID uuid.UUID) error
}

type scenarioService struct {
  log          *logger.Logger
  modelRepo    repos.FinancialModelRepo
  scenarioRepo repos.ScenarioRepo
}

func NewScenarioService(baseLog *logger.Logger, modelRepo repos.FinancialModelRepo, scenarioRepo repos.ScenarioRepo) ScenarioService {
  return &scenarioService{
    log:          baseLog.With("service", "ScenarioService"),
    modelRepo:    modelRepo,
    scenarioRepo: scenarioRepo,
  }
}

func validateScenarioInput(input ScenarioInput) error {
  if input.GrossMargin != nil && (*input.GrossMargin < 0 || *input.GrossMargin > 100) {
    return fmt.Errorf("%w: gross_margin must be between 0 and 100", ErrInvalidInput)
  }
  if input.StartupCost != nil && *input.StartupCost < 0 {
    return fmt.Errorf("%w: startup_cost must be non-negative", ErrInvalidInput)
  }
  if input.MonthlyRevenue != nil && *input.MonthlyRevenue < 0 {
    return fmt.Errorf("%w: monthly_revenue must be non-negative", ErrInvalidInput)
  }
  if input.OperatingExpenses != nil && *input.OperatingExpenses < 0 {
    return fmt.Errorf("%w: operating_expenses must be non-negative", ErrInvalidInput)
  }
  return nil
}

func (ss *scenarioService) requireModel(ctx context.Context, modelID uuid.UUID) error {
  model, err := ss.modelRepo.GetByID(ctx, nil, modelID)
  if err != nil {
    return fmt.Errorf("load model: %w", err)
  }
  if model == nil {
    return ErrNotFound
  }
  return nil
}

func (ss *scenarioService) Create(ctx context.Context, modelID uuid.UUID, input ScenarioInput) (*types.Scenario, error) {
  if err := ss.requireModel(ctx, modelID); err != nil {
    return nil, err
  }
  if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
    return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
  }
  if err := validateScenarioInput(input); err != nil {
    return nil, err
  }

  now := time.Now()
  scenario := &types.Scenario{
    ID:                uuid.New(),
    ModelID:           modelID,
    Name:              strings.TrimSpace(*input.Name),
    Description:       input.Description,
    StartupCost:       input.StartupCost,
    MonthlyRevenue:    input.MonthlyRevenue,
    GrossMargin:       input.GrossMargin,
    OperatingExpenses: input.OperatingExpenses,
    CreatedAt:         now,
    UpdatedAt:         now,
  }
  if input.CustomAssumptions != nil {
    scenario.CustomAssumptions = datatypes.JSON(mustJSON(input.CustomAssumptions))
  }
  if _, err := ss.scenarioRepo.Create(ctx, nil, []*types.Scenario{scenario}); err != nil {
    return nil, fmt.Errorf("create scenario: %w", err)
  }
  return scenario, nil
}

func (ss *scenarioService) List(ctx context.Context, modelID uuid.UUID) ([]*types.Scenario, error) {
  if err := ss.requireModel(ctx, modelID); err != nil {
    return nil, err
  }
  scenarios, err := ss.scenarioRepo.GetByModelID(ctx, nil, modelID)
  if err != nil {
    return nil, fmt.Errorf("load scenarios: %w", err)
  }
  return scenarios, nil
}

func (ss *scenarioService) Update(ctx context.Context, scenarioID uuid.UUID, input ScenarioInput) (*types.Scenario, error) {
  scenario, err := ss.scenarioRepo.GetByID(ctx, nil, scenarioID)
  if err != nil {
    return nil, fmt.Errorf("load scenario: %w", err)
  }
  if scenario == nil {
    return nil, ErrNotFound
  }
  if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
    return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
  }
  if err := validateScenarioInput(input); err != nil {
    return nil, err
  }

  now := time.Now()
  updates := map[string]any{"updated_at": now}
  if input.Name != nil {
    scenario.Name = strings.TrimSpace(*input.Name)
    updates["name"] = scenario.Name
  }
  if input.Description != nil {
    scenario.Description = input.Description
    updates["description"] = input.Description
  }
  if input.StartupCost != nil {
    scenario.StartupCost = input.StartupCost
    updates["startup_cost"] = input.StartupCost
  }
  if input.MonthlyRevenue != nil {
    scenario.MonthlyRevenue = input.MonthlyRevenue
    updates["monthly_revenue"] = input.MonthlyRevenue
  }
  if input.GrossMargin != nil {
    scenario.GrossMargin = input.GrossMargin
    updates["gross_margin"] = input.GrossMargin
  }
  if input.OperatingExpenses != nil {
    scenario.OperatingExpenses = input.OperatingExpenses
    updates["operating_expenses"] = input.OperatingExpenses
  }
  if input.CustomAssumptions != nil {
    scenario.CustomAssumptions = datatypes.JSON(mustJSON(input.CustomAssumptions))
    updates["custom_assumptions"] = scenario.CustomAssumptions
  }
  scenario.UpdatedAt = now

  if err := ss.scenarioRepo.UpdateFields(ctx, nil, scenarioID, updates); err != nil {
    return nil, fmt.Errorf("update scenario: %w", err)
  }
  return scenario, nil
}

func (ss *scenarioService) Delete(ctx context.Context, scenarioID uuid.UUID) error {
  scenario, err := ss.scenarioRepo.GetByID(ctx, nil, scenarioID)
  if err != nil {
    return fmt.Errorf("load scenario: %w", err)
  }
  if scenario == nil {
    return ErrNotFound
  }
  if err := ss.scenarioRepo.Delete(ctx, nil, scenarioID); err != nil {
    return fmt.Errorf("delete scenario: %w", err)
  }
  return nil
}
