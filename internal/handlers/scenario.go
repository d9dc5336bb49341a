package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/services"
)

type ScenarioHandler struct {
  log             *logger.Logger
  scenarioService services.ScenarioService
}

func NewScenarioHandler(log *logger.Logger, scenarioService services.ScenarioService) *ScenarioHandler {
  return &ScenarioHandler{
    log:             log.With("handler", "ScenarioHandler"),
    scenarioService: scenarioService,
  }
}

func (h *ScenarioHandler) Create(c *gin.Context) {
  id, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var input services.ScenarioInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_input", err)
    return
  }
  scenario, err := h.scenarioService.Create(c.Request.Context(), id, input)
  if err != nil {
    h.log.Error("Create scenario failed", "error", err, "model_id", id)
    RespondServiceError(c, "create_scenario_failed", err)
    return
  }
  RespondOK(c, gin.H{"scenario": scenario})
}

func (h *ScenarioHandler) List(c *gin.Context) {
  id, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  scenarios, err := h.scenarioService.List(c.Request.Context(), id)
  if err != nil {
    RespondServiceError(c, "load_scenarios_failed", err)
    return
  }
  RespondOK(c, gin.H{"scenarios": scenarios})
}

func (h *ScenarioHandler) Update(c *gin.Context) {
  scenarioID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var input services.ScenarioInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_input", err)
    return
  }
  scenario, err := h.scenarioService.Update(c.Request.Context(), scenarioID, input)
  if err != nil {
    h.log.Error("Update scenario failed", "error", err, "scenario_id", scenarioID)
    RespondServiceError(c, "update_scenario_failed", err)
    return
  }
  RespondOK(c, gin.H{"scenario": scenario})
}

func (h *ScenarioHandler) Delete(c *gin.Context) {
  scenarioID, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  if err := h.scenarioService.Delete(c.Request.Context(), scenarioID); err != nil {
    h.log.Error("Delete scenario failed", "error", err, "scenario_id", scenarioID)
    RespondServiceError(c, "delete_scenario_failed", err)
    return
  }
  RespondOK(c, gin.H{"success": true})
}
