package handlers

import (
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/services"
)

const (
  mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
  mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

type ModelHandler struct {
  log               *logger.Logger
  modelService      services.ModelService
  generationService services.ModelGenerationService
}

func NewModelHandler(log *logger.Logger, modelService services.ModelService, generationService services.ModelGenerationService) *ModelHandler {
  return &ModelHandler{
    log:               log.With("handler", "ModelHandler"),
    modelService:      modelService,
    generationService: generationService,
  }
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
  id, err := uuid.Parse(c.Param(name))
  if err != nil {
    RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("invalid %s", name))
    return uuid.Nil, false
  }
  return id, true
}

// Generate accepts the business description and kicks off the pipeline. The
// response returns as soon as the model and its queued run are recorded.
func (h *ModelHandler) Generate(c *gin.Context) {
  var input services.SubmitModelInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_input", err)
    return
  }
  model, _, err := h.generationService.Submit(c.Request.Context(), input)
  if err != nil {
    h.log.Error("Generate failed", "error", err)
    RespondServiceError(c, "generate_failed", err)
    return
  }
  RespondOK(c, gin.H{"id": model.ID, "status": "processing"})
}

func (h *ModelHandler) List(c *gin.Context) {
  models, err := h.modelService.GetAll(c.Request.Context())
  if err != nil {
    h.log.Error("List failed", "error", err)
    RespondServiceError(c, "load_models_failed", err)
    return
  }
  RespondOK(c, gin.H{"models": models})
}

func (h *ModelHandler) Get(c *gin.Context) {
  id, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  model, err := h.modelService.GetByID(c.Request.Context(), id)
  if err != nil {
    RespondServiceError(c, "load_model_failed", err)
    return
  }
  RespondOK(c, gin.H{"model": model})
}

func (h *ModelHandler) Regenerate(c *gin.Context) {
  id, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var input services.RegenerateInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_input", err)
    return
  }
  model, _, err := h.generationService.Regenerate(c.Request.Context(), id, input)
  if err != nil {
    h.log.Error("Regenerate failed", "error", err, "model_id", id)
    RespondServiceError(c, "regenerate_failed", err)
    return
  }
  RespondOK(c, gin.H{"model": model})
}

func (h *ModelHandler) LatestRun(c *gin.Context) {
  id, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  run, err := h.modelService.GetLatestRun(c.Request.Context(), id)
  if err != nil {
    RespondServiceError(c, "load_run_failed", err)
    return
  }
  RespondOK(c, gin.H{"run": run})
}

func (h *ModelHandler) DownloadSpreadsheet(c *gin.Context) {
  h.download(c, services.DownloadSpreadsheet, mimeXLSX)
}

func (h *ModelHandler) DownloadDocument(c *gin.Context) {
  h.download(c, services.DownloadDocument, mimeDOCX)
}

func (h *ModelHandler) download(c *gin.Context, kind services.ModelDownloadKind, mime string) {
  id, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  rc, filename, err := h.modelService.OpenDownload(c.Request.Context(), id, kind)
  if err != nil {
    RespondServiceError(c, "download_failed", err)
    return
  }
  defer rc.Close()

  headers := map[string]string{
    "Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
  }
  c.DataFromReader(http.StatusOK, -1, mime, rc, headers)
}
