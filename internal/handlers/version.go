package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/services"
)

type VersionHandler struct {
  log            *logger.Logger
  versionService services.VersionService
}

func NewVersionHandler(log *logger.Logger, versionService services.VersionService) *VersionHandler {
  return &VersionHandler{
    log:            log.With("handler", "VersionHandler"),
    versionService: versionService,
  }
}

type createVersionRequest struct {
  ChangeDescription *string `json:"change_description"`
}

func (h *VersionHandler) Create(c *gin.Context) {
  id, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  var req createVersionRequest
  if c.Request.ContentLength > 0 {
    if err := c.ShouldBindJSON(&req); err != nil {
      RespondError(c, http.StatusBadRequest, "invalid_input", err)
      return
    }
  }
  version, err := h.versionService.CreateVersion(c.Request.Context(), id, req.ChangeDescription)
  if err != nil {
    h.log.Error("Create version failed", "error", err, "model_id", id)
    RespondServiceError(c, "create_version_failed", err)
    return
  }
  RespondOK(c, gin.H{"version": version})
}

func (h *VersionHandler) List(c *gin.Context) {
  id, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  versions, err := h.versionService.ListVersions(c.Request.Context(), id)
  if err != nil {
    RespondServiceError(c, "load_versions_failed", err)
    return
  }
  RespondOK(c, gin.H{"versions": versions})
}

func (h *VersionHandler) Restore(c *gin.Context) {
  id, ok := parseIDParam(c, "id")
  if !ok {
    return
  }
  versionID, ok := parseIDParam(c, "versionId")
  if !ok {
    return
  }
  model, err := h.versionService.RestoreVersion(c.Request.Context(), id, versionID)
  if err != nil {
    h.log.Error("Restore version failed", "error", err, "model_id", id, "version_id", versionID)
    RespondServiceError(c, "restore_version_failed", err)
    return
  }
  RespondOK(c, gin.H{"model": model})
}
