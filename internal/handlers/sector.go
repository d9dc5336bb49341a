package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/yungbote/venturecast-backend/internal/logger"
  "github.com/yungbote/venturecast-backend/internal/services"
  "github.com/yungbote/venturecast-backend/internal/types"
)

type SectorHandler struct {
  log     *logger.Logger
  catalog services.SectorCatalog
}

func NewSectorHandler(log *logger.Logger, catalog services.SectorCatalog) *SectorHandler {
  return &SectorHandler{
    log:     log.With("handler", "SectorHandler"),
    catalog: catalog,
  }
}

func (h *SectorHandler) List(c *gin.Context) {
  RespondOK(c, gin.H{"sectors": h.catalog.List()})
}

func (h *SectorHandler) Create(c *gin.Context) {
  var benchmark types.SectorBenchmark
  if err := c.ShouldBindJSON(&benchmark); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_input", err)
    return
  }
  created, err := h.catalog.AddCustom(benchmark)
  if err != nil {
    RespondServiceError(c, "create_sector_failed", err)
    return
  }
  RespondOK(c, gin.H{"sector": created})
}
