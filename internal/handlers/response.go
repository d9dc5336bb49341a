package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/yungbote/venturecast-backend/internal/services"
)

type APIError struct {
  Message string `json:"message"`
  Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps the service sentinels onto HTTP statuses so every
// handler reports them the same way.
func RespondServiceError(c *gin.Context, code string, err error) {
  switch {
  case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrFileMissing):
    RespondError(c, http.StatusNotFound, "not_found", err)
  case errors.Is(err, services.ErrRunInFlight):
    RespondError(c, http.StatusConflict, "run_in_flight", err)
  case errors.Is(err, services.ErrInvalidInput):
    RespondError(c, http.StatusBadRequest, "invalid_input", err)
  default:
    RespondError(c, http.StatusInternalServerError, code, err)
  }
}
