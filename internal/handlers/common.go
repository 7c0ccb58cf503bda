package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kwoncho1001/Jomath/internal/services"
	"github.com/kwoncho1001/Jomath/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"request_id", c.GetHeader("X-Request-ID"),
		"timestamp", time.Now().Format(time.RFC3339),
	}
	fields = append(fields, additionalFields...)

	h.logger.Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	h.logger.LogError(err, message, fields...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	h.logger.Warn(message, fields...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.JSON(statusCode, errorResp)
}

// handleServiceError maps service-layer errors onto HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, err.Error(), nil)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, err.Error(), nil)
	case services.IsBadInput(err):
		h.RespondWithError(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, services.ErrAISummaryUnavailable):
		h.RespondWithError(c, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
