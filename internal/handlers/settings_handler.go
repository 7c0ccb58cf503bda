package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kwoncho1001/Jomath/internal/services"
	"github.com/kwoncho1001/Jomath/internal/utils"
)

type SettingsHandler struct {
	BaseHandler
	settingsService services.SettingsService
	validator       *utils.Validator
}

func NewSettingsHandler(
	settingsService services.SettingsService,
	validator *utils.Validator,
	logger utils.Logger,
) *SettingsHandler {
	return &SettingsHandler{
		BaseHandler:     NewBaseHandler(logger),
		settingsService: settingsService,
		validator:       validator,
	}
}

// CreateSettings saves a new tunables snapshot
// @Summary Create settings snapshot
// @Tags settings
// @Accept json
// @Produce json
// @Param request body services.SaveSettingsRequest true "Snapshot data"
// @Success 201 {object} SuccessResponse{data=models.AnalysisSettings}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /settings [post]
func (h *SettingsHandler) CreateSettings(c *gin.Context) {
	var req services.SaveSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating settings snapshot", "name", req.Name)

	settings, err := h.settingsService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Settings created",
		Data:    settings,
	})
}

// ListSettings returns every saved snapshot
// @Summary List settings snapshots
// @Tags settings
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.AnalysisSettings}
// @Router /settings [get]
func (h *SettingsHandler) ListSettings(c *gin.Context) {
	h.LogRequest(c, "Listing settings snapshots")

	settings, err := h.settingsService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Settings retrieved",
		Data:    settings,
	})
}

// GetSettings returns one snapshot by ID
// @Summary Get settings snapshot
// @Tags settings
// @Produce json
// @Param id path uint true "Settings ID"
// @Success 200 {object} SuccessResponse{data=models.AnalysisSettings}
// @Failure 404 {object} ErrorResponse
// @Router /settings/{id} [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	id := ParseUintIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Fetching settings snapshot", "settings_id", id)

	settings, err := h.settingsService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Settings retrieved",
		Data:    settings,
	})
}

// GetSettingsByName returns one snapshot by its unique name
// @Summary Get settings snapshot by name
// @Tags settings
// @Produce json
// @Param name path string true "Snapshot name"
// @Success 200 {object} SuccessResponse{data=models.AnalysisSettings}
// @Failure 404 {object} ErrorResponse
// @Router /settings/by-name/{name} [get]
func (h *SettingsHandler) GetSettingsByName(c *gin.Context) {
	name := ParseStringIDParam(c, "name")
	if name == "" {
		return
	}

	h.LogRequest(c, "Fetching settings snapshot by name", "name", name)

	settings, err := h.settingsService.GetByName(c.Request.Context(), name)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Settings retrieved",
		Data:    settings,
	})
}

// UpdateSettings overwrites one snapshot
// @Summary Update settings snapshot
// @Tags settings
// @Accept json
// @Produce json
// @Param id path uint true "Settings ID"
// @Param request body services.SaveSettingsRequest true "Snapshot data"
// @Success 200 {object} SuccessResponse{data=models.AnalysisSettings}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /settings/{id} [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	id := ParseUintIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SaveSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating settings snapshot", "settings_id", id)

	settings, err := h.settingsService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Settings updated",
		Data:    settings,
	})
}

// DeleteSettings removes one snapshot
// @Summary Delete settings snapshot
// @Tags settings
// @Produce json
// @Param id path uint true "Settings ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /settings/{id} [delete]
func (h *SettingsHandler) DeleteSettings(c *gin.Context) {
	id := ParseUintIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting settings snapshot", "settings_id", id)

	if err := h.settingsService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Settings deleted",
	})
}
