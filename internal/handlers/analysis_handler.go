package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kwoncho1001/Jomath/internal/analysis"
	"github.com/kwoncho1001/Jomath/internal/models"
	"github.com/kwoncho1001/Jomath/internal/repositories"
	"github.com/kwoncho1001/Jomath/internal/services"
	"github.com/kwoncho1001/Jomath/internal/sheetsync"
	"github.com/kwoncho1001/Jomath/internal/utils"
)

type AnalysisHandler struct {
	BaseHandler
	analysisService services.AnalysisService
	settingsService services.SettingsService
	importService   services.ImportExportService
	sheetClient     *sheetsync.Client
	validator       *utils.Validator
}

// RunAnalysisRequest is the JSON form of one run: raw rows plus either an
// inline config or the name of a saved settings snapshot.
type RunAnalysisRequest struct {
	TestRows     []models.RawRow  `json:"test_rows"`
	BookRows     []models.RawRow  `json:"book_rows"`
	Config       *analysis.Config `json:"config"`
	SettingsName string           `json:"settings_name"`
}

func NewAnalysisHandler(
	analysisService services.AnalysisService,
	settingsService services.SettingsService,
	importService services.ImportExportService,
	sheetClient *sheetsync.Client,
	validator *utils.Validator,
	logger utils.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		BaseHandler:     NewBaseHandler(logger),
		analysisService: analysisService,
		settingsService: settingsService,
		importService:   importService,
		sheetClient:     sheetClient,
		validator:       validator,
	}
}

// UploadCatalog replaces the question catalog from an uploaded sheet
// @Summary Upload question catalog
// @Description Parses a catalog sheet (CSV or Excel) and replaces the stored catalog
// @Tags catalog
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Catalog sheet"
// @Success 200 {object} SuccessResponse{data=services.CatalogImportResult}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /catalog [post]
func (h *AnalysisHandler) UploadCatalog(c *gin.Context) {
	h.LogRequest(c, "Uploading question catalog")

	file, filename, ok := openFormFile(c, "file")
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.importService.ParseCatalogFile(c.Request.Context(), file, filename)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if len(result.Questions) > 0 {
		if _, err := h.analysisService.ReplaceCatalog(c.Request.Context(), result.Questions); err != nil {
			h.handleServiceError(c, err)
			return
		}
	}

	status := http.StatusOK
	if result.ErrorCount > 0 && result.SuccessCount == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, SuccessResponse{
		Message: "Catalog processed",
		Data:    result,
	})
}

// RunAnalysis executes the scoring pipeline over inline rows
// @Summary Run analysis
// @Description Scores the submitted response rows and rebuilds the mastery ledger
// @Tags analysis
// @Accept json
// @Produce json
// @Param request body RunAnalysisRequest true "Rows and tunables"
// @Success 200 {object} services.RunAnalysisResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analysis/run [post]
func (h *AnalysisHandler) RunAnalysis(c *gin.Context) {
	var req RunAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Running analysis",
		"test_rows", len(req.TestRows),
		"book_rows", len(req.BookRows),
		"settings_name", req.SettingsName)

	cfg, ok := h.resolveConfig(c, req.Config, req.SettingsName)
	if !ok {
		return
	}

	result, err := h.analysisService.RunAnalysis(c.Request.Context(), &services.RunAnalysisRequest{
		TestRows: req.TestRows,
		BookRows: req.BookRows,
		Config:   cfg,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RunAnalysisFromUpload executes the pipeline over uploaded sheet files
// @Summary Run analysis from files
// @Description Parses uploaded response sheets (test_file required, book_file optional) and runs the pipeline
// @Tags analysis
// @Accept multipart/form-data
// @Produce json
// @Param test_file formData file true "Exam response sheet"
// @Param book_file formData file false "Textbook response sheet"
// @Param settings_name formData string false "Saved settings snapshot name"
// @Success 200 {object} services.RunAnalysisResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analysis/upload [post]
func (h *AnalysisHandler) RunAnalysisFromUpload(c *gin.Context) {
	h.LogRequest(c, "Running analysis from uploaded files")

	testFile, testName, ok := openFormFile(c, "test_file")
	if !ok {
		return
	}
	defer testFile.Close()

	testRows, err := h.importService.ParseResponseFile(c.Request.Context(), testFile, testName)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	var bookRows []models.RawRow
	if bookHeader, err := c.FormFile("book_file"); err == nil {
		bookFile, err := bookHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Could not read uploaded file",
				Details: err.Error(),
			})
			return
		}
		defer bookFile.Close()

		bookRows, err = h.importService.ParseResponseFile(c.Request.Context(), bookFile, bookHeader.Filename)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
	}

	cfg, ok := h.resolveConfig(c, nil, c.PostForm("settings_name"))
	if !ok {
		return
	}

	result, err := h.analysisService.RunAnalysis(c.Request.Context(), &services.RunAnalysisRequest{
		TestRows: testRows,
		BookRows: bookRows,
		Config:   cfg,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RunAnalysisFromSheet pulls rows from the synced sheet endpoint and runs the pipeline
// @Summary Run analysis from synced sheet
// @Description Fetches the shared response sheet and runs the pipeline over its rows
// @Tags analysis
// @Produce json
// @Param settings_name query string false "Saved settings snapshot name"
// @Success 200 {object} services.RunAnalysisResult
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /analysis/sync [post]
func (h *AnalysisHandler) RunAnalysisFromSheet(c *gin.Context) {
	h.LogRequest(c, "Running analysis from synced sheet")

	if h.sheetClient == nil {
		h.RespondWithError(c, http.StatusServiceUnavailable, "Sheet sync is not configured", nil)
		return
	}

	rows, err := h.sheetClient.FetchRows(c.Request.Context())
	if err != nil {
		h.RespondWithError(c, http.StatusBadGateway, "Sheet fetch failed", err)
		return
	}

	cfg, ok := h.resolveConfig(c, nil, c.Query("settings_name"))
	if !ok {
		return
	}

	result, err := h.analysisService.RunAnalysis(c.Request.Context(), &services.RunAnalysisRequest{
		TestRows: rows,
		Config:   cfg,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransactionLog returns scored attempts, optionally filtered by student
// @Summary Query transaction log
// @Tags analysis
// @Produce json
// @Param student_id query string false "Student name or ID"
// @Param exam_key query string false "Composite exam key"
// @Param type query string false "Test or Book"
// @Param from query string false "Inclusive lower date bound (RFC 3339)"
// @Param to query string false "Inclusive upper date bound (RFC 3339)"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} SuccessResponse{data=[]models.Transaction}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /transactions [get]
func (h *AnalysisHandler) GetTransactionLog(c *gin.Context) {
	studentID := c.Query("student_id")
	h.LogRequest(c, "Querying transaction log", "student_id", studentID)

	filters, ok := h.parseTransactionFilters(c)
	if !ok {
		return
	}

	txns, err := h.analysisService.GetTransactionLog(c.Request.Context(), studentID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Transaction log retrieved",
		Data:    txns,
	})
}

// GetMasteryLedger returns the full mastery ledger
// @Summary Get mastery ledger
// @Tags analysis
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.MasteryRecord}
// @Router /mastery [get]
func (h *AnalysisHandler) GetMasteryLedger(c *gin.Context) {
	h.LogRequest(c, "Fetching mastery ledger")

	records, err := h.analysisService.GetMasteryLedger(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Mastery ledger retrieved",
		Data:    records,
	})
}

// GetStudentMastery returns one student's ledger rows
// @Summary Get student mastery
// @Tags analysis
// @Produce json
// @Param student_id path string true "Student name or ID"
// @Success 200 {object} SuccessResponse{data=[]models.MasteryRecord}
// @Failure 404 {object} ErrorResponse
// @Router /mastery/{student_id} [get]
func (h *AnalysisHandler) GetStudentMastery(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Fetching student mastery", "student_id", studentID)

	records, err := h.analysisService.GetStudentMastery(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Student mastery retrieved",
		Data:    records,
	})
}

// resolveConfig picks the effective pipeline config: an inline config wins,
// then a named snapshot, then the defaults.
func (h *AnalysisHandler) resolveConfig(c *gin.Context, inline *analysis.Config, settingsName string) (analysis.Config, bool) {
	if inline != nil {
		return *inline, true
	}

	cfg, err := h.settingsService.ResolveConfig(c.Request.Context(), settingsName)
	if err != nil {
		h.handleServiceError(c, err)
		return analysis.Config{}, false
	}
	return cfg, true
}

func (h *AnalysisHandler) parseTransactionFilters(c *gin.Context) (repositories.TransactionFilters, bool) {
	filters := repositories.TransactionFilters{
		ExamKey: c.Query("exam_key"),
	}

	if typeStr := c.Query("type"); typeStr != "" {
		kind := models.SourceKind(typeStr)
		if kind != models.SourceTest && kind != models.SourceBook {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid type filter",
				Details: "type must be Test or Book",
			})
			return filters, false
		}
		filters.Type = &kind
	}

	for _, bound := range []struct {
		param  string
		target **time.Time
	}{
		{"from", &filters.DateFrom},
		{"to", &filters.DateTo},
	} {
		if raw := c.Query(bound.param); raw != "" {
			ts, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Message: "Invalid " + bound.param + " filter",
					Details: "expected an RFC 3339 timestamp",
				})
				return filters, false
			}
			*bound.target = &ts
		}
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid limit",
				Details: "limit must be a non-negative integer",
			})
			return filters, false
		}
		filters.Limit = limit
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid offset",
				Details: "offset must be a non-negative integer",
			})
			return filters, false
		}
		filters.Offset = offset
	}

	return filters, true
}
