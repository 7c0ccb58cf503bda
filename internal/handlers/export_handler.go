package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kwoncho1001/Jomath/internal/repositories"
	"github.com/kwoncho1001/Jomath/internal/services"
	"github.com/kwoncho1001/Jomath/internal/utils"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ExportHandler struct {
	BaseHandler
	analysisService services.AnalysisService
	exportService   services.ImportExportService
}

func NewExportHandler(
	analysisService services.AnalysisService,
	exportService services.ImportExportService,
	logger utils.Logger,
) *ExportHandler {
	return &ExportHandler{
		BaseHandler:     NewBaseHandler(logger),
		analysisService: analysisService,
		exportService:   exportService,
	}
}

// ExportTransactions downloads the transaction log as CSV or Excel
// @Summary Export transaction log
// @Tags exports
// @Produce text/csv
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /exports/transactions [get]
func (h *ExportHandler) ExportTransactions(c *gin.Context) {
	format, ok := h.parseFormat(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting transaction log", "format", format)

	txns, err := h.analysisService.GetTransactionLog(c.Request.Context(), "", repositories.TransactionFilters{})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	var data []byte
	if format == "xlsx" {
		data, err = h.exportService.ExportTransactionsToExcel(c.Request.Context(), txns)
	} else {
		data, err = h.exportService.ExportTransactionsToCSV(c.Request.Context(), txns)
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendFile(c, "transactions", format, data)
}

// ExportMasteryLedger downloads the mastery ledger as CSV or Excel
// @Summary Export mastery ledger
// @Tags exports
// @Produce text/csv
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /exports/mastery [get]
func (h *ExportHandler) ExportMasteryLedger(c *gin.Context) {
	format, ok := h.parseFormat(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting mastery ledger", "format", format)

	records, err := h.analysisService.GetMasteryLedger(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	var data []byte
	if format == "xlsx" {
		data, err = h.exportService.ExportLedgerToExcel(c.Request.Context(), records)
	} else {
		data, err = h.exportService.ExportLedgerToCSV(c.Request.Context(), records)
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendFile(c, "mastery_ledger", format, data)
}

// ExportExamReport downloads one exam's report workbook
// @Summary Export exam report
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param exam_id path string true "Exam ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /exports/exams/{exam_id} [get]
func (h *ExportHandler) ExportExamReport(c *gin.Context) {
	examID := ParseStringIDParam(c, "exam_id")
	if examID == "" {
		return
	}

	h.LogRequest(c, "Exporting exam report", "exam_id", examID)

	report, err := h.analysisService.GetExamReport(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	data, err := h.exportService.ExportExamReportToExcel(c.Request.Context(), report)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendFile(c, "exam_report_"+examID, "xlsx", data)
}

func (h *ExportHandler) parseFormat(c *gin.Context) (string, bool) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid format",
			Details: "format must be csv or xlsx",
		})
		return "", false
	}
	return format, true
}

func (h *ExportHandler) sendFile(c *gin.Context, baseName, format string, data []byte) {
	filename := fmt.Sprintf("%s_%s.%s", baseName, time.Now().Format("20060102"), format)
	contentType := contentTypeCSV
	if format == "xlsx" {
		contentType = contentTypeXLSX
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}
