package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kwoncho1001/Jomath/internal/services"
	"github.com/kwoncho1001/Jomath/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	analysisService services.AnalysisService
	reportService   services.ReportService
}

func NewReportHandler(
	analysisService services.AnalysisService,
	reportService services.ReportService,
	logger utils.Logger,
) *ReportHandler {
	return &ReportHandler{
		BaseHandler:     NewBaseHandler(logger),
		analysisService: analysisService,
		reportService:   reportService,
	}
}

// GetExamReport returns the computed report for one exam
// @Summary Get exam report
// @Description Returns ranked results, per-question stats and the summary for one exam
// @Tags reports
// @Produce json
// @Param exam_id path string true "Exam ID"
// @Success 200 {object} SuccessResponse{data=models.ExamReport}
// @Failure 404 {object} ErrorResponse
// @Router /reports/exams/{exam_id} [get]
func (h *ReportHandler) GetExamReport(c *gin.Context) {
	examID := ParseStringIDParam(c, "exam_id")
	if examID == "" {
		return
	}

	h.LogRequest(c, "Fetching exam report", "exam_id", examID)

	report, err := h.analysisService.GetExamReport(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Exam report retrieved",
		Data:    report,
	})
}

// GetClassificationTree returns the catalog's topic taxonomy
// @Summary Get classification tree
// @Tags reports
// @Produce json
// @Success 200 {object} SuccessResponse{data=models.ClassificationTree}
// @Router /classification/tree [get]
func (h *ReportHandler) GetClassificationTree(c *gin.Context) {
	h.LogRequest(c, "Fetching classification tree")

	tree, err := h.analysisService.GetClassificationTree(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Classification tree retrieved",
		Data:    tree,
	})
}

// GetUnitRollup returns mastery aggregated up the topic tree
// @Summary Get unit roll-up
// @Tags reports
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.UnitRollup}
// @Router /reports/rollup [get]
func (h *ReportHandler) GetUnitRollup(c *gin.Context) {
	h.LogRequest(c, "Fetching unit roll-up")

	rollup, err := h.analysisService.GetUnitRollup(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Unit roll-up retrieved",
		Data:    rollup,
	})
}

// GenerateStudentSummary produces a consultation text for one student
// @Summary Generate AI consultation summary
// @Description Builds a Korean consultation summary from the student's ledger and log
// @Tags reports
// @Produce json
// @Param student_id path string true "Student name or ID"
// @Success 200 {object} SuccessResponse{data=services.StudentSummary}
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /reports/students/{student_id}/summary [post]
func (h *ReportHandler) GenerateStudentSummary(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Generating student summary", "student_id", studentID)

	summary, err := h.reportService.GenerateStudentSummary(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Summary generated",
		Data:    summary,
	})
}
