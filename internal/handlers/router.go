package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kwoncho1001/Jomath/internal/services"
	"github.com/kwoncho1001/Jomath/internal/sheetsync"
	"github.com/kwoncho1001/Jomath/internal/utils"
)

type HandlerManager struct {
	analysisHandler *AnalysisHandler
	reportHandler   *ReportHandler
	settingsHandler *SettingsHandler
	exportHandler   *ExportHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	sheetClient *sheetsync.Client,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		analysisHandler: NewAnalysisHandler(
			serviceManager.Analysis(),
			serviceManager.Settings(),
			serviceManager.ImportExport(),
			sheetClient,
			validator,
			logger,
		),
		reportHandler:   NewReportHandler(serviceManager.Analysis(), serviceManager.Report(), logger),
		settingsHandler: NewSettingsHandler(serviceManager.Settings(), validator, logger),
		exportHandler:   NewExportHandler(serviceManager.Analysis(), serviceManager.ImportExport(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "jomath-analyzer",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Catalog routes
		catalog := v1.Group("/catalog")
		{
			catalog.POST("", hm.analysisHandler.UploadCatalog)
		}
		v1.GET("/classification/tree", hm.reportHandler.GetClassificationTree)

		// Analysis routes
		analysis := v1.Group("/analysis")
		{
			analysis.POST("/run", hm.analysisHandler.RunAnalysis)
			analysis.POST("/upload", hm.analysisHandler.RunAnalysisFromUpload)
			analysis.POST("/sync", hm.analysisHandler.RunAnalysisFromSheet)
		}

		// Log and ledger queries
		v1.GET("/transactions", hm.analysisHandler.GetTransactionLog)
		v1.GET("/mastery", hm.analysisHandler.GetMasteryLedger)
		v1.GET("/mastery/:student_id", hm.analysisHandler.GetStudentMastery)

		// Report routes
		reports := v1.Group("/reports")
		{
			reports.GET("/exams/:exam_id", hm.reportHandler.GetExamReport)
			reports.GET("/rollup", hm.reportHandler.GetUnitRollup)
			reports.POST("/students/:student_id/summary", hm.reportHandler.GenerateStudentSummary)
		}

		// Export routes
		exports := v1.Group("/exports")
		{
			exports.GET("/transactions", hm.exportHandler.ExportTransactions)
			exports.GET("/mastery", hm.exportHandler.ExportMasteryLedger)
			exports.GET("/exams/:exam_id", hm.exportHandler.ExportExamReport)
		}

		// Settings routes
		settings := v1.Group("/settings")
		{
			settings.POST("", hm.settingsHandler.CreateSettings)
			settings.GET("", hm.settingsHandler.ListSettings)
			settings.GET("/by-name/:name", hm.settingsHandler.GetSettingsByName)
			settings.GET("/:id", hm.settingsHandler.GetSettings)
			settings.PUT("/:id", hm.settingsHandler.UpdateSettings)
			settings.DELETE("/:id", hm.settingsHandler.DeleteSettings)
		}
	}
}

// NewRouter builds a gin engine with the standard middleware chain applied.
func NewRouter(hm *HandlerManager, logger utils.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))

	hm.SetupRoutes(router)
	return router
}
