package services

import (
	"log/slog"

	"github.com/kwoncho1001/Jomath/internal/cache"
	"github.com/kwoncho1001/Jomath/internal/events"
	"github.com/kwoncho1001/Jomath/internal/repositories"
	"github.com/kwoncho1001/Jomath/internal/utils"
)

// ServiceManager provides access to all services
type ServiceManager interface {
	Analysis() AnalysisService
	Settings() SettingsService
	ImportExport() ImportExportService
	Report() ReportService
}

type serviceManager struct {
	analysis     AnalysisService
	settings     SettingsService
	importExport ImportExportService
	report       ReportService
}

// NewServiceManager wires every service against shared infrastructure. The
// chat client may be nil; summary generation then reports itself unavailable.
func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	chatClient ChatCompleter,
	chatModel string,
	logger *slog.Logger,
	validator *utils.Validator,
) ServiceManager {
	return &serviceManager{
		analysis:     NewAnalysisService(repo, cacheService, publisher, logger, validator),
		settings:     NewSettingsService(repo, logger, validator),
		importExport: NewImportExportService(logger),
		report:       NewReportService(repo, chatClient, publisher, logger, chatModel),
	}
}

func (m *serviceManager) Analysis() AnalysisService         { return m.analysis }
func (m *serviceManager) Settings() SettingsService         { return m.settings }
func (m *serviceManager) ImportExport() ImportExportService { return m.importExport }
func (m *serviceManager) Report() ReportService             { return m.report }
