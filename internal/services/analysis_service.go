package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kwoncho1001/Jomath/internal/analysis"
	"github.com/kwoncho1001/Jomath/internal/cache"
	"github.com/kwoncho1001/Jomath/internal/events"
	"github.com/kwoncho1001/Jomath/internal/models"
	"github.com/kwoncho1001/Jomath/internal/repositories"
	"github.com/kwoncho1001/Jomath/internal/utils"
)

const (
	examReportCacheKey    = "report:exam:"
	unitRollupCacheKey    = "report:rollup"
	reportCachePattern    = "report:*"
	examReportCacheTTL    = 24 * time.Hour
	unitRollupCacheTTL    = time.Hour
)

// AnalysisService runs the scoring pipeline over uploaded response rows and
// serves its persisted artifacts.
type AnalysisService interface {
	RunAnalysis(ctx context.Context, req *RunAnalysisRequest) (*RunAnalysisResult, error)

	ReplaceCatalog(ctx context.Context, questions []models.Question) (int, error)
	GetTransactionLog(ctx context.Context, studentID string, filters repositories.TransactionFilters) ([]models.Transaction, error)
	GetMasteryLedger(ctx context.Context) ([]models.MasteryRecord, error)
	GetStudentMastery(ctx context.Context, studentID string) ([]models.MasteryRecord, error)
	GetExamReport(ctx context.Context, examID string) (*models.ExamReport, error)
	GetClassificationTree(ctx context.Context) (models.ClassificationTree, error)
	GetUnitRollup(ctx context.Context) ([]models.UnitRollup, error)
}

// RunAnalysisRequest carries one batch of raw response rows plus the tunables
// for this run. Rows come from an upload or a sheet sync; the catalog and the
// prior log/ledger are loaded from storage.
type RunAnalysisRequest struct {
	TestRows []models.RawRow `json:"test_rows"`
	BookRows []models.RawRow `json:"book_rows"`
	Config   analysis.Config `json:"config"`
}

// RunAnalysisResult summarizes one pipeline run.
type RunAnalysisResult struct {
	RunID           string                 `json:"run_id"`
	NewTransactions int                    `json:"new_transactions"`
	LedgerRecords   int                    `json:"ledger_records"`
	ExamReports     []models.ExamReport    `json:"exam_reports"`
	ExamResults     []models.ExamResult    `json:"exam_results"`
	MasteryLedger   []models.MasteryRecord `json:"mastery_ledger"`
	FailedExams     []string               `json:"failed_exams,omitempty"`
	Duration        time.Duration          `json:"duration"`
}

type analysisService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewAnalysisService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) AnalysisService {
	return &analysisService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *analysisService) RunAnalysis(ctx context.Context, req *RunAnalysisRequest) (*RunAnalysisResult, error) {
	runID := events.GenerateEventID()
	started := time.Now()

	s.logger.Info("Starting analysis run",
		"run_id", runID,
		"test_rows", len(req.TestRows),
		"book_rows", len(req.BookRows),
		"selected_units", len(req.Config.SelectedUnits))

	if err := s.validateConfig(req.Config); err != nil {
		return nil, err
	}

	questions, err := s.repo.Question().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrCatalogEmpty
	}

	priorLog, err := s.repo.Transaction().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load prior transaction log: %w", err)
	}
	priorLedger, err := s.repo.Mastery().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load prior mastery ledger: %w", err)
	}

	result := analysis.Run(analysis.Input{
		Questions:   questions,
		TestRows:    req.TestRows,
		BookRows:    req.BookRows,
		PriorLog:    priorLog,
		PriorLedger: priorLedger,
		Config:      req.Config,
	})

	if err := s.repo.Transaction().AppendBatch(ctx, result.NewTransactions); err != nil {
		return nil, fmt.Errorf("failed to persist new transactions: %w", err)
	}
	if err := s.repo.Mastery().UpsertBatch(ctx, result.MasteryLedger); err != nil {
		return nil, fmt.Errorf("failed to persist mastery ledger: %w", err)
	}

	s.cacheRunArtifacts(ctx, result)
	s.publishRunEvents(ctx, runID, req, result, time.Since(started))

	failed := make([]string, 0, len(result.Failures))
	for _, f := range result.Failures {
		s.logger.Warn("Exam skipped during run", "run_id", runID, "exam_id", f.ExamID, "error", f.Err)
		failed = append(failed, f.ExamID)
	}

	s.logger.Info("Analysis run completed",
		"run_id", runID,
		"new_transactions", len(result.NewTransactions),
		"ledger_records", len(result.MasteryLedger),
		"exam_reports", len(result.ExamReports),
		"duration", time.Since(started).String())

	return &RunAnalysisResult{
		RunID:           runID,
		NewTransactions: len(result.NewTransactions),
		LedgerRecords:   len(result.MasteryLedger),
		ExamReports:     result.ExamReports,
		ExamResults:     result.ExamResults,
		MasteryLedger:   result.MasteryLedger,
		FailedExams:     failed,
		Duration:        time.Since(started),
	}, nil
}

func (s *analysisService) ReplaceCatalog(ctx context.Context, questions []models.Question) (int, error) {
	if len(questions) == 0 {
		return 0, ErrEmptySheet
	}
	for i := range questions {
		if err := s.validator.Struct(&questions[i]); err != nil {
			return 0, fmt.Errorf("%w: catalog row %d: %v", ErrValidationFailed, i+1, err)
		}
	}
	if err := s.repo.Question().ReplaceAll(ctx, questions); err != nil {
		return 0, fmt.Errorf("failed to replace catalog: %w", err)
	}

	// Reports computed against the old catalog are stale now.
	if err := s.cache.DeletePattern(ctx, reportCachePattern); err != nil {
		s.logger.Warn("Failed to invalidate report cache", "error", err)
	}

	s.logger.Info("Catalog replaced", "questions", len(questions))
	return len(questions), nil
}

func (s *analysisService) GetTransactionLog(ctx context.Context, studentID string, filters repositories.TransactionFilters) ([]models.Transaction, error) {
	if studentID == "" {
		return s.repo.Transaction().GetAll(ctx)
	}
	txns, err := s.repo.Transaction().GetByStudent(ctx, analysis.Normalize(studentID), filters)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, ErrStudentNotFound
	}
	return txns, nil
}

func (s *analysisService) GetMasteryLedger(ctx context.Context) ([]models.MasteryRecord, error) {
	return s.repo.Mastery().GetAll(ctx)
}

func (s *analysisService) GetStudentMastery(ctx context.Context, studentID string) ([]models.MasteryRecord, error) {
	records, err := s.repo.Mastery().GetByStudent(ctx, analysis.Normalize(studentID))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrStudentNotFound
	}
	return records, nil
}

// GetExamReport serves a report computed by a previous run. Reports live in
// the cache only; responses are not persisted, so an evicted report requires
// re-running the analysis.
func (s *analysisService) GetExamReport(ctx context.Context, examID string) (*models.ExamReport, error) {
	id := analysis.Normalize(examID)

	var report models.ExamReport
	err := s.cache.Get(ctx, examReportCacheKey+id, &report)
	if err == nil {
		return &report, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Exam report cache read failed", "exam_id", id, "error", err)
	}

	questions, err := s.repo.Question().GetBySourceID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check exam %q: %w", id, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrExamNotFound, id)
	}
	return nil, ErrExamReportMissing
}

func (s *analysisService) GetClassificationTree(ctx context.Context) (models.ClassificationTree, error) {
	questions, err := s.repo.Question().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	rows := make([]models.ClassificationRow, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, models.ClassificationRow{
			Subject:    q.Subject,
			MajorUnit:  q.MajorUnit,
			MinorUnit:  q.MinorUnit,
			DetailType: q.DetailType,
		})
	}
	return analysis.BuildClassificationTree(rows), nil
}

func (s *analysisService) GetUnitRollup(ctx context.Context) ([]models.UnitRollup, error) {
	var cached []models.UnitRollup
	if err := s.cache.Get(ctx, unitRollupCacheKey, &cached); err == nil {
		return cached, nil
	}

	questions, err := s.repo.Question().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	records, err := s.repo.Mastery().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load mastery ledger: %w", err)
	}

	rollup := analysis.RollupUnits(analysis.NewCatalog(questions), records)

	if err := s.cache.Set(ctx, unitRollupCacheKey, rollup, unitRollupCacheTTL); err != nil {
		s.logger.Warn("Failed to cache unit rollup", "error", err)
	}
	return rollup, nil
}

func (s *analysisService) validateConfig(cfg analysis.Config) error {
	if cfg.MinTestCount < 0 {
		return NewValidationError("min_test_count", "must not be negative", cfg.MinTestCount)
	}
	if cfg.RecentCount < 1 {
		return NewValidationError("recent_count", "must be at least 1", cfg.RecentCount)
	}
	for name, w := range map[string]float64{
		"weight_high": cfg.Weights.High,
		"weight_mid":  cfg.Weights.Mid,
		"weight_low":  cfg.Weights.Low,
	} {
		if w <= 0 {
			return NewValidationError(name, "must be positive", w)
		}
	}
	for name, r := range map[string]float64{
		"ratio_high": cfg.DifficultyRatio.High,
		"ratio_mid":  cfg.DifficultyRatio.Mid,
		"ratio_low":  cfg.DifficultyRatio.Low,
	} {
		if r < 0 {
			return NewValidationError(name, "must not be negative", r)
		}
	}
	for _, prefix := range cfg.SelectedUnits {
		if err := s.validator.Var(prefix, "topic_prefix"); err != nil {
			return NewValidationError("selected_units", "malformed topic prefix", prefix)
		}
	}
	return nil
}

func (s *analysisService) cacheRunArtifacts(ctx context.Context, result analysis.Result) {
	for i := range result.ExamReports {
		report := result.ExamReports[i]
		key := examReportCacheKey + report.ExamID
		if err := s.cache.Set(ctx, key, report, examReportCacheTTL); err != nil {
			s.logger.Warn("Failed to cache exam report", "exam_id", report.ExamID, "error", err)
		}
	}
	// Rollup is recomputed lazily on next read.
	if err := s.cache.Delete(ctx, unitRollupCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate rollup cache", "error", err)
	}
}

func (s *analysisService) publishRunEvents(ctx context.Context, runID string, req *RunAnalysisRequest, result analysis.Result, duration time.Duration) {
	failed := make([]string, 0, len(result.Failures))
	for _, f := range result.Failures {
		failed = append(failed, f.ExamID)
	}

	event := events.NewAnalysisEvent(events.EventAnalysisCompleted, events.AnalysisCompletedEvent{
		RunID:           runID,
		NewTransactions: len(result.NewTransactions),
		LedgerRecords:   len(result.MasteryLedger),
		ExamReports:     len(result.ExamReports),
		FailedExams:     failed,
		Duration:        duration,
		SelectedUnits:   req.Config.SelectedUnits,
		CompletedAt:     time.Now().UTC(),
	})
	if err := s.publisher.PublishAnalysisEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish analysis completed event", "run_id", runID, "error", err)
	}

	for _, report := range result.ExamReports {
		reportEvent := events.NewAnalysisEvent(events.EventExamReportGenerated, events.ExamReportGeneratedEvent{
			ExamID:       report.ExamID,
			StudentCount: report.Summary.StudentCount,
			AverageScore: report.Summary.Average,
			MaxScore:     report.Summary.Max,
		})
		if err := s.publisher.PublishAnalysisEvent(ctx, reportEvent); err != nil {
			s.logger.Error("Failed to publish report generated event", "exam_id", report.ExamID, "error", err)
		}
	}
}
