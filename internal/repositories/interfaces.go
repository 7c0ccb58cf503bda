package repositories

import (
	"context"
	"time"

	"github.com/kwoncho1001/Jomath/internal/models"
)

// Repository aggregates every store the services consume.
type Repository interface {
	Question() QuestionRepository
	Transaction() TransactionRepository
	Mastery() MasteryRepository
	Settings() SettingsRepository
}

// QuestionRepository persists the question catalog. The catalog is reference
// data replaced wholesale on each upload, never patched row by row.
type QuestionRepository interface {
	ReplaceAll(ctx context.Context, questions []models.Question) error
	GetAll(ctx context.Context) ([]models.Question, error)
	GetBySourceID(ctx context.Context, sourceID string) ([]models.Question, error)
	Count(ctx context.Context) (int64, error)
}

// TransactionRepository persists the append-only transaction log.
type TransactionRepository interface {
	AppendBatch(ctx context.Context, txns []models.Transaction) error
	GetAll(ctx context.Context) ([]models.Transaction, error)
	GetByStudent(ctx context.Context, studentID string, filters TransactionFilters) ([]models.Transaction, error)
	Count(ctx context.Context) (int64, error)
}

// MasteryRepository persists the mastery ledger. Records are upserted by
// (student, detail type) since the aggregator recomputes pairs wholesale.
type MasteryRepository interface {
	UpsertBatch(ctx context.Context, records []models.MasteryRecord) error
	GetAll(ctx context.Context) ([]models.MasteryRecord, error)
	GetByStudent(ctx context.Context, studentID string) ([]models.MasteryRecord, error)
}

// SettingsRepository persists named analysis settings snapshots.
type SettingsRepository interface {
	Create(ctx context.Context, settings *models.AnalysisSettings) error
	GetByID(ctx context.Context, id uint) (*models.AnalysisSettings, error)
	GetByName(ctx context.Context, name string) (*models.AnalysisSettings, error)
	List(ctx context.Context) ([]models.AnalysisSettings, error)
	Update(ctx context.Context, settings *models.AnalysisSettings) error
	Delete(ctx context.Context, id uint) error
}

// ===== SHARED FILTER STRUCTS =====

type TransactionFilters struct {
	ExamKey  string             `json:"exam_key"`
	Type     *models.SourceKind `json:"type"`
	DateFrom *time.Time         `json:"date_from"`
	DateTo   *time.Time         `json:"date_to"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}
