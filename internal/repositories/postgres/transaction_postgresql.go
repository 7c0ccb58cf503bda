package postgres

import (
	"context"
	"fmt"

	"github.com/kwoncho1001/Jomath/internal/models"
	"github.com/kwoncho1001/Jomath/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionPostgreSQL struct {
	db *gorm.DB
}

func NewTransactionPostgreSQL(db *gorm.DB) repositories.TransactionRepository {
	return &TransactionPostgreSQL{db: db}
}

// AppendBatch inserts new transactions. Conflicts on the identity index are
// ignored so a replayed batch is a no-op, matching the pipeline's dedup.
func (t *TransactionPostgreSQL) AppendBatch(ctx context.Context, txns []models.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	err := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(txns, 500).Error
	if err != nil {
		return fmt.Errorf("failed to append %d transactions: %w", len(txns), err)
	}
	return nil
}

func (t *TransactionPostgreSQL) GetAll(ctx context.Context) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := t.db.WithContext(ctx).
		Order("date ASC, student_id ASC, exam_key ASC, question_num ASC").
		Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction log: %w", err)
	}
	return txns, nil
}

func (t *TransactionPostgreSQL) GetByStudent(ctx context.Context, studentID string, filters repositories.TransactionFilters) ([]models.Transaction, error) {
	query := t.db.WithContext(ctx).Where("student_id = ?", studentID)

	if filters.ExamKey != "" {
		query = query.Where("exam_key = ?", filters.ExamKey)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.DateFrom != nil {
		query = query.Where("date >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("date <= ?", *filters.DateTo)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var txns []models.Transaction
	if err := query.Order("date ASC, exam_key ASC, question_num ASC").Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to load transactions for student %q: %w", studentID, err)
	}
	return txns, nil
}

func (t *TransactionPostgreSQL) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := t.db.WithContext(ctx).Model(&models.Transaction{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
