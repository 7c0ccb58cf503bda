package postgres

import (
	"context"
	"fmt"

	"github.com/kwoncho1001/Jomath/internal/models"
	"github.com/kwoncho1001/Jomath/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

// ReplaceAll swaps the entire catalog in one transaction. An upload always
// carries the complete question bank.
func (q *QuestionPostgreSQL) ReplaceAll(ctx context.Context, questions []models.Question) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to clear question catalog: %w", err)
		}
		if len(questions) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(questions, 500).Error; err != nil {
			return fmt.Errorf("failed to insert question catalog: %w", err)
		}
		return nil
	})
}

func (q *QuestionPostgreSQL) GetAll(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	err := q.db.WithContext(ctx).
		Order("source_id ASC, number ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load question catalog: %w", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) GetBySourceID(ctx context.Context, sourceID string) ([]models.Question, error) {
	var questions []models.Question
	err := q.db.WithContext(ctx).
		Where("source_id = ?", sourceID).
		Order("number ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for source %q: %w", sourceID, err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := q.db.WithContext(ctx).Model(&models.Question{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}
