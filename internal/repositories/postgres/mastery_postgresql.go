package postgres

import (
	"context"
	"fmt"

	"github.com/kwoncho1001/Jomath/internal/models"
	"github.com/kwoncho1001/Jomath/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MasteryPostgreSQL struct {
	db *gorm.DB
}

func NewMasteryPostgreSQL(db *gorm.DB) repositories.MasteryRepository {
	return &MasteryPostgreSQL{db: db}
}

// UpsertBatch writes recomputed ledger records. The aggregator rebuilds pairs
// wholesale, so an existing (student, detail type) row is fully overwritten.
func (m *MasteryPostgreSQL) UpsertBatch(ctx context.Context, records []models.MasteryRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := m.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "detail_type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"score_high", "score_mid", "score_low",
				"total_attempts", "correct_answers", "accuracy",
				"last_updated", "display_score",
			}),
		}).
		CreateInBatches(records, 500).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %d mastery records: %w", len(records), err)
	}
	return nil
}

func (m *MasteryPostgreSQL) GetAll(ctx context.Context) ([]models.MasteryRecord, error) {
	var records []models.MasteryRecord
	err := m.db.WithContext(ctx).
		Order("student_id ASC, detail_type ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load mastery ledger: %w", err)
	}
	return records, nil
}

func (m *MasteryPostgreSQL) GetByStudent(ctx context.Context, studentID string) ([]models.MasteryRecord, error) {
	var records []models.MasteryRecord
	err := m.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("detail_type ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load mastery records for student %q: %w", studentID, err)
	}
	return records, nil
}
