package postgres

import (
	"context"
	"fmt"

	"github.com/kwoncho1001/Jomath/internal/models"
	"github.com/kwoncho1001/Jomath/internal/repositories"
	"gorm.io/gorm"
)

type SettingsPostgreSQL struct {
	db *gorm.DB
}

func NewSettingsPostgreSQL(db *gorm.DB) repositories.SettingsRepository {
	return &SettingsPostgreSQL{db: db}
}

func (s *SettingsPostgreSQL) Create(ctx context.Context, settings *models.AnalysisSettings) error {
	if err := s.db.WithContext(ctx).Create(settings).Error; err != nil {
		return fmt.Errorf("failed to create analysis settings %q: %w", settings.Name, err)
	}
	return nil
}

func (s *SettingsPostgreSQL) GetByID(ctx context.Context, id uint) (*models.AnalysisSettings, error) {
	var settings models.AnalysisSettings
	if err := s.db.WithContext(ctx).First(&settings, id).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *SettingsPostgreSQL) GetByName(ctx context.Context, name string) (*models.AnalysisSettings, error) {
	var settings models.AnalysisSettings
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *SettingsPostgreSQL) List(ctx context.Context) ([]models.AnalysisSettings, error) {
	var settings []models.AnalysisSettings
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to list analysis settings: %w", err)
	}
	return settings, nil
}

func (s *SettingsPostgreSQL) Update(ctx context.Context, settings *models.AnalysisSettings) error {
	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("failed to update analysis settings %d: %w", settings.ID, err)
	}
	return nil
}

func (s *SettingsPostgreSQL) Delete(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&models.AnalysisSettings{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete analysis settings %d: %w", id, err)
	}
	return nil
}
