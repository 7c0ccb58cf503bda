package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/kwoncho1001/Jomath/internal/analysis"
	"github.com/kwoncho1001/Jomath/internal/models"
	"github.com/kwoncho1001/Jomath/internal/repositories"
	"github.com/kwoncho1001/Jomath/internal/utils"
)

// SettingsService manages named snapshots of the analysis tunables.
type SettingsService interface {
	Create(ctx context.Context, req *SaveSettingsRequest) (*models.AnalysisSettings, error)
	Get(ctx context.Context, id uint) (*models.AnalysisSettings, error)
	GetByName(ctx context.Context, name string) (*models.AnalysisSettings, error)
	List(ctx context.Context) ([]models.AnalysisSettings, error)
	Update(ctx context.Context, id uint, req *SaveSettingsRequest) (*models.AnalysisSettings, error)
	Delete(ctx context.Context, id uint) error

	// ResolveConfig turns a stored snapshot into the pipeline's value config.
	ResolveConfig(ctx context.Context, name string) (analysis.Config, error)
}

// SaveSettingsRequest mirrors the tunables of one snapshot.
type SaveSettingsRequest struct {
	Name          string   `json:"name" validate:"required,min=1,max=100"`
	MinTestCount  int      `json:"min_test_count" validate:"min=0"`
	RecentCount   int      `json:"recent_count" validate:"min=1"`
	WeightHigh    float64  `json:"weight_high" validate:"gt=0"`
	WeightMid     float64  `json:"weight_mid" validate:"gt=0"`
	WeightLow     float64  `json:"weight_low" validate:"gt=0"`
	RatioHigh     float64  `json:"ratio_high" validate:"gte=0"`
	RatioMid      float64  `json:"ratio_mid" validate:"gte=0"`
	RatioLow      float64  `json:"ratio_low" validate:"gte=0"`
	SelectedUnits []string `json:"selected_units" validate:"dive,topic_prefix"`
}

type settingsService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
}

func NewSettingsService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator) SettingsService {
	return &settingsService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *settingsService) Create(ctx context.Context, req *SaveSettingsRequest) (*models.AnalysisSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if _, err := s.repo.Settings().GetByName(ctx, req.Name); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrSettingsNameTaken, req.Name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check settings name: %w", err)
	}

	settings, err := req.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Settings().Create(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Info("Analysis settings created", "name", settings.Name, "id", settings.ID)
	return settings, nil
}

func (s *settingsService) Get(ctx context.Context, id uint) (*models.AnalysisSettings, error) {
	settings, err := s.repo.Settings().GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings %d: %w", id, err)
	}
	return settings, nil
}

func (s *settingsService) GetByName(ctx context.Context, name string) (*models.AnalysisSettings, error) {
	settings, err := s.repo.Settings().GetByName(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrSettingsNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings %q: %w", name, err)
	}
	return settings, nil
}

func (s *settingsService) List(ctx context.Context) ([]models.AnalysisSettings, error) {
	return s.repo.Settings().List(ctx)
}

func (s *settingsService) Update(ctx context.Context, id uint, req *SaveSettingsRequest) (*models.AnalysisSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := req.toModel()
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.repo.Settings().Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *settingsService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Settings().Delete(ctx, id)
}

func (s *settingsService) ResolveConfig(ctx context.Context, name string) (analysis.Config, error) {
	if name == "" {
		return analysis.DefaultConfig(), nil
	}

	settings, err := s.GetByName(ctx, name)
	if err != nil {
		return analysis.Config{}, err
	}
	return SettingsToConfig(settings)
}

// SettingsToConfig converts a persisted snapshot into the pipeline config.
func SettingsToConfig(settings *models.AnalysisSettings) (analysis.Config, error) {
	var selected []string
	if len(settings.SelectedUnits) > 0 {
		if err := json.Unmarshal(settings.SelectedUnits, &selected); err != nil {
			return analysis.Config{}, fmt.Errorf("malformed selected_units for settings %q: %w", settings.Name, err)
		}
	}

	return analysis.Config{
		MinTestCount:    settings.MinTestCount,
		RecentCount:     settings.RecentCount,
		Weights:         analysis.Tier{High: settings.WeightHigh, Mid: settings.WeightMid, Low: settings.WeightLow},
		DifficultyRatio: analysis.Tier{High: settings.RatioHigh, Mid: settings.RatioMid, Low: settings.RatioLow},
		SelectedUnits:   selected,
	}, nil
}

func (r *SaveSettingsRequest) toModel() (*models.AnalysisSettings, error) {
	selected, err := json.Marshal(r.SelectedUnits)
	if err != nil {
		return nil, fmt.Errorf("failed to encode selected units: %w", err)
	}

	return &models.AnalysisSettings{
		Name:          r.Name,
		MinTestCount:  r.MinTestCount,
		RecentCount:   r.RecentCount,
		WeightHigh:    r.WeightHigh,
		WeightMid:     r.WeightMid,
		WeightLow:     r.WeightLow,
		RatioHigh:     r.RatioHigh,
		RatioMid:      r.RatioMid,
		RatioLow:      r.RatioLow,
		SelectedUnits: selected,
	}, nil
}
