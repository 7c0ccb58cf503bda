package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnalysisSettings is a persisted, named snapshot of the analysis tunables.
// SelectedUnits holds the chosen topic-path prefixes as a JSON array; the
// pipeline itself only ever sees the value-typed analysis.Config built from
// one of these.
type AnalysisSettings struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Name          string         `json:"name" gorm:"not null;size:100;uniqueIndex" validate:"required,min=1,max=100"`
	MinTestCount  int            `json:"min_test_count" gorm:"not null;default:1" validate:"min=0"`
	RecentCount   int            `json:"recent_count" gorm:"not null;default:5" validate:"min=1"`
	WeightHigh    float64        `json:"weight_high" gorm:"not null;default:1.2" validate:"gt=0"`
	WeightMid     float64        `json:"weight_mid" gorm:"not null;default:1.0" validate:"gt=0"`
	WeightLow     float64        `json:"weight_low" gorm:"not null;default:0.8" validate:"gt=0"`
	RatioHigh     float64        `json:"ratio_high" gorm:"not null;default:1" validate:"gte=0"`
	RatioMid      float64        `json:"ratio_mid" gorm:"not null;default:1" validate:"gte=0"`
	RatioLow      float64        `json:"ratio_low" gorm:"not null;default:1" validate:"gte=0"`
	SelectedUnits datatypes.JSON `json:"selected_units" gorm:"type:jsonb"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
