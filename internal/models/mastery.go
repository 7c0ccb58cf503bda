package models

import "time"

// ScoreInsufficient is the sentinel for a tier (or display score) that lacks
// enough Test-sourced evidence to report a real value.
const ScoreInsufficient float64 = -1

// MasteryRecord is the rolled-up state of one (student, detail type) pair.
// Records are recomputed in full whenever any transaction affecting the pair
// changes, never patched field by field. CorrectAnswers is internal and is
// excluded from every public output shape.
type MasteryRecord struct {
	ID             uint      `json:"-" gorm:"primaryKey"`
	StudentID      string    `json:"student_id" gorm:"not null;size:100;uniqueIndex:idx_mastery_pair,priority:1"`
	DetailType     string    `json:"detail_type" gorm:"not null;size:100;uniqueIndex:idx_mastery_pair,priority:2"`
	ScoreHigh      float64   `json:"score_high"`
	ScoreMid       float64   `json:"score_mid"`
	ScoreLow       float64   `json:"score_low"`
	TotalAttempts  int       `json:"total_attempts"`
	CorrectAnswers int       `json:"-"`
	Accuracy       float64   `json:"accuracy"`
	LastUpdated    time.Time `json:"last_updated"`
	DisplayScore   float64   `json:"display_score"`
}

// MasteryKey identifies one ledger entry.
type MasteryKey struct {
	StudentID  string
	DetailType string
}

func (m MasteryRecord) Key() MasteryKey {
	return MasteryKey{StudentID: m.StudentID, DetailType: m.DetailType}
}
