package models

// Difficulty is the tier of a catalog question. The catalog sheets carry the
// Korean tier labels, which stay the canonical stored values so exported
// workbooks round-trip unchanged.
type Difficulty string

const (
	DifficultyHigh Difficulty = "상"
	DifficultyMid  Difficulty = "중"
	DifficultyLow  Difficulty = "하"
)

// ParseDifficulty maps a raw tier label to a Difficulty. Both the Korean
// labels and english aliases are accepted; ok is false for anything else.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch s {
	case "상", "high", "High":
		return DifficultyHigh, true
	case "중", "mid", "Mid", "medium", "Medium":
		return DifficultyMid, true
	case "하", "low", "Low":
		return DifficultyLow, true
	}
	return "", false
}

// TopicPath is the 4-level classification of a question.
type TopicPath struct {
	Subject    string `json:"subject"`
	MajorUnit  string `json:"major_unit"`
	MinorUnit  string `json:"minor_unit"`
	DetailType string `json:"detail_type"`
}

const (
	// Fallback unit names for catalog rows with blank classification cells.
	UnclassifiedMajorUnit = "미분류"
	DefaultMinorUnit      = "일반"
)

// String returns the full "subject|major|minor|detail" path used for
// scope prefix matching.
func (p TopicPath) String() string {
	return p.Subject + "|" + p.MajorUnit + "|" + p.MinorUnit + "|" + p.DetailType
}

// UnitPath returns the 3-level "subject|major|minor" path, the granularity at
// which exam scoring filters questions.
func (p TopicPath) UnitPath() string {
	return p.Subject + "|" + p.MajorUnit + "|" + p.MinorUnit
}

// Question is one immutable catalog item. SourceID is either an exam ID or a
// textbook name depending on which kind of responses reference it.
type Question struct {
	ID          uint       `json:"-" gorm:"primaryKey"`
	SourceID    string     `json:"source_id" gorm:"not null;size:100;index" validate:"required"`
	Number      int        `json:"number" gorm:"not null" validate:"required,min=1"`
	Answer      int        `json:"answer" gorm:"not null" validate:"required"`
	Difficulty  Difficulty `json:"difficulty" gorm:"size:10"`
	CorrectRate float64    `json:"correct_rate"`
	Subject     string     `json:"subject" gorm:"not null;size:100;index" validate:"required"`
	MajorUnit   string     `json:"major_unit" gorm:"size:100"`
	MinorUnit   string     `json:"minor_unit" gorm:"size:100"`
	DetailType  string     `json:"detail_type" gorm:"size:100;index"`
}

// Topic returns the question's classification path with the blank-cell
// fallbacks applied.
func (q Question) Topic() TopicPath {
	major := q.MajorUnit
	if major == "" {
		major = UnclassifiedMajorUnit
	}
	minor := q.MinorUnit
	if minor == "" {
		minor = DefaultMinorUnit
	}
	return TopicPath{
		Subject:    q.Subject,
		MajorUnit:  major,
		MinorUnit:  minor,
		DetailType: q.DetailType,
	}
}
