package models

import "time"

// SourceKind distinguishes exam-sourced attempts from textbook practice.
type SourceKind string

const (
	SourceTest SourceKind = "Test"
	SourceBook SourceKind = "Book"
)

// Outcome is the result of one attempt, stored in the transaction log's
// export shape ("O" correct, "X" incorrect).
type Outcome string

const (
	OutcomeCorrect Outcome = "O"
	OutcomeWrong   Outcome = "X"
)

// Transaction is the atomic fact: one scored attempt at one question by one
// student at one point in time. Transactions are immutable once created and
// only ever appended to the log.
type Transaction struct {
	ID          uint       `json:"-" gorm:"primaryKey"`
	Date        time.Time  `json:"date" gorm:"not null;uniqueIndex:idx_txn_identity,priority:1"`
	StudentID   string     `json:"student_id" gorm:"not null;size:100;uniqueIndex:idx_txn_identity,priority:2"`
	ExamKey     string     `json:"exam_key" gorm:"not null;size:200;uniqueIndex:idx_txn_identity,priority:3"`
	QuestionNum int        `json:"question_num" gorm:"not null;uniqueIndex:idx_txn_identity,priority:4"`
	Result      Outcome    `json:"result" gorm:"size:1;not null"`
	Type        SourceKind `json:"type" gorm:"size:10;not null"`
	Weight      float64    `json:"weight" gorm:"not null"`
	Score       float64    `json:"score" gorm:"not null"`
}

// TransactionKey uniquely identifies a transaction. Used as a map key for
// idempotent ingestion; a struct rather than a joined string so that key
// fields containing separator characters can never collide.
type TransactionKey struct {
	UnixMillis  int64
	StudentID   string
	ExamKey     string
	QuestionNum int
}

func (t Transaction) Key() TransactionKey {
	return TransactionKey{
		UnixMillis:  t.Date.UnixMilli(),
		StudentID:   t.StudentID,
		ExamKey:     t.ExamKey,
		QuestionNum: t.QuestionNum,
	}
}
