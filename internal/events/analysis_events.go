package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of analysis events
type EventType string

const (
	// Pipeline events
	EventAnalysisCompleted EventType = "analysis.completed"
	EventAnalysisFailed    EventType = "analysis.failed"

	// Report events
	EventExamReportGenerated EventType = "report.exam_generated"
	EventAISummaryGenerated  EventType = "report.ai_summary_generated"

	// Data events
	EventSheetSynced EventType = "data.sheet_synced"
)

// AnalysisEvent is the base event structure for all analysis events
type AnalysisEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// AnalysisCompletedEvent is published after every successful pipeline run.
type AnalysisCompletedEvent struct {
	RunID            string        `json:"run_id"`
	NewTransactions  int           `json:"new_transactions"`
	LedgerRecords    int           `json:"ledger_records"`
	ExamReports      int           `json:"exam_reports"`
	FailedExams      []string      `json:"failed_exams,omitempty"`
	Duration         time.Duration `json:"duration"`
	SelectedUnits    []string      `json:"selected_units"`
	CompletedAt      time.Time     `json:"completed_at"`
}

// AnalysisFailedEvent reports a run that produced no usable output.
type AnalysisFailedEvent struct {
	RunID    string    `json:"run_id"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

// ExamReportGeneratedEvent is published per computed exam report.
type ExamReportGeneratedEvent struct {
	ExamID       string  `json:"exam_id"`
	StudentCount int     `json:"student_count"`
	AverageScore float64 `json:"average_score"`
	MaxScore     float64 `json:"max_score"`
}

// AISummaryGeneratedEvent is published after an AI consultation summary.
type AISummaryGeneratedEvent struct {
	StudentID   string    `json:"student_id"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

// SheetSyncedEvent is published after rows are pulled from or appended to the
// shared response sheet.
type SheetSyncedEvent struct {
	Direction string `json:"direction"` // "fetch" or "append"
	RowCount  int    `json:"row_count"`
	Endpoint  string `json:"endpoint"`
}

const eventSource = "jomath-analyzer"

// NewAnalysisEvent wraps a payload in the common event envelope.
func NewAnalysisEvent(eventType EventType, data interface{}) *AnalysisEvent {
	return &AnalysisEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   "1.0",
		Data:      data,
	}
}

// GenerateEventID returns a unique identifier for one event.
func GenerateEventID() string {
	return uuid.NewString()
}
