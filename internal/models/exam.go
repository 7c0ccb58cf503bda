package models

// ExamResult is one student's scored result for one exam. Rank uses
// competition ranking: tied students share a rank and the next distinct score
// skips past the tie group.
type ExamResult struct {
	ExamID       string  `json:"exam_id"`
	StudentName  string  `json:"student_name"`
	ExamDate     string  `json:"exam_date"`
	CorrectCount int     `json:"correct_count"`
	FinalScore   float64 `json:"final_score"`
	Rank         string  `json:"rank"`
}

// QuestionStat is the per-question aggregate for one exam.
type QuestionStat struct {
	Number       int        `json:"number"`
	Difficulty   Difficulty `json:"difficulty"`
	DetailType   string     `json:"detail_type"`
	Answer       int        `json:"answer"`
	Attempts     int        `json:"attempts"`
	CorrectCount int        `json:"correct_count"`
	ErrorCount   int        `json:"error_count"`
	ErrorRate    float64    `json:"error_rate"`
}

// ExamSummary aggregates one exam's results.
type ExamSummary struct {
	Average      float64 `json:"average"`
	Max          float64 `json:"max"`
	StudentCount int     `json:"student_count"`
}

// ExamReport bundles everything the reporting view consumes for one exam.
type ExamReport struct {
	ExamID        string         `json:"exam_id"`
	Results       []ExamResult   `json:"results"`
	QuestionStats []QuestionStat `json:"question_stats"`
	Summary       ExamSummary    `json:"summary"`
}
