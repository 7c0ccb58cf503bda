package analysis

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kwoncho1001/Jomath/internal/models"
)

// ErrExamNotFound reports an exam id with no catalog questions under any
// scope. That is a data-integrity problem in the dataset, unlike an empty
// intersection after filtering, which is a legitimate empty result.
var ErrExamNotFound = errors.New("exam has no questions in the catalog")

// ScoreExam computes one exam's per-student weighted scores, ranking,
// per-question error statistics and summary. Question point values are
// normalized so the maximum achievable score is exactly 100 for whatever
// subset of questions survives the topic-scope filter.
func ScoreExam(catalog *Catalog, responses []models.TestResponse, examID string, cfg Config) (*models.ExamReport, error) {
	id := Normalize(examID)

	all := catalog.QuestionsForExam(id)
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrExamNotFound, id)
	}

	scope := NewScope(cfg.SelectedUnits)
	// Last-seen wins on duplicate ordinals to tolerate malformed catalogs.
	unique := make(map[int]models.Question)
	for _, q := range all {
		if scope.Matches(q.Topic().UnitPath()) {
			unique[q.Number] = q
		}
	}

	questions := make([]models.Question, 0, len(unique))
	for _, q := range unique {
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].Number < questions[j].Number })

	report := &models.ExamReport{ExamID: id}
	if len(questions) == 0 {
		return report, nil
	}

	var totalWeight float64
	weights := make([]float64, len(questions))
	for i, q := range questions {
		weights[i] = cfg.Weights.For(q.Difficulty)
		totalWeight += weights[i]
	}
	correctionFactor := 0.0
	if totalWeight > 0 {
		correctionFactor = 100 / totalWeight
	}
	points := make([]float64, len(questions))
	for i, w := range weights {
		points[i] = w * correctionFactor
	}

	type qStat struct{ correct, total int }
	stats := make(map[int]*qStat, len(questions))
	for _, q := range questions {
		stats[q.Number] = &qStat{}
	}

	type scored struct {
		name         string
		score        float64
		correctCount int
		examDate     string
	}
	var students []scored

	for _, r := range responses {
		if Normalize(r.ExamID) != id || r.StudentID == "" {
			continue
		}

		var score float64
		correctCount := 0
		for i, q := range questions {
			stat := stats[q.Number]
			stat.total++
			answer, answered := parseAnswer(r.Answers[q.Number])
			if answered && answer == q.Answer {
				score += points[i]
				correctCount++
				stat.correct++
			}
		}
		students = append(students, scored{
			name:         r.StudentID,
			score:        score,
			correctCount: correctCount,
			examDate:     r.Timestamp.Format("2006-01-02"),
		})
	}

	if len(students) == 0 {
		// Nobody took this exam under the current filter; an empty result,
		// not an error.
		return &models.ExamReport{ExamID: id}, nil
	}

	sort.SliceStable(students, func(i, j int) bool { return students[i].score > students[j].score })

	// Competition ranking: tied scores share a rank, the next distinct score
	// resumes at 1 + students strictly ahead.
	total := len(students)
	currentRank := 0
	lastScore := -1.0
	for i, s := range students {
		if s.score != lastScore {
			currentRank = i + 1
			lastScore = s.score
		}
		report.Results = append(report.Results, models.ExamResult{
			ExamID:       id,
			StudentName:  s.name,
			ExamDate:     s.examDate,
			CorrectCount: s.correctCount,
			FinalScore:   round1(s.score),
			Rank:         fmt.Sprintf("%d / %d", currentRank, total),
		})
	}

	for _, q := range questions {
		stat := stats[q.Number]
		errorCount := stat.total - stat.correct
		errorRate := 0.0
		if stat.total > 0 {
			errorRate = round1(float64(errorCount) / float64(stat.total) * 100)
		}
		report.QuestionStats = append(report.QuestionStats, models.QuestionStat{
			Number:       q.Number,
			Difficulty:   q.Difficulty,
			DetailType:   q.DetailType,
			Answer:       q.Answer,
			Attempts:     stat.total,
			CorrectCount: stat.correct,
			ErrorCount:   errorCount,
			ErrorRate:    errorRate,
		})
	}

	var scoreSum float64
	for _, s := range students {
		scoreSum += s.score
	}
	report.Summary = models.ExamSummary{
		Average:      round1(scoreSum / float64(total)),
		Max:          round1(students[0].score),
		StudentCount: total,
	}

	return report, nil
}
