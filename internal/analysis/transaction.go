package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/kwoncho1001/Jomath/internal/models"
)

// Builder converts typed response rows into scored transactions against a
// catalog, deduplicating against everything already ingested. Seeding the
// seen-set from the prior run's log makes re-ingestion of identical input a
// no-op.
type Builder struct {
	catalog *Catalog
	cfg     Config
	seen    map[models.TransactionKey]struct{}
}

// NewBuilder prepares a builder whose dedup set is seeded from priorLog.
func NewBuilder(catalog *Catalog, cfg Config, priorLog []models.Transaction) *Builder {
	seen := make(map[models.TransactionKey]struct{}, len(priorLog))
	for _, txn := range priorLog {
		seen[txn.Key()] = struct{}{}
	}
	return &Builder{catalog: catalog, cfg: cfg, seen: seen}
}

// AddTestRow converts one exam submission into zero or more transactions.
// Rows whose exam id has no catalog questions yield nothing; individual
// answers without a catalog entry are skipped silently.
func (b *Builder) AddTestRow(r models.TestResponse) []models.Transaction {
	questions := b.catalog.QuestionsForExam(Normalize(r.ExamID))
	if len(questions) == 0 {
		return nil
	}
	examKey := ExamKey(questions[0].Subject, Normalize(r.ExamID))
	return b.build(examKey, models.SourceTest, r.StudentID, r.Timestamp, r.Answers, 0)
}

// AddBookRow converts one textbook submission. The catalog's absolute
// question number is RangeStart + relative position - 1.
func (b *Builder) AddBookRow(r models.BookResponse) []models.Transaction {
	bookKey := ExamKey(Normalize(r.Subject), Normalize(r.BookName))
	if len(b.catalog.QuestionsForBook(bookKey)) == 0 {
		return nil
	}
	return b.build(bookKey, models.SourceBook, r.StudentID, r.Timestamp, r.Answers, r.RangeStart-1)
}

func (b *Builder) build(examKey string, kind models.SourceKind, studentID string, ts time.Time, answers map[int]string, offset int) []models.Transaction {
	nums := make([]int, 0, len(answers))
	for num := range answers {
		nums = append(nums, num)
	}
	sort.Ints(nums)

	var out []models.Transaction
	for _, num := range nums {
		absolute := num + offset
		question, ok := b.catalog.Lookup(QuestionRef{ExamKey: examKey, Number: absolute})
		if !ok {
			continue
		}

		key := models.TransactionKey{
			UnixMillis:  ts.UnixMilli(),
			StudentID:   studentID,
			ExamKey:     examKey,
			QuestionNum: absolute,
		}
		if _, dup := b.seen[key]; dup {
			continue
		}

		answer, answered := parseAnswer(answers[num])
		correct := answered && answer == question.Answer

		weight := b.cfg.Weights.For(question.Difficulty)
		score := weight
		result := models.OutcomeCorrect
		if !correct {
			score = -weight
			result = models.OutcomeWrong
		}

		out = append(out, models.Transaction{
			Date:        ts,
			StudentID:   studentID,
			ExamKey:     examKey,
			QuestionNum: absolute,
			Result:      result,
			Type:        kind,
			Weight:      round4(weight),
			Score:       round4(score),
		})
		b.seen[key] = struct{}{}
	}
	return out
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
