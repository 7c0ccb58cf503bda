package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwoncho1001/Jomath/internal/models"
)

// masteryCatalog files ten exam questions and one textbook question under a
// single detail type, split across difficulty tiers.
func masteryCatalog() *Catalog {
	questions := make([]models.Question, 0, 11)
	for n := 1; n <= 5; n++ {
		questions = append(questions, models.Question{
			SourceID: "모의-1", Number: n, Answer: 1, Difficulty: models.DifficultyMid,
			Subject: "수학", MajorUnit: "함수", MinorUnit: "이차함수", DetailType: "유형A",
		})
	}
	for n := 6; n <= 10; n++ {
		questions = append(questions, models.Question{
			SourceID: "모의-1", Number: n, Answer: 1, Difficulty: models.DifficultyHigh,
			Subject: "수학", MajorUnit: "함수", MinorUnit: "이차함수", DetailType: "유형A",
		})
	}
	questions = append(questions, models.Question{
		SourceID: "워크북", Number: 1, Answer: 1, Difficulty: models.DifficultyMid,
		Subject: "수학", MajorUnit: "함수", MinorUnit: "이차함수", DetailType: "유형A",
	})
	return NewCatalog(questions)
}

func midTxn(day, num int, correct bool) models.Transaction {
	txn := models.Transaction{
		Date:        time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		StudentID:   "김민준",
		ExamKey:     "수학|모의-1",
		QuestionNum: num,
		Type:        models.SourceTest,
		Weight:      1.0,
		Score:       1.0,
		Result:      models.OutcomeCorrect,
	}
	if !correct {
		txn.Score = -1.0
		txn.Result = models.OutcomeWrong
	}
	return txn
}

func highTxn(day, num int, correct bool) models.Transaction {
	txn := midTxn(day, num, correct)
	txn.QuestionNum = num
	txn.Weight = 1.2
	if correct {
		txn.Score = 1.2
	} else {
		txn.Score = -1.2
	}
	return txn
}

func findRecord(t *testing.T, ledger []models.MasteryRecord, studentID, detailType string) models.MasteryRecord {
	t.Helper()
	for _, rec := range ledger {
		if rec.StudentID == studentID && rec.DetailType == detailType {
			return rec
		}
	}
	t.Fatalf("no record for %s/%s", studentID, detailType)
	return models.MasteryRecord{}
}

func TestAggregateMastery(t *testing.T) {
	catalog := masteryCatalog()
	scope := NewScope([]string{"수학"})
	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()

	t.Run("all correct reaches the score ceiling", func(t *testing.T) {
		logs := []models.Transaction{
			midTxn(1, 1, true), midTxn(2, 2, true),
			highTxn(3, 6, true), highTxn(4, 7, true),
		}

		ledger := AggregateMastery(catalog, scope, logs, logs, nil, cfg, now)

		rec := findRecord(t, ledger, "김민준", "유형A")
		assert.Equal(t, 100.0, rec.ScoreHigh)
		assert.Equal(t, 100.0, rec.ScoreMid)
		assert.Equal(t, 100.0, rec.DisplayScore)
		assert.Equal(t, 4, rec.TotalAttempts)
		assert.Equal(t, 100.0, rec.Accuracy)
		assert.True(t, rec.LastUpdated.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("tier without exam evidence stays insufficient", func(t *testing.T) {
		logs := []models.Transaction{midTxn(1, 1, true)}

		ledger := AggregateMastery(catalog, scope, logs, logs, nil, cfg, now)

		rec := findRecord(t, ledger, "김민준", "유형A")
		assert.Equal(t, models.ScoreInsufficient, rec.ScoreHigh)
		assert.Equal(t, models.ScoreInsufficient, rec.ScoreLow)
		assert.Equal(t, 100.0, rec.ScoreMid)
	})

	t.Run("only the newest attempts count toward a tier", func(t *testing.T) {
		recent := cfg
		recent.RecentCount = 2
		// Three old misses followed by two recent hits.
		logs := []models.Transaction{
			midTxn(1, 1, false), midTxn(2, 2, false), midTxn(3, 3, false),
			midTxn(4, 4, true), midTxn(5, 5, true),
		}

		ledger := AggregateMastery(catalog, scope, logs, logs, nil, recent, now)

		rec := findRecord(t, ledger, "김민준", "유형A")
		assert.Equal(t, 100.0, rec.ScoreMid)
		// Accuracy still reflects the whole history.
		assert.Equal(t, 40.0, rec.Accuracy)
	})

	t.Run("display score blends only the scored tiers", func(t *testing.T) {
		logs := []models.Transaction{
			// High tier: four hits and a miss, index 0.6, score 80.
			highTxn(1, 6, true), highTxn(2, 7, true), highTxn(3, 8, true),
			highTxn(4, 9, true), highTxn(5, 10, false),
			// Mid tier: three hits and two misses, index 0.2, score 60.
			midTxn(1, 1, true), midTxn(2, 2, true), midTxn(3, 3, true),
			midTxn(4, 4, false), midTxn(5, 5, false),
		}

		ledger := AggregateMastery(catalog, scope, logs, logs, nil, cfg, now)

		rec := findRecord(t, ledger, "김민준", "유형A")
		assert.Equal(t, 80.0, rec.ScoreHigh)
		assert.Equal(t, 60.0, rec.ScoreMid)
		assert.Equal(t, models.ScoreInsufficient, rec.ScoreLow)
		assert.Equal(t, 70.0, rec.DisplayScore)
	})

	t.Run("textbook evidence blends into a qualified tier", func(t *testing.T) {
		book := models.Transaction{
			Date:        time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			StudentID:   "김민준",
			ExamKey:     "수학|워크북",
			QuestionNum: 1,
			Type:        models.SourceBook,
			Weight:      1.0,
			Score:       -1.0,
			Result:      models.OutcomeWrong,
		}
		logs := []models.Transaction{midTxn(1, 1, true), book}

		ledger := AggregateMastery(catalog, scope, logs, logs, nil, cfg, now)

		// 0.7 * 1.0 + 0.3 * -1.0 = 0.4, scaled to 70.
		rec := findRecord(t, ledger, "김민준", "유형A")
		assert.Equal(t, 70.0, rec.ScoreMid)
	})

	t.Run("textbook evidence alone never qualifies a tier", func(t *testing.T) {
		book := models.Transaction{
			Date:        time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			StudentID:   "김민준",
			ExamKey:     "수학|워크북",
			QuestionNum: 1,
			Type:        models.SourceBook,
			Weight:      1.0,
			Score:       1.0,
			Result:      models.OutcomeCorrect,
		}
		logs := []models.Transaction{book}

		ledger := AggregateMastery(catalog, scope, logs, logs, nil, cfg, now)

		rec := findRecord(t, ledger, "김민준", "유형A")
		assert.Equal(t, models.ScoreInsufficient, rec.ScoreMid)
		assert.Equal(t, models.ScoreInsufficient, rec.DisplayScore)
	})

	t.Run("pair with no surviving evidence resets", func(t *testing.T) {
		prior := []models.MasteryRecord{{
			StudentID:    "김민준",
			DetailType:   "유형A",
			ScoreMid:     85,
			DisplayScore: 85,
			LastUpdated:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		}}

		// Nothing in scope anymore: the record decays instead of surviving.
		ledger := AggregateMastery(catalog, scope, nil, nil, prior, cfg, now)

		rec := findRecord(t, ledger, "김민준", "유형A")
		assert.Equal(t, models.ScoreInsufficient, rec.ScoreMid)
		assert.Equal(t, models.ScoreInsufficient, rec.DisplayScore)
		assert.Equal(t, 0, rec.TotalAttempts)
		assert.True(t, rec.LastUpdated.Equal(now))
	})

	t.Run("untouched students survive alongside recomputed ones", func(t *testing.T) {
		prior := []models.MasteryRecord{{
			StudentID:    "박서연",
			DetailType:   "유형B",
			ScoreMid:     90,
			DisplayScore: 90,
		}}
		logs := []models.Transaction{midTxn(1, 1, true)}

		ledger := AggregateMastery(catalog, scope, logs, logs, prior, cfg, now)

		require.Len(t, ledger, 2)
		findRecord(t, ledger, "김민준", "유형A")
		findRecord(t, ledger, "박서연", "유형B")
	})
}
