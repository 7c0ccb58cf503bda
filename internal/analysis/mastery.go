package analysis

import (
	"sort"
	"time"

	"github.com/kwoncho1001/Jomath/internal/models"
)

// AggregateMastery recomputes the mastery ledger. Each affected
// (student, detail type) pair is rebuilt wholesale from the filtered
// transaction set rather than patched field by field: scope changes are
// retroactive, and a pair whose evidence has been filtered away decays to an
// explicit reset record.
//
// The recompute set is the union of pairs touched by freshly ingested
// in-scope transactions and every pair already present in the prior ledger.
func AggregateMastery(
	catalog *Catalog,
	scope Scope,
	filtered []models.Transaction,
	fresh []models.Transaction,
	prior []models.MasteryRecord,
	cfg Config,
	now time.Time,
) []models.MasteryRecord {
	ledger := make(map[models.MasteryKey]models.MasteryRecord, len(prior))
	for _, rec := range prior {
		ledger[rec.Key()] = rec
	}

	byPair := make(map[models.MasteryKey][]models.Transaction)
	for _, txn := range filtered {
		q, ok := catalog.Lookup(QuestionRef{ExamKey: txn.ExamKey, Number: txn.QuestionNum})
		if !ok {
			continue
		}
		key := models.MasteryKey{StudentID: txn.StudentID, DetailType: q.DetailType}
		byPair[key] = append(byPair[key], txn)
	}

	pairs := make(map[models.MasteryKey]struct{}, len(prior))
	for _, txn := range fresh {
		if !scope.Contains(catalog, txn) {
			continue
		}
		q, ok := catalog.Lookup(QuestionRef{ExamKey: txn.ExamKey, Number: txn.QuestionNum})
		if !ok {
			continue
		}
		pairs[models.MasteryKey{StudentID: txn.StudentID, DetailType: q.DetailType}] = struct{}{}
	}
	// Every pre-existing pair is recomputed as well: a scope change can
	// retroactively include or exclude previously scored transactions.
	for _, rec := range prior {
		pairs[rec.Key()] = struct{}{}
	}

	for key := range pairs {
		logs := byPair[key]
		if len(logs) == 0 {
			ledger[key] = models.MasteryRecord{
				StudentID:    key.StudentID,
				DetailType:   key.DetailType,
				ScoreHigh:    models.ScoreInsufficient,
				ScoreMid:     models.ScoreInsufficient,
				ScoreLow:     models.ScoreInsufficient,
				LastUpdated:  now,
				DisplayScore: models.ScoreInsufficient,
			}
			continue
		}
		ledger[key] = buildRecord(catalog, key, logs, cfg)
	}

	out := make([]models.MasteryRecord, 0, len(ledger))
	for _, rec := range ledger {
		out = append(out, rec)
	}
	return out
}

func buildRecord(catalog *Catalog, key models.MasteryKey, logs []models.Transaction, cfg Config) models.MasteryRecord {
	var high, mid, low []models.Transaction
	for _, txn := range logs {
		q, ok := catalog.Lookup(QuestionRef{ExamKey: txn.ExamKey, Number: txn.QuestionNum})
		if !ok {
			continue
		}
		switch q.Difficulty {
		case models.DifficultyHigh:
			high = append(high, txn)
		case models.DifficultyLow:
			low = append(low, txn)
		default:
			mid = append(mid, txn)
		}
	}

	scoreHigh := tierScore(high, cfg)
	scoreMid := tierScore(mid, cfg)
	scoreLow := tierScore(low, cfg)

	display := blendDisplayScore(scoreHigh, scoreMid, scoreLow, cfg.DifficultyRatio)

	correct := 0
	lastUpdated := logs[0].Date
	for _, txn := range logs {
		if txn.Result == models.OutcomeCorrect {
			correct++
		}
		if txn.Date.After(lastUpdated) {
			lastUpdated = txn.Date
		}
	}
	total := len(logs)

	return models.MasteryRecord{
		StudentID:      key.StudentID,
		DetailType:     key.DetailType,
		ScoreHigh:      roundScore(scoreHigh),
		ScoreMid:       roundScore(scoreMid),
		ScoreLow:       roundScore(scoreLow),
		TotalAttempts:  total,
		CorrectAnswers: correct,
		Accuracy:       round2(float64(correct) / float64(total) * 100),
		LastUpdated:    lastUpdated,
		DisplayScore:   roundScore(display),
	}
}

// tierScore reports one difficulty tier on the 0-100 scale, or the
// insufficient-data sentinel when the tier has no transactions or fewer
// Test-sourced transactions than the configured minimum. Book evidence blends
// into a qualifying tier but never qualifies one by itself.
func tierScore(logs []models.Transaction, cfg Config) float64 {
	if len(logs) == 0 {
		return models.ScoreInsufficient
	}

	var testLogs, bookLogs []models.Transaction
	for _, txn := range logs {
		if txn.Type == models.SourceTest {
			testLogs = append(testLogs, txn)
		} else {
			bookLogs = append(bookLogs, txn)
		}
	}

	if len(testLogs) < cfg.MinTestCount {
		return models.ScoreInsufficient
	}

	index := difficultyIndex(testLogs, cfg.RecentCount)
	if len(bookLogs) > 0 {
		index = index*testBlendRatio + difficultyIndex(bookLogs, cfg.RecentCount)*bookBlendRatio
	}
	return index*50 + 50
}

// difficultyIndex is the weighted recent accuracy of a transaction subset in
// roughly [-1, 1]: signed scores summed over the newest recentCount
// transactions, divided by the summed weights.
func difficultyIndex(logs []models.Transaction, recentCount int) float64 {
	if len(logs) == 0 {
		return 0
	}

	sorted := make([]models.Transaction, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	if recentCount > 0 && len(sorted) > recentCount {
		sorted = sorted[:recentCount]
	}

	var scoreSum, weightSum float64
	for _, txn := range sorted {
		scoreSum += txn.Score
		weightSum += txn.Weight
	}
	if weightSum == 0 {
		return 0
	}
	return scoreSum / weightSum
}

// blendDisplayScore combines the tier scores by their configured ratios,
// counting only tiers with real data in both numerator and denominator.
func blendDisplayScore(high, mid, low float64, ratio Tier) float64 {
	var sum, ratioSum float64
	if high >= 0 {
		sum += high * ratio.High
		ratioSum += ratio.High
	}
	if mid >= 0 {
		sum += mid * ratio.Mid
		ratioSum += ratio.Mid
	}
	if low >= 0 {
		sum += low * ratio.Low
		ratioSum += ratio.Low
	}
	if ratioSum == 0 {
		return models.ScoreInsufficient
	}
	return sum / ratioSum
}

// roundScore keeps sentinels intact while rounding real scores for display.
func roundScore(score float64) float64 {
	if score < 0 {
		return models.ScoreInsufficient
	}
	return round1(score)
}
