package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwoncho1001/Jomath/internal/models"
)

func TestBuildClassificationTree(t *testing.T) {
	t.Run("rows collapse into a sorted tree", func(t *testing.T) {
		rows := []models.ClassificationRow{
			{Subject: "수학", MajorUnit: "함수", MinorUnit: "이차함수"},
			{Subject: "수학", MajorUnit: "함수", MinorUnit: "일차함수"},
			{Subject: "수학", MajorUnit: "함수", MinorUnit: "이차함수"},
			{Subject: " 영어 ", MajorUnit: "문법", MinorUnit: "시제"},
		}

		tree := BuildClassificationTree(rows)

		require.Len(t, tree, 2)
		assert.Equal(t, []string{"이차함수", "일차함수"}, tree["수학"]["함수"])
		assert.Equal(t, []string{"시제"}, tree["영어"]["문법"])
	})

	t.Run("missing units fall back to placeholders", func(t *testing.T) {
		rows := []models.ClassificationRow{
			{Subject: "수학"},
		}

		tree := BuildClassificationTree(rows)

		assert.Equal(t, []string{models.DefaultMinorUnit}, tree["수학"][models.UnclassifiedMajorUnit])
	})

	t.Run("rows without a subject are dropped", func(t *testing.T) {
		rows := []models.ClassificationRow{
			{MajorUnit: "함수", MinorUnit: "이차함수"},
		}

		assert.Empty(t, BuildClassificationTree(rows))
	})
}

func TestRollupUnits(t *testing.T) {
	catalog := NewCatalog([]models.Question{
		{SourceID: "중간-1", Number: 1, Answer: 1, Difficulty: models.DifficultyMid, Subject: "수학", MajorUnit: "함수", MinorUnit: "이차함수", DetailType: "그래프"},
		{SourceID: "중간-1", Number: 2, Answer: 1, Difficulty: models.DifficultyMid, Subject: "수학", MajorUnit: "함수", MinorUnit: "일차함수", DetailType: "기울기"},
		{SourceID: "중간-1", Number: 3, Answer: 1, Difficulty: models.DifficultyMid, Subject: "수학", MajorUnit: "방정식", MinorUnit: "일차방정식", DetailType: "활용"},
	})

	t.Run("attempt-weighted scores roll upward", func(t *testing.T) {
		records := []models.MasteryRecord{
			{StudentID: "김민준", DetailType: "그래프", DisplayScore: 80, Accuracy: 75, TotalAttempts: 3},
			{StudentID: "김민준", DetailType: "기울기", DisplayScore: 60, Accuracy: 50, TotalAttempts: 1},
		}

		rollups := RollupUnits(catalog, records)

		require.Len(t, rollups, 1)
		subject := rollups[0]
		assert.Equal(t, "수학", subject.Name)
		// (80*3 + 60*1) / 4 = 75.
		assert.Equal(t, 75.0, subject.DisplayScore)
		assert.Equal(t, 68.75, subject.Accuracy)
		assert.Equal(t, 4, subject.TotalAttempts)
		assert.Equal(t, 2, subject.ConstituentTypes)

		require.Len(t, subject.SubUnits, 1)
		major := subject.SubUnits[0]
		assert.Equal(t, "함수", major.Name)
		require.Len(t, major.SubUnits, 2)
		assert.Equal(t, "이차함수", major.SubUnits[0].Name)
		assert.Equal(t, 80.0, major.SubUnits[0].DisplayScore)
		assert.Equal(t, "일차함수", major.SubUnits[1].Name)
	})

	t.Run("sentinel records weigh accuracy but not score", func(t *testing.T) {
		records := []models.MasteryRecord{
			{StudentID: "김민준", DetailType: "그래프", DisplayScore: 80, Accuracy: 75, TotalAttempts: 2},
			{StudentID: "김민준", DetailType: "기울기", DisplayScore: models.ScoreInsufficient, Accuracy: 50, TotalAttempts: 2},
		}

		rollups := RollupUnits(catalog, records)

		require.Len(t, rollups, 1)
		assert.Equal(t, 80.0, rollups[0].DisplayScore)
		assert.Equal(t, 62.5, rollups[0].Accuracy)
		assert.Equal(t, 4, rollups[0].TotalAttempts)
	})

	t.Run("all-sentinel node reports insufficient", func(t *testing.T) {
		records := []models.MasteryRecord{
			{StudentID: "김민준", DetailType: "활용", DisplayScore: models.ScoreInsufficient, Accuracy: 0, TotalAttempts: 1},
		}

		rollups := RollupUnits(catalog, records)

		require.Len(t, rollups, 1)
		assert.Equal(t, models.ScoreInsufficient, rollups[0].DisplayScore)
	})

	t.Run("unknown detail types are skipped", func(t *testing.T) {
		records := []models.MasteryRecord{
			{StudentID: "김민준", DetailType: "없는유형", DisplayScore: 80, TotalAttempts: 2},
		}

		assert.Empty(t, RollupUnits(catalog, records))
	})
}
