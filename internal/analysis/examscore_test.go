package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwoncho1001/Jomath/internal/models"
)

func examResponse(name string, ts time.Time, answers map[int]string) models.TestResponse {
	return models.TestResponse{
		Timestamp: ts,
		StudentID: name,
		ExamID:    "중간-1",
		Answers:   answers,
	}
}

func TestScoreExam(t *testing.T) {
	catalog := testCatalog()
	cfg := DefaultConfig()
	cfg.SelectedUnits = []string{"수학"}
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("perfect paper scores exactly 100", func(t *testing.T) {
		responses := []models.TestResponse{
			examResponse("김민준", ts, map[int]string{1: "3", 2: "1", 3: "4"}),
		}

		report, err := ScoreExam(catalog, responses, "중간-1", cfg)

		require.NoError(t, err)
		require.Len(t, report.Results, 1)
		assert.Equal(t, 100.0, report.Results[0].FinalScore)
		assert.Equal(t, 3, report.Results[0].CorrectCount)
		assert.Equal(t, "1 / 1", report.Results[0].Rank)
		assert.Equal(t, "2024-03-01", report.Results[0].ExamDate)
	})

	t.Run("harder questions are worth more points", func(t *testing.T) {
		responses := []models.TestResponse{
			examResponse("상위만", ts, map[int]string{1: "3"}),
			examResponse("하위만", ts, map[int]string{3: "4"}),
		}

		report, err := ScoreExam(catalog, responses, "중간-1", cfg)

		require.NoError(t, err)
		require.Len(t, report.Results, 2)
		// Weights 1.2/1.0/0.8 over three questions: 40 and 26.7 points.
		assert.Equal(t, "상위만", report.Results[0].StudentName)
		assert.Equal(t, 40.0, report.Results[0].FinalScore)
		assert.Equal(t, 26.7, report.Results[1].FinalScore)
	})

	t.Run("tied scores share a rank with a gap after", func(t *testing.T) {
		responses := []models.TestResponse{
			examResponse("학생1", ts, map[int]string{1: "3", 2: "1", 3: "4"}),
			examResponse("학생2", ts, map[int]string{1: "3", 2: "1", 3: "4"}),
			examResponse("학생3", ts, map[int]string{1: "3"}),
		}

		report, err := ScoreExam(catalog, responses, "중간-1", cfg)

		require.NoError(t, err)
		require.Len(t, report.Results, 3)
		assert.Equal(t, "1 / 3", report.Results[0].Rank)
		assert.Equal(t, "1 / 3", report.Results[1].Rank)
		assert.Equal(t, "3 / 3", report.Results[2].Rank)
	})

	t.Run("unknown exam is an error", func(t *testing.T) {
		_, err := ScoreExam(catalog, nil, "없는시험", cfg)

		assert.ErrorIs(t, err, ErrExamNotFound)
	})

	t.Run("scoped-out exam yields an empty report, not an error", func(t *testing.T) {
		scoped := cfg
		scoped.SelectedUnits = []string{"영어"}

		report, err := ScoreExam(catalog, nil, "중간-1", scoped)

		require.NoError(t, err)
		assert.Empty(t, report.Results)
		assert.Empty(t, report.QuestionStats)
	})

	t.Run("no takers yields an empty report", func(t *testing.T) {
		report, err := ScoreExam(catalog, nil, "중간-1", cfg)

		require.NoError(t, err)
		assert.Empty(t, report.Results)
	})

	t.Run("scope filter renormalizes the remaining questions", func(t *testing.T) {
		scoped := cfg
		scoped.SelectedUnits = []string{"수학|함수"}
		responses := []models.TestResponse{
			// Question 3 is out of scope; answering only 1 and 2 is a full paper.
			examResponse("김민준", ts, map[int]string{1: "3", 2: "1"}),
		}

		report, err := ScoreExam(catalog, responses, "중간-1", scoped)

		require.NoError(t, err)
		require.Len(t, report.Results, 1)
		assert.Equal(t, 100.0, report.Results[0].FinalScore)
		assert.Len(t, report.QuestionStats, 2)
	})

	t.Run("question statistics count misses", func(t *testing.T) {
		responses := []models.TestResponse{
			examResponse("학생1", ts, map[int]string{1: "3", 2: "2", 3: "4"}),
			examResponse("학생2", ts, map[int]string{1: "1", 2: "2", 3: "4"}),
		}

		report, err := ScoreExam(catalog, responses, "중간-1", cfg)

		require.NoError(t, err)
		require.Len(t, report.QuestionStats, 3)

		q1 := report.QuestionStats[0]
		assert.Equal(t, 1, q1.Number)
		assert.Equal(t, 2, q1.Attempts)
		assert.Equal(t, 1, q1.CorrectCount)
		assert.Equal(t, 50.0, q1.ErrorRate)

		q2 := report.QuestionStats[1]
		assert.Equal(t, 2, q2.ErrorCount)
		assert.Equal(t, 100.0, q2.ErrorRate)

		q3 := report.QuestionStats[2]
		assert.Equal(t, 0, q3.ErrorCount)
		assert.Equal(t, 0.0, q3.ErrorRate)
	})

	t.Run("summary aggregates the field", func(t *testing.T) {
		responses := []models.TestResponse{
			examResponse("학생1", ts, map[int]string{1: "3", 2: "1", 3: "4"}),
			examResponse("학생2", ts, nil),
		}

		report, err := ScoreExam(catalog, responses, "중간-1", cfg)

		require.NoError(t, err)
		assert.Equal(t, 2, report.Summary.StudentCount)
		assert.Equal(t, 100.0, report.Summary.Max)
		assert.Equal(t, 50.0, report.Summary.Average)
	})

	t.Run("responses for other exams are ignored", func(t *testing.T) {
		other := examResponse("학생1", ts, map[int]string{1: "3"})
		other.ExamID = "기말-1"

		report, err := ScoreExam(catalog, []models.TestResponse{other}, "중간-1", cfg)

		require.NoError(t, err)
		assert.Empty(t, report.Results)
	})
}
