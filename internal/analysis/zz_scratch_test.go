package analysis

import (
	"fmt"
	"testing"

	"github.com/kwoncho1001/Jomath/internal/models"
)

func TestZZScratch(t *testing.T) {
	questions := []models.Question{
		{SourceID: "중간-1", Number: 1, Answer: 3, Difficulty: models.DifficultyHigh, Subject: "수학", MajorUnit: "함수", MinorUnit: "이차함수", DetailType: "최대최소"},
		{SourceID: "중간-1", Number: 2, Answer: 1, Difficulty: models.DifficultyMid, Subject: "수학", MajorUnit: "함수", MinorUnit: "이차함수", DetailType: "그래프"},
		{SourceID: "중간-1", Number: 3, Answer: 4, Difficulty: models.DifficultyLow, Subject: "수학", MajorUnit: "방정식", MinorUnit: "일차방정식", DetailType: "활용"},
	}
	row := models.RawRow{
		"타임스탬프":           "2025-03-02 10:00:00",
		"이름":              "김민준",
		"학년":              "고1",
		"과목명":             "수학",
		"시험 ID":           "중간-1",
		"문제 답안 입력 [1번]": "3",
	}
	r, ok := ParseTestRow(row)
	fmt.Printf("parse ok=%v resp=%+v\n", ok, r)
	res := Run(Input{Questions: questions, TestRows: []models.RawRow{row}, Config: DefaultConfig()})
	fmt.Printf("newTxns=%d reports=%d results=%d failures=%+v ledger=%d\n",
		len(res.NewTransactions), len(res.ExamReports), len(res.ExamResults), res.Failures, len(res.MasteryLedger))
	for _, rep := range res.ExamReports {
		fmt.Printf("report %s results=%d\n", rep.ExamID, len(rep.Results))
	}
	rep, err := ScoreExam(NewCatalog(questions), []models.TestResponse{r}, "중간-1", DefaultConfig())
	fmt.Printf("direct ScoreExam err=%v results=%d\n", err, func() int {
		if rep == nil {
			return -1
		}
		return len(rep.Results)
	}())
	cat := NewCatalog(questions)
	fmt.Printf("questionsForExam=%d\n", len(cat.QuestionsForExam("중간-1")))
}
