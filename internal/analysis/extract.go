package analysis

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kwoncho1001/Jomath/internal/models"
)

// answerPattern recognizes the per-question answer columns of a form export:
// "문제 답안 입력 [<N>번]".
var answerPattern = regexp.MustCompile(`^문제 답안 입력 \[(\d+)번]`)

// Column header names and their historical aliases across form exports. Alias
// resolution happens only here; the rest of the pipeline never inspects raw
// headers again.
const (
	colTimestamp     = "타임스탬프"
	colName          = "이름"
	colEmail         = "이메일 주소"
	colGrade         = "학년"
	colBookName      = "교재명"
	colSubjectName   = "과목명"
	colQuestionRange = "문제 자릿수"
)

var (
	examIDAliases        = []string{"시험 ID", "시험ID"}
	catalogSourceAliases = []string{"시험 ID/교재명", "시험 ID", "시험ID"}
	subjectAliases       = []string{"과목", "과목명"}
)

var leadingDigits = regexp.MustCompile(`^(\d+)`)

// ExtractAnswers pulls every (question number, raw answer) pair out of one raw
// row. Rows with no matching columns yield an empty map; headers whose capture
// is not numeric are skipped.
func ExtractAnswers(row models.RawRow) map[int]string {
	answers := make(map[int]string)
	for header, value := range row {
		m := answerPattern.FindStringSubmatch(header)
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		answers[num] = cellString(value)
	}
	return answers
}

// ParseTestRow resolves one raw exam submission into its typed form. ok is
// false when the row lacks a usable student identity, exam id or timestamp;
// such rows produce zero transactions rather than an error.
func ParseTestRow(row models.RawRow) (models.TestResponse, bool) {
	studentID := NormalizeValue(row[colName])
	if studentID == "" {
		studentID = NormalizeValue(row[colEmail])
	}
	if studentID == "" {
		return models.TestResponse{}, false
	}

	examID := NormalizeValue(lookup(row, examIDAliases))
	if examID == "" {
		return models.TestResponse{}, false
	}

	ts, ok := ParseTimestamp(row[colTimestamp])
	if !ok {
		return models.TestResponse{}, false
	}

	return models.TestResponse{
		Timestamp: ts,
		StudentID: studentID,
		Grade:     NormalizeValue(row[colGrade]),
		ExamID:    examID,
		Answers:   ExtractAnswers(row),
	}, true
}

// ParseBookRow resolves one raw textbook submission. The question-range cell
// declares the absolute number of the row's first answer; only its leading
// digits matter.
func ParseBookRow(row models.RawRow) (models.BookResponse, bool) {
	studentID := NormalizeValue(row[colName])
	bookName := NormalizeValue(row[colBookName])
	subject := NormalizeValue(row[colSubjectName])
	rangeCell := cellString(row[colQuestionRange])

	if studentID == "" || bookName == "" || subject == "" || rangeCell == "" {
		return models.BookResponse{}, false
	}

	m := leadingDigits.FindStringSubmatch(strings.TrimSpace(rangeCell))
	if m == nil {
		return models.BookResponse{}, false
	}
	start, err := strconv.Atoi(m[1])
	if err != nil {
		return models.BookResponse{}, false
	}

	ts, ok := ParseTimestamp(row[colTimestamp])
	if !ok {
		return models.BookResponse{}, false
	}

	return models.BookResponse{
		Timestamp:  ts,
		StudentID:  studentID,
		BookName:   bookName,
		Subject:    subject,
		RangeStart: start,
		Answers:    ExtractAnswers(row),
	}, true
}

// parseAnswer interprets a raw answer cell. Blank and whitespace-only cells
// are "no answer" and never compare equal to any valid answer key.
func parseAnswer(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

func lookup(row models.RawRow, aliases []string) any {
	for _, alias := range aliases {
		if v, ok := row[alias]; ok {
			if NormalizeValue(v) != "" {
				return v
			}
		}
	}
	return nil
}

// cellString renders a raw cell without identifier normalization. Numeric
// cells lose their decimal tail so an answer entered as 3 reads as "3".
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}
