package analysis

import (
	"sort"
	"time"

	"github.com/kwoncho1001/Jomath/internal/models"
)

// Input is everything one pipeline run consumes. The prior log and ledger are
// the previous run's output fed back in for incremental merge; the pipeline
// receives its own copies and never mutates them.
type Input struct {
	Questions   []models.Question
	TestRows    []models.RawRow
	BookRows    []models.RawRow
	PriorLog    []models.Transaction
	PriorLedger []models.MasteryRecord
	Config      Config

	// Now stamps reset ledger records; the zero value means the wall clock.
	Now time.Time
}

// ExamFailure records an exam whose report could not be computed. Catalog
// inconsistency for one exam never aborts the rest of the run.
type ExamFailure struct {
	ExamID string
	Err    error
}

// Result is one pipeline run's output, each artifact independently sorted for
// deterministic export.
type Result struct {
	// TransactionLog is the scope-filtered view of the full (prior + new) log.
	TransactionLog []models.Transaction
	// NewTransactions are the records appended this run, for persistence.
	NewTransactions []models.Transaction
	MasteryLedger   []models.MasteryRecord
	ExamReports     []models.ExamReport
	// ExamResults flattens every report's rows into the exam score report.
	ExamResults []models.ExamResult
	Failures    []ExamFailure
}

// Run executes the full pipeline: transaction building over test then book
// rows, scope filtering, mastery aggregation, and per-exam scoring. It is a
// pure function of (prior state, new inputs, configuration); re-running with
// the same prior state duplicates nothing.
func Run(in Input) Result {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	catalog := NewCatalog(in.Questions)
	builder := NewBuilder(catalog, in.Config, in.PriorLog)

	var fresh []models.Transaction
	var testResponses []models.TestResponse

	for _, row := range in.TestRows {
		r, ok := ParseTestRow(row)
		if !ok {
			continue
		}
		testResponses = append(testResponses, r)
		fresh = append(fresh, builder.AddTestRow(r)...)
	}
	for _, row := range in.BookRows {
		r, ok := ParseBookRow(row)
		if !ok {
			continue
		}
		fresh = append(fresh, builder.AddBookRow(r)...)
	}

	full := make([]models.Transaction, 0, len(in.PriorLog)+len(fresh))
	full = append(full, in.PriorLog...)
	full = append(full, fresh...)

	scope := NewScope(in.Config.SelectedUnits)
	filtered := scope.FilterTransactions(catalog, full)

	ledger := AggregateMastery(catalog, scope, filtered, fresh, in.PriorLedger, in.Config, now)

	result := Result{
		TransactionLog:  filtered,
		NewTransactions: fresh,
		MasteryLedger:   ledger,
	}

	for _, examID := range uniqueExamIDs(testResponses) {
		report, err := ScoreExam(catalog, testResponses, examID, in.Config)
		if err != nil {
			result.Failures = append(result.Failures, ExamFailure{ExamID: examID, Err: err})
			continue
		}
		if len(report.Results) == 0 {
			continue
		}
		result.ExamReports = append(result.ExamReports, *report)
		result.ExamResults = append(result.ExamResults, report.Results...)
	}

	sortResult(&result)
	return result
}

func uniqueExamIDs(responses []models.TestResponse) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range responses {
		id := Normalize(r.ExamID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortResult(r *Result) {
	sort.SliceStable(r.TransactionLog, func(i, j int) bool {
		a, b := r.TransactionLog[i], r.TransactionLog[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.StudentID != b.StudentID {
			return a.StudentID < b.StudentID
		}
		if a.ExamKey != b.ExamKey {
			return a.ExamKey < b.ExamKey
		}
		return a.QuestionNum < b.QuestionNum
	})

	sort.SliceStable(r.MasteryLedger, func(i, j int) bool {
		a, b := r.MasteryLedger[i], r.MasteryLedger[j]
		if a.StudentID != b.StudentID {
			return a.StudentID < b.StudentID
		}
		return a.DetailType < b.DetailType
	})

	sort.SliceStable(r.ExamResults, func(i, j int) bool {
		a, b := r.ExamResults[i], r.ExamResults[j]
		if a.ExamID != b.ExamID {
			return a.ExamID < b.ExamID
		}
		return a.StudentName < b.StudentName
	})

	sort.SliceStable(r.ExamReports, func(i, j int) bool {
		return r.ExamReports[i].ExamID < r.ExamReports[j].ExamID
	})
}
