package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kwoncho1001/Jomath/internal/analysis"
	"github.com/kwoncho1001/Jomath/internal/models"
)

// ImportExportService reads the three sheet kinds (question catalog, response
// export, classification taxonomy) and writes the analysis artifacts back out
// as xlsx or csv.
type ImportExportService interface {
	// Import operations
	ParseCatalogFile(ctx context.Context, reader io.Reader, filename string) (*CatalogImportResult, error)
	ParseResponseFile(ctx context.Context, reader io.Reader, filename string) ([]models.RawRow, error)
	ParseClassificationFile(ctx context.Context, reader io.Reader, filename string) ([]models.ClassificationRow, error)

	// Export operations
	ExportTransactionsToCSV(ctx context.Context, txns []models.Transaction) ([]byte, error)
	ExportTransactionsToExcel(ctx context.Context, txns []models.Transaction) ([]byte, error)
	ExportLedgerToCSV(ctx context.Context, records []models.MasteryRecord) ([]byte, error)
	ExportLedgerToExcel(ctx context.Context, records []models.MasteryRecord) ([]byte, error)
	ExportExamReportToExcel(ctx context.Context, report *models.ExamReport) ([]byte, error)
}

// RowError locates one rejected sheet row.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CatalogImportResult carries the parsed questions plus every rejected row.
// A bad row never aborts the batch.
type CatalogImportResult struct {
	TotalRows    int               `json:"total_rows"`
	SuccessCount int               `json:"success_count"`
	ErrorCount   int               `json:"error_count"`
	Errors       []RowError        `json:"errors,omitempty"`
	Questions    []models.Question `json:"questions,omitempty"`
}

type importExportService struct {
	logger *slog.Logger
}

func NewImportExportService(logger *slog.Logger) ImportExportService {
	return &importExportService{logger: logger}
}

// Catalog sheet column headers with their historical alias spellings.
var (
	catalogSourceHeaders = []string{"시험 ID/교재명", "시험 ID", "시험ID", "교재명"}
	catalogNumberHeaders = []string{"문제 번호", "번호"}
	catalogAnswerHeaders = []string{"정답"}
	catalogTierHeaders   = []string{"난이도"}
	catalogRateHeaders   = []string{"정답률"}
	subjectHeaders       = []string{"과목", "과목명"}
	majorUnitHeaders     = []string{"대단원"}
	minorUnitHeaders     = []string{"소단원"}
	detailTypeHeaders    = []string{"세부유형", "세부 유형"}
)

// ===== IMPORT OPERATIONS =====

func (s *importExportService) ParseCatalogFile(ctx context.Context, reader io.Reader, filename string) (*CatalogImportResult, error) {
	rows, err := s.readRows(reader, filename)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrEmptySheet
	}

	headerIdx := headerIndex(rows[0])
	result := &CatalogImportResult{TotalRows: len(rows) - 1}

	for i, row := range rows[1:] {
		rowNum := i + 2
		question, rowErrs := s.parseCatalogRow(row, headerIdx, rowNum)
		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			result.ErrorCount++
			continue
		}
		result.Questions = append(result.Questions, question)
		result.SuccessCount++
	}

	s.logger.Info("Catalog sheet parsed",
		"filename", filename,
		"total_rows", result.TotalRows,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount)

	return result, nil
}

func (s *importExportService) parseCatalogRow(row []string, headerIdx map[string]int, rowNum int) (models.Question, []RowError) {
	var errs []RowError

	source := analysis.Normalize(cellAt(row, headerIdx, catalogSourceHeaders))
	if source == "" {
		errs = append(errs, RowError{Row: rowNum, Field: "source_id", Message: "missing exam id / book name"})
	}

	subject := analysis.Normalize(cellAt(row, headerIdx, subjectHeaders))
	if subject == "" {
		errs = append(errs, RowError{Row: rowNum, Field: "subject", Message: "missing subject"})
	}

	numberCell := strings.TrimSpace(cellAt(row, headerIdx, catalogNumberHeaders))
	number, err := strconv.Atoi(numberCell)
	if err != nil || number < 1 {
		errs = append(errs, RowError{Row: rowNum, Field: "number", Message: fmt.Sprintf("bad question number %q", numberCell)})
	}

	answerCell := strings.TrimSpace(cellAt(row, headerIdx, catalogAnswerHeaders))
	answer, err := strconv.Atoi(answerCell)
	if err != nil {
		errs = append(errs, RowError{Row: rowNum, Field: "answer", Message: fmt.Sprintf("bad answer %q", answerCell)})
	}

	if len(errs) > 0 {
		return models.Question{}, errs
	}

	// Unrecognized tiers fall through as-is; the scorer treats them as Mid.
	difficulty := models.Difficulty(strings.TrimSpace(cellAt(row, headerIdx, catalogTierHeaders)))
	if parsed, ok := models.ParseDifficulty(string(difficulty)); ok {
		difficulty = parsed
	}

	rate := 0.0
	if rateCell := strings.TrimSpace(cellAt(row, headerIdx, catalogRateHeaders)); rateCell != "" {
		rate, _ = strconv.ParseFloat(strings.TrimSuffix(rateCell, "%"), 64)
	}

	return models.Question{
		SourceID:    source,
		Number:      number,
		Answer:      answer,
		Difficulty:  difficulty,
		CorrectRate: rate,
		Subject:     subject,
		MajorUnit:   analysis.Normalize(cellAt(row, headerIdx, majorUnitHeaders)),
		MinorUnit:   analysis.Normalize(cellAt(row, headerIdx, minorUnitHeaders)),
		DetailType:  analysis.Normalize(cellAt(row, headerIdx, detailTypeHeaders)),
	}, nil
}

// ParseResponseFile keeps the raw header-to-cell mapping: the pipeline's row
// parsers own alias resolution and answer-column matching.
func (s *importExportService) ParseResponseFile(ctx context.Context, reader io.Reader, filename string) ([]models.RawRow, error) {
	rows, err := s.readRows(reader, filename)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrEmptySheet
	}

	headers := rows[0]
	out := make([]models.RawRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		raw := make(models.RawRow, len(headers))
		for i, header := range headers {
			h := strings.TrimSpace(header)
			if h == "" || i >= len(row) {
				continue
			}
			raw[h] = row[i]
		}
		if len(raw) > 0 {
			out = append(out, raw)
		}
	}

	s.logger.Info("Response sheet parsed", "filename", filename, "rows", len(out))
	return out, nil
}

func (s *importExportService) ParseClassificationFile(ctx context.Context, reader io.Reader, filename string) ([]models.ClassificationRow, error) {
	rows, err := s.readRows(reader, filename)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrEmptySheet
	}

	headerIdx := headerIndex(rows[0])
	out := make([]models.ClassificationRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		item := models.ClassificationRow{
			Subject:    analysis.Normalize(cellAt(row, headerIdx, subjectHeaders)),
			MajorUnit:  analysis.Normalize(cellAt(row, headerIdx, majorUnitHeaders)),
			MinorUnit:  analysis.Normalize(cellAt(row, headerIdx, minorUnitHeaders)),
			DetailType: analysis.Normalize(cellAt(row, headerIdx, detailTypeHeaders)),
		}
		if item.Subject == "" {
			continue
		}
		out = append(out, item)
	}

	s.logger.Info("Classification sheet parsed", "filename", filename, "rows", len(out))
	return out, nil
}

// readRows loads a csv or xlsx file into string rows. Only the first sheet of
// a workbook is read.
func (s *importExportService) readRows(reader io.Reader, filename string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".csv":
		csvReader := csv.NewReader(reader)
		csvReader.TrimLeadingSpace = true
		csvReader.FieldsPerRecord = -1
		records, err := csvReader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		return records, nil

	case ".xlsx", ".xls":
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptySheet
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read workbook rows: %w", err)
		}
		return rows, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ===== EXPORT OPERATIONS =====

var (
	transactionExportHeaders = []string{"날짜", "학생 ID", "시험 ID", "문제 번호", "결과", "유형", "가중치", "점수"}
	ledgerExportHeaders      = []string{"학생 ID", "세부유형", "상 점수", "중 점수", "하 점수", "총 시도", "정답률", "최종 업데이트", "표시 점수"}
	resultExportHeaders      = []string{"시험 ID", "이름", "시험 날짜", "정답 수", "최종 점수", "석차"}
	statExportHeaders        = []string{"문제 번호", "난이도", "세부유형", "정답", "응시", "정답 수", "오답 수", "오답률(%)"}
)

const exportDateLayout = "2006-01-02 15:04:05"

func transactionRow(txn models.Transaction) []string {
	return []string{
		txn.Date.UTC().Format(exportDateLayout),
		txn.StudentID,
		txn.ExamKey,
		strconv.Itoa(txn.QuestionNum),
		string(txn.Result),
		string(txn.Type),
		strconv.FormatFloat(txn.Weight, 'f', -1, 64),
		strconv.FormatFloat(txn.Score, 'f', -1, 64),
	}
}

func ledgerRow(rec models.MasteryRecord) []string {
	return []string{
		rec.StudentID,
		rec.DetailType,
		formatScore(rec.ScoreHigh),
		formatScore(rec.ScoreMid),
		formatScore(rec.ScoreLow),
		strconv.Itoa(rec.TotalAttempts),
		strconv.FormatFloat(rec.Accuracy, 'f', -1, 64),
		rec.LastUpdated.UTC().Format(exportDateLayout),
		formatScore(rec.DisplayScore),
	}
}

// formatScore renders the insufficient-data sentinel as a blank cell.
func formatScore(score float64) string {
	if score < 0 {
		return ""
	}
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func (s *importExportService) ExportTransactionsToCSV(ctx context.Context, txns []models.Transaction) ([]byte, error) {
	rows := make([][]string, 0, len(txns))
	for _, txn := range txns {
		rows = append(rows, transactionRow(txn))
	}
	return writeCSV(transactionExportHeaders, rows)
}

func (s *importExportService) ExportTransactionsToExcel(ctx context.Context, txns []models.Transaction) ([]byte, error) {
	rows := make([][]string, 0, len(txns))
	for _, txn := range txns {
		rows = append(rows, transactionRow(txn))
	}
	return writeWorkbook("Transactions", transactionExportHeaders, rows)
}

func (s *importExportService) ExportLedgerToCSV(ctx context.Context, records []models.MasteryRecord) ([]byte, error) {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, ledgerRow(rec))
	}
	return writeCSV(ledgerExportHeaders, rows)
}

func (s *importExportService) ExportLedgerToExcel(ctx context.Context, records []models.MasteryRecord) ([]byte, error) {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, ledgerRow(rec))
	}
	return writeWorkbook("Mastery", ledgerExportHeaders, rows)
}

// ExportExamReportToExcel writes results and per-question statistics as two
// sheets of one workbook.
func (s *importExportService) ExportExamReportToExcel(ctx context.Context, report *models.ExamReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	resultsSheet := "Results"
	f.SetSheetName(f.GetSheetName(0), resultsSheet)
	if err := writeSheet(f, resultsSheet, resultExportHeaders, resultRows(report)); err != nil {
		return nil, err
	}

	statsSheet := "Questions"
	if _, err := f.NewSheet(statsSheet); err != nil {
		return nil, fmt.Errorf("failed to add stats sheet: %w", err)
	}
	if err := writeSheet(f, statsSheet, statExportHeaders, statRows(report)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func resultRows(report *models.ExamReport) [][]string {
	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		rows = append(rows, []string{
			r.ExamID,
			r.StudentName,
			r.ExamDate,
			strconv.Itoa(r.CorrectCount),
			strconv.FormatFloat(r.FinalScore, 'f', -1, 64),
			r.Rank,
		})
	}
	return rows
}

func statRows(report *models.ExamReport) [][]string {
	rows := make([][]string, 0, len(report.QuestionStats))
	for _, q := range report.QuestionStats {
		rows = append(rows, []string{
			strconv.Itoa(q.Number),
			string(q.Difficulty),
			q.DetailType,
			strconv.Itoa(q.Answer),
			strconv.Itoa(q.Attempts),
			strconv.Itoa(q.CorrectCount),
			strconv.Itoa(q.ErrorCount),
			strconv.FormatFloat(q.ErrorRate, 'f', -1, 64),
		})
	}
	return rows
}

// ===== SHARED WRITERS =====

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func writeWorkbook(sheet string, headers []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), sheet)
	if err := writeSheet(f, sheet, headers, rows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]string) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("bad header coordinate: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header cell: %w", err)
		}
	}
	for rowIdx, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("bad cell coordinate: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}
	return nil
}

// ===== ROW HELPERS =====

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func cellAt(row []string, headerIdx map[string]int, aliases []string) string {
	for _, alias := range aliases {
		i, ok := headerIdx[alias]
		if !ok || i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			return v
		}
	}
	return ""
}
