package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

// Import columns. options are separated by "|", correct holds 1-based option
// positions separated by ",". TEXT rows list accepted answers in options.
const (
	columnType        = "type"
	columnText        = "text"
	columnDescription = "description"
	columnScore       = "score"
	columnOptions     = "options"
	columnCorrect     = "correct"

	resultsSheet = "Results"
)

var importRequiredColumns = []string{columnType, columnText, columnOptions}

type importExportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== IMPORT OPERATIONS =====

// ImportQuestions appends the valid rows of a CSV or XLSX sheet to the test.
// Invalid rows are reported and skipped.
func (s *importExportService) ImportQuestions(ctx context.Context, testID uint, reader io.Reader, filename string, userID string) (*ImportResult, error) {
	op := startOperation(ctx, s.logger, "Import questions", "test_id", testID, "filename", filename, "user_id", userID)

	if _, err := loadOwnedTest(ctx, s.repo, nil, testID, userID, false); err != nil {
		op.Done(err)
		return nil, err
	}

	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		rows, err = readCSVRows(reader)
	case ".xlsx":
		rows, err = readExcelRows(reader)
	default:
		err = newValidationError("file", "unsupported file format", ext)
	}
	if err != nil {
		op.Done(err)
		return nil, err
	}

	result, questions, err := s.parseRows(rows)
	if err != nil {
		op.Done(err)
		return nil, err
	}

	if len(questions) > 0 {
		err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
			for _, q := range questions {
				q.TestID = testID
				if err := s.repo.Questions().Create(ctx, tx, q); err != nil {
					return classifyRepoError("import question", ResourceQuestion, testID, err)
				}
			}
			return nil
		})
		if err != nil {
			op.Done(err)
			return nil, err
		}
	}
	result.Questions = questions

	op.Done(nil, "total_rows", result.TotalRows, "success_count", result.SuccessCount, "error_count", result.ErrorCount)
	return result, nil
}

func readCSVRows(reader io.Reader) ([][]string, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, newValidationError("file", "failed to read CSV: "+err.Error(), nil)
	}
	return records, nil
}

func readExcelRows(reader io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, newValidationError("file", "failed to open Excel file", nil)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, newValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	return rows, nil
}

func (s *importExportService) parseRows(rows [][]string) (*ImportResult, []*models.Question, error) {
	if len(rows) < 2 {
		return nil, nil, newValidationError("file", "file must have a header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range importRequiredColumns {
		if _, ok := headerMap[col]; !ok {
			return nil, nil, newValidationError("headers", "missing required column: "+col, col)
		}
	}

	result := &ImportResult{
		TotalRows: len(rows) - 1,
		Errors:    make([]ImportRowError, 0),
	}
	questions := make([]*models.Question, 0, len(rows)-1)

	for i, record := range rows[1:] {
		rowNum := i + 2
		question, rowErrors := s.parseRow(record, headerMap, rowNum)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorCount++
			continue
		}
		questions = append(questions, question)
		result.SuccessCount++
	}
	return result, questions, nil
}

func (s *importExportService) parseRow(record []string, headerMap map[string]int, rowNum int) (*models.Question, []ImportRowError) {
	cell := func(col string) string {
		idx, ok := headerMap[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	req := &QuestionRequest{
		Text:  cell(columnText),
		Type:  strings.ToUpper(cell(columnType)),
		Score: 1,
	}
	if desc := cell(columnDescription); desc != "" {
		req.Description = &desc
	}
	if raw := cell(columnScore); raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, []ImportRowError{{Row: rowNum, Field: columnScore, Message: "score must be a number"}}
		}
		req.Score = score
	}

	correct := make(map[int]bool)
	if raw := cell(columnCorrect); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			pos, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || pos < 1 {
				return nil, []ImportRowError{{Row: rowNum, Field: columnCorrect, Message: "correct must list option positions starting at 1"}}
			}
			correct[pos] = true
		}
	}

	if raw := cell(columnOptions); raw != "" {
		for i, text := range strings.Split(raw, "|") {
			req.Options = append(req.Options, OptionRequest{
				Text:      strings.TrimSpace(text),
				IsCorrect: correct[i+1],
			})
		}
	}
	for pos := range correct {
		if pos > len(req.Options) {
			return nil, []ImportRowError{{Row: rowNum, Field: columnCorrect, Message: fmt.Sprintf("option %d does not exist", pos)}}
		}
	}

	question, err := buildQuestion(s.validator, req)
	if err != nil {
		return nil, rowErrorsFrom(rowNum, err)
	}
	return question, nil
}

func rowErrorsFrom(rowNum int, err error) []ImportRowError {
	var verrs ValidationErrors
	if !asValidationErrors(err, &verrs) {
		return []ImportRowError{{Row: rowNum, Message: err.Error()}}
	}
	out := make([]ImportRowError, 0, len(verrs))
	for _, v := range verrs {
		out = append(out, ImportRowError{Row: rowNum, Field: v.Field, Message: v.Message})
	}
	return out
}

// ===== EXPORT OPERATIONS =====

// ExportTestResults writes one row per finished session of the test.
func (s *importExportService) ExportTestResults(ctx context.Context, testID uint, userID string) ([]byte, error) {
	op := startOperation(ctx, s.logger, "Export test results", "test_id", testID, "user_id", userID)

	test, err := s.repo.Tests().GetWithSessions(ctx, nil, testID)
	if err != nil {
		err = classifyRepoError("export results", ResourceTest, testID, err)
		op.Done(err)
		return nil, err
	}
	if test.AuthorID != userID {
		err = newForbidden(userID, ResourceTest, "export results")
		op.Done(err)
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		op.Done(err)
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []interface{}{
		"Session", "Respondent", "Started At", "Ended At",
		"Correct", "Almost Correct", "Wrong", "Skipped", "Score", "Max Score",
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &headers); err != nil {
		op.Done(err)
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	maxScore := test.MaxScore()
	row := 2
	for _, session := range test.TestSessions {
		if !session.IsFinished() || session.TestResult == nil {
			continue
		}
		result := session.TestResult
		values := []interface{}{
			session.UUID,
			respondentName(&session),
			session.StartedAt.Format(time.RFC3339),
			formatTime(session.EndedAt),
			result.CountCorrect,
			result.CountAlmostCorrect,
			result.CountWrong,
			result.CountSkipped,
			result.Score,
			maxScore,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			op.Done(err)
			return nil, err
		}
		if err := f.SetSheetRow(resultsSheet, cell, &values); err != nil {
			op.Done(err)
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		op.Done(err)
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	op.Done(nil, "rows", row-2)
	return buf.Bytes(), nil
}

func respondentName(session *models.TestSession) string {
	switch {
	case session.GuestName != nil:
		return *session.GuestName
	case session.UserID != nil:
		return *session.UserID
	}
	return ""
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
