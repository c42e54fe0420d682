package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/scoring-service/internal/models"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExportFile is a rendered export ready to be sent as a download.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportDocument is the JSON export layout.
type ExportDocument struct {
	Session *models.UploadSession     `json:"session,omitempty"`
	Scale   models.Scale              `json:"scale"`
	Results []*models.ProcessedResult `json:"results"`
	Summary *models.ResultSummary     `json:"summary"`
}

type ExportService struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewExportService(logger *slog.Logger) *ExportService {
	return &ExportService{
		logger: logger,
		now:    time.Now,
	}
}

// Export renders results in the requested format. session may be nil for
// results that were never saved.
func (s *ExportService) Export(format models.ExportFormat, scale models.Scale, session *models.UploadSession, results []*models.ProcessedResult) (*ExportFile, error) {
	var (
		data        []byte
		contentType string
		err         error
	)

	switch format {
	case models.ExportCSV:
		data, contentType = s.ExportCSV(results), "text/csv"
	case models.ExportJSON:
		data, err = s.ExportJSON(scale, session, results)
		contentType = "application/json"
	case models.ExportXLSX:
		data, err = s.ExportExcel(results)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExport, format)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Exported results", "scale_id", scale.ID, "format", format, "results", len(results), "bytes", len(data))

	return &ExportFile{
		FileName:    s.FileName(scale, format),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// FileName builds "{scale name}_results_{date}.{ext}" with whitespace runs
// in the scale name replaced by underscores.
func (s *ExportService) FileName(scale models.Scale, format models.ExportFormat) string {
	name := whitespaceRun.ReplaceAllString(scale.Name, "_")
	return fmt.Sprintf("%s_results_%s.%s", name, s.now().UTC().Format("2006-01-02"), format)
}

// ExportCSV writes one quoted row per result. Item columns follow the item
// numbers scored for the first result.
func (s *ExportService) ExportCSV(results []*models.ProcessedResult) []byte {
	headers, items := resultHeaders(results)

	lines := make([]string, 0, len(results)+1)
	lines = append(lines, quoteRow(headers))
	for _, result := range results {
		lines = append(lines, quoteRow(resultRow(result, items)))
	}
	return []byte(strings.Join(lines, "\n"))
}

func (s *ExportService) ExportJSON(scale models.Scale, session *models.UploadSession, results []*models.ProcessedResult) ([]byte, error) {
	if session != nil {
		// Results are exported once, in their processed form.
		stripped := *session
		stripped.Results = nil
		session = &stripped
	}

	doc := ExportDocument{
		Session: session,
		Scale:   scale,
		Results: results,
		Summary: Summarize(results),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON export: %w", err)
	}
	return data, nil
}

// ExportExcel writes the CSV columns to a Results sheet and the batch
// summary to a Summary sheet.
func (s *ExportService) ExportExcel(results []*models.ProcessedResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers, items := resultHeaders(results)
	if err := writeSheetRow(f, resultsSheet, 1, toCells(headers)); err != nil {
		return nil, err
	}

	for rowIndex, result := range results {
		row := []interface{}{
			result.ParticipantID,
			result.TotalScore,
			result.Severity,
			result.Interpretation,
			strings.Join(result.ProcessingErrors, "; "),
		}
		for _, n := range items {
			if score, ok := result.Scores[n]; ok {
				row = append(row, score)
			} else {
				row = append(row, "")
			}
		}
		if err := writeSheetRow(f, resultsSheet, rowIndex+2, row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	summary := Summarize(results)
	summaryRows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Participants", summary.TotalParticipants},
		{"Valid Results", summary.ValidResults},
		{"Error Count", summary.ErrorCount},
		{"Average Score", summary.AverageScore},
		{"Min Score", summary.MinScore},
		{"Max Score", summary.MaxScore},
		{},
		{"Severity", "Participants"},
	}
	for _, severity := range sortedKeys(summary.SeverityDistribution) {
		summaryRows = append(summaryRows, []interface{}{severity, summary.SeverityDistribution[severity]})
	}
	for i, row := range summaryRows {
		if err := writeSheetRow(f, summarySheet, i+1, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func resultHeaders(results []*models.ProcessedResult) ([]string, []int) {
	headers := []string{"Participant ID", "Total Score", "Severity", "Interpretation", "Processing Errors"}

	var items []int
	if len(results) > 0 {
		for n := range results[0].Scores {
			items = append(items, n)
		}
		sort.Ints(items)
	}
	for _, n := range items {
		headers = append(headers, fmt.Sprintf("Item %d Score", n))
	}
	return headers, items
}

func resultRow(result *models.ProcessedResult, items []int) []string {
	row := []string{
		result.ParticipantID,
		formatScore(result.TotalScore),
		result.Severity,
		result.Interpretation,
		strings.Join(result.ProcessingErrors, "; "),
	}
	for _, n := range items {
		if score, ok := result.Scores[n]; ok {
			row = append(row, formatScore(score))
		} else {
			row = append(row, "")
		}
	}
	return row
}

func quoteRow(cells []string) string {
	quoted := make([]string, len(cells))
	for i, cell := range cells {
		quoted[i] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("invalid cell position: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
