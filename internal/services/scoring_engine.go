package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/registry"
	"github.com/SAP-F-2025/scoring-service/internal/utils"
)

// ReverseCodingMax is the ceiling used to invert reverse-coded items. It
// assumes 0-3 items whatever range the scale itself declares.
const ReverseCodingMax = 3.0

// UnknownInterpretation is returned when a score falls in no declared range.
var UnknownInterpretation = models.InterpretationRange{
	Severity:    "Unknown",
	Description: "Score outside expected range",
	Color:       "#6b7280",
}

// keyFormatters are the column names probed for item n, in priority order.
var keyFormatters = []func(n int) string{
	func(n int) string { return fmt.Sprintf("item_%d", n) },
	func(n int) string { return fmt.Sprintf("%d", n) },
	func(n int) string { return fmt.Sprintf("q%d", n) },
	func(n int) string { return fmt.Sprintf("Q%d", n) },
	func(n int) string { return fmt.Sprintf("Item%d", n) },
	func(n int) string { return fmt.Sprintf("item%d", n) },
}

type ScoringEngine struct {
	registry *registry.Registry
	detector *FormatDetector
	logger   *slog.Logger
	workers  int
}

// NewScoringEngine creates an engine over a loaded registry. workers bounds
// how many participants are scored at once; zero or less uses GOMAXPROCS.
func NewScoringEngine(reg *registry.Registry, detector *FormatDetector, logger *slog.Logger, workers int) *ScoringEngine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if detector == nil {
		detector = NewFormatDetector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoringEngine{
		registry: reg,
		detector: detector,
		logger:   logger,
		workers:  workers,
	}
}

func (e *ScoringEngine) GetAvailableScales() []models.Scale {
	return e.registry.Scales()
}

func (e *ScoringEngine) GetScale(id string) (*models.Scale, bool) {
	scale, ok := e.registry.Scale(id)
	if !ok {
		return nil, false
	}
	return &scale, true
}

// DetectFormat exposes the engine's detector.
func (e *ScoringEngine) DetectFormat(records []models.FileUploadData) *models.FormatDetectionResult {
	return e.detector.DetectFormat(records)
}

// ValidateResponses checks records against the scale with the given id. An
// unknown id yields an invalid result rather than an error.
func (e *ScoringEngine) ValidateResponses(records []models.FileUploadData, scaleID string) *models.ValidationResult {
	scale, _ := e.GetScale(scaleID)
	return e.detector.ValidateResponses(records, scale)
}

// BatchResult is a scored batch together with what was learned about it.
type BatchResult struct {
	Scale     models.Scale                  `json:"scale"`
	Detection *models.FormatDetectionResult `json:"detection"`
	Results   []*models.ProcessedResult     `json:"results"`
	Summary   *models.ResultSummary         `json:"summary"`
}

// ProcessResponses scores every record against a scale. The batch format is
// detected once and shared by all participants. Per-item problems end up in
// the participant's ProcessingErrors; the only errors returned are an
// unknown scale and a cancelled context.
func (e *ScoringEngine) ProcessResponses(ctx context.Context, records []models.FileUploadData, scaleID string) ([]*models.ProcessedResult, error) {
	batch, err := e.ScoreBatch(ctx, records, scaleID)
	if err != nil {
		return nil, err
	}
	return batch.Results, nil
}

// ScoreBatch is ProcessResponses returning the detection and summary too.
func (e *ScoringEngine) ScoreBatch(ctx context.Context, records []models.FileUploadData, scaleID string) (*BatchResult, error) {
	scale, ok := e.registry.Scale(scaleID)
	if !ok {
		return nil, scaleNotFound(scaleID)
	}

	start := time.Now()
	detection := e.detector.DetectFormat(records)
	run := &scoringRun{
		engine: e,
		scale:  scale,
		items:  e.registry.Items(scaleID),
		format: detection.DetectedFormat,
	}
	run.rangeMin, run.rangeMax, run.hasRange = utils.ParseExpectedRange(scale.ExpectedRange)

	results := make([]*models.ProcessedResult, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = run.score(gctx, i, records[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Debug("Scored batch",
		"scale_id", scaleID,
		"participants", len(results),
		"detected_format", detection.DetectedFormat,
		"duration", time.Since(start),
	)

	return &BatchResult{
		Scale:     scale,
		Detection: detection,
		Results:   results,
		Summary:   Summarize(results),
	}, nil
}

// scoringRun carries what every participant of one batch shares.
type scoringRun struct {
	engine   *ScoringEngine
	scale    models.Scale
	items    []models.ScaleItem
	format   models.ResponseFormat
	rangeMin float64
	rangeMax float64
	hasRange bool
}

func (r *scoringRun) score(ctx context.Context, index int, record models.FileUploadData) *models.ProcessedResult {
	participantID := record.ParticipantID
	if strings.TrimSpace(participantID) == "" {
		participantID = fmt.Sprintf("participant-%d", index+1)
	}

	scores := make(map[int]float64, len(r.items))
	processingErrors := []string{}
	total := 0.0
	scored := 0

	for _, item := range r.items {
		raw, found := resolveResponse(record.Responses, item.ItemNumber)
		if !found || strings.TrimSpace(raw) == "" {
			processingErrors = append(processingErrors, fmt.Sprintf("Missing response for item %d", item.ItemNumber))
			continue
		}

		value, ok := r.convert(ctx, participantID, item, raw)
		if !ok {
			processingErrors = append(processingErrors, fmt.Sprintf("Could not convert \"%s\" for item %d", raw, item.ItemNumber))
			continue
		}
		if item.IsReverseCoded {
			value = ReverseCodingMax - value
		}

		scores[item.ItemNumber] = value
		total += value
		scored++
	}

	finalScore := total
	if r.scale.ScoringType == models.ScoringAverage {
		finalScore = 0
		if scored > 0 {
			finalScore = total / float64(scored)
		}
	}

	interpretation := Interpret(r.scale, finalScore)

	return &models.ProcessedResult{
		ID:               fmt.Sprintf("result-%d", index+1),
		ParticipantID:    participantID,
		Responses:        record.Responses,
		Scores:           scores,
		TotalScore:       finalScore,
		Interpretation:   interpretation.Description,
		Severity:         interpretation.Severity,
		ProcessingErrors: processingErrors,
	}
}

// resolveResponse returns the first non-null value found under the probed
// keys. A blank string still counts as found.
func resolveResponse(responses models.ResponseSet, itemNumber int) (string, bool) {
	for _, format := range keyFormatters {
		value, ok := responses.Lookup(format(itemNumber))
		if ok && !value.IsNull() {
			return value.String(), true
		}
	}
	return "", false
}

func (r *scoringRun) convert(ctx context.Context, participantID string, item models.ScaleItem, raw string) (float64, bool) {
	switch r.format {
	case models.FormatNumeric:
		return r.convertNumeric(ctx, participantID, item, raw)
	case models.FormatText:
		return r.convertText(item, raw)
	default:
		if value, ok := r.convertNumeric(ctx, participantID, item, raw); ok {
			return value, true
		}
		return r.convertText(item, raw)
	}
}

func (r *scoringRun) convertNumeric(ctx context.Context, participantID string, item models.ScaleItem, raw string) (float64, bool) {
	value, ok := utils.ParseNumber(raw)
	if !ok {
		return 0, false
	}
	if r.hasRange && (value < r.rangeMin || value > r.rangeMax) {
		r.engine.logger.WarnContext(ctx, "Response outside expected range",
			"scale_id", r.scale.ID,
			"participant_id", participantID,
			"item_number", item.ItemNumber,
			"value", value,
			"expected_range", r.scale.ExpectedRange,
		)
	}
	return value, true
}

func (r *scoringRun) convertText(item models.ScaleItem, raw string) (float64, bool) {
	answer := strings.ToLower(strings.TrimSpace(raw))

	var value float64
	matched := false
	r.engine.registry.EachMapping(item.ID, func(m models.ResponseMapping) bool {
		if mappingMatches(m, answer) {
			value, matched = m.NumericValue, true
			return false
		}
		return true
	})
	if matched {
		return value, true
	}

	return utils.ParseLeadingInt(raw)
}

func mappingMatches(m models.ResponseMapping, answer string) bool {
	if strings.ToLower(m.TextResponse) == answer {
		return true
	}
	for _, alias := range m.Aliases {
		if strings.ToLower(alias) == answer {
			return true
		}
	}
	return false
}

// Interpret returns the first declared range containing score, or
// UnknownInterpretation.
func Interpret(scale models.Scale, score float64) models.InterpretationRange {
	for _, r := range scale.InterpretationRanges {
		if r.Contains(score) {
			return r
		}
	}
	return UnknownInterpretation
}
