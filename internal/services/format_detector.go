package services

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/utils"
)

const (
	numericThreshold = 0.9
	textThreshold    = 0.1
	mixedConfidence  = 0.5
	maxSamples       = 10
)

var formatRecommendations = map[models.ResponseFormat][]string{
	models.FormatNumeric: {
		"Detected numeric responses - will validate against expected range",
		"Ensure all values are within the scale's expected range",
	},
	models.FormatText: {
		"Detected text responses - will convert using response mappings",
		"Verify that all text responses have corresponding mappings",
	},
	models.FormatMixed: {
		"Mixed format detected - review data for consistency",
		"Consider standardizing response format for better accuracy",
	},
}

// FormatDetector classifies the dominant encoding of a batch of responses.
// It holds no state and is safe for concurrent use.
type FormatDetector struct{}

func NewFormatDetector() *FormatDetector {
	return &FormatDetector{}
}

// DetectFormat counts numeric and text answers over every response column
// of every record and classifies the batch by the share of numeric ones.
func (d *FormatDetector) DetectFormat(records []models.FileUploadData) *models.FormatDetectionResult {
	if len(records) == 0 {
		return &models.FormatDetectionResult{
			DetectedFormat:   models.FormatText,
			Confidence:       0,
			SampleResponses:  []string{},
			ValidationErrors: []string{"No data provided"},
			Recommendations:  []string{"Upload a valid CSV or Excel file with response data"},
		}
	}

	var numericCount, textCount int
	samples := make([]string, 0, maxSamples)

	eachAnswer(records, func(key, value string) {
		if _, ok := utils.ParseNumber(value); ok {
			numericCount++
		} else {
			textCount++
		}
		if len(samples) < maxSamples {
			samples = append(samples, fmt.Sprintf("%s: %s", key, value))
		}
	})

	total := numericCount + textCount
	ratio := 0.0
	if total > 0 {
		ratio = float64(numericCount) / float64(total)
	}

	var format models.ResponseFormat
	var confidence float64
	switch {
	case ratio >= numericThreshold:
		format, confidence = models.FormatNumeric, ratio
	case ratio <= textThreshold:
		format, confidence = models.FormatText, 1-ratio
	default:
		format, confidence = models.FormatMixed, mixedConfidence
	}

	return &models.FormatDetectionResult{
		DetectedFormat:   format,
		Confidence:       confidence,
		NumericResponses: numericCount,
		TextResponses:    textCount,
		TotalResponses:   total,
		SampleResponses:  samples,
		ValidationErrors: []string{},
		Recommendations:  append([]string(nil), formatRecommendations[format]...),
	}
}

// ValidateResponses cross-checks a batch against the format and expected
// range a scale declares. Only a numeric scale receiving text is an error;
// everything else is reported as a warning.
func (d *FormatDetector) ValidateResponses(records []models.FileUploadData, scale *models.Scale) *models.ValidationResult {
	if scale == nil {
		return &models.ValidationResult{
			IsValid:  false,
			Errors:   []string{"Scale not found"},
			Warnings: []string{},
		}
	}

	detection := d.DetectFormat(records)
	errs := []string{}
	warnings := []string{}

	if scale.ResponseFormat == models.FormatNumeric && detection.DetectedFormat == models.FormatText {
		errs = append(errs, "Scale expects numeric responses but text responses detected")
	}
	if scale.ResponseFormat == models.FormatText && detection.DetectedFormat == models.FormatNumeric {
		warnings = append(warnings, "Scale expects text responses but numeric responses detected - will attempt conversion")
	}

	if detection.DetectedFormat == models.FormatNumeric || detection.DetectedFormat == models.FormatMixed {
		if outOfRange := countOutOfRange(records, scale.ExpectedRange); outOfRange > 0 {
			warnings = append(warnings, fmt.Sprintf("%d responses outside expected range: %s", outOfRange, scale.ExpectedRange))
		}
	}

	return &models.ValidationResult{
		IsValid:  len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}
}

// countOutOfRange returns 0 when expectedRange cannot be parsed.
func countOutOfRange(records []models.FileUploadData, expectedRange string) int {
	min, max, ok := utils.ParseExpectedRange(expectedRange)
	if !ok {
		return 0
	}

	count := 0
	eachAnswer(records, func(_, value string) {
		if n, ok := utils.ParseNumber(value); ok && (n < min || n > max) {
			count++
		}
	})
	return count
}

// eachAnswer visits the trimmed, non-blank answers of a batch in record
// order, then column order. Identifier columns are skipped.
func eachAnswer(records []models.FileUploadData, fn func(key, value string)) {
	for _, record := range records {
		for _, entry := range record.Responses {
			if isIdentifierColumn(entry.Key) {
				continue
			}
			value := strings.TrimSpace(entry.Value.String())
			if isBlankAnswer(value) {
				continue
			}
			fn(entry.Key, value)
		}
	}
}

func isIdentifierColumn(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "participant") || strings.Contains(lower, "id")
}

func isBlankAnswer(value string) bool {
	return value == "" || value == "null" || value == "undefined"
}
