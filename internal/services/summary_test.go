package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/scoring-service/internal/models"
)

func TestSummarize(t *testing.T) {
	t.Run("no results", func(t *testing.T) {
		summary := Summarize(nil)

		assert.Equal(t, 0, summary.TotalParticipants)
		assert.Equal(t, 0, summary.ValidResults)
		assert.Equal(t, 0.0, summary.AverageScore)
		assert.Equal(t, 0.0, summary.MinScore)
		assert.Equal(t, 0.0, summary.MaxScore)
		assert.NotNil(t, summary.SeverityDistribution)
		assert.Empty(t, summary.SeverityDistribution)
	})

	t.Run("errors are excluded from statistics", func(t *testing.T) {
		results := []*models.ProcessedResult{
			{TotalScore: 12, Severity: "Moderate"},
			{TotalScore: 3, Severity: "Minimal"},
			{TotalScore: 27, Severity: "Severe", ProcessingErrors: []string{"Missing response for item 9"}},
			{TotalScore: 6, Severity: "Mild", ProcessingErrors: []string{}},
		}

		summary := Summarize(results)

		assert.Equal(t, 4, summary.TotalParticipants)
		assert.Equal(t, 3, summary.ValidResults)
		assert.Equal(t, 1, summary.ErrorCount)
		assert.Equal(t, 7.0, summary.AverageScore)
		assert.Equal(t, 3.0, summary.MinScore)
		assert.Equal(t, 12.0, summary.MaxScore)
		assert.Equal(t, map[string]int{"Moderate": 1, "Minimal": 1, "Mild": 1}, summary.SeverityDistribution)
	})

	t.Run("only errors", func(t *testing.T) {
		summary := Summarize([]*models.ProcessedResult{
			{TotalScore: 5, Severity: "Mild", ProcessingErrors: []string{"x"}},
		})

		assert.Equal(t, 1, summary.ErrorCount)
		assert.Equal(t, 0, summary.ValidResults)
		assert.Equal(t, 0.0, summary.AverageScore)
		assert.Equal(t, 0.0, summary.MinScore)
		assert.Empty(t, summary.SeverityDistribution)
	})
}
