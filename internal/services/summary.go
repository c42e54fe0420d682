package services

import (
	"github.com/SAP-F-2025/scoring-service/internal/models"
)

// Summarize aggregates a batch of results. Results with processing errors
// are counted but left out of the score statistics and the severity
// distribution.
func Summarize(results []*models.ProcessedResult) *models.ResultSummary {
	summary := &models.ResultSummary{
		TotalParticipants:    len(results),
		SeverityDistribution: map[string]int{},
	}

	total := 0.0
	for _, r := range results {
		if r.HasErrors() {
			summary.ErrorCount++
			continue
		}

		if summary.ValidResults == 0 || r.TotalScore < summary.MinScore {
			summary.MinScore = r.TotalScore
		}
		if summary.ValidResults == 0 || r.TotalScore > summary.MaxScore {
			summary.MaxScore = r.TotalScore
		}
		summary.ValidResults++
		total += r.TotalScore
		summary.SeverityDistribution[r.Severity]++
	}

	if summary.ValidResults > 0 {
		summary.AverageScore = total / float64(summary.ValidResults)
	}
	return summary
}
