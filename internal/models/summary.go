package models

// ResultSummary aggregates a batch of results. Statistics only cover
// results without processing errors.
type ResultSummary struct {
	TotalParticipants    int            `json:"total_participants"`
	ValidResults         int            `json:"valid_results"`
	ErrorCount           int            `json:"error_count"`
	AverageScore         float64        `json:"average_score"`
	MinScore             float64        `json:"min_score"`
	MaxScore             float64        `json:"max_score"`
	SeverityDistribution map[string]int `json:"severity_distribution"`
}
