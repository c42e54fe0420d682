package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/registry"
	"github.com/SAP-F-2025/scoring-service/internal/utils"
)

// testRegistry has a three item sum scale whose third item is reverse
// coded, and a two item average scale. The sum scale's ranges overlap at 3.
func testRegistry() *registry.Registry {
	options := []struct {
		text    string
		value   float64
		aliases []string
	}{
		{"Never", 0, []string{"not at all"}},
		{"Sometimes", 1, nil},
		{"Often", 2, []string{"most days"}},
		{"Always", 3, nil},
	}

	snapshot := registry.Snapshot{
		Scales: []models.Scale{
			{
				ID:             "sum-scale",
				Name:           "Sum Scale",
				TotalItems:     3,
				ScoringType:    models.ScoringSum,
				ResponseFormat: models.FormatMixed,
				MinScore:       0,
				MaxScore:       9,
				ExpectedRange:  "0-3",
				InterpretationRanges: []models.InterpretationRange{
					{MinScore: 0, MaxScore: 3, Severity: "Low", Description: "Low symptoms"},
					{MinScore: 3, MaxScore: 9, Severity: "High", Description: "High symptoms"},
				},
			},
			{
				ID:             "avg-scale",
				Name:           "Average Scale",
				TotalItems:     2,
				ScoringType:    models.ScoringAverage,
				ResponseFormat: models.FormatNumeric,
				MaxScore:       3,
				ExpectedRange:  "0-3",
				InterpretationRanges: []models.InterpretationRange{
					{MinScore: 0, MaxScore: 1.5, Severity: "Low", Description: "Low"},
					{MinScore: 1.6, MaxScore: 3, Severity: "High", Description: "High"},
				},
			},
			{
				ID:             "weighted-scale",
				Name:           "Weighted Scale",
				TotalItems:     2,
				ScoringType:    models.ScoringWeighted,
				ResponseFormat: models.FormatNumeric,
				MinScore:       2,
				MaxScore:       10,
				ExpectedRange:  "1-5",
				InterpretationRanges: []models.InterpretationRange{
					{MinScore: 0, MaxScore: 4, Severity: "Low", Description: "Low"},
					{MinScore: 5, MaxScore: 10, Severity: "High", Description: "High"},
				},
			},
		},
		Items: []models.ScaleItem{
			{ID: "sum-1", ScaleID: "sum-scale", ItemNumber: 1, ResponseType: models.ResponseLikert},
			{ID: "sum-3", ScaleID: "sum-scale", ItemNumber: 3, ResponseType: models.ResponseLikert, IsReverseCoded: true},
			{ID: "sum-2", ScaleID: "sum-scale", ItemNumber: 2, ResponseType: models.ResponseLikert},
			{ID: "avg-1", ScaleID: "avg-scale", ItemNumber: 1, ResponseType: models.ResponseLikert},
			{ID: "avg-2", ScaleID: "avg-scale", ItemNumber: 2, ResponseType: models.ResponseLikert},
			{ID: "w-1", ScaleID: "weighted-scale", ItemNumber: 1, ResponseType: models.ResponseLikert},
			{ID: "w-2", ScaleID: "weighted-scale", ItemNumber: 2, ResponseType: models.ResponseLikert, IsReverseCoded: true},
		},
	}
	for _, itemID := range []string{"sum-1", "sum-2", "sum-3"} {
		for k, opt := range options {
			snapshot.Mappings = append(snapshot.Mappings, models.ResponseMapping{
				ID:           fmt.Sprintf("%s-%d", itemID, k),
				ScaleItemID:  itemID,
				TextResponse: opt.text,
				NumericValue: opt.value,
				Aliases:      opt.aliases,
			})
		}
	}
	return registry.New(snapshot)
}

func newTestEngine(workers int) *ScoringEngine {
	return NewScoringEngine(testRegistry(), NewFormatDetector(), utils.NewDiscardLogger(), workers)
}

func record(participantID string, pairs ...string) models.FileUploadData {
	return models.FileUploadData{
		ParticipantID: participantID,
		Responses:     models.ResponsesFromStrings(pairs...),
	}
}

func TestScoringEngine_NumericBatch(t *testing.T) {
	engine := newTestEngine(2)

	batch, err := engine.ScoreBatch(context.Background(), []models.FileUploadData{
		record("p1", "item_1", "1", "item_2", "2", "item_3", "0"),
		record("p2", "item_1", "0", "item_2", "0", "item_3", "3"),
	}, "sum-scale")
	require.NoError(t, err)

	assert.Equal(t, models.FormatNumeric, batch.Detection.DetectedFormat)
	require.Len(t, batch.Results, 2)

	first := batch.Results[0]
	assert.Equal(t, "result-1", first.ID)
	assert.Equal(t, "p1", first.ParticipantID)
	assert.Equal(t, map[int]float64{1: 1, 2: 2, 3: 3}, first.Scores)
	assert.Equal(t, 6.0, first.TotalScore)
	assert.Equal(t, "High", first.Severity)
	assert.Equal(t, "High symptoms", first.Interpretation)
	assert.Empty(t, first.ProcessingErrors)

	second := batch.Results[1]
	assert.Equal(t, "result-2", second.ID)
	assert.Equal(t, map[int]float64{1: 0, 2: 0, 3: 0}, second.Scores)
	assert.Equal(t, 0.0, second.TotalScore)
	assert.Equal(t, "Low", second.Severity)

	assert.Equal(t, 2, batch.Summary.TotalParticipants)
	assert.Equal(t, 2, batch.Summary.ValidResults)
	assert.Equal(t, 3.0, batch.Summary.AverageScore)
}

func TestScoringEngine_ZeroIsNotMissing(t *testing.T) {
	engine := newTestEngine(1)

	var rec models.FileUploadData
	require.NoError(t, json.Unmarshal([]byte(`{"participant_id":"p1","responses":{"item_1":0,"item_2":0,"item_3":3}}`), &rec))

	results, err := engine.ProcessResponses(context.Background(), []models.FileUploadData{rec}, "sum-scale")
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Empty(t, results[0].ProcessingErrors)
	assert.Equal(t, map[int]float64{1: 0, 2: 0, 3: 0}, results[0].Scores)
}

func TestScoringEngine_MissingResponses(t *testing.T) {
	engine := newTestEngine(1)

	rec := record("p1", "item_1", "2", "item_3", "  ")
	rec.Responses.Set("item_2", models.NullResponseValue())

	results, err := engine.ProcessResponses(context.Background(), []models.FileUploadData{rec}, "sum-scale")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Missing response for item 2",
		"Missing response for item 3",
	}, results[0].ProcessingErrors)
	assert.Equal(t, map[int]float64{1: 2}, results[0].Scores)
	assert.Equal(t, 2.0, results[0].TotalScore)
}

func TestScoringEngine_TextBatch(t *testing.T) {
	engine := newTestEngine(1)

	batch, err := engine.ScoreBatch(context.Background(), []models.FileUploadData{
		record("p1", "item_1", "Not At All", "item_2", "OFTEN", "item_3", " always "),
	}, "sum-scale")
	require.NoError(t, err)

	assert.Equal(t, models.FormatText, batch.Detection.DetectedFormat)
	result := batch.Results[0]
	assert.Empty(t, result.ProcessingErrors)
	assert.Equal(t, map[int]float64{1: 0, 2: 2, 3: 0}, result.Scores)
	assert.Equal(t, 2.0, result.TotalScore)
}

func TestScoringEngine_TextFallsBackToLeadingNumber(t *testing.T) {
	engine := newTestEngine(1)

	results, err := engine.ProcessResponses(context.Background(), []models.FileUploadData{
		record("p1", "item_1", "2 - often", "item_2", "Never", "item_3", "banana"),
	}, "sum-scale")
	require.NoError(t, err)

	result := results[0]
	assert.Equal(t, 2.0, result.Scores[1])
	assert.Equal(t, 0.0, result.Scores[2])
	assert.Equal(t, []string{`Could not convert "banana" for item 3`}, result.ProcessingErrors)
}

func TestScoringEngine_MixedBatchTriesNumberThenText(t *testing.T) {
	engine := newTestEngine(1)

	batch, err := engine.ScoreBatch(context.Background(), []models.FileUploadData{
		record("p1", "item_1", "1", "item_2", "Often", "item_3", "2"),
	}, "sum-scale")
	require.NoError(t, err)

	assert.Equal(t, models.FormatMixed, batch.Detection.DetectedFormat)
	assert.Equal(t, map[int]float64{1: 1, 2: 2, 3: 1}, batch.Results[0].Scores)
}

func TestScoringEngine_KeyFormats(t *testing.T) {
	engine := newTestEngine(1)

	t.Run("alternate spellings", func(t *testing.T) {
		results, err := engine.ProcessResponses(context.Background(), []models.FileUploadData{
			record("p1", "q1", "1", "Q2", "1", "Item3", "3"),
		}, "sum-scale")
		require.NoError(t, err)
		assert.Equal(t, map[int]float64{1: 1, 2: 1, 3: 0}, results[0].Scores)
	})

	t.Run("item_n wins over qn", func(t *testing.T) {
		results, err := engine.ProcessResponses(context.Background(), []models.FileUploadData{
			record("p1", "q1", "3", "item_1", "1", "2", "2", "item3", "3"),
		}, "sum-scale")
		require.NoError(t, err)
		assert.Equal(t, map[int]float64{1: 1, 2: 2, 3: 0}, results[0].Scores)
	})
}

func TestScoringEngine_NullFallsThroughToNextKey(t *testing.T) {
	engine := newTestEngine(1)

	var rec models.FileUploadData
	require.NoError(t, json.Unmarshal([]byte(`{"participant_id":"p1","responses":{"item_1":null,"1":"2","item_2":1,"q3":3}}`), &rec))

	results, err := engine.ProcessResponses(context.Background(), []models.FileUploadData{rec}, "sum-scale")
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, map[int]float64{1: 2, 2: 1, 3: 0}, results[0].Scores)
	assert.Empty(t, results[0].ProcessingErrors)
}

func TestScoringEngine_WeightedScoresLikeSum(t *testing.T) {
	engine := newTestEngine(1)

	results, err := engine.ProcessResponses(context.Background(), []models.FileUploadData{
		record("p1", "item_1", "4", "2", "5"),
		record("p2", "item_1", "5", "item_2", "1"),
	}, "weighted-scale")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Reverse coding is 3 - value even though this scale runs 1-5.
	assert.Equal(t, map[int]float64{1: 4, 2: -2}, results[0].Scores)
	assert.Equal(t, 2.0, results[0].TotalScore)
	assert.Equal(t, "Low", results[0].Severity)

	assert.Equal(t, map[int]float64{1: 5, 2: 2}, results[1].Scores)
	assert.Equal(t, 7.0, results[1].TotalScore)
	assert.Equal(t, "High", results[1].Severity)

	for _, result := range results {
		sum := 0.0
		for _, score := range result.Scores {
			sum += score
		}
		assert.Equal(t, sum, result.TotalScore)
	}
}

func TestScoringEngine_AverageScoring(t *testing.T) {
	engine := newTestEngine(1)

	results, err := engine.ProcessResponses(context.Background(), []models.FileUploadData{
		record("p1", "item_1", "1", "item_2", "2"),
		record("p2", "item_1", "3"),
	}, "avg-scale")
	require.NoError(t, err)

	assert.Equal(t, 1.5, results[0].TotalScore)
	assert.Equal(t, "Low", results[0].Severity)

	// Averaged over the items that scored.
	assert.Equal(t, 3.0, results[1].TotalScore)
	assert.Equal(t, []string{"Missing response for item 2"}, results[1].ProcessingErrors)
}

func TestScoringEngine_GapBetweenRangesIsUnknown(t *testing.T) {
	engine := newTestEngine(1)

	results, err := engine.ProcessResponses(context.Background(), []models.FileUploadData{
		record("p1", "item_1", "1.5", "item_2", "1.6"),
	}, "avg-scale")
	require.NoError(t, err)

	assert.InDelta(t, 1.55, results[0].TotalScore, 1e-9)
	assert.Equal(t, UnknownInterpretation.Severity, results[0].Severity)
	assert.Equal(t, UnknownInterpretation.Description, results[0].Interpretation)
}

func TestScoringEngine_ParticipantFallback(t *testing.T) {
	engine := newTestEngine(1)

	results, err := engine.ProcessResponses(context.Background(), []models.FileUploadData{
		record("p1", "item_1", "1", "item_2", "1", "item_3", "1"),
		record("  ", "item_1", "1", "item_2", "1", "item_3", "1"),
	}, "sum-scale")
	require.NoError(t, err)

	assert.Equal(t, "p1", results[0].ParticipantID)
	assert.Equal(t, "participant-2", results[1].ParticipantID)
	assert.Equal(t, "result-2", results[1].ID)
}

func TestScoringEngine_UnknownScale(t *testing.T) {
	engine := newTestEngine(1)

	_, err := engine.ProcessResponses(context.Background(), []models.FileUploadData{
		record("p1", "item_1", "1"),
	}, "missing")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrScaleNotFound))
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "missing")
}

func TestScoringEngine_EmptyBatch(t *testing.T) {
	engine := newTestEngine(1)

	batch, err := engine.ScoreBatch(context.Background(), nil, "sum-scale")
	require.NoError(t, err)

	assert.Empty(t, batch.Results)
	assert.Equal(t, 0, batch.Summary.TotalParticipants)
	assert.Equal(t, []string{"No data provided"}, batch.Detection.ValidationErrors)
}

func TestScoringEngine_Cancelled(t *testing.T) {
	engine := newTestEngine(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.ScoreBatch(ctx, []models.FileUploadData{
		record("p1", "item_1", "1"),
		record("p2", "item_1", "2"),
	}, "sum-scale")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestScoringEngine_OrderIsStableAcrossWorkers(t *testing.T) {
	records := make([]models.FileUploadData, 200)
	for i := range records {
		v := fmt.Sprintf("%d", i%4)
		records[i] = record(fmt.Sprintf("p%d", i), "item_1", v, "item_2", v, "item_3", v)
	}

	sequential, err := newTestEngine(1).ProcessResponses(context.Background(), records, "sum-scale")
	require.NoError(t, err)
	parallel, err := newTestEngine(8).ProcessResponses(context.Background(), records, "sum-scale")
	require.NoError(t, err)

	require.Len(t, parallel, len(sequential))
	for i := range sequential {
		assert.Equal(t, sequential[i], parallel[i])
		assert.Equal(t, fmt.Sprintf("p%d", i), parallel[i].ParticipantID)
	}
}

func TestScoringEngine_ScaleLookups(t *testing.T) {
	engine := newTestEngine(1)

	scales := engine.GetAvailableScales()
	require.Len(t, scales, 3)
	assert.Equal(t, "sum-scale", scales[0].ID)
	assert.Equal(t, "avg-scale", scales[1].ID)
	assert.Equal(t, "weighted-scale", scales[2].ID)

	scale, ok := engine.GetScale("avg-scale")
	require.True(t, ok)
	assert.Equal(t, models.ScoringAverage, scale.ScoringType)

	// Callers get a copy.
	scale.InterpretationRanges[0].Severity = "changed"
	again, _ := engine.GetScale("avg-scale")
	assert.Equal(t, "Low", again.InterpretationRanges[0].Severity)

	_, ok = engine.GetScale("nope")
	assert.False(t, ok)
}

func TestScoringEngine_ValidateResponsesUnknownScale(t *testing.T) {
	engine := newTestEngine(1)

	result := engine.ValidateResponses([]models.FileUploadData{record("p1", "item_1", "1")}, "nope")
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{"Scale not found"}, result.Errors)
}

func TestInterpret(t *testing.T) {
	scale := models.Scale{
		InterpretationRanges: []models.InterpretationRange{
			{MinScore: 0, MaxScore: 4, Severity: "Minimal"},
			{MinScore: 4, MaxScore: 9, Severity: "Mild"},
		},
	}

	tests := []struct {
		score    float64
		severity string
	}{
		{0, "Minimal"},
		{4, "Minimal"},
		{4.5, "Mild"},
		{9, "Mild"},
		{-1, "Unknown"},
		{42, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("score %v", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.severity, Interpret(scale, tt.score).Severity)
		})
	}
}

func TestNewScoringEngine_Defaults(t *testing.T) {
	engine := NewScoringEngine(testRegistry(), nil, nil, 0)

	assert.NotNil(t, engine.detector)
	assert.NotNil(t, engine.logger)
	assert.Positive(t, engine.workers)

	batch, err := engine.ScoreBatch(context.Background(), []models.FileUploadData{
		record("p1", "item_1", "9", "item_2", "1", "item_3", "1"),
	}, "sum-scale")
	require.NoError(t, err)
	assert.Equal(t, 12.0, batch.Results[0].TotalScore)
}
