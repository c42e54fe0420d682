package models

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestResponseSet_UnmarshalKeepsOrderAndLiterals(t *testing.T) {
	var data FileUploadData
	require.NoError(t, json.Unmarshal([]byte(`{
		"participant_id": "p1",
		"responses": {"q2": 0, "q1": "Often", "q3": null, "q4": true, "q5": 1.50, "q6": ""}
	}`), &data))

	require.Len(t, data.Responses, 6)
	keys := make([]string, len(data.Responses))
	for i, e := range data.Responses {
		keys[i] = e.Key
	}
	assert.Equal(t, []string{"q2", "q1", "q3", "q4", "q5", "q6"}, keys)

	zero, ok := data.Responses.Lookup("q2")
	require.True(t, ok)
	assert.False(t, zero.IsNull())
	assert.Equal(t, "0", zero.String())

	null, ok := data.Responses.Lookup("q3")
	require.True(t, ok)
	assert.True(t, null.IsNull())
	assert.Equal(t, "null", null.String())

	b, _ := data.Responses.Lookup("q4")
	assert.Equal(t, "true", b.String())

	f, _ := data.Responses.Lookup("q5")
	assert.Equal(t, "1.50", f.String())

	blank, _ := data.Responses.Lookup("q6")
	assert.False(t, blank.IsNull())
	assert.Equal(t, "", blank.String())

	_, ok = data.Responses.Lookup("missing")
	assert.False(t, ok)
}

func TestResponseSet_MarshalRoundTrip(t *testing.T) {
	rs := ResponsesFromStrings("item_2", "1", "item_1", "Never")
	rs.Set("item_3", NullResponseValue())
	rs.Set("item_2", NewResponseValue("3"))

	data, err := json.Marshal(rs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"item_2":"3","item_1":"Never","item_3":null}`, string(data))
	assert.Equal(t, `{"item_2":"3","item_1":"Never","item_3":null}`, string(data))

	var back ResponseSet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, rs, back)
}

func TestResponseSet_UnmarshalRejectsNonObjects(t *testing.T) {
	var rs ResponseSet
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &rs))
	assert.Error(t, json.Unmarshal([]byte(`{"a": {"nested": 1}}`), &rs))

	require.NoError(t, json.Unmarshal([]byte(`null`), &rs))
	assert.Nil(t, rs)
}

func TestScoringResult_RoundTrip(t *testing.T) {
	original := &ProcessedResult{
		ID:             "result-1",
		ParticipantID:  "p1",
		Responses:      ResponsesFromStrings("item_1", "2", "item_2", "Often"),
		Scores:         map[int]float64{1: 2, 2: 2},
		TotalScore:     4,
		Interpretation: "Minimal",
		Severity:       "Minimal",
	}

	row, err := NewScoringResult("session-1", 0, original)
	require.NoError(t, err)
	assert.Equal(t, "session-1", row.SessionID)
	assert.Equal(t, "result-1", row.ResultKey)
	assert.JSONEq(t, `[]`, string(row.ProcessingErrors))

	restored, err := row.ToProcessedResult()
	require.NoError(t, err)

	assert.Equal(t, "session-1", restored.SessionID)
	assert.Equal(t, original.Responses, restored.Responses)
	assert.Equal(t, original.Scores, restored.Scores)
	assert.Equal(t, []string{}, restored.ProcessingErrors)
	assert.False(t, restored.HasErrors())
}

func TestInterpretationRange_Contains(t *testing.T) {
	r := InterpretationRange{MinScore: 5, MaxScore: 9}

	assert.True(t, r.Contains(5))
	assert.True(t, r.Contains(9))
	assert.True(t, r.Contains(7.5))
	assert.False(t, r.Contains(4.99))
	assert.False(t, r.Contains(9.01))
}

func TestScoringResult_ColumnTypes(t *testing.T) {
	s, err := schema.Parse(&ScoringResult{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	// jsonb re-sorts object keys, so answers are kept as plain json.
	assert.Equal(t, schema.DataType("json"), s.LookUpField("responses").DataType)
	assert.Equal(t, schema.DataType("jsonb"), s.LookUpField("scores").DataType)
	assert.Equal(t, schema.DataType("jsonb"), s.LookUpField("processing_errors").DataType)
}
