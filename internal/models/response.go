package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ResponseValue is a raw cell value from an upload. A null value is kept
// distinct from an empty string: "" is a present-but-blank answer, null is
// an absent one.
type ResponseValue struct {
	raw   string
	valid bool
}

func NewResponseValue(s string) ResponseValue {
	return ResponseValue{raw: s, valid: true}
}

func NullResponseValue() ResponseValue {
	return ResponseValue{}
}

func (v ResponseValue) IsNull() bool {
	return !v.valid
}

// String renders the value the way it would be printed in a sample line;
// null renders as "null".
func (v ResponseValue) String() string {
	if !v.valid {
		return "null"
	}
	return v.raw
}

func (v ResponseValue) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.raw)
}

// UnmarshalJSON accepts strings, numbers, booleans and null. Numbers keep
// their literal text so 0 stays "0" rather than becoming blank.
func (v *ResponseValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ResponseValue{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = NewResponseValue(s)
	case 't', 'f':
		b, err := strconv.ParseBool(string(data))
		if err != nil {
			return fmt.Errorf("invalid response value %s", data)
		}
		*v = NewResponseValue(strconv.FormatBool(b))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid response value %s: %w", data, err)
		}
		*v = NewResponseValue(n.String())
	}
	return nil
}

type ResponseEntry struct {
	Key   string
	Value ResponseValue
}

// ResponseSet is a participant's column→value record. Column order is the
// order in which the columns were declared in the upload.
type ResponseSet []ResponseEntry

// Lookup returns the value stored under key, if the column exists.
func (rs ResponseSet) Lookup(key string) (ResponseValue, bool) {
	for _, e := range rs {
		if e.Key == key {
			return e.Value, true
		}
	}
	return ResponseValue{}, false
}

// Set replaces the value of an existing column in place or appends a new one.
func (rs *ResponseSet) Set(key string, value ResponseValue) {
	for i := range *rs {
		if (*rs)[i].Key == key {
			(*rs)[i].Value = value
			return
		}
	}
	*rs = append(*rs, ResponseEntry{Key: key, Value: value})
}

// ResponsesFromStrings builds a ResponseSet from alternating key/value pairs.
func ResponsesFromStrings(pairs ...string) ResponseSet {
	rs := make(ResponseSet, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		rs.Set(pairs[i], NewResponseValue(pairs[i+1]))
	}
	return rs
}

func (rs ResponseSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range rs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := e.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (rs *ResponseSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*rs = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("responses must be a JSON object")
	}

	out := ResponseSet{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("invalid response key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("response %q: %w", key, err)
		}
		var value ResponseValue
		if err := value.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("response %q: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*rs = out
	return nil
}

// FileUploadData is one participant row after file ingestion.
type FileUploadData struct {
	ParticipantID string      `json:"participant_id"`
	Responses     ResponseSet `json:"responses"`
}

// ProcessedResult is the scoring outcome for one participant. It is built
// once per scoring run and only read afterwards.
type ProcessedResult struct {
	ID               string          `json:"id"`
	SessionID        string          `json:"session_id"`
	ParticipantID    string          `json:"participant_id"`
	Responses        ResponseSet     `json:"responses"`
	Scores           map[int]float64 `json:"scores"`
	TotalScore       float64         `json:"total_score"`
	Interpretation   string          `json:"interpretation"`
	Severity         string          `json:"severity"`
	ProcessingErrors []string        `json:"processing_errors"`
}

// HasErrors reports whether any item of the participant failed to score.
func (r *ProcessedResult) HasErrors() bool {
	return len(r.ProcessingErrors) > 0
}

type FormatDetectionResult struct {
	DetectedFormat   ResponseFormat `json:"detected_format"`
	Confidence       float64        `json:"confidence"`
	NumericResponses int            `json:"numeric_responses"`
	TextResponses    int            `json:"text_responses"`
	TotalResponses   int            `json:"total_responses"`
	SampleResponses  []string       `json:"sample_responses"`
	ValidationErrors []string       `json:"validation_errors"`
	Recommendations  []string       `json:"recommendations"`
}

type ValidationResult struct {
	IsValid           bool              `json:"is_valid"`
	Errors            []string          `json:"errors"`
	Warnings          []string          `json:"warnings"`
	SuggestedMappings []ResponseMapping `json:"suggested_mappings,omitempty"`
}
