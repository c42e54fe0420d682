package models

type ScoringType string

const (
	ScoringSum      ScoringType = "sum"
	ScoringAverage  ScoringType = "average"
	ScoringWeighted ScoringType = "weighted"
)

type ResponseFormat string

const (
	FormatNumeric ResponseFormat = "numeric"
	FormatText    ResponseFormat = "text"
	FormatMixed   ResponseFormat = "mixed"
)

type ResponseType string

const (
	ResponseLikert         ResponseType = "likert"
	ResponseBinary         ResponseType = "binary"
	ResponseMultipleChoice ResponseType = "multiple_choice"
)

// Scale is a psychometric instrument definition. InterpretationRanges are
// scanned in declaration order; they are allowed to overlap or leave gaps.
type Scale struct {
	ID             string         `json:"id" validate:"required"`
	Name           string         `json:"name" validate:"required,max=200"`
	Description    string         `json:"description" validate:"max=2000"`
	TotalItems     int            `json:"total_items" validate:"min=0"`
	ScoringType    ScoringType    `json:"scoring_type" validate:"required,scoring_type"`
	ResponseFormat ResponseFormat `json:"response_format" validate:"required,response_format"`
	MinScore       float64        `json:"min_score"`
	MaxScore       float64        `json:"max_score" validate:"gtefield=MinScore"`
	ExpectedRange  string         `json:"expected_range,omitempty" validate:"omitempty,expected_range"`
	CreatedBy      string         `json:"created_by,omitempty"`
	IsPublic       bool           `json:"is_public"`
	IsVerified     bool           `json:"is_verified"`
	Citation       string         `json:"citation,omitempty"`
	Instructions   string         `json:"instructions,omitempty"`

	InterpretationRanges []InterpretationRange `json:"interpretation_ranges" validate:"dive"`
}

type InterpretationRange struct {
	ID          string  `json:"id"`
	ScaleID     string  `json:"scale_id"`
	MinScore    float64 `json:"min_score"`
	MaxScore    float64 `json:"max_score"`
	Severity    string  `json:"severity" validate:"required"`
	Description string  `json:"description"`
	Color       string  `json:"color" validate:"omitempty,hexcolor"`
}

// Contains reports whether score falls inside the closed range.
func (r InterpretationRange) Contains(score float64) bool {
	return score >= r.MinScore && score <= r.MaxScore
}

type ScaleItem struct {
	ID             string       `json:"id" validate:"required"`
	ScaleID        string       `json:"scale_id" validate:"required"`
	ItemNumber     int          `json:"item_number" validate:"min=1"`
	QuestionText   string       `json:"question_text"`
	ResponseType   ResponseType `json:"response_type" validate:"required,response_type"`
	IsReverseCoded bool         `json:"is_reverse_coded"`
}

// ResponseMapping converts a text answer (or any of its aliases) to a
// numeric value for one scale item.
type ResponseMapping struct {
	ID           string   `json:"id"`
	ScaleItemID  string   `json:"scale_item_id" validate:"required"`
	TextResponse string   `json:"text_response" validate:"required"`
	NumericValue float64  `json:"numeric_value"`
	Aliases      []string `json:"aliases"`
}
