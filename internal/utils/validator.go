package utils

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Custom validation functions

func ValidateScoringType(fl validator.FieldLevel) bool {
	validTypes := []models.ScoringType{
		models.ScoringSum,
		models.ScoringAverage,
		models.ScoringWeighted,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func ValidateResponseFormat(fl validator.FieldLevel) bool {
	validFormats := []models.ResponseFormat{
		models.FormatNumeric,
		models.FormatText,
		models.FormatMixed,
	}

	value := fl.Field().String()
	for _, validFormat := range validFormats {
		if string(validFormat) == value {
			return true
		}
	}
	return false
}

func ValidateResponseType(fl validator.FieldLevel) bool {
	validTypes := []models.ResponseType{
		models.ResponseLikert,
		models.ResponseBinary,
		models.ResponseMultipleChoice,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func ValidateExpectedRange(fl validator.FieldLevel) bool {
	min, max, ok := ParseExpectedRange(fl.Field().String())
	return ok && min <= max
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("scoring_type", ValidateScoringType)
	validate.RegisterValidation("response_format", ValidateResponseFormat)
	validate.RegisterValidation("response_type", ValidateResponseType)
	validate.RegisterValidation("expected_range", ValidateExpectedRange)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
