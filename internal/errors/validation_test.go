package errors

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestValidationError(t *testing.T) {
	// Test NewValidationError
	err := NewValidationError("test_field", "test message", "test_value")

	if err.Field != "test_field" {
		t.Errorf("Expected field to be 'test_field', got '%s'", err.Field)
	}

	if err.Message != "test message" {
		t.Errorf("Expected message to be 'test message', got '%s'", err.Message)
	}

	if err.Value != "test_value" {
		t.Errorf("Expected value to be 'test_value', got '%v'", err.Value)
	}

	// Test Error method
	expected := "validation error on field 'test_field': test message"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	// Test empty ValidationErrors
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	// Test single ValidationError
	errs = append(errs, *NewValidationError("field1", "message1", nil))
	expected := "validation failed: field1 message1"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	// Test multiple ValidationErrors
	errs = append(errs, *NewValidationError("field2", "message2", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("test_field", "test message", "required", "test_value")

	if err.Rule != "required" {
		t.Errorf("Expected rule to be 'required', got '%s'", err.Rule)
	}

	if err.Field != "test_field" {
		t.Errorf("Expected field to be 'test_field', got '%s'", err.Field)
	}
}

type rangeDefinition struct {
	Severity string `validate:"required"`
	Color    string `validate:"omitempty,hexcolor"`
}

type scaleDefinition struct {
	Name   string            `validate:"required"`
	Ranges []rangeDefinition `validate:"dive"`
}

func TestToValidationErrors(t *testing.T) {
	validate := validator.New()

	err := validate.Struct(scaleDefinition{
		Ranges: []rangeDefinition{{Severity: "Mild", Color: "green"}},
	})
	if err == nil {
		t.Fatal("Expected validation to fail")
	}

	errs := ToValidationErrors(err)
	if len(errs) != 2 {
		t.Fatalf("Expected 2 validation errors, got %d", len(errs))
	}

	if errs[0].Field != "Name" || errs[0].Message != "is required" {
		t.Errorf("Unexpected first error: %+v", errs[0])
	}

	if errs[1].Field != "Ranges[0].Color" {
		t.Errorf("Expected nested field path 'Ranges[0].Color', got '%s'", errs[1].Field)
	}
	if errs[1].Rule != "hexcolor" {
		t.Errorf("Expected rule 'hexcolor', got '%s'", errs[1].Rule)
	}
}

func TestToValidationErrors_NonValidatorError(t *testing.T) {
	errs := ToValidationErrors(fmt.Errorf("boom"))
	if len(errs) != 0 {
		t.Errorf("Expected no validation errors, got %d", len(errs))
	}
}
