package validator

import (
	"github.com/SAP-F-2025/scoring-service/internal/utils"
	"github.com/go-playground/validator/v10"
)

// Validator is the main validator instance that combines struct tag
// validation with the scale definition checks.
type Validator struct {
	structValidator *validator.Validate
	scaleValidator  *ScaleValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	utils.RegisterCustomValidators(structValidator)

	v := &Validator{structValidator: structValidator}
	v.scaleValidator = NewScaleValidator(v)
	return v
}

// ValidateStruct validates struct tags only. Tag failures come back as
// ValidationErrors.
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Scale returns the scale definition validator
func (v *Validator) Scale() *ScaleValidator {
	return v.scaleValidator
}

// Engine exposes the underlying go-playground validator, e.g. to share it
// with gin's binding layer.
func (v *Validator) Engine() *validator.Validate {
	return v.structValidator
}
