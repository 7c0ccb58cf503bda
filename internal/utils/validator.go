package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kwoncho1001/Jomath/internal/models"
)

// Validator wraps go-playground/validator with the custom rules the request
// and settings payloads use.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

func (v *Validator) Var(field interface{}, tag string) error {
	return v.validate.Var(field, tag)
}

// Custom validation functions

func ValidateDifficulty(fl validator.FieldLevel) bool {
	_, ok := models.ParseDifficulty(fl.Field().String())
	return ok
}

func ValidateSourceKind(fl validator.FieldLevel) bool {
	switch models.SourceKind(fl.Field().String()) {
	case models.SourceTest, models.SourceBook:
		return true
	}
	return false
}

// ValidateTopicPrefix accepts "subject", "subject|major" or
// "subject|major|minor" selections; empty segments are malformed.
func ValidateTopicPrefix(fl validator.FieldLevel) bool {
	parts := strings.Split(fl.Field().String(), "|")
	if len(parts) == 0 || len(parts) > 3 {
		return false
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return false
		}
	}
	return true
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("difficulty", ValidateDifficulty)
	validate.RegisterValidation("source_kind", ValidateSourceKind)
	validate.RegisterValidation("topic_prefix", ValidateTopicPrefix)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
