package services

import (
	"errors"

	"github.com/kwoncho1001/Jomath/internal/analysis"
	apperrors "github.com/kwoncho1001/Jomath/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Catalog errors
	ErrCatalogEmpty = errors.New("question catalog is empty - upload a catalog sheet first")

	// Exam errors. ErrExamNotFound is the analysis package's sentinel so that
	// errors.Is works across the pipeline boundary.
	ErrExamNotFound      = analysis.ErrExamNotFound
	ErrExamReportMissing = errors.New("no report computed for this exam - run the analysis first")

	// Student errors
	ErrStudentNotFound  = errors.New("no records for this student")
	ErrNoMasteryData    = errors.New("student has no mastery data in the current scope")

	// Settings errors
	ErrSettingsNotFound  = errors.New("analysis settings not found")
	ErrSettingsNameTaken = errors.New("analysis settings name already exists")

	// Import/export errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptySheet        = errors.New("sheet has no data rows")

	// Report errors
	ErrAISummaryUnavailable = errors.New("AI summary unavailable - no API key configured")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrExamReportMissing) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrSettingsNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var single *apperrors.ValidationError
	if errors.As(err, &single) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSettingsNameTaken)
}

// IsBadInput checks whether an error should map to a 400 rather than a 500
func IsBadInput(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrEmptySheet) ||
		errors.Is(err, ErrCatalogEmpty) ||
		IsValidation(err)
}
