package domain

import (
	"errors"
	"fmt"
	"time"
)

// APIError represents a standardized error response
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput        = "INVALID_INPUT"
	ErrValidation          = "VALIDATION_ERROR"
	ErrExtractionFailed    = "EXTRACTION_FAILED"
	ErrUnsupportedLanguage = "UNSUPPORTED_LANGUAGE"
	ErrPayloadTooLarge     = "PAYLOAD_TOO_LARGE"
	ErrFeedback            = "FEEDBACK_ERROR"
	ErrNotFound            = "NOT_FOUND"
	ErrInternalServer      = "INTERNAL_SERVER_ERROR"
)

// User-facing messages returned by the analyze and translate operations
const (
	MsgExtractionFailed  = "Unable to extract text from the uploaded file. Please ensure the report is clearly printed and try again."
	MsgAnalysisFailed    = "An error occurred while analyzing the report. Please try again."
	MsgInvalidFileType   = "Invalid file type. Please upload a PDF, JPG, or PNG file."
	MsgFileTooLarge      = "File too large. Maximum size is 10 MB."
	MsgNoFile            = "No file provided"
	MsgNoTexts           = "No texts provided for translation."
	MsgNoTargetLanguage  = "Target language not specified."
	MsgTranslationFailed = "Translation failed. Please try again."
)

// ErrNoText is returned by extractors when a document yields no usable text
var ErrNoText = errors.New("no text extracted")

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// IsValidationError reports whether err wraps a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
